// Package render turns built scenes into files.
//
// Format encoders live in [github.com/matzehuels/zonemap/pkg/render/sink].
// This package holds the conversions that need an external tool: PDF output
// is produced from SVG with rsvg-convert (librsvg).
package render
