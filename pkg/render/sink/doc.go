// Package sink encodes a built [scene.Scene] into output formats.
//
// # Overview
//
//   - SVG: hand-written markup with label halos and hover tooltips
//   - JSON: the scene itself, byte-identical across runs
//   - PNG: native raster drawing, no external tools
//   - PDF: SVG converted with rsvg-convert
//
// All sinks paint primitives in scene order, so the z-order decided by the
// scene builder holds in every format.
//
// # PNG Output
//
// [RenderPNG] draws with fogleman/gg at a supersampled resolution using the
// Go fonts, then downsamples with a Lanczos filter:
//
//	png, err := sink.RenderPNG(s, sink.WithScale(2))
//
// # PDF Output
//
// [RenderPDF] requires librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [scene.Scene]: github.com/matzehuels/zonemap/pkg/scene.Scene
package sink
