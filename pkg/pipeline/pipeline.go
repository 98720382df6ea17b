// Package pipeline provides the chart pipeline shared by the CLI commands and
// the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a CSV table, normalize its columns and convert rows to points
//  2. Build: Classify, declutter and label the points into a [scene.Scene]
//  3. Render: Serialize the scene in various formats (SVG, PNG, PDF, JSON)
//
// Build and Render results are cached by content hash, so re-rendering an
// unchanged table with unchanged options is a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Preset:  "stacey",
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.ExecuteFile(ctx, "markets.csv", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	ds, err := runner.Load(ctx, r, "stdin", opts)
//	s, hash, err := runner.Build(ctx, ds, opts)
//	artifacts, err := runner.Render(ctx, s, hash, opts)
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zonemap/pkg/cache"
	"github.com/matzehuels/zonemap/pkg/errors"
	zio "github.com/matzehuels/zonemap/pkg/io"
	"github.com/matzehuels/zonemap/pkg/layout"
	"github.com/matzehuels/zonemap/pkg/scene"
	"github.com/matzehuels/zonemap/pkg/zone"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultTitle is the chart title when none is given.
	DefaultTitle = "Country Assessment"

	// DefaultXLabel and DefaultYLabel are the axis titles.
	DefaultXLabel = "Certainty (Low → High)"
	DefaultYLabel = "Alignment (Low → High)"

	// DefaultSizeScale is the marker size multiplier.
	DefaultSizeScale = 8.0

	// DefaultPreset is the zone rule set used when no rules are configured.
	DefaultPreset = zone.DefaultPreset

	// DefaultWidth and DefaultHeight are the frame size in pixels.
	DefaultWidth  = scene.DefaultWidth
	DefaultHeight = scene.DefaultHeight

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MaxScale bounds the PNG resolution multiplier.
	MaxScale = 8.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	XWeights []float64 `json:"x_weights,omitempty"` // Sub-score weights for the x axis
	YWeights []float64 `json:"y_weights,omitempty"` // Sub-score weights for the y axis

	// Build options
	Axis           layout.AxisRange `json:"axis"`
	SizeScale      float64          `json:"size_scale,omitempty"`
	Title          string           `json:"title,omitempty"`
	XLabel         string           `json:"x_label,omitempty"`
	YLabel         string           `json:"y_label,omitempty"`
	Preset         string           `json:"preset,omitempty"`
	Width          float64          `json:"width,omitempty"`
	Height         float64          `json:"height,omitempty"`
	HideGrid       bool             `json:"hide_grid,omitempty"`
	HideBoundaries bool             `json:"hide_boundaries,omitempty"`
	HideZoneLabels bool             `json:"hide_zone_labels,omitempty"`
	Refresh        bool             `json:"refresh,omitempty"` // Skip cache reads

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Rules  *zone.RuleSet `json:"-"` // Overrides Preset when set
	Logger *log.Logger   `json:"-"` // Overrides the runner's logger when set

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Dataset is a loaded input table and the points drawn from it.
type Dataset struct {
	Source     string
	Table      *zio.Table
	Points     []layout.Point
	Skipped    []zio.RowError
	Violations []zio.RangeViolation

	// Hash is the content hash of Points.
	Hash string
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the loaded table.
	Dataset *Dataset

	// Scene is the laid out chart.
	Scene *scene.Scene

	// SceneHash is the content hash of the scene JSON.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Points     int
	Skipped    int
	Violations int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SceneHit  bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks every option.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidateRange("scale", o.Scale, 0.25, MaxScale); err != nil {
		return err
	}
	rs, err := o.RuleSet()
	if err != nil {
		return err
	}
	if err := o.SceneOptions(rs).Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero-valued options.
func (o *Options) SetDefaults() {
	if o.Axis == (layout.AxisRange{}) {
		o.Axis = layout.DefaultAxis
	}
	if o.SizeScale == 0 {
		o.SizeScale = DefaultSizeScale
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.XLabel == "" {
		o.XLabel = DefaultXLabel
	}
	if o.YLabel == "" {
		o.YLabel = DefaultYLabel
	}
	if o.Preset == "" {
		o.Preset = DefaultPreset
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// RuleSet returns the configured rules, or the named preset.
func (o *Options) RuleSet() (zone.RuleSet, error) {
	if o.Rules != nil && len(o.Rules.Rules) > 0 {
		return *o.Rules, nil
	}
	name := o.Preset
	if name == "" {
		name = DefaultPreset
	}
	rs, err := zone.Preset(name)
	if err != nil {
		return zone.RuleSet{}, errors.Wrap(errors.ErrCodeInvalidOptions, err, "preset %q (available: %s)",
			name, strings.Join(zone.Presets(), ", "))
	}
	return rs, nil
}

// SceneOptions converts o to scene build options over rules rs.
func (o *Options) SceneOptions(rs zone.RuleSet) scene.Options {
	return scene.Options{
		Axis:           o.Axis,
		SizeScale:      o.SizeScale,
		Title:          o.Title,
		XLabel:         o.XLabel,
		YLabel:         o.YLabel,
		Rules:          rs,
		Width:          o.Width,
		Height:         o.Height,
		ShowGrid:       !o.HideGrid,
		ShowBoundaries: !o.HideBoundaries,
		ShowZoneLabels: !o.HideZoneLabels,
	}
}

// ReadOptions returns the table read options for o.
func (o *Options) ReadOptions() []zio.ReadOption {
	var ro []zio.ReadOption
	if len(o.XWeights) > 0 {
		ro = append(ro, zio.WithSubScoreWeights(zio.FieldX, o.XWeights...))
	}
	if len(o.YWeights) > 0 {
		ro = append(ro, zio.WithSubScoreWeights(zio.FieldY, o.YWeights...))
	}
	return ro
}

// SceneKeyOpts returns cache key options for scene building.
func (o *Options) SceneKeyOpts(rs zone.RuleSet) cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		AxisMin:        o.Axis.Min,
		AxisMax:        o.Axis.Max,
		SizeScale:      o.SizeScale,
		Title:          o.Title,
		XLabel:         o.XLabel,
		YLabel:         o.YLabel,
		RulesHash:      cache.Hash([]byte(rs.String())),
		Width:          o.Width,
		Height:         o.Height,
		ShowGrid:       !o.HideGrid,
		ShowBoundaries: !o.HideBoundaries,
		ShowZoneLabels: !o.HideZoneLabels,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("preset=%s axis=[%g,%g] scale=%g formats=%s",
		o.Preset, o.Axis.Min, o.Axis.Max, o.SizeScale, strings.Join(o.Formats, ","))
}
