package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/config"
	"github.com/matzehuels/zonemap/pkg/pipeline"
	"github.com/matzehuels/zonemap/pkg/zone"
)

// chartFlags are the chart options shared by render, preview, watch and
// serve. A flag only overrides the config file when it is set explicitly.
type chartFlags struct {
	formats        string
	preset         string
	rulesFile      string
	title          string
	xLabel         string
	yLabel         string
	sizeScale      float64
	width          float64
	height         float64
	scale          float64
	axisMin        float64
	axisMax        float64
	hideGrid       bool
	hideBoundaries bool
	hideZoneLabels bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	fs.StringVar(&f.preset, "preset", "", "zone preset: "+presetList()+" (ignores config [[zone]] rules)")
	fs.StringVar(&f.rulesFile, "rules", "", "zone rule set TOML file (see 'zonemap zones --toml')")
	fs.StringVar(&f.title, "title", "", "chart title (default \""+pipeline.DefaultTitle+"\")")
	fs.StringVar(&f.xLabel, "x-label", "", "x axis label")
	fs.StringVar(&f.yLabel, "y-label", "", "y axis label")
	fs.Float64Var(&f.sizeScale, "size-scale", pipeline.DefaultSizeScale, "marker area per magnitude unit")
	fs.Float64Var(&f.width, "width", pipeline.DefaultWidth, "chart width in pixels")
	fs.Float64Var(&f.height, "height", pipeline.DefaultHeight, "chart height in pixels")
	fs.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	fs.Float64Var(&f.axisMin, "axis-min", 1, "lower bound of both axes")
	fs.Float64Var(&f.axisMax, "axis-max", 9, "upper bound of both axes")
	fs.BoolVar(&f.hideGrid, "no-grid", false, "hide grid lines")
	fs.BoolVar(&f.hideBoundaries, "no-boundaries", false, "hide zone boundary lines")
	fs.BoolVar(&f.hideZoneLabels, "no-zone-labels", false, "hide zone names")
	cmd.MarkFlagsMutuallyExclusive("preset", "rules")
	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets)
}

// apply overlays explicitly set flags on opts.
func (f *chartFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("format") {
		opts.Formats = pipeline.ParseFormats(f.formats)
	}
	if changed("preset") {
		opts.Preset = f.preset
		opts.Rules = nil
	}
	if changed("title") {
		opts.Title = f.title
	}
	if changed("x-label") {
		opts.XLabel = f.xLabel
	}
	if changed("y-label") {
		opts.YLabel = f.yLabel
	}
	if changed("size-scale") {
		opts.SizeScale = f.sizeScale
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("axis-min") || changed("axis-max") {
		opts.SetDefaults()
		if changed("axis-min") {
			opts.Axis.Min = f.axisMin
		}
		if changed("axis-max") {
			opts.Axis.Max = f.axisMax
		}
	}
	if changed("no-grid") {
		opts.HideGrid = f.hideGrid
	}
	if changed("no-boundaries") {
		opts.HideBoundaries = f.hideBoundaries
	}
	if changed("no-zone-labels") {
		opts.HideZoneLabels = f.hideZoneLabels
	}
}

// chartOptions loads the config file and applies the command's flags
// without validating the result.
func (c *CLI) chartOptions(cmd *cobra.Command, f *chartFlags) (config.Config, pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	f.apply(cmd, &opts)
	if f.rulesFile != "" {
		rs, err := zone.LoadRuleSet(f.rulesFile)
		if err != nil {
			return config.Config{}, pipeline.Options{}, err
		}
		opts.Rules = &rs
	}
	return cfg, opts, nil
}

// resolveOptions is chartOptions followed by validation.
func (c *CLI) resolveOptions(cmd *cobra.Command, f *chartFlags) (config.Config, pipeline.Options, error) {
	cfg, opts, err := c.chartOptions(cmd, f)
	if err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	return cfg, opts, nil
}
