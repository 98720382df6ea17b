package scene

import (
	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/layout"
	"github.com/matzehuels/zonemap/pkg/zone"
)

// Frame defaults, in pixels.
const (
	DefaultWidth  = 900.0
	DefaultHeight = 600.0

	MinFrame = 200.0
	MaxFrame = 8000.0
)

// Options configures Build. The zero value of Declutter and Labels selects
// distances scaled to the axis. A zero Width or Height selects the default.
type Options struct {
	Axis      layout.AxisRange
	SizeScale float64
	Title     string
	XLabel    string
	YLabel    string
	Rules     zone.RuleSet

	Width  float64
	Height float64

	ShowGrid       bool
	ShowBoundaries bool
	ShowZoneLabels bool

	Declutter layout.DeclusterOptions
	Labels    layout.LabelOptions
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if !o.Axis.Valid() {
		return errors.New(errors.ErrCodeInvalidOptions, "invalid axis range [%v, %v]", o.Axis.Min, o.Axis.Max)
	}
	if err := errors.ValidateRange("size scale", o.SizeScale, layout.MinSizeScale, layout.MaxSizeScale); err != nil {
		return err
	}
	for _, f := range []struct{ name, v string }{
		{"title", o.Title}, {"x label", o.XLabel}, {"y label", o.YLabel},
	} {
		if err := errors.ValidateText(f.name, f.v); err != nil {
			return err
		}
	}
	if o.Width != 0 {
		if err := errors.ValidateRange("width", o.Width, MinFrame, MaxFrame); err != nil {
			return err
		}
	}
	if o.Height != 0 {
		if err := errors.ValidateRange("height", o.Height, MinFrame, MaxFrame); err != nil {
			return err
		}
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Declutter == (layout.DeclusterOptions{}) {
		o.Declutter = layout.DefaultDeclusterOptions(o.Axis)
	}
	if o.Labels == (layout.LabelOptions{}) {
		o.Labels = layout.DefaultLabelOptions(o.Axis)
	}
	return o
}

// classifier builds the zone classifier for o, rescaling the rule set onto
// the chart axis when they differ. Non-total rule sets are rejected.
func (o Options) classifier() (*zone.Classifier, error) {
	rs := o.Rules
	if len(rs.Rules) == 0 {
		var err error
		if rs, err = zone.Preset(zone.DefaultPreset); err != nil {
			return nil, err
		}
	}
	c, err := rs.Scaled(o.Axis).Classifier()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "zone rules")
	}
	if err := c.CheckTotal(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "zone rules")
	}
	return c, nil
}
