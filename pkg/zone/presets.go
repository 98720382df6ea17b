package zone

import (
	"slices"
	"sort"

	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/layout"
)

// Built-in rule set names.
const (
	PresetStacey   = "stacey"
	PresetQuadrant = "quadrant"
)

// DefaultPreset is used when no rule set is configured.
const DefaultPreset = PresetStacey

// Unclassified is the default zone of the built-in presets.
var Unclassified = Zone{Name: "Unclassified", Color: "#ffffff"}

var presets = map[string]func() RuleSet{
	PresetStacey:   stacey,
	PresetQuadrant: quadrant,
}

// Presets returns the names of the built-in rule sets, sorted.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns a built-in rule set by name.
func Preset(name string) (RuleSet, error) {
	fn, ok := presets[name]
	if !ok {
		return RuleSet{}, errors.New(errors.ErrCodeNotFound, "unknown zone preset: %s", name)
	}
	return fn(), nil
}

// stacey is the four-layer Stacey matrix on the 1–9 scale.
func stacey() RuleSet {
	var (
		simple      = Zone{Name: "Simple", Color: "#c8e6c9"}
		complicated = Zone{Name: "Complicated", Color: "#fff59d"}
		complexZone = Zone{Name: "Complex", Color: "#ffcc80"}
		chaotic     = Zone{Name: "Chaotic", Color: "#ef9a9a"}
	)
	return RuleSet{
		Name:    PresetStacey,
		Axis:    layout.DefaultAxis,
		Default: Unclassified,
		Rules: []Rule{
			{Rect{1, 6, 1, 6}, simple},
			{Rect{4, 6, 1, 6}, complicated},
			{Rect{1, 6, 4, 6}, complicated},
			{Rect{6, 9, 1, 9}, complexZone},
			{Rect{1, 9, 6, 9}, complexZone},
			{Rect{8, 9, 8, 9}, chaotic},
		},
	}
}

// quadrant splits the 1–9 square at its midpoint, named after the
// corner labels of the classic certainty/alignment chart.
func quadrant() RuleSet {
	const lo, mid, hi = 1, 5, 9
	return RuleSet{
		Name:    PresetQuadrant,
		Axis:    layout.DefaultAxis,
		Default: Unclassified,
		Rules: []Rule{
			{Rect{lo, mid, lo, mid}, Zone{Name: "Chaotic", Color: "#fce4ec"}},
			{Rect{mid, hi, lo, mid}, Zone{Name: "Complicated", Color: "#e3f2fd"}},
			{Rect{lo, mid, mid, hi}, Zone{Name: "Complex", Color: "#fff3e0"}},
			{Rect{mid, hi, mid, hi}, Zone{Name: "Aligned & Certain", Color: "#e8f5e9"}},
		},
	}
}

// Scaled returns a copy of rs with every coordinate mapped linearly from
// rs.Axis onto axis.
func (rs RuleSet) Scaled(axis layout.AxisRange) RuleSet {
	if rs.Axis == axis || !rs.Axis.Valid() {
		rs.Axis = axis
		return rs
	}
	f := axis.Span() / rs.Axis.Span()
	m := func(v float64) float64 { return axis.Min + (v-rs.Axis.Min)*f }

	out := rs
	out.Axis = axis
	out.Rules = slices.Clone(rs.Rules)
	for i, r := range out.Rules {
		out.Rules[i].Rect = Rect{X0: m(r.X0), X1: m(r.X1), Y0: m(r.Y0), Y1: m(r.Y1)}
	}
	out.Labels = slices.Clone(rs.Labels)
	for i, l := range out.Labels {
		out.Labels[i].X, out.Labels[i].Y = m(l.X), m(l.Y)
	}
	return out
}
