package zone

import (
	"fmt"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/layout"
)

// Zone is a named fill color.
type Zone struct {
	Name  string `json:"name" toml:"name"`
	Color string `json:"color" toml:"color"` // #rrggbb
}

// RGB returns the parsed zone color. Invalid colors parse as white.
func (z Zone) RGB() colorful.Color {
	c, err := colorful.Hex(z.Color)
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}

// Rect is an axis-aligned rectangle in data units.
type Rect struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

// Width returns X1 - X0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns Y1 - Y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Center returns the rectangle midpoint.
func (r Rect) Center() (x, y float64) { return (r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2 }

// Rule paints Rect with Zone.
type Rule struct {
	Rect
	Zone Zone `json:"zone"`
}

// Label pins a zone name to an explicit position.
type Label struct {
	Zone string  `json:"zone" toml:"zone"`
	X    float64 `json:"x" toml:"x"`
	Y    float64 `json:"y" toml:"y"`
}

// Classifier maps coordinates to zones. It is immutable and safe for
// concurrent use.
type Classifier struct {
	axis   layout.AxisRange
	rules  []Rule
	def    Zone
	labels []Label
}

// NewClassifier validates rules and returns a classifier over axis².
// def is returned by ColorAt for points no rule covers.
func NewClassifier(axis layout.AxisRange, rules []Rule, def Zone) (*Classifier, error) {
	if !axis.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidOptions,
			"invalid axis range [%v, %v]", axis.Min, axis.Max)
	}
	if len(rules) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidZones, "no zone rules")
	}
	for i, r := range rules {
		if err := validateRule(r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidZones, err, "rule %d", i)
		}
	}
	if def.Color != "" {
		if _, err := colorful.Hex(def.Color); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidZones, err, "default zone")
		}
	}
	return &Classifier{axis: axis, rules: slices.Clone(rules), def: def}, nil
}

func validateRule(r Rule) error {
	for _, v := range []float64{r.X0, r.X1, r.Y0, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite edge")
		}
	}
	if r.X1 <= r.X0 || r.Y1 <= r.Y0 {
		return fmt.Errorf("empty rectangle [%v,%v)x[%v,%v)", r.X0, r.X1, r.Y0, r.Y1)
	}
	if r.Zone.Name == "" {
		return fmt.Errorf("zone name is empty")
	}
	if _, err := colorful.Hex(r.Zone.Color); err != nil {
		return fmt.Errorf("zone %q: invalid color %q", r.Zone.Name, r.Zone.Color)
	}
	return nil
}

// WithLabels returns a copy of c that places the named zones at explicit
// positions. Labels for unknown zones are ignored by LabelAnchor.
func (c *Classifier) WithLabels(labels []Label) *Classifier {
	cp := *c
	cp.labels = slices.Clone(labels)
	return &cp
}

// Axis returns the domain range.
func (c *Classifier) Axis() layout.AxisRange { return c.axis }

// Rules returns a copy of the rule list in paint order.
func (c *Classifier) Rules() []Rule { return slices.Clone(c.rules) }

// Default returns the zone for uncovered points.
func (c *Classifier) Default() Zone { return c.def }

// Zones returns the distinct zones in first-appearance order.
func (c *Classifier) Zones() []Zone {
	var out []Zone
	seen := make(map[string]bool)
	for _, r := range c.rules {
		if seen[r.Zone.Name] {
			continue
		}
		seen[r.Zone.Name] = true
		out = append(out, r.Zone)
	}
	return out
}

// ColorAt returns the zone of the last rule containing (x, y), or the
// default zone.
func (c *Classifier) ColorAt(x, y float64) Zone {
	if i := c.match(x, y); i >= 0 {
		return c.rules[i].Zone
	}
	return c.def
}

// match returns the index of the last rule containing (x, y), or -1.
func (c *Classifier) match(x, y float64) int {
	for i := len(c.rules) - 1; i >= 0; i-- {
		if c.contains(i, x, y) {
			return i
		}
	}
	return -1
}

func (c *Classifier) contains(i int, x, y float64) bool {
	r := c.rules[i]
	last := i == len(c.rules)-1
	return inSpan(x, r.X0, r.X1, last || r.X1 >= c.axis.Max) &&
		inSpan(y, r.Y0, r.Y1, last || r.Y1 >= c.axis.Max)
}

func inSpan(v, lo, hi float64, closed bool) bool {
	if v < lo {
		return false
	}
	if closed {
		return v <= hi
	}
	return v < hi
}

// CheckTotal verifies that every point of the domain square is covered by
// at least one rule. Coverage can only change at rule edges, so testing
// every edge, the domain bounds, and the midpoints between them is exact.
func (c *Classifier) CheckTotal() error {
	cands := c.candidates()
	for _, x := range cands {
		for _, y := range cands {
			if c.match(x, y) < 0 {
				return errors.New(errors.ErrCodeInvalidZones,
					"zone rules do not cover (%g, %g)", x, y)
			}
		}
	}
	return nil
}

func (c *Classifier) candidates() []float64 {
	edges := []float64{c.axis.Min, c.axis.Max}
	for _, r := range c.rules {
		for _, v := range []float64{r.X0, r.X1, r.Y0, r.Y1} {
			if c.axis.Contains(v) {
				edges = append(edges, v)
			}
		}
	}
	slices.Sort(edges)
	edges = slices.Compact(edges)

	out := make([]float64, 0, 2*len(edges))
	for i, e := range edges {
		if i > 0 {
			out = append(out, (edges[i-1]+e)/2)
		}
		out = append(out, e)
	}
	return out
}

// Boundaries returns the distinct rule edges strictly inside the domain,
// sorted, for drawing guide lines.
func (c *Classifier) Boundaries() (xs, ys []float64) {
	inside := func(v float64) bool { return v > c.axis.Min && v < c.axis.Max }
	for _, r := range c.rules {
		for _, v := range []float64{r.X0, r.X1} {
			if inside(v) {
				xs = append(xs, v)
			}
		}
		for _, v := range []float64{r.Y0, r.Y1} {
			if inside(v) {
				ys = append(ys, v)
			}
		}
	}
	slices.Sort(xs)
	slices.Sort(ys)
	return slices.Compact(xs), slices.Compact(ys)
}

// LabelAnchor returns where to draw a zone's name. Explicit labels win.
// Otherwise the inset corners and then the center of each of the zone's
// rectangles are tried in rule order; the first spot still painted with
// that zone is returned. ok is false when the zone is fully covered.
func (c *Classifier) LabelAnchor(name string) (x, y float64, ok bool) {
	for _, l := range c.labels {
		if l.Zone == name {
			return l.X, l.Y, true
		}
	}

	inset := c.axis.Span() / 16
	for _, r := range c.rules {
		if r.Zone.Name != name {
			continue
		}
		dx := min(inset, r.Width()/2)
		dy := min(inset, r.Height()/2)
		cx, cy := r.Center()
		spots := [][2]float64{
			{r.X0 + dx, r.Y1 - dy}, // upper left
			{r.X0 + dx, r.Y0 + dy}, // lower left
			{r.X1 - dx, r.Y1 - dy}, // upper right
			{r.X1 - dx, r.Y0 + dy}, // lower right
			{cx, cy},
		}
		for _, s := range spots {
			if c.ColorAt(s[0], s[1]).Name == name {
				return s[0], s[1], true
			}
		}
	}
	return 0, 0, false
}
