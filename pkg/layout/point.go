package layout

import "math"

// Point is one plotted entity.
type Point struct {
	Label     string  `json:"label"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Magnitude float64 `json:"magnitude"`
	Note      string  `json:"note,omitempty"`
}

// AxisRange is the closed data range shared by both axes.
type AxisRange struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// DefaultAxis is the 1–9 scale the default zone presets are drawn for.
var DefaultAxis = AxisRange{Min: 1, Max: 9}

// Span returns Max - Min.
func (a AxisRange) Span() float64 { return a.Max - a.Min }

// Valid reports whether the range is finite and non-empty.
func (a AxisRange) Valid() bool {
	return !math.IsNaN(a.Min) && !math.IsNaN(a.Max) &&
		!math.IsInf(a.Min, 0) && !math.IsInf(a.Max, 0) &&
		a.Max > a.Min
}

// Clamp limits v to [Min, Max]. NaN maps to Min.
func (a AxisRange) Clamp(v float64) float64 {
	return clamp(v, a.Min, a.Max)
}

// Contains reports whether v lies in [Min, Max].
func (a AxisRange) Contains(v float64) bool {
	return v >= a.Min && v <= a.Max
}

// Inset returns the range shrunk by pad on both ends. If pad would invert
// the range, the midpoint range is returned.
func (a AxisRange) Inset(pad float64) AxisRange {
	lo, hi := a.Min+pad, a.Max-pad
	if lo > hi {
		mid := (a.Min + a.Max) / 2
		return AxisRange{Min: mid, Max: mid}
	}
	return AxisRange{Min: lo, Max: hi}
}

// PlacedPoint is a Point with its final marker and label positions.
type PlacedPoint struct {
	Point

	AnchorX float64 `json:"anchor_x"` // clamped data position
	AnchorY float64 `json:"anchor_y"`
	RenderX float64 `json:"render_x"` // marker center after declustering
	RenderY float64 `json:"render_y"`
	LabelX  float64 `json:"label_x"`
	LabelY  float64 `json:"label_y"`

	HasLeader bool `json:"has_leader"`

	GroupSize  int     `json:"group_size"`
	GroupIndex int     `json:"group_index"`
	RingRadius float64 `json:"ring_radius,omitempty"`
	RingAngle  float64 `json:"ring_angle,omitempty"`

	Area   float64 `json:"area"`   // marker area, pt²
	Radius float64 `json:"radius"` // marker radius, pt
	Zone   string  `json:"zone,omitempty"`
}

// Clustered reports whether the point shares its coordinate with others.
func (p PlacedPoint) Clustered() bool { return p.GroupSize > 1 }

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return max(lo, min(hi, v))
}
