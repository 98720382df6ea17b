package layout

import (
	"hash/fnv"
	"math"
)

// LabelOptions controls label distance. Lengths are in data units.
type LabelOptions struct {
	SingleDistance float64 // label offset for a point alone at its coordinate
	ExtraPush      float64 // distance beyond the ring for clustered labels
	Epsilon        float64 // minimum offset that gets a leader line
	Pad            float64 // keep-out distance from the domain edge
}

// DefaultLabelOptions returns label distances scaled to the axis span.
func DefaultLabelOptions(axis AxisRange) LabelOptions {
	f := axis.Span() / referenceSpan
	return LabelOptions{
		SingleDistance: 0.30 * f,
		ExtraPush:      0.28 * f,
		Epsilon:        0.02 * f,
		Pad:            0.25 * f,
	}
}

// LabelAngle derives a direction in [0, 2π) from label text.
// It is FNV-1a-64 over the UTF-8 bytes, top 53 bits scaled to [0,1), times 2π.
func LabelAngle(text string) float64 {
	return LabelFraction(text) * 2 * math.Pi
}

// LabelFraction returns the label hash mapped to [0, 1).
func LabelFraction(text string) float64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return float64(h.Sum64()>>11) / (1 << 53)
}

// LabelPosition is a computed label anchor.
type LabelPosition struct {
	X, Y      float64
	HasLeader bool
}

// PlaceLabel computes the label anchor for one placed marker.
func PlaceLabel(text string, pl Placement, axis AxisRange, opts LabelOptions) LabelPosition {
	padded := axis.Inset(opts.Pad)

	var x, y float64
	if pl.GroupSize > 1 {
		d := pl.Radius + opts.ExtraPush
		x = pl.CenterX + d*math.Cos(pl.Angle)
		y = pl.CenterY + d*math.Sin(pl.Angle)
	} else {
		a := LabelAngle(text)
		dx := opts.SingleDistance * math.Cos(a)
		dy := opts.SingleDistance * math.Sin(a)
		// flip a component that would run off the padded edge
		if !padded.Contains(pl.RenderX + dx) {
			dx = -dx
		}
		if !padded.Contains(pl.RenderY + dy) {
			dy = -dy
		}
		x = pl.RenderX + dx
		y = pl.RenderY + dy
	}
	x, y = padded.Clamp(x), padded.Clamp(y)

	pos := LabelPosition{X: x, Y: y}
	pos.HasLeader = math.Hypot(x-pl.RenderX, y-pl.RenderY) > opts.Epsilon
	return pos
}

// PlaceLabels computes label anchors for all placements.
// The result is index-aligned with points.
func PlaceLabels(points []Point, placements []Placement, axis AxisRange, opts LabelOptions) []LabelPosition {
	out := make([]LabelPosition, len(points))
	for i, p := range points {
		out[i] = PlaceLabel(p.Label, placements[i], axis, opts)
	}
	return out
}
