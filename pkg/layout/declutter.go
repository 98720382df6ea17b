package layout

import "math"

// DeclusterOptions controls ring geometry. All lengths are in data units.
type DeclusterOptions struct {
	RMin   float64 // ring radius for a pair
	Growth float64 // radius added per extra member
	RMax   float64 // radius cap
	Pad    float64 // keep-out distance from the domain edge

	// LabelReach is extra room kept between a ring and the padding so
	// clustered labels pushed past the ring are not clamped back.
	LabelReach float64
}

// reference span the default ring sizes were tuned for (a 1–9 axis)
const referenceSpan = 8.0

// DefaultDeclusterOptions returns ring sizes scaled to the axis span.
func DefaultDeclusterOptions(axis AxisRange) DeclusterOptions {
	f := axis.Span() / referenceSpan
	return DeclusterOptions{
		RMin:   0.18 * f,
		Growth: 0.04 * f,
		RMax:   0.45 * f,
		Pad:    0.25 * f,
	}
}

// RingRadius returns the ring radius for a group of k points.
// It is 0 for k <= 1, non-decreasing in k, and never exceeds RMax.
func (o DeclusterOptions) RingRadius(k int) float64 {
	if k <= 1 {
		return 0
	}
	return min(o.RMax, o.RMin+o.Growth*float64(k-1))
}

// Placement is the declustered position of one point.
type Placement struct {
	AnchorX, AnchorY float64 // clamped input coordinate
	CenterX, CenterY float64 // ring center
	OffsetX, OffsetY float64 // offset from the ring center
	RenderX, RenderY float64 // final marker position
	GroupSize        int
	GroupIndex       int
	Radius           float64
	Angle            float64
}

type coord struct{ x, y float64 }

// Decluster assigns each point a position, fanning exact duplicates onto a
// ring. The result is index-aligned with points.
func Decluster(points []Point, axis AxisRange, opts DeclusterOptions) []Placement {
	out := make([]Placement, len(points))

	groups := make(map[coord][]int)
	var order []coord
	for i, p := range points {
		c := coord{axis.Clamp(p.X), axis.Clamp(p.Y)}
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], i)
	}

	padded := axis.Inset(opts.Pad)
	for _, c := range order {
		members := groups[c]
		k := len(members)
		r := opts.RingRadius(k)

		// pull the center inward so the ring and its labels fit inside the padding
		cx, cy := c.x, c.y
		if k > 1 {
			reach := r + opts.LabelReach
			cx = clamp(cx, min(padded.Min+reach, padded.Max), max(padded.Max-reach, padded.Min))
			cy = clamp(cy, min(padded.Min+reach, padded.Max), max(padded.Max-reach, padded.Min))
		}

		for i, idx := range members {
			pl := Placement{
				AnchorX: c.x, AnchorY: c.y,
				CenterX: cx, CenterY: cy,
				GroupSize:  k,
				GroupIndex: i,
				Radius:     r,
			}
			if k > 1 {
				pl.Angle = 2 * math.Pi * float64(i) / float64(k)
				pl.OffsetX = r * math.Cos(pl.Angle)
				pl.OffsetY = r * math.Sin(pl.Angle)
			}
			pl.RenderX = padded.Clamp(cx + pl.OffsetX)
			pl.RenderY = padded.Clamp(cy + pl.OffsetY)
			out[idx] = pl
		}
	}
	return out
}
