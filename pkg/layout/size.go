package layout

import "math"

// Marker sizing bounds.
const (
	SizeFloor    = 50.0 // minimum marker area, pt²
	MinSizeScale = 1.0
	MaxSizeScale = 20.0
)

// Size maps a magnitude to a marker area in pt².
// Negative and NaN magnitudes count as zero. scale is clamped to
// [MinSizeScale, MaxSizeScale].
func Size(magnitude, scale float64) float64 {
	if !(magnitude > 0) {
		magnitude = 0
	}
	scale = clamp(scale, MinSizeScale, MaxSizeScale)
	return max(SizeFloor, math.Sqrt(magnitude)*scale)
}

// Radius converts a marker area to the radius of the drawn circle.
func Radius(area float64) float64 {
	return math.Sqrt(max(area, 0)) / 2
}

// Place runs the full layout for a point set: declustering, sizing and
// label placement. The result is index-aligned with points.
func Place(points []Point, axis AxisRange, scale float64, dopts DeclusterOptions, lopts LabelOptions) []PlacedPoint {
	dopts.LabelReach = max(dopts.LabelReach, lopts.ExtraPush)
	placements := Decluster(points, axis, dopts)
	labels := PlaceLabels(points, placements, axis, lopts)

	out := make([]PlacedPoint, len(points))
	for i, p := range points {
		pl := placements[i]
		area := Size(p.Magnitude, scale)
		out[i] = PlacedPoint{
			Point:      p,
			AnchorX:    pl.AnchorX,
			AnchorY:    pl.AnchorY,
			RenderX:    pl.RenderX,
			RenderY:    pl.RenderY,
			LabelX:     labels[i].X,
			LabelY:     labels[i].Y,
			HasLeader:  labels[i].HasLeader,
			GroupSize:  pl.GroupSize,
			GroupIndex: pl.GroupIndex,
			RingRadius: pl.Radius,
			RingAngle:  pl.Angle,
			Area:       area,
			Radius:     Radius(area),
		}
	}
	return out
}
