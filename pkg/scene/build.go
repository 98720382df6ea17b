package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/zonemap/pkg/layout"
	"github.com/matzehuels/zonemap/pkg/zone"
)

// Colors and type sizes shared by all scenes.
const (
	colorInk      = "#111111"
	colorPaper    = "#ffffff"
	colorGrid     = "#d6d6d6"
	colorBoundary = "#555555"
	colorLeader   = "#666666"
	colorZoneName = "#333333"

	fontLabel    = 9.0
	fontZoneName = 11.0
	fontTick     = 9.0
	fontAxis     = 11.0
	fontTitle    = 15.0

	markerOpacity = 0.6
	tickLength    = 5.0
)

// Build lays out points and returns the scene. Points keep their input
// order; duplicates are fanned onto rings.
func Build(points []layout.Point, opts Options) (*Scene, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	cls, err := opts.classifier()
	if err != nil {
		return nil, err
	}

	placed := layout.Place(points, opts.Axis, opts.SizeScale, opts.Declutter, opts.Labels)
	for i := range placed {
		placed[i].Zone = cls.ColorAt(placed[i].AnchorX, placed[i].AnchorY).Name
	}

	s := &Scene{
		Width:   opts.Width,
		Height:  opts.Height,
		Margins: DefaultMargins,
		Axis:    opts.Axis,
		Title:   opts.Title,
		Points:  placed,
	}

	b := &builder{axis: opts.Axis, cls: cls}
	b.zones()
	if opts.ShowGrid {
		b.grid()
	}
	if opts.ShowBoundaries {
		b.boundaries()
	}
	if opts.ShowZoneLabels {
		b.zoneNames()
	}
	b.markers(placed)
	b.leaders(placed)
	b.labels(placed)
	b.axes(opts)

	s.Primitives = b.prims
	return s, nil
}

type builder struct {
	axis  layout.AxisRange
	cls   *zone.Classifier
	prims []Primitive
}

func (b *builder) add(p Primitive) { b.prims = append(b.prims, p) }

func (b *builder) zones() {
	clip := func(v float64) float64 { return b.axis.Clamp(v) }
	for _, r := range b.cls.Rules() {
		x0, x1, y0, y1 := clip(r.X0), clip(r.X1), clip(r.Y0), clip(r.Y1)
		if x1 <= x0 || y1 <= y0 {
			continue
		}
		b.add(Primitive{
			Kind: KindRect, Layer: LayerZone,
			X: x0, Y: y0, X2: x1, Y2: y1,
			Fill: r.Zone.Color,
		})
	}
}

func (b *builder) grid() {
	for _, t := range Ticks(b.axis) {
		b.add(Primitive{
			Kind: KindLine, Layer: LayerGrid,
			X: t, Y: b.axis.Min, X2: t, Y2: b.axis.Max,
			Stroke: colorGrid, StrokeWidth: 0.5, Dashed: true,
		})
	}
	for _, t := range Ticks(b.axis) {
		b.add(Primitive{
			Kind: KindLine, Layer: LayerGrid,
			X: b.axis.Min, Y: t, X2: b.axis.Max, Y2: t,
			Stroke: colorGrid, StrokeWidth: 0.5, Dashed: true,
		})
	}
}

func (b *builder) boundaries() {
	xs, ys := b.cls.Boundaries()
	for _, x := range xs {
		b.add(Primitive{
			Kind: KindLine, Layer: LayerBoundary,
			X: x, Y: b.axis.Min, X2: x, Y2: b.axis.Max,
			Stroke: colorBoundary, StrokeWidth: 0.8, Dashed: true,
		})
	}
	for _, y := range ys {
		b.add(Primitive{
			Kind: KindLine, Layer: LayerBoundary,
			X: b.axis.Min, Y: y, X2: b.axis.Max, Y2: y,
			Stroke: colorBoundary, StrokeWidth: 0.8, Dashed: true,
		})
	}
}

func (b *builder) zoneNames() {
	for _, z := range b.cls.Zones() {
		x, y, ok := b.cls.LabelAnchor(z.Name)
		if !ok {
			continue
		}
		b.add(Primitive{
			Kind: KindText, Layer: LayerZoneName,
			X: x, Y: y,
			Text: z.Name, FontSize: fontZoneName, Anchor: AnchorStart, Bold: true,
			Fill: colorZoneName,
		})
	}
}

func (b *builder) markers(points []layout.PlacedPoint) {
	for _, p := range points {
		b.add(Primitive{
			Kind: KindMarker, Layer: LayerMarker,
			X: p.RenderX, Y: p.RenderY, R: p.Radius,
			Fill: MarkerColor(p.Label), Stroke: colorInk, StrokeWidth: 0.5,
			Opacity: markerOpacity,
			Tooltip: tooltip(p),
		})
	}
}

func (b *builder) leaders(points []layout.PlacedPoint) {
	for _, p := range points {
		if !p.HasLeader {
			continue
		}
		b.add(Primitive{
			Kind: KindLine, Layer: LayerLeader,
			X: p.RenderX, Y: p.RenderY, X2: p.LabelX, Y2: p.LabelY,
			Stroke: colorLeader, StrokeWidth: 0.6,
		})
	}
}

func (b *builder) labels(points []layout.PlacedPoint) {
	for _, p := range points {
		fill, halo := LabelColors(b.cls.ColorAt(p.LabelX, p.LabelY))
		b.add(Primitive{
			Kind: KindText, Layer: LayerLabel,
			X: p.LabelX, Y: p.LabelY,
			Text: p.Label, FontSize: fontLabel, Anchor: labelAnchor(p),
			Fill: fill, Halo: halo,
		})
	}
}

func (b *builder) axes(opts Options) {
	lo, hi := b.axis.Min, b.axis.Max
	b.add(Primitive{
		Kind: KindRect, Layer: LayerAxis,
		X: lo, Y: lo, X2: hi, Y2: hi,
		Fill: "none", Stroke: colorInk, StrokeWidth: 1,
	})

	for _, t := range Ticks(b.axis) {
		label := formatTick(t)
		b.add(Primitive{
			Kind: KindLine, Layer: LayerAxis,
			X: t, Y: lo, X2: t, Y2: lo, DY2: tickLength,
			Stroke: colorInk, StrokeWidth: 1,
		})
		b.add(Primitive{
			Kind: KindText, Layer: LayerAxis,
			X: t, Y: lo, DY: 18,
			Text: label, FontSize: fontTick, Anchor: AnchorMiddle, Fill: colorInk,
		})
		b.add(Primitive{
			Kind: KindLine, Layer: LayerAxis,
			X: lo, Y: t, X2: lo, Y2: t, DX2: -tickLength,
			Stroke: colorInk, StrokeWidth: 1,
		})
		b.add(Primitive{
			Kind: KindText, Layer: LayerAxis,
			X: lo, Y: t, DX: -10,
			Text: label, FontSize: fontTick, Anchor: AnchorEnd, Fill: colorInk,
		})
	}

	mid := (lo + hi) / 2
	if opts.XLabel != "" {
		b.add(Primitive{
			Kind: KindText, Layer: LayerAxis,
			X: mid, Y: lo, DY: 42,
			Text: opts.XLabel, FontSize: fontAxis, Anchor: AnchorMiddle, Fill: colorInk,
		})
	}
	if opts.YLabel != "" {
		b.add(Primitive{
			Kind: KindText, Layer: LayerAxis,
			X: lo, Y: mid, DX: -46,
			Text: opts.YLabel, FontSize: fontAxis, Anchor: AnchorMiddle, Fill: colorInk,
			Rotate: 90,
		})
	}
	if opts.Title != "" {
		b.add(Primitive{
			Kind: KindText, Layer: LayerTitle,
			X: mid, Y: hi, DY: -22,
			Text: opts.Title, FontSize: fontTitle, Anchor: AnchorMiddle, Bold: true, Fill: colorInk,
		})
	}
}

// Ticks returns evenly spaced tick positions covering the axis, with a
// step of 1, 2, 2.5 or 5 times a power of ten.
func Ticks(axis layout.AxisRange) []float64 {
	if !axis.Valid() {
		return nil
	}
	step := niceStep(axis.Span() / 8)
	start := math.Ceil(axis.Min/step) * step
	var out []float64
	for i := 0; ; i++ {
		t := start + float64(i)*step
		if t > axis.Max+step*1e-9 {
			break
		}
		out = append(out, math.Round(t/step)*step)
	}
	return out
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarkerColor derives a stable fill color from label text.
func MarkerColor(label string) string {
	return colorful.Hsv(layout.LabelFraction(label)*360, 0.55, 0.85).Clamped().Hex()
}

// LabelColors returns text and halo colors legible on the given zone fill.
func LabelColors(z zone.Zone) (fill, halo string) {
	l, _, _ := z.RGB().Lab()
	if l < 0.5 {
		return colorPaper, colorInk
	}
	return colorInk, colorPaper
}

// labelAnchor aligns text away from its marker.
func labelAnchor(p layout.PlacedPoint) string {
	dx := p.LabelX - p.RenderX
	switch {
	case dx > 1e-9:
		return AnchorStart
	case dx < -1e-9:
		return AnchorEnd
	default:
		return AnchorMiddle
	}
}

func tooltip(p layout.PlacedPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s, %s) size %s",
		p.Label, formatTick(p.X), formatTick(p.Y), formatTick(p.Magnitude))
	if p.Zone != "" {
		fmt.Fprintf(&sb, " [%s]", p.Zone)
	}
	if p.Note != "" {
		sb.WriteString(": ")
		sb.WriteString(p.Note)
	}
	return sb.String()
}
