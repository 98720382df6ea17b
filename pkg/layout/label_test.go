package layout

import (
	"math"
	"testing"
)

func TestLabelAngle(t *testing.T) {
	tests := []string{"", "Germany", "France", "Côte d'Ivoire", "日本", "a"}
	for _, s := range tests {
		a := LabelAngle(s)
		if a < 0 || a >= 2*math.Pi || math.IsNaN(a) {
			t.Errorf("LabelAngle(%q) = %v, want [0, 2π)", s, a)
		}
		if b := LabelAngle(s); a != b {
			t.Errorf("LabelAngle(%q) not deterministic: %v != %v", s, a, b)
		}
	}
}

func TestLabelAngleKnownValue(t *testing.T) {
	// FNV-1a-64 of the empty input is the offset basis.
	const basis = 0xcbf29ce484222325
	want := float64(uint64(basis)>>11) / (1 << 53) * 2 * math.Pi
	if got := LabelAngle(""); got != want {
		t.Errorf("LabelAngle(\"\") = %v, want %v", got, want)
	}
}

func TestLabelAngleDistinct(t *testing.T) {
	if LabelAngle("A") == LabelAngle("B") {
		t.Error("LabelAngle(A) == LabelAngle(B)")
	}
	if LabelAngle("Germany") == LabelAngle("germany") {
		t.Error("LabelAngle should be case sensitive")
	}
}

func TestPlaceLabelSingle(t *testing.T) {
	opts := DefaultLabelOptions(DefaultAxis)
	pl := Placement{RenderX: 5, RenderY: 5, CenterX: 5, CenterY: 5, GroupSize: 1}

	pos := PlaceLabel("Germany", pl, DefaultAxis, opts)
	d := math.Hypot(pos.X-5, pos.Y-5)
	if !near(d, opts.SingleDistance) {
		t.Errorf("label distance = %v, want %v", d, opts.SingleDistance)
	}
	if !pos.HasLeader {
		t.Error("HasLeader = false, want true for offset > Epsilon")
	}

	a := LabelAngle("Germany")
	if !near(pos.X, 5+opts.SingleDistance*math.Cos(a)) {
		t.Errorf("label X = %v, not along hash angle", pos.X)
	}
}

func TestPlaceLabelSingleNoLeader(t *testing.T) {
	opts := DefaultLabelOptions(DefaultAxis)
	opts.SingleDistance = opts.Epsilon / 2
	pl := Placement{RenderX: 5, RenderY: 5, GroupSize: 1}

	if pos := PlaceLabel("x", pl, DefaultAxis, opts); pos.HasLeader {
		t.Error("HasLeader = true, want false for offset <= Epsilon")
	}
}

func TestPlaceLabelsRing(t *testing.T) {
	pts := []Point{{Label: "A", X: 8, Y: 8}, {Label: "B", X: 8, Y: 8}}
	dopts := DefaultDeclusterOptions(DefaultAxis)
	lopts := DefaultLabelOptions(DefaultAxis)
	pl := Decluster(pts, DefaultAxis, dopts)
	got := PlaceLabels(pts, pl, DefaultAxis, lopts)

	padded := DefaultAxis.Inset(lopts.Pad)
	for i, pos := range got {
		if !pos.HasLeader {
			t.Errorf("label %d HasLeader = false, want true for clustered point", i)
		}
		if !padded.Contains(pos.X) || !padded.Contains(pos.Y) {
			t.Errorf("label %d at (%v, %v) outside padded domain", i, pos.X, pos.Y)
		}
		// label lies further out than the marker along the same ring angle
		dm := math.Hypot(pl[i].RenderX-pl[i].CenterX, pl[i].RenderY-pl[i].CenterY)
		dl := math.Hypot(pos.X-pl[i].CenterX, pos.Y-pl[i].CenterY)
		if dl <= dm {
			t.Errorf("label %d distance %v not beyond marker distance %v", i, dl, dm)
		}
	}
	if got[0] == got[1] {
		t.Error("ring labels share a position")
	}
}

func TestPlaceLabelClamped(t *testing.T) {
	opts := DefaultLabelOptions(DefaultAxis)
	opts.SingleDistance = 5
	pl := Placement{RenderX: 8.75, RenderY: 8.75, GroupSize: 1}

	pos := PlaceLabel("edge", pl, DefaultAxis, opts)
	padded := DefaultAxis.Inset(opts.Pad)
	if !padded.Contains(pos.X) || !padded.Contains(pos.Y) {
		t.Errorf("label at (%v, %v) outside padded domain", pos.X, pos.Y)
	}
}

func TestCornerClusterLabels(t *testing.T) {
	pts := []Point{
		{Label: "A", X: 9, Y: 9},
		{Label: "B", X: 9, Y: 9},
		{Label: "C", X: 9, Y: 9},
		{Label: "D", X: 9, Y: 9},
	}
	lopts := DefaultLabelOptions(DefaultAxis)
	got := Place(pts, DefaultAxis, 8, DefaultDeclusterOptions(DefaultAxis), lopts)

	padded := DefaultAxis.Inset(lopts.Pad)
	for _, p := range got {
		if !p.HasLeader {
			t.Errorf("%s HasLeader = false, want true", p.Label)
		}
		if !padded.Contains(p.LabelX) || !padded.Contains(p.LabelY) {
			t.Errorf("%s label at (%v, %v) outside padded domain", p.Label, p.LabelX, p.LabelY)
		}
		if d := math.Hypot(p.LabelX-p.RenderX, p.LabelY-p.RenderY); d < lopts.ExtraPush-1e-9 {
			t.Errorf("%s label %v from marker, want >= %v", p.Label, d, lopts.ExtraPush)
		}
	}
}

func TestPlaceLabelSingleAtEdge(t *testing.T) {
	opts := DefaultLabelOptions(DefaultAxis)
	padded := DefaultAxis.Inset(opts.Pad)
	labels := []string{"A", "B", "C", "Germany", "France", "Japan", "Brazil", "Kenya"}
	corners := []float64{padded.Min, padded.Max}

	for _, cx := range corners {
		for _, cy := range corners {
			pl := Placement{RenderX: cx, RenderY: cy, CenterX: cx, CenterY: cy, GroupSize: 1}
			for _, s := range labels {
				pos := PlaceLabel(s, pl, DefaultAxis, opts)
				d := math.Hypot(pos.X-cx, pos.Y-cy)
				if !near(d, opts.SingleDistance) {
					t.Errorf("%q at (%v, %v): label distance = %v, want %v", s, cx, cy, d, opts.SingleDistance)
				}
				if !pos.HasLeader {
					t.Errorf("%q at (%v, %v): HasLeader = false", s, cx, cy)
				}
			}
		}
	}
}
