package zone

import (
	"fmt"
	"testing"

	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/layout"
)

var (
	base     = Zone{Name: "Base", Color: "#eeeeee"}
	override = Zone{Name: "Override", Color: "#ff0000"}
)

func mustClassifier(t *testing.T, rules []Rule) *Classifier {
	t.Helper()
	c, err := NewClassifier(layout.AxisRange{Min: 0, Max: 9}, rules, Unclassified)
	if err != nil {
		t.Fatalf("NewClassifier() error: %v", err)
	}
	return c
}

func TestColorAtLastRuleWins(t *testing.T) {
	c := mustClassifier(t, []Rule{
		{Rect{0, 9, 0, 9}, base},
		{Rect{7, 9, 7, 9}, override},
	})

	tests := []struct {
		x, y float64
		want string
	}{
		{8, 8, "Override"},
		{5, 5, "Base"},
		{7, 7, "Override"},
		{9, 9, "Override"},
		{6.99, 8, "Base"},
		{0, 0, "Base"},
	}
	for _, tt := range tests {
		if got := c.ColorAt(tt.x, tt.y); got.Name != tt.want {
			t.Errorf("ColorAt(%v, %v) = %q, want %q", tt.x, tt.y, got.Name, tt.want)
		}
	}
}

func TestColorAtEdges(t *testing.T) {
	c := mustClassifier(t, []Rule{
		{Rect{0, 5, 0, 9}, base},
		{Rect{5, 9, 0, 9}, override},
		{Rect{2, 3, 2, 3}, Zone{Name: "Spot", Color: "#00ff00"}},
	})

	tests := []struct {
		x, y float64
		want string
	}{
		{5, 1, "Override"}, // lower edge closed, upper edge of Base open
		{4.999, 1, "Base"},
		{9, 9, "Override"}, // upper edge on domain max is closed
		{3, 3, "Spot"},     // final rule closed on all sides
		{2, 2, "Spot"},
		{3.001, 3, "Base"},
		{-1, 1, "Unclassified"},
	}
	for _, tt := range tests {
		if got := c.ColorAt(tt.x, tt.y); got.Name != tt.want {
			t.Errorf("ColorAt(%v, %v) = %q, want %q", tt.x, tt.y, got.Name, tt.want)
		}
	}
}

func TestPresetsTotal(t *testing.T) {
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			rs, err := Preset(name)
			if err != nil {
				t.Fatalf("Preset() error: %v", err)
			}
			c, err := rs.Classifier()
			if err != nil {
				t.Fatalf("Classifier() error: %v", err)
			}
			if err := c.CheckTotal(); err != nil {
				t.Errorf("CheckTotal() error: %v", err)
			}

			// dense sweep as a cross-check
			for x := 1.0; x <= 9; x += 0.125 {
				for y := 1.0; y <= 9; y += 0.125 {
					if z := c.ColorAt(x, y); z.Name == Unclassified.Name {
						t.Fatalf("ColorAt(%v, %v) unclassified", x, y)
					}
				}
			}
		})
	}
}

func TestStaceyLayers(t *testing.T) {
	rs, _ := Preset(PresetStacey)
	c, err := rs.Classifier()
	if err != nil {
		t.Fatalf("Classifier() error: %v", err)
	}

	tests := []struct {
		x, y float64
		want string
	}{
		{2, 2, "Simple"},
		{5, 2, "Complicated"},
		{2, 5, "Complicated"},
		{5, 5, "Complicated"},
		{7, 2, "Complex"},
		{2, 7, "Complex"},
		{7, 7, "Complex"},
		{8, 8, "Chaotic"},
		{9, 9, "Chaotic"},
		{9, 1, "Complex"},
	}
	for _, tt := range tests {
		if got := c.ColorAt(tt.x, tt.y); got.Name != tt.want {
			t.Errorf("ColorAt(%v, %v) = %q, want %q", tt.x, tt.y, got.Name, tt.want)
		}
	}
}

func TestCheckTotalGap(t *testing.T) {
	c := mustClassifier(t, []Rule{
		{Rect{0, 4, 0, 9}, base},
		{Rect{5, 9, 0, 9}, override},
	})
	err := c.CheckTotal()
	if err == nil {
		t.Fatal("CheckTotal() = nil, want error for gap at x in [4,5)")
	}
	if !errors.Is(err, errors.ErrCodeInvalidZones) {
		t.Errorf("CheckTotal() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidZones)
	}
}

func TestNewClassifierValidation(t *testing.T) {
	axis := layout.DefaultAxis
	tests := []struct {
		name  string
		axis  layout.AxisRange
		rules []Rule
		code  errors.Code
	}{
		{"no rules", axis, nil, errors.ErrCodeInvalidZones},
		{"bad axis", layout.AxisRange{Min: 5, Max: 5}, []Rule{{Rect{1, 9, 1, 9}, base}}, errors.ErrCodeInvalidOptions},
		{"empty rect", axis, []Rule{{Rect{3, 3, 1, 9}, base}}, errors.ErrCodeInvalidZones},
		{"bad color", axis, []Rule{{Rect{1, 9, 1, 9}, Zone{Name: "X", Color: "red"}}}, errors.ErrCodeInvalidZones},
		{"no name", axis, []Rule{{Rect{1, 9, 1, 9}, Zone{Color: "#ffffff"}}}, errors.ErrCodeInvalidZones},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.axis, tt.rules, Unclassified)
			if !errors.Is(err, tt.code) {
				t.Errorf("NewClassifier() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestZonesAndBoundaries(t *testing.T) {
	rs, _ := Preset(PresetStacey)
	c, _ := rs.Classifier()

	var names []string
	for _, z := range c.Zones() {
		names = append(names, z.Name)
	}
	want := []string{"Simple", "Complicated", "Complex", "Chaotic"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("Zones() = %v, want %v", names, want)
	}

	xs, ys := c.Boundaries()
	if fmt.Sprint(xs) != "[4 6 8]" || fmt.Sprint(ys) != "[4 6 8]" {
		t.Errorf("Boundaries() = %v, %v, want [4 6 8] twice", xs, ys)
	}
}

func TestLabelAnchor(t *testing.T) {
	rs, _ := Preset(PresetStacey)
	c, _ := rs.Classifier()

	for _, z := range c.Zones() {
		x, y, ok := c.LabelAnchor(z.Name)
		if !ok {
			t.Errorf("LabelAnchor(%q) not found", z.Name)
			continue
		}
		if got := c.ColorAt(x, y); got.Name != z.Name {
			t.Errorf("LabelAnchor(%q) = (%v, %v) lies in %q", z.Name, x, y, got.Name)
		}
	}

	pinned := c.WithLabels([]Label{{Zone: "Simple", X: 2, Y: 3}})
	if x, y, _ := pinned.LabelAnchor("Simple"); x != 2 || y != 3 {
		t.Errorf("explicit LabelAnchor = (%v, %v), want (2, 3)", x, y)
	}
	if _, _, ok := c.LabelAnchor("Nope"); ok {
		t.Error("LabelAnchor(unknown) ok = true")
	}
}

func TestLabelAnchorHidden(t *testing.T) {
	c := mustClassifier(t, []Rule{
		{Rect{2, 3, 2, 3}, Zone{Name: "Hidden", Color: "#000000"}},
		{Rect{0, 9, 0, 9}, base},
	})
	if _, _, ok := c.LabelAnchor("Hidden"); ok {
		t.Error("LabelAnchor() ok = true for fully covered zone")
	}
}

func TestPresetUnknown(t *testing.T) {
	if _, err := Preset("nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Preset(nope) error = %v, want NOT_FOUND", err)
	}
}

func TestScaled(t *testing.T) {
	rs, _ := Preset(PresetQuadrant)
	scaled := rs.Scaled(layout.AxisRange{Min: 0, Max: 16})
	if got := scaled.Rules[0].X1; got != 8 {
		t.Errorf("scaled midpoint = %v, want 8", got)
	}
	if rs.Rules[0].X1 != 5 {
		t.Error("Scaled() modified the receiver")
	}
	c, err := scaled.Classifier()
	if err != nil {
		t.Fatalf("Classifier() error: %v", err)
	}
	if err := c.CheckTotal(); err != nil {
		t.Errorf("CheckTotal() error: %v", err)
	}
}

func ExampleClassifier_ColorAt() {
	rules := []Rule{
		FileRule("Base", "#eeeeee", 0, 9, 0, 9),
		FileRule("Override", "#ff0000", 7, 9, 7, 9),
	}
	c, _ := NewClassifier(layout.AxisRange{Min: 0, Max: 9}, rules, Unclassified)
	fmt.Println(c.ColorAt(8, 8).Name)
	fmt.Println(c.ColorAt(5, 5).Name)
	// Output:
	// Override
	// Base
}
