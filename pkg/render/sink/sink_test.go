package sink

import (
	"bytes"
	"context"
	"encoding/xml"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/zonemap/pkg/layout"
	"github.com/matzehuels/zonemap/pkg/render"
	"github.com/matzehuels/zonemap/pkg/scene"
	"github.com/matzehuels/zonemap/pkg/zone"
)

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	rs, _ := zone.Preset(zone.PresetStacey)
	s, err := scene.Build([]layout.Point{
		{Label: "Germany", X: 7, Y: 6, Magnitude: 900, Note: "core <market>"},
		{Label: "France & Co", X: 8, Y: 8, Magnitude: 400},
		{Label: "Spain", X: 8, Y: 8, Magnitude: 100},
	}, scene.Options{
		Axis:           layout.DefaultAxis,
		SizeScale:      8,
		Title:          "Country Assessment",
		XLabel:         "Certainty",
		YLabel:         "Alignment",
		Rules:          rs,
		ShowGrid:       true,
		ShowBoundaries: true,
		ShowZoneLabels: true,
		Width:          400,
		Height:         300,
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return s
}

func TestRenderSVG(t *testing.T) {
	s := testScene(t)
	svg := RenderSVG(s, WithTooltips())

	// well-formed XML
	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		if _, err := dec.Token(); err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("invalid XML: %v", err)
		}
	}

	out := string(svg)
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		"France &amp; Co",
		"core &lt;market&gt;",
		`paint-order="stroke"`,
		"<title>Country Assessment</title>",
		`stroke-dasharray="4 3"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if got := strings.Count(out, "<circle"); got != 3 {
		t.Errorf("circles = %d, want 3", got)
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	a := RenderSVG(testScene(t))
	b := RenderSVG(testScene(t))
	if !bytes.Equal(a, b) {
		t.Error("SVG output differs between identical scenes")
	}
}

func TestRenderJSON(t *testing.T) {
	s := testScene(t)
	a, err := RenderJSON(s)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	b, _ := RenderJSON(testScene(t))
	if !bytes.Equal(a, b) {
		t.Error("JSON output differs between identical scenes")
	}

	back, err := ReadJSON(a)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if len(back.Primitives) != len(s.Primitives) || len(back.Points) != 3 {
		t.Errorf("round trip lost data: %d primitives, %d points", len(back.Primitives), len(back.Points))
	}

	slim, _ := RenderJSON(s, WithJSONPrimitivesOnly())
	if strings.Contains(string(slim), `"render_x"`) {
		t.Error("WithJSONPrimitivesOnly should omit points")
	}
	if s.Points == nil {
		t.Error("RenderJSON modified the scene")
	}
}

func TestRenderPNG(t *testing.T) {
	s := testScene(t)
	data, err := RenderPNG(s, WithScale(1))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("size = %dx%d, want 400x300", b.Dx(), b.Dy())
	}
}

func TestRenderPNGScale(t *testing.T) {
	data, err := RenderPNG(testScene(t), WithScale(2), WithSupersample(1))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig() error: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("size = %dx%d, want 800x600", cfg.Width, cfg.Height)
	}
}

func TestRenderPDF(t *testing.T) {
	if !render.Available() {
		t.Skip("rsvg-convert not installed")
	}
	data, err := RenderPDF(context.Background(), testScene(t))
	if err != nil {
		t.Fatalf("RenderPDF() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
