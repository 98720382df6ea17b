package scene

import (
	"github.com/matzehuels/zonemap/pkg/layout"
)

// Margins is the space around the plot area, in pixels.
type Margins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultMargins leave room for tick labels, axis titles and the title.
var DefaultMargins = Margins{Left: 72, Right: 32, Top: 56, Bottom: 64}

// Scene is a fully laid out chart.
type Scene struct {
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
	Margins    Margins              `json:"margins"`
	Axis       layout.AxisRange     `json:"axis"`
	Title      string               `json:"title,omitempty"`
	Points     []layout.PlacedPoint `json:"points"`
	Primitives []Primitive          `json:"primitives"`
}

// Plot returns the pixel bounds of the plot area.
func (s *Scene) Plot() (left, top, right, bottom float64) {
	return s.Margins.Left, s.Margins.Top, s.Width - s.Margins.Right, s.Height - s.Margins.Bottom
}

// Project maps a data coordinate to pixels. The y axis points down in
// pixel space.
func (s *Scene) Project(x, y float64) (px, py float64) {
	left, top, right, bottom := s.Plot()
	span := s.Axis.Span()
	if span <= 0 {
		return left, bottom
	}
	px = left + (x-s.Axis.Min)/span*(right-left)
	py = bottom - (y-s.Axis.Min)/span*(bottom-top)
	return px, py
}

// Position returns the pixel position of p with its offset applied.
func (s *Scene) Position(p Primitive) (px, py float64) {
	px, py = s.Project(p.X, p.Y)
	return px + p.DX, py + p.DY
}

// End returns the pixel position of a rect or line's second point.
func (s *Scene) End(p Primitive) (px, py float64) {
	px, py = s.Project(p.X2, p.Y2)
	return px + p.DX2, py + p.DY2
}

// Layer returns the primitives of one layer, in paint order.
func (s *Scene) Layer(l Layer) []Primitive {
	var out []Primitive
	for _, p := range s.Primitives {
		if p.Layer == l {
			out = append(out, p)
		}
	}
	return out
}
