package scene

// Kind is the shape of a primitive.
type Kind string

const (
	KindRect   Kind = "rect"
	KindLine   Kind = "line"
	KindText   Kind = "text"
	KindMarker Kind = "marker"
)

// Layer names the paint stage a primitive belongs to.
type Layer string

const (
	LayerZone     Layer = "zone"
	LayerGrid     Layer = "grid"
	LayerBoundary Layer = "boundary"
	LayerZoneName Layer = "zone_name"
	LayerMarker   Layer = "marker"
	LayerLeader   Layer = "leader"
	LayerLabel    Layer = "label"
	LayerAxis     Layer = "axis"
	LayerTitle    Layer = "title"
)

// order is the paint rank of each layer.
var order = map[Layer]int{
	LayerZone:     0,
	LayerGrid:     1,
	LayerBoundary: 1,
	LayerZoneName: 2,
	LayerMarker:   3,
	LayerLeader:   4,
	LayerLabel:    5,
	LayerAxis:     6,
	LayerTitle:    6,
}

// Rank returns the paint rank of the layer. Higher ranks paint later.
func (l Layer) Rank() int { return order[l] }

// Text anchors.
const (
	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"
)

// Primitive is one drawable element.
//
// Geometry by kind:
//   - rect: corners (X, Y) and (X2, Y2)
//   - line: from (X, Y) to (X2, Y2)
//   - text: anchor point (X, Y)
//   - marker: center (X, Y), radius R in pixels (1pt = 1px)
type Primitive struct {
	Kind  Kind  `json:"kind"`
	Layer Layer `json:"layer"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`
	R  float64 `json:"r,omitempty"`

	// DX and DY shift the projected position, in pixels. DX2 and DY2
	// shift the second point.
	DX  float64 `json:"dx,omitempty"`
	DY  float64 `json:"dy,omitempty"`
	DX2 float64 `json:"dx2,omitempty"`
	DY2 float64 `json:"dy2,omitempty"`

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Dashed      bool    `json:"dashed,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`

	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Anchor   string  `json:"anchor,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
	Halo     string  `json:"halo,omitempty"`
	Rotate   float64 `json:"rotate,omitempty"` // degrees, counterclockwise
	Tooltip  string  `json:"tooltip,omitempty"`
}
