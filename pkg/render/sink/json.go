package sink

import (
	"encoding/json"

	"github.com/matzehuels/zonemap/pkg/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent   bool
	noPoints bool
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONPrimitivesOnly omits the per-point layout records, leaving only
// the frame and the primitive list.
func WithJSONPrimitivesOnly() JSONOption { return func(r *jsonRenderer) { r.noPoints = true } }

// RenderJSON encodes the scene. Field order and float formatting are fixed,
// so equal scenes encode to equal bytes.
func RenderJSON(s *scene.Scene, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := *s
	if r.noPoints {
		out.Points = nil
	}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

// ReadJSON decodes a scene written by RenderJSON.
func ReadJSON(data []byte) (*scene.Scene, error) {
	var s scene.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
