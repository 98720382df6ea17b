package sink

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/zonemap/pkg/scene"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale       float64
	supersample int
	bg          color.Color
}

// WithScale sets the output scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithSupersample sets how many times larger the canvas is drawn before
// downsampling (default 2, 1 disables).
func WithSupersample(n int) PNGOption {
	return func(r *pngRenderer) {
		if n >= 1 {
			r.supersample = n
		}
	}
}

// WithPNGBackground sets the canvas color.
func WithPNGBackground(c color.Color) PNGOption {
	return func(r *pngRenderer) { r.bg = c }
}

const (
	maxPNGPixels = 64 << 20
	haloWidth    = 1.2
)

var (
	fontsOnce sync.Once
	fontsErr  error
	fontReg   *opentype.Font
	fontBold  *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if fontReg, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		fontBold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// RenderPNG draws the scene natively and encodes it as PNG.
func RenderPNG(s *scene.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2, supersample: 2, bg: color.White}
	for _, opt := range opts {
		opt(&r)
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	k := r.scale * float64(r.supersample)
	w, h := int(math.Ceil(s.Width*k)), int(math.Ceil(s.Height*k))
	if w <= 0 || h <= 0 || w*h > maxPNGPixels {
		return nil, fmt.Errorf("png canvas %dx%d out of bounds", w, h)
	}

	c := &canvas{dc: gg.NewContext(w, h), s: s, k: k, faces: map[faceKey]font.Face{}}
	defer c.close()

	c.dc.SetColor(r.bg)
	c.dc.Clear()
	for _, p := range s.Primitives {
		switch p.Kind {
		case scene.KindRect:
			c.rect(p)
		case scene.KindLine:
			c.line(p)
		case scene.KindMarker:
			c.marker(p)
		case scene.KindText:
			c.text(p)
		}
	}

	img := c.dc.Image()
	if r.supersample > 1 {
		img = imaging.Resize(img, w/r.supersample, h/r.supersample, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type faceKey struct {
	size float64
	bold bool
}

// canvas draws scene primitives scaled by k.
type canvas struct {
	dc    *gg.Context
	s     *scene.Scene
	k     float64
	faces map[faceKey]font.Face
}

func (c *canvas) close() {
	for _, f := range c.faces {
		f.Close()
	}
}

func (c *canvas) pos(p scene.Primitive) (float64, float64) {
	x, y := c.s.Position(p)
	return x * c.k, y * c.k
}

func (c *canvas) end(p scene.Primitive) (float64, float64) {
	x, y := c.s.End(p)
	return x * c.k, y * c.k
}

func (c *canvas) rect(p scene.Primitive) {
	x0, y0 := c.pos(p)
	x1, y1 := c.end(p)
	c.dc.DrawRectangle(min(x0, x1), min(y0, y1), math.Abs(x1-x0), math.Abs(y1-y0))
	c.paint(p)
}

func (c *canvas) line(p scene.Primitive) {
	x0, y0 := c.pos(p)
	x1, y1 := c.end(p)
	c.dc.DrawLine(x0, y0, x1, y1)
	c.paint(p)
}

func (c *canvas) marker(p scene.Primitive) {
	x, y := c.pos(p)
	c.dc.DrawCircle(x, y, p.R*c.k)
	c.paint(p)
}

// paint fills and strokes the current path.
func (c *canvas) paint(p scene.Primitive) {
	hasFill := p.Fill != "" && p.Fill != "none"
	if hasFill {
		alpha := 1.0
		if p.Opacity > 0 {
			alpha = p.Opacity
		}
		c.setColor(p.Fill, alpha)
		if p.Stroke != "" {
			c.dc.FillPreserve()
		} else {
			c.dc.Fill()
		}
	}
	if p.Stroke == "" {
		c.dc.ClearPath()
		return
	}
	c.setColor(p.Stroke, 1)
	c.dc.SetLineWidth(orOne(p.StrokeWidth) * c.k)
	if p.Dashed {
		c.dc.SetDash(4*c.k, 3*c.k)
	}
	c.dc.Stroke()
	c.dc.SetDash()
}

func (c *canvas) text(p scene.Primitive) {
	if p.Text == "" {
		return
	}
	c.dc.SetFontFace(c.face(p.FontSize, p.Bold))
	x, y := c.pos(p)

	ax := 0.0
	switch p.Anchor {
	case scene.AnchorMiddle:
		ax = 0.5
	case scene.AnchorEnd:
		ax = 1
	}

	c.dc.Push()
	if p.Rotate != 0 {
		c.dc.RotateAbout(gg.Radians(-p.Rotate), x, y)
	}
	if p.Halo != "" {
		c.setColor(p.Halo, 1)
		d := haloWidth * c.k
		for i := 0; i < 8; i++ {
			a := float64(i) * math.Pi / 4
			c.dc.DrawStringAnchored(p.Text, x+d*math.Cos(a), y+d*math.Sin(a), ax, 0.35)
		}
	}
	c.setColor(orDefault(p.Fill, "#000000"), 1)
	c.dc.DrawStringAnchored(p.Text, x, y, ax, 0.35)
	c.dc.Pop()
}

func (c *canvas) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f
	}
	src := fontReg
	if bold {
		src = fontBold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size * c.k,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	c.faces[key] = f
	return f
}

func (c *canvas) setColor(hex string, alpha float64) {
	col, err := colorful.Hex(hex)
	if err != nil {
		c.dc.SetRGBA(0, 0, 0, alpha)
		return
	}
	c.dc.SetRGBA(col.R, col.G, col.B, alpha)
}
