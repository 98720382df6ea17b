package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/matzehuels/zonemap/pkg/scene"
)

const defaultFont = "Helvetica, Arial, sans-serif"

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	font     string
	tooltips bool
	bg       string
}

func WithFont(family string) SVGOption  { return func(r *svgRenderer) { r.font = family } }
func WithTooltips() SVGOption           { return func(r *svgRenderer) { r.tooltips = true } }
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.bg = c } }

func RenderSVG(s *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{font: defaultFont, bg: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		num(s.Width), num(s.Height), s.Width, s.Height, escapeXML(r.font))
	if s.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(s.Title))
	}
	if r.bg != "" && r.bg != "none" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", num(s.Width), num(s.Height), r.bg)
	}

	for _, p := range s.Primitives {
		switch p.Kind {
		case scene.KindRect:
			r.rect(&buf, s, p)
		case scene.KindLine:
			r.line(&buf, s, p)
		case scene.KindMarker:
			r.marker(&buf, s, p)
		case scene.KindText:
			r.text(&buf, s, p)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) rect(buf *bytes.Buffer, s *scene.Scene, p scene.Primitive) {
	x0, y0 := s.Position(p)
	x1, y1 := s.End(p)
	fmt.Fprintf(buf, `  <rect class="%s" x="%s" y="%s" width="%s" height="%s"%s/>`+"\n",
		p.Layer, num(min(x0, x1)), num(min(y0, y1)), num(abs(x1-x0)), num(abs(y1-y0)), paint(p))
}

func (r *svgRenderer) line(buf *bytes.Buffer, s *scene.Scene, p scene.Primitive) {
	x0, y0 := s.Position(p)
	x1, y1 := s.End(p)
	fmt.Fprintf(buf, `  <line class="%s" x1="%s" y1="%s" x2="%s" y2="%s"%s/>`+"\n",
		p.Layer, num(x0), num(y0), num(x1), num(y1), paint(p))
}

func (r *svgRenderer) marker(buf *bytes.Buffer, s *scene.Scene, p scene.Primitive) {
	x, y := s.Position(p)
	if r.tooltips && p.Tooltip != "" {
		fmt.Fprintf(buf, `  <circle class="%s" cx="%s" cy="%s" r="%s"%s><title>%s</title></circle>`+"\n",
			p.Layer, num(x), num(y), num(p.R), paint(p), escapeXML(p.Tooltip))
		return
	}
	fmt.Fprintf(buf, `  <circle class="%s" cx="%s" cy="%s" r="%s"%s/>`+"\n",
		p.Layer, num(x), num(y), num(p.R), paint(p))
}

func (r *svgRenderer) text(buf *bytes.Buffer, s *scene.Scene, p scene.Primitive) {
	x, y := s.Position(p)
	attrs := fmt.Sprintf(`x="%s" y="%s" font-size="%s" text-anchor="%s" dominant-baseline="central"`,
		num(x), num(y), num(p.FontSize), anchor(p.Anchor))
	if p.Bold {
		attrs += ` font-weight="bold"`
	}
	if p.Rotate != 0 {
		attrs += fmt.Sprintf(` transform="rotate(%s %s %s)"`, num(-p.Rotate), num(x), num(y))
	}
	if p.Halo != "" {
		attrs += fmt.Sprintf(` stroke="%s" stroke-width="2.5" stroke-linejoin="round" paint-order="stroke"`, p.Halo)
	}
	fmt.Fprintf(buf, `  <text class="%s" %s fill="%s">%s</text>`+"\n",
		p.Layer, attrs, orDefault(p.Fill, "#000000"), escapeXML(p.Text))
}

// paint renders fill, stroke and opacity attributes.
func paint(p scene.Primitive) string {
	var b bytes.Buffer
	fill := p.Fill
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(&b, ` fill="%s"`, fill)
	if p.Stroke != "" {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s"`, p.Stroke, num(orOne(p.StrokeWidth)))
	}
	if p.Dashed {
		b.WriteString(` stroke-dasharray="4 3"`)
	}
	if p.Opacity > 0 && p.Opacity < 1 {
		fmt.Fprintf(&b, ` fill-opacity="%s"`, num(p.Opacity))
	}
	return b.String()
}

func anchor(a string) string {
	switch a {
	case scene.AnchorMiddle, scene.AnchorEnd:
		return a
	}
	return scene.AnchorStart
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func orOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
