package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// brailleCanvas is a grid of terminal cells, each holding a 2x4 braille
// dot mask, an optional background and foreground color, and an optional
// text rune that replaces the dots.
type brailleCanvas struct {
	w, h int // in cells
	mask [][]uint8
	bg   [][]string
	fg   [][]string
	text [][]rune
}

func newBrailleCanvas(w, h int) *brailleCanvas {
	c := &brailleCanvas{w: w, h: h}
	c.mask = make([][]uint8, h)
	c.bg = make([][]string, h)
	c.fg = make([][]string, h)
	c.text = make([][]rune, h)
	for i := 0; i < h; i++ {
		c.mask[i] = make([]uint8, w)
		c.bg[i] = make([]string, w)
		c.fg[i] = make([]string, w)
		c.text[i] = make([]rune, w)
	}
	return c
}

// dot bits by [column][row] within a cell.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// set turns on the dot at micro coordinates (2 per cell across, 4 down)
// and returns the cell it fell in.
func (c *brailleCanvas) set(mx, my int) (cx, cy int, ok bool) {
	if mx < 0 || my < 0 {
		return 0, 0, false
	}
	cx, cy = mx/2, my/4
	if cx >= c.w || cy >= c.h {
		return 0, 0, false
	}
	c.mask[cy][cx] |= brailleBits[mx%2][my%4]
	return cx, cy, true
}

// line draws from (x0, y0) to (x1, y1) in micro coordinates with
// Bresenham's algorithm. With dashed set, every other run of 3 dots is
// skipped.
func (c *brailleCanvas) line(x0, y0, x1, y1 int, color string, dashed bool) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for step := 0; ; step++ {
		if !dashed || (step/3)%2 == 0 {
			if cx, cy, ok := c.set(x0, y0); ok && color != "" && c.fg[cy][cx] == "" {
				c.fg[cy][cx] = color
			}
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// disc fills a circle of radius r micro-pixels around (mx, my). Cells it
// touches take color as foreground, overriding earlier strokes.
func (c *brailleCanvas) disc(mx, my, r int, color string) {
	for y := my - r; y <= my+r; y++ {
		for x := mx - r; x <= mx+r; x++ {
			ddx, ddy := x-mx, y-my
			if ddx*ddx+ddy*ddy > r*r {
				continue
			}
			if cx, cy, ok := c.set(x, y); ok {
				c.fg[cy][cx] = color
			}
		}
	}
}

// fill sets the background of one cell.
func (c *brailleCanvas) fill(cx, cy int, color string) {
	if cx >= 0 && cy >= 0 && cx < c.w && cy < c.h {
		c.bg[cy][cx] = color
	}
}

// write puts s on row cy starting at column cx, clipped to the canvas.
func (c *brailleCanvas) write(cx, cy int, s, color string) {
	if cy < 0 || cy >= c.h {
		return
	}
	for _, r := range s {
		if cx >= c.w {
			return
		}
		if cx >= 0 {
			c.text[cy][cx] = r
			c.fg[cy][cx] = color
		}
		cx++
	}
}

// lines renders the canvas, one styled string per row. Runs of cells with
// the same colors share one style.
func (c *brailleCanvas) lines(defaultFG string) []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var (
			b     strings.Builder
			run   []rune
			runFG string
			runBG string
		)
		flush := func() {
			if len(run) == 0 {
				return
			}
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(runFG))
			if runBG != "" {
				st = st.Background(lipgloss.Color(runBG))
			}
			b.WriteString(st.Render(string(run)))
			run = run[:0]
		}
		for x := 0; x < c.w; x++ {
			r := c.text[y][x]
			if r == 0 {
				r = ' '
				if m := c.mask[y][x]; m != 0 {
					r = rune(0x2800 + int(m))
				}
			}
			fg := c.fg[y][x]
			if fg == "" {
				fg = defaultFG
			}
			if fg != runFG || c.bg[y][x] != runBG {
				flush()
				runFG, runBG = fg, c.bg[y][x]
			}
			run = append(run, r)
		}
		flush()
		out[y] = b.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
