package cli

import (
	"strings"
	"testing"
)

func TestBrailleSet(t *testing.T) {
	c := newBrailleCanvas(2, 1)

	tests := []struct {
		mx, my int
		cx     int
		bit    uint8
		ok     bool
	}{
		{0, 0, 0, 0x01, true},
		{1, 0, 0, 0x08, true},
		{0, 3, 0, 0x40, true},
		{3, 3, 1, 0x80, true},
		{4, 0, 0, 0, false},
		{0, 4, 0, 0, false},
		{-1, 0, 0, 0, false},
	}
	for _, tt := range tests {
		cx, _, ok := c.set(tt.mx, tt.my)
		if ok != tt.ok {
			t.Errorf("set(%d, %d) ok = %v, want %v", tt.mx, tt.my, ok, tt.ok)
			continue
		}
		if ok && (cx != tt.cx || c.mask[0][cx]&tt.bit == 0) {
			t.Errorf("set(%d, %d) did not set bit %#x in cell %d", tt.mx, tt.my, tt.bit, tt.cx)
		}
	}
	if c.mask[0][0] != 0x01|0x08|0x40 {
		t.Errorf("cell 0 mask = %#x", c.mask[0][0])
	}
}

func TestBrailleLine(t *testing.T) {
	c := newBrailleCanvas(4, 1)
	c.line(0, 0, 7, 0, "#ff0000", false)
	for x := 0; x < 4; x++ {
		if c.mask[0][x] != 0x01|0x08 {
			t.Errorf("solid cell %d mask = %#x, want top row", x, c.mask[0][x])
		}
		if c.fg[0][x] != "#ff0000" {
			t.Errorf("cell %d fg = %q", x, c.fg[0][x])
		}
	}

	d := newBrailleCanvas(4, 1)
	d.line(0, 0, 7, 0, "", true)
	dots := 0
	for x := 0; x < 4; x++ {
		for _, b := range []uint8{0x01, 0x08} {
			if d.mask[0][x]&b != 0 {
				dots++
			}
		}
	}
	if dots >= 8 || dots == 0 {
		t.Errorf("dashed line set %d of 8 dots", dots)
	}
}

func TestBrailleWriteAndLines(t *testing.T) {
	c := newBrailleCanvas(6, 2)
	c.disc(1, 5, 1, "#0000ff")
	c.write(4, 0, "Label", "#000000")
	c.fill(0, 1, "#c8e6c9")

	lines := c.lines("#333333")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "La") || strings.Contains(lines[0], "Lab") {
		t.Errorf("text not clipped at the edge: %q", lines[0])
	}
	if !strings.ContainsRune(lines[1], 0x2800+rune(c.mask[1][0])) {
		t.Errorf("row 1 missing the disc glyph: %q", lines[1])
	}
}
