package tui

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

// brailleBuf is a 2x4 micro-pixel grid per terminal cell. Each cell also
// remembers the color of the last stroke that touched it.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
	c    [][]lipgloss.TerminalColor
	pen  lipgloss.TerminalColor
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	c := make([][]lipgloss.TerminalColor, h)
	for i := range m {
		m[i] = make([]uint8, w)
		c[i] = make([]lipgloss.TerminalColor, w)
	}
	return &brailleBuf{w: w, h: h, m: m, c: c}
}

func (b *brailleBuf) setPen(col lipgloss.TerminalColor) { b.pen = col }

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	b.m[cy][cx] |= bit
	b.c[cy][cx] = b.pen
}

// drawLineMicro draws a line on the microgrid using Bresenham. The segment
// is clipped to the grid first so only visible pixels are walked.
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	fx0, fy0, fx1, fy1, ok := clipLine(float64(x0), float64(y0), float64(x1), float64(y1), float64(b.w*2-1), float64(b.h*4-1))
	if !ok {
		return
	}
	x0, y0 = int(math.Round(fx0)), int(math.Round(fy0))
	x1, y1 = int(math.Round(fx1)), int(math.Round(fy1))
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
	for {
		b.setPixel(x0, y0)
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

// clipLine clips a segment to the box [0,xmax]x[0,ymax] (Liang-Barsky).
func clipLine(x0, y0, x1, y1, xmax, ymax float64) (float64, float64, float64, float64, bool) {
	if xmax < 0 || ymax < 0 {
		return 0, 0, 0, 0, false
	}
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{{-dx, x0}, {dx, xmax - x0}, {-dy, y0}, {dy, ymax - y0}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// glyph returns the braille rune at cell (x, y), or 0 when empty.
func (b *brailleBuf) glyph(x, y int) (rune, lipgloss.TerminalColor) {
	mask := b.m[y][x]
	if mask == 0 {
		return 0, nil
	}
	return rune(0x2800 + int(mask)), b.c[y][x]
}
