package tui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

type cell struct {
	r      rune
	fg, bg lipgloss.TerminalColor
}

// layout places the canvas and sizes the side panel, then moves the
// editor's device origin to the canvas corner.
func (m *Model) layout() {
	side := 0
	if m.panel != panelNone {
		side = sidebarWidth + 1
	}
	m.canvasX, m.canvasY = side, 1
	m.canvasW = max(10, m.width-side)
	m.canvasH = max(4, m.height-3)
	m.l.SetSize(sidebarWidth-2, m.canvasH-2)
	m.tbl.SetHeight(max(3, m.canvasH-4))
	m.ta.SetWidth(sidebarWidth - 4)
	m.ta.SetHeight(min(m.canvasH-4, 12))
	m.ed.SetOrigin(float64(m.canvasX)*m.cfg.CellWidth, float64(m.canvasY)*m.cfg.CellHeight)
}

// devicePoint is the pixel position of the center of screen cell (x, y).
func (m Model) devicePoint(x, y int) geom.Point {
	return geom.Point{X: (float64(x) + 0.5) * m.cfg.CellWidth, Y: (float64(y) + 0.5) * m.cfg.CellHeight}
}

func (m Model) inCanvas(x, y int) bool {
	return x >= m.canvasX && x < m.canvasX+m.canvasW && y >= m.canvasY && y < m.canvasY+m.canvasH
}

// toMicro maps a world point onto the canvas braille grid.
func (m Model) toMicro(p geom.Point) (int, int) {
	tr := m.ed.Transform()
	d := tr.ToScreen(p.X, p.Y)
	return floorDiv((d.X-tr.OriginX)*2, m.cfg.CellWidth), floorDiv((d.Y-tr.OriginY)*4, m.cfg.CellHeight)
}

// toCell maps a world point onto canvas cell coordinates.
func (m Model) toCell(p geom.Point) (int, int) {
	tr := m.ed.Transform()
	d := tr.ToScreen(p.X, p.Y)
	return floorDiv(d.X-tr.OriginX, m.cfg.CellWidth), floorDiv(d.Y-tr.OriginY, m.cfg.CellHeight)
}

func (m Model) strokeRing(br *brailleBuf, ring []geom.Point) {
	for i := 0; i+1 < len(ring); i++ {
		x0, y0 := m.toMicro(ring[i])
		x1, y1 := m.toMicro(ring[i+1])
		br.drawLineMicro(x0, y0, x1, y1)
	}
}

func rectRing(r geom.Rect) []geom.Point {
	br := r.BottomRight()
	return []geom.Point{r.Origin(), {X: br.X, Y: r.Y}, br, {X: r.X, Y: br.Y}, r.Origin()}
}

func (m Model) fillRect(br *brailleBuf, r geom.Rect) {
	x0, y0 := m.toMicro(r.Origin())
	x1, y1 := m.toMicro(r.BottomRight())
	for y := max(0, y0); y <= y1 && y < br.h*4; y++ {
		for x := max(0, x0); x <= x1 && x < br.w*2; x++ {
			br.setPixel(x, y)
		}
	}
}

func (m Model) renderCanvas(w, h int) string {
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x].r = ' '
		}
	}
	m.paintBackground(grid)

	br := newBrailleBuf(w, h)
	sel := m.ed.Store().Selected()
	zones := m.ed.Store().List()
	var labels []zone.Zone
	for _, z := range zones {
		pen := lipgloss.TerminalColor(lipgloss.Color(z.Color))
		if z.ID == sel {
			pen = selectFg
		}
		br.setPen(pen)
		if z.Type == zone.TypePolygon && len(z.Points) > 0 {
			m.strokeRing(br, z.Points)
		} else {
			m.strokeRing(br, rectRing(z.Bounds()))
		}
		if z.ID == sel {
			m.fillRect(br, z.Bounds().HandleAt(m.ed.Options().HandleSize))
		}
		if z.Type == zone.TypeText {
			labels = append(labels, z)
		}
	}

	br.setPen(draftFg)
	if r, ok := m.ed.TempRect(); ok {
		m.strokeRing(br, rectRing(r))
	}
	if pend := m.ed.PendingVertices(); len(pend) > 0 {
		m.strokeRing(br, append(pend, m.ed.Cursor()))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g, col := br.glyph(x, y); g != 0 {
				grid[y][x].r = g
				grid[y][x].fg = col
			}
		}
	}
	for _, z := range labels {
		cx, cy := m.toCell(z.Bounds().Origin())
		cx, cy = cx+1, cy+1
		if cy < 0 || cy >= h {
			continue
		}
		for i, r := range []rune(truncate(z.Content, w)) {
			if x := cx + i; x >= 0 && x < w {
				grid[cy][x] = cell{r: r, fg: lipgloss.Color(z.Color), bg: grid[cy][x].bg}
			}
		}
	}

	lines := make([]string, h)
	for y := range grid {
		lines[y] = renderRow(grid[y])
	}
	return strings.Join(lines, "\n")
}

// renderRow styles runs of cells that share colors in one pass.
func renderRow(row []cell) string {
	var sb strings.Builder
	var run []rune
	var fg, bg lipgloss.TerminalColor
	flush := func() {
		if len(run) == 0 {
			return
		}
		st := lipgloss.NewStyle()
		if fg != nil {
			st = st.Foreground(fg)
		}
		if bg != nil {
			st = st.Background(bg)
		}
		sb.WriteString(st.Render(string(run)))
		run = run[:0]
	}
	for _, c := range row {
		if c.fg != fg || c.bg != bg {
			flush()
			fg, bg = c.fg, c.bg
		}
		run = append(run, c.r)
	}
	flush()
	return sb.String()
}

// paintBackground samples the background preview into half-block cells.
// One world unit is one source image pixel, anchored at the world origin.
func (m Model) paintBackground(grid [][]cell) {
	if m.bg == nil || m.bg.Preview == nil || m.bg.Width == 0 {
		return
	}
	tr := m.ed.Transform()
	pb := m.bg.Preview.Bounds()
	scale := float64(pb.Dx()) / float64(m.bg.Width)
	sample := func(dx, dy float64) lipgloss.TerminalColor {
		p := tr.ToWorld(dx, dy)
		ix := pb.Min.X + floorDiv(p.X*scale, 1)
		iy := pb.Min.Y + floorDiv(p.Y*scale, 1)
		if ix < pb.Min.X || iy < pb.Min.Y || ix >= pb.Max.X || iy >= pb.Max.Y {
			return nil
		}
		c := color.NRGBAModel.Convert(m.bg.Preview.At(ix, iy)).(color.NRGBA)
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}
	cw, ch := m.cfg.CellWidth, m.cfg.CellHeight
	for y := range grid {
		for x := range grid[y] {
			dx := tr.OriginX + (float64(x)+0.5)*cw
			top := sample(dx, tr.OriginY+(float64(y)+0.25)*ch)
			bot := sample(dx, tr.OriginY+(float64(y)+0.75)*ch)
			switch {
			case top == nil && bot == nil:
			case top == nil:
				grid[y][x] = cell{r: '▄', fg: bot}
			default:
				grid[y][x] = cell{r: '▀', fg: top, bg: bot}
			}
		}
	}
}
