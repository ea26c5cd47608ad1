package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"zonedit/internal/doc"
	"zonedit/internal/editor"
	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
	case docReadMsg:
		cmd = m.applyDoc(msg)
	case imageLoadedMsg:
		m.applyImage(msg)
	case fileWrittenMsg:
		m.applyWritten(msg)
	case watchEventMsg:
		cmd = m.onWatch(msg.event)
	case watchErrMsg:
		m.logger.Warn("file watcher error", "error", msg.err)
		cmd = waitWatchCmd(m.sh.watcher)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	m.refreshZones()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.panel {
	case panelFiles:
		return m.filesKey(msg)
	case panelZones:
		return m.zonesKey(msg)
	case panelInput:
		return m.inputKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "esc":
		m.ed.Cancel()
		m.setStatus("cancelled")
	case "s":
		m.setMode(editor.ModeSelect)
	case "r":
		m.setMode(editor.ModeRect)
	case "g":
		m.setMode(editor.ModePolygon)
	case "t":
		m.setMode(editor.ModeText)
	case " ", "m":
		m.setMode(editor.ModeHand)
	case "enter":
		if m.ed.FinishPolygon() {
			m.setStatus("polygon committed")
		} else if m.ed.Mode() == editor.ModePolygon {
			m.setStatus("polygon needs at least 3 vertices")
		}
	case "x":
		m.ed.ClearAll()
		m.bg = nil
		m.setStatus("cleared")
	case "e":
		return m.export()
	case "i":
		m.openPicker(pickDocument)
	case "o":
		m.openPicker(pickImage)
	case "y":
		b, err := m.ed.Export()
		if err != nil {
			m.setError("copy failed", err)
			break
		}
		if err := clipboard.WriteAll(string(b)); err != nil {
			m.setError("copy failed", err)
			break
		}
		m.setStatus(fmt.Sprintf("copied %d bytes to clipboard", len(b)))
	case "G":
		b, err := doc.EncodeGeoJSON(m.ed.Store().List())
		if err != nil {
			m.setError("geojson failed", err)
			break
		}
		return writeFileCmd(siblingPath(m.exportPath(), ".geojson"), "geojson", b)
	case "C":
		b, err := doc.EncodeCSV(m.ed.Store().List())
		if err != nil {
			m.setError("csv failed", err)
			break
		}
		return writeFileCmd(siblingPath(m.exportPath(), ".csv"), "csv", b)
	case "p":
		m.startInput(inputWKT, "", "", "POLYGON((x y, ...)). Enter to add; Esc to cancel.")
	case "tab":
		m.panel = panelZones
		m.sh.zonesDirty = true
		m.layout()
	case "delete", "backspace":
		if id := m.ed.Store().Selected(); id != "" {
			m.ed.Store().Delete(id)
			m.setStatus("zone deleted")
		}
	case "h":
		m.helpVisible = !m.helpVisible
	case "up":
		m.nudge(0, -1)
	case "down":
		m.nudge(0, 1)
	case "left":
		m.nudge(-2, 0)
	case "right":
		m.nudge(2, 0)
	}
	return nil
}

func (m *Model) setMode(mode editor.Mode) {
	if err := m.ed.SetMode(mode); err != nil {
		m.setError("tool", err)
		return
	}
	m.setStatus("tool: " + string(mode))
}

// nudge scrolls the view by whole cells.
func (m *Model) nudge(cx, cy int) {
	p := m.ed.Pan()
	m.ed.SetPan(geom.Point{X: p.X + float64(cx)*m.cfg.CellWidth, Y: p.Y + float64(cy)*m.cfg.CellHeight})
}

func (m *Model) closePanel() {
	m.panel = panelNone
	m.layout()
}

func (m *Model) filesKey(msg tea.KeyMsg) tea.Cmd {
	if m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return cmd
	}
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "tab":
		m.closePanel()
		return nil
	case "enter":
		if it, ok := m.l.SelectedItem().(fileItem); ok {
			return m.choose(it)
		}
		return nil
	}
	var cmd tea.Cmd
	m.l, cmd = m.l.Update(msg)
	return cmd
}

func (m *Model) zonesKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "tab":
		m.closePanel()
		return nil
	case "enter":
		if z, ok := m.zoneAtCursor(); ok {
			m.ed.Store().Select(z.ID)
			m.setStatus("selected " + z.Label())
		}
		return nil
	case "n":
		if z, ok := m.zoneAtCursor(); ok {
			m.startInput(inputRename, z.ID, z.Name, "Zone name. Enter to save; Esc to cancel.")
		}
		return nil
	case "c":
		z, ok := m.zoneAtCursor()
		if !ok {
			return nil
		}
		if z.Type != zone.TypeText {
			m.setStatus("only text zones have content")
			return nil
		}
		m.startInput(inputContent, z.ID, z.Content, "Text content. Enter to save; Esc to cancel.")
		return nil
	case "d", "delete":
		if z, ok := m.zoneAtCursor(); ok {
			m.ed.Store().Delete(z.ID)
			m.setStatus("deleted " + z.Label())
		}
		return nil
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return cmd
}

func (m *Model) inputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.endInput()
		return nil
	case "enter":
		m.submitInput(strings.TrimSpace(m.ta.Value()))
		return nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return cmd
}

// endInput closes the textarea, returning to the zone list when the edit
// started there.
func (m *Model) endInput() {
	m.ta.Blur()
	if m.input == inputWKT {
		m.closePanel()
		return
	}
	m.panel = panelZones
	m.sh.zonesDirty = true
	m.layout()
}

func (m *Model) submitInput(v string) {
	switch m.input {
	case inputWKT:
		if v == "" {
			m.setStatus("paste: empty")
			return
		}
		ring, err := geom.ParseWKTPolygon(v)
		if err != nil {
			m.setError("wkt error", err)
			return
		}
		bb, _ := geom.BoundsOf(ring)
		r := bb.Rect()
		z := m.ed.Store().Create(r.X, r.Y, r.Width, r.Height, zone.TypePolygon, zone.Extra{Points: ring})
		m.ed.Store().Select(z.ID)
		m.setStatus(fmt.Sprintf("added %s  vertices=%d", z.Label(), len(ring)-1))
	case inputRename:
		m.ed.Store().Update(m.inputID, zone.Patch{Name: zone.Ptr(v)})
		m.setStatus("renamed to " + v)
	case inputContent:
		m.ed.Store().Update(m.inputID, zone.Patch{Content: zone.Ptr(v)})
		m.setStatus("content updated")
	}
	m.endInput()
}

// handleMouse feeds canvas mouse events to the controller. Motion and
// release are forwarded even off-canvas so gestures end cleanly.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := m.devicePoint(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.nudge(0, -1)
		case tea.MouseButtonWheelDown:
			m.nudge(0, 1)
		case tea.MouseButtonWheelLeft:
			m.nudge(-2, 0)
		case tea.MouseButtonWheelRight:
			m.nudge(2, 0)
		case tea.MouseButtonLeft:
			if m.inCanvas(msg.X, msg.Y) {
				m.press(msg.X, msg.Y, p)
			}
		}
	case tea.MouseActionMotion:
		m.ed.PointerMove(p)
	case tea.MouseActionRelease:
		m.ed.PointerUp(p)
	}
}

// press turns a second polygon-mode click on the same cell within the
// double-click window into a DoubleClick.
func (m *Model) press(x, y int, p geom.Point) {
	now := m.now()
	if m.ed.Mode() == editor.ModePolygon && !m.lastPress.IsZero() &&
		x == m.lastCellX && y == m.lastCellY && now.Sub(m.lastPress) <= m.cfg.DoubleClick() {
		m.lastPress = time.Time{}
		m.ed.DoubleClick(p)
		return
	}
	m.lastPress = now
	m.lastCellX, m.lastCellY = x, y
	m.ed.PointerDown(p)
}
