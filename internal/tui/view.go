package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zonedit/internal/editor"
)

var toolKeys = map[editor.Mode]string{
	editor.ModeSelect:  "s",
	editor.ModeRect:    "r",
	editor.ModePolygon: "g",
	editor.ModeText:    "t",
	editor.ModeHand:    "m",
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	contentWidth := max(10, m.width)

	// Header: title + toolbar
	tools := []string{titleStyle.Render(" zonedit ")}
	for _, mode := range editor.Modes {
		label := toolKeys[mode] + " " + string(mode)
		if mode == m.ed.Mode() {
			tools = append(tools, activeStyle.Render(label))
		} else {
			tools = append(tools, toolStyle.Render(label))
		}
	}
	header := lipgloss.NewStyle().Width(contentWidth).MaxHeight(1).Render(lipgloss.JoinHorizontal(lipgloss.Top, tools...))

	canvas := lipgloss.NewStyle().Width(m.canvasW).Height(m.canvasH).Render(m.renderCanvas(m.canvasW, m.canvasH))

	var body string
	if side := m.renderSidebar(); side != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, " ", canvas)
	} else {
		body = canvas
	}

	// Footer / status
	status := dimStyle.Render(" " + m.status + " ")
	if m.statusErr {
		status = errorStyle.Render(" " + m.status + " ")
	}
	info := dimStyle.Render(m.renderInfo())
	spacerW := max(0, contentWidth-lipgloss.Width(status)-lipgloss.Width(info))
	footer := lipgloss.JoinHorizontal(lipgloss.Bottom, status, strings.Repeat(" ", spacerW), info)
	help := lipgloss.NewStyle().Width(contentWidth).MaxHeight(1).Render(m.renderHelp())

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer, help)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) renderSidebar() string {
	var inner string
	switch m.panel {
	case panelFiles:
		inner = m.l.View()
	case panelZones:
		m.tbl.SetWidth(sidebarWidth - 4)
		inner = titleStyle.Render("Zones") + "\n" + m.tbl.View()
	case panelInput:
		title := "Paste WKT"
		switch m.input {
		case inputRename:
			title = "Rename zone"
		case inputContent:
			title = "Edit text"
		}
		inner = titleStyle.Render(title) + "\n" + m.ta.View()
	default:
		return ""
	}
	return boxStyle.Width(sidebarWidth - 2).Height(m.canvasH - 2).Render(inner)
}

func (m Model) renderInfo() string {
	c := m.ed.Cursor()
	p := m.ed.Pan()
	parts := []string{
		m.ed.State().String(),
		fmt.Sprintf("x=%.0f y=%.0f", c.X, c.Y),
		fmt.Sprintf("pan=%.0f,%.0f", p.X, p.Y),
		fmt.Sprintf("zones=%d", m.ed.Store().Len()),
	}
	if n := len(m.ed.PendingVertices()); n > 0 {
		parts = append(parts, fmt.Sprintf("vertices=%d", n))
	}
	if id := m.ed.Store().Selected(); id != "" {
		if z, ok := m.ed.Store().Get(id); ok {
			parts = append(parts, "sel="+truncate(z.Label(), 16))
		}
	}
	return "  " + strings.Join(parts, "  ") + "  "
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"Enter finish polygon",
		"Esc cancel",
		"↑↓←→ pan",
		"Tab zones",
		"i import",
		"e export",
		"o image",
		"y copy",
		"G geojson",
		"C csv",
		"p paste WKT",
		"x clear",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
