package tui

import (
	"strconv"

	table "github.com/charmbracelet/bubbles/table"

	"zonedit/internal/zone"
)

func zoneColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: 12},
		{Title: "Type", Width: 7},
		{Title: "X", Width: 5},
		{Title: "Y", Width: 5},
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) }

// refreshZones rebuilds the table rows from the store when it changed.
func (m *Model) refreshZones() {
	if !m.sh.zonesDirty {
		return
	}
	m.sh.zonesDirty = false
	zs := m.ed.Store().List()
	sel := m.ed.Store().Selected()
	rows := make([]table.Row, 0, len(zs))
	cursor := -1
	for i, z := range zs {
		name := z.Label()
		if z.ID == sel {
			name = "▸ " + name
			cursor = i
		}
		rows = append(rows, table.Row{strconv.Itoa(i + 1), name, string(z.Type), num(z.X), num(z.Y)})
	}
	m.tbl.SetRows(rows)
	if cursor >= 0 {
		m.tbl.SetCursor(cursor)
	} else if m.tbl.Cursor() >= len(rows) {
		m.tbl.SetCursor(max(0, len(rows)-1))
	}
}

// zoneAtCursor returns the zone on the highlighted table row.
func (m *Model) zoneAtCursor() (zone.Zone, bool) {
	zs := m.ed.Store().List()
	i := m.tbl.Cursor()
	if i < 0 || i >= len(zs) {
		return zone.Zone{}, false
	}
	return zs[i], true
}

func (m *Model) startInput(kind inputKind, id, value, placeholder string) {
	m.input = kind
	m.inputID = id
	m.ta.Placeholder = placeholder
	m.ta.SetValue(value)
	m.ta.Focus()
	m.panel = panelInput
	m.layout()
}
