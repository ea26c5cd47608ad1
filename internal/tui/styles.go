package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	selectFg  = lipgloss.Color("#FBBF24")
	draftFg   = lipgloss.Color("#34D399")
	errorFg   = lipgloss.Color("#F87171")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	toolStyle   = lipgloss.NewStyle().Foreground(baseDimFg).Padding(0, 1)
	activeStyle = lipgloss.NewStyle().Foreground(baseFg).Background(accentFg).Bold(true).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(errorFg)
)
