package tui

import "github.com/charmbracelet/lipgloss"

// Status colors
var (
	colorFail   = lipgloss.Color("#FF0000")
	colorNone   = lipgloss.Color("#FF8800")
	colorWarn   = lipgloss.Color("#FFFF00")
	colorOK     = lipgloss.Color("#00FF00")
	colorMuted  = lipgloss.Color("#888888")
	colorAccent = lipgloss.Color("#7B68EE")
	colorBorder = lipgloss.Color("#444444")
)

// Panel styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleDetailPanel = lipgloss.NewStyle().
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(colorBorder)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorAccent).Bold(true)
)

// statusStyle returns the lipgloss style for a row status.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case statusFail:
		return lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	case statusNone:
		return lipgloss.NewStyle().Foreground(colorNone).Bold(true)
	case statusWarn:
		return lipgloss.NewStyle().Foreground(colorWarn)
	case statusOK:
		return lipgloss.NewStyle().Foreground(colorOK)
	default:
		return lipgloss.NewStyle()
	}
}

// placedStyle colors the placed share of assets.
func placedStyle(placed, total int) lipgloss.Style {
	switch {
	case total == 0:
		return lipgloss.NewStyle()
	case placed == total:
		return lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	case placed*2 >= total:
		return lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	}
}
