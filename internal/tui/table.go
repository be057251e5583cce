package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var tableColumns = []table.Column{
	{Title: "Status", Width: 6},
	{Title: "Asset", Width: 34},
	{Title: "Dims", Width: 10},
	{Title: "Size", Width: 7},
	{Title: "Network", Width: 9},
	{Title: "Placement", Width: 16},
}

// buildRows converts entries to table rows.
func buildRows(entries []entry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		placement := "-"
		if e.Placement != nil {
			placement = e.Placement.PlacementKey
		}
		network := e.network()
		if network == "" {
			network = "-"
		}
		rows = append(rows, table.Row{
			statusLabel(e.Status),
			truncate(e.Asset.Path, tableColumns[1].Width),
			e.Asset.Dimensions,
			fmt.Sprintf("%dKB", e.Asset.SizeKB),
			network,
			truncate(placement, tableColumns[5].Width),
		})
	}
	return rows
}

func statusLabel(s string) string {
	switch s {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusFail:
		return "FAIL"
	case statusNone:
		return "NONE"
	default:
		return s
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
