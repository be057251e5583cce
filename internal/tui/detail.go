package tui

import (
	"fmt"
	"strings"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 5

// maxDetailFindings bounds the findings shown so the panel keeps its height.
const maxDetailFindings = 2

// renderDetail produces the detail view for a selected entry.
func renderDetail(e *entry, width int) string {
	if e == nil {
		return styleDetailPanel.Width(width).Render("No placement selected")
	}

	var b strings.Builder

	statusStyled := statusStyle(e.Status).Render(statusLabel(e.Status))
	asset := e.Asset
	b.WriteString(fmt.Sprintf("%s  %s\n", statusStyled, asset.Path))

	parts := []string{
		fmt.Sprintf("Format: %s", asset.FileFormat),
		fmt.Sprintf("Dims: %s", asset.Dimensions),
		fmt.Sprintf("Size: %dKB", asset.SizeKB),
	}
	if asset.DetectedFormat != "" {
		parts = append(parts, fmt.Sprintf("Tag: %s", asset.DetectedFormat))
	}
	if !asset.ColorSpaceValid {
		parts = append(parts, "CMYK")
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n")

	if e.Placement == nil {
		note := e.Note
		if note == "" {
			note = "No candidate placement"
		}
		b.WriteString(note)
		return styleDetailPanel.Width(width).Render(b.String())
	}

	p := e.Placement
	line := fmt.Sprintf("Placement: %s/%s", p.Network, p.PlacementKey)
	if p.Tier != "" {
		line += fmt.Sprintf(" [%s]", p.Tier)
	}
	if p.SizeLimit > 0 {
		line += fmt.Sprintf("  Limit: %dKB", p.SizeLimit)
	}
	b.WriteString(line)
	b.WriteString("\n")

	var findings []string
	for _, issue := range p.Outcome.Issues {
		findings = append(findings, "issue: "+issue)
	}
	for _, w := range p.Outcome.Warnings {
		findings = append(findings, "warning: "+w)
	}
	if len(findings) > maxDetailFindings {
		rest := len(findings) - maxDetailFindings
		findings = append(findings[:maxDetailFindings], fmt.Sprintf("(+%d more)", rest))
	}
	b.WriteString(strings.Join(findings, "  "))

	return styleDetailPanel.Width(width).Render(b.String())
}
