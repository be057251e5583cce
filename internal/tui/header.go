package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/adfit/internal/aggregator"
	"github.com/ppiankov/adfit/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from report summary data.
func renderHeader(report *models.CheckReport, sparkline []int, width int) string {
	var b strings.Builder
	summary := report.Summary

	// Line 1: title and placed share
	placedText := placedStyle(summary.PlacedAssets, summary.TotalAssets).Render(
		fmt.Sprintf("%d/%d placed", summary.PlacedAssets, summary.TotalAssets),
	)
	b.WriteString(fmt.Sprintf("AdFit  Registry %s  %s", report.RegistryVersion, placedText))

	if report.Trend != nil {
		indicator := aggregator.GetTrendIndicator(report.Trend.Direction)
		b.WriteString(fmt.Sprintf("  %s %.1f%%", indicator, report.Trend.ChangePercent))
	}
	b.WriteString("\n")

	// Line 2: issues and warnings
	b.WriteString(fmt.Sprintf("Issues: %d  Warnings: %d  Groups: %d/%d complete",
		summary.TotalIssues, summary.TotalWarnings, summary.CompleteGroups, summary.TotalGroups))
	b.WriteString("\n")

	// Line 3: asset status breakdown
	statusParts := make([]string, 0, 2)
	if summary.InvalidAssets > 0 {
		statusParts = append(statusParts, statusStyle(statusFail).Render(fmt.Sprintf("invalid:%d", summary.InvalidAssets)))
	}
	if summary.UnplacedAssets > 0 {
		statusParts = append(statusParts, statusStyle(statusNone).Render(fmt.Sprintf("unplaced:%d", summary.UnplacedAssets)))
	}
	if len(statusParts) > 0 {
		b.WriteString(strings.Join(statusParts, "  "))
	}
	b.WriteString("\n")

	// Line 4: sparkline
	if len(sparkline) > 0 {
		b.WriteString("Trend: ")
		b.WriteString(renderSparkline(sparkline))
	}

	return styleHeader.Width(width).Render(b.String())
}

// renderSparkline converts an int slice to a unicode sparkline string.
func renderSparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}

	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		if max == min {
			b.WriteRune(bars[len(bars)/2])
		} else {
			normalized := float64(v-min) / float64(max-min)
			idx := int(normalized * float64(len(bars)-1))
			b.WriteRune(bars[idx])
		}
	}

	b.WriteString(fmt.Sprintf(" [%d→%d]", values[0], values[len(values)-1]))
	return b.String()
}
