package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/adfit/internal/aggregator"
	"github.com/ppiankov/adfit/internal/models"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate creates a text report from a check run
func (r *TextReporter) Generate(report *models.CheckReport) error {
	r.printHeader()
	r.printf("Run: %s\n", shortID(report.RunID))
	r.printf("Timestamp: %s\n", formatTimestamp(report.Timestamp))
	r.printf("Registry: %s\n", report.RegistryVersion)
	if report.Network != "" || report.Tier != "" {
		r.printf("Filter: %s\n", filterLabel(report.Network, report.Tier))
	}
	r.printf("\n")

	r.printSummary(report)

	for _, asset := range report.Assets {
		r.printAsset(asset)
	}

	if len(report.Groups) > 0 {
		r.printGroups(report.Groups)
	}

	if len(report.Recommendations) > 0 {
		r.printRecommendations(report.Recommendations)
	}

	if report.Trend != nil {
		r.printf("\n")
		r.printTrendInfo(report.Trend)
	}

	return nil
}

func (r *TextReporter) printHeader() {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║     AdFit Creative Compatibility Report    ║\n")
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

func (r *TextReporter) printSummary(report *models.CheckReport) {
	s := report.Summary

	r.printf("Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Assets: %d (%d placed, %d invalid, %d unplaced)\n",
		s.TotalAssets, s.PlacedAssets, s.InvalidAssets, s.UnplacedAssets)
	r.printf("  Issues: %d", s.TotalIssues)
	if report.Trend != nil {
		indicator := aggregator.GetTrendIndicator(report.Trend.Direction)
		r.printf(" %s %.1f%% from previous run", indicator, report.Trend.ChangePercent)
	}
	r.printf("\n")
	r.printf("  Warnings: %d\n", s.TotalWarnings)
	if s.TotalGroups > 0 {
		r.printf("  Groups: %d (%d complete)\n", s.TotalGroups, s.CompleteGroups)
	}
	r.printf("\n")

	if len(s.PlacementsByNetwork) > 0 {
		r.printf("Compatible Placements by Network:\n")
		for _, network := range sortedKeys(s.PlacementsByNetwork) {
			r.printf("  %s: %d\n", network, s.PlacementsByNetwork[network])
		}
		r.printf("\n")
	}

	if len(s.AssetsByFormat) > 0 {
		r.printf("Assets by Format:\n")
		for _, format := range sortedKeys(s.AssetsByFormat) {
			r.printf("  %s: %d\n", format, s.AssetsByFormat[format])
		}
		r.printf("\n")
	}
}

// printAsset prints one asset with every evaluated placement
func (r *TextReporter) printAsset(a models.AssetReport) {
	asset := a.Asset
	r.printf("\n%s [%s]\n", asset.DisplayName(), strings.ToUpper(a.Status()))
	r.printf("--------------------------------------------------\n")
	r.printf("  Path: %s\n", asset.Path)
	r.printf("  Format: %s  Dimensions: %s  Size: %dKB\n",
		orDash(asset.FileFormat), orDash(asset.Dimensions), asset.SizeKB)
	if asset.DetectedFormat != models.FormatNone {
		r.printf("  Detected: %s\n", asset.DetectedFormat)
	}
	if !asset.ColorSpaceValid {
		r.printf("  Color space: CMYK\n")
	}
	if a.Note != "" {
		r.printf("  Note: %s\n", a.Note)
	}

	if a.Banner != nil {
		r.printBanner(a.Banner)
	}

	if len(a.Compatible) > 0 {
		r.printf("  Compatible (%d):\n", len(a.Compatible))
		for _, p := range a.Compatible {
			r.printf("    ✓ %s\n", placementLabel(p))
			for _, w := range p.Outcome.Warnings {
				r.printf("        warning: %s\n", w)
			}
		}
	}

	if len(a.Incompatible) > 0 {
		r.printf("  Incompatible (%d):\n", len(a.Incompatible))
		for _, p := range a.Incompatible {
			r.printf("    ✗ %s\n", placementLabel(p))
			for _, issue := range p.Outcome.Issues {
				r.printf("        issue: %s\n", issue)
			}
			for _, w := range p.Outcome.Warnings {
				r.printf("        warning: %s\n", w)
			}
		}
	}
}

func (r *TextReporter) printBanner(b *models.BannerReport) {
	status := "valid"
	if !b.Valid {
		status = "invalid"
	}
	r.printf("  HTML5 package: %s (%d files", status, b.FileCount)
	if b.RootDocument != "" {
		r.printf(", root %s", b.RootDocument)
	}
	r.printf(")\n")
	for _, issue := range b.Issues {
		r.printf("    issue: %s\n", issue)
	}
	for _, w := range b.Warnings {
		r.printf("    warning: %s\n", w)
	}
}

func (r *TextReporter) printGroups(groups []models.MultiFileGroup) {
	r.printf("\n")
	r.printf("Multi-file Groups:\n")
	r.printf("--------------------------------------------------\n")

	for i, g := range groups {
		r.printf("  %d. %s (%s) in %s: %s\n", i+1, g.FormatTag, g.Network, orDash(g.FolderPath), g.Status())
		for j, m := range g.Members {
			role := ""
			if j < len(g.Roles) {
				role = g.Roles[j]
			}
			r.printf("     - %-8s %s\n", role, m.DisplayName())
		}
		if g.Note != "" {
			r.printf("     note: %s\n", g.Note)
		}
	}
}

func (r *TextReporter) printRecommendations(recommendations []models.Recommendation) {
	r.printf("\n")
	r.printf("Recommended Actions:\n")
	r.printf("--------------------------------------------------\n")

	for i, rec := range recommendations {
		r.printf("  %d. [%s] %s\n", i+1, strings.ToUpper(rec.Priority), rec.Action)
		r.printf("     Impact: %s\n", rec.Impact)
	}
}

func (r *TextReporter) printTrendInfo(trend *models.Trend) {
	r.printf("Trend Analysis:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Direction: %s %s\n", trend.Direction, aggregator.GetTrendIndicator(trend.Direction))
	r.printf("  Issues: %d → %d (%.1f%%)\n",
		trend.PreviousIssues,
		trend.CurrentIssues,
		trend.ChangePercent)
	r.printf("  Warnings: %d → %d\n", trend.PreviousWarnings, trend.CurrentWarnings)
	r.printf("  Compared With: %s\n", formatTimestamp(trend.ComparedWith))
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// placementLabel renders "network/key [tier] (max NKB)"
func placementLabel(p models.PlacementResult) string {
	label := p.Network + "/" + p.PlacementKey
	if p.Tier != "" {
		label += " [" + string(p.Tier) + "]"
	}
	if p.SizeLimit > 0 {
		label += fmt.Sprintf(" (max %dKB)", p.SizeLimit)
	}
	return label
}

func filterLabel(network string, tier models.Tier) string {
	parts := make([]string, 0, 2)
	if network != "" {
		parts = append(parts, "network="+network)
	}
	if tier != "" {
		parts = append(parts, "tier="+string(tier))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
