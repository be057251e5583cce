package aggregator

import (
	"fmt"

	"github.com/ppiankov/adfit/internal/models"
)

// Trend directions
const (
	TrendImproving = "improving"
	TrendDegrading = "degrading"
	TrendStable    = "stable"
)

// TrendAnalyzer compares check runs over time
type TrendAnalyzer struct{}

// NewTrendAnalyzer creates a new trend analyzer
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// CalculateTrend compares current report with previous one. Issues decide
// the direction; warnings break ties.
func (t *TrendAnalyzer) CalculateTrend(current, previous *models.CheckReport) *models.Trend {
	if previous == nil {
		return nil
	}

	trend := &models.Trend{
		PreviousIssues:   previous.Summary.TotalIssues,
		CurrentIssues:    current.Summary.TotalIssues,
		PreviousWarnings: previous.Summary.TotalWarnings,
		CurrentWarnings:  current.Summary.TotalWarnings,
		ComparedWith:     previous.Timestamp,
	}

	change := current.Summary.TotalIssues - previous.Summary.TotalIssues
	if previous.Summary.TotalIssues > 0 {
		trend.ChangePercent = float64(change) / float64(previous.Summary.TotalIssues) * 100.0
	}
	if change == 0 {
		change = current.Summary.TotalWarnings - previous.Summary.TotalWarnings
	}

	switch {
	case change < 0:
		trend.Direction = TrendImproving
	case change > 0:
		trend.Direction = TrendDegrading
	default:
		trend.Direction = TrendStable
	}

	return trend
}

// AnalyzeLastNRuns summarizes runs ordered oldest first
func (t *TrendAnalyzer) AnalyzeLastNRuns(runs []*models.CheckReport) *models.TrendSummary {
	if len(runs) == 0 {
		return nil
	}

	summary := &models.TrendSummary{
		RunsAnalyzed:     len(runs),
		IssueSparkline:   make([]int, len(runs)),
		WarningSparkline: make([]int, len(runs)),
		PlacedSparkline:  make([]int, len(runs)),
	}

	if len(runs) > 1 {
		days := int(runs[len(runs)-1].Timestamp.Sub(runs[0].Timestamp).Hours() / 24)
		summary.TimeRange = fmt.Sprintf("Last %d days", days)
	} else {
		summary.TimeRange = "Single run"
	}

	for i, run := range runs {
		summary.IssueSparkline[i] = run.Summary.TotalIssues
		summary.WarningSparkline[i] = run.Summary.TotalWarnings
		summary.PlacedSparkline[i] = run.Summary.PlacedAssets
	}

	return summary
}

// GetTrendIndicator returns a one-character arrow for a direction
func GetTrendIndicator(direction string) string {
	switch direction {
	case TrendImproving:
		return "↓"
	case TrendDegrading:
		return "↑"
	case TrendStable:
		return "→"
	default:
		return "?"
	}
}
