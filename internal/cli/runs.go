package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/adfit/internal/aggregator"
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/reporter"
	"github.com/ppiankov/adfit/internal/storage"
	"github.com/ppiankov/adfit/internal/tui"
)

var (
	// Runs command flags
	runsLastN   int
	runsCompare bool
	runsShow    string
	runsFormat  string
	runsTUI     bool
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show stored runs and trends",
	Long: `Analyze stored check runs and show trends over time.

This command displays:
- Latest run summary
- Issue, warning and placed-asset sparklines across the last N runs
- Improvement/degradation against the previous run
- Top recommendations of the latest run

Example:
  adfit runs
  adfit runs --last 14
  adfit runs --compare
  adfit runs --show 5f0c2a1e
  adfit runs --format json`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLastN, "last", "n", 0,
		"number of runs to analyze (default from config)")
	runsCmd.Flags().BoolVarP(&runsCompare, "compare", "c", false,
		"compare latest run with previous")
	runsCmd.Flags().StringVar(&runsShow, "show", "",
		"print a stored run by run ID prefix")
	runsCmd.Flags().StringVarP(&runsFormat, "format", "f", "text",
		"output format: text or json")
	runsCmd.Flags().BoolVar(&runsTUI, "tui", false,
		"browse the latest run interactively (terminal only)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if runsLastN == 0 {
		runsLastN = cfg.LastRuns
	}

	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		logError("Failed to get storage path: %v", err)
		return err
	}

	store := storage.NewLocal(storagePath)
	logVerbose("Loading runs from: %s", storagePath)

	timestamps, err := store.ListRuns()
	if err != nil {
		logError("Failed to list runs: %v", err)
		return err
	}

	if len(timestamps) == 0 {
		fmt.Println("No stored runs found.")
		fmt.Printf("Run 'adfit check <directory>' to record your first run.\n")
		return nil
	}

	logVerbose("Found %d stored runs", len(timestamps))

	switch {
	case runsShow != "":
		return runShowReport(store, runsShow)
	case runsCompare:
		return runComparisonReport(store)
	default:
		return runTrendReport(store, runsLastN)
	}
}

// runShowReport prints one stored run in full
func runShowReport(store storage.Storage, prefix string) error {
	report, err := store.FindRun(prefix)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return generateOutput(report, runsFormat, "")
}

// runComparisonReport compares the latest run with the one before it
func runComparisonReport(store storage.Storage) error {
	reports, err := store.GetLastNRuns(2)
	if err != nil && !errors.Is(err, storage.ErrNoRuns) {
		logError("Failed to load runs: %v", err)
		return err
	}

	if len(reports) < 2 {
		fmt.Println("Need at least 2 runs for comparison.")
		fmt.Printf("Run 'adfit check <directory>' to record more runs.\n")
		return nil
	}

	previous := reports[0]
	current := reports[1]

	logVerbose("Comparing %s vs %s", current.Timestamp, previous.Timestamp)

	trend := aggregator.NewTrendAnalyzer().CalculateTrend(current, previous)

	if runsFormat == "json" {
		return reporter.NewJSONReporter(os.Stdout, true).Write(trend)
	}

	printComparisonText(current, previous, trend)
	return nil
}

// runTrendReport summarizes the last N runs
func runTrendReport(store storage.Storage, lastN int) error {
	reports, err := store.GetLastNRuns(lastN)
	if err != nil {
		logError("Failed to load runs: %v", err)
		return err
	}

	if len(reports) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	logVerbose("Analyzing trends across %d runs", len(reports))

	trendSummary := aggregator.NewTrendAnalyzer().AnalyzeLastNRuns(reports)
	latest := reports[len(reports)-1]

	if runsTUI && isTerminal(os.Stdout) {
		return tui.Run(latest, trendSummary)
	}

	switch runsFormat {
	case "text":
		printTrendSummaryText(trendSummary, reports)
		return nil
	case "json":
		return reporter.NewJSONReporter(os.Stdout, true).Write(trendSummary)
	default:
		return &ValidationError{Message: fmt.Sprintf("unsupported format: %s", runsFormat)}
	}
}

func printComparisonText(current, previous *models.CheckReport, trend *models.Trend) {
	fmt.Println("Run Comparison")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("  Previous: %s (%s)\n", previous.Timestamp.Format("2006-01-02 15:04:05"), shortRunID(previous.RunID))
	fmt.Printf("  Current:  %s (%s)\n", current.Timestamp.Format("2006-01-02 15:04:05"), shortRunID(current.RunID))
	fmt.Println()
	fmt.Printf("  Issues:   %d → %d\n", trend.PreviousIssues, trend.CurrentIssues)
	fmt.Printf("  Warnings: %d → %d\n", trend.PreviousWarnings, trend.CurrentWarnings)
	fmt.Printf("  Placed:   %d/%d → %d/%d\n",
		previous.Summary.PlacedAssets, previous.Summary.TotalAssets,
		current.Summary.PlacedAssets, current.Summary.TotalAssets)
	fmt.Printf("  Direction: %s %s (%.1f%%)\n", trend.Direction, aggregator.GetTrendIndicator(trend.Direction), trend.ChangePercent)
}

// printTrendSummaryText prints trend summary in human-readable format
func printTrendSummaryText(summary *models.TrendSummary, reports []*models.CheckReport) {
	fmt.Println("╔════════════════════════════════════════════╗")
	fmt.Println("║            AdFit Trend Summary             ║")
	fmt.Println("╚════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("Time Range: %s\n", summary.TimeRange)
	fmt.Printf("Runs Analyzed: %d\n", summary.RunsAnalyzed)
	fmt.Println()

	latest := reports[len(reports)-1]
	fmt.Printf("Latest Run: %s (%s)\n", latest.Timestamp.Format("2006-01-02 15:04:05"), shortRunID(latest.RunID))
	fmt.Printf("Assets: %d (%d placed)\n", latest.Summary.TotalAssets, latest.Summary.PlacedAssets)
	fmt.Printf("Total Issues: %d", latest.Summary.TotalIssues)

	if len(reports) >= 2 {
		trend := aggregator.NewTrendAnalyzer().CalculateTrend(latest, reports[len(reports)-2])
		fmt.Printf(" (%s %s %.1f%%)\n", aggregator.GetTrendIndicator(trend.Direction), trend.Direction, trend.ChangePercent)
	} else {
		fmt.Println()
	}

	fmt.Println()

	if len(summary.IssueSparkline) > 0 {
		fmt.Println("Issues (over time):")
		fmt.Print("  ")
		printSparkline(summary.IssueSparkline)
		fmt.Println("Warnings (over time):")
		fmt.Print("  ")
		printSparkline(summary.WarningSparkline)
		fmt.Println("Placed assets (over time):")
		fmt.Print("  ")
		printSparkline(summary.PlacedSparkline)
	}

	if len(latest.Recommendations) > 0 {
		fmt.Println()
		fmt.Println("Top Recommendations:")
		fmt.Println("--------------------------------------------------")

		topRecs := aggregator.NewRecommendationGenerator().GetTopRecommendations(latest.Recommendations, 5)
		for i, rec := range topRecs {
			fmt.Printf("  %d. [%s] %s\n", i+1, rec.Priority, rec.Action)
		}
	}

	fmt.Println()
	fmt.Println("Run 'adfit check' to record a new run")
}

// printSparkline prints a simple unicode sparkline
func printSparkline(values []int) {
	if len(values) == 0 {
		fmt.Println()
		return
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	for _, v := range values {
		if max == min {
			fmt.Print(string(chars[len(chars)/2]))
		} else {
			normalized := float64(v-min) / float64(max-min)
			idx := int(normalized * float64(len(chars)-1))
			fmt.Print(string(chars[idx]))
		}
	}

	fmt.Printf(" [%d → %d]\n", values[0], values[len(values)-1])
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
