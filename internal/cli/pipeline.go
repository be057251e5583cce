package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/ppiankov/adfit/internal/aggregator"
	"github.com/ppiankov/adfit/internal/collector"
	"github.com/ppiankov/adfit/internal/metrics"
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/policy"
	"github.com/ppiankov/adfit/internal/registry"
	"github.com/ppiankov/adfit/internal/reporter"
	"github.com/ppiankov/adfit/internal/storage"
	"github.com/ppiankov/adfit/internal/tui"
)

// PipelineConfig holds options for the shared check pipeline.
type PipelineConfig struct {
	Format      string
	Output      string
	Store       bool
	StorageDir  string
	Threshold   int
	Network     string
	Tier        models.Tier
	Strict      bool
	MetricsFile string
	TUI         bool
}

// RunPipeline checks a set of analyzed assets:
// check → trend → store → output → metrics → policy → strict → threshold.
func RunPipeline(assets []models.FileAsset, banners map[string]*models.BannerReport, pcfg PipelineConfig) error {
	reg, err := loadRegistry()
	if err != nil {
		logError("Failed to load registry: %v", err)
		return err
	}

	if pcfg.Network != "" && !reg.HasNetwork(pcfg.Network) {
		return &ValidationError{Message: fmt.Sprintf("unknown network %q (known: %v)", pcfg.Network, reg.Networks())}
	}

	// Step 1: Match, validate and group
	agg := aggregator.New(reg, currentLogger())
	report := agg.Check(assets, banners, aggregator.Options{Network: pcfg.Network, Tier: pcfg.Tier})

	logVerbose("Checked %d assets: %d placed, %d invalid, %d unplaced",
		report.Summary.TotalAssets, report.Summary.PlacedAssets, report.Summary.InvalidAssets, report.Summary.UnplacedAssets)

	// Step 2: Trend against the previous stored run
	var store *storage.LocalStorage
	if pcfg.Store {
		storagePath, err := getStoragePath(pcfg.StorageDir)
		if err != nil {
			logError("Failed to get storage path: %v", err)
			return err
		}
		store = storage.NewLocal(storagePath)

		if previous, err := store.GetLatestRun(); err == nil {
			logVerbose("Found previous run from %s", previous.Timestamp)
			report.Trend = aggregator.NewTrendAnalyzer().CalculateTrend(report, previous)
		} else {
			logDebug("No previous run found: %v", err)
		}
	}

	// Step 3: Store
	if store != nil {
		if err := store.SaveRun(report); err != nil {
			logError("Failed to store report: %v", err)
			return err
		}
		logVerbose("Stored run %s in: %s", report.RunID, store.GetStoragePath())
	}

	// Step 4: Output
	if pcfg.TUI && pcfg.Output == "" && isTerminal(os.Stdout) {
		if err := tui.Run(report, nil); err != nil {
			logError("TUI failed: %v", err)
			return err
		}
	} else if err := generateOutput(report, pcfg.Format, pcfg.Output); err != nil {
		logError("Failed to generate output: %v", err)
		return err
	}

	// Step 5: Metrics textfile
	if pcfg.MetricsFile != "" {
		recorder := metrics.NewRecorder()
		recorder.Observe(report)
		if err := recorder.WriteToTextfile(pcfg.MetricsFile); err != nil {
			logError("Failed to write metrics: %v", err)
			return err
		}
		logVerbose("Wrote metrics to: %s", pcfg.MetricsFile)
	}

	// Step 6: Policy enforcement (if .adfit-policy.yaml exists)
	if err := enforcePolicy(report); err != nil {
		return err
	}

	// Step 7: Strict mode
	if pcfg.Strict && (report.Summary.InvalidAssets > 0 || report.Summary.UnplacedAssets > 0) {
		logError("%d invalid and %d unplaced asset(s)", report.Summary.InvalidAssets, report.Summary.UnplacedAssets)
		return &StrictError{
			Invalid:  report.Summary.InvalidAssets,
			Unplaced: report.Summary.UnplacedAssets,
		}
	}

	// Step 8: Threshold
	if pcfg.Threshold > 0 && report.Summary.TotalIssues > pcfg.Threshold {
		logError("Issue count (%d) exceeds threshold (%d)", report.Summary.TotalIssues, pcfg.Threshold)
		return &ThresholdExceededError{
			IssueCount: report.Summary.TotalIssues,
			Threshold:  pcfg.Threshold,
		}
	}

	return nil
}

func enforcePolicy(report *models.CheckReport) error {
	policyPath := policy.FindPolicyFile()
	if policyPath == "" {
		return nil
	}
	logVerbose("Found policy file: %s", policyPath)

	pol, err := policy.LoadFromFile(policyPath)
	if err != nil {
		logError("Failed to load policy: %v", err)
		return &ValidationError{Message: err.Error()}
	}
	if pol == nil {
		return nil
	}

	result := pol.Evaluate(report)
	if !result.Pass {
		for _, v := range result.Violations {
			logError("Policy violation [%s]: %s", v.Rule, v.Message)
		}
		return &ThresholdExceededError{
			IssueCount: len(result.Violations),
			Threshold:  0,
		}
	}
	logVerbose("Policy check passed")
	return nil
}

// collectAssets analyzes files on disk, or reads a manifest when one is
// given. Banner reports only exist for files analyzed from disk.
func collectAssets(ctx context.Context, paths []string, manifest string) ([]models.FileAsset, map[string]*models.BannerReport, error) {
	if manifest != "" {
		assets, err := collector.LoadManifest(manifest)
		if err != nil {
			return nil, nil, &ValidationError{Message: err.Error()}
		}
		logVerbose("Loaded %d assets from manifest %s", len(assets), manifest)
		return assets, nil, nil
	}

	if len(paths) == 0 {
		return nil, nil, &ValidationError{Message: "no input paths given (pass files, directories or --manifest)"}
	}

	workers := 0
	if cfg != nil {
		workers = cfg.Workers
	}
	c := collector.New(collector.Config{
		MaxConcurrency: workers,
		Logger:         currentLogger(),
	})

	result, err := c.CollectFromPaths(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range result.Failed {
		logError("Skipped %v", f)
	}
	return result.Assets, result.Banners, nil
}

// loadRegistry returns the configured registry, or the embedded one.
func loadRegistry() (*registry.Registry, error) {
	if cfg == nil || cfg.RegistryFile == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadFile(cfg.RegistryFile)
	if err != nil {
		var loadErr *registry.LoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &ValidationError{Message: err.Error()}
	}
	logVerbose("Loaded registry %s from %s", reg.Version(), cfg.RegistryFile)
	return reg, nil
}

// generateOutput generates the output in the specified format(s).
func generateOutput(report *models.CheckReport, format, outputPath string) error {
	var writer *os.File
	if outputPath == "" {
		writer = os.Stdout
	} else {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	}

	switch format {
	case "text":
		return reporter.NewTextReporter(writer).Generate(report)

	case "json":
		return reporter.NewJSONReporter(writer, true).Generate(report)

	case "both":
		if outputPath == "" {
			if err := reporter.NewTextReporter(os.Stdout).Generate(report); err != nil {
				return err
			}

			jsonFile, err := os.Create("adfit-report.json")
			if err != nil {
				return fmt.Errorf("failed to create JSON file: %w", err)
			}
			defer func() { _ = jsonFile.Close() }()

			return reporter.NewJSONReporter(jsonFile, true).Generate(report)
		}

		if err := reporter.NewTextReporter(writer).Generate(report); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(writer, "\n=== JSON Output ===\n\n"); err != nil {
			return err
		}

		return reporter.NewJSONReporter(writer, true).Generate(report)

	default:
		return &ValidationError{Message: fmt.Sprintf("unsupported format: %s (use text, json, or both)", format)}
	}
}

// getStoragePath resolves the storage path, expanding ~ and converting to absolute.
func getStoragePath(storageDir string) (string, error) {
	if len(storageDir) >= 2 && storageDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(home, storageDir[2:])
	}

	absPath, err := filepath.Abs(storageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
