package cli

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/adfit/internal/models"
)

var (
	// Check command flags
	checkFormat      string
	checkOutput      string
	checkStore       bool
	checkStorageDir  string
	checkThreshold   int
	checkManifest    string
	checkNetwork     string
	checkTier        string
	checkStrict      bool
	checkMetricsFile string
	checkTUI         bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [path]...",
	Short: "Check creative files against every placement specification",
	Long: `Analyze creative files and report which placements each one fits.

The command will:
1. Walk the path(s) for .jpg, .jpeg, .png, .gif and .zip files
2. Read dimensions, size and color space; validate HTML5 banner packages
3. Detect format tags from file and folder names
4. Match each file to candidate placements and validate it against each
5. Detect multi-file creatives (scratch, spincube, spinner, kombi)
6. Store the run and compare with the previous one
7. Output results in the specified format

Example:
  adfit check ./campaign
  adfit check ./campaign --network wp --format json --output report.json
  adfit check --manifest assets.yaml --tier HIGH
  adfit check ./campaign --strict --metrics-file /var/lib/node_exporter/adfit.prom`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "",
		"output format: text, json, or both (default from config)")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "",
		"output file path (default: stdout)")
	checkCmd.Flags().BoolVar(&checkStore, "store", true,
		"store the run for trend analysis")
	checkCmd.Flags().StringVar(&checkStorageDir, "storage-dir", "",
		"storage directory (default from config)")
	checkCmd.Flags().IntVar(&checkThreshold, "fail-threshold", -1,
		"exit with code 1 if issues exceed this threshold (default from config)")
	checkCmd.Flags().StringVar(&checkManifest, "manifest", "",
		"read pre-analyzed assets from a YAML/JSON manifest instead of files")
	checkCmd.Flags().StringVarP(&checkNetwork, "network", "n", "",
		"only consider placements of this network (default from config)")
	checkCmd.Flags().StringVar(&checkTier, "tier", "",
		"only consider placements of this tier: HIGH or LOW (default from config)")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false,
		"exit with code 1 if any asset fits no placement")
	checkCmd.Flags().StringVar(&checkMetricsFile, "metrics-file", "",
		"write Prometheus metrics to this textfile (default from config)")
	checkCmd.Flags().BoolVar(&checkTUI, "tui", false,
		"browse results interactively (terminal only)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Apply config defaults if flags not set
	if checkFormat == "" {
		checkFormat = cfg.Format
	}
	if checkStorageDir == "" {
		checkStorageDir = cfg.StorageDir
	}
	if checkThreshold == -1 {
		checkThreshold = cfg.FailThreshold
	}
	if checkNetwork == "" {
		checkNetwork = cfg.Network
	}
	if checkTier == "" {
		checkTier = cfg.Tier
	}
	if checkMetricsFile == "" {
		checkMetricsFile = cfg.MetricsFile
	}
	store := checkStore
	if cmd != nil && !cmd.Flags().Changed("store") {
		store = cfg.Store
	}
	strict := checkStrict
	if cmd != nil && !cmd.Flags().Changed("strict") {
		strict = cfg.Strict
	}

	tier, err := models.ParseTier(checkTier)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	if checkManifest != "" {
		logVerbose("Checking manifest: %s", checkManifest)
	} else {
		logVerbose("Checking: %s", strings.Join(args, ", "))
	}
	logDebug("Config: format=%s, store=%v, threshold=%d, network=%q, tier=%q, strict=%v",
		checkFormat, store, checkThreshold, checkNetwork, tier, strict)

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	assets, banners, err := collectAssets(ctx, args, checkManifest)
	if err != nil {
		logError("Failed to collect assets: %v", err)
		return err
	}

	return RunPipeline(assets, banners, PipelineConfig{
		Format:      checkFormat,
		Output:      checkOutput,
		Store:       store,
		StorageDir:  checkStorageDir,
		Threshold:   checkThreshold,
		Network:     checkNetwork,
		Tier:        tier,
		Strict:      strict,
		MetricsFile: checkMetricsFile,
		TUI:         checkTUI,
	})
}

// commandContext returns the command's context, or Background for direct calls.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
