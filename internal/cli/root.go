package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/adfit/internal/config"
	"github.com/ppiankov/adfit/internal/log"
	"github.com/ppiankov/adfit/internal/registry"
)

const (
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Policy failure, threshold exceeded, or unusable assets with --strict
	ExitInvalidInput = 2 // Bad input: unreadable manifest, invalid registry, bad flag values
	ExitRuntimeError = 3 // I/O, permissions, or runtime error
)

// buildVersion is injected from main via SetVersion
var buildVersion = "dev"

// SetVersion sets the version string reported by the version command
func SetVersion(v string) {
	buildVersion = v
}

var (
	// Global config instance
	cfg *config.Config

	// Global logger; nil until PersistentPreRunE runs
	logger *zap.SugaredLogger

	// Global flags
	configFile string
	verbose    bool
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "adfit",
	Short: "adfit - Creative compatibility checks for ad placements",
	Long: `adfit checks creative files (JPG, PNG, GIF, HTML5 zip banners) against the
placement specifications of publisher ad networks.

It provides:
- Candidate placements per file by exact dimensions and format
- Size, color space and format validation with tolerance
- Multi-file creative detection (scratch, spincube, spinner, kombi)
- HTML5 banner package validation
- Run history with trends and CI/CD exit codes

Quick start:
  adfit check ./campaign
  adfit check ./campaign --network onet --tier HIGH --strict
  adfit runs

Other commands:
  adfit match ./campaign/billboard_750x200.jpg
  adfit groups ./campaign
  adfit banner ./campaign/HTML5_970x210.zip
  adfit specs onet`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return &ValidationError{Message: fmt.Sprintf("failed to load config: %v", err)}
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		return setupLogger(cfg)
	},
}

// Execute runs the root command and exits with the mapped code
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		// Cobra already prints the error
		os.Exit(HandleError(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./adfit.yaml or ~/adfit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(bannerCmd)
	rootCmd.AddCommand(specsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		fmt.Printf("adfit %s\n", buildVersion)
		fmt.Printf("Registry %s\n", reg.Version())
		return nil
	},
}

// setupLogger builds the stderr logger: --debug → debug, --verbose → info,
// otherwise warn.
func setupLogger(c *config.Config) error {
	name := "warn"
	switch {
	case c.Debug:
		name = "debug"
	case c.Verbose:
		name = "info"
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return err
	}

	l, err := log.New(level, c.LogFormat, os.Stderr)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	logger = l.Sugar()
	return nil
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var validationErr *ValidationError
	var thresholdErr *ThresholdExceededError
	var strictErr *StrictError
	var loadErr *registry.LoadError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &loadErr):
		return ExitInvalidInput
	case errors.As(err, &thresholdErr), errors.As(err, &strictErr):
		return ExitPolicyFail
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ThresholdExceededError represents a threshold policy failure
type ThresholdExceededError struct {
	IssueCount int
	Threshold  int
}

func (e *ThresholdExceededError) Error() string {
	return fmt.Sprintf("issue count (%d) exceeds threshold (%d)", e.IssueCount, e.Threshold)
}

// StrictError is returned in strict mode when some asset fits nowhere
type StrictError struct {
	Invalid  int
	Unplaced int
}

func (e *StrictError) Error() string {
	return fmt.Sprintf("strict mode: %d invalid and %d unplaced asset(s)", e.Invalid, e.Unplaced)
}

func currentLogger() *zap.SugaredLogger {
	return log.OrNop(logger)
}

// logVerbose logs at info level; shown with --verbose
func logVerbose(format string, args ...interface{}) {
	currentLogger().Infof(format, args...)
}

// logDebug logs at debug level; shown with --debug
func logDebug(format string, args ...interface{}) {
	currentLogger().Debugf(format, args...)
}

// logError logs an error; always shown
func logError(format string, args ...interface{}) {
	if logger == nil {
		fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
		return
	}
	logger.Errorf(format, args...)
}
