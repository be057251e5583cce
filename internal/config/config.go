package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for adfit
type Config struct {
	// Registry file; empty means the embedded registry
	RegistryFile string `mapstructure:"registry_file"`

	// Output format (text, json, both)
	Format string `mapstructure:"format"`

	// Storage configuration
	StorageDir string `mapstructure:"storage_dir"`
	Store      bool   `mapstructure:"store"`

	// Number of last runs shown by the runs command
	LastRuns int `mapstructure:"last_runs"`

	// Worker pool size for file analysis
	Workers int `mapstructure:"workers"`

	// Default filters
	Network string `mapstructure:"network"`
	Tier    string `mapstructure:"tier"`

	// Fail (exit 1) when any asset fits no placement
	Strict bool `mapstructure:"strict"`

	// Threshold for CI/CD failure on total issues; 0 disables it
	FailThreshold int `mapstructure:"fail_threshold"`

	// Prometheus textfile written after each check
	MetricsFile string `mapstructure:"metrics_file"`

	// Log encoding on stderr (console, json)
	LogFormat string `mapstructure:"log_format"`

	Verbose bool `mapstructure:"verbose"`
	Debug   bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Format:     "text",
		StorageDir: ".adfit",
		Store:      true,
		LastRuns:   7,
		Workers:    8,
		LogFormat:  "console",
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (./adfit.yaml, ~/adfit.yaml or $XDG_CONFIG_HOME/adfit/adfit.yaml)
// 3. Environment variables (ADFIT_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("registry_file", defaults.RegistryFile)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("storage_dir", defaults.StorageDir)
	v.SetDefault("store", defaults.Store)
	v.SetDefault("last_runs", defaults.LastRuns)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("network", defaults.Network)
	v.SetDefault("tier", defaults.Tier)
	v.SetDefault("strict", defaults.Strict)
	v.SetDefault("fail_threshold", defaults.FailThreshold)
	v.SetDefault("metrics_file", defaults.MetricsFile)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	v.SetConfigName("adfit")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "adfit"))
		}
	}

	v.SetEnvPrefix("ADFIT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"both": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be text, json, or both)", c.Format)
	}

	if c.FailThreshold < 0 {
		return fmt.Errorf("fail_threshold cannot be negative")
	}

	if c.LastRuns <= 0 {
		return fmt.Errorf("last_runs must be positive")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir cannot be empty")
	}

	switch strings.ToUpper(c.Tier) {
	case "", "HIGH", "LOW":
	default:
		return fmt.Errorf("invalid tier: %s (must be HIGH or LOW)", c.Tier)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log_format: %s (must be console or json)", c.LogFormat)
	}

	return nil
}

// GetStoragePath returns the absolute path to the storage directory
func (c *Config) GetStoragePath() (string, error) {
	if strings.HasPrefix(c.StorageDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.StorageDir[2:]), nil
	}

	absPath, err := filepath.Abs(c.StorageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// ShouldFailOnThreshold checks if the issue count exceeds the threshold
func (c *Config) ShouldFailOnThreshold(issueCount int) bool {
	if c.FailThreshold == 0 {
		return false
	}
	return issueCount > c.FailThreshold
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# adfit configuration
# Save this file as ./adfit.yaml, ~/adfit.yaml or $XDG_CONFIG_HOME/adfit/adfit.yaml

# Placement registry (YAML). Leave empty to use the built-in registry.
# registry_file: ./specs.yaml

# Output format: text, json, or both
format: text

# Directory to store check runs, and whether to store them
storage_dir: .adfit
store: true

# Number of runs listed by "adfit runs"
last_runs: 7

# Files analyzed in parallel
workers: 8

# Default filters (override with --network / --tier)
# network: onet
# tier: HIGH

# Exit 1 when any file fits no placement
strict: false

# Exit 1 when total issues exceed this number (0 disables the check)
fail_threshold: 0

# Write run metrics in Prometheus text format
# metrics_file: /var/lib/node_exporter/textfile/adfit.prom

# Log encoding on stderr: console or json
log_format: console

verbose: false
debug: false
`
}
