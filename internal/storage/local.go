package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/adfit/internal/models"
)

const (
	runSuffix       = "-check.json"
	timestampLayout = "2006-01-02T15-04-05"
)

// ErrNoRuns is returned when the store holds no runs
var ErrNoRuns = errors.New("no runs found")

// LocalStorage keeps runs as JSON files under <baseDir>/runs
type LocalStorage struct {
	baseDir string
}

// NewLocal creates a new local storage instance
func NewLocal(baseDir string) *LocalStorage {
	return &LocalStorage{
		baseDir: baseDir,
	}
}

func (s *LocalStorage) runsDir() string {
	return filepath.Join(s.baseDir, "runs")
}

// SaveRun writes the report to <timestamp>-check.json. The file is written
// to a temporary name first and renamed into place.
func (s *LocalStorage) SaveRun(report *models.CheckReport) error {
	if err := s.EnsureDirectoryExists(); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(s.runsDir(), formatTimestamp(report.Timestamp)+runSuffix)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store run: %w", err)
	}

	return nil
}

// LoadRun loads the run stored for a timestamp
func (s *LocalStorage) LoadRun(timestamp time.Time) (*models.CheckReport, error) {
	return loadReportFromFile(filepath.Join(s.runsDir(), formatTimestamp(timestamp)+runSuffix))
}

// FindRun loads the newest run whose ID starts with prefix
func (s *LocalStorage) FindRun(prefix string) (*models.CheckReport, error) {
	if prefix == "" {
		return nil, fmt.Errorf("empty run id")
	}

	timestamps, err := s.ListRuns()
	if err != nil {
		return nil, err
	}

	for i := len(timestamps) - 1; i >= 0; i-- {
		report, err := s.LoadRun(timestamps[i])
		if err != nil {
			continue
		}
		if strings.HasPrefix(report.RunID, prefix) {
			return report, nil
		}
	}
	return nil, fmt.Errorf("run %q not found", prefix)
}

// GetLatestRun retrieves the most recent run
func (s *LocalStorage) GetLatestRun() (*models.CheckReport, error) {
	timestamps, err := s.ListRuns()
	if err != nil {
		return nil, err
	}

	if len(timestamps) == 0 {
		return nil, ErrNoRuns
	}

	return s.LoadRun(timestamps[len(timestamps)-1])
}

// GetLastNRuns retrieves the last N runs, oldest first. Runs that fail to
// load are skipped.
func (s *LocalStorage) GetLastNRuns(n int) ([]*models.CheckReport, error) {
	timestamps, err := s.ListRuns()
	if err != nil {
		return nil, err
	}

	if len(timestamps) == 0 {
		return nil, ErrNoRuns
	}

	start := len(timestamps) - n
	if start < 0 {
		start = 0
	}

	reports := make([]*models.CheckReport, 0, len(timestamps)-start)
	for _, timestamp := range timestamps[start:] {
		report, err := s.LoadRun(timestamp)
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// ListRuns returns all available run timestamps sorted chronologically
func (s *LocalStorage) ListRuns() ([]time.Time, error) {
	entries, err := os.ReadDir(s.runsDir())
	if os.IsNotExist(err) {
		return []time.Time{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	timestamps := []time.Time{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), runSuffix) {
			continue
		}

		// Format: 2006-01-02T15-04-05-check.json
		timestamp, err := parseTimestamp(strings.TrimSuffix(entry.Name(), runSuffix))
		if err != nil {
			continue
		}
		timestamps = append(timestamps, timestamp)
	}

	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i].Before(timestamps[j])
	})

	return timestamps, nil
}

func loadReportFromFile(path string) (*models.CheckReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var report models.CheckReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// formatTimestamp converts a time.Time to filename-safe format in UTC
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp converts filename format back to time.Time
func parseTimestamp(str string) (time.Time, error) {
	return time.Parse(timestampLayout, str)
}

// GetStoragePath returns the full path to the storage directory
func (s *LocalStorage) GetStoragePath() string {
	return s.baseDir
}

// EnsureDirectoryExists creates the runs directory if it doesn't exist
func (s *LocalStorage) EnsureDirectoryExists() error {
	return os.MkdirAll(s.runsDir(), 0755)
}
