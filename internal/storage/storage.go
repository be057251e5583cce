package storage

import (
	"time"

	"github.com/ppiankov/adfit/internal/models"
)

// Storage defines the interface for persisting check runs
type Storage interface {
	// SaveRun stores a complete check report
	SaveRun(report *models.CheckReport) error

	// LoadRun loads the run stored for a timestamp
	LoadRun(timestamp time.Time) (*models.CheckReport, error)

	// FindRun loads the run whose ID starts with prefix
	FindRun(prefix string) (*models.CheckReport, error)

	// GetLatestRun retrieves the most recent run
	GetLatestRun() (*models.CheckReport, error)

	// GetLastNRuns retrieves the last N runs, oldest first
	GetLastNRuns(n int) ([]*models.CheckReport, error)

	// ListRuns returns all available run timestamps
	ListRuns() ([]time.Time, error)
}
