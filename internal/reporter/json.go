package reporter

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/adfit/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the full check report
func (r *JSONReporter) Generate(report *models.CheckReport) error {
	return r.write(report)
}

// GenerateSummaryOnly writes the summary without per-asset detail
func (r *JSONReporter) GenerateSummaryOnly(report *models.CheckReport) error {
	summary := struct {
		RunID           string                  `json:"run_id"`
		Timestamp       string                  `json:"timestamp"`
		RegistryVersion string                  `json:"registry_version"`
		Summary         models.CheckSummary     `json:"summary"`
		Trend           *models.Trend           `json:"trend,omitempty"`
		Recommendations []models.Recommendation `json:"recommendations"`
	}{
		RunID:           report.RunID,
		Timestamp:       report.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		RegistryVersion: report.RegistryVersion,
		Summary:         report.Summary,
		Trend:           report.Trend,
		Recommendations: report.Recommendations,
	}

	return r.write(summary)
}

// Write encodes any value with the reporter's settings
func (r *JSONReporter) Write(v interface{}) error {
	return r.write(v)
}

func (r *JSONReporter) write(v interface{}) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}
