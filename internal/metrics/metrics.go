// Package metrics exports the counters of one check run in the Prometheus
// text format, for pickup by a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/adfit/internal/models"
)

// Recorder holds the collectors of one run. Each run gets its own registry.
type Recorder struct {
	registry *prometheus.Registry

	assets       *prometheus.CounterVec
	placements   *prometheus.CounterVec
	findings     *prometheus.CounterVec
	groups       *prometheus.CounterVec
	assetSize    prometheus.Histogram
	lastRun      prometheus.Gauge
	unplaced     prometheus.Gauge
	registryInfo *prometheus.GaugeVec
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		// assets checked, labelled by file format
		assets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adfit_assets_total",
				Help: "Assets checked, by file format",
			},
			[]string{"format"},
		),

		// compatible placements per network
		placements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adfit_compatible_placements_total",
				Help: "Compatible placements found, by network",
			},
			[]string{"network"},
		),

		// findings by severity and code
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adfit_findings_total",
				Help: "Validation findings, by severity and code",
			},
			[]string{"severity", "code"},
		),

		groups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adfit_groups_total",
				Help: "Multi-file groups detected, by family and completeness",
			},
			[]string{"family", "complete"},
		),

		assetSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adfit_asset_size_kb",
				Help:    "Asset file sizes in KB",
				Buckets: []float64{50, 100, 150, 200, 250, 300, 500, 600, 1024, 5120},
			},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "adfit_last_run_timestamp_seconds",
				Help: "Unix time of the run",
			},
		),

		unplaced: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "adfit_unplaced_assets",
				Help: "Assets with no compatible placement",
			},
		),

		registryInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "adfit_registry_info",
				Help: "Registry version used for the run",
			},
			[]string{"version"},
		),
	}

	r.registry.MustRegister(
		r.assets,
		r.placements,
		r.findings,
		r.groups,
		r.assetSize,
		r.lastRun,
		r.unplaced,
		r.registryInfo,
	)
	return r
}

// Observe records a check report
func (r *Recorder) Observe(report *models.CheckReport) {
	for _, ar := range report.Assets {
		format := ar.Asset.FileFormat
		if format == "" {
			format = "unknown"
		}
		r.assets.WithLabelValues(format).Inc()
		r.assetSize.Observe(float64(ar.Asset.SizeKB))

		for _, p := range ar.Compatible {
			r.placements.WithLabelValues(p.Network).Inc()
		}
		for _, results := range [][]models.PlacementResult{ar.Compatible, ar.Incompatible} {
			for _, p := range results {
				for _, f := range p.Outcome.Findings {
					r.findings.WithLabelValues(string(f.Severity), f.Code).Inc()
				}
			}
		}
	}

	for _, g := range report.Groups {
		r.groups.WithLabelValues(string(g.FormatTag), strconv.FormatBool(g.Complete)).Inc()
	}

	r.unplaced.Set(float64(report.Summary.UnplacedAssets + report.Summary.InvalidAssets))
	r.lastRun.Set(float64(report.Timestamp.Unix()))
	r.registryInfo.WithLabelValues(report.RegistryVersion).Set(1)
}

// Gatherer exposes the run registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteToTextfile writes the metrics atomically to path
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
