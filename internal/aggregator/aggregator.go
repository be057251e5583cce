package aggregator

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/adfit/internal/grouping"
	"github.com/ppiankov/adfit/internal/log"
	"github.com/ppiankov/adfit/internal/matcher"
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/registry"
	"github.com/ppiankov/adfit/internal/validator"
)

// UnplacedNote is attached to assets that match no placement at all
const UnplacedNote = "No placement in the registry accepts this file's dimensions and format"

// Options narrow a check run
type Options struct {
	Network string
	Tier    models.Tier
}

// Aggregator runs the engine over a collection of assets
type Aggregator struct {
	registry    *registry.Registry
	validator   *validator.Validator
	recommender *RecommendationGenerator
	log         *zap.SugaredLogger
	now         func() time.Time
}

// New creates a new aggregator. logger may be nil.
func New(reg *registry.Registry, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		registry:    reg,
		validator:   validator.New(),
		recommender: NewRecommendationGenerator(),
		log:         log.OrNop(logger),
		now:         time.Now,
	}
}

// Check matches and validates every asset, detects multi-file groups and
// builds the run summary. banners is keyed by asset path and may be nil.
func (a *Aggregator) Check(assets []models.FileAsset, banners map[string]*models.BannerReport, opts Options) *models.CheckReport {
	report := &models.CheckReport{
		RunID:           uuid.NewString(),
		Timestamp:       a.now().UTC(),
		RegistryVersion: a.registry.Version(),
		Network:         opts.Network,
		Tier:            opts.Tier,
		Assets:          make([]models.AssetReport, 0, len(assets)),
		Summary: models.CheckSummary{
			PlacementsByNetwork: make(map[string]int),
			AssetsByFormat:      make(map[string]int),
		},
		Recommendations: []models.Recommendation{},
	}

	for _, asset := range assets {
		report.Assets = append(report.Assets, a.CheckAsset(asset, banners[asset.Path], opts))
	}

	report.Groups = grouping.Detect(a.registry, assets)
	crossReference(report)

	a.calculateSummary(report)
	report.Recommendations = a.recommender.GenerateRecommendations(report)

	a.log.Infow("check complete",
		"run_id", report.RunID,
		"assets", report.Summary.TotalAssets,
		"placed", report.Summary.PlacedAssets,
		"groups", report.Summary.TotalGroups,
	)

	return report
}

// CheckAsset matches one asset and validates it against every candidate
func (a *Aggregator) CheckAsset(asset models.FileAsset, banner *models.BannerReport, opts Options) models.AssetReport {
	ar := models.AssetReport{
		Asset:        asset,
		Banner:       banner,
		Compatible:   []models.PlacementResult{},
		Incompatible: []models.PlacementResult{},
	}

	for _, c := range matcher.Match(a.registry, asset, opts.Network, opts.Tier) {
		outcome := a.validator.ValidateCandidate(asset, c, banner)
		result := models.PlacementResult{MatchCandidate: c, Outcome: outcome}
		if outcome.Valid {
			ar.Compatible = append(ar.Compatible, result)
		} else {
			ar.Incompatible = append(ar.Incompatible, result)
		}
	}

	if ar.Status() == models.AssetUnplaced {
		ar.Note = UnplacedNote
		if banner != nil && !banner.IsPackaged {
			ar.Note = "Archive could not be read"
		}
	}

	a.log.Debugw("asset checked",
		"asset", asset.Path,
		"compatible", len(ar.Compatible),
		"incompatible", len(ar.Incompatible),
	)
	return ar
}

// crossReference records on every asset report the groups it belongs to
func crossReference(report *models.CheckReport) {
	index := make(map[string]int, len(report.Assets))
	for i, ar := range report.Assets {
		index[ar.Asset.Path] = i
	}
	for gi, g := range report.Groups {
		for _, m := range g.Members {
			if i, ok := index[m.Path]; ok {
				report.Assets[i].Groups = append(report.Assets[i].Groups, gi)
			}
		}
	}
}

// calculateSummary computes summary statistics from asset reports
func (a *Aggregator) calculateSummary(report *models.CheckReport) {
	s := &report.Summary
	s.TotalAssets = len(report.Assets)

	for _, ar := range report.Assets {
		switch ar.Status() {
		case models.AssetPlaced:
			s.PlacedAssets++
		case models.AssetInvalid:
			s.InvalidAssets++
		default:
			s.UnplacedAssets++
		}

		s.TotalIssues += ar.IssueCount()
		s.TotalWarnings += ar.WarningCount()

		format := ar.Asset.FileFormat
		if format == "" {
			format = "unknown"
		}
		s.AssetsByFormat[format]++

		for _, p := range ar.Compatible {
			s.PlacementsByNetwork[p.Network]++
		}
	}

	s.TotalGroups = len(report.Groups)
	for _, g := range report.Groups {
		if g.Complete {
			s.CompleteGroups++
		}
	}
}
