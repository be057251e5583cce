package aggregator

import (
	"fmt"
	"sort"

	"github.com/ppiankov/adfit/internal/models"
)

// finding kinds that turn into recommendations
const (
	kindCMYK           = "cmyk"
	kindOverTolerance  = "size_over"
	kindNearTolerance  = "size_near"
	kindBanner         = "banner"
	kindUnplaced       = "unplaced"
	kindInvalid        = "invalid"
	kindIncompleteSets = "incomplete_groups"
)

// RecommendationGenerator creates actionable recommendations from a check
type RecommendationGenerator struct{}

// NewRecommendationGenerator creates a new recommendation generator
func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{}
}

// GenerateRecommendations counts affected assets per kind of problem and
// returns one recommendation per kind, most urgent first.
func (r *RecommendationGenerator) GenerateRecommendations(report *models.CheckReport) []models.Recommendation {
	counts := make(map[string]int)

	for _, ar := range report.Assets {
		codes := assetCodes(ar)
		switch {
		case codes[models.CodeCMYK]:
			counts[kindCMYK]++
		case ar.Status() == models.AssetInvalid:
			counts[kindInvalid]++
		}
		if codes[models.CodeSizeOverTolerance] {
			counts[kindOverTolerance]++
		} else if codes[models.CodeSizeWithinTolerance] {
			counts[kindNearTolerance]++
		}
		if ar.Banner != nil && (len(ar.Banner.Issues) > 0 || len(ar.Banner.Warnings) > 0) {
			counts[kindBanner]++
		}
		if ar.Status() == models.AssetUnplaced {
			counts[kindUnplaced]++
		}
	}
	for _, g := range report.Groups {
		if !g.Complete {
			counts[kindIncompleteSets]++
		}
	}

	recommendations := []models.Recommendation{}
	for kind, count := range counts {
		recommendations = append(recommendations, models.Recommendation{
			Priority: r.priority(kind),
			Action:   r.generateAction(kind, count),
			Impact:   r.generateImpact(kind),
			Count:    count,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		pi, pj := r.priorityRank(recommendations[i].Priority), r.priorityRank(recommendations[j].Priority)
		if pi != pj {
			return pi > pj
		}
		if recommendations[i].Count != recommendations[j].Count {
			return recommendations[i].Count > recommendations[j].Count
		}
		return recommendations[i].Action < recommendations[j].Action
	})

	return recommendations
}

// assetCodes collects the finding codes seen on any placement of the asset
func assetCodes(ar models.AssetReport) map[string]bool {
	codes := make(map[string]bool)
	for _, results := range [][]models.PlacementResult{ar.Compatible, ar.Incompatible} {
		for _, p := range results {
			for _, f := range p.Outcome.Findings {
				codes[f.Code] = true
			}
		}
	}
	return codes
}

func (r *RecommendationGenerator) priority(kind string) string {
	switch kind {
	case kindCMYK, kindIncompleteSets, kindInvalid:
		return models.PriorityHigh
	case kindOverTolerance, kindBanner, kindUnplaced:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// generateAction creates actionable text for a kind of problem
func (r *RecommendationGenerator) generateAction(kind string, count int) string {
	switch kind {
	case kindCMYK:
		return fmt.Sprintf("Convert %d file(s) from CMYK to RGB", count)
	case kindInvalid:
		return fmt.Sprintf("Fix %d file(s) that fail every matching placement", count)
	case kindIncompleteSets:
		return fmt.Sprintf("Complete %d multi-file group(s)", count)
	case kindOverTolerance:
		return fmt.Sprintf("Reduce the size of %d file(s) beyond the 5%% tolerance", count)
	case kindNearTolerance:
		return fmt.Sprintf("Trim %d file(s) slightly over the size limit", count)
	case kindBanner:
		return fmt.Sprintf("Fix HTML5 packaging in %d banner(s)", count)
	case kindUnplaced:
		return fmt.Sprintf("Review %d file(s) that match no placement", count)
	default:
		return fmt.Sprintf("Address %d file(s)", count)
	}
}

// generateImpact describes what happens if the problem is left alone
func (r *RecommendationGenerator) generateImpact(kind string) string {
	switch kind {
	case kindCMYK:
		return "Networks reject CMYK images or render them with wrong colors"
	case kindInvalid:
		return "The files cannot be booked on any placement"
	case kindIncompleteSets:
		return "Composite formats cannot run with missing parts"
	case kindOverTolerance:
		return "Networks are likely to reject the files at trafficking"
	case kindNearTolerance:
		return "Accepted within tolerance, but some networks enforce the exact limit"
	case kindBanner:
		return "Clicks may not be tracked or the banner may be rejected at review"
	case kindUnplaced:
		return "The files will not be used in this campaign"
	default:
		return "Review and address as needed"
	}
}

// priorityRank returns numeric priority for sorting (higher = more urgent)
func (r *RecommendationGenerator) priorityRank(priority string) int {
	switch priority {
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 1
	default:
		return 0
	}
}

// GetTopRecommendations returns the top N most urgent recommendations
func (r *RecommendationGenerator) GetTopRecommendations(recommendations []models.Recommendation, n int) []models.Recommendation {
	if n >= len(recommendations) {
		return recommendations
	}
	return recommendations[:n]
}
