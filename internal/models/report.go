package models

import "time"

// BannerReport is the structural validation result for a packaged HTML5 banner
type BannerReport struct {
	Valid        bool     `json:"valid"`
	IsPackaged   bool     `json:"is_packaged"`
	Dimensions   string   `json:"dimensions,omitempty"`
	FileCount    int      `json:"file_count"`
	RootDocument string   `json:"root_document,omitempty"`
	Issues       []string `json:"issues"`
	Warnings     []string `json:"warnings"`
}

// PlacementResult pairs a match candidate with its validation outcome
type PlacementResult struct {
	MatchCandidate
	Outcome Outcome `json:"outcome"`
}

// AssetReport is the per-asset compatibility report handed to reporting
type AssetReport struct {
	Asset        FileAsset         `json:"asset"`
	Banner       *BannerReport     `json:"banner,omitempty"`
	Compatible   []PlacementResult `json:"compatible"`
	Incompatible []PlacementResult `json:"incompatible"`
	// Groups holds indices into CheckReport.Groups
	Groups []int  `json:"groups,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Placed reports whether the asset fits at least one placement
func (r AssetReport) Placed() bool {
	return len(r.Compatible) > 0
}

// WarningCount counts warnings across every evaluated placement
func (r AssetReport) WarningCount() int {
	n := 0
	for _, p := range r.Compatible {
		n += len(p.Outcome.Warnings)
	}
	for _, p := range r.Incompatible {
		n += len(p.Outcome.Warnings)
	}
	return n
}

// IssueCount counts issues across every evaluated placement
func (r AssetReport) IssueCount() int {
	n := 0
	for _, p := range r.Incompatible {
		n += len(p.Outcome.Issues)
	}
	return n
}

// Status classifies the asset for summaries: placed, invalid (candidates
// exist but none validated) or unplaced (no candidate at all).
func (r AssetReport) Status() string {
	switch {
	case len(r.Compatible) > 0:
		return AssetPlaced
	case len(r.Incompatible) > 0:
		return AssetInvalid
	default:
		return AssetUnplaced
	}
}

// Asset statuses
const (
	AssetPlaced   = "placed"
	AssetInvalid  = "invalid"
	AssetUnplaced = "unplaced"
)

// CheckSummary provides aggregate statistics across one run
type CheckSummary struct {
	TotalAssets         int            `json:"total_assets"`
	PlacedAssets        int            `json:"placed_assets"`
	UnplacedAssets      int            `json:"unplaced_assets"`
	InvalidAssets       int            `json:"invalid_assets"`
	TotalIssues         int            `json:"total_issues"`
	TotalWarnings       int            `json:"total_warnings"`
	PlacementsByNetwork map[string]int `json:"placements_by_network"`
	AssetsByFormat      map[string]int `json:"assets_by_format"`
	TotalGroups         int            `json:"total_groups"`
	CompleteGroups      int            `json:"complete_groups"`
}

// Recommendation priority levels
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation represents an actionable item to fix
type Recommendation struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
	Count    int    `json:"count"`
}

// CheckReport is the complete output of one compatibility run
type CheckReport struct {
	RunID           string           `json:"run_id"`
	Timestamp       time.Time        `json:"timestamp"`
	RegistryVersion string           `json:"registry_version"`
	Network         string           `json:"network,omitempty"`
	Tier            Tier             `json:"tier,omitempty"`
	Assets          []AssetReport    `json:"assets"`
	Groups          []MultiFileGroup `json:"groups"`
	Summary         CheckSummary     `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
	Trend           *Trend           `json:"trend,omitempty"`
}

// Trend compares a run with the previous stored run
type Trend struct {
	Direction        string    `json:"direction"` // improving, degrading, stable
	PreviousIssues   int       `json:"previous_issues"`
	CurrentIssues    int       `json:"current_issues"`
	PreviousWarnings int       `json:"previous_warnings"`
	CurrentWarnings  int       `json:"current_warnings"`
	ChangePercent    float64   `json:"change_percent"`
	ComparedWith     time.Time `json:"compared_with"`
}

// TrendSummary describes issue counts across several stored runs
type TrendSummary struct {
	RunsAnalyzed     int    `json:"runs_analyzed"`
	TimeRange        string `json:"time_range"`
	IssueSparkline   []int  `json:"issue_sparkline"`
	WarningSparkline []int  `json:"warning_sparkline"`
	PlacedSparkline  []int  `json:"placed_sparkline"`
}
