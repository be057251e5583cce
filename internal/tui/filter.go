package tui

import (
	"sort"
	"strings"

	"github.com/ppiankov/adfit/internal/models"
)

// Row statuses, ordered from most to least severe.
const (
	statusFail = "fail"
	statusNone = "none"
	statusWarn = "warn"
	statusOK   = "ok"
)

// entry is one table row: an asset against one placement, or an asset
// with no candidate placement at all.
type entry struct {
	Asset     models.FileAsset
	Placement *models.PlacementResult
	Status    string
	Note      string
}

func (e entry) network() string {
	if e.Placement == nil {
		return ""
	}
	return e.Placement.Network
}

func (e entry) placementKey() string {
	if e.Placement == nil {
		return ""
	}
	return e.Placement.PlacementKey
}

// buildEntries flattens a check report into table entries, keeping the
// report's asset order.
func buildEntries(report *models.CheckReport) []entry {
	var out []entry
	for _, a := range report.Assets {
		if len(a.Compatible) == 0 && len(a.Incompatible) == 0 {
			out = append(out, entry{Asset: a.Asset, Status: statusNone, Note: a.Note})
			continue
		}
		for i := range a.Compatible {
			p := a.Compatible[i]
			status := statusOK
			if len(p.Outcome.Warnings) > 0 {
				status = statusWarn
			}
			out = append(out, entry{Asset: a.Asset, Placement: &p, Status: status})
		}
		for i := range a.Incompatible {
			p := a.Incompatible[i]
			out = append(out, entry{Asset: a.Asset, Placement: &p, Status: statusFail})
		}
	}
	return out
}

// filterState holds current active filters.
type filterState struct {
	Network    string
	Status     string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortByStatus sortField = iota
	sortByAsset
	sortByNetwork
	sortByPlacement
	sortBySize
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 5

var statusPriority = map[string]int{
	statusFail: 0, statusNone: 1, statusWarn: 2, statusOK: 3,
}

// applyFilters returns entries matching all active filters.
func applyFilters(entries []entry, f filterState) []entry {
	result := make([]entry, 0, len(entries))
	searchLower := strings.ToLower(f.SearchText)

	for _, e := range entries {
		if f.Network != "" && e.network() != f.Network {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if searchLower != "" && !matchesSearch(e, searchLower) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func matchesSearch(e entry, searchLower string) bool {
	fields := []string{e.Asset.Path, e.Asset.Dimensions, string(e.Asset.DetectedFormat), e.Status, e.network(), e.placementKey()}
	if e.Placement != nil {
		fields = append(fields, e.Placement.Outcome.Issues...)
		fields = append(fields, e.Placement.Outcome.Warnings...)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), searchLower) {
			return true
		}
	}
	return false
}

// sortEntries sorts entries in place by the given field.
func sortEntries(entries []entry, field sortField) {
	sort.SliceStable(entries, func(i, j int) bool {
		switch field {
		case sortByStatus:
			return statusPriority[entries[i].Status] < statusPriority[entries[j].Status]
		case sortByAsset:
			return entries[i].Asset.Path < entries[j].Asset.Path
		case sortByNetwork:
			return entries[i].network() < entries[j].network()
		case sortByPlacement:
			return entries[i].placementKey() < entries[j].placementKey()
		case sortBySize:
			return entries[i].Asset.SizeKB > entries[j].Asset.SizeKB
		default:
			return false
		}
	})
}

// uniqueNetworks returns deduplicated, sorted network names.
func uniqueNetworks(entries []entry) []string {
	seen := make(map[string]bool)
	var networks []string
	for _, e := range entries {
		n := e.network()
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		networks = append(networks, n)
	}
	sort.Strings(networks)
	return networks
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortByStatus:
		return "status"
	case sortByAsset:
		return "asset"
	case sortByNetwork:
		return "network"
	case sortByPlacement:
		return "placement"
	case sortBySize:
		return "size"
	default:
		return "unknown"
	}
}
