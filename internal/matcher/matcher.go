// Package matcher enumerates the placements an asset could occupy.
package matcher

import (
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/registry"
)

// Match returns every (network, placement) pair the asset could occupy.
// An empty network or tier means "no filter". Output order follows the
// sorted network ids and, within a network, the sorted placement keys.
//
// Size is only checked strictly here (SizeValid); the tolerance rule
// lives in the validator.
func Match(reg *registry.Registry, asset models.FileAsset, network string, tier models.Tier) []models.MatchCandidate {
	candidates := []models.MatchCandidate{}

	for _, n := range candidateNetworks(reg, asset, network) {
		for _, key := range reg.PlacementKeys(n) {
			spec, _ := reg.Placement(n, key)
			if !fits(asset, key, spec, tier) {
				continue
			}
			candidates = append(candidates, models.MatchCandidate{
				Network:      n,
				Tier:         tier,
				PlacementKey: key,
				Spec:         spec,
				SizeValid:    asset.SizeKB <= spec.MaxSizeKB,
				SizeLimit:    spec.MaxSizeKB,
				FileSizeKB:   asset.SizeKB,
			})
		}
	}

	return candidates
}

// candidateNetworks narrows the networks by the explicit filter and the
// format allowlist.
func candidateNetworks(reg *registry.Registry, asset models.FileAsset, network string) []string {
	var base []string
	if network != "" {
		if !reg.HasNetwork(network) {
			return nil
		}
		base = []string{network}
	} else {
		base = reg.Networks()
	}

	tag := asset.DetectedFormat
	if tag.IsGeneric() {
		tag = models.FormatStandard
	}
	if !reg.HasAllowlistEntry(tag) {
		return base
	}

	allowed := make(map[string]bool)
	for _, n := range reg.AllowedNetworks(tag) {
		allowed[n] = true
	}

	var out []string
	for _, n := range base {
		if allowed[n] {
			out = append(out, n)
		}
	}
	return out
}

// fits applies the per-spec skip rules in order.
func fits(asset models.FileAsset, key string, spec models.PlacementSpec, tier models.Tier) bool {
	if !spec.AppliesToTier(tier) {
		return false
	}
	if !spec.HasDimension(asset.Dimensions) {
		return false
	}
	// composite placements only take files named for them, and files
	// named for a composite only go to that composite
	if spec.IsMultiFile() && string(asset.DetectedFormat) != key {
		return false
	}
	if models.KnownFormatTags[asset.DetectedFormat].Composite && string(asset.DetectedFormat) != key {
		return false
	}
	if asset.IsPackaged() {
		return spec.AllowsFormat(models.FileFormatHTML5)
	}
	return spec.AllowsFormat(asset.FileFormat)
}
