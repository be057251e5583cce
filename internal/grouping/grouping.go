// Package grouping assembles files that together form one composite
// creative (scratch pairs, spincube sides, spinner slides, kombi pairs).
package grouping

import (
	"strings"

	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/registry"
)

// ReuseNote is attached to a two-image spincube.
const ReuseNote = "the two images will be reused for the remaining sides"

type shape int

const (
	shapeChunks shape = iota
	shapeSpincube
	shapeSpinner
	shapePaired
)

// family is one composite format and how its members are found
type family struct {
	tag     models.FormatTag
	keyword string
	shape   shape
}

// families are evaluated in this order; output order follows it
var families = []family{
	{tag: models.FormatScratch, keyword: "scratch", shape: shapeChunks},
	{tag: models.FormatSpincube, keyword: "spincube", shape: shapeSpincube},
	{tag: models.FormatSpinner, keyword: "spinner", shape: shapeSpinner},
	{tag: models.FormatKombi, shape: shapePaired},
}

// bucket holds the candidates of one family found in one folder
type bucket struct {
	folder string
	assets []models.FileAsset
}

// Detect returns every multi-file group in assets. Output depends only on
// the order of assets; nothing is sorted by name or size.
func Detect(reg *registry.Registry, assets []models.FileAsset) []models.MultiFileGroup {
	groups := []models.MultiFileGroup{}

	for _, fam := range families {
		network, spec, ok := reg.FindPlacement(string(fam.tag))
		if !ok || spec.MultiFile == nil {
			continue
		}

		for _, b := range collect(fam, spec, assets) {
			var built []models.MultiFileGroup
			switch fam.shape {
			case shapePaired:
				built = pair(b, spec)
			case shapeSpincube:
				built = chunkSpincube(b, spec)
			case shapeSpinner:
				built = chunk(b, spec, true)
			default:
				built = chunk(b, spec, false)
			}
			for i := range built {
				built[i].FormatTag = fam.tag
				built[i].Network = network
				built[i].FolderPath = b.folder
			}
			groups = append(groups, built...)
		}
	}

	return groups
}

// collect filters candidates for one family and partitions them by folder,
// keeping folders in first-encountered order.
func collect(fam family, spec models.PlacementSpec, assets []models.FileAsset) []*bucket {
	var order []*bucket
	byFolder := make(map[string]*bucket)

	for _, a := range assets {
		if !spec.HasDimension(a.Dimensions) {
			continue
		}
		if a.DetectedFormat != models.FormatNone && a.DetectedFormat != fam.tag && !a.DetectedFormat.IsGeneric() {
			continue
		}
		if fam.keyword != "" && !hasKeyword(a, fam.keyword) {
			continue
		}

		b, ok := byFolder[a.FolderPath]
		if !ok {
			b = &bucket{folder: a.FolderPath}
			byFolder[a.FolderPath] = b
			order = append(order, b)
		}
		b.assets = append(b.assets, a)
	}

	return order
}

func hasKeyword(a models.FileAsset, keyword string) bool {
	return strings.Contains(strings.ToLower(a.FileName), keyword) ||
		strings.Contains(strings.ToLower(a.FolderPath), keyword)
}

// chunk splits a bucket into groups of RequiredCount. With twoWay set, a
// trailing chunk of exactly two is a complete smaller group.
func chunk(b *bucket, spec models.PlacementSpec, twoWay bool) []models.MultiFileGroup {
	required := spec.MultiFile.RequiredCount
	var out []models.MultiFileGroup

	for start := 0; start < len(b.assets); start += required {
		end := start + required
		if end > len(b.assets) {
			end = len(b.assets)
		}
		members := b.assets[start:end]

		if twoWay && len(members) == 2 && required > 2 {
			out = append(out, newGroup(members, 2, spec.MultiFile.Roles[:2]))
			continue
		}
		out = append(out, newGroup(members, required, spec.MultiFile.Roles))
	}

	return out
}

// chunkSpincube accepts a folder of exactly two images as a complete cube.
func chunkSpincube(b *bucket, spec models.PlacementSpec) []models.MultiFileGroup {
	if len(b.assets) == 2 {
		g := newGroup(b.assets, 2, spec.MultiFile.Roles[:2])
		g.Note = ReuseNote
		return []models.MultiFileGroup{g}
	}
	return chunk(b, spec, false)
}

// pair matches the i-th file of the first role's dimension with the i-th
// file of the second role's dimension.
func pair(b *bucket, spec models.PlacementSpec) []models.MultiFileGroup {
	roles := spec.MultiFile.Roles
	if len(spec.Dimensions) < 2 || len(roles) < 2 {
		return nil
	}

	var first, second []models.FileAsset
	for _, a := range b.assets {
		switch a.Dimensions {
		case spec.Dimensions[0]:
			first = append(first, a)
		case spec.Dimensions[1]:
			second = append(second, a)
		}
	}

	n := len(first)
	if len(second) > n {
		n = len(second)
	}

	out := make([]models.MultiFileGroup, 0, n)
	for i := 0; i < n; i++ {
		var members []models.FileAsset
		if i < len(first) {
			members = append(members, first[i])
		}
		if i < len(second) {
			members = append(members, second[i])
		}
		out = append(out, newGroup(members, 2, roles[:2]))
	}
	return out
}

func newGroup(members []models.FileAsset, required int, roles []string) models.MultiFileGroup {
	m := make([]models.FileAsset, len(members))
	copy(m, members)
	r := make([]string, len(roles))
	copy(r, roles)

	return models.MultiFileGroup{
		Members:       m,
		Complete:      len(m) == required,
		RequiredCount: required,
		Roles:         r,
		Missing:       required - len(m),
	}
}

// Contains reports whether the group has a member at path
func Contains(g models.MultiFileGroup, path string) bool {
	for _, m := range g.Members {
		if m.Path == path {
			return true
		}
	}
	return false
}
