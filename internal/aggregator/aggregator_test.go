package aggregator

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/registry"
)

func newTestAggregator() *Aggregator {
	a := New(registry.Default(), nil)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func rect() models.FileAsset {
	return models.FileAsset{
		Path:            "campaign/rect_300x250.jpg",
		FileName:        "rect_300x250.jpg",
		FolderPath:      "campaign",
		Dimensions:      "300x250",
		SizeKB:          80,
		FileFormat:      models.FileFormatJPG,
		ColorSpaceValid: true,
	}
}

func TestCheckStandardBanner(t *testing.T) {
	report := newTestAggregator().Check([]models.FileAsset{rect()}, nil, Options{})

	_, err := uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:00Z", report.Timestamp.Format(time.RFC3339))
	assert.Equal(t, registry.Default().Version(), report.RegistryVersion)

	require.Len(t, report.Assets, 1)
	ar := report.Assets[0]
	assert.Len(t, ar.Compatible, 4)
	assert.Empty(t, ar.Incompatible)
	assert.Empty(t, ar.Note)

	s := report.Summary
	assert.Equal(t, 1, s.TotalAssets)
	assert.Equal(t, 1, s.PlacedAssets)
	assert.Equal(t, map[string]int{"interia": 1, "onet": 1, "wp": 2}, s.PlacementsByNetwork)
	assert.Equal(t, map[string]int{"jpg": 1}, s.AssetsByFormat)
	assert.Empty(t, report.Groups)
	assert.Empty(t, report.Recommendations)
}

func TestCheckCMYKIsInvalid(t *testing.T) {
	asset := rect()
	asset.ColorSpaceValid = false

	report := newTestAggregator().Check([]models.FileAsset{asset}, nil, Options{Network: "onet"})

	ar := report.Assets[0]
	assert.Empty(t, ar.Compatible)
	require.Len(t, ar.Incompatible, 1)
	assert.Equal(t, models.AssetInvalid, ar.Status())
	assert.Equal(t, 1, report.Summary.InvalidAssets)
	assert.Equal(t, 1, report.Summary.TotalIssues)

	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, models.PriorityHigh, report.Recommendations[0].Priority)
	assert.Contains(t, report.Recommendations[0].Action, "CMYK")
}

func TestCheckUnplaced(t *testing.T) {
	asset := rect()
	asset.Dimensions = "123x45"

	report := newTestAggregator().Check([]models.FileAsset{asset}, nil, Options{})

	ar := report.Assets[0]
	assert.Equal(t, models.AssetUnplaced, ar.Status())
	assert.Equal(t, UnplacedNote, ar.Note)
	assert.Equal(t, 1, report.Summary.UnplacedAssets)
	assert.Equal(t, 0, report.Summary.PlacedAssets)
}

func TestCheckBrandingTolerance(t *testing.T) {
	asset := models.FileAsset{
		Path:            "brand/screening.jpg",
		FileName:        "screening.jpg",
		FolderPath:      "brand",
		Dimensions:      "2560x1440",
		SizeKB:          650,
		FileFormat:      models.FileFormatJPG,
		ColorSpaceValid: true,
		DetectedFormat:  models.FormatBranding,
	}

	report := newTestAggregator().Check([]models.FileAsset{asset}, nil, Options{})

	ar := report.Assets[0]
	require.Len(t, ar.Compatible, 2, "onet and wp both sell branding")
	for _, p := range ar.Compatible {
		assert.True(t, p.Outcome.Valid)
		require.Len(t, p.Outcome.Warnings, 1)
		assert.Contains(t, p.Outcome.Warnings[0], "650KB")
		assert.Contains(t, p.Outcome.Warnings[0], "630KB")
	}
	assert.Equal(t, 2, report.Summary.TotalWarnings)
	assert.Equal(t, 0, report.Summary.TotalIssues)
}

func TestCheckPackagedBannerFoldsWarnings(t *testing.T) {
	asset := models.FileAsset{
		Path:           "HTML5_970x210_leaderboard.zip",
		FileName:       "HTML5_970x210_leaderboard.zip",
		Dimensions:     "970x210",
		SizeKB:         120,
		FileFormat:     models.FileFormatHTML5,
		DetectedFormat: models.FormatHTML5,
	}
	banners := map[string]*models.BannerReport{
		asset.Path: {
			IsPackaged: true,
			Dimensions: "970x210",
			Issues:     []string{"Missing __CLICKTHRU__ placeholder"},
			Warnings:   []string{},
		},
	}

	report := newTestAggregator().Check([]models.FileAsset{asset}, banners, Options{})

	ar := report.Assets[0]
	require.Len(t, ar.Compatible, 1)
	assert.Equal(t, "leaderboard", ar.Compatible[0].PlacementKey)
	assert.Equal(t, []string{"HTML5: Missing __CLICKTHRU__ placeholder"}, ar.Compatible[0].Outcome.Warnings)
	assert.Same(t, banners[asset.Path], ar.Banner)

	var actions []string
	for _, r := range report.Recommendations {
		actions = append(actions, r.Action)
	}
	assert.Contains(t, actions, "Fix HTML5 packaging in 1 banner(s)")
}

func TestCheckUnreadableArchiveNote(t *testing.T) {
	asset := models.FileAsset{Path: "broken.zip", FileName: "broken.zip"}
	banners := map[string]*models.BannerReport{
		"broken.zip": {Issues: []string{"archive could not be read"}, Warnings: []string{}},
	}

	report := newTestAggregator().Check([]models.FileAsset{asset}, banners, Options{})
	assert.Equal(t, "Archive could not be read", report.Assets[0].Note)
	assert.Equal(t, 1, report.Summary.AssetsByFormat["unknown"])
}

func TestCheckGroupsCrossReference(t *testing.T) {
	var assets []models.FileAsset
	for i := 1; i <= 3; i++ {
		assets = append(assets, models.FileAsset{
			Path:            fmt.Sprintf("cube/Spincube/%d.png", i),
			FileName:        fmt.Sprintf("%d.png", i),
			FolderPath:      "cube/Spincube",
			Dimensions:      "480x480",
			SizeKB:          100,
			FileFormat:      models.FileFormatPNG,
			ColorSpaceValid: true,
			DetectedFormat:  models.FormatSpincube,
		})
	}
	assets = append(assets, rect())

	report := newTestAggregator().Check(assets, nil, Options{})

	require.Len(t, report.Groups, 1)
	assert.False(t, report.Groups[0].Complete)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []int{0}, report.Assets[i].Groups)
		assert.Len(t, report.Assets[i].Compatible, 1)
	}
	assert.Empty(t, report.Assets[3].Groups)
	assert.Equal(t, 1, report.Summary.TotalGroups)
	assert.Equal(t, 0, report.Summary.CompleteGroups)

	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, "Complete 1 multi-file group(s)", report.Recommendations[0].Action)
}

func TestCheckTierFilter(t *testing.T) {
	report := newTestAggregator().Check([]models.FileAsset{rect()}, nil, Options{Network: "wp", Tier: models.TierLow})

	assert.Equal(t, "wp", report.Network)
	assert.Equal(t, models.TierLow, report.Tier)
	require.Len(t, report.Assets[0].Compatible, 1)
	assert.Equal(t, "rectangle_low", report.Assets[0].Compatible[0].PlacementKey)
}

func TestCheckEmpty(t *testing.T) {
	report := newTestAggregator().Check(nil, nil, Options{})

	assert.NotNil(t, report.Assets)
	assert.NotNil(t, report.Groups)
	assert.NotNil(t, report.Recommendations)
	assert.Zero(t, report.Summary.TotalAssets)
}
