package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/adfit/internal/models"
)

func TestParseManifestList(t *testing.T) {
	assets, err := ParseManifest([]byte(`
- path: campaign/rect_300x250.jpg
  dimensions: 300x250
  size_kb: 80
- path: brand/bg.jpeg
  dimensions: 2560x1440
  size_kb: 650
  detected_format: branding
  color_space_valid: false
`))
	require.NoError(t, err)
	require.Len(t, assets, 2)

	rect := assets[0]
	assert.Equal(t, "rect_300x250.jpg", rect.FileName)
	assert.Equal(t, "campaign", rect.FolderPath)
	assert.Equal(t, models.FileFormatJPG, rect.FileFormat)
	assert.True(t, rect.ColorSpaceValid, "defaults to RGB")
	assert.Equal(t, models.FormatNone, rect.DetectedFormat)

	bg := assets[1]
	assert.Equal(t, models.FileFormatJPG, bg.FileFormat)
	assert.False(t, bg.ColorSpaceValid)
	assert.Equal(t, models.FormatBranding, bg.DetectedFormat)
}

func TestParseManifestAssetsKeyAndJSON(t *testing.T) {
	assets, err := ParseManifest([]byte(`{"assets": [{"path": "x/Spincube/1.png", "dimensions": "480x480", "size_kb": 10, "file_format": "png"}]}`))
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, models.FormatSpincube, assets[0].DetectedFormat, "tag inferred from the path")
}

func TestParseManifestErrors(t *testing.T) {
	tests := map[string]string{
		"empty":       `[]`,
		"not yaml":    `[unterminated`,
		"no path":     `[{dimensions: 300x250}]`,
		"bad tag":     `[{path: a.jpg, detected_format: video}]`,
		"negative kb": `[{path: a.jpg, size_kb: -1}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- path: a/b.png\n  dimensions: 300x250\n"), 0o644))

	assets, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Len(t, assets, 1)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
