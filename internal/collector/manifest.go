package collector

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/adfit/internal/models"
)

// manifestEntry is one pre-analyzed asset. color_space_valid defaults to
// true when omitted.
type manifestEntry struct {
	Path            string `yaml:"path"`
	FolderPath      string `yaml:"folder_path"`
	Dimensions      string `yaml:"dimensions"`
	SizeKB          int    `yaml:"size_kb"`
	FileFormat      string `yaml:"file_format"`
	ColorSpaceValid *bool  `yaml:"color_space_valid"`
	DetectedFormat  string `yaml:"detected_format"`
}

type manifest struct {
	Assets []manifestEntry `yaml:"assets"`
}

// LoadManifest reads a YAML (or JSON) list of assets that were analyzed
// elsewhere. Entries keep the order of the file.
func LoadManifest(filename string) ([]models.FileAsset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest bytes. Either a top-level list or an
// "assets" key is accepted.
func ParseManifest(data []byte) ([]models.FileAsset, error) {
	var entries []manifestEntry
	var doc manifest
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Assets) > 0 {
		entries = doc.Assets
	} else if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest contains no assets")
	}

	assets := make([]models.FileAsset, 0, len(entries))
	var problems []string
	for i, e := range entries {
		asset, err := e.toAsset()
		if err != nil {
			problems = append(problems, fmt.Sprintf("entry %d: %v", i+1, err))
			continue
		}
		assets = append(assets, asset)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid manifest:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return assets, nil
}

func (e manifestEntry) toAsset() (models.FileAsset, error) {
	if e.Path == "" {
		return models.FileAsset{}, fmt.Errorf("path is required")
	}
	if e.SizeKB < 0 {
		return models.FileAsset{}, fmt.Errorf("%s: size_kb must not be negative", e.Path)
	}

	tag, err := models.ParseFormatTag(e.DetectedFormat)
	if err != nil {
		return models.FileAsset{}, fmt.Errorf("%s: %w", e.Path, err)
	}

	folder := e.FolderPath
	if folder == "" {
		folder = path.Dir(e.Path)
	}

	format := strings.ToLower(e.FileFormat)
	if format == "jpeg" {
		format = models.FileFormatJPG
	}
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(path.Ext(e.Path)), ".")
		if format == "jpeg" {
			format = models.FileFormatJPG
		}
	}

	asset := models.FileAsset{
		Path:            e.Path,
		FileName:        path.Base(e.Path),
		FolderPath:      folder,
		Dimensions:      e.Dimensions,
		SizeKB:          e.SizeKB,
		FileFormat:      format,
		ColorSpaceValid: e.ColorSpaceValid == nil || *e.ColorSpaceValid,
		DetectedFormat:  tag,
	}
	if tag == models.FormatNone && e.DetectedFormat == "" {
		asset.DetectedFormat = DetectFormat(folder, asset.FileName)
	}
	return asset, nil
}
