package collector

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/ppiankov/adfit/internal/html5"
	"github.com/ppiankov/adfit/internal/models"
)

// supportedExtensions maps file extensions to the analysis they get
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".zip":  true,
}

// IsSupported reports whether the file extension is analyzed
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// AnalyzeFile reads one file and describes it as a FileAsset. Archives also
// return their banner report.
func AnalyzeFile(path string) (models.FileAsset, *models.BannerReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.FileAsset{}, nil, fmt.Errorf("failed to read file: %w", err)
	}

	asset := models.FileAsset{
		Path:            filepath.ToSlash(path),
		FileName:        filepath.Base(path),
		FolderPath:      filepath.ToSlash(filepath.Dir(path)),
		SizeKB:          SizeKB(len(data)),
		ColorSpaceValid: true,
		Fingerprint:     Fingerprint(data),
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		banner := html5.Validate(asset.FileName, data)
		if banner.IsPackaged {
			asset.FileFormat = models.FileFormatHTML5
			asset.Dimensions = banner.Dimensions
		}
		asset.DetectedFormat = DetectFormat(asset.FolderPath, asset.FileName)
		return asset, &banner, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.FileAsset{}, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	asset.Dimensions = models.FormatDimensions(cfg.Width, cfg.Height)
	asset.FileFormat = fileFormat(format)
	asset.ColorSpaceValid = rgbColorModel(cfg.ColorModel)
	asset.DetectedFormat = DetectFormat(asset.FolderPath, asset.FileName)

	return asset, nil, nil
}

// rgbColorModel reports false for CMYK (and Adobe YCCK) JPEGs, which the
// decoder exposes as CMYKModel.
func rgbColorModel(m color.Model) bool {
	return m != color.CMYKModel
}

// SizeKB converts a byte count to kilobytes, rounding up
func SizeKB(n int) int {
	return (n + 1023) / 1024
}

// Fingerprint returns the hex BLAKE3 digest of data
func Fingerprint(data []byte) string {
	h := blake3.New()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// fileFormat maps a decoder name to a file format token
func fileFormat(decoder string) string {
	switch decoder {
	case "jpeg":
		return models.FileFormatJPG
	case "png":
		return models.FileFormatPNG
	case "gif":
		return models.FileFormatGIF
	default:
		return decoder
	}
}
