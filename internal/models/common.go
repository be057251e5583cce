package models

import (
	"fmt"
	"strings"
)

// FormatTag is the semantic format inferred from file and folder naming
// conventions. The set is closed: every tag the engine understands is
// declared here.
type FormatTag string

const (
	FormatNone      FormatTag = ""
	FormatHTML5     FormatTag = "html5"
	FormatBranding  FormatTag = "branding"
	FormatSpincube  FormatTag = "spincube"
	FormatScratch   FormatTag = "scratch"
	FormatSpinner   FormatTag = "spinner"
	FormatKombi     FormatTag = "kombi"
	FormatUAC       FormatTag = "uac"
	FormatExclusive FormatTag = "exclusive"

	// FormatStandard is the allowlist key for assets with no detected
	// format. It is never assigned to an asset.
	FormatStandard FormatTag = "standard"
)

// FormatTagInfo contains metadata about a detected format tag
type FormatTagInfo struct {
	Name string
	// Composite tags name a multi-file placement family.
	Composite bool
	// Generic tags do not narrow the candidate networks beyond the
	// standard allowlist entry.
	Generic bool
}

// KnownFormatTags defines every tag the engine understands
var KnownFormatTags = map[FormatTag]FormatTagInfo{
	FormatNone:      {Name: "standard", Generic: true},
	FormatHTML5:     {Name: "html5", Generic: true},
	FormatBranding:  {Name: "branding"},
	FormatSpincube:  {Name: "spincube", Composite: true},
	FormatScratch:   {Name: "scratch", Composite: true},
	FormatSpinner:   {Name: "spinner", Composite: true},
	FormatKombi:     {Name: "kombi", Composite: true},
	FormatUAC:       {Name: "uac"},
	FormatExclusive: {Name: "exclusive"},
}

// ParseFormatTag converts a string to a FormatTag. Empty input maps to
// FormatNone; unknown tags are an error.
func ParseFormatTag(s string) (FormatTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "standard":
		return FormatNone, nil
	case "html5":
		return FormatHTML5, nil
	case "branding":
		return FormatBranding, nil
	case "spincube":
		return FormatSpincube, nil
	case "scratch":
		return FormatScratch, nil
	case "spinner":
		return FormatSpinner, nil
	case "kombi":
		return FormatKombi, nil
	case "uac":
		return FormatUAC, nil
	case "exclusive":
		return FormatExclusive, nil
	default:
		return FormatNone, fmt.Errorf("unknown format tag: %q", s)
	}
}

// IsGeneric reports whether the tag leaves network selection to the
// standard allowlist entry.
func (t FormatTag) IsGeneric() bool {
	return KnownFormatTags[t].Generic
}

// File format tokens used by placement specs
const (
	FileFormatJPG   = "jpg"
	FileFormatPNG   = "png"
	FileFormatGIF   = "gif"
	FileFormatHTML5 = "html5"
)

// Tier is a campaign priority level
type Tier string

const (
	TierHigh Tier = "HIGH"
	TierLow  Tier = "LOW"
)

// ParseTier converts a string to a Tier. Empty input means "no tier filter".
func ParseTier(s string) (Tier, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "HIGH":
		return TierHigh, nil
	case "LOW":
		return TierLow, nil
	default:
		return "", fmt.Errorf("invalid tier: %q (must be HIGH or LOW)", s)
	}
}

// FileAsset is one analyzed input file. It is created once per file and
// never mutated afterwards.
type FileAsset struct {
	Path            string    `json:"path" yaml:"path"`
	FileName        string    `json:"file_name" yaml:"file_name"`
	FolderPath      string    `json:"folder_path" yaml:"folder_path"`
	Dimensions      string    `json:"dimensions" yaml:"dimensions"` // "{w}x{h}"
	SizeKB          int       `json:"size_kb" yaml:"size_kb"`
	FileFormat      string    `json:"file_format" yaml:"file_format"`
	ColorSpaceValid bool      `json:"color_space_valid" yaml:"color_space_valid"`
	DetectedFormat  FormatTag `json:"detected_format,omitempty" yaml:"detected_format,omitempty"`
	Fingerprint     string    `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// IsPackaged reports whether the asset is a packaged interactive banner
func (a FileAsset) IsPackaged() bool {
	return a.FileFormat == FileFormatHTML5
}

// DisplayName returns the file name, falling back to the path
func (a FileAsset) DisplayName() string {
	if a.FileName != "" {
		return a.FileName
	}
	return a.Path
}

// FormatDimensions renders width and height as a dimension string
func FormatDimensions(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
