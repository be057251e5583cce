package models

import "fmt"

// MultiFileSpec describes a placement that needs several cooperating files
type MultiFileSpec struct {
	RequiredCount int      `json:"required_count" yaml:"required_count"`
	Roles         []string `json:"roles" yaml:"roles"`
}

// PlacementSpec is one placement offered by one network.
type PlacementSpec struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	// Dimensions are literal "{w}x{h}" strings. For dimension-keyed
	// multi-file placements, Dimensions[i] belongs to MultiFile.Roles[i].
	Dimensions     []string       `json:"dimensions" yaml:"dimensions"`
	MaxSizeKB      int            `json:"max_size_kb" yaml:"max_size_kb"`
	AllowedFormats []string       `json:"allowed_formats" yaml:"allowed_formats"`
	Tiers          []Tier         `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	MultiFile      *MultiFileSpec `json:"multi_file,omitempty" yaml:"multi_file,omitempty"`
}

// HasDimension reports whether dim is literally listed
func (s PlacementSpec) HasDimension(dim string) bool {
	for _, d := range s.Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// AllowsFormat reports whether the file format token is allowed
func (s PlacementSpec) AllowsFormat(format string) bool {
	for _, f := range s.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// AppliesToTier reports whether the spec is offered on the given tier.
// Specs without tiers apply to every tier.
func (s PlacementSpec) AppliesToTier(tier Tier) bool {
	if tier == "" || len(s.Tiers) == 0 {
		return true
	}
	for _, t := range s.Tiers {
		if t == tier {
			return true
		}
	}
	return false
}

// IsMultiFile reports whether the placement needs 2 or more files
func (s PlacementSpec) IsMultiFile() bool {
	return s.MultiFile != nil
}

// Check returns every problem found in the placement
func (s PlacementSpec) Check() []string {
	var errs []string
	if len(s.Dimensions) == 0 {
		errs = append(errs, "dimensions must not be empty")
	}
	if len(s.AllowedFormats) == 0 {
		errs = append(errs, "allowed_formats must not be empty")
	}
	if s.MaxSizeKB <= 0 {
		errs = append(errs, fmt.Sprintf("max_size_kb must be positive, got %d", s.MaxSizeKB))
	}
	for _, t := range s.Tiers {
		if t != TierHigh && t != TierLow {
			errs = append(errs, fmt.Sprintf("invalid tier %q", t))
		}
	}
	if s.MultiFile != nil {
		if s.MultiFile.RequiredCount < 2 {
			errs = append(errs, fmt.Sprintf("multi_file.required_count must be at least 2, got %d", s.MultiFile.RequiredCount))
		}
		if len(s.MultiFile.Roles) != s.MultiFile.RequiredCount {
			errs = append(errs, fmt.Sprintf("multi_file.roles has %d entries, want %d", len(s.MultiFile.Roles), s.MultiFile.RequiredCount))
		}
	}
	return errs
}

// MatchCandidate is one placement an asset could occupy
type MatchCandidate struct {
	Network      string        `json:"network"`
	Tier         Tier          `json:"tier,omitempty"`
	PlacementKey string        `json:"placement_key"`
	Spec         PlacementSpec `json:"spec"`
	SizeValid    bool          `json:"size_valid"`
	SizeLimit    int           `json:"size_limit_kb"`
	FileSizeKB   int           `json:"file_size_kb"`
}

// MultiFileGroup is a set of assets that jointly form one composite creative
type MultiFileGroup struct {
	FormatTag     FormatTag   `json:"format_tag"`
	Network       string      `json:"network"`
	Members       []FileAsset `json:"members"`
	Complete      bool        `json:"complete"`
	RequiredCount int         `json:"required_count"`
	Roles         []string    `json:"roles"`
	FolderPath    string      `json:"folder_path"`
	Missing       int         `json:"missing,omitempty"`
	Note          string      `json:"note,omitempty"`
}

// Status returns a short human-readable group status
func (g MultiFileGroup) Status() string {
	if g.Complete {
		return "complete"
	}
	return fmt.Sprintf("missing %d of %d", g.Missing, g.RequiredCount)
}
