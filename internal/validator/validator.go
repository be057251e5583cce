package validator

import (
	"fmt"
	"strings"

	"github.com/ppiankov/adfit/internal/models"
)

// Size tolerance: a file may exceed a placement's ceiling by 5% before the
// overage is reported as out of tolerance. Expressed in percent so the
// comparison stays in integer arithmetic.
const (
	TolerancePercent    = 105
	ToleranceMultiplier = float64(TolerancePercent) / 100
)

// Validator decides whether an asset satisfies one placement spec
type Validator struct{}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

// Validate checks an asset against a placement spec. banner carries the
// structural report of a packaged HTML5 asset and may be nil.
//
// Every rule declares its own severity. Size is always a warning; for
// packaged banners only a dimension mismatch is an issue and every
// banner finding is downgraded to a warning.
func (v *Validator) Validate(asset models.FileAsset, spec models.PlacementSpec, banner *models.BannerReport) models.Outcome {
	var findings []models.Finding

	if !spec.HasDimension(asset.Dimensions) {
		findings = append(findings, models.Issue(models.CodeDimensionMismatch,
			fmt.Sprintf("Dimensions %s do not match the placement (expected %s)",
				displayDimensions(asset.Dimensions), strings.Join(spec.Dimensions, ", "))))
	}

	if asset.IsPackaged() {
		findings = append(findings, checkSize(asset.SizeKB, spec.MaxSizeKB)...)
		findings = append(findings, foldBanner(banner)...)
		return models.NewOutcome(findings)
	}

	if !spec.AllowsFormat(asset.FileFormat) {
		findings = append(findings, models.Issue(models.CodeFormatNotAllowed,
			fmt.Sprintf("Format %s is not allowed (allowed: %s)",
				displayFormat(asset.FileFormat), strings.Join(spec.AllowedFormats, ", "))))
	}

	if !asset.ColorSpaceValid {
		findings = append(findings, models.Issue(models.CodeCMYK,
			"CMYK color space detected; convert the file to RGB"))
	}

	findings = append(findings, checkSize(asset.SizeKB, spec.MaxSizeKB)...)

	return models.NewOutcome(findings)
}

// ValidateCandidate validates an asset against a matched candidate's spec
func (v *Validator) ValidateCandidate(asset models.FileAsset, c models.MatchCandidate, banner *models.BannerReport) models.Outcome {
	return v.Validate(asset, c.Spec, banner)
}

// TolerantLimitKB returns the largest size still within tolerance
func TolerantLimitKB(maxSizeKB int) int {
	return maxSizeKB * TolerancePercent / 100
}

// checkSize applies the tolerance rule. It never returns an issue.
func checkSize(sizeKB, maxSizeKB int) []models.Finding {
	if sizeKB <= maxSizeKB {
		return nil
	}

	tolerated := TolerantLimitKB(maxSizeKB)
	if sizeKB*100 <= maxSizeKB*TolerancePercent {
		return []models.Finding{models.Warning(models.CodeSizeWithinTolerance,
			fmt.Sprintf("File size %dKB exceeds the %dKB limit but is within the 5%% tolerance (%dKB)",
				sizeKB, maxSizeKB, tolerated))}
	}

	return []models.Finding{models.Warning(models.CodeSizeOverTolerance,
		fmt.Sprintf("File size %dKB exceeds the tolerated %dKB (limit %dKB + 5%%)",
			sizeKB, tolerated, maxSizeKB))}
}

// foldBanner turns every banner finding into a warning.
func foldBanner(banner *models.BannerReport) []models.Finding {
	if banner == nil {
		return nil
	}
	findings := make([]models.Finding, 0, len(banner.Issues)+len(banner.Warnings))
	for _, msg := range banner.Issues {
		findings = append(findings, models.Warning(models.CodeBannerPolicy, "HTML5: "+msg))
	}
	for _, msg := range banner.Warnings {
		findings = append(findings, models.Warning(models.CodeBannerPolicy, "HTML5: "+msg))
	}
	return findings
}

func displayDimensions(dim string) string {
	if dim == "" {
		return "(unknown)"
	}
	return dim
}

func displayFormat(format string) string {
	if format == "" {
		return "(unknown)"
	}
	return format
}
