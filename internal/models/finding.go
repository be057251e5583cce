package models

// Severity of a validation finding
type Severity string

const (
	// SeverityIssue is a hard nonconformance; it makes the outcome invalid.
	SeverityIssue Severity = "issue"
	// SeverityWarning is informational and never affects validity.
	SeverityWarning Severity = "warning"
)

// Finding codes
const (
	CodeDimensionMismatch   = "dimension_mismatch"
	CodeFormatNotAllowed    = "format_not_allowed"
	CodeCMYK                = "cmyk_color_space"
	CodeSizeWithinTolerance = "size_within_tolerance"
	CodeSizeOverTolerance   = "size_over_tolerance"
	CodeBannerPolicy        = "banner_policy"
)

// Finding is one rule result with its declared severity
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Issue builds a finding with issue severity
func Issue(code, message string) Finding {
	return Finding{Severity: SeverityIssue, Code: code, Message: message}
}

// Warning builds a finding with warning severity
func Warning(code, message string) Finding {
	return Finding{Severity: SeverityWarning, Code: code, Message: message}
}

// Outcome is the result of validating one asset against one placement.
// Valid is derived from Issues only.
type Outcome struct {
	Valid    bool      `json:"valid"`
	Issues   []string  `json:"issues"`
	Warnings []string  `json:"warnings"`
	Findings []Finding `json:"findings"`
}

// NewOutcome aggregates findings into an outcome
func NewOutcome(findings []Finding) Outcome {
	out := Outcome{
		Issues:   []string{},
		Warnings: []string{},
		Findings: findings,
	}
	if out.Findings == nil {
		out.Findings = []Finding{}
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityIssue:
			out.Issues = append(out.Issues, f.Message)
		case SeverityWarning:
			out.Warnings = append(out.Warnings, f.Message)
		}
	}
	out.Valid = len(out.Issues) == 0
	return out
}
