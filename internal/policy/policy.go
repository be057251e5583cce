package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/adfit/internal/models"
	"gopkg.in/yaml.v3"
)

// Policy defines the gate a check run must pass.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MaxIssues             *int     `yaml:"max_issues,omitempty"`
	MaxWarnings           *int     `yaml:"max_warnings,omitempty"`
	MaxInvalidAssets      *int     `yaml:"max_invalid_assets,omitempty"`
	MaxUnplacedAssets     *int     `yaml:"max_unplaced_assets,omitempty"`
	RequireCompleteGroups bool     `yaml:"require_complete_groups,omitempty"`
	RequireNetworks       []string `yaml:"require_networks,omitempty"`
	ForbidCodes           []string `yaml:"forbid_codes,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file. A missing file yields a nil policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findFrom(dir)
}

func findFrom(dir string) string {
	names := []string{".adfit-policy.yaml", ".adfit-policy.yml"}

	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks a check report against the policy rules.
func (p *Policy) Evaluate(report *models.CheckReport) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	var violations []Violation
	s := report.Summary

	if p.Rules.MaxIssues != nil && s.TotalIssues > *p.Rules.MaxIssues {
		violations = append(violations, Violation{
			Rule:    "max_issues",
			Message: fmt.Sprintf("total issues %d exceeds limit %d", s.TotalIssues, *p.Rules.MaxIssues),
		})
	}

	if p.Rules.MaxWarnings != nil && s.TotalWarnings > *p.Rules.MaxWarnings {
		violations = append(violations, Violation{
			Rule:    "max_warnings",
			Message: fmt.Sprintf("total warnings %d exceeds limit %d", s.TotalWarnings, *p.Rules.MaxWarnings),
		})
	}

	if p.Rules.MaxInvalidAssets != nil && s.InvalidAssets > *p.Rules.MaxInvalidAssets {
		violations = append(violations, Violation{
			Rule:    "max_invalid_assets",
			Message: fmt.Sprintf("invalid assets %d exceeds limit %d", s.InvalidAssets, *p.Rules.MaxInvalidAssets),
		})
	}

	if p.Rules.MaxUnplacedAssets != nil && s.UnplacedAssets > *p.Rules.MaxUnplacedAssets {
		violations = append(violations, Violation{
			Rule:    "max_unplaced_assets",
			Message: fmt.Sprintf("unplaced assets %d exceeds limit %d", s.UnplacedAssets, *p.Rules.MaxUnplacedAssets),
		})
	}

	if p.Rules.RequireCompleteGroups {
		for _, g := range report.Groups {
			if g.Complete {
				continue
			}
			violations = append(violations, Violation{
				Rule:    "require_complete_groups",
				Message: fmt.Sprintf("%s group in %s is %s", g.FormatTag, g.FolderPath, g.Status()),
			})
		}
	}

	for _, network := range p.Rules.RequireNetworks {
		if s.PlacementsByNetwork[network] == 0 {
			violations = append(violations, Violation{
				Rule:    "require_networks",
				Message: fmt.Sprintf("no asset fits any %q placement", network),
			})
		}
	}

	if len(p.Rules.ForbidCodes) > 0 {
		violations = append(violations, forbiddenCodes(report, p.Rules.ForbidCodes)...)
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}

// forbiddenCodes reports every forbidden finding code present in the run
func forbiddenCodes(report *models.CheckReport, codes []string) []Violation {
	forbidden := make(map[string]bool, len(codes))
	for _, c := range codes {
		forbidden[c] = true
	}

	counts := make(map[string]int)
	for _, ar := range report.Assets {
		for _, results := range [][]models.PlacementResult{ar.Compatible, ar.Incompatible} {
			for _, r := range results {
				for _, f := range r.Outcome.Findings {
					if forbidden[f.Code] {
						counts[f.Code]++
					}
				}
			}
		}
	}

	found := make([]string, 0, len(counts))
	for code := range counts {
		found = append(found, code)
	}
	sort.Strings(found)

	violations := make([]Violation, 0, len(found))
	for _, code := range found {
		violations = append(violations, Violation{
			Rule:    "forbid_codes",
			Message: fmt.Sprintf("forbidden finding %q occurs %d time(s)", code, counts[code]),
		})
	}
	return violations
}
