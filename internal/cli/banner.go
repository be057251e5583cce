package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/adfit/internal/html5"
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/reporter"
)

var (
	bannerFormat string
	bannerStrict bool
)

// bannerCmd represents the banner command
var bannerCmd = &cobra.Command{
	Use:   "banner <zip>...",
	Short: "Validate HTML5 banner packages",
	Long: `Validate the structure and markup of packaged HTML5 banners.

Checks: archive readable, at most 40 files, exactly one root .html/.htm,
nesting depth, allowed file types, <html>/<body> tags, __CLICKTHRU__
placeholder, a single <a target="_top">, prohibited exit calls and
external URLs outside the allowed CDNs.

Example:
  adfit banner HTML5_970x210_leaderboard.zip
  adfit banner ./banners/*.zip --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBanner,
}

func init() {
	bannerCmd.Flags().StringVarP(&bannerFormat, "format", "f", "text",
		"output format: text or json")
	bannerCmd.Flags().BoolVar(&bannerStrict, "strict", false,
		"exit with code 1 if any banner is invalid")
}

type bannerResult struct {
	Path   string              `json:"path"`
	Report models.BannerReport `json:"report"`
}

func runBanner(cmd *cobra.Command, args []string) error {
	results := make([]bannerResult, 0, len(args))
	invalid := 0

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			logError("Failed to read %s: %v", path, err)
			return err
		}
		report := html5.Validate(filepath.Base(path), data)
		if !report.Valid {
			invalid++
		}
		logVerbose("%s: %d issue(s), %d warning(s)", path, len(report.Issues), len(report.Warnings))
		results = append(results, bannerResult{Path: path, Report: report})
	}

	switch bannerFormat {
	case "json":
		if err := reporter.NewJSONReporter(os.Stdout, true).Write(results); err != nil {
			return err
		}
	case "text":
		printBannerText(os.Stdout, results)
	default:
		return &ValidationError{Message: fmt.Sprintf("unsupported format: %s (use text or json)", bannerFormat)}
	}

	if bannerStrict && invalid > 0 {
		return &StrictError{Invalid: invalid}
	}
	return nil
}

func printBannerText(w io.Writer, results []bannerResult) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		status := "VALID"
		if !r.Report.Valid {
			status = "INVALID"
		}
		fmt.Fprintf(w, "%s [%s]\n", r.Path, status)
		if r.Report.IsPackaged {
			dims := r.Report.Dimensions
			if dims == "" {
				dims = "unknown"
			}
			fmt.Fprintf(w, "  %d file(s), root %s, dimensions %s\n", r.Report.FileCount, orNone(r.Report.RootDocument), dims)
		}
		for _, issue := range r.Report.Issues {
			fmt.Fprintf(w, "  ✗ %s\n", issue)
		}
		for _, warn := range r.Report.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warn)
		}
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
