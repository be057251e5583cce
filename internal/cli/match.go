package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/adfit/internal/aggregator"
	"github.com/ppiankov/adfit/internal/collector"
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/reporter"
)

var (
	matchFormat     string
	matchNetwork    string
	matchTier       string
	matchDimensions string
	matchSizeKB     int
	matchFileFormat string
	matchCMYK       bool
	matchTag        string
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match [file]",
	Short: "Show the placements one creative fits",
	Long: `Match a single creative against the registry and validate it against every
candidate placement.

The creative is either a file on disk or described with flags.

Example:
  adfit match ./campaign/billboard_750x200.jpg
  adfit match ./campaign/Spincube/front.jpg --network onet
  adfit match --dimensions 300x600 --size 140 --file-format png
  adfit match banner.zip --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchFormat, "format", "f", "text",
		"output format: text or json")
	matchCmd.Flags().StringVarP(&matchNetwork, "network", "n", "",
		"only consider placements of this network")
	matchCmd.Flags().StringVar(&matchTier, "tier", "",
		"only consider placements of this tier: HIGH or LOW")
	matchCmd.Flags().StringVar(&matchDimensions, "dimensions", "",
		"describe the creative: dimensions as WIDTHxHEIGHT")
	matchCmd.Flags().IntVar(&matchSizeKB, "size", 0,
		"describe the creative: size in KB")
	matchCmd.Flags().StringVar(&matchFileFormat, "file-format", "",
		"describe the creative: jpg, png, gif or html5")
	matchCmd.Flags().BoolVar(&matchCMYK, "cmyk", false,
		"describe the creative: uses the CMYK color space")
	matchCmd.Flags().StringVar(&matchTag, "tag", "",
		"describe the creative: format tag (spincube, scratch, kombi, ...)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	tier, err := models.ParseTier(matchTier)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	var asset models.FileAsset
	var banner *models.BannerReport

	switch {
	case len(args) == 1:
		asset, banner, err = collector.AnalyzeFile(args[0])
		if err != nil {
			logError("Failed to analyze %s: %v", args[0], err)
			return err
		}
	case matchDimensions != "":
		asset, err = describedAsset()
		if err != nil {
			return &ValidationError{Message: err.Error()}
		}
	default:
		return &ValidationError{Message: "pass a file or --dimensions"}
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if matchNetwork != "" && !reg.HasNetwork(matchNetwork) {
		return &ValidationError{Message: fmt.Sprintf("unknown network %q (known: %v)", matchNetwork, reg.Networks())}
	}

	agg := aggregator.New(reg, currentLogger())
	result := agg.CheckAsset(asset, banner, aggregator.Options{Network: matchNetwork, Tier: tier})

	switch matchFormat {
	case "json":
		return reporter.NewJSONReporter(os.Stdout, true).Write(result)
	case "text":
		printMatchText(os.Stdout, result)
		return nil
	default:
		return &ValidationError{Message: fmt.Sprintf("unsupported format: %s (use text or json)", matchFormat)}
	}
}

func describedAsset() (models.FileAsset, error) {
	format := strings.ToLower(matchFileFormat)
	if format == "jpeg" {
		format = models.FileFormatJPG
	}
	name := fmt.Sprintf("creative_%s.%s", matchDimensions, format)
	if format == models.FileFormatHTML5 {
		name = fmt.Sprintf("creative_%s.zip", matchDimensions)
	}
	tag := collector.DetectFormat("", name)
	if matchTag != "" {
		parsed, err := models.ParseFormatTag(matchTag)
		if err != nil {
			return models.FileAsset{}, err
		}
		tag = parsed
	}
	return models.FileAsset{
		Path:            name,
		FileName:        name,
		Dimensions:      matchDimensions,
		SizeKB:          matchSizeKB,
		FileFormat:      format,
		ColorSpaceValid: !matchCMYK,
		DetectedFormat:  tag,
	}, nil
}

func printMatchText(w io.Writer, r models.AssetReport) {
	a := r.Asset
	fmt.Fprintf(w, "%s\n", filepath.ToSlash(a.Path))
	fmt.Fprintf(w, "  %s  %s  %dKB", a.FileFormat, a.Dimensions, a.SizeKB)
	if a.DetectedFormat != models.FormatNone {
		fmt.Fprintf(w, "  tag=%s", a.DetectedFormat)
	}
	fmt.Fprintf(w, "\n\n")

	if r.Banner != nil && len(r.Banner.Issues) > 0 {
		fmt.Fprintf(w, "HTML5 package issues:\n")
		for _, issue := range r.Banner.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
		fmt.Fprintf(w, "\n")
	}

	if r.Status() == models.AssetUnplaced {
		fmt.Fprintf(w, "No candidate placements. %s\n", r.Note)
		return
	}

	for _, p := range r.Compatible {
		fmt.Fprintf(w, "  ✓ %-9s %-20s limit %dKB\n", p.Network, p.PlacementKey, p.SizeLimit)
		for _, warn := range p.Outcome.Warnings {
			fmt.Fprintf(w, "      warning: %s\n", warn)
		}
	}
	for _, p := range r.Incompatible {
		fmt.Fprintf(w, "  ✗ %-9s %-20s limit %dKB\n", p.Network, p.PlacementKey, p.SizeLimit)
		for _, issue := range p.Outcome.Issues {
			fmt.Fprintf(w, "      issue: %s\n", issue)
		}
	}

	fmt.Fprintf(w, "\n%d compatible, %d incompatible\n", len(r.Compatible), len(r.Incompatible))
}
