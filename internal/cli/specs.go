package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/registry"
	"github.com/ppiankov/adfit/internal/reporter"
)

var specsFormat string

// specsCmd represents the specs command
var specsCmd = &cobra.Command{
	Use:   "specs [network]",
	Short: "List placement specifications",
	Long: `List the placement specifications in the registry, optionally for one network,
followed by the detected-format allowlist.

Example:
  adfit specs
  adfit specs onet
  adfit specs --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSpecs,
}

func init() {
	specsCmd.Flags().StringVarP(&specsFormat, "format", "f", "text",
		"output format: text or json")
}

type specsNetwork struct {
	Network    string                          `json:"network"`
	Placements map[string]models.PlacementSpec `json:"placements"`
}

type specsOutput struct {
	Version   string              `json:"version"`
	Networks  []specsNetwork      `json:"networks"`
	Allowlist map[string][]string `json:"format_allowlist"`
}

func runSpecs(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	networks := reg.Networks()
	if len(args) == 1 {
		if !reg.HasNetwork(args[0]) {
			return &ValidationError{Message: fmt.Sprintf("unknown network %q (known: %s)", args[0], strings.Join(networks, ", "))}
		}
		networks = []string{args[0]}
	}

	out := buildSpecsOutput(reg, networks)

	switch specsFormat {
	case "json":
		return reporter.NewJSONReporter(os.Stdout, true).Write(out)
	case "text":
		printSpecsText(os.Stdout, reg, out)
		return nil
	default:
		return &ValidationError{Message: fmt.Sprintf("unsupported format: %s (use text or json)", specsFormat)}
	}
}

func buildSpecsOutput(reg *registry.Registry, networks []string) specsOutput {
	out := specsOutput{
		Version:   reg.Version(),
		Networks:  make([]specsNetwork, 0, len(networks)),
		Allowlist: make(map[string][]string),
	}
	for _, network := range networks {
		n := specsNetwork{Network: network, Placements: make(map[string]models.PlacementSpec)}
		for _, key := range reg.PlacementKeys(network) {
			spec, _ := reg.Placement(network, key)
			n.Placements[key] = spec
		}
		out.Networks = append(out.Networks, n)
	}
	for _, tag := range allowlistTags() {
		if reg.HasAllowlistEntry(tag) {
			out.Allowlist[string(tag)] = reg.AllowedNetworks(tag)
		}
	}
	return out
}

func printSpecsText(w io.Writer, reg *registry.Registry, out specsOutput) {
	fmt.Fprintf(w, "Registry %s\n", out.Version)

	for _, n := range out.Networks {
		fmt.Fprintf(w, "\n%s\n", n.Network)
		fmt.Fprintf(w, "--------------------------------------------------\n")
		for _, key := range reg.PlacementKeys(n.Network) {
			spec := n.Placements[key]
			fmt.Fprintf(w, "  %-20s %-28s max %4dKB  %s",
				key, strings.Join(spec.Dimensions, ","), spec.MaxSizeKB, strings.Join(spec.AllowedFormats, "/"))
			if len(spec.Tiers) > 0 {
				tiers := make([]string, 0, len(spec.Tiers))
				for _, t := range spec.Tiers {
					tiers = append(tiers, string(t))
				}
				fmt.Fprintf(w, "  [%s]", strings.Join(tiers, ","))
			}
			if spec.MultiFile != nil {
				fmt.Fprintf(w, "  %d files: %s", spec.MultiFile.RequiredCount, strings.Join(spec.MultiFile.Roles, ", "))
			}
			fmt.Fprintln(w)
		}
	}

	if len(out.Allowlist) > 0 {
		fmt.Fprintf(w, "\nFormat allowlist\n")
		fmt.Fprintf(w, "--------------------------------------------------\n")
		for _, tag := range allowlistTags() {
			if networks, ok := out.Allowlist[string(tag)]; ok {
				fmt.Fprintf(w, "  %-10s %s\n", string(tag), strings.Join(networks, ", "))
			}
		}
	}
}

// allowlistTags lists tags in a stable display order
func allowlistTags() []models.FormatTag {
	return []models.FormatTag{
		models.FormatStandard,
		models.FormatHTML5,
		models.FormatBranding,
		models.FormatSpincube,
		models.FormatScratch,
		models.FormatSpinner,
		models.FormatKombi,
		models.FormatUAC,
		models.FormatExclusive,
	}
}
