package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/adfit/internal/grouping"
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/reporter"
)

var (
	groupsFormat   string
	groupsManifest string
)

// groupsCmd represents the groups command
var groupsCmd = &cobra.Command{
	Use:   "groups [path]...",
	Short: "Detect multi-file creatives",
	Long: `Find files that together form one composite creative: scratch pairs,
spincube sides, spinner slides and kombi trigger/banner pairs.

Files are grouped per folder, in the order they are found.

Example:
  adfit groups ./campaign
  adfit groups --manifest assets.yaml --format json`,
	RunE: runGroups,
}

func init() {
	groupsCmd.Flags().StringVarP(&groupsFormat, "format", "f", "text",
		"output format: text or json")
	groupsCmd.Flags().StringVar(&groupsManifest, "manifest", "",
		"read pre-analyzed assets from a YAML/JSON manifest instead of files")
}

func runGroups(cmd *cobra.Command, args []string) error {
	assets, _, err := collectAssets(commandContext(cmd), args, groupsManifest)
	if err != nil {
		logError("Failed to collect assets: %v", err)
		return err
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	groups := grouping.Detect(reg, assets)
	logVerbose("Found %d group(s) among %d asset(s)", len(groups), len(assets))

	switch groupsFormat {
	case "json":
		return reporter.NewJSONReporter(os.Stdout, true).Write(groups)
	case "text":
		printGroupsText(os.Stdout, groups)
		return nil
	default:
		return &ValidationError{Message: fmt.Sprintf("unsupported format: %s (use text or json)", groupsFormat)}
	}
}

func printGroupsText(w io.Writer, groups []models.MultiFileGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No multi-file creatives found.")
		return
	}

	complete := 0
	for i, g := range groups {
		if g.Complete {
			complete++
		}
		fmt.Fprintf(w, "%d. %s for %s in %s [%s]\n", i+1, g.FormatTag, g.Network, g.FolderPath, g.Status())
		for j, m := range g.Members {
			role := "-"
			if j < len(g.Roles) {
				role = g.Roles[j]
			}
			fmt.Fprintf(w, "   %-8s %s (%s)\n", role, m.DisplayName(), m.Dimensions)
		}
		if g.Note != "" {
			fmt.Fprintf(w, "   note: %s\n", g.Note)
		}
	}
	fmt.Fprintf(w, "\n%d group(s), %d complete\n", len(groups), complete)
}
