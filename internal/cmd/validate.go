package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"safesettings/pkg/settings"
)

var validateCmd = &cobra.Command{
	Use:   "validate <settings-file>",
	Short: "Validate a settings document",
	Long: `Validate a settings document offline, before committing it.

The file extension selects the syntax (.json, .json5, .yaml or .yml). The document
is checked against the settings schema and every problem found is reported.

Examples:
  safe-settings validate .config/settings.yml
  safe-settings validate .config/settings.json5`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	return validateFile(cmd.OutOrStdout(), args[0])
}

func validateFile(out io.Writer, path string) error {
	fmt.Fprintf(out, "🔍 Validating settings document: %s\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings document: %w", err)
	}

	validator, err := settings.NewValidator()
	if err != nil {
		return err
	}
	doc, err := validator.Load(path, data)
	if err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}

	sections := managedSections(doc)
	if len(sections) == 0 {
		fmt.Fprintln(out, "⚠️  The document manages no settings")
	} else {
		fmt.Fprintf(out, "📋 Managed sections:\n")
		for _, s := range sections {
			fmt.Fprintf(out, "  • %s\n", s)
		}
	}

	fmt.Fprintf(out, "\n✅ Settings document is valid\n")
	return nil
}

// managedSections lists the document sections that are present
func managedSections(doc *settings.Document) []string {
	var sections []string
	add := func(present bool, name string) {
		if present {
			sections = append(sections, name)
		}
	}

	add(doc.Details != nil, "details")
	add(doc.Issues != nil, "issues")
	add(doc.Projects != nil, "projects")
	add(doc.Wikis != nil, "wikis")
	add(doc.Discussions != nil, "discussions")
	add(doc.PullRequests != nil, "pullRequests")
	add(doc.SecurityAnalysis != nil, "securityAnalysis")
	add(doc.HomePage != nil, "homePage")
	add(doc.DefaultBranchProtection != nil, "defaultBranchProtection")

	branches := make([]string, 0, len(doc.BranchProtection))
	for branch := range doc.BranchProtection {
		branches = append(branches, branch)
	}
	sort.Strings(branches)
	for _, branch := range branches {
		sections = append(sections, fmt.Sprintf("branchProtection[%s]", branch))
	}

	return sections
}
