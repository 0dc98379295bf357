package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"safesettings/pkg/config"
	"safesettings/pkg/github"
	"safesettings/pkg/settings"
)

var (
	reconcileOwner         string
	reconcileRepo          string
	reconcileRef           string
	reconcileDryRun        bool
	reconcileRequireConfig bool
)

// newAPIClient builds the GitHub client for a run; tests replace it
var newAPIClient = func(cfg *config.Config) (github.APIClient, string, error) {
	authManager := github.NewAuthManager()
	client, err := authManager.Authenticate(cfg)
	if err != nil {
		return nil, "", err
	}
	return client, authManager.Token(), nil
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Apply the repository's settings document to GitHub",
	Long: `Read the settings document from the repository and bring the repository settings
in line with it.

Exactly one of the following files may exist:
  .config/settings.json
  .config/settings.json5
  .config/settings.yaml
  .config/settings.yml

A repository without a settings document is left unmanaged unless --require-config
is given. Settings the document does not mention are never changed.

Inside GitHub Actions the repository, token and settings ref are read from
GITHUB_REPOSITORY, INPUT_GITHUBTOKEN (or GITHUB_TOKEN) and INPUT_SETTINGSREF.

Examples:
  # Reconcile the repository of the current workflow
  safe-settings reconcile

  # Preview changes for a specific repository
  safe-settings reconcile --owner myorg --repo widgets --dry-run

  # Read the document from another branch
  safe-settings reconcile --owner myorg --repo widgets --ref settings-update`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileOwner, "owner", "", "Repository owner (defaults to the owner in GITHUB_REPOSITORY)")
	reconcileCmd.Flags().StringVar(&reconcileRepo, "repo", "", "Repository name (defaults to the name in GITHUB_REPOSITORY)")
	reconcileCmd.Flags().StringVar(&reconcileRef, "ref", "", "Git ref to read the settings document from (defaults to the default branch)")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "Log the changes without applying them")
	reconcileCmd.Flags().BoolVar(&reconcileRequireConfig, "require-config", false, "Fail when the repository has no settings document")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := configureLogging(cfg.Log, os.Stderr); err != nil {
		return err
	}

	owner, repo, err := resolveRepository(cfg, reconcileOwner, reconcileRepo)
	if err != nil {
		return err
	}
	ref := reconcileRef
	if ref == "" {
		ref = cfg.GitHub.SettingsRef
	}

	client, token, err := newAPIClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", github.GetAuthInstructions())
		return err
	}
	if cfg.GitHub.Actions && token != "" {
		// Keeps the token out of the workflow log
		fmt.Fprintf(cmd.OutOrStdout(), "::add-mask::%s\n", token)
	}

	opts := settings.Options{
		DryRun:          reconcileDryRun,
		RequireDocument: reconcileRequireConfig,
		Logger:          logrus.StandardLogger(),
	}
	return reconcileRepository(cmd.Context(), cmd.OutOrStdout(), client, owner, repo, ref, opts)
}

// reconcileRepository runs one reconciliation and prints its outcome
func reconcileRepository(ctx context.Context, out io.Writer, client github.APIClient, owner, repo, ref string, opts settings.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reconciler, err := settings.NewReconciler(client, owner, repo, opts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		fmt.Fprintf(out, "🔍 Dry-run mode: showing planned changes for %s/%s\n", owner, repo)
	} else {
		fmt.Fprintf(out, "🔄 Reconciling %s/%s\n", owner, repo)
	}

	result, err := reconciler.Run(ctx, ref)
	if result != nil {
		displayResult(out, result, opts.DryRun)
	}
	if err != nil {
		var partial *settings.PartialFailureError
		if errors.As(err, &partial) {
			fmt.Fprintf(out, "\n⚠️  Branch protection failed for: %v\n", partial.GetFailedOperations())
		}
		return fmt.Errorf("reconciliation of %s/%s failed: %w", owner, repo, err)
	}

	return nil
}

// displayResult prints the changes of a run in a human-readable format
func displayResult(out io.Writer, result *settings.Result, dryRun bool) {
	if !result.Managed {
		fmt.Fprintln(out, "ℹ️  No settings document found, repository is not managed")
		return
	}

	fmt.Fprintf(out, "📄 Settings document: %s (version %d)\n", result.DocumentPath, result.DocumentVersion)
	if len(result.Changes) == 0 {
		fmt.Fprintln(out, "✅ Repository settings are up to date")
		return
	}

	fmt.Fprintf(out, "\n📋 Changes:\n")
	for _, change := range result.Changes {
		name := change.Section + "." + change.Field
		if change.Branch != "" {
			name = fmt.Sprintf("%s[%s].%s", change.Section, change.Branch, change.Field)
		}
		fmt.Fprintf(out, "  %s %s: %v → %v\n", changeSymbol(change.Type), name, change.From, change.To)
	}

	if dryRun {
		fmt.Fprintf(out, "\n💡 %d change(s) planned. Run without --dry-run to apply them.\n", len(result.Changes))
		return
	}
	fmt.Fprintf(out, "\n✅ Applied %d change(s) with %d API call(s)\n", len(result.Changes), len(result.Calls))
}

func changeSymbol(t settings.ChangeType) string {
	switch t {
	case settings.ChangeTypeEnable:
		return "+"
	case settings.ChangeTypeDisable:
		return "-"
	default:
		return "~"
	}
}

// resolveRepository picks owner and name from the flags, falling back to GITHUB_REPOSITORY
func resolveRepository(cfg *config.Config, owner, repo string) (string, string, error) {
	if owner != "" && repo != "" {
		return owner, repo, nil
	}

	if cfg.GitHub.Repository == "" {
		return "", "", fmt.Errorf("repository not specified: use --owner and --repo or set GITHUB_REPOSITORY")
	}
	envOwner, envRepo, err := config.SplitRepository(cfg.GitHub.Repository)
	if err != nil {
		return "", "", err
	}

	if owner == "" {
		owner = envOwner
	}
	if repo == "" {
		repo = envRepo
	}
	return owner, repo, nil
}
