package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"safesettings/pkg/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "safe-settings",
	Short: "Keep GitHub repository settings in line with a settings file",
	Long: `safe-settings reconciles a GitHub repository with the settings document committed
in the repository itself (.config/settings.json, .json5, .yaml or .yml).

Only the settings named in the document are managed: anything the document does not
mention is left as it is. Plain repository settings are sent in a single update,
while topics, Dependabot alerts and security updates, and branch protection use
their dedicated API calls.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Tool configuration file (default ~/.safe-settings/config.yaml)")
	rootCmd.AddCommand(initCmd)
}

// loadConfig reads the tool configuration and the environment
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFromPath(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load safe-settings config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid safe-settings config: %w", err)
	}
	return cfg, nil
}

// configureLogging applies the configured level and format to the standard logger.
// Without an explicit format, text is used on a terminal and JSON otherwise.
func configureLogging(cfg config.LogConfig, out io.Writer) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(out)

	format := cfg.Format
	if format == "" {
		format = "json"
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}

	switch format {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	return nil
}
