package cmd

import (
	"fmt"
	"os"

	"safesettings/pkg/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize safe-settings configuration",
	Long: `Create a default configuration file for safe-settings.

The file is only needed outside GitHub Actions, where the token and repository
are not provided by the workflow environment.`,
	RunE: runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("⚠️  Configuration file already exists at: %s\n", configPath)
		fmt.Print("Do you want to overwrite it? (y/N): ")
		var response string
		_, _ = fmt.Scanln(&response) // Ignore error for user input
		if response != "y" && response != "Y" {
			fmt.Println("Configuration initialization cancelled.")
			return nil
		}
	}

	defaultConfig := &config.Config{
		GitHub: config.GitHubConfig{
			APIURL:     "https://api.github.com/",
			Repository: "your-org/your-repo",
		},
		Log: config.LogConfig{
			Level: "info",
		},
	}

	if err := defaultConfig.SaveConfigToPath(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("✅ Configuration file created at: %s\n", configPath)
	fmt.Println("📝 Please edit the file to set your repository and GitHub token.")

	return nil
}
