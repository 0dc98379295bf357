package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// Config represents the safe-settings tool configuration
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Log    LogConfig    `yaml:"log"`
}

// GitHubConfig represents GitHub access configuration
type GitHubConfig struct {
	// Token is the credential; never logged
	Token string `yaml:"token" env:"GITHUB_TOKEN"`
	// InputToken is the githubToken input when running as a GitHub Action
	InputToken string `yaml:"-" env:"INPUT_GITHUBTOKEN"`
	APIURL     string `yaml:"api_url" env:"GITHUB_API_URL"`
	// Repository is "owner/name", as exported by GitHub Actions
	Repository  string `yaml:"repository" env:"GITHUB_REPOSITORY"`
	SettingsRef string `yaml:"settings_ref" env:"INPUT_SETTINGSREF"`
	Actions     bool   `yaml:"-" env:"GITHUB_ACTIONS"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	// Level is one of the logrus levels
	Level string `yaml:"level" env:"SAFE_SETTINGS_LOG_LEVEL"`
	// Format is text or json; empty selects text on a terminal and json otherwise
	Format string `yaml:"format" env:"SAFE_SETTINGS_LOG_FORMAT"`
}

const defaultAPIURL = "https://api.github.com/"

// Load loads configuration from the default location and overlays the environment
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads configuration from a specific path and overlays the environment.
// A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := LoadConfigFromPath(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadConfigFromPath loads the YAML configuration file only
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// ApplyEnv overrides fields with the environment variables that are set
func (c *Config) ApplyEnv() error {
	var fromEnv Config
	if err := env.Parse(&fromEnv.GitHub); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := env.Parse(&fromEnv.Log); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	overlay(&c.GitHub.Token, fromEnv.GitHub.Token)
	overlay(&c.GitHub.InputToken, fromEnv.GitHub.InputToken)
	overlay(&c.GitHub.APIURL, fromEnv.GitHub.APIURL)
	overlay(&c.GitHub.Repository, fromEnv.GitHub.Repository)
	overlay(&c.GitHub.SettingsRef, fromEnv.GitHub.SettingsRef)
	overlay(&c.Log.Level, fromEnv.Log.Level)
	overlay(&c.Log.Format, fromEnv.Log.Format)
	if fromEnv.GitHub.Actions {
		c.GitHub.Actions = true
	}

	return nil
}

func overlay(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func (c *Config) applyDefaults() {
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = defaultAPIURL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// SplitRepository splits an "owner/name" value
func SplitRepository(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", fullName)
	}
	return owner, name, nil
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	// Create config directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".safe-settings", "config.yaml"), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q: expected text or json", c.Log.Format)
	}

	if c.GitHub.Repository != "" {
		if _, _, err := SplitRepository(c.GitHub.Repository); err != nil {
			return err
		}
	}

	return nil
}
