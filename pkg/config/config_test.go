package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Config reads so tests do not pick up the CI environment
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GITHUB_TOKEN", "INPUT_GITHUBTOKEN", "GITHUB_API_URL", "GITHUB_REPOSITORY",
		"INPUT_SETTINGSREF", "GITHUB_ACTIONS", "SAFE_SETTINGS_LOG_LEVEL", "SAFE_SETTINGS_LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig(t *testing.T) {
	// Create a temporary directory for testing
	tempDir := t.TempDir()

	// Create test config file
	configPath := filepath.Join(tempDir, "config.yaml")
	configContent := `github:
  token: "ghp_test_token"
  api_url: "https://ghe.example.com/api/v3/"
  repository: "octo/widgets"
log:
  level: debug
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.GitHub.Token != "ghp_test_token" {
		t.Errorf("Expected GitHub Token = ghp_test_token, got %s", config.GitHub.Token)
	}

	if config.GitHub.APIURL != "https://ghe.example.com/api/v3/" {
		t.Errorf("Expected APIURL = https://ghe.example.com/api/v3/, got %s", config.GitHub.APIURL)
	}

	if config.GitHub.Repository != "octo/widgets" {
		t.Errorf("Expected Repository = octo/widgets, got %s", config.GitHub.Repository)
	}

	if config.Log.Level != "debug" {
		t.Errorf("Expected Log Level = debug, got %s", config.Log.Level)
	}
}

func TestLoadConfigNonExistent(t *testing.T) {
	config, err := LoadConfigFromPath("/non/existent/path")
	if err != nil {
		t.Fatalf("Expected no error for non-existent config, got: %v", err)
	}

	// Should return empty config
	if config.GitHub.Token != "" || config.GitHub.Repository != "" {
		t.Error("Expected empty config for non-existent file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("github: [unterminated"), 0644))

	_, err := LoadConfigFromPath(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.github.com/", cfg.GitHub.APIURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.Format)
	assert.False(t, cfg.GitHub.Actions)
}

func TestLoadFromPath_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`github:
  token: file-token
  repository: octo/widgets
  settings_ref: main
log:
  level: warn
`), 0644))

	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("INPUT_GITHUBTOKEN", "input-token")
	t.Setenv("GITHUB_REPOSITORY", "octo/gadgets")
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("SAFE_SETTINGS_LOG_FORMAT", "json")

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.GitHub.Token)
	assert.Equal(t, "input-token", cfg.GitHub.InputToken)
	assert.Equal(t, "octo/gadgets", cfg.GitHub.Repository)
	assert.True(t, cfg.GitHub.Actions)

	// Unset variables leave the file values alone
	assert.Equal(t, "main", cfg.GitHub.SettingsRef)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestSplitRepository(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{input: "octo/widgets", wantOwner: "octo", wantName: "widgets"},
		{input: " octo/widgets ", wantOwner: "octo", wantName: "widgets"},
		{input: "widgets", wantErr: true},
		{input: "/widgets", wantErr: true},
		{input: "octo/", wantErr: true},
		{input: "octo/widgets/extra", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, name, err := SplitRepository(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := &Config{
		GitHub: GitHubConfig{
			Token:       "ghp_saved",
			InputToken:  "never-written",
			APIURL:      "https://api.github.com/",
			Repository:  "octo/widgets",
			SettingsRef: "main",
		},
		Log: LogConfig{Level: "debug", Format: "text"},
	}

	require.NoError(t, original.SaveConfigToPath(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "never-written"), "the Actions input token must not be persisted")

	loaded, err := LoadConfigFromPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, original.GitHub.Token, loaded.GitHub.Token)
	assert.Equal(t, original.GitHub.Repository, loaded.GitHub.Repository)
	assert.Equal(t, original.GitHub.SettingsRef, loaded.GitHub.SettingsRef)
	assert.Equal(t, original.Log, loaded.Log)
	assert.Empty(t, loaded.GitHub.InputToken)
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("Failed to get config path: %v", err)
	}

	if !strings.Contains(path, ".safe-settings") {
		t.Errorf("Expected path to contain .safe-settings, got %s", path)
	}

	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected config.yaml, got %s", filepath.Base(path))
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "empty", config: Config{}},
		{name: "json format", config: Config{Log: LogConfig{Format: "json"}}},
		{name: "unknown format", config: Config{Log: LogConfig{Format: "xml"}}, wantErr: "unsupported log format"},
		{name: "valid repository", config: Config{GitHub: GitHubConfig{Repository: "octo/widgets"}}},
		{name: "invalid repository", config: Config{GitHub: GitHubConfig{Repository: "widgets"}}, wantErr: "expected owner/name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
