package github

import (
	"fmt"
	"strings"

	"safesettings/pkg/config"
)

// AuthManager resolves the GitHub credential and builds an authenticated client
type AuthManager struct {
	token string
}

// NewAuthManager creates a new authentication manager
func NewAuthManager() *AuthManager {
	return &AuthManager{}
}

// GetToken returns the first non-empty token from, in order: the Actions input,
// the GITHUB_TOKEN environment variable and the tool configuration file.
// The environment has already been folded into cfg by config.Load.
func (am *AuthManager) GetToken(cfg *config.Config) (string, error) {
	if cfg != nil {
		for _, token := range []string{cfg.GitHub.InputToken, cfg.GitHub.Token} {
			if token = strings.TrimSpace(token); token != "" {
				return token, nil
			}
		}
	}

	return "", fmt.Errorf("no GitHub token found: set the githubToken input, the GITHUB_TOKEN environment variable, or github.token in ~/.safe-settings/config.yaml")
}

// Authenticate builds a client for the configured API URL
func (am *AuthManager) Authenticate(cfg *config.Config) (*Client, error) {
	token, err := am.GetToken(cfg)
	if err != nil {
		return nil, err
	}
	am.token = token

	return NewEnterpriseClient(token, cfg.GitHub.APIURL)
}

// Token returns the token resolved by the last Authenticate call
func (am *AuthManager) Token() string {
	return am.token
}

// GetAuthInstructions returns instructions for setting up GitHub authentication
func GetAuthInstructions() string {
	return `GitHub authentication is required. Please set up authentication using one of the following methods:

1. GitHub Actions input:
   with:
     githubToken: ${{ secrets.SETTINGS_TOKEN }}

2. Environment Variable:
   export GITHUB_TOKEN="your_token"

3. Configuration File:
   Add the following to ~/.safe-settings/config.yaml:

   github:
     token: "your_token"

The token needs the "Administration: write" repository permission (or the classic
"repo" scope) to change repository settings and branch protection.`
}
