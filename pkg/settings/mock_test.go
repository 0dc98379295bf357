package settings

import (
	"context"

	"github.com/stretchr/testify/mock"

	"safesettings/pkg/github"
)

// MockAPIClient is a mock implementation of github.APIClient for testing
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) GetContent(ctx context.Context, owner, repo, path, ref string) (*github.FileContent, error) {
	args := m.Called(ctx, owner, repo, path, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.FileContent), args.Error(1)
}

func (m *MockAPIClient) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Repository), args.Error(1)
}

func (m *MockAPIClient) UpdateRepository(ctx context.Context, owner, repo string, patch github.RepositoryPatch) error {
	args := m.Called(ctx, owner, repo, patch)
	return args.Error(0)
}

func (m *MockAPIClient) ReplaceTopics(ctx context.Context, owner, repo string, topics []string) error {
	args := m.Called(ctx, owner, repo, topics)
	return args.Error(0)
}

func (m *MockAPIClient) VulnerabilityAlertsEnabled(ctx context.Context, owner, repo string) (bool, error) {
	args := m.Called(ctx, owner, repo)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPIClient) EnableVulnerabilityAlerts(ctx context.Context, owner, repo string) error {
	args := m.Called(ctx, owner, repo)
	return args.Error(0)
}

func (m *MockAPIClient) DisableVulnerabilityAlerts(ctx context.Context, owner, repo string) error {
	args := m.Called(ctx, owner, repo)
	return args.Error(0)
}

func (m *MockAPIClient) AutomatedSecurityFixesEnabled(ctx context.Context, owner, repo string) (bool, error) {
	args := m.Called(ctx, owner, repo)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPIClient) EnableAutomatedSecurityFixes(ctx context.Context, owner, repo string) error {
	args := m.Called(ctx, owner, repo)
	return args.Error(0)
}

func (m *MockAPIClient) DisableAutomatedSecurityFixes(ctx context.Context, owner, repo string) error {
	args := m.Called(ctx, owner, repo)
	return args.Error(0)
}

func (m *MockAPIClient) GetBranchProtection(ctx context.Context, owner, repo, branch string) (*github.BranchProtection, error) {
	args := m.Called(ctx, owner, repo, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.BranchProtection), args.Error(1)
}

func (m *MockAPIClient) UpdateBranchProtection(ctx context.Context, owner, repo string, current *github.BranchProtection, update github.BranchProtectionUpdate) error {
	args := m.Called(ctx, owner, repo, current, update)
	return args.Error(0)
}

// mutatingCalls returns the names of the mutating methods called on m, in order
func (m *MockAPIClient) mutatingCalls() []string {
	var names []string
	for _, call := range m.Calls {
		switch call.Method {
		case "UpdateRepository", "ReplaceTopics",
			"EnableVulnerabilityAlerts", "DisableVulnerabilityAlerts",
			"EnableAutomatedSecurityFixes", "DisableAutomatedSecurityFixes",
			"UpdateBranchProtection":
			names = append(names, call.Method)
		}
	}
	return names
}

func notFound(resource string) error {
	return &github.GitHubError{Type: github.ErrorTypeNotFound, Resource: resource, Message: "Not Found", StatusCode: 404}
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}
