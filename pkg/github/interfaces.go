package github

import "context"

// ContentFetcher reads files from a repository
type ContentFetcher interface {
	// GetContent returns the file at path, or a not_found GitHubError
	GetContent(ctx context.Context, owner, repo, path, ref string) (*FileContent, error)
}

// RepositoryService defines the repository settings operations used during reconciliation
type RepositoryService interface {
	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
	UpdateRepository(ctx context.Context, owner, repo string, patch RepositoryPatch) error
	ReplaceTopics(ctx context.Context, owner, repo string, topics []string) error

	// Security and analysis operations
	VulnerabilityAlertsEnabled(ctx context.Context, owner, repo string) (bool, error)
	EnableVulnerabilityAlerts(ctx context.Context, owner, repo string) error
	DisableVulnerabilityAlerts(ctx context.Context, owner, repo string) error
	AutomatedSecurityFixesEnabled(ctx context.Context, owner, repo string) (bool, error)
	EnableAutomatedSecurityFixes(ctx context.Context, owner, repo string) error
	DisableAutomatedSecurityFixes(ctx context.Context, owner, repo string) error

	// Branch protection operations
	GetBranchProtection(ctx context.Context, owner, repo, branch string) (*BranchProtection, error)
	UpdateBranchProtection(ctx context.Context, owner, repo string, current *BranchProtection, update BranchProtectionUpdate) error
}

// APIClient is everything a reconciliation run needs from GitHub
type APIClient interface {
	ContentFetcher
	RepositoryService
}
