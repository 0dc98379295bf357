package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client  *github.Client
	retry   *RetryConfig
	limiter *RateLimiter
}

// NewClient creates a new GitHub API client with the provided token
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client:  github.NewClient(tc),
		retry:   DefaultRetryConfig(),
		limiter: NewRateLimiter(nil),
	}
}

// NewEnterpriseClient creates a client for a GitHub Enterprise Server API base URL.
// The public API URL is accepted as well and behaves like NewClient.
func NewEnterpriseClient(token, baseURL string) (*Client, error) {
	c := NewClient(token)
	if baseURL == "" || strings.TrimSuffix(baseURL, "/") == "https://api.github.com" {
		return c, nil
	}

	enterprise, err := c.client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
	}
	c.client = enterprise
	return c, nil
}

// SetRetryConfig replaces the retry policy used for every call
func (c *Client) SetRetryConfig(config *RetryConfig) {
	c.retry = config
}

// SetRateLimiterConfig replaces the pacing applied when the remaining quota runs low
func (c *Client) SetRateLimiterConfig(config *RateLimiterConfig) {
	c.limiter = NewRateLimiter(config)
}

// RateLimitStats returns the rate limit usage observed so far
func (c *Client) RateLimitStats() RateLimiterStats {
	return c.limiter.GetStats()
}

// do runs a single API call under the rate limiter and the retry policy.
// Errors returned by call are wrapped as *GitHubError for resource.
func (c *Client) do(ctx context.Context, resource string, call func() (*github.Response, error)) error {
	return WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		resp, err := call()
		c.limiter.Update(resp)
		if err != nil {
			return WrapGitHubError(err, resource)
		}
		return nil
	}, c.retry)
}

// GetContent retrieves a single file from a repository at the given ref
func (c *Client) GetContent(ctx context.Context, owner, repo, path, ref string) (*FileContent, error) {
	var file *github.RepositoryContent

	resource := fmt.Sprintf("file %s in %s/%s", path, owner, repo)
	opts := &github.RepositoryContentGetOptions{Ref: ref}

	err := c.do(ctx, resource, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		file, _, resp, err = c.client.Repositories.GetContents(ctx, owner, repo, path, opts)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	// A directory listing comes back instead of a file
	if file == nil {
		return &FileContent{Path: path, Type: "dir"}, nil
	}

	content := &FileContent{
		Path:        file.GetPath(),
		Type:        file.GetType(),
		Encoding:    file.GetEncoding(),
		DownloadURL: file.GetDownloadURL(),
	}
	if file.Content != nil {
		content.Content = *file.Content
	}

	return content, nil
}

// GetRepository retrieves a repository by owner and name
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	var repo *github.Repository

	err := c.do(ctx, fmt.Sprintf("repository %s/%s", owner, name), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		repo, resp, err = c.client.Repositories.Get(ctx, owner, name)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	return c.convertGitHubRepository(repo), nil
}

// UpdateRepository sends the staged fields of patch in a single edit call
func (c *Client) UpdateRepository(ctx context.Context, owner, name string, patch RepositoryPatch) error {
	repo := &github.Repository{
		Description:         patch.Description,
		Homepage:            patch.Homepage,
		HasIssues:           patch.HasIssues,
		HasWiki:             patch.HasWiki,
		HasProjects:         patch.HasProjects,
		HasDiscussions:      patch.HasDiscussions,
		AllowMergeCommit:    patch.AllowMergeCommit,
		AllowSquashMerge:    patch.AllowSquashMerge,
		AllowRebaseMerge:    patch.AllowRebaseMerge,
		AllowAutoMerge:      patch.AllowAutoMerge,
		DeleteBranchOnMerge: patch.DeleteBranchOnMerge,
	}

	return c.do(ctx, fmt.Sprintf("repository %s/%s", owner, name), func() (*github.Response, error) {
		_, resp, err := c.client.Repositories.Edit(ctx, owner, name, repo)
		return resp, err
	})
}

// ReplaceTopics replaces every topic on the repository
func (c *Client) ReplaceTopics(ctx context.Context, owner, name string, topics []string) error {
	return c.do(ctx, fmt.Sprintf("repository topics %s/%s", owner, name), func() (*github.Response, error) {
		_, resp, err := c.client.Repositories.ReplaceAllTopics(ctx, owner, name, topics)
		return resp, err
	})
}

// VulnerabilityAlertsEnabled reports whether Dependabot alerts are enabled.
// GitHub answers 404 when they are disabled.
func (c *Client) VulnerabilityAlertsEnabled(ctx context.Context, owner, name string) (bool, error) {
	var enabled bool

	err := c.do(ctx, fmt.Sprintf("vulnerability alerts %s/%s", owner, name), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		enabled, resp, err = c.client.Repositories.GetVulnerabilityAlerts(ctx, owner, name)
		return resp, err
	})
	if IsNotFound(err) {
		return false, nil
	}

	return enabled, err
}

// EnableVulnerabilityAlerts turns Dependabot alerts on
func (c *Client) EnableVulnerabilityAlerts(ctx context.Context, owner, name string) error {
	return c.do(ctx, fmt.Sprintf("vulnerability alerts %s/%s", owner, name), func() (*github.Response, error) {
		return c.client.Repositories.EnableVulnerabilityAlerts(ctx, owner, name)
	})
}

// DisableVulnerabilityAlerts turns Dependabot alerts off
func (c *Client) DisableVulnerabilityAlerts(ctx context.Context, owner, name string) error {
	return c.do(ctx, fmt.Sprintf("vulnerability alerts %s/%s", owner, name), func() (*github.Response, error) {
		return c.client.Repositories.DisableVulnerabilityAlerts(ctx, owner, name)
	})
}

// AutomatedSecurityFixesEnabled reports whether Dependabot security updates are enabled
func (c *Client) AutomatedSecurityFixesEnabled(ctx context.Context, owner, name string) (bool, error) {
	var fixes *github.AutomatedSecurityFixes

	err := c.do(ctx, fmt.Sprintf("automated security fixes %s/%s", owner, name), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		fixes, resp, err = c.client.Repositories.GetAutomatedSecurityFixes(ctx, owner, name)
		return resp, err
	})
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return fixes.GetEnabled(), nil
}

// EnableAutomatedSecurityFixes turns Dependabot security updates on
func (c *Client) EnableAutomatedSecurityFixes(ctx context.Context, owner, name string) error {
	return c.do(ctx, fmt.Sprintf("automated security fixes %s/%s", owner, name), func() (*github.Response, error) {
		return c.client.Repositories.EnableAutomatedSecurityFixes(ctx, owner, name)
	})
}

// DisableAutomatedSecurityFixes turns Dependabot security updates off
func (c *Client) DisableAutomatedSecurityFixes(ctx context.Context, owner, name string) error {
	return c.do(ctx, fmt.Sprintf("automated security fixes %s/%s", owner, name), func() (*github.Response, error) {
		return c.client.Repositories.DisableAutomatedSecurityFixes(ctx, owner, name)
	})
}

// GetBranchProtection retrieves branch protection for a specific branch.
// An unprotected branch yields (nil, nil).
func (c *Client) GetBranchProtection(ctx context.Context, owner, name, branch string) (*BranchProtection, error) {
	var protection *github.Protection

	err := c.do(ctx, fmt.Sprintf("branch protection %s/%s:%s", owner, name, branch), func() (*github.Response, error) {
		var resp *github.Response
		var err error
		protection, resp, err = c.client.Repositories.GetBranchProtection(ctx, owner, name, branch)
		if errors.Is(err, github.ErrBranchNotProtected) {
			protection = nil
			return resp, nil
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	if protection == nil {
		return nil, nil
	}

	return c.convertGitHubBranchProtection(protection, branch), nil
}

// UpdateBranchProtection applies update on top of the current protection of a branch.
// Settings this tool does not manage are carried over from current.
func (c *Client) UpdateBranchProtection(ctx context.Context, owner, name string, current *BranchProtection, update BranchProtectionUpdate) error {
	protection := c.buildProtectionRequest(current, update)

	return c.do(ctx, fmt.Sprintf("branch protection %s/%s:%s", owner, name, update.Branch), func() (*github.Response, error) {
		_, resp, err := c.client.Repositories.UpdateBranchProtection(ctx, owner, name, update.Branch, protection)
		return resp, err
	})
}

// buildProtectionRequest builds a GitHub API ProtectionRequest from the current protection and the update
func (c *Client) buildProtectionRequest(current *BranchProtection, update BranchProtectionUpdate) *github.ProtectionRequest {
	protection := &github.ProtectionRequest{}

	if current != nil {
		protection.EnforceAdmins = current.AdministratorsIncluded
		protection.AllowDeletions = github.Bool(current.DeletionsAllowed)
		protection.AllowForcePushes = github.Bool(current.ForcePushesAllowed)
		carryOverProtection(protection, current.raw)
	}

	if update.AdministratorsIncluded != nil {
		protection.EnforceAdmins = *update.AdministratorsIncluded
	}
	if update.DeletionsAllowed != nil {
		protection.AllowDeletions = github.Bool(*update.DeletionsAllowed)
	}
	if update.ForcePushesAllowed != nil {
		protection.AllowForcePushes = github.Bool(*update.ForcePushesAllowed)
	}

	return protection
}

// carryOverProtection copies settings outside this tool's scope into the request,
// since the protection endpoint replaces the whole rule
func carryOverProtection(req *github.ProtectionRequest, raw *github.Protection) {
	if raw == nil {
		return
	}

	if checks := raw.RequiredStatusChecks; checks != nil {
		req.RequiredStatusChecks = &github.RequiredStatusChecks{
			Strict:   checks.Strict,
			Contexts: checks.Contexts,
			Checks:   checks.Checks,
		}
	}

	if reviews := raw.RequiredPullRequestReviews; reviews != nil {
		reviewsReq := &github.PullRequestReviewsEnforcementRequest{
			DismissStaleReviews:          reviews.DismissStaleReviews,
			RequireCodeOwnerReviews:      reviews.RequireCodeOwnerReviews,
			RequiredApprovingReviewCount: reviews.RequiredApprovingReviewCount,
			RequireLastPushApproval:      github.Bool(reviews.RequireLastPushApproval),
		}
		if dr := reviews.DismissalRestrictions; dr != nil {
			users, teams, apps := actorNames(dr.Users, dr.Teams, dr.Apps)
			reviewsReq.DismissalRestrictionsRequest = &github.DismissalRestrictionsRequest{
				Users: &users,
				Teams: &teams,
				Apps:  &apps,
			}
		}
		if bypass := reviews.BypassPullRequestAllowances; bypass != nil {
			users, teams, apps := actorNames(bypass.Users, bypass.Teams, bypass.Apps)
			reviewsReq.BypassPullRequestAllowancesRequest = &github.BypassPullRequestAllowancesRequest{
				Users: users,
				Teams: teams,
				Apps:  apps,
			}
		}
		req.RequiredPullRequestReviews = reviewsReq
	}

	if restrictions := raw.Restrictions; restrictions != nil {
		users, teams, apps := actorNames(restrictions.Users, restrictions.Teams, restrictions.Apps)
		req.Restrictions = &github.BranchRestrictionsRequest{
			Users: users,
			Teams: teams,
			Apps:  apps,
		}
	}

	if raw.RequireLinearHistory != nil {
		req.RequireLinearHistory = github.Bool(raw.RequireLinearHistory.Enabled)
	}
	if raw.RequiredConversationResolution != nil {
		req.RequiredConversationResolution = github.Bool(raw.RequiredConversationResolution.Enabled)
	}
	if raw.BlockCreations != nil {
		req.BlockCreations = raw.BlockCreations.Enabled
	}
	if raw.LockBranch != nil {
		req.LockBranch = raw.LockBranch.Enabled
	}
	if raw.AllowForkSyncing != nil {
		req.AllowForkSyncing = raw.AllowForkSyncing.Enabled
	}
}

func actorNames(users []*github.User, teams []*github.Team, apps []*github.App) ([]string, []string, []string) {
	userNames := make([]string, 0, len(users))
	for _, u := range users {
		userNames = append(userNames, u.GetLogin())
	}
	teamNames := make([]string, 0, len(teams))
	for _, t := range teams {
		teamNames = append(teamNames, t.GetSlug())
	}
	appNames := make([]string, 0, len(apps))
	for _, a := range apps {
		appNames = append(appNames, a.GetSlug())
	}
	return userNames, teamNames, appNames
}

// convertGitHubRepository converts a GitHub API repository to our internal type
func (c *Client) convertGitHubRepository(repo *github.Repository) *Repository {
	return &Repository{
		ID:                  repo.GetID(),
		Owner:               repo.GetOwner().GetLogin(),
		Name:                repo.GetName(),
		FullName:            repo.GetFullName(),
		Description:         repo.GetDescription(),
		Homepage:            repo.GetHomepage(),
		Topics:              repo.Topics,
		DefaultBranch:       repo.GetDefaultBranch(),
		Private:             repo.GetPrivate(),
		Archived:            repo.GetArchived(),
		HasIssues:           repo.GetHasIssues(),
		HasWiki:             repo.GetHasWiki(),
		HasProjects:         repo.GetHasProjects(),
		HasDiscussions:      repo.GetHasDiscussions(),
		AllowMergeCommit:    repo.GetAllowMergeCommit(),
		AllowSquashMerge:    repo.GetAllowSquashMerge(),
		AllowRebaseMerge:    repo.GetAllowRebaseMerge(),
		AllowAutoMerge:      repo.GetAllowAutoMerge(),
		DeleteBranchOnMerge: repo.GetDeleteBranchOnMerge(),
		UpdatedAt:           repo.GetUpdatedAt().Time,
	}
}

// convertGitHubBranchProtection converts GitHub API branch protection to our internal type
func (c *Client) convertGitHubBranchProtection(protection *github.Protection, branch string) *BranchProtection {
	bp := &BranchProtection{
		Branch: branch,
		raw:    protection,
	}

	if protection.EnforceAdmins != nil {
		bp.AdministratorsIncluded = protection.EnforceAdmins.Enabled
	}
	if protection.AllowDeletions != nil {
		bp.DeletionsAllowed = protection.AllowDeletions.Enabled
	}
	if protection.AllowForcePushes != nil {
		bp.ForcePushesAllowed = protection.AllowForcePushes.Enabled
	}

	return bp
}
