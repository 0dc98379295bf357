package github

import (
	"time"

	"github.com/google/go-github/v66/github"
)

// FileContent represents a single entry returned by the contents API
type FileContent struct {
	Path        string `json:"path"`
	Type        string `json:"type"`
	Encoding    string `json:"encoding"`
	Content     string `json:"content"`
	DownloadURL string `json:"download_url"`
}

// Repository is a read-only snapshot of a repository's settings
type Repository struct {
	ID                  int64     `json:"id"`
	Owner               string    `json:"owner"`
	Name                string    `json:"name"`
	FullName            string    `json:"full_name"`
	Description         string    `json:"description"`
	Homepage            string    `json:"homepage"`
	Topics              []string  `json:"topics"`
	DefaultBranch       string    `json:"default_branch"`
	Private             bool      `json:"private"`
	Archived            bool      `json:"archived"`
	HasIssues           bool      `json:"has_issues"`
	HasWiki             bool      `json:"has_wiki"`
	HasProjects         bool      `json:"has_projects"`
	HasDiscussions      bool      `json:"has_discussions"`
	AllowMergeCommit    bool      `json:"allow_merge_commit"`
	AllowSquashMerge    bool      `json:"allow_squash_merge"`
	AllowRebaseMerge    bool      `json:"allow_rebase_merge"`
	AllowAutoMerge      bool      `json:"allow_auto_merge"`
	DeleteBranchOnMerge bool      `json:"delete_branch_on_merge"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// RepositoryPatch holds the repository fields to change in a single update call.
// A nil field means "leave as is".
type RepositoryPatch struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`

	Description         *string `json:"description,omitempty"`
	Homepage            *string `json:"homepage,omitempty"`
	HasIssues           *bool   `json:"has_issues,omitempty"`
	HasWiki             *bool   `json:"has_wiki,omitempty"`
	HasProjects         *bool   `json:"has_projects,omitempty"`
	HasDiscussions      *bool   `json:"has_discussions,omitempty"`
	AllowMergeCommit    *bool   `json:"allow_merge_commit,omitempty"`
	AllowSquashMerge    *bool   `json:"allow_squash_merge,omitempty"`
	AllowRebaseMerge    *bool   `json:"allow_rebase_merge,omitempty"`
	AllowAutoMerge      *bool   `json:"allow_auto_merge,omitempty"`
	DeleteBranchOnMerge *bool   `json:"delete_branch_on_merge,omitempty"`
}

// BranchProtection represents the protection currently applied to a branch
type BranchProtection struct {
	Branch                 string `json:"branch"`
	AdministratorsIncluded bool   `json:"administrators_included"`
	DeletionsAllowed       bool   `json:"deletions_allowed"`
	ForcePushesAllowed     bool   `json:"force_pushes_allowed"`

	// raw keeps the settings this tool does not manage so updates can carry them over
	raw *github.Protection
}

// BranchProtectionUpdate lists the protection flags to change on a branch.
// A nil field keeps the current value.
type BranchProtectionUpdate struct {
	Branch                 string `json:"branch"`
	AdministratorsIncluded *bool  `json:"administrators_included,omitempty"`
	DeletionsAllowed       *bool  `json:"deletions_allowed,omitempty"`
	ForcePushesAllowed     *bool  `json:"force_pushes_allowed,omitempty"`
}
