package settings

// Document is the validated desired state of one repository.
// Every section and leaf is optional: nil means "not managed", which is
// different from an explicit false or empty value.
type Document struct {
	Version                 int                    `json:"version"`
	Details                 *Details               `json:"details,omitempty"`
	Issues                  *Toggle                `json:"issues,omitempty"`
	Projects                *Toggle                `json:"projects,omitempty"`
	Wikis                   *Wikis                 `json:"wikis,omitempty"`
	Discussions             *Toggle                `json:"discussions,omitempty"`
	PullRequests            *PullRequests          `json:"pullRequests,omitempty"`
	SecurityAnalysis        *SecurityAnalysis      `json:"securityAnalysis,omitempty"`
	HomePage                *HomePage              `json:"homePage,omitempty"`
	BranchProtection        map[string]*BranchRule `json:"branchProtection,omitempty"`
	DefaultBranchProtection *BranchRule            `json:"defaultBranchProtection,omitempty"`
}

// Details holds the repository description, website and topics
type Details struct {
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
	// Topics is nil when absent; an empty list removes every topic
	Topics *[]string `json:"topics,omitempty"`
}

// Toggle is a section with a single enabled flag
type Toggle struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// Wikis holds the wiki settings
type Wikis struct {
	Enabled *bool `json:"enabled,omitempty"`
	// EditingRestrictedToUsersWithPushAccessOnly has no REST API and is only reported
	EditingRestrictedToUsersWithPushAccessOnly *bool `json:"editingRestrictedToUsersWithPushAccessOnly,omitempty"`
}

// PullRequests holds the merge settings
type PullRequests struct {
	MergeCommitsEnabled        *bool `json:"mergeCommitsEnabled,omitempty"`
	SquashMergingEnabled       *bool `json:"squashMergingEnabled,omitempty"`
	RebaseMergingEnabled       *bool `json:"rebaseMergingEnabled,omitempty"`
	DeleteBranchOnMergeEnabled *bool `json:"deleteBranchOnMergeEnabled,omitempty"`
	AutoMergeEnabled           *bool `json:"autoMergeEnabled,omitempty"`
}

// SecurityAnalysis holds the Dependabot settings
type SecurityAnalysis struct {
	VulnerabilitiesAlertsEnabled    *bool `json:"vulnerabilitiesAlertsEnabled,omitempty"`
	AutomaticSecurityUpdatesEnabled *bool `json:"automaticSecurityUpdatesEnabled,omitempty"`
}

// HomePage holds the repository home page toggles, which have no REST API
type HomePage struct {
	ReleasesDisplayed     *bool `json:"releasesDisplayed,omitempty"`
	PackagesDisplayed     *bool `json:"packagesDisplayed,omitempty"`
	EnvironmentsDisplayed *bool `json:"environmentsDisplayed,omitempty"`
}

// BranchRule is the managed subset of a branch protection
type BranchRule struct {
	AdministratorsIncluded *bool `json:"administratorsIncluded,omitempty"`
	DeletionsAllowed       *bool `json:"deletionsAllowed,omitempty"`
	ForcePushesAllowed     *bool `json:"forcePushesAllowed,omitempty"`
}

// BranchRules returns the working rule set: branchProtection plus
// defaultBranchProtection installed under defaultBranch.
// It returns *PrecedenceConflictError when branchProtection already names defaultBranch.
func (d *Document) BranchRules(defaultBranch string) (map[string]*BranchRule, error) {
	if _, ok := d.BranchProtection[defaultBranch]; ok {
		return nil, &PrecedenceConflictError{Branch: defaultBranch}
	}

	rules := make(map[string]*BranchRule, len(d.BranchProtection)+1)
	for branch, rule := range d.BranchProtection {
		rules[branch] = rule
	}
	if d.DefaultBranchProtection != nil {
		rules[defaultBranch] = d.DefaultBranchProtection
	}
	return rules, nil
}
