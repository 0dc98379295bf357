package settings

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidator_ValidDocument(t *testing.T) {
	text := `
details:
  description: Widgets and gadgets
  website: https://widgets.example.com
  topics: [go, github-settings]
issues:
  enabled: true
projects:
  enabled: false
wikis:
  enabled: false
  editingRestrictedToUsersWithPushAccessOnly: true
discussions:
  enabled: true
pullRequests:
  mergeCommitsEnabled: false
  squashMergingEnabled: true
  rebaseMergingEnabled: false
  deleteBranchOnMergeEnabled: true
  autoMergeEnabled: true
securityAnalysis:
  vulnerabilitiesAlertsEnabled: true
  automaticSecurityUpdatesEnabled: true
homePage:
  releasesDisplayed: true
branchProtection:
  release/1.x:
    deletionsAllowed: false
defaultBranchProtection:
  administratorsIncluded: true
  forcePushesAllowed: false
`
	doc, err := newTestValidator(t).Load(".config/settings.yaml", []byte(text))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Version)
	require.NotNil(t, doc.Details)
	assert.Equal(t, "Widgets and gadgets", *doc.Details.Description)
	assert.Equal(t, []string{"go", "github-settings"}, *doc.Details.Topics)
	assert.True(t, *doc.Issues.Enabled)
	assert.False(t, *doc.Projects.Enabled)
	assert.True(t, *doc.Wikis.EditingRestrictedToUsersWithPushAccessOnly)
	assert.True(t, *doc.Discussions.Enabled)
	assert.False(t, *doc.PullRequests.MergeCommitsEnabled)
	assert.True(t, *doc.PullRequests.AutoMergeEnabled)
	assert.True(t, *doc.SecurityAnalysis.AutomaticSecurityUpdatesEnabled)
	assert.True(t, *doc.HomePage.ReleasesDisplayed)
	assert.Nil(t, doc.HomePage.PackagesDisplayed)
	require.Contains(t, doc.BranchProtection, "release/1.x")
	assert.False(t, *doc.BranchProtection["release/1.x"].DeletionsAllowed)
	assert.Nil(t, doc.BranchProtection["release/1.x"].AdministratorsIncluded)
	assert.True(t, *doc.DefaultBranchProtection.AdministratorsIncluded)
}

func TestValidator_AbsentSectionsStayAbsent(t *testing.T) {
	doc, err := newTestValidator(t).Load(".config/settings.json", []byte(`{"pullRequests": {}}`))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Version, "version default is injected")
	assert.Nil(t, doc.Details)
	assert.Nil(t, doc.SecurityAnalysis)
	assert.Nil(t, doc.BranchProtection)
	assert.Nil(t, doc.DefaultBranchProtection)
	require.NotNil(t, doc.PullRequests)
	assert.Nil(t, doc.PullRequests.SquashMergingEnabled)
}

func TestValidator_EmptyTopicsAreKept(t *testing.T) {
	doc, err := newTestValidator(t).Load(".config/settings.json", []byte(`{"details": {"topics": []}}`))
	require.NoError(t, err)

	require.NotNil(t, doc.Details.Topics)
	assert.Empty(t, *doc.Details.Topics)
}

func TestValidator_Violations(t *testing.T) {
	tooManyTopics := make([]string, 21)
	for i := range tooManyTopics {
		tooManyTopics[i] = fmt.Sprintf("%q", fmt.Sprintf("topic-%d", i))
	}

	tests := []struct {
		name     string
		text     string
		contains []string
	}{
		{
			name:     "unknown section",
			text:     `{"branchProtections": {}}`,
			contains: []string{"branchProtections"},
		},
		{
			name:     "unknown field",
			text:     `{"issues": {"enable": true}}`,
			contains: []string{"enable"},
		},
		{
			name:     "wrong type",
			text:     `{"pullRequests": {"squashMergingEnabled": "yes"}}`,
			contains: []string{"pullRequests.squashMergingEnabled"},
		},
		{
			name:     "unsupported version",
			text:     `{"version": 2}`,
			contains: []string{"version"},
		},
		{
			name:     "description too long",
			text:     fmt.Sprintf(`{"details": {"description": %q}}`, strings.Repeat("x", 351)),
			contains: []string{"details.description"},
		},
		{
			name:     "too many topics",
			text:     fmt.Sprintf(`{"details": {"topics": [%s]}}`, strings.Join(tooManyTopics, ",")),
			contains: []string{"details.topics"},
		},
		{
			name:     "duplicate topics",
			text:     `{"details": {"topics": ["go", "go"]}}`,
			contains: []string{"details.topics"},
		},
		{
			name:     "invalid topic",
			text:     `{"details": {"topics": ["Not A Topic"]}}`,
			contains: []string{"details.topics"},
		},
		{
			name:     "invalid branch rule",
			text:     `{"branchProtection": {"main": {"requireReviews": true}}}`,
			contains: []string{"requireReviews"},
		},
		{
			name:     "empty branch name",
			text:     `{"branchProtection": {"": {"deletionsAllowed": false}}}`,
			contains: []string{"branch name must not be empty"},
		},
		{
			name:     "updates without alerts",
			text:     `{"securityAnalysis": {"vulnerabilitiesAlertsEnabled": false, "automaticSecurityUpdatesEnabled": true}}`,
			contains: []string{"automaticSecurityUpdatesEnabled requires vulnerabilitiesAlertsEnabled"},
		},
		{
			name:     "root is not an object",
			text:     `["issues"]`,
			contains: []string{"document root must be an object, got array"},
		},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := v.Load(".config/settings.json", []byte(tt.text))

			assert.Nil(t, doc)
			var violation *SchemaViolationError
			require.ErrorAs(t, err, &violation)
			assert.True(t, violation.Violations.HasErrors())
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestValidator_ReportsEveryViolation(t *testing.T) {
	text := `{
  "issues": {"enabled": "no"},
  "wikis": {"enabled": 1},
  "colour": "blue"
}`
	_, err := newTestValidator(t).Load(".config/settings.json", []byte(text))

	var violation *SchemaViolationError
	require.ErrorAs(t, err, &violation)
	assert.GreaterOrEqual(t, len(violation.Violations), 3)

	lines := strings.Split(err.Error(), "\n")
	assert.Equal(t, fmt.Sprintf(".config/settings.json failed validation with %d error(s):", len(violation.Violations)), lines[0])
	assert.IsNonDecreasing(t, lines[1:], "violations are listed in sorted order")
}

func TestSchemaViolationError_Format(t *testing.T) {
	err := &SchemaViolationError{
		Violations: ValidationErrors{
			{Field: "wikis.enabled", Message: "must be of type boolean"},
			{Message: "document root must be an object"},
			{Field: "details.topics", Message: "should have at most 20 items"},
		},
	}

	expected := "settings document failed validation with 3 error(s):\n" +
		"  - details.topics: should have at most 20 items\n" +
		"  - document root must be an object\n" +
		"  - wikis.enabled: must be of type boolean"
	assert.Equal(t, expected, err.Error())
}

func TestValidator_CommentOnlyYAMLManagesNothing(t *testing.T) {
	doc, err := newTestValidator(t).Load(".config/settings.yml", []byte("# settings will be added later\n# issues:\n#   enabled: true\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Version)
	assert.Nil(t, doc.Issues)
	assert.Nil(t, doc.BranchProtection)
}
