package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"safesettings/pkg/github"
)

// ChangeType represents the direction of a setting change
type ChangeType string

const (
	ChangeTypeEnable  ChangeType = "enable"
	ChangeTypeDisable ChangeType = "disable"
	ChangeTypeUpdate  ChangeType = "update"
)

// Change records one setting brought in line with the document
type Change struct {
	Section string     `json:"section"`
	Field   string     `json:"field"`
	Branch  string     `json:"branch,omitempty"`
	Type    ChangeType `json:"type"`
	From    any        `json:"from"`
	To      any        `json:"to"`
}

// Names of the mutating collaborator calls, as recorded in Result.Calls
const (
	CallReplaceTopics                 = "ReplaceTopics"
	CallEnableVulnerabilityAlerts     = "EnableVulnerabilityAlerts"
	CallDisableVulnerabilityAlerts    = "DisableVulnerabilityAlerts"
	CallEnableAutomatedSecurityFixes  = "EnableAutomatedSecurityFixes"
	CallDisableAutomatedSecurityFixes = "DisableAutomatedSecurityFixes"
	CallUpdateBranchProtection        = "UpdateBranchProtection"
	CallUpdateRepository              = "UpdateRepository"
)

// SupportedVersion is the only settings document format version understood.
// The schema injects it when a document omits version.
const SupportedVersion = 1

// Options tune a reconciliation run
type Options struct {
	// DryRun logs and records every change without making mutating calls
	DryRun bool
	// RequireDocument turns a missing settings document into an error
	RequireDocument bool
	// Logger receives change-intent records; defaults to the logrus standard logger
	Logger logrus.FieldLogger
}

// Result summarizes a reconciliation run
type Result struct {
	DocumentPath    string `json:"document_path,omitempty"`
	DocumentVersion int    `json:"document_version,omitempty"`
	// Managed is false when the repository has no settings document
	Managed bool     `json:"managed"`
	Changes []Change `json:"changes"`
	// Calls lists the mutating calls issued, in order
	Calls          []string `json:"calls"`
	PatchSubmitted bool     `json:"patch_submitted"`
}

// Reconciler brings one repository in line with its settings document
type Reconciler struct {
	client    github.APIClient
	owner     string
	repo      string
	opts      Options
	validator *Validator
	log       logrus.FieldLogger
}

// NewReconciler creates a reconciler for owner/repo
func NewReconciler(client github.APIClient, owner, repo string, opts Options) (*Reconciler, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Reconciler{
		client:    client,
		owner:     owner,
		repo:      repo,
		opts:      opts,
		validator: validator,
		log:       log.WithField("repository", owner+"/"+repo),
	}, nil
}

// Run locates, parses and validates the settings document at ref (empty for the
// default branch) and applies it. A repository without a document is left alone
// unless Options.RequireDocument is set.
func (r *Reconciler) Run(ctx context.Context, ref string) (*Result, error) {
	source, err := NewLocator(r.client, r.owner, r.repo).Locate(ctx, ref)
	if errors.Is(err, ErrNoDocument) && !r.opts.RequireDocument {
		r.log.Info("no settings document found, repository is unmanaged")
		return &Result{}, nil
	}
	if err != nil {
		return nil, err
	}
	r.log.WithField("path", source.Path).Debug("found settings document")

	doc, err := r.validator.Load(source.Path, source.Text)
	if err != nil {
		return nil, err
	}

	result, err := r.Apply(ctx, doc)
	if result != nil {
		result.DocumentPath = source.Path
	}
	return result, err
}

// Apply reconciles an already validated document.
// Fatal errors abort the run; calls already issued are not rolled back.
// Branch protection failures are collected into a *PartialFailureError returned
// together with the result once the patch has been committed.
func (r *Reconciler) Apply(ctx context.Context, doc *Document) (*Result, error) {
	version := doc.Version
	if version == 0 {
		version = SupportedVersion
	}
	if version != SupportedVersion {
		return nil, fmt.Errorf("unsupported settings document version %d, expected %d", version, SupportedVersion)
	}

	rn := &run{
		Reconciler: r,
		doc:        doc,
		result: &Result{
			DocumentVersion: version,
			Managed:         true,
			Changes:         []Change{},
			Calls:           []string{},
		},
	}

	for _, phase := range rn.phases() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := phase.run(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", phase.name, err)
		}
	}

	if rn.branchFailures != nil {
		return rn.result, rn.branchFailures
	}
	return rn.result, nil
}

// run holds the state owned by one reconciliation
type run struct {
	*Reconciler
	doc            *Document
	live           *github.Repository
	rules          map[string]*BranchRule
	patch          *Patch
	result         *Result
	branchFailures *PartialFailureError
}

type phase struct {
	name string
	run  func(ctx context.Context) error
}

// phases returns the reconciliation steps in their fixed order
func (rn *run) phases() []phase {
	return []phase{
		{"init", rn.prepare},
		{"details", rn.sectionPhase(detailsFields)},
		{"wikis", rn.sectionPhase(wikisFields)},
		{"issues", rn.sectionPhase(issuesFields)},
		{"projects", rn.sectionPhase(projectsFields)},
		{"discussions", rn.sectionPhase(discussionsFields)},
		{"pullRequests", rn.sectionPhase(pullRequestsFields)},
		{"securityAnalysis", rn.reconcileSecurity},
		{"branchProtection", rn.reconcileBranchProtection},
		{"commit", rn.commit},
	}
}

// prepare reads the live repository once and checks branch rule precedence
// before any mutating call
func (rn *run) prepare(ctx context.Context) error {
	live, err := rn.client.GetRepository(ctx, rn.owner, rn.repo)
	if err != nil {
		return err
	}
	rn.live = live

	rules, err := rn.doc.BranchRules(live.DefaultBranch)
	if err != nil {
		return err
	}
	rn.rules = rules

	patch, err := NewPatch(rn.owner, rn.repo)
	if err != nil {
		return err
	}
	rn.patch = patch

	rn.reportUnsupported()
	return nil
}

func (rn *run) commit(ctx context.Context) error {
	if rn.opts.DryRun {
		changed, err := rn.patch.Changed()
		if err == nil && changed {
			rn.log.WithField("dryrun", true).Info("would update repository settings")
		}
		return err
	}

	submitted, err := rn.patch.Commit(ctx, rn.client)
	if submitted {
		rn.result.Calls = append(rn.result.Calls, CallUpdateRepository)
		rn.result.PatchSubmitted = true
	}
	return err
}

// record logs a change intent and adds it to the result
func (rn *run) record(change Change) {
	fields := logrus.Fields{
		"section": change.Section,
		"field":   change.Field,
		"dryrun":  rn.opts.DryRun,
	}
	if change.Branch != "" {
		fields["branch"] = change.Branch
	}
	rn.log.WithFields(fields).Infof("%s %s.%s", verb(change.Type), change.Section, change.Field)

	rn.result.Changes = append(rn.result.Changes, change)
}

// call issues a mutating call unless this is a dry run
func (rn *run) call(name string, fn func() error) error {
	if rn.opts.DryRun {
		return nil
	}
	rn.result.Calls = append(rn.result.Calls, name)
	return fn()
}

// reportUnsupported warns about settings that have no REST API
func (rn *run) reportUnsupported() {
	var fields []string
	if w := rn.doc.Wikis; w != nil && w.EditingRestrictedToUsersWithPushAccessOnly != nil {
		fields = append(fields, "wikis.editingRestrictedToUsersWithPushAccessOnly")
	}
	if h := rn.doc.HomePage; h != nil {
		if h.ReleasesDisplayed != nil {
			fields = append(fields, "homePage.releasesDisplayed")
		}
		if h.PackagesDisplayed != nil {
			fields = append(fields, "homePage.packagesDisplayed")
		}
		if h.EnvironmentsDisplayed != nil {
			fields = append(fields, "homePage.environmentsDisplayed")
		}
	}
	for _, f := range fields {
		rn.log.WithField("field", f).Warn("setting is not supported by the GitHub API, ignoring")
	}
}

func changeType(to any) ChangeType {
	if b, ok := to.(bool); ok {
		if b {
			return ChangeTypeEnable
		}
		return ChangeTypeDisable
	}
	return ChangeTypeUpdate
}

func verb(t ChangeType) string {
	switch t {
	case ChangeTypeEnable:
		return "enabling"
	case ChangeTypeDisable:
		return "disabling"
	default:
		return "updating"
	}
}
