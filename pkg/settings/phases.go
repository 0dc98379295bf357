package settings

import (
	"context"
	"fmt"
	"slices"

	"safesettings/pkg/github"
)

// fieldRule reconciles one document leaf against the live repository
type fieldRule interface {
	apply(ctx context.Context, rn *run) error
}

// field describes a leaf of type T. A changed value is either staged onto the
// repository patch or, when invoke is set, applied right away through a
// dedicated call.
type field[T any] struct {
	section string
	name    string
	desired func(*Document) *T
	live    func(*github.Repository) T
	equal   func(a, b T) bool

	stage func(*github.RepositoryPatch, T)

	callName string
	invoke   func(ctx context.Context, rn *run, value T) error
}

// apply stages or calls when the leaf is present and differs; absent leaves are never touched
func (f field[T]) apply(ctx context.Context, rn *run) error {
	want := f.desired(rn.doc)
	if want == nil {
		return nil
	}

	have := f.live(rn.live)
	if f.equal(have, *want) {
		return nil
	}

	rn.record(Change{
		Section: f.section,
		Field:   f.name,
		Type:    changeType(*want),
		From:    have,
		To:      *want,
	})

	if f.invoke == nil {
		f.stage(&rn.patch.RepositoryPatch, *want)
		return nil
	}
	if err := rn.call(f.callName, func() error { return f.invoke(ctx, rn, *want) }); err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", f.section, f.name, err)
	}
	return nil
}

// sectionPhase runs every rule of a section in order
func (rn *run) sectionPhase(rules []fieldRule) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, rule := range rules {
			if err := rule.apply(ctx, rn); err != nil {
				return err
			}
		}
		return nil
	}
}

func equal[T comparable](a, b T) bool {
	return a == b
}

// flag builds a boolean rule staged onto the patch
func flag(section, name string, desired func(*Document) *bool, live func(*github.Repository) bool, stage func(*github.RepositoryPatch, *bool)) fieldRule {
	return field[bool]{
		section: section,
		name:    name,
		desired: desired,
		live:    live,
		equal:   equal[bool],
		stage:   func(p *github.RepositoryPatch, v bool) { stage(p, &v) },
	}
}

var detailsFields = []fieldRule{
	field[string]{
		section: "details",
		name:    "description",
		desired: func(d *Document) *string {
			if d.Details == nil {
				return nil
			}
			return d.Details.Description
		},
		live:  func(r *github.Repository) string { return r.Description },
		equal: equal[string],
		stage: func(p *github.RepositoryPatch, v string) { p.Description = &v },
	},
	field[string]{
		section: "details",
		name:    "website",
		desired: func(d *Document) *string {
			if d.Details == nil {
				return nil
			}
			return d.Details.Website
		},
		live:  func(r *github.Repository) string { return r.Homepage },
		equal: equal[string],
		stage: func(p *github.RepositoryPatch, v string) { p.Homepage = &v },
	},
	// Topics have their own endpoint and are order sensitive: ["a","b"] and ["b","a"] differ
	field[[]string]{
		section: "details",
		name:    "topics",
		desired: func(d *Document) *[]string {
			if d.Details == nil {
				return nil
			}
			return d.Details.Topics
		},
		live:     func(r *github.Repository) []string { return r.Topics },
		equal:    slices.Equal[[]string],
		callName: CallReplaceTopics,
		invoke: func(ctx context.Context, rn *run, topics []string) error {
			return rn.client.ReplaceTopics(ctx, rn.owner, rn.repo, topics)
		},
	},
}

var wikisFields = []fieldRule{
	flag("wikis", "enabled",
		func(d *Document) *bool {
			if d.Wikis == nil {
				return nil
			}
			return d.Wikis.Enabled
		},
		func(r *github.Repository) bool { return r.HasWiki },
		func(p *github.RepositoryPatch, v *bool) { p.HasWiki = v }),
}

var issuesFields = []fieldRule{
	flag("issues", "enabled",
		func(d *Document) *bool {
			if d.Issues == nil {
				return nil
			}
			return d.Issues.Enabled
		},
		func(r *github.Repository) bool { return r.HasIssues },
		func(p *github.RepositoryPatch, v *bool) { p.HasIssues = v }),
}

var projectsFields = []fieldRule{
	flag("projects", "enabled",
		func(d *Document) *bool {
			if d.Projects == nil {
				return nil
			}
			return d.Projects.Enabled
		},
		func(r *github.Repository) bool { return r.HasProjects },
		func(p *github.RepositoryPatch, v *bool) { p.HasProjects = v }),
}

var discussionsFields = []fieldRule{
	flag("discussions", "enabled",
		func(d *Document) *bool {
			if d.Discussions == nil {
				return nil
			}
			return d.Discussions.Enabled
		},
		func(r *github.Repository) bool { return r.HasDiscussions },
		func(p *github.RepositoryPatch, v *bool) { p.HasDiscussions = v }),
}

// pullRequest selects one leaf of the pullRequests section
func pullRequest(get func(*PullRequests) *bool) func(*Document) *bool {
	return func(d *Document) *bool {
		if d.PullRequests == nil {
			return nil
		}
		return get(d.PullRequests)
	}
}

var pullRequestsFields = []fieldRule{
	flag("pullRequests", "mergeCommitsEnabled",
		pullRequest(func(pr *PullRequests) *bool { return pr.MergeCommitsEnabled }),
		func(r *github.Repository) bool { return r.AllowMergeCommit },
		func(p *github.RepositoryPatch, v *bool) { p.AllowMergeCommit = v }),
	flag("pullRequests", "squashMergingEnabled",
		pullRequest(func(pr *PullRequests) *bool { return pr.SquashMergingEnabled }),
		func(r *github.Repository) bool { return r.AllowSquashMerge },
		func(p *github.RepositoryPatch, v *bool) { p.AllowSquashMerge = v }),
	flag("pullRequests", "rebaseMergingEnabled",
		pullRequest(func(pr *PullRequests) *bool { return pr.RebaseMergingEnabled }),
		func(r *github.Repository) bool { return r.AllowRebaseMerge },
		func(p *github.RepositoryPatch, v *bool) { p.AllowRebaseMerge = v }),
	flag("pullRequests", "deleteBranchOnMergeEnabled",
		pullRequest(func(pr *PullRequests) *bool { return pr.DeleteBranchOnMergeEnabled }),
		func(r *github.Repository) bool { return r.DeleteBranchOnMerge },
		func(p *github.RepositoryPatch, v *bool) { p.DeleteBranchOnMerge = v }),
	flag("pullRequests", "autoMergeEnabled",
		pullRequest(func(pr *PullRequests) *bool { return pr.AutoMergeEnabled }),
		func(r *github.Repository) bool { return r.AllowAutoMerge },
		func(p *github.RepositoryPatch, v *bool) { p.AllowAutoMerge = v }),
}
