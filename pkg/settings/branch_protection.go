package settings

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"safesettings/pkg/github"
)

// reconcileBranchProtection applies every branch rule independently, in branch
// name order. A failing branch is logged and recorded without stopping the others.
func (rn *run) reconcileBranchProtection(ctx context.Context) error {
	if len(rn.rules) == 0 {
		return nil
	}

	branches := make([]string, 0, len(rn.rules))
	for branch := range rn.rules {
		branches = append(branches, branch)
	}
	sort.Strings(branches)

	var succeeded []string
	failed := make(map[string]error)
	for _, branch := range branches {
		if err := rn.reconcileBranch(ctx, branch, rn.rules[branch]); err != nil {
			if ctx.Err() != nil {
				return err
			}
			rn.log.WithFields(logrus.Fields{
				"section": "branchProtection",
				"branch":  branch,
			}).WithError(err).Error("failed to apply branch protection")
			failed[branch] = err
			continue
		}
		succeeded = append(succeeded, branch)
	}

	if len(failed) > 0 {
		rn.branchFailures = NewPartialFailureError(succeeded, failed)
	}
	return nil
}

// reconcileBranch compares one rule with the branch's current protection and
// issues a single update covering every differing flag
func (rn *run) reconcileBranch(ctx context.Context, branch string, rule *BranchRule) error {
	if rule == nil {
		return nil
	}

	current, err := rn.client.GetBranchProtection(ctx, rn.owner, rn.repo, branch)
	if err != nil {
		return fmt.Errorf("failed to read protection: %w", err)
	}
	// Anyone with push access may delete or force-push an unprotected branch
	have := github.BranchProtection{Branch: branch, DeletionsAllowed: true, ForcePushesAllowed: true}
	if current != nil {
		have = *current
	}

	update := github.BranchProtectionUpdate{Branch: branch}
	flags := []struct {
		name   string
		want   *bool
		have   bool
		target **bool
	}{
		{"administratorsIncluded", rule.AdministratorsIncluded, have.AdministratorsIncluded, &update.AdministratorsIncluded},
		{"deletionsAllowed", rule.DeletionsAllowed, have.DeletionsAllowed, &update.DeletionsAllowed},
		{"forcePushesAllowed", rule.ForcePushesAllowed, have.ForcePushesAllowed, &update.ForcePushesAllowed},
	}

	changed := false
	for _, f := range flags {
		if f.want == nil || *f.want == f.have {
			continue
		}
		rn.record(Change{
			Section: "branchProtection",
			Field:   f.name,
			Branch:  branch,
			Type:    changeType(*f.want),
			From:    f.have,
			To:      *f.want,
		})
		value := *f.want
		*f.target = &value
		changed = true
	}
	if !changed {
		return nil
	}

	return rn.call(CallUpdateBranchProtection+":"+branch, func() error {
		return rn.client.UpdateBranchProtection(ctx, rn.owner, rn.repo, current, update)
	})
}
