package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"safesettings/pkg/github"
)

// RepositoryUpdater submits a repository patch
type RepositoryUpdater interface {
	UpdateRepository(ctx context.Context, owner, repo string, patch github.RepositoryPatch) error
}

// Patch accumulates repository fields staged during a run.
// It starts from a baseline holding only the owner and name, and remembers the
// serialized baseline so Commit can tell whether anything was staged.
type Patch struct {
	github.RepositoryPatch
	baseline []byte
}

// NewPatch creates an empty patch for owner/repo
func NewPatch(owner, repo string) (*Patch, error) {
	p := &Patch{RepositoryPatch: github.RepositoryPatch{Owner: owner, Name: repo}}

	baseline, err := json.Marshal(p.RepositoryPatch)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize patch baseline: %w", err)
	}
	p.baseline = baseline
	return p, nil
}

// Changed reports whether any field was staged since creation
func (p *Patch) Changed() (bool, error) {
	current, err := json.Marshal(p.RepositoryPatch)
	if err != nil {
		return false, fmt.Errorf("failed to serialize patch: %w", err)
	}
	return !bytes.Equal(current, p.baseline), nil
}

// Commit submits the patch when it differs from the baseline.
// It returns whether an update call was made.
func (p *Patch) Commit(ctx context.Context, updater RepositoryUpdater) (bool, error) {
	changed, err := p.Changed()
	if err != nil || !changed {
		return false, err
	}

	if err := updater.UpdateRepository(ctx, p.Owner, p.Name, p.RepositoryPatch); err != nil {
		return false, fmt.Errorf("failed to update repository %s/%s: %w", p.Owner, p.Name, err)
	}
	return true, nil
}
