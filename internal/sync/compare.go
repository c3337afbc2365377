package sync

import (
	"context"
	"fmt"

	"github.com/driftsync/driftsync/internal/platform"
)

// Comparator measures how far a fork has drifted from its upstream.
type Comparator struct {
	client platform.Client
}

// NewComparator creates a Comparator.
func NewComparator(client platform.Client) *Comparator {
	return &Comparator{client: client}
}

// Compare resolves the upstream's default branch and measures the fork's
// branch of the same name against it. The fork branch is the comparison
// base, so the upstream head being ahead means the fork is behind.
func (c *Comparator) Compare(ctx context.Context, owner, repo string, upstream UpstreamRef) (*Comparison, error) {
	meta, err := c.client.GetRepository(ctx, upstream.Owner, upstream.Repo)
	if err != nil {
		return nil, fmt.Errorf("fetching upstream %s: %w", upstream, err)
	}

	branch := meta.DefaultBranch
	raw, err := c.client.CompareBranches(ctx, owner, repo, branch, upstream.Owner, branch)
	if err != nil {
		return nil, fmt.Errorf("comparing %s/%s with upstream %s: %w", owner, repo, upstream, err)
	}

	commits := make([]Commit, len(raw.Commits))
	for i, rc := range raw.Commits {
		commits[i] = Commit{SHA: rc.SHA, Message: rc.Message}
	}

	cmp := &Comparison{
		BehindBy:   raw.AheadBy,
		AheadBy:    raw.BehindBy,
		Commits:    commits,
		BaseBranch: branch,
	}
	cmp.Status = deriveStatus(cmp.BehindBy, cmp.AheadBy)
	return cmp, nil
}

func deriveStatus(behind, ahead int) string {
	switch {
	case behind > 0 && ahead > 0:
		return StatusDiverged
	case behind > 0:
		return StatusBehind
	case ahead > 0:
		return StatusAhead
	default:
		return StatusIdentical
	}
}
