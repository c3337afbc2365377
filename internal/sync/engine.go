package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/driftsync/driftsync/internal/platform"
	"github.com/driftsync/driftsync/internal/repoconfig"
)

// DefaultBranchPrefix prefixes the branches the pull-request strategy creates.
const DefaultBranchPrefix = "sync/upstream"

// Engine decides and executes the synchronization strategy for a comparison.
// An attempt either opens a pull request from a fresh sync branch or force
// updates the base branch in place, depending on the repository's config.
// Each attempt runs its remote calls strictly in order and never retries.
type Engine struct {
	client       platform.Client
	branchPrefix string
	now          func() time.Time
}

// NewEngine creates an Engine that names sync branches under prefix, or
// DefaultBranchPrefix when empty.
func NewEngine(client platform.Client, prefix string) *Engine {
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	return &Engine{client: client, branchPrefix: prefix, now: time.Now}
}

// BranchPrefix returns the prefix sync branches are created under.
func (e *Engine) BranchPrefix() string {
	return e.branchPrefix
}

// Execute runs one sync attempt for the fork owner/repo against the compared
// upstream. A fork that is not behind is left untouched.
func (e *Engine) Execute(ctx context.Context, owner, repo string, upstream UpstreamRef, cfg *repoconfig.Config, cmp *Comparison) (*Outcome, error) {
	if cmp.BehindBy == 0 {
		return &Outcome{Success: true, Message: "Fork is already up to date"}, nil
	}

	if cfg.CreatePullRequest {
		return e.executePullRequest(ctx, owner, repo, upstream, cfg, cmp)
	}
	return e.executeDirectPush(ctx, owner, repo, upstream, cmp)
}

// executePullRequest creates a branch at the upstream head and opens a pull
// request from it into the base branch. The branch name embeds a timestamp
// so concurrent or repeated attempts never collide.
func (e *Engine) executePullRequest(ctx context.Context, owner, repo string, upstream UpstreamRef, cfg *repoconfig.Config, cmp *Comparison) (*Outcome, error) {
	sha, err := e.client.GetBranchHead(ctx, upstream.Owner, upstream.Repo, cmp.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("pull request sync: %w", err)
	}

	branch := fmt.Sprintf("%s-%d", e.branchPrefix, e.now().UnixMilli())
	if err := e.client.CreateBranch(ctx, owner, repo, branch, sha); err != nil {
		return nil, fmt.Errorf("pull request sync: %w", err)
	}

	vars := templateVars(upstream, cmp)
	pr, err := e.client.CreatePullRequest(ctx, owner, repo, platform.NewPullRequest{
		Title: Render(cfg.PullRequestTitle, vars),
		Body:  Render(cfg.PullRequestBody, vars),
		Head:  branch,
		Base:  cmp.BaseBranch,
	})
	if err != nil {
		// The sync branch is useless without its pull request.
		if delErr := e.client.DeleteBranch(ctx, owner, repo, branch); delErr != nil {
			return nil, fmt.Errorf("pull request sync: %w (cleanup of %s failed: %v)", err, branch, delErr)
		}
		return nil, fmt.Errorf("pull request sync: %w", err)
	}

	return &Outcome{
		Success:       true,
		Message:       fmt.Sprintf("Opened pull request #%d to sync %d commits from %s", pr.Number, cmp.BehindBy, upstream),
		CommitsSynced: cmp.BehindBy,
		PullRequest:   pr.Number,
	}, nil
}

// executeDirectPush points the fork's base branch at the upstream head.
// create_pr: false explicitly accepts losing fork-only commits on that
// branch; the update is non-fast-forward on purpose.
func (e *Engine) executeDirectPush(ctx context.Context, owner, repo string, upstream UpstreamRef, cmp *Comparison) (*Outcome, error) {
	sha, err := e.client.GetBranchHead(ctx, upstream.Owner, upstream.Repo, cmp.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("direct push sync: %w", err)
	}

	if err := e.client.ForceUpdateBranch(ctx, owner, repo, cmp.BaseBranch, sha); err != nil {
		return nil, fmt.Errorf("direct push sync: %w", err)
	}

	return &Outcome{
		Success:       true,
		Message:       fmt.Sprintf("Synced %d commits from %s by updating %s", cmp.BehindBy, upstream, cmp.BaseBranch),
		CommitsSynced: cmp.BehindBy,
	}, nil
}
