package platform

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested resource does not exist on the
// platform, such as a missing file or repository.
var ErrNotFound = errors.New("resource not found")

// Client defines the hosting-platform operations the sync pipeline consumes.
type Client interface {
	// GetFileContent fetches the raw content of a file at the repository's
	// default branch. Returns ErrNotFound when the path does not exist.
	GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error)

	// GetRepository fetches repository metadata.
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)

	// CompareBranches compares base (a branch of owner/repo) against a head
	// branch that may live in another fork of the same network.
	CompareBranches(ctx context.Context, owner, repo, base, headOwner, headBranch string) (*BranchComparison, error)

	// GetBranchHead resolves the commit SHA a branch currently points at.
	GetBranchHead(ctx context.Context, owner, repo, branch string) (string, error)

	// CreateBranch creates a new branch pointing at the given commit SHA.
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) error

	// ForceUpdateBranch moves an existing branch to the given commit SHA,
	// allowing non-fast-forward updates.
	ForceUpdateBranch(ctx context.Context, owner, repo, branch, sha string) error

	// DeleteBranch removes a branch.
	DeleteBranch(ctx context.Context, owner, repo, branch string) error

	// CreatePullRequest opens a pull request.
	CreatePullRequest(ctx context.Context, owner, repo string, pr NewPullRequest) (*PullRequest, error)

	// CreateIssue opens an issue and returns its number.
	CreateIssue(ctx context.Context, owner, repo, title, body string) (int, error)
}
