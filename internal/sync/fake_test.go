package sync

import (
	"context"
	"fmt"

	"github.com/driftsync/driftsync/internal/platform"
)

// fakePlatform implements platform.Client with canned responses and records
// every mutating call.
type fakePlatform struct {
	repos      map[string]*platform.Repository
	comparison *platform.BranchComparison
	compareErr error
	heads      map[string]string
	headErr    error

	createBranchErr error
	updateErr       error
	deleteErr       error
	prErr           error
	prNumber        int

	compares        []string
	createdBranches []string
	updatedBranches []string
	deletedBranches []string
	pullRequests    []platform.NewPullRequest
	issues          []string
}

func (f *fakePlatform) GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	return nil, platform.ErrNotFound
}

func (f *fakePlatform) GetRepository(ctx context.Context, owner, repo string) (*platform.Repository, error) {
	r, ok := f.repos[owner+"/"+repo]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return r, nil
}

func (f *fakePlatform) CompareBranches(ctx context.Context, owner, repo, base, headOwner, headBranch string) (*platform.BranchComparison, error) {
	f.compares = append(f.compares, fmt.Sprintf("%s/%s %s...%s:%s", owner, repo, base, headOwner, headBranch))
	if f.compareErr != nil {
		return nil, f.compareErr
	}
	return f.comparison, nil
}

func (f *fakePlatform) GetBranchHead(ctx context.Context, owner, repo, branch string) (string, error) {
	if f.headErr != nil {
		return "", f.headErr
	}
	sha, ok := f.heads[owner+"/"+repo+"@"+branch]
	if !ok {
		return "", platform.ErrNotFound
	}
	return sha, nil
}

func (f *fakePlatform) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	if f.createBranchErr != nil {
		return f.createBranchErr
	}
	f.createdBranches = append(f.createdBranches, fmt.Sprintf("%s/%s %s@%s", owner, repo, branch, sha))
	return nil
}

func (f *fakePlatform) ForceUpdateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedBranches = append(f.updatedBranches, fmt.Sprintf("%s/%s %s@%s", owner, repo, branch, sha))
	return nil
}

func (f *fakePlatform) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedBranches = append(f.deletedBranches, fmt.Sprintf("%s/%s %s", owner, repo, branch))
	return nil
}

func (f *fakePlatform) CreatePullRequest(ctx context.Context, owner, repo string, pr platform.NewPullRequest) (*platform.PullRequest, error) {
	if f.prErr != nil {
		return nil, f.prErr
	}
	f.pullRequests = append(f.pullRequests, pr)
	number := f.prNumber
	if number == 0 {
		number = 1
	}
	return &platform.PullRequest{
		Number: number,
		URL:    fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number),
	}, nil
}

func (f *fakePlatform) CreateIssue(ctx context.Context, owner, repo, title, body string) (int, error) {
	f.issues = append(f.issues, fmt.Sprintf("%s/%s %s", owner, repo, title))
	return len(f.issues), nil
}

// mutations counts every recorded remote call that changes state.
func (f *fakePlatform) mutations() int {
	return len(f.createdBranches) + len(f.updatedBranches) + len(f.deletedBranches) +
		len(f.pullRequests) + len(f.issues)
}
