package handler

import (
	"context"
	"fmt"
	"sync"

	"github.com/driftsync/driftsync/internal/platform"
)

// fakePlatform implements platform.Client with canned responses and records
// every call the pipeline makes. Installation fan-out calls it from several
// goroutines, so all access is guarded.
type fakePlatform struct {
	mu sync.Mutex

	files       map[string][]byte                     // "owner/repo:path"
	fileErr     error
	repos       map[string]*platform.Repository       // "owner/repo"
	comparisons map[string]*platform.BranchComparison // "owner/repo"
	compareErr  error
	heads       map[string]string // "owner/repo@branch"
	prErr       error

	contentCalls    []string
	repoCalls       []string
	compares        []string
	createdBranches []string
	updatedBranches []string
	deletedBranches []string
	pullRequests    []platform.NewPullRequest
	issues          []string
}

func (f *fakePlatform) GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentCalls = append(f.contentCalls, owner+"/"+repo+":"+path)
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	content, ok := f.files[owner+"/"+repo+":"+path]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return content, nil
}

func (f *fakePlatform) GetRepository(ctx context.Context, owner, repo string) (*platform.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repoCalls = append(f.repoCalls, owner+"/"+repo)
	r, ok := f.repos[owner+"/"+repo]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return r, nil
}

func (f *fakePlatform) CompareBranches(ctx context.Context, owner, repo, base, headOwner, headBranch string) (*platform.BranchComparison, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compares = append(f.compares, fmt.Sprintf("%s/%s %s...%s:%s", owner, repo, base, headOwner, headBranch))
	if f.compareErr != nil {
		return nil, f.compareErr
	}
	cmp, ok := f.comparisons[owner+"/"+repo]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return cmp, nil
}

func (f *fakePlatform) GetBranchHead(ctx context.Context, owner, repo, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sha, ok := f.heads[owner+"/"+repo+"@"+branch]
	if !ok {
		return "", platform.ErrNotFound
	}
	return sha, nil
}

func (f *fakePlatform) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdBranches = append(f.createdBranches, fmt.Sprintf("%s/%s %s@%s", owner, repo, branch, sha))
	return nil
}

func (f *fakePlatform) ForceUpdateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedBranches = append(f.updatedBranches, fmt.Sprintf("%s/%s %s@%s", owner, repo, branch, sha))
	return nil
}

func (f *fakePlatform) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedBranches = append(f.deletedBranches, fmt.Sprintf("%s/%s %s", owner, repo, branch))
	return nil
}

func (f *fakePlatform) CreatePullRequest(ctx context.Context, owner, repo string, pr platform.NewPullRequest) (*platform.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prErr != nil {
		return nil, f.prErr
	}
	f.pullRequests = append(f.pullRequests, pr)
	number := len(f.pullRequests)
	return &platform.PullRequest{
		Number: number,
		URL:    fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number),
	}, nil
}

func (f *fakePlatform) CreateIssue(ctx context.Context, owner, repo, title, body string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues = append(f.issues, fmt.Sprintf("%s/%s %s", owner, repo, title))
	return len(f.issues), nil
}

// mutations counts every recorded remote call that changes state.
func (f *fakePlatform) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createdBranches) + len(f.updatedBranches) + len(f.deletedBranches) +
		len(f.pullRequests) + len(f.issues)
}
