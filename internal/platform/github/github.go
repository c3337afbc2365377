package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/driftsync/driftsync/internal/platform"
	"github.com/google/go-github/v60/github"
)

// GitHubClient implements platform.Client for GitHub.
type GitHubClient struct {
	client *github.Client
	token  string
}

// Option configures the GitHub client.
type Option func(*GitHubClient)

// WithBaseURL sets a custom base URL (for testing or GitHub Enterprise).
func WithBaseURL(url string) Option {
	return func(c *GitHubClient) {
		c.client.BaseURL, _ = c.client.BaseURL.Parse(url + "/")
	}
}

// New creates a new GitHub client.
func New(token string, opts ...Option) *GitHubClient {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}
	client := github.NewClient(httpClient)

	c := &GitHubClient{
		client: client,
		token:  token,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// tokenTransport adds authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// isNotFound reports whether err is a GitHub 404 response.
func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

// GetFileContent fetches the raw content of a file at the repository's
// default branch. A missing path maps to platform.ErrNotFound.
func (c *GitHubClient) GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	file, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, platform.ErrNotFound
		}
		return nil, fmt.Errorf("fetching file content: %w", err)
	}
	if file == nil {
		// The path resolved to a directory listing.
		return nil, platform.ErrNotFound
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding file content: %w", err)
	}
	return []byte(content), nil
}

// GetRepository fetches repository metadata.
func (c *GitHubClient) GetRepository(ctx context.Context, owner, repo string) (*platform.Repository, error) {
	r, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if isNotFound(err) {
			return nil, platform.ErrNotFound
		}
		return nil, fmt.Errorf("fetching repository: %w", err)
	}

	return &platform.Repository{
		ID:            int(r.GetID()),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Owner:         r.GetOwner().GetLogin(),
		DefaultBranch: r.GetDefaultBranch(),
		Fork:          r.GetFork(),
		Private:       r.GetPrivate(),
	}, nil
}

// CompareBranches compares base against headOwner:headBranch. GitHub resolves
// the head across the fork network, so headOwner may differ from owner.
func (c *GitHubClient) CompareBranches(ctx context.Context, owner, repo, base, headOwner, headBranch string) (*platform.BranchComparison, error) {
	head := fmt.Sprintf("%s:%s", headOwner, headBranch)
	cmp, _, err := c.client.Repositories.CompareCommits(ctx, owner, repo, base, head, nil)
	if err != nil {
		return nil, fmt.Errorf("comparing %s...%s: %w", base, head, err)
	}

	commits := make([]platform.Commit, len(cmp.Commits))
	for i, rc := range cmp.Commits {
		commits[i] = platform.Commit{
			SHA:     rc.GetSHA(),
			Message: rc.GetCommit().GetMessage(),
		}
	}

	return &platform.BranchComparison{
		AheadBy:      cmp.GetAheadBy(),
		BehindBy:     cmp.GetBehindBy(),
		Status:       cmp.GetStatus(),
		TotalCommits: cmp.GetTotalCommits(),
		Commits:      commits,
	}, nil
}

// GetBranchHead resolves the commit SHA a branch currently points at.
func (c *GitHubClient) GetBranchHead(ctx context.Context, owner, repo, branch string) (string, error) {
	ref, _, err := c.client.Git.GetRef(ctx, owner, repo, "refs/heads/"+branch)
	if err != nil {
		if isNotFound(err) {
			return "", platform.ErrNotFound
		}
		return "", fmt.Errorf("resolving head of %s: %w", branch, err)
	}
	return ref.GetObject().GetSHA(), nil
}

// CreateBranch creates a new branch pointing at the given commit SHA.
func (c *GitHubClient) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	_, _, err := c.client.Git.CreateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	})
	if err != nil {
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return nil
}

// ForceUpdateBranch moves an existing branch to the given commit SHA even
// when the move is not a fast-forward.
func (c *GitHubClient) ForceUpdateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	_, _, err := c.client.Git.UpdateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	}, true)
	if err != nil {
		return fmt.Errorf("updating branch %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch removes a branch.
func (c *GitHubClient) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	_, err := c.client.Git.DeleteRef(ctx, owner, repo, "refs/heads/"+branch)
	if err != nil {
		return fmt.Errorf("deleting branch %s: %w", branch, err)
	}
	return nil
}

// CreatePullRequest opens a pull request.
func (c *GitHubClient) CreatePullRequest(ctx context.Context, owner, repo string, pr platform.NewPullRequest) (*platform.PullRequest, error) {
	created, _, err := c.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(pr.Title),
		Body:  github.String(pr.Body),
		Head:  github.String(pr.Head),
		Base:  github.String(pr.Base),
	})
	if err != nil {
		return nil, fmt.Errorf("creating pull request: %w", err)
	}

	return &platform.PullRequest{
		Number: created.GetNumber(),
		URL:    created.GetHTMLURL(),
	}, nil
}

// CreateIssue opens an issue and returns its number.
func (c *GitHubClient) CreateIssue(ctx context.Context, owner, repo, title, body string) (int, error) {
	issue, _, err := c.client.Issues.Create(ctx, owner, repo, &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	})
	if err != nil {
		return 0, fmt.Errorf("creating issue: %w", err)
	}
	return issue.GetNumber(), nil
}
