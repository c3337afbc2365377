package sync

import (
	"fmt"
	"strings"
)

// Comparison status values, seen from the fork's side: a fork that is
// "behind" is missing upstream commits, one that is "ahead" carries commits
// upstream lacks.
const (
	StatusIdentical = "identical"
	StatusAhead     = "ahead"
	StatusBehind    = "behind"
	StatusDiverged  = "diverged"
)

// Commit is a single upstream commit a fork is missing.
type Commit struct {
	SHA     string
	Message string
}

// Comparison captures how a fork branch relates to its upstream counterpart
// at one point in time. It lives for a single sync attempt and is never
// persisted.
type Comparison struct {
	BehindBy   int
	AheadBy    int
	Status     string
	Commits    []Commit
	BaseBranch string
}

// Outcome is the result of one sync attempt.
type Outcome struct {
	Success       bool
	Message       string
	CommitsSynced int
	PullRequest   int // pull request number, 0 when none was opened
}

// UpstreamRef is a parsed owner/repo pair naming the upstream repository.
type UpstreamRef struct {
	Owner string
	Repo  string
}

// String renders the pair as owner/repo.
func (u UpstreamRef) String() string {
	return u.Owner + "/" + u.Repo
}

// ParseUpstream splits an owner/repo string into an UpstreamRef.
func ParseUpstream(s string) (UpstreamRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return UpstreamRef{}, fmt.Errorf("upstream %q is not in owner/repo format", s)
	}
	return UpstreamRef{Owner: parts[0], Repo: parts[1]}, nil
}
