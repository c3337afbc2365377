package platform

// Repository represents a hosted repository.
type Repository struct {
	ID            int
	Name          string
	FullName      string // owner/repo
	Owner         string
	DefaultBranch string
	Fork          bool
	Private       bool
}

// Commit is a single commit as reported by a branch comparison.
type Commit struct {
	SHA     string
	Message string
}

// BranchComparison is the platform's view of how head relates to base.
// AheadBy counts commits head has that base lacks; BehindBy the reverse.
type BranchComparison struct {
	AheadBy      int
	BehindBy     int
	Status       string // identical, ahead, behind, diverged
	TotalCommits int
	Commits      []Commit
}

// NewPullRequest carries the fields needed to open a pull request.
type NewPullRequest struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// PullRequest represents an opened pull request.
type PullRequest struct {
	Number int
	URL    string
}
