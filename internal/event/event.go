package event

import (
	"time"
)

// Type represents the type of webhook event.
type Type string

const (
	TypePush              Type = "push"
	TypeFork              Type = "fork"
	TypePullRequestOpened Type = "pull_request_opened"
	TypeInstallation      Type = "installation"
)

// Repo identifies a repository by owner and name.
type Repo struct {
	Owner string
	Name  string
}

// Event represents a normalized webhook event.
type Event struct {
	// Type is the event type.
	Type Type

	// Repository the event targets. For fork events this is the new fork,
	// not the parent.
	RepoOwner string
	RepoName  string
	IsFork    bool

	// Branch the event concerns: the pushed branch for pushes, the pull
	// request base branch for pull requests.
	Branch string

	// HeadBranch is the pull request head, set for pull request events.
	HeadBranch string

	// AddedRepos lists repositories added by an installation event.
	AddedRepos []Repo

	// Actor who triggered the event.
	Actor string

	// DeliveryID is the webhook delivery identifier.
	DeliveryID string

	// Timestamp of the event.
	Timestamp time.Time

	// RawPayload is the original webhook payload.
	RawPayload []byte
}

// Key returns the repository key, used for per-repository mutual exclusion.
func (e *Event) Key() string {
	return e.RepoOwner + "/" + e.RepoName
}
