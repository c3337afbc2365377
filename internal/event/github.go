package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/driftsync/driftsync/internal/webhook"
)

// ErrIgnored marks deliveries that carry no work: event types and actions
// the pipeline does not react to.
var ErrIgnored = errors.New("event ignored")

// repoRef is a repository entry in an installation payload.
type repoRef struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// gitHubPayload represents the common GitHub webhook payload structure.
type gitHubPayload struct {
	Action  string `json:"action"`
	Ref     string `json:"ref"`
	Deleted bool   `json:"deleted"`

	PullRequest struct {
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`

	Forkee struct {
		FullName string `json:"full_name"`
		Fork     bool   `json:"fork"`
	} `json:"forkee"`

	Repository struct {
		FullName string `json:"full_name"`
		Fork     bool   `json:"fork"`
	} `json:"repository"`

	Installation struct {
		Account struct {
			Login string `json:"login"`
		} `json:"account"`
	} `json:"installation"`

	Repositories      []repoRef `json:"repositories"`
	RepositoriesAdded []repoRef `json:"repositories_added"`

	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// NormalizeGitHubEvent converts a GitHub webhook event to a normalized Event.
// Deliveries the pipeline does not act on return ErrIgnored.
func NormalizeGitHubEvent(ghEvent *webhook.GitHubEvent) (*Event, error) {
	var payload gitHubPayload
	if err := json.Unmarshal(ghEvent.RawPayload, &payload); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}

	event := &Event{
		Actor:      payload.Sender.Login,
		DeliveryID: ghEvent.DeliveryID,
		Timestamp:  time.Now(),
		RawPayload: ghEvent.RawPayload,
	}

	switch ghEvent.EventType {
	case "push":
		if payload.Deleted || !strings.HasPrefix(payload.Ref, "refs/heads/") {
			return nil, fmt.Errorf("%w: push to %s", ErrIgnored, payload.Ref)
		}
		owner, name, err := splitFullName(payload.Repository.FullName)
		if err != nil {
			return nil, err
		}
		event.Type = TypePush
		event.RepoOwner = owner
		event.RepoName = name
		event.IsFork = payload.Repository.Fork
		event.Branch = strings.TrimPrefix(payload.Ref, "refs/heads/")

	case "fork":
		// The event fires on the parent repository; the sync target is the
		// freshly created fork.
		owner, name, err := splitFullName(payload.Forkee.FullName)
		if err != nil {
			return nil, err
		}
		event.Type = TypeFork
		event.RepoOwner = owner
		event.RepoName = name
		event.IsFork = payload.Forkee.Fork

	case "pull_request":
		if payload.Action != "opened" {
			return nil, fmt.Errorf("%w: pull_request action %s", ErrIgnored, payload.Action)
		}
		owner, name, err := splitFullName(payload.Repository.FullName)
		if err != nil {
			return nil, err
		}
		event.Type = TypePullRequestOpened
		event.RepoOwner = owner
		event.RepoName = name
		event.IsFork = payload.Repository.Fork
		event.Branch = payload.PullRequest.Base.Ref
		event.HeadBranch = payload.PullRequest.Head.Ref

	case "installation":
		if payload.Action != "created" {
			return nil, fmt.Errorf("%w: installation action %s", ErrIgnored, payload.Action)
		}
		return normalizeInstallation(event, payload.Installation.Account.Login, payload.Repositories)

	case "installation_repositories":
		if payload.Action != "added" {
			return nil, fmt.Errorf("%w: installation_repositories action %s", ErrIgnored, payload.Action)
		}
		return normalizeInstallation(event, payload.Installation.Account.Login, payload.RepositoriesAdded)

	default:
		return nil, fmt.Errorf("%w: %s", ErrIgnored, ghEvent.EventType)
	}

	return event, nil
}

// normalizeInstallation fills an installation event covering added repos.
func normalizeInstallation(event *Event, account string, repos []repoRef) (*Event, error) {
	event.Type = TypeInstallation
	event.RepoOwner = account

	for _, r := range repos {
		owner, name, err := splitFullName(r.FullName)
		if err != nil {
			return nil, err
		}
		event.AddedRepos = append(event.AddedRepos, Repo{Owner: owner, Name: name})
	}

	if len(event.AddedRepos) == 0 {
		return nil, fmt.Errorf("%w: installation without repositories", ErrIgnored)
	}
	return event, nil
}

// splitFullName parses owner/repo out of a repository full_name.
func splitFullName(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository full_name: %s", fullName)
	}
	return parts[0], parts[1], nil
}
