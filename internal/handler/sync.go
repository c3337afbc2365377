package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/driftsync/driftsync/internal/audit"
	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/event"
	"github.com/driftsync/driftsync/internal/metrics"
	"github.com/driftsync/driftsync/internal/platform"
	"github.com/driftsync/driftsync/internal/repoconfig"
	"github.com/driftsync/driftsync/internal/sync"
)

// SyncHandler handles normalized webhook events by running sync attempts
// against the repositories they concern.
type SyncHandler struct {
	client     platform.Client
	loader     *repoconfig.Loader
	comparator *sync.Comparator
	engine     *sync.Engine
	locks      *event.Locks
	trail      *audit.Trail
	log        *slog.Logger

	welcomeIssue bool
	maxParallel  int
}

// NewSyncHandler creates a new sync handler. The locks must be the same
// instance the event router uses, so installation fan-out and routed events
// contend for the same per-repository leases.
func NewSyncHandler(client platform.Client, loader *repoconfig.Loader, comparator *sync.Comparator, engine *sync.Engine, locks *event.Locks, trail *audit.Trail, cfg *config.Config, log *slog.Logger) *SyncHandler {
	if locks == nil {
		locks = event.NewLocks()
	}
	if log == nil {
		log = slog.Default()
	}
	maxParallel := cfg.Sync.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &SyncHandler{
		client:       client,
		loader:       loader,
		comparator:   comparator,
		engine:       engine,
		locks:        locks,
		trail:        trail,
		log:          log,
		welcomeIssue: cfg.Sync.WelcomeIssue,
		maxParallel:  maxParallel,
	}
}

// HandleEvent processes a normalized webhook event.
func (h *SyncHandler) HandleEvent(ctx context.Context, evt *event.Event) error {
	switch evt.Type {
	case event.TypePush:
		return h.handlePush(ctx, evt)
	case event.TypePullRequestOpened:
		return h.handlePullRequest(ctx, evt)
	case event.TypeFork:
		return h.handleFork(ctx, evt)
	case event.TypeInstallation:
		return h.handleInstallation(ctx, evt)
	default:
		return nil
	}
}

// attempt identifies one sync attempt against a single repository.
type attempt struct {
	Owner      string
	Repo       string
	Trigger    string
	DeliveryID string

	// PushedBranch gates push events to configured branches. Empty means
	// no push gate applies.
	PushedBranch string
}

func (h *SyncHandler) handlePush(ctx context.Context, evt *event.Event) error {
	if !evt.IsFork {
		h.log.Debug("push to non-fork repository, skipping", "repo", evt.Key())
		return nil
	}
	return h.attemptSync(ctx, attempt{
		Owner:        evt.RepoOwner,
		Repo:         evt.RepoName,
		Trigger:      string(evt.Type),
		DeliveryID:   evt.DeliveryID,
		PushedBranch: evt.Branch,
	})
}

func (h *SyncHandler) handlePullRequest(ctx context.Context, evt *event.Event) error {
	if !evt.IsFork {
		h.log.Debug("pull request on non-fork repository, skipping", "repo", evt.Key())
		return nil
	}
	// Pull requests opened by a sync run must not trigger another one.
	if strings.HasPrefix(evt.HeadBranch, h.engine.BranchPrefix()) {
		h.log.Debug("ignoring sync pull request", "repo", evt.Key(), "head", evt.HeadBranch)
		return nil
	}
	return h.attemptSync(ctx, attempt{
		Owner:      evt.RepoOwner,
		Repo:       evt.RepoName,
		Trigger:    string(evt.Type),
		DeliveryID: evt.DeliveryID,
	})
}

// handleFork greets a fresh fork. Forks inherit files from their parent, so
// a sync config may already be present; when it is, run a sync attempt right
// away, otherwise open a welcome issue explaining how to enable syncing.
func (h *SyncHandler) handleFork(ctx context.Context, evt *event.Event) error {
	doc, err := h.loader.Load(ctx, evt.RepoOwner, evt.RepoName)
	if err != nil {
		return fmt.Errorf("loading config for new fork %s: %w", evt.Key(), err)
	}

	if doc != nil {
		return h.attemptSync(ctx, attempt{
			Owner:      evt.RepoOwner,
			Repo:       evt.RepoName,
			Trigger:    string(evt.Type),
			DeliveryID: evt.DeliveryID,
		})
	}

	if !h.welcomeIssue {
		return nil
	}

	number, err := h.client.CreateIssue(ctx, evt.RepoOwner, evt.RepoName, welcomeTitle, welcomeBody(h.loader.Path()))
	if err != nil {
		return fmt.Errorf("opening welcome issue on %s: %w", evt.Key(), err)
	}

	metrics.WelcomeIssueOpened()
	h.log.Info("opened welcome issue", "repo", evt.Key(), "issue", number)
	return nil
}

// handleInstallation fans out initial sync attempts over the repositories an
// installation added. Individual repository failures are logged and never
// abort the rest of the fan-out.
func (h *SyncHandler) handleInstallation(ctx context.Context, evt *event.Event) error {
	if len(evt.AddedRepos) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(h.maxParallel)

	for _, repo := range evt.AddedRepos {
		repo := repo
		g.Go(func() error {
			h.syncInstalledRepo(ctx, evt, repo)
			return nil
		})
	}

	return g.Wait()
}

func (h *SyncHandler) syncInstalledRepo(ctx context.Context, evt *event.Event, repo event.Repo) {
	key := repo.Owner + "/" + repo.Name
	log := h.log.With("repo", key, "trigger", string(evt.Type))

	release, ok := h.locks.TryAcquire(key)
	if !ok {
		log.Info("sync already in flight, skipping")
		return
	}
	defer release()

	meta, err := h.client.GetRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		log.Error("checking repository failed", "error", err)
		return
	}
	if !meta.Fork {
		log.Debug("not a fork, skipping")
		return
	}

	if err := h.attemptSync(ctx, attempt{
		Owner:      repo.Owner,
		Repo:       repo.Name,
		Trigger:    string(evt.Type),
		DeliveryID: evt.DeliveryID,
	}); err != nil {
		log.Error("initial sync failed", "error", err)
	}
}

// attemptSync runs one complete sync attempt: load the repository config,
// validate it, gate on its settings, compare against upstream and execute.
// Each attempt fetches the config fresh so changes take effect immediately.
func (h *SyncHandler) attemptSync(ctx context.Context, a attempt) error {
	metrics.SyncAttempted()

	log := h.log.With("repo", a.Owner+"/"+a.Repo, "trigger", a.Trigger)
	if a.DeliveryID != "" {
		log = log.With("delivery_id", a.DeliveryID)
	}

	doc, err := h.loader.Load(ctx, a.Owner, a.Repo)
	if err != nil {
		return h.fail(a, "", "", err, log)
	}
	if doc == nil {
		metrics.SyncSkipped()
		log.Debug("no sync config, skipping")
		return nil
	}

	if res := doc.Validate(); !res.Valid {
		metrics.SyncSkipped()
		problems := strings.Join(res.Errors, "; ")
		log.Warn("sync config invalid, skipping", "errors", problems)
		h.record(audit.Record{
			DeliveryID: a.DeliveryID,
			Trigger:    a.Trigger,
			RepoOwner:  a.Owner,
			RepoName:   a.Repo,
			Result:     audit.ResultSkipped,
			Message:    "invalid config: " + problems,
		}, log)
		return nil
	}

	cfg, err := doc.Config()
	if err != nil {
		return h.fail(a, "", "", err, log)
	}

	if !cfg.AutoSync {
		metrics.SyncSkipped()
		log.Debug("auto_sync disabled, skipping")
		return nil
	}

	if a.PushedBranch != "" && !cfg.SyncsBranch(a.PushedBranch) {
		metrics.SyncSkipped()
		log.Debug("pushed branch not configured for sync", "branch", a.PushedBranch)
		return nil
	}

	upstream, err := sync.ParseUpstream(cfg.Upstream)
	if err != nil {
		return h.fail(a, cfg.Upstream, "", err, log)
	}

	cmp, err := h.comparator.Compare(ctx, a.Owner, a.Repo, upstream)
	if err != nil {
		return h.fail(a, cfg.Upstream, "", err, log)
	}

	if !cfg.SyncsBranch(cmp.BaseBranch) {
		metrics.SyncSkipped()
		log.Debug("upstream default branch not configured for sync", "branch", cmp.BaseBranch)
		return nil
	}

	outcome, err := h.engine.Execute(ctx, a.Owner, a.Repo, upstream, cfg, cmp)
	if err != nil {
		return h.fail(a, cfg.Upstream, cmp.BaseBranch, err, log)
	}

	metrics.SyncCompleted()
	result := audit.ResultUpToDate
	if outcome.CommitsSynced > 0 {
		result = audit.ResultSynced
		if outcome.PullRequest > 0 {
			metrics.PullRequestOpened()
		} else {
			metrics.BranchPushed()
		}
	}

	log.Info("sync finished", "result", result, "message", outcome.Message, "commits", outcome.CommitsSynced)
	h.record(audit.Record{
		DeliveryID:    a.DeliveryID,
		Trigger:       a.Trigger,
		RepoOwner:     a.Owner,
		RepoName:      a.Repo,
		Upstream:      cfg.Upstream,
		Branch:        cmp.BaseBranch,
		Result:        result,
		Message:       outcome.Message,
		CommitsSynced: outcome.CommitsSynced,
		PullRequest:   outcome.PullRequest,
	}, log)
	return nil
}

// fail records a failed attempt and hands the error back to the routing
// boundary, which logs it and moves on.
func (h *SyncHandler) fail(a attempt, upstream, branch string, err error, log *slog.Logger) error {
	metrics.SyncFailed()
	h.record(audit.Record{
		DeliveryID: a.DeliveryID,
		Trigger:    a.Trigger,
		RepoOwner:  a.Owner,
		RepoName:   a.Repo,
		Upstream:   upstream,
		Branch:     branch,
		Result:     audit.ResultFailed,
		Error:      err.Error(),
	}, log)
	return err
}

func (h *SyncHandler) record(rec audit.Record, log *slog.Logger) {
	if err := h.trail.Write(rec); err != nil {
		log.Error("writing audit record failed", "error", err)
	}
}

const welcomeTitle = "Keep this fork in sync with its upstream"

func welcomeBody(path string) string {
	return "Thanks for forking! This repository can be kept in sync with its upstream automatically.\n\n" +
		"Create `" + path + "` on your default branch to enable syncing:\n\n" +
		"```yaml\n" +
		"auto_sync: true\n" +
		"upstream: owner/repo\n" +
		"```\n\n" +
		"Configured branches are kept up to date with upstream, and incoming commits are proposed " +
		"as a pull request. Set `create_pr: false` to update branches directly instead.\n"
}
