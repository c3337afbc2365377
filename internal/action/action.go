// Package action runs a single sync attempt inside a GitHub Actions
// workflow. It is the workflow-mode counterpart of the webhook handler:
// inputs and the workflow context replace webhook payloads, and step
// outputs replace the audit trail.
package action

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/driftsync/driftsync/internal/platform"
	"github.com/driftsync/driftsync/internal/repoconfig"
	"github.com/driftsync/driftsync/internal/sync"
)

// ClientFactory builds a platform client from the resolved token and API
// base URL. An empty apiURL means the public GitHub API.
type ClientFactory func(token, apiURL string) platform.Client

// Runner executes one sync attempt for the repository the workflow runs in.
type Runner struct {
	action    *githubactions.Action
	newClient ClientFactory
}

// NewRunner creates a Runner reading inputs and context from a.
func NewRunner(a *githubactions.Action, factory ClientFactory) *Runner {
	return &Runner{action: a, newClient: factory}
}

// Run performs the sync attempt. The repository's sync file wins when
// present; otherwise workflow inputs synthesize the configuration. A run
// with nothing to do succeeds with synced=false. The returned error is the
// failure the workflow should surface.
func (r *Runner) Run(ctx context.Context) error {
	token := r.action.GetInput("token")
	if token == "" {
		return fmt.Errorf("the token input is required")
	}

	gctx, err := r.action.Context()
	if err != nil {
		return fmt.Errorf("reading workflow context: %w", err)
	}
	owner, repo := gctx.Repo()
	if owner == "" || repo == "" {
		return fmt.Errorf("GITHUB_REPOSITORY is not set")
	}

	apiURL := r.action.GetInput("api_url")
	if apiURL == "" {
		apiURL = gctx.APIURL
	}
	client := r.newClient(token, apiURL)

	cfg, err := r.resolveConfig(ctx, client, owner, repo)
	if err != nil {
		return err
	}
	if cfg == nil {
		r.action.Infof("no sync configuration for %s/%s, nothing to do", owner, repo)
		r.setOutputs(false, 0, 0, "no sync configuration found")
		return nil
	}
	if !cfg.AutoSync {
		r.action.Infof("auto_sync is disabled for %s/%s", owner, repo)
		r.setOutputs(false, 0, 0, "auto_sync is disabled")
		return nil
	}

	upstream, err := sync.ParseUpstream(cfg.Upstream)
	if err != nil {
		return err
	}

	cmp, err := sync.NewComparator(client).Compare(ctx, owner, repo, upstream)
	if err != nil {
		return err
	}

	if !cfg.SyncsBranch(cmp.BaseBranch) {
		msg := fmt.Sprintf("branch %s is not configured for sync", cmp.BaseBranch)
		r.action.Infof("%s", msg)
		r.setOutputs(false, 0, 0, msg)
		return nil
	}

	outcome, err := sync.NewEngine(client, "").Execute(ctx, owner, repo, upstream, cfg, cmp)
	if err != nil {
		return err
	}

	r.action.Infof("%s", outcome.Message)
	r.setOutputs(outcome.CommitsSynced > 0, outcome.CommitsSynced, outcome.PullRequest, outcome.Message)
	return nil
}

// resolveConfig loads the repository's sync file, falling back to inputs
// when the file is absent. A present but invalid file fails the run rather
// than silently falling back: the workflow owner should see the problem.
func (r *Runner) resolveConfig(ctx context.Context, client platform.Client, owner, repo string) (*repoconfig.Config, error) {
	path := r.action.GetInput("config_path")
	if path == "" {
		path = repoconfig.DefaultPath
	}

	doc, err := repoconfig.NewLoader(client, path).Load(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("loading %s from %s/%s: %w", path, owner, repo, err)
	}
	if doc != nil {
		return doc.Config()
	}
	return r.configFromInputs()
}

// configFromInputs synthesizes a sync config from workflow inputs. Returns
// nil when no upstream input is set, meaning there is nothing to sync.
func (r *Runner) configFromInputs() (*repoconfig.Config, error) {
	upstream := r.action.GetInput("upstream")
	if upstream == "" {
		return nil, nil
	}

	cfg := repoconfig.DefaultConfig()
	cfg.AutoSync = true
	cfg.Upstream = upstream

	if branches := r.action.GetInput("branch"); branches != "" {
		cfg.Branches = nil
		for _, b := range strings.Split(branches, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Branches = append(cfg.Branches, b)
			}
		}
	}

	if v := r.action.GetInput("create_pr"); v != "" {
		createPR, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("create_pr input %q is not a boolean", v)
		}
		cfg.CreatePullRequest = createPR
	}

	return cfg, nil
}

func (r *Runner) setOutputs(synced bool, commits, pullRequest int, message string) {
	r.action.SetOutput("synced", strconv.FormatBool(synced))
	r.action.SetOutput("commits_synced", strconv.Itoa(commits))
	r.action.SetOutput("pull_request_number", strconv.Itoa(pullRequest))
	r.action.SetOutput("message", message)
}
