package cli

import (
	"context"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/internal/action"
	"github.com/driftsync/driftsync/internal/platform"
	"github.com/driftsync/driftsync/internal/platform/github"
)

// NewSyncCommand creates the sync command, which runs one sync attempt as a
// GitHub Action step.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync attempt as a GitHub Action step",
		Long: `Run a single synchronization attempt for the repository the
workflow runs in, reading inputs and context from the GitHub Actions
environment and reporting results as step outputs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a := githubactions.New()
			runner := action.NewRunner(a, newGitHubClient)
			if err := runner.Run(ctx); err != nil {
				a.Errorf("sync failed: %v", err)
				return err
			}
			return nil
		},
	}
}

// newGitHubClient builds the platform client for action runs. The public
// API URL needs no override; anything else is a GitHub Enterprise host.
func newGitHubClient(token, apiURL string) platform.Client {
	if apiURL != "" && apiURL != "https://api.github.com" {
		return github.New(token, github.WithBaseURL(apiURL))
	}
	return github.New(token)
}
