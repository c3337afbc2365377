package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/internal/audit"
	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/event"
	"github.com/driftsync/driftsync/internal/handler"
	"github.com/driftsync/driftsync/internal/logger"
	"github.com/driftsync/driftsync/internal/platform/github"
	"github.com/driftsync/driftsync/internal/repoconfig"
	"github.com/driftsync/driftsync/internal/server"
	"github.com/driftsync/driftsync/internal/sync"
)

// auditCleanupInterval is how often expired audit files are removed.
const auditCleanupInterval = 24 * time.Hour

// NewServeCommand creates the serve command, which runs the webhook server.
func NewServeCommand() *cobra.Command {
	var configPath string
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Long: `Start the HTTP server that receives GitHub webhooks and keeps
installed forks in sync with their upstream repositories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, envFile)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to .env file (optional)")

	return cmd
}

func runServe(cmd *cobra.Command, configPath, envFile string) error {
	// Load .env from an explicit path, or from the default locations.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		godotenv.Load(".env")
		godotenv.Load("/etc/driftsync/driftsync.env")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		// A missing file at the default location is fine, the environment
		// takes over. An explicitly named file must exist.
		if cmd.Flags().Changed("config") || !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = config.DefaultConfig()
	}
	applyEnvOverrides(cfg)

	log := logger.New(cfg.Logging)

	var opts []github.Option
	if cfg.GitHub.APIURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GitHub.APIURL))
	}
	client := github.New(cfg.GitHub.Token, opts...)

	// The router and handler share one lock table so installation fan-outs
	// lease the same repositories webhook events do.
	locks := event.NewLocks()

	trail := audit.NewTrail(cfg.Audit.Dir)
	if trail.Enabled() && cfg.Audit.RetentionDays > 0 {
		cleaner := audit.NewCleaner(cfg.Audit.Dir, cfg.Audit.RetentionDays)
		scheduler := audit.NewScheduler(cleaner, auditCleanupInterval, log)
		scheduler.Start()
		defer scheduler.Stop()
	}

	loader := repoconfig.NewLoader(client, cfg.Sync.ConfigPath)
	comparator := sync.NewComparator(client)
	engine := sync.NewEngine(client, cfg.Sync.BranchPrefix)

	syncHandler := handler.NewSyncHandler(client, loader, comparator, engine, locks, trail, cfg, log)
	router := event.NewRouter(cfg, syncHandler.HandleEvent, locks, log)

	srv := server.New(cfg, router, log)
	return srv.ListenAndServeWithShutdown()
}

// applyEnvOverrides fills in settings from the environment when the config
// file did not provide them.
func applyEnvOverrides(cfg *config.Config) {
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHub.WebhookSecret == "" {
		cfg.GitHub.WebhookSecret = os.Getenv("GITHUB_WEBHOOK_SECRET")
	}
	if cfg.Audit.Dir == "" {
		cfg.Audit.Dir = os.Getenv("DRIFTSYNC_AUDIT_DIR")
	}
}
