package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/driftsync/driftsync/internal/config"
	"github.com/driftsync/driftsync/internal/event"
	"github.com/driftsync/driftsync/internal/logger"
	"github.com/driftsync/driftsync/internal/metrics"
	"github.com/driftsync/driftsync/internal/webhook"
)

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status string         `json:"status"`
	Checks map[string]any `json:"checks"`
}

// Server is the HTTP server for driftsync.
type Server struct {
	cfg          *config.Config
	log          *slog.Logger
	router       chi.Router
	eventRouter  *event.Router
	httpServer   *httpServer
	httpServerMu sync.RWMutex  // protects httpServer pointer
	ready        chan struct{} // closed when server is ready to accept connections
	dispatches   sync.WaitGroup
}

// New creates a new Server. The event router may be nil, in which case
// webhook deliveries are acknowledged but dropped.
func New(cfg *config.Config, eventRouter *event.Router, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:         cfg,
		log:         log,
		eventRouter: eventRouter,
		ready:       make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

// Ready returns a channel that is closed when the server is ready to accept connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// routes sets up the HTTP routes.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	// GitHub webhook, only when a secret is configured
	if s.cfg.GitHub.WebhookSecret != "" {
		githubHandler := webhook.NewGitHubHandler(
			s.cfg.GitHub.WebhookSecret,
			s.handleGitHubEvent,
		)
		r.Method(http.MethodPost, "/webhook/github", githubHandler)
	}

	return r
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>driftsync</title></head>
<body>
  <h1>driftsync</h1>
  <p>Keeps forks in sync with their upstream repositories.</p>
  <p>Add <code>.github/sync.yml</code> to a fork to enable automatic syncing.</p>
</body>
</html>
`

// handleIndex serves a small landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

// handleHealth responds with server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tokenSet := s.cfg.GitHub.Token != ""

	checks := map[string]any{
		"github_token": tokenSet,
		"webhook":      s.cfg.GitHub.WebhookSecret != "",
	}

	status := "ok"
	if !tokenSet {
		status = "degraded"
	}

	health := HealthResponse{
		Status: status,
		Checks: checks,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleMetrics responds with current operational metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := metrics.Get()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// handleGitHubEvent normalizes a verified webhook delivery and hands it to
// the event router on a tracked goroutine, so GitHub gets its response
// before any sync work starts.
func (s *Server) handleGitHubEvent(ghEvent *webhook.GitHubEvent) error {
	metrics.WebhookReceived()
	s.log.Debug("received GitHub event",
		"event", ghEvent.EventType,
		"action", ghEvent.Action,
		"delivery_id", ghEvent.DeliveryID,
	)

	if s.eventRouter == nil {
		return nil
	}

	normalized, err := event.NormalizeGitHubEvent(ghEvent)
	if err != nil {
		if errors.Is(err, event.ErrIgnored) {
			s.log.Debug("ignoring event", "event", ghEvent.EventType, "action", ghEvent.Action)
			return nil
		}
		s.log.Error("failed to normalize GitHub event", "event", ghEvent.EventType, "error", err)
		return nil // Don't fail the webhook, just log
	}

	metrics.EventRouted()

	ctx := logger.WithDeliveryID(context.Background(), normalized.DeliveryID)
	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()
		if err := s.eventRouter.Route(ctx, normalized); err != nil {
			s.log.Error("event handler failed",
				"event", string(normalized.Type),
				"repo", normalized.Key(),
				"error", err,
			)
		}
	}()

	return nil
}
