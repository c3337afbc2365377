package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/driftsync/driftsync/internal/config"
)

// Handler processes a normalized event.
type Handler func(ctx context.Context, event *Event) error

// Router dispatches normalized events to the handler. Each dispatch runs
// inside a scoped boundary: panics are recovered and converted to errors,
// and a per-repository lease keeps concurrent attempts for one repository
// from overlapping. One event's failure never reaches another's.
type Router struct {
	cfg     *config.Config
	handler Handler
	locks   *Locks
	log     *slog.Logger
}

// NewRouter creates a new event router. The locks table is shared with the
// handler layer so installation fan-outs lease the same repositories.
func NewRouter(cfg *config.Config, handler Handler, locks *Locks, log *slog.Logger) *Router {
	if locks == nil {
		locks = NewLocks()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{cfg: cfg, handler: handler, locks: locks, log: log}
}

// Route processes an event through the routing pipeline. Handler errors
// propagate to the caller, which logs and continues; a panic surfaces as an
// error instead of unwinding into the host.
func (r *Router) Route(ctx context.Context, event *Event) (err error) {
	if !r.isEventEnabled(event.Type) {
		r.log.Debug("event type disabled", "type", string(event.Type))
		return nil
	}

	// Installation events fan out to many repositories; the handler leases
	// each one individually.
	if event.Type != TypeInstallation {
		release, ok := r.locks.TryAcquire(event.Key())
		if !ok {
			r.log.Info("sync in progress, skipping event",
				"repo", event.Key(),
				"type", string(event.Type),
				"delivery_id", event.DeliveryID)
			return nil
		}
		defer release()
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("event handler panic: %v", rec)
			r.log.Error("event handler panicked",
				"repo", event.Key(),
				"type", string(event.Type),
				"delivery_id", event.DeliveryID,
				"panic", rec)
		}
	}()

	return r.handler(ctx, event)
}

func (r *Router) isEventEnabled(t Type) bool {
	switch t {
	case TypePush:
		return r.cfg.Events.Push
	case TypeFork:
		return r.cfg.Events.Fork
	case TypePullRequestOpened:
		return r.cfg.Events.PullRequest
	case TypeInstallation:
		return r.cfg.Events.Installation
	default:
		return false
	}
}
