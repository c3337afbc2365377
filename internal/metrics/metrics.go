package metrics

import (
	"sync/atomic"
)

// Metrics tracks operational counters for the sync service.
type Metrics struct {
	WebhooksReceived    uint64 `json:"webhooks_received"`
	EventsRouted        uint64 `json:"events_routed"`
	SyncsAttempted      uint64 `json:"syncs_attempted"`
	SyncsCompleted      uint64 `json:"syncs_completed"`
	SyncsSkipped        uint64 `json:"syncs_skipped"`
	SyncsFailed         uint64 `json:"syncs_failed"`
	PullRequestsOpened  uint64 `json:"pull_requests_opened"`
	BranchesPushed      uint64 `json:"branches_pushed"`
	WelcomeIssuesOpened uint64 `json:"welcome_issues_opened"`
}

var global = &Metrics{}

// WebhookReceived increments the count of webhook deliveries received.
func WebhookReceived() { atomic.AddUint64(&global.WebhooksReceived, 1) }

// EventRouted increments the count of events accepted by the router.
func EventRouted() { atomic.AddUint64(&global.EventsRouted, 1) }

// SyncAttempted increments the count of sync attempts started.
func SyncAttempted() { atomic.AddUint64(&global.SyncsAttempted, 1) }

// SyncCompleted increments the count of sync attempts that synced commits.
func SyncCompleted() { atomic.AddUint64(&global.SyncsCompleted, 1) }

// SyncSkipped increments the count of attempts that ended without action.
func SyncSkipped() { atomic.AddUint64(&global.SyncsSkipped, 1) }

// SyncFailed increments the count of attempts that errored.
func SyncFailed() { atomic.AddUint64(&global.SyncsFailed, 1) }

// PullRequestOpened increments the count of sync pull requests opened.
func PullRequestOpened() { atomic.AddUint64(&global.PullRequestsOpened, 1) }

// BranchPushed increments the count of branches force-updated in place.
func BranchPushed() { atomic.AddUint64(&global.BranchesPushed, 1) }

// WelcomeIssueOpened increments the count of welcome issues opened on forks.
func WelcomeIssueOpened() { atomic.AddUint64(&global.WelcomeIssuesOpened, 1) }

// Get returns a snapshot of the current metrics.
func Get() Metrics {
	return Metrics{
		WebhooksReceived:    atomic.LoadUint64(&global.WebhooksReceived),
		EventsRouted:        atomic.LoadUint64(&global.EventsRouted),
		SyncsAttempted:      atomic.LoadUint64(&global.SyncsAttempted),
		SyncsCompleted:      atomic.LoadUint64(&global.SyncsCompleted),
		SyncsSkipped:        atomic.LoadUint64(&global.SyncsSkipped),
		SyncsFailed:         atomic.LoadUint64(&global.SyncsFailed),
		PullRequestsOpened:  atomic.LoadUint64(&global.PullRequestsOpened),
		BranchesPushed:      atomic.LoadUint64(&global.BranchesPushed),
		WelcomeIssuesOpened: atomic.LoadUint64(&global.WelcomeIssuesOpened),
	}
}

// Reset resets all metrics to zero (useful for testing).
func Reset() {
	atomic.StoreUint64(&global.WebhooksReceived, 0)
	atomic.StoreUint64(&global.EventsRouted, 0)
	atomic.StoreUint64(&global.SyncsAttempted, 0)
	atomic.StoreUint64(&global.SyncsCompleted, 0)
	atomic.StoreUint64(&global.SyncsSkipped, 0)
	atomic.StoreUint64(&global.SyncsFailed, 0)
	atomic.StoreUint64(&global.PullRequestsOpened, 0)
	atomic.StoreUint64(&global.BranchesPushed, 0)
	atomic.StoreUint64(&global.WelcomeIssuesOpened, 0)
}
