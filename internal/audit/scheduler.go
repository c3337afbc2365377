package audit

import (
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs the Cleaner on a fixed interval.
type Scheduler struct {
	cleaner  *Cleaner
	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
	log      *slog.Logger
}

// NewScheduler creates a Scheduler that runs cleaner every interval.
func NewScheduler(cleaner *Cleaner, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cleaner: cleaner,
		ticker:  time.NewTicker(interval),
		stop:    make(chan struct{}),
		log:     log,
	}
}

// Start begins the cleanup loop. It runs one cleanup immediately and then
// on every tick until Stop is called.
func (s *Scheduler) Start() {
	go s.runCleanup()

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runCleanup()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) runCleanup() {
	deleted, err := s.cleaner.Cleanup()
	if err != nil {
		s.log.Error("audit cleanup failed", "error", err)
	} else if deleted > 0 {
		s.log.Info("removed expired audit files", "count", deleted)
	}
}

// Stop halts the cleanup loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stop)
	})
}
