package event

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locks hands out per-repository leases so only one sync attempt runs
// against a repository at a time. A busy repository is skipped, not queued.
type Locks struct {
	mu     sync.Mutex
	leases map[string]*semaphore.Weighted
}

// NewLocks creates an empty lease table.
func NewLocks() *Locks {
	return &Locks{leases: make(map[string]*semaphore.Weighted)}
}

// TryAcquire takes the lease for key without blocking. It reports whether
// the lease was acquired and returns the matching release func.
func (l *Locks) TryAcquire(key string) (func(), bool) {
	l.mu.Lock()
	sem, ok := l.leases[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.leases[key] = sem
	}
	l.mu.Unlock()

	if !sem.TryAcquire(1) {
		return nil, false
	}
	return func() { sem.Release(1) }, true
}
