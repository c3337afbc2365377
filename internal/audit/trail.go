package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Result values for a Record.
const (
	ResultSynced   = "synced"
	ResultUpToDate = "up_to_date"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"
)

// Record captures the outcome of one sync attempt.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	DeliveryID    string    `json:"delivery_id,omitempty"`
	Trigger       string    `json:"trigger"`
	RepoOwner     string    `json:"repo_owner"`
	RepoName      string    `json:"repo_name"`
	Upstream      string    `json:"upstream,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	Result        string    `json:"result"`
	Message       string    `json:"message,omitempty"`
	CommitsSynced int       `json:"commits_synced,omitempty"`
	PullRequest   int       `json:"pull_request,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Trail appends sync outcomes as JSON lines organized by repository.
// Directory structure: baseDir/owner/repo/YYYY-MM-DD.jsonl
type Trail struct {
	baseDir string
	mu      sync.Mutex
}

// NewTrail creates a new Trail rooted at baseDir. An empty baseDir
// disables the trail: writes become no-ops.
func NewTrail(baseDir string) *Trail {
	return &Trail{baseDir: baseDir}
}

// Enabled reports whether records are written anywhere.
func (t *Trail) Enabled() bool {
	return t != nil && t.baseDir != ""
}

// Write appends the record to the day file of its repository.
func (t *Trail) Write(rec Record) error {
	if !t.Enabled() {
		return nil
	}

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	dir := filepath.Join(t.baseDir, rec.RepoOwner, rec.RepoName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating audit directory: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}

	path := filepath.Join(dir, rec.Timestamp.Format("2006-01-02")+".jsonl")

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending audit record: %w", err)
	}

	return nil
}
