package repoconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/driftsync/driftsync/internal/platform"
	"gopkg.in/yaml.v3"
)

// ContentGetter fetches file content from a hosted repository.
type ContentGetter interface {
	GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error)
}

// Loader fetches sync configuration files from repositories. Every Load
// hits the platform; configurations are never cached, so edits take effect
// on the next event.
type Loader struct {
	client ContentGetter
	path   string
}

// NewLoader creates a Loader reading from path, or DefaultPath when empty.
func NewLoader(client ContentGetter, path string) *Loader {
	if path == "" {
		path = DefaultPath
	}
	return &Loader{client: client, path: path}
}

// Path returns the repository path the loader reads from.
func (l *Loader) Path() string {
	return l.path
}

// Load fetches and parses the sync configuration of owner/repo. A repository
// without a configuration file yields (nil, nil).
func (l *Loader) Load(ctx context.Context, owner, repo string) (*Document, error) {
	data, err := l.client.GetFileContent(ctx, owner, repo, l.path)
	if errors.Is(err, platform.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading sync config: %w", err)
	}

	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing sync config: %w", err)
	}

	return &Document{raw: data, root: root}, nil
}
