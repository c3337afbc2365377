package repoconfig

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where a repository's sync configuration file lives.
const DefaultPath = ".github/sync.yml"

// Defaults applied when optional keys are absent from the sync file.
const (
	DefaultPullRequestTitle = "🔄 Auto-sync with upstream"
	DefaultPullRequestBody  = "This pull request syncs `{branch}` with the upstream repository **{upstream}**.\n\n" +
		"The fork is {commits_behind} commit(s) behind upstream:\n\n" +
		"{commit_list}\n"
)

// Config is a repository's sync policy, materialized from its sync file
// with defaults applied.
type Config struct {
	AutoSync          bool     `yaml:"auto_sync" jsonschema:"required,description=Enable automatic synchronization with upstream"`
	Upstream          string   `yaml:"upstream" jsonschema:"required,description=Upstream repository as owner/repo"`
	Branches          []string `yaml:"branches" jsonschema:"description=Branches eligible for synchronization"`
	CreatePullRequest bool     `yaml:"create_pr" jsonschema:"description=Open a pull request instead of updating the branch in place"`
	PullRequestTitle  string   `yaml:"pr_title" jsonschema:"description=Title template for sync pull requests"`
	PullRequestBody   string   `yaml:"pr_body" jsonschema:"description=Body template for sync pull requests"`
}

// DefaultConfig returns the configuration a sync file is overlaid onto.
func DefaultConfig() *Config {
	return &Config{
		Branches:          []string{"main", "master"},
		CreatePullRequest: true,
		PullRequestTitle:  DefaultPullRequestTitle,
		PullRequestBody:   DefaultPullRequestBody,
	}
}

// SyncsBranch reports whether branch is eligible for synchronization.
func (c *Config) SyncsBranch(branch string) bool {
	for _, b := range c.Branches {
		if b == branch {
			return true
		}
	}
	return false
}

// Document is a fetched sync configuration prior to validation. A document
// is either applied in full or not at all: Config refuses to materialize
// anything that does not validate.
type Document struct {
	raw  []byte
	root any
}

// Validate checks the document against the sync file contract.
func (d *Document) Validate() Result {
	return Validate(d.root)
}

// Config materializes the typed configuration with defaults applied. It
// fails when the document does not validate.
func (d *Document) Config() (*Config, error) {
	if res := d.Validate(); !res.Valid {
		return nil, fmt.Errorf("invalid sync config: %s", strings.Join(res.Errors, "; "))
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(d.raw, cfg); err != nil {
		return nil, fmt.Errorf("decoding sync config: %w", err)
	}
	return cfg, nil
}
