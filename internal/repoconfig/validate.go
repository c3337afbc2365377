package repoconfig

import (
	"fmt"
	"strings"
)

// Result is the outcome of validating a sync configuration document.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks a decoded configuration document against the sync file
// contract. Apart from the object-shape check, every applicable check runs
// even after one fails, so a single call reports all problems at once.
func Validate(v any) Result {
	obj, ok := v.(map[string]any)
	if !ok {
		return Result{Errors: []string{"Configuration must be an object"}}
	}

	var errs []string

	if _, isBool := obj["auto_sync"].(bool); !isBool {
		errs = append(errs, "auto_sync must be a boolean")
	}

	switch upstream := obj["upstream"].(type) {
	case string:
		if !wellFormedUpstream(upstream) {
			errs = append(errs, `upstream must be in format "owner/repo"`)
		}
	default:
		errs = append(errs, `upstream must be a string in format "owner/repo"`)
	}

	if branches, present := obj["branches"]; present {
		if _, isList := branches.([]any); !isList {
			errs = append(errs, "branches must be a list")
		}
	}

	if createPR, present := obj["create_pr"]; present {
		if _, isBool := createPR.(bool); !isBool {
			errs = append(errs, "create_pr must be a boolean")
		}
	}

	for _, key := range []string{"pr_title", "pr_body"} {
		if val, present := obj[key]; present {
			if _, isString := val.(string); !isString {
				errs = append(errs, fmt.Sprintf("%s must be a string", key))
			}
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// wellFormedUpstream reports whether s names a repository as owner/repo
// with both segments non-empty.
func wellFormedUpstream(s string) bool {
	parts := strings.Split(s, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}
