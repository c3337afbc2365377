package sync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render substitutes named placeholders in a pull request template. The
// substitution is one pass over the template, so a rendered value that
// itself contains placeholder-like text is never expanded again. Unknown
// placeholders are left as written.
func Render(template string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if val, ok := vars[match[1:len(match)-1]]; ok {
			return val
		}
		return match
	})
}

// templateVars computes the placeholder values for one sync attempt.
func templateVars(upstream UpstreamRef, cmp *Comparison) map[string]string {
	return map[string]string{
		"upstream":       upstream.String(),
		"branch":         cmp.BaseBranch,
		"commits_behind": strconv.Itoa(cmp.BehindBy),
		"commit_list":    commitList(cmp.Commits),
	}
}

// commitList renders one "short-sha: first message line" entry per commit.
func commitList(commits []Commit) string {
	lines := make([]string, len(commits))
	for i, c := range commits {
		sha := c.SHA
		if len(sha) > 7 {
			sha = sha[:7]
		}
		msg := c.Message
		if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
			msg = msg[:idx]
		}
		lines[i] = fmt.Sprintf("%s: %s", sha, msg)
	}
	return strings.Join(lines, "\n")
}
