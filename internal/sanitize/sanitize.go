// Package sanitize reduces user-supplied text to a token that is safe to
// pass to git as a branch name.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9/_-]`)
	slashRuns   = regexp.MustCompile(`/{2,}`)
)

// Sanitize trims raw, drops every character outside [A-Za-z0-9/_-],
// collapses repeated slashes and strips leading and trailing hyphens.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = unsafeChars.ReplaceAllString(s, "")
	s = slashRuns.ReplaceAllString(s, "/")
	return strings.Trim(s, "-")
}

// Arg sanitizes v when it is a string and returns "" for anything else.
func Arg(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Sanitize(s)
}
