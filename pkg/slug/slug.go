package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Make normalizes a display name into a lowercase URL-safe slug:
// only alphanumerics and hyphens, whitespace and hyphen runs collapsed,
// no leading or trailing hyphens.
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithSuffix appends a time-based suffix so a colliding slug stays unique
// without blocking the write.
func WithSuffix(s string) string {
	return fmt.Sprintf("%s-%d", s, time.Now().UnixMilli())
}
