package prefixcache

import "strings"

// normalize canonicalizes a command string the same way on the write path
// (put) and the read path (get) so that "  GIT  " and "git" index and
// look up identically. An all-whitespace input normalizes to "".
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// prefixesOf returns normalize(s)[0:1], normalize(s)[0:2], ... up to
// min(len(normalized), maxLen), plus the normalized value itself so
// callers don't need to recompute it.
func prefixesOf(s string, maxLen int) (normalized string, prefixes []string) {
	normalized = normalize(s)
	if normalized == "" {
		return "", nil
	}
	n := len(normalized)
	if n > maxLen {
		n = maxLen
	}
	prefixes = make([]string, n)
	for i := 1; i <= n; i++ {
		prefixes[i-1] = normalized[:i]
	}
	return normalized, prefixes
}
