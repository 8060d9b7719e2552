// internal/filter/extensions.go
package filter

import (
	"regexp"
	"sort"
	"strings"
)

// NormalizeExtensions processes a list of extension strings (possibly comma
// separated, with or without the leading dot) into a sorted, deduplicated list
// of lower-case extensions without dots.
func NormalizeExtensions(extList []string) []string {
	seen := make(map[string]struct{})
	for _, ext := range extList {
		for _, part := range strings.Split(ext, ",") {
			cleaned := strings.TrimSpace(strings.ToLower(part))
			cleaned = strings.TrimLeft(cleaned, ".")
			if cleaned == "" {
				continue
			}
			seen[cleaned] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for ext := range seen {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ExtensionPatterns turns extensions into anchored, case-insensitive
// patterns suitable for NewRule.
func ExtensionPatterns(extList []string) []string {
	exts := NormalizeExtensions(extList)
	patterns := make([]string, 0, len(exts))
	for _, ext := range exts {
		patterns = append(patterns, `(?i)\.`+regexp.QuoteMeta(ext)+`$`)
	}
	return patterns
}
