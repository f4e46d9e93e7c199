package metadata

import "strings"

// SeparatorSubstitute replaces directory separators in path segments.
const SeparatorSubstitute = "|"

var segmentReplacer = strings.NewReplacer(
	"/", SeparatorSubstitute,
	"\x00", SeparatorSubstitute,
)

// Sanitize turns arbitrary text into a single path segment.
// Only separators are replaced; case, spacing and punctuation are kept.
func Sanitize(s string) string {
	return segmentReplacer.Replace(s)
}

// IsSegment reports whether s sanitizes to a directory name that stays
// one level below its parent: not empty, "." or "..".
func IsSegment(s string) bool {
	switch Sanitize(s) {
	case "", ".", "..":
		return false
	}
	return true
}
