// Package normalize provides utilities for normalizing user-entered names.
package normalize

import (
	"strings"
	"unicode"
)

// TagPrefix is the conventional first character of every tag name.
const TagPrefix = "#"

// TagName trims s and makes sure it carries the tag prefix.
// Returns "" for blank input, including a lone prefix.
func TagName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, TagPrefix)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return TagPrefix + s
}

// TagNames normalizes names with TagName, dropping blanks and repeats while
// keeping first-seen order.
func TagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = TagName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Text lowercases s, strips punctuation and symbols, and collapses runs of
// whitespace into single spaces.
func Text(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ReviewKey is the aggregation key for anonymous reviews of the "same" book.
func ReviewKey(title, author string) string {
	return Text(title) + "|" + Text(author)
}
