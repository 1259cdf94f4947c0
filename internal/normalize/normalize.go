// Package normalize cleans raw candidate items: exact-URL deduplication,
// HTML tag stripping, entity decoding and whitespace collapsing.
package normalize

import (
	"html"
	"regexp"
	"strings"

	"github.com/deusflow/ainews/internal/feed"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanText strips markup, decodes HTML entities and collapses whitespace.
// Best-effort: malformed markup never causes an error.
func CleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Items deduplicates by exact URL (first occurrence wins, order preserved)
// and cleans title and description of every surviving item.
func Items(items []feed.CandidateItem) []feed.CandidateItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]feed.CandidateItem, 0, len(items))

	for _, item := range items {
		if _, dup := seen[item.URL]; dup {
			continue
		}
		seen[item.URL] = struct{}{}

		item.Title = CleanText(item.Title)
		item.Description = CleanText(item.Description)
		out = append(out, item)
	}
	return out
}
