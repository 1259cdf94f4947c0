package normalize

import (
	"regexp"
	"strings"
)

const maxTitleChars = 80

var (
	titlePrefixPattern = regexp.MustCompile(`(?i)^(Breaking|News|Update|Report|Analysis):\s*`)
	titleSuffixPattern = regexp.MustCompile(`(?i)\s*-\s*(Reuters|AP|AFP|CNN|BBC|Forbes|TechCrunch|The Verge).*$`)
	titlePipePattern   = regexp.MustCompile(`\s*\|.*$`)
)

// CleanTitle strips wire-style prefixes and trailing source attributions,
// then truncates long titles at a word boundary.
func CleanTitle(title string) string {
	title = titlePrefixPattern.ReplaceAllString(title, "")
	title = titleSuffixPattern.ReplaceAllString(title, "")
	title = titlePipePattern.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)

	if runes := []rune(title); len(runes) > maxTitleChars {
		cut := string(runes[:maxTitleChars])
		if lastSpace := strings.LastIndexByte(cut, ' '); lastSpace > 50 {
			cut = cut[:lastSpace]
		}
		title = cut + "..."
	}
	return title
}
