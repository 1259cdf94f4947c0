package summarize

import (
	"strings"
)

// Copy-detection thresholds. A generated summary is discarded when it is too
// short, near-identical to the title, or overlaps the source description
// beyond these bounds.
const (
	minSummaryChars     = 20
	verbatimPrefixChars = 60
	wordOverlapLimit    = 0.85
	ngramOverlapLimit   = 0.60
	ngramSize           = 5
)

// acceptable reports whether a generated summary passes every guardrail
// against the item's title and description.
func acceptable(summary, title, description string) bool {
	summary = strings.TrimSpace(summary)
	if len(summary) < minSummaryChars {
		return false
	}
	if nearIdentical(summary, title) {
		return false
	}
	if isCopied(summary, description) {
		return false
	}
	return true
}

// nearIdentical checks containment in either direction after normalization.
func nearIdentical(summary, title string) bool {
	s := normalizeWords(summary)
	t := normalizeWords(title)
	if t == "" {
		return false
	}
	return s == t || strings.Contains(s, t) || strings.Contains(t, s)
}

// isCopied flags a summary that lifts the description: a long verbatim
// prefix, excessive word overlap, or excessive 5-gram overlap.
func isCopied(summary, description string) bool {
	if description == "" {
		return false
	}
	s := normalizeWords(summary)
	d := normalizeWords(description)

	if len(d) >= verbatimPrefixChars && strings.HasPrefix(s, d[:verbatimPrefixChars]) {
		return true
	}
	if wordOverlap(s, d) > wordOverlapLimit {
		return true
	}
	if ngramOverlap(s, d, ngramSize) > ngramOverlapLimit {
		return true
	}
	return false
}

// wordOverlap is the fraction of the summary's distinct words also present
// in the description.
func wordOverlap(summary, description string) float64 {
	sWords := strings.Fields(summary)
	if len(sWords) == 0 {
		return 0
	}
	dSet := map[string]struct{}{}
	for _, w := range strings.Fields(description) {
		dSet[w] = struct{}{}
	}
	seen := map[string]struct{}{}
	matched, total := 0, 0
	for _, w := range sWords {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		total++
		if _, ok := dSet[w]; ok {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// ngramOverlap is Jaccard-style: shared n-grams over the summary's n-grams.
func ngramOverlap(summary, description string, n int) float64 {
	sGrams := ngrams(summary, n)
	if len(sGrams) == 0 {
		return 0
	}
	dGrams := ngrams(description, n)
	shared := 0
	for g := range sGrams {
		if _, ok := dGrams[g]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(sGrams))
}

func ngrams(text string, n int) map[string]struct{} {
	words := strings.Fields(text)
	grams := map[string]struct{}{}
	for i := 0; i+n <= len(words); i++ {
		grams[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return grams
}

func normalizeWords(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// extractiveFallback builds a summary from the first one or two sentences of
// the description, or the title when no description exists. Never empty when
// either input is non-empty.
func extractiveFallback(title, description string) string {
	text := strings.TrimSpace(description)
	if text == "" {
		return strings.TrimSpace(title)
	}

	sentences := splitSentences(text)
	var picked []string
	for _, s := range sentences {
		if len(s) < 15 {
			continue
		}
		picked = append(picked, s)
		if len(picked) >= 2 {
			break
		}
	}
	if len(picked) == 0 {
		if len(text) > 160 {
			return text[:160] + "..."
		}
		return text
	}
	out := strings.Join(picked, " ")
	if !strings.HasSuffix(out, ".") && !strings.HasSuffix(out, "!") && !strings.HasSuffix(out, "?") {
		out += "."
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
