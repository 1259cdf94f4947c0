// Package filter decides whether a candidate item belongs in the digest:
// language heuristic, AI-topic keyword relevance, exclusion lists and an
// optional source allowlist with authority weights.
package filter

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/logger"
)

// Strong AI-topic terms: a single word-boundary hit is enough.
var aiTopicTerms = []string{
	"artificial intelligence", "machine learning", "deep learning",
	"neural network", "large language model", "generative ai", "llm",
	"chatgpt", "openai", "anthropic", "claude", "gemini", "copilot",
	"gpt-4", "gpt-5", "llama", "deepmind", "computer vision",
	"natural language processing", "foundation model", "ai model",
	"ai startup", "ai chip", "ai regulation", "ai safety",
}

// Bare "ai"/"ml" only count next to a generic tech/business noun, which
// keeps "the minister said" and stock tickers out of the digest.
var shortTokens = []string{"ai", "ml"}

var contextNouns = []string{
	"technology", "tech", "software", "model", "models", "startup",
	"company", "research", "chip", "data", "robot", "algorithm",
	"platform", "tool", "system", "product", "industry", "lab",
}

// Automation phrasing that reads as AI but is not.
var nonAIPhrases = []string{
	"manufacturing automation", "industrial automation", "home automation",
	"warehouse automation", "process automation", "office automation",
}

var excludeTerms = []string{
	"football", "soccer", "basketball", "tennis", "baseball", "nba", "nfl",
	"mlb", "fifa", "champions league", "premier league", "cricket", "rugby",
	"hockey", "golf", "olympics", "world cup", "box office", "celebrity",
	"horoscope", "recipe", "royal family", "film review", "album",
}

// Non-news hosts: forums, registries, social and torrent sites.
var denyHosts = []string{
	"reddit.com", "news.ycombinator.com", "github.com", "npmjs.com",
	"pypi.org", "twitter.com", "x.com", "facebook.com", "instagram.com",
	"tiktok.com", "4chan", "thepiratebay", "torrent", "medium.com",
	"substack.com", "slickdeals", "producthunt.com",
}

// Script ranges whose presence marks an item as non-English. A conservative
// heuristic: non-English Latin-script text slips through by accepted trade-off.
var foreignScripts = []*unicode.RangeTable{
	unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Cyrillic,
	unicode.Hebrew, unicode.Arabic, unicode.Devanagari, unicode.Thai,
	unicode.Hangul,
}

var (
	topicPatterns = map[string]*regexp.Regexp{}
	nounPatterns  []*regexp.Regexp
)

func init() {
	for _, term := range aiTopicTerms {
		topicPatterns[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
	}
	for _, tok := range shortTokens {
		topicPatterns[tok] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tok) + `\b`)
	}
	for _, noun := range contextNouns {
		nounPatterns = append(nounPatterns, regexp.MustCompile(`\b`+noun+`\b`))
	}
}

// SourcesConfig is the YAML shape of configs/sources.yaml.
type SourcesConfig struct {
	Authority map[string]float64 `yaml:"authority"`
}

// defaultAuthority covers the usual suspects when no sources file is present.
// Wire services 2.0, reputable tech press 1.2, unlisted 0.
var defaultAuthority = map[string]float64{
	"reuters.com":      2.0,
	"apnews.com":       2.0,
	"bloomberg.com":    1.8,
	"ft.com":           1.8,
	"wsj.com":          1.8,
	"nytimes.com":      1.6,
	"theguardian.com":  1.5,
	"bbc.com":          1.5,
	"techcrunch.com":   1.2,
	"theverge.com":     1.2,
	"wired.com":        1.2,
	"arstechnica.com":  1.2,
	"venturebeat.com":  1.0,
	"zdnet.com":        1.0,
	"theinformation.com": 1.4,
	"semafor.com":      1.0,
	"axios.com":        1.2,
	"cnbc.com":         1.2,
	"forbes.com":       0.8,
	"businessinsider.com": 0.8,
}

// LoadSources reads the authority table from YAML. A missing, unparseable or
// empty file falls back to the built-in table; the fallback is logged, not
// returned as an error.
func LoadSources(path string) map[string]float64 {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("using built-in source authority table", "error", err)
		return defaultAuthority
	}
	var cfg SourcesConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		logger.Warn("using built-in source authority table", "error",
			fmt.Errorf("parse sources config: %w", err))
		return defaultAuthority
	}
	if len(cfg.Authority) == 0 {
		return defaultAuthority
	}
	table := make(map[string]float64, len(cfg.Authority))
	for host, weight := range cfg.Authority {
		table[normalizeHost(host)] = weight
	}
	return table
}

// Filter holds the source authority table and mode toggles.
type Filter struct {
	authority     map[string]float64
	allowlistOnly bool
}

func New(authority map[string]float64, allowlistOnly bool) *Filter {
	if authority == nil {
		authority = defaultAuthority
	}
	return &Filter{authority: authority, allowlistOnly: allowlistOnly}
}

// AuthorityFor returns the trust weight for a source host, 0 when unlisted.
func (f *Filter) AuthorityFor(source string) float64 {
	return f.authority[normalizeHost(source)]
}

// Authority resolves an item's trust weight. Upstream sources often report a
// display name ("TechCrunch") while the table is domain-keyed, so the item's
// URL hostname is the fallback lookup.
func (f *Filter) Authority(item feed.CandidateItem) float64 {
	if w := f.authority[normalizeHost(item.Source)]; w > 0 {
		return w
	}
	return f.authority[hostOf(item.URL)]
}

// Accept combines all checks with AND: language, keyword relevance,
// exclusions, and (in allowlist mode) a non-zero authority weight.
func (f *Filter) Accept(item feed.CandidateItem) bool {
	text := strings.ToLower(item.Title + " " + item.Description)

	if !looksEnglish(text) {
		return false
	}
	if !hasAIKeyword(text) {
		return false
	}
	if containsExcluded(text) || deniedSource(item.Source, item.URL) {
		return false
	}
	if f.allowlistOnly && f.Authority(item) <= 0 {
		return false
	}
	return true
}

func looksEnglish(text string) bool {
	for _, r := range text {
		for _, table := range foreignScripts {
			if unicode.Is(table, r) {
				return false
			}
		}
	}
	return true
}

func hasAIKeyword(text string) bool {
	for _, term := range aiTopicTerms {
		if topicPatterns[term].MatchString(text) {
			return true
		}
	}

	// Short-token path: needs supporting context and no automation phrasing.
	for _, phrase := range nonAIPhrases {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	for _, tok := range shortTokens {
		if !topicPatterns[tok].MatchString(text) {
			continue
		}
		for _, noun := range nounPatterns {
			if noun.MatchString(text) {
				return true
			}
		}
	}
	return false
}

func containsExcluded(text string) bool {
	for _, term := range excludeTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func deniedSource(source, link string) bool {
	host := normalizeHost(source)
	linkHost := hostOf(link)
	for _, deny := range denyHosts {
		if strings.Contains(host, deny) || strings.Contains(linkHost, deny) {
			return true
		}
	}
	return false
}

// normalizeHost lowercases and strips scheme/www so "www.Reuters.com"
// and "reuters.com" compare equal.
func normalizeHost(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

func hostOf(link string) string {
	return normalizeHost(link)
}
