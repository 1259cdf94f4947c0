package filter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deusflow/ainews/internal/feed"
)

func TestAccept_AIBeatsSports(t *testing.T) {
	f := New(nil, false)

	ai := feed.CandidateItem{
		Title:       "OpenAI launches GPT-5",
		URL:         "https://reuters.com/u1",
		Source:      "reuters.com",
		PublishedAt: time.Now(),
		Description: "The company announced its newest model.",
	}
	sports := feed.CandidateItem{
		Title:       "Local team wins soccer match",
		URL:         "https://espn.com/u2",
		Source:      "espn.com",
		PublishedAt: time.Now(),
		Description: "A thrilling final in the stadium.",
	}

	if !f.Accept(ai) {
		t.Errorf("AI article should be accepted")
	}
	if f.Accept(sports) {
		t.Errorf("sports article should be rejected")
	}
}

func TestAccept_RejectsForeignScript(t *testing.T) {
	f := New(nil, false)
	item := feed.CandidateItem{
		Title:  "OpenAI 发布新模型",
		Source: "reuters.com",
	}
	if f.Accept(item) {
		t.Errorf("CJK text should be rejected")
	}
}

func TestAccept_ShortTokenNeedsContext(t *testing.T) {
	f := New(nil, false)

	noContext := feed.CandidateItem{
		Title:  "Veteran chef opens AI-named bistro downtown",
		Source: "eater.com",
	}
	// "ai" is present as a token but no context noun is.
	if f.Accept(noContext) {
		t.Errorf("bare 'ai' without context should be rejected")
	}

	withContext := feed.CandidateItem{
		Title:  "AI software startup doubles revenue",
		Source: "cnbc.com",
	}
	if !f.Accept(withContext) {
		t.Errorf("'ai' with tech context should be accepted")
	}
}

func TestAccept_NonAIAutomationPhrase(t *testing.T) {
	f := New(nil, false)
	item := feed.CandidateItem{
		Title:       "Factory doubles output with manufacturing automation",
		Source:      "industryweek.com",
		Description: "New ai controllers in the plant technology stack.",
	}
	if f.Accept(item) {
		t.Errorf("manufacturing automation phrasing should be excluded")
	}
}

func TestAccept_DeniedHost(t *testing.T) {
	f := New(nil, false)
	item := feed.CandidateItem{
		Title:  "Show HN: my machine learning side project",
		URL:    "https://news.ycombinator.com/item?id=1",
		Source: "news.ycombinator.com",
	}
	if f.Accept(item) {
		t.Errorf("denylisted host should be rejected")
	}
}

func TestAccept_AllowlistMode(t *testing.T) {
	table := map[string]float64{"reuters.com": 2.0}
	f := New(table, true)

	listed := feed.CandidateItem{
		Title:  "Machine learning reshapes logistics",
		Source: "reuters.com",
	}
	unlisted := feed.CandidateItem{
		Title:  "Machine learning reshapes logistics",
		Source: "randomblog.net",
	}

	if !f.Accept(listed) {
		t.Errorf("allowlisted source should pass")
	}
	if f.Accept(unlisted) {
		t.Errorf("unlisted source should be excluded in allowlist mode")
	}
}

func TestLoadSources_MissingFileUsesBuiltin(t *testing.T) {
	table := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
	if table["reuters.com"] != 2.0 {
		t.Errorf("expected built-in table on missing file, got %v", table["reuters.com"])
	}
}

func TestLoadSources_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := "authority:\n  www.example.com: 1.7\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	table := LoadSources(path)
	if table["example.com"] != 1.7 {
		t.Errorf("expected normalized host key, got %v", table)
	}
	if _, ok := table["reuters.com"]; ok {
		t.Errorf("configured table should replace, not merge, the built-in one")
	}
}

func TestAuthority_FallsBackToURLHost(t *testing.T) {
	f := New(nil, false)

	// NewsAPI-style display name: the table is domain-keyed, so the weight
	// must come from the link's hostname.
	item := feed.CandidateItem{
		Title:  "OpenAI ships a new model",
		Source: "TechCrunch",
		URL:    "https://techcrunch.com/2026/08/26/openai-model/",
	}
	if got := f.Authority(item); got != 1.2 {
		t.Errorf("Authority = %v, want 1.2 via URL host", got)
	}

	domainForm := feed.CandidateItem{Source: "reuters.com", URL: "https://reuters.com/x"}
	if got := f.Authority(domainForm); got != 2.0 {
		t.Errorf("Authority = %v, want 2.0 via source host", got)
	}

	unknown := feed.CandidateItem{Source: "Some Blog", URL: "https://someblog.example/post"}
	if got := f.Authority(unknown); got != 0 {
		t.Errorf("Authority = %v, want 0 for unlisted source and host", got)
	}
}

func TestAccept_AllowlistResolvesDisplayName(t *testing.T) {
	table := map[string]float64{"reuters.com": 2.0}
	f := New(table, true)

	item := feed.CandidateItem{
		Title:  "Machine learning reshapes logistics",
		Source: "Reuters",
		URL:    "https://www.reuters.com/technology/ml-logistics/",
	}
	if !f.Accept(item) {
		t.Errorf("allowlisted source reported by display name should pass")
	}
}

func TestAuthorityFor_NormalizesHost(t *testing.T) {
	table := map[string]float64{"reuters.com": 2.0}
	f := New(table, false)

	for _, src := range []string{"reuters.com", "www.reuters.com", "https://reuters.com/world"} {
		if got := f.AuthorityFor(src); got != 2.0 {
			t.Errorf("AuthorityFor(%q) = %v, want 2.0", src, got)
		}
	}
	if got := f.AuthorityFor("unknown.example"); got != 0 {
		t.Errorf("unlisted source should have authority 0, got %v", got)
	}
}
