package summarize

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/deusflow/ainews/internal/feed"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func scoredItem(i int, title, description string) feed.ScoredItem {
	return feed.ScoredItem{
		ClassifiedItem: feed.ClassifiedItem{
			CandidateItem: feed.CandidateItem{
				Title:       title,
				URL:         fmt.Sprintf("https://example.com/%d", i),
				Source:      "example.com",
				PublishedAt: time.Now(),
				Description: description,
			},
		},
	}
}

func TestSummarize_MapsByIndex(t *testing.T) {
	gen := &fakeGenerator{response: `[
		{"id": 0, "summary": "Regulators in Brussels moved to curb model training practices across member states this week."},
		{"id": 1, "summary": "A chip maker outlined an ambitious roadmap that analysts called surprisingly aggressive for this market."}
	]`}
	s := New(gen, nil, time.Second)

	items := []feed.ScoredItem{
		scoredItem(0, "EU tightens AI rules", "The European Commission proposed strict requirements for foundation models."),
		scoredItem(1, "GPU roadmap revealed", "The company presented three new accelerator generations at its annual event."),
	}

	articles, generated := s.Summarize(context.Background(), items)
	if generated != 2 {
		t.Fatalf("expected 2 generated summaries, got %d", generated)
	}
	if !strings.Contains(articles[0].Summary, "Brussels") {
		t.Errorf("summary 0 mapped wrong: %q", articles[0].Summary)
	}
	if !strings.Contains(articles[1].Summary, "chip maker") {
		t.Errorf("summary 1 mapped wrong: %q", articles[1].Summary)
	}
	if gen.calls != 1 {
		t.Errorf("expected one batched call, got %d", gen.calls)
	}
}

func TestSummarize_TotalFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("quota exhausted")}
	s := New(gen, nil, time.Second)

	items := []feed.ScoredItem{
		scoredItem(0, "Model released", "The new model beats prior benchmarks. Researchers are impressed."),
		scoredItem(1, "No description here", ""),
	}

	articles, generated := s.Summarize(context.Background(), items)
	if generated != 0 {
		t.Errorf("expected no generated summaries, got %d", generated)
	}
	for i, a := range articles {
		if strings.TrimSpace(a.Summary) == "" {
			t.Errorf("article %d has empty summary after total failure", i)
		}
	}
	if !strings.Contains(articles[0].Summary, "benchmarks") {
		t.Errorf("expected extractive summary from description, got %q", articles[0].Summary)
	}
	if articles[1].Summary != "No description here" {
		t.Errorf("expected title fallback, got %q", articles[1].Summary)
	}
}

func TestSummarize_GuardrailRejectsTitleCopy(t *testing.T) {
	title := "OpenAI launches new reasoning model"
	gen := &fakeGenerator{response: fmt.Sprintf(`[{"id": 0, "summary": "%s"}]`, title)}
	s := New(gen, nil, time.Second)

	items := []feed.ScoredItem{
		scoredItem(0, title, "The model handles multi-step problems. Availability starts next month."),
	}

	articles, generated := s.Summarize(context.Background(), items)
	if generated != 0 {
		t.Errorf("title copy should be rejected, got %d generated", generated)
	}
	if articles[0].Summary == title {
		t.Errorf("summary must not equal title")
	}
	if strings.TrimSpace(articles[0].Summary) == "" {
		t.Errorf("fallback summary missing")
	}
}

func TestSummarize_GuardrailRejectsDescriptionCopy(t *testing.T) {
	description := "The startup announced a large new funding round led by several prominent venture firms " +
		"that previously backed its earlier products and services over many years of collaboration."
	gen := &fakeGenerator{response: fmt.Sprintf(`[{"id": 0, "summary": %q}]`, description)}
	s := New(gen, nil, time.Second)

	items := []feed.ScoredItem{scoredItem(0, "Startup raises round", description)}

	_, generated := s.Summarize(context.Background(), items)
	if generated != 0 {
		t.Errorf("verbatim description copy should be rejected")
	}
}

func TestSummarize_ShortSummaryRejected(t *testing.T) {
	gen := &fakeGenerator{response: `[{"id": 0, "summary": "Too short."}]`}
	s := New(gen, nil, time.Second)

	items := []feed.ScoredItem{
		scoredItem(0, "Some headline", "First real sentence of the story. Second sentence with detail."),
	}

	articles, generated := s.Summarize(context.Background(), items)
	if generated != 0 {
		t.Errorf("sub-minimum summary should be rejected")
	}
	if !strings.Contains(articles[0].Summary, "First real sentence") {
		t.Errorf("expected extractive fallback, got %q", articles[0].Summary)
	}
}

func TestParseSummaries_CodeFences(t *testing.T) {
	raw := "```json\n[{\"id\": 0, \"summary\": \"A perfectly valid generated summary of the story.\"}]\n```"
	got, err := parseSummaries(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] == "" {
		t.Errorf("summary 0 missing")
	}
}

func TestParseSummaries_Garbage(t *testing.T) {
	if _, err := parseSummaries("I could not produce summaries today."); err == nil {
		t.Errorf("expected error for non-JSON output")
	}
}

type denyBudget struct{ recorded int }

func (d *denyBudget) Allow() bool { return false }
func (d *denyBudget) Record()     { d.recorded++ }

func TestSummarize_BudgetDenied(t *testing.T) {
	gen := &fakeGenerator{response: `[{"id":0,"summary":"should never be used because the budget says no"}]`}
	budget := &denyBudget{}
	s := New(gen, budget, time.Second)

	items := []feed.ScoredItem{scoredItem(0, "Headline", "Description sentence for fallback purposes.")}

	_, generated := s.Summarize(context.Background(), items)
	if generated != 0 {
		t.Errorf("denied budget must force extractive summaries")
	}
	if gen.calls != 0 {
		t.Errorf("generator must not be called when budget denies")
	}
}

func TestExtractiveFallback(t *testing.T) {
	got := extractiveFallback("Title", "One meaningful sentence here. Another one follows. Third ignored.")
	if !strings.HasPrefix(got, "One meaningful sentence here.") {
		t.Errorf("unexpected fallback: %q", got)
	}
	if strings.Contains(got, "Third") {
		t.Errorf("fallback should stop at two sentences: %q", got)
	}

	if got := extractiveFallback("Only a title", ""); got != "Only a title" {
		t.Errorf("expected title when description empty, got %q", got)
	}
}
