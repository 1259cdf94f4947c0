package rank

import (
	"testing"
	"time"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/filter"
)

func fixedClock() func() time.Time {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func classified(title, source string, authority float64, published time.Time) feed.ClassifiedItem {
	return feed.ClassifiedItem{
		CandidateItem: feed.CandidateItem{
			Title:       title,
			URL:         "https://" + source + "/" + title,
			Source:      source,
			PublishedAt: published,
		},
		Authority: authority,
		EventType: feed.EventUnknown,
	}
}

func TestScore_AuthorityMonotonic(t *testing.T) {
	r := New(nil, 2, 10)
	r.SetClock(fixedClock())
	published := fixedClock()().Add(-2 * time.Hour)

	low := classified("a", "low.example", 0.5, published)
	high := classified("a", "high.example", 2.0, published)

	if r.Score(high) <= r.Score(low) {
		t.Errorf("higher authority must not score lower: %v <= %v", r.Score(high), r.Score(low))
	}
}

func TestScore_RecencyMonotonic(t *testing.T) {
	r := New(nil, 2, 10)
	r.SetClock(fixedClock())
	now := fixedClock()()

	fresh := classified("a", "s.example", 1.0, now.Add(-1*time.Hour))
	stale := classified("a", "s.example", 1.0, now.Add(-6*24*time.Hour))

	if r.Score(fresh) <= r.Score(stale) {
		t.Errorf("fresher item must not score lower: %v <= %v", r.Score(fresh), r.Score(stale))
	}
}

func TestScore_Bounds(t *testing.T) {
	r := New(nil, 2, 10)
	r.SetClock(fixedClock())

	max := feed.ClassifiedItem{
		CandidateItem: feed.CandidateItem{PublishedAt: fixedClock()()},
		Authority:     2.0,
		EventType:     feed.EventPolicySafety,
		Entities:      []string{"a", "b", "c", "d"},
	}
	if s := r.Score(max); s < 0 || s > 1+1e-9 {
		t.Errorf("score out of [0,1]: %v", s)
	}
}

func TestScore_RecencyDecayFormula(t *testing.T) {
	r := New(nil, 2, 10)
	r.SetClock(fixedClock())
	now := fixedClock()()

	// After exactly 168 hours the recency component contributes
	// 0.15 * e^-1; the difference against a fresh item must match.
	fresh := classified("a", "s.example", 0, now)
	week := classified("a", "s.example", 0, now.Add(-168*time.Hour))

	diff := r.Score(fresh) - r.Score(week)
	want := 0.15 * (1 - 1/2.718281828459045)
	if diff < want-1e-9 || diff > want+1e-9 {
		t.Errorf("recency decay mismatch: got %v, want %v", diff, want)
	}
}

func TestRank_DiversityCapWithBackfill(t *testing.T) {
	r := New(nil, 2, 5)
	r.SetClock(fixedClock())
	now := fixedClock()()

	var items []feed.ClassifiedItem
	// Two techcrunch and three forbes items, all scoring high, plus one
	// lower-authority third source that should backfill the fifth slot.
	items = append(items,
		classified("tc1", "techcrunch.com", 2.0, now),
		classified("tc2", "techcrunch.com", 2.0, now),
		classified("fb1", "forbes.com", 1.9, now),
		classified("fb2", "forbes.com", 1.9, now),
		classified("fb3", "forbes.com", 1.9, now),
		classified("vb1", "venturebeat.com", 0.5, now),
	)

	out := r.Rank(items)
	if len(out) != 5 {
		t.Fatalf("expected 5 items, got %d", len(out))
	}

	perSource := map[string]int{}
	for _, item := range out {
		perSource[item.Source]++
	}
	if perSource["techcrunch.com"] > 2 || perSource["forbes.com"] > 2 {
		t.Errorf("diversity cap violated: %v", perSource)
	}
	if perSource["venturebeat.com"] != 1 {
		t.Errorf("expected third source to backfill, got %v", perSource)
	}
}

func TestRank_BackfillsAuthorityFromURLHost(t *testing.T) {
	r := New(filter.New(nil, false), 2, 10)
	r.SetClock(fixedClock())
	now := fixedClock()()

	// Sources as upstreams report them: display names, not domains.
	listed := feed.ClassifiedItem{
		CandidateItem: feed.CandidateItem{
			Title:       "listed",
			URL:         "https://www.reuters.com/technology/story/",
			Source:      "Reuters",
			PublishedAt: now,
		},
	}
	unlisted := feed.ClassifiedItem{
		CandidateItem: feed.CandidateItem{
			Title:       "unlisted",
			URL:         "https://someblog.example/story",
			Source:      "Some Blog",
			PublishedAt: now,
		},
	}

	out := r.Rank([]feed.ClassifiedItem{unlisted, listed})
	if out[0].Title != "listed" {
		t.Fatalf("expected the listed source first, got %q", out[0].Title)
	}
	if out[0].Authority != 2.0 {
		t.Errorf("authority not resolved from URL host: %v", out[0].Authority)
	}
	if out[0].RelevanceScore <= out[1].RelevanceScore {
		t.Errorf("listed source must outscore unlisted: %v <= %v",
			out[0].RelevanceScore, out[1].RelevanceScore)
	}
}

func TestRank_SortedDescendingStable(t *testing.T) {
	r := New(nil, 2, 10)
	r.SetClock(fixedClock())
	now := fixedClock()()

	items := []feed.ClassifiedItem{
		classified("first-tie", "a.example", 1.0, now),
		classified("second-tie", "b.example", 1.0, now),
		classified("winner", "c.example", 2.0, now),
	}

	out := r.Rank(items)
	if out[0].Title != "winner" {
		t.Errorf("expected highest score first, got %q", out[0].Title)
	}
	if out[1].Title != "first-tie" || out[2].Title != "second-tie" {
		t.Errorf("ties must preserve input order: %q, %q", out[1].Title, out[2].Title)
	}
	for i := 1; i < len(out); i++ {
		if out[i].RelevanceScore > out[i-1].RelevanceScore {
			t.Errorf("output not sorted descending at %d", i)
		}
	}
}
