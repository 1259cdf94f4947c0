// Package pipeline runs the full curation sequence for a week:
// cache check → fetch → normalize → classify → filter → rank → scrape →
// summarize → persist. No failure inside the pipeline escapes as an error
// to the HTTP boundary; every step degrades to an empty or fallback value.
package pipeline

import (
	"context"
	"time"

	"github.com/deusflow/ainews/internal/classify"
	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/fetch"
	"github.com/deusflow/ainews/internal/filter"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/normalize"
	"github.com/deusflow/ainews/internal/rank"
	"github.com/deusflow/ainews/internal/scrape"
	"github.com/deusflow/ainews/internal/snapshot"
	"github.com/deusflow/ainews/internal/summarize"
)

// Default query terms sent to search-style sources.
var DefaultQueries = []string{
	"artificial intelligence",
	"machine learning",
	"generative AI",
	"OpenAI OR Anthropic OR DeepMind",
	"large language model",
}

// Result is what the HTTP boundary serves.
type Result struct {
	Snapshot      *feed.Snapshot
	Cached        bool
	IsCurrentWeek bool
	Notice        string
}

type Pipeline struct {
	sources    []fetch.Source
	filter     *filter.Filter
	ranker     *rank.Ranker
	scraper    *scrape.Scraper
	summarizer *summarize.Summarizer
	snapshots  *snapshot.Manager
	queries    []string
	now        func() time.Time
}

func New(
	sources []fetch.Source,
	flt *filter.Filter,
	ranker *rank.Ranker,
	scraper *scrape.Scraper,
	summarizer *summarize.Summarizer,
	snapshots *snapshot.Manager,
	queries []string,
) *Pipeline {
	if len(queries) == 0 {
		queries = DefaultQueries
	}
	return &Pipeline{
		sources:    sources,
		filter:     flt,
		ranker:     ranker,
		scraper:    scraper,
		summarizer: summarizer,
		snapshots:  snapshots,
		queries:    queries,
		now:        time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// Digest returns the weekly digest, from cache when possible. forceRefresh
// bypasses the cache read but still writes the fresh result back.
func (p *Pipeline) Digest(ctx context.Context, forceRefresh bool) *Result {
	now := p.now()
	weekID := feed.WeekID(now)

	snap, ok, err := p.snapshots.Get(weekID, forceRefresh)
	if err != nil {
		logger.Warn("snapshot read failed", "week", weekID, "error", err)
	}
	if ok {
		metrics.Global.IncrementCacheHits()
		return &Result{Snapshot: snap, Cached: true, IsCurrentWeek: true}
	}

	return p.run(ctx, now, weekID)
}

func (p *Pipeline) run(ctx context.Context, now time.Time, weekID string) *Result {
	started := time.Now()
	window := feed.WeekWindow(now)

	raw := fetch.All(ctx, p.sources, window, p.queries)
	metrics.Global.AddItemsFetched(len(raw))

	items := normalize.Items(raw)
	metrics.Global.AddDuplicatesFiltered(len(raw) - len(items))

	var accepted []feed.ClassifiedItem
	for _, item := range items {
		if !p.filter.Accept(item) {
			continue
		}
		classified := classifyWithAuthority(item, p.filter)
		accepted = append(accepted, classified)
	}
	metrics.Global.AddRejectedByFilter(len(items) - len(accepted))
	logger.Info("filtering done", "candidates", len(items), "accepted", len(accepted))

	ranked := p.ranker.Rank(accepted)
	if len(ranked) == 0 {
		return p.emptyResult(weekID)
	}

	p.enrichDescriptions(ctx, ranked)

	articles, generated := p.summarizer.Summarize(ctx, ranked)
	metrics.Global.AddGeneratedSummaries(generated)
	metrics.Global.AddFallbackSummaries(len(articles) - generated)

	for i := range articles {
		articles[i].Title = normalize.CleanTitle(articles[i].Title)
	}

	snap := &feed.Snapshot{
		WeekID:    weekID,
		WeekLabel: feed.WeekLabel(now),
		Articles:  articles,
		CreatedAt: now.UTC(),
	}

	// Persistence failure never fails the request; the fresh result is
	// still served.
	if err := p.snapshots.Put(weekID, snap); err != nil {
		logger.Error("snapshot write failed", "week", weekID, "error", err)
		metrics.Global.SetError("snapshot write: " + err.Error())
	}

	metrics.Global.AddItemsPublished(len(articles))
	metrics.Global.RecordRun(time.Since(started))
	logger.Info("pipeline run complete", "week", weekID, "articles", len(articles),
		"duration", time.Since(started).String())

	return &Result{Snapshot: snap, IsCurrentWeek: true}
}

// emptyResult applies the latest-cache fallback when a fresh run yields
// nothing, serving something rather than nothing at the cost of freshness.
func (p *Pipeline) emptyResult(weekID string) *Result {
	latest, ok, err := p.snapshots.Latest()
	if err != nil {
		logger.Warn("latest snapshot lookup failed", "error", err)
	}
	if ok {
		logger.Info("serving latest snapshot as fallback", "week", latest.WeekID)
		return &Result{
			Snapshot:      latest,
			Cached:        true,
			IsCurrentWeek: latest.WeekID == weekID,
			Notice:        "No fresh articles were found; showing the most recent digest.",
		}
	}
	return &Result{
		Snapshot: &feed.Snapshot{
			WeekID:    weekID,
			WeekLabel: feed.WeekLabel(p.now()),
			Articles:  []feed.Article{},
			CreatedAt: p.now().UTC(),
		},
		IsCurrentWeek: true,
		Notice:        "No articles available for this week yet.",
	}
}

// enrichDescriptions swaps in scraped full text where available so the
// summarizer works from more than a one-liner.
func (p *Pipeline) enrichDescriptions(ctx context.Context, ranked []feed.ScoredItem) {
	if p.scraper == nil {
		return
	}
	urls := make([]string, len(ranked))
	for i, item := range ranked {
		urls[i] = item.URL
	}
	contents := p.scraper.Extract(ctx, urls)
	for i := range ranked {
		if full, ok := contents[ranked[i].URL]; ok {
			ranked[i].Description = full
		}
	}
}

func classifyWithAuthority(item feed.CandidateItem, flt *filter.Filter) feed.ClassifiedItem {
	classified := classify.Item(item)
	classified.Authority = flt.Authority(item)
	return classified
}
