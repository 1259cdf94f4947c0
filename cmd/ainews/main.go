package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/deusflow/ainews/internal/config"
	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/fetch"
	"github.com/deusflow/ainews/internal/filter"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/pipeline"
	"github.com/deusflow/ainews/internal/rank"
	"github.com/deusflow/ainews/internal/ratelimit"
	"github.com/deusflow/ainews/internal/scrape"
	"github.com/deusflow/ainews/internal/snapshot"
	"github.com/deusflow/ainews/internal/summarize"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	p, cleanup := buildPipeline(cfg)
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/news", newsHandler(p))
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting server", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, func()) {
	authority := filter.LoadSources(cfg.SourcesConfigPath)
	flt := filter.New(authority, cfg.AllowlistOnly)
	ranker := rank.New(flt, cfg.SourceCap, cfg.TopN)

	var sources []fetch.Source
	sources = append(sources, fetch.NewNewsAPIClient(
		cfg.NewsAPIKey, cfg.NewsAPIBaseURL, cfg.FetchTimeout, cfg.FetchWorkers))

	if feeds, err := fetch.LoadFeeds(cfg.FeedsConfigPath); err != nil {
		logger.Warn("feeds config unavailable, rss source disabled", "error", err)
	} else if len(feeds) > 0 {
		sources = append(sources, fetch.NewRSSSource(feeds, cfg.FetchTimeout, cfg.FetchWorkers))
	}

	scraper := scrape.New(15*time.Second, cfg.ScrapeConcurrency, cfg.ScrapeMaxArticles)

	var (
		generator summarize.Generator
		cleanup   = func() {}
	)
	if cfg.GeminiAPIKey != "" {
		gemini, err := summarize.NewGeminiClient(context.Background(),
			cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RetryAttempts, cfg.RetryDelay)
		if err != nil {
			logger.Warn("gemini unavailable, summaries will be extractive", "error", err)
		} else {
			generator = gemini
			cleanup = gemini.Close
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, summaries will be extractive")
	}
	limiter := ratelimit.New(cfg.MaxAIRequests)
	summarizer := summarize.New(generator, limiter, cfg.SummarizeTimeout)

	store := buildStore(cfg)
	snapshots := snapshot.NewManager(store, cfg.MemoryTTL)

	return pipeline.New(sources, flt, ranker, scraper, summarizer, snapshots, nil), cleanup
}

func buildStore(cfg *config.Config) snapshot.Store {
	if cfg.DatabaseURL != "" {
		store, err := snapshot.NewPostgresStore(cfg.DatabaseURL)
		if err == nil {
			return store
		}
		logger.Warn("postgres unavailable, falling back to file store", "error", err)
	}
	store, err := snapshot.NewFileStore(cfg.SnapshotDir)
	if err != nil {
		logger.Error("cannot create snapshot dir", "error", err)
		os.Exit(1)
	}
	return store
}

type newsResponse struct {
	Articles      []feed.Article `json:"articles"`
	WeekStart     string         `json:"weekStart"`
	IsCurrentWeek bool           `json:"isCurrentWeek"`
	Cached        bool           `json:"cached"`
	Notice        string         `json:"notice,omitempty"`
}

// newsHandler serves the digest. Upstream failures degrade to an empty
// article list with a notice; the only 500 is a marshaling failure.
func newsHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forceRefresh := r.URL.Query().Get("refresh") == "1"
		result := p.Digest(r.Context(), forceRefresh)

		resp := newsResponse{
			Articles:      result.Snapshot.Articles,
			WeekStart:     result.Snapshot.WeekLabel,
			IsCurrentWeek: result.IsCurrentWeek,
			Cached:        result.Cached,
			Notice:        result.Notice,
		}
		if resp.Articles == nil {
			resp.Articles = []feed.Article{}
		}

		body, err := json.Marshal(resp)
		if err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
