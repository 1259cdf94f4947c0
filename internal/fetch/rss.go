package fetch

import (
	"context"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/logger"
)

// FeedsConfig is the YAML config structure:
//
//	feeds:
//	  - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the RSS feed list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// RSSSource pulls candidate items from a fixed list of feeds. Query terms
// are ignored: the feed list is this source's query set.
type RSSSource struct {
	urls    []string
	timeout time.Duration
	workers int
	parser  *gofeed.Parser
}

func NewRSSSource(urls []string, timeout time.Duration, workers int) *RSSSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RSSSource{
		urls:    urls,
		timeout: timeout,
		workers: workers,
		parser:  gofeed.NewParser(),
	}
}

func (s *RSSSource) Name() string { return "rss" }

func (s *RSSSource) Fetch(ctx context.Context, window feed.Window, _ []string) ([]feed.CandidateItem, error) {
	items := runBounded(ctx, s.urls, s.workers, func(ctx context.Context, feedURL string) []feed.CandidateItem {
		got, err := s.fetchFeed(ctx, window, feedURL)
		if err != nil {
			logger.Warn("feed failed", "url", feedURL, "error", err)
			return nil
		}
		logger.Debug("feed loaded", "url", feedURL, "items", len(got))
		return got
	})
	return items, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, window feed.Window, feedURL string) ([]feed.CandidateItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	sourceName := feedURL
	if parsed.Title != "" {
		sourceName = parsed.Title
	}

	items := make([]feed.CandidateItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		publishedAt := time.Now().UTC()
		if it.PublishedParsed != nil {
			publishedAt = it.PublishedParsed.UTC()
		}
		if !window.Start.IsZero() && publishedAt.Before(window.Start) {
			continue
		}
		if !window.End.IsZero() && publishedAt.After(window.End) {
			continue
		}
		items = append(items, feed.CandidateItem{
			Title:       it.Title,
			URL:         it.Link,
			Source:      sourceName,
			PublishedAt: publishedAt,
			Description: it.Description,
		})
	}
	return items, nil
}
