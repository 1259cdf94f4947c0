package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/logger"
)

const newsAPIPageSize = 50

// NewsAPIClient queries a newsapi.org-style search endpoint, one request
// per query term, each with its own timeout.
type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	workers    int
	httpClient *http.Client
}

func NewNewsAPIClient(apiKey, baseURL string, timeout time.Duration, workers int) *NewsAPIClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NewsAPIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		timeout:    timeout,
		workers:    workers,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *NewsAPIClient) Name() string { return "newsapi" }

// Fetch issues one retrieval call per query. A non-success status or timeout
// skips that query; results of all surviving queries are concatenated.
func (c *NewsAPIClient) Fetch(ctx context.Context, window feed.Window, queries []string) ([]feed.CandidateItem, error) {
	if c.apiKey == "" {
		logger.Warn("news api key missing, skipping source")
		return nil, nil
	}

	items := runBounded(ctx, queries, c.workers, func(ctx context.Context, query string) []feed.CandidateItem {
		got, err := c.fetchQuery(ctx, window, query)
		if err != nil {
			logger.Warn("query failed", "source", c.Name(), "query", query, "error", err)
			return nil
		}
		return got
	})
	return items, nil
}

func (c *NewsAPIClient) fetchQuery(ctx context.Context, window feed.Window, query string) ([]feed.CandidateItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", window.Start.UTC().Format("2006-01-02"))
	params.Set("to", window.End.UTC().Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(newsAPIPageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api status %d", resp.StatusCode)
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("news api decode: %w", err)
	}

	items := make([]feed.CandidateItem, 0, len(raw.Articles))
	for _, a := range raw.Articles {
		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			// Unparseable dates count as "now"; stale-looking-fresh is the
			// accepted trade-off.
			publishedAt = time.Now().UTC()
		}
		items = append(items, feed.CandidateItem{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: publishedAt,
			Description: a.Description,
		})
	}
	return items, nil
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
}
