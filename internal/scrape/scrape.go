// Package scrape extracts full article text ahead of summarization so the
// generator sees more than a one-line description. Failures leave the item's
// description untouched.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/ainews/internal/logger"
)

const (
	minUsableLength = 200
	maxContentChars = 1800
)

// Paragraph selectors tried in order; the first one yielding enough
// paragraphs wins.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"#content p",
}

type Scraper struct {
	httpClient  *http.Client
	concurrency int
	maxArticles int
}

func New(timeout time.Duration, concurrency, maxArticles int) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if maxArticles <= 0 {
		maxArticles = 10
	}
	return &Scraper{
		httpClient:  &http.Client{Timeout: timeout},
		concurrency: concurrency,
		maxArticles: maxArticles,
	}
}

// Extract fetches and parses each URL, returning full text keyed by URL.
// URLs beyond the article cap are skipped; failed URLs are absent from
// the result.
func (s *Scraper) Extract(ctx context.Context, urls []string) map[string]string {
	if len(urls) > s.maxArticles {
		urls = urls[:s.maxArticles]
	}

	sem := make(chan struct{}, s.concurrency)
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string]string, len(urls))
	)

	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			content, err := s.extractOne(ctx, u)
			if err != nil {
				logger.Debug("scrape failed", "url", u, "error", err)
				return
			}
			if len(content) < minUsableLength {
				return
			}
			mu.Lock()
			result[u] = content
			mu.Unlock()
		}(u)
	}
	wg.Wait()

	logger.Info("scrape complete", "requested", len(urls), "extracted", len(result))
	return result
}

func (s *Scraper) extractOne(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return extractContent(doc), nil
}

func extractContent(doc *goquery.Document) string {
	var paragraphs []string

	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 && !isBoilerplate(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
		paragraphs = paragraphs[:0]
	}

	content := strings.Join(paragraphs, "\n\n")
	if len(content) > maxContentChars {
		// Cut on a paragraph boundary to keep sentences whole.
		kept := make([]string, 0, len(paragraphs))
		total := 0
		for _, p := range paragraphs {
			if total+len(p) > maxContentChars {
				break
			}
			kept = append(kept, p)
			total += len(p) + 2
		}
		if len(kept) > 0 {
			content = strings.Join(kept, "\n\n")
		} else {
			content = content[:maxContentChars]
		}
	}
	return content
}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range []string{
		"cookie", "subscribe", "newsletter", "sign up", "advertisement",
		"all rights reserved", "follow us", "share this article",
	} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
