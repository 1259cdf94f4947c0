// Package summarize turns ranked items into published summaries: one batched
// generation request, strict structured parsing, and copy-detection guardrails
// with extractive fallback. Summarization failure never fails the pipeline.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/logger"
)

const (
	maxInputCharsPerItem = 900
	maxSummaryWords      = 120
)

// Budget gates generation calls; the rate limiter satisfies it.
type Budget interface {
	Allow() bool
	Record()
}

type Summarizer struct {
	generator Generator
	budget    Budget
	timeout   time.Duration
}

func New(generator Generator, budget Budget, timeout time.Duration) *Summarizer {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Summarizer{generator: generator, budget: budget, timeout: timeout}
}

// Summarize produces one article per input item, preserving input order,
// and reports how many summaries came from the generator. Generated summaries
// that fail a guardrail, and every item on total generation failure, fall
// back to extractive summaries.
func (s *Summarizer) Summarize(ctx context.Context, items []feed.ScoredItem) ([]feed.Article, int) {
	articles := make([]feed.Article, len(items))
	for i, item := range items {
		articles[i] = feed.Article{
			Title:       item.Title,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: item.PublishedAt,
			Summary:     extractiveFallback(item.Title, item.Description),
		}
	}
	if len(items) == 0 {
		return articles, 0
	}

	generated := s.generate(ctx, items)
	if generated == nil {
		return articles, 0
	}

	kept := 0
	for i, item := range items {
		summary, ok := generated[i]
		if !ok {
			continue
		}
		summary = trimToWords(strings.TrimSpace(summary), maxSummaryWords)
		if !acceptable(summary, item.Title, item.Description) {
			logger.Debug("summary rejected by guardrails", "url", item.URL)
			continue
		}
		articles[i].Summary = summary
		kept++
	}
	logger.Info("summarization done", "items", len(items), "generated", kept)
	return articles, kept
}

// generate makes the single batched call and parses its response. Any
// failure returns nil, which keeps the extractive fallbacks in place.
func (s *Summarizer) generate(ctx context.Context, items []feed.ScoredItem) map[int]string {
	if s.generator == nil {
		logger.Warn("generation collaborator unavailable, using extractive summaries")
		return nil
	}
	if s.budget != nil && !s.budget.Allow() {
		logger.Warn("generation budget exhausted, using extractive summaries")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(ctx, buildPrompt(items))
	if err != nil {
		logger.Warn("generation call failed", "error", err)
		return nil
	}
	if s.budget != nil {
		s.budget.Record()
	}

	parsed, err := parseSummaries(raw)
	if err != nil {
		logger.Warn("generation response unparseable", "error", err)
		return nil
	}
	return parsed
}

// buildPrompt batches all items into one instruction with an explicit
// contract: JSON array of {id, summary}, id matching the input position.
func buildPrompt(items []feed.ScoredItem) string {
	var b strings.Builder
	b.WriteString("You are a news editor. Summarize each article below in your own words.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- 2-3 sentences per article, at most 120 words.\n")
	b.WriteString("- Do not copy phrasing from the title or description.\n")
	b.WriteString("- No HTML, bullets, or numbering inside summaries.\n")
	b.WriteString("- Respond with ONLY a JSON array: [{\"id\": 0, \"summary\": \"...\"}, ...]\n")
	b.WriteString("- The id must match the article number below. One entry per article, same order.\n\n")

	for i, item := range items {
		text := item.Title + ". " + item.Description
		text = strings.Join(strings.Fields(text), " ")
		if utf8.RuneCountInString(text) > maxInputCharsPerItem {
			runes := []rune(text)
			text = string(runes[:maxInputCharsPerItem])
		}
		fmt.Fprintf(&b, "Article %d: %s\n\n", i, text)
	}
	return b.String()
}

type generatedSummary struct {
	ID      int    `json:"id"`
	Summary string `json:"summary"`
}

// parseSummaries decodes the model output, tolerating markdown code fences
// and leading prose around the JSON array.
func parseSummaries(raw string) (map[int]string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var entries []generatedSummary
	if err := json.Unmarshal([]byte(raw[start:end+1]), &entries); err != nil {
		return nil, fmt.Errorf("decode summaries: %w", err)
	}

	out := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.ID < 0 || strings.TrimSpace(e.Summary) == "" {
			continue
		}
		out[e.ID] = e.Summary
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("response contained no usable summaries")
	}
	return out, nil
}

// trimToWords cuts overly long output at a sentence boundary where possible.
func trimToWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	cut := strings.Join(words[:limit], " ")
	if idx := strings.LastIndexByte(cut, '.'); idx > len(cut)/2 {
		return cut[:idx+1]
	}
	return cut + "..."
}
