// Package fetch retrieves raw candidate items from content sources.
// Individual query failures are swallowed and logged; an all-empty result
// is a valid outcome, never an error.
package fetch

import (
	"context"
	"sync"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/logger"
)

// Source turns a time window and query terms into candidate items.
type Source interface {
	Name() string
	Fetch(ctx context.Context, window feed.Window, queries []string) ([]feed.CandidateItem, error)
}

// All runs every source and concatenates their results. A failing source
// contributes nothing; the fetch as a whole still succeeds.
func All(ctx context.Context, sources []Source, window feed.Window, queries []string) []feed.CandidateItem {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out []feed.CandidateItem
	)

	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			items, err := src.Fetch(ctx, window, queries)
			if err != nil {
				logger.Warn("source fetch failed", "source", src.Name(), "error", err)
				return
			}
			mu.Lock()
			out = append(out, items...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	logger.Info("fetch complete", "sources", len(sources), "items", len(out))
	return out
}

// runBounded executes one job per input with at most workers in flight,
// collecting results in completion order. Deduplication downstream makes
// the ordering safe.
func runBounded[T any](ctx context.Context, inputs []string, workers int, job func(ctx context.Context, in string) []T) []T {
	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out []T
	)

	for _, in := range inputs {
		wg.Add(1)
		go func(in string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			results := job(ctx, in)
			mu.Lock()
			out = append(out, results...)
			mu.Unlock()
		}(in)
	}
	wg.Wait()
	return out
}
