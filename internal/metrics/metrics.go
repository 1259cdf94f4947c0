package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsFetched       int64
	ItemsPublished     int64
	DuplicatesFiltered int64
	RejectedByFilter   int64
	GeneratedSummaries int64
	FallbackSummaries  int64
	CacheHits          int64
	PipelineRuns       int64

	// Timings
	LastRunDuration    time.Duration
	TotalRunDuration   time.Duration
	AverageRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddItemsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) AddItemsPublished(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsPublished += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddRejectedByFilter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectedByFilter += int64(n)
}

func (m *Metrics) AddGeneratedSummaries(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GeneratedSummaries += int64(n)
}

func (m *Metrics) AddFallbackSummaries(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbackSummaries += int64(n)
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PipelineRuns++
	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.PipelineRuns)
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"items_fetched":           m.ItemsFetched,
		"items_published":         m.ItemsPublished,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"rejected_by_filter":      m.RejectedByFilter,
		"generated_summaries":     m.GeneratedSummaries,
		"fallback_summaries":      m.FallbackSummaries,
		"cache_hits":              m.CacheHits,
		"pipeline_runs":           m.PipelineRuns,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
