// Package ratelimit tracks the daily budget of generation-API calls.
// An exhausted budget degrades summaries to extractive fallbacks instead
// of failing the pipeline.
package ratelimit

import (
	"sync"
	"time"

	"github.com/deusflow/ainews/internal/logger"
)

type Limiter struct {
	mu        sync.Mutex
	count     int
	max       int // 0 = unlimited
	resetTime time.Time
}

func New(maxPerDay int) *Limiter {
	return &Limiter{
		max:       maxPerDay,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether another generation call fits the daily budget.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if l.max > 0 && l.count >= l.max {
		logger.Warn("generation rate limit reached", "used", l.count, "max", l.max)
		return false
	}
	return true
}

// Record counts one completed generation call.
func (l *Limiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	l.count++
}

// Used returns the calls consumed in the current window.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	return l.count
}

func (l *Limiter) checkReset() {
	if time.Now().After(l.resetTime) {
		l.count = 0
		l.resetTime = time.Now().Add(24 * time.Hour)
	}
}
