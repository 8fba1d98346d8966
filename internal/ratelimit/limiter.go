// SPDX-License-Identifier: MIT

// Package ratelimit guards the image-generation endpoints with token buckets.
// QR and avatar rendering are CPU-bound; the global HTTP limit alone would let
// a single client saturate the encoders.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/quillhq/quill/internal/metrics"
)

// Config holds rate limiting configuration.
type Config struct {
	// Global limit across all clients.
	GlobalRate  rate.Limit
	GlobalBurst int

	// Per-IP limits.
	PerIPRate  rate.Limit
	PerIPBurst int

	// Cleanup interval for per-IP limiters.
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GlobalRate:  100,
		GlobalBurst: 200,

		PerIPRate:  10,
		PerIPBurst: 20,

		CleanupInterval: 5 * time.Minute,
	}
}

// Limiter manages rate limiting for the generation endpoints.
type Limiter struct {
	config Config

	global *rate.Limiter
	perIP  map[string]*rate.Limiter
	mu     sync.Mutex

	lastCleanup time.Time
}

// New creates a new rate limiter with the given config.
func New(config Config) *Limiter {
	return &Limiter{
		config:      config,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		perIP:       make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

// Allow checks whether a request from clientIP is within limits.
func (l *Limiter) Allow(clientIP string) bool {
	if !l.global.Allow() {
		metrics.RateLimitExceeded.WithLabelValues("global").Inc()
		return false
	}

	if !l.ipLimiter(clientIP).Allow() {
		metrics.RateLimitExceeded.WithLabelValues("per_ip").Inc()
		return false
	}

	l.maybeCleanup()
	return true
}

func (l *Limiter) ipLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.perIP[ip]
	if !exists {
		limiter = rate.NewLimiter(l.config.PerIPRate, l.config.PerIPBurst)
		l.perIP[ip] = limiter
	}
	return limiter
}

// maybeCleanup drops all per-IP limiters once the interval has passed.
// Recreating a bucket gives the client a fresh burst, which is acceptable at
// these intervals.
func (l *Limiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < l.config.CleanupInterval {
		return
	}
	l.perIP = make(map[string]*rate.Limiter)
	l.lastCleanup = time.Now()
}
