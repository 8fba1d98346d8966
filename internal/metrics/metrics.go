// SPDX-License-Identifier: MIT

// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QRGenerated counts QR codes rendered, by error-correction level.
	QRGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "qr_generated_total",
			Help:      "Total QR codes rendered",
		},
		[]string{"level"},
	)

	// QRGenerationDuration tracks QR rendering latency.
	QRGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "quill",
			Name:      "qr_generation_duration_seconds",
			Help:      "QR rendering latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// AvatarGenerated counts avatars rendered.
	AvatarGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "avatar_generated_total",
			Help:      "Total initials avatars rendered",
		},
	)

	// ImageCacheLookups counts generated-image cache lookups, by result.
	ImageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "image_cache_lookups_total",
			Help:      "Generated-image cache lookups",
		},
		[]string{"kind", "result"},
	)

	// PostsIndexed reports the number of posts in the index after the last scan.
	PostsIndexed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quill",
			Name:      "posts_indexed",
			Help:      "Posts currently in the index",
		},
	)

	// PostIndexRuns counts index scans, by outcome.
	PostIndexRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "post_index_runs_total",
			Help:      "Post index scans",
		},
		[]string{"outcome"},
	)

	// ConstraintEvaluations counts routing-constraint decisions, by outcome.
	ConstraintEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "constraint_evaluations_total",
			Help:      "Role constraint evaluations",
		},
		[]string{"outcome"},
	)

	// RateLimitExceeded counts rate-limit rejections on generation endpoints.
	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "ratelimit_exceeded_total",
			Help:      "Total rate limit rejections",
		},
		[]string{"limit_type"},
	)
)
