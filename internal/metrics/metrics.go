// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render outcomes.
const (
	OutcomeReal     = "real"
	OutcomeDemo     = "demo"
	OutcomeFallback = "fallback"
	OutcomeNotFound = "not_found"
)

var (
	// RendersTotal counts tenant renders by page type and outcome.
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minispace_renders_total",
			Help: "Total number of tenant page renders",
		},
		[]string{"page_type", "outcome"}, // outcome: "real", "demo", "fallback", "not_found"
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minispace_render_duration_seconds",
			Help:    "Duration of tenant page composition in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"page_type"},
	)

	BackendBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "minispace_backend_breaker_state",
			Help: "Content backend circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	BackendBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minispace_backend_breaker_transitions_total",
			Help: "Total number of content backend breaker state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	CacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minispace_content_cache_total",
			Help: "Tenant content cache lookups by result",
		},
		[]string{"result"}, // result: "hit", "miss"
	)
)

// RecordRender records one composed tenant render.
func RecordRender(pageType, outcome string, duration time.Duration) {
	RendersTotal.WithLabelValues(pageType, outcome).Inc()
	RenderDuration.WithLabelValues(pageType).Observe(duration.Seconds())
}

// RecordCache records a content cache lookup.
func RecordCache(hit bool) {
	if hit {
		CacheResults.WithLabelValues("hit").Inc()
		return
	}
	CacheResults.WithLabelValues("miss").Inc()
}
