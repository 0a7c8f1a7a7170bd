// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/minispace-dev/minispace/internal/cache"
	"github.com/minispace-dev/minispace/internal/version"
)

// Health check statuses.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// BackendStatus reports the state of the content backend.
type BackendStatus interface {
	Available() bool
	State() string
}

// ThemeLister lists loaded themes.
type ThemeLister interface {
	Names() []string
}

// CacheStats exposes tenant cache counters.
type CacheStats interface {
	Stats() cache.Stats
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db           *sql.DB
	backend      BackendStatus
	themes       ThemeLister
	cache        CacheStats
	cacheBackend string
	isDev        bool
	startTime    time.Time
}

// NewHealthHandler creates a new health handler. db may be nil when the
// content backend is disabled.
func NewHealthHandler(db *sql.DB, backend BackendStatus, themes ThemeLister, isDev bool) *HealthHandler {
	return &HealthHandler{
		db:        db,
		backend:   backend,
		themes:    themes,
		isDev:     isDev,
		startTime: time.Now(),
	}
}

// SetCache adds the tenant cache to the verbose health output.
func (h *HealthHandler) SetCache(backend string, c CacheStats) {
	h.cacheBackend = backend
	h.cache = c
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   version.Info     `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
	Cache     *CacheInfo       `json:"cache,omitempty"`
}

// CacheInfo reports tenant cache usage.
type CacheInfo struct {
	Backend string `json:"backend"`
	cache.Stats
	HitRate string `json:"hit_rate"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. An unavailable backend degrades the service
// but tenant sites keep rendering with demo content.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.checkDatabase(r.Context()),
		"backend":  h.checkBackend(),
		"themes":   h.checkThemes(),
	}

	overall := statusHealthy
	code := http.StatusOK
	for _, c := range checks {
		switch c.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
			code = http.StatusServiceUnavailable
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Get(),
		Checks:    checks,
	}
	if h.isDev && r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
		if h.cache != nil {
			st := h.cache.Stats()
			status.Cache = &CacheInfo{
				Backend: h.cacheBackend,
				Stats:   st,
				HitRate: fmt.Sprintf("%.1f%%", st.HitRate()),
			}
		}
	}

	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. The server is ready once a theme is
// loaded, since demo content covers a missing backend.
func (h *HealthHandler) Readiness(w http.ResponseWriter, _ *http.Request) {
	if h.checkThemes().Status != statusHealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: statusDisabled}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		msg := "database unreachable"
		if h.isDev {
			msg = err.Error()
		}
		return Check{Status: statusDegraded, Message: msg}
	}
	return Check{Status: statusHealthy, Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkBackend() Check {
	if h.backend == nil {
		return Check{Status: statusDisabled}
	}
	if !h.backend.Available() {
		return Check{Status: statusDegraded, Message: "serving demo content, breaker " + h.backend.State()}
	}
	return Check{Status: statusHealthy, Message: "breaker " + h.backend.State()}
}

func (h *HealthHandler) checkThemes() Check {
	if h.themes == nil || len(h.themes.Names()) == 0 {
		return Check{Status: statusUnhealthy, Message: "no themes loaded"}
	}
	return Check{Status: statusHealthy, Message: fmt.Sprintf("%d themes loaded", len(h.themes.Names()))}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
