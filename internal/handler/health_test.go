// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/minispace-dev/minispace/internal/cache"
	"github.com/minispace-dev/minispace/internal/store"
)

type fakeBackend struct {
	available bool
	state     string
}

func (f fakeBackend) Available() bool { return f.available }
func (f fakeBackend) State() string   { return f.state }

type fakeThemes []string

func (f fakeThemes) Names() []string { return f }

func decodeHealth(t *testing.T, rr *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var status HealthStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	return status
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		backend    BackendStatus
		themes     ThemeLister
		wantCode   int
		wantStatus string
	}{
		{"all healthy", fakeBackend{true, "closed"}, fakeThemes{"altay"}, http.StatusOK, statusHealthy},
		{"breaker open", fakeBackend{false, "open"}, fakeThemes{"altay"}, http.StatusOK, statusDegraded},
		{"no backend", nil, fakeThemes{"altay"}, http.StatusOK, statusHealthy},
		{"no themes", fakeBackend{true, "closed"}, fakeThemes{}, http.StatusServiceUnavailable, statusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(nil, tt.backend, tt.themes, false)
			rr := httptest.NewRecorder()
			h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.wantCode {
				t.Errorf("status code = %d; want %d", rr.Code, tt.wantCode)
			}
			status := decodeHealth(t, rr)
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q; want %q", status.Status, tt.wantStatus)
			}
			if status.System != nil {
				t.Error("system info should not be exposed outside development")
			}
		})
	}
}

func TestHealth_Database(t *testing.T) {
	ctx := context.Background()
	cfg := store.DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "health.db")
	db, err := store.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}

	h := NewHealthHandler(db, fakeBackend{true, "closed"}, fakeThemes{"altay"}, false)

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := decodeHealth(t, rr).Checks["database"].Status; got != statusHealthy {
		t.Errorf("database check = %q; want %q", got, statusHealthy)
	}

	_ = db.Close()

	rr = httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	check := decodeHealth(t, rr).Checks["database"]
	if check.Status != statusDegraded {
		t.Errorf("closed database check = %q; want %q", check.Status, statusDegraded)
	}
	if check.Message != "database unreachable" {
		t.Errorf("closed database message = %q; want generic message", check.Message)
	}
}

func TestHealth_Verbose(t *testing.T) {
	tests := []struct {
		name       string
		isDev      bool
		target     string
		wantSystem bool
	}{
		{"dev verbose", true, "/health?verbose=true", true},
		{"dev plain", true, "/health", false},
		{"production verbose", false, "/health?verbose=true", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(nil, nil, fakeThemes{"altay"}, tt.isDev)
			rr := httptest.NewRecorder()
			h.Health(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if got := decodeHealth(t, rr).System != nil; got != tt.wantSystem {
				t.Errorf("system info present = %v; want %v", got, tt.wantSystem)
			}
		})
	}
}

type fakeCache cache.Stats

func (f fakeCache) Stats() cache.Stats { return cache.Stats(f) }

func TestHealth_VerboseCacheStats(t *testing.T) {
	tests := []struct {
		name      string
		isDev     bool
		target    string
		wantCache bool
	}{
		{"dev verbose", true, "/health?verbose=true", true},
		{"dev plain", true, "/health", false},
		{"production verbose", false, "/health?verbose=true", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(nil, nil, fakeThemes{"altay"}, tt.isDev)
			h.SetCache(cache.BackendMemory, fakeCache{Hits: 3, Misses: 1, Sets: 1, Items: 1})
			rr := httptest.NewRecorder()
			h.Health(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			got := decodeHealth(t, rr).Cache
			if (got != nil) != tt.wantCache {
				t.Fatalf("cache info present = %v; want %v", got != nil, tt.wantCache)
			}
			if got == nil {
				return
			}
			if got.Backend != cache.BackendMemory {
				t.Errorf("Backend = %q; want %q", got.Backend, cache.BackendMemory)
			}
			if got.Hits != 3 || got.Misses != 1 || got.Items != 1 {
				t.Errorf("Stats = %+v; want hits 3, misses 1, items 1", got.Stats)
			}
			if got.HitRate != "75.0%" {
				t.Errorf("HitRate = %q; want %q", got.HitRate, "75.0%")
			}
		})
	}
}

func TestHealth_VerboseWithoutCache(t *testing.T) {
	h := NewHealthHandler(nil, nil, fakeThemes{"altay"}, true)
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil))

	if got := decodeHealth(t, rr).Cache; got != nil {
		t.Errorf("Cache = %+v; want nil when caching is disabled", got)
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		themes   ThemeLister
		backend  BackendStatus
		wantCode int
	}{
		{"themes loaded", fakeThemes{"altay"}, fakeBackend{true, "closed"}, http.StatusOK},
		{"themes loaded, backend down", fakeThemes{"altay"}, fakeBackend{false, "open"}, http.StatusOK},
		{"no themes", fakeThemes{}, fakeBackend{true, "closed"}, http.StatusServiceUnavailable},
		{"nil themes", nil, nil, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(nil, tt.backend, tt.themes, false)
			rr := httptest.NewRecorder()
			h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rr.Code != tt.wantCode {
				t.Errorf("status code = %d; want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
