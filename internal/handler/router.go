// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minispace-dev/minispace/internal/middleware"
	"github.com/minispace-dev/minispace/internal/navigation"
)

// Route patterns.
const (
	RouteHealth      = "/health"
	RouteHealthLive  = "/health/live"
	RouteHealthReady = "/health/ready"
	RouteMetrics     = "/metrics"
	RouteThemeStatic = "/themes/{theme}/static/*"
	RouteTenant      = "/{username}"
	RouteTenantPosts = "/{username}/posts"
	RouteTenantPost  = "/{username}/post/{slug}"
	RouteTenantAny   = "/{username}/*"
)

// RouterConfig holds the dependencies of the HTTP router.
type RouterConfig struct {
	Frontend *FrontendHandler
	Health   *HealthHandler
	Themes   *ThemeHandler
	Resolver *navigation.Resolver
	Logger   *slog.Logger

	IsDev bool

	// RequestTimeout defaults to 30 seconds.
	RequestTimeout time.Duration
	// RateLimitRPS disables per-client rate limiting when zero.
	RateLimitRPS   float64
	RateLimitBurst int
	// StaticMaxAge is the Cache-Control max-age of theme assets.
	StaticMaxAge time.Duration
	// AccessLog enables the chi request logger.
	AccessLog bool
}

// NewRouter builds the server's router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.StaticMaxAge <= 0 {
		cfg.StaticMaxAge = 24 * time.Hour
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Compress(1024))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDev)))
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger,
			RouteHealth, RouteMetrics, "/themes/")
		r.Use(limiter.Middleware)
	}
	r.Use(middleware.Subdomain(cfg.Resolver))

	if cfg.Health != nil {
		r.Get(RouteHealth, cfg.Health.Health)
		r.Get(RouteHealthLive, cfg.Health.Liveness)
		r.Get(RouteHealthReady, cfg.Health.Readiness)
	}
	r.Handle(RouteMetrics, promhttp.Handler())

	if cfg.Themes != nil {
		r.With(middleware.StaticCache(cfg.StaticMaxAge)).Get(RouteThemeStatic, cfg.Themes.Static)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Get(RouteTenant, cfg.Frontend.Page)
		r.Get(RouteTenantPosts, cfg.Frontend.Page)
		r.Get(RouteTenantPost, cfg.Frontend.Post)
		r.Get(RouteTenantAny, cfg.Frontend.Page)
	})

	r.NotFound(cfg.Frontend.NotFound)

	return r
}
