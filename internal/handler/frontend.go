// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the Minispace server.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/minispace-dev/minispace/internal/compose"
	"github.com/minispace-dev/minispace/internal/navigation"
)

// reservedUsernames collide with server routes and never name a tenant.
var reservedUsernames = map[string]bool{
	"health":  true,
	"metrics": true,
	"themes":  true,
	"static":  true,
}

// Renderer composes tenant pages.
type Renderer interface {
	RenderTenantPage(ctx context.Context, username, path string, meta navigation.RequestMeta) (*compose.Result, error)
	RenderTenantPost(ctx context.Context, username, slug string, meta navigation.RequestMeta) (*compose.Result, error)
}

// FrontendHandler serves tenant sites. It only adapts HTTP requests to the
// composer.
type FrontendHandler struct {
	composer Renderer
	isDev    bool
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(composer Renderer, isDev bool, logger *slog.Logger) *FrontendHandler {
	return &FrontendHandler{
		composer: composer,
		isDev:    isDev,
		logger:   logger,
	}
}

// Page handles /{username}, /{username}/posts and /{username}/* on the bare
// domain, and every tenant path on a tenant subdomain.
func (h *FrontendHandler) Page(w http.ResponseWriter, r *http.Request) {
	username, ok := h.username(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx := navigation.WithTenant(r.Context(), username)
	res, err := h.composer.RenderTenantPage(ctx, username, clientPath(r), requestMeta(r))
	h.write(w, r.WithContext(ctx), username, res, err)
}

// Post handles /{username}/post/{slug}.
func (h *FrontendHandler) Post(w http.ResponseWriter, r *http.Request) {
	username, ok := h.username(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx := navigation.WithTenant(r.Context(), username)
	res, err := h.composer.RenderTenantPost(ctx, username, chi.URLParam(r, "slug"), requestMeta(r))
	h.write(w, r.WithContext(ctx), username, res, err)
}

// NotFound renders the plain 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	renderNotFound(w)
}

func (h *FrontendHandler) username(r *http.Request) (string, bool) {
	username := strings.ToLower(chi.URLParam(r, "username"))
	if username == "" || reservedUsernames[username] {
		return "", false
	}
	return username, true
}

func (h *FrontendHandler) write(w http.ResponseWriter, r *http.Request, username string, res *compose.Result, err error) {
	if errors.Is(err, compose.ErrNotFound) {
		h.logger.DebugContext(r.Context(), "tenant page not found", "path", r.URL.Path, "error", err)
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compose tenant page", "path", r.URL.Path, "error", err)
		renderError(w, http.StatusInternalServerError)
		return
	}

	if h.isDev {
		w.Header().Set("X-Minispace-Username", username)
		w.Header().Set("X-Minispace-Theme", res.ThemeID)
		if res.IsDemo {
			w.Header().Set("X-Minispace-Demo", "true")
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.HTML))
}

// clientPath is the path the visitor requested, before any subdomain rewrite.
func clientPath(r *http.Request) string {
	if p, ok := navigation.OriginalPath(r.Context()); ok {
		return p
	}
	return r.URL.Path
}

func requestMeta(r *http.Request) navigation.RequestMeta {
	host := r.Host
	if host == "" {
		host = "unknown"
	}
	return navigation.RequestMeta{Host: host}
}
