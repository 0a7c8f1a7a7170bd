// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content defines the tenant content repository consumed by the
// page composition layer, plus decorators for availability and caching.
package content

import (
	"context"
	"errors"

	"github.com/minispace-dev/minispace/internal/model"
)

// ErrUnavailable reports that the content backend cannot serve reads,
// either because it is not configured or because its breaker is open.
var ErrUnavailable = errors.New("content backend unavailable")

// Repository reads tenant content keyed by username.
// A missing record is returned as nil (or an empty slice) with a nil error.
type Repository interface {
	GetUserData(ctx context.Context, username string) (*model.UserProfile, error)
	// GetUserTheme never returns an empty theme id.
	GetUserTheme(ctx context.Context, username string) (string, error)
	// GetUserPageData returns only published pages.
	GetUserPageData(ctx context.Context, username, slug string) (*model.Page, error)
	// GetUserCustomPages lists published pages the tenant's theme can render.
	GetUserCustomPages(ctx context.Context, username string) ([]model.CustomPage, error)
	// GetPosts returns published posts, newest first.
	GetPosts(ctx context.Context, username string) ([]model.Post, error)
	GetPost(ctx context.Context, username, slug string) (*model.Post, error)
}

// Source is a Repository that can report whether it is worth calling.
type Source interface {
	Repository
	Available() bool
}
