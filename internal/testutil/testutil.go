// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the Minispace project.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/minispace-dev/minispace/internal/model"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// DiscardLogger creates a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Tenant is the content of one tenant held by Repository.
type Tenant struct {
	Profile     model.UserProfile
	ThemeID     string
	Pages       map[string]model.Page
	CustomPages []model.CustomPage
	Posts       []model.Post
}

// Repository is an in-memory content repository for tests. It counts calls
// and can be told to fail every read.
type Repository struct {
	mu      sync.RWMutex
	tenants map[string]*Tenant

	// Err, when set, is returned by every read.
	Err error

	calls atomic.Int64
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{tenants: make(map[string]*Tenant)}
}

// AddTenant stores a tenant keyed by its profile username.
func (r *Repository) AddTenant(t Tenant) {
	if t.Pages == nil {
		t.Pages = make(map[string]model.Page)
	}
	r.mu.Lock()
	r.tenants[t.Profile.Username] = &t
	r.mu.Unlock()
}

// SetErr changes the injected error.
func (r *Repository) SetErr(err error) {
	r.mu.Lock()
	r.Err = err
	r.mu.Unlock()
}

// Calls returns the number of reads served or failed.
func (r *Repository) Calls() int64 {
	return r.calls.Load()
}

func (r *Repository) tenant(username string) (*Tenant, error) {
	r.calls.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.tenants[username], nil
}

func (r *Repository) GetUserData(_ context.Context, username string) (*model.UserProfile, error) {
	t, err := r.tenant(username)
	if err != nil || t == nil {
		return nil, err
	}
	p := t.Profile
	return &p, nil
}

func (r *Repository) GetUserTheme(_ context.Context, username string) (string, error) {
	t, err := r.tenant(username)
	if err != nil {
		return "", err
	}
	if t == nil || t.ThemeID == "" {
		return "altay", nil
	}
	return t.ThemeID, nil
}

func (r *Repository) GetUserPageData(_ context.Context, username, slug string) (*model.Page, error) {
	t, err := r.tenant(username)
	if err != nil || t == nil {
		return nil, err
	}
	p, ok := t.Pages[slug]
	if !ok || !p.Published {
		return nil, nil
	}
	return &p, nil
}

func (r *Repository) GetUserCustomPages(_ context.Context, username string) ([]model.CustomPage, error) {
	t, err := r.tenant(username)
	if err != nil || t == nil {
		return []model.CustomPage{}, err
	}
	return append([]model.CustomPage{}, t.CustomPages...), nil
}

func (r *Repository) GetPosts(_ context.Context, username string) ([]model.Post, error) {
	t, err := r.tenant(username)
	if err != nil || t == nil {
		return []model.Post{}, err
	}
	posts := append([]model.Post{}, t.Posts...)
	model.SortPostsNewestFirst(posts)
	return posts, nil
}

func (r *Repository) GetPost(_ context.Context, username, slug string) (*model.Post, error) {
	t, err := r.tenant(username)
	if err != nil || t == nil {
		return nil, err
	}
	for _, p := range t.Posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}
