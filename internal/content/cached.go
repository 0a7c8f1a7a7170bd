// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"time"

	"github.com/minispace-dev/minispace/internal/cache"
	"github.com/minispace-dev/minispace/internal/metrics"
	"github.com/minispace-dev/minispace/internal/model"
)

// CachedRepository is a read-through cache in front of a Source.
// Not-found results are cached too, so a tenant's writes become visible
// once the TTL expires.
type CachedRepository struct {
	src Source

	users       *cache.TypedCache[*model.UserProfile]
	themes      *cache.TypedCache[string]
	pages       *cache.TypedCache[*model.Page]
	customPages *cache.TypedCache[[]model.CustomPage]
	posts       *cache.TypedCache[[]model.Post]
	post        *cache.TypedCache[*model.Post]
}

// NewCachedRepository wraps src with a cache whose entries live for ttl.
func NewCachedRepository(src Source, c cache.Cacher, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		src:         src,
		users:       cache.NewTypedCache[*model.UserProfile](c, ttl),
		themes:      cache.NewTypedCache[string](c, ttl),
		pages:       cache.NewTypedCache[*model.Page](c, ttl),
		customPages: cache.NewTypedCache[[]model.CustomPage](c, ttl),
		posts:       cache.NewTypedCache[[]model.Post](c, ttl),
		post:        cache.NewTypedCache[*model.Post](c, ttl),
	}
}

func tenantPrefix(username string) string {
	return "tenant:" + username + ":"
}

func key(username, op string, slug ...string) string {
	k := tenantPrefix(username) + op
	for _, s := range slug {
		k += ":" + s
	}
	return k
}

func load[T any](ctx context.Context, tc *cache.TypedCache[T], k string, fn func(context.Context) (T, error)) (T, error) {
	v, hit, err := tc.GetOrLoad(ctx, k, fn)
	if err == nil {
		metrics.RecordCache(hit)
	}
	return v, err
}

// Available reports the wrapped source's availability.
func (c *CachedRepository) Available() bool {
	return c.src.Available()
}

func (c *CachedRepository) GetUserData(ctx context.Context, username string) (*model.UserProfile, error) {
	return load(ctx, c.users, key(username, "user"), func(ctx context.Context) (*model.UserProfile, error) {
		return c.src.GetUserData(ctx, username)
	})
}

func (c *CachedRepository) GetUserTheme(ctx context.Context, username string) (string, error) {
	return load(ctx, c.themes, key(username, "theme"), func(ctx context.Context) (string, error) {
		return c.src.GetUserTheme(ctx, username)
	})
}

func (c *CachedRepository) GetUserPageData(ctx context.Context, username, slug string) (*model.Page, error) {
	return load(ctx, c.pages, key(username, "page", slug), func(ctx context.Context) (*model.Page, error) {
		return c.src.GetUserPageData(ctx, username, slug)
	})
}

func (c *CachedRepository) GetUserCustomPages(ctx context.Context, username string) ([]model.CustomPage, error) {
	return load(ctx, c.customPages, key(username, "custom-pages"), func(ctx context.Context) ([]model.CustomPage, error) {
		return c.src.GetUserCustomPages(ctx, username)
	})
}

func (c *CachedRepository) GetPosts(ctx context.Context, username string) ([]model.Post, error) {
	return load(ctx, c.posts, key(username, "posts"), func(ctx context.Context) ([]model.Post, error) {
		return c.src.GetPosts(ctx, username)
	})
}

func (c *CachedRepository) GetPost(ctx context.Context, username, slug string) (*model.Post, error) {
	return load(ctx, c.post, key(username, "post", slug), func(ctx context.Context) (*model.Post, error) {
		return c.src.GetPost(ctx, username, slug)
	})
}

var _ Source = (*CachedRepository)(nil)
