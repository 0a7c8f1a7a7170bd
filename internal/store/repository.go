// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minispace-dev/minispace/internal/content"
	"github.com/minispace-dev/minispace/internal/markdown"
	"github.com/minispace-dev/minispace/internal/model"
	"github.com/minispace-dev/minispace/internal/theme"
	"github.com/minispace-dev/minispace/internal/util"
)

// ThemeCatalog answers which themes exist and what pages they render.
type ThemeCatalog interface {
	HasTheme(id string) bool
	Capabilities(id string) theme.Capabilities
}

// Repository implements content.Repository on the SQL schema.
type Repository struct {
	q            *Queries
	themes       ThemeCatalog
	defaultTheme string
	md           *markdown.Renderer
	logger       *slog.Logger
}

// NewRepository creates a repository. Tenants whose stored theme is empty
// or unknown to themes get defaultTheme.
func NewRepository(db DBTX, themes ThemeCatalog, defaultTheme string, md *markdown.Renderer, logger *slog.Logger) *Repository {
	return &Repository{
		q:            New(db),
		themes:       themes,
		defaultTheme: defaultTheme,
		md:           md,
		logger:       logger,
	}
}

// GetUserData returns the tenant profile, or nil if the user does not exist.
func (r *Repository) GetUserData(ctx context.Context, username string) (*model.UserProfile, error) {
	u, err := r.q.GetUser(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", username, err)
	}

	return &model.UserProfile{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		Email:       u.Email,
		ThemeID:     r.themeOrDefault(u.ThemeID),
		SocialLinks: r.decodeSocialLinks(u.Username, u.SocialLinks),
		CreatedAt:   u.CreatedAt,
	}, nil
}

// GetUserTheme returns the tenant's theme id, falling back to the default.
func (r *Repository) GetUserTheme(ctx context.Context, username string) (string, error) {
	themeID, err := r.q.GetUserThemeID(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaultTheme, nil
	}
	if err != nil {
		return "", fmt.Errorf("getting theme of %s: %w", username, err)
	}
	return r.themeOrDefault(themeID), nil
}

func (r *Repository) themeOrDefault(themeID string) string {
	if themeID == "" || (r.themes != nil && !r.themes.HasTheme(themeID)) {
		return r.defaultTheme
	}
	return themeID
}

// GetUserPageData returns a published page, or nil.
func (r *Repository) GetUserPageData(ctx context.Context, username, slug string) (*model.Page, error) {
	p, err := r.q.GetPublishedPage(ctx, username, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting page %s/%s: %w", username, slug, err)
	}

	html, err := r.renderContent(p.Content, p.ContentFormat)
	if err != nil {
		return nil, fmt.Errorf("rendering page %s/%s: %w", username, slug, err)
	}

	return &model.Page{
		Slug:        p.Slug,
		Title:       p.Title,
		Content:     html,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Published:   p.Published,
	}, nil
}

// GetUserCustomPages lists published pages that the tenant's theme can
// render, leaving out the home, posts and post slugs. Standard slugs skip
// the template check.
func (r *Repository) GetUserCustomPages(ctx context.Context, username string) ([]model.CustomPage, error) {
	themeID, err := r.GetUserTheme(ctx, username)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.ListPublishedPages(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("listing pages of %s: %w", username, err)
	}

	var caps theme.Capabilities = theme.TemplateSet{}
	if r.themes != nil {
		caps = r.themes.Capabilities(themeID)
	}

	pages := make([]model.CustomPage, 0, len(rows))
	for _, p := range rows {
		switch p.Slug {
		case theme.TemplateHome, theme.TemplatePosts, theme.TemplatePost:
			// served by the built-in routes, never as custom pages
			continue
		}
		if !model.IsStandardSlug(p.Slug) {
			if _, ok := theme.ResolveTemplate(caps, p.Slug); !ok {
				continue
			}
		}
		pages = append(pages, model.CustomPage{Slug: p.Slug, Title: p.Title})
	}
	return pages, nil
}

// GetPosts returns published posts, newest first.
func (r *Repository) GetPosts(ctx context.Context, username string) ([]model.Post, error) {
	rows, err := r.q.ListPublishedPosts(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("listing posts of %s: %w", username, err)
	}

	posts := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		p, err := r.toPost(row)
		if err != nil {
			return nil, fmt.Errorf("rendering post %s/%s: %w", username, row.Slug, err)
		}
		posts = append(posts, p)
	}

	model.SortPostsNewestFirst(posts)
	return posts, nil
}

// GetPost returns one published post, or nil.
func (r *Repository) GetPost(ctx context.Context, username, slug string) (*model.Post, error) {
	row, err := r.q.GetPublishedPost(ctx, username, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %s/%s: %w", username, slug, err)
	}

	p, err := r.toPost(row)
	if err != nil {
		return nil, fmt.Errorf("rendering post %s/%s: %w", username, slug, err)
	}
	return &p, nil
}

func (r *Repository) toPost(row Post) (model.Post, error) {
	html, err := r.renderContent(row.Content, row.ContentFormat)
	if err != nil {
		return model.Post{}, err
	}

	excerpt := row.Excerpt
	if excerpt == "" {
		excerpt = util.Excerpt(html, util.DefaultExcerptLength)
	}

	publishedAt := row.CreatedAt
	if row.PublishedAt.Valid {
		publishedAt = row.PublishedAt.Time
	}

	tags := []string{}
	if row.Tags != "" {
		if err := json.Unmarshal([]byte(row.Tags), &tags); err != nil {
			r.logger.Warn("ignoring malformed post tags", "username", row.Username, "slug", row.Slug, "error", err)
			tags = []string{}
		}
	}

	return model.Post{
		Title:       row.Title,
		Slug:        row.Slug,
		Excerpt:     excerpt,
		Content:     html,
		PublishedAt: publishedAt,
		Tags:        tags,
		CoverImage:  row.CoverImage,
	}, nil
}

func (r *Repository) renderContent(raw, format string) (string, error) {
	if format == model.ContentFormatMarkdown {
		return r.md.ToHTML([]byte(raw))
	}
	return r.md.Sanitize(raw), nil
}

func (r *Repository) decodeSocialLinks(username, raw string) []model.SocialLink {
	links := []model.SocialLink{}
	if raw == "" {
		return links
	}
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		r.logger.Warn("ignoring malformed social links", "username", username, "error", err)
		return []model.SocialLink{}
	}
	return links
}

var _ content.Repository = (*Repository)(nil)
