// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/minispace-dev/minispace/internal/model"
)

// SeedUsername is the tenant created by Seed.
const SeedUsername = "alice"

// Seed creates a sample tenant with a home page, an about page and one post.
// It does nothing when the tenant already exists.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	queries := New(db)

	_, err := queries.GetUser(ctx, SeedUsername)
	if err == nil {
		logger.Info("seed tenant already exists, skipping seed", "username", SeedUsername)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for seed tenant: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := New(tx)
	now := time.Now().UTC().Truncate(time.Second)

	if err := q.CreateUser(ctx, User{
		Username:    SeedUsername,
		DisplayName: "Alice Example",
		Bio:         "Writes about small web tools.",
		Email:       "alice@example.com",
		ThemeID:     "aurora",
		SocialLinks: `[{"name":"GitHub","url":"https://github.com/alice"}]`,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return fmt.Errorf("creating seed tenant: %w", err)
	}

	pages := []Page{
		{
			Slug:          model.SlugHome,
			Title:         "Welcome",
			Description:   "Alice's corner of the web.",
			Content:       "Hi, I'm **Alice**. This is my Minispace.",
			ContentFormat: model.ContentFormatMarkdown,
		},
		{
			Slug:          model.SlugAbout,
			Title:         "About",
			Content:       "<p>I build things for the web.</p>",
			ContentFormat: model.ContentFormatHTML,
		},
	}
	for _, p := range pages {
		p.Username = SeedUsername
		p.Published = true
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := q.CreatePage(ctx, p); err != nil {
			return fmt.Errorf("creating seed page %s: %w", p.Slug, err)
		}
	}

	if err := q.CreatePost(ctx, Post{
		Username:      SeedUsername,
		Slug:          "hello",
		Title:         "Hello",
		Content:       "My first post on Minispace.",
		ContentFormat: model.ContentFormatMarkdown,
		Tags:          `["intro"]`,
		Published:     true,
		PublishedAt:   sql.NullTime{Time: now, Valid: true},
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return fmt.Errorf("creating seed post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	logger.Info("created seed tenant", "username", SeedUsername)
	return nil
}
