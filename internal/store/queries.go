// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL statements shared by the SQLite and MySQL schemas.
type Queries struct {
	db DBTX
}

// New creates Queries on a database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// User is a row of the users table.
type User struct {
	Username    string
	DisplayName string
	Bio         string
	Email       string
	ThemeID     string
	SocialLinks string // JSON array of {name, url}
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Page is a row of the pages table.
type Page struct {
	ID            int64
	Username      string
	Slug          string
	Title         string
	Description   string
	Content       string
	ContentFormat string
	Published     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Post is a row of the posts table.
type Post struct {
	ID            int64
	Username      string
	Slug          string
	Title         string
	Excerpt       string
	Content       string
	ContentFormat string
	Tags          string // JSON array of strings
	CoverImage    string
	Published     bool
	PublishedAt   sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const getUser = `SELECT username, display_name, bio, email, theme_id, social_links, created_at, updated_at
FROM users WHERE username = ?`

func (q *Queries) GetUser(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUser, username).Scan(
		&u.Username, &u.DisplayName, &u.Bio, &u.Email, &u.ThemeID, &u.SocialLinks, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

const getUserThemeID = `SELECT theme_id FROM users WHERE username = ?`

func (q *Queries) GetUserThemeID(ctx context.Context, username string) (string, error) {
	var themeID string
	err := q.db.QueryRowContext(ctx, getUserThemeID, username).Scan(&themeID)
	return themeID, err
}

const pageColumns = `id, username, slug, title, description, content, content_format, published, created_at, updated_at`

const getPublishedPage = `SELECT ` + pageColumns + `
FROM pages WHERE username = ? AND slug = ? AND published = TRUE`

func (q *Queries) GetPublishedPage(ctx context.Context, username, slug string) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPublishedPage, username, slug))
}

const listPublishedPages = `SELECT ` + pageColumns + `
FROM pages WHERE username = ? AND published = TRUE
ORDER BY created_at, id`

func (q *Queries) ListPublishedPages(ctx context.Context, username string) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedPages, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const postColumns = `id, username, slug, title, excerpt, content, content_format, tags, cover_image, published, published_at, created_at, updated_at`

const listPublishedPosts = `SELECT ` + postColumns + `
FROM posts WHERE username = ? AND published = TRUE
ORDER BY published_at DESC`

func (q *Queries) ListPublishedPosts(ctx context.Context, username string) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedPosts, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getPublishedPost = `SELECT ` + postColumns + `
FROM posts WHERE username = ? AND slug = ? AND published = TRUE`

func (q *Queries) GetPublishedPost(ctx context.Context, username, slug string) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPublishedPost, username, slug))
}

const createUser = `INSERT INTO users (username, display_name, bio, email, theme_id, social_links, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, u User) error {
	_, err := q.db.ExecContext(ctx, createUser,
		u.Username, u.DisplayName, u.Bio, u.Email, u.ThemeID, u.SocialLinks, u.CreatedAt, u.UpdatedAt)
	return err
}

const createPage = `INSERT INTO pages (username, slug, title, description, content, content_format, published, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePage(ctx context.Context, p Page) error {
	_, err := q.db.ExecContext(ctx, createPage,
		p.Username, p.Slug, p.Title, p.Description, p.Content, p.ContentFormat, p.Published, p.CreatedAt, p.UpdatedAt)
	return err
}

const createPost = `INSERT INTO posts (username, slug, title, excerpt, content, content_format, tags, cover_image, published, published_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePost(ctx context.Context, p Post) error {
	_, err := q.db.ExecContext(ctx, createPost,
		p.Username, p.Slug, p.Title, p.Excerpt, p.Content, p.ContentFormat, p.Tags, p.CoverImage,
		p.Published, p.PublishedAt, p.CreatedAt, p.UpdatedAt)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(s scanner) (Page, error) {
	var p Page
	err := s.Scan(&p.ID, &p.Username, &p.Slug, &p.Title, &p.Description, &p.Content,
		&p.ContentFormat, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanPost(s scanner) (Post, error) {
	var p Post
	err := s.Scan(&p.ID, &p.Username, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.ContentFormat,
		&p.Tags, &p.CoverImage, &p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
