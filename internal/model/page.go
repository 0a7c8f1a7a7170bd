// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the read-only projections the site pipeline renders.
package model

import "time"

// Content formats stored alongside page and post bodies.
const (
	ContentFormatHTML     = "html"
	ContentFormatMarkdown = "markdown"
)

// Page slugs with special meaning.
const (
	SlugHome     = "home"
	SlugAbout    = "about"
	SlugProjects = "projects"
	SlugContact  = "contact"
	SlugResume   = "resume"
	SlugBlog     = "blog"
)

// standardSlugs are listed in site navigation regardless of the active theme.
var standardSlugs = map[string]bool{
	SlugAbout:    true,
	SlugProjects: true,
	SlugContact:  true,
	SlugResume:   true,
	SlugBlog:     true,
}

// IsStandardSlug reports whether slug is one of the standard page slugs.
func IsStandardSlug(slug string) bool {
	return standardSlugs[slug]
}

// Page is a tenant page as served to visitors. Content is sanitized HTML.
type Page struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Published   bool      `json:"published"`
}

// CustomPage is a navigation entry for a tenant page.
type CustomPage struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}
