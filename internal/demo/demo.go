// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package demo provides canned tenant content used when the content
// backend is unavailable or the server runs in demo mode.
package demo

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minispace-dev/minispace/internal/markdown"
	"github.com/minispace-dev/minispace/internal/model"
	"github.com/minispace-dev/minispace/internal/util"
)

//go:embed content/*.md
var contentFS embed.FS

// Document kinds in front matter.
const (
	KindPage = "page"
	KindPost = "post"
)

// PagePosts is the logical page listing all posts.
const PagePosts = "posts"

// epoch dates documents without a date in front matter.
var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// catalog is the fixed set of demo page slugs, in navigation order.
var catalog = []string{model.SlugHome, model.SlugAbout, model.SlugProjects, model.SlugContact}

// Content is what the demo provider serves for one request.
type Content struct {
	Site        model.TenantSite
	ThemeID     string
	Page        *model.Page
	Posts       []model.Post
	CustomPages []model.CustomPage
}

// Provider serves demo content. It is read-only after construction and
// safe for concurrent use.
type Provider struct {
	themeID string
	pages   map[string]model.Page
	posts   []model.Post
}

// New loads the embedded demo documents. Demo sites render with themeID.
func New(md *markdown.Renderer, themeID string) (*Provider, error) {
	return load(contentFS, md, themeID)
}

func load(fsys fs.FS, md *markdown.Renderer, themeID string) (*Provider, error) {
	files, err := fs.Glob(fsys, "content/*.md")
	if err != nil {
		return nil, fmt.Errorf("listing demo content: %w", err)
	}

	p := &Provider{themeID: themeID, pages: make(map[string]model.Page)}
	for _, name := range files {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		doc, err := md.ParseDocument(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}

		slug := doc.Slug
		if slug == "" {
			slug = strings.TrimSuffix(path.Base(name), ".md")
		}

		date := doc.Date
		if date.IsZero() {
			date = epoch
		}

		switch doc.Kind {
		case KindPage:
			p.pages[slug] = model.Page{
				Slug:        slug,
				Title:       doc.Title,
				Content:     doc.HTML,
				Description: doc.Description,
				CreatedAt:   date,
				UpdatedAt:   date,
				Published:   true,
			}
		case KindPost:
			excerpt := doc.Excerpt
			if excerpt == "" {
				excerpt = util.Excerpt(doc.HTML, util.DefaultExcerptLength)
			}
			tags := doc.Tags
			if tags == nil {
				tags = []string{}
			}
			p.posts = append(p.posts, model.Post{
				Title:       doc.Title,
				Slug:        slug,
				Excerpt:     excerpt,
				Content:     doc.HTML,
				PublishedAt: date,
				Tags:        tags,
				CoverImage:  doc.CoverImage,
			})
		default:
			return nil, fmt.Errorf("%s: unknown kind %q", name, doc.Kind)
		}
	}

	for _, slug := range catalog {
		if _, ok := p.pages[slug]; !ok {
			return nil, fmt.Errorf("demo page %q missing", slug)
		}
	}

	sort.Slice(p.posts, func(i, j int) bool {
		if p.posts[i].PublishedAt.Equal(p.posts[j].PublishedAt) {
			return p.posts[i].Slug < p.posts[j].Slug
		}
		return p.posts[i].PublishedAt.After(p.posts[j].PublishedAt)
	})
	return p, nil
}

// ThemeID returns the theme demo sites render with.
func (p *Provider) ThemeID() string {
	return p.themeID
}

// Site returns demo site metadata for username.
func (p *Provider) Site(username string, isSubdomain bool) model.TenantSite {
	return model.TenantSite{
		Title:       "Demo Site",
		Description: "Sample content shown while this site's content is unavailable.",
		Email:       "hello@example.com",
		SocialLinks: []model.SocialLink{
			{Name: "GitHub", URL: "https://github.com/minispace-dev"},
			{Name: "Mastodon", URL: "https://mastodon.social/@minispace"},
		},
		Username:      username,
		IsSubdomain:   isSubdomain,
		IsDemoContent: true,
	}
}

// Page returns a copy of a catalog page.
func (p *Provider) Page(slug string) (*model.Page, bool) {
	page, ok := p.pages[slug]
	if !ok {
		return nil, false
	}
	return &page, true
}

// Posts returns the demo posts, newest first.
func (p *Provider) Posts() []model.Post {
	out := make([]model.Post, len(p.posts))
	copy(out, p.posts)
	for i := range out {
		out[i].Tags = append([]string(nil), out[i].Tags...)
	}
	return out
}

// Post returns a copy of a demo post.
func (p *Provider) Post(slug string) (*model.Post, bool) {
	for _, post := range p.posts {
		if post.Slug == slug {
			post.Tags = append([]string{}, post.Tags...)
			return &post, true
		}
	}
	return nil, false
}

// CustomPages lists the demo pages shown in navigation.
func (p *Provider) CustomPages() []model.CustomPage {
	pages := make([]model.CustomPage, 0, len(catalog)-1)
	for _, slug := range catalog[1:] {
		pages = append(pages, model.CustomPage{Slug: slug, Title: p.pages[slug].Title})
	}
	return pages
}

// Lookup returns the demo content for currentPage, or false when the page
// is outside the demo catalog. An empty currentPage means home.
func (p *Provider) Lookup(username string, isSubdomain bool, currentPage string) (*Content, bool) {
	if currentPage == "" {
		currentPage = model.SlugHome
	}

	c := &Content{
		Site:        p.Site(username, isSubdomain),
		ThemeID:     p.themeID,
		CustomPages: p.CustomPages(),
	}

	switch currentPage {
	case PagePosts:
		c.Posts = p.Posts()
		return c, true
	case model.SlugHome:
		c.Posts = p.Posts()
	}

	page, ok := p.Page(currentPage)
	if !ok {
		return nil, false
	}
	c.Page = page
	return c, true
}

// Catalog returns the demo page slugs.
func Catalog() []string {
	return append([]string(nil), catalog...)
}
