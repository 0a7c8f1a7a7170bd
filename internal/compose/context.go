// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"github.com/minispace-dev/minispace/internal/model"
	"github.com/minispace-dev/minispace/internal/navigation"
)

// Page types. Each has its own render context variant.
const (
	PageHome   = "home"
	PagePosts  = "posts"
	PagePost   = "post"
	PageCustom = "custom"
)

// DebugInfo is shown by themes and the fallback page outside production.
type DebugInfo struct {
	Host             string
	Username         string
	IsSubdomain      bool
	CurrentPage      string
	BackendAvailable bool
	DemoContent      bool
	Template         string
}

// Base holds the fields shared by every render context.
type Base struct {
	Site        model.TenantSite
	Navigation  navigation.Context
	CustomPages []model.CustomPage
	ThemeID     string
	Debug       *DebugInfo
}

// RenderContext is the data passed to a theme template. The concrete type
// tells which page is being rendered.
type RenderContext interface {
	PageType() string
	base() *Base
	// summary returns the title and HTML body the fallback page can show.
	summary() (title, body string)
}

// HomeContext renders the tenant home page.
type HomeContext struct {
	Base
	Page  *model.Page
	Posts []model.Post
}

func (*HomeContext) PageType() string { return PageHome }
func (c *HomeContext) base() *Base    { return &c.Base }
func (c *HomeContext) summary() (string, string) {
	return pageSummary(c.Page)
}

// PostsContext renders the post listing.
type PostsContext struct {
	Base
	Posts []model.Post
}

func (*PostsContext) PageType() string { return PagePosts }
func (c *PostsContext) base() *Base    { return &c.Base }
func (c *PostsContext) summary() (string, string) {
	return "Posts", ""
}

// PostContext renders a single post.
type PostContext struct {
	Base
	Post *model.Post
}

func (*PostContext) PageType() string { return PagePost }
func (c *PostContext) base() *Base    { return &c.Base }
func (c *PostContext) summary() (string, string) {
	if c.Post == nil {
		return "", ""
	}
	return c.Post.Title, c.Post.Content
}

// CustomPageContext renders any other tenant page.
type CustomPageContext struct {
	Base
	Page *model.Page
}

func (*CustomPageContext) PageType() string { return PageCustom }
func (c *CustomPageContext) base() *Base    { return &c.Base }
func (c *CustomPageContext) summary() (string, string) {
	return pageSummary(c.Page)
}

func pageSummary(p *model.Page) (string, string) {
	if p == nil {
		return "", ""
	}
	return p.Title, p.Content
}
