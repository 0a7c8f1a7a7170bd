// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package demo

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minispace-dev/minispace/internal/markdown"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(markdown.New(), "altay")
	require.NoError(t, err)
	return p
}

func TestLookup_CatalogComplete(t *testing.T) {
	p := newProvider(t)

	for _, slug := range Catalog() {
		t.Run(slug, func(t *testing.T) {
			c, ok := p.Lookup("bob", false, slug)
			require.True(t, ok, "catalog page %q not served", slug)
			require.NotNil(t, c.Page)

			assert.True(t, c.Site.IsDemoContent)
			assert.Equal(t, "bob", c.Site.Username)
			assert.NotEmpty(t, c.Site.Title)
			assert.NotEmpty(t, c.Site.Description)
			assert.NotEmpty(t, c.Site.Email)
			assert.NotEmpty(t, c.Site.SocialLinks)
			assert.Equal(t, "altay", c.ThemeID)
			assert.NotEmpty(t, c.Page.Title)
			assert.NotEmpty(t, c.Page.Content)
			assert.True(t, c.Page.Published)
		})
	}
}

func TestLookup_Home(t *testing.T) {
	p := newProvider(t)

	c, ok := p.Lookup("bob", true, "")
	require.True(t, ok)
	assert.Equal(t, "home", c.Page.Slug)
	assert.True(t, c.Site.IsSubdomain)
	require.NotEmpty(t, c.Posts)
	assert.Equal(t, "Welcome to Minispace", c.Posts[0].Title)
}

func TestLookup_Posts(t *testing.T) {
	p := newProvider(t)

	c, ok := p.Lookup("bob", false, PagePosts)
	require.True(t, ok)
	assert.Nil(t, c.Page)
	require.Len(t, c.Posts, 3)

	for i := 1; i < len(c.Posts); i++ {
		assert.False(t, c.Posts[i].PublishedAt.After(c.Posts[i-1].PublishedAt),
			"posts not newest first at %d", i)
	}
	for _, post := range c.Posts {
		assert.NotEmpty(t, post.Excerpt, "post %s has no excerpt", post.Slug)
		assert.NotNil(t, post.Tags)
	}
}

func TestLookup_UnknownSlug(t *testing.T) {
	p := newProvider(t)

	for _, slug := range []string{"resume", "now", "post", "welcome-to-minispace"} {
		if _, ok := p.Lookup("bob", false, slug); ok {
			t.Errorf("Lookup(%q) = ok; want not found", slug)
		}
	}
}

func TestPost(t *testing.T) {
	p := newProvider(t)

	post, ok := p.Post("welcome-to-minispace")
	require.True(t, ok)
	assert.Equal(t, "Welcome to Minispace", post.Title)
	assert.Contains(t, post.Content, "<code>username.minispace.dev</code>")

	_, ok = p.Post("missing")
	assert.False(t, ok)
}

func TestCustomPages(t *testing.T) {
	p := newProvider(t)

	var slugs []string
	for _, cp := range p.CustomPages() {
		slugs = append(slugs, cp.Slug)
		assert.NotEmpty(t, cp.Title)
	}
	assert.Equal(t, []string{"about", "projects", "contact"}, slugs)
}

func TestProvider_ReturnsCopies(t *testing.T) {
	p := newProvider(t)

	page, _ := p.Page("about")
	page.Title = "changed"
	again, _ := p.Page("about")
	assert.Equal(t, "About", again.Title)

	posts := p.Posts()
	posts[0].Tags[0] = "changed"
	assert.NotEqual(t, "changed", p.Posts()[0].Tags[0])
}

func TestLoad_Errors(t *testing.T) {
	md := markdown.New()
	page := func(slug string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte("---\nkind: page\nslug: " + slug + "\ntitle: T\n---\nbody\n")}
	}

	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"missing catalog page", fstest.MapFS{
			"content/home.md":  page("home"),
			"content/about.md": page("about"),
		}},
		{"unknown kind", fstest.MapFS{
			"content/x.md": {Data: []byte("---\nkind: note\n---\nbody\n")},
		}},
		{"bad front matter", fstest.MapFS{
			"content/x.md": {Data: []byte("---\nkind: [page\n---\nbody\n")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.fsys, md, "altay")
			assert.Error(t, err)
		})
	}
}

func TestLoad_SlugFromFileNameAndEpoch(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, slug := range catalog {
		fsys["content/"+slug+".md"] = &fstest.MapFile{Data: []byte("---\nkind: page\ntitle: " + slug + "\n---\nbody\n")}
	}

	p, err := load(fsys, markdown.New(), "aurora")
	require.NoError(t, err)

	page, ok := p.Page("contact")
	require.True(t, ok)
	assert.Equal(t, "contact", page.Slug)
	assert.True(t, page.CreatedAt.Equal(epoch))
	assert.Empty(t, p.Posts())
}
