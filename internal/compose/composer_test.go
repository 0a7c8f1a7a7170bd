// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minispace-dev/minispace/internal/compose"
	"github.com/minispace-dev/minispace/internal/content"
	"github.com/minispace-dev/minispace/internal/demo"
	"github.com/minispace-dev/minispace/internal/markdown"
	"github.com/minispace-dev/minispace/internal/model"
	"github.com/minispace-dev/minispace/internal/navigation"
	"github.com/minispace-dev/minispace/internal/testutil"
	"github.com/minispace-dev/minispace/internal/theme"
	"github.com/minispace-dev/minispace/internal/themes"
)

var (
	prodHost = navigation.RequestMeta{Host: "minispace.dev"}
	t0       = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func themeManager(t *testing.T) *theme.Manager {
	t.Helper()
	m := theme.NewManager(testutil.DiscardLogger())
	require.NoError(t, m.LoadFS(themes.FS, true))
	return m
}

func aliceRepo() *testutil.Repository {
	repo := testutil.NewRepository()
	repo.AddTenant(testutil.Tenant{
		Profile: model.UserProfile{Username: "alice", DisplayName: "Alice", Bio: "Hi", ThemeID: "aurora"},
		ThemeID: "aurora",
		Pages: map[string]model.Page{
			"home":  {Slug: "home", Title: "Welcome home", Content: "<p>home body</p>", Published: true},
			"about": {Slug: "about", Title: "About Alice", Content: "<p>about body</p>", Published: true},
			"draft": {Slug: "draft", Title: "Draft", Content: "<p>draft</p>", Published: false},
		},
		CustomPages: []model.CustomPage{{Slug: "about", Title: "About Alice"}},
		Posts: []model.Post{
			{Title: "Hello", Slug: "hello", Content: "<p>hello body</p>", PublishedAt: t0, Tags: []string{}},
		},
	})
	repo.AddTenant(testutil.Tenant{
		Profile: model.UserProfile{Username: "carol", DisplayName: "Carol"},
	})
	return repo
}

type setup struct {
	repo    content.Source
	engine  compose.Engine
	options compose.Options
}

func newComposer(t *testing.T, s setup) *compose.Composer {
	t.Helper()
	provider, err := demo.New(markdown.New(), themes.Default)
	require.NoError(t, err)
	if s.engine == nil {
		s.engine = themeManager(t)
	}
	return compose.New(compose.Config{
		Repository: s.repo,
		Demo:       provider,
		Engine:     s.engine,
		Resolver:   navigation.NewResolver("minispace.dev", "localhost"),
		Options:    s.options,
		Logger:     testutil.DiscardLogger(),
	})
}

func backend(repo content.Repository) content.Source {
	return content.NewBreaker(repo, content.BreakerSettings{}, testutil.DiscardLogger())
}

func TestRenderTenantPage_RealTenantHome(t *testing.T) {
	c := newComposer(t, setup{repo: backend(aliceRepo())})

	res, err := c.RenderTenantPage(context.Background(), "alice", "/alice", prodHost)
	require.NoError(t, err)

	assert.Equal(t, "aurora", res.ThemeID)
	assert.Equal(t, compose.PageHome, res.PageType)
	assert.False(t, res.IsDemo)
	assert.False(t, res.Fallback)
	assert.Contains(t, res.HTML, "Hello")
	assert.Contains(t, res.HTML, "home body")
	assert.Contains(t, res.HTML, `class="aurora"`)
	assert.Contains(t, res.HTML, "<style>")
	assert.Less(t, strings.Index(res.HTML, "<style>"), strings.Index(res.HTML, "</head>"))
	assert.NotContains(t, res.HTML, "demo-banner")
}

func TestRenderTenantPage_SubpagesAreNotStyled(t *testing.T) {
	c := newComposer(t, setup{repo: backend(aliceRepo())})

	res, err := c.RenderTenantPage(context.Background(), "alice", "/alice/about", prodHost)
	require.NoError(t, err)
	assert.Equal(t, compose.PageCustom, res.PageType)
	assert.Contains(t, res.HTML, "about body")
	assert.NotContains(t, res.HTML, "<style>")
}

func TestRenderTenantPage_SubdomainPathEquivalence(t *testing.T) {
	c := newComposer(t, setup{repo: backend(aliceRepo())})
	ctx := context.Background()

	for _, page := range []string{"", "about", "posts"} {
		t.Run("page="+page, func(t *testing.T) {
			viaHost, err := c.RenderTenantPage(ctx, "alice", "/"+page, navigation.RequestMeta{Host: "alice.minispace.dev"})
			require.NoError(t, err)
			viaPath, err := c.RenderTenantPage(ctx, "alice", "/alice/"+page, prodHost)
			require.NoError(t, err)

			assert.Equal(t, viaPath.PageType, viaHost.PageType)
			assert.Equal(t, viaPath.ThemeID, viaHost.ThemeID)
			assert.Equal(t, viaPath.IsDemo, viaHost.IsDemo)

			// links differ by prefix only
			assert.Equal(t,
				strings.ReplaceAll(viaPath.HTML, `href="/alice`, `href="`),
				strings.ReplaceAll(viaHost.HTML, `href="/"`, `href=""`),
			)
		})
	}
}

func TestRenderTenantPage_BackendDown(t *testing.T) {
	c := newComposer(t, setup{repo: backend(nil)})

	res, err := c.RenderTenantPage(context.Background(), "bob", "/bob", prodHost)
	require.NoError(t, err)

	assert.True(t, res.IsDemo)
	assert.Equal(t, themes.Default, res.ThemeID)
	assert.Contains(t, res.HTML, "Welcome to Minispace")
	assert.Contains(t, res.HTML, "demo-banner")
}

func TestRenderTenantPage_NoRepository(t *testing.T) {
	c := newComposer(t, setup{})

	res, err := c.RenderTenantPage(context.Background(), "bob", "/bob/posts", prodHost)
	require.NoError(t, err)
	assert.True(t, res.IsDemo)
	assert.Equal(t, compose.PagePosts, res.PageType)
}

func TestRenderTenantPage_DemoCatalogComplete(t *testing.T) {
	c := newComposer(t, setup{options: compose.Options{ForceDemoMode: true}, repo: backend(aliceRepo())})

	for _, slug := range demo.Catalog() {
		t.Run(slug, func(t *testing.T) {
			res, err := c.RenderTenantPage(context.Background(), "alice", "/alice/"+slug, prodHost)
			require.NoError(t, err)
			assert.True(t, res.IsDemo)
			assert.False(t, res.Fallback)
			assert.Contains(t, res.HTML, "demo-banner")
			assert.Contains(t, res.HTML, "Demo Site")
		})
	}
}

func TestRenderTenantPage_NotFound(t *testing.T) {
	tests := []struct {
		name     string
		repo     content.Source
		username string
		path     string
	}{
		{"unknown tenant with backend up", backend(aliceRepo()), "ghost", "/ghost"},
		{"tenant without home page", backend(aliceRepo()), "carol", "/carol"},
		{"unknown page", backend(aliceRepo()), "alice", "/alice/nope"},
		{"unpublished page", backend(aliceRepo()), "alice", "/alice/draft"},
		{"extra segments", backend(aliceRepo()), "alice", "/alice/about/more"},
		{"post without slug", backend(aliceRepo()), "alice", "/alice/post"},
		{"invalid username", backend(aliceRepo()), "bad_name", "/bad_name"},
		{"demo page outside catalog", backend(nil), "bob", "/bob/resume"},
		{"demo post outside catalog", backend(nil), "bob", "/bob/post/nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComposer(t, setup{repo: tt.repo})
			res, err := c.RenderTenantPage(context.Background(), tt.username, tt.path, prodHost)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, compose.ErrNotFound)
		})
	}
}

func TestRenderTenantPage_ForceDemoMode(t *testing.T) {
	repo := aliceRepo()
	c := newComposer(t, setup{repo: backend(repo), options: compose.Options{ForceDemoMode: true}})

	res, err := c.RenderTenantPage(context.Background(), "alice", "/alice", prodHost)
	require.NoError(t, err)
	assert.True(t, res.IsDemo)
	assert.NotContains(t, res.HTML, "home body")
	assert.Zero(t, repo.Calls())
}

func TestRenderTenantPage_BackendErrorServesDemo(t *testing.T) {
	repo := aliceRepo()
	repo.SetErr(errors.New("connection refused"))
	c := newComposer(t, setup{repo: backend(repo)})

	res, err := c.RenderTenantPage(context.Background(), "alice", "/alice/about", prodHost)
	require.NoError(t, err)
	assert.True(t, res.IsDemo)
	assert.Contains(t, res.HTML, "Demo Site")
	assert.NotContains(t, res.HTML, "connection refused")
}

func TestRenderTenantPage_PostOrdering(t *testing.T) {
	repo := testutil.NewRepository()
	repo.AddTenant(testutil.Tenant{
		Profile: model.UserProfile{Username: "dave"},
		Posts: []model.Post{
			{Title: "Second", Slug: "second", PublishedAt: t0.Add(-24 * time.Hour)},
			{Title: "Third", Slug: "third", PublishedAt: t0.Add(-48 * time.Hour)},
			{Title: "First", Slug: "first", PublishedAt: t0},
		},
	})
	c := newComposer(t, setup{repo: backend(repo)})

	res, err := c.RenderTenantPage(context.Background(), "dave", "/dave/posts", prodHost)
	require.NoError(t, err)

	first := strings.Index(res.HTML, "First")
	second := strings.Index(res.HTML, "Second")
	third := strings.Index(res.HTML, "Third")
	require.True(t, first >= 0 && second >= 0 && third >= 0, "all posts listed")
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestRenderTenantPage_DebugPanel(t *testing.T) {
	meta := navigation.RequestMeta{Host: "bob.localhost:3000"}

	dev := newComposer(t, setup{options: compose.Options{IsDev: true}})
	res, err := dev.RenderTenantPage(context.Background(), "bob", "/", meta)
	require.NoError(t, err)
	assert.Contains(t, res.HTML, "bob.localhost:3000")

	prod := newComposer(t, setup{})
	res, err = prod.RenderTenantPage(context.Background(), "bob", "/", meta)
	require.NoError(t, err)
	assert.NotContains(t, res.HTML, "bob.localhost:3000")
}

// recordingEngine keeps the render contexts it was given.
type recordingEngine struct {
	*theme.Manager
	seen []compose.RenderContext
}

func (e *recordingEngine) Render(themeID, pageName string, data any) (string, error) {
	if rc, ok := data.(compose.RenderContext); ok {
		e.seen = append(e.seen, rc)
	}
	return e.Manager.Render(themeID, pageName, data)
}

func debugOf(t *testing.T, rc compose.RenderContext) *compose.DebugInfo {
	t.Helper()
	switch v := rc.(type) {
	case *compose.HomeContext:
		return v.Debug
	case *compose.PostsContext:
		return v.Debug
	case *compose.PostContext:
		return v.Debug
	case *compose.CustomPageContext:
		return v.Debug
	}
	t.Fatalf("unexpected render context %T", rc)
	return nil
}

func TestRenderTenantPage_DebugInfoComplete(t *testing.T) {
	failing := aliceRepo()
	failing.SetErr(errors.New("connection reset"))

	tests := []struct {
		name          string
		repo          content.Source
		path          string
		wantTemplate  string
		wantAvailable bool
		wantDemo      bool
	}{
		{"real custom page", backend(aliceRepo()), "/alice/about", "about", true, false},
		{"real posts", backend(aliceRepo()), "/alice/posts", "posts", true, false},
		{"backend down", backend(nil), "/alice/projects", "projects", false, true},
		{"backend error", backend(failing), "/alice", "home", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &recordingEngine{Manager: themeManager(t)}
			c := newComposer(t, setup{repo: tt.repo, engine: engine, options: compose.Options{IsDev: true}})

			_, err := c.RenderTenantPage(context.Background(), "alice", tt.path, prodHost)
			require.NoError(t, err)
			require.Len(t, engine.seen, 1)

			d := debugOf(t, engine.seen[0])
			require.NotNil(t, d)
			assert.Equal(t, tt.wantTemplate, d.Template)
			assert.Equal(t, tt.wantAvailable, d.BackendAvailable)
			assert.Equal(t, tt.wantDemo, d.DemoContent)
			assert.Equal(t, "minispace.dev", d.Host)
		})
	}

	t.Run("production", func(t *testing.T) {
		engine := &recordingEngine{Manager: themeManager(t)}
		c := newComposer(t, setup{repo: backend(aliceRepo()), engine: engine})

		_, err := c.RenderTenantPage(context.Background(), "alice", "/alice", prodHost)
		require.NoError(t, err)
		require.Len(t, engine.seen, 1)
		assert.Nil(t, debugOf(t, engine.seen[0]))
	})
}

func TestRenderTenantPost(t *testing.T) {
	c := newComposer(t, setup{repo: backend(aliceRepo())})
	ctx := context.Background()

	res, err := c.RenderTenantPost(ctx, "alice", "hello", prodHost)
	require.NoError(t, err)
	assert.Equal(t, compose.PagePost, res.PageType)
	assert.Contains(t, res.HTML, "hello body")
	assert.NotContains(t, res.HTML, "<style>")

	viaPage, err := c.RenderTenantPage(ctx, "alice", "/alice/post/hello", prodHost)
	require.NoError(t, err)
	assert.Equal(t, res.HTML, viaPage.HTML)

	_, err = c.RenderTenantPost(ctx, "alice", "missing", prodHost)
	assert.ErrorIs(t, err, compose.ErrNotFound)

	_, err = c.RenderTenantPost(ctx, "alice", "../etc", prodHost)
	assert.ErrorIs(t, err, compose.ErrNotFound)
}

func TestRenderTenantPost_Demo(t *testing.T) {
	c := newComposer(t, setup{repo: backend(nil)})

	res, err := c.RenderTenantPost(context.Background(), "bob", "welcome-to-minispace", prodHost)
	require.NoError(t, err)
	assert.True(t, res.IsDemo)
	assert.Contains(t, res.HTML, "Welcome to Minispace")
}

// brokenEngine fails every render, either with an error or a panic.
type brokenEngine struct {
	*theme.Manager
	panic bool
}

func (e brokenEngine) Render(themeID, pageName string, data any) (string, error) {
	if e.panic {
		panic("template exploded")
	}
	return "", errors.New("template missing: " + pageName)
}

func TestRenderTenantPage_EngineFailure(t *testing.T) {
	tests := []struct {
		name      string
		panic     bool
		isDev     bool
		wantDebug []string
	}{
		{name: "error in production"},
		{name: "panic in production", panic: true},
		{name: "error in development", isDev: true, wantDebug: []string{"template missing: about", "Render error", "alice.minispace.dev"}},
		{name: "panic in development", panic: true, isDev: true, wantDebug: []string{"template exploded", "goroutine"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComposer(t, setup{
				repo:    backend(aliceRepo()),
				engine:  brokenEngine{Manager: themeManager(t), panic: tt.panic},
				options: compose.Options{IsDev: tt.isDev},
			})

			res, err := c.RenderTenantPage(context.Background(), "alice", "/about",
				navigation.RequestMeta{Host: "alice.minispace.dev"})
			require.NoError(t, err)

			assert.True(t, res.Fallback)
			assert.Contains(t, res.HTML, "About Alice")
			assert.Contains(t, res.HTML, "<p>about body</p>")
			assert.Contains(t, res.HTML, "Sorry, there was an error")

			if tt.isDev {
				for _, s := range tt.wantDebug {
					assert.Contains(t, res.HTML, s)
				}
			} else {
				assert.NotContains(t, res.HTML, "Render error")
				assert.NotContains(t, res.HTML, "goroutine")
				assert.NotContains(t, res.HTML, "template")
			}
		})
	}
}

func TestRenderTenantPage_UnrenderableCustomPageFallsBack(t *testing.T) {
	repo := testutil.NewRepository()
	repo.AddTenant(testutil.Tenant{
		Profile: model.UserProfile{Username: "erin"},
		ThemeID: "sparse",
		Pages: map[string]model.Page{
			"now": {Slug: "now", Title: "Now", Content: "<p>now body</p>", Published: true},
		},
	})
	c := newComposer(t, setup{repo: backend(repo)})

	res, err := c.RenderTenantPage(context.Background(), "erin", "/erin/now", prodHost)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Contains(t, res.HTML, "now body")
}
