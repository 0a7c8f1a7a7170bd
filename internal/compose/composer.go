// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package compose turns a tenant request into themed HTML. It decides
// between real and demo content, builds the render context for the page
// type and falls back to a minimal page when the theme fails.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minispace-dev/minispace/internal/content"
	"github.com/minispace-dev/minispace/internal/demo"
	"github.com/minispace-dev/minispace/internal/metrics"
	"github.com/minispace-dev/minispace/internal/model"
	"github.com/minispace-dev/minispace/internal/navigation"
	"github.com/minispace-dev/minispace/internal/theme"
	"github.com/minispace-dev/minispace/internal/util"
)

// ErrNotFound is returned when the tenant or the requested page does not exist.
var ErrNotFound = errors.New("not found")

// Engine renders theme pages.
type Engine interface {
	Render(themeID, pageName string, data any) (string, error)
	CSS(themeID string) string
	Capabilities(themeID string) theme.Capabilities
}

// Options switch composition behaviour.
type Options struct {
	// IsDev enables debug panels in themes and the fallback page.
	IsDev bool
	// ForceDemoMode serves demo content even when the backend is up.
	ForceDemoMode bool
}

// Config holds the collaborators of a Composer.
type Config struct {
	// Repository may be nil when no backend is configured.
	Repository content.Source
	Demo       *demo.Provider
	Engine     Engine
	Resolver   *navigation.Resolver
	Options    Options
	Logger     *slog.Logger
}

// Result is a rendered tenant page.
type Result struct {
	HTML     string
	ThemeID  string
	PageType string
	// IsDemo is true when demo content was rendered.
	IsDemo bool
	// Fallback is true when the theme failed and the inline page was served.
	Fallback bool
}

// Composer renders tenant pages. It holds no per-request state and is
// safe for concurrent use.
type Composer struct {
	repo     content.Source
	demo     *demo.Provider
	engine   Engine
	resolver *navigation.Resolver
	opts     Options
	logger   *slog.Logger
}

// New creates a Composer.
func New(cfg Config) *Composer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = navigation.NewResolver()
	}
	return &Composer{
		repo:     cfg.Repository,
		demo:     cfg.Demo,
		engine:   cfg.Engine,
		resolver: resolver,
		opts:     cfg.Options,
		logger:   logger,
	}
}

// request is one page to compose.
type request struct {
	nav      navigation.Context
	meta     navigation.RequestMeta
	pageType string
	// slug is the page or post slug.
	slug string
}

// RenderTenantPage renders the page addressed by path for username.
// path is the path the client requested, with or without the username
// prefix depending on how the tenant was addressed.
func (c *Composer) RenderTenantPage(ctx context.Context, username, path string, meta navigation.RequestMeta) (*Result, error) {
	nav := c.resolver.Resolve(username, meta, path)
	req := request{nav: nav, meta: meta, slug: nav.CurrentPage}

	switch {
	case nav.CurrentPage == PageHome && len(nav.Rest) == 0:
		req.pageType = PageHome
	case nav.CurrentPage == PagePosts && len(nav.Rest) == 0:
		req.pageType = PagePosts
	case nav.CurrentPage == PagePost && len(nav.Rest) == 1:
		req.pageType = PagePost
		req.slug = strings.ToLower(nav.Rest[0])
	case len(nav.Rest) == 0 && nav.CurrentPage != PagePost && util.IsValidSlug(nav.CurrentPage):
		req.pageType = PageCustom
	default:
		metrics.RecordRender(PageCustom, metrics.OutcomeNotFound, 0)
		return nil, fmt.Errorf("page %q: %w", path, ErrNotFound)
	}

	return c.compose(ctx, req)
}

// RenderTenantPost renders a single post of username.
func (c *Composer) RenderTenantPost(ctx context.Context, username, slug string, meta navigation.RequestMeta) (*Result, error) {
	nav := c.resolver.Resolve(username, meta, "")
	nav.CurrentPage = PagePost
	slug = strings.ToLower(slug)
	nav.Rest = []string{slug}

	if !util.IsValidSlug(slug) {
		metrics.RecordRender(PagePost, metrics.OutcomeNotFound, 0)
		return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}

	return c.compose(ctx, request{nav: nav, meta: meta, pageType: PagePost, slug: slug})
}

func (c *Composer) compose(ctx context.Context, req request) (*Result, error) {
	start := time.Now()

	if !util.IsValidUsername(req.nav.Username) {
		metrics.RecordRender(req.pageType, metrics.OutcomeNotFound, time.Since(start))
		return nil, fmt.Errorf("tenant %q: %w", req.nav.Username, ErrNotFound)
	}

	available := c.backendAvailable()

	var (
		rc      RenderContext
		themeID string
		isDemo  bool
		err     error
	)
	if c.opts.ForceDemoMode || !available {
		rc, themeID, err = c.demoContext(req, c.debugInfo(req, available, true))
		isDemo = true
	} else {
		rc, themeID, err = c.realContext(ctx, req, c.debugInfo(req, true, false))
		if err != nil && !errors.Is(err, ErrNotFound) {
			c.logger.WarnContext(ctx, "content backend failed, serving demo content",
				"username", req.nav.Username,
				"page", req.slug,
				"error", err,
			)
			rc, themeID, err = c.demoContext(req, c.debugInfo(req, false, true))
			isDemo = true
		}
	}

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordRender(req.pageType, metrics.OutcomeNotFound, time.Since(start))
		}
		return nil, err
	}

	res := c.invoke(ctx, themeID, req, rc)
	res.IsDemo = isDemo

	outcome := metrics.OutcomeReal
	switch {
	case res.Fallback:
		outcome = metrics.OutcomeFallback
	case isDemo:
		outcome = metrics.OutcomeDemo
	}
	metrics.RecordRender(req.pageType, outcome, time.Since(start))

	return res, nil
}

func (c *Composer) backendAvailable() bool {
	return c.repo != nil && c.repo.Available()
}

// debugInfo returns the diagnostics shown in development, or nil. The
// template is filled in by newBase once the theme is known.
func (c *Composer) debugInfo(req request, available, isDemo bool) *DebugInfo {
	if !c.opts.IsDev {
		return nil
	}
	return &DebugInfo{
		Host:             req.meta.Host,
		Username:         req.nav.Username,
		IsSubdomain:      req.nav.IsSubdomain,
		CurrentPage:      req.nav.CurrentPage,
		BackendAvailable: available,
		DemoContent:      isDemo,
	}
}

// newBase assembles the shared part of a render context.
func (c *Composer) newBase(req request, site model.TenantSite, custom []model.CustomPage, themeID string, dbg *DebugInfo) Base {
	base := Base{
		Site:        site,
		Navigation:  req.nav,
		CustomPages: custom,
		ThemeID:     themeID,
	}
	if dbg != nil {
		d := *dbg
		d.Template = c.templateFor(themeID, req)
		base.Debug = &d
	}
	return base
}

// realContext reads tenant content. Reads are independent of each other
// and run in parallel, each attempted once.
func (c *Composer) realContext(ctx context.Context, req request, dbg *DebugInfo) (RenderContext, string, error) {
	username := req.nav.Username

	var (
		profile *model.UserProfile
		themeID string
		custom  []model.CustomPage
		page    *model.Page
		posts   []model.Post
		post    *model.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = c.repo.GetUserData(gctx, username)
		return err
	})
	g.Go(func() (err error) {
		themeID, err = c.repo.GetUserTheme(gctx, username)
		return err
	})
	g.Go(func() (err error) {
		custom, err = c.repo.GetUserCustomPages(gctx, username)
		return err
	})

	switch req.pageType {
	case PageHome:
		g.Go(func() (err error) {
			page, err = c.repo.GetUserPageData(gctx, username, model.SlugHome)
			return err
		})
		g.Go(func() (err error) {
			posts, err = c.repo.GetPosts(gctx, username)
			return err
		})
	case PagePosts:
		g.Go(func() (err error) {
			posts, err = c.repo.GetPosts(gctx, username)
			return err
		})
	case PagePost:
		g.Go(func() (err error) {
			post, err = c.repo.GetPost(gctx, username, req.slug)
			return err
		})
	case PageCustom:
		g.Go(func() (err error) {
			page, err = c.repo.GetUserPageData(gctx, username, req.slug)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	if profile == nil {
		return nil, "", fmt.Errorf("tenant %q: %w", username, ErrNotFound)
	}

	if custom == nil {
		custom = []model.CustomPage{}
	}
	if posts == nil {
		posts = []model.Post{}
	}
	model.SortPostsNewestFirst(posts)

	base := c.newBase(req, model.SiteFromProfile(profile, req.nav.IsSubdomain), custom, themeID, dbg)

	switch req.pageType {
	case PageHome:
		if page == nil {
			return nil, "", fmt.Errorf("home page of %q: %w", username, ErrNotFound)
		}
		return &HomeContext{Base: base, Page: page, Posts: posts}, themeID, nil
	case PagePosts:
		return &PostsContext{Base: base, Posts: posts}, themeID, nil
	case PagePost:
		if post == nil {
			return nil, "", fmt.Errorf("post %q of %q: %w", req.slug, username, ErrNotFound)
		}
		return &PostContext{Base: base, Post: post}, themeID, nil
	default:
		if page == nil {
			return nil, "", fmt.Errorf("page %q of %q: %w", req.slug, username, ErrNotFound)
		}
		return &CustomPageContext{Base: base, Page: page}, themeID, nil
	}
}

func (c *Composer) demoContext(req request, dbg *DebugInfo) (RenderContext, string, error) {
	if c.demo == nil {
		return nil, "", fmt.Errorf("demo content: %w", content.ErrUnavailable)
	}

	nav := req.nav
	themeID := c.demo.ThemeID()

	if req.pageType == PagePost {
		post, ok := c.demo.Post(req.slug)
		if !ok {
			return nil, "", fmt.Errorf("demo post %q: %w", req.slug, ErrNotFound)
		}
		base := c.newBase(req, c.demo.Site(nav.Username, nav.IsSubdomain), c.demo.CustomPages(), themeID, dbg)
		return &PostContext{Base: base, Post: post}, themeID, nil
	}

	dc, ok := c.demo.Lookup(nav.Username, nav.IsSubdomain, req.slug)
	if !ok {
		return nil, "", fmt.Errorf("demo page %q: %w", req.slug, ErrNotFound)
	}

	base := c.newBase(req, dc.Site, dc.CustomPages, dc.ThemeID, dbg)
	switch req.pageType {
	case PageHome:
		return &HomeContext{Base: base, Page: dc.Page, Posts: dc.Posts}, dc.ThemeID, nil
	case PagePosts:
		return &PostsContext{Base: base, Posts: dc.Posts}, dc.ThemeID, nil
	default:
		return &CustomPageContext{Base: base, Page: dc.Page}, dc.ThemeID, nil
	}
}

// invoke renders rc with the theme and falls back to the inline page on
// any engine failure, including template panics.
func (c *Composer) invoke(ctx context.Context, themeID string, req request, rc RenderContext) *Result {
	res := &Result{ThemeID: themeID, PageType: rc.PageType()}

	tmpl := c.templateFor(themeID, req)

	html, stack, err := c.render(themeID, tmpl, rc)
	if err != nil {
		c.logger.ErrorContext(ctx, "theme render failed",
			"theme", themeID,
			"template", tmpl,
			"username", req.nav.Username,
			"error", err,
		)
		res.HTML = c.fallbackPage(rc, err, stack)
		res.Fallback = true
		return res
	}

	if rc.PageType() == PageHome {
		html = injectCSS(html, c.engine.CSS(themeID))
	}
	res.HTML = html
	return res
}

// templateFor picks the template of a page type. A custom slug the theme
// cannot render keeps its own name so that rendering fails.
func (c *Composer) templateFor(themeID string, req request) string {
	if req.pageType != PageCustom {
		return req.pageType
	}
	if name, ok := theme.ResolveTemplate(c.engine.Capabilities(themeID), req.slug); ok {
		return name
	}
	return req.slug
}

func (c *Composer) render(themeID, tmpl string, rc RenderContext) (html string, stack []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack = debug.Stack()
			err = fmt.Errorf("rendering %s/%s: panic: %v", themeID, tmpl, r)
		}
	}()

	html, err = c.engine.Render(themeID, tmpl, rc)
	return html, nil, err
}

// injectCSS places css in a style element before </head>, or in front of
// the document when it has no head.
func injectCSS(html, css string) string {
	if strings.TrimSpace(css) == "" {
		return html
	}
	style := "<style>\n" + css + "\n</style>\n"
	if i := strings.Index(strings.ToLower(html), "</head>"); i >= 0 {
		return html[:i] + style + html[i:]
	}
	return style + html
}
