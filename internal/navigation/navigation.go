// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package navigation classifies tenant requests as subdomain or path based
// and derives the logical page being requested.
package navigation

import (
	"net"
	"strings"
)

// PageHome is the page served when the request path names no page.
const PageHome = "home"

// Context describes how a request reached a tenant and which page it wants.
// It is built per request and never mutated afterwards.
type Context struct {
	Username    string `json:"username"`
	IsSubdomain bool   `json:"isSubdomain"`
	CurrentPage string `json:"currentPage"`
	// Rest holds the path segments after the current page, e.g. the post slug.
	Rest []string `json:"rest,omitempty"`
}

// RequestMeta carries the request attributes the resolver looks at.
type RequestMeta struct {
	Host string
}

// BasePath returns the URL prefix of the tenant site.
func (c Context) BasePath() string {
	if c.IsSubdomain {
		return ""
	}
	return "/" + c.Username
}

// URL returns the link to a page of the tenant site in the same routing form
// the current request used.
func (c Context) URL(page string) string {
	page = strings.Trim(page, "/")
	if page == "" || page == PageHome {
		if c.IsSubdomain {
			return "/"
		}
		return c.BasePath()
	}
	return c.BasePath() + "/" + page
}

// PostURL returns the link to a single post.
func (c Context) PostURL(slug string) string {
	return c.URL("post/" + slug)
}

// IsCurrent reports whether page is the page being rendered.
func (c Context) IsCurrent(page string) bool {
	return c.CurrentPage == page
}

// Resolver detects tenant subdomains against a fixed set of base domains.
type Resolver struct {
	bases [][]string
}

// NewResolver creates a resolver for the given base domains, for example
// "minispace.dev" in production plus "localhost" in development.
func NewResolver(baseDomains ...string) *Resolver {
	r := &Resolver{}
	for _, d := range baseDomains {
		d = normalizeHost(d)
		if d == "" {
			continue
		}
		r.bases = append(r.bases, strings.Split(d, "."))
	}
	return r
}

// Resolve builds the navigation context for a request. The username comes
// from the routing layer; path is the path the client actually requested.
// Malformed hosts are treated as path-based requests.
func (r *Resolver) Resolve(username string, meta RequestMeta, path string) Context {
	username = strings.ToLower(username)
	_, isSubdomain := r.TenantFromHost(meta.Host)

	segments := splitPath(path)
	if !isSubdomain && len(segments) > 0 && strings.EqualFold(segments[0], username) {
		segments = segments[1:]
	}

	nav := Context{
		Username:    username,
		IsSubdomain: isSubdomain,
		CurrentPage: PageHome,
	}
	if len(segments) > 0 {
		nav.CurrentPage = strings.ToLower(segments[0])
		if len(segments) > 1 {
			nav.Rest = segments[1:]
		}
	}
	return nav
}

// TenantFromHost returns the tenant label of a host such as
// "alice.minispace.dev". A host is a tenant subdomain when it has exactly
// one label more than a base domain, ends with that base domain, and its
// leading label is neither "www" nor the base domain's own first label.
func (r *Resolver) TenantFromHost(host string) (string, bool) {
	host = normalizeHost(host)
	if host == "" {
		return "", false
	}
	labels := strings.Split(host, ".")

	for _, base := range r.bases {
		if len(labels) != len(base)+1 {
			continue
		}
		if !equalLabels(labels[1:], base) {
			continue
		}
		lead := labels[0]
		if lead == "" || lead == "www" || lead == base[0] {
			continue
		}
		return lead, true
	}
	return "", false
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" || host == "unknown" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

func equalLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
