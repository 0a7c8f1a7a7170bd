// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"

	"github.com/minispace-dev/minispace/internal/navigation"
)

// DefaultSubdomainSkip lists paths served identically on every host. An
// entry ending in "/" covers everything below it; any other entry matches
// that path and its subpaths, never a longer segment such as "/healthy".
var DefaultSubdomainSkip = []string{"/themes/", "/health", "/metrics"}

// Subdomain maps tenant subdomains onto path-based routes: a request for
// alice.minispace.dev/about is routed as /alice/about. The path the client
// asked for is kept in the request context for navigation.
func Subdomain(resolver *navigation.Resolver, skip ...string) func(http.Handler) http.Handler {
	if len(skip) == 0 {
		skip = DefaultSubdomainSkip
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := navigation.WithOriginalPath(r.Context(), r.URL.Path)

			tenant, ok := resolver.TenantFromHost(r.Host)
			if !ok || isSkipped(r.URL.Path, skip) {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = navigation.WithTenant(ctx, tenant)
			r = r.WithContext(ctx)

			u := *r.URL
			u.Path = "/" + tenant + strings.TrimSuffix(r.URL.Path, "/")
			u.RawPath = ""
			r.URL = &u

			next.ServeHTTP(w, r)
		})
	}
}

func isSkipped(path string, skip []string) bool {
	for _, p := range skip {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
