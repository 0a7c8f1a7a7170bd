// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package navigation

import "context"

type ctxKey int

const (
	originalPathKey ctxKey = iota
	tenantKey
)

// WithOriginalPath stores the path the client requested before any
// subdomain rewrite.
func WithOriginalPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, originalPathKey, path)
}

// OriginalPath returns the path stored by WithOriginalPath.
func OriginalPath(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(originalPathKey).(string)
	return p, ok
}

// WithTenant stores the tenant username for log enrichment.
func WithTenant(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, tenantKey, username)
}

// Tenant returns the tenant username stored by WithTenant.
func Tenant(ctx context.Context) string {
	t, _ := ctx.Value(tenantKey).(string)
	return t
}
