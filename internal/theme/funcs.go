// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"html/template"
	"strings"
	"time"
)

// DefaultDateLayout is used by formatDate when no layout is given.
const DefaultDateLayout = "January 2, 2006"

// Funcs returns the template functions available to every theme.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// safeHTML marks sanitised tenant content as trusted markup.
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec // content is sanitised before it reaches templates
		},
		"formatDate": func(t time.Time, layout ...string) string {
			if t.IsZero() {
				return ""
			}
			l := DefaultDateLayout
			if len(layout) > 0 && layout[0] != "" {
				l = layout[0]
			}
			return t.Format(l)
		},
		"isoDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(time.RFC3339)
		},
		"join": func(items []string, sep string) string {
			return strings.Join(items, sep)
		},
		"year": func() int {
			return time.Now().Year()
		},
	}
}
