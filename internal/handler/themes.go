// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticThemes gives access to theme static files.
type StaticThemes interface {
	Static(themeID string) (fs.FS, bool)
}

// ThemeHandler serves theme assets.
type ThemeHandler struct {
	themes StaticThemes
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(themes StaticThemes) *ThemeHandler {
	return &ThemeHandler{themes: themes}
}

// Static handles GET /themes/{theme}/static/*. Only regular files inside
// the theme's static directory are served.
func (h *ThemeHandler) Static(w http.ResponseWriter, r *http.Request) {
	fsys, ok := h.themes.Static(chi.URLParam(r, "theme"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	name := chi.URLParam(r, "*")
	if name == "" || !fs.ValidPath(name) || strings.Contains(name, `\`) {
		http.NotFound(w, r)
		return
	}

	info, err := fs.Stat(fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	http.ServeFileFS(w, r, fsys, name)
}
