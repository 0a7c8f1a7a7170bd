// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package theme loads tenant themes and renders their page templates.
package theme

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"regexp"
	"sort"
)

// Theme errors.
var (
	ErrThemeNotFound    = errors.New("theme not found")
	ErrTemplateNotFound = errors.New("template not found")
)

// baseLayout is the template every page renders inside.
const baseLayout = "layouts/base.html"

// blankLinesRegex matches two or more consecutive newlines (with optional whitespace between).
var blankLinesRegex = regexp.MustCompile(`(\r?\n\s*){2,}`)

// Config represents the configuration loaded from theme.json.
type Config struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Description string `json:"description"`
	// Templates maps a page name to a page file, for pages whose file name
	// differs from the page name.
	Templates map[string]string `json:"templates,omitempty"`
}

// Theme represents a loaded theme with its templates and configuration.
type Theme struct {
	ID         string             // directory name (used as identifier)
	Config     Config             // parsed theme.json
	Templates  *template.Template // layouts, partials and page contents
	Static     fs.FS              // static assets, nil when the theme has none
	CSS        string             // static/style.css, inlined into the home route
	IsEmbedded bool               // true if theme is embedded in binary

	pages map[string]string // page name -> content template name
}

// HasTemplate reports whether the theme can render the named page.
func (t *Theme) HasTemplate(name string) bool {
	_, ok := t.pages[name]
	return ok
}

// PageNames returns the renderable page names in sorted order.
func (t *Theme) PageNames() []string {
	names := make([]string, 0, len(t.pages))
	for n := range t.pages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Capabilities returns the theme's page set for template resolution.
func (t *Theme) Capabilities() TemplateSet {
	set := make(TemplateSet, len(t.pages))
	for n := range t.pages {
		set[n] = true
	}
	return set
}

// RenderPage renders a page template within the base layout.
// The page's content block is bound to "content" on a clone of the theme
// templates so concurrent renders never share a definition.
func (t *Theme) RenderPage(w io.Writer, pageName string, data any) error {
	contentName, ok := t.pages[pageName]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrTemplateNotFound, t.ID, pageName)
	}
	if t.Templates.Lookup(baseLayout) == nil {
		return fmt.Errorf("%w: %s/%s", ErrTemplateNotFound, t.ID, baseLayout)
	}

	clone, err := t.Templates.Clone()
	if err != nil {
		return fmt.Errorf("cloning template: %w", err)
	}

	contentDef := fmt.Sprintf(`{{define "content"}}{{template %q .}}{{end}}`, contentName)
	if _, err := clone.Parse(contentDef); err != nil {
		return fmt.Errorf("parsing content definition: %w", err)
	}

	var buf bytes.Buffer
	if err := clone.ExecuteTemplate(&buf, baseLayout, data); err != nil {
		return fmt.Errorf("executing %s/%s: %w", t.ID, pageName, err)
	}

	// Strip consecutive blank lines from the rendered HTML
	compacted := blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n"))
	_, err = w.Write(compacted)
	return err
}
