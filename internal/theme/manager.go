// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// Manager holds the loaded themes and renders pages with them.
// It is safe for concurrent use.
type Manager struct {
	themes  map[string]*Theme
	mu      sync.RWMutex
	logger  *slog.Logger
	funcMap template.FuncMap
}

// NewManager creates a theme manager using the default template functions.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		themes:  make(map[string]*Theme),
		logger:  logger,
		funcMap: Funcs(),
	}
}

// SetFuncMap adds template functions used by themes loaded afterwards.
func (m *Manager) SetFuncMap(funcMap template.FuncMap) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range funcMap {
		m.funcMap[k] = v
	}
}

// LoadFS loads every theme directory at the root of fsys. Themes that fail
// to load are logged and skipped. A theme replaces an already loaded theme
// with the same name.
func (m *Manager) LoadFS(fsys fs.FS, embedded bool) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading themes: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		sub, err := fs.Sub(fsys, name)
		if err != nil {
			m.logger.Warn("failed to open theme", "theme", name, "error", err)
			continue
		}

		theme, err := m.loadTheme(name, sub, embedded)
		if err != nil {
			m.logger.Warn("failed to load theme", "theme", name, "error", err)
			continue
		}

		m.mu.Lock()
		_, replaced := m.themes[name]
		m.themes[name] = theme
		m.mu.Unlock()

		m.logger.Info("loaded theme", "theme", name, "version", theme.Config.Version,
			"embedded", embedded, "override", replaced, "pages", len(theme.pages))
	}

	return nil
}

// LoadDir loads external themes from a directory. A missing directory is
// not an error.
func (m *Manager) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		m.logger.Debug("themes directory does not exist", "path", dir)
		return nil
	}
	return m.LoadFS(os.DirFS(dir), false)
}

// loadTheme loads a single theme rooted at fsys.
func (m *Manager) loadTheme(name string, fsys fs.FS, embedded bool) (*Theme, error) {
	configData, err := fs.ReadFile(fsys, "theme.json")
	if err != nil {
		return nil, fmt.Errorf("reading theme.json: %w", err)
	}

	var config Config
	if err := json.Unmarshal(configData, &config); err != nil {
		return nil, fmt.Errorf("parsing theme.json: %w", err)
	}

	templates, pages, err := m.parseTemplates(fsys, config)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if templates.Lookup(baseLayout) == nil {
		return nil, fmt.Errorf("missing %s", baseLayout)
	}

	theme := &Theme{
		ID:         name,
		Config:     config,
		Templates:  templates,
		IsEmbedded: embedded,
		pages:      pages,
	}

	if info, err := fs.Stat(fsys, "static"); err == nil && info.IsDir() {
		theme.Static, _ = fs.Sub(fsys, "static")
		if css, err := fs.ReadFile(theme.Static, "style.css"); err == nil {
			theme.CSS = string(css)
		}
	}

	return theme, nil
}

// parseTemplates parses layouts, partials and pages from templates/.
// Pages are rewritten so that their "content" block gets a unique name.
func (m *Manager) parseTemplates(fsys fs.FS, config Config) (*template.Template, map[string]string, error) {
	m.mu.RLock()
	tmpl := template.New("").Funcs(m.funcMap)
	m.mu.RUnlock()

	// Layouts keep their relative path, partials are named by file name
	// (e.g., "header.html") for {{template "header.html" .}}
	if err := parseDir(tmpl, fsys, "templates/layouts", func(f string) string { return "layouts/" + f }); err != nil {
		return nil, nil, err
	}
	if err := parseDir(tmpl, fsys, "templates/partials", func(f string) string { return f }); err != nil {
		return nil, nil, err
	}

	pages := make(map[string]string)
	entries, err := fs.ReadDir(fsys, "templates/pages")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("reading pages: %w", err)
	}

	files := make(map[string]string) // file base name -> content template name
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".html" {
			continue
		}

		content, err := fs.ReadFile(fsys, "templates/pages/"+entry.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("reading page %s: %w", entry.Name(), err)
		}

		// e.g., "pages/home.html" -> "content_home"
		baseName := strings.TrimSuffix(entry.Name(), ".html")
		contentName := "content_" + baseName

		wrapped := strings.Replace(string(content), `{{define "content"}}`,
			fmt.Sprintf(`{{define %q}}`, contentName), 1)

		if _, err := tmpl.New("pages/" + entry.Name()).Parse(wrapped); err != nil {
			return nil, nil, fmt.Errorf("parsing page %s: %w", entry.Name(), err)
		}
		if tmpl.Lookup(contentName) == nil {
			m.logger.Warn("page template defines no content block", "page", entry.Name())
			continue
		}

		files[baseName] = contentName
		pages[baseName] = contentName
	}

	// theme.json may map extra page names onto existing files.
	for pageName, file := range config.Templates {
		base := strings.TrimSuffix(path.Base(file), ".html")
		if contentName, ok := files[base]; ok {
			pages[pageName] = contentName
		}
	}

	return tmpl, pages, nil
}

func parseDir(tmpl *template.Template, fsys fs.FS, dir string, nameFn func(string) string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".html" {
			continue
		}
		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		if _, err := tmpl.New(nameFn(entry.Name())).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// GetTheme returns a theme by name.
func (m *Manager) GetTheme(id string) (*Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	theme, ok := m.themes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, id)
	}
	return theme, nil
}

// HasTheme checks if a theme exists.
func (m *Manager) HasTheme(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.themes[id]
	return ok
}

// HasTemplate reports whether theme id can render the named page.
func (m *Manager) HasTemplate(id, name string) bool {
	t, err := m.GetTheme(id)
	return err == nil && t.HasTemplate(name)
}

// Capabilities returns the page set of theme id. Unknown themes have none.
func (m *Manager) Capabilities(id string) Capabilities {
	t, err := m.GetTheme(id)
	if err != nil {
		return TemplateSet{}
	}
	return t.Capabilities()
}

// CSS returns the theme stylesheet, or "" when the theme has none.
func (m *Manager) CSS(id string) string {
	t, err := m.GetTheme(id)
	if err != nil {
		return ""
	}
	return t.CSS
}

// Static returns the static asset filesystem of theme id.
func (m *Manager) Static(id string) (fs.FS, bool) {
	t, err := m.GetTheme(id)
	if err != nil || t.Static == nil {
		return nil, false
	}
	return t.Static, true
}

// Render renders a page of theme id to a string.
func (m *Manager) Render(id, pageName string, data any) (string, error) {
	t, err := m.GetTheme(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := t.RenderPage(&sb, pageName, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Names returns the loaded theme names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
