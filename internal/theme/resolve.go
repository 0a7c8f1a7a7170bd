// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

// Page template names with fixed meaning.
const (
	TemplateHome   = "home"
	TemplatePosts  = "posts"
	TemplatePost   = "post"
	TemplateCustom = "custom"
	TemplateAbout  = "about"
)

// Capabilities reports which page templates a theme provides.
type Capabilities interface {
	HasTemplate(name string) bool
}

// TemplateSet is a Capabilities backed by a set of page names.
type TemplateSet map[string]bool

// HasTemplate reports whether name is in the set.
func (s TemplateSet) HasTemplate(name string) bool {
	return s[name]
}

// ResolveTemplate picks the template used to render slug. The built-in
// page types home, posts and post only resolve to themselves. Any other
// slug tries its own template, then "custom", then "about".
func ResolveTemplate(caps Capabilities, slug string) (string, bool) {
	if caps == nil {
		return "", false
	}

	switch slug {
	case TemplateHome, TemplatePosts, TemplatePost:
		if caps.HasTemplate(slug) {
			return slug, true
		}
		return "", false
	}

	for _, name := range [...]string{slug, TemplateCustom, TemplateAbout} {
		if name != "" && caps.HasTemplate(name) {
			return name, true
		}
	}
	return "", false
}
