// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block of a markdown document.
type FrontMatter struct {
	Kind        string    `yaml:"kind"` // "page" or "post"
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Description string    `yaml:"description"`
	Excerpt     string    `yaml:"excerpt"`
	Tags        []string  `yaml:"tags"`
	CoverImage  string    `yaml:"cover_image"`
	Date        time.Time `yaml:"date"`
}

// Document is a parsed markdown document with its body rendered to HTML.
type Document struct {
	FrontMatter
	HTML string
}

// ParseDocument splits front matter from the markdown body and renders the body.
func (r *Renderer) ParseDocument(src []byte) (*Document, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	out, err := r.ToHTML(body)
	if err != nil {
		return nil, err
	}

	return &Document{FrontMatter: meta, HTML: out}, nil
}
