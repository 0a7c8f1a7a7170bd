// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// TenantSite holds site-wide metadata for a single render.
// IsDemoContent is true whenever the content repository was bypassed.
type TenantSite struct {
	Title         string
	Description   string
	Email         string
	SocialLinks   []SocialLink
	Username      string
	IsSubdomain   bool
	IsDemoContent bool
}

// SiteFromProfile builds site metadata from a tenant profile.
func SiteFromProfile(p *UserProfile, isSubdomain bool) TenantSite {
	title := p.DisplayName
	if title == "" {
		title = p.Username
	}
	links := p.SocialLinks
	if links == nil {
		links = []SocialLink{}
	}
	return TenantSite{
		Title:       title,
		Description: p.Bio,
		Email:       p.Email,
		SocialLinks: links,
		Username:    p.Username,
		IsSubdomain: isSubdomain,
	}
}
