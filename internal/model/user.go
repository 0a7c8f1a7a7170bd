// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// UserProfile is the public profile of a tenant.
type UserProfile struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Bio         string       `json:"bio"`
	Email       string       `json:"email"`
	ThemeID     string       `json:"theme_id"`
	SocialLinks []SocialLink `json:"social_links"`
	CreatedAt   time.Time    `json:"created_at"`
}

// SocialLink is a link to one of the tenant's external profiles.
type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
