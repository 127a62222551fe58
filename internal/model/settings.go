// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// DefaultPostsPerPage is used until settings are saved.
const DefaultPostsPerPage = 10

// PostSettings is the singleton blog configuration row.
type PostSettings struct {
	PostsPerPage     int       `json:"postsPerPage"`
	BlogTitle        string    `json:"blogTitle"`
	BlogDescription  string    `json:"blogDescription"`
	DefaultOGImageID *int64    `json:"defaultOgImageId"`
	RSSEnabled       bool      `json:"rssEnabled"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DefaultPostSettings returns the settings reported before the row exists.
func DefaultPostSettings() PostSettings {
	return PostSettings{
		PostsPerPage: DefaultPostsPerPage,
		RSSEnabled:   true,
	}
}
