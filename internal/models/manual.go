// Package models defines the domain types for the manual portal.
package models

import (
	"slices"
	"time"
)

// UnavailableURL marks a manual whose content is not published yet (準備中).
const UnavailableURL = "#"

// Manual is a single operation guide entry.
type Manual struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	URL            string          `json:"url"`
	MainCategory   string          `json:"main_category"`
	SubCategory    string          `json:"sub_category,omitempty"`
	Tags           []string        `json:"tags"`
	ReferenceLinks []ReferenceLink `json:"reference_links"`
	IsPublished    bool            `json:"is_published"`
	OrderIndex     int             `json:"order_index"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ReferenceLink is an auxiliary link shown alongside a manual.
type ReferenceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Available reports whether the manual points at real content.
func (m Manual) Available() bool {
	return m.URL != "" && m.URL != UnavailableURL
}

// HasTag reports whether tag is one of the manual's tags (exact match).
func (m Manual) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}
