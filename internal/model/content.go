// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Supported MIME types for photo uploads
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// DefaultAccentColor is applied to photos uploaded without an explicit color.
const DefaultAccentColor = "#ff6f61"

// DefaultPalette is the legacy palette tag carried on photo rows.
const DefaultPalette = "vibrant"

// Photo is a portfolio image, optionally attached to a category.
type Photo struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description sql.NullString `json:"description,omitempty"`
	ImagePath   string         `json:"image_path"`
	Palette     string         `json:"palette"`
	AccentColor string         `json:"accent_color"`
	CategoryID  sql.NullInt64  `json:"category_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Category groups photos into a gallery. Every category carries a
// non-empty, globally unique slug derived from its name.
type Category struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   sql.NullString `json:"description,omitempty"`
	HeroImagePath sql.NullString `json:"hero_image_path,omitempty"`
	Position      int64          `json:"position"`
	Slug          string         `json:"slug"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Experience is a service card on the homepage. At least one of Icon or
// ImagePath must be present.
type Experience struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        sql.NullString `json:"icon,omitempty"`
	ImagePath   sql.NullString `json:"image_path,omitempty"`
	Position    int64          `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
}

// StudioInsight is a homepage statistic ("180 séances", ...).
type StudioInsight struct {
	ID          int64     `json:"id"`
	StatValue   string    `json:"stat_value"`
	StatCaption string    `json:"stat_caption"`
	DataCount   int64     `json:"data_count"`
	Position    int64     `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// Settings is the singleton configuration row (id = 1).
type Settings struct {
	ID                  int64  `json:"id"`
	ContactEmail        string `json:"contact_email"`
	HeroIntroHeading    string `json:"hero_intro_heading"`
	HeroIntroSubheading string `json:"hero_intro_subheading"`
	HeroIntroBody       string `json:"hero_intro_body"`
	HeroIntroImageURL   string `json:"hero_intro_image_url"`
}

// ContactMessage is an append-only inbox entry from the public contact form.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
