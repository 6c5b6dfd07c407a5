// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer produces and restores portable site backups: a
// tar.gz archive holding one data.json document plus a mirror of the
// uploads directory.
package transfer

import (
	"bytes"
	"strconv"
	"time"
)

// BackupVersion is the current version of the backup format. Importers
// reject archives written by a newer version instead of guessing.
const BackupVersion = 1

// Archive layout constants. Every backup carries a fixed top-level
// directory so a foreign tar.gz is recognized before anything is touched.
const (
	ArchiveRootName = "atelier-backup"
	DataFileName    = "data.json"
	UploadsDirName  = "uploads"
)

// BackupData is the complete data.json document.
type BackupData struct {
	Version        int                `json:"version"`
	GeneratedAt    time.Time          `json:"generated_at"`
	Photos         []BackupPhoto      `json:"photos"`
	Categories     []BackupCategory   `json:"categories"`
	Experiences    []BackupExperience `json:"experiences"`
	StudioInsights []BackupInsight    `json:"studio_insights"`
	Settings       *BackupSettings    `json:"settings,omitempty"`
	Messages       []BackupMessage    `json:"messages"`
}

// BackupPhoto is one portfolio photo record.
type BackupPhoto struct {
	ID          looseInt  `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ImagePath   string    `json:"image_path"`
	Palette     string    `json:"palette"`
	AccentColor string    `json:"accent_color"`
	CategoryID  *looseInt `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// BackupCategory is one gallery record.
type BackupCategory struct {
	ID            looseInt  `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	HeroImagePath *string   `json:"hero_image_path"`
	Position      looseInt  `json:"position"`
	Slug          string    `json:"slug"`
	CreatedAt     time.Time `json:"created_at"`
}

// BackupExperience is one homepage service card record.
type BackupExperience struct {
	ID          looseInt  `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon"`
	ImagePath   *string   `json:"image_path"`
	Position    looseInt  `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// BackupInsight is one homepage statistic record.
type BackupInsight struct {
	ID          looseInt  `json:"id"`
	StatValue   string    `json:"stat_value"`
	StatCaption string    `json:"stat_caption"`
	DataCount   looseInt  `json:"data_count"`
	Position    looseInt  `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// BackupSettings is the singleton settings object. Missing fields fall
// back to the seeded defaults on import.
type BackupSettings struct {
	ContactEmail        string `json:"contact_email"`
	HeroIntroHeading    string `json:"hero_intro_heading"`
	HeroIntroSubheading string `json:"hero_intro_subheading"`
	HeroIntroBody       string `json:"hero_intro_body"`
	HeroIntroImageURL   string `json:"hero_intro_image_url"`
}

// BackupMessage is one contact inbox record.
type BackupMessage struct {
	ID        looseInt  `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// looseInt decodes numeric fields leniently. Archives written by older
// tooling carry positions and counters as numbers, numeric strings or
// null; anything unparseable coerces to zero instead of failing the
// whole document.
type looseInt int64

func (n *looseInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "null" || s == "" {
		*n = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = looseInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*n = looseInt(int64(f))
		return nil
	}
	*n = 0
	return nil
}
