// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/cmorel/atelier-go/internal/model"
)

const settingsColumns = "id, contact_email, hero_intro_heading, hero_intro_subheading, hero_intro_body, hero_intro_image_url"

// GetSettings fetches the singleton settings row.
func (q *Queries) GetSettings(ctx context.Context) (model.Settings, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM settings WHERE id = 1`)
	var s model.Settings
	err := row.Scan(&s.ID, &s.ContactEmail, &s.HeroIntroHeading,
		&s.HeroIntroSubheading, &s.HeroIntroBody, &s.HeroIntroImageURL)
	return s, err
}

// InsertSettingsParams holds the fields for InsertSettings.
type InsertSettingsParams struct {
	ContactEmail        string
	HeroIntroHeading    string
	HeroIntroSubheading string
	HeroIntroBody       string
	HeroIntroImageURL   string
}

// InsertSettings creates the singleton settings row with id 1.
func (q *Queries) InsertSettings(ctx context.Context, arg InsertSettingsParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO settings (id, contact_email, hero_intro_heading, hero_intro_subheading, hero_intro_body, hero_intro_image_url)
		 VALUES (1, ?, ?, ?, ?, ?)`,
		arg.ContactEmail, arg.HeroIntroHeading, arg.HeroIntroSubheading,
		arg.HeroIntroBody, arg.HeroIntroImageURL)
	return err
}

// UpdateSettingsParams holds the fields for UpdateSettings.
type UpdateSettingsParams struct {
	ContactEmail        string
	HeroIntroHeading    string
	HeroIntroSubheading string
	HeroIntroBody       string
	HeroIntroImageURL   string
}

// UpdateSettings rewrites the singleton settings row.
func (q *Queries) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE settings SET contact_email = ?, hero_intro_heading = ?, hero_intro_subheading = ?, hero_intro_body = ?, hero_intro_image_url = ? WHERE id = 1`,
		arg.ContactEmail, arg.HeroIntroHeading, arg.HeroIntroSubheading,
		arg.HeroIntroBody, arg.HeroIntroImageURL)
	return err
}

// UpdateContactEmail changes only the public contact address.
func (q *Queries) UpdateContactEmail(ctx context.Context, email string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE settings SET contact_email = ? WHERE id = 1`, email)
	return err
}

// UpdateHeroIntroParams holds the fields for UpdateHeroIntro.
type UpdateHeroIntroParams struct {
	Heading    string
	Subheading string
	Body       string
	ImageURL   string
}

// UpdateHeroIntro changes the homepage introduction block.
func (q *Queries) UpdateHeroIntro(ctx context.Context, arg UpdateHeroIntroParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE settings SET hero_intro_heading = ?, hero_intro_subheading = ?, hero_intro_body = ?, hero_intro_image_url = ? WHERE id = 1`,
		arg.Heading, arg.Subheading, arg.Body, arg.ImageURL)
	return err
}
