// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/store"
)

var contactEmailPattern = regexp.MustCompile(`.+@.+\..+`)

// SettingsService manages the singleton site settings row.
type SettingsService struct {
	db *sql.DB
}

// NewSettingsService creates a new settings service.
func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the settings row. A missing row yields defaults so the
// public site always has something to render.
func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	settings, err := store.New(s.db).GetSettings(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Settings{
			ID:                  1,
			ContactEmail:        store.DefaultContactEmail,
			HeroIntroHeading:    store.DefaultHeroIntroHeading,
			HeroIntroSubheading: store.DefaultHeroIntroSubheading,
			HeroIntroBody:       store.DefaultHeroIntroBody,
			HeroIntroImageURL:   store.DefaultHeroIntroImageURL,
		}, nil
	}
	return settings, err
}

// UpdateContactEmail validates and stores the public contact address.
func (s *SettingsService) UpdateContactEmail(ctx context.Context, email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" || !contactEmailPattern.MatchString(trimmed) {
		return NewValidationError("contact_email", "adresse email invalide")
	}
	return store.New(s.db).UpdateContactEmail(ctx, trimmed)
}

// HeroIntroInput carries the homepage introduction form values.
type HeroIntroInput struct {
	Heading    string
	Subheading string
	Body       string
	ImageURL   string
}

// UpdateHeroIntro validates and stores the homepage introduction block.
// A blank image URL keeps the current image; an unparseable or
// non-http(s) one is rejected.
func (s *SettingsService) UpdateHeroIntro(ctx context.Context, input HeroIntroInput) error {
	heading := strings.TrimSpace(input.Heading)
	subheading := strings.TrimSpace(input.Subheading)
	body := strings.TrimSpace(input.Body)
	proposedURL := strings.TrimSpace(input.ImageURL)

	if heading == "" {
		return NewValidationError("hero_intro_heading", "le titre est obligatoire")
	}
	if subheading == "" {
		return NewValidationError("hero_intro_subheading", "le sous-titre est obligatoire")
	}
	if body == "" {
		return NewValidationError("hero_intro_body", "le texte de présentation est obligatoire")
	}

	queries := store.New(s.db)

	imageURL := proposedURL
	if proposedURL == "" {
		current, err := s.Get(ctx)
		if err != nil {
			return err
		}
		imageURL = ResolveHeroImageURL(current.HeroIntroImageURL)
	} else if !isHTTPURL(proposedURL) {
		return NewValidationError("hero_intro_image_url", "URL d'image invalide (http ou https)")
	}

	return queries.UpdateHeroIntro(ctx, store.UpdateHeroIntroParams{
		Heading:    heading,
		Subheading: subheading,
		Body:       body,
		ImageURL:   imageURL,
	})
}

// ResolveHeroImageURL maps blank or malformed stored values to the
// default hero image so templates never render a broken link.
func ResolveHeroImageURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !isHTTPURL(trimmed) {
		return store.DefaultHeroIntroImageURL
	}
	return trimmed
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
