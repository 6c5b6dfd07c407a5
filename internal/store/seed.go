// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmorel/atelier-go/internal/auth"
	"github.com/cmorel/atelier-go/internal/model"
)

// Default admin credentials, overridable through configuration.
const (
	DefaultAdminUsername = "Cecile"
	DefaultAdminPassword = "changeme"
)

// Default settings values. Blank settings fields are healed back to
// these on startup.
const (
	DefaultContactEmail        = "contact@cecileartiste.com"
	DefaultHeroIntroHeading    = "Qui suis-je ?"
	DefaultHeroIntroSubheading = "Cécile, photographe professionnelle à Amiens"
	DefaultHeroIntroBody       = "Artiste photographe spécialisée dans les univers colorés, " +
		"j’immortalise vos histoires à Amiens et partout où elles me portent. " +
		"Reportages de mariages, portraits signature ou projets professionnels : " +
		"je me déplace en France et à l’international pour créer des images lumineuses qui vous ressemblent."
	DefaultHeroIntroImageURL = "https://i.postimg.cc/brcb2z8C/21314712-8c8f-4d76-829b-f9a4fc4ecb31.png"
)

// One-time seed markers recorded in seed_flags.
const (
	seedFlagExperiences    = "default_experiences"
	seedFlagStudioInsights = "default_studio_insights"
)

// defaultCategoryNames is the fixed ordered list of galleries seeded on
// startup. A category is only created when no category with that name
// exists yet, compared case- and whitespace-insensitively.
var defaultCategoryNames = []string{
	"Mariage",
	"Portrait",
	"Famille",
	"Entreprise",
}

type defaultExperience struct {
	title       string
	description string
	icon        string
}

var defaultExperiences = []defaultExperience{
	{
		title:       "Reportage de mariage",
		description: "Une journée entière à vos côtés pour raconter votre histoire, des préparatifs à la soirée.",
		icon:        "💍",
	},
	{
		title:       "Portrait signature",
		description: "Une séance en studio ou en extérieur pour un portrait lumineux qui vous ressemble.",
		icon:        "📷",
	},
	{
		title:       "Projets professionnels",
		description: "Images de marque, événements et contenus pour les entreprises de la région et au-delà.",
		icon:        "🏢",
	},
}

type defaultInsight struct {
	statValue   string
	statCaption string
	dataCount   int64
}

var defaultInsights = []defaultInsight{
	{statValue: "180 séances", statCaption: "réalisées ces trois dernières années", dataCount: 180},
	{statValue: "60 mariages", statCaption: "racontés en images", dataCount: 60},
	{statValue: "12 ans", statCaption: "de photographie professionnelle", dataCount: 12},
}

// SeedOptions overrides the built-in admin credentials.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
}

// Seed brings a freshly migrated database to a usable state: the admin
// account, the settings singleton, the default galleries, slug backfill
// and the one-time homepage seeds. Every step is idempotent, so a run
// aborted halfway converges on the next start. Any failure is fatal to
// startup.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	queries := New(db)

	if err := seedAdminUser(ctx, queries, opts); err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}
	if err := seedSettings(ctx, queries); err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	if err := seedCategories(ctx, queries); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	if err := backfillCategorySlugs(ctx, queries); err != nil {
		return fmt.Errorf("backfilling category slugs: %w", err)
	}
	if err := seedExperiences(ctx, queries); err != nil {
		return fmt.Errorf("seeding experiences: %w", err)
	}
	if err := seedStudioInsights(ctx, queries); err != nil {
		return fmt.Errorf("seeding studio insights: %w", err)
	}

	return nil
}

func seedAdminUser(ctx context.Context, queries *Queries, opts SeedOptions) error {
	username := strings.TrimSpace(opts.AdminUsername)
	if username == "" {
		username = DefaultAdminUsername
	}
	password := opts.AdminPassword
	if password == "" {
		password = DefaultAdminPassword
	}

	_, err := queries.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	slog.Info("created admin user", "id", user.ID, "username", user.Username)
	return nil
}

// seedSettings inserts the singleton row if absent and heals blank text
// fields back to their defaults. Non-blank values are never touched.
func seedSettings(ctx context.Context, queries *Queries) error {
	settings, err := queries.GetSettings(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return queries.InsertSettings(ctx, InsertSettingsParams{
			ContactEmail:        DefaultContactEmail,
			HeroIntroHeading:    DefaultHeroIntroHeading,
			HeroIntroSubheading: DefaultHeroIntroSubheading,
			HeroIntroBody:       DefaultHeroIntroBody,
			HeroIntroImageURL:   DefaultHeroIntroImageURL,
		})
	}
	if err != nil {
		return err
	}

	healed := model.Settings{
		ContactEmail:        healBlank(settings.ContactEmail, DefaultContactEmail),
		HeroIntroHeading:    healBlank(settings.HeroIntroHeading, DefaultHeroIntroHeading),
		HeroIntroSubheading: healBlank(settings.HeroIntroSubheading, DefaultHeroIntroSubheading),
		HeroIntroBody:       healBlank(settings.HeroIntroBody, DefaultHeroIntroBody),
		HeroIntroImageURL:   healBlank(settings.HeroIntroImageURL, DefaultHeroIntroImageURL),
	}
	if healed.ContactEmail == settings.ContactEmail &&
		healed.HeroIntroHeading == settings.HeroIntroHeading &&
		healed.HeroIntroSubheading == settings.HeroIntroSubheading &&
		healed.HeroIntroBody == settings.HeroIntroBody &&
		healed.HeroIntroImageURL == settings.HeroIntroImageURL {
		return nil
	}

	slog.Info("healing blank settings fields")
	return queries.UpdateSettings(ctx, UpdateSettingsParams{
		ContactEmail:        healed.ContactEmail,
		HeroIntroHeading:    healed.HeroIntroHeading,
		HeroIntroSubheading: healed.HeroIntroSubheading,
		HeroIntroBody:       healed.HeroIntroBody,
		HeroIntroImageURL:   healed.HeroIntroImageURL,
	})
}

func healBlank(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func seedCategories(ctx context.Context, queries *Queries) error {
	for _, name := range defaultCategoryNames {
		exists, err := queries.CategoryNameExists(ctx, CategoryNameExistsParams{Name: name})
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		position, err := queries.NextCategoryPosition(ctx)
		if err != nil {
			return err
		}

		// Slug left blank here so the backfill pass assigns them all in
		// one deterministic (position, name) sweep.
		if _, err := queries.CreateCategory(ctx, CreateCategoryParams{
			Name:      name,
			Position:  position,
			Slug:      "",
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		slog.Info("seeded default category", "name", name)
	}
	return nil
}

func backfillCategorySlugs(ctx context.Context, queries *Queries) error {
	blank, err := queries.ListCategoriesWithBlankSlug(ctx)
	if err != nil {
		return err
	}

	for _, category := range blank {
		slug, err := queries.UniqueCategorySlug(ctx, category.Name, category.ID)
		if err != nil {
			return err
		}
		if err := queries.SetCategorySlug(ctx, category.ID, slug); err != nil {
			return err
		}
		slog.Info("backfilled category slug", "id", category.ID, "slug", slug)
	}
	return nil
}

func seedExperiences(ctx context.Context, queries *Queries) error {
	done, err := queries.HasSeedFlag(ctx, seedFlagExperiences)
	if err != nil || done {
		return err
	}

	// A database upgraded from before seed_flags existed may already
	// hold rows. Mark the seed applied without touching them.
	existing, err := queries.ListExperiences(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return queries.SetSeedFlag(ctx, seedFlagExperiences)
	}

	for i, exp := range defaultExperiences {
		if _, err := queries.CreateExperience(ctx, CreateExperienceParams{
			Title:       exp.title,
			Description: exp.description,
			Icon:        sql.NullString{String: exp.icon, Valid: true},
			Position:    int64(i),
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
	}

	return queries.SetSeedFlag(ctx, seedFlagExperiences)
}

func seedStudioInsights(ctx context.Context, queries *Queries) error {
	done, err := queries.HasSeedFlag(ctx, seedFlagStudioInsights)
	if err != nil || done {
		return err
	}

	existing, err := queries.ListStudioInsights(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return queries.SetSeedFlag(ctx, seedFlagStudioInsights)
	}

	for i, ins := range defaultInsights {
		if _, err := queries.CreateStudioInsight(ctx, CreateStudioInsightParams{
			StatValue:   ins.statValue,
			StatCaption: ins.statCaption,
			DataCount:   ins.dataCount,
			Position:    int64(i),
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
	}

	return queries.SetSeedFlag(ctx, seedFlagStudioInsights)
}
