// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"
)

func TestSeed_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Seed(ctx, db, SeedOptions{}); err != nil {
			t.Fatalf("Seed (run %d): %v", i+1, err)
		}
	}

	q := New(db)

	user, err := q.GetUserByUsername(ctx, DefaultAdminUsername)
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user.PasswordHash == "" {
		t.Error("admin user has no password hash")
	}

	settings, err := q.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.ContactEmail != DefaultContactEmail {
		t.Errorf("ContactEmail = %q, want %q", settings.ContactEmail, DefaultContactEmail)
	}

	categories, err := q.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != len(defaultCategoryNames) {
		t.Fatalf("ListCategories = %d rows, want %d", len(categories), len(defaultCategoryNames))
	}
	seen := make(map[string]bool)
	for _, cat := range categories {
		if cat.Slug == "" {
			t.Errorf("category %q has a blank slug after seed", cat.Name)
		}
		if seen[cat.Slug] {
			t.Errorf("duplicate slug %q", cat.Slug)
		}
		seen[cat.Slug] = true
	}

	experiences, err := q.ListExperiences(ctx)
	if err != nil {
		t.Fatalf("ListExperiences: %v", err)
	}
	if len(experiences) != len(defaultExperiences) {
		t.Errorf("ListExperiences = %d rows, want %d", len(experiences), len(defaultExperiences))
	}

	insights, err := q.ListStudioInsights(ctx)
	if err != nil {
		t.Fatalf("ListStudioInsights: %v", err)
	}
	if len(insights) != len(defaultInsights) {
		t.Errorf("ListStudioInsights = %d rows, want %d", len(insights), len(defaultInsights))
	}
}

func TestSeed_NoReseedAfterDeletion(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()

	if err := Seed(ctx, db, SeedOptions{}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	q := New(db)
	experiences, err := q.ListExperiences(ctx)
	if err != nil {
		t.Fatalf("ListExperiences: %v", err)
	}
	for _, exp := range experiences {
		if err := q.DeleteExperience(ctx, exp.ID); err != nil {
			t.Fatalf("DeleteExperience: %v", err)
		}
	}

	// Emptying the table never triggers a second seed.
	if err := Seed(ctx, db, SeedOptions{}); err != nil {
		t.Fatalf("Seed (second run): %v", err)
	}

	experiences, err = q.ListExperiences(ctx)
	if err != nil {
		t.Fatalf("ListExperiences: %v", err)
	}
	if len(experiences) != 0 {
		t.Errorf("experiences reseeded after deletion: %d rows", len(experiences))
	}
}

func TestSeed_BackfillsExistingBlankSlugs(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	// Rows predating the slug column arrive with blank slugs.
	for _, name := range []string{"Été", "ete"} {
		if _, err := q.CreateCategory(ctx, CreateCategoryParams{
			Name: name, Slug: "",
		}); err != nil {
			t.Fatalf("CreateCategory(%q): %v", name, err)
		}
	}

	if err := Seed(ctx, db, SeedOptions{}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	first, err := q.GetCategoryBySlug(ctx, "ete")
	if err != nil {
		t.Fatalf("GetCategoryBySlug(ete): %v", err)
	}
	second, err := q.GetCategoryBySlug(ctx, "ete-2")
	if err != nil {
		t.Fatalf("GetCategoryBySlug(ete-2): %v", err)
	}
	if first.ID == second.ID {
		t.Error("colliding names should land on distinct rows")
	}
}
