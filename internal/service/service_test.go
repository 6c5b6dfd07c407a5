// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmorel/atelier-go/internal/mailer"
	"github.com/cmorel/atelier-go/internal/store"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "atelier-service-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func testUploader(t *testing.T) *Uploader {
	t.Helper()
	u, err := NewUploader(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	return u
}

func TestCategoryService_CreateAssignsUniqueSlug(t *testing.T) {
	db := testDB(t)
	svc := NewCategoryService(db, testUploader(t))
	ctx := context.Background()

	first, err := svc.Create(ctx, CategoryInput{Name: "Été"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Slug != "ete" {
		t.Errorf("slug = %q, want %q", first.Slug, "ete")
	}
	if first.Position != 1 {
		t.Errorf("position = %d, want 1", first.Position)
	}

	second, err := svc.Create(ctx, CategoryInput{Name: "ete"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.Slug != "ete-2" {
		t.Errorf("slug = %q, want %q", second.Slug, "ete-2")
	}
	if second.Position != 2 {
		t.Errorf("position = %d, want 2", second.Position)
	}
}

func TestCategoryService_CreateRejectsDuplicateName(t *testing.T) {
	db := testDB(t)
	svc := NewCategoryService(db, testUploader(t))
	ctx := context.Background()

	if _, err := svc.Create(ctx, CategoryInput{Name: "Mariage"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, CategoryInput{Name: "  mariage  "})
	if !IsConflict(err) {
		t.Errorf("expected conflict error, got %v", err)
	}

	_, err = svc.Create(ctx, CategoryInput{Name: "   "})
	if !IsValidation(err) {
		t.Errorf("expected validation error for blank name, got %v", err)
	}
}

func TestCategoryService_UpdateKeepsSlugUnlessRenamed(t *testing.T) {
	db := testDB(t)
	svc := NewCategoryService(db, testUploader(t))
	ctx := context.Background()

	cat, err := svc.Create(ctx, CategoryInput{Name: "Portrait"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, cat.ID, CategoryInput{
		Name:        "Portrait",
		Description: "Séances en studio",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != cat.Slug {
		t.Errorf("slug changed on description edit: %q -> %q", cat.Slug, updated.Slug)
	}

	renamed, err := svc.Update(ctx, cat.ID, CategoryInput{Name: "Portraits de famille"})
	if err != nil {
		t.Fatalf("Update rename: %v", err)
	}
	if renamed.Slug != "portraits-de-famille" {
		t.Errorf("slug = %q, want %q", renamed.Slug, "portraits-de-famille")
	}
}

func TestCategoryService_DeleteDetachesPhotos(t *testing.T) {
	db := testDB(t)
	uploader := testUploader(t)
	cats := NewCategoryService(db, uploader)
	photos := NewPhotoService(db, uploader)
	ctx := context.Background()

	cat, err := cats.Create(ctx, CategoryInput{Name: "Entreprise"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	photo, err := photos.Create(ctx, PhotoInput{
		ImagePath:  "/uploads/photo_test.jpg",
		CategoryID: sql.NullInt64{Int64: cat.ID, Valid: true},
	})
	if err != nil {
		t.Fatalf("Create photo: %v", err)
	}

	if err := cats.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := cats.Get(ctx, cat.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	kept, err := photos.Get(ctx, photo.ID)
	if err != nil {
		t.Fatalf("Get photo after category delete: %v", err)
	}
	if kept.CategoryID.Valid {
		t.Errorf("photo still references deleted category %d", kept.CategoryID.Int64)
	}
}

func TestPhotoService_CreateDefaults(t *testing.T) {
	db := testDB(t)
	svc := NewPhotoService(db, testUploader(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, PhotoInput{Title: "Sans image"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error without image, got %v", err)
	}

	photo, err := svc.Create(ctx, PhotoInput{ImagePath: "/uploads/photo_a.jpg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if photo.Title != DefaultPhotoTitle {
		t.Errorf("title = %q, want default %q", photo.Title, DefaultPhotoTitle)
	}
	if photo.AccentColor != "#ff6f61" {
		t.Errorf("accent = %q, want default", photo.AccentColor)
	}
	if photo.Palette != "vibrant" {
		t.Errorf("palette = %q, want vibrant", photo.Palette)
	}

	_, err = svc.Create(ctx, PhotoInput{
		ImagePath:  "/uploads/photo_b.jpg",
		CategoryID: sql.NullInt64{Int64: 999, Valid: true},
	})
	if !IsValidation(err) {
		t.Errorf("expected validation error for unknown category, got %v", err)
	}
}

func TestPhotoService_UpdateReplacesImage(t *testing.T) {
	db := testDB(t)
	uploader := testUploader(t)
	svc := NewPhotoService(db, uploader)
	ctx := context.Background()

	oldFile := filepath.Join(uploader.Dir(), "photo_old.jpg")
	newFile := filepath.Join(uploader.Dir(), "photo_new.jpg")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte("img"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", f, err)
		}
	}

	photo, err := svc.Create(ctx, PhotoInput{Title: "Plage", ImagePath: "/uploads/photo_old.jpg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A rejected update must not touch the current file.
	_, err = svc.Update(ctx, photo.ID, PhotoInput{
		ImagePath:  "/uploads/photo_new.jpg",
		CategoryID: sql.NullInt64{Int64: 999, Valid: true},
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Fatalf("old file removed despite failed update: %v", err)
	}

	updated, err := svc.Update(ctx, photo.ID, PhotoInput{ImagePath: "/uploads/photo_new.jpg"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ImagePath != "/uploads/photo_new.jpg" {
		t.Errorf("image path = %q, want %q", updated.ImagePath, "/uploads/photo_new.jpg")
	}
	stored, err := svc.Get(ctx, photo.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.ImagePath != "/uploads/photo_new.jpg" {
		t.Errorf("stored image path = %q, want %q", stored.ImagePath, "/uploads/photo_new.jpg")
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Errorf("old file still present after replacement")
	}

	// Metadata-only edits keep the current image and its file.
	kept, err := svc.Update(ctx, photo.ID, PhotoInput{Title: "Plage du Crotoy"})
	if err != nil {
		t.Fatalf("Update metadata: %v", err)
	}
	if kept.ImagePath != "/uploads/photo_new.jpg" {
		t.Errorf("image path changed on metadata edit: %q", kept.ImagePath)
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("current file removed by metadata edit: %v", err)
	}
}

func TestExperienceService_RequiresIconOrImage(t *testing.T) {
	db := testDB(t)
	svc := NewExperienceService(db, testUploader(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, ExperienceInput{Title: "Mariages", Description: "Reportage complet"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error without icon or image, got %v", err)
	}

	exp, err := svc.Create(ctx, ExperienceInput{
		Title:       "Mariages",
		Description: "Reportage complet",
		Icon:        "💍",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if exp.Position != 0 {
		t.Errorf("first experience position = %d, want 0", exp.Position)
	}

	// Dropping the image is only allowed while an icon remains.
	_, err = svc.Update(ctx, exp.ID, ExperienceInput{
		Title:       "Mariages",
		Description: "Reportage complet",
		RemoveImage: true,
	})
	if !IsValidation(err) {
		t.Errorf("expected validation error when clearing both visuals, got %v", err)
	}
}

func TestResolveDataCount(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		statValue string
		want      int64
	}{
		{"explicit count wins", "42", "180 séances", 42},
		{"negative explicit clamps to zero", "-3", "180 séances", 0},
		{"blank falls back to digits", "", "180 séances", 180},
		{"digits concatenated", "", "plus de 1 200 clichés", 1200},
		{"no digits anywhere", "", "beaucoup", 0},
		{"garbage raw falls back", "abc", "60 mariages", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDataCount(tt.raw, tt.statValue); got != tt.want {
				t.Errorf("ResolveDataCount(%q, %q) = %d, want %d", tt.raw, tt.statValue, got, tt.want)
			}
		})
	}
}

func TestSettingsService_UpdateContactEmail(t *testing.T) {
	db := testDB(t)
	seedSettings(t, db)
	svc := NewSettingsService(db)
	ctx := context.Background()

	if err := svc.UpdateContactEmail(ctx, "  hello@example.com  "); err != nil {
		t.Fatalf("UpdateContactEmail: %v", err)
	}
	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.ContactEmail != "hello@example.com" {
		t.Errorf("contact email = %q", settings.ContactEmail)
	}

	for _, bad := range []string{"", "not-an-email", "missing@tld"} {
		if err := svc.UpdateContactEmail(ctx, bad); !IsValidation(err) {
			t.Errorf("UpdateContactEmail(%q): expected validation error, got %v", bad, err)
		}
	}
}

func TestSettingsService_UpdateHeroIntro(t *testing.T) {
	db := testDB(t)
	seedSettings(t, db)
	svc := NewSettingsService(db)
	ctx := context.Background()

	err := svc.UpdateHeroIntro(ctx, HeroIntroInput{
		Heading:    "Qui suis-je ?",
		Subheading: "Photographe à Amiens",
		Body:       "Bienvenue dans mon univers.",
		ImageURL:   "ftp://example.com/image.png",
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error for non-http URL, got %v", err)
	}

	err = svc.UpdateHeroIntro(ctx, HeroIntroInput{
		Heading:    "Qui suis-je ?",
		Subheading: "Photographe à Amiens",
		Body:       "Bienvenue dans mon univers.",
		ImageURL:   "https://example.com/hero.png",
	})
	if err != nil {
		t.Fatalf("UpdateHeroIntro: %v", err)
	}

	// A blank URL keeps the stored image.
	err = svc.UpdateHeroIntro(ctx, HeroIntroInput{
		Heading:    "Nouveau titre",
		Subheading: "Photographe à Amiens",
		Body:       "Bienvenue dans mon univers.",
	})
	if err != nil {
		t.Fatalf("UpdateHeroIntro blank URL: %v", err)
	}
	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.HeroIntroImageURL != "https://example.com/hero.png" {
		t.Errorf("image URL = %q, want previous value kept", settings.HeroIntroImageURL)
	}
	if settings.HeroIntroHeading != "Nouveau titre" {
		t.Errorf("heading = %q", settings.HeroIntroHeading)
	}
}

func TestResolveHeroImageURL(t *testing.T) {
	if got := ResolveHeroImageURL("  "); got != store.DefaultHeroIntroImageURL {
		t.Errorf("blank should resolve to default, got %q", got)
	}
	if got := ResolveHeroImageURL("javascript:alert(1)"); got != store.DefaultHeroIntroImageURL {
		t.Errorf("non-http scheme should resolve to default, got %q", got)
	}
	if got := ResolveHeroImageURL("https://example.com/a.png"); got != "https://example.com/a.png" {
		t.Errorf("valid URL should pass through, got %q", got)
	}
}

// fakeSender captures notifications instead of hitting SMTP.
type fakeSender struct {
	configured bool
	fail       error
	sent       []mailer.ContactNotification
}

func (f *fakeSender) IsConfigured() bool { return f.configured }

func (f *fakeSender) SendContactNotification(n mailer.ContactNotification) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, n)
	return nil
}

func TestMessageService_SubmitRecordsAndNotifies(t *testing.T) {
	db := testDB(t)
	seedSettings(t, db)
	sender := &fakeSender{configured: true}
	svc := NewMessageService(db, sender)
	ctx := context.Background()

	msg, err := svc.Submit(ctx, MessageInput{
		Name:    "Jean",
		Email:   "jean@example.com",
		Message: "Bonjour !",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if msg.Subject != DefaultContactSubject {
		t.Errorf("subject = %q, want default %q", msg.Subject, DefaultContactSubject)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sender.sent))
	}
	if sender.sent[0].To != store.DefaultContactEmail {
		t.Errorf("notification recipient = %q", sender.sent[0].To)
	}
	if sender.sent[0].Email != "jean@example.com" {
		t.Errorf("notification reply address = %q", sender.sent[0].Email)
	}
}

func TestMessageService_SubmitSurvivesMailFailure(t *testing.T) {
	db := testDB(t)
	seedSettings(t, db)
	sender := &fakeSender{configured: true, fail: errors.New("smtp down")}
	svc := NewMessageService(db, sender)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, MessageInput{
		Name:    "Jean",
		Email:   "jean@example.com",
		Message: "Bonjour !",
	}); err != nil {
		t.Fatalf("Submit should succeed despite mail failure: %v", err)
	}

	inbox, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(inbox) != 1 {
		t.Errorf("inbox has %d messages, want 1", len(inbox))
	}
}

func TestMessageService_SubmitValidation(t *testing.T) {
	db := testDB(t)
	svc := NewMessageService(db, &fakeSender{})
	ctx := context.Background()

	cases := []MessageInput{
		{Email: "jean@example.com", Message: "Bonjour"},
		{Name: "Jean", Message: "Bonjour"},
		{Name: "Jean", Email: "pas-un-email", Message: "Bonjour"},
		{Name: "Jean", Email: "jean@example.com"},
	}
	for i, input := range cases {
		if _, err := svc.Submit(ctx, input); !IsValidation(err) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func seedSettings(t *testing.T, db *sql.DB) {
	t.Helper()
	err := store.New(db).InsertSettings(context.Background(), store.InsertSettingsParams{
		ContactEmail:        store.DefaultContactEmail,
		HeroIntroHeading:    store.DefaultHeroIntroHeading,
		HeroIntroSubheading: store.DefaultHeroIntroSubheading,
		HeroIntroBody:       store.DefaultHeroIntroBody,
		HeroIntroImageURL:   store.DefaultHeroIntroImageURL,
	})
	if err != nil {
		t.Fatalf("inserting settings: %v", err)
	}
}
