// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmorel/atelier-go/internal/store"
)

// testSetup contains common test dependencies.
type testSetup struct {
	DB         *sql.DB
	Queries    *store.Queries
	Ctx        context.Context
	UploadsDir string
	Logger     *slog.Logger
}

func setupTest(t *testing.T) *testSetup {
	t.Helper()

	f, err := os.CreateTemp("", "atelier-transfer-test-*.db")
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

	uploadsDir := filepath.Join(t.TempDir(), "uploads")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		t.Fatalf("creating uploads dir: %v", err)
	}

	return &testSetup{
		DB:         db,
		Queries:    store.New(db),
		Ctx:        context.Background(),
		UploadsDir: uploadsDir,
		Logger:     slog.New(slog.DiscardHandler),
	}
}

// seedContent fills every content table with a small representative
// dataset and drops one file into the uploads directory.
func (s *testSetup) seedContent(t *testing.T) {
	t.Helper()

	now := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)

	cat, err := s.Queries.CreateCategory(s.Ctx, store.CreateCategoryParams{
		Name:      "Mariage",
		Position:  1,
		Slug:      "mariage",
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("seeding category: %v", err)
	}

	_, err = s.Queries.CreatePhoto(s.Ctx, store.CreatePhotoParams{
		Title:       "Cérémonie",
		ImagePath:   "/uploads/photo_ceremonie.jpg",
		Palette:     "vibrant",
		AccentColor: "#ff6f61",
		CategoryID:  sql.NullInt64{Int64: cat.ID, Valid: true},
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("seeding photo: %v", err)
	}

	_, err = s.Queries.CreateExperience(s.Ctx, store.CreateExperienceParams{
		Title:       "Mariages",
		Description: "Reportage complet de votre journée.",
		Icon:        sql.NullString{String: "💍", Valid: true},
		Position:    0,
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("seeding experience: %v", err)
	}

	_, err = s.Queries.CreateStudioInsight(s.Ctx, store.CreateStudioInsightParams{
		StatValue:   "180 séances",
		StatCaption: "réalisées en studio",
		DataCount:   180,
		Position:    0,
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("seeding insight: %v", err)
	}

	_, err = s.Queries.CreateContactMessage(s.Ctx, store.CreateContactMessageParams{
		Name:      "Jean",
		Email:     "jean@example.com",
		Subject:   "Autres",
		Message:   "Bonjour !",
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("seeding message: %v", err)
	}

	err = s.Queries.InsertSettings(s.Ctx, store.InsertSettingsParams{
		ContactEmail:        "contact@cecileartiste.com",
		HeroIntroHeading:    "Qui suis-je ?",
		HeroIntroSubheading: "Photographe à Amiens",
		HeroIntroBody:       "Bienvenue dans mon univers.",
		HeroIntroImageURL:   "https://example.com/hero.png",
	})
	if err != nil {
		t.Fatalf("seeding settings: %v", err)
	}

	err = os.WriteFile(filepath.Join(s.UploadsDir, "photo_ceremonie.jpg"), []byte("jpeg-bytes"), 0o644)
	if err != nil {
		t.Fatalf("seeding upload file: %v", err)
	}
}

// buildArchive packs the given entries into a tar.gz body for import
// tests. Map keys are full entry names inside the archive.
func buildArchive(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	for name, content := range entries {
		header := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("writing header %s: %v", name, err)
		}
		if _, err := tarWriter.Write(content); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buf.Bytes()
}
