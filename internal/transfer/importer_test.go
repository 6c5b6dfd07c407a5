// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestImport_RoundTrip(t *testing.T) {
	s := setupTest(t)
	s.seedContent(t)

	var archive bytes.Buffer
	if err := NewExporter(s.DB, s.Logger, s.UploadsDir).ExportToWriter(s.Ctx, &archive); err != nil {
		t.Fatalf("ExportToWriter: %v", err)
	}

	before, err := NewExporter(s.DB, s.Logger, s.UploadsDir).Collect(s.Ctx)
	if err != nil {
		t.Fatalf("Collect before: %v", err)
	}

	// Mutate everything after the export.
	if err := s.Queries.DeleteAllContent(s.Ctx); err != nil {
		t.Fatalf("wiping content: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.UploadsDir, "stray.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing stray file: %v", err)
	}

	importer := NewImporter(s.DB, s.Logger, s.UploadsDir)
	if err := importer.ImportFromReader(s.Ctx, bytes.NewReader(archive.Bytes())); err != nil {
		t.Fatalf("ImportFromReader: %v", err)
	}

	after, err := NewExporter(s.DB, s.Logger, s.UploadsDir).Collect(s.Ctx)
	if err != nil {
		t.Fatalf("Collect after: %v", err)
	}

	// Identical except the generation timestamp.
	before.GeneratedAt = time.Time{}
	after.GeneratedAt = time.Time{}
	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)
	if !bytes.Equal(beforeJSON, afterJSON) {
		t.Errorf("dataset differs after round trip:\nbefore: %s\nafter:  %s", beforeJSON, afterJSON)
	}

	content, err := os.ReadFile(filepath.Join(s.UploadsDir, "photo_ceremonie.jpg"))
	if err != nil {
		t.Fatalf("restored upload missing: %v", err)
	}
	if string(content) != "jpeg-bytes" {
		t.Errorf("restored upload content = %q", content)
	}
	if _, err := os.Stat(filepath.Join(s.UploadsDir, "stray.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Error("file added after export survived the restore")
	}
}

func TestImport_RejectsEmptyInput(t *testing.T) {
	s := setupTest(t)

	err := NewImporter(s.DB, s.Logger, s.UploadsDir).ImportFromReader(s.Ctx, bytes.NewReader(nil))
	if !errors.Is(err, ErrEmptyBackup) {
		t.Errorf("expected ErrEmptyBackup, got %v", err)
	}
}

func TestImport_CorruptArchiveLeavesStateUntouched(t *testing.T) {
	s := setupTest(t)
	s.seedContent(t)

	importer := NewImporter(s.DB, s.Logger, s.UploadsDir)

	// Not a gzip stream at all.
	if err := importer.ImportFromReader(s.Ctx, bytes.NewReader([]byte("garbage"))); err == nil {
		t.Fatal("expected error for non-archive input")
	}

	// Valid tar.gz but missing the expected top-level directory.
	foreign := buildArchive(t, map[string][]byte{"something-else/readme.txt": []byte("hi")})
	if err := importer.ImportFromReader(s.Ctx, bytes.NewReader(foreign)); err == nil {
		t.Fatal("expected error for foreign archive")
	}

	// Expected directory but no data document.
	noData := buildArchive(t, map[string][]byte{ArchiveRootName + "/uploads/a.jpg": []byte("x")})
	if err := importer.ImportFromReader(s.Ctx, bytes.NewReader(noData)); err == nil {
		t.Fatal("expected error for archive without data.json")
	}

	// Unreadable data document.
	badJSON := buildArchive(t, map[string][]byte{ArchiveRootName + "/" + DataFileName: []byte("{not json")})
	if err := importer.ImportFromReader(s.Ctx, bytes.NewReader(badJSON)); err == nil {
		t.Fatal("expected error for malformed data.json")
	}

	photos, err := s.Queries.ListPhotosByID(s.Ctx)
	if err != nil {
		t.Fatalf("ListPhotosByID: %v", err)
	}
	if len(photos) != 1 {
		t.Errorf("photo count = %d, dataset was modified by a rejected import", len(photos))
	}
	if _, err := os.Stat(filepath.Join(s.UploadsDir, "photo_ceremonie.jpg")); err != nil {
		t.Errorf("uploads directory was modified by a rejected import: %v", err)
	}
}

func TestImport_RejectsUnknownVersion(t *testing.T) {
	s := setupTest(t)

	doc, _ := json.Marshal(map[string]any{"version": 2})
	archive := buildArchive(t, map[string][]byte{ArchiveRootName + "/" + DataFileName: doc})

	err := NewImporter(s.DB, s.Logger, s.UploadsDir).ImportFromReader(s.Ctx, bytes.NewReader(archive))
	if err == nil {
		t.Fatal("expected error for unknown backup version")
	}
}

func TestImport_InvalidRecordRollsBackEverything(t *testing.T) {
	s := setupTest(t)
	s.seedContent(t)

	doc, _ := json.Marshal(map[string]any{
		"version": 1,
		"categories": []map[string]any{
			{"id": 1, "name": "Valide", "slug": "valide"},
			{"id": 0, "name": "Identifiant nul", "slug": "nul"},
		},
	})
	archive := buildArchive(t, map[string][]byte{ArchiveRootName + "/" + DataFileName: doc})

	err := NewImporter(s.DB, s.Logger, s.UploadsDir).ImportFromReader(s.Ctx, bytes.NewReader(archive))
	if err == nil {
		t.Fatal("expected error for non-positive id")
	}

	categories, err := s.Queries.ListCategoriesByID(s.Ctx)
	if err != nil {
		t.Fatalf("ListCategoriesByID: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Mariage" {
		t.Errorf("pre-import categories not preserved after rollback: %+v", categories)
	}
}

func TestImport_NullsDanglingCategoryReference(t *testing.T) {
	s := setupTest(t)

	doc, _ := json.Marshal(map[string]any{
		"version":    1,
		"categories": []map[string]any{{"id": 1, "name": "Mariage", "slug": "mariage"}},
		"photos": []map[string]any{
			{"id": 1, "title": "A", "image_path": "/uploads/a.jpg", "category_id": 1},
			{"id": 2, "title": "B", "image_path": "/uploads/b.jpg", "category_id": 42},
		},
	})
	archive := buildArchive(t, map[string][]byte{ArchiveRootName + "/" + DataFileName: doc})

	if err := NewImporter(s.DB, s.Logger, s.UploadsDir).ImportFromReader(s.Ctx, bytes.NewReader(archive)); err != nil {
		t.Fatalf("ImportFromReader: %v", err)
	}

	photos, err := s.Queries.ListPhotosByID(s.Ctx)
	if err != nil {
		t.Fatalf("ListPhotosByID: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("photo count = %d, want 2", len(photos))
	}
	if !photos[0].CategoryID.Valid || photos[0].CategoryID.Int64 != 1 {
		t.Errorf("valid reference not preserved: %+v", photos[0].CategoryID)
	}
	if photos[1].CategoryID.Valid {
		t.Errorf("dangling reference not nulled: %+v", photos[1].CategoryID)
	}
}

func TestImport_DerivesBlankCategorySlug(t *testing.T) {
	s := setupTest(t)

	doc, _ := json.Marshal(map[string]any{
		"version":    1,
		"categories": []map[string]any{{"id": 1, "name": "Été 2024!!", "slug": ""}},
	})
	archive := buildArchive(t, map[string][]byte{ArchiveRootName + "/" + DataFileName: doc})

	if err := NewImporter(s.DB, s.Logger, s.UploadsDir).ImportFromReader(s.Ctx, bytes.NewReader(archive)); err != nil {
		t.Fatalf("ImportFromReader: %v", err)
	}

	cat, err := s.Queries.GetCategoryByID(s.Ctx, 1)
	if err != nil {
		t.Fatalf("GetCategoryByID: %v", err)
	}
	if cat.Slug != "ete-2024" {
		t.Errorf("slug = %q, want %q", cat.Slug, "ete-2024")
	}
}

func TestImport_ArchiveWithoutSettingsKeepsLiveRow(t *testing.T) {
	s := setupTest(t)
	s.seedContent(t)

	doc, _ := json.Marshal(map[string]any{"version": 1})
	archive := buildArchive(t, map[string][]byte{ArchiveRootName + "/" + DataFileName: doc})

	if err := NewImporter(s.DB, s.Logger, s.UploadsDir).ImportFromReader(s.Ctx, bytes.NewReader(archive)); err != nil {
		t.Fatalf("ImportFromReader: %v", err)
	}

	settings, err := s.Queries.GetSettings(s.Ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.ContactEmail != "contact@cecileartiste.com" {
		t.Errorf("contact email = %q, want live settings preserved", settings.ContactEmail)
	}
}

func TestImport_RejectsPathTraversal(t *testing.T) {
	s := setupTest(t)

	doc, _ := json.Marshal(map[string]any{"version": 1})
	archive := buildArchive(t, map[string][]byte{
		ArchiveRootName + "/" + DataFileName: doc,
		"../escape.txt":                      []byte("evil"),
	})

	err := NewImporter(s.DB, s.Logger, s.UploadsDir).ImportFromReader(s.Ctx, bytes.NewReader(archive))
	if err == nil {
		t.Fatal("expected traversal entry to be rejected")
	}
}

func TestImport_SecondImportRejectedWhileRunning(t *testing.T) {
	s := setupTest(t)

	importer := NewImporter(s.DB, s.Logger, s.UploadsDir)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- importer.ImportFromReader(s.Ctx, &blockingReader{started: started, release: release})
	}()

	<-started
	if err := importer.ImportFromReader(s.Ctx, bytes.NewReader([]byte("x"))); !errors.Is(err, ErrImportInProgress) {
		t.Errorf("expected ErrImportInProgress, got %v", err)
	}

	close(release)
	if err := <-done; err == nil {
		t.Error("blocked import should fail once its reader errors")
	}
}

// blockingReader signals when reading starts and blocks until released,
// then reports EOF.
type blockingReader struct {
	started chan struct{}
	release chan struct{}
	once    bool
}

func (r *blockingReader) Read([]byte) (int, error) {
	if !r.once {
		r.once = true
		close(r.started)
	}
	<-r.release
	return 0, os.ErrClosed
}
