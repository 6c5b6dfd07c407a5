// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cmorel/atelier-go/internal/store"
	"github.com/cmorel/atelier-go/internal/transfer"
)

func TestExportEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.get(t, "/admin/export")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/gzip" {
		t.Errorf("Content-Type = %q, want application/gzip", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "atelier-backup-") {
		t.Errorf("Content-Disposition = %q, want an atelier-backup filename", cd)
	}

	// The stream must be a valid archive carrying data.json
	gzReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatalf("response is not gzip: %v", err)
	}
	tarReader := tar.NewReader(gzReader)

	var data *transfer.BackupData
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		if header.Name == transfer.ArchiveRootName+"/"+transfer.DataFileName {
			raw, err := io.ReadAll(tarReader)
			if err != nil {
				t.Fatalf("reading data.json: %v", err)
			}
			data = &transfer.BackupData{}
			if err := json.Unmarshal(raw, data); err != nil {
				t.Fatalf("data.json is not valid JSON: %v", err)
			}
		}
	}
	if data == nil {
		t.Fatal("archive does not contain data.json")
	}
	if data.Version != transfer.BackupVersion {
		t.Errorf("backup version = %d, want %d", data.Version, transfer.BackupVersion)
	}
}

func TestExportEndpointRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/admin/export")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want redirect to login", resp.StatusCode)
	}
}

func TestImportEndpoint_RoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	// Download a backup of the seeded site
	export := app.get(t, "/admin/export")
	archive, err := io.ReadAll(export.Body)
	_ = export.Body.Close()
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	// Mutate the dataset so the restore is observable
	queries := store.New(app.DB)
	before, err := queries.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("listing categories: %v", err)
	}
	if _, err := queries.CreateCategory(context.Background(), store.CreateCategoryParams{
		Name:      "Éphémère",
		Slug:      "ephemere",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("creating category: %v", err)
	}

	resp := app.postBackup(t, archive)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != redirectAdmin {
		t.Errorf("redirected to %q, want %q", loc, redirectAdmin)
	}

	after, err := queries.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("listing categories: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("category count after restore = %d, want %d", len(after), len(before))
	}
}

func TestImportEndpoint_RejectsGarbage(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	queries := store.New(app.DB)
	before, err := queries.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("listing categories: %v", err)
	}

	resp := app.postBackup(t, []byte("pas une archive"))
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}

	after, err := queries.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("listing categories: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("category count changed on rejected import: %d -> %d", len(before), len(after))
	}
}

func TestImportEndpoint_MissingFile(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("unrelated", "champ")
	_ = writer.Close()

	resp, err := app.Client.Post(app.Server.URL+"/admin/import", writer.FormDataContentType(), body)
	if err != nil {
		t.Fatalf("POST /admin/import: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", resp.StatusCode)
	}
}

// postBackup uploads raw bytes as the backup form file.
func (app *testApp) postBackup(t *testing.T, archive []byte) *http.Response {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("backup", "backup.tar.gz")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(archive); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing form: %v", err)
	}

	resp, err := app.Client.Post(app.Server.URL+"/admin/import", writer.FormDataContentType(), body)
	if err != nil {
		t.Fatalf("POST /admin/import: %v", err)
	}
	return resp
}
