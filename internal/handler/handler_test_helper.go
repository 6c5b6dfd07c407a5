// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cmorel/atelier-go/internal/mailer"
	"github.com/cmorel/atelier-go/internal/middleware"
	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
	"github.com/cmorel/atelier-go/internal/session"
	"github.com/cmorel/atelier-go/internal/store"
	"github.com/cmorel/atelier-go/internal/transfer"
	"github.com/cmorel/atelier-go/web"
)

const testMaxUploadBytes = 8 << 20

// testApp wires the full router against a temporary database, the way
// the real entrypoint does.
type testApp struct {
	DB         *sql.DB
	Server     *httptest.Server
	Client     *http.Client
	UploadsDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbFile, err := os.CreateTemp(t.TempDir(), "atelier-handler-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	_ = dbFile.Close()

	db, err := store.NewDB(dbFile.Name())
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	if err := store.Seed(context.Background(), db, store.SeedOptions{}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	uploadsDir := t.TempDir()
	uploader, err := service.NewUploader(uploadsDir)
	if err != nil {
		t.Fatalf("creating uploader: %v", err)
	}

	sm := session.New(db, true)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	messages := service.NewMessageService(db, mailer.New(mailer.SMTPConfig{}))

	authHandler := NewAuthHandler(db, renderer, sm, nil)
	frontendHandler := NewFrontendHandler(db, renderer, uploader, messages)
	adminHandler := NewAdminHandler(db, renderer, uploader, messages)
	photoHandler := NewPhotoHandler(db, renderer, uploader, testMaxUploadBytes)
	categoryHandler := NewCategoryHandler(db, renderer, uploader, testMaxUploadBytes)
	experienceHandler := NewExperienceHandler(db, renderer, uploader, testMaxUploadBytes)
	insightHandler := NewInsightHandler(db, renderer)
	settingsHandler := NewSettingsHandler(db, renderer)
	messageHandler := NewMessageHandler(renderer, messages)
	ieHandler := NewImportExportHandler(renderer,
		transfer.NewExporter(db, logger, uploadsDir),
		transfer.NewImporter(db, logger, uploadsDir),
		testMaxUploadBytes)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)

	r.Get(RouteRoot, frontendHandler.Home)
	r.Get(RouteGallery, frontendHandler.Gallery)
	r.Get(RouteGallery+"/{slug}", frontendHandler.Category)
	r.Get(RouteContact, frontendHandler.ContactForm)
	r.Post(RouteContact, frontendHandler.ContactSubmit)

	r.Get("/admin/login", authHandler.LoginForm)
	r.Post("/admin/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sm))
		r.Use(middleware.LoadUser(sm, db))

		r.Get("/admin", adminHandler.Dashboard)
		r.Post("/admin/logout", authHandler.Logout)

		r.Post("/admin/photos", photoHandler.Create)
		r.Post("/admin/photos/{id}", photoHandler.Update)
		r.Post("/admin/photos/{id}/delete", photoHandler.Delete)

		r.Post("/admin/categories", categoryHandler.Create)
		r.Post("/admin/categories/{id}", categoryHandler.Update)
		r.Post("/admin/categories/{id}/delete", categoryHandler.Delete)

		r.Post("/admin/experiences", experienceHandler.Create)
		r.Post("/admin/experiences/{id}", experienceHandler.Update)
		r.Post("/admin/experiences/{id}/delete", experienceHandler.Delete)

		r.Post("/admin/studio-insights", insightHandler.Create)
		r.Post("/admin/studio-insights/{id}", insightHandler.Update)
		r.Post("/admin/studio-insights/{id}/delete", insightHandler.Delete)

		r.Post("/admin/hero-intro", settingsHandler.UpdateHeroIntro)
		r.Post("/admin/contact-email", settingsHandler.UpdateContactEmail)

		r.Post("/admin/messages/{id}/delete", messageHandler.Delete)

		r.Get("/admin/export", ieHandler.Export)
		r.Post("/admin/import", ieHandler.Import)
	})

	r.NotFound(frontendHandler.NotFound)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{DB: db, Server: server, Client: client, UploadsDir: uploadsDir}
}

// login authenticates with the seeded admin account.
func (app *testApp) login(t *testing.T) {
	t.Helper()

	resp := app.postForm(t, "/admin/login", url.Values{
		"username": {store.DefaultAdminUsername},
		"password": {store.DefaultAdminPassword},
	})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != redirectAdmin {
		t.Fatalf("login redirected to %q, want %q", loc, redirectAdmin)
	}
}

func (app *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := app.Client.Get(app.Server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (app *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := app.Client.Post(app.Server.URL+path,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}
