// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cmorel/atelier-go/internal/store"
)

func TestHome(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), store.DefaultHeroIntroHeading) {
		t.Error("homepage does not show the hero heading")
	}
}

func TestGallery(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/galerie")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCategoryBySlug(t *testing.T) {
	app := newTestApp(t)

	category, err := store.New(app.DB).CreateCategory(context.Background(), store.CreateCategoryParams{
		Name:      "Mariage d'été",
		Slug:      "mariage-d-ete",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("creating category: %v", err)
	}

	resp := app.get(t, "/galerie/"+category.Slug)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Mariage d&#39;été") && !strings.Contains(string(body), "Mariage d'été") {
		t.Error("category page does not show the category name")
	}
}

func TestCategoryUnknownSlugIs404(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/galerie/n-existe-pas")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestContactSubmitStoresMessage(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/contact", url.Values{
		"name":    {"Jeanne Dupont"},
		"email":   {"jeanne@example.com"},
		"message": {"Bonjour, je cherche un photographe pour mon mariage."},
	})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != RouteContact {
		t.Errorf("redirected to %q, want %q", loc, RouteContact)
	}

	messages, err := store.New(app.DB).ListContactMessages(context.Background())
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("message count = %d, want 1", len(messages))
	}
	if messages[0].Subject != "Autres" {
		t.Errorf("subject = %q, want default subject", messages[0].Subject)
	}
}

func TestContactSubmitRejectsBadEmail(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/contact", url.Values{
		"name":    {"Jeanne"},
		"email":   {"pas-un-email"},
		"message": {"Bonjour"},
	})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}

	messages, err := store.New(app.DB).ListContactMessages(context.Background())
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("message count = %d, want 0", len(messages))
	}
}

func TestUnknownPageIs404(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/page-fantome")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
