// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// SettingsHandler handles the hero intro and notification email
// sections of the admin dashboard.
type SettingsHandler struct {
	renderer *render.Renderer
	settings *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(db *sql.DB, renderer *render.Renderer) *SettingsHandler {
	return &SettingsHandler{
		renderer: renderer,
		settings: service.NewSettingsService(db),
	}
}

// UpdateHeroIntro handles POST /admin/hero-intro.
func (h *SettingsHandler) UpdateHeroIntro(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdmin) {
		return
	}

	err := h.settings.UpdateHeroIntro(r.Context(), service.HeroIntroInput{
		Heading:    r.FormValue("heading"),
		Subheading: r.FormValue("subheading"),
		Body:       r.FormValue("body"),
		ImageURL:   r.FormValue("image_url"),
	})
	if err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "hero intro update failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Présentation mise à jour.")
}

// UpdateContactEmail handles POST /admin/contact-email.
func (h *SettingsHandler) UpdateContactEmail(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdmin) {
		return
	}

	if err := h.settings.UpdateContactEmail(r.Context(), r.FormValue("contact_email")); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "contact email update failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Adresse de notification mise à jour.")
}
