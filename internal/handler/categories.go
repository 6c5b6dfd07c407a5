// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// CategoryHandler handles the gallery category section of the admin
// dashboard.
type CategoryHandler struct {
	renderer       *render.Renderer
	categories     *service.CategoryService
	uploader       *service.Uploader
	maxUploadBytes int64
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(db *sql.DB, renderer *render.Renderer, uploader *service.Uploader, maxUploadBytes int64) *CategoryHandler {
	return &CategoryHandler{
		renderer:       renderer,
		categories:     service.NewCategoryService(db, uploader),
		uploader:       uploader,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create handles POST /admin/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.categoryInput(w, r)
	if !ok {
		return
	}

	if _, err := h.categories.Create(r.Context(), input); err != nil {
		if input.HeroImagePath != "" {
			h.uploader.Remove(input.HeroImagePath)
		}
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "category create failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Catégorie créée.")
}

// Update handles POST /admin/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Catégorie introuvable.")
		return
	}

	input, ok := h.categoryInput(w, r)
	if !ok {
		return
	}

	if _, err := h.categories.Update(r.Context(), id, input); err != nil {
		if input.HeroImagePath != "" {
			h.uploader.Remove(input.HeroImagePath)
		}
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "category update failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Catégorie mise à jour.")
}

// Delete handles POST /admin/categories/{id}/delete. Photos of the
// deleted category stay in the portfolio without a gallery.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Catégorie introuvable.")
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "category delete failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Catégorie supprimée.")
}

// categoryInput parses the shared create/update form, including the
// optional hero image upload.
func (h *CategoryHandler) categoryInput(w http.ResponseWriter, r *http.Request) (service.CategoryInput, bool) {
	if !parseMultipartOrRedirect(w, r, h.renderer, h.maxUploadBytes) {
		return service.CategoryInput{}, false
	}

	input := service.CategoryInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Position:    formPosition(r, "position"),
	}

	heroPath, err := saveUploadedFile(r, h.uploader, "hero_image")
	switch {
	case err == nil:
		input.HeroImagePath = heroPath
	case errors.Is(err, errNoFile):
	default:
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "hero image upload failed")
		return service.CategoryInput{}, false
	}

	return input, true
}
