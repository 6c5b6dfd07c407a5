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

// ExperienceHandler handles the service card section of the admin
// dashboard.
type ExperienceHandler struct {
	renderer       *render.Renderer
	experiences    *service.ExperienceService
	uploader       *service.Uploader
	maxUploadBytes int64
}

// NewExperienceHandler creates a new ExperienceHandler.
func NewExperienceHandler(db *sql.DB, renderer *render.Renderer, uploader *service.Uploader, maxUploadBytes int64) *ExperienceHandler {
	return &ExperienceHandler{
		renderer:       renderer,
		experiences:    service.NewExperienceService(db, uploader),
		uploader:       uploader,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create handles POST /admin/experiences.
func (h *ExperienceHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.experienceInput(w, r)
	if !ok {
		return
	}

	if _, err := h.experiences.Create(r.Context(), input); err != nil {
		if input.ImagePath != "" {
			h.uploader.Remove(input.ImagePath)
		}
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "experience create failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Prestation ajoutée.")
}

// Update handles POST /admin/experiences/{id}.
func (h *ExperienceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Prestation introuvable.")
		return
	}

	input, ok := h.experienceInput(w, r)
	if !ok {
		return
	}

	if _, err := h.experiences.Update(r.Context(), id, input); err != nil {
		if input.ImagePath != "" {
			h.uploader.Remove(input.ImagePath)
		}
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "experience update failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Prestation mise à jour.")
}

// Delete handles POST /admin/experiences/{id}/delete.
func (h *ExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Prestation introuvable.")
		return
	}

	if err := h.experiences.Delete(r.Context(), id); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "experience delete failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Prestation supprimée.")
}

// experienceInput parses the shared create/update form, including the
// optional card image upload and the remove-image checkbox.
func (h *ExperienceHandler) experienceInput(w http.ResponseWriter, r *http.Request) (service.ExperienceInput, bool) {
	if !parseMultipartOrRedirect(w, r, h.renderer, h.maxUploadBytes) {
		return service.ExperienceInput{}, false
	}

	input := service.ExperienceInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Icon:        r.FormValue("icon"),
		RemoveImage: r.FormValue("remove_image") == "on",
		Position:    formPosition(r, "position"),
	}

	imagePath, err := saveUploadedFile(r, h.uploader, "image")
	switch {
	case err == nil:
		input.ImagePath = imagePath
	case errors.Is(err, errNoFile):
	default:
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "experience image upload failed")
		return service.ExperienceInput{}, false
	}

	return input, true
}
