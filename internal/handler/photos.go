// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// PhotoHandler handles the photo section of the admin dashboard.
type PhotoHandler struct {
	renderer       *render.Renderer
	photos         *service.PhotoService
	uploader       *service.Uploader
	maxUploadBytes int64
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(db *sql.DB, renderer *render.Renderer, uploader *service.Uploader, maxUploadBytes int64) *PhotoHandler {
	return &PhotoHandler{
		renderer:       renderer,
		photos:         service.NewPhotoService(db, uploader),
		uploader:       uploader,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create handles POST /admin/photos. Several files can be uploaded in
// one submission; the form fields apply to each of them.
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseMultipartOrRedirect(w, r, h.renderer, h.maxUploadBytes) {
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		flashError(w, r, h.renderer, redirectAdmin, "Aucune photo sélectionnée.")
		return
	}

	input := service.PhotoInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		AccentColor: r.FormValue("accent_color"),
		CategoryID:  formCategoryID(r, "category_id"),
	}

	created := 0
	for _, header := range files {
		imagePath, err := h.savePhotoFile(header)
		if err != nil {
			flashServiceError(w, r, h.renderer, redirectAdmin, err, "photo upload failed")
			return
		}

		input.ImagePath = imagePath
		if _, err := h.photos.Create(r.Context(), input); err != nil {
			h.uploader.Remove(imagePath)
			flashServiceError(w, r, h.renderer, redirectAdmin, err, "photo create failed")
			return
		}
		created++
	}

	if created == 1 {
		flashSuccess(w, r, h.renderer, redirectAdmin, "Photo ajoutée.")
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdmin, fmt.Sprintf("%d photos ajoutées.", created))
}

// Update handles POST /admin/photos/{id}. A new file replaces the
// current image; without one the existing image is kept.
func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Photo introuvable.")
		return
	}

	if !parseMultipartOrRedirect(w, r, h.renderer, h.maxUploadBytes) {
		return
	}

	input := service.PhotoInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		AccentColor: r.FormValue("accent_color"),
		CategoryID:  formCategoryID(r, "category_id"),
	}

	imagePath, err := saveUploadedFile(r, h.uploader, "photo")
	switch {
	case err == nil:
		input.ImagePath = imagePath
	case errors.Is(err, errNoFile):
	default:
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "photo upload failed")
		return
	}

	if _, err := h.photos.Update(r.Context(), id, input); err != nil {
		if input.ImagePath != "" {
			h.uploader.Remove(input.ImagePath)
		}
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "photo update failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Photo mise à jour.")
}

// Delete handles POST /admin/photos/{id}/delete.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Photo introuvable.")
		return
	}

	if err := h.photos.Delete(r.Context(), id); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "photo delete failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Photo supprimée.")
}

// savePhotoFile stores one file of a multi-file upload.
func (h *PhotoHandler) savePhotoFile(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer func(file multipart.File) { _ = file.Close() }(file)

	return h.uploader.Save(file)
}
