// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// errNoFile reports an absent (not invalid) file field.
var errNoFile = errors.New("no file in form")

// idParam extracts and validates the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("identifiant invalide")
	}
	return id, nil
}

// formPosition parses an optional position form value. Blank or
// malformed input means "let the service assign one".
func formPosition(r *http.Request, field string) *int64 {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil
	}
	pos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &pos
}

// formCategoryID parses the optional category selector. Blank, zero or
// malformed input means "no category".
func formCategoryID(r *http.Request, field string) sql.NullInt64 {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return sql.NullInt64{}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

// saveUploadedFile pulls a single file out of the parsed multipart form
// and stores it through the uploader. Returns errNoFile when the field
// is absent so callers can treat the upload as optional.
func saveUploadedFile(r *http.Request, uploader *service.Uploader, field string) (string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return "", errNoFile
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer func(file multipart.File) { _ = file.Close() }(file)

	return uploader.Save(file)
}

// parseMultipartOrRedirect parses a multipart form bounded by maxBytes.
func parseMultipartOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, maxBytes int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		flashError(w, r, renderer, redirectAdmin, "Le fichier envoyé est trop volumineux ou le formulaire est invalide.")
		return false
	}
	return true
}
