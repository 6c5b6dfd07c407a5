// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/transfer"
)

// ImportExportHandler handles the backup download and restore routes.
type ImportExportHandler struct {
	renderer       *render.Renderer
	exporter       *transfer.Exporter
	importer       *transfer.Importer
	maxUploadBytes int64
}

// NewImportExportHandler creates a new ImportExportHandler.
func NewImportExportHandler(renderer *render.Renderer, exporter *transfer.Exporter, importer *transfer.Importer, maxUploadBytes int64) *ImportExportHandler {
	return &ImportExportHandler{
		renderer:       renderer,
		exporter:       exporter,
		importer:       importer,
		maxUploadBytes: maxUploadBytes,
	}
}

// Export handles GET /admin/export. The archive is streamed straight
// into the response, nothing is staged on disk.
func (h *ImportExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := transfer.ExportFilename(time.Now())

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exporter.ExportToWriter(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log
		slog.Error("backup export failed", "category", "backup", "error", err)
	}
}

// Import handles POST /admin/import. The uploaded archive replaces the
// whole dataset and the uploads directory.
func (h *ImportExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Le fichier envoyé est trop volumineux ou le formulaire est invalide.")
		return
	}

	file, _, err := r.FormFile("backup")
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Aucun fichier de sauvegarde fourni.")
		return
	}
	defer func(file multipart.File) { _ = file.Close() }(file)

	if err := h.importer.ImportFromReader(r.Context(), file); err != nil {
		if errors.Is(err, transfer.ErrImportInProgress) || errors.Is(err, transfer.ErrEmptyBackup) {
			flashError(w, r, h.renderer, redirectAdmin, err.Error())
			return
		}
		var invalid *transfer.InvalidBackupError
		if errors.As(err, &invalid) {
			flashError(w, r, h.renderer, redirectAdmin, invalid.Error())
			return
		}
		slog.Error("backup import failed", "category", "backup", "error", err)
		flashError(w, r, h.renderer, redirectAdmin, "L'import de la sauvegarde a échoué, les données existantes sont conservées.")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Sauvegarde importée avec succès.")
}
