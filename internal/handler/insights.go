// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// InsightHandler handles the studio statistics section of the admin
// dashboard.
type InsightHandler struct {
	renderer *render.Renderer
	insights *service.InsightService
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(db *sql.DB, renderer *render.Renderer) *InsightHandler {
	return &InsightHandler{
		renderer: renderer,
		insights: service.NewInsightService(db),
	}
}

// Create handles POST /admin/studio-insights.
func (h *InsightHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdmin) {
		return
	}

	if _, err := h.insights.Create(r.Context(), h.insightInput(r)); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "insight create failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Statistique ajoutée.")
}

// Update handles POST /admin/studio-insights/{id}.
func (h *InsightHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Statistique introuvable.")
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdmin) {
		return
	}

	if _, err := h.insights.Update(r.Context(), id, h.insightInput(r)); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "insight update failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Statistique mise à jour.")
}

// Delete handles POST /admin/studio-insights/{id}/delete.
func (h *InsightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, "Statistique introuvable.")
		return
	}

	if err := h.insights.Delete(r.Context(), id); err != nil {
		flashServiceError(w, r, h.renderer, redirectAdmin, err, "insight delete failed")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, "Statistique supprimée.")
}

func (h *InsightHandler) insightInput(r *http.Request) service.InsightInput {
	return service.InsightInput{
		StatValue:   r.FormValue("stat_value"),
		StatCaption: r.FormValue("stat_caption"),
		DataCount:   r.FormValue("data_count"),
		Position:    formPosition(r, "position"),
	}
}
