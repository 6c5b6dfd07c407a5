// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/cmorel/atelier-go/internal/middleware"
	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// AdminHandler renders the single-page admin dashboard.
type AdminHandler struct {
	renderer    *render.Renderer
	photos      *service.PhotoService
	categories  *service.CategoryService
	experiences *service.ExperienceService
	insights    *service.InsightService
	settings    *service.SettingsService
	messages    *service.MessageService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer, uploader *service.Uploader, messages *service.MessageService) *AdminHandler {
	return &AdminHandler{
		renderer:    renderer,
		photos:      service.NewPhotoService(db, uploader),
		categories:  service.NewCategoryService(db, uploader),
		experiences: service.NewExperienceService(db, uploader),
		insights:    service.NewInsightService(db),
		settings:    service.NewSettingsService(db),
		messages:    messages,
	}
}

// DashboardData holds everything the admin page manages.
type DashboardData struct {
	User        *model.User
	Photos      []model.Photo
	Categories  []model.Category
	Experiences []model.Experience
	Insights    []model.StudioInsight
	Messages    []model.ContactMessage
	Settings    model.Settings
}

// Dashboard handles GET /admin. All content sections are edited from
// this one page, so everything is loaded up front.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photos, err := h.photos.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing photos", "error", err)
		return
	}
	categories, err := h.categories.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing categories", "error", err)
		return
	}
	experiences, err := h.experiences.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing experiences", "error", err)
		return
	}
	insights, err := h.insights.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing insights", "error", err)
		return
	}
	messages, err := h.messages.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing messages", "error", err)
		return
	}
	settings, err := h.settings.Get(ctx)
	if err != nil {
		logAndInternalError(w, "loading settings", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Administration",
		Data: DashboardData{
			User:        middleware.GetUser(r),
			Photos:      photos,
			Categories:  categories,
			Experiences: experiences,
			Insights:    insights,
			Messages:    messages,
			Settings:    settings,
		},
	}); err != nil {
		logAndInternalError(w, "rendering dashboard", "error", err)
	}
}
