// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/render"
	"github.com/cmorel/atelier-go/internal/service"
)

// FrontendHandler handles the public portfolio pages.
type FrontendHandler struct {
	renderer    *render.Renderer
	photos      *service.PhotoService
	categories  *service.CategoryService
	experiences *service.ExperienceService
	insights    *service.InsightService
	settings    *service.SettingsService
	messages    *service.MessageService
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, renderer *render.Renderer, uploader *service.Uploader, messages *service.MessageService) *FrontendHandler {
	return &FrontendHandler{
		renderer:    renderer,
		photos:      service.NewPhotoService(db, uploader),
		categories:  service.NewCategoryService(db, uploader),
		experiences: service.NewExperienceService(db, uploader),
		insights:    service.NewInsightService(db),
		settings:    service.NewSettingsService(db),
		messages:    messages,
	}
}

// HomeData holds everything the homepage renders.
type HomeData struct {
	Settings    model.Settings
	Experiences []model.Experience
	Insights    []model.StudioInsight
	Categories  []model.Category
	Photos      []model.Photo
}

// Home renders the homepage.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.settings.Get(ctx)
	if err != nil {
		logAndInternalError(w, "loading settings", "error", err)
		return
	}
	settings.HeroIntroImageURL = service.ResolveHeroImageURL(settings.HeroIntroImageURL)

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
	categories, err := h.categories.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing categories", "error", err)
		return
	}
	photos, err := h.photos.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing photos", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "public/home", render.TemplateData{
		Title: "Accueil",
		Data: HomeData{
			Settings:    settings,
			Experiences: experiences,
			Insights:    insights,
			Categories:  categories,
			Photos:      photos,
		},
	}); err != nil {
		logAndInternalError(w, "rendering homepage", "error", err)
	}
}

// GalleryData holds the full gallery listing.
type GalleryData struct {
	Categories []model.Category
	Photos     []model.Photo
}

// Gallery renders the full photo gallery.
func (h *FrontendHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.categories.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing categories", "error", err)
		return
	}
	photos, err := h.photos.List(ctx)
	if err != nil {
		logAndInternalError(w, "listing photos", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "public/gallery", render.TemplateData{
		Title: "Galerie",
		Data:  GalleryData{Categories: categories, Photos: photos},
	}); err != nil {
		logAndInternalError(w, "rendering gallery", "error", err)
	}
}

// CategoryData holds one gallery category and its photos.
type CategoryData struct {
	Category model.Category
	Photos   []model.Photo
}

// Category renders a single gallery selected by slug.
func (h *FrontendHandler) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := h.categories.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "loading category", "error", err)
		return
	}

	photos, err := h.photos.ListByCategory(ctx, category.ID)
	if err != nil {
		logAndInternalError(w, "listing category photos", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "public/category", render.TemplateData{
		Title: category.Name,
		Data:  CategoryData{Category: category, Photos: photos},
	}); err != nil {
		logAndInternalError(w, "rendering category", "error", err)
	}
}

// ContactForm renders the public contact form.
func (h *FrontendHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "public/contact", render.TemplateData{
		Title: "Contact",
	}); err != nil {
		logAndInternalError(w, "rendering contact form", "error", err)
	}
}

// ContactSubmit handles the contact form submission.
func (h *FrontendHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteContact) {
		return
	}

	_, err := h.messages.Submit(r.Context(), service.MessageInput{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Subject: r.FormValue("subject"),
		Message: r.FormValue("message"),
	})
	if err != nil {
		flashServiceError(w, r, h.renderer, RouteContact, err, "contact submission failed")
		return
	}

	flashSuccess(w, r, h.renderer, RouteContact, "Merci, votre message a bien été envoyé !")
}

// NotFound renders the public 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := h.renderer.Render(w, r, "public/notfound", render.TemplateData{
		Title: "Page introuvable",
	}); err != nil {
		http.Error(w, "Page introuvable", http.StatusNotFound)
	}
}
