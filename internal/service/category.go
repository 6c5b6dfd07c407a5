// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/store"
	"github.com/cmorel/atelier-go/internal/util"
)

// CategoryService manages photo galleries and their slugs.
type CategoryService struct {
	db       *sql.DB
	uploader *Uploader
}

// NewCategoryService creates a new category service.
func NewCategoryService(db *sql.DB, uploader *Uploader) *CategoryService {
	return &CategoryService{db: db, uploader: uploader}
}

// CategoryInput carries create/update form values.
type CategoryInput struct {
	Name          string
	Description   string
	HeroImagePath string // empty keeps the current image on update
	Position      *int64 // nil means "assign the next position" on create
}

// Get fetches a category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (model.Category, error) {
	queries := store.New(s.db)
	category, err := queries.GetCategoryByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return category, err
}

// GetBySlug fetches a category by its public slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	queries := store.New(s.db)
	category, err := queries.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return category, err
}

// List returns all categories in display order.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return store.New(s.db).ListCategories(ctx)
}

// Create validates the input, derives a unique slug and stores a new
// category.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (model.Category, error) {
	queries := store.New(s.db)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Category{}, NewValidationError("name", "le nom est obligatoire")
	}

	taken, err := queries.CategoryNameExists(ctx, store.CategoryNameExistsParams{Name: name})
	if err != nil {
		return model.Category{}, fmt.Errorf("checking category name: %w", err)
	}
	if taken {
		return model.Category{}, NewConflictError("une catégorie porte déjà ce nom")
	}

	position := int64(0)
	if input.Position != nil {
		position = *input.Position
	} else {
		position, err = queries.NextCategoryPosition(ctx)
		if err != nil {
			return model.Category{}, fmt.Errorf("computing next position: %w", err)
		}
	}

	slug, err := queries.UniqueCategorySlug(ctx, name, 0)
	if err != nil {
		return model.Category{}, fmt.Errorf("generating slug: %w", err)
	}

	category, err := queries.CreateCategory(ctx, store.CreateCategoryParams{
		Name:          name,
		Description:   util.NullStringFromValue(strings.TrimSpace(input.Description)),
		HeroImagePath: util.NullStringFromValue(input.HeroImagePath),
		Position:      position,
		Slug:          slug,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}
	return category, nil
}

// Update applies the input to an existing category. The slug is only
// recomputed when the name changes; unrelated edits never break
// published gallery links.
func (s *CategoryService) Update(ctx context.Context, id int64, input CategoryInput) (model.Category, error) {
	queries := store.New(s.db)

	current, err := queries.GetCategoryByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Category{}, NewValidationError("name", "le nom est obligatoire")
	}

	taken, err := queries.CategoryNameExists(ctx, store.CategoryNameExistsParams{Name: name, ExcludeID: id})
	if err != nil {
		return model.Category{}, fmt.Errorf("checking category name: %w", err)
	}
	if taken {
		return model.Category{}, NewConflictError("une catégorie porte déjà ce nom")
	}

	slug := current.Slug
	nameUnchanged := strings.EqualFold(strings.TrimSpace(current.Name), name)
	if slug == "" || !nameUnchanged {
		slug, err = queries.UniqueCategorySlug(ctx, name, id)
		if err != nil {
			return model.Category{}, fmt.Errorf("generating slug: %w", err)
		}
	}

	position := current.Position
	if input.Position != nil {
		position = *input.Position
	}

	heroImage := current.HeroImagePath
	replacedImage := ""
	if input.HeroImagePath != "" {
		if current.HeroImagePath.Valid && current.HeroImagePath.String != input.HeroImagePath {
			replacedImage = current.HeroImagePath.String
		}
		heroImage = sql.NullString{String: input.HeroImagePath, Valid: true}
	}

	if err := queries.UpdateCategory(ctx, store.UpdateCategoryParams{
		ID:            id,
		Name:          name,
		Description:   util.NullStringFromValue(strings.TrimSpace(input.Description)),
		HeroImagePath: heroImage,
		Position:      position,
		Slug:          slug,
	}); err != nil {
		return model.Category{}, fmt.Errorf("updating category: %w", err)
	}

	// The old image is only removed once the new row is durable.
	if replacedImage != "" && s.uploader != nil {
		s.uploader.Remove(replacedImage)
	}

	return queries.GetCategoryByID(ctx, id)
}

// Delete removes a category in one transaction: photos referencing it
// are detached first, then the row goes away. The hero image file is
// deleted only after the transaction commits.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	queries := store.New(s.db)

	current, err := queries.GetCategoryByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := queries.WithTx(tx)
	if err := qtx.ClearPhotoCategory(ctx, id); err != nil {
		return fmt.Errorf("detaching photos: %w", err)
	}
	if err := qtx.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	if current.HeroImagePath.Valid && s.uploader != nil {
		s.uploader.Remove(current.HeroImagePath.String)
	}
	return nil
}
