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

// DefaultPhotoTitle is applied to photos uploaded without a title.
const DefaultPhotoTitle = "Photographie du portfolio"

// PhotoService manages portfolio photos and their backing files.
type PhotoService struct {
	db       *sql.DB
	uploader *Uploader
}

// NewPhotoService creates a new photo service.
func NewPhotoService(db *sql.DB, uploader *Uploader) *PhotoService {
	return &PhotoService{db: db, uploader: uploader}
}

// PhotoInput carries create/update form values. ImagePath holds the
// public path of a freshly uploaded file; empty keeps the current one.
type PhotoInput struct {
	Title       string
	Description string
	ImagePath   string
	AccentColor string
	CategoryID  sql.NullInt64
}

// Get fetches a photo by id.
func (s *PhotoService) Get(ctx context.Context, id int64) (model.Photo, error) {
	photo, err := store.New(s.db).GetPhotoByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Photo{}, ErrNotFound
	}
	return photo, err
}

// List returns all photos, newest first.
func (s *PhotoService) List(ctx context.Context) ([]model.Photo, error) {
	return store.New(s.db).ListPhotos(ctx)
}

// ListByCategory returns the photos of one gallery, newest first.
func (s *PhotoService) ListByCategory(ctx context.Context, categoryID int64) ([]model.Photo, error) {
	return store.New(s.db).ListPhotosByCategory(ctx, categoryID)
}

// Create stores a new photo row for an already-uploaded file.
func (s *PhotoService) Create(ctx context.Context, input PhotoInput) (model.Photo, error) {
	if input.ImagePath == "" {
		return model.Photo{}, NewValidationError("file", "une image est obligatoire")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultPhotoTitle
	}
	accent := strings.TrimSpace(input.AccentColor)
	if accent == "" {
		accent = model.DefaultAccentColor
	}

	if err := s.validateCategoryRef(ctx, input.CategoryID); err != nil {
		return model.Photo{}, err
	}

	photo, err := store.New(s.db).CreatePhoto(ctx, store.CreatePhotoParams{
		Title:       title,
		Description: util.NullStringFromValue(strings.TrimSpace(input.Description)),
		ImagePath:   input.ImagePath,
		Palette:     model.DefaultPalette,
		AccentColor: accent,
		CategoryID:  input.CategoryID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return model.Photo{}, fmt.Errorf("creating photo: %w", err)
	}
	return photo, nil
}

// Update applies the input to an existing photo. When a replacement file
// is supplied, the old file is deleted only after the row update has
// been persisted; a failed write never orphans the only reference.
func (s *PhotoService) Update(ctx context.Context, id int64, input PhotoInput) (model.Photo, error) {
	queries := store.New(s.db)

	current, err := queries.GetPhotoByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Photo{}, ErrNotFound
	}
	if err != nil {
		return model.Photo{}, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = current.Title
	}
	accent := strings.TrimSpace(input.AccentColor)
	if accent == "" {
		accent = current.AccentColor
	}

	if err := s.validateCategoryRef(ctx, input.CategoryID); err != nil {
		return model.Photo{}, err
	}

	imagePath := current.ImagePath
	replaced := ""
	if input.ImagePath != "" && input.ImagePath != current.ImagePath {
		imagePath = input.ImagePath
		replaced = current.ImagePath
	}

	if err := queries.UpdatePhoto(ctx, store.UpdatePhotoParams{
		ID:          id,
		Title:       title,
		Description: util.NullStringFromValue(strings.TrimSpace(input.Description)),
		ImagePath:   imagePath,
		AccentColor: accent,
		CategoryID:  input.CategoryID,
	}); err != nil {
		return model.Photo{}, fmt.Errorf("updating photo: %w", err)
	}

	if replaced != "" && s.uploader != nil {
		s.uploader.Remove(replaced)
	}

	return queries.GetPhotoByID(ctx, id)
}

// Delete removes a photo row, then its backing file.
func (s *PhotoService) Delete(ctx context.Context, id int64) error {
	queries := store.New(s.db)

	current, err := queries.GetPhotoByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := queries.DeletePhoto(ctx, id); err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}

	if s.uploader != nil {
		s.uploader.Remove(current.ImagePath)
	}
	return nil
}

// validateCategoryRef rejects references to categories that do not exist.
func (s *PhotoService) validateCategoryRef(ctx context.Context, ref sql.NullInt64) error {
	if !ref.Valid {
		return nil
	}
	_, err := store.New(s.db).GetCategoryByID(ctx, ref.Int64)
	if errors.Is(err, sql.ErrNoRows) {
		return NewValidationError("category", "catégorie inconnue")
	}
	return err
}
