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

// ExperienceService manages the homepage service cards.
type ExperienceService struct {
	db       *sql.DB
	uploader *Uploader
}

// NewExperienceService creates a new experience service.
func NewExperienceService(db *sql.DB, uploader *Uploader) *ExperienceService {
	return &ExperienceService{db: db, uploader: uploader}
}

// ExperienceInput carries create/update form values.
type ExperienceInput struct {
	Title       string
	Description string
	Icon        string
	ImagePath   string // freshly uploaded file; empty keeps the current one
	RemoveImage bool   // explicit "remove image" intent on update
	Position    *int64 // nil appends at the end on create
}

// Get fetches an experience by id.
func (s *ExperienceService) Get(ctx context.Context, id int64) (model.Experience, error) {
	exp, err := store.New(s.db).GetExperienceByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Experience{}, ErrNotFound
	}
	return exp, err
}

// List returns all experiences in display order.
func (s *ExperienceService) List(ctx context.Context) ([]model.Experience, error) {
	return store.New(s.db).ListExperiences(ctx)
}

// Create validates and stores a new experience card.
func (s *ExperienceService) Create(ctx context.Context, input ExperienceInput) (model.Experience, error) {
	queries := store.New(s.db)

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	icon := strings.TrimSpace(input.Icon)

	if title == "" {
		return model.Experience{}, NewValidationError("title", "le titre est obligatoire")
	}
	if description == "" {
		return model.Experience{}, NewValidationError("description", "la description est obligatoire")
	}
	if icon == "" && input.ImagePath == "" {
		return model.Experience{}, NewValidationError("icon", "une icône ou une image est obligatoire")
	}

	position := int64(0)
	if input.Position != nil {
		position = *input.Position
	} else {
		var err error
		position, err = queries.NextExperiencePosition(ctx)
		if err != nil {
			return model.Experience{}, fmt.Errorf("computing next position: %w", err)
		}
	}

	exp, err := queries.CreateExperience(ctx, store.CreateExperienceParams{
		Title:       title,
		Description: description,
		Icon:        util.NullStringFromValue(icon),
		ImagePath:   util.NullStringFromValue(input.ImagePath),
		Position:    position,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return model.Experience{}, fmt.Errorf("creating experience: %w", err)
	}
	return exp, nil
}

// Update applies the input to an existing card. The icon-or-image
// invariant is checked against the merged state of old and new values,
// so removing the image is only allowed when an icon remains.
func (s *ExperienceService) Update(ctx context.Context, id int64, input ExperienceInput) (model.Experience, error) {
	queries := store.New(s.db)

	current, err := queries.GetExperienceByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Experience{}, ErrNotFound
	}
	if err != nil {
		return model.Experience{}, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	icon := strings.TrimSpace(input.Icon)

	if title == "" {
		return model.Experience{}, NewValidationError("title", "le titre est obligatoire")
	}
	if description == "" {
		return model.Experience{}, NewValidationError("description", "la description est obligatoire")
	}

	// Merge old and new image state.
	imagePath := util.NullStringToString(current.ImagePath)
	removedImage := ""
	switch {
	case input.ImagePath != "":
		if imagePath != "" && imagePath != input.ImagePath {
			removedImage = imagePath
		}
		imagePath = input.ImagePath
	case input.RemoveImage:
		removedImage = imagePath
		imagePath = ""
	}

	if icon == "" && imagePath == "" {
		return model.Experience{}, NewValidationError("icon", "une icône ou une image est obligatoire")
	}

	position := current.Position
	if input.Position != nil {
		position = *input.Position
	}

	if err := queries.UpdateExperience(ctx, store.UpdateExperienceParams{
		ID:          id,
		Title:       title,
		Description: description,
		Icon:        util.NullStringFromValue(icon),
		ImagePath:   util.NullStringFromValue(imagePath),
		Position:    position,
	}); err != nil {
		return model.Experience{}, fmt.Errorf("updating experience: %w", err)
	}

	if removedImage != "" && s.uploader != nil {
		s.uploader.Remove(removedImage)
	}

	return queries.GetExperienceByID(ctx, id)
}

// Delete removes a card and its image file.
func (s *ExperienceService) Delete(ctx context.Context, id int64) error {
	queries := store.New(s.db)

	current, err := queries.GetExperienceByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := queries.DeleteExperience(ctx, id); err != nil {
		return fmt.Errorf("deleting experience: %w", err)
	}

	if current.ImagePath.Valid && s.uploader != nil {
		s.uploader.Remove(current.ImagePath.String)
	}
	return nil
}
