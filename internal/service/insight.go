// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/store"
)

// InsightService manages the homepage statistics block.
type InsightService struct {
	db *sql.DB
}

// NewInsightService creates a new insight service.
func NewInsightService(db *sql.DB) *InsightService {
	return &InsightService{db: db}
}

// InsightInput carries create/update form values. DataCount is the raw
// form string; resolution falls back to the digits of StatValue.
type InsightInput struct {
	StatValue   string
	StatCaption string
	DataCount   string
	Position    *int64
}

// Get fetches an insight by id.
func (s *InsightService) Get(ctx context.Context, id int64) (model.StudioInsight, error) {
	ins, err := store.New(s.db).GetStudioInsightByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudioInsight{}, ErrNotFound
	}
	return ins, err
}

// List returns all insights in display order.
func (s *InsightService) List(ctx context.Context) ([]model.StudioInsight, error) {
	return store.New(s.db).ListStudioInsights(ctx)
}

// Create validates and stores a new insight.
func (s *InsightService) Create(ctx context.Context, input InsightInput) (model.StudioInsight, error) {
	queries := store.New(s.db)

	statValue := strings.TrimSpace(input.StatValue)
	statCaption := strings.TrimSpace(input.StatCaption)
	if statValue == "" {
		return model.StudioInsight{}, NewValidationError("stat_value", "la valeur est obligatoire")
	}
	if statCaption == "" {
		return model.StudioInsight{}, NewValidationError("stat_caption", "la légende est obligatoire")
	}

	position := int64(0)
	if input.Position != nil {
		position = *input.Position
	} else {
		var err error
		position, err = queries.NextStudioInsightPosition(ctx)
		if err != nil {
			return model.StudioInsight{}, fmt.Errorf("computing next position: %w", err)
		}
	}

	ins, err := queries.CreateStudioInsight(ctx, store.CreateStudioInsightParams{
		StatValue:   statValue,
		StatCaption: statCaption,
		DataCount:   ResolveDataCount(input.DataCount, statValue),
		Position:    position,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return model.StudioInsight{}, fmt.Errorf("creating insight: %w", err)
	}
	return ins, nil
}

// Update applies the input to an existing insight.
func (s *InsightService) Update(ctx context.Context, id int64, input InsightInput) (model.StudioInsight, error) {
	queries := store.New(s.db)

	current, err := queries.GetStudioInsightByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudioInsight{}, ErrNotFound
	}
	if err != nil {
		return model.StudioInsight{}, err
	}

	statValue := strings.TrimSpace(input.StatValue)
	statCaption := strings.TrimSpace(input.StatCaption)
	if statValue == "" {
		return model.StudioInsight{}, NewValidationError("stat_value", "la valeur est obligatoire")
	}
	if statCaption == "" {
		return model.StudioInsight{}, NewValidationError("stat_caption", "la légende est obligatoire")
	}

	position := current.Position
	if input.Position != nil {
		position = *input.Position
	}

	if err := queries.UpdateStudioInsight(ctx, store.UpdateStudioInsightParams{
		ID:          id,
		StatValue:   statValue,
		StatCaption: statCaption,
		DataCount:   ResolveDataCount(input.DataCount, statValue),
		Position:    position,
	}); err != nil {
		return model.StudioInsight{}, fmt.Errorf("updating insight: %w", err)
	}

	return queries.GetStudioInsightByID(ctx, id)
}

// Delete removes an insight.
func (s *InsightService) Delete(ctx context.Context, id int64) error {
	queries := store.New(s.db)

	if _, err := queries.GetStudioInsightByID(ctx, id); errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	return queries.DeleteStudioInsight(ctx, id)
}

// ResolveDataCount resolves the numeric counter behind a statistic:
// an explicit integer wins (clamped to zero), else the digits embedded
// in the stat value ("180 séances" yields 180), else zero.
func ResolveDataCount(raw, statValue string) int64 {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return max(n, 0)
		}
	}

	var digits strings.Builder
	for _, r := range statValue {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() > 0 {
		if n, err := strconv.ParseInt(digits.String(), 10, 64); err == nil {
			return n
		}
	}
	return 0
}
