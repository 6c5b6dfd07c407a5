// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cmorel/atelier-go/internal/model"
)

const insightColumns = "id, stat_value, stat_caption, data_count, position, created_at"

// CreateStudioInsightParams holds the fields for CreateStudioInsight.
type CreateStudioInsightParams struct {
	StatValue   string
	StatCaption string
	DataCount   int64
	Position    int64
	CreatedAt   time.Time
}

// CreateStudioInsight inserts a studio insight and returns the stored row.
func (q *Queries) CreateStudioInsight(ctx context.Context, arg CreateStudioInsightParams) (model.StudioInsight, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO studio_insights (stat_value, stat_caption, data_count, position, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+insightColumns,
		arg.StatValue, arg.StatCaption, arg.DataCount, arg.Position, arg.CreatedAt)
	return scanStudioInsight(row)
}

// CreateStudioInsightWithIDParams holds the fields for CreateStudioInsightWithID.
type CreateStudioInsightWithIDParams struct {
	ID          int64
	StatValue   string
	StatCaption string
	DataCount   int64
	Position    int64
	CreatedAt   time.Time
}

// CreateStudioInsightWithID inserts an insight preserving its original
// identifier. Used when restoring a backup.
func (q *Queries) CreateStudioInsightWithID(ctx context.Context, arg CreateStudioInsightWithIDParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO studio_insights (id, stat_value, stat_caption, data_count, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.StatValue, arg.StatCaption, arg.DataCount, arg.Position, arg.CreatedAt)
	return err
}

// GetStudioInsightByID fetches an insight by primary key.
func (q *Queries) GetStudioInsightByID(ctx context.Context, id int64) (model.StudioInsight, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+insightColumns+` FROM studio_insights WHERE id = ?`, id)
	return scanStudioInsight(row)
}

// ListStudioInsights returns all insights in display order.
func (q *Queries) ListStudioInsights(ctx context.Context) ([]model.StudioInsight, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+insightColumns+` FROM studio_insights ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return collectStudioInsights(rows)
}

// ListStudioInsightsByID returns all insights in ascending id order (export order).
func (q *Queries) ListStudioInsightsByID(ctx context.Context) ([]model.StudioInsight, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+insightColumns+` FROM studio_insights ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return collectStudioInsights(rows)
}

// NextStudioInsightPosition returns the position for a newly appended insight.
func (q *Queries) NextStudioInsightPosition(ctx context.Context) (int64, error) {
	var pos int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM studio_insights`).Scan(&pos)
	return pos, err
}

// UpdateStudioInsightParams holds the fields for UpdateStudioInsight.
type UpdateStudioInsightParams struct {
	ID          int64
	StatValue   string
	StatCaption string
	DataCount   int64
	Position    int64
}

// UpdateStudioInsight rewrites an insight row.
func (q *Queries) UpdateStudioInsight(ctx context.Context, arg UpdateStudioInsightParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE studio_insights SET stat_value = ?, stat_caption = ?, data_count = ?, position = ? WHERE id = ?`,
		arg.StatValue, arg.StatCaption, arg.DataCount, arg.Position, arg.ID)
	return err
}

// DeleteStudioInsight removes an insight row.
func (q *Queries) DeleteStudioInsight(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM studio_insights WHERE id = ?`, id)
	return err
}

func scanStudioInsight(row rowScanner) (model.StudioInsight, error) {
	var s model.StudioInsight
	err := row.Scan(&s.ID, &s.StatValue, &s.StatCaption,
		&s.DataCount, &s.Position, &s.CreatedAt)
	return s, err
}

func collectStudioInsights(rows *sql.Rows) ([]model.StudioInsight, error) {
	defer func() { _ = rows.Close() }()

	var insights []model.StudioInsight
	for rows.Next() {
		s, err := scanStudioInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, s)
	}
	return insights, rows.Err()
}
