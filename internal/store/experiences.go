// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cmorel/atelier-go/internal/model"
)

const experienceColumns = "id, title, description, icon, image_path, position, created_at"

// CreateExperienceParams holds the fields for CreateExperience.
type CreateExperienceParams struct {
	Title       string
	Description string
	Icon        sql.NullString
	ImagePath   sql.NullString
	Position    int64
	CreatedAt   time.Time
}

// CreateExperience inserts an experience card and returns the stored row.
func (q *Queries) CreateExperience(ctx context.Context, arg CreateExperienceParams) (model.Experience, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO experiences (title, description, icon, image_path, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+experienceColumns,
		arg.Title, arg.Description, arg.Icon, arg.ImagePath, arg.Position, arg.CreatedAt)
	return scanExperience(row)
}

// CreateExperienceWithIDParams holds the fields for CreateExperienceWithID.
type CreateExperienceWithIDParams struct {
	ID          int64
	Title       string
	Description string
	Icon        sql.NullString
	ImagePath   sql.NullString
	Position    int64
	CreatedAt   time.Time
}

// CreateExperienceWithID inserts an experience preserving its original
// identifier. Used when restoring a backup.
func (q *Queries) CreateExperienceWithID(ctx context.Context, arg CreateExperienceWithIDParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO experiences (id, title, description, icon, image_path, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.Title, arg.Description, arg.Icon, arg.ImagePath, arg.Position, arg.CreatedAt)
	return err
}

// GetExperienceByID fetches an experience by primary key.
func (q *Queries) GetExperienceByID(ctx context.Context, id int64) (model.Experience, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+experienceColumns+` FROM experiences WHERE id = ?`, id)
	return scanExperience(row)
}

// ListExperiences returns all experiences in display order.
func (q *Queries) ListExperiences(ctx context.Context) ([]model.Experience, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+experienceColumns+` FROM experiences ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return collectExperiences(rows)
}

// ListExperiencesByID returns all experiences in ascending id order (export order).
func (q *Queries) ListExperiencesByID(ctx context.Context) ([]model.Experience, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+experienceColumns+` FROM experiences ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return collectExperiences(rows)
}

// NextExperiencePosition returns the position for a newly appended card.
// Positions start at zero, so an empty table yields 0.
func (q *Queries) NextExperiencePosition(ctx context.Context) (int64, error) {
	var pos int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM experiences`).Scan(&pos)
	return pos, err
}

// UpdateExperienceParams holds the fields for UpdateExperience.
type UpdateExperienceParams struct {
	ID          int64
	Title       string
	Description string
	Icon        sql.NullString
	ImagePath   sql.NullString
	Position    int64
}

// UpdateExperience rewrites an experience row.
func (q *Queries) UpdateExperience(ctx context.Context, arg UpdateExperienceParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE experiences SET title = ?, description = ?, icon = ?, image_path = ?, position = ? WHERE id = ?`,
		arg.Title, arg.Description, arg.Icon, arg.ImagePath, arg.Position, arg.ID)
	return err
}

// DeleteExperience removes an experience row.
func (q *Queries) DeleteExperience(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM experiences WHERE id = ?`, id)
	return err
}

func scanExperience(row rowScanner) (model.Experience, error) {
	var e model.Experience
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Icon,
		&e.ImagePath, &e.Position, &e.CreatedAt)
	return e, err
}

func collectExperiences(rows *sql.Rows) ([]model.Experience, error) {
	defer func() { _ = rows.Close() }()

	var experiences []model.Experience
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, e)
	}
	return experiences, rows.Err()
}
