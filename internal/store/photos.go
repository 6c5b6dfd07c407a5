// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cmorel/atelier-go/internal/model"
)

const photoColumns = "id, title, description, image_path, palette, accent_color, category_id, created_at"

// CreatePhotoParams holds the fields for CreatePhoto.
type CreatePhotoParams struct {
	Title       string
	Description sql.NullString
	ImagePath   string
	Palette     string
	AccentColor string
	CategoryID  sql.NullInt64
	CreatedAt   time.Time
}

// CreatePhoto inserts a photo and returns the stored row.
func (q *Queries) CreatePhoto(ctx context.Context, arg CreatePhotoParams) (model.Photo, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO photos (title, description, image_path, palette, accent_color, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+photoColumns,
		arg.Title, arg.Description, arg.ImagePath, arg.Palette, arg.AccentColor, arg.CategoryID, arg.CreatedAt)
	return scanPhoto(row)
}

// CreatePhotoWithIDParams holds the fields for CreatePhotoWithID.
type CreatePhotoWithIDParams struct {
	ID          int64
	Title       string
	Description sql.NullString
	ImagePath   string
	Palette     string
	AccentColor string
	CategoryID  sql.NullInt64
	CreatedAt   time.Time
}

// CreatePhotoWithID inserts a photo preserving its original identifier.
// Only the backup importer uses this; normal creation lets SQLite assign ids.
func (q *Queries) CreatePhotoWithID(ctx context.Context, arg CreatePhotoWithIDParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO photos (id, title, description, image_path, palette, accent_color, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.Title, arg.Description, arg.ImagePath, arg.Palette, arg.AccentColor, arg.CategoryID, arg.CreatedAt)
	return err
}

// GetPhotoByID fetches a photo by primary key.
func (q *Queries) GetPhotoByID(ctx context.Context, id int64) (model.Photo, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = ?`, id)
	return scanPhoto(row)
}

// ListPhotos returns all photos, newest first.
func (q *Queries) ListPhotos(ctx context.Context) ([]model.Photo, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}

// ListPhotosByCategory returns a category's photos, newest first.
func (q *Queries) ListPhotosByCategory(ctx context.Context, categoryID int64) ([]model.Photo, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE category_id = ? ORDER BY created_at DESC, id DESC`,
		categoryID)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}

// ListPhotosByID returns all photos in ascending id order (export order).
func (q *Queries) ListPhotosByID(ctx context.Context) ([]model.Photo, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return collectPhotos(rows)
}

// UpdatePhotoParams holds the fields for UpdatePhoto.
type UpdatePhotoParams struct {
	ID          int64
	Title       string
	Description sql.NullString
	ImagePath   string
	AccentColor string
	CategoryID  sql.NullInt64
}

// UpdatePhoto updates a photo row, including its image path. Callers pass
// the current path through when the image is not being replaced.
func (q *Queries) UpdatePhoto(ctx context.Context, arg UpdatePhotoParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE photos SET title = ?, description = ?, image_path = ?, accent_color = ?, category_id = ? WHERE id = ?`,
		arg.Title, arg.Description, arg.ImagePath, arg.AccentColor, arg.CategoryID, arg.ID)
	return err
}

// DeletePhoto removes a photo row.
func (q *Queries) DeletePhoto(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	return err
}

// ClearPhotoCategory detaches every photo referencing the given category.
func (q *Queries) ClearPhotoCategory(ctx context.Context, categoryID int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE photos SET category_id = NULL WHERE category_id = ?`, categoryID)
	return err
}

// CategoryPhotoCount pairs a category id with its photo total.
type CategoryPhotoCount struct {
	CategoryID int64
	Total      int64
}

// CountPhotosPerCategory returns photo totals grouped by category.
func (q *Queries) CountPhotosPerCategory(ctx context.Context) ([]CategoryPhotoCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category_id, COUNT(*) FROM photos WHERE category_id IS NOT NULL GROUP BY category_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []CategoryPhotoCount
	for rows.Next() {
		var c CategoryPhotoCount
		if err := rows.Scan(&c.CategoryID, &c.Total); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanPhoto(row rowScanner) (model.Photo, error) {
	var p model.Photo
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImagePath, &p.Palette,
		&p.AccentColor, &p.CategoryID, &p.CreatedAt)
	return p, err
}

func collectPhotos(rows *sql.Rows) ([]model.Photo, error) {
	defer func() { _ = rows.Close() }()

	var photos []model.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
