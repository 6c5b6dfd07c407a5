// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cmorel/atelier-go/internal/model"
)

const categoryColumns = "id, name, description, hero_image_path, position, slug, created_at"

// CreateCategoryParams holds the fields for CreateCategory.
type CreateCategoryParams struct {
	Name          string
	Description   sql.NullString
	HeroImagePath sql.NullString
	Position      int64
	Slug          string
	CreatedAt     time.Time
}

// CreateCategory inserts a category and returns the stored row.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, description, hero_image_path, position, slug, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+categoryColumns,
		arg.Name, arg.Description, arg.HeroImagePath, arg.Position, arg.Slug, arg.CreatedAt)
	return scanCategory(row)
}

// CreateCategoryWithIDParams holds the fields for CreateCategoryWithID.
type CreateCategoryWithIDParams struct {
	ID            int64
	Name          string
	Description   sql.NullString
	HeroImagePath sql.NullString
	Position      int64
	Slug          string
	CreatedAt     time.Time
}

// CreateCategoryWithID inserts a category preserving its original
// identifier, so photo references in a restored backup stay valid.
func (q *Queries) CreateCategoryWithID(ctx context.Context, arg CreateCategoryWithIDParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, hero_image_path, position, slug, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.Name, arg.Description, arg.HeroImagePath, arg.Position, arg.Slug, arg.CreatedAt)
	return err
}

// GetCategoryByID fetches a category by primary key.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// GetCategoryBySlug fetches a category by its public slug.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	return scanCategory(row)
}

// GetCategoryByName fetches a category by name, ignoring case and
// surrounding whitespace.
func (q *Queries) GetCategoryByName(ctx context.Context, name string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE LOWER(TRIM(name)) = LOWER(TRIM(?))`, name)
	return scanCategory(row)
}

// ListCategories returns all categories in display order.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY position ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// ListCategoriesByID returns all categories in ascending id order (export order).
func (q *Queries) ListCategoriesByID(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// ListCategoriesWithBlankSlug returns categories still lacking a slug, in
// the deterministic backfill order (position, then name).
func (q *Queries) ListCategoriesWithBlankSlug(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE TRIM(slug) = '' ORDER BY position ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// CategoryNameExistsParams holds the fields for CategoryNameExists.
// ExcludeID is ignored when zero.
type CategoryNameExistsParams struct {
	Name      string
	ExcludeID int64
}

// CategoryNameExists reports whether another category already uses the
// given name, compared case- and whitespace-insensitively.
func (q *Queries) CategoryNameExists(ctx context.Context, arg CategoryNameExistsParams) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE LOWER(TRIM(name)) = LOWER(TRIM(?)) AND id <> ?`,
		arg.Name, arg.ExcludeID).Scan(&count)
	return count > 0, err
}

// CategorySlugExistsParams holds the fields for CategorySlugExists.
// ExcludeID is ignored when zero.
type CategorySlugExistsParams struct {
	Slug      string
	ExcludeID int64
}

// CategorySlugExists reports whether another category already uses the slug.
func (q *Queries) CategorySlugExists(ctx context.Context, arg CategorySlugExistsParams) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ? AND id <> ?`,
		arg.Slug, arg.ExcludeID).Scan(&count)
	return count > 0, err
}

// NextCategoryPosition returns max(position)+1 across existing categories.
func (q *Queries) NextCategoryPosition(ctx context.Context) (int64, error) {
	var pos int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM categories`).Scan(&pos)
	return pos, err
}

// UpdateCategoryParams holds the fields for UpdateCategory.
type UpdateCategoryParams struct {
	ID            int64
	Name          string
	Description   sql.NullString
	HeroImagePath sql.NullString
	Position      int64
	Slug          string
}

// UpdateCategory rewrites a category row.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, hero_image_path = ?, position = ?, slug = ? WHERE id = ?`,
		arg.Name, arg.Description, arg.HeroImagePath, arg.Position, arg.Slug, arg.ID)
	return err
}

// SetCategorySlug assigns a slug to a single category (backfill path).
func (q *Queries) SetCategorySlug(ctx context.Context, id int64, slug string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE categories SET slug = ? WHERE id = ?`, slug, id)
	return err
}

// DeleteCategory removes a category row.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

func scanCategory(row rowScanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.HeroImagePath,
		&c.Position, &c.Slug, &c.CreatedAt)
	return c, err
}

func collectCategories(rows *sql.Rows) ([]model.Category, error) {
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
