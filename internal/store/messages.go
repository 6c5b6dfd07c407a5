// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cmorel/atelier-go/internal/model"
)

const messageColumns = "id, name, email, subject, message, created_at"

// CreateContactMessageParams holds the fields for CreateContactMessage.
type CreateContactMessageParams struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// CreateContactMessage appends an inbox entry and returns the stored row.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (model.ContactMessage, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO contact_messages (name, email, subject, message, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+messageColumns,
		arg.Name, arg.Email, arg.Subject, arg.Message, arg.CreatedAt)
	return scanContactMessage(row)
}

// CreateContactMessageWithIDParams holds the fields for CreateContactMessageWithID.
type CreateContactMessageWithIDParams struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// CreateContactMessageWithID inserts a message preserving its original
// identifier. Used when restoring a backup.
func (q *Queries) CreateContactMessageWithID(ctx context.Context, arg CreateContactMessageWithIDParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.Name, arg.Email, arg.Subject, arg.Message, arg.CreatedAt)
	return err
}

// ListContactMessages returns the inbox, newest first.
func (q *Queries) ListContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM contact_messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectContactMessages(rows)
}

// ListContactMessagesByID returns the inbox in ascending id order (export order).
func (q *Queries) ListContactMessagesByID(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM contact_messages ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return collectContactMessages(rows)
}

// DeleteContactMessage removes a single inbox entry.
func (q *Queries) DeleteContactMessage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	return err
}

func scanContactMessage(row rowScanner) (model.ContactMessage, error) {
	var m model.ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt)
	return m, err
}

func collectContactMessages(rows *sql.Rows) ([]model.ContactMessage, error) {
	defer func() { _ = rows.Close() }()

	var messages []model.ContactMessage
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
