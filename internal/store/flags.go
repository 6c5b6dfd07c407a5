// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// HasSeedFlag reports whether a one-time seed has already been applied.
func (q *Queries) HasSeedFlag(ctx context.Context, name string) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seed_flags WHERE name = ?`, name).Scan(&count)
	return count > 0, err
}

// SetSeedFlag records a one-time seed as applied. Re-applying is a no-op.
func (q *Queries) SetSeedFlag(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO seed_flags (name, applied_at) VALUES (?, ?)
		 ON CONFLICT (name) DO NOTHING`,
		name, time.Now().UTC())
	return err
}
