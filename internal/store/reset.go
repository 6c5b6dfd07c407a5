// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

// contentTables lists the tables replaced wholesale during a restore,
// in an order that respects foreign keys on delete.
var contentTables = []string{
	"photos",
	"categories",
	"experiences",
	"studio_insights",
	"contact_messages",
	"settings",
}

// DeleteAllContent wipes every content table. Callers run this inside
// the restore transaction so a failed import never leaves a partial wipe.
func (q *Queries) DeleteAllContent(ctx context.Context) error {
	for _, table := range contentTables {
		if _, err := q.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return nil
}

// ResetAutoIncrement clears the sqlite_sequence counters for the content
// tables so restored rows reclaim their original id ranges.
func (q *Queries) ResetAutoIncrement(ctx context.Context) error {
	for _, table := range contentTables {
		if table == "settings" {
			continue
		}
		if _, err := q.db.ExecContext(ctx,
			`DELETE FROM sqlite_sequence WHERE name = ?`, table); err != nil {
			return err
		}
	}
	return nil
}
