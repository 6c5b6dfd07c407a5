// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cmorel/atelier-go/internal/store"
)

func TestRunCleanup(t *testing.T) {
	f, err := os.CreateTemp("", "atelier-scheduler-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	ctx := context.Background()
	queries := store.New(db)

	// One stale event, one fresh.
	for _, arg := range []store.CreateEventParams{
		{Level: "ERROR", Category: "system", Message: "old", CreatedAt: time.Now().Add(-120 * 24 * time.Hour)},
		{Level: "WARN", Category: "auth", Message: "recent", CreatedAt: time.Now()},
	} {
		if err := queries.CreateEvent(ctx, arg); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	s := New(db, slog.New(slog.DiscardHandler))
	if err := s.runCleanup(); err != nil {
		t.Fatalf("runCleanup: %v", err)
	}

	events, err := queries.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 || events[0].Message != "recent" {
		t.Errorf("events after cleanup = %+v, want only the recent one", events)
	}
}

func TestStartStop(t *testing.T) {
	s := New(nil, slog.New(slog.DiscardHandler))
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
