// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the nightly housekeeping jobs: expired
// sessions and old audit events are pruned while the site sleeps.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cmorel/atelier-go/internal/store"
)

// EventRetention is how long audit events are kept.
const EventRetention = 90 * 24 * time.Hour

// Scheduler handles recurring maintenance tasks.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the nightly cleanup job and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("15 3 * * *", func() {
		if err := s.runCleanup(); err != nil {
			s.logger.Error("nightly cleanup failed", "category", "system", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runCleanup() error {
	ctx := context.Background()
	queries := store.New(s.db)

	sessions, err := queries.DeleteExpiredSessions(ctx)
	if err != nil {
		return err
	}

	events, err := queries.DeleteEventsBefore(ctx, time.Now().Add(-EventRetention))
	if err != nil {
		return err
	}

	if sessions > 0 || events > 0 {
		s.logger.Info("nightly cleanup done",
			"expired_sessions", sessions, "pruned_events", events)
	}
	return nil
}
