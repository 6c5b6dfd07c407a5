// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cmorel/atelier-go/internal/store"
	"github.com/cmorel/atelier-go/internal/util"
)

// Exporter serializes the full dataset and the uploads directory into a
// restorable tar.gz archive.
type Exporter struct {
	db         *sql.DB
	logger     *slog.Logger
	uploadsDir string
}

// NewExporter creates a new Exporter instance.
func NewExporter(db *sql.DB, logger *slog.Logger, uploadsDir string) *Exporter {
	return &Exporter{db: db, logger: logger, uploadsDir: uploadsDir}
}

// ExportFilename returns the download name for a backup generated now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("%s-%s.tar.gz", ArchiveRootName, now.Format("2006-01-02-150405"))
}

// Collect reads every content table in ascending-id order into a
// BackupData document. Stored file paths are rewritten to their
// canonical web-relative form so the archive restores cleanly on a
// deployment with a different mount point.
func (e *Exporter) Collect(ctx context.Context) (*BackupData, error) {
	queries := store.New(e.db)

	data := &BackupData{
		Version:        BackupVersion,
		GeneratedAt:    time.Now().UTC(),
		Photos:         []BackupPhoto{},
		Categories:     []BackupCategory{},
		Experiences:    []BackupExperience{},
		StudioInsights: []BackupInsight{},
		Messages:       []BackupMessage{},
	}

	photos, err := queries.ListPhotosByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading photos: %w", err)
	}
	for _, p := range photos {
		categoryID := nullInt64ToLoosePtr(p.CategoryID)
		data.Photos = append(data.Photos, BackupPhoto{
			ID:          looseInt(p.ID),
			Title:       p.Title,
			Description: nullStringToPtr(p.Description),
			ImagePath:   util.NormalizePublicPath(p.ImagePath),
			Palette:     p.Palette,
			AccentColor: p.AccentColor,
			CategoryID:  categoryID,
			CreatedAt:   p.CreatedAt,
		})
	}

	categories, err := queries.ListCategoriesByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	for _, c := range categories {
		data.Categories = append(data.Categories, BackupCategory{
			ID:            looseInt(c.ID),
			Name:          c.Name,
			Description:   nullStringToPtr(c.Description),
			HeroImagePath: normalizedPathPtr(c.HeroImagePath),
			Position:      looseInt(c.Position),
			Slug:          c.Slug,
			CreatedAt:     c.CreatedAt,
		})
	}

	experiences, err := queries.ListExperiencesByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading experiences: %w", err)
	}
	for _, exp := range experiences {
		data.Experiences = append(data.Experiences, BackupExperience{
			ID:          looseInt(exp.ID),
			Title:       exp.Title,
			Description: exp.Description,
			Icon:        nullStringToPtr(exp.Icon),
			ImagePath:   normalizedPathPtr(exp.ImagePath),
			Position:    looseInt(exp.Position),
			CreatedAt:   exp.CreatedAt,
		})
	}

	insights, err := queries.ListStudioInsightsByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading studio insights: %w", err)
	}
	for _, ins := range insights {
		data.StudioInsights = append(data.StudioInsights, BackupInsight{
			ID:          looseInt(ins.ID),
			StatValue:   ins.StatValue,
			StatCaption: ins.StatCaption,
			DataCount:   looseInt(ins.DataCount),
			Position:    looseInt(ins.Position),
			CreatedAt:   ins.CreatedAt,
		})
	}

	messages, err := queries.ListContactMessagesByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading contact messages: %w", err)
	}
	for _, m := range messages {
		data.Messages = append(data.Messages, BackupMessage{
			ID:        looseInt(m.ID),
			Name:      m.Name,
			Email:     m.Email,
			Subject:   m.Subject,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		})
	}

	settings, err := queries.GetSettings(ctx)
	switch {
	case err == nil:
		data.Settings = &BackupSettings{
			ContactEmail:        settings.ContactEmail,
			HeroIntroHeading:    settings.HeroIntroHeading,
			HeroIntroSubheading: settings.HeroIntroSubheading,
			HeroIntroBody:       settings.HeroIntroBody,
			HeroIntroImageURL:   settings.HeroIntroImageURL,
		}
	case errors.Is(err, sql.ErrNoRows):
		// no settings row yet, the archive simply omits the object
	default:
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	return data, nil
}

// ExportToWriter streams a complete backup archive to w: data.json plus
// a copy of every uploaded file, under the fixed top-level directory.
func (e *Exporter) ExportToWriter(ctx context.Context, w io.Writer) error {
	data, err := e.Collect(ctx)
	if err != nil {
		return err
	}

	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	if err := writeTarDocument(tarWriter, data); err != nil {
		return err
	}
	if err := e.addUploadsToTar(tarWriter); err != nil {
		return err
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("finalizing compression: %w", err)
	}

	e.logger.Info("backup export complete",
		"category", "backup",
		"photos", len(data.Photos),
		"categories", len(data.Categories),
		"messages", len(data.Messages))
	return nil
}

// ExportToFile writes a complete backup archive to path.
func (e *Exporter) ExportToFile(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return e.ExportToWriter(ctx, f)
}

func writeTarDocument(tw *tar.Writer, data *BackupData) error {
	doc, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup document: %w", err)
	}

	header := &tar.Header{
		Name:    ArchiveRootName + "/" + DataFileName,
		Mode:    0o644,
		Size:    int64(len(doc)),
		ModTime: data.GeneratedAt,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("writing document header: %w", err)
	}
	if _, err := tw.Write(doc); err != nil {
		return fmt.Errorf("writing backup document: %w", err)
	}
	return nil
}

// addUploadsToTar copies every file under the uploads directory into
// the archive. A missing uploads directory exports as an empty mirror.
func (e *Exporter) addUploadsToTar(tw *tar.Writer) error {
	if _, err := os.Stat(e.uploadsDir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(e.uploadsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(e.uploadsDir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header := &tar.Header{
			Name:    ArchiveRootName + "/" + UploadsDirName + "/" + filepath.ToSlash(rel),
			Mode:    0o644,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing header for %s: %w", rel, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", rel, err)
		}
		defer func() { _ = f.Close() }()

		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("copying %s: %w", rel, err)
		}
		return nil
	})
}

func nullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func normalizedPathPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := util.NormalizePublicPath(ns.String)
	return &s
}

func nullInt64ToLoosePtr(ni sql.NullInt64) *looseInt {
	if !ni.Valid {
		return nil
	}
	n := looseInt(ni.Int64)
	return &n
}
