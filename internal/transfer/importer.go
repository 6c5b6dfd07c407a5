// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"archive/tar"
	"bytes"
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
	"strings"
	"sync"
	"time"

	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/service"
	"github.com/cmorel/atelier-go/internal/store"
	"github.com/cmorel/atelier-go/internal/util"
)

// ErrImportInProgress is returned when a second import is attempted
// while one is running. Imports never interleave.
var ErrImportInProgress = errors.New("un import de sauvegarde est déjà en cours")

// ErrEmptyBackup is returned for an empty upload.
var ErrEmptyBackup = errors.New("la sauvegarde fournie est vide")

// InvalidBackupError reports a structurally invalid archive. Its
// message is safe to show to the admin.
type InvalidBackupError struct {
	Reason string
}

func (e *InvalidBackupError) Error() string { return e.Reason }

func invalidBackup(format string, args ...any) error {
	return &InvalidBackupError{Reason: fmt.Sprintf(format, args...)}
}

// Importer restores a backup archive: the dataset replacement runs in
// one transaction, and the uploads directory is swapped only after that
// transaction commits.
type Importer struct {
	db         *sql.DB
	logger     *slog.Logger
	uploadsDir string
	mu         sync.Mutex
}

// NewImporter creates a new Importer instance.
func NewImporter(db *sql.DB, logger *slog.Logger, uploadsDir string) *Importer {
	return &Importer{db: db, logger: logger, uploadsDir: uploadsDir}
}

// ImportFromReader restores the site from a backup archive. On any
// failure before the transaction commits, both the dataset and the
// uploads directory are left untouched. If the uploads swap fails after
// the commit, the previous directory is restored and the error reports
// that re-importing the same archive is safe.
func (i *Importer) ImportFromReader(ctx context.Context, r io.Reader) error {
	if !i.mu.TryLock() {
		return ErrImportInProgress
	}
	defer i.mu.Unlock()

	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	if len(payload) == 0 {
		return ErrEmptyBackup
	}

	tempDir, err := os.MkdirTemp("", "atelier-import-")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	extractDir := filepath.Join(tempDir, "extracted")
	if err := extractArchive(bytes.NewReader(payload), extractDir); err != nil {
		return err
	}

	root := filepath.Join(extractDir, ArchiveRootName)
	if _, err := os.Stat(root); err != nil {
		return invalidBackup("le fichier transmis ne correspond pas à une sauvegarde valide")
	}

	rawData, err := os.ReadFile(filepath.Join(root, DataFileName))
	if err != nil {
		return invalidBackup("le fichier %s est introuvable dans la sauvegarde fournie", DataFileName)
	}

	var data BackupData
	if err := json.Unmarshal(rawData, &data); err != nil {
		return invalidBackup("le contenu de la sauvegarde est illisible (JSON invalide)")
	}
	if data.Version != BackupVersion {
		return invalidBackup("version de sauvegarde non prise en charge: %d", data.Version)
	}

	if err := i.applyData(ctx, &data); err != nil {
		return err
	}

	if err := i.replaceUploads(filepath.Join(root, UploadsDirName)); err != nil {
		// The dataset is already committed; importing the same archive
		// again reaches the same end state.
		return fmt.Errorf("les fichiers n'ont pas pu être remplacés (réimporter la même sauvegarde est sans risque): %w", err)
	}

	i.logger.Info("backup import complete",
		"category", "backup",
		"photos", len(data.Photos),
		"categories", len(data.Categories),
		"messages", len(data.Messages))
	return nil
}

// extractArchive unpacks a tar.gz stream under destDir. Entry names are
// joined through SafeJoinPath so a crafted archive cannot write outside
// the extraction directory.
func extractArchive(r io.Reader, destDir string) error {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return invalidBackup("le fichier transmis n'est pas une archive tar.gz valide")
	}
	defer func() { _ = gzReader.Close() }()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return invalidBackup("le fichier transmis n'est pas une archive tar.gz valide")
		}

		name := strings.TrimPrefix(header.Name, "./")
		if name == "" || name == "." {
			continue
		}
		target, err := util.SafeJoinPath(destDir, name)
		if err != nil {
			return invalidBackup("la sauvegarde contient un chemin invalide: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", name, err)
			}
			if err := writeExtractedFile(target, tarReader); err != nil {
				return fmt.Errorf("extracting %s: %w", name, err)
			}
		default:
			// symlinks and special files are never part of a backup
			continue
		}
	}
}

func writeExtractedFile(target string, r io.Reader) error {
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(f, r)
	return err
}

// applyData replaces every content table inside a single transaction.
// Identifiers from the archive are preserved so photo to category
// references stay valid; a reference to a category absent from the
// archive is nulled rather than rejecting the whole import.
func (i *Importer) applyData(ctx context.Context, data *BackupData) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := store.New(i.db).WithTx(tx)

	// The wipe below clears settings too. Keep the live row around so
	// an archive without a settings object leaves it unchanged.
	var liveSettings *model.Settings
	if current, err := qtx.GetSettings(ctx); err == nil {
		liveSettings = &current
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading current settings: %w", err)
	}

	if err := qtx.DeleteAllContent(ctx); err != nil {
		return fmt.Errorf("clearing content tables: %w", err)
	}
	if err := qtx.ResetAutoIncrement(ctx); err != nil {
		return fmt.Errorf("resetting id counters: %w", err)
	}

	categoryIDs, err := importCategories(ctx, qtx, data.Categories)
	if err != nil {
		return err
	}
	if err := i.importPhotos(ctx, qtx, data.Photos, categoryIDs); err != nil {
		return err
	}
	if err := importExperiences(ctx, qtx, data.Experiences); err != nil {
		return err
	}
	if err := importInsights(ctx, qtx, data.StudioInsights); err != nil {
		return err
	}
	if err := importMessages(ctx, qtx, data.Messages); err != nil {
		return err
	}
	if err := importSettings(ctx, qtx, data.Settings, liveSettings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

func importCategories(ctx context.Context, qtx *store.Queries, categories []BackupCategory) (map[int64]bool, error) {
	ids := make(map[int64]bool, len(categories))
	for _, c := range categories {
		id, err := positiveID(c.ID)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, invalidBackup("une catégorie de la sauvegarde ne possède pas de nom")
		}

		slug := strings.TrimSpace(c.Slug)
		if slug == "" {
			slug, err = qtx.UniqueCategorySlug(ctx, name, 0)
			if err != nil {
				return nil, fmt.Errorf("generating slug for %q: %w", name, err)
			}
		}

		err = qtx.CreateCategoryWithID(ctx, store.CreateCategoryWithIDParams{
			ID:            id,
			Name:          name,
			Description:   ptrToNullString(c.Description),
			HeroImagePath: normalizedNullPath(c.HeroImagePath),
			Position:      int64(c.Position),
			Slug:          slug,
			CreatedAt:     timeOrNow(c.CreatedAt),
		})
		if err != nil {
			return nil, fmt.Errorf("importing category %q: %w", name, err)
		}
		ids[id] = true
	}
	return ids, nil
}

func (i *Importer) importPhotos(ctx context.Context, qtx *store.Queries, photos []BackupPhoto, categoryIDs map[int64]bool) error {
	for _, p := range photos {
		id, err := positiveID(p.ID)
		if err != nil {
			return err
		}
		imagePath := util.NormalizePublicPath(strings.TrimSpace(p.ImagePath))
		if imagePath == "" {
			return invalidBackup("une photo de la sauvegarde ne contient pas de chemin d'image")
		}

		title := strings.TrimSpace(p.Title)
		if title == "" {
			title = service.DefaultPhotoTitle
		}
		palette := strings.TrimSpace(p.Palette)
		if palette == "" {
			palette = model.DefaultPalette
		}
		accent := strings.TrimSpace(p.AccentColor)
		if accent == "" {
			accent = model.DefaultAccentColor
		}

		categoryRef := sql.NullInt64{}
		if p.CategoryID != nil && *p.CategoryID > 0 {
			if categoryIDs[int64(*p.CategoryID)] {
				categoryRef = sql.NullInt64{Int64: int64(*p.CategoryID), Valid: true}
			} else {
				i.logger.Warn("photo references a category missing from the backup, reference dropped",
					"category", "backup", "photo_id", id, "category_id", int64(*p.CategoryID))
			}
		}

		err = qtx.CreatePhotoWithID(ctx, store.CreatePhotoWithIDParams{
			ID:          id,
			Title:       title,
			Description: ptrToNullString(p.Description),
			ImagePath:   imagePath,
			Palette:     palette,
			AccentColor: accent,
			CategoryID:  categoryRef,
			CreatedAt:   timeOrNow(p.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("importing photo %d: %w", id, err)
		}
	}
	return nil
}

func importExperiences(ctx context.Context, qtx *store.Queries, experiences []BackupExperience) error {
	for _, exp := range experiences {
		id, err := positiveID(exp.ID)
		if err != nil {
			return err
		}
		title := strings.TrimSpace(exp.Title)
		description := strings.TrimSpace(exp.Description)
		if title == "" || description == "" {
			return invalidBackup("une expérience de la sauvegarde est incomplète")
		}

		err = qtx.CreateExperienceWithID(ctx, store.CreateExperienceWithIDParams{
			ID:          id,
			Title:       title,
			Description: description,
			Icon:        ptrToNullString(exp.Icon),
			ImagePath:   normalizedNullPath(exp.ImagePath),
			Position:    int64(exp.Position),
			CreatedAt:   timeOrNow(exp.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("importing experience %q: %w", title, err)
		}
	}
	return nil
}

func importInsights(ctx context.Context, qtx *store.Queries, insights []BackupInsight) error {
	for _, ins := range insights {
		id, err := positiveID(ins.ID)
		if err != nil {
			return err
		}
		err = qtx.CreateStudioInsightWithID(ctx, store.CreateStudioInsightWithIDParams{
			ID:          id,
			StatValue:   strings.TrimSpace(ins.StatValue),
			StatCaption: strings.TrimSpace(ins.StatCaption),
			DataCount:   int64(ins.DataCount),
			Position:    int64(ins.Position),
			CreatedAt:   timeOrNow(ins.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("importing insight %d: %w", id, err)
		}
	}
	return nil
}

func importMessages(ctx context.Context, qtx *store.Queries, messages []BackupMessage) error {
	for _, m := range messages {
		id, err := positiveID(m.ID)
		if err != nil {
			return err
		}
		err = qtx.CreateContactMessageWithID(ctx, store.CreateContactMessageWithIDParams{
			ID:        id,
			Name:      strings.TrimSpace(m.Name),
			Email:     strings.TrimSpace(m.Email),
			Subject:   strings.TrimSpace(m.Subject),
			Message:   m.Message,
			CreatedAt: timeOrNow(m.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("importing message %d: %w", id, err)
		}
	}
	return nil
}

func importSettings(ctx context.Context, qtx *store.Queries, archived *BackupSettings, live *model.Settings) error {
	params := store.InsertSettingsParams{
		ContactEmail:        store.DefaultContactEmail,
		HeroIntroHeading:    store.DefaultHeroIntroHeading,
		HeroIntroSubheading: store.DefaultHeroIntroSubheading,
		HeroIntroBody:       store.DefaultHeroIntroBody,
		HeroIntroImageURL:   store.DefaultHeroIntroImageURL,
	}

	switch {
	case archived != nil:
		if v := strings.TrimSpace(archived.ContactEmail); v != "" {
			params.ContactEmail = v
		}
		if v := strings.TrimSpace(archived.HeroIntroHeading); v != "" {
			params.HeroIntroHeading = v
		}
		if v := strings.TrimSpace(archived.HeroIntroSubheading); v != "" {
			params.HeroIntroSubheading = v
		}
		if v := strings.TrimSpace(archived.HeroIntroBody); v != "" {
			params.HeroIntroBody = v
		}
		params.HeroIntroImageURL = service.ResolveHeroImageURL(archived.HeroIntroImageURL)
	case live != nil:
		// archive carried no settings object, restore the pre-import row
		params.ContactEmail = live.ContactEmail
		params.HeroIntroHeading = live.HeroIntroHeading
		params.HeroIntroSubheading = live.HeroIntroSubheading
		params.HeroIntroBody = live.HeroIntroBody
		params.HeroIntroImageURL = live.HeroIntroImageURL
	}

	if err := qtx.InsertSettings(ctx, params); err != nil {
		return fmt.Errorf("importing settings: %w", err)
	}
	return nil
}

// replaceUploads swaps the live uploads directory for the archive's
// copy. The live directory is renamed aside first so a failed copy can
// be rolled back to the exact pre-import state.
func (i *Importer) replaceUploads(source string) error {
	parent := filepath.Dir(i.uploadsDir)
	backupDir := filepath.Join(parent, fmt.Sprintf("uploads-backup-%d", time.Now().UnixNano()))

	previous := ""
	if _, err := os.Stat(i.uploadsDir); err == nil {
		if err := os.Rename(i.uploadsDir, backupDir); err != nil {
			return fmt.Errorf("setting aside current uploads: %w", err)
		}
		previous = backupDir
	}

	if err := i.populateUploads(source); err != nil {
		_ = os.RemoveAll(i.uploadsDir)
		if previous != "" {
			if restoreErr := os.Rename(previous, i.uploadsDir); restoreErr != nil {
				i.logger.Error("restoring previous uploads directory failed",
					"category", "backup", "backup_dir", previous, "error", restoreErr)
			}
		}
		return err
	}

	if previous != "" {
		_ = os.RemoveAll(previous)
	}
	return nil
}

func (i *Importer) populateUploads(source string) error {
	if err := os.MkdirAll(i.uploadsDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}
	if _, err := os.Stat(source); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return copyDirectory(source, i.uploadsDir)
}

func copyDirectory(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		in, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", rel, err)
		}
		defer func() { _ = in.Close() }()

		out, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("creating %s: %w", rel, err)
		}
		defer func() { _ = out.Close() }()

		if _, err := io.Copy(out, in); err != nil {
			return fmt.Errorf("copying %s: %w", rel, err)
		}
		return out.Close()
	})
}

func positiveID(n looseInt) (int64, error) {
	if n <= 0 {
		return 0, invalidBackup("identifiant invalide rencontré dans la sauvegarde")
	}
	return int64(n), nil
}

func ptrToNullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func normalizedNullPath(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	normalized := util.NormalizePublicPath(*p)
	if normalized == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: normalized, Valid: true}
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
