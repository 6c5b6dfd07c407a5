// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cmorel/atelier-go/internal/imaging"
	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/util"
)

// AllowedMimeTypes defines the image types accepted for upload.
var AllowedMimeTypes = map[string]string{
	model.MimeTypeJPEG: ".jpg",
	model.MimeTypePNG:  ".png",
	model.MimeTypeGIF:  ".gif",
	model.MimeTypeWebP: ".webp",
}

// Uploader stores validated image files under the uploads directory and
// removes them again when their owning rows go away.
type Uploader struct {
	uploadsDir string
}

// NewUploader creates an Uploader rooted at dir, creating it if needed.
func NewUploader(dir string) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &Uploader{uploadsDir: dir}, nil
}

// Dir returns the uploads directory path.
func (u *Uploader) Dir() string {
	return u.uploadsDir
}

// Save validates and stores an uploaded image. The content is sniffed
// rather than trusting the client's declared type; accepted images run
// through the imaging pipeline (EXIF auto-orientation, metadata
// stripping) and get a thumbnail, except GIFs which are stored as-is to
// keep animation. Returns the public path ("/uploads/<name>") of the
// stored file.
func (u *Uploader) Save(file multipart.File) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	mimeType := sniffMimeType(data)
	ext, ok := AllowedMimeTypes[mimeType]
	if !ok {
		return "", NewValidationError("file", fmt.Sprintf("type de fichier non autorisé: %s", mimeType))
	}

	if mimeType != model.MimeTypeGIF {
		normalized, err := imaging.Normalize(data)
		if err != nil {
			return "", NewValidationError("file", "l'image n'a pas pu être lue")
		}
		data = normalized.Data
		ext = imaging.FormatExtension(normalized.Format)
	}

	name := fmt.Sprintf("photo_%s%s", uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(u.uploadsDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	if thumb, err := imaging.Thumbnail(data); err == nil {
		thumbName := thumbnailName(name)
		if err := os.WriteFile(filepath.Join(u.uploadsDir, thumbName), thumb, 0o644); err != nil {
			_ = os.Remove(filepath.Join(u.uploadsDir, name))
			return "", fmt.Errorf("writing thumbnail: %w", err)
		}
	}

	return "/uploads/" + name, nil
}

// Remove deletes a stored file and its thumbnail given the file's
// public path. Missing files and paths outside the uploads directory
// are ignored.
func (u *Uploader) Remove(publicPath string) {
	normalized := util.NormalizePublicPath(publicPath)
	if !strings.HasPrefix(normalized, "/uploads/") {
		return
	}
	name := strings.TrimPrefix(normalized, "/uploads/")
	if name == "" {
		return
	}

	for _, candidate := range []string{name, thumbnailName(name)} {
		target, err := util.SafeJoinPath(u.uploadsDir, candidate)
		if err != nil {
			continue
		}
		_ = os.Remove(target)
	}
}

// ThumbnailPublicPath maps a stored file's public path to its
// thumbnail's. The thumbnail may not exist for files imported from old
// backups; templates fall back to the original.
func ThumbnailPublicPath(publicPath string) string {
	normalized := util.NormalizePublicPath(publicPath)
	dir, name := filepath.Split(normalized)
	return dir + thumbnailName(name)
}

func thumbnailName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_thumb.jpg"
}

func sniffMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
