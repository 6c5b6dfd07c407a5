// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// memoryFile adapts a bytes.Reader to multipart.File.
type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func newMemoryFile(data []byte) multipart.File {
	return memoryFile{bytes.NewReader(data)}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestUploader_SaveAndRemove(t *testing.T) {
	uploader := testUploader(t)

	publicPath, err := uploader.Save(newMemoryFile(testPNG(t)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(publicPath, "/uploads/photo_") || !strings.HasSuffix(publicPath, ".png") {
		t.Errorf("public path = %q", publicPath)
	}

	name := strings.TrimPrefix(publicPath, "/uploads/")
	if _, err := os.Stat(filepath.Join(uploader.Dir(), name)); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	thumbName := strings.TrimPrefix(ThumbnailPublicPath(publicPath), "/uploads/")
	if _, err := os.Stat(filepath.Join(uploader.Dir(), thumbName)); err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}

	uploader.Remove(publicPath)
	if _, err := os.Stat(filepath.Join(uploader.Dir(), name)); !os.IsNotExist(err) {
		t.Error("file still present after Remove")
	}
	if _, err := os.Stat(filepath.Join(uploader.Dir(), thumbName)); !os.IsNotExist(err) {
		t.Error("thumbnail still present after Remove")
	}
}

func TestUploader_RejectsNonImage(t *testing.T) {
	uploader := testUploader(t)

	_, err := uploader.Save(newMemoryFile([]byte("%PDF-1.4 not an image")))
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	entries, readErr := os.ReadDir(uploader.Dir())
	if readErr != nil {
		t.Fatalf("ReadDir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("rejected upload left %d files behind", len(entries))
	}
}

func TestUploader_RemoveIgnoresOutsidePaths(t *testing.T) {
	uploader := testUploader(t)

	marker := filepath.Join(uploader.Dir(), "..", "marker.txt")
	if err := os.WriteFile(marker, []byte("keep"), 0o644); err != nil {
		t.Fatalf("writing marker: %v", err)
	}

	uploader.Remove("/uploads/../marker.txt")
	uploader.Remove("/etc/passwd")
	uploader.Remove("")

	if _, err := os.Stat(marker); err != nil {
		t.Errorf("file outside uploads dir was removed: %v", err)
	}
}

func TestThumbnailPublicPath(t *testing.T) {
	got := ThumbnailPublicPath("/uploads/photo_abc.png")
	if got != "/uploads/photo_abc_thumb.jpg" {
		t.Errorf("ThumbnailPublicPath = %q", got)
	}
}
