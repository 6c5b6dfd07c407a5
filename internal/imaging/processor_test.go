// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeTestJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	data := encodeTestJPEG(t, createTestImage(320, 200))

	result, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Width != 320 || result.Height != 200 {
		t.Errorf("dimensions = %dx%d, want 320x200", result.Width, result.Height)
	}
	if result.Format != "jpeg" {
		t.Errorf("format = %q, want jpeg", result.Format)
	}

	decoded, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("normalized output does not decode: %v", err)
	}
	if decoded.Bounds().Dx() != 320 {
		t.Errorf("re-decoded width = %d", decoded.Bounds().Dx())
	}
}

func TestNormalize_PreservesPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(64, 64)); err != nil {
		t.Fatalf("encoding png: %v", err)
	}

	result, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Format != "png" {
		t.Errorf("format = %q, want png", result.Format)
	}
}

func TestNormalize_RejectsNonImage(t *testing.T) {
	if _, err := Normalize([]byte("definitely not an image")); err == nil {
		t.Fatal("expected error for non-image input")
	}
}

func TestThumbnail_ShrinksLargeImages(t *testing.T) {
	data := encodeTestJPEG(t, createTestImage(2000, 1000))

	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("thumbnail does not decode: %v", err)
	}
	if img.Bounds().Dx() > ThumbnailWidth || img.Bounds().Dy() > ThumbnailHeight {
		t.Errorf("thumbnail = %dx%d, exceeds %dx%d bounds",
			img.Bounds().Dx(), img.Bounds().Dy(), ThumbnailWidth, ThumbnailHeight)
	}
	// Aspect ratio of 2:1 must survive the fit.
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 2*h {
		t.Errorf("aspect ratio lost: %dx%d", w, h)
	}
}

func TestThumbnail_KeepsSmallImages(t *testing.T) {
	data := encodeTestJPEG(t, createTestImage(100, 80))

	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("thumbnail does not decode: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 80 {
		t.Errorf("small image resized to %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(30, 10)

	rotated := applyOrientation(img, 6)
	if rotated.Bounds().Dx() != 10 || rotated.Bounds().Dy() != 30 {
		t.Errorf("orientation 6 should swap dimensions, got %dx%d",
			rotated.Bounds().Dx(), rotated.Bounds().Dy())
	}

	same := applyOrientation(img, 1)
	if same.Bounds() != img.Bounds() {
		t.Error("orientation 1 must be a no-op")
	}
}

func TestFormatExtension(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", ".jpg"},
		{"png", ".png"},
		{"gif", ".gif"},
		{"unknown", ".jpg"},
	}
	for _, tt := range tests {
		if got := FormatExtension(tt.format); got != tt.want {
			t.Errorf("FormatExtension(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
