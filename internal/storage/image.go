package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/nfnt/resize"
)

const (
	// MaxWidth is the width product photos are scaled down to.
	MaxWidth = 800
	// DefaultMaxBytes caps a single upload.
	DefaultMaxBytes int64 = 10 << 20
	jpegQuality           = 80
)

// Uploader persists an image and returns the URL the catalog should store.
// Remove deletes an image Save produced; URLs it did not produce are ignored.
type Uploader interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// Optimize validates an uploaded image and normalizes it for the catalog.
// JPEG and PNG are scaled to MaxWidth and re-encoded as JPEG; GIF and WebP
// are kept as-is. It returns the bytes and the extension to store them under.
func Optimize(r io.Reader, maxBytes int64) ([]byte, string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, "", fmt.Errorf("image exceeds %d MB: %w", maxBytes>>20, apperr.ErrValidation)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("empty image: %w", apperr.ErrValidation)
	}

	var img image.Image
	switch ct := http.DetectContentType(raw); ct {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(raw))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(raw))
	case "image/gif":
		return raw, ".gif", nil
	case "image/webp":
		return raw, ".webp", nil
	default:
		return nil, "", fmt.Errorf("unsupported image type %q: %w", ct, apperr.ErrValidation)
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", apperr.ErrValidation)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = resize.Resize(MaxWidth, 0, img, resize.Lanczos3)
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return out.Bytes(), ".jpg", nil
}

// Images runs uploads through Optimize before handing them to an Uploader.
type Images struct {
	Uploader Uploader
	MaxBytes int64
}

func (i *Images) Store(ctx context.Context, r io.Reader) (string, error) {
	data, ext, err := Optimize(r, i.MaxBytes)
	if err != nil {
		return "", err
	}
	return i.Uploader.Save(ctx, "image"+ext, bytes.NewReader(data))
}

// Remove deletes a stored image. Placeholder and external URLs are left alone.
func (i *Images) Remove(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return i.Uploader.Remove(ctx, url)
}
