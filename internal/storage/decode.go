package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	apperrors "go-doc-enhancer/internal/errors"

	// scanner and camera formats
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageFetcher downloads and decodes a source image
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

// FetchOption configures a fetcher
type FetchOption func(*fetchLimits)

type fetchLimits struct {
	maxPixels int64
}

// WithMaxPixels rejects images whose header declares more than maxPixels pixels
func WithMaxPixels(maxPixels int64) FetchOption {
	return func(l *fetchLimits) {
		l.maxPixels = maxPixels
	}
}

func newFetchLimits(opts []FetchOption) fetchLimits {
	var l fetchLimits
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// DecodeImage decodes png, jpeg, gif, bmp, tiff or webp data and reports the format.
// When maxPixels > 0 the header is checked first and oversized images fail with a
// too-large AppError before any pixel buffer is allocated.
func DecodeImage(r io.Reader, maxPixels int64) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode image header: %w", err)
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
			return nil, "", apperrors.NewTooLargeError(
				fmt.Sprintf("image is %dx%d, limit is %d pixels", cfg.Width, cfg.Height, maxPixels), nil)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}
