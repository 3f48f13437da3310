package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "go-doc-enhancer/internal/errors"
	"go-doc-enhancer/internal/storage"
	"go-doc-enhancer/pkg/models"
	"go-doc-enhancer/pkg/validation"
)

// SourceImageRepository fetches from Azure Blob Storage for blob URLs and over
// HTTP otherwise
type SourceImageRepository struct {
	http      storage.ImageFetcher
	blob      storage.ImageFetcher
	validator *validation.URLValidator
}

// Option configures a SourceImageRepository
type Option func(*SourceImageRepository)

// WithBlobFetcher routes *.blob.core.windows.net URLs to fetcher
func WithBlobFetcher(fetcher storage.ImageFetcher) Option {
	return func(r *SourceImageRepository) {
		r.blob = fetcher
	}
}

// WithURLValidator replaces the default http/https validator
func WithURLValidator(v *validation.URLValidator) Option {
	return func(r *SourceImageRepository) {
		if v != nil {
			r.validator = v
		}
	}
}

// NewSourceImageRepository creates a repository over an HTTP fetcher
func NewSourceImageRepository(httpFetcher storage.ImageFetcher, opts ...Option) *SourceImageRepository {
	r := &SourceImageRepository{
		http:      httpFetcher,
		validator: validation.NewURLValidator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchImage validates imageURL, downloads it and converts it to a raster
func (r *SourceImageRepository) FetchImage(ctx context.Context, imageURL string) (*models.RasterImage, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	fetcher := r.http
	if storage.IsBlobURL(imageURL) {
		if r.blob == nil {
			return nil, apperrors.NewValidationError("blob URL received", ErrBlobStorageUnavailable)
		}
		fetcher = r.blob
	}

	img, err := fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeTooLarge {
			return nil, appErr
		}
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeoutError("image fetch timed out", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	return models.FromImage(img), nil
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *SourceImageRepository) ValidateImageURL(imageURL string) error {
	if err := r.validator.ValidateImageURL(imageURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImageURL, err)
	}
	return nil
}
