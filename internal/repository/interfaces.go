package repository

import (
	"context"

	"go-doc-enhancer/pkg/models"
)

// ImageRepository defines the interface for source image access
type ImageRepository interface {
	// FetchImage retrieves and decodes the image at imageURL
	FetchImage(ctx context.Context, imageURL string) (*models.RasterImage, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}
