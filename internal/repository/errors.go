package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrBlobStorageUnavailable indicates a blob URL without configured blob storage
	ErrBlobStorageUnavailable = errors.New("blob storage not configured")
)
