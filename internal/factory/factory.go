package factory

import (
	"fmt"
	"time"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/internal/storage"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// EstimatorFactory creates skew estimators
type EstimatorFactory interface {
	CreateEstimator(name string) (analyzer.SkewEstimator, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

type estimatorFactory struct{}

// NewEstimatorFactory creates a new estimator factory
func NewEstimatorFactory() EstimatorFactory {
	return &estimatorFactory{}
}

// CreateEstimator returns the skew estimator registered under name
func (f *estimatorFactory) CreateEstimator(name string) (analyzer.SkewEstimator, error) {
	switch name {
	case analyzer.RunVoteEstimatorName, "":
		return analyzer.NewRunVoteEstimator(), nil
	case analyzer.ProjectionProfileEstimatorName:
		return analyzer.NewProjectionProfileEstimator(), nil
	default:
		return nil, fmt.Errorf("unsupported skew estimator: %s", name)
	}
}

// StorageSettings carries what the fetchers need from configuration
type StorageSettings struct {
	FetchTimeout time.Duration
	MaxBytes     int64
	MaxPixels    int64
	AzureAccount string
	AzureKey     string
}

type storageFactory struct {
	settings StorageSettings
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(settings StorageSettings) StorageFactory {
	return &storageFactory{settings: settings}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.settings.FetchTimeout, f.settings.MaxBytes, storage.WithMaxPixels(f.settings.MaxPixels)), nil
	case AzureStorage:
		if f.settings.AzureAccount == "" || f.settings.AzureKey == "" {
			return nil, fmt.Errorf("azure storage requires account name and key")
		}
		return storage.NewAzureImageFetcher(f.settings.AzureAccount, f.settings.AzureKey, storage.WithMaxPixels(f.settings.MaxPixels))
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	EstimatorFactory EstimatorFactory
	StorageFactory   StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(settings StorageSettings) *ComponentFactory {
	return &ComponentFactory{
		EstimatorFactory: NewEstimatorFactory(),
		StorageFactory:   NewStorageFactory(settings),
	}
}
