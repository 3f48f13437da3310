package container

import (
	"fmt"
	"net/http"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/internal/config"
	"go-doc-enhancer/internal/enhancer"
	"go-doc-enhancer/internal/factory"
	"go-doc-enhancer/internal/logger"
	"go-doc-enhancer/internal/observer"
	"go-doc-enhancer/internal/ocr/tesseract"
	"go-doc-enhancer/internal/repository"
	"go-doc-enhancer/internal/service"
	"go-doc-enhancer/internal/transport"
	"go-doc-enhancer/internal/workers"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageRepository repository.ImageRepository
	enhancer        *enhancer.Enhancer
	publisher       *observer.EventPublisher
	metrics         *observer.MetricsObserver
	pool            *workers.WorkerPool
	service         service.EnhancementService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(factory.StorageSettings{
		FetchTimeout: cfg.ImageFetchTimeout,
		MaxBytes:     cfg.MaxRequestBodySize,
		MaxPixels:    cfg.MaxImagePixels,
		AzureAccount: cfg.AzureStorageAccount,
		AzureKey:     cfg.AzureStorageKey,
	})

	// Build dependency graph
	httpFetcher, err := components.StorageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to create http storage: %w", err)
	}
	var repoOpts []repository.Option
	if cfg.AzureEnabled() {
		blobFetcher, err := components.StorageFactory.CreateStorage(factory.AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure storage: %w", err)
		}
		repoOpts = append(repoOpts, repository.WithBlobFetcher(blobFetcher))
	}
	imageRepository := repository.NewSourceImageRepository(httpFetcher, repoOpts...)

	estimator, err := components.EstimatorFactory.CreateEstimator(cfg.SkewEstimator)
	if err != nil {
		return nil, err
	}
	enh := enhancer.New(enhancer.WithAssessor(
		analyzer.NewQualityAssessor(analyzer.WithSkewEstimator(estimator)),
	))

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.WithComponent("events")))
	publisher.Subscribe(metrics)

	var svcOpts []service.Option
	if cfg.OCREnabled {
		if tesseract.Available() {
			svcOpts = append(svcOpts, service.WithRecognizer(tesseract.New(cfg.OCRLanguage)))
		} else {
			logger.Warn("OCR enabled but tesseract is not installed; verification disabled")
		}
	}

	pool := workers.NewWorkerPool(cfg.WorkerCount)
	svc := service.NewEnhancementService(imageRepository, enh, publisher, pool, service.Settings{
		EnhanceTimeout: cfg.EnhanceTimeout,
		MaxImagePixels: cfg.MaxImagePixels,
		DefaultProfile: cfg.DefaultProfile,
	}, svcOpts...)
	handler := transport.NewHandler(svc, metrics, pool, cfg)

	return &Container{
		config:          cfg,
		imageRepository: imageRepository,
		enhancer:        enh,
		publisher:       publisher,
		metrics:         metrics,
		pool:            pool,
		service:         svc,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the enhancement service
func (c *Container) Service() service.EnhancementService {
	return c.service
}

// Close stops the worker pool and waits for pending events
func (c *Container) Close() {
	c.pool.Close()
	c.publisher.Wait()
}
