package service

import (
	"context"
	"fmt"
	"time"

	"go-doc-enhancer/internal/enhancer"
	apperrors "go-doc-enhancer/internal/errors"
	"go-doc-enhancer/internal/logger"
	"go-doc-enhancer/internal/observer"
	"go-doc-enhancer/internal/ocr"
	"go-doc-enhancer/internal/repository"
	"go-doc-enhancer/internal/workers"
	"go-doc-enhancer/pkg/models"

	"github.com/sirupsen/logrus"
)

// EnhanceInput describes one enhancement request
type EnhanceInput struct {
	Image  *models.RasterImage
	Source string // URL or file name, for logs and events

	// Profile selects base options; Options override them field by field
	Profile      string
	Options      *models.EnhancementOptions
	ExpectedText string
}

// EnhanceOutput is the enhanced raster with its response metadata
type EnhanceOutput struct {
	Image    *models.RasterImage
	Response *models.EnhancementResponse
}

// BatchResult is the outcome of one EnhanceBatch input, in input order
type BatchResult struct {
	Output *EnhanceOutput
	Err    error
}

// EnhancementService assesses and enhances document images
type EnhancementService interface {
	// Assess fetches imageURL and scores it
	Assess(ctx context.Context, imageURL string) (*models.AssessmentResponse, error)
	// AssessImage scores an already decoded image
	AssessImage(ctx context.Context, img *models.RasterImage, source string) (*models.AssessmentResponse, error)
	// Enhance fetches req.URL and enhances it
	Enhance(ctx context.Context, req models.EnhanceRequest) (*EnhanceOutput, error)
	// EnhanceImage enhances an already decoded image
	EnhanceImage(ctx context.Context, in EnhanceInput) (*EnhanceOutput, error)
	// EnhanceBatch enhances independent images concurrently on the worker pool
	EnhanceBatch(ctx context.Context, inputs []EnhanceInput) []BatchResult
	// ResolveOptions merges a profile with explicit overrides
	ResolveOptions(profile string, override *models.EnhancementOptions) (string, models.EnhancementOptions)
}

// Settings are the service limits taken from configuration
type Settings struct {
	EnhanceTimeout time.Duration
	MaxImagePixels int64
	DefaultProfile string
}

type enhancementService struct {
	repo       repository.ImageRepository
	enhancer   *enhancer.Enhancer
	publisher  observer.Subject
	pool       *workers.WorkerPool
	recognizer ocr.Recognizer
	settings   Settings
	log        *logrus.Entry
}

// Option configures the service
type Option func(*enhancementService)

// WithRecognizer enables OCR verification of enhanced images
func WithRecognizer(r ocr.Recognizer) Option {
	return func(s *enhancementService) {
		s.recognizer = r
	}
}

// NewEnhancementService creates the service. The pool is started here and must
// be closed by the owner.
func NewEnhancementService(
	repo repository.ImageRepository,
	enh *enhancer.Enhancer,
	publisher observer.Subject,
	pool *workers.WorkerPool,
	settings Settings,
	opts ...Option,
) EnhancementService {
	if settings.DefaultProfile == "" {
		settings.DefaultProfile = enhancer.DefaultProfile
	}
	s := &enhancementService{
		repo:      repo,
		enhancer:  enh,
		publisher: publisher,
		pool:      pool,
		settings:  settings,
		log:       logger.WithComponent("enhancement_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	pool.Start()
	return s
}

func (s *enhancementService) Assess(ctx context.Context, imageURL string) (*models.AssessmentResponse, error) {
	img, err := s.fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return s.AssessImage(ctx, img, imageURL)
}

func (s *enhancementService) AssessImage(ctx context.Context, img *models.RasterImage, source string) (*models.AssessmentResponse, error) {
	start := time.Now()
	if err := s.checkSize(img); err != nil {
		return nil, err
	}

	assessment, err := runWithTimeout(ctx, s.settings.EnhanceTimeout, func() (models.QualityAssessment, error) {
		return s.enhancer.Assessor().Assess(img)
	})
	if err != nil {
		return nil, apperrors.FromError("assessment failed", err)
	}

	elapsed := time.Since(start)
	s.publisher.NotifyObservers(ctx, observer.Event{
		Type:      observer.AssessmentCompleted,
		RequestID: RequestID(ctx),
		Source:    source,
		Duration:  elapsed,
		Score:     assessment.OverallScore,
	})

	return &models.AssessmentResponse{
		RequestID:         RequestID(ctx),
		ImageURL:          source,
		Width:             img.Width,
		Height:            img.Height,
		Timestamp:         start.UTC().Format(time.RFC3339),
		ProcessingTimeSec: elapsed.Seconds(),
		Assessment:        assessment,
	}, nil
}

func (s *enhancementService) Enhance(ctx context.Context, req models.EnhanceRequest) (*EnhanceOutput, error) {
	img, err := s.fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	return s.EnhanceImage(ctx, EnhanceInput{
		Image:        img,
		Source:       req.URL,
		Profile:      req.Profile,
		Options:      req.Options,
		ExpectedText: req.ExpectedText,
	})
}

func (s *enhancementService) EnhanceImage(ctx context.Context, in EnhanceInput) (*EnhanceOutput, error) {
	start := time.Now()
	event := observer.Event{RequestID: RequestID(ctx), Source: in.Source}
	s.notify(ctx, event, observer.EnhancementStarted)

	out, err := s.enhance(ctx, in, start)
	if err != nil {
		event.Duration = time.Since(start)
		event.Error = err.Error()
		s.notify(ctx, event, observer.EnhancementFailed)
		return nil, err
	}

	event.Duration = time.Since(start)
	event.Score = out.Response.Baseline.OverallScore
	event.Stages = out.Response.AppliedStages
	s.notify(ctx, event, observer.EnhancementCompleted)
	return out, nil
}

func (s *enhancementService) enhance(ctx context.Context, in EnhanceInput, start time.Time) (*EnhanceOutput, error) {
	if in.Image == nil {
		return nil, apperrors.NewValidationError("no image supplied", nil)
	}
	if err := s.checkSize(in.Image); err != nil {
		return nil, err
	}

	profile, opts := s.ResolveOptions(in.Profile, in.Options)
	report, err := runWithTimeout(ctx, s.settings.EnhanceTimeout, func() (*enhancer.Report, error) {
		return s.enhancer.EnhanceWithReport(in.Image, opts)
	})
	if err != nil {
		return nil, apperrors.FromError("enhancement failed", err)
	}

	encoded, err := ocr.EncodePNG(report.Image)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to encode result", err)
	}

	resp := &models.EnhancementResponse{
		RequestID:     RequestID(ctx),
		ImageURL:      in.Source,
		Profile:       profile,
		Options:       opts,
		Timestamp:     start.UTC().Format(time.RFC3339),
		Baseline:      report.Baseline,
		AppliedStages: report.StageNames(),
		Width:         report.Image.Width,
		Height:        report.Image.Height,
		Image:         encoded,
	}
	if s.recognizer != nil {
		resp.OCRResult = s.verify(ctx, report.Image, in.ExpectedText)
	}
	resp.ProcessingTimeSec = time.Since(start).Seconds()

	return &EnhanceOutput{Image: report.Image, Response: resp}, nil
}

// verify runs OCR on the result. OCR failures are reported in the result and do
// not fail the enhancement.
func (s *enhancementService) verify(ctx context.Context, img *models.RasterImage, expected string) *models.OCRResult {
	result, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		s.log.WithError(err).WithField("request_id", RequestID(ctx)).Warn("OCR verification failed")
		return &models.OCRResult{ExpectedText: expected, OCRError: err.Error()}
	}
	ocr.Score(result, expected)
	return result
}

func (s *enhancementService) EnhanceBatch(ctx context.Context, inputs []EnhanceInput) []BatchResult {
	results := make([]BatchResult, len(inputs))
	remaining := make(chan struct{}, len(inputs))

	for i := range inputs {
		i := i
		submitted := s.pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					results[i].Err = apperrors.NewInternalError("enhancement panicked", fmt.Errorf("%v", r))
				}
				remaining <- struct{}{}
			}()
			if err := ctx.Err(); err != nil {
				results[i].Err = apperrors.FromError("batch cancelled", err)
				return
			}
			results[i].Output, results[i].Err = s.EnhanceImage(ctx, inputs[i])
		})
		if !submitted {
			results[i].Err = apperrors.NewInternalError("worker pool closed", nil)
			remaining <- struct{}{}
		}
	}

	for range inputs {
		<-remaining
	}
	return results
}

func (s *enhancementService) ResolveOptions(profile string, override *models.EnhancementOptions) (string, models.EnhancementOptions) {
	if profile == "" {
		profile = s.settings.DefaultProfile
	}
	if !enhancer.HasProfile(profile) {
		s.log.WithField("profile", profile).Warn("Unknown profile, using default")
		profile = enhancer.DefaultProfile
	}

	opts := enhancer.Profile(profile)
	if override != nil {
		opts = opts.Merge(*override)
	}
	return profile, opts
}

func (s *enhancementService) fetch(ctx context.Context, imageURL string) (*models.RasterImage, error) {
	start := time.Now()
	img, err := s.repo.FetchImage(ctx, imageURL)
	event := observer.Event{RequestID: RequestID(ctx), Source: imageURL, Duration: time.Since(start)}
	if err != nil {
		event.Error = err.Error()
		s.notify(ctx, event, observer.ImageFetchFailed)
		return nil, err
	}
	s.notify(ctx, event, observer.ImageFetched)
	return img, nil
}

func (s *enhancementService) checkSize(img *models.RasterImage) error {
	if img == nil {
		return nil
	}
	if pixels := int64(img.Width) * int64(img.Height); pixels > s.settings.MaxImagePixels && s.settings.MaxImagePixels > 0 {
		return apperrors.NewTooLargeError(
			fmt.Sprintf("image has %d pixels, limit is %d", pixels, s.settings.MaxImagePixels), nil)
	}
	return nil
}

func (s *enhancementService) notify(ctx context.Context, event observer.Event, eventType observer.EventType) {
	event.Type = eventType
	s.publisher.NotifyObservers(ctx, event)
}

// runWithTimeout bounds a synchronous computation by ctx and timeout. The
// computation itself is not interrupted; its result is discarded on expiry.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn()
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, apperrors.NewTimeoutError("processing timed out", ctx.Err())
	}
}
