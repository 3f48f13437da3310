package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-doc-enhancer/internal/config"
	"go-doc-enhancer/internal/enhancer"
	apperrors "go-doc-enhancer/internal/errors"
	"go-doc-enhancer/internal/logger"
	"go-doc-enhancer/internal/observer"
	"go-doc-enhancer/internal/service"
	"go-doc-enhancer/internal/storage"
	"go-doc-enhancer/internal/workers"
	"go-doc-enhancer/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader     = "X-Request-ID"
	qualityScoreHeader  = "X-Quality-Score"
	appliedStagesHeader = "X-Applied-Stages"
	requestIDKey        = "request_id"
	uploadField         = "image"
)

type handler struct {
	svc     service.EnhancementService
	metrics *observer.MetricsObserver
	pool    *workers.WorkerPool
	cfg     *config.Config
}

// NewHandler builds the HTTP API
func NewHandler(svc service.EnhancementService, metrics *observer.MetricsObserver, pool *workers.WorkerPool, cfg *config.Config) http.Handler {
	h := &handler{svc: svc, metrics: metrics, pool: pool, cfg: cfg}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/profiles", h.listProfiles)
	r.GET("/metrics", h.getMetrics)
	r.POST("/assess", h.assess)
	r.POST("/enhance", h.enhance)

	return r
}

func (h *handler) assess(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var (
		resp *models.AssessmentResponse
		err  error
	)
	if isMultipart(c) {
		img, name, decodeErr := h.readUpload(c)
		if decodeErr != nil {
			respondError(c, apperrors.GetStatusCode(decodeErr), "invalid upload", decodeErr)
			return
		}
		resp, err = h.svc.AssessImage(ctx, img, name)
	} else {
		var req models.AssessRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", bindErr)
			return
		}
		resp, err = h.svc.Assess(ctx, req.URL)
	}
	if err != nil {
		respondError(c, statusCode(err), "assessment failed", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) enhance(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var (
		out *service.EnhanceOutput
		err error
	)
	if isMultipart(c) {
		in, parseErr := h.readEnhanceForm(c)
		if parseErr != nil {
			respondError(c, apperrors.GetStatusCode(parseErr), "invalid upload", parseErr)
			return
		}
		out, err = h.svc.EnhanceImage(ctx, in)
	} else {
		var req models.EnhanceRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", bindErr)
			return
		}
		out, err = h.svc.Enhance(ctx, req)
	}
	if err != nil {
		respondError(c, statusCode(err), "enhancement failed", err)
		return
	}

	resp := out.Response
	c.Header(qualityScoreHeader, strconv.Itoa(resp.Baseline.OverallScore))
	c.Header(appliedStagesHeader, strings.Join(resp.AppliedStages, ","))
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, resp)
		return
	}
	c.Data(http.StatusOK, "image/png", resp.Image)
}

func (h *handler) listProfiles(c *gin.Context) {
	profiles := make(map[string]models.EnhancementOptions)
	for _, name := range enhancer.ProfileNames() {
		profiles[name] = enhancer.Profile(name)
	}
	c.JSON(http.StatusOK, gin.H{
		"default":  h.cfg.DefaultProfile,
		"profiles": profiles,
	})
}

func (h *handler) getMetrics(c *gin.Context) {
	stats := h.pool.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"pipeline": h.metrics.GetMetrics(),
		"workers": gin.H{
			"size":           h.pool.Workers(),
			"total_jobs":     stats.TotalJobs,
			"completed_jobs": stats.CompletedJobs,
			"active_workers": stats.ActiveWorkers,
		},
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// requestContext bounds the request and carries its id into the service
func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := service.WithRequestID(c.Request.Context(), c.GetString(requestIDKey))
	return context.WithTimeout(ctx, h.cfg.RequestTimeout)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func (h *handler) readUpload(c *gin.Context) (*models.RasterImage, string, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return nil, "", apperrors.NewValidationError("missing image file", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", apperrors.NewValidationError("unreadable image file", err)
	}
	defer f.Close()

	img, _, err := storage.DecodeImage(f, h.cfg.MaxImagePixels)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeTooLarge) {
			return nil, "", err
		}
		return nil, "", apperrors.NewValidationError("unsupported image", err)
	}
	return models.FromImage(img), fh.Filename, nil
}

func (h *handler) readEnhanceForm(c *gin.Context) (service.EnhanceInput, error) {
	img, name, err := h.readUpload(c)
	if err != nil {
		return service.EnhanceInput{}, err
	}
	in := service.EnhanceInput{
		Image:        img,
		Source:       name,
		Profile:      c.PostForm("profile"),
		ExpectedText: c.PostForm("expected_text"),
	}
	if raw := c.PostForm("options"); raw != "" {
		var opts models.EnhancementOptions
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return service.EnhanceInput{}, apperrors.NewValidationError("invalid options JSON", err)
		}
		in.Options = &opts
	}
	return in, nil
}

// Middleware and helper functions
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"request_id":  c.GetString(requestIDKey),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, statusCode(err), "request processing failed", err)
		}
	}
}

func statusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// upload errors wrap the body reader's size error
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		code = http.StatusRequestEntityTooLarge
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  c.GetString(requestIDKey),
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:     http.StatusText(code),
		Message:   fmt.Sprintf("%s: %v", message, err),
		RequestID: c.GetString(requestIDKey),
	})
}
