package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/internal/enhancer"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	EnhanceTimeout     time.Duration
	MaxRequestBodySize int64
	MaxImagePixels     int64
	WorkerCount        int
	SkewEstimator      string
	DefaultProfile     string
	LogLevel           string

	AzureStorageAccount string
	AzureStorageKey     string

	OCREnabled  bool
	OCRLanguage string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob storage credentials are configured
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:   parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		EnhanceTimeout:      parseDurationOrDefault("ENHANCE_TIMEOUT", 45*time.Second),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 20*1024*1024), // 20MB
		MaxImagePixels:      parseIntOrDefault("MAX_IMAGE_PIXELS", 40_000_000),
		WorkerCount:         int(parseIntOrDefault("WORKER_COUNT", int64(runtime.NumCPU()))),
		SkewEstimator:       strings.TrimSpace(getEnvOrDefault("SKEW_ESTIMATOR", analyzer.RunVoteEstimatorName)),
		DefaultProfile:      strings.TrimSpace(getEnvOrDefault("DEFAULT_PROFILE", enhancer.DefaultProfile)),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),
		OCREnabled:          parseBoolOrDefault("OCR_ENABLED", false),
		OCRLanguage:         getEnvOrDefault("OCR_LANGUAGE", "eng"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names that cannot be defaulted
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be > 0 (got %d)", c.MaxImagePixels)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be > 0 (got %d)", c.WorkerCount)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.EnhanceTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, enhance=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.EnhanceTimeout)
	}
	switch c.SkewEstimator {
	case analyzer.RunVoteEstimatorName, analyzer.ProjectionProfileEstimatorName:
	default:
		return fmt.Errorf("unknown SKEW_ESTIMATOR %q (want %s or %s)",
			c.SkewEstimator, analyzer.RunVoteEstimatorName, analyzer.ProjectionProfileEstimatorName)
	}
	if !enhancer.HasProfile(c.DefaultProfile) {
		return fmt.Errorf("unknown DEFAULT_PROFILE %q (known: %s)",
			c.DefaultProfile, strings.Join(enhancer.ProfileNames(), ", "))
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
