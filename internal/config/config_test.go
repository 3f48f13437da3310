package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "ENHANCE_TIMEOUT", "SKEW_ESTIMATOR", "DEFAULT_PROFILE",
		"MAX_IMAGE_PIXELS", "WORKER_COUNT", "AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_KEY", "OCR_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("Expected 0.0.0.0:8080, got %s", cfg.ServerAddress())
	}
	if cfg.EnhanceTimeout != 45*time.Second {
		t.Errorf("Expected 45s enhance timeout, got %s", cfg.EnhanceTimeout)
	}
	if cfg.SkewEstimator != "run_vote" || cfg.DefaultProfile != "default" {
		t.Errorf("Expected run_vote/default, got %s/%s", cfg.SkewEstimator, cfg.DefaultProfile)
	}
	if cfg.WorkerCount <= 0 || cfg.MaxImagePixels <= 0 {
		t.Errorf("Expected positive limits, got workers=%d pixels=%d", cfg.WorkerCount, cfg.MaxImagePixels)
	}
	if cfg.AzureEnabled() || cfg.OCREnabled {
		t.Error("Expected optional integrations to be off by default")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", " 9090 ")
	t.Setenv("ENHANCE_TIMEOUT", "5s")
	t.Setenv("SKEW_ESTIMATOR", "projection_profile")
	t.Setenv("DEFAULT_PROFILE", "receipt")
	t.Setenv("OCR_ENABLED", "true")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "scans")
	t.Setenv("AZURE_STORAGE_KEY", "a2V5")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.ServerAddress() != "0.0.0.0:9090" {
		t.Errorf("Expected trimmed port, got %s", cfg.ServerAddress())
	}
	if cfg.EnhanceTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %s", cfg.EnhanceTimeout)
	}
	if cfg.SkewEstimator != "projection_profile" || cfg.DefaultProfile != "receipt" {
		t.Errorf("Expected overrides, got %s/%s", cfg.SkewEstimator, cfg.DefaultProfile)
	}
	if !cfg.OCREnabled || !cfg.AzureEnabled() {
		t.Error("Expected OCR and Azure enabled")
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port out of range", "PORT", "70000", "invalid PORT"},
		{"port not numeric", "PORT", "http", "invalid PORT"},
		{"zero pixel limit", "MAX_IMAGE_PIXELS", "0", "MAX_IMAGE_PIXELS"},
		{"negative workers", "WORKER_COUNT", "-2", "WORKER_COUNT"},
		{"unknown estimator", "SKEW_ESTIMATOR", "hough", "SKEW_ESTIMATOR"},
		{"unknown profile", "DEFAULT_PROFILE", "passport", "DEFAULT_PROFILE"},
		{"half azure credentials", "AZURE_STORAGE_ACCOUNT", "scans", "AZURE_STORAGE_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AZURE_STORAGE_KEY", "")
			t.Setenv(tt.key, tt.value)
			_, err := LoadFromEnv()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
