package validation

import (
	"errors"
	"testing"

	apperrors "go-doc-enhancer/internal/errors"
)

func TestNewURLValidator(t *testing.T) {
	validator := NewURLValidator()

	expectedSchemes := []string{"http", "https"}
	if len(validator.allowedSchemes) != len(expectedSchemes) {
		t.Fatalf("Expected %d schemes, got %d", len(expectedSchemes), len(validator.allowedSchemes))
	}
	for i, scheme := range expectedSchemes {
		if validator.allowedSchemes[i] != scheme {
			t.Errorf("Expected scheme %s, got %s", scheme, validator.allowedSchemes[i])
		}
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name        string
		validator   *URLValidator
		url         string
		wantMessage string
	}{
		{"https scan", NewURLValidator(), "https://example.com/scans/page1.tiff", ""},
		{"http with port", NewURLValidator(), "http://192.168.1.1:8080/receipt.jpg", ""},
		{"surrounding spaces", NewURLValidator(), "  https://example.com/a.png ", ""},
		{"empty", NewURLValidator(), "", "URL cannot be empty"},
		{"blank", NewURLValidator(), " \t\n", "URL cannot be empty"},
		{"bad format", NewURLValidator(), "http://[::1", "Invalid URL format"},
		{"ftp scheme", NewURLValidator(), "ftp://example.com/a.png", "URL scheme not allowed"},
		{"file scheme", NewURLValidator(), "file:///etc/passwd", "URL scheme not allowed"},
		{"missing host", NewURLValidator(), "https:///a.png", "URL must have a valid host"},
		{"credentials", NewURLValidator(), "https://user:pw@example.com/a.png", "URL must not embed credentials"},
		{"exact host allowed",
			NewURLValidatorWithOptions([]string{"https"}, []string{"docs.example.com"}),
			"https://docs.example.com/a.png", ""},
		{"subdomain suffix allowed",
			NewURLValidatorWithOptions([]string{"https"}, []string{".blob.core.windows.net"}),
			"https://scans.blob.core.windows.net/inbox/a.png", ""},
		{"host not allowed",
			NewURLValidatorWithOptions([]string{"https"}, []string{"docs.example.com"}),
			"https://evil.com/a.png", "URL host not allowed"},
		{"suffix does not match lookalike",
			NewURLValidatorWithOptions([]string{"https"}, []string{".blob.core.windows.net"}),
			"https://blob.core.windows.net.evil.com/a.png", "URL host not allowed"},
		{"scheme restricted",
			NewURLValidatorWithOptions([]string{"https"}, nil),
			"http://example.com/a.png", "URL scheme not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.ValidateImageURL(tt.url)
			if tt.wantMessage == "" {
				if err != nil {
					t.Errorf("Expected %q to pass validation, got error: %v", tt.url, err)
				}
				return
			}

			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected AppError, got: %T (%v)", err, err)
			}
			if appErr.Type != apperrors.ErrorTypeValidation {
				t.Errorf("Expected validation error, got %s", appErr.Type)
			}
			if appErr.Message != tt.wantMessage {
				t.Errorf("Expected %q, got %q", tt.wantMessage, appErr.Message)
			}
		})
	}
}
