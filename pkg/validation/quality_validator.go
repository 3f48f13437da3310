package validation

import (
	"fmt"
	"math"
)

// QualityThresholds defines the limits that trigger recommendations
type QualityThresholds struct {
	// Average luminance (0-255)
	MinBrightness float64
	MaxBrightness float64

	// Scores (0-100)
	MinContrast  int
	MinSharpness int
	MaxNoise     int

	// Degrees
	MaxSkewAngle float64
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinBrightness: 80.0,
		MaxBrightness: 200.0,
		MinContrast:   30,
		MinSharpness:  40,
		MaxNoise:      50,
		MaxSkewAngle:  5.0,
	}
}

// QualityValidator turns quality metrics into issues and recommendations
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// Thresholds returns the active thresholds
func (qv *QualityValidator) Thresholds() QualityThresholds {
	return qv.thresholds
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// AssessmentMetrics carries the measurements recommendations are derived from
type AssessmentMetrics struct {
	AvgLuminance float64
	Contrast     int
	Sharpness    int
	Noise        int
	SkewAngle    float64
}

// Validate returns issues in a fixed order: brightness, contrast, sharpness, noise, skew
func (qv *QualityValidator) Validate(m AssessmentMetrics) []QualityIssue {
	var issues []QualityIssue

	// 1. Exposure
	if m.AvgLuminance < qv.thresholds.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_dark",
			Message:     "Image is too dark. Take the photo in more light.",
			Severity:    "error",
			ActualValue: m.AvgLuminance,
			Threshold:   qv.thresholds.MinBrightness,
		})
	} else if m.AvgLuminance > qv.thresholds.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        "overexposed",
			Message:     "Image is overexposed. Avoid strong light or flash on the page.",
			Severity:    "error",
			ActualValue: m.AvgLuminance,
			Threshold:   qv.thresholds.MaxBrightness,
		})
	}

	// 2. Contrast
	if m.Contrast < qv.thresholds.MinContrast {
		issues = append(issues, QualityIssue{
			Type:        "low_contrast",
			Message:     "Image has low contrast. Place the document on a plain, contrasting surface.",
			Severity:    "warning",
			ActualValue: float64(m.Contrast),
			Threshold:   float64(qv.thresholds.MinContrast),
		})
	}

	// 3. Sharpness
	if m.Sharpness < qv.thresholds.MinSharpness {
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     "Image appears blurry. Hold the camera steady and let it focus.",
			Severity:    "error",
			ActualValue: float64(m.Sharpness),
			Threshold:   float64(qv.thresholds.MinSharpness),
		})
	}

	// 4. Noise
	if m.Noise > qv.thresholds.MaxNoise {
		issues = append(issues, QualityIssue{
			Type:        "high_noise",
			Message:     "Image is noisy. Use better lighting instead of digital zoom.",
			Severity:    "warning",
			ActualValue: float64(m.Noise),
			Threshold:   float64(qv.thresholds.MaxNoise),
		})
	}

	// 5. Skew
	if angle := math.Abs(m.SkewAngle); angle > qv.thresholds.MaxSkewAngle {
		issues = append(issues, QualityIssue{
			Type:        "skew",
			Message:     fmt.Sprintf("Image is tilted by %.1f degrees. Hold the phone parallel to the page.", angle),
			Severity:    "warning",
			ActualValue: angle,
			Threshold:   qv.thresholds.MaxSkewAngle,
		})
	}

	return issues
}

// ConvertIssuesToMessages converts quality issues to recommendation strings
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
