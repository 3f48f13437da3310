package analyzer

import (
	"math"

	"go-doc-enhancer/pkg/models"
	"go-doc-enhancer/pkg/validation"
)

// Score scaling
const (
	brightnessMidpoint = 128.0
	brightnessPenalty  = 0.78
	contrastScale      = 1.5
	sharpnessScale     = 2.0
	noiseScale         = 10.0
	skewPenalty        = 5.0
)

// Weights of the overall score; they sum to 1
const (
	weightBrightness = 0.20
	weightContrast   = 0.25
	weightSharpness  = 0.30
	weightNoise      = 0.15
	weightSkew       = 0.10
)

// qualityAssessor implements QualityAssessor
type qualityAssessor struct {
	metricsCalculator MetricsCalculator
	skewEstimator     SkewEstimator
	qualityValidator  *validation.QualityValidator
}

// Option configures a quality assessor
type Option func(*qualityAssessor)

// WithSkewEstimator replaces the default run-vote skew estimator
func WithSkewEstimator(estimator SkewEstimator) Option {
	return func(qa *qualityAssessor) {
		if estimator != nil {
			qa.skewEstimator = estimator
		}
	}
}

// WithQualityValidator replaces the default recommendation thresholds
func WithQualityValidator(validator *validation.QualityValidator) Option {
	return func(qa *qualityAssessor) {
		if validator != nil {
			qa.qualityValidator = validator
		}
	}
}

// NewQualityAssessor creates a quality assessor with all components
func NewQualityAssessor(opts ...Option) QualityAssessor {
	qa := &qualityAssessor{
		metricsCalculator: NewMetricsCalculator(),
		skewEstimator:     NewRunVoteEstimator(),
		qualityValidator:  validation.NewQualityValidator(),
	}
	for _, opt := range opts {
		opt(qa)
	}
	return qa
}

// Assess scores brightness, contrast, sharpness, noise and skew
func (qa *qualityAssessor) Assess(img *models.RasterImage) (models.QualityAssessment, error) {
	if err := img.Validate(); err != nil {
		return models.QualityAssessment{}, err
	}
	if img.IsEmpty() {
		return models.UnreadableAssessment(), nil
	}

	plane := NewLumaPlane(img)

	avgLuminance := qa.metricsCalculator.AverageLuminance(plane)
	brightness := toScore(100 - math.Abs(avgLuminance-brightnessMidpoint)*brightnessPenalty)
	contrast := toScore(qa.metricsCalculator.LuminanceStdDev(plane) * contrastScale)
	sharpness := toScore(qa.metricsCalculator.MeanAbsLaplacian(plane) * sharpnessScale)
	noise := toScore(qa.metricsCalculator.BlockNoiseVariance(img) / noiseScale)
	skew := clampAngle(qa.skewEstimator.EstimateSkew(plane))

	overall := toScore(OverallScore(brightness, contrast, sharpness, noise, skew))

	issues := qa.qualityValidator.Validate(validation.AssessmentMetrics{
		AvgLuminance: avgLuminance,
		Contrast:     contrast,
		Sharpness:    sharpness,
		Noise:        noise,
		SkewAngle:    skew,
	})

	return models.QualityAssessment{
		OverallScore:    overall,
		Brightness:      brightness,
		Contrast:        contrast,
		Sharpness:       sharpness,
		Noise:           noise,
		SkewAngle:       skew,
		IsAcceptable:    overall >= models.AcceptableScore,
		Recommendations: qa.qualityValidator.ConvertIssuesToMessages(issues),
	}, nil
}

// EstimateSkew runs only the skew estimator
func (qa *qualityAssessor) EstimateSkew(img *models.RasterImage) (float64, error) {
	if err := img.Validate(); err != nil {
		return 0, err
	}
	if img.IsEmpty() {
		return 0, nil
	}
	return clampAngle(qa.skewEstimator.EstimateSkew(NewLumaPlane(img))), nil
}

// OverallScore combines the component scores; noise and skew count inversely
func OverallScore(brightness, contrast, sharpness, noise int, skew float64) float64 {
	skewScore := math.Max(0, 100-math.Abs(skew)*skewPenalty)
	return float64(brightness)*weightBrightness +
		float64(contrast)*weightContrast +
		float64(sharpness)*weightSharpness +
		float64(100-noise)*weightNoise +
		skewScore*weightSkew
}

// toScore clamps to [0, 100] and rounds to the nearest integer
func toScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
