package analyzer

import "go-doc-enhancer/pkg/models"

// QualityAssessor scores document images for OCR fitness
type QualityAssessor interface {
	// Assess never fails for empty images; it returns an error only for malformed buffers
	Assess(img *models.RasterImage) (models.QualityAssessment, error)

	// EstimateSkew returns the dominant text-line angle in degrees
	EstimateSkew(img *models.RasterImage) (float64, error)
}

// MetricsCalculator computes the raw quality metrics
type MetricsCalculator interface {
	AverageLuminance(plane *LumaPlane) float64
	LuminanceStdDev(plane *LumaPlane) float64
	MeanAbsLaplacian(plane *LumaPlane) float64
	BlockNoiseVariance(img *models.RasterImage) float64
}

// SkewEstimator finds the dominant text-line angle in degrees, positive when lines
// descend to the right. Implementations must be deterministic.
type SkewEstimator interface {
	EstimateSkew(plane *LumaPlane) float64
	Name() string
}
