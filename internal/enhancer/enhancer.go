package enhancer

import (
	"fmt"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/internal/logger"
	"go-doc-enhancer/pkg/models"

	"github.com/sirupsen/logrus"
)

// AppliedStage records a stage that ran and the triggers that selected it
type AppliedStage struct {
	Stage    Stage    `json:"stage"`
	Triggers []string `json:"triggers"`
}

// Report is the outcome of an enhancement run
type Report struct {
	Image    *models.RasterImage      `json:"-"`
	Baseline models.QualityAssessment `json:"baseline"`
	Stages   []AppliedStage           `json:"stages"`
}

// StageNames lists applied stages in execution order
func (r *Report) StageNames() []string {
	names := make([]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		names = append(names, string(s.Stage))
	}
	return names
}

// Applied reports whether stage ran
func (r *Report) Applied(stage Stage) bool {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return true
		}
	}
	return false
}

// Enhancer runs the assessment-driven enhancement pipeline.
// It holds no per-call state and is safe for concurrent use.
type Enhancer struct {
	assessor      analyzer.QualityAssessor
	triggers      []Trigger
	sharpenAmount float64
	log           *logrus.Entry
}

// Option configures an Enhancer
type Option func(*Enhancer)

// WithAssessor replaces the default quality assessor
func WithAssessor(assessor analyzer.QualityAssessor) Option {
	return func(e *Enhancer) {
		if assessor != nil {
			e.assessor = assessor
		}
	}
}

// WithTriggers replaces the decision table
func WithTriggers(triggers []Trigger) Option {
	return func(e *Enhancer) {
		e.triggers = append([]Trigger(nil), triggers...)
	}
}

// New creates an enhancer with the default assessor and decision table
func New(opts ...Option) *Enhancer {
	e := &Enhancer{
		assessor:      analyzer.NewQualityAssessor(),
		triggers:      DefaultTriggers(),
		sharpenAmount: DefaultSharpenLevel,
		log:           logger.WithComponent("enhancer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assessor returns the assessor used for baselines and skew estimates
func (e *Enhancer) Assessor() analyzer.QualityAssessor {
	return e.assessor
}

// Triggers returns a copy of the decision table
func (e *Enhancer) Triggers() []Trigger {
	return append([]Trigger(nil), e.triggers...)
}

// Deskew estimates the text-line angle and rotates it back to level
func (e *Enhancer) Deskew(img *models.RasterImage) (*models.RasterImage, error) {
	angle, err := e.assessor.EstimateSkew(img)
	if err != nil {
		return nil, err
	}
	return DeskewAngle(img, angle)
}

// CorrectPerspective only corrects rotation: it delegates to Deskew and does not
// undo keystone distortion.
func (e *Enhancer) CorrectPerspective(img *models.RasterImage) (*models.RasterImage, error) {
	e.log.Debug("Perspective correction approximated by deskew")
	return e.Deskew(img)
}

// Enhance returns the enhanced image
func (e *Enhancer) Enhance(img *models.RasterImage, opts models.EnhancementOptions) (*models.RasterImage, error) {
	report, err := e.EnhanceWithReport(img, opts)
	if err != nil {
		return nil, err
	}
	return report.Image, nil
}

// EnhanceWithReport assesses the input once, selects stages from the decision
// table and applies them in StageOrder. Identical inputs give identical bytes.
func (e *Enhancer) EnhanceWithReport(img *models.RasterImage, opts models.EnhancementOptions) (*Report, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	baseline, err := e.assessor.Assess(img)
	if err != nil {
		return nil, err
	}
	report := &Report{Baseline: baseline, Stages: []AppliedStage{}}

	fired := Decide(e.triggers, opts, baseline)
	current := img
	for _, stage := range StageOrder {
		names := fired[stage]
		if len(names) == 0 {
			continue
		}

		next, err := e.apply(stage, current, opts, baseline)
		if err != nil {
			return nil, fmt.Errorf("%s stage failed: %w", stage, err)
		}
		current = next
		report.Stages = append(report.Stages, AppliedStage{Stage: stage, Triggers: names})

		e.log.WithFields(logrus.Fields{
			"stage":    stage,
			"triggers": names,
			"width":    current.Width,
			"height":   current.Height,
		}).Debug("Enhancement stage applied")
	}

	if len(report.Stages) == 0 {
		current = img.Clone()
	}
	report.Image = current
	return report, nil
}

func (e *Enhancer) apply(stage Stage, img *models.RasterImage, opts models.EnhancementOptions, baseline models.QualityAssessment) (*models.RasterImage, error) {
	switch stage {
	case StageDeskew:
		// deskew runs first, so the baseline estimate describes img
		return DeskewAngle(img, baseline.SkewAngle)
	case StageDenoise:
		return Denoise(img)
	case StageBackgroundWhitening:
		return WhitenBackground(img)
	case StageAutoCrop:
		return AutoCrop(img)
	case StagePerspectiveCorrection:
		return e.CorrectPerspective(img)
	case StageContrastBrightness:
		contrast, brightness := 0, 0
		if opts.ContrastAdjustment != nil {
			contrast = *opts.ContrastAdjustment
		}
		if opts.BrightnessAdjustment != nil {
			brightness = *opts.BrightnessAdjustment
		}
		return AdjustContrastBrightness(img, contrast, brightness)
	case StageSharpen:
		return Sharpen(img, e.sharpenAmount)
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
}
