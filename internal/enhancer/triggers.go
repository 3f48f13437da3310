package enhancer

import (
	"math"

	"go-doc-enhancer/pkg/models"
)

// Stage identifies one step of the enhancement pipeline
type Stage string

const (
	StageDeskew                Stage = "deskew"
	StageDenoise               Stage = "denoise"
	StageBackgroundWhitening   Stage = "background_whitening"
	StageAutoCrop              Stage = "auto_crop"
	StagePerspectiveCorrection Stage = "perspective_correction"
	StageContrastBrightness    Stage = "contrast_brightness"
	StageSharpen               Stage = "sharpen"
)

// StageOrder is the fixed order in which stages run
var StageOrder = []Stage{
	StageDeskew,
	StageDenoise,
	StageBackgroundWhitening,
	StageAutoCrop,
	StagePerspectiveCorrection,
	StageContrastBrightness,
	StageSharpen,
}

// Automatic trigger limits, measured on the baseline assessment
const (
	AutoDeskewAngle     = 2.0
	AutoDenoiseNoise    = 40
	AutoSharpenBelow    = 50
	DefaultSharpenLevel = 0.3
)

// Trigger is one row of the decision table: when Fires reports true, Stage runs.
// A stage runs if any of its triggers fires.
type Trigger struct {
	Name  string
	Stage Stage
	Fires func(opts models.EnhancementOptions, baseline models.QualityAssessment) bool
}

// DefaultTriggers returns the standard decision table
func DefaultTriggers() []Trigger {
	return []Trigger{
		{
			Name:  "deskew_requested",
			Stage: StageDeskew,
			Fires: func(opts models.EnhancementOptions, _ models.QualityAssessment) bool {
				return models.Enabled(opts.Deskew)
			},
		},
		{
			Name:  "skew_above_2deg",
			Stage: StageDeskew,
			Fires: func(_ models.EnhancementOptions, qa models.QualityAssessment) bool {
				return math.Abs(qa.SkewAngle) > AutoDeskewAngle
			},
		},
		{
			Name:  "denoise_requested",
			Stage: StageDenoise,
			Fires: func(opts models.EnhancementOptions, _ models.QualityAssessment) bool {
				return models.Enabled(opts.Denoise)
			},
		},
		{
			Name:  "noise_above_40",
			Stage: StageDenoise,
			Fires: func(_ models.EnhancementOptions, qa models.QualityAssessment) bool {
				return qa.Noise > AutoDenoiseNoise
			},
		},
		{
			Name:  "whitening_requested",
			Stage: StageBackgroundWhitening,
			Fires: func(opts models.EnhancementOptions, _ models.QualityAssessment) bool {
				return models.Enabled(opts.BackgroundWhitening)
			},
		},
		{
			Name:  "autocrop_requested",
			Stage: StageAutoCrop,
			Fires: func(opts models.EnhancementOptions, _ models.QualityAssessment) bool {
				return models.Enabled(opts.AutoCrop)
			},
		},
		{
			Name:  "perspective_requested",
			Stage: StagePerspectiveCorrection,
			Fires: func(opts models.EnhancementOptions, _ models.QualityAssessment) bool {
				return models.Enabled(opts.PerspectiveCorrection)
			},
		},
		{
			Name:  "tone_adjustment_present",
			Stage: StageContrastBrightness,
			Fires: func(opts models.EnhancementOptions, _ models.QualityAssessment) bool {
				return opts.ContrastAdjustment != nil || opts.BrightnessAdjustment != nil
			},
		},
		{
			Name:  "sharpen_requested",
			Stage: StageSharpen,
			Fires: func(opts models.EnhancementOptions, _ models.QualityAssessment) bool {
				return models.Enabled(opts.Sharpen)
			},
		},
		{
			Name:  "sharpness_below_50",
			Stage: StageSharpen,
			Fires: func(_ models.EnhancementOptions, qa models.QualityAssessment) bool {
				return qa.Sharpness < AutoSharpenBelow
			},
		},
	}
}

// WithoutTriggers returns table minus the named rows
func WithoutTriggers(table []Trigger, names ...string) []Trigger {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make([]Trigger, 0, len(table))
	for _, t := range table {
		if !drop[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

// Decide evaluates the table and returns, per stage, the names of the triggers that fired
func Decide(table []Trigger, opts models.EnhancementOptions, baseline models.QualityAssessment) map[Stage][]string {
	fired := make(map[Stage][]string)
	for _, t := range table {
		if t.Fires != nil && t.Fires(opts, baseline) {
			fired[t.Stage] = append(fired[t.Stage], t.Name)
		}
	}
	return fired
}
