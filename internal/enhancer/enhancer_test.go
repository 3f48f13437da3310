package enhancer

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/internal/testimage"
	"go-doc-enhancer/pkg/models"
)

func TestEnhance_SharpenAutoTriggerFires(t *testing.T) {
	img := testimage.SoftRect(200, 200, 8, 230, 60)
	opts := models.EnhancementOptions{}.WithSharpen(false)

	withTrigger, err := New().EnhanceWithReport(img, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if withTrigger.Baseline.Sharpness >= AutoSharpenBelow {
		t.Fatalf("Expected a soft baseline, got sharpness %d", withTrigger.Baseline.Sharpness)
	}

	disabled := New(WithTriggers(WithoutTriggers(DefaultTriggers(), "sharpness_below_50")))
	withoutTrigger, err := disabled.EnhanceWithReport(img, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if testimage.Equal(withTrigger.Image, withoutTrigger.Image) {
		t.Error("Expected the sharpness trigger to change the output")
	}
	if !withTrigger.Applied(StageSharpen) {
		t.Errorf("Expected sharpen stage, got %v", withTrigger.StageNames())
	}
	if withoutTrigger.Applied(StageSharpen) {
		t.Errorf("Expected no sharpen stage with the trigger removed, got %v", withoutTrigger.StageNames())
	}
}

func TestEnhance_NoisyTiltedPage(t *testing.T) {
	img := testimage.TiltedLines(400, 300, 3, 60, 2, 220, 150)
	testimage.AddNoise(img, 25, 42)

	report, err := New().EnhanceWithReport(img, models.EnhancementOptions{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(report.Baseline.SkewAngle-3) > 0.5 {
		t.Fatalf("Expected baseline skew near 3, got %.1f", report.Baseline.SkewAngle)
	}
	if report.Baseline.Noise <= AutoDenoiseNoise {
		t.Fatalf("Expected baseline noise above %d, got %d", AutoDenoiseNoise, report.Baseline.Noise)
	}
	if !report.Applied(StageDeskew) || !report.Applied(StageDenoise) {
		t.Fatalf("Expected deskew and denoise, got %v", report.StageNames())
	}

	after, err := analyzer.NewQualityAssessor().Assess(report.Image)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(after.SkewAngle) > 0.5 {
		t.Errorf("Expected skew near 0 after enhancement, got %.1f", after.SkewAngle)
	}
	if after.Noise >= report.Baseline.Noise {
		t.Errorf("Expected noise to drop from %d, got %d", report.Baseline.Noise, after.Noise)
	}
}

func TestEnhance_RecordsFiringTriggers(t *testing.T) {
	img := testimage.TiltedLines(400, 300, 3, 60, 2, 220, 150)
	testimage.AddNoise(img, 25, 42)

	opts := models.EnhancementOptions{}.WithDeskew(true)
	report, err := New().EnhanceWithReport(img, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"deskew_requested", "skew_above_2deg"}
	if got := report.Stages[0].Triggers; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected triggers %v, got %v", want, got)
	}
}

func TestEnhance_Deterministic(t *testing.T) {
	img := testimage.TiltedLines(300, 220, -4, 30, 3, 230, 40)
	testimage.AddNoise(img, 20, 7)
	opts := models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithBackgroundWhitening(true).
		WithContrast(15).
		WithBrightness(-5)

	e := New()
	first, err := e.Enhance(img, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := e.Enhance(img, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !testimage.Equal(first, second) {
		t.Error("Expected identical output for identical input")
	}
}

func TestEnhance_StageOrder(t *testing.T) {
	img := testimage.TiltedLines(300, 220, 3, 30, 3, 230, 40)
	opts := models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithPerspectiveCorrection(true).
		WithBackgroundWhitening(true).
		WithDeskew(true).
		WithDenoise(true).
		WithSharpen(true).
		WithContrast(10)

	report, err := New().EnhanceWithReport(img, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := make([]string, 0, len(StageOrder))
	for _, s := range StageOrder {
		want = append(want, string(s))
	}
	if got := report.StageNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected stages %v, got %v", want, got)
	}
}

func TestEnhance_NoStagesReturnsCopy(t *testing.T) {
	img := testimage.Gray(50, 50, 200)

	report, err := New(WithTriggers(nil)).EnhanceWithReport(img, models.EnhancementOptions{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(report.Stages) != 0 {
		t.Errorf("Expected no stages, got %v", report.StageNames())
	}
	if !testimage.Equal(report.Image, img) {
		t.Error("Expected unchanged image")
	}
	if &report.Image.Pix[0] == &img.Pix[0] {
		t.Error("Expected a copy, got the input buffer")
	}
}

func TestEnhance_InvalidAndEmptyInput(t *testing.T) {
	bad := &models.RasterImage{Width: 10, Height: 10, Channels: 4, Pix: make([]byte, 399)}
	var bufErr *models.InvalidBufferError
	if _, err := New().Enhance(bad, models.EnhancementOptions{}); !errors.As(err, &bufErr) {
		t.Errorf("Expected InvalidBufferError, got %v", err)
	}

	empty := models.NewRasterImage(0, 0, models.ChannelsRGBA)
	out, err := New().Enhance(empty, models.EnhancementOptions{}.WithDeskew(true))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Width != 0 || out.Height != 0 {
		t.Errorf("Expected empty output, got %dx%d", out.Width, out.Height)
	}
}

func TestDecide_EachTriggerIndependently(t *testing.T) {
	quiet := models.QualityAssessment{Brightness: 100, Contrast: 60, Sharpness: 90, Noise: 5}

	tests := []struct {
		trigger  string
		stage    Stage
		opts     models.EnhancementOptions
		baseline models.QualityAssessment
	}{
		{"deskew_requested", StageDeskew, models.EnhancementOptions{}.WithDeskew(true), quiet},
		{"skew_above_2deg", StageDeskew, models.EnhancementOptions{}, withSkew(quiet, -2.5)},
		{"denoise_requested", StageDenoise, models.EnhancementOptions{}.WithDenoise(true), quiet},
		{"noise_above_40", StageDenoise, models.EnhancementOptions{}, withNoise(quiet, 41)},
		{"whitening_requested", StageBackgroundWhitening, models.EnhancementOptions{}.WithBackgroundWhitening(true), quiet},
		{"autocrop_requested", StageAutoCrop, models.EnhancementOptions{}.WithAutoCrop(true), quiet},
		{"perspective_requested", StagePerspectiveCorrection, models.EnhancementOptions{}.WithPerspectiveCorrection(true), quiet},
		{"tone_adjustment_present", StageContrastBrightness, models.EnhancementOptions{}.WithBrightness(0), quiet},
		{"sharpen_requested", StageSharpen, models.EnhancementOptions{}.WithSharpen(true), quiet},
		{"sharpness_below_50", StageSharpen, models.EnhancementOptions{}.WithSharpen(false), withSharpness(quiet, 49)},
	}

	if len(tests) != len(DefaultTriggers()) {
		t.Fatalf("Expected a case for each of the %d triggers, got %d", len(DefaultTriggers()), len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.trigger, func(t *testing.T) {
			got := Decide(DefaultTriggers(), tt.opts, tt.baseline)
			want := map[Stage][]string{tt.stage: {tt.trigger}}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}
}

func TestDecide_QuietBaselineFiresNothing(t *testing.T) {
	baseline := models.QualityAssessment{Sharpness: 50, Noise: 40, SkewAngle: 2}
	opts := models.EnhancementOptions{}.
		WithDeskew(false).
		WithDenoise(false).
		WithAutoCrop(false)

	if got := Decide(DefaultTriggers(), opts, baseline); len(got) != 0 {
		t.Errorf("Expected no triggers at the limits, got %v", got)
	}
}

func TestWithoutTriggers(t *testing.T) {
	table := WithoutTriggers(DefaultTriggers(), "skew_above_2deg", "noise_above_40", "missing")
	if len(table) != len(DefaultTriggers())-2 {
		t.Fatalf("Expected %d triggers, got %d", len(DefaultTriggers())-2, len(table))
	}
	for _, tr := range table {
		if tr.Name == "skew_above_2deg" || tr.Name == "noise_above_40" {
			t.Errorf("Expected %s to be removed", tr.Name)
		}
	}
}

func withSkew(qa models.QualityAssessment, angle float64) models.QualityAssessment {
	qa.SkewAngle = angle
	return qa
}

func withNoise(qa models.QualityAssessment, noise int) models.QualityAssessment {
	qa.Noise = noise
	return qa
}

func withSharpness(qa models.QualityAssessment, sharpness int) models.QualityAssessment {
	qa.Sharpness = sharpness
	return qa
}
