package analyzer

import (
	"math"
	"strings"
	"testing"

	"go-doc-enhancer/internal/testimage"
)

func TestRunVoteEstimator(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  float64
	}{
		{"level lines", 0, 0},
		{"down to the right", 3, 3},
		{"up to the right", -5, -5},
	}

	estimator := NewRunVoteEstimator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testimage.TiltedLines(400, 300, tt.angle, 30, 3, 235, 30)
			got := estimator.EstimateSkew(NewLumaPlane(img))
			if math.Abs(got-tt.want) > 0.5 {
				t.Errorf("Expected skew ~%.1f, got %.1f", tt.want, got)
			}
		})
	}
}

func TestRunVoteEstimator_BlankPage(t *testing.T) {
	estimator := NewRunVoteEstimator()
	if got := estimator.EstimateSkew(NewLumaPlane(testimage.Gray(200, 200, 250))); got != 0 {
		t.Errorf("Expected 0 without ink, got %f", got)
	}
	if got := estimator.EstimateSkew(NewLumaPlane(testimage.Gray(200, 3, 0))); got != 0 {
		t.Errorf("Expected 0 for images shorter than the probe offset, got %f", got)
	}
}

func TestRunVoteEstimator_SolidBlockVotesLevel(t *testing.T) {
	img := testimage.Gray(200, 200, 255)
	testimage.FillRect(img, 40, 40, 120, 60, 0)

	if got := NewRunVoteEstimator().EstimateSkew(NewLumaPlane(img)); got != 0 {
		t.Errorf("Expected a filled block to read as level, got %f", got)
	}
}

func TestModalAngle(t *testing.T) {
	tests := []struct {
		name  string
		votes []float64
		want  float64
	}{
		{"no votes", nil, 0},
		{"clear winner", []float64{3, 3, 2.5, 3, -1}, 3},
		{"tie prefers smaller magnitude", []float64{4, 4, -1, -1}, -1},
		{"tie prefers negative", []float64{2, -2}, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := modalAngle(tt.votes); got != tt.want {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestClampAngle(t *testing.T) {
	if clampAngle(26.5) != MaxSkewAngle || clampAngle(-40) != -MaxSkewAngle || clampAngle(2) != 2 {
		t.Error("Expected angles clamped to ±15")
	}
}

func TestProjectionProfileEstimator(t *testing.T) {
	estimator := NewProjectionProfileEstimator()
	if estimator.Name() != ProjectionProfileEstimatorName {
		t.Errorf("Unexpected name %s", estimator.Name())
	}

	for _, angle := range []float64{0, 3, -4} {
		img := testimage.TiltedLines(400, 300, angle, 30, 2, 240, 20)
		got := estimator.EstimateSkew(NewLumaPlane(img))
		if math.Abs(got-angle) > 0.5 {
			t.Errorf("Expected skew ~%.1f, got %.1f", angle, got)
		}
	}

	if got := estimator.EstimateSkew(NewLumaPlane(testimage.Gray(50, 50, 255))); got != 0 {
		t.Errorf("Expected 0 without ink, got %f", got)
	}
}

func TestAssessorUsesInjectedEstimator(t *testing.T) {
	qa := NewQualityAssessor(WithSkewEstimator(fixedEstimator(7)))
	got, err := qa.Assess(testimage.Gray(20, 20, 128))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.SkewAngle != 7 {
		t.Errorf("Expected injected skew 7, got %f", got.SkewAngle)
	}
	last := got.Recommendations[len(got.Recommendations)-1]
	if !strings.Contains(last, "tilted by 7.0 degrees") {
		t.Errorf("Expected a skew recommendation last, got %q", last)
	}

	qa = NewQualityAssessor(WithSkewEstimator(fixedEstimator(40)))
	if angle, _ := qa.EstimateSkew(testimage.Gray(20, 20, 128)); angle != MaxSkewAngle {
		t.Errorf("Expected injected estimates to be clamped, got %f", angle)
	}
}

type fixedEstimator float64

func (f fixedEstimator) EstimateSkew(*LumaPlane) float64 { return float64(f) }
func (f fixedEstimator) Name() string                    { return "fixed" }
