package enhancer

import (
	"errors"
	"testing"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/internal/testimage"
	"go-doc-enhancer/pkg/models"
)

func TestSharpen_ZeroAmountIsIdentity(t *testing.T) {
	img := testimage.TiltedLines(64, 48, 7, 12, 2, 220, 40)
	testimage.AddNoise(img, 25, 1)

	out, err := Sharpen(img, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !testimage.Equal(out, img) {
		t.Error("Expected sharpen(0) to be the identity")
	}
}

func TestSharpen_Kernel(t *testing.T) {
	img := testimage.Gray(3, 3, 100)
	testimage.FillRect(img, 1, 1, 1, 1, 120)

	out, err := Sharpen(img, 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// 3*120 - 0.5*400 = 160
	if got := out.Pix[out.Offset(1, 1)]; got != 160 {
		t.Errorf("Expected centre 160, got %d", got)
	}
	if got := out.Pix[out.Offset(0, 1)]; got != 100 {
		t.Errorf("Expected border pixel to be copied, got %d", got)
	}
}

func TestAdjustContrastBrightness_ZeroIsIdentity(t *testing.T) {
	img := testimage.TiltedLines(64, 48, 7, 12, 2, 220, 40)
	testimage.AddNoise(img, 40, 2)

	out, err := AdjustContrastBrightness(img, 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !testimage.Equal(out, img) {
		t.Error("Expected (0, 0) adjustment to be the identity")
	}
}

func TestAdjustContrastBrightness_Curve(t *testing.T) {
	tests := []struct {
		name       string
		contrast   int
		brightness int
		in         uint8
		want       uint8
	}{
		{"midpoint is fixed under contrast", 50, 0, 128, 128},
		{"brightness shifts", 0, 20, 100, 151},
		{"negative brightness clamps", 0, -100, 200, 0},
		{"contrast stretches", 100, 0, 150, 178},
		{"out-of-range contrast is clamped", 500, 0, 150, 178},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testimage.Gray(2, 2, tt.in)
			out, err := AdjustContrastBrightness(img, tt.contrast, tt.brightness)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out.Pix[0] != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, out.Pix[0])
			}
			if out.Pix[3] != 255 {
				t.Errorf("Expected alpha to pass through, got %d", out.Pix[3])
			}
		})
	}
}

func TestDenoise_RemovesImpulse(t *testing.T) {
	img := testimage.Gray(5, 5, 200)
	testimage.FillRect(img, 2, 2, 1, 1, 0)

	out, err := Denoise(img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := out.Pix[out.Offset(2, 2)]; got != 200 {
		t.Errorf("Expected impulse removed, got %d", got)
	}
	if img.Pix[img.Offset(2, 2)] != 0 {
		t.Error("Expected input to be left untouched")
	}
}

func TestDenoise_LowersNoiseScore(t *testing.T) {
	img := testimage.Gray(90, 90, 180)
	testimage.AddNoise(img, 40, 9)

	qa := analyzer.NewQualityAssessor()
	before, _ := qa.Assess(img)
	out, err := Denoise(img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	after, _ := qa.Assess(out)
	if after.Noise >= before.Noise {
		t.Errorf("Expected noise to drop, got %d -> %d", before.Noise, after.Noise)
	}
}

func TestWhitenBackground(t *testing.T) {
	img := testimage.Gray(20, 20, 200)
	testimage.FillRect(img, 0, 0, 5, 5, 70)
	testimage.FillRect(img, 5, 0, 5, 5, 150)

	out, err := WhitenBackground(img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// peak 200, threshold 140
	if got := out.Pix[out.Offset(15, 15)]; got != 255 {
		t.Errorf("Expected paper to become white, got %d", got)
	}
	if got := out.Pix[out.Offset(7, 2)]; got != 255 {
		t.Errorf("Expected 150 (> threshold) to become white, got %d", got)
	}
	// 70 * 70/140 = 35
	if got := out.Pix[out.Offset(2, 2)]; got != 35 {
		t.Errorf("Expected ink darkened to 35, got %d", got)
	}
}

func TestWhitenBackground_DarkImageUnchanged(t *testing.T) {
	img := testimage.Gray(10, 10, 60)
	out, err := WhitenBackground(img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !testimage.Equal(out, img) {
		t.Error("Expected image without light pixels to be unchanged")
	}
}

func TestFilters_PreserveAlpha(t *testing.T) {
	img := testimage.Gray(10, 10, 180)
	testimage.AddNoise(img, 30, 5)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i % 251)
	}

	stages := map[string]func(*models.RasterImage) (*models.RasterImage, error){
		"whiten":  WhitenBackground,
		"denoise": Denoise,
		"sharpen": func(m *models.RasterImage) (*models.RasterImage, error) { return Sharpen(m, 0.7) },
		"tone":    func(m *models.RasterImage) (*models.RasterImage, error) { return AdjustContrastBrightness(m, 30, -10) },
	}
	for name, stage := range stages {
		out, err := stage(img)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		for i := 3; i < len(out.Pix); i += 4 {
			if out.Pix[i] != img.Pix[i] {
				t.Fatalf("%s: alpha changed at byte %d", name, i)
			}
		}
	}
}

func TestFilters_RejectInvalidBuffers(t *testing.T) {
	bad := &models.RasterImage{Width: 3, Height: 3, Channels: 3, Pix: make([]byte, 28)}
	var bufErr *models.InvalidBufferError

	if _, err := WhitenBackground(bad); !errors.As(err, &bufErr) {
		t.Errorf("WhitenBackground: expected InvalidBufferError, got %v", err)
	}
	if _, err := Denoise(bad); !errors.As(err, &bufErr) {
		t.Errorf("Denoise: expected InvalidBufferError, got %v", err)
	}
	if _, err := Sharpen(bad, 0.3); !errors.As(err, &bufErr) {
		t.Errorf("Sharpen: expected InvalidBufferError, got %v", err)
	}
	if _, err := AdjustContrastBrightness(bad, 10, 10); !errors.As(err, &bufErr) {
		t.Errorf("AdjustContrastBrightness: expected InvalidBufferError, got %v", err)
	}
}

func TestFilters_EmptyImages(t *testing.T) {
	empty := models.NewRasterImage(0, 0, models.ChannelsRGBA)
	for name, stage := range map[string]func(*models.RasterImage) (*models.RasterImage, error){
		"whiten":  WhitenBackground,
		"denoise": Denoise,
		"crop":    AutoCrop,
	} {
		out, err := stage(empty)
		if err != nil || out == nil || len(out.Pix) != 0 {
			t.Errorf("%s: expected empty copy, got %v, %v", name, out, err)
		}
	}
}
