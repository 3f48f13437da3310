package enhancer

import (
	"math"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/internal/workers"
	"go-doc-enhancer/pkg/models"
)

// Filter parameters
const (
	whitenPeakFloor    = 128
	whitenPeakOffset   = 60
	adjustmentLimit    = 100
	brightnessPerPoint = 2.55
)

// WhitenBackground pushes paper-coloured pixels to pure white and darkens the rest
// in proportion to their luminance. The paper level is the luminance histogram
// peak within [128, 255]; pixels more than 60 levels below it are kept as ink.
func WhitenBackground(img *models.RasterImage) (*models.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.IsEmpty() {
		return img.Clone(), nil
	}

	plane := analyzer.NewLumaPlane(img)
	var histogram [256]int
	for _, l := range plane.Values {
		histogram[int(l)]++
	}

	peak, peakCount := -1, 0
	for bin := whitenPeakFloor; bin < len(histogram); bin++ {
		if histogram[bin] > peakCount {
			peak, peakCount = bin, histogram[bin]
		}
	}
	if peak < 0 {
		return img.Clone(), nil
	}
	threshold := float64(peak - whitenPeakOffset)

	out := img.Clone()
	ch := img.Channels
	workers.Rows(img.Height, func(startY, endY int) {
		for i := startY * img.Width; i < endY*img.Width; i++ {
			o := i * ch
			l := plane.Values[i]
			if l > threshold {
				out.Pix[o], out.Pix[o+1], out.Pix[o+2] = 255, 255, 255
				continue
			}
			ratio := l / threshold
			for c := 0; c < 3; c++ {
				out.Pix[o+c] = clampByte(float64(img.Pix[o+c]) * ratio)
			}
		}
	})
	return out, nil
}

// Denoise applies a 3×3 median to each colour channel. Border pixels are copied.
func Denoise(img *models.RasterImage) (*models.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	out := img.Clone()
	if img.IsEmpty() || img.Width < 3 || img.Height < 3 {
		return out, nil
	}

	workers.Rows(img.Height, func(startY, endY int) {
		var window [9]uint8
		for y := max(1, startY); y < min(endY, img.Height-1); y++ {
			for x := 1; x < img.Width-1; x++ {
				o := img.Offset(x, y)
				for c := 0; c < 3; c++ {
					n := 0
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							window[n] = img.Pix[img.Offset(x+dx, y+dy)+c]
							n++
						}
					}
					out.Pix[o+c] = median9(&window)
				}
			}
		}
	})
	return out, nil
}

// Sharpen convolves with a cross kernel: centre 1+4a, edge neighbours -a.
// amount 0 leaves the image unchanged. Border pixels are copied.
func Sharpen(img *models.RasterImage, amount float64) (*models.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	out := img.Clone()
	if img.IsEmpty() || amount == 0 || img.Width < 3 || img.Height < 3 {
		return out, nil
	}

	centre := 1 + 4*amount
	workers.Rows(img.Height, func(startY, endY int) {
		for y := max(1, startY); y < min(endY, img.Height-1); y++ {
			for x := 1; x < img.Width-1; x++ {
				o := img.Offset(x, y)
				up, down := img.Offset(x, y-1), img.Offset(x, y+1)
				left, right := o-img.Channels, o+img.Channels
				for c := 0; c < 3; c++ {
					neighbours := float64(img.Pix[up+c]) + float64(img.Pix[down+c]) +
						float64(img.Pix[left+c]) + float64(img.Pix[right+c])
					out.Pix[o+c] = clampByte(centre*float64(img.Pix[o+c]) - amount*neighbours)
				}
			}
		}
	})
	return out, nil
}

// AdjustContrastBrightness maps every colour sample through
// clamp(f·(v-128) + 128 + brightness·2.55) with f = 259(c+255) / (255(259-c)).
// Both adjustments are clamped to [-100, 100]; (0, 0) is the identity.
func AdjustContrastBrightness(img *models.RasterImage, contrast, brightness int) (*models.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.IsEmpty() {
		return img.Clone(), nil
	}

	lut := toneCurve(contrast, brightness)
	out := img.Clone()
	ch := img.Channels
	workers.Rows(img.Height, func(startY, endY int) {
		for i := startY * img.Width * ch; i < endY*img.Width*ch; i += ch {
			out.Pix[i] = lut[img.Pix[i]]
			out.Pix[i+1] = lut[img.Pix[i+1]]
			out.Pix[i+2] = lut[img.Pix[i+2]]
		}
	})
	return out, nil
}

func toneCurve(contrast, brightness int) [256]uint8 {
	c := float64(max(-adjustmentLimit, min(adjustmentLimit, contrast)))
	b := float64(max(-adjustmentLimit, min(adjustmentLimit, brightness)))
	factor := 259 * (c + 255) / (255 * (259 - c))

	var lut [256]uint8
	for v := range lut {
		lut[v] = clampByte(factor*(float64(v)-128) + 128 + b*brightnessPerPoint)
	}
	return lut
}

// median9 sorts the window in place and returns the middle element
func median9(w *[9]uint8) uint8 {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j] < w[j-1]; j-- {
			w[j], w[j-1] = w[j-1], w[j]
		}
	}
	return w[4]
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
