// Package testimage builds deterministic synthetic document rasters for tests.
package testimage

import (
	"math"
	"math/rand"

	"go-doc-enhancer/pkg/models"
)

// Solid returns a 4-channel image filled with one opaque grey-or-colour value
func Solid(width, height int, r, g, b uint8) *models.RasterImage {
	img := models.NewRasterImage(width, height, models.ChannelsRGBA)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 255
	}
	return img
}

// Gray returns a solid neutral image of luminance v
func Gray(width, height int, v uint8) *models.RasterImage {
	return Solid(width, height, v, v, v)
}

// FillRect paints an axis-aligned rectangle, clipped to the image
func FillRect(img *models.RasterImage, x0, y0, w, h int, v uint8) {
	for y := max(0, y0); y < min(img.Height, y0+h); y++ {
		for x := max(0, x0); x < min(img.Width, x0+w); x++ {
			o := img.Offset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2] = v, v, v
		}
	}
}

// TiltedLines draws full-width ink lines every spacing rows, descending to the
// right by angle degrees, on a paper-coloured page.
func TiltedLines(width, height int, angle float64, spacing, thickness int, paper, ink uint8) *models.RasterImage {
	img := Gray(width, height, paper)
	slope := math.Tan(angle * math.Pi / 180)
	drop := int(math.Ceil(math.Abs(slope) * float64(width)))
	for y0 := -drop; y0 < height+drop; y0 += spacing {
		for x := 0; x < width; x++ {
			top := int(math.Floor(float64(y0) + float64(x)*slope))
			for t := 0; t < thickness; t++ {
				if y := top + t; y >= 0 && y < height {
					o := img.Offset(x, y)
					img.Pix[o], img.Pix[o+1], img.Pix[o+2] = ink, ink, ink
				}
			}
		}
	}
	return img
}

// AddNoise perturbs every RGB sample by a uniform value in [-amplitude, amplitude]
func AddNoise(img *models.RasterImage, amplitude int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < len(img.Pix); i++ {
		if img.Channels == models.ChannelsRGBA && i%4 == 3 {
			continue
		}
		v := int(img.Pix[i]) + rng.Intn(2*amplitude+1) - amplitude
		img.Pix[i] = uint8(max(0, min(255, v)))
	}
}

// SoftRect draws a dark rectangle whose edges ramp over ramp pixels, giving a
// low-sharpness but non-flat image.
func SoftRect(width, height, ramp int, paper, ink uint8) *models.RasterImage {
	img := Gray(width, height, paper)
	x0, y0 := width/4, height/4
	x1, y1 := width-width/4, height-height/4
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := max(x0-x, x-x1, 0)
			dy := max(y0-y, y-y1, 0)
			d := math.Hypot(float64(dx), float64(dy))
			t := math.Min(1, d/float64(ramp))
			v := float64(ink) + (float64(paper)-float64(ink))*t
			o := img.Offset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2] = uint8(math.Round(v)), uint8(math.Round(v)), uint8(math.Round(v))
		}
	}
	return img
}

// Equal reports whether two rasters have the same geometry and bytes
func Equal(a, b *models.RasterImage) bool {
	if a.Width != b.Width || a.Height != b.Height || a.Channels != b.Channels || len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}
