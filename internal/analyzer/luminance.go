package analyzer

import (
	"go-doc-enhancer/internal/workers"
	"go-doc-enhancer/pkg/models"
)

// Luminance returns the Rec. 601 luma of an RGB triple in [0, 255].
// Integer weights keep neutral greys exact: Luminance(v, v, v) == v.
func Luminance(r, g, b uint8) float64 {
	return float64(299*int(r)+587*int(g)+114*int(b)) / 1000
}

// LumaPlane holds the luminance of every pixel, row-major
type LumaPlane struct {
	Width  int
	Height int
	Values []float64
}

// NewLumaPlane computes the luminance plane of a validated image
func NewLumaPlane(img *models.RasterImage) *LumaPlane {
	plane := &LumaPlane{
		Width:  img.Width,
		Height: img.Height,
		Values: make([]float64, img.Width*img.Height),
	}
	ch := img.Channels
	workers.Rows(img.Height, func(startY, endY int) {
		for y := startY; y < endY; y++ {
			for x := 0; x < img.Width; x++ {
				i := y*img.Width + x
				p := i * ch
				plane.Values[i] = Luminance(img.Pix[p], img.Pix[p+1], img.Pix[p+2])
			}
		}
	})
	return plane
}

// At returns the luminance at (x, y)
func (p *LumaPlane) At(x, y int) float64 {
	return p.Values[y*p.Width+x]
}

// Row returns the luminance values of row y
func (p *LumaPlane) Row(y int) []float64 {
	return p.Values[y*p.Width : (y+1)*p.Width]
}
