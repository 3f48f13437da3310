package enhancer

import (
	"image"
	"image/color"
	"math"

	"go-doc-enhancer/internal/analyzer"
	"go-doc-enhancer/pkg/models"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Geometry parameters
const (
	minDeskewAngle   = 0.5
	contentThreshold = 235.0
	minCropPadding   = 10
	cropPaddingRatio = 0.02
	minCropSide      = 100
	maxCropAreaRatio = 0.95
)

// DeskewAngle rotates the image by -angle degrees about its centre onto a white
// canvas large enough to hold the rotated content. Angles under 0.5° are ignored.
func DeskewAngle(img *models.RasterImage, angle float64) (*models.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.IsEmpty() || math.Abs(angle) < minDeskewAngle || math.IsNaN(angle) {
		return img.Clone(), nil
	}

	rad := -angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	absSin, absCos := math.Abs(sin), math.Abs(cos)
	w, h := float64(img.Width), float64(img.Height)
	newW := int(math.Ceil(w*absCos + h*absSin))
	newH := int(math.Ceil(h*absCos + w*absSin))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	// source -> destination: translate the source centre to the origin, rotate,
	// then translate to the canvas centre
	cx, cy := w/2, h/2
	ncx, ncy := float64(newW)/2, float64(newH)/2
	s2d := f64.Aff3{
		cos, -sin, ncx - cos*cx + sin*cy,
		sin, cos, ncy - sin*cx - cos*cy,
	}

	src := img.NRGBA()
	draw.BiLinear.Transform(dst, s2d, src, src.Bounds(), draw.Over, nil)

	// the canvas is opaque, so premultiplied and straight alpha agree
	out := &image.NRGBA{Pix: dst.Pix, Stride: dst.Stride, Rect: dst.Rect}
	return models.FromNRGBA(out, img.Channels), nil
}

// AutoCrop trims uniform light margins around the document content.
// The image is returned unchanged when the padded content box is smaller than
// 100×100 or covers at least 95% of both dimensions.
func AutoCrop(img *models.RasterImage) (*models.RasterImage, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.IsEmpty() {
		return img.Clone(), nil
	}

	box, ok := contentBounds(img)
	if !ok {
		return img.Clone(), nil
	}

	padding := int(math.Max(minCropPadding, cropPaddingRatio*float64(min(img.Width, img.Height))))
	crop := image.Rect(
		box.Min.X-padding, box.Min.Y-padding,
		box.Max.X+padding, box.Max.Y+padding,
	).Intersect(image.Rect(0, 0, img.Width, img.Height))

	if !shouldCrop(crop, img.Width, img.Height) {
		return img.Clone(), nil
	}
	return cropRect(img, crop), nil
}

// contentBounds returns the bounding box of pixels darker than the content threshold
func contentBounds(img *models.RasterImage) (image.Rectangle, bool) {
	minX, minY := img.Width, img.Height
	maxX, maxY := -1, -1
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			o := img.Offset(x, y)
			if analyzer.Luminance(img.Pix[o], img.Pix[o+1], img.Pix[o+2]) >= contentThreshold {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func shouldCrop(crop image.Rectangle, width, height int) bool {
	if crop.Dx() < minCropSide || crop.Dy() < minCropSide {
		return false
	}
	return float64(crop.Dx()) < maxCropAreaRatio*float64(width) ||
		float64(crop.Dy()) < maxCropAreaRatio*float64(height)
}

func cropRect(img *models.RasterImage, r image.Rectangle) *models.RasterImage {
	out := models.NewRasterImage(r.Dx(), r.Dy(), img.Channels)
	rowBytes := r.Dx() * img.Channels
	for y := 0; y < r.Dy(); y++ {
		src := img.Offset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	return out
}
