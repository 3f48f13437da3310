package models

import (
	"fmt"
	"image"
	"image/draw"
	"math"
)

// Supported channel layouts for RasterImage buffers
const (
	ChannelsRGB  = 3
	ChannelsRGBA = 4
)

// RasterImage is a row-major 8-bit image buffer.
// Channel 3, when present, is alpha and is never altered by the filters.
type RasterImage struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Pix      []byte `json:"-"`
}

// InvalidBufferError reports a buffer whose length does not match its declared geometry
type InvalidBufferError struct {
	Width    int
	Height   int
	Channels int
	Length   int
}

func (e *InvalidBufferError) Error() string {
	if e.Height > 0 && e.Channels > 0 && e.Width > math.MaxInt/e.Channels/e.Height {
		return fmt.Sprintf("invalid raster buffer: %dx%dx%d overflows the addressable size, got %d bytes",
			e.Width, e.Height, e.Channels, e.Length)
	}
	return fmt.Sprintf("invalid raster buffer: %dx%dx%d requires %d bytes, got %d",
		e.Width, e.Height, e.Channels, e.Width*e.Height*e.Channels, e.Length)
}

// NewRasterImage allocates a zeroed image
func NewRasterImage(width, height, channels int) *RasterImage {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &RasterImage{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// Validate checks that the buffer matches the declared dimensions
func (r *RasterImage) Validate() error {
	if r == nil {
		return nil
	}
	if r.Width < 0 || r.Height < 0 ||
		(r.Channels != ChannelsRGB && r.Channels != ChannelsRGBA) ||
		(r.Height > 0 && r.Width > math.MaxInt/r.Channels/r.Height) ||
		len(r.Pix) != r.Width*r.Height*r.Channels {
		return &InvalidBufferError{
			Width:    r.Width,
			Height:   r.Height,
			Channels: r.Channels,
			Length:   len(r.Pix),
		}
	}
	return nil
}

// IsEmpty reports whether there are no pixels to work on
func (r *RasterImage) IsEmpty() bool {
	return r == nil || r.Width == 0 || r.Height == 0 || len(r.Pix) == 0
}

// Clone returns a deep copy
func (r *RasterImage) Clone() *RasterImage {
	if r == nil {
		return nil
	}
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	return &RasterImage{Width: r.Width, Height: r.Height, Channels: r.Channels, Pix: pix}
}

// Offset returns the index of the first byte of pixel (x, y)
func (r *RasterImage) Offset(x, y int) int {
	return (y*r.Width + x) * r.Channels
}

// FromImage converts any decoded image into a 4-channel raster
func FromImage(img image.Image) *RasterImage {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	pix := make([]byte, len(nrgba.Pix))
	copy(pix, nrgba.Pix)
	return &RasterImage{Width: b.Dx(), Height: b.Dy(), Channels: ChannelsRGBA, Pix: pix}
}

// NRGBA returns the image as *image.NRGBA. RGBA buffers are shared, not copied.
func (r *RasterImage) NRGBA() *image.NRGBA {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Channels == ChannelsRGBA {
		return &image.NRGBA{Pix: r.Pix, Stride: 4 * r.Width, Rect: rect}
	}
	out := image.NewNRGBA(rect)
	for i, j := 0, 0; i+2 < len(r.Pix); i, j = i+3, j+4 {
		out.Pix[j] = r.Pix[i]
		out.Pix[j+1] = r.Pix[i+1]
		out.Pix[j+2] = r.Pix[i+2]
		out.Pix[j+3] = 255
	}
	return out
}

// FromNRGBA builds a raster with the requested channel count from an NRGBA image
func FromNRGBA(img *image.NRGBA, channels int) *RasterImage {
	b := img.Bounds()
	out := NewRasterImage(b.Dx(), b.Dy(), channels)
	for y := 0; y < out.Height; y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[start : start+4*out.Width]
		for x := 0; x < out.Width; x++ {
			o := out.Offset(x, y)
			copy(out.Pix[o:o+channels], row[4*x:4*x+channels])
		}
	}
	return out
}
