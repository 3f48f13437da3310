package models

import (
	"fmt"
	"strings"
)

// EnhancementOptions selects enhancement stages. A nil field means the pipeline decides.
type EnhancementOptions struct {
	AutoCrop              *bool `json:"auto_crop,omitempty"`
	PerspectiveCorrection *bool `json:"perspective_correction,omitempty"`
	BackgroundWhitening   *bool `json:"background_whitening,omitempty"`
	Deskew                *bool `json:"deskew,omitempty"`
	Denoise               *bool `json:"denoise,omitempty"`
	Sharpen               *bool `json:"sharpen,omitempty"`

	// Nominal range -100..100
	ContrastAdjustment   *int `json:"contrast_adjustment,omitempty"`
	BrightnessAdjustment *int `json:"brightness_adjustment,omitempty"`
}

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// Enabled reports whether an optional flag is present and true
func Enabled(flag *bool) bool {
	return flag != nil && *flag
}

// Clone returns a copy that shares no pointers with opts
func (opts EnhancementOptions) Clone() EnhancementOptions {
	out := EnhancementOptions{}
	for _, p := range []struct {
		src *bool
		dst **bool
	}{
		{opts.AutoCrop, &out.AutoCrop},
		{opts.PerspectiveCorrection, &out.PerspectiveCorrection},
		{opts.BackgroundWhitening, &out.BackgroundWhitening},
		{opts.Deskew, &out.Deskew},
		{opts.Denoise, &out.Denoise},
		{opts.Sharpen, &out.Sharpen},
	} {
		if p.src != nil {
			*p.dst = Bool(*p.src)
		}
	}
	if opts.ContrastAdjustment != nil {
		out.ContrastAdjustment = Int(*opts.ContrastAdjustment)
	}
	if opts.BrightnessAdjustment != nil {
		out.BrightnessAdjustment = Int(*opts.BrightnessAdjustment)
	}
	return out
}

// Merge returns a copy of opts with every field that is set in override replaced
func (opts EnhancementOptions) Merge(override EnhancementOptions) EnhancementOptions {
	out := opts.Clone()
	o := override.Clone()
	if o.AutoCrop != nil {
		out.AutoCrop = o.AutoCrop
	}
	if o.PerspectiveCorrection != nil {
		out.PerspectiveCorrection = o.PerspectiveCorrection
	}
	if o.BackgroundWhitening != nil {
		out.BackgroundWhitening = o.BackgroundWhitening
	}
	if o.Deskew != nil {
		out.Deskew = o.Deskew
	}
	if o.Denoise != nil {
		out.Denoise = o.Denoise
	}
	if o.Sharpen != nil {
		out.Sharpen = o.Sharpen
	}
	if o.ContrastAdjustment != nil {
		out.ContrastAdjustment = o.ContrastAdjustment
	}
	if o.BrightnessAdjustment != nil {
		out.BrightnessAdjustment = o.BrightnessAdjustment
	}
	return out
}

// WithAutoCrop returns options with auto-crop set
func (opts EnhancementOptions) WithAutoCrop(enabled bool) EnhancementOptions {
	opts.AutoCrop = Bool(enabled)
	return opts
}

// WithPerspectiveCorrection returns options with perspective correction set
func (opts EnhancementOptions) WithPerspectiveCorrection(enabled bool) EnhancementOptions {
	opts.PerspectiveCorrection = Bool(enabled)
	return opts
}

// WithBackgroundWhitening returns options with background whitening set
func (opts EnhancementOptions) WithBackgroundWhitening(enabled bool) EnhancementOptions {
	opts.BackgroundWhitening = Bool(enabled)
	return opts
}

// WithDeskew returns options with deskew set
func (opts EnhancementOptions) WithDeskew(enabled bool) EnhancementOptions {
	opts.Deskew = Bool(enabled)
	return opts
}

// WithDenoise returns options with denoise set
func (opts EnhancementOptions) WithDenoise(enabled bool) EnhancementOptions {
	opts.Denoise = Bool(enabled)
	return opts
}

// WithSharpen returns options with sharpen set
func (opts EnhancementOptions) WithSharpen(enabled bool) EnhancementOptions {
	opts.Sharpen = Bool(enabled)
	return opts
}

// WithContrast returns options with a contrast adjustment
func (opts EnhancementOptions) WithContrast(contrast int) EnhancementOptions {
	opts.ContrastAdjustment = Int(contrast)
	return opts
}

// WithBrightness returns options with a brightness adjustment
func (opts EnhancementOptions) WithBrightness(brightness int) EnhancementOptions {
	opts.BrightnessAdjustment = Int(brightness)
	return opts
}

// String renders only the fields that are set, e.g. "deskew=true contrast=10"
func (opts EnhancementOptions) String() string {
	var parts []string
	add := func(name string, v *bool) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%t", name, *v))
		}
	}
	add("auto_crop", opts.AutoCrop)
	add("perspective_correction", opts.PerspectiveCorrection)
	add("background_whitening", opts.BackgroundWhitening)
	add("deskew", opts.Deskew)
	add("denoise", opts.Denoise)
	add("sharpen", opts.Sharpen)
	if opts.ContrastAdjustment != nil {
		parts = append(parts, fmt.Sprintf("contrast=%d", *opts.ContrastAdjustment))
	}
	if opts.BrightnessAdjustment != nil {
		parts = append(parts, fmt.Sprintf("brightness=%d", *opts.BrightnessAdjustment))
	}
	return strings.Join(parts, " ")
}
