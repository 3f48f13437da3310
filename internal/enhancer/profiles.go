package enhancer

import (
	"sort"

	"go-doc-enhancer/pkg/models"
)

// DefaultProfile is used for unknown document types
const DefaultProfile = "default"

var profiles = map[string]models.EnhancementOptions{
	"invoice": models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithBackgroundWhitening(true).
		WithDeskew(true).
		WithSharpen(true).
		WithContrast(10),
	"receipt": models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithBackgroundWhitening(true).
		WithDeskew(true).
		WithDenoise(true).
		WithContrast(20),
	"form": models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithDeskew(true).
		WithSharpen(true).
		WithBackgroundWhitening(false),
	"handwritten": models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithDeskew(true).
		WithDenoise(true).
		WithSharpen(false).
		WithContrast(15).
		WithBrightness(5),
	"id_document": models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithPerspectiveCorrection(true).
		WithSharpen(true).
		WithContrast(10),
	DefaultProfile: models.EnhancementOptions{}.
		WithAutoCrop(true).
		WithDeskew(true).
		WithBackgroundWhitening(true).
		WithSharpen(true),
}

// Profile returns the options for a document type; unknown types get the default profile.
// The result is a copy and may be modified freely.
func Profile(documentType string) models.EnhancementOptions {
	opts, ok := profiles[documentType]
	if !ok {
		opts = profiles[DefaultProfile]
	}
	return opts.Clone()
}

// HasProfile reports whether documentType has its own profile
func HasProfile(documentType string) bool {
	_, ok := profiles[documentType]
	return ok
}

// ProfileNames returns the known document types in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
