// Package tesseract implements ocr.Recognizer with the Tesseract engine.
package tesseract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go-doc-enhancer/internal/ocr"
	"go-doc-enhancer/pkg/models"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs Tesseract through a fresh gosseract client per call
type Recognizer struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New creates a recognizer for the given languages, "eng" when none are given
func New(languages ...string) *Recognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Recognizer{languages: languages, clientFactory: gosseract.NewClient}
}

// Available reports whether the tesseract binary is installed
func Available() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// Recognize returns the page text, per-word boxes and mean word confidence (0..1)
func (r *Recognizer) Recognize(ctx context.Context, img *models.RasterImage) (*models.OCRResult, error) {
	data, err := ocr.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(r.languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("set page segmentation: %w", err)
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words, confidence := extractWords(c)
	return &models.OCRResult{
		Text:       strings.TrimSpace(text),
		Words:      words,
		Confidence: confidence,
	}, nil
}

func extractWords(c *gosseract.Client) ([]models.OCRWord, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}

	words := make([]models.OCRWord, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		conf := b.Confidence / 100.0
		sum += conf
		words = append(words, models.OCRWord{
			Text:       b.Word,
			Confidence: conf,
			Box: models.BoundingBox{
				X:      b.Box.Min.X,
				Y:      b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
		})
	}
	if len(words) == 0 {
		return words, 0
	}
	return words, sum / float64(len(words))
}
