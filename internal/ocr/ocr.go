// Package ocr verifies enhancement results with an OCR engine and scores the
// recognized text against an expected transcription.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"go-doc-enhancer/pkg/models"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
	"github.com/disintegration/imaging"
)

// Recognizer extracts text from a raster
type Recognizer interface {
	Recognize(ctx context.Context, img *models.RasterImage) (*models.OCRResult, error)
}

// Score fills in the expected text and its word and character error rates.
// Both texts are normalised first; an empty expected text leaves result unscored.
func Score(result *models.OCRResult, expected string) {
	if result == nil || strings.TrimSpace(expected) == "" {
		return
	}
	result.ExpectedText = expected

	refWords := Normalize(expected)
	hypWords := Normalize(result.Text)
	result.WER, _ = wer.WER(refWords, hypWords)

	ref := strings.Join(refWords, " ")
	hyp := strings.Join(hypWords, " ")
	result.CER = float64(levenshtein.Distance(ref, hyp)) / float64(len([]rune(ref)))
}

// Normalize lowercases text, drops punctuation and splits it into words
func Normalize(text string) []string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)
	return strings.Fields(clean)
}

// EncodePNG encodes a raster losslessly for OCR engines and HTTP responses
func EncodePNG(img *models.RasterImage) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img == nil || img.IsEmpty() {
		return nil, fmt.Errorf("cannot encode empty image")
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.NRGBA(), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
