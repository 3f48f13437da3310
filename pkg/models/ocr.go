package models

// BoundingBox is a pixel rectangle in image coordinates
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OCRWord is a single recognized word
type OCRWord struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

// OCRResult represents text recognized from an enhanced image
type OCRResult struct {
	Text       string    `json:"text"`
	Words      []OCRWord `json:"words,omitempty"`
	Confidence float64   `json:"confidence"`

	// Error rates against the expected text, when one was supplied
	ExpectedText string  `json:"expected_text,omitempty"`
	WER          float64 `json:"word_error_rate,omitempty"`
	CER          float64 `json:"character_error_rate,omitempty"`
	OCRError     string  `json:"ocr_error,omitempty"`
}
