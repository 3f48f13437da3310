package models

// AssessRequest asks for a quality assessment of a remote image
type AssessRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// EnhanceRequest asks for an enhanced copy of a remote image.
// Explicit options override the profile field by field.
type EnhanceRequest struct {
	URL          string              `json:"url" binding:"required,url"`
	Profile      string              `json:"profile,omitempty"`
	Options      *EnhancementOptions `json:"options,omitempty"`
	ExpectedText string              `json:"expected_text,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// AssessmentResponse wraps a quality assessment with request metadata
type AssessmentResponse struct {
	RequestID         string            `json:"request_id"`
	ImageURL          string            `json:"image_url,omitempty"`
	Width             int               `json:"width"`
	Height            int               `json:"height"`
	Timestamp         string            `json:"timestamp"`
	ProcessingTimeSec float64           `json:"processing_time_sec"`
	Assessment        QualityAssessment `json:"assessment"`
}

// EnhancementResponse describes an enhancement run.
// Image carries the PNG encoding of the result; it is base64 encoded in JSON.
type EnhancementResponse struct {
	RequestID         string             `json:"request_id"`
	ImageURL          string             `json:"image_url,omitempty"`
	Profile           string             `json:"profile"`
	Options           EnhancementOptions `json:"options"`
	Timestamp         string             `json:"timestamp"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
	Baseline          QualityAssessment  `json:"baseline"`
	AppliedStages     []string           `json:"applied_stages"`
	Width             int                `json:"width"`
	Height            int                `json:"height"`
	Image             []byte             `json:"image,omitempty"`
	OCRResult         *OCRResult         `json:"ocr_result,omitempty"`
}
