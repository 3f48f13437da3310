package models

// UnreadableMessage is the sole recommendation for images that cannot be analyzed
const UnreadableMessage = "Unable to analyze image."

// AcceptableScore is the minimum overall score for OCR-ready images
const AcceptableScore = 60

// QualityAssessment scores a document image for OCR fitness
type QualityAssessment struct {
	OverallScore    int      `json:"overall_score"`
	Brightness      int      `json:"brightness"`
	Contrast        int      `json:"contrast"`
	Sharpness       int      `json:"sharpness"`
	Noise           int      `json:"noise"`
	SkewAngle       float64  `json:"skew_angle"`
	IsAcceptable    bool     `json:"is_acceptable"`
	Recommendations []string `json:"recommendations"`
}

// UnreadableAssessment is returned for empty or undecodable images
func UnreadableAssessment() QualityAssessment {
	return QualityAssessment{
		OverallScore:    0,
		Noise:           100,
		IsAcceptable:    false,
		Recommendations: []string{UnreadableMessage},
	}
}
