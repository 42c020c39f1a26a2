package docparse

// ValidationResult is the outcome of validating one extracted document.
// Issues block acceptance; warnings only reduce confidence. Confidence is a
// 0..100 score derived from the issue and warning counts.
type ValidationResult struct {
	IsValid    bool     `json:"isValid"`
	Issues     []string `json:"issues"`
	Warnings   []string `json:"warnings"`
	Confidence int      `json:"confidence"`
}

// finalize computes validity and confidence from the accumulated findings.
// issuePenalty differs per document type.
func finalize(issues, warnings []string, issuePenalty int) ValidationResult {
	conf := 100 - issuePenalty*len(issues) - 5*len(warnings)
	if conf < 0 {
		conf = 0
	}
	return ValidationResult{
		IsValid:    len(issues) == 0,
		Issues:     issues,
		Warnings:   warnings,
		Confidence: conf,
	}
}

// ConfidenceLabel buckets a numeric confidence for API responses.
func ConfidenceLabel(confidence int) string {
	switch {
	case confidence >= 70:
		return "high"
	case confidence >= 40:
		return "medium"
	default:
		return "low"
	}
}
