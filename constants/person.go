package constants

import "strings"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// CanonicalizeGender maps free-form input to one of the Gender values.
func CanonicalizeGender(input string) (Gender, bool) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "MALE", "M":
		return GenderMale, true
	case "FEMALE", "F":
		return GenderFemale, true
	case "OTHER":
		return GenderOther, true
	}
	return "", false
}

// ExtractionMethod records which extractor produced an accepted result.
type ExtractionMethod string

// Stable values (stored in DB and returned over HTTP).
const (
	MethodAI     ExtractionMethod = "AI"     // LLM structured extraction
	MethodOCR    ExtractionMethod = "OCR"    // rule-based parsing of OCR text
	MethodManual ExtractionMethod = "manual" // user-entered, no document
)

// DocumentType identifies which document an extraction ran against.
type DocumentType string

const (
	DocAadhaar     DocumentType = "aadhaar"
	DocBloodReport DocumentType = "blood_report"
)
