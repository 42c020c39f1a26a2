package extract

import (
	"strings"

	"bloodbridge/internal/llm"
)

// Age on the two documents can legitimately differ: the ID card ages in real
// time while the report is a snapshot.
const ageToleranceYears = 2

// CrossValidationResult reports whether the two documents agree. Warnings is
// never nil so the JSON form is always an array.
type CrossValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
}

// CrossValidate compares an identity extraction against a report extraction
// for the same person. Findings are warnings only; OCR noise makes hard
// rejection here worse than letting a human review. Fields absent on either
// side are skipped.
func CrossValidate(identity *llm.IdentityFields, report *llm.ReportFields) CrossValidationResult {
	warnings := []string{}

	if identity.Name != "" && report.PatientName != "" && !namesMatch(identity.Name, report.PatientName) {
		warnings = append(warnings, "name differs between ID card and blood report")
	}

	if identity.Gender != "" && report.PatientGender != "" &&
		!strings.EqualFold(identity.Gender, report.PatientGender) {
		warnings = append(warnings, "gender differs between ID card and blood report")
	}

	if identity.Age != nil && report.PatientAge != nil {
		diff := *identity.Age - *report.PatientAge
		if diff < 0 {
			diff = -diff
		}
		if diff > ageToleranceYears {
			warnings = append(warnings, "age differs between ID card and blood report by more than 2 years")
		}
	}

	return CrossValidationResult{IsValid: len(warnings) == 0, Warnings: warnings}
}

// namesMatch is deliberately loose: OCR drops initials and honorifics, so two
// names agree when either full name contains the other's first token.
func namesMatch(a, b string) bool {
	al, bl := strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if al == bl {
		return true
	}
	af, bf := strings.Fields(al), strings.Fields(bl)
	if len(af) == 0 || len(bf) == 0 {
		return false
	}
	return strings.Contains(bl, af[0]) || strings.Contains(al, bf[0])
}
