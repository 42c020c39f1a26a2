package llm

import "context"

// IdentityFields is the normalized shape we want from an ID-card extraction.
// Extraction is best-effort: empty strings and nil Age mean "not found".
type IdentityFields struct {
	IDNumber    string `json:"aadhaarNumber"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"` // DD/MM/YYYY
	Age         *int   `json:"age,omitempty"`
	Gender      string `json:"gender"` // Male/Female/Other
}

// ReportFields is the normalized shape we want from a blood-test report.
type ReportFields struct {
	BloodGroup    string `json:"bloodGroup"` // one of the 8 canonical ABO/Rh values
	PatientName   string `json:"patientName"`
	PatientAge    *int   `json:"patientAge,omitempty"`
	PatientGender string `json:"patientGender"`
	TestDate      string `json:"testDate"`
	HospitalName  string `json:"hospitalName"`
	Phone         string `json:"phone"` // 10-digit Indian mobile number
}

// TextGenerator abstracts the chat-completion provider so extraction logic
// never depends on a concrete API. Implementations return the raw completion
// text for a system+user prompt pair.
type TextGenerator interface {
	GenerateStructuredText(ctx context.Context, system, user string) (string, error)
}
