package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bloodbridge/internal/llm"
)

func intPtr(n int) *int { return &n }

func TestCrossValidateAgreeingDocuments(t *testing.T) {
	identity := &llm.IdentityFields{Name: "Jane Doe", Gender: "Female", Age: intPtr(35)}
	report := &llm.ReportFields{PatientName: "Jane Doe", PatientGender: "Female", PatientAge: intPtr(34)}

	res := CrossValidate(identity, report)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Warnings)
	assert.NotNil(t, res.Warnings, "warnings must serialize as an array, not null")
}

func TestCrossValidateNameContainment(t *testing.T) {
	// Reports drop honorifics and middle names; the first token is enough.
	identity := &llm.IdentityFields{Name: "Jane Elizabeth Doe"}
	report := &llm.ReportFields{PatientName: "Mrs. Jane Doe"}

	assert.True(t, CrossValidate(identity, report).IsValid)
}

func TestCrossValidateNameMismatch(t *testing.T) {
	identity := &llm.IdentityFields{Name: "Jane Doe"}
	report := &llm.ReportFields{PatientName: "Ravi Kumar"}

	res := CrossValidate(identity, report)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "name")
}

func TestCrossValidateGenderMismatch(t *testing.T) {
	identity := &llm.IdentityFields{Gender: "Female"}
	report := &llm.ReportFields{PatientGender: "Male"}

	res := CrossValidate(identity, report)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "gender")
}

func TestCrossValidateAgeTolerance(t *testing.T) {
	identity := &llm.IdentityFields{Age: intPtr(35)}

	assert.True(t, CrossValidate(identity, &llm.ReportFields{PatientAge: intPtr(37)}).IsValid,
		"two years apart is within tolerance")
	assert.False(t, CrossValidate(identity, &llm.ReportFields{PatientAge: intPtr(39)}).IsValid)
	assert.False(t, CrossValidate(identity, &llm.ReportFields{PatientAge: intPtr(31)}).IsValid)
}

func TestCrossValidateSkipsAbsentFields(t *testing.T) {
	// Missing fields on either side are not comparable, not mismatches.
	identity := &llm.IdentityFields{Name: "Jane Doe"}
	report := &llm.ReportFields{PatientGender: "Male", PatientAge: intPtr(50)}

	res := CrossValidate(identity, report)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Warnings)
}

func TestCrossValidateValidityTracksWarnings(t *testing.T) {
	identity := &llm.IdentityFields{Name: "Jane Doe", Gender: "Female"}
	report := &llm.ReportFields{PatientName: "Ravi Kumar", PatientGender: "Male"}

	res := CrossValidate(identity, report)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Warnings, 2)
	assert.Equal(t, res.IsValid, len(res.Warnings) == 0)
}
