package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
	"bloodbridge/internal/llm"
	"bloodbridge/internal/ocr"
)

type stubSource struct {
	text string
	err  error
}

func (s stubSource) Extract(_ context.Context, _ string) (ocr.Result, error) {
	return ocr.Result{Text: s.text, Method: "image-ocr", Format: constants.IMAGE}, s.err
}

type stubModel struct {
	identity    *llm.IdentityFields
	identityErr error
	report      *llm.ReportFields
	reportErr   error
	bloodGroup  string
	bgErr       error
}

func (m stubModel) ExtractIdentity(_ context.Context, _ string) (*llm.IdentityFields, error) {
	return m.identity, m.identityErr
}

func (m stubModel) ExtractReport(_ context.Context, _ string) (*llm.ReportFields, error) {
	return m.report, m.reportErr
}

func (m stubModel) ExtractBloodGroupOnly(_ context.Context, _ string) (string, error) {
	return m.bloodGroup, m.bgErr
}

const idCardText = "GOVERNMENT OF INDIA\nJane Doe\nDOB: 15/08/1990\n2345 1234 5670\nFEMALE"

func TestHybridIdentityModelWins(t *testing.T) {
	model := stubModel{identity: &llm.IdentityFields{
		IDNumber:    "234512345670",
		Name:        "Jane Doe",
		DateOfBirth: "15/08/1990",
	}}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: idCardText}, model, nil)

	result, err := h.ExtractIdentity(context.Background(), "card.jpg")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodAI, result.Method)
	assert.Equal(t, "high", result.Confidence)
	assert.Equal(t, "234512345670", result.Fields.IDNumber)
	require.NotNil(t, result.Fields.Age, "age derived from date of birth")
}

func TestHybridIdentityFallsBackToRules(t *testing.T) {
	// Model output without a name is unusable; the rules read the same text.
	model := stubModel{identity: &llm.IdentityFields{IDNumber: "234512345670"}}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: idCardText}, model, nil)

	result, err := h.ExtractIdentity(context.Background(), "card.jpg")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodOCR, result.Method)
	assert.Equal(t, "234512345670", result.Fields.IDNumber)
	assert.Equal(t, "Jane Doe", result.Fields.Name)
}

func TestHybridIdentityModelErrorFallsBack(t *testing.T) {
	model := stubModel{identityErr: errors.New("rate limited")}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: idCardText}, model, nil)

	result, err := h.ExtractIdentity(context.Background(), "card.jpg")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodOCR, result.Method)
}

func TestHybridIdentityModelDisabled(t *testing.T) {
	// With UseAI off the model must never be consulted; a panicking nil model
	// would catch a regression here.
	h := NewHybrid(Config{UseAI: false}, stubSource{text: idCardText}, nil, nil)

	result, err := h.ExtractIdentity(context.Background(), "card.jpg")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodOCR, result.Method)
}

func TestHybridIdentityBothStrategiesFail(t *testing.T) {
	model := stubModel{identityErr: errors.New("down")}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: "illegible smudge"}, model, nil)

	_, err := h.ExtractIdentity(context.Background(), "card.jpg")
	var failed *common.ExtractionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, constants.DocAadhaar, failed.Document)
	assert.Equal(t, "illegible smudge", failed.Sample)
}

func TestHybridIdentityOCRErrorPropagates(t *testing.T) {
	srcErr := &common.OCRError{Path: "card.jpg", Err: errors.New("no text could be extracted")}
	h := NewHybrid(Config{}, stubSource{err: srcErr}, nil, nil)

	_, err := h.ExtractIdentity(context.Background(), "card.jpg")
	var ocrErr *common.OCRError
	assert.ErrorAs(t, err, &ocrErr)
}

const reportText = "City Hospital\nPatient Name: Jane Doe\nAge: 35\nBlood Group: B+\nHemoglobin 13.2 test report"

func TestHybridReportModelWins(t *testing.T) {
	model := stubModel{report: &llm.ReportFields{BloodGroup: "B+", PatientName: "Jane Doe"}}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: reportText}, model, nil)

	result, err := h.ExtractReport(context.Background(), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodAI, result.Method)
	assert.Equal(t, "B+", result.Fields.BloodGroup)
}

func TestHybridReportBloodGroupRetry(t *testing.T) {
	// Full extraction misses the group; the narrow second ask finds it.
	model := stubModel{
		report:     &llm.ReportFields{PatientName: "Jane Doe"},
		bloodGroup: "AB+",
	}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: reportText}, model, nil)

	result, err := h.ExtractReport(context.Background(), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodAI, result.Method)
	assert.Equal(t, "AB+", result.Fields.BloodGroup)
}

func TestHybridReportFallsBackToRules(t *testing.T) {
	model := stubModel{reportErr: errors.New("down"), bgErr: errors.New("down")}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: reportText}, model, nil)

	result, err := h.ExtractReport(context.Background(), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodOCR, result.Method)
	assert.Equal(t, "B+", result.Fields.BloodGroup)
	assert.Equal(t, "Jane Doe", result.Fields.PatientName)
}

func TestHybridReportBothStrategiesFail(t *testing.T) {
	model := stubModel{reportErr: errors.New("down"), bgErr: errors.New("down")}
	h := NewHybrid(Config{UseAI: true}, stubSource{text: "nothing useful"}, model, nil)

	_, err := h.ExtractReport(context.Background(), "report.pdf")
	var failed *common.ExtractionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, constants.DocBloodReport, failed.Document)
}

func TestHybridOCRConfidenceFromValidation(t *testing.T) {
	// Rule extractions inherit the validator's score instead of blanket trust.
	h := NewHybrid(Config{}, stubSource{text: reportText}, nil, nil)

	result, err := h.ExtractReport(context.Background(), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, constants.MethodOCR, result.Method)
	assert.Contains(t, []string{"high", "medium", "low"}, result.Confidence)
	assert.Equal(t, "high", result.Confidence)
}