package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	response string
	err      error
	lastUser string
}

func (f *fakeGenerator) GenerateStructuredText(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	return f.response, f.err
}

func TestExtractIdentityParsesFencedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n" +
		`{"aadhaarNumber": "2345 1234 5670", "name": "Jane Doe", "dateOfBirth": "15/08/1990", "gender": "female"}` +
		"\n```"}
	e := NewExtractor(gen, nil)

	fields, err := e.ExtractIdentity(context.Background(), "ocr text")
	require.NoError(t, err)
	assert.Equal(t, "234512345670", fields.IDNumber, "separators stripped")
	assert.Equal(t, "Jane Doe", fields.Name)
	assert.Equal(t, "15/08/1990", fields.DateOfBirth)
	assert.Equal(t, "Female", fields.Gender, "gender canonicalized")
	assert.Contains(t, gen.lastUser, "ocr text")
}

func TestExtractIdentityNullFields(t *testing.T) {
	gen := &fakeGenerator{response: `{"aadhaarNumber": "234512345670", "name": null, "gender": "null"}`}
	e := NewExtractor(gen, nil)

	fields, err := e.ExtractIdentity(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "234512345670", fields.IDNumber)
	assert.Empty(t, fields.Name)
	assert.Empty(t, fields.Gender)
}

func TestExtractIdentityMissingRequiredKey(t *testing.T) {
	gen := &fakeGenerator{response: `{"name": "Jane Doe"}`}
	e := NewExtractor(gen, nil)

	_, err := e.ExtractIdentity(context.Background(), "text")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestExtractIdentityNoJSON(t *testing.T) {
	gen := &fakeGenerator{response: "I could not find any identity data in that text."}
	e := NewExtractor(gen, nil)

	_, err := e.ExtractIdentity(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractIdentityTransportError(t *testing.T) {
	wantErr := errors.New("connection refused")
	e := NewExtractor(&fakeGenerator{err: wantErr}, nil)

	_, err := e.ExtractIdentity(context.Background(), "text")
	assert.ErrorIs(t, err, wantErr)
}

func TestExtractReportCoercesFields(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"bloodGroup": "b +",
		"patientName": "John Smith",
		"age": "34 years",
		"gender": "M",
		"testDate": "12/03/2024",
		"hospitalName": "City Hospital"
	}`}
	e := NewExtractor(gen, nil)

	fields, err := e.ExtractReport(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "B+", fields.BloodGroup)
	require.NotNil(t, fields.PatientAge)
	assert.Equal(t, 34, *fields.PatientAge, "digits pulled out of a wordy age")
	assert.Equal(t, "Male", fields.PatientGender)
	assert.Equal(t, "City Hospital", fields.HospitalName)
}

func TestExtractReportNumericAge(t *testing.T) {
	gen := &fakeGenerator{response: `{"bloodGroup": "O-", "age": 29}`}
	e := NewExtractor(gen, nil)

	fields, err := e.ExtractReport(context.Background(), "text")
	require.NoError(t, err)
	require.NotNil(t, fields.PatientAge)
	assert.Equal(t, 29, *fields.PatientAge)
}

func TestExtractReportUnknownGroupDropped(t *testing.T) {
	// A hallucinated group never reaches callers; the empty field triggers the
	// narrow retry upstream.
	gen := &fakeGenerator{response: `{"bloodGroup": "Z+"}`}
	e := NewExtractor(gen, nil)

	fields, err := e.ExtractReport(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, fields.BloodGroup)
}

func TestExtractBloodGroupOnly(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"bare", "AB+", "AB+"},
		{"prose", "The blood group is O negative: O-", "O-"},
		{"spaced", "a b +", "AB+"},
		{"lowercase", "b-", "B-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(&fakeGenerator{response: tt.response}, nil)
			got, err := e.ExtractBloodGroupOnly(context.Background(), "text")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBloodGroupOnlyABBeforeB(t *testing.T) {
	e := NewExtractor(&fakeGenerator{response: "AB+"}, nil)
	got, err := e.ExtractBloodGroupOnly(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "AB+", got, `"AB+" must never be read as "B+"`)
}

func TestExtractBloodGroupOnlyNotFound(t *testing.T) {
	e := NewExtractor(&fakeGenerator{response: "NOT_FOUND"}, nil)
	_, err := e.ExtractBloodGroupOnly(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNotFound)
}
