package docparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 234512345670 and 987654321096 carry correct Verhoeff check digits;
// 234512345671 is the same number with the check digit off by one.
const (
	validID       = "234512345670"
	badChecksumID = "234512345671"
)

func TestVerhoeffValid(t *testing.T) {
	assert.True(t, verhoeffValid(validID))
	assert.True(t, verhoeffValid("987654321096"))
	assert.False(t, verhoeffValid(badChecksumID))
	assert.False(t, verhoeffValid(""))
	assert.False(t, verhoeffValid("12a4"))
}

func TestValidateIDNumber(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		strict       bool
		wantIssues   int
		wantWarnings int
	}{
		{"valid with spaces", "2345 1234 5670", true, 0, 0},
		{"checksum failure is warning only in strict", badChecksumID, true, 0, 1},
		{"checksum not run when lenient", badChecksumID, false, 0, 0},
		{"wrong length", "12345", false, 1, 0},
		{"repeated digits", "111111111111", false, 1, 0},
		{"repeated digits strict", "999999999999", true, 1, 0},
		{"sequential", "123456789012", false, 1, 0},
		{"sequential zero-led", "012345678901", false, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, warnings := ValidateIDNumber(tt.in, tt.strict)
			assert.Len(t, issues, tt.wantIssues)
			assert.Len(t, warnings, tt.wantWarnings)
		})
	}
}

func TestExtractIDNumberPrefersCleanCandidate(t *testing.T) {
	text := "ref 1111 1111 1111 id 2345 1234 5670 end"
	assert.Equal(t, validID, ExtractIDNumber(text))
}

func TestExtractIDNumberFallsBackToFlaggedCandidate(t *testing.T) {
	// A sequential number is still extracted when it is all there is; the
	// document validator reports it.
	assert.Equal(t, "123456789012", ExtractIDNumber("number: 1234 5678 9012"))
}

func TestExtractIDNumberNoCandidate(t *testing.T) {
	assert.Empty(t, ExtractIDNumber("no digits here"))
}

func TestExtractIDNumberIgnoresDateGluedDigits(t *testing.T) {
	// The DOB year must not merge with digits on the next line into a bogus
	// twelve-digit candidate that outranks the real number.
	assert.Equal(t, validID, ExtractIDNumber("DOB: 15/08/1990\n2345 1234 5670"))
	assert.Equal(t, "123456789012", ExtractIDNumber("DOB: 15/08/1990\n1234 5678 9012"))
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"above dob", "Jane Doe\nDOB: 15/08/1990", "Jane Doe"},
		{"label", "Name: Ravi Kumar\nsomething", "Ravi Kumar"},
		{"relation marker", "Ravi Kumar S/O Mohan Kumar", "Ravi Kumar"},
		{"stop words skipped", "GOVERNMENT OF INDIA\nAsha Devi\nFEMALE", "Asha Devi"},
		{"too short rejected", "Al\nDOB: 01/01/2000", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.text))
		})
	}
}

func TestExtractDateOfBirth(t *testing.T) {
	assert.Equal(t, "15/08/1990", ExtractDateOfBirth("DOB: 15/08/1990"))
	assert.Equal(t, "05/08/1990", ExtractDateOfBirth("D.O.B: 5-8-90"))
	assert.Equal(t, "05/08/2010", ExtractDateOfBirth("Date of Birth: 5.8.10"))
	assert.Equal(t, "01/01/1985", ExtractDateOfBirth("Year of Birth: 1985"))
	assert.Equal(t, "15/08/1990", ExtractDateOfBirth("noise 15/08/1990 noise"))
	assert.Empty(t, ExtractDateOfBirth("no date"))
}

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	age := AgeFromDOB("15/08/1990", now)
	require.NotNil(t, age)
	assert.Equal(t, 35, *age)

	// Birthday later in the year has not happened yet.
	age = AgeFromDOB("15/10/1990", now)
	require.NotNil(t, age)
	assert.Equal(t, 34, *age)

	assert.Nil(t, AgeFromDOB("15/08/1890", now), "age 135 is out of range")
	assert.Nil(t, AgeFromDOB("15/08/2025", now), "age 0 is out of range")
	assert.Nil(t, AgeFromDOB("32/01/1990", now))
	assert.Nil(t, AgeFromDOB("garbage", now))
}

func TestExtractGender(t *testing.T) {
	assert.Equal(t, "Female", ExtractGender("name\nFEMALE\n1234"))
	assert.Equal(t, "Male", ExtractGender("name\nMALE\n1234"))
	assert.Empty(t, ExtractGender("no gender line"))
}

func TestParseIdentityEndToEnd(t *testing.T) {
	text := "GOVERNMENT OF INDIA\nJane Doe\nDOB: 15/08/1990\n1234 5678 9012\nFEMALE"

	fields := ParseIdentity(text)
	assert.Equal(t, "123456789012", fields.IDNumber)
	assert.Equal(t, "Jane Doe", fields.Name)
	assert.Equal(t, "15/08/1990", fields.DateOfBirth)
	assert.Equal(t, "Female", fields.Gender)
	require.NotNil(t, fields.Age)
	assert.InDelta(t, 35, *fields.Age, 1)
}

func TestValidateIdentityDocument(t *testing.T) {
	text := "GOVERNMENT OF INDIA\nJane Doe\nDOB: 15/08/1990\n2345 1234 5670\nFEMALE"
	fields := ParseIdentity(text)

	result := ValidateIdentityDocument(text, fields, false)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
	assert.Greater(t, result.Confidence, 50)
}

func TestValidateIdentityDocumentSequentialAlwaysIssue(t *testing.T) {
	text := "GOVERNMENT OF INDIA\nJane Doe\nDOB: 15/08/1990\n1234 5678 9012\nFEMALE"
	fields := ParseIdentity(text)

	for _, strict := range []bool{false, true} {
		result := ValidateIdentityDocument(text, fields, strict)
		assert.False(t, result.IsValid, "strict=%v", strict)
		assert.NotEmpty(t, result.Issues)
	}
}

func TestValidateIdentityDocumentChecksumDowngrade(t *testing.T) {
	text := "GOVERNMENT OF INDIA\nJane Doe\nDOB: 15/08/1990\n2345 1234 5671\nFEMALE"
	fields := ParseIdentity(text)
	require.Equal(t, badChecksumID, fields.IDNumber)

	strict := ValidateIdentityDocument(text, fields, true)
	assert.True(t, strict.IsValid, "checksum failure must stay a warning, even strict")
	assert.NotEmpty(t, strict.Warnings)

	// Lenient mode does not run the checksum at all.
	lenient := ValidateIdentityDocument(text, fields, false)
	assert.True(t, lenient.IsValid)
	for _, w := range lenient.Warnings {
		assert.NotContains(t, w, "checksum")
	}
}

func TestValidateIdentityDocumentMissingNumber(t *testing.T) {
	text := "GOVERNMENT OF INDIA\nJane Doe\nDOB: 15/08/1990\nFEMALE"
	fields := ParseIdentity(text)

	result := ValidateIdentityDocument(text, fields, false)
	assert.False(t, result.IsValid, "a missing ID number is always an issue")
}

func TestValidateIdentityDocumentStrictEscalation(t *testing.T) {
	// No identity keywords, no name: warnings when lenient, issues when strict.
	text := "2345 1234 5670\nDOB: 15/08/1990"
	fields := ParseIdentity(text)
	fields.Name = ""

	lenient := ValidateIdentityDocument(text, fields, false)
	assert.True(t, lenient.IsValid)
	assert.NotEmpty(t, lenient.Warnings)

	strict := ValidateIdentityDocument(text, fields, true)
	assert.False(t, strict.IsValid)
}

func TestConfidenceLabel(t *testing.T) {
	assert.Equal(t, "high", ConfidenceLabel(85))
	assert.Equal(t, "medium", ConfidenceLabel(55))
	assert.Equal(t, "low", ConfidenceLabel(20))
}
