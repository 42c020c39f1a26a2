package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"tabs and runs", "a\t\tb   c", "a b c"},
		{"blank lines collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"box noise stripped", "a\n-----\nb", "a\n\nb"},
		{"trailing spaces", "line one   \nline two", "line one\nline two"},
		{"outer whitespace", "\n\n  hello  \n\n", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanTextKeepsLineStructure(t *testing.T) {
	// Document parsers depend on lines surviving: hospital names are read off
	// the first line, names off the line above the DOB.
	in := "City Hospital\nPatient Name: Jane Doe\nBlood Group: B+"
	assert.Equal(t, in, CleanText(in))
}
