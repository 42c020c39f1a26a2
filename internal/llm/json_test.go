package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here is the result: {"a":1}. Anything else?`, `{"a":1}`},
		{"nested objects", `{"a":{"b":{"c":3}}}`, `{"a":{"b":{"c":3}}}`},
		{"braces inside strings", `{"a":"}{","b":2}`, `{"a":"}{","b":2}`},
		{"escaped quote in string", `{"a":"say \"hi\" {now}"}`, `{"a":"say \"hi\" {now}"}`},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestExtractJSONObjectNone(t *testing.T) {
	for _, in := range []string{"", "no json here", "NOT_FOUND", `{"unterminated":`} {
		_, ok := ExtractJSONObject(in)
		assert.False(t, ok, "input %q", in)
	}
}
