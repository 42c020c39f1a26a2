package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// nullableString admits string or explicit null; models are told to use null
// for missing fields.
func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableNumeric() map[string]any {
	return map[string]any{"type": []string{"string", "number", "null"}}
}

// BuildIdentityJSONSchema returns the schema (draft 2020-12 subset) the
// identity extraction must satisfy. Required keys must be present; their
// values may still be null, which the caller treats as an unusable result.
func BuildIdentityJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"aadhaarNumber": nullableString(),
			"name":          nullableString(),
			"dateOfBirth":   nullableString(),
			"gender":        nullableString(),
			"age":           nullableNumeric(),
		},
		"required": []string{"aadhaarNumber", "name"},
	}
}

// BuildReportJSONSchema returns the schema for blood-report extraction.
func BuildReportJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"bloodGroup":   nullableString(),
			"patientName":  nullableString(),
			"age":          nullableNumeric(),
			"gender":       nullableString(),
			"testDate":     nullableString(),
			"hospitalName": nullableString(),
			"phone":        nullableString(),
		},
		"required": []string{"bloodGroup"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
