package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"bloodbridge/constants"
)

// Strategy-internal failures. The hybrid selector treats any of these as
// "LLM unusable, try the next strategy"; they are never surfaced to callers.
var (
	ErrNoJSON         = errors.New("no JSON object in model response")
	ErrSchemaMismatch = errors.New("model response does not match schema")
	ErrNotFound       = errors.New("model reported value not found")
)

const systemPrompt = "You are a strict medical document analyzer. Always return clean JSON only."

// Extractor turns raw OCR text into structured fields using a chat-completion
// model. All entry points are best-effort: an error means "this strategy
// produced nothing usable", not a pipeline failure.
type Extractor struct {
	gen    TextGenerator
	logger *slog.Logger
}

func NewExtractor(gen TextGenerator, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, logger: logger}
}

const identityPromptTemplate = `Extract Aadhaar information from this text.

Text:
%s

Return JSON like:
{
  "aadhaarNumber": "12 digits",
  "name": "Full name",
  "dateOfBirth": "DD/MM/YYYY",
  "gender": "Male/Female/Other"
}

Rules:
- Aadhaar numbers may contain spaces or hyphens; strip them before returning.
- dateOfBirth must be DD/MM/YYYY. If only a year of birth is printed, return "01/01/YYYY".
- If any field is missing, use null.
JSON only:`

// ExtractIdentity asks the model for structured ID-card fields.
func (e *Extractor) ExtractIdentity(ctx context.Context, text string) (*IdentityFields, error) {
	start := time.Now()
	out, err := e.gen.GenerateStructuredText(ctx, systemPrompt, fmt.Sprintf(identityPromptTemplate, clip(text, 6000)))
	if err != nil {
		e.logger.Warn("llm.identity.transport_error", "error", err)
		return nil, err
	}

	raw, ok := ExtractJSONObject(out)
	if !ok {
		e.logger.Warn("llm.identity.no_json", "response_bytes", len(out))
		return nil, ErrNoJSON
	}
	if err := ValidateJSONAgainstSchema(BuildIdentityJSONSchema(), raw); err != nil {
		e.logger.Warn("llm.identity.schema_mismatch", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	fields := &IdentityFields{
		IDNumber:    stripNonDigits(stringField(m, "aadhaarNumber")),
		Name:        stringField(m, "name"),
		DateOfBirth: stringField(m, "dateOfBirth"),
		Age:         intField(m, "age"),
	}
	if g, ok := constants.CanonicalizeGender(stringField(m, "gender")); ok {
		fields.Gender = string(g)
	}

	e.logger.Info("llm.identity.ok",
		"has_number", fields.IDNumber != "",
		"has_name", fields.Name != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

const reportPromptTemplate = `Extract blood report information in JSON.

Text:
%s

Return:
{
  "bloodGroup": "A+/A-/B+/B-/O+/O-/AB+/AB-",
  "patientName": "Full name",
  "age": "Number only",
  "gender": "Male/Female/Other",
  "testDate": "DD/MM/YYYY",
  "hospitalName": "Hospital or lab name",
  "phone": "10-digit contact number"
}

If not found, return null fields.
Only JSON:`

// ExtractReport asks the model for structured blood-report fields.
func (e *Extractor) ExtractReport(ctx context.Context, text string) (*ReportFields, error) {
	start := time.Now()
	out, err := e.gen.GenerateStructuredText(ctx, systemPrompt, fmt.Sprintf(reportPromptTemplate, clip(text, 6000)))
	if err != nil {
		e.logger.Warn("llm.report.transport_error", "error", err)
		return nil, err
	}

	raw, ok := ExtractJSONObject(out)
	if !ok {
		e.logger.Warn("llm.report.no_json", "response_bytes", len(out))
		return nil, ErrNoJSON
	}
	if err := ValidateJSONAgainstSchema(BuildReportJSONSchema(), raw); err != nil {
		e.logger.Warn("llm.report.schema_mismatch", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	fields := &ReportFields{
		PatientName:  stringField(m, "patientName"),
		PatientAge:   intField(m, "age"),
		TestDate:     stringField(m, "testDate"),
		HospitalName: stringField(m, "hospitalName"),
		Phone:        stringField(m, "phone"),
	}
	if bg, ok := constants.CanonicalizeBloodGroup(stringField(m, "bloodGroup")); ok {
		fields.BloodGroup = string(bg)
	}
	if g, ok := constants.CanonicalizeGender(stringField(m, "gender")); ok {
		fields.PatientGender = string(g)
	}

	e.logger.Info("llm.report.ok",
		"has_blood_group", fields.BloodGroup != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

const bloodGroupPromptTemplate = `Extract only the blood group from the text below.

Text:
%s

Return only one of:
A+, A-, B+, B-, O+, O-, AB+, AB-
If not found, return "NOT_FOUND".

Answer:`

// ExtractBloodGroupOnly is the report-retry path: a restricted eight-value
// vocabulary with substring acceptance. AB groups are checked before single
// letters so "AB+" is never misread as "B+".
func (e *Extractor) ExtractBloodGroupOnly(ctx context.Context, text string) (string, error) {
	out, err := e.gen.GenerateStructuredText(ctx, systemPrompt, fmt.Sprintf(bloodGroupPromptTemplate, clip(text, 6000)))
	if err != nil {
		e.logger.Warn("llm.bloodgroup.transport_error", "error", err)
		return "", err
	}

	cleaned := strings.ToUpper(strings.Join(strings.Fields(out), ""))
	for _, bg := range []string{"AB+", "AB-", "A+", "A-", "B+", "B-", "O+", "O-"} {
		if strings.Contains(cleaned, bg) {
			e.logger.Info("llm.bloodgroup.ok", "blood_group", bg)
			return bg, nil
		}
	}
	return "", ErrNotFound
}

// stringField returns a trimmed string value, treating null, "null" and empty
// as absent.
func stringField(m map[string]any, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	s := strings.TrimSpace(v)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

// intField coerces a numeric field that models return as number or string.
// A coercion failure yields nil for that field only, never a whole-result
// failure.
func intField(m map[string]any, key string) *int {
	switch v := m[key].(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		digits := stripNonDigits(v)
		if digits == "" {
			return nil
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n…(truncated)"
}
