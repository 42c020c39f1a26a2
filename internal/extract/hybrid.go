package extract

import (
	"context"
	"log/slog"
	"time"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
	"bloodbridge/internal/docparse"
	"bloodbridge/internal/llm"
	"bloodbridge/internal/ocr"
)

// TextSource produces raw text from a document file. *ocr.Extractor is the
// production implementation.
type TextSource interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// ModelExtractor is the model-backed strategy. *llm.Extractor is the
// production implementation.
type ModelExtractor interface {
	ExtractIdentity(ctx context.Context, text string) (*llm.IdentityFields, error)
	ExtractReport(ctx context.Context, text string) (*llm.ReportFields, error)
	ExtractBloodGroupOnly(ctx context.Context, text string) (string, error)
}

// Config controls strategy selection. UseAI gates the model strategy
// entirely; Strict escalates soft validation findings to blocking issues.
type Config struct {
	UseAI  bool
	Strict bool
}

// Hybrid runs extraction as model-first with a rule-based fallback. OCR runs
// exactly once per document and both strategies read the same text.
type Hybrid struct {
	cfg    Config
	source TextSource
	model  ModelExtractor
	logger *slog.Logger
}

func NewHybrid(cfg Config, source TextSource, model ModelExtractor, logger *slog.Logger) *Hybrid {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hybrid{cfg: cfg, source: source, model: model, logger: logger}
}

// IdentityResult carries the selected fields plus provenance and validation.
type IdentityResult struct {
	Fields     llm.IdentityFields         `json:"fields"`
	Method     constants.ExtractionMethod `json:"method"`
	Confidence string                     `json:"confidence"`
	Validation docparse.ValidationResult  `json:"validation"`
	RawText    string                     `json:"-"`
}

// ReportResult carries the selected report fields plus provenance and
// validation.
type ReportResult struct {
	Fields     llm.ReportFields           `json:"fields"`
	Method     constants.ExtractionMethod `json:"method"`
	Confidence string                     `json:"confidence"`
	Validation docparse.ValidationResult  `json:"validation"`
	RawText    string                     `json:"-"`
}

// ExtractIdentity runs the identity pipeline for one file. A result is usable
// only when it has both an ID number and a name; anything less falls through
// to the next strategy.
func (h *Hybrid) ExtractIdentity(ctx context.Context, path string) (*IdentityResult, error) {
	ocrResult, err := h.source.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	text := ocrResult.Text

	if h.cfg.UseAI && h.model != nil {
		fields, err := h.model.ExtractIdentity(ctx, text)
		if err == nil && fields.IDNumber != "" && fields.Name != "" {
			h.completeIdentity(fields)
			h.logger.Info("extract.identity.selected", "method", constants.MethodAI)
			return h.identityResult(text, fields, constants.MethodAI), nil
		}
		h.logger.Info("extract.identity.model_unusable", "error", err)
	}

	fields := docparse.ParseIdentity(text)
	if fields.IDNumber != "" && fields.Name != "" {
		h.logger.Info("extract.identity.selected", "method", constants.MethodOCR)
		return h.identityResult(text, fields, constants.MethodOCR), nil
	}

	return nil, &common.ExtractionFailedError{
		Document: constants.DocAadhaar,
		Sample:   sample(text),
	}
}

// completeIdentity fills fields the model left out but the rules can derive.
func (h *Hybrid) completeIdentity(fields *llm.IdentityFields) {
	if fields.Age == nil && fields.DateOfBirth != "" {
		fields.Age = docparse.AgeFromDOB(fields.DateOfBirth, time.Now())
	}
}

func (h *Hybrid) identityResult(text string, fields *llm.IdentityFields, method constants.ExtractionMethod) *IdentityResult {
	validation := docparse.ValidateIdentityDocument(text, fields, h.cfg.Strict)
	return &IdentityResult{
		Fields:     *fields,
		Method:     method,
		Confidence: confidenceFor(method, validation),
		Validation: validation,
		RawText:    text,
	}
}

// ExtractReport runs the report pipeline for one file. A result is usable
// only when it has a blood group. The model strategy gets a second, narrower
// attempt that asks for the blood group alone before the rules take over.
func (h *Hybrid) ExtractReport(ctx context.Context, path string) (*ReportResult, error) {
	ocrResult, err := h.source.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	text := ocrResult.Text

	if h.cfg.UseAI && h.model != nil {
		fields, err := h.model.ExtractReport(ctx, text)
		if err != nil {
			fields = &llm.ReportFields{}
		}
		if fields.BloodGroup == "" {
			if bg, bgErr := h.model.ExtractBloodGroupOnly(ctx, text); bgErr == nil {
				fields.BloodGroup = bg
			}
		}
		if fields.BloodGroup != "" {
			h.logger.Info("extract.report.selected", "method", constants.MethodAI, "blood_group", fields.BloodGroup)
			return h.reportResult(text, fields, constants.MethodAI), nil
		}
		h.logger.Info("extract.report.model_unusable", "error", err)
	}

	fields := docparse.ParseReport(text)
	if fields.BloodGroup != "" {
		h.logger.Info("extract.report.selected", "method", constants.MethodOCR, "blood_group", fields.BloodGroup)
		return h.reportResult(text, fields, constants.MethodOCR), nil
	}

	return nil, &common.ExtractionFailedError{
		Document: constants.DocBloodReport,
		Sample:   sample(text),
	}
}

func (h *Hybrid) reportResult(text string, fields *llm.ReportFields, method constants.ExtractionMethod) *ReportResult {
	validation := docparse.ValidateReportDocument(text, fields, h.cfg.Strict)
	return &ReportResult{
		Fields:     *fields,
		Method:     method,
		Confidence: confidenceFor(method, validation),
		Validation: validation,
		RawText:    text,
	}
}

// confidenceFor labels provenance: model extractions are trusted outright,
// rule extractions inherit the validator's numeric score.
func confidenceFor(method constants.ExtractionMethod, v docparse.ValidationResult) string {
	if method == constants.MethodAI {
		return "high"
	}
	return docparse.ConfidenceLabel(v.Confidence)
}

const sampleLen = 120

func sample(text string) string {
	if len(text) <= sampleLen {
		return text
	}
	return text[:sampleLen]
}
