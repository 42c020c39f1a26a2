package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bloodbridge/constants"
	"bloodbridge/internal/common"
	"bloodbridge/internal/docparse"
	"bloodbridge/internal/entity"
	"bloodbridge/internal/extract"
)

// handleExtractIDCard extracts identity fields from one uploaded document
// without registering anyone. The extraction is still recorded for audit.
func (s *Server) handleExtractIDCard(c *gin.Context) {
	path, cleanup, err := s.saveUpload(c, "document")
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer cleanup()

	result, err := s.hybrid.ExtractIdentity(c.Request.Context(), path)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recordExtraction(c.Request.Context(), nil, constants.DocAadhaar,
		string(result.Method), result.Confidence, result.Validation, result.Fields, result.RawText)

	c.JSON(http.StatusOK, gin.H{
		"fields":       result.Fields,
		"method":       result.Method,
		"confidence":   result.Confidence,
		"validation":   result.Validation,
		"extractionId": recID(rec),
	})
}

// handleExtractBloodReport extracts report fields from one uploaded document.
func (s *Server) handleExtractBloodReport(c *gin.Context) {
	path, cleanup, err := s.saveUpload(c, "document")
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer cleanup()

	result, err := s.hybrid.ExtractReport(c.Request.Context(), path)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recordExtraction(c.Request.Context(), nil, constants.DocBloodReport,
		string(result.Method), result.Confidence, result.Validation, result.Fields, result.RawText)

	c.JSON(http.StatusOK, gin.H{
		"fields":       result.Fields,
		"method":       result.Method,
		"confidence":   result.Confidence,
		"validation":   result.Validation,
		"extractionId": recID(rec),
	})
}

// handlePreview runs extraction over both documents at once so the client can
// show the user what registration would store, including cross-document
// warnings. Nothing is persisted except the audit records.
func (s *Server) handlePreview(c *gin.Context) {
	identity, idErr := s.previewIdentity(c)
	report, reportErr := s.previewReport(c)

	if identity == nil && report == nil {
		switch {
		case idErr != nil:
			s.respondError(c, idErr)
		case reportErr != nil:
			s.respondError(c, reportErr)
		default:
			s.respondError(c, fmt.Errorf("%w: upload idCard or bloodReport", common.ErrInvalidInput))
		}
		return
	}

	resp := gin.H{}
	if identity != nil {
		resp["idCard"] = gin.H{
			"fields":     identity.Fields,
			"method":     identity.Method,
			"confidence": identity.Confidence,
			"validation": identity.Validation,
		}
	} else if idErr != nil {
		resp["idCardError"] = idErr.Error()
	}
	if report != nil {
		resp["bloodReport"] = gin.H{
			"fields":     report.Fields,
			"method":     report.Method,
			"confidence": report.Confidence,
			"validation": report.Validation,
		}
	} else if reportErr != nil {
		resp["bloodReportError"] = reportErr.Error()
	}

	if identity != nil && report != nil {
		resp["crossValidation"] = extract.CrossValidate(&identity.Fields, &report.Fields)
	}

	c.JSON(http.StatusOK, resp)
}

// previewIdentity extracts the optional idCard upload. A missing field is
// (nil, nil).
func (s *Server) previewIdentity(c *gin.Context) (*extract.IdentityResult, error) {
	file, err := c.FormFile("idCard")
	if err != nil {
		return nil, nil
	}
	path, cleanup, err := s.saveFileHeader(c, file)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := s.hybrid.ExtractIdentity(c.Request.Context(), path)
	if err != nil {
		return nil, err
	}
	s.recordExtraction(c.Request.Context(), nil, constants.DocAadhaar,
		string(result.Method), result.Confidence, result.Validation, result.Fields, result.RawText)
	return result, nil
}

// previewReport extracts the optional bloodReport upload.
func (s *Server) previewReport(c *gin.Context) (*extract.ReportResult, error) {
	file, err := c.FormFile("bloodReport")
	if err != nil {
		return nil, nil
	}
	path, cleanup, err := s.saveFileHeader(c, file)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := s.hybrid.ExtractReport(c.Request.Context(), path)
	if err != nil {
		return nil, err
	}
	s.recordExtraction(c.Request.Context(), nil, constants.DocBloodReport,
		string(result.Method), result.Confidence, result.Validation, result.Fields, result.RawText)
	return result, nil
}

// recordExtraction persists the audit record. Failures are logged and
// swallowed; extraction output is already in hand and losing the audit row
// must not fail the request.
func (s *Server) recordExtraction(ctx context.Context, subjectID *uuid.UUID, docType constants.DocumentType,
	method, confidence string, validation docparse.ValidationResult, fields any, rawText string) *entity.ExtractionRecord {

	fieldsJSON, _ := json.Marshal(fields)
	issuesJSON, _ := json.Marshal(validation.Issues)
	warningsJSON, _ := json.Marshal(validation.Warnings)

	rec := &entity.ExtractionRecord{
		SubjectID:    subjectID,
		DocumentType: string(docType),
		Method:       method,
		Confidence:   confidence,
		IsValid:      validation.IsValid,
		FieldsJSON:   string(fieldsJSON),
		IssuesJSON:   string(issuesJSON),
		WarningsJSON: string(warningsJSON),
		RawText:      rawText,
	}
	if err := s.extractions.Create(ctx, rec); err != nil {
		s.logger.Warn("extraction.audit_write_failed", "document_type", docType, "error", err)
		return nil
	}
	return rec
}

func recID(rec *entity.ExtractionRecord) any {
	if rec == nil {
		return nil
	}
	return rec.ID
}
