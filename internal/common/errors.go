package common

import (
	"errors"
	"fmt"

	"bloodbridge/constants"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("already registered")
	ErrInternal     = errors.New("internal error")
)

// AppError represents application-specific errors.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// UnsupportedFormatError is returned for file extensions the pipeline cannot
// dispatch. Fatal; not retried.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q", e.Ext)
}

// OCRError wraps a recognizer or PDF-parser failure, including total OCR
// failure (empty text). Fatal for the attempt; the caller may re-upload.
type OCRError struct {
	Path string
	Err  error
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("ocr failed for %s: %v", e.Path, e.Err)
}

func (e *OCRError) Unwrap() error { return e.Err }

// ExtractionFailedError is the terminal failure after both the LLM and the
// rule-based strategies were tried and neither produced a usable result.
type ExtractionFailedError struct {
	Document constants.DocumentType
	// Sample carries the head of the raw OCR text so the caller can show the
	// user why extraction failed.
	Sample string
}

func (e *ExtractionFailedError) Error() string {
	return fmt.Sprintf("could not extract %s data using AI or OCR; ensure the document image is clear", e.Document)
}

// ValidationError carries the blocking issues from a document validation so
// the HTTP layer can return actionable feedback.
type ValidationError struct {
	Document constants.DocumentType
	Issues   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %v", e.Document, e.Issues)
}
