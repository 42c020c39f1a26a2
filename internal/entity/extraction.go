package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionRecord is the audit trail for one document extraction: which
// strategy produced the fields, what the validator found, and the raw OCR
// text for later review. SubjectID links to the donor or needer it was
// performed for, when known.
type ExtractionRecord struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	SubjectID    *uuid.UUID `db:"subject_id" json:"subjectId,omitempty"`
	DocumentType string     `db:"document_type" json:"documentType"`
	Method       string     `db:"method" json:"method"`
	Confidence   string     `db:"confidence" json:"confidence"`
	IsValid      bool       `db:"is_valid" json:"isValid"`
	FieldsJSON   string     `db:"fields_json" json:"fieldsJson"`
	IssuesJSON   string     `db:"issues_json" json:"issuesJson"`
	WarningsJSON string     `db:"warnings_json" json:"warningsJson"`
	RawText      string     `db:"raw_text" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
