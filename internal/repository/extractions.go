package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bloodbridge/internal/common"
	"bloodbridge/internal/entity"
)

type ExtractionRepository interface {
	Create(ctx context.Context, rec *entity.ExtractionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionRecord, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]entity.ExtractionRecord, error)
}

type extractionRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewExtractionRepository(db *sqlx.DB, logger *slog.Logger) ExtractionRepository {
	return &extractionRepository{db: db, logger: logger}
}

const extractionColumns = `id, subject_id, document_type, method, confidence,
	is_valid, fields_json, issues_json, warnings_json, raw_text, created_at`

func (r *extractionRepository) Create(ctx context.Context, rec *entity.ExtractionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	subject := uuid.NullUUID{}
	if rec.SubjectID != nil {
		subject = uuid.NullUUID{UUID: *rec.SubjectID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO extractions (`+extractionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, subject, rec.DocumentType, rec.Method, rec.Confidence,
		rec.IsValid, rec.FieldsJSON, rec.IssuesJSON, rec.WarningsJSON,
		rec.RawText, rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create extraction record", "document_type", rec.DocumentType, "error", err)
		return err
	}
	return nil
}

func (r *extractionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionRecord, error) {
	var row extractionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+extractionColumns+` FROM extractions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extraction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get extraction record", "extraction_id", id, "error", err)
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *extractionRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]entity.ExtractionRecord, error) {
	var rows []extractionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+extractionColumns+` FROM extractions WHERE subject_id = $1 ORDER BY created_at DESC`,
		subjectID)
	if err != nil {
		r.logger.Error("failed to list extraction records", "subject_id", subjectID, "error", err)
		return nil, err
	}
	out := make([]entity.ExtractionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toEntity())
	}
	return out, nil
}

// extractionRow exists because subject_id is nullable.
type extractionRow struct {
	ID           uuid.UUID     `db:"id"`
	SubjectID    uuid.NullUUID `db:"subject_id"`
	DocumentType string        `db:"document_type"`
	Method       string        `db:"method"`
	Confidence   string        `db:"confidence"`
	IsValid      bool          `db:"is_valid"`
	FieldsJSON   string        `db:"fields_json"`
	IssuesJSON   string        `db:"issues_json"`
	WarningsJSON string        `db:"warnings_json"`
	RawText      string        `db:"raw_text"`
	CreatedAt    time.Time     `db:"created_at"`
}

func (row *extractionRow) toEntity() *entity.ExtractionRecord {
	rec := &entity.ExtractionRecord{
		ID:           row.ID,
		DocumentType: row.DocumentType,
		Method:       row.Method,
		Confidence:   row.Confidence,
		IsValid:      row.IsValid,
		FieldsJSON:   row.FieldsJSON,
		IssuesJSON:   row.IssuesJSON,
		WarningsJSON: row.WarningsJSON,
		RawText:      row.RawText,
		CreatedAt:    row.CreatedAt,
	}
	if row.SubjectID.Valid {
		id := row.SubjectID.UUID
		rec.SubjectID = &id
	}
	return rec
}
