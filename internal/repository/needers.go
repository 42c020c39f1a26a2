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

type NeederRepository interface {
	Create(ctx context.Context, needer *entity.Needer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Needer, error)
	List(ctx context.Context) ([]entity.Needer, error)
}

type neederRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewNeederRepository(db *sqlx.DB, logger *slog.Logger) NeederRepository {
	return &neederRepository{db: db, logger: logger}
}

const neederColumns = `id, name, blood_group, phone, latitude, longitude,
	verified, urgency_note, created_at, updated_at`

func (r *neederRepository) Create(ctx context.Context, needer *entity.Needer) error {
	if needer.ID == uuid.Nil {
		needer.ID = uuid.New()
	}
	now := time.Now().UTC()
	needer.CreatedAt = now
	needer.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO needers (`+neederColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		needer.ID, needer.Name, needer.BloodGroup, needer.Phone,
		needer.Latitude, needer.Longitude, needer.Verified,
		needer.UrgencyNote, needer.CreatedAt, needer.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create needer", "blood_group", needer.BloodGroup, "error", err)
		return err
	}
	return nil
}

func (r *neederRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Needer, error) {
	var needer entity.Needer
	err := r.db.GetContext(ctx, &needer,
		`SELECT `+neederColumns+` FROM needers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("needer %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get needer", "needer_id", id, "error", err)
		return nil, err
	}
	return &needer, nil
}

func (r *neederRepository) List(ctx context.Context) ([]entity.Needer, error) {
	var needers []entity.Needer
	err := r.db.SelectContext(ctx, &needers,
		`SELECT `+neederColumns+` FROM needers ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("failed to list needers", "error", err)
		return nil, err
	}
	return needers, nil
}
