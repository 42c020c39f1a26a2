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

type DonorRepository interface {
	Create(ctx context.Context, donor *entity.Donor) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Donor, error)
	GetByIDNumber(ctx context.Context, idNumber string) (*entity.Donor, error)
	List(ctx context.Context) ([]entity.Donor, error)
	ListActive(ctx context.Context) ([]entity.Donor, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type donorRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewDonorRepository(db *sqlx.DB, logger *slog.Logger) DonorRepository {
	return &donorRepository{db: db, logger: logger}
}

const donorColumns = `id, name, id_number, blood_group, age, gender, phone,
	latitude, longitude, verified, active, created_at, updated_at`

func (r *donorRepository) Create(ctx context.Context, donor *entity.Donor) error {
	if donor.ID == uuid.Nil {
		donor.ID = uuid.New()
	}
	now := time.Now().UTC()
	donor.CreatedAt = now
	donor.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO donors (`+donorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		donor.ID, donor.Name, donor.IDNumber, donor.BloodGroup, donor.Age,
		donor.Gender, donor.Phone, donor.Latitude, donor.Longitude,
		donor.Verified, donor.Active, donor.CreatedAt, donor.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create donor", "id_number_suffix", suffix(donor.IDNumber), "error", err)
		return err
	}
	return nil
}

func (r *donorRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Donor, error) {
	var donor entity.Donor
	err := r.db.GetContext(ctx, &donor,
		`SELECT `+donorColumns+` FROM donors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("donor %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get donor", "donor_id", id, "error", err)
		return nil, err
	}
	return &donor, nil
}

func (r *donorRepository) GetByIDNumber(ctx context.Context, idNumber string) (*entity.Donor, error) {
	var donor entity.Donor
	err := r.db.GetContext(ctx, &donor,
		`SELECT `+donorColumns+` FROM donors WHERE id_number = $1`, idNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get donor by id number", "id_number_suffix", suffix(idNumber), "error", err)
		return nil, err
	}
	return &donor, nil
}

func (r *donorRepository) List(ctx context.Context) ([]entity.Donor, error) {
	var donors []entity.Donor
	err := r.db.SelectContext(ctx, &donors,
		`SELECT `+donorColumns+` FROM donors ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("failed to list donors", "error", err)
		return nil, err
	}
	return donors, nil
}

func (r *donorRepository) ListActive(ctx context.Context) ([]entity.Donor, error) {
	var donors []entity.Donor
	err := r.db.SelectContext(ctx, &donors,
		`SELECT `+donorColumns+` FROM donors WHERE active ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("failed to list active donors", "error", err)
		return nil, err
	}
	return donors, nil
}

func (r *donorRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE donors SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("failed to update donor active flag", "donor_id", id, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("donor %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// suffix keeps full ID numbers out of logs.
func suffix(idNumber string) string {
	if len(idNumber) <= 4 {
		return idNumber
	}
	return idNumber[len(idNumber)-4:]
}
