package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	ListByPropertyID(ctx context.Context, propID uuid.UUID) ([]*models.Unit, error)
	FirstVacantByPropertyID(ctx context.Context, propID uuid.UUID) (*models.Unit, error)
	CountByPropertyID(ctx context.Context, propID uuid.UUID) (int, error)

	UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	*VersionedRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	r := &unitRepo{db: db}
	r.VersionedRepo = newVersionedRepo(db, baseSelectUnit()+" WHERE id=$1", scanUnit)
	return r
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, property_id, unit_number, rent_amount, status,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5, NOW(), NOW(), 1)
	`, u.ID, u.PropertyID, u.UnitNumber, u.RentAmount, u.Status)
	return err
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.VersionedRepo.GetByID(ctx, id.String())
}

func (r *unitRepo) ListByPropertyID(ctx context.Context, propID uuid.UUID) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, baseSelectUnit()+" WHERE property_id=$1 ORDER BY unit_number", propID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUnits(rows)
}

func (r *unitRepo) FirstVacantByPropertyID(ctx context.Context, propID uuid.UUID) (*models.Unit, error) {
	row := r.db.QueryRow(ctx,
		baseSelectUnit()+" WHERE property_id=$1 AND status=$2 ORDER BY unit_number LIMIT 1",
		propID, models.UnitStatusVacant)
	return scanUnit(row)
}

func (r *unitRepo) CountByPropertyID(ctx context.Context, propID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM units WHERE property_id=$1`, propID).Scan(&n)
	return n, err
}

/* ---------- update ---------- */

func (r *unitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE units
		SET unit_number=$1, rent_amount=$2, status=$3, updated_at=NOW(),
		    row_version=row_version+1
		WHERE id=$4 AND row_version=$5
	`, u.UnitNumber, u.RentAmount, u.Status, u.ID, expected)
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return r.VersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

/* ---------- internals ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, property_id, unit_number, rent_amount, status,
		created_at, updated_at, row_version
		FROM units`
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(
		&u.ID, &u.PropertyID, &u.UnitNumber, &u.RentAmount, &u.Status,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func scanUnits(rows pgx.Rows) ([]*models.Unit, error) {
	var out []*models.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
