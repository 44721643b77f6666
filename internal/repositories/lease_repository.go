package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type LeaseRepository interface {
	Create(ctx context.Context, l *models.Lease) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	// GetByIDForUpdate takes a row lock so concurrent Decide/Terminate
	// calls on the same lease are serialized by the database.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lease, error)

	ListAll(ctx context.Context) ([]*models.Lease, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error)
	ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Lease, error)
	ListActiveEndingBefore(ctx context.Context, asOf time.Time) ([]*models.Lease, error)

	HasPendingForTenantOnProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (bool, error)
	CountActiveByUnitID(ctx context.Context, unitID uuid.UUID) (int, error)

	UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type leaseRepo struct {
	db DB
}

func NewLeaseRepository(db DB) LeaseRepository {
	return &leaseRepo{db: db}
}

func (r *leaseRepo) Create(ctx context.Context, l *models.Lease) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO leases (
            id, unit_id, tenant_id, rent_amount, status,
            start_date, end_date,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7, NOW(), NOW(), 1)
    `, l.ID, l.UnitID, l.TenantID, l.RentAmount, l.Status, l.StartDate, l.EndDate)
	return err
}

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	row := r.db.QueryRow(ctx, baseSelectLease()+" WHERE id=$1", id)
	return scanLease(row)
}

func (r *leaseRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	row := r.db.QueryRow(ctx, baseSelectLease()+" WHERE id=$1 FOR UPDATE", id)
	return scanLease(row)
}

func (r *leaseRepo) ListAll(ctx context.Context) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, baseSelectLease()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (r *leaseRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, baseSelectLease()+" WHERE tenant_id=$1 ORDER BY created_at", tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (r *leaseRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, `
        SELECT l.id, l.unit_id, l.tenant_id, l.rent_amount, l.status,
               l.start_date, l.end_date,
               l.created_at, l.updated_at, l.row_version
        FROM leases l
        JOIN units u ON u.id = l.unit_id
        JOIN properties p ON p.id = u.property_id
        WHERE p.landlord_id = $1
        ORDER BY l.created_at
    `, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (r *leaseRepo) ListActiveEndingBefore(ctx context.Context, asOf time.Time) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE status=$1 AND end_date < $2 ORDER BY end_date",
		models.LeaseStatusActive, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (r *leaseRepo) HasPendingForTenantOnProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (bool, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM leases l
        JOIN units u ON u.id = l.unit_id
        WHERE l.tenant_id = $1 AND u.property_id = $2 AND l.status = $3
    `, tenantID, propertyID, models.LeaseStatusPending).Scan(&n)
	return n > 0, err
}

func (r *leaseRepo) CountActiveByUnitID(ctx context.Context, unitID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM leases WHERE unit_id=$1 AND status=$2`,
		unitID, models.LeaseStatusActive).Scan(&n)
	return n, err
}

func (r *leaseRepo) UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE leases
        SET status=$1, start_date=$2, end_date=$3, rent_amount=$4, updated_at=NOW(),
            row_version=row_version+1
        WHERE id=$5 AND row_version=$6
    `, l.Status, l.StartDate, l.EndDate, l.RentAmount, l.ID, expected)
}

/* ---------- internals ---------- */

func baseSelectLease() string {
	return `
        SELECT
            id, unit_id, tenant_id, rent_amount, status,
            start_date, end_date,
            created_at, updated_at, row_version
        FROM leases
    `
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	err := row.Scan(
		&l.ID,
		&l.UnitID,
		&l.TenantID,
		&l.RentAmount,
		&l.Status,
		&l.StartDate,
		&l.EndDate,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func scanLeases(rows pgx.Rows) ([]*models.Lease, error) {
	var out []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
