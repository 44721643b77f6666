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

type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)

	ListAll(ctx context.Context) ([]*models.Invoice, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Invoice, error)
	ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Invoice, error)
	ListPendingDueBefore(ctx context.Context, asOf time.Time) ([]*models.Invoice, error)

	// OldestPendingByAmountForUpdate locks and returns the pending invoice
	// with the earliest created_at whose amount equals amount exactly, or nil.
	OldestPendingByAmountForUpdate(ctx context.Context, amount float64) (*models.Invoice, error)

	UpdateIfVersion(ctx context.Context, inv *models.Invoice, expected int64) (pgconn.CommandTag, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepository(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO invoices (
            id, lease_id, amount, due_date, status, paid_at,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW(), 1)
    `, inv.ID, inv.LeaseID, inv.Amount, inv.DueDate, inv.Status, inv.PaidAt)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	row := r.db.QueryRow(ctx, baseSelectInvoice()+" WHERE id=$1", id)
	return scanInvoice(row)
}

func (r *invoiceRepo) ListAll(ctx context.Context) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, baseSelectInvoice()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, `
        SELECT i.id, i.lease_id, i.amount, i.due_date, i.status, i.paid_at,
               i.created_at, i.updated_at, i.row_version
        FROM invoices i
        JOIN leases l ON l.id = i.lease_id
        WHERE l.tenant_id = $1
        ORDER BY i.created_at
    `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, `
        SELECT i.id, i.lease_id, i.amount, i.due_date, i.status, i.paid_at,
               i.created_at, i.updated_at, i.row_version
        FROM invoices i
        JOIN leases l ON l.id = i.lease_id
        JOIN units u ON u.id = l.unit_id
        JOIN properties p ON p.id = u.property_id
        WHERE p.landlord_id = $1
        ORDER BY i.created_at
    `, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) ListPendingDueBefore(ctx context.Context, asOf time.Time) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE status=$1 AND due_date < $2 ORDER BY due_date",
		models.InvoiceStatusPending, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) OldestPendingByAmountForUpdate(ctx context.Context, amount float64) (*models.Invoice, error) {
	row := r.db.QueryRow(ctx,
		baseSelectInvoice()+`
        WHERE status=$1 AND amount=$2
        ORDER BY created_at, id
        LIMIT 1
        FOR UPDATE`,
		models.InvoiceStatusPending, amount)
	return scanInvoice(row)
}

func (r *invoiceRepo) UpdateIfVersion(ctx context.Context, inv *models.Invoice, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE invoices
        SET status=$1, paid_at=$2, updated_at=NOW(),
            row_version=row_version+1
        WHERE id=$3 AND row_version=$4
    `, inv.Status, inv.PaidAt, inv.ID, expected)
}

/* ---------- internals ---------- */

func baseSelectInvoice() string {
	return `
        SELECT
            id, lease_id, amount, due_date, status, paid_at,
            created_at, updated_at, row_version
        FROM invoices
    `
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.LeaseID,
		&inv.Amount,
		&inv.DueDate,
		&inv.Status,
		&inv.PaidAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func scanInvoices(rows pgx.Rows) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
