package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

// uniqueViolation is the Postgres error code raised when two webhook
// deliveries race on the same external reference.
const uniqueViolation = "23505"

var ErrDuplicateReference = errors.New("duplicate_external_reference")

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PaymentRepository interface {
	// Create inserts an immutable payment row. Returns
	// ErrDuplicateReference when the external reference already exists.
	Create(ctx context.Context, p *models.Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByExternalReference(ctx context.Context, ref string) (*models.Payment, error)

	ListAll(ctx context.Context) ([]*models.Payment, error)
	ListUnreconciled(ctx context.Context) ([]*models.Payment, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type paymentRepo struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO payments (
            id, invoice_id, amount, external_reference, payer_phone, paid_at,
            created_at
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW())
    `, p.ID, p.InvoiceID, p.Amount, p.ExternalReference, p.PayerPhone, p.PaidAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, baseSelectPayment()+" WHERE id=$1", id)
	return scanPayment(row)
}

func (r *paymentRepo) GetByExternalReference(ctx context.Context, ref string) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, baseSelectPayment()+" WHERE external_reference=$1", ref)
	return scanPayment(row)
}

func (r *paymentRepo) ListAll(ctx context.Context) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, baseSelectPayment()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *paymentRepo) ListUnreconciled(ctx context.Context) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, baseSelectPayment()+" WHERE invoice_id IS NULL ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

/* ---------- internals ---------- */

func baseSelectPayment() string {
	return `
        SELECT id, invoice_id, amount, external_reference, payer_phone, paid_at,
        created_at
        FROM payments`
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(
		&p.ID, &p.InvoiceID, &p.Amount,
		&p.ExternalReference, &p.PayerPhone, &p.PaidAt,
		&p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func scanPayments(rows pgx.Rows) ([]*models.Payment, error) {
	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
