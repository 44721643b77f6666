package repositories

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DB is the querier surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside or outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Repos bundles one repository per entity, all bound to the same DB handle.
type Repos struct {
	Users         UserRepository
	Properties    PropertyRepository
	Units         UnitRepository
	Leases        LeaseRepository
	Invoices      InvoiceRepository
	Payments      PaymentRepository
	Notifications NotificationRepository
}

func NewRepos(db DB) Repos {
	return Repos{
		Users:         NewUserRepository(db),
		Properties:    NewPropertyRepository(db),
		Units:         NewUnitRepository(db),
		Leases:        NewLeaseRepository(db),
		Invoices:      NewInvoiceRepository(db),
		Payments:      NewPaymentRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Store is the persistence handle injected into workflow services at
// construction time. WithTx runs fn with repositories bound to a single
// transaction: the callback either commits as a whole or rolls back.
type Store interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(Repos) error) error
}

type PgxStore struct {
	pool *pgxpool.Pool
}

func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{pool: pool}
}

func (s *PgxStore) Repos() Repos {
	return NewRepos(s.pool)
}

func (s *PgxStore) WithTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
