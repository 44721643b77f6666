package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// VersionedEntity is implemented by models that embed models.Versioned and
// persist a row_version column.
type VersionedEntity interface {
	comparable
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
}

// writeIfVersion is the version-guarded UPDATE of a concrete repository.
// RowsAffected 0 means a concurrent writer bumped the row first.
type writeIfVersion[T VersionedEntity] func(ctx context.Context, entity T, expected int64) (pgconn.CommandTag, error)

const maxVersionRetries = 3

// VersionedRepo bundles the SELECT-by-id statement and row scanner shared
// by repositories over versioned tables, and runs the reload-mutate-write
// loop for them.
type VersionedRepo[T VersionedEntity] struct {
	db         DB
	selectByID string
	scan       func(pgx.Row) (T, error)
}

func newVersionedRepo[T VersionedEntity](db DB, selectByID string, scan func(pgx.Row) (T, error)) *VersionedRepo[T] {
	return &VersionedRepo[T]{db: db, selectByID: selectByID, scan: scan}
}

func (r *VersionedRepo[T]) GetByID(ctx context.Context, id string) (T, error) {
	return r.scan(r.db.QueryRow(ctx, r.selectByID, id))
}

// UpdateWithRetry reloads the entity, applies mutate, and writes through the
// repository's version guard. A lost race reloads and tries again; after
// maxVersionRetries conflicts the contention is the caller's problem.
func (r *VersionedRepo[T]) UpdateWithRetry(ctx context.Context, id string, mutate func(T) error, write writeIfVersion[T]) error {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		entity, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		var none T
		if entity == none {
			return pgx.ErrNoRows
		}

		expected := entity.GetRowVersion()
		if err := mutate(entity); err != nil {
			return err
		}

		tag, err := write(ctx, entity, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
	}
	return fmt.Errorf("gave up updating %s after %d version conflicts", id, maxVersionRetries)
}
