package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error

	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error)

	// MarkRead only flips rows owned by the given recipient.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error

	// ListUndispatchedForUpdate locks a batch of pending intents with
	// SKIP LOCKED so concurrent relay passes never double-deliver within
	// one transaction scope.
	ListUndispatchedForUpdate(ctx context.Context, limit int) ([]*models.Notification, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO notifications (
            id, recipient_user_id, message, category, is_read, dispatched_at,
            created_at
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW())
    `, n.ID, n.RecipientUserID, n.Message, n.Category, n.IsRead, n.DispatchedAt)
	return err
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx,
		baseSelectNotification()+" WHERE recipient_user_id=$1 ORDER BY created_at DESC LIMIT $2",
		recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE id=$1 AND recipient_user_id=$2`,
		id, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepo) ListUndispatchedForUpdate(ctx context.Context, limit int) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx,
		baseSelectNotification()+`
        WHERE dispatched_at IS NULL
        ORDER BY created_at
        LIMIT $1
        FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepo) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET dispatched_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectNotification() string {
	return `
        SELECT id, recipient_user_id, message, category, is_read, dispatched_at,
        created_at
        FROM notifications`
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(
		&n.ID, &n.RecipientUserID, &n.Message, &n.Category,
		&n.IsRead, &n.DispatchedAt,
		&n.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func scanNotifications(rows pgx.Rows) ([]*models.Notification, error) {
	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
