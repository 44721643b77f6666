package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationCategoryType string

const (
	NotifCategoryLeaseApplication NotificationCategoryType = "LEASE_APPLICATION"
	NotifCategoryLeaseDecision    NotificationCategoryType = "LEASE_DECISION"
	NotifCategoryLeaseEnded       NotificationCategoryType = "LEASE_ENDED"
	NotifCategoryPaymentReceived  NotificationCategoryType = "PAYMENT_RECEIVED"
)

// Notification is an intent produced by the core: recipient, message,
// category. Rows with a nil DispatchedAt are pending hand-off to the
// external emitter; the outbox relay delivers them at-least-once.
type Notification struct {
	ID              uuid.UUID                `json:"id"`
	RecipientUserID uuid.UUID                `json:"recipient_user_id"`
	Message         string                   `json:"message"`
	Category        NotificationCategoryType `json:"category"`
	IsRead          bool                     `json:"is_read"`
	DispatchedAt    *time.Time               `json:"dispatched_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) GetID() string {
	return n.ID.String()
}
