package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatusType string

const (
	InvoiceStatusPending InvoiceStatusType = "PENDING"
	InvoiceStatusPaid    InvoiceStatusType = "PAID"
	InvoiceStatusOverdue InvoiceStatusType = "OVERDUE"
)

var invoiceTransitions = map[InvoiceStatusType][]InvoiceStatusType{
	InvoiceStatusPending: {InvoiceStatusPaid, InvoiceStatusOverdue},
	// An overdue invoice can still be settled.
	InvoiceStatusOverdue: {InvoiceStatusPaid},
}

func (s InvoiceStatusType) CanTransitionTo(next InvoiceStatusType) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Invoice is a billing record for rent owed against an active lease.
type Invoice struct {
	Versioned

	ID       uuid.UUID         `json:"id"`
	LeaseID  uuid.UUID         `json:"lease_id"`
	Amount   float64           `json:"amount"`
	DueDate  time.Time         `json:"due_date"`
	Status   InvoiceStatusType `json:"status"`
	PaidAt   *time.Time        `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invoice) GetID() string {
	return i.ID.String()
}
