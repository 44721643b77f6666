package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment records a settled mobile-money transaction. Rows are written once
// by the reconciler and never updated.
//
// InvoiceID is nil for unreconciled payments kept for manual review.
type Payment struct {
	ID                uuid.UUID  `json:"id"`
	InvoiceID         *uuid.UUID `json:"invoice_id,omitempty"`
	Amount            float64    `json:"amount"`
	ExternalReference string     `json:"external_reference"`
	PayerPhone        string     `json:"payer_phone"`
	PaidAt            time.Time  `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Payment) GetID() string {
	return p.ID.String()
}

// Reconciled reports whether the payment was matched to an invoice.
func (p *Payment) Reconciled() bool {
	return p.InvoiceID != nil
}
