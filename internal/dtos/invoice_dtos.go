package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

// CreateInvoiceRequest bills rent against an active lease.
type CreateInvoiceRequest struct {
	LeaseID uuid.UUID `json:"lease_id" validate:"required"`
	Amount  float64   `json:"amount" validate:"required,gt=0"`
	DueDate time.Time `json:"due_date" validate:"required"`
}

type InvoiceResponse struct {
	ID         uuid.UUID                `json:"id"`
	LeaseID    uuid.UUID                `json:"lease_id"`
	Amount     float64                  `json:"amount"`
	DueDate    time.Time                `json:"due_date"`
	Status     models.InvoiceStatusType `json:"status"`
	PaidAt     *time.Time               `json:"paid_at,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	RowVersion int64                    `json:"row_version"`
}

func NewInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:         inv.ID,
		LeaseID:    inv.LeaseID,
		Amount:     inv.Amount,
		DueDate:    inv.DueDate,
		Status:     inv.Status,
		PaidAt:     inv.PaidAt,
		CreatedAt:  inv.CreatedAt,
		RowVersion: inv.RowVersion,
	}
}

func NewInvoiceListResponse(invoices []*models.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, NewInvoiceResponse(inv))
	}
	return out
}
