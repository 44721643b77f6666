package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

// ApplyForLeaseRequest opens a tenancy application on a property.
type ApplyForLeaseRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
}

// DecideLeaseRequest is the landlord's verdict on a pending application.
type DecideLeaseRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
}

type LeaseResponse struct {
	ID         uuid.UUID              `json:"id"`
	TenantID   uuid.UUID              `json:"tenant_id"`
	UnitID     uuid.UUID              `json:"unit_id"`
	RentAmount float64                `json:"rent_amount"`
	Status     models.LeaseStatusType `json:"status"`
	StartDate  *time.Time             `json:"start_date,omitempty"`
	EndDate    *time.Time             `json:"end_date,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	RowVersion int64                  `json:"row_version"`
}

func NewLeaseResponse(l *models.Lease) LeaseResponse {
	return LeaseResponse{
		ID:         l.ID,
		TenantID:   l.TenantID,
		UnitID:     l.UnitID,
		RentAmount: l.RentAmount,
		Status:     l.Status,
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		CreatedAt:  l.CreatedAt,
		RowVersion: l.RowVersion,
	}
}

func NewLeaseListResponse(leases []*models.Lease) []LeaseResponse {
	out := make([]LeaseResponse, 0, len(leases))
	for _, l := range leases {
		out = append(out, NewLeaseResponse(l))
	}
	return out
}
