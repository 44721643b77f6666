package models

import (
	"time"

	"github.com/google/uuid"
)

type LeaseStatusType string

const (
	LeaseStatusPending    LeaseStatusType = "PENDING"
	LeaseStatusActive     LeaseStatusType = "ACTIVE"
	LeaseStatusRejected   LeaseStatusType = "REJECTED"
	LeaseStatusTerminated LeaseStatusType = "TERMINATED"
	LeaseStatusExpired    LeaseStatusType = "EXPIRED"
)

// leaseTransitions is the single source of truth for the lease state machine:
// PENDING -> {ACTIVE, REJECTED}; ACTIVE -> {TERMINATED, EXPIRED}.
// REJECTED, TERMINATED and EXPIRED are terminal.
var leaseTransitions = map[LeaseStatusType][]LeaseStatusType{
	LeaseStatusPending: {LeaseStatusActive, LeaseStatusRejected},
	LeaseStatusActive:  {LeaseStatusTerminated, LeaseStatusExpired},
}

// CanTransitionTo reports whether the lease state machine allows moving from
// s to next.
func (s LeaseStatusType) CanTransitionTo(next LeaseStatusType) bool {
	for _, allowed := range leaseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Lease binds one unit to one tenant for a fixed term.
type Lease struct {
	Versioned

	ID         uuid.UUID       `json:"id"`
	UnitID     uuid.UUID       `json:"unit_id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	RentAmount float64         `json:"rent_amount"`
	Status     LeaseStatusType `json:"status"`

	// Set when the landlord approves the application.
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lease) GetID() string {
	return l.ID.String()
}
