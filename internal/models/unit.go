package models

import (
	"time"

	"github.com/google/uuid"
)

type UnitStatusType string

const (
	UnitStatusVacant           UnitStatusType = "VACANT"
	UnitStatusOccupied         UnitStatusType = "OCCUPIED"
	UnitStatusUnderMaintenance UnitStatusType = "UNDER_MAINTENANCE"
)

// Unit represents a rentable sub-division of a property.
//
// Status is written only by the occupancy tracker: OCCUPIED iff exactly one
// lease on the unit is ACTIVE.
type Unit struct {
	Versioned

	ID         uuid.UUID      `json:"id"`
	PropertyID uuid.UUID      `json:"property_id"`
	UnitNumber string         `json:"unit_number"`
	RentAmount float64        `json:"rent_amount"`
	Status     UnitStatusType `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *Unit) GetID() string {
	return u.ID.String()
}
