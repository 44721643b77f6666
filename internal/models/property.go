package models

import (
	"time"

	"github.com/google/uuid"
)

type PropertyStatusType string

const (
	PropertyStatusPending  PropertyStatusType = "PENDING"
	PropertyStatusApproved PropertyStatusType = "APPROVED"
	PropertyStatusRejected PropertyStatusType = "REJECTED"
)

type Property struct {
	ID         uuid.UUID          `json:"id"`
	LandlordID uuid.UUID          `json:"landlord_id"`
	Name       string             `json:"name"`
	Address    string             `json:"address"`
	City       string             `json:"city"`
	Price      float64            `json:"price"`
	Status     PropertyStatusType `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Property) GetID() string {
	return p.ID.String()
}
