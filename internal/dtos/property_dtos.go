package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

type CreatePropertyRequest struct {
	Name    string  `json:"name" validate:"required,min=1"`
	Address string  `json:"address" validate:"required,min=1"`
	City    string  `json:"city" validate:"required,min=1"`
	Price   float64 `json:"price" validate:"required,gt=0"`
}

// ReviewPropertyRequest is the admin approval verdict on a listing.
type ReviewPropertyRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
}

type AddUnitRequest struct {
	UnitNumber string  `json:"unit_number" validate:"required,min=1"`
	RentAmount float64 `json:"rent_amount" validate:"required,gt=0"`
}

type UpdateUnitRequest struct {
	UnitNumber *string  `json:"unit_number,omitempty" validate:"omitempty,min=1"`
	RentAmount *float64 `json:"rent_amount,omitempty" validate:"omitempty,gt=0"`
}

type SetUnitMaintenanceRequest struct {
	UnderMaintenance bool `json:"under_maintenance"`
}

type PropertyResponse struct {
	ID         uuid.UUID                 `json:"id"`
	LandlordID uuid.UUID                 `json:"landlord_id"`
	Name       string                    `json:"name"`
	Address    string                    `json:"address"`
	City       string                    `json:"city"`
	Price      float64                   `json:"price"`
	Status     models.PropertyStatusType `json:"status"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func NewPropertyResponse(p *models.Property) PropertyResponse {
	return PropertyResponse{
		ID:         p.ID,
		LandlordID: p.LandlordID,
		Name:       p.Name,
		Address:    p.Address,
		City:       p.City,
		Price:      p.Price,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
	}
}

func NewPropertyListResponse(properties []*models.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, NewPropertyResponse(p))
	}
	return out
}

type UnitResponse struct {
	ID         uuid.UUID             `json:"id"`
	PropertyID uuid.UUID             `json:"property_id"`
	UnitNumber string                `json:"unit_number"`
	RentAmount float64               `json:"rent_amount"`
	Status     models.UnitStatusType `json:"status"`
	RowVersion int64                 `json:"row_version"`
}

func NewUnitResponse(u *models.Unit) UnitResponse {
	return UnitResponse{
		ID:         u.ID,
		PropertyID: u.PropertyID,
		UnitNumber: u.UnitNumber,
		RentAmount: u.RentAmount,
		Status:     u.Status,
		RowVersion: u.RowVersion,
	}
}

func NewUnitListResponse(units []*models.Unit) []UnitResponse {
	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, NewUnitResponse(u))
	}
	return out
}
