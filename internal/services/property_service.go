package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// PropertyService is the catalog side: properties and their units. Simple
// data entry, but it shares the capability checks and the occupancy tracker
// with the workflows so unit status stays centrally enforced.
type PropertyService struct {
	store     repositories.Store
	occupancy *OccupancyTracker
}

func NewPropertyService(store repositories.Store, occupancy *OccupancyTracker) *PropertyService {
	return &PropertyService{store: store, occupancy: occupancy}
}

// Create lists a new property, pending admin approval.
func (s *PropertyService) Create(ctx context.Context, landlordID uuid.UUID, name, address, city string, price float64) (*models.Property, error) {
	if price <= 0 {
		return nil, fmt.Errorf("listed price must be positive: %w", utils.ErrValidation)
	}

	property := &models.Property{
		ID:         uuid.New(),
		LandlordID: landlordID,
		Name:       name,
		Address:    address,
		City:       city,
		Price:      price,
		Status:     models.PropertyStatusPending,
	}

	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		actor, err := requireActor(ctx, r, landlordID)
		if err != nil {
			return err
		}
		if res := authorize(actor, capability{role: models.RoleLandlord, owns: true}); !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}
		if actor.Status != models.UserStatusActive {
			return fmt.Errorf("landlord account not verified: %w", utils.ErrUnauthorized)
		}
		return r.Properties.Create(ctx, property)
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

// Review is the admin approval action on a listed property.
func (s *PropertyService) Review(ctx context.Context, propertyID uuid.UUID, approve bool, actorID uuid.UUID) error {
	return s.store.WithTx(ctx, func(r repositories.Repos) error {
		actor, err := requireActor(ctx, r, actorID)
		if err != nil {
			return err
		}
		if res := authorize(actor, capability{role: models.RoleAdmin, owns: true}); !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}

		property, err := r.Properties.GetByID(ctx, propertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return fmt.Errorf("property %s: %w", propertyID, utils.ErrNotFound)
		}
		if property.Status != models.PropertyStatusPending {
			return fmt.Errorf("property %s already reviewed: %w", propertyID, utils.ErrInvalidState)
		}

		status := models.PropertyStatusApproved
		if !approve {
			status = models.PropertyStatusRejected
		}
		return r.Properties.UpdateStatus(ctx, propertyID, status)
	})
}

func (s *PropertyService) ListForActor(ctx context.Context, actorID uuid.UUID) ([]*models.Property, error) {
	r := s.store.Repos()
	actor, err := requireActor(ctx, r, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleLandlord {
		return r.Properties.ListByLandlordID(ctx, actorID)
	}
	return r.Properties.ListAll(ctx)
}

// AddUnit creates a vacant unit on an owned property.
func (s *PropertyService) AddUnit(ctx context.Context, propertyID uuid.UUID, unitNumber string, rentAmount float64, actorID uuid.UUID) (*models.Unit, error) {
	if rentAmount <= 0 {
		return nil, fmt.Errorf("rent amount must be positive: %w", utils.ErrValidation)
	}

	unit := &models.Unit{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UnitNumber: unitNumber,
		RentAmount: rentAmount,
		Status:     models.UnitStatusVacant,
	}
	unit.RowVersion = 1

	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		actor, err := requireActor(ctx, r, actorID)
		if err != nil {
			return err
		}
		property, err := r.Properties.GetByID(ctx, propertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return fmt.Errorf("property %s: %w", propertyID, utils.ErrNotFound)
		}
		res := authorize(actor,
			capability{role: models.RoleLandlord, owns: property.LandlordID == actor.ID},
			capability{role: models.RoleAdmin, owns: true},
		)
		if !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}
		return r.Units.Create(ctx, unit)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// UpdateUnit edits the data-entry fields of a unit. Status is off limits
// here: only the occupancy tracker writes it.
func (s *PropertyService) UpdateUnit(ctx context.Context, unitID uuid.UUID, unitNumber string, rentAmount float64, actorID uuid.UUID) error {
	return s.store.WithTx(ctx, func(r repositories.Repos) error {
		if err := s.requireUnitOwner(ctx, r, unitID, actorID); err != nil {
			return err
		}
		return r.Units.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
			if unitNumber != "" {
				u.UnitNumber = unitNumber
			}
			if rentAmount > 0 {
				u.RentAmount = rentAmount
			}
			return nil
		})
	})
}

// SetUnitMaintenance toggles a unit in or out of maintenance via the
// occupancy tracker.
func (s *PropertyService) SetUnitMaintenance(ctx context.Context, unitID uuid.UUID, underMaintenance bool, actorID uuid.UUID) error {
	return s.store.WithTx(ctx, func(r repositories.Repos) error {
		if err := s.requireUnitOwner(ctx, r, unitID, actorID); err != nil {
			return err
		}
		if underMaintenance {
			return s.occupancy.SetMaintenance(ctx, r, unitID)
		}
		return s.occupancy.ClearMaintenance(ctx, r, unitID)
	})
}

func (s *PropertyService) ListUnits(ctx context.Context, propertyID uuid.UUID) ([]*models.Unit, error) {
	return s.store.Repos().Units.ListByPropertyID(ctx, propertyID)
}

func (s *PropertyService) requireUnitOwner(ctx context.Context, r repositories.Repos, unitID, actorID uuid.UUID) error {
	actor, err := requireActor(ctx, r, actorID)
	if err != nil {
		return err
	}
	unit, err := r.Units.GetByID(ctx, unitID)
	if err != nil {
		return err
	}
	if unit == nil {
		return fmt.Errorf("unit %s: %w", unitID, utils.ErrNotFound)
	}
	property, err := r.Properties.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return err
	}
	if property == nil {
		return fmt.Errorf("property %s: %w", unit.PropertyID, utils.ErrNotFound)
	}
	res := authorize(actor,
		capability{role: models.RoleLandlord, owns: property.LandlordID == actor.ID},
		capability{role: models.RoleAdmin, owns: true},
	)
	if !res.Allowed {
		return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
	}
	return nil
}
