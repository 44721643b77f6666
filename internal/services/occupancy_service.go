package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// OccupancyTracker is the only component allowed to write Unit.status.
// It keeps the invariant: a unit is OCCUPIED iff exactly one lease on it is
// ACTIVE. Callers pass the repositories of their current transaction so the
// status flip commits or rolls back with the lease transition.
type OccupancyTracker struct{}

func NewOccupancyTracker() *OccupancyTracker {
	return &OccupancyTracker{}
}

// Reserve flips a vacant unit to OCCUPIED. Fails with Conflict when the unit
// already holds an active lease and InvalidState when it is under
// maintenance.
func (t *OccupancyTracker) Reserve(ctx context.Context, r repositories.Repos, unitID uuid.UUID) error {
	unit, err := t.getUnit(ctx, r, unitID)
	if err != nil {
		return err
	}

	switch unit.Status {
	case models.UnitStatusOccupied:
		return fmt.Errorf("unit %s already occupied: %w", unitID, utils.ErrConflict)
	case models.UnitStatusUnderMaintenance:
		return fmt.Errorf("unit %s under maintenance: %w", unitID, utils.ErrInvalidState)
	}

	return t.setStatus(ctx, r, unit, models.UnitStatusOccupied)
}

// Release returns an occupied unit to VACANT. Releasing a unit that is not
// occupied is a no-op. Callers own the check that the lease being ended is
// the one occupying the unit.
func (t *OccupancyTracker) Release(ctx context.Context, r repositories.Repos, unitID uuid.UUID) error {
	unit, err := t.getUnit(ctx, r, unitID)
	if err != nil {
		return err
	}
	if unit.Status != models.UnitStatusOccupied {
		return nil
	}
	return t.setStatus(ctx, r, unit, models.UnitStatusVacant)
}

// SetMaintenance takes a vacant unit out of circulation. Occupied units must
// be released first.
func (t *OccupancyTracker) SetMaintenance(ctx context.Context, r repositories.Repos, unitID uuid.UUID) error {
	unit, err := t.getUnit(ctx, r, unitID)
	if err != nil {
		return err
	}
	if unit.Status != models.UnitStatusVacant {
		return fmt.Errorf("unit %s is %s, not vacant: %w", unitID, unit.Status, utils.ErrInvalidState)
	}
	return t.setStatus(ctx, r, unit, models.UnitStatusUnderMaintenance)
}

// ClearMaintenance returns a unit under maintenance to VACANT.
func (t *OccupancyTracker) ClearMaintenance(ctx context.Context, r repositories.Repos, unitID uuid.UUID) error {
	unit, err := t.getUnit(ctx, r, unitID)
	if err != nil {
		return err
	}
	if unit.Status != models.UnitStatusUnderMaintenance {
		return fmt.Errorf("unit %s is %s, not under maintenance: %w", unitID, unit.Status, utils.ErrInvalidState)
	}
	return t.setStatus(ctx, r, unit, models.UnitStatusVacant)
}

func (t *OccupancyTracker) IsVacant(ctx context.Context, r repositories.Repos, unitID uuid.UUID) (bool, error) {
	unit, err := t.getUnit(ctx, r, unitID)
	if err != nil {
		return false, err
	}
	return unit.Status == models.UnitStatusVacant, nil
}

func (t *OccupancyTracker) getUnit(ctx context.Context, r repositories.Repos, unitID uuid.UUID) (*models.Unit, error) {
	unit, err := r.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("unit %s: %w", unitID, utils.ErrNotFound)
	}
	return unit, nil
}

func (t *OccupancyTracker) setStatus(ctx context.Context, r repositories.Repos, unit *models.Unit, status models.UnitStatusType) error {
	expected := unit.RowVersion
	unit.Status = status
	tag, err := r.Units.UpdateIfVersion(ctx, unit, expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("unit %s: %w", unit.ID, utils.ErrRowVersionConflict)
	}
	return nil
}
