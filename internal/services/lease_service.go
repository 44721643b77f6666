package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/constants"
	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type LeaseDecision string

const (
	DecisionApprove LeaseDecision = "APPROVE"
	DecisionReject  LeaseDecision = "REJECT"
)

func ParseLeaseDecision(s string) (LeaseDecision, error) {
	switch LeaseDecision(s) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("unknown decision %q: %w", s, utils.ErrValidation)
	}
}

// LeaseService drives a lease from application through approval/rejection to
// termination or expiry. Every state change runs in one transaction together
// with the unit status flip and the notification intent.
type LeaseService struct {
	store     repositories.Store
	occupancy *OccupancyTracker

	// Fallback policy: create a default unit when a property has none.
	autoProvisionUnits bool

	now func() time.Time
}

func NewLeaseService(store repositories.Store, occupancy *OccupancyTracker, autoProvisionUnits bool) *LeaseService {
	return &LeaseService{
		store:              store,
		occupancy:          occupancy,
		autoProvisionUnits: autoProvisionUnits,
		now:                time.Now,
	}
}

// Apply creates a PENDING lease for the first vacant unit of the property.
// When the property has no units at all and auto-provisioning is enabled, a
// default unit priced at the property's listed rent is created first.
func (s *LeaseService) Apply(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.Lease, error) {
	var lease *models.Lease

	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		tenant, err := requireActor(ctx, r, tenantID)
		if err != nil {
			return err
		}
		if res := authorize(tenant, capability{role: models.RoleTenant, owns: true}); !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}
		if tenant.Status != models.UserStatusActive {
			return fmt.Errorf("tenant account not verified: %w", utils.ErrUnauthorized)
		}

		property, err := r.Properties.GetByID(ctx, propertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return fmt.Errorf("property %s: %w", propertyID, utils.ErrNotFound)
		}
		if property.Status != models.PropertyStatusApproved {
			return fmt.Errorf("property %s not approved for listing: %w", propertyID, utils.ErrInvalidState)
		}

		pending, err := r.Leases.HasPendingForTenantOnProperty(ctx, tenantID, propertyID)
		if err != nil {
			return err
		}
		if pending {
			return fmt.Errorf("tenant already has a pending application on this property: %w", utils.ErrConflict)
		}

		unit, err := s.allocateUnit(ctx, r, property)
		if err != nil {
			return err
		}

		lease = &models.Lease{
			ID:         uuid.New(),
			UnitID:     unit.ID,
			TenantID:   tenantID,
			RentAmount: unit.RentAmount,
			Status:     models.LeaseStatusPending,
		}
		if err := r.Leases.Create(ctx, lease); err != nil {
			return err
		}

		msg := fmt.Sprintf("New lease application from %s for unit %s at %s",
			tenant.FullName, unit.UnitNumber, property.Name)
		return emitIntent(ctx, r, property.LandlordID, models.NotifCategoryLeaseApplication, msg)
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Infof("Lease application %s created for property %s", lease.ID, propertyID)
	return lease, nil
}

func (s *LeaseService) allocateUnit(ctx context.Context, r repositories.Repos, property *models.Property) (*models.Unit, error) {
	unit, err := r.Units.FirstVacantByPropertyID(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	if unit != nil {
		return unit, nil
	}

	count, err := r.Units.CountByPropertyID(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 || !s.autoProvisionUnits {
		return nil, fmt.Errorf("no vacant unit on property %s: %w", property.ID, utils.ErrConflict)
	}

	unit = &models.Unit{
		ID:         uuid.New(),
		PropertyID: property.ID,
		UnitNumber: constants.DefaultUnitNumber,
		RentAmount: property.Price,
		Status:     models.UnitStatusVacant,
	}
	unit.RowVersion = 1
	if err := r.Units.Create(ctx, unit); err != nil {
		return nil, err
	}
	utils.Logger.Infof("Auto-provisioned unit %s on property %s", unit.ID, property.ID)
	return unit, nil
}

// Decide approves or rejects a pending application. Only the landlord owning
// the property behind the lease's unit may decide. Concurrent decides on the
// same lease serialize on the lease row; the loser observes a non-pending
// status and fails with InvalidState.
func (s *LeaseService) Decide(ctx context.Context, leaseID, landlordID uuid.UUID, decision LeaseDecision) (*models.Lease, error) {
	var lease *models.Lease

	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		var err error
		lease, err = r.Leases.GetByIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		if lease == nil {
			return fmt.Errorf("lease %s: %w", leaseID, utils.ErrNotFound)
		}

		actor, err := requireActor(ctx, r, landlordID)
		if err != nil {
			return err
		}
		unit, property, err := leaseContext(ctx, r, lease)
		if err != nil {
			return err
		}
		if res := authorize(actor, capability{role: models.RoleLandlord, owns: property.LandlordID == actor.ID}); !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}

		if lease.Status != models.LeaseStatusPending {
			return fmt.Errorf("lease %s is %s, not pending: %w", leaseID, lease.Status, utils.ErrInvalidState)
		}

		expected := lease.RowVersion
		var msg string
		switch decision {
		case DecisionApprove:
			if err := s.occupancy.Reserve(ctx, r, unit.ID); err != nil {
				return err
			}
			start := s.now()
			end := start.AddDate(0, 0, constants.LeaseTermDays)
			lease.Status = models.LeaseStatusActive
			lease.StartDate = &start
			lease.EndDate = &end
			msg = fmt.Sprintf("Your application for unit %s at %s was approved", unit.UnitNumber, property.Name)

		case DecisionReject:
			// A pending application never holds the unit, so there is
			// nothing to release. Another lease may occupy it by now.
			lease.Status = models.LeaseStatusRejected
			msg = fmt.Sprintf("Your application for unit %s at %s was rejected", unit.UnitNumber, property.Name)

		default:
			return fmt.Errorf("unknown decision %q: %w", decision, utils.ErrValidation)
		}

		tag, err := r.Leases.UpdateIfVersion(ctx, lease, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("lease %s: %w", leaseID, utils.ErrRowVersionConflict)
		}

		return emitIntent(ctx, r, lease.TenantID, models.NotifCategoryLeaseDecision, msg)
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Infof("Lease %s decided: %s", leaseID, lease.Status)
	return lease, nil
}

// Terminate moves an active lease to TERMINATED and frees the unit. Allowed
// for the owning landlord, the tenant on the lease, or an admin. Pending
// invoices are left untouched.
func (s *LeaseService) Terminate(ctx context.Context, leaseID, actorID uuid.UUID) (*models.Lease, error) {
	var lease *models.Lease

	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		var err error
		lease, err = r.Leases.GetByIDForUpdate(ctx, leaseID)
		if err != nil {
			return err
		}
		if lease == nil {
			return fmt.Errorf("lease %s: %w", leaseID, utils.ErrNotFound)
		}

		actor, err := requireActor(ctx, r, actorID)
		if err != nil {
			return err
		}
		unit, property, err := leaseContext(ctx, r, lease)
		if err != nil {
			return err
		}
		res := authorize(actor,
			capability{role: models.RoleLandlord, owns: property.LandlordID == actor.ID},
			capability{role: models.RoleTenant, owns: lease.TenantID == actor.ID},
			capability{role: models.RoleAdmin, owns: true},
		)
		if !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}

		if !lease.Status.CanTransitionTo(models.LeaseStatusTerminated) {
			return fmt.Errorf("lease %s is %s, not active: %w", leaseID, lease.Status, utils.ErrInvalidState)
		}

		expected := lease.RowVersion
		lease.Status = models.LeaseStatusTerminated
		tag, err := r.Leases.UpdateIfVersion(ctx, lease, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("lease %s: %w", leaseID, utils.ErrRowVersionConflict)
		}

		if err := s.occupancy.Release(ctx, r, unit.ID); err != nil {
			return err
		}

		msg := fmt.Sprintf("Lease for unit %s at %s was terminated", unit.UnitNumber, property.Name)
		for _, recipient := range []uuid.UUID{lease.TenantID, property.LandlordID} {
			if recipient == actor.ID {
				continue
			}
			if err := emitIntent(ctx, r, recipient, models.NotifCategoryLeaseEnded, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Infof("Lease %s terminated by %s", leaseID, actorID)
	return lease, nil
}

// List returns leases scoped to the actor's role: admins see all, landlords
// see leases on their properties, tenants see their own.
func (s *LeaseService) List(ctx context.Context, actorID uuid.UUID) ([]*models.Lease, error) {
	r := s.store.Repos()
	actor, err := requireActor(ctx, r, actorID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
		return r.Leases.ListAll(ctx)
	case models.RoleLandlord:
		return r.Leases.ListByLandlordID(ctx, actorID)
	case models.RoleTenant:
		return r.Leases.ListByTenantID(ctx, actorID)
	default:
		return nil, fmt.Errorf("role %s may not list leases: %w", actor.Role, utils.ErrUnauthorized)
	}
}

// ExpireLeases sweeps active leases whose term has ended and moves them to
// EXPIRED, freeing their units. Invoked from the scheduler; each lease is
// handled in its own transaction so one failure does not poison the batch.
func (s *LeaseService) ExpireLeases(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := s.store.Repos().Leases.ListActiveEndingBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range candidates {
		leaseID := candidate.ID
		err := s.store.WithTx(ctx, func(r repositories.Repos) error {
			lease, err := r.Leases.GetByIDForUpdate(ctx, leaseID)
			if err != nil {
				return err
			}
			// Re-check under the lock: a concurrent Terminate may have won.
			if lease == nil || lease.Status != models.LeaseStatusActive || lease.EndDate == nil || !lease.EndDate.Before(asOf) {
				return nil
			}

			unit, property, err := leaseContext(ctx, r, lease)
			if err != nil {
				return err
			}

			expected := lease.RowVersion
			lease.Status = models.LeaseStatusExpired
			tag, err := r.Leases.UpdateIfVersion(ctx, lease, expected)
			if err != nil {
				return err
			}
			if tag.RowsAffected() != 1 {
				return fmt.Errorf("lease %s: %w", leaseID, utils.ErrRowVersionConflict)
			}
			if err := s.occupancy.Release(ctx, r, unit.ID); err != nil {
				return err
			}

			msg := fmt.Sprintf("Lease for unit %s at %s has expired", unit.UnitNumber, property.Name)
			for _, recipient := range []uuid.UUID{lease.TenantID, property.LandlordID} {
				if err := emitIntent(ctx, r, recipient, models.NotifCategoryLeaseEnded, msg); err != nil {
					return err
				}
			}
			expired++
			return nil
		})
		if err != nil {
			utils.Logger.WithError(err).Errorf("Failed to expire lease %s", leaseID)
		}
	}
	return expired, nil
}
