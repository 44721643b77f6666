package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// InvoiceService creates rent invoices against active leases and runs the
// overdue sweep.
type InvoiceService struct {
	store repositories.Store
	now   func() time.Time
}

func NewInvoiceService(store repositories.Store) *InvoiceService {
	return &InvoiceService{store: store, now: time.Now}
}

// Create issues a PENDING invoice against an active lease. Only the landlord
// owning the property behind the lease (or an admin) may invoice.
func (s *InvoiceService) Create(ctx context.Context, leaseID uuid.UUID, amount float64, dueDate time.Time, actorID uuid.UUID) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invoice amount must be positive: %w", utils.ErrValidation)
	}

	var invoice *models.Invoice
	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		// Lock the lease so invoice creation serializes with Terminate.
		lease, err := r.Leases.GetByIDForUpdate(ctx, leaseID)
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
		_, property, err := leaseContext(ctx, r, lease)
		if err != nil {
			return err
		}
		res := authorize(actor,
			capability{role: models.RoleLandlord, owns: property.LandlordID == actor.ID},
			capability{role: models.RoleAdmin, owns: true},
		)
		if !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}

		if lease.Status != models.LeaseStatusActive {
			return fmt.Errorf("lease %s is %s, not active: %w", leaseID, lease.Status, utils.ErrInvalidState)
		}

		invoice = &models.Invoice{
			ID:      uuid.New(),
			LeaseID: leaseID,
			Amount:  amount,
			DueDate: dueDate,
			Status:  models.InvoiceStatusPending,
		}
		invoice.RowVersion = 1
		return r.Invoices.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Infof("Invoice %s created for lease %s", invoice.ID, leaseID)
	return invoice, nil
}

// MarkOverdue is the pure transition: a pending invoice past its due date
// becomes OVERDUE. It mutates the invoice in memory and reports whether a
// transition happened.
func MarkOverdue(inv *models.Invoice, asOf time.Time) bool {
	if inv.Status != models.InvoiceStatusPending || !asOf.After(inv.DueDate) {
		return false
	}
	inv.Status = models.InvoiceStatusOverdue
	return true
}

// SweepOverdue applies MarkOverdue to every pending invoice past due. Run
// from the scheduler.
func (s *InvoiceService) SweepOverdue(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := s.store.Repos().Invoices.ListPendingDueBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		inv := candidate
		err := s.store.WithTx(ctx, func(r repositories.Repos) error {
			expected := inv.RowVersion
			if !MarkOverdue(inv, asOf) {
				return nil
			}
			tag, err := r.Invoices.UpdateIfVersion(ctx, inv, expected)
			if err != nil {
				return err
			}
			// A concurrent payment won the race; leave the invoice alone.
			if tag.RowsAffected() != 1 {
				return nil
			}
			marked++
			return nil
		})
		if err != nil {
			utils.Logger.WithError(err).Errorf("Failed to mark invoice %s overdue", inv.ID)
		}
	}
	return marked, nil
}

// ListForActor returns invoices scoped to the actor's role.
func (s *InvoiceService) ListForActor(ctx context.Context, actorID uuid.UUID) ([]*models.Invoice, error) {
	r := s.store.Repos()
	actor, err := requireActor(ctx, r, actorID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
		return r.Invoices.ListAll(ctx)
	case models.RoleLandlord:
		return r.Invoices.ListByLandlordID(ctx, actorID)
	case models.RoleTenant:
		return r.Invoices.ListByTenantID(ctx, actorID)
	default:
		return nil, fmt.Errorf("role %s may not list invoices: %w", actor.Role, utils.ErrUnauthorized)
	}
}
