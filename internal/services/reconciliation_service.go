package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// ReconcileInput is the reconciliation contract with the mobile-money
// gateway: the settled amount, the receipt number acting as natural unique
// key, and the payer's phone number.
type ReconcileInput struct {
	Amount            float64
	ExternalReference string
	PayerPhone        string
	PaidAt            time.Time
}

type ReconcileResult struct {
	Payment *models.Payment
	// Invoice is nil when the payment could not be matched and was kept
	// for manual reconciliation.
	Invoice *models.Invoice
	// Duplicate is true when the reference was already processed; Payment
	// then carries the prior result.
	Duplicate bool
}

// ReconciliationService matches inbound payments to pending invoices.
//
// Matching policy, stated explicitly: the oldest PENDING invoice whose amount
// exactly equals the paid amount wins. Amount-only matching cannot
// distinguish two tenants owing the same rent, so anything short of an exact
// single match is recorded unreconciled rather than guessed at.
type ReconciliationService struct {
	store repositories.Store
	now   func() time.Time
}

func NewReconciliationService(store repositories.Store) *ReconciliationService {
	return &ReconciliationService{store: store, now: time.Now}
}

func (s *ReconciliationService) Reconcile(ctx context.Context, in ReconcileInput) (*ReconcileResult, error) {
	if in.ExternalReference == "" {
		return nil, fmt.Errorf("external reference is required: %w", utils.ErrValidation)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", utils.ErrValidation)
	}
	if in.PaidAt.IsZero() {
		in.PaidAt = s.now()
	}

	// Gateways redeliver; an already-seen reference is a no-op returning
	// the prior result.
	if prior, err := s.priorResult(ctx, in.ExternalReference); err != nil || prior != nil {
		return prior, err
	}

	result := &ReconcileResult{}
	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		invoice, err := r.Invoices.OldestPendingByAmountForUpdate(ctx, in.Amount)
		if err != nil {
			return err
		}

		payment := &models.Payment{
			ID:                uuid.New(),
			Amount:            in.Amount,
			ExternalReference: in.ExternalReference,
			PayerPhone:        in.PayerPhone,
			PaidAt:            in.PaidAt,
		}
		if invoice != nil {
			payment.InvoiceID = &invoice.ID
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}
		result.Payment = payment

		if invoice == nil {
			return nil
		}

		if !invoice.Status.CanTransitionTo(models.InvoiceStatusPaid) {
			return fmt.Errorf("invoice %s is %s: %w", invoice.ID, invoice.Status, utils.ErrInvalidState)
		}
		expected := invoice.RowVersion
		invoice.Status = models.InvoiceStatusPaid
		invoice.PaidAt = &in.PaidAt
		tag, err := r.Invoices.UpdateIfVersion(ctx, invoice, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("invoice %s: %w", invoice.ID, utils.ErrRowVersionConflict)
		}
		result.Invoice = invoice

		return s.notifyLandlord(ctx, r, invoice, in)
	})
	if err != nil {
		// Two deliveries raced past the fast path; the winner's row is the
		// result.
		if errors.Is(err, repositories.ErrDuplicateReference) {
			return s.priorResult(ctx, in.ExternalReference)
		}
		reconcileOutcomes.WithLabelValues(outcomeFailed).Inc()
		return nil, err
	}

	if result.Invoice != nil {
		reconcileOutcomes.WithLabelValues(outcomeMatched).Inc()
		utils.Logger.Infof("Payment %s reconciled against invoice %s", in.ExternalReference, result.Invoice.ID)
	} else {
		reconcileOutcomes.WithLabelValues(outcomeUnreconciled).Inc()
		utils.Logger.Warnf("Payment %s (amount %s) did not match any pending invoice; kept for manual reconciliation",
			in.ExternalReference, formatAmount(in.Amount))
	}
	return result, nil
}

// ListPayments is admin-only.
func (s *ReconciliationService) ListPayments(ctx context.Context, actorID uuid.UUID) ([]*models.Payment, error) {
	r := s.store.Repos()
	actor, err := requireActor(ctx, r, actorID)
	if err != nil {
		return nil, err
	}
	if res := authorize(actor, capability{role: models.RoleAdmin, owns: true}); !res.Allowed {
		return nil, fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
	}
	return r.Payments.ListAll(ctx)
}

func (s *ReconciliationService) priorResult(ctx context.Context, ref string) (*ReconcileResult, error) {
	existing, err := s.store.Repos().Payments.GetByExternalReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	reconcileOutcomes.WithLabelValues(outcomeDuplicate).Inc()
	utils.Logger.Infof("Duplicate webhook delivery for reference %s; returning prior result", ref)

	result := &ReconcileResult{Payment: existing, Duplicate: true}
	if existing.InvoiceID != nil {
		invoice, err := s.store.Repos().Invoices.GetByID(ctx, *existing.InvoiceID)
		if err != nil {
			return nil, err
		}
		result.Invoice = invoice
	}
	return result, nil
}

func (s *ReconciliationService) notifyLandlord(ctx context.Context, r repositories.Repos, invoice *models.Invoice, in ReconcileInput) error {
	lease, err := r.Leases.GetByID(ctx, invoice.LeaseID)
	if err != nil {
		return err
	}
	if lease == nil {
		return fmt.Errorf("lease %s behind invoice %s: %w", invoice.LeaseID, invoice.ID, utils.ErrNotFound)
	}
	unit, property, err := leaseContext(ctx, r, lease)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Payment of %s received (receipt %s) for unit %s at %s",
		formatAmount(in.Amount), in.ExternalReference, unit.UnitNumber, property.Name)
	return emitIntent(ctx, r, property.LandlordID, models.NotifCategoryPaymentReceived, msg)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
