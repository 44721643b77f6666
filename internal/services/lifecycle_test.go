package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

// Walks the whole happy path: a tenant applies, the landlord approves, an
// invoice goes out, the M-Pesa callback settles it, and the lease is
// eventually terminated without touching the paid invoice.
func TestLeaseLifecycleEndToEnd(t *testing.T) {
	store := newMemStore()
	occupancy := NewOccupancyTracker()
	leases := NewLeaseService(store, occupancy, false)
	invoices := NewInvoiceService(store)
	reconciler := NewReconciliationService(store)
	ctx := context.Background()

	landlord := seedUser(store, models.RoleLandlord, models.UserStatusActive)
	tenant := seedUser(store, models.RoleTenant, models.UserStatusActive)
	property := seedProperty(store, landlord.ID, models.PropertyStatusApproved, 45000)
	unit := seedUnit(store, property.ID, models.UnitStatusVacant, 45000)

	lease, err := leases.Apply(ctx, tenant.ID, property.ID)
	require.NoError(t, err)

	active, err := leases.Decide(ctx, lease.ID, landlord.ID, DecisionApprove)
	require.NoError(t, err)
	require.Equal(t, models.LeaseStatusActive, active.Status)

	occupied, err := store.Repos().Units.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusOccupied, occupied.Status)

	invoice, err := invoices.Create(ctx, lease.ID, 45000, time.Now().AddDate(0, 1, 0), landlord.ID)
	require.NoError(t, err)

	res, err := reconciler.Reconcile(ctx, ReconcileInput{
		Amount:            45000,
		ExternalReference: "QHG123XYZ",
		PayerPhone:        "254712345678",
		PaidAt:            time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Invoice)
	assert.Equal(t, invoice.ID, res.Invoice.ID)
	assert.Equal(t, models.InvoiceStatusPaid, res.Invoice.Status)

	intents := notificationsFor(store, landlord.ID, models.NotifCategoryPaymentReceived)
	require.Len(t, intents, 1)
	assert.Contains(t, intents[0].Message, "45000")
	assert.Contains(t, intents[0].Message, "QHG123")

	terminated, err := leases.Terminate(ctx, lease.ID, landlord.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusTerminated, terminated.Status)

	vacant, err := store.Repos().Units.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitStatusVacant, vacant.Status)

	// Termination does not rewrite settled billing history.
	settled, err := store.Repos().Invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, settled.Status)
}
