package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

type invoiceFixture struct {
	store    *memStore
	svc      *InvoiceService
	landlord *models.User
	tenant   *models.User
	lease    *models.Lease
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	store := newMemStore()
	landlord := seedUser(store, models.RoleLandlord, models.UserStatusActive)
	tenant := seedUser(store, models.RoleTenant, models.UserStatusActive)
	property := seedProperty(store, landlord.ID, models.PropertyStatusApproved, 45000)
	unit := seedUnit(store, property.ID, models.UnitStatusOccupied, 45000)
	lease := seedLease(store, unit.ID, tenant.ID, models.LeaseStatusActive, 45000)
	return &invoiceFixture{
		store:    store,
		svc:      NewInvoiceService(store),
		landlord: landlord,
		tenant:   tenant,
		lease:    lease,
	}
}

func TestInvoiceCreate(t *testing.T) {
	f := newInvoiceFixture(t)
	due := time.Now().AddDate(0, 1, 0)

	inv, err := f.svc.Create(context.Background(), f.lease.ID, 45000, due, f.landlord.ID)
	require.NoError(t, err)

	assert.Equal(t, models.InvoiceStatusPending, inv.Status)
	assert.Equal(t, f.lease.ID, inv.LeaseID)
	assert.Equal(t, float64(45000), inv.Amount)
	assert.Equal(t, due, inv.DueDate)
	assert.Nil(t, inv.PaidAt)
}

func TestInvoiceCreateNonPositiveAmount(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.svc.Create(context.Background(), f.lease.ID, 0, time.Now(), f.landlord.ID)
	require.ErrorIs(t, err, utils.ErrValidation)
}

func TestInvoiceCreateLeaseNotActive(t *testing.T) {
	f := newInvoiceFixture(t)
	property := seedProperty(f.store, f.landlord.ID, models.PropertyStatusApproved, 30000)
	unit := seedUnit(f.store, property.ID, models.UnitStatusVacant, 30000)
	pending := seedLease(f.store, unit.ID, f.tenant.ID, models.LeaseStatusPending, 30000)

	_, err := f.svc.Create(context.Background(), pending.ID, 30000, time.Now(), f.landlord.ID)
	require.ErrorIs(t, err, utils.ErrInvalidState)
}

func TestInvoiceCreateByTenantDenied(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.svc.Create(context.Background(), f.lease.ID, 45000, time.Now(), f.tenant.ID)
	require.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestInvoiceCreateByNonOwnerLandlordDenied(t *testing.T) {
	f := newInvoiceFixture(t)
	other := seedUser(f.store, models.RoleLandlord, models.UserStatusActive)

	_, err := f.svc.Create(context.Background(), f.lease.ID, 45000, time.Now(), other.ID)
	require.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestInvoiceCreateByAdmin(t *testing.T) {
	f := newInvoiceFixture(t)
	admin := seedUser(f.store, models.RoleAdmin, models.UserStatusActive)

	_, err := f.svc.Create(context.Background(), f.lease.ID, 45000, time.Now(), admin.ID)
	require.NoError(t, err)
}

func TestInvoiceCreateMissingLease(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), 45000, time.Now(), f.landlord.ID)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestMarkOverdue(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	inv := &models.Invoice{Status: models.InvoiceStatusPending, DueDate: due}
	assert.False(t, MarkOverdue(inv, due), "not past due at the exact due date")
	assert.Equal(t, models.InvoiceStatusPending, inv.Status)

	assert.True(t, MarkOverdue(inv, due.Add(time.Second)))
	assert.Equal(t, models.InvoiceStatusOverdue, inv.Status)

	// Already overdue and paid invoices stay put.
	assert.False(t, MarkOverdue(inv, due.Add(time.Hour)))
	paid := &models.Invoice{Status: models.InvoiceStatusPaid, DueDate: due}
	assert.False(t, MarkOverdue(paid, due.Add(time.Hour)))
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)
}

func TestSweepOverdue(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	now := time.Now()

	pastDue := seedInvoice(f.store, f.lease.ID, models.InvoiceStatusPending, 45000, now.AddDate(0, 0, -3))
	current := seedInvoice(f.store, f.lease.ID, models.InvoiceStatusPending, 45000, now.AddDate(0, 0, 3))
	alreadyPaid := seedInvoice(f.store, f.lease.ID, models.InvoiceStatusPaid, 45000, now.AddDate(0, 0, -3))

	marked, err := f.svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	stored, err := f.store.Repos().Invoices.GetByID(ctx, pastDue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusOverdue, stored.Status)

	stored, err = f.store.Repos().Invoices.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPending, stored.Status)

	stored, err = f.store.Repos().Invoices.GetByID(ctx, alreadyPaid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)

	// A second sweep finds nothing left to mark.
	marked, err = f.svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}

func TestInvoiceListForActor(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	admin := seedUser(f.store, models.RoleAdmin, models.UserStatusActive)

	otherLandlord := seedUser(f.store, models.RoleLandlord, models.UserStatusActive)
	otherProperty := seedProperty(f.store, otherLandlord.ID, models.PropertyStatusApproved, 20000)
	otherUnit := seedUnit(f.store, otherProperty.ID, models.UnitStatusOccupied, 20000)
	otherTenant := seedUser(f.store, models.RoleTenant, models.UserStatusActive)
	otherLease := seedLease(f.store, otherUnit.ID, otherTenant.ID, models.LeaseStatusActive, 20000)

	seedInvoice(f.store, f.lease.ID, models.InvoiceStatusPending, 45000, time.Now())
	seedInvoice(f.store, otherLease.ID, models.InvoiceStatusPending, 20000, time.Now())

	tenantView, err := f.svc.ListForActor(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, tenantView, 1)

	landlordView, err := f.svc.ListForActor(ctx, otherLandlord.ID)
	require.NoError(t, err)
	assert.Len(t, landlordView, 1)

	adminView, err := f.svc.ListForActor(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, adminView, 2)
}
