package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
)

// memStore is an in-memory Store so service tests run the real workflow code
// without a database. WithTx runs the callback against the shared maps;
// rollback is not simulated, tests assert on success paths and on errors
// surfacing, not on partial-write recovery.
type memStore struct {
	mu  sync.Mutex
	seq int64

	users         map[uuid.UUID]*models.User
	properties    map[uuid.UUID]*models.Property
	units         map[uuid.UUID]*models.Unit
	leases        map[uuid.UUID]*models.Lease
	invoices      map[uuid.UUID]*models.Invoice
	payments      map[uuid.UUID]*models.Payment
	paymentRefs   map[string]uuid.UUID
	notifications []*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[uuid.UUID]*models.User),
		properties:  make(map[uuid.UUID]*models.Property),
		units:       make(map[uuid.UUID]*models.Unit),
		leases:      make(map[uuid.UUID]*models.Lease),
		invoices:    make(map[uuid.UUID]*models.Invoice),
		payments:    make(map[uuid.UUID]*models.Payment),
		paymentRefs: make(map[string]uuid.UUID),
	}
}

func (s *memStore) Repos() repositories.Repos {
	return repositories.Repos{
		Users:         &memUserRepo{s},
		Properties:    &memPropertyRepo{s},
		Units:         &memUnitRepo{s},
		Leases:        &memLeaseRepo{s},
		Invoices:      &memInvoiceRepo{s},
		Payments:      &memPaymentRepo{s},
		Notifications: &memNotificationRepo{s},
	}
}

func (s *memStore) WithTx(ctx context.Context, fn func(repositories.Repos) error) error {
	return fn(s.Repos())
}

// tick returns strictly increasing timestamps so created_at ordering is
// deterministic within one test.
func (s *memStore) tick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return time.Unix(1_700_000_000, s.seq*1000)
}

func updateTag(n int) pgconn.CommandTag {
	return pgconn.CommandTag(fmt.Sprintf("UPDATE %d", n))
}

/* ---------- copy helpers ---------- */

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyProperty(p *models.Property) *models.Property {
	c := *p
	return &c
}

func copyUnit(u *models.Unit) *models.Unit {
	c := *u
	return &c
}

func copyLease(l *models.Lease) *models.Lease {
	c := *l
	if l.StartDate != nil {
		v := *l.StartDate
		c.StartDate = &v
	}
	if l.EndDate != nil {
		v := *l.EndDate
		c.EndDate = &v
	}
	return &c
}

func copyInvoice(i *models.Invoice) *models.Invoice {
	c := *i
	if i.PaidAt != nil {
		v := *i.PaidAt
		c.PaidAt = &v
	}
	return &c
}

func copyPayment(p *models.Payment) *models.Payment {
	c := *p
	if p.InvoiceID != nil {
		v := *p.InvoiceID
		c.InvoiceID = &v
	}
	return &c
}

func copyNotification(n *models.Notification) *models.Notification {
	c := *n
	if n.DispatchedAt != nil {
		v := *n.DispatchedAt
		c.DispatchedAt = &v
	}
	return &c
}

/* ---------- users ---------- */

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, u *models.User) error {
	c := copyUser(u)
	c.CreatedAt = r.s.tick()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[c.ID] = c
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for _, u := range r.s.users {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (r *memUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatusType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.Status = status
	}
	return nil
}

/* ---------- properties ---------- */

type memPropertyRepo struct{ s *memStore }

func (r *memPropertyRepo) Create(ctx context.Context, p *models.Property) error {
	c := copyProperty(p)
	c.CreatedAt = r.s.tick()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.properties[c.ID] = c
	return nil
}

func (r *memPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.properties[id]; ok {
		return copyProperty(p), nil
	}
	return nil, nil
}

func (r *memPropertyRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Property
	for _, p := range r.s.properties {
		if p.LandlordID == landlordID {
			out = append(out, copyProperty(p))
		}
	}
	return out, nil
}

func (r *memPropertyRepo) ListAll(ctx context.Context) ([]*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Property
	for _, p := range r.s.properties {
		out = append(out, copyProperty(p))
	}
	return out, nil
}

func (r *memPropertyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatusType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.properties[id]; ok {
		p.Status = status
	}
	return nil
}

/* ---------- units ---------- */

type memUnitRepo struct{ s *memStore }

func (r *memUnitRepo) Create(ctx context.Context, u *models.Unit) error {
	c := copyUnit(u)
	c.CreatedAt = r.s.tick()
	if c.RowVersion == 0 {
		c.RowVersion = 1
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.units[c.ID] = c
	return nil
}

func (r *memUnitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.units[id]; ok {
		return copyUnit(u), nil
	}
	return nil, nil
}

func (r *memUnitRepo) ListByPropertyID(ctx context.Context, propID uuid.UUID) ([]*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Unit
	for _, u := range r.s.units {
		if u.PropertyID == propID {
			out = append(out, copyUnit(u))
		}
	}
	return out, nil
}

func (r *memUnitRepo) FirstVacantByPropertyID(ctx context.Context, propID uuid.UUID) (*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *models.Unit
	for _, u := range r.s.units {
		if u.PropertyID != propID || u.Status != models.UnitStatusVacant {
			continue
		}
		if best == nil || u.CreatedAt.Before(best.CreatedAt) {
			best = u
		}
	}
	if best == nil {
		return nil, nil
	}
	return copyUnit(best), nil
}

func (r *memUnitRepo) CountByPropertyID(ctx context.Context, propID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, u := range r.s.units {
		if u.PropertyID == propID {
			count++
		}
	}
	return count, nil
}

func (r *memUnitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.units[u.ID]
	if !ok || stored.RowVersion != expected {
		return updateTag(0), nil
	}
	c := copyUnit(u)
	c.CreatedAt = stored.CreatedAt
	c.RowVersion = expected + 1
	r.s.units[u.ID] = c
	u.RowVersion = c.RowVersion
	return updateTag(1), nil
}

func (r *memUnitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	for {
		u, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("unit %s not found", id)
		}
		expected := u.RowVersion
		if err := mutate(u); err != nil {
			return err
		}
		tag, err := r.UpdateIfVersion(ctx, u, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
	}
}

/* ---------- leases ---------- */

type memLeaseRepo struct{ s *memStore }

func (r *memLeaseRepo) Create(ctx context.Context, l *models.Lease) error {
	c := copyLease(l)
	c.CreatedAt = r.s.tick()
	if c.RowVersion == 0 {
		c.RowVersion = 1
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.leases[c.ID] = c
	l.RowVersion = c.RowVersion
	return nil
}

func (r *memLeaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.leases[id]; ok {
		return copyLease(l), nil
	}
	return nil, nil
}

func (r *memLeaseRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.GetByID(ctx, id)
}

func (r *memLeaseRepo) ListAll(ctx context.Context) ([]*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.s.leases {
		out = append(out, copyLease(l))
	}
	return out, nil
}

func (r *memLeaseRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.TenantID == tenantID {
			out = append(out, copyLease(l))
		}
	}
	return out, nil
}

func (r *memLeaseRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.s.leases {
		unit, ok := r.s.units[l.UnitID]
		if !ok {
			continue
		}
		prop, ok := r.s.properties[unit.PropertyID]
		if !ok || prop.LandlordID != landlordID {
			continue
		}
		out = append(out, copyLease(l))
	}
	return out, nil
}

func (r *memLeaseRepo) ListActiveEndingBefore(ctx context.Context, asOf time.Time) ([]*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.Status == models.LeaseStatusActive && l.EndDate != nil && l.EndDate.Before(asOf) {
			out = append(out, copyLease(l))
		}
	}
	return out, nil
}

func (r *memLeaseRepo) HasPendingForTenantOnProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.leases {
		if l.TenantID != tenantID || l.Status != models.LeaseStatusPending {
			continue
		}
		if unit, ok := r.s.units[l.UnitID]; ok && unit.PropertyID == propertyID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLeaseRepo) CountActiveByUnitID(ctx context.Context, unitID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, l := range r.s.leases {
		if l.UnitID == unitID && l.Status == models.LeaseStatusActive {
			count++
		}
	}
	return count, nil
}

func (r *memLeaseRepo) UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.leases[l.ID]
	if !ok || stored.RowVersion != expected {
		return updateTag(0), nil
	}
	c := copyLease(l)
	c.CreatedAt = stored.CreatedAt
	c.RowVersion = expected + 1
	r.s.leases[l.ID] = c
	l.RowVersion = c.RowVersion
	return updateTag(1), nil
}

/* ---------- invoices ---------- */

type memInvoiceRepo struct{ s *memStore }

func (r *memInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	c := copyInvoice(inv)
	c.CreatedAt = r.s.tick()
	if c.RowVersion == 0 {
		c.RowVersion = 1
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoices[c.ID] = c
	inv.RowVersion = c.RowVersion
	return nil
}

func (r *memInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv, ok := r.s.invoices[id]; ok {
		return copyInvoice(inv), nil
	}
	return nil, nil
}

func (r *memInvoiceRepo) ListAll(ctx context.Context) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		out = append(out, copyInvoice(inv))
	}
	return out, nil
}

func (r *memInvoiceRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		if l, ok := r.s.leases[inv.LeaseID]; ok && l.TenantID == tenantID {
			out = append(out, copyInvoice(inv))
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		l, ok := r.s.leases[inv.LeaseID]
		if !ok {
			continue
		}
		unit, ok := r.s.units[l.UnitID]
		if !ok {
			continue
		}
		if prop, ok := r.s.properties[unit.PropertyID]; ok && prop.LandlordID == landlordID {
			out = append(out, copyInvoice(inv))
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) ListPendingDueBefore(ctx context.Context, asOf time.Time) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		if inv.Status == models.InvoiceStatusPending && inv.DueDate.Before(asOf) {
			out = append(out, copyInvoice(inv))
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) OldestPendingByAmountForUpdate(ctx context.Context, amount float64) (*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *models.Invoice
	for _, inv := range r.s.invoices {
		if inv.Status != models.InvoiceStatusPending || inv.Amount != amount {
			continue
		}
		if best == nil || inv.CreatedAt.Before(best.CreatedAt) {
			best = inv
		}
	}
	if best == nil {
		return nil, nil
	}
	return copyInvoice(best), nil
}

func (r *memInvoiceRepo) UpdateIfVersion(ctx context.Context, inv *models.Invoice, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.invoices[inv.ID]
	if !ok || stored.RowVersion != expected {
		return updateTag(0), nil
	}
	c := copyInvoice(inv)
	c.CreatedAt = stored.CreatedAt
	c.RowVersion = expected + 1
	r.s.invoices[inv.ID] = c
	inv.RowVersion = c.RowVersion
	return updateTag(1), nil
}

/* ---------- payments ---------- */

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.paymentRefs[p.ExternalReference]; exists {
		return repositories.ErrDuplicateReference
	}
	c := copyPayment(p)
	c.CreatedAt = time.Unix(1_700_000_000, 0)
	r.s.payments[c.ID] = c
	r.s.paymentRefs[c.ExternalReference] = c.ID
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payments[id]; ok {
		return copyPayment(p), nil
	}
	return nil, nil
}

func (r *memPaymentRepo) GetByExternalReference(ctx context.Context, ref string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.paymentRefs[ref]; ok {
		return copyPayment(r.s.payments[id]), nil
	}
	return nil, nil
}

func (r *memPaymentRepo) ListAll(ctx context.Context) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.s.payments {
		out = append(out, copyPayment(p))
	}
	return out, nil
}

func (r *memPaymentRepo) ListUnreconciled(ctx context.Context) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.s.payments {
		if p.InvoiceID == nil {
			out = append(out, copyPayment(p))
		}
	}
	return out, nil
}

/* ---------- notifications ---------- */

type memNotificationRepo struct{ s *memStore }

func (r *memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	c := copyNotification(n)
	c.CreatedAt = r.s.tick()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications = append(r.s.notifications, c)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for i := len(r.s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.notifications[i].RecipientUserID == recipientID {
			out = append(out, copyNotification(r.s.notifications[i]))
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id && n.RecipientUserID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memNotificationRepo) ListUndispatchedForUpdate(ctx context.Context, limit int) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.DispatchedAt == nil {
			out = append(out, copyNotification(n))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			now := time.Now()
			n.DispatchedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

/* ---------- seed helpers ---------- */

func seedUser(s *memStore, role models.UserRoleType, status models.UserStatusType) *models.User {
	u := &models.User{
		ID:       uuid.New(),
		FullName: fmt.Sprintf("%s user", role),
		Email:    fmt.Sprintf("%s@example.com", uuid.New()),
		Role:     role,
		Status:   status,
	}
	_ = (&memUserRepo{s}).Create(context.Background(), u)
	return u
}

func seedProperty(s *memStore, landlordID uuid.UUID, status models.PropertyStatusType, price float64) *models.Property {
	p := &models.Property{
		ID:         uuid.New(),
		LandlordID: landlordID,
		Name:       "Sunrise Court",
		Address:    "12 Riverside Dr",
		City:       "Nairobi",
		Price:      price,
		Status:     status,
	}
	_ = (&memPropertyRepo{s}).Create(context.Background(), p)
	return p
}

func seedUnit(s *memStore, propertyID uuid.UUID, status models.UnitStatusType, rent float64) *models.Unit {
	u := &models.Unit{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UnitNumber: "A1",
		RentAmount: rent,
		Status:     status,
	}
	u.RowVersion = 1
	_ = (&memUnitRepo{s}).Create(context.Background(), u)
	return u
}

func seedLease(s *memStore, unitID, tenantID uuid.UUID, status models.LeaseStatusType, rent float64) *models.Lease {
	l := &models.Lease{
		ID:         uuid.New(),
		UnitID:     unitID,
		TenantID:   tenantID,
		RentAmount: rent,
		Status:     status,
	}
	l.RowVersion = 1
	_ = (&memLeaseRepo{s}).Create(context.Background(), l)
	return l
}

func seedInvoice(s *memStore, leaseID uuid.UUID, status models.InvoiceStatusType, amount float64, due time.Time) *models.Invoice {
	inv := &models.Invoice{
		ID:      uuid.New(),
		LeaseID: leaseID,
		Amount:  amount,
		DueDate: due,
		Status:  status,
	}
	inv.RowVersion = 1
	_ = (&memInvoiceRepo{s}).Create(context.Background(), inv)
	return inv
}
