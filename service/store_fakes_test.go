package application

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func cloneTenancies(tenancies []domain.Tenancy) []domain.Tenancy {
	out := make([]domain.Tenancy, len(tenancies))
	for i, tenancy := range tenancies {
		out[i] = tenancy
		out[i].SecurityDeposit.Deductions = append([]domain.Deduction(nil), tenancy.SecurityDeposit.Deductions...)
	}
	return out
}

func cloneRoom(room *domain.Room) *domain.Room {
	clone := *room
	clone.CurrentTenants = cloneTenancies(room.CurrentTenants)
	clone.RentalHistory = cloneTenancies(room.RentalHistory)
	if room.CurrentTenant != nil {
		tenancy := *room.CurrentTenant
		clone.CurrentTenant = &tenancy
	}
	return &clone
}

// fakeRoomStore keeps rooms in memory with the same copy-on-read behavior as
// the Mongo store, so a failed service call cannot leak partial mutations.
type fakeRoomStore struct {
	mu         sync.Mutex
	rooms      map[primitive.ObjectID]*domain.Room
	updateErr  error
	updateErrs int
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[primitive.ObjectID]*domain.Room)}
}

func (store *fakeRoomStore) Insert(_ context.Context, room *domain.Room) (*domain.Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	store.rooms[room.ID] = cloneRoom(room)
	return cloneRoom(room), nil
}

func (store *fakeRoomStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	room, ok := store.rooms[id]
	if !ok {
		return nil, errs.NotFound(errs.RoomNotFound)
	}
	return cloneRoom(room), nil
}

func (store *fakeRoomStore) GetByNumber(_ context.Context, roomNumber string) (*domain.Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, room := range store.rooms {
		if room.RoomNumber == roomNumber {
			return cloneRoom(room), nil
		}
	}
	return nil, errs.NotFound(errs.RoomNotFound)
}

func (store *fakeRoomStore) GetAll(_ context.Context) ([]*domain.Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]*domain.Room, 0, len(store.rooms))
	for _, room := range store.rooms {
		out = append(out, cloneRoom(room))
	}
	return out, nil
}

func (store *fakeRoomStore) FindActiveByTenant(_ context.Context, tenantID primitive.ObjectID) (*domain.Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, room := range store.rooms {
		if room.HasActiveTenant(tenantID) {
			return cloneRoom(room), nil
		}
	}
	return nil, nil
}

func (store *fakeRoomStore) Update(_ context.Context, room *domain.Room) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.updateErrs > 0 {
		store.updateErrs--
		return store.updateErr
	}
	if _, ok := store.rooms[room.ID]; !ok {
		return errs.NotFound(errs.RoomNotFound)
	}
	room.Version++
	store.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (store *fakeRoomStore) GetStatistics(context.Context) (*domain.RoomStatistics, error) {
	return &domain.RoomStatistics{}, nil
}

func (store *fakeRoomStore) EnsureIndexes(context.Context) error { return nil }

type fakeTenantStore struct {
	mu        sync.Mutex
	tenants   map[primitive.ObjectID]*domain.Tenant
	updateErr error
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{tenants: make(map[primitive.ObjectID]*domain.Tenant)}
}

func cloneTenant(tenant *domain.Tenant) *domain.Tenant {
	clone := *tenant
	if tenant.RoomNumber != nil {
		roomNumber := *tenant.RoomNumber
		clone.RoomNumber = &roomNumber
	}
	return &clone
}

func (store *fakeTenantStore) Insert(_ context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if tenant.ID.IsZero() {
		tenant.ID = primitive.NewObjectID()
	}
	store.tenants[tenant.ID] = cloneTenant(tenant)
	return cloneTenant(tenant), nil
}

func (store *fakeTenantStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Tenant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	tenant, ok := store.tenants[id]
	if !ok {
		return nil, errs.NotFound(errs.TenantNotFound)
	}
	return cloneTenant(tenant), nil
}

func (store *fakeTenantStore) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Tenant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, tenant := range store.tenants {
		if tenant.UserID == userID {
			return cloneTenant(tenant), nil
		}
	}
	return nil, errs.NotFound(errs.TenantNotFound)
}

func (store *fakeTenantStore) GetAll(context.Context) ([]*domain.Tenant, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]*domain.Tenant, 0, len(store.tenants))
	for _, tenant := range store.tenants {
		out = append(out, cloneTenant(tenant))
	}
	return out, nil
}

func (store *fakeTenantStore) Update(_ context.Context, tenant *domain.Tenant) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.updateErr != nil {
		return store.updateErr
	}
	if _, ok := store.tenants[tenant.ID]; !ok {
		return errs.NotFound(errs.TenantNotFound)
	}
	store.tenants[tenant.ID] = cloneTenant(tenant)
	return nil
}

func (store *fakeTenantStore) Delete(_ context.Context, id primitive.ObjectID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.tenants, id)
	return nil
}

type fakePaymentStore struct {
	mu             sync.Mutex
	payments       map[primitive.ObjectID]*domain.Payment
	receipts       map[string]primitive.ObjectID
	updateConflict int
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{
		payments: make(map[primitive.ObjectID]*domain.Payment),
		receipts: make(map[string]primitive.ObjectID),
	}
}

func clonePayment(payment *domain.Payment) *domain.Payment {
	clone := *payment
	return &clone
}

func (store *fakePaymentStore) Insert(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if payment.ReceiptNumber != "" {
		if _, taken := store.receipts[payment.ReceiptNumber]; taken {
			return nil, errs.Conflict("Receipt number already in use")
		}
	}
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	store.payments[payment.ID] = clonePayment(payment)
	if payment.ReceiptNumber != "" {
		store.receipts[payment.ReceiptNumber] = payment.ID
	}
	return clonePayment(payment), nil
}

func (store *fakePaymentStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	payment, ok := store.payments[id]
	if !ok {
		return nil, errs.NotFound(errs.PaymentNotFound)
	}
	return clonePayment(payment), nil
}

func (store *fakePaymentStore) GetAll(_ context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]*domain.Payment, 0, len(store.payments))
	for _, payment := range store.payments {
		if filter.Status != "" && payment.Status != filter.Status {
			continue
		}
		if filter.TenantID != nil && payment.TenantID != *filter.TenantID {
			continue
		}
		out = append(out, clonePayment(payment))
	}
	return out, nil
}

func (store *fakePaymentStore) Update(_ context.Context, payment *domain.Payment, expectedStatus domain.PaymentStatus) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.updateConflict > 0 {
		store.updateConflict--
		return errs.Conflict("Receipt number already in use")
	}
	stored, ok := store.payments[payment.ID]
	if !ok {
		return errs.NotFound(errs.PaymentNotFound)
	}
	if stored.Status != expectedStatus {
		return errs.Conflict("Payment was modified concurrently")
	}
	if payment.ReceiptNumber != "" {
		if owner, taken := store.receipts[payment.ReceiptNumber]; taken && owner != payment.ID {
			return errs.Conflict("Receipt number already in use")
		}
		store.receipts[payment.ReceiptNumber] = payment.ID
	}
	store.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (store *fakePaymentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.payments, id)
	return nil
}

func (store *fakePaymentStore) FindDuePending(_ context.Context, before time.Time) ([]*domain.Payment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var out []*domain.Payment
	for _, payment := range store.payments {
		if payment.Status == domain.PaymentPending && payment.DueDate.Before(before) {
			out = append(out, clonePayment(payment))
		}
	}
	return out, nil
}

func (store *fakePaymentStore) FindOverdueWithoutFee(context.Context) ([]*domain.Payment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var out []*domain.Payment
	for _, payment := range store.payments {
		if payment.Status == domain.PaymentOverdue && (payment.LateFee == nil || payment.LateFee.Amount == 0) {
			out = append(out, clonePayment(payment))
		}
	}
	return out, nil
}

func (store *fakePaymentStore) GetStatistics(context.Context, domain.PaymentFilter) (*domain.PaymentStatistics, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	stats := &domain.PaymentStatistics{}
	for _, payment := range store.payments {
		stats.TotalPayments++
		stats.TotalAmount += payment.Amount
		switch payment.Status {
		case domain.PaymentPaid:
			stats.PaidCount++
			stats.PaidAmount += payment.Amount
		case domain.PaymentPending:
			stats.PendingCount++
			stats.PendingAmount += payment.Amount
		case domain.PaymentOverdue:
			stats.OverdueCount++
			stats.OverdueAmount += payment.Amount
		case domain.PaymentRefunded:
			stats.RefundedCount++
		}
	}
	return stats, nil
}

func (store *fakePaymentStore) EnsureIndexes(context.Context) error { return nil }
