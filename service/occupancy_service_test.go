package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

func occupancyFixture(t *testing.T, capacity int) (*OccupancyService, *fakeRoomStore, *fakeTenantStore, *domain.Room, *domain.Tenant) {
	t.Helper()

	rooms := newFakeRoomStore()
	tenants := newFakeTenantStore()
	service := NewOccupancyService(rooms, tenants, testTracer(), testLogger())
	service.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	room, err := rooms.Insert(context.Background(), &domain.Room{
		RoomNumber:  "B-204",
		RoomType:    domain.RoomTypeDouble,
		Capacity:    capacity,
		MonthlyRent: 6000,
		Status:      domain.RoomAvailable,
		IsActive:    true,
	})
	require.NoError(t, err)

	tenant, err := tenants.Insert(context.Background(), &domain.Tenant{
		FirstName:    "Maria",
		LastName:     "Santos",
		Email:        "maria@example.com",
		TenantStatus: domain.TenantPending,
	})
	require.NoError(t, err)

	return service, rooms, tenants, room, tenant
}

func TestAssignTenantMirrorsTenant(t *testing.T) {
	service, rooms, tenants, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	updated, err := service.AssignTenant(ctx, room.ID, tenant.ID, 0, 3000)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ActiveTenantCount())
	assert.Equal(t, 6000.0, updated.CurrentTenants[0].RentAmount)

	storedTenant, err := tenants.Get(ctx, tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, storedTenant.RoomNumber)
	assert.Equal(t, "B-204", *storedTenant.RoomNumber)
	assert.Equal(t, 6000.0, storedTenant.MonthlyRent)
	assert.Equal(t, 3000.0, storedTenant.SecurityDeposit)
	assert.Equal(t, domain.TenantActive, storedTenant.TenantStatus)

	storedRoom, err := rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, storedRoom.RentalHistory, 1)
}

func TestAssignTenantAlreadyAssignedElsewhere(t *testing.T) {
	service, rooms, _, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	other, err := rooms.Insert(ctx, &domain.Room{
		RoomNumber:  "C-301",
		RoomType:    domain.RoomTypeSingle,
		Capacity:    1,
		MonthlyRent: 4000,
		Status:      domain.RoomAvailable,
		IsActive:    true,
	})
	require.NoError(t, err)

	_, err = service.AssignTenant(ctx, room.ID, tenant.ID, 0, 0)
	require.NoError(t, err)

	_, err = service.AssignTenant(ctx, other.ID, tenant.ID, 0, 0)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindDuplicateAssignment))
}

func TestAssignTenantCapacityEnforced(t *testing.T) {
	service, _, tenants, room, tenant := occupancyFixture(t, 1)
	ctx := context.Background()

	_, err := service.AssignTenant(ctx, room.ID, tenant.ID, 0, 0)
	require.NoError(t, err)

	second, err := tenants.Insert(ctx, &domain.Tenant{
		FirstName:    "Jose",
		LastName:     "Cruz",
		Email:        "jose@example.com",
		TenantStatus: domain.TenantPending,
	})
	require.NoError(t, err)

	_, err = service.AssignTenant(ctx, room.ID, second.ID, 0, 0)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindCapacityExceeded))
}

func TestAssignTenantCompensatesFailedMirror(t *testing.T) {
	service, rooms, tenants, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	tenants.updateErr = errs.New(errs.KindInternal, "write failed")

	_, err := service.AssignTenant(ctx, room.ID, tenant.ID, 0, 0)
	require.Error(t, err)

	// The room side was rolled back; neither store moved.
	storedRoom, err := rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, storedRoom.ActiveTenantCount())
	assert.Empty(t, storedRoom.RentalHistory)

	storedTenant, err := tenants.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Nil(t, storedTenant.RoomNumber)
}

func TestUnassignTenant(t *testing.T) {
	service, rooms, tenants, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	_, err := service.AssignTenant(ctx, room.ID, tenant.ID, 0, 0)
	require.NoError(t, err)

	updated, err := service.UnassignTenant(ctx, room.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ActiveTenantCount())

	storedTenant, err := tenants.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Nil(t, storedTenant.RoomNumber)
	assert.Equal(t, domain.TenantInactive, storedTenant.TenantStatus)

	storedRoom, err := rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, storedRoom.RentalHistory, 1)
	assert.False(t, storedRoom.RentalHistory[0].IsActive)
}

func TestUnassignTenantCompensatesFailedMirror(t *testing.T) {
	service, rooms, tenants, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	_, err := service.AssignTenant(ctx, room.ID, tenant.ID, 0, 0)
	require.NoError(t, err)

	tenants.updateErr = errs.New(errs.KindInternal, "write failed")
	_, err = service.UnassignTenant(ctx, room.ID, tenant.ID)
	require.Error(t, err)

	storedRoom, err := rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedRoom.ActiveTenantCount())
}

func TestUnassignTenantNotInRoom(t *testing.T) {
	service, _, _, room, tenant := occupancyFixture(t, 2)

	_, err := service.UnassignTenant(context.Background(), room.ID, tenant.ID)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestUpdateSecurityDeposit(t *testing.T) {
	service, rooms, _, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	_, err := service.AssignTenant(ctx, room.ID, tenant.ID, 0, 3000)
	require.NoError(t, err)

	paid := domain.DepositPaid
	datePaid := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err = service.UpdateSecurityDeposit(ctx, room.ID, tenant.ID, domain.DepositUpdate{
		Status:   &paid,
		DatePaid: &datePaid,
	})
	require.NoError(t, err)

	storedRoom, err := rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositPaid, storedRoom.CurrentTenants[0].SecurityDeposit.Status)
	assert.Equal(t, domain.DepositPaid, storedRoom.RentalHistory[0].SecurityDeposit.Status)
}

func TestAddSecurityDepositDeduction(t *testing.T) {
	service, rooms, _, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	_, err := service.AssignTenant(ctx, room.ID, tenant.ID, 0, 3000)
	require.NoError(t, err)

	_, err = service.AddSecurityDepositDeduction(ctx, room.ID, tenant.ID, "Damaged door", 500)
	require.NoError(t, err)

	storedRoom, err := rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, storedRoom.CurrentTenants[0].SecurityDeposit.Deductions, 1)
	assert.Equal(t, 500.0, storedRoom.RentalHistory[0].SecurityDeposit.Deductions[0].Amount)
}

func TestAssignTenantUnknownIDs(t *testing.T) {
	service, _, _, room, tenant := occupancyFixture(t, 2)
	ctx := context.Background()

	_, err := service.AssignTenant(ctx, primitive.NewObjectID(), tenant.ID, 0, 0)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))

	_, err = service.AssignTenant(ctx, room.ID, primitive.NewObjectID(), 0, 0)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}
