package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

func newTestRoom(capacity int) *Room {
	return &Room{
		ID:              primitive.NewObjectID(),
		RoomNumber:      "A-101",
		RoomType:        RoomTypeDouble,
		Capacity:        capacity,
		MonthlyRent:     5000,
		SecurityDeposit: 5000,
		Status:          RoomAvailable,
		IsActive:        true,
	}
}

func TestRoomValidate(t *testing.T) {
	room := newTestRoom(2)
	require.NoError(t, room.Validate())

	noNumber := newTestRoom(2)
	noNumber.RoomNumber = ""
	assert.True(t, errors.IsKind(noNumber.Validate(), errors.KindValidation))

	badType := newTestRoom(2)
	badType.RoomType = "penthouse"
	assert.True(t, errors.IsKind(badType.Validate(), errors.KindValidation))

	tooBig := newTestRoom(MaxCapacity + 1)
	assert.True(t, errors.IsKind(tooBig.Validate(), errors.KindValidation))

	tooSmall := newTestRoom(0)
	assert.True(t, errors.IsKind(tooSmall.Validate(), errors.KindValidation))

	badDeposit := newTestRoom(2)
	badDeposit.SecurityDeposit = 5000.123
	assert.True(t, errors.IsKind(badDeposit.Validate(), errors.KindValidation))

	okDeposit := newTestRoom(2)
	okDeposit.SecurityDeposit = 5000.25
	assert.NoError(t, okDeposit.Validate())
}

func TestAssignTenantCapacity(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	third := primitive.NewObjectID()

	require.NoError(t, room.AssignTenant(first, 0, 5000, now))
	assert.Equal(t, RoomAvailable, room.Status)

	require.NoError(t, room.AssignTenant(second, 0, 5000, now))
	assert.Equal(t, RoomOccupied, room.Status)

	err := room.AssignTenant(third, 0, 5000, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindCapacityExceeded))
	assert.Equal(t, 2, room.ActiveTenantCount())
}

func TestAssignTenantDuplicate(t *testing.T) {
	room := newTestRoom(3)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()

	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))
	err := room.AssignTenant(tenant, 0, 5000, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDuplicateAssignment))
}

func TestAssignTenantRoomNotAvailable(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, status := range []RoomStatus{RoomMaintenance, RoomUnavailable} {
		room := newTestRoom(2)
		room.Status = status
		err := room.AssignTenant(primitive.NewObjectID(), 0, 5000, now)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindCapacityExceeded))
	}

	// Reserved rooms still accept assignments.
	room := newTestRoom(2)
	room.Status = RoomReserved
	assert.NoError(t, room.AssignTenant(primitive.NewObjectID(), 0, 5000, now))
}

func TestAssignTenantDefaultsRentToRoomRate(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()

	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))
	assert.Equal(t, 5000.0, room.CurrentTenants[0].RentAmount)

	other := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(other, 4500, 5000, now))
	assert.Equal(t, 4500.0, room.CurrentTenants[1].RentAmount)
}

func TestAssignTenantZeroDepositAutoPaid(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, room.AssignTenant(primitive.NewObjectID(), 0, 0, now))
	deposit := room.CurrentTenants[0].SecurityDeposit
	assert.Equal(t, DepositPaid, deposit.Status)
	require.NotNil(t, deposit.DatePaid)
	assert.True(t, deposit.DatePaid.Equal(now))

	require.NoError(t, room.AssignTenant(primitive.NewObjectID(), 0, 5000, now))
	assert.Equal(t, DepositPending, room.CurrentTenants[1].SecurityDeposit.Status)
}

func TestUnassignTenantKeepsHistory(t *testing.T) {
	room := newTestRoom(1)
	moveIn := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	moveOut := moveIn.AddDate(0, 6, 0)
	tenant := primitive.NewObjectID()

	require.NoError(t, room.AssignTenant(tenant, 0, 5000, moveIn))
	assert.Equal(t, RoomOccupied, room.Status)

	closed, err := room.UnassignTenant(tenant, moveOut)
	require.NoError(t, err)
	require.NotNil(t, closed.MoveOutDate)
	assert.True(t, closed.MoveOutDate.Equal(moveOut))
	assert.False(t, closed.IsActive)

	assert.Equal(t, 0, room.ActiveTenantCount())
	assert.Equal(t, RoomAvailable, room.Status)
	assert.Nil(t, room.CurrentTenant)

	// History survives the move-out with the closed record.
	require.Len(t, room.RentalHistory, 1)
	assert.False(t, room.RentalHistory[0].IsActive)
	require.NotNil(t, room.RentalHistory[0].MoveOutDate)
}

func TestUnassignTenantNotAssigned(t *testing.T) {
	room := newTestRoom(2)
	_, err := room.UnassignTenant(primitive.NewObjectID(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestManualStatusNotOverriddenByOccupancy(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()

	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))
	require.NoError(t, room.ChangeStatus(RoomMaintenance, now))

	_, err := room.UnassignTenant(tenant, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, RoomMaintenance, room.Status)
}

func TestChangeStatusOccupiedBelowCapacityRejected(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, room.AssignTenant(primitive.NewObjectID(), 0, 5000, now))

	err := room.ChangeStatus(RoomOccupied, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))
}

func TestChangeStatusAvailableAtCapacityDerivesOccupied(t *testing.T) {
	room := newTestRoom(1)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, room.AssignTenant(primitive.NewObjectID(), 0, 5000, now))
	require.Equal(t, RoomOccupied, room.Status)

	require.NoError(t, room.ChangeStatus(RoomAvailable, now))
	assert.Equal(t, RoomOccupied, room.Status)
}

func TestCurrentTenantProjection(t *testing.T) {
	room := newTestRoom(3)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	require.NoError(t, room.AssignTenant(first, 0, 5000, now))
	require.NotNil(t, room.CurrentTenant)
	assert.Equal(t, first, room.CurrentTenant.TenantID)

	require.NoError(t, room.AssignTenant(second, 0, 5000, now.Add(time.Hour)))
	assert.Equal(t, first, room.CurrentTenant.TenantID)

	_, err := room.UnassignTenant(first, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NotNil(t, room.CurrentTenant)
	assert.Equal(t, second, room.CurrentTenant.TenantID)

	_, err = room.UnassignTenant(second, now.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Nil(t, room.CurrentTenant)
}

func TestUpdateDepositMirrorsHistory(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))

	paid := DepositPaid
	datePaid := now.AddDate(0, 0, 3)
	err := room.UpdateDeposit(tenant, DepositUpdate{Status: &paid, DatePaid: &datePaid}, now)
	require.NoError(t, err)

	assert.Equal(t, DepositPaid, room.CurrentTenants[0].SecurityDeposit.Status)
	assert.Equal(t, DepositPaid, room.RentalHistory[0].SecurityDeposit.Status)
	require.NotNil(t, room.RentalHistory[0].SecurityDeposit.DatePaid)
}

func TestUpdateDepositInvalidStatus(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))

	bogus := DepositStatus("vanished")
	err := room.UpdateDeposit(tenant, DepositUpdate{Status: &bogus}, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestAddDeductionMirrorsHistory(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))

	require.NoError(t, room.AddDeduction(tenant, "Broken window", 800, now))
	require.Len(t, room.CurrentTenants[0].SecurityDeposit.Deductions, 1)
	require.Len(t, room.RentalHistory[0].SecurityDeposit.Deductions, 1)
	assert.Equal(t, "Broken window", room.RentalHistory[0].SecurityDeposit.Deductions[0].Reason)
}

func TestAddDeductionAfterMoveOut(t *testing.T) {
	room := newTestRoom(2)
	moveIn := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	moveOut := moveIn.AddDate(0, 6, 0)
	tenant := primitive.NewObjectID()

	require.NoError(t, room.AssignTenant(tenant, 0, 5000, moveIn))
	_, err := room.UnassignTenant(tenant, moveOut)
	require.NoError(t, err)

	require.NoError(t, room.AddDeduction(tenant, "Move-out damage", 1200, moveOut.AddDate(0, 0, 2)))
	require.Len(t, room.RentalHistory[0].SecurityDeposit.Deductions, 1)
}

func TestAddDeductionExceedingDepositAllowed(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 1000, now))

	require.NoError(t, room.AddDeduction(tenant, "Flood damage", 600, now))
	require.NoError(t, room.AddDeduction(tenant, "Lost keys", 600, now))
	assert.Len(t, room.CurrentTenants[0].SecurityDeposit.Deductions, 2)
}

func TestAddDeductionValidation(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))

	assert.True(t, errors.IsKind(room.AddDeduction(tenant, "", 100, now), errors.KindValidation))
	assert.True(t, errors.IsKind(room.AddDeduction(tenant, "Damage", -1, now), errors.KindValidation))
	assert.True(t, errors.IsKind(room.AddDeduction(primitive.NewObjectID(), "Damage", 100, now), errors.KindNotFound))
}

func TestSoftDeleteBlockedWhileOccupied(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))

	err := room.SoftDelete(now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))

	_, err = room.UnassignTenant(tenant, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, room.SoftDelete(now.AddDate(0, 1, 1)))
	assert.False(t, room.IsActive)
	assert.Equal(t, RoomUnavailable, room.Status)
}

func TestRemoveTenancyCompensation(t *testing.T) {
	room := newTestRoom(2)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 5000, now))

	room.RemoveTenancy(tenant, now)
	assert.Empty(t, room.CurrentTenants)
	assert.Empty(t, room.RentalHistory)
	assert.Equal(t, RoomAvailable, room.Status)
}

func TestRestoreTenancyCompensation(t *testing.T) {
	room := newTestRoom(1)
	moveIn := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tenant := primitive.NewObjectID()
	require.NoError(t, room.AssignTenant(tenant, 0, 5000, moveIn))
	_, err := room.UnassignTenant(tenant, moveIn.AddDate(0, 1, 0))
	require.NoError(t, err)

	room.RestoreTenancy(tenant, moveIn)
	assert.Equal(t, 1, room.ActiveTenantCount())
	assert.Equal(t, RoomOccupied, room.Status)
	assert.Nil(t, room.CurrentTenants[0].MoveOutDate)
	assert.True(t, room.RentalHistory[0].IsActive)
}
