package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

// OccupancyService orchestrates tenancy assignment across the room and
// tenant stores. The room document is the source of truth; the tenant's
// roomNumber/monthlyRent fields are a mirrored projection written second and
// compensated on failure, so the capacity and single-assignment invariants
// live entirely on the room side.
type OccupancyService struct {
	rooms       domain.RoomStore
	tenants     domain.TenantStore
	roomLocks   *keyedMutex
	tenantLocks *keyedMutex
	tracer      trace.Tracer
	logger      *logrus.Logger
	now         func() time.Time
}

func NewOccupancyService(rooms domain.RoomStore, tenants domain.TenantStore, tracer trace.Tracer, logger *logrus.Logger) *OccupancyService {
	return &OccupancyService{
		rooms:       rooms,
		tenants:     tenants,
		roomLocks:   newKeyedMutex(),
		tenantLocks: newKeyedMutex(),
		tracer:      tracer,
		logger:      logger,
		now:         time.Now,
	}
}

// AssignTenant opens a new tenancy. Locks are held for the whole
// read-check-write sequence; the store-level version CAS backstops writers
// outside this process.
func (service *OccupancyService) AssignTenant(ctx context.Context, roomID, tenantID primitive.ObjectID, rentAmount, depositAmount float64) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "OccupancyService.AssignTenant")
	defer span.End()

	unlockRoom := service.roomLocks.Lock(roomID.Hex())
	defer unlockRoom()
	unlockTenant := service.tenantLocks.Lock(tenantID.Hex())
	defer unlockTenant()

	room, err := service.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	tenant, err := service.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	elsewhere, err := service.rooms.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if elsewhere != nil {
		return nil, errs.DuplicateAssignment(errs.TenantAlreadyAssigned)
	}

	now := service.now()
	if err := room.AssignTenant(tenantID, rentAmount, depositAmount, now); err != nil {
		return nil, err
	}
	if err := service.rooms.Update(ctx, room); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	assigned := room.CurrentTenants[len(room.CurrentTenants)-1]
	tenant.Assign(domain.Assignment{
		RoomNumber:      room.RoomNumber,
		MonthlyRent:     assigned.RentAmount,
		SecurityDeposit: assigned.SecurityDeposit.Amount,
	}, now)

	if err := service.tenants.Update(ctx, tenant); err != nil {
		// Mirror write failed; undo the room side so neither store moves.
		service.compensateAssignment(ctx, roomID, tenantID, now)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	service.logger.WithFields(logrus.Fields{
		"room":   room.RoomNumber,
		"tenant": tenantID.Hex(),
	}).Info("tenant assigned")
	return room, nil
}

func (service *OccupancyService) compensateAssignment(ctx context.Context, roomID, tenantID primitive.ObjectID, moveIn time.Time) {
	room, err := service.rooms.Get(ctx, roomID)
	if err != nil {
		service.logger.WithError(err).Error("assignment rollback: room reload failed")
		return
	}
	room.RemoveTenancy(tenantID, moveIn)
	if err := service.rooms.Update(ctx, room); err != nil {
		service.logger.WithError(err).Error("assignment rollback: room update failed")
	}
}

// UnassignTenant closes the tenant's active tenancy in this exact room.
func (service *OccupancyService) UnassignTenant(ctx context.Context, roomID, tenantID primitive.ObjectID) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "OccupancyService.UnassignTenant")
	defer span.End()

	unlockRoom := service.roomLocks.Lock(roomID.Hex())
	defer unlockRoom()
	unlockTenant := service.tenantLocks.Lock(tenantID.Hex())
	defer unlockTenant()

	room, err := service.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	tenant, err := service.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := service.now()
	closed, err := room.UnassignTenant(tenantID, now)
	if err != nil {
		return nil, err
	}
	if err := service.rooms.Update(ctx, room); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tenant.Unassign(now)
	if err := service.tenants.Update(ctx, tenant); err != nil {
		service.compensateUnassignment(ctx, roomID, tenantID, closed.MoveInDate)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	service.logger.WithFields(logrus.Fields{
		"room":   room.RoomNumber,
		"tenant": tenantID.Hex(),
	}).Info("tenant unassigned")
	return room, nil
}

func (service *OccupancyService) compensateUnassignment(ctx context.Context, roomID, tenantID primitive.ObjectID, moveIn time.Time) {
	room, err := service.rooms.Get(ctx, roomID)
	if err != nil {
		service.logger.WithError(err).Error("unassignment rollback: room reload failed")
		return
	}
	room.RestoreTenancy(tenantID, moveIn)
	if err := service.rooms.Update(ctx, room); err != nil {
		service.logger.WithError(err).Error("unassignment rollback: room update failed")
	}
}

// UpdateSecurityDeposit merges updates into the tenancy's deposit sub-record
// and its rental-history twin.
func (service *OccupancyService) UpdateSecurityDeposit(ctx context.Context, roomID, tenantID primitive.ObjectID, update domain.DepositUpdate) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "OccupancyService.UpdateSecurityDeposit")
	defer span.End()

	unlock := service.roomLocks.Lock(roomID.Hex())
	defer unlock()

	room, err := service.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := room.UpdateDeposit(tenantID, update, service.now()); err != nil {
		return nil, err
	}
	if err := service.rooms.Update(ctx, room); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return room, nil
}

// AddSecurityDepositDeduction appends an itemized deduction to the tenant's
// deposit ledger in this room.
func (service *OccupancyService) AddSecurityDepositDeduction(ctx context.Context, roomID, tenantID primitive.ObjectID, reason string, amount float64) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "OccupancyService.AddSecurityDepositDeduction")
	defer span.End()

	unlock := service.roomLocks.Lock(roomID.Hex())
	defer unlock()

	room, err := service.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := room.AddDeduction(tenantID, reason, amount, service.now()); err != nil {
		return nil, err
	}
	if err := service.rooms.Update(ctx, room); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return room, nil
}
