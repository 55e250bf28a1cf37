package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/cache"
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
)

// RoomService covers administrative room management. Occupancy mutations are
// the occupancy service's job; nothing here touches tenancies.
type RoomService struct {
	rooms  domain.RoomStore
	stats  *cache.StatsCache
	tracer trace.Tracer
	logger *logrus.Logger
	now    func() time.Time
}

func NewRoomService(rooms domain.RoomStore, stats *cache.StatsCache, tracer trace.Tracer, logger *logrus.Logger) *RoomService {
	return &RoomService{
		rooms:  rooms,
		stats:  stats,
		tracer: tracer,
		logger: logger,
		now:    time.Now,
	}
}

func (service *RoomService) CreateRoom(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "RoomService.CreateRoom")
	defer span.End()

	if room.Status == "" {
		room.Status = domain.RoomAvailable
	}
	room.IsActive = true
	if err := room.Validate(); err != nil {
		return nil, err
	}
	now := service.now()
	room.CreatedAt = now
	room.UpdatedAt = now

	created, err := service.rooms.Insert(ctx, room)
	if err != nil {
		return nil, err
	}
	service.invalidateStats(ctx)
	service.logger.WithField("room", created.RoomNumber).Info("room created")
	return created, nil
}

func (service *RoomService) GetRoom(ctx context.Context, id primitive.ObjectID) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "RoomService.GetRoom")
	defer span.End()

	return service.rooms.Get(ctx, id)
}

func (service *RoomService) GetRoomByNumber(ctx context.Context, roomNumber string) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "RoomService.GetRoomByNumber")
	defer span.End()

	return service.rooms.GetByNumber(ctx, roomNumber)
}

func (service *RoomService) GetAllRooms(ctx context.Context) ([]*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "RoomService.GetAllRooms")
	defer span.End()

	return service.rooms.GetAll(ctx)
}

// ChangeRoomStatus applies a manual maintenance/reserved/unavailable/available
// change through the aggregate's validation.
func (service *RoomService) ChangeRoomStatus(ctx context.Context, id primitive.ObjectID, status domain.RoomStatus) (*domain.Room, error) {
	ctx, span := service.tracer.Start(ctx, "RoomService.ChangeRoomStatus")
	defer span.End()

	room, err := service.rooms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := room.ChangeStatus(status, service.now()); err != nil {
		return nil, err
	}
	if err := service.rooms.Update(ctx, room); err != nil {
		return nil, err
	}
	service.invalidateStats(ctx)
	return room, nil
}

// DeleteRoom soft-deletes an empty room.
func (service *RoomService) DeleteRoom(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "RoomService.DeleteRoom")
	defer span.End()

	room, err := service.rooms.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := room.SoftDelete(service.now()); err != nil {
		return err
	}
	if err := service.rooms.Update(ctx, room); err != nil {
		return err
	}
	service.invalidateStats(ctx)
	return nil
}

func (service *RoomService) GetRoomStatistics(ctx context.Context) (*domain.RoomStatistics, error) {
	ctx, span := service.tracer.Start(ctx, "RoomService.GetRoomStatistics")
	defer span.End()

	if service.stats != nil {
		var cached domain.RoomStatistics
		if service.stats.Get(ctx, roomStatsKey, &cached) {
			return &cached, nil
		}
	}

	stats, err := service.rooms.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}
	if service.stats != nil {
		service.stats.Set(ctx, roomStatsKey, stats)
	}
	return stats, nil
}

func (service *RoomService) invalidateStats(ctx context.Context) {
	if service.stats != nil {
		service.stats.Invalidate(ctx, roomStatsKey)
	}
}
