package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

const ROOMS_COLLECTION = "rooms"

type RoomMongoDBStore struct {
	rooms  *mongo.Collection
	tracer trace.Tracer
}

func NewRoomMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.RoomStore {
	rooms := client.Database(DATABASE).Collection(ROOMS_COLLECTION)
	return &RoomMongoDBStore{
		rooms:  rooms,
		tracer: tracer,
	}
}

func (store *RoomMongoDBStore) EnsureIndexes(ctx context.Context) error {
	ctx, span := store.tracer.Start(ctx, "RoomStore.EnsureIndexes")
	defer span.End()

	_, err := store.rooms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (store *RoomMongoDBStore) Insert(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	ctx, span := store.tracer.Start(ctx, "RoomStore.Insert")
	defer span.End()

	room.ID = primitive.NewObjectID()
	room.Version = 1
	if room.CurrentTenants == nil {
		room.CurrentTenants = []domain.Tenancy{}
	}
	if room.RentalHistory == nil {
		room.RentalHistory = []domain.Tenancy{}
	}
	result, err := store.rooms.InsertOne(ctx, room)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.Validation("Room number already exists")
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	room.ID = result.InsertedID.(primitive.ObjectID)
	return room, nil
}

func (store *RoomMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Room, error) {
	ctx, span := store.tracer.Start(ctx, "RoomStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *RoomMongoDBStore) GetByNumber(ctx context.Context, roomNumber string) (*domain.Room, error) {
	ctx, span := store.tracer.Start(ctx, "RoomStore.GetByNumber")
	defer span.End()

	return store.filterOne(ctx, bson.M{"roomNumber": roomNumber})
}

func (store *RoomMongoDBStore) GetAll(ctx context.Context) ([]*domain.Room, error) {
	ctx, span := store.tracer.Start(ctx, "RoomStore.GetAll")
	defer span.End()

	return store.filter(ctx, bson.M{"isActive": true})
}

func (store *RoomMongoDBStore) FindActiveByTenant(ctx context.Context, tenantID primitive.ObjectID) (*domain.Room, error) {
	ctx, span := store.tracer.Start(ctx, "RoomStore.FindActiveByTenant")
	defer span.End()

	filter := bson.M{
		"currentTenants": bson.M{
			"$elemMatch": bson.M{"tenantId": tenantID, "isActive": true},
		},
	}
	room, err := store.filterOne(ctx, filter)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// Update replaces the aggregate guarded by a compare-and-swap on the version
// field. A lost race surfaces as a Conflict, never as silent data loss.
func (store *RoomMongoDBStore) Update(ctx context.Context, room *domain.Room) error {
	ctx, span := store.tracer.Start(ctx, "RoomStore.Update")
	defer span.End()

	previousVersion := room.Version
	room.Version++
	result, err := store.rooms.ReplaceOne(ctx, bson.M{"_id": room.ID, "version": previousVersion}, room)
	if err != nil {
		room.Version = previousVersion
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		room.Version = previousVersion
		return errs.Conflict("Room was modified concurrently")
	}
	return nil
}

type roomStatsRow struct {
	TotalRooms     int64 `bson:"totalRooms"`
	Available      int64 `bson:"available"`
	Occupied       int64 `bson:"occupied"`
	Maintenance    int64 `bson:"maintenance"`
	Reserved       int64 `bson:"reserved"`
	Unavailable    int64 `bson:"unavailable"`
	TotalCapacity  int64 `bson:"totalCapacity"`
	TotalOccupants int64 `bson:"totalOccupants"`
}

func statusCount(status domain.RoomStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, 1, 0}}}
}

func (store *RoomMongoDBStore) GetStatistics(ctx context.Context) (*domain.RoomStatistics, error) {
	ctx, span := store.tracer.Start(ctx, "RoomStore.GetStatistics")
	defer span.End()

	activeTenantCount := bson.M{"$size": bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$currentTenants", bson.A{}}},
		"as":    "tenancy",
		"cond":  "$$tenancy.isActive",
	}}}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"isActive": true}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"totalRooms":     bson.M{"$sum": 1},
			"available":      statusCount(domain.RoomAvailable),
			"occupied":       statusCount(domain.RoomOccupied),
			"maintenance":    statusCount(domain.RoomMaintenance),
			"reserved":       statusCount(domain.RoomReserved),
			"unavailable":    statusCount(domain.RoomUnavailable),
			"totalCapacity":  bson.M{"$sum": "$capacity"},
			"totalOccupants": bson.M{"$sum": activeTenantCount},
		}}},
	}

	cursor, err := store.rooms.Aggregate(ctx, pipeline)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := &domain.RoomStatistics{}
	if cursor.Next(ctx) {
		var row roomStatsRow
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		stats.TotalRooms = row.TotalRooms
		stats.Available = row.Available
		stats.Occupied = row.Occupied
		stats.Maintenance = row.Maintenance
		stats.Reserved = row.Reserved
		stats.Unavailable = row.Unavailable
		stats.TotalCapacity = row.TotalCapacity
		stats.TotalOccupants = row.TotalOccupants
		if row.TotalCapacity > 0 {
			stats.OccupancyRate = float64(row.TotalOccupants) / float64(row.TotalCapacity)
		}
	}
	return stats, cursor.Err()
}

func (store *RoomMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Room, error) {
	cursor, err := store.rooms.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeRooms(ctx, cursor)
}

func (store *RoomMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Room, error) {
	result := store.rooms.FindOne(ctx, filter)
	var room domain.Room
	err := result.Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound(errs.RoomNotFound)
		}
		return nil, err
	}
	return &room, nil
}

func decodeRooms(ctx context.Context, cursor *mongo.Cursor) (rooms []*domain.Room, err error) {
	for cursor.Next(ctx) {
		var room domain.Room
		err = cursor.Decode(&room)
		if err != nil {
			return
		}
		rooms = append(rooms, &room)
	}
	err = cursor.Err()
	return
}
