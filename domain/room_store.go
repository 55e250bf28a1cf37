package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoomStatistics is the read-only occupancy rollup served to dashboards.
type RoomStatistics struct {
	TotalRooms     int64   `json:"totalRooms"`
	Available      int64   `json:"available"`
	Occupied       int64   `json:"occupied"`
	Maintenance    int64   `json:"maintenance"`
	Reserved       int64   `json:"reserved"`
	Unavailable    int64   `json:"unavailable"`
	TotalCapacity  int64   `json:"totalCapacity"`
	TotalOccupants int64   `json:"totalOccupants"`
	OccupancyRate  float64 `json:"occupancyRate"`
}

type RoomStore interface {
	Insert(ctx context.Context, room *Room) (*Room, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Room, error)
	GetByNumber(ctx context.Context, roomNumber string) (*Room, error)
	GetAll(ctx context.Context) ([]*Room, error)
	// FindActiveByTenant returns the room holding an active tenancy for the
	// tenant, or nil when the tenant is unassigned.
	FindActiveByTenant(ctx context.Context, tenantID primitive.ObjectID) (*Room, error)
	// Update persists the aggregate with a compare-and-swap on its version
	// field and reports a conflict when another writer got there first.
	Update(ctx context.Context, room *Room) error
	GetStatistics(ctx context.Context) (*RoomStatistics, error)
	EnsureIndexes(ctx context.Context) error
}
