package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationStore interface {
	Insert(ctx context.Context, notification *Notification) (*Notification, error)
	GetAll(ctx context.Context) ([]*Notification, error)
	GetByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
}
