package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TenantStore interface {
	Insert(ctx context.Context, tenant *Tenant) (*Tenant, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Tenant, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*Tenant, error)
	GetAll(ctx context.Context) ([]*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
