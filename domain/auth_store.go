package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthStore interface {
	Register(ctx context.Context, credentials *Credentials) (*Credentials, error)
	GetByUsername(ctx context.Context, username string) (*Credentials, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Credentials, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hashed string) error
}
