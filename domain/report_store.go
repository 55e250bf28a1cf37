package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportStore interface {
	Insert(ctx context.Context, report *MaintenanceReport) (*MaintenanceReport, error)
	Get(ctx context.Context, id primitive.ObjectID) (*MaintenanceReport, error)
	GetAll(ctx context.Context) ([]*MaintenanceReport, error)
	GetByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*MaintenanceReport, error)
	Update(ctx context.Context, report *MaintenanceReport) error
}
