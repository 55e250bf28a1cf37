package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

type TenantService struct {
	tenants domain.TenantStore
	rooms   domain.RoomStore
	tracer  trace.Tracer
	logger  *logrus.Logger
	now     func() time.Time
}

func NewTenantService(tenants domain.TenantStore, rooms domain.RoomStore, tracer trace.Tracer, logger *logrus.Logger) *TenantService {
	return &TenantService{
		tenants: tenants,
		rooms:   rooms,
		tracer:  tracer,
		logger:  logger,
		now:     time.Now,
	}
}

func (service *TenantService) CreateTenant(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	ctx, span := service.tracer.Start(ctx, "TenantService.CreateTenant")
	defer span.End()

	if tenant.FirstName == "" || tenant.LastName == "" {
		return nil, errs.Validation("Tenant name cannot be empty")
	}
	if tenant.Email == "" {
		return nil, errs.Validation("Tenant email cannot be empty")
	}
	now := service.now()
	tenant.TenantStatus = domain.TenantPending
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	return service.tenants.Insert(ctx, tenant)
}

func (service *TenantService) GetTenant(ctx context.Context, id primitive.ObjectID) (*domain.Tenant, error) {
	ctx, span := service.tracer.Start(ctx, "TenantService.GetTenant")
	defer span.End()

	return service.tenants.Get(ctx, id)
}

func (service *TenantService) GetAllTenants(ctx context.Context) ([]*domain.Tenant, error) {
	ctx, span := service.tracer.Start(ctx, "TenantService.GetAllTenants")
	defer span.End()

	return service.tenants.GetAll(ctx)
}

// UpdateTenant edits profile fields. The room pointer and rent snapshot are
// occupancy-service territory and are preserved as stored.
func (service *TenantService) UpdateTenant(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	ctx, span := service.tracer.Start(ctx, "TenantService.UpdateTenant")
	defer span.End()

	stored, err := service.tenants.Get(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	tenant.RoomNumber = stored.RoomNumber
	tenant.MonthlyRent = stored.MonthlyRent
	tenant.SecurityDeposit = stored.SecurityDeposit
	tenant.TenantStatus = stored.TenantStatus
	tenant.CreatedAt = stored.CreatedAt
	tenant.UpdatedAt = service.now()

	if err := service.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// DeleteTenant removes a tenant who holds no active tenancy.
func (service *TenantService) DeleteTenant(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "TenantService.DeleteTenant")
	defer span.End()

	room, err := service.rooms.FindActiveByTenant(ctx, id)
	if err != nil {
		return err
	}
	if room != nil {
		return errs.InvalidStateTransition("Tenant with an active tenancy cannot be deleted")
	}
	return service.tenants.Delete(ctx, id)
}
