package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
)

type ReportService struct {
	reports domain.ReportStore
	tenants domain.TenantStore
	rooms   domain.RoomStore
	tracer  trace.Tracer
	logger  *logrus.Logger
	now     func() time.Time
}

func NewReportService(reports domain.ReportStore, tenants domain.TenantStore, rooms domain.RoomStore, tracer trace.Tracer, logger *logrus.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		tenants: tenants,
		rooms:   rooms,
		tracer:  tracer,
		logger:  logger,
		now:     time.Now,
	}
}

func (service *ReportService) CreateReport(ctx context.Context, report *domain.MaintenanceReport) (*domain.MaintenanceReport, error) {
	ctx, span := service.tracer.Start(ctx, "ReportService.CreateReport")
	defer span.End()

	if err := report.Validate(); err != nil {
		return nil, err
	}
	if _, err := service.tenants.Get(ctx, report.TenantID); err != nil {
		return nil, err
	}
	if _, err := service.rooms.Get(ctx, report.RoomID); err != nil {
		return nil, err
	}

	now := service.now()
	report.Status = domain.ReportPending
	if report.Priority == "" {
		report.Priority = domain.PriorityMedium
	}
	report.CreatedAt = now
	report.UpdatedAt = now
	return service.reports.Insert(ctx, report)
}

func (service *ReportService) GetReport(ctx context.Context, id primitive.ObjectID) (*domain.MaintenanceReport, error) {
	ctx, span := service.tracer.Start(ctx, "ReportService.GetReport")
	defer span.End()

	return service.reports.Get(ctx, id)
}

func (service *ReportService) GetAllReports(ctx context.Context) ([]*domain.MaintenanceReport, error) {
	ctx, span := service.tracer.Start(ctx, "ReportService.GetAllReports")
	defer span.End()

	return service.reports.GetAll(ctx)
}

func (service *ReportService) GetReportsByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*domain.MaintenanceReport, error) {
	ctx, span := service.tracer.Start(ctx, "ReportService.GetReportsByTenant")
	defer span.End()

	return service.reports.GetByTenant(ctx, tenantID)
}

// UpdateReportStatus advances a report through its lifecycle and records the
// admin's notes.
func (service *ReportService) UpdateReportStatus(ctx context.Context, id primitive.ObjectID, status domain.ReportStatus, adminNotes string) (*domain.MaintenanceReport, error) {
	ctx, span := service.tracer.Start(ctx, "ReportService.UpdateReportStatus")
	defer span.End()

	report, err := service.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := report.Transition(status, service.now()); err != nil {
		return nil, err
	}
	if adminNotes != "" {
		report.AdminNotes = adminNotes
	}
	if err := service.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	service.logger.WithFields(logrus.Fields{
		"report": id.Hex(),
		"status": status,
	}).Info("report status updated")
	return report, nil
}
