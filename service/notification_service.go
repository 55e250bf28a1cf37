package application

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
)

var (
	smtpServer     = os.Getenv("SMTP_SERVER")
	smtpServerPort = os.Getenv("SMTP_PORT")
	smtpEmail      = os.Getenv("SMTP_AUTH_MAIL")
	smtpPassword   = os.Getenv("SMTP_AUTH_PASSWORD")
)

// NotificationService persists notifications and optionally mails them to the
// affected tenant. The occupancy and billing engines never call this
// directly; handlers trigger it after observing state changes.
type NotificationService struct {
	notifications domain.NotificationStore
	tenants       domain.TenantStore
	tracer        trace.Tracer
	logger        *logrus.Logger
}

func NewNotificationService(notifications domain.NotificationStore, tenants domain.TenantStore, tracer trace.Tracer, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		tenants:       tenants,
		tracer:        tracer,
		logger:        logger,
	}
}

func (service *NotificationService) CreateNotification(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	ctx, span := service.tracer.Start(ctx, "NotificationService.CreateNotification")
	defer span.End()

	notification.CreatedAt = time.Now()
	created, err := service.notifications.Insert(ctx, notification)
	if err != nil {
		return nil, err
	}

	// Email delivery is best effort; a dead SMTP relay must not fail the API
	// call that produced the notification.
	if !notification.TenantID.IsZero() {
		if err := service.email(ctx, created); err != nil {
			service.logger.WithError(err).Warn("notification email failed")
		}
	}
	return created, nil
}

func (service *NotificationService) email(ctx context.Context, notification *domain.Notification) error {
	if smtpServer == "" || smtpEmail == "" {
		return nil
	}
	tenant, err := service.tenants.Get(ctx, notification.TenantID)
	if err != nil {
		return err
	}

	port, err := strconv.Atoi(smtpServerPort)
	if err != nil {
		port = 587
	}

	message := gomail.NewMessage()
	message.SetHeader("From", smtpEmail)
	message.SetHeader("To", tenant.Email)
	message.SetHeader("Subject", notification.Title)
	message.SetBody("text/plain", notification.Description)

	dialer := gomail.NewDialer(smtpServer, port, smtpEmail, smtpPassword)
	return dialer.DialAndSend(message)
}

func (service *NotificationService) GetAllNotifications(ctx context.Context) ([]*domain.Notification, error) {
	ctx, span := service.tracer.Start(ctx, "NotificationService.GetAllNotifications")
	defer span.End()

	return service.notifications.GetAll(ctx)
}

func (service *NotificationService) GetNotificationsByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*domain.Notification, error) {
	ctx, span := service.tracer.Start(ctx, "NotificationService.GetNotificationsByTenant")
	defer span.End()

	return service.notifications.GetByTenant(ctx, tenantID)
}

func (service *NotificationService) MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "NotificationService.MarkNotificationRead")
	defer span.End()

	return service.notifications.MarkRead(ctx, id)
}
