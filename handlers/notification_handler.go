package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
	application "github.com/JustinVillacorta/boardingHouse-repo-sub000/service"
)

type NotificationHandler struct {
	notifications *application.NotificationService
	validate      *validator.Validate
	tracer        trace.Tracer
	logger        *logrus.Logger
}

func NewNotificationHandler(notifications *application.NotificationService, tracer trace.Tracer, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		validate:      validator.New(),
		tracer:        tracer,
		logger:        logger,
	}
}

func (handler *NotificationHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.HandleFunc("/", handler.GetAll).Methods("GET")
	router.HandleFunc("/", handler.Create).Methods("POST")
	router.HandleFunc("/tenant/{tenantId}", handler.GetByTenant).Methods("GET")
	router.HandleFunc("/{id}/read", handler.MarkRead).Methods("POST")
}

type createNotificationRequest struct {
	TenantID    string `json:"tenantId"`
	Type        string `json:"type" validate:"required,oneof=payment_due report_update announcement"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (handler *NotificationHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "NotificationHandler.Create")
	defer span.End()

	var body createNotificationRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	notification := &domain.Notification{
		Type:        domain.NotificationType(body.Type),
		Title:       body.Title,
		Description: body.Description,
	}
	if body.TenantID != "" {
		tenantID, err := primitive.ObjectIDFromHex(body.TenantID)
		if err != nil {
			http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
			return
		}
		notification.TenantID = tenantID
	}

	created, err := handler.notifications.CreateNotification(ctx, notification)
	if err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

func (handler *NotificationHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "NotificationHandler.GetAll")
	defer span.End()

	notifications, err := handler.notifications.GetAllNotifications(ctx)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(notifications, writer)
}

func (handler *NotificationHandler) GetByTenant(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "NotificationHandler.GetByTenant")
	defer span.End()

	tenantID, err := primitive.ObjectIDFromHex(mux.Vars(req)["tenantId"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	notifications, err := handler.notifications.GetNotificationsByTenant(ctx, tenantID)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(notifications, writer)
}

func (handler *NotificationHandler) MarkRead(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "NotificationHandler.MarkRead")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.notifications.MarkNotificationRead(ctx, id); err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusOK)
}
