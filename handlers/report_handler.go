package handlers

import (
	"encoding/json"
	"fmt"
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

type ReportHandler struct {
	reports       *application.ReportService
	notifications *application.NotificationService
	validate      *validator.Validate
	tracer        trace.Tracer
	logger        *logrus.Logger
}

func NewReportHandler(reports *application.ReportService, notifications *application.NotificationService, tracer trace.Tracer, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		reports:       reports,
		notifications: notifications,
		validate:      validator.New(),
		tracer:        tracer,
		logger:        logger,
	}
}

func (handler *ReportHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.HandleFunc("/", handler.GetAll).Methods("GET")
	router.HandleFunc("/", handler.Create).Methods("POST")
	router.HandleFunc("/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/{id}/status", handler.UpdateStatus).Methods("PATCH")
	router.HandleFunc("/tenant/{tenantId}", handler.GetByTenant).Methods("GET")
}

type createReportRequest struct {
	TenantID    string `json:"tenantId" validate:"required"`
	RoomID      string `json:"roomId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (handler *ReportHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReportHandler.Create")
	defer span.End()

	var body createReportRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	tenantID, err := primitive.ObjectIDFromHex(body.TenantID)
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	roomID, err := primitive.ObjectIDFromHex(body.RoomID)
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	report := &domain.MaintenanceReport{
		TenantID:    tenantID,
		RoomID:      roomID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    domain.ReportPriority(body.Priority),
	}
	created, err := handler.reports.CreateReport(ctx, report)
	if err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

func (handler *ReportHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReportHandler.Get")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	report, err := handler.reports.GetReport(ctx, id)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(report, writer)
}

func (handler *ReportHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReportHandler.GetAll")
	defer span.End()

	reports, err := handler.reports.GetAllReports(ctx)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(reports, writer)
}

func (handler *ReportHandler) GetByTenant(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReportHandler.GetByTenant")
	defer span.End()

	tenantID, err := primitive.ObjectIDFromHex(mux.Vars(req)["tenantId"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	reports, err := handler.reports.GetReportsByTenant(ctx, tenantID)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(reports, writer)
}

type updateReportStatusRequest struct {
	Status     string `json:"status" validate:"required"`
	AdminNotes string `json:"adminNotes"`
}

func (handler *ReportHandler) UpdateStatus(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReportHandler.UpdateStatus")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body updateReportStatusRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	report, err := handler.reports.UpdateReportStatus(ctx, id, domain.ReportStatus(body.Status), body.AdminNotes)
	if err != nil {
		writeError(writer, err)
		return
	}

	// Billing/occupancy never notify; state-change observers like this
	// handler do.
	_, err = handler.notifications.CreateNotification(ctx, &domain.Notification{
		TenantID:    report.TenantID,
		Type:        domain.NotificationReportUpdate,
		Title:       fmt.Sprintf("Report '%s' is now %s", report.Title, report.Status),
		Description: report.AdminNotes,
	})
	if err != nil {
		handler.logger.WithError(err).Warn("report status notification failed")
	}

	jsonResponse(report, writer)
}
