package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
	application "github.com/JustinVillacorta/boardingHouse-repo-sub000/service"
)

type PaymentHandler struct {
	billing  *application.BillingService
	validate *validator.Validate
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewPaymentHandler(billing *application.BillingService, tracer trace.Tracer, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		billing:  billing,
		validate: validator.New(),
		tracer:   tracer,
		logger:   logger,
	}
}

func (handler *PaymentHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.HandleFunc("/statistics", handler.GetStatistics).Methods("GET")
	router.HandleFunc("/sweep", handler.RunOverdueSweep).Methods("POST")
	router.HandleFunc("/late-fees", handler.ApplyLateFees).Methods("POST")
	router.HandleFunc("/", handler.GetAll).Methods("GET")
	router.HandleFunc("/", handler.Create).Methods("POST")
	router.HandleFunc("/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/{id}", handler.Delete).Methods("DELETE")
	router.HandleFunc("/{id}/complete", handler.MarkCompleted).Methods("POST")
	router.HandleFunc("/{id}/refund", handler.Refund).Methods("POST")
	router.HandleFunc("/{id}/receipt", handler.GetReceipt).Methods("GET")
}

type periodCoveredRequest struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type createPaymentRequest struct {
	TenantID      string                `json:"tenantId" validate:"required"`
	RoomID        string                `json:"roomId" validate:"required"`
	Amount        float64               `json:"amount" validate:"gte=0"`
	PaymentType   string                `json:"paymentType" validate:"required"`
	PaymentMethod string                `json:"paymentMethod" validate:"required"`
	DueDate       time.Time             `json:"dueDate" validate:"required"`
	Status        string                `json:"status"`
	PaymentDate   *time.Time            `json:"paymentDate,omitempty"`
	PeriodCovered *periodCoveredRequest `json:"periodCovered,omitempty"`
	Notes         string                `json:"notes"`
}

func (handler *PaymentHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.Create")
	defer span.End()

	var body createPaymentRequest
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

	payment := &domain.Payment{
		TenantID:      tenantID,
		RoomID:        roomID,
		Amount:        body.Amount,
		PaymentType:   domain.PaymentType(body.PaymentType),
		PaymentMethod: domain.PaymentMethod(body.PaymentMethod),
		DueDate:       body.DueDate,
		Status:        domain.PaymentStatus(body.Status),
		PaymentDate:   body.PaymentDate,
		Notes:         body.Notes,
	}
	if body.PeriodCovered != nil {
		payment.PeriodCovered = &domain.PeriodCovered{
			StartDate: body.PeriodCovered.StartDate,
			EndDate:   body.PeriodCovered.EndDate,
		}
	}

	created, err := handler.billing.CreatePayment(ctx, payment, usernameFromRequest(req))
	if err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

func (handler *PaymentHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.Get")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	payment, err := handler.billing.GetPayment(ctx, id)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(payment, writer)
}

func (handler *PaymentHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.GetAll")
	defer span.End()

	filter := domain.PaymentFilter{}
	query := req.URL.Query()
	if raw := query.Get("tenantId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
			return
		}
		filter.TenantID = &id
	}
	if raw := query.Get("roomId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
			return
		}
		filter.RoomID = &id
	}
	filter.Status = domain.PaymentStatus(query.Get("status"))
	filter.PaymentType = domain.PaymentType(query.Get("type"))

	payments, err := handler.billing.GetAllPayments(ctx, filter)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(payments, writer)
}

func (handler *PaymentHandler) MarkCompleted(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.MarkCompleted")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	payment, err := handler.billing.MarkPaymentCompleted(ctx, id, usernameFromRequest(req))
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(payment, writer)
}

type updatePaymentRequest struct {
	Amount        *float64              `json:"amount,omitempty" validate:"omitempty,gte=0"`
	PaymentMethod *string               `json:"paymentMethod,omitempty"`
	DueDate       *time.Time            `json:"dueDate,omitempty"`
	PeriodCovered *periodCoveredRequest `json:"periodCovered,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
}

func (handler *PaymentHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.Update")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body updatePaymentRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	update := domain.PaymentUpdate{
		Amount:  body.Amount,
		DueDate: body.DueDate,
		Notes:   body.Notes,
	}
	if body.PaymentMethod != nil {
		method := domain.PaymentMethod(*body.PaymentMethod)
		update.PaymentMethod = &method
	}
	if body.PeriodCovered != nil {
		update.PeriodCovered = &domain.PeriodCovered{
			StartDate: body.PeriodCovered.StartDate,
			EndDate:   body.PeriodCovered.EndDate,
		}
	}

	payment, err := handler.billing.UpdatePayment(ctx, id, update)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(payment, writer)
}

type refundRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Reason string  `json:"reason"`
}

func (handler *PaymentHandler) Refund(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.Refund")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body refundRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	payment, err := handler.billing.ProcessRefund(ctx, id, body.Amount, body.Reason, usernameFromRequest(req))
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(payment, writer)
}

func (handler *PaymentHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.Delete")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.billing.DeletePayment(ctx, id); err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

func (handler *PaymentHandler) RunOverdueSweep(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.RunOverdueSweep")
	defer span.End()

	result, err := handler.billing.UpdateOverduePayments(ctx)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(result, writer)
}

type lateFeeRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

func (handler *PaymentHandler) ApplyLateFees(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.ApplyLateFees")
	defer span.End()

	var body lateFeeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	applied, err := handler.billing.ApplyLateFees(ctx, body.Amount)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(map[string]int{"applied": applied}, writer)
}

func (handler *PaymentHandler) GetStatistics(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.GetStatistics")
	defer span.End()

	stats, err := handler.billing.GetPaymentStatistics(ctx, domain.PaymentFilter{})
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(stats, writer)
}

func (handler *PaymentHandler) GetReceipt(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PaymentHandler.GetReceipt")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	document, err := handler.billing.GetReceipt(ctx, id)
	if err != nil {
		writeError(writer, err)
		return
	}
	writer.Header().Set("Content-Type", "application/pdf")
	writer.Write(document)
}
