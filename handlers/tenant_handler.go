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

type TenantHandler struct {
	tenants  *application.TenantService
	validate *validator.Validate
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewTenantHandler(tenants *application.TenantService, tracer trace.Tracer, logger *logrus.Logger) *TenantHandler {
	return &TenantHandler{
		tenants:  tenants,
		validate: validator.New(),
		tracer:   tracer,
		logger:   logger,
	}
}

func (handler *TenantHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.HandleFunc("/", handler.GetAll).Methods("GET")
	router.HandleFunc("/", handler.Create).Methods("POST")
	router.HandleFunc("/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/{id}", handler.Delete).Methods("DELETE")
}

type tenantRequest struct {
	UserID           string                  `json:"userId"`
	FirstName        string                  `json:"firstName" validate:"required"`
	LastName         string                  `json:"lastName" validate:"required"`
	Email            string                  `json:"email" validate:"required,email"`
	Phone            string                  `json:"phone"`
	Address          string                  `json:"address"`
	IDType           string                  `json:"idType"`
	IDNumber         string                  `json:"idNumber"`
	EmergencyContact domain.EmergencyContact `json:"emergencyContact"`
}

func (body *tenantRequest) toTenant() (*domain.Tenant, error) {
	tenant := &domain.Tenant{
		FirstName:        body.FirstName,
		LastName:         body.LastName,
		Email:            body.Email,
		Phone:            body.Phone,
		Address:          body.Address,
		IDType:           body.IDType,
		IDNumber:         body.IDNumber,
		EmergencyContact: body.EmergencyContact,
	}
	if body.UserID != "" {
		userID, err := primitive.ObjectIDFromHex(body.UserID)
		if err != nil {
			return nil, err
		}
		tenant.UserID = userID
	}
	return tenant, nil
}

func (handler *TenantHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "TenantHandler.Create")
	defer span.End()

	var body tenantRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	tenant, err := body.toTenant()
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	created, err := handler.tenants.CreateTenant(ctx, tenant)
	if err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

func (handler *TenantHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "TenantHandler.Get")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	tenant, err := handler.tenants.GetTenant(ctx, id)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(tenant, writer)
}

func (handler *TenantHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "TenantHandler.GetAll")
	defer span.End()

	tenants, err := handler.tenants.GetAllTenants(ctx)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(tenants, writer)
}

func (handler *TenantHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "TenantHandler.Update")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body tenantRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}
	tenant, err := body.toTenant()
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	tenant.ID = id

	updated, err := handler.tenants.UpdateTenant(ctx, tenant)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(updated, writer)
}

func (handler *TenantHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "TenantHandler.Delete")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.tenants.DeleteTenant(ctx, id); err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}
