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

type RoomHandler struct {
	rooms     *application.RoomService
	occupancy *application.OccupancyService
	validate  *validator.Validate
	tracer    trace.Tracer
	logger    *logrus.Logger
}

func NewRoomHandler(rooms *application.RoomService, occupancy *application.OccupancyService, tracer trace.Tracer, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:     rooms,
		occupancy: occupancy,
		validate:  validator.New(),
		tracer:    tracer,
		logger:    logger,
	}
}

func (handler *RoomHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.HandleFunc("/statistics", handler.GetStatistics).Methods("GET")
	router.HandleFunc("/", handler.GetAll).Methods("GET")
	router.HandleFunc("/", handler.Create).Methods("POST")
	router.HandleFunc("/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/{id}", handler.Delete).Methods("DELETE")
	router.HandleFunc("/{id}/status", handler.ChangeStatus).Methods("PATCH")
	router.HandleFunc("/{id}/tenants", handler.AssignTenant).Methods("POST")
	router.HandleFunc("/{id}/tenants/{tenantId}", handler.UnassignTenant).Methods("DELETE")
	router.HandleFunc("/{id}/tenants/{tenantId}/deposit", handler.UpdateDeposit).Methods("PATCH")
	router.HandleFunc("/{id}/tenants/{tenantId}/deposit/deductions", handler.AddDeduction).Methods("POST")
}

type createRoomRequest struct {
	RoomNumber      string  `json:"roomNumber" validate:"required"`
	RoomType        string  `json:"roomType" validate:"required"`
	Capacity        int     `json:"capacity" validate:"required,min=1,max=10"`
	MonthlyRent     float64 `json:"monthlyRent" validate:"gte=0"`
	SecurityDeposit float64 `json:"securityDeposit" validate:"gte=0"`
	Description     string  `json:"description"`
}

func (handler *RoomHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.Create")
	defer span.End()

	var body createRoomRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	room := &domain.Room{
		RoomNumber:      body.RoomNumber,
		RoomType:        domain.RoomType(body.RoomType),
		Capacity:        body.Capacity,
		MonthlyRent:     body.MonthlyRent,
		SecurityDeposit: body.SecurityDeposit,
		Description:     body.Description,
	}
	created, err := handler.rooms.CreateRoom(ctx, room)
	if err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

func (handler *RoomHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.Get")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	room, err := handler.rooms.GetRoom(ctx, id)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(room, writer)
}

func (handler *RoomHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.GetAll")
	defer span.End()

	rooms, err := handler.rooms.GetAllRooms(ctx)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(rooms, writer)
}

func (handler *RoomHandler) GetStatistics(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.GetStatistics")
	defer span.End()

	stats, err := handler.rooms.GetRoomStatistics(ctx)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(stats, writer)
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (handler *RoomHandler) ChangeStatus(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.ChangeStatus")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body changeStatusRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	room, err := handler.rooms.ChangeRoomStatus(ctx, id, domain.RoomStatus(body.Status))
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(room, writer)
}

func (handler *RoomHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.Delete")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.rooms.DeleteRoom(ctx, id); err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

type assignTenantRequest struct {
	TenantID        string  `json:"tenantId" validate:"required"`
	RentAmount      float64 `json:"rentAmount" validate:"gte=0"`
	SecurityDeposit float64 `json:"securityDeposit" validate:"gte=0"`
}

func (handler *RoomHandler) AssignTenant(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.AssignTenant")
	defer span.End()

	roomID, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body assignTenantRequest
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

	room, err := handler.occupancy.AssignTenant(ctx, roomID, tenantID, body.RentAmount, body.SecurityDeposit)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(room, writer)
}

func (handler *RoomHandler) UnassignTenant(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.UnassignTenant")
	defer span.End()

	vars := mux.Vars(req)
	roomID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	tenantID, err := primitive.ObjectIDFromHex(vars["tenantId"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	room, err := handler.occupancy.UnassignTenant(ctx, roomID, tenantID)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(room, writer)
}

func (handler *RoomHandler) UpdateDeposit(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.UpdateDeposit")
	defer span.End()

	vars := mux.Vars(req)
	roomID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	tenantID, err := primitive.ObjectIDFromHex(vars["tenantId"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var update domain.DepositUpdate
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	room, err := handler.occupancy.UpdateSecurityDeposit(ctx, roomID, tenantID, update)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(room, writer)
}

type deductionRequest struct {
	Reason string  `json:"reason" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

func (handler *RoomHandler) AddDeduction(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "RoomHandler.AddDeduction")
	defer span.End()

	vars := mux.Vars(req)
	roomID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	tenantID, err := primitive.ObjectIDFromHex(vars["tenantId"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body deductionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	if err := handler.validate.Struct(body); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	room, err := handler.occupancy.AddSecurityDepositDeduction(ctx, roomID, tenantID, body.Reason, body.Amount)
	if err != nil {
		writeError(writer, err)
		return
	}
	jsonResponse(room, writer)
}
