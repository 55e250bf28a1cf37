package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
	application "github.com/JustinVillacorta/boardingHouse-repo-sub000/service"
)

type AuthHandler struct {
	auth   *application.AuthService
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, tracer trace.Tracer, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		tracer: tracer,
		logger: logger,
	}
}

func (handler *AuthHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.HandleFunc("/register", handler.Register).Methods("POST")
	router.HandleFunc("/login", handler.Login).Methods("POST")
	router.HandleFunc("/{id}/password", handler.ChangePassword).Methods("POST")
}

func (handler *AuthHandler) Register(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Register")
	defer span.End()

	var credentials domain.Credentials
	if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	created, err := handler.auth.Register(ctx, &credentials)
	if err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	jsonResponse(created, writer)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (handler *AuthHandler) Login(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Login")
	defer span.End()

	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	token, err := handler.auth.Login(ctx, body.Username, body.Password)
	if err != nil {
		handler.logger.WithField("username", body.Username).Warn("failed login attempt")
		http.Error(writer, errs.InvalidCredentials, http.StatusUnauthorized)
		return
	}
	jsonResponse(map[string]string{"token": token}, writer)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (handler *AuthHandler) ChangePassword(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.ChangePassword")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}
	var body changePasswordRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, errs.InvalidRequestFormat, http.StatusBadRequest)
		return
	}

	if err := handler.auth.ChangePassword(ctx, id, body.OldPassword, body.NewPassword); err != nil {
		writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusOK)
}
