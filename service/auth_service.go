package application

import (
	"context"
	"os"
	"time"

	"github.com/cristalhq/jwt/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

const tokenTTL = 24 * time.Hour

type AuthService struct {
	store  domain.AuthStore
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewAuthService(store domain.AuthStore, tracer trace.Tracer, logger *logrus.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tracer: tracer,
		logger: logger,
	}
}

func (service *AuthService) Register(ctx context.Context, credentials *domain.Credentials) (*domain.Credentials, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if err := credentials.ValidateCredentials(); err != nil {
		return nil, errs.Validation(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credentials.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	credentials.Password = string(hashed)
	credentials.IsActive = true
	credentials.CreatedAt = time.Now()

	created, err := service.store.Register(ctx, credentials)
	if err != nil {
		return nil, err
	}
	created.Password = ""
	return created, nil
}

// Login verifies the password and issues a signed token carrying the user's
// role for the casbin middleware.
func (service *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	credentials, err := service.store.GetByUsername(ctx, username)
	if err != nil {
		return "", errs.Validation(errs.InvalidCredentials)
	}
	if !credentials.IsActive {
		return "", errs.Validation(errs.InvalidCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(credentials.Password), []byte(password)) != nil {
		return "", errs.Validation(errs.InvalidCredentials)
	}

	signer, err := jwt.NewSignerHS(jwt.HS256, jwtKey)
	if err != nil {
		return "", err
	}

	claims := map[string]string{
		"user_id":  credentials.ID.Hex(),
		"username": credentials.Username,
		"role":     string(credentials.Role),
		"exp":      time.Now().Add(tokenTTL).Format(time.RFC3339),
	}

	token, err := jwt.NewBuilder(signer).Build(claims)
	if err != nil {
		service.logger.WithError(err).Error("token build failed")
		return "", err
	}
	return token.String(), nil
}

func (service *AuthService) ChangePassword(ctx context.Context, id primitive.ObjectID, oldPassword, newPassword string) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	credentials, err := service.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(credentials.Password), []byte(oldPassword)) != nil {
		return errs.Validation(errs.InvalidCredentials)
	}
	if len(newPassword) < 8 {
		return errs.Validation("Password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return service.store.UpdatePassword(ctx, id, string(hashed))
}
