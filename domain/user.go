package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleAdmin  UserRole = "Admin"
	RoleStaff  UserRole = "Staff"
	RoleTenant UserRole = "Tenant"
)

// Credentials is the login record behind every staff and tenant account.
type Credentials struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username" validate:"required,min=4,max=30,alphanumunicode"`
	Password  string             `bson:"password" json:"password,omitempty" validate:"required,min=8"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Role      UserRole           `bson:"role" json:"role" validate:"required,oneof=Admin Staff Tenant"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

func (credentials *Credentials) ValidateCredentials() error {
	validate := validator.New()
	return validate.Struct(credentials)
}
