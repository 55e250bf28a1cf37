package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TenantStatus string

const (
	TenantActive     TenantStatus = "active"
	TenantInactive   TenantStatus = "inactive"
	TenantPending    TenantStatus = "pending"
	TenantTerminated TenantStatus = "terminated"
)

// Tenant holds the profile of a boarder. RoomNumber, MonthlyRent and
// SecurityDeposit are denormalized snapshots of the tenant's active tenancy;
// only the occupancy service writes them, mirroring the room document.
type Tenant struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address          string             `bson:"address,omitempty" json:"address,omitempty"`
	IDType           string             `bson:"idType,omitempty" json:"idType,omitempty"`
	IDNumber         string             `bson:"idNumber,omitempty" json:"idNumber,omitempty"`
	EmergencyContact EmergencyContact   `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	RoomNumber       *string            `bson:"roomNumber,omitempty" json:"roomNumber,omitempty"`
	MonthlyRent      float64            `bson:"monthlyRent,omitempty" json:"monthlyRent,omitempty"`
	SecurityDeposit  float64            `bson:"securityDeposit,omitempty" json:"securityDeposit,omitempty"`
	TenantStatus     TenantStatus       `bson:"tenantStatus" json:"tenantStatus"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type EmergencyContact struct {
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relation string `bson:"relation,omitempty" json:"relation,omitempty"`
}

// Assignment is the tenant-side projection written when a tenancy opens.
type Assignment struct {
	RoomNumber      string
	MonthlyRent     float64
	SecurityDeposit float64
}

func (tenant *Tenant) Assign(assignment Assignment, now time.Time) {
	roomNumber := assignment.RoomNumber
	tenant.RoomNumber = &roomNumber
	tenant.MonthlyRent = assignment.MonthlyRent
	tenant.SecurityDeposit = assignment.SecurityDeposit
	tenant.TenantStatus = TenantActive
	tenant.UpdatedAt = now
}

func (tenant *Tenant) Unassign(now time.Time) {
	tenant.RoomNumber = nil
	tenant.MonthlyRent = 0
	tenant.SecurityDeposit = 0
	tenant.TenantStatus = TenantInactive
	tenant.UpdatedAt = now
}
