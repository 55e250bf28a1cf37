package domain

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeTriple RoomType = "triple"
	RoomTypeQuad   RoomType = "quad"
	RoomTypeSuite  RoomType = "suite"
	RoomTypeStudio RoomType = "studio"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomReserved    RoomStatus = "reserved"
	RoomUnavailable RoomStatus = "unavailable"
)

type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositPaid      DepositStatus = "paid"
	DepositRefunded  DepositStatus = "refunded"
	DepositForfeited DepositStatus = "forfeited"
)

const (
	MinCapacity = 1
	MaxCapacity = 10
)

type Deduction struct {
	Reason string    `bson:"reason" json:"reason"`
	Amount float64   `bson:"amount" json:"amount"`
	Date   time.Time `bson:"date" json:"date"`
}

type SecurityDeposit struct {
	Amount       float64       `bson:"amount" json:"amount"`
	Status       DepositStatus `bson:"status" json:"status"`
	DatePaid     *time.Time    `bson:"datePaid,omitempty" json:"datePaid,omitempty"`
	DateRefunded *time.Time    `bson:"dateRefunded,omitempty" json:"dateRefunded,omitempty"`
	RefundAmount float64       `bson:"refundAmount,omitempty" json:"refundAmount,omitempty"`
	Deductions   []Deduction   `bson:"deductions" json:"deductions"`
}

// DepositUpdate carries the mutable fields of a deposit sub-record. Nil
// fields are left untouched.
type DepositUpdate struct {
	Status       *DepositStatus `json:"status,omitempty"`
	DatePaid     *time.Time     `json:"datePaid,omitempty"`
	DateRefunded *time.Time     `json:"dateRefunded,omitempty"`
	RefundAmount *float64       `json:"refundAmount,omitempty"`
}

// Tenancy is one tenant's occupancy record within a room, either live (in
// CurrentTenants) or historical (in RentalHistory). Both lists share this
// shape; edits to a live tenancy are mirrored into its history twin.
type Tenancy struct {
	TenantID        primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	RentAmount      float64            `bson:"rentAmount" json:"rentAmount"`
	SecurityDeposit SecurityDeposit    `bson:"securityDeposit" json:"securityDeposit"`
	MoveInDate      time.Time          `bson:"moveInDate" json:"moveInDate"`
	MoveOutDate     *time.Time         `bson:"moveOutDate,omitempty" json:"moveOutDate,omitempty"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
}

type Room struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomNumber      string             `bson:"roomNumber" json:"roomNumber"`
	RoomType        RoomType           `bson:"roomType" json:"roomType"`
	Capacity        int                `bson:"capacity" json:"capacity"`
	MonthlyRent     float64            `bson:"monthlyRent" json:"monthlyRent"`
	SecurityDeposit float64            `bson:"securityDeposit" json:"securityDeposit"`
	Status          RoomStatus         `bson:"status" json:"status"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	CurrentTenants  []Tenancy          `bson:"currentTenants" json:"currentTenants"`
	CurrentTenant   *Tenancy           `bson:"currentTenant,omitempty" json:"currentTenant,omitempty"`
	RentalHistory   []Tenancy          `bson:"rentalHistory" json:"rentalHistory"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	Version         int64              `bson:"version" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func validRoomType(t RoomType) bool {
	switch t {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeTriple, RoomTypeQuad, RoomTypeSuite, RoomTypeStudio:
		return true
	}
	return false
}

func validRoomStatus(s RoomStatus) bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomReserved, RoomUnavailable:
		return true
	}
	return false
}

// hasTwoDecimalPlaces reports whether amount carries at most two decimal
// places, tolerating float representation noise.
func hasTwoDecimalPlaces(amount float64) bool {
	scaled := amount * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}

func (room *Room) Validate() error {
	if room.RoomNumber == "" {
		return errors.Validation("Room number cannot be empty")
	}
	if !validRoomType(room.RoomType) {
		return errors.Validation(fmt.Sprintf("Invalid room type '%s'", room.RoomType))
	}
	if room.Capacity < MinCapacity || room.Capacity > MaxCapacity {
		return errors.Validation(fmt.Sprintf("Capacity must be between %d and %d", MinCapacity, MaxCapacity))
	}
	if room.MonthlyRent < 0 {
		return errors.Validation("Monthly rent cannot be negative")
	}
	if room.SecurityDeposit < 0 {
		return errors.Validation("Security deposit cannot be negative")
	}
	if !hasTwoDecimalPlaces(room.SecurityDeposit) {
		return errors.Validation("Security deposit cannot have more than two decimal places")
	}
	if room.Status != "" && !validRoomStatus(room.Status) {
		return errors.Validation(fmt.Sprintf("Invalid room status '%s'", room.Status))
	}
	return nil
}

func (room *Room) ActiveTenantCount() int {
	count := 0
	for _, tenancy := range room.CurrentTenants {
		if tenancy.IsActive {
			count++
		}
	}
	return count
}

func (room *Room) activeTenancyIndex(tenantID primitive.ObjectID) int {
	for i := range room.CurrentTenants {
		if room.CurrentTenants[i].IsActive && room.CurrentTenants[i].TenantID == tenantID {
			return i
		}
	}
	return -1
}

// historyTwinIndex locates the rental-history entry mirroring the given live
// tenancy. Move-in date disambiguates repeat tenants.
func (room *Room) historyTwinIndex(tenancy *Tenancy) int {
	for i := range room.RentalHistory {
		h := &room.RentalHistory[i]
		if h.TenantID == tenancy.TenantID && h.MoveInDate.Equal(tenancy.MoveInDate) {
			return i
		}
	}
	return -1
}

func (room *Room) HasActiveTenant(tenantID primitive.ObjectID) bool {
	return room.activeTenancyIndex(tenantID) >= 0
}

// AssignTenant appends a new active tenancy, enforcing the room status and
// capacity checks, and records it in the rental history. The caller supplies
// move-in time so tests can pin the clock.
func (room *Room) AssignTenant(tenantID primitive.ObjectID, rentAmount, depositAmount float64, moveIn time.Time) error {
	if room.Status == RoomMaintenance || room.Status == RoomUnavailable {
		return errors.CapacityExceeded(errors.RoomNotAvailable)
	}
	if room.HasActiveTenant(tenantID) {
		return errors.DuplicateAssignment(errors.TenantAlreadyAssigned)
	}
	if room.ActiveTenantCount()+1 > room.Capacity {
		return errors.CapacityExceeded(errors.RoomAtFullCapacity)
	}
	if rentAmount < 0 || depositAmount < 0 {
		return errors.Validation("Rent and deposit amounts cannot be negative")
	}

	if rentAmount == 0 {
		rentAmount = room.MonthlyRent
	}

	deposit := SecurityDeposit{
		Amount:     depositAmount,
		Status:     DepositPending,
		Deductions: []Deduction{},
	}
	if depositAmount == 0 {
		datePaid := moveIn
		deposit.Status = DepositPaid
		deposit.DatePaid = &datePaid
	}

	tenancy := Tenancy{
		TenantID:        tenantID,
		RentAmount:      rentAmount,
		SecurityDeposit: deposit,
		MoveInDate:      moveIn,
		IsActive:        true,
	}

	room.CurrentTenants = append(room.CurrentTenants, tenancy)
	room.RentalHistory = append(room.RentalHistory, tenancy)
	room.refreshOccupancy()
	room.UpdatedAt = moveIn
	return nil
}

// UnassignTenant closes the tenant's active tenancy and its history twin.
func (room *Room) UnassignTenant(tenantID primitive.ObjectID, moveOut time.Time) (*Tenancy, error) {
	idx := room.activeTenancyIndex(tenantID)
	if idx < 0 {
		return nil, errors.NotFound(errors.TenantNotAssignedToRoom)
	}

	tenancy := &room.CurrentTenants[idx]
	out := moveOut
	tenancy.MoveOutDate = &out
	tenancy.IsActive = false

	if h := room.historyTwinIndex(tenancy); h >= 0 {
		room.RentalHistory[h].MoveOutDate = &out
		room.RentalHistory[h].IsActive = false
		room.RentalHistory[h].SecurityDeposit = tenancy.SecurityDeposit
	}

	room.refreshOccupancy()
	room.UpdatedAt = moveOut

	closed := *tenancy
	return &closed, nil
}

// UpdateDeposit merges the non-nil fields of update into the tenant's live
// deposit sub-record and its history twin.
func (room *Room) UpdateDeposit(tenantID primitive.ObjectID, update DepositUpdate, now time.Time) error {
	idx := room.activeTenancyIndex(tenantID)
	if idx < 0 {
		return errors.NotFound(errors.TenantNotAssignedToRoom)
	}

	deposit := &room.CurrentTenants[idx].SecurityDeposit
	if update.Status != nil {
		switch *update.Status {
		case DepositPending, DepositPaid, DepositRefunded, DepositForfeited:
		default:
			return errors.Validation(fmt.Sprintf("Invalid deposit status '%s'", *update.Status))
		}
		deposit.Status = *update.Status
	}
	if update.DatePaid != nil {
		deposit.DatePaid = update.DatePaid
	}
	if update.DateRefunded != nil {
		deposit.DateRefunded = update.DateRefunded
	}
	if update.RefundAmount != nil {
		if *update.RefundAmount < 0 {
			return errors.Validation("Refund amount cannot be negative")
		}
		deposit.RefundAmount = *update.RefundAmount
	}

	if h := room.historyTwinIndex(&room.CurrentTenants[idx]); h >= 0 {
		room.RentalHistory[h].SecurityDeposit = *deposit
	}
	room.UpdatedAt = now
	return nil
}

// AddDeduction appends an itemized deduction to the tenant's deposit ledger.
// Closed tenancies accept deductions too (move-out damage is recorded after
// the tenancy ends); the most recent entry for the tenant wins. The sum of
// deductions is deliberately not capped at the deposit amount.
func (room *Room) AddDeduction(tenantID primitive.ObjectID, reason string, amount float64, now time.Time) error {
	if reason == "" {
		return errors.Validation("Deduction reason cannot be empty")
	}
	if amount < 0 {
		return errors.Validation("Deduction amount cannot be negative")
	}

	idx := room.activeTenancyIndex(tenantID)
	if idx < 0 {
		// Fall back to the latest closed tenancy for this tenant.
		for i := len(room.CurrentTenants) - 1; i >= 0; i-- {
			if room.CurrentTenants[i].TenantID == tenantID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return errors.NotFound(errors.TenantNotAssignedToRoom)
	}

	deduction := Deduction{Reason: reason, Amount: amount, Date: now}
	tenancy := &room.CurrentTenants[idx]
	tenancy.SecurityDeposit.Deductions = append(tenancy.SecurityDeposit.Deductions, deduction)

	if h := room.historyTwinIndex(tenancy); h >= 0 {
		room.RentalHistory[h].SecurityDeposit = tenancy.SecurityDeposit
	}
	room.UpdatedAt = now
	return nil
}

// RemoveTenancy erases a tenancy and its history twin. It exists only to
// compensate a failed tenant-side mirror write during assignment; normal
// move-outs go through UnassignTenant and keep their history.
func (room *Room) RemoveTenancy(tenantID primitive.ObjectID, moveIn time.Time) {
	for i := range room.CurrentTenants {
		if room.CurrentTenants[i].TenantID == tenantID && room.CurrentTenants[i].MoveInDate.Equal(moveIn) {
			room.CurrentTenants = append(room.CurrentTenants[:i], room.CurrentTenants[i+1:]...)
			break
		}
	}
	for i := range room.RentalHistory {
		if room.RentalHistory[i].TenantID == tenantID && room.RentalHistory[i].MoveInDate.Equal(moveIn) {
			room.RentalHistory = append(room.RentalHistory[:i], room.RentalHistory[i+1:]...)
			break
		}
	}
	room.refreshOccupancy()
}

// RestoreTenancy reopens a tenancy closed by UnassignTenant, compensating a
// failed tenant-side mirror write during unassignment.
func (room *Room) RestoreTenancy(tenantID primitive.ObjectID, moveIn time.Time) {
	for i := range room.CurrentTenants {
		if room.CurrentTenants[i].TenantID == tenantID && room.CurrentTenants[i].MoveInDate.Equal(moveIn) {
			room.CurrentTenants[i].IsActive = true
			room.CurrentTenants[i].MoveOutDate = nil
			break
		}
	}
	for i := range room.RentalHistory {
		if room.RentalHistory[i].TenantID == tenantID && room.RentalHistory[i].MoveInDate.Equal(moveIn) {
			room.RentalHistory[i].IsActive = true
			room.RentalHistory[i].MoveOutDate = nil
			break
		}
	}
	room.refreshOccupancy()
}

// refreshOccupancy re-derives the occupancy-driven status and the legacy
// single-tenant mirror. Manually-set maintenance/reserved/unavailable states
// are never overridden by occupancy changes.
func (room *Room) refreshOccupancy() {
	active := room.ActiveTenantCount()
	switch room.Status {
	case RoomAvailable:
		if active >= room.Capacity {
			room.Status = RoomOccupied
		}
	case RoomOccupied:
		if active == 0 {
			room.Status = RoomAvailable
		}
	}
	room.syncCurrentTenant()
}

// syncCurrentTenant recomputes the legacy pointer as a pure projection of the
// first active tenancy. It is never written independently.
func (room *Room) syncCurrentTenant() {
	for i := range room.CurrentTenants {
		if room.CurrentTenants[i].IsActive {
			tenancy := room.CurrentTenants[i]
			room.CurrentTenant = &tenancy
			return
		}
	}
	room.CurrentTenant = nil
}

// ChangeStatus applies a manual status change. Occupied is derived from
// occupancy and cannot be forced while the derivation disagrees.
func (room *Room) ChangeStatus(status RoomStatus, now time.Time) error {
	if !validRoomStatus(status) {
		return errors.Validation(fmt.Sprintf("Invalid room status '%s'", status))
	}
	if status == RoomOccupied && room.ActiveTenantCount() < room.Capacity {
		return errors.InvalidStateTransition("Room cannot be marked occupied below capacity")
	}
	if status == RoomAvailable && room.ActiveTenantCount() >= room.Capacity && room.Capacity > 0 {
		room.Status = RoomOccupied
	} else {
		room.Status = status
	}
	room.syncCurrentTenant()
	room.UpdatedAt = now
	return nil
}

// SoftDelete flags the room inactive. Rooms housing anyone cannot be removed.
func (room *Room) SoftDelete(now time.Time) error {
	if room.ActiveTenantCount() > 0 {
		return errors.InvalidStateTransition("Room with active tenants cannot be deleted")
	}
	room.IsActive = false
	room.Status = RoomUnavailable
	room.syncCurrentTenant()
	room.UpdatedAt = now
	return nil
}
