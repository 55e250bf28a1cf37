package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentType string

const (
	PaymentTypeRent        PaymentType = "rent"
	PaymentTypeDeposit     PaymentType = "deposit"
	PaymentTypeUtility     PaymentType = "utility"
	PaymentTypeMaintenance PaymentType = "maintenance"
	PaymentTypePenalty     PaymentType = "penalty"
	PaymentTypeOther       PaymentType = "other"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodGCash        PaymentMethod = "gcash"
	MethodPayMaya      PaymentMethod = "paymaya"
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodDebitCard    PaymentMethod = "debit_card"
	MethodOnline       PaymentMethod = "online"
)

type PeriodCovered struct {
	StartDate time.Time `bson:"startDate" json:"startDate"`
	EndDate   time.Time `bson:"endDate" json:"endDate"`
}

type LateFee struct {
	Amount      float64   `bson:"amount" json:"amount"`
	Reason      string    `bson:"reason" json:"reason"`
	AppliedDate time.Time `bson:"appliedDate" json:"appliedDate"`
}

type Refund struct {
	Amount      float64   `bson:"amount" json:"amount"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	ProcessedBy string    `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	ProcessedAt time.Time `bson:"processedAt" json:"processedAt"`
}

type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID      primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	RoomID        primitive.ObjectID `bson:"roomId" json:"roomId"`
	Amount        float64            `bson:"amount" json:"amount"`
	PaymentType   PaymentType        `bson:"paymentType" json:"paymentType"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	DueDate       time.Time          `bson:"dueDate" json:"dueDate"`
	Status        PaymentStatus      `bson:"status" json:"status"`
	PaymentDate   *time.Time         `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`
	PeriodCovered *PeriodCovered     `bson:"periodCovered,omitempty" json:"periodCovered,omitempty"`
	ReceiptNumber string             `bson:"receiptNumber,omitempty" json:"receiptNumber,omitempty"`
	LateFee       *LateFee           `bson:"lateFee,omitempty" json:"lateFee,omitempty"`
	IsLatePayment bool               `bson:"isLatePayment" json:"isLatePayment"`
	Refund        *Refund            `bson:"refund,omitempty" json:"refund,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy     string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	RecordedBy    string             `bson:"recordedBy,omitempty" json:"recordedBy,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func validPaymentType(t PaymentType) bool {
	switch t {
	case PaymentTypeRent, PaymentTypeDeposit, PaymentTypeUtility, PaymentTypeMaintenance, PaymentTypePenalty, PaymentTypeOther:
		return true
	}
	return false
}

func validPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodGCash, MethodPayMaya, MethodCreditCard, MethodDebitCard, MethodOnline:
		return true
	}
	return false
}

// StartOfDay truncates t to midnight in its own location. The overdue sweep
// compares due dates against this boundary so a payment due today is never
// flipped.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func (payment *Payment) Validate() error {
	if payment.TenantID.IsZero() {
		return errors.Validation("Payment must reference a tenant")
	}
	if payment.RoomID.IsZero() {
		return errors.Validation("Payment must reference a room")
	}
	if payment.Amount < 0 {
		return errors.Validation("Payment amount cannot be negative")
	}
	if !validPaymentType(payment.PaymentType) {
		return errors.Validation(fmt.Sprintf("Invalid payment type '%s'", payment.PaymentType))
	}
	if !validPaymentMethod(payment.PaymentMethod) {
		return errors.Validation(fmt.Sprintf("Invalid payment method '%s'", payment.PaymentMethod))
	}
	if payment.DueDate.IsZero() {
		return errors.Validation("Due date is required")
	}
	switch payment.Status {
	case "", PaymentPending, PaymentOverdue, PaymentPaid, PaymentRefunded:
	default:
		return errors.Validation(fmt.Sprintf("Invalid payment status '%s'", payment.Status))
	}
	if payment.PaymentType == PaymentTypeRent {
		if payment.PeriodCovered == nil {
			return errors.Validation("Period covered is required for rent payments")
		}
		if !payment.PeriodCovered.EndDate.After(payment.PeriodCovered.StartDate) {
			return errors.Validation("Period covered end date must be after start date")
		}
	}
	return nil
}

// Normalize fills the derived fields at creation time: lateness is computed
// only when both dates were supplied (pre-paid data entry), and a payment
// recorded directly as paid keeps its explicit payment date.
func (payment *Payment) Normalize(now time.Time) {
	if payment.Status == "" {
		payment.Status = PaymentPending
	}
	if payment.PaymentDate != nil {
		payment.IsLatePayment = payment.PaymentDate.After(payment.DueDate)
	}
	if payment.Status == PaymentPaid && payment.PaymentDate == nil {
		paymentDate := now
		payment.PaymentDate = &paymentDate
		payment.IsLatePayment = now.After(payment.DueDate)
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
}

// PaymentUpdate carries the editable fields of a not-yet-settled payment.
// Nil fields are left untouched.
type PaymentUpdate struct {
	Amount        *float64       `json:"amount,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	DueDate       *time.Time     `json:"dueDate,omitempty"`
	PeriodCovered *PeriodCovered `json:"periodCovered,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

// ApplyEdit merges the non-nil fields of update into a pending or overdue
// payment. Settled payments are immutable apart from their own transitions.
func (payment *Payment) ApplyEdit(update PaymentUpdate, now time.Time) error {
	switch payment.Status {
	case PaymentPending, PaymentOverdue:
	default:
		return errors.InvalidStateTransition("Only pending or overdue payments can be edited")
	}
	if update.Amount != nil {
		payment.Amount = *update.Amount
	}
	if update.PaymentMethod != nil {
		payment.PaymentMethod = *update.PaymentMethod
	}
	if update.DueDate != nil {
		payment.DueDate = *update.DueDate
	}
	if update.PeriodCovered != nil {
		payment.PeriodCovered = update.PeriodCovered
	}
	if update.Notes != nil {
		payment.Notes = *update.Notes
	}
	if err := payment.Validate(); err != nil {
		return err
	}
	payment.UpdatedAt = now
	return nil
}

// MarkCompleted transitions pending|overdue -> paid. A receipt number must be
// supplied when the payment does not carry one yet.
func (payment *Payment) MarkCompleted(completedBy, receiptNumber string, now time.Time) error {
	switch payment.Status {
	case PaymentPaid:
		return errors.InvalidStateTransition(errors.PaymentAlreadyPaid)
	case PaymentRefunded:
		return errors.InvalidStateTransition("Refunded payment cannot be marked as paid")
	}
	paymentDate := now
	payment.Status = PaymentPaid
	payment.PaymentDate = &paymentDate
	payment.IsLatePayment = now.After(payment.DueDate)
	payment.RecordedBy = completedBy
	if payment.ReceiptNumber == "" {
		payment.ReceiptNumber = receiptNumber
	}
	payment.UpdatedAt = now
	return nil
}

// MarkOverdue applies the time-driven pending -> overdue transition. It
// reports false without error when the payment is not eligible, so the sweep
// stays idempotent.
func (payment *Payment) MarkOverdue(now time.Time) bool {
	if payment.Status != PaymentPending {
		return false
	}
	if !payment.DueDate.Before(StartOfDay(now)) {
		return false
	}
	payment.Status = PaymentOverdue
	payment.UpdatedAt = now
	return true
}

// DaysOverdue counts whole days elapsed since the due date.
func (payment *Payment) DaysOverdue(now time.Time) int {
	if !now.After(payment.DueDate) {
		return 0
	}
	return int(now.Sub(payment.DueDate).Hours() / 24)
}

// AttachLateFee adds a flat fee to an overdue payment that has none yet.
func (payment *Payment) AttachLateFee(amount float64, now time.Time) error {
	if payment.Status != PaymentOverdue {
		return errors.InvalidStateTransition("Late fee applies only to overdue payments")
	}
	if payment.LateFee != nil && payment.LateFee.Amount > 0 {
		return errors.InvalidStateTransition("Late fee already applied")
	}
	if amount < 0 {
		return errors.Validation("Late fee amount cannot be negative")
	}
	payment.LateFee = &LateFee{
		Amount:      amount,
		Reason:      fmt.Sprintf("Late payment fee - %d days overdue", payment.DaysOverdue(now)),
		AppliedDate: now,
	}
	payment.UpdatedAt = now
	return nil
}

// ProcessRefund transitions paid -> refunded.
func (payment *Payment) ProcessRefund(amount float64, reason, processedBy string, now time.Time) error {
	if payment.Status != PaymentPaid {
		return errors.InvalidStateTransition(errors.PaymentNotPaid)
	}
	if amount <= 0 {
		return errors.Validation("Refund amount must be positive")
	}
	if amount > payment.Amount {
		return errors.InvalidStateTransition(errors.RefundExceedsAmount)
	}
	payment.Status = PaymentRefunded
	payment.Refund = &Refund{
		Amount:      amount,
		Reason:      reason,
		ProcessedBy: processedBy,
		ProcessedAt: now,
	}
	payment.UpdatedAt = now
	return nil
}
