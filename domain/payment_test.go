package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

func newTestPayment(due time.Time) *Payment {
	return &Payment{
		ID:            primitive.NewObjectID(),
		TenantID:      primitive.NewObjectID(),
		RoomID:        primitive.NewObjectID(),
		Amount:        5000,
		PaymentType:   PaymentTypeRent,
		PaymentMethod: MethodCash,
		DueDate:       due,
		Status:        PaymentPending,
		PeriodCovered: &PeriodCovered{
			StartDate: due.AddDate(0, -1, 0),
			EndDate:   due,
		},
	}
}

func TestPaymentValidate(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, newTestPayment(due).Validate())

	noPeriod := newTestPayment(due)
	noPeriod.PeriodCovered = nil
	assert.True(t, errors.IsKind(noPeriod.Validate(), errors.KindValidation))

	inverted := newTestPayment(due)
	inverted.PeriodCovered = &PeriodCovered{StartDate: due, EndDate: due.AddDate(0, -1, 0)}
	assert.True(t, errors.IsKind(inverted.Validate(), errors.KindValidation))

	// Non-rent payments do not need a period.
	utility := newTestPayment(due)
	utility.PaymentType = PaymentTypeUtility
	utility.PeriodCovered = nil
	assert.NoError(t, utility.Validate())

	badMethod := newTestPayment(due)
	badMethod.PaymentMethod = "barter"
	assert.True(t, errors.IsKind(badMethod.Validate(), errors.KindValidation))

	negative := newTestPayment(due)
	negative.Amount = -1
	assert.True(t, errors.IsKind(negative.Validate(), errors.KindValidation))
}

func TestNormalizeLateness(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 10)

	// No payment date recorded: lateness stays unset even when created late.
	pending := newTestPayment(due)
	pending.Normalize(now)
	assert.Equal(t, PaymentPending, pending.Status)
	assert.False(t, pending.IsLatePayment)

	// Explicit late payment date.
	late := newTestPayment(due)
	paidAt := due.AddDate(0, 0, 3)
	late.PaymentDate = &paidAt
	late.Normalize(now)
	assert.True(t, late.IsLatePayment)

	// Payment date exactly on the due date is on time.
	onTime := newTestPayment(due)
	exact := due
	onTime.PaymentDate = &exact
	onTime.Normalize(now)
	assert.False(t, onTime.IsLatePayment)

	// Created directly as paid without a date: now becomes the payment date.
	paid := newTestPayment(due)
	paid.Status = PaymentPaid
	paid.Normalize(now)
	require.NotNil(t, paid.PaymentDate)
	assert.True(t, paid.PaymentDate.Equal(now))
	assert.True(t, paid.IsLatePayment)
}

func TestApplyEdit(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 1)

	payment := newTestPayment(due)
	amount := 5500.0
	notes := "Adjusted for utilities"
	require.NoError(t, payment.ApplyEdit(PaymentUpdate{Amount: &amount, Notes: &notes}, now))
	assert.Equal(t, 5500.0, payment.Amount)
	assert.Equal(t, "Adjusted for utilities", payment.Notes)

	// Edits still pass through validation.
	bad := -1.0
	err := payment.ApplyEdit(PaymentUpdate{Amount: &bad}, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	// Settled payments are immutable.
	paid := newTestPayment(due)
	require.NoError(t, paid.MarkCompleted("admin", "RCPT-TEST-0", due))
	err = paid.ApplyEdit(PaymentUpdate{Amount: &amount}, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))
}

func TestMarkCompleted(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 2)

	payment := newTestPayment(due)
	require.NoError(t, payment.MarkCompleted("admin", "RCPT-TEST-1", now))
	assert.Equal(t, PaymentPaid, payment.Status)
	assert.Equal(t, "RCPT-TEST-1", payment.ReceiptNumber)
	assert.Equal(t, "admin", payment.RecordedBy)
	assert.True(t, payment.IsLatePayment)
	require.NotNil(t, payment.PaymentDate)

	// Already paid.
	err := payment.MarkCompleted("admin", "RCPT-TEST-2", now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))
	assert.Equal(t, "RCPT-TEST-1", payment.ReceiptNumber)
}

func TestMarkCompletedFromOverdue(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	payment := newTestPayment(due)
	payment.Status = PaymentOverdue

	require.NoError(t, payment.MarkCompleted("staff", "RCPT-TEST-3", due.AddDate(0, 0, 9)))
	assert.Equal(t, PaymentPaid, payment.Status)
	assert.True(t, payment.IsLatePayment)
}

func TestMarkCompletedRefundedRejected(t *testing.T) {
	payment := newTestPayment(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	payment.Status = PaymentRefunded

	err := payment.MarkCompleted("admin", "RCPT-TEST-4", time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))
}

func TestMarkOverdueBoundary(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	// Due today: not overdue regardless of the hour.
	today := newTestPayment(due)
	assert.False(t, today.MarkOverdue(time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, PaymentPending, today.Status)

	// Due before today: overdue.
	past := newTestPayment(due)
	assert.True(t, past.MarkOverdue(time.Date(2024, 3, 6, 0, 1, 0, 0, time.UTC)))
	assert.Equal(t, PaymentOverdue, past.Status)

	// Sweep is idempotent.
	assert.False(t, past.MarkOverdue(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)))

	// Paid payments never flip.
	paid := newTestPayment(due)
	paid.Status = PaymentPaid
	assert.False(t, paid.MarkOverdue(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, PaymentPaid, paid.Status)
}

func TestDaysOverdue(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	payment := newTestPayment(due)

	assert.Equal(t, 0, payment.DaysOverdue(due))
	assert.Equal(t, 0, payment.DaysOverdue(due.Add(12*time.Hour)))
	assert.Equal(t, 3, payment.DaysOverdue(due.AddDate(0, 0, 3)))
}

func TestAttachLateFee(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 7)

	payment := newTestPayment(due)
	payment.Status = PaymentOverdue

	require.NoError(t, payment.AttachLateFee(200, now))
	require.NotNil(t, payment.LateFee)
	assert.Equal(t, 200.0, payment.LateFee.Amount)
	assert.Equal(t, "Late payment fee - 7 days overdue", payment.LateFee.Reason)

	// No double application.
	err := payment.AttachLateFee(200, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))

	// Only overdue payments accept a fee.
	pending := newTestPayment(due)
	err = pending.AttachLateFee(200, now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))
}

func TestProcessRefund(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 20)

	payment := newTestPayment(due)
	require.NoError(t, payment.MarkCompleted("admin", "RCPT-TEST-5", due))

	require.NoError(t, payment.ProcessRefund(3000, "Overcharge", "admin", now))
	assert.Equal(t, PaymentRefunded, payment.Status)
	require.NotNil(t, payment.Refund)
	assert.Equal(t, 3000.0, payment.Refund.Amount)

	// Refunded is terminal.
	err := payment.ProcessRefund(1000, "Again", "admin", now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))
}

func TestProcessRefundValidation(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 20)

	pending := newTestPayment(due)
	err := pending.ProcessRefund(1000, "", "admin", now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))

	paid := newTestPayment(due)
	require.NoError(t, paid.MarkCompleted("admin", "RCPT-TEST-6", due))

	err = paid.ProcessRefund(paid.Amount+1, "", "admin", now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidStateTransition))

	err = paid.ProcessRefund(0, "", "admin", now)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	assert.Equal(t, PaymentPaid, paid.Status)
}

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	noon := time.Date(2024, 3, 5, 12, 30, 45, 0, loc)
	start := StartOfDay(noon)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), start)
	assert.Equal(t, loc, start.Location())
}
