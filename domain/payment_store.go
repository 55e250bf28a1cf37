package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentFilter narrows payment listings and statistics. Nil/zero fields
// match everything.
type PaymentFilter struct {
	TenantID    *primitive.ObjectID
	RoomID      *primitive.ObjectID
	Status      PaymentStatus
	PaymentType PaymentType
	DueFrom     *time.Time
	DueTo       *time.Time
}

type PaymentStatistics struct {
	TotalPayments  int64   `json:"totalPayments"`
	TotalAmount    float64 `json:"totalAmount"`
	PaidCount      int64   `json:"paidCount"`
	PaidAmount     float64 `json:"paidAmount"`
	PendingCount   int64   `json:"pendingCount"`
	PendingAmount  float64 `json:"pendingAmount"`
	OverdueCount   int64   `json:"overdueCount"`
	OverdueAmount  float64 `json:"overdueAmount"`
	RefundedCount  int64   `json:"refundedCount"`
	LatePayments   int64   `json:"latePayments"`
	LateFeeTotal   float64 `json:"lateFeeTotal"`
	CollectionRate float64 `json:"collectionRate"`
}

type PaymentStore interface {
	Insert(ctx context.Context, payment *Payment) (*Payment, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Payment, error)
	GetAll(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
	// Update persists the payment only while its stored status still equals
	// expectedStatus; the conditional filter is the store-level backstop for
	// concurrent transitions.
	Update(ctx context.Context, payment *Payment, expectedStatus PaymentStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindDuePending lists pending payments with a due date strictly before
	// the given boundary.
	FindDuePending(ctx context.Context, before time.Time) ([]*Payment, error)
	FindOverdueWithoutFee(ctx context.Context) ([]*Payment, error)
	GetStatistics(ctx context.Context, filter PaymentFilter) (*PaymentStatistics, error)
	EnsureIndexes(ctx context.Context) error
}
