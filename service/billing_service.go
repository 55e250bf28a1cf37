package application

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/cache"
	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

const (
	paymentStatsKey = "stats:payments"
	roomStatsKey    = "stats:rooms"

	receiptInsertRetries = 3
)

// BillingService owns the payment lifecycle: creation, the time-driven
// overdue sweep, completion with receipt issuance, late fees, refunds and
// the read-only statistics.
type BillingService struct {
	payments     domain.PaymentStore
	tenants      domain.TenantStore
	rooms        domain.RoomStore
	stats        *cache.StatsCache
	breaker      *gobreaker.CircuitBreaker
	client       *http.Client
	rendererBase string
	tracer       trace.Tracer
	logger       *logrus.Logger
	now          func() time.Time
}

func NewBillingService(payments domain.PaymentStore, tenants domain.TenantStore, rooms domain.RoomStore, stats *cache.StatsCache, rendererBase string, tracer trace.Tracer, logger *logrus.Logger) *BillingService {
	return &BillingService{
		payments:     payments,
		tenants:      tenants,
		rooms:        rooms,
		stats:        stats,
		breaker:      CircuitBreaker("receiptRenderer", logger),
		client:       &http.Client{Timeout: 10 * time.Second},
		rendererBase: rendererBase,
		tracer:       tracer,
		logger:       logger,
		now:          time.Now,
	}
}

func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warnf("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
		},
	)
}

// GenerateReceiptNumber builds a time-prefixed number with a random suffix.
// Uniqueness is ultimately enforced by the store index, not this format.
func (service *BillingService) GenerateReceiptNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RCPT-%s-%s", service.now().Format("20060102150405"), suffix)
}

// CreatePayment records a billable event for an active tenant in their
// currently-assigned room.
func (service *BillingService) CreatePayment(ctx context.Context, payment *domain.Payment, createdBy string) (*domain.Payment, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.CreatePayment")
	defer span.End()

	tenant, err := service.tenants.Get(ctx, payment.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.TenantStatus != domain.TenantActive {
		return nil, errs.Validation("Tenant is not active")
	}

	room, err := service.rooms.Get(ctx, payment.RoomID)
	if err != nil {
		return nil, err
	}
	if tenant.RoomNumber == nil || *tenant.RoomNumber != room.RoomNumber {
		return nil, errs.Validation("Room is not assigned to this tenant")
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	payment.CreatedBy = createdBy
	payment.Normalize(service.now())
	if payment.Status == domain.PaymentPaid && payment.ReceiptNumber == "" {
		payment.ReceiptNumber = service.GenerateReceiptNumber()
	}

	created, err := service.insertWithReceiptRetry(ctx, payment)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.invalidateStats(ctx)
	return created, nil
}

// insertWithReceiptRetry retries on a receipt-number collision, regenerating
// the number. Collisions are rare; after a few attempts the conflict is real.
func (service *BillingService) insertWithReceiptRetry(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	var err error
	for attempt := 0; attempt < receiptInsertRetries; attempt++ {
		var created *domain.Payment
		created, err = service.payments.Insert(ctx, payment)
		if err == nil {
			return created, nil
		}
		if !errs.IsKind(err, errs.KindConflict) || payment.ReceiptNumber == "" {
			return nil, err
		}
		payment.ReceiptNumber = service.GenerateReceiptNumber()
	}
	return nil, err
}

func (service *BillingService) GetPayment(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.GetPayment")
	defer span.End()

	return service.payments.Get(ctx, id)
}

func (service *BillingService) GetAllPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.GetAllPayments")
	defer span.End()

	return service.payments.GetAll(ctx, filter)
}

// MarkPaymentCompleted transitions a payment to paid, detecting lateness
// against its due date and issuing a receipt number when absent.
func (service *BillingService) MarkPaymentCompleted(ctx context.Context, id primitive.ObjectID, completedBy string) (*domain.Payment, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.MarkPaymentCompleted")
	defer span.End()

	payment, err := service.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStatus := payment.Status
	if err := payment.MarkCompleted(completedBy, service.GenerateReceiptNumber(), service.now()); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		err = service.payments.Update(ctx, payment, previousStatus)
		if err == nil {
			break
		}
		if attempt+1 >= receiptInsertRetries || !errs.IsKind(err, errs.KindConflict) {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		payment.ReceiptNumber = service.GenerateReceiptNumber()
	}

	service.invalidateStats(ctx)
	service.logger.WithFields(logrus.Fields{
		"payment": id.Hex(),
		"receipt": payment.ReceiptNumber,
		"late":    payment.IsLatePayment,
	}).Info("payment completed")
	return payment, nil
}

// UpdatePayment edits a not-yet-settled payment's billable fields. Status
// changes go through their dedicated transitions, never through here.
func (service *BillingService) UpdatePayment(ctx context.Context, id primitive.ObjectID, update domain.PaymentUpdate) (*domain.Payment, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.UpdatePayment")
	defer span.End()

	payment, err := service.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payment.ApplyEdit(update, service.now()); err != nil {
		return nil, err
	}
	if err := service.payments.Update(ctx, payment, payment.Status); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.invalidateStats(ctx)
	return payment, nil
}

// SweepResult reports how the periodic overdue sweep fared. The sweep never
// aborts on a single payment's failure.
type SweepResult struct {
	Swept  int `json:"swept"`
	Failed int `json:"failed"`
}

// UpdateOverduePayments flips every pending payment due strictly before the
// start of the current day to overdue. Re-running within the same day is a
// no-op.
func (service *BillingService) UpdateOverduePayments(ctx context.Context) (SweepResult, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.UpdateOverduePayments")
	defer span.End()

	var result SweepResult
	now := service.now()
	due, err := service.payments.FindDuePending(ctx, domain.StartOfDay(now))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	for _, payment := range due {
		if !payment.MarkOverdue(now) {
			continue
		}
		if err := service.payments.Update(ctx, payment, domain.PaymentPending); err != nil {
			service.logger.WithError(err).WithField("payment", payment.ID.Hex()).Error("overdue sweep: update failed")
			result.Failed++
			continue
		}
		result.Swept++
	}

	if result.Swept > 0 {
		service.invalidateStats(ctx)
	}
	service.logger.WithFields(logrus.Fields{
		"swept":  result.Swept,
		"failed": result.Failed,
	}).Info("overdue sweep finished")
	return result, nil
}

// ApplyLateFees runs the overdue sweep, then attaches a flat fee to every
// overdue payment that has none. The fee amount is supplied by the caller.
func (service *BillingService) ApplyLateFees(ctx context.Context, lateFeeAmount float64) (int, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.ApplyLateFees")
	defer span.End()

	if lateFeeAmount < 0 {
		return 0, errs.Validation("Late fee amount cannot be negative")
	}
	if _, err := service.UpdateOverduePayments(ctx); err != nil {
		return 0, err
	}

	overdue, err := service.payments.FindOverdueWithoutFee(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	now := service.now()
	for _, payment := range overdue {
		if err := payment.AttachLateFee(lateFeeAmount, now); err != nil {
			continue
		}
		if err := service.payments.Update(ctx, payment, domain.PaymentOverdue); err != nil {
			service.logger.WithError(err).WithField("payment", payment.ID.Hex()).Error("late fee: update failed")
			continue
		}
		applied++
	}
	return applied, nil
}

// ProcessRefund transitions a paid payment to refunded.
func (service *BillingService) ProcessRefund(ctx context.Context, id primitive.ObjectID, amount float64, reason, processedBy string) (*domain.Payment, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.ProcessRefund")
	defer span.End()

	payment, err := service.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payment.ProcessRefund(amount, reason, processedBy, service.now()); err != nil {
		return nil, err
	}
	if err := service.payments.Update(ctx, payment, domain.PaymentPaid); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.invalidateStats(ctx)
	return payment, nil
}

func (service *BillingService) DeletePayment(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := service.tracer.Start(ctx, "BillingService.DeletePayment")
	defer span.End()

	if err := service.payments.Delete(ctx, id); err != nil {
		return err
	}
	service.invalidateStats(ctx)
	return nil
}

// GetPaymentStatistics aggregates counts, sums and rates. The unfiltered
// rollup is cached briefly; filtered queries always hit the store.
func (service *BillingService) GetPaymentStatistics(ctx context.Context, filter domain.PaymentFilter) (*domain.PaymentStatistics, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.GetPaymentStatistics")
	defer span.End()

	cacheable := filter == (domain.PaymentFilter{})
	if cacheable && service.stats != nil {
		var cached domain.PaymentStatistics
		if service.stats.Get(ctx, paymentStatsKey, &cached) {
			return &cached, nil
		}
	}

	stats, err := service.payments.GetStatistics(ctx, filter)
	if err != nil {
		return nil, err
	}
	if cacheable && service.stats != nil {
		service.stats.Set(ctx, paymentStatsKey, stats)
	}
	return stats, nil
}

// GetReceipt fetches the rendered receipt document for a paid payment from
// the external renderer, guarded by the circuit breaker.
func (service *BillingService) GetReceipt(ctx context.Context, id primitive.ObjectID) ([]byte, error) {
	ctx, span := service.tracer.Start(ctx, "BillingService.GetReceipt")
	defer span.End()

	payment, err := service.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentPaid {
		return nil, errs.InvalidStateTransition(errs.PaymentNotPaid)
	}

	result, err := service.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/receipts/%s", service.rendererBase, payment.ID.Hex())
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		response, err := service.client.Do(request)
		if err != nil {
			return nil, err
		}
		defer response.Body.Close()
		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("receipt renderer returned status %d", response.StatusCode)
		}
		return io.ReadAll(response.Body)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result.([]byte), nil
}

func (service *BillingService) invalidateStats(ctx context.Context) {
	if service.stats != nil {
		service.stats.Invalidate(ctx, paymentStatsKey)
	}
}
