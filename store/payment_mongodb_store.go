package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

const PAYMENTS_COLLECTION = "payments"

type PaymentMongoDBStore struct {
	payments *mongo.Collection
	tracer   trace.Tracer
}

func NewPaymentMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.PaymentStore {
	payments := client.Database(DATABASE).Collection(PAYMENTS_COLLECTION)
	return &PaymentMongoDBStore{
		payments: payments,
		tracer:   tracer,
	}
}

// EnsureIndexes creates the partial unique index backing receipt-number
// uniqueness. Generation alone is not trusted to avoid collisions.
func (store *PaymentMongoDBStore) EnsureIndexes(ctx context.Context) error {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.EnsureIndexes")
	defer span.End()

	_, err := store.payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "receiptNumber", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"receiptNumber": bson.M{"$exists": true, "$type": "string"}}),
	})
	if err != nil {
		return err
	}

	_, err = store.payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}},
	})
	return err
}

func (store *PaymentMongoDBStore) Insert(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.Insert")
	defer span.End()

	payment.ID = primitive.NewObjectID()
	result, err := store.payments.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.Conflict("Receipt number already in use")
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	payment.ID = result.InsertedID.(primitive.ObjectID)
	return payment, nil
}

func (store *PaymentMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func buildFilter(filter domain.PaymentFilter) bson.M {
	query := bson.M{}
	if filter.TenantID != nil {
		query["tenantId"] = *filter.TenantID
	}
	if filter.RoomID != nil {
		query["roomId"] = *filter.RoomID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PaymentType != "" {
		query["paymentType"] = filter.PaymentType
	}
	if filter.DueFrom != nil || filter.DueTo != nil {
		due := bson.M{}
		if filter.DueFrom != nil {
			due["$gte"] = *filter.DueFrom
		}
		if filter.DueTo != nil {
			due["$lte"] = *filter.DueTo
		}
		query["dueDate"] = due
	}
	return query
}

func (store *PaymentMongoDBStore) GetAll(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.GetAll")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: -1}})
	cursor, err := store.payments.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodePayments(ctx, cursor)
}

// Update replaces the payment only while its stored status still matches
// expectedStatus. A duplicate receipt number is reported distinctly so the
// caller can regenerate and retry.
func (store *PaymentMongoDBStore) Update(ctx context.Context, payment *domain.Payment, expectedStatus domain.PaymentStatus) error {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.Update")
	defer span.End()

	result, err := store.payments.ReplaceOne(ctx, bson.M{"_id": payment.ID, "status": expectedStatus}, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Conflict("Receipt number already in use")
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return errs.Conflict("Payment state changed concurrently")
	}
	return nil
}

func (store *PaymentMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.Delete")
	defer span.End()

	result, err := store.payments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errs.NotFound(errs.PaymentNotFound)
	}
	return nil
}

func (store *PaymentMongoDBStore) FindDuePending(ctx context.Context, before time.Time) ([]*domain.Payment, error) {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.FindDuePending")
	defer span.End()

	filter := bson.M{
		"status":  domain.PaymentPending,
		"dueDate": bson.M{"$lt": before},
	}
	cursor, err := store.payments.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodePayments(ctx, cursor)
}

func (store *PaymentMongoDBStore) FindOverdueWithoutFee(ctx context.Context) ([]*domain.Payment, error) {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.FindOverdueWithoutFee")
	defer span.End()

	filter := bson.M{
		"status": domain.PaymentOverdue,
		"$or": []bson.M{
			{"lateFee": bson.M{"$exists": false}},
			{"lateFee": nil},
			{"lateFee.amount": 0},
		},
	}
	cursor, err := store.payments.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodePayments(ctx, cursor)
}

type paymentStatsRow struct {
	TotalPayments int64   `bson:"totalPayments"`
	TotalAmount   float64 `bson:"totalAmount"`
	PaidCount     int64   `bson:"paidCount"`
	PaidAmount    float64 `bson:"paidAmount"`
	PendingCount  int64   `bson:"pendingCount"`
	PendingAmount float64 `bson:"pendingAmount"`
	OverdueCount  int64   `bson:"overdueCount"`
	OverdueAmount float64 `bson:"overdueAmount"`
	RefundedCount int64   `bson:"refundedCount"`
	LatePayments  int64   `bson:"latePayments"`
	LateFeeTotal  float64 `bson:"lateFeeTotal"`
}

func paymentStatusCount(status domain.PaymentStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, 1, 0}}}
}

func paymentStatusSum(status domain.PaymentStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, "$amount", 0}}}
}

func (store *PaymentMongoDBStore) GetStatistics(ctx context.Context, filter domain.PaymentFilter) (*domain.PaymentStatistics, error) {
	ctx, span := store.tracer.Start(ctx, "PaymentStore.GetStatistics")
	defer span.End()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: buildFilter(filter)}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalPayments": bson.M{"$sum": 1},
			"totalAmount":   bson.M{"$sum": "$amount"},
			"paidCount":     paymentStatusCount(domain.PaymentPaid),
			"paidAmount":    paymentStatusSum(domain.PaymentPaid),
			"pendingCount":  paymentStatusCount(domain.PaymentPending),
			"pendingAmount": paymentStatusSum(domain.PaymentPending),
			"overdueCount":  paymentStatusCount(domain.PaymentOverdue),
			"overdueAmount": paymentStatusSum(domain.PaymentOverdue),
			"refundedCount": paymentStatusCount(domain.PaymentRefunded),
			"latePayments":  bson.M{"$sum": bson.M{"$cond": bson.A{"$isLatePayment", 1, 0}}},
			"lateFeeTotal":  bson.M{"$sum": bson.M{"$ifNull": bson.A{"$lateFee.amount", 0}}},
		}}},
	}

	cursor, err := store.payments.Aggregate(ctx, pipeline)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := &domain.PaymentStatistics{}
	if cursor.Next(ctx) {
		var row paymentStatsRow
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		stats.TotalPayments = row.TotalPayments
		stats.TotalAmount = row.TotalAmount
		stats.PaidCount = row.PaidCount
		stats.PaidAmount = row.PaidAmount
		stats.PendingCount = row.PendingCount
		stats.PendingAmount = row.PendingAmount
		stats.OverdueCount = row.OverdueCount
		stats.OverdueAmount = row.OverdueAmount
		stats.RefundedCount = row.RefundedCount
		stats.LatePayments = row.LatePayments
		stats.LateFeeTotal = row.LateFeeTotal
		if row.TotalPayments > 0 {
			stats.CollectionRate = float64(row.PaidCount) / float64(row.TotalPayments)
		}
	}
	return stats, cursor.Err()
}

func (store *PaymentMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Payment, error) {
	result := store.payments.FindOne(ctx, filter)
	var payment domain.Payment
	err := result.Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound(errs.PaymentNotFound)
		}
		return nil, err
	}
	return &payment, nil
}

func decodePayments(ctx context.Context, cursor *mongo.Cursor) (payments []*domain.Payment, err error) {
	for cursor.Next(ctx) {
		var payment domain.Payment
		err = cursor.Decode(&payment)
		if err != nil {
			return
		}
		payments = append(payments, &payment)
	}
	err = cursor.Err()
	return
}
