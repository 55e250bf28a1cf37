package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

const REPORTS_COLLECTION = "reports"

type ReportMongoDBStore struct {
	reports *mongo.Collection
	tracer  trace.Tracer
}

func NewReportMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.ReportStore {
	reports := client.Database(DATABASE).Collection(REPORTS_COLLECTION)
	return &ReportMongoDBStore{
		reports: reports,
		tracer:  tracer,
	}
}

func (store *ReportMongoDBStore) Insert(ctx context.Context, report *domain.MaintenanceReport) (*domain.MaintenanceReport, error) {
	ctx, span := store.tracer.Start(ctx, "ReportStore.Insert")
	defer span.End()

	report.ID = primitive.NewObjectID()
	result, err := store.reports.InsertOne(ctx, report)
	if err != nil {
		return nil, err
	}
	report.ID = result.InsertedID.(primitive.ObjectID)
	return report, nil
}

func (store *ReportMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.MaintenanceReport, error) {
	ctx, span := store.tracer.Start(ctx, "ReportStore.Get")
	defer span.End()

	result := store.reports.FindOne(ctx, bson.M{"_id": id})
	var report domain.MaintenanceReport
	err := result.Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound(errs.ReportNotFound)
		}
		return nil, err
	}
	return &report, nil
}

func (store *ReportMongoDBStore) GetAll(ctx context.Context) ([]*domain.MaintenanceReport, error) {
	ctx, span := store.tracer.Start(ctx, "ReportStore.GetAll")
	defer span.End()

	return store.filter(ctx, bson.D{})
}

func (store *ReportMongoDBStore) GetByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*domain.MaintenanceReport, error) {
	ctx, span := store.tracer.Start(ctx, "ReportStore.GetByTenant")
	defer span.End()

	return store.filter(ctx, bson.M{"tenantId": tenantID})
}

func (store *ReportMongoDBStore) Update(ctx context.Context, report *domain.MaintenanceReport) error {
	ctx, span := store.tracer.Start(ctx, "ReportStore.Update")
	defer span.End()

	result, err := store.reports.ReplaceOne(ctx, bson.M{"_id": report.ID}, report)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound(errs.ReportNotFound)
	}
	return nil
}

func (store *ReportMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.MaintenanceReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := store.reports.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []*domain.MaintenanceReport
	for cursor.Next(ctx) {
		var report domain.MaintenanceReport
		if err := cursor.Decode(&report); err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}
	return reports, cursor.Err()
}
