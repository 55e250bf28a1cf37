package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

const TENANTS_COLLECTION = "tenants"

type TenantMongoDBStore struct {
	tenants *mongo.Collection
	tracer  trace.Tracer
}

func NewTenantMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.TenantStore {
	tenants := client.Database(DATABASE).Collection(TENANTS_COLLECTION)
	return &TenantMongoDBStore{
		tenants: tenants,
		tracer:  tracer,
	}
}

func (store *TenantMongoDBStore) Insert(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	ctx, span := store.tracer.Start(ctx, "TenantStore.Insert")
	defer span.End()

	tenant.ID = primitive.NewObjectID()
	if tenant.TenantStatus == "" {
		tenant.TenantStatus = domain.TenantPending
	}
	result, err := store.tenants.InsertOne(ctx, tenant)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	tenant.ID = result.InsertedID.(primitive.ObjectID)
	return tenant, nil
}

func (store *TenantMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Tenant, error) {
	ctx, span := store.tracer.Start(ctx, "TenantStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *TenantMongoDBStore) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Tenant, error) {
	ctx, span := store.tracer.Start(ctx, "TenantStore.GetByUserID")
	defer span.End()

	return store.filterOne(ctx, bson.M{"userId": userID})
}

func (store *TenantMongoDBStore) GetAll(ctx context.Context) ([]*domain.Tenant, error) {
	ctx, span := store.tracer.Start(ctx, "TenantStore.GetAll")
	defer span.End()

	cursor, err := store.tenants.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeTenants(ctx, cursor)
}

func (store *TenantMongoDBStore) Update(ctx context.Context, tenant *domain.Tenant) error {
	ctx, span := store.tracer.Start(ctx, "TenantStore.Update")
	defer span.End()

	// RoomNumber must be unset explicitly, so the whole document is replaced
	// rather than $set-merged.
	result, err := store.tenants.ReplaceOne(ctx, bson.M{"_id": tenant.ID}, tenant)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound(errs.TenantNotFound)
	}
	return nil
}

func (store *TenantMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "TenantStore.Delete")
	defer span.End()

	result, err := store.tenants.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errs.NotFound(errs.TenantNotFound)
	}
	return nil
}

func (store *TenantMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Tenant, error) {
	result := store.tenants.FindOne(ctx, filter)
	var tenant domain.Tenant
	err := result.Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound(errs.TenantNotFound)
		}
		return nil, err
	}
	return &tenant, nil
}

func decodeTenants(ctx context.Context, cursor *mongo.Cursor) (tenants []*domain.Tenant, err error) {
	for cursor.Next(ctx) {
		var tenant domain.Tenant
		err = cursor.Decode(&tenant)
		if err != nil {
			return
		}
		tenants = append(tenants, &tenant)
	}
	err = cursor.Err()
	return
}
