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

const CREDENTIALS_COLLECTION = "credentials"

type AuthMongoDBStore struct {
	credentials *mongo.Collection
	tracer      trace.Tracer
}

func NewAuthMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.AuthStore {
	credentials := client.Database(DATABASE).Collection(CREDENTIALS_COLLECTION)
	credentials.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &AuthMongoDBStore{
		credentials: credentials,
		tracer:      tracer,
	}
}

func (store *AuthMongoDBStore) Register(ctx context.Context, credentials *domain.Credentials) (*domain.Credentials, error) {
	ctx, span := store.tracer.Start(ctx, "AuthStore.Register")
	defer span.End()

	credentials.ID = primitive.NewObjectID()
	result, err := store.credentials.InsertOne(ctx, credentials)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errs.Validation(errs.UsernameExist)
		}
		return nil, err
	}
	credentials.ID = result.InsertedID.(primitive.ObjectID)
	return credentials, nil
}

func (store *AuthMongoDBStore) GetByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	ctx, span := store.tracer.Start(ctx, "AuthStore.GetByUsername")
	defer span.End()

	return store.filterOne(ctx, bson.M{"username": username})
}

func (store *AuthMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Credentials, error) {
	ctx, span := store.tracer.Start(ctx, "AuthStore.Get")
	defer span.End()

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *AuthMongoDBStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, hashed string) error {
	ctx, span := store.tracer.Start(ctx, "AuthStore.UpdatePassword")
	defer span.End()

	result, err := store.credentials.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hashed}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("Account not found")
	}
	return nil
}

func (store *AuthMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Credentials, error) {
	result := store.credentials.FindOne(ctx, filter)
	var credentials domain.Credentials
	err := result.Decode(&credentials)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound(errs.InvalidCredentials)
		}
		return nil, err
	}
	return &credentials, nil
}
