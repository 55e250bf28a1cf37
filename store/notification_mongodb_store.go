package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustinVillacorta/boardingHouse-repo-sub000/domain"
	errs "github.com/JustinVillacorta/boardingHouse-repo-sub000/errors"
)

const NOTIFICATIONS_COLLECTION = "notifications"

type NotificationMongoDBStore struct {
	notifications *mongo.Collection
	tracer        trace.Tracer
}

func NewNotificationMongoDBStore(client *mongo.Client, tracer trace.Tracer) domain.NotificationStore {
	notifications := client.Database(DATABASE).Collection(NOTIFICATIONS_COLLECTION)
	return &NotificationMongoDBStore{
		notifications: notifications,
		tracer:        tracer,
	}
}

func (store *NotificationMongoDBStore) Insert(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	ctx, span := store.tracer.Start(ctx, "NotificationStore.Insert")
	defer span.End()

	notification.ID = primitive.NewObjectID()
	result, err := store.notifications.InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}
	notification.ID = result.InsertedID.(primitive.ObjectID)
	return notification, nil
}

func (store *NotificationMongoDBStore) GetAll(ctx context.Context) ([]*domain.Notification, error) {
	ctx, span := store.tracer.Start(ctx, "NotificationStore.GetAll")
	defer span.End()

	return store.filter(ctx, bson.D{})
}

func (store *NotificationMongoDBStore) GetByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]*domain.Notification, error) {
	ctx, span := store.tracer.Start(ctx, "NotificationStore.GetByTenant")
	defer span.End()

	return store.filter(ctx, bson.M{"tenantId": tenantID})
}

func (store *NotificationMongoDBStore) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "NotificationStore.MarkRead")
	defer span.End()

	result, err := store.notifications.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("Notification not found")
	}
	return nil
}

func (store *NotificationMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := store.notifications.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*domain.Notification
	for cursor.Next(ctx) {
		var notification domain.Notification
		if err := cursor.Decode(&notification); err != nil {
			return nil, err
		}
		notifications = append(notifications, &notification)
	}
	return notifications, cursor.Err()
}
