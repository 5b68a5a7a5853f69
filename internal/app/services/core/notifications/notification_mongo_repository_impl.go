package notifications

import (
	"context"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationMongoRepository struct {
	Collection *mongo.Collection
}

var (
	notificationMongoRepositoryInstance contracts.NotificationRepository
	onceNotificationMongoRepository     sync.Once
)

func NewNotificationMongoRepository(db *mongo.Database) contracts.NotificationRepository {
	onceNotificationMongoRepository.Do(func() {
		notificationMongoRepositoryInstance = &notificationMongoRepository{
			Collection: db.Collection(constvars.MongoCollectionNotifications),
		}
	})
	return notificationMongoRepositoryInstance
}

func (r *notificationMongoRepository) Create(ctx context.Context, notification *models.Notification) (string, error) {
	result, err := r.Collection.InsertOne(ctx, notification)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *notificationMongoRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return notifications, nil
}
