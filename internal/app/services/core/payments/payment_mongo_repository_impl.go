package payments

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

type paymentMongoRepository struct {
	Collection *mongo.Collection
}

var (
	paymentMongoRepositoryInstance contracts.PaymentRepository
	oncePaymentMongoRepository     sync.Once
)

func NewPaymentMongoRepository(db *mongo.Database) contracts.PaymentRepository {
	oncePaymentMongoRepository.Do(func() {
		paymentMongoRepositoryInstance = &paymentMongoRepository{
			Collection: db.Collection(constvars.MongoCollectionPayments),
		}
	})
	return paymentMongoRepositoryInstance
}

func (r *paymentMongoRepository) Create(ctx context.Context, payment *models.Payment) (string, error) {
	result, err := r.Collection.InsertOne(ctx, payment)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *paymentMongoRepository) FindByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	objectID, err := primitive.ObjectIDFromHex(paymentID)
	if err != nil {
		return nil, exceptions.ErrMongoDBNotObjectID(err)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *paymentMongoRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"paypalOrderId": orderID})
}

func (r *paymentMongoRepository) FindLatestByAppointmentID(ctx context.Context, appointmentID string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"appointmentId": appointmentID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
}

func (r *paymentMongoRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Payment, error) {
	var payment models.Payment
	err := r.Collection.FindOne(ctx, filter, opts...).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &payment, nil
}

func (r *paymentMongoRepository) CountByAppointmentID(ctx context.Context, appointmentID string) (int, error) {
	count, err := r.Collection.CountDocuments(ctx, bson.M{"appointmentId": appointmentID})
	if err != nil {
		return 0, exceptions.ErrMongoDBFindDocument(err)
	}
	return int(count), nil
}

func (r *paymentMongoRepository) FindAll(ctx context.Context, query contracts.PaymentQuery) ([]models.Payment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if query.Skip > 0 {
		findOptions.SetSkip(int64(query.Skip))
	}
	if query.Limit > 0 {
		findOptions.SetLimit(int64(query.Limit))
	}

	cursor, err := r.Collection.Find(ctx, buildPaymentFilter(query), findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	payments := make([]models.Payment, 0)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return payments, nil
}

func (r *paymentMongoRepository) Count(ctx context.Context, query contracts.PaymentQuery) (int, error) {
	count, err := r.Collection.CountDocuments(ctx, buildPaymentFilter(query))
	if err != nil {
		return 0, exceptions.ErrMongoDBFindDocument(err)
	}
	return int(count), nil
}

func (r *paymentMongoRepository) SummarizeByStatus(ctx context.Context, participantID string) ([]models.PaymentStatusSummary, error) {
	cursor, err := r.Collection.Aggregate(ctx, buildSummaryPipeline(participantID))
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	summaries := make([]models.PaymentStatusSummary, 0)
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	return summaries, nil
}

func (r *paymentMongoRepository) CompareAndSwapStatus(ctx context.Context, paymentID string, expected []models.PaymentStatus, write contracts.PaymentWrite) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(paymentID)
	if err != nil {
		return false, exceptions.ErrMongoDBNotObjectID(err)
	}

	set := bson.M{
		"status":    write.To,
		"updatedAt": write.UpdatedAt,
	}
	if write.PayerID != "" {
		set["payerId"] = write.PayerID
	}
	if write.TransactionDetails != nil {
		set["transactionDetails"] = write.TransactionDetails
	}
	if write.RefundDetails != nil {
		set["refundDetails"] = write.RefundDetails
	}

	result, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": bson.M{"$in": expected}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

func buildPaymentFilter(query contracts.PaymentQuery) bson.M {
	filter := bson.M{}
	if query.ParticipantID != "" {
		filter["$or"] = []bson.M{
			{"patientId": query.ParticipantID},
			{"doctorId": query.ParticipantID},
		}
	}
	if query.AppointmentID != "" {
		filter["appointmentId"] = query.AppointmentID
	}
	if len(query.Statuses) > 0 {
		filter["status"] = bson.M{"$in": query.Statuses}
	}
	return filter
}

func buildSummaryPipeline(participantID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: buildPaymentFilter(contracts.PaymentQuery{ParticipantID: participantID})}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}
