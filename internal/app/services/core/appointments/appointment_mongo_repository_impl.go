package appointments

import (
	"context"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type appointmentMongoRepository struct {
	Collection *mongo.Collection
}

var (
	appointmentMongoRepositoryInstance contracts.AppointmentRepository
	onceAppointmentMongoRepository     sync.Once
)

func NewAppointmentMongoRepository(db *mongo.Database) contracts.AppointmentRepository {
	onceAppointmentMongoRepository.Do(func() {
		appointmentMongoRepositoryInstance = &appointmentMongoRepository{
			Collection: db.Collection(constvars.MongoCollectionAppointments),
		}
	})
	return appointmentMongoRepositoryInstance
}

func (r *appointmentMongoRepository) Create(ctx context.Context, appointment *models.Appointment) (string, error) {
	result, err := r.Collection.InsertOne(ctx, appointment)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *appointmentMongoRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	objectID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		return nil, exceptions.ErrMongoDBNotObjectID(err)
	}

	var appointment models.Appointment
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &appointment, nil
}

func (r *appointmentMongoRepository) FindAll(ctx context.Context, query contracts.AppointmentQuery) ([]models.Appointment, error) {
	sortOrder := 1
	if query.SortDesc {
		sortOrder = -1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "dateTime", Value: sortOrder}})
	if query.Skip > 0 {
		findOptions.SetSkip(int64(query.Skip))
	}
	if query.Limit > 0 {
		findOptions.SetLimit(int64(query.Limit))
	}

	cursor, err := r.Collection.Find(ctx, buildAppointmentFilter(query), findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return appointments, nil
}

func (r *appointmentMongoRepository) Count(ctx context.Context, query contracts.AppointmentQuery) (int, error) {
	count, err := r.Collection.CountDocuments(ctx, buildAppointmentFilter(query))
	if err != nil {
		return 0, exceptions.ErrMongoDBFindDocument(err)
	}
	return int(count), nil
}

// FindOverlapping narrows candidates by start time in mongo, since the end is derived from
// duration, and applies the exact interval test in memory.
func (r *appointmentMongoRepository) FindOverlapping(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (*models.Appointment, error) {
	filter := bson.M{
		"doctorId": doctorID,
		"status":   bson.M{"$in": models.ActiveAppointmentStatuses},
		"dateTime": bson.M{
			"$lt": end,
			"$gt": start.Add(-time.Duration(models.MaxAppointmentDuration) * time.Minute),
		},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, exceptions.ErrMongoDBNotObjectID(err)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var candidate models.Appointment
		if err := cursor.Decode(&candidate); err != nil {
			return nil, exceptions.ErrMongoDBFindDocument(err)
		}
		if candidate.Overlaps(start, end) {
			return &candidate, nil
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return nil, nil
}

func (r *appointmentMongoRepository) CompareAndSwapStatus(ctx context.Context, appointmentID string, expected models.AppointmentStatus, write contracts.AppointmentStatusWrite) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		return false, exceptions.ErrMongoDBNotObjectID(err)
	}

	set := bson.M{
		"status":    write.To,
		"updatedAt": write.UpdatedAt,
	}
	if write.CancellationReason != "" {
		set["cancellationReason"] = write.CancellationReason
	}
	if write.CancelledBy != "" {
		set["cancelledBy"] = write.CancelledBy
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": write.Change},
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": expected}, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

func (r *appointmentMongoRepository) CompareAndSwapReschedule(ctx context.Context, appointmentID string, expected models.AppointmentStatus, write contracts.AppointmentRescheduleWrite) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		return false, exceptions.ErrMongoDBNotObjectID(err)
	}

	update := bson.M{
		"$set": bson.M{
			"dateTime":        write.DateTime,
			"rescheduledFrom": write.RescheduledFrom,
			"status":          models.AppointmentStatusPending,
			"updatedAt":       write.UpdatedAt,
		},
		"$push": bson.M{"statusHistory": bson.M{"$each": write.Changes}},
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": expected}, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

func (r *appointmentMongoRepository) SetRating(ctx context.Context, appointmentID string, rating models.Rating, updatedAt time.Time) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		return false, exceptions.ErrMongoDBNotObjectID(err)
	}

	filter := bson.M{"_id": objectID, "status": models.AppointmentStatusCompleted}
	update := bson.M{"$set": bson.M{"rating": rating, "updatedAt": updatedAt}}

	result, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

func buildAppointmentFilter(query contracts.AppointmentQuery) bson.M {
	filter := bson.M{}
	if query.ParticipantID != "" {
		filter["$or"] = []bson.M{
			{"patientId": query.ParticipantID},
			{"doctorId": query.ParticipantID},
		}
	}
	if query.PatientID != "" {
		filter["patientId"] = query.PatientID
	}
	if query.DoctorID != "" {
		filter["doctorId"] = query.DoctorID
	}
	if len(query.Statuses) > 0 {
		filter["status"] = bson.M{"$in": query.Statuses}
	}
	dateRange := bson.M{}
	if !query.From.IsZero() {
		dateRange["$gte"] = query.From
	}
	if !query.To.IsZero() {
		dateRange["$lt"] = query.To
	}
	if len(dateRange) > 0 {
		filter["dateTime"] = dateRange
	}
	return filter
}
