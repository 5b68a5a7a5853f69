package calendars

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

type calendarMongoRepository struct {
	Collection *mongo.Collection
}

var (
	calendarMongoRepositoryInstance contracts.CalendarRepository
	onceCalendarMongoRepository     sync.Once
)

func NewCalendarMongoRepository(db *mongo.Database) contracts.CalendarRepository {
	onceCalendarMongoRepository.Do(func() {
		calendarMongoRepositoryInstance = &calendarMongoRepository{
			Collection: db.Collection(constvars.MongoCollectionDoctorCalendars),
		}
	})
	return calendarMongoRepositoryInstance
}

func (r *calendarMongoRepository) FindByDoctorID(ctx context.Context, doctorID string) (*models.DoctorCalendar, error) {
	var calendar models.DoctorCalendar
	err := r.Collection.FindOne(ctx, bson.M{"doctorId": doctorID}).Decode(&calendar)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &calendar, nil
}

// Upsert replaces the whole document. The id is left out of the replacement because
// it is immutable once the first write created it.
func (r *calendarMongoRepository) Upsert(ctx context.Context, calendar *models.DoctorCalendar) error {
	replacement := *calendar
	replacement.ID = ""

	result, err := r.Collection.ReplaceOne(ctx,
		bson.M{"doctorId": calendar.DoctorID},
		replacement,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	if objectID, ok := result.UpsertedID.(primitive.ObjectID); ok {
		calendar.ID = objectID.Hex()
	}
	return nil
}
