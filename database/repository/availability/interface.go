package availabilityRepo

import (
	"context"
	"time"

	"github.com/hazqeelknight/events/database"
	"github.com/hazqeelknight/events/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityRepository supplies the engine's input records in bulk: rules,
// overrides, blocks, recurring block series, buffer settings and confirmed
// bookings for one organizer. The engine treats everything as read-only.
type AvailabilityRepository interface {
	GetAvailabilityData(ctx context.Context, organizerID string, from, to time.Time) (*models.AvailabilityData, error)
}

type mongoAvailabilityRepo struct {
	rulesColl     *mongo.Collection
	overridesColl *mongo.Collection
	blockedColl   *mongo.Collection
	recurringColl *mongo.Collection
	buffersColl   *mongo.Collection
	bookingsColl  *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a MongoDB-backed AvailabilityRepository.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	db := database.MongoClient.Database("events")
	return &mongoAvailabilityRepo{
		rulesColl:     db.Collection("availability_rules"),
		overridesColl: db.Collection("date_overrides"),
		blockedColl:   db.Collection("blocked_times"),
		recurringColl: db.Collection("recurring_blocked_times"),
		buffersColl:   db.Collection("buffer_settings"),
		bookingsColl:  db.Collection("bookings"),
	}
}
