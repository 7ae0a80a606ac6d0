package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/hazqeelknight/events/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetAvailabilityData fetches every record the engine reads for one
// organizer. Range-scoped collections are filtered to records that can
// influence [from, to); recurring records are fetched unfiltered because
// their occurrences may fall inside the range regardless of anchor dates.
func (repo *mongoAvailabilityRepo) GetAvailabilityData(ctx context.Context, organizerID string, from, to time.Time) (*models.AvailabilityData, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data := &models.AvailabilityData{}

	cursor, err := repo.rulesColl.Find(ctx, bson.M{"organizer_id": organizerID, "active": true})
	if err != nil {
		return nil, fmt.Errorf("error fetching availability rules for organizer %s: %w", organizerID, err)
	}
	if err := cursor.All(ctx, &data.Rules); err != nil {
		return nil, fmt.Errorf("error decoding availability rules: %w", err)
	}

	cursor, err = repo.overridesColl.Find(ctx, bson.M{
		"organizer_id": organizerID,
		"date": bson.M{
			"$gte": from.Format(models.DateLayout),
			"$lte": to.Format(models.DateLayout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching date overrides for organizer %s: %w", organizerID, err)
	}
	if err := cursor.All(ctx, &data.Overrides); err != nil {
		return nil, fmt.Errorf("error decoding date overrides: %w", err)
	}

	// One-off blocks intersecting the range, plus any block carrying its own
	// recurrence (the anchor interval may predate the range).
	cursor, err = repo.blockedColl.Find(ctx, bson.M{
		"organizer_id": organizerID,
		"$or": []bson.M{
			{"end": bson.M{"$gt": from}, "start": bson.M{"$lt": to.AddDate(0, 0, 1)}},
			{"recurrence": bson.M{"$ne": nil}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching blocked times for organizer %s: %w", organizerID, err)
	}
	if err := cursor.All(ctx, &data.BlockedTimes); err != nil {
		return nil, fmt.Errorf("error decoding blocked times: %w", err)
	}

	cursor, err = repo.recurringColl.Find(ctx, bson.M{"organizer_id": organizerID, "active": true})
	if err != nil {
		return nil, fmt.Errorf("error fetching recurring blocks for organizer %s: %w", organizerID, err)
	}
	if err := cursor.All(ctx, &data.RecurringBlocks); err != nil {
		return nil, fmt.Errorf("error decoding recurring blocks: %w", err)
	}

	var buffers models.BufferSettings
	err = repo.buffersColl.FindOne(ctx, bson.M{"organizer_id": organizerID}).Decode(&buffers)
	switch err {
	case nil:
		data.Buffers = &buffers
	case mongo.ErrNoDocuments:
		// Valid: the engine falls back to zero buffers and records a warning.
	default:
		return nil, fmt.Errorf("error fetching buffer settings for organizer %s: %w", organizerID, err)
	}

	// Bookings fetched a day wide on both sides so gap widening cannot miss a
	// meeting just outside the range.
	cursor, err = repo.bookingsColl.Find(ctx, bson.M{
		"organizer_id": organizerID,
		"status":       "confirmed",
		"end":          bson.M{"$gt": from.AddDate(0, 0, -1)},
		"start":        bson.M{"$lt": to.AddDate(0, 0, 2)},
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings for organizer %s: %w", organizerID, err)
	}
	if err := cursor.All(ctx, &data.Bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}

	return data, nil
}
