package mongorepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuslink/campuslink/core/event"
)

type eventRepository struct {
	coll *mongo.Collection
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *mongo.Database) event.Repository {
	return &eventRepository{coll: db.Collection(EventCollection)}
}

// documentField maps event fields to their stored names.
func documentField(field string) string {
	if field == event.FieldID {
		return "_id"
	}
	return field
}

func (repo *eventRepository) find(ctx context.Context, filter interface{}) ([]event.Event, error) {
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0)
	if err = cursor.All(ctx, &events); err != nil {
		return nil, errors.Wrap(err, "decoding events")
	}
	return events, nil
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, err := repo.coll.InsertOne(ctx, e); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	var e event.Event
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return e, nil
}

func (repo *eventRepository) EventNameExists(ctx context.Context, name string, excludedIDs ...string) (bool, error) {
	filter := bson.M{event.FieldName: name}
	if len(excludedIDs) > 0 {
		filter["_id"] = bson.M{"$nin": excludedIDs}
	}
	n, err := repo.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter) ([]event.Event, error) {
	query := bson.M{}
	if filter.Category != "" {
		query[event.FieldCategory] = filter.Category
	}
	if filter.AdminEmail != "" {
		query[event.FieldAdminEmail] = filter.AdminEmail
	}
	if filter.OrganizedBy != "" {
		query[event.FieldOrganizedBy] = filter.OrganizedBy
	}
	return repo.find(ctx, query)
}

func (repo *eventRepository) QueryEventsIn(ctx context.Context, field string, values []string) ([]event.Event, error) {
	if err := checkInValues(values); err != nil {
		return nil, err
	}
	return repo.find(ctx, bson.M{documentField(field): bson.M{"$in": values}})
}

func (repo *eventRepository) updateOne(ctx context.Context, id string, update bson.D) error {
	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	updateFields := bson.D{
		{Key: "name", Value: e.Name},
		{Key: "category", Value: e.Category},
		{Key: "about", Value: e.About},
		{Key: "imageUrl", Value: e.ImageURL},
		{Key: "instaId", Value: e.InstaID},
		{Key: "date", Value: e.Date},
		{Key: "email", Value: e.Email},
		{Key: "organizedBy", Value: e.OrganizedBy},
		{Key: "updatedAt", Value: e.UpdatedAt},
	}
	if err := repo.updateOne(ctx, e.ID, bson.D{{Key: "$set", Value: updateFields}}); err != nil {
		return event.Event{}, err
	}
	return repo.GetEvent(ctx, e.ID)
}

func (repo *eventRepository) IncrementViews(ctx context.Context, id string) error {
	return repo.updateOne(ctx, id, bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
}

func (repo *eventRepository) SetEventSummary(ctx context.Context, id string, summary event.Summary) error {
	return repo.updateOne(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "event_summary", Value: summary}}}})
}

func (repo *eventRepository) SetEventApproval(ctx context.Context, id string, approved bool) error {
	return repo.updateOne(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "approved_by_manager", Value: approved}}}})
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	_, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
