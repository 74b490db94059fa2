package firestorerepos

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

const summaryField = "event_summary"

type eventRepository struct {
	coll   *firestore.CollectionRef
	logger core.Logger
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(client *firestore.Client, logger core.Logger) event.Repository {
	return &eventRepository{coll: client.Collection(EventCollection), logger: logger}
}

// decodeEvent keeps the event when only its summary is unreadable.
func (repo *eventRepository) decodeEvent(doc *firestore.DocumentSnapshot) (event.Event, error) {
	var e event.Event
	if err := doc.DataTo(&e); err != nil {
		return event.Event{}, errors.Wrapf(err, "decoding event %s", doc.Ref.ID)
	}
	e.ID = doc.Ref.ID

	summary, err := decodeSummary(doc.Data()[summaryField])
	if err != nil {
		repo.logger.Warn(fmt.Sprintf("ignoring summary of event %s: %v", e.ID, err), err)
		return e, nil
	}
	e.Summary = summary
	return e, nil
}

// decodeEvents skips the documents that cannot be decoded.
func (repo *eventRepository) decodeEvents(docs []*firestore.DocumentSnapshot) []event.Event {
	events := make([]event.Event, 0, len(docs))
	for _, doc := range docs {
		e, err := repo.decodeEvent(doc)
		if err != nil {
			repo.logger.Warn(fmt.Sprintf("skipping event: %v", err), err)
			continue
		}
		events = append(events, e)
	}
	return events
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	ref := repo.coll.NewDoc()
	if e.ID != "" {
		ref = repo.coll.Doc(e.ID)
	}
	e.ID = ref.ID
	if _, err := ref.Create(ctx, e); err != nil {
		return event.Event{}, err
	}
	if e.Summary != nil {
		if err := repo.SetEventSummary(ctx, e.ID, *e.Summary); err != nil {
			return event.Event{}, err
		}
	}
	return e, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if id == "" {
		return event.Event{}, event.ErrNotFound
	}
	snap, err := repo.coll.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return repo.decodeEvent(snap)
}

func (repo *eventRepository) EventNameExists(ctx context.Context, name string, excludedIDs ...string) (bool, error) {
	docs, err := repo.coll.Where(event.FieldName, "==", name).Documents(ctx).GetAll()
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		excluded := false
		for _, id := range excludedIDs {
			if doc.Ref.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return true, nil
		}
	}
	return false, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter) ([]event.Event, error) {
	q := repo.coll.Query
	if filter.Category != "" {
		q = q.Where(event.FieldCategory, "==", filter.Category)
	}
	if filter.AdminEmail != "" {
		q = q.Where(event.FieldAdminEmail, "==", filter.AdminEmail)
	}
	if filter.OrganizedBy != "" {
		q = q.Where(event.FieldOrganizedBy, "==", filter.OrganizedBy)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return repo.decodeEvents(docs), nil
}

func (repo *eventRepository) QueryEventsIn(ctx context.Context, field string, values []string) ([]event.Event, error) {
	if err := checkInValues(values); err != nil {
		return nil, err
	}
	q := repo.coll.Where(field, "in", values)
	if field == event.FieldID {
		// documents written by other clients carry no id field
		refs := make([]*firestore.DocumentRef, 0, len(values))
		for _, id := range values {
			if id != "" {
				refs = append(refs, repo.coll.Doc(id))
			}
		}
		if len(refs) == 0 {
			return []event.Event{}, nil
		}
		q = repo.coll.Where(firestore.DocumentID, "in", refs)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return repo.decodeEvents(docs), nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	_, err := repo.coll.Doc(e.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: e.Name},
		{Path: "category", Value: e.Category},
		{Path: "about", Value: e.About},
		{Path: "imageUrl", Value: e.ImageURL},
		{Path: "instaId", Value: e.InstaID},
		{Path: "date", Value: e.Date},
		{Path: "email", Value: e.Email},
		{Path: "organizedBy", Value: e.OrganizedBy},
		{Path: "updatedAt", Value: e.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return repo.GetEvent(ctx, e.ID)
}

func (repo *eventRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := repo.coll.Doc(id).Update(ctx, []firestore.Update{{Path: "views", Value: firestore.Increment(1)}})
	if isNotFound(err) {
		return event.ErrNotFound
	}
	return err
}

func (repo *eventRepository) SetEventSummary(ctx context.Context, id string, summary event.Summary) error {
	_, err := repo.coll.Doc(id).Update(ctx, []firestore.Update{{Path: summaryField, Value: summary}})
	if isNotFound(err) {
		return event.ErrNotFound
	}
	return err
}

func (repo *eventRepository) SetEventApproval(ctx context.Context, id string, approved bool) error {
	_, err := repo.coll.Doc(id).Update(ctx, []firestore.Update{{Path: "approved_by_manager", Value: approved}})
	if isNotFound(err) {
		return event.ErrNotFound
	}
	return err
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	_, err := repo.coll.Doc(id).Delete(ctx)
	return err
}
