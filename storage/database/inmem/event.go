package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

type eventRepository struct {
	db    *eventTable
	stats *recorder
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db.event, stats: db.stats}
}

// query returns the events in insertion order.
func (repo *eventRepository) query(match func(e event.Event) bool) []event.Event {
	events := make([]event.Event, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		if match(*e) {
			events = append(events, *e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return repo.db.seq[events[i].ID] < repo.db.seq[events[j].ID] })
	return events
}

func (repo *eventRepository) CreateEvent(_ context.Context, e event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, ok := repo.db.table[e.ID]; ok {
		return event.Event{}, errors.Errorf("event %q already exists", e.ID)
	}
	repo.db.table[e.ID] = &e
	repo.db.next++
	repo.db.seq[e.ID] = repo.db.next
	return e, nil
}

func (repo *eventRepository) GetEvent(_ context.Context, id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return *e, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) EventNameExists(_ context.Context, name string, excludedIDs ...string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, e := range repo.db.table {
		if e.Name == name && !contains(excludedIDs, e.ID) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter event.QueryFilter) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(filter.Match), nil
}

func (repo *eventRepository) QueryEventsIn(_ context.Context, field string, values []string) ([]event.Event, error) {
	if len(values) > core.MaxInQueryValues {
		return nil, core.ErrTooManyValues
	}
	if err := repo.stats.inQuery(values); err != nil {
		return nil, err
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	var get func(e event.Event) string
	switch field {
	case event.FieldID:
		get = func(e event.Event) string { return e.ID }
	case event.FieldName:
		get = func(e event.Event) string { return e.Name }
	case event.FieldCategory:
		get = func(e event.Event) string { return e.Category }
	case event.FieldAdminEmail:
		get = func(e event.Event) string { return e.AdminEmail }
	case event.FieldOrganizedBy:
		get = func(e event.Event) string { return e.OrganizedBy }
	default:
		return nil, errors.Errorf("unknown event field %q", field)
	}
	return repo.query(func(e event.Event) bool { return contains(values, get(e)) }), nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, e event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[e.ID]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	// views, approval & summary have their own writers
	e.Views = orig.Views
	e.ApprovedByManager = orig.ApprovedByManager
	e.Summary = orig.Summary
	e.CreatedAt = orig.CreatedAt
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *eventRepository) IncrementViews(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.table[id]
	if !ok {
		return event.ErrNotFound
	}
	e.Views++
	return nil
}

func (repo *eventRepository) SetEventSummary(_ context.Context, id string, summary event.Summary) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.table[id]
	if !ok {
		return event.ErrNotFound
	}
	e.Summary = &summary
	return nil
}

func (repo *eventRepository) SetEventApproval(_ context.Context, id string, approved bool) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.table[id]
	if !ok {
		return event.ErrNotFound
	}
	e.ApprovedByManager = &approved
	return nil
}

func (repo *eventRepository) DeleteEvent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	delete(repo.db.seq, id)
	return nil
}
