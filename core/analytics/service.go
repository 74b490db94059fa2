package analytics

import (
	"context"

	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

// EventLister loads the event collection.
type EventLister interface {
	QueryEvents(ctx context.Context, filter event.QueryFilter) ([]event.Event, error)
}

type Service struct {
	events EventLister
}

func NewService(events EventLister) *Service {
	return &Service{events: events}
}

// Report computes the analytics over every event. Only managers and admins may read it.
func (svc *Service) Report(ctx context.Context, p core.Principal) (Report, error) {
	if !(p.IsManager() || p.IsAdmin()) {
		return Report{}, core.ErrForbidden
	}
	return svc.Compute(ctx)
}

// Compute computes the analytics over every event, without authorization. Used by the admin CLI.
func (svc *Service) Compute(ctx context.Context) (Report, error) {
	events, err := svc.events.QueryEvents(ctx, event.QueryFilter{})
	if err != nil {
		return Report{}, errors.Wrap(err, "querying events")
	}
	return Compute(events), nil
}
