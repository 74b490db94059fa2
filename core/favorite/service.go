package favorite

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

var (
	// errors
	ErrNotFound = errors.New("favorites record not found")
)

type (
	Repository interface {
		// GetFavorites returns ErrNotFound when the user has no record yet.
		GetFavorites(ctx context.Context, email string) (Record, error)
		// CreateFavorites creates an empty record unless one already exists, and returns the stored record.
		// It never fails because a record exists.
		CreateFavorites(ctx context.Context, email string) (Record, error)
		// SetFavorites writes only the favorites (and email) fields of the record, creating it if absent.
		SetFavorites(ctx context.Context, email string, keys []string) error
	}

	// EventFinder runs membership queries on the event collection.
	EventFinder interface {
		QueryEventsIn(ctx context.Context, field string, values []string) ([]event.Event, error)
	}

	Service struct {
		repo        Repository
		events      EventFinder
		batchSize   int
		concurrency int
		joinField   string
		logger      core.Logger
	}
)

func NewService(repo Repository, events EventFinder, conf core.FavoritesConfig, logger core.Logger) *Service {
	svc := &Service{
		repo:        repo,
		events:      events,
		batchSize:   conf.BatchSize,
		concurrency: conf.Concurrency,
		joinField:   event.FieldID,
		logger:      logger,
	}
	if svc.batchSize <= 0 || svc.batchSize > core.MaxInQueryValues {
		svc.batchSize = core.MaxInQueryValues
	}
	if svc.concurrency < 1 {
		svc.concurrency = 1
	}
	if conf.JoinField == event.FieldName {
		svc.joinField = event.FieldName
	}
	return svc
}

// JoinField is the event field favorites are matched against.
func (svc *Service) JoinField() string { return svc.joinField }

// Get returns the user's favorites, creating an empty record on first access.
// A principal without an email gets an empty list and core.ErrMissingIdentity.
func (svc *Service) Get(ctx context.Context, p core.Principal) ([]string, error) {
	email, err := p.Key()
	if err != nil {
		return []string{}, err
	}

	rec, err := svc.repo.GetFavorites(ctx, email)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return []string{}, errors.Wrap(err, "getting favorites")
		}
		if rec, err = svc.repo.CreateFavorites(ctx, email); err != nil {
			return []string{}, errors.Wrap(err, "creating favorites")
		}
	}
	if rec.Favorites == nil {
		return []string{}, nil
	}
	return rec.Favorites, nil
}

// Set replaces the user's favorites with keys. Blank and duplicate keys are dropped, the first occurrence wins.
// Concurrent writers are not coordinated: the last write wins.
func (svc *Service) Set(ctx context.Context, p core.Principal, keys []string) ([]string, error) {
	email, err := p.Key()
	if err != nil {
		return []string{}, err
	}

	keys = core.CompactStrings(keys)
	if err = svc.repo.SetFavorites(ctx, email, keys); err != nil {
		return []string{}, errors.Wrap(err, "setting favorites")
	}
	return keys, nil
}

// Add marks key as a favorite. Adding an existing favorite is a no-op.
func (svc *Service) Add(ctx context.Context, p core.Principal, key string) ([]string, error) {
	favs, err := svc.Get(ctx, p)
	if err != nil {
		return favs, err
	}
	key = core.CleanString(key)
	for _, fav := range favs {
		if fav == key {
			return favs, nil
		}
	}
	return svc.Set(ctx, p, append(favs, key))
}

// Remove un-marks key. Removing a missing favorite is a no-op.
func (svc *Service) Remove(ctx context.Context, p core.Principal, key string) ([]string, error) {
	favs, err := svc.Get(ctx, p)
	if err != nil {
		return favs, err
	}
	key = core.CleanString(key)
	kept := make([]string, 0, len(favs))
	for _, fav := range favs {
		if fav != key {
			kept = append(kept, fav)
		}
	}
	if len(kept) == len(favs) {
		return favs, nil
	}
	return svc.Set(ctx, p, kept)
}

// Resolve loads the events matching keys, issuing one membership query per batch of keys.
// The result follows the order of keys, without duplicates; unknown keys are skipped.
// Any failed batch fails the whole resolution.
func (svc *Service) Resolve(ctx context.Context, keys []string) ([]event.Event, error) {
	keys = core.CompactStrings(keys)
	if len(keys) == 0 {
		return []event.Event{}, nil
	}

	batches := core.Chunk(keys, svc.batchSize)
	results := make([][]event.Event, len(batches))

	if svc.concurrency == 1 {
		for i, batch := range batches {
			events, err := svc.events.QueryEventsIn(ctx, svc.joinField, batch)
			if err != nil {
				return nil, errors.Wrapf(err, "resolving favorites batch %d/%d", i+1, len(batches))
			}
			results[i] = events
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(svc.concurrency)
		for i, batch := range batches {
			i, batch := i, batch
			g.Go(func() error {
				events, err := svc.events.QueryEventsIn(gctx, svc.joinField, batch)
				if err != nil {
					return errors.Wrapf(err, "resolving favorites batch %d/%d", i+1, len(batches))
				}
				results[i] = events
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	byKey := make(map[string]event.Event, len(keys))
	for _, events := range results {
		for _, e := range events {
			k := e.Key(svc.joinField)
			if _, ok := byKey[k]; !ok {
				byKey[k] = e
			}
		}
	}

	resolved := make([]event.Event, 0, len(byKey))
	for _, k := range keys {
		if e, ok := byKey[k]; ok {
			resolved = append(resolved, e)
		}
	}
	return resolved, nil
}

// ResolveFor loads the events the user marked as favorites.
func (svc *Service) ResolveFor(ctx context.Context, p core.Principal) ([]event.Event, error) {
	keys, err := svc.Get(ctx, p)
	if err != nil {
		return []event.Event{}, err
	}
	events, err := svc.Resolve(ctx, keys)
	if err != nil {
		return []event.Event{}, err
	}
	return events, nil
}
