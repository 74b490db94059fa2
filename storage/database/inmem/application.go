package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/application"
)

type applicationRepository struct {
	db    *applicationTable
	stats *recorder
}

var _ application.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{db: db.application, stats: db.stats}
}

func (repo *applicationRepository) query(match func(app application.Application) bool) []application.Application {
	apps := make([]application.Application, 0)
	for _, app := range repo.db.table {
		if match(*app) {
			apps = append(apps, *app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps
}

func (repo *applicationRepository) CreateApplication(_ context.Context, app application.Application) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[app.ID]; ok {
		return application.Application{}, application.ErrAlreadyApplied
	}
	repo.db.table[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) GetApplication(_ context.Context, id string) (application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return *app, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) QueryApplicationsByUser(_ context.Context, email string) ([]application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(app application.Application) bool { return app.UserEmail == email }), nil
}

func (repo *applicationRepository) QueryApplicationsIn(_ context.Context, field string, values []string) ([]application.Application, error) {
	if len(values) > core.MaxInQueryValues {
		return nil, core.ErrTooManyValues
	}
	if err := repo.stats.inQuery(values); err != nil {
		return nil, err
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	var get func(app application.Application) string
	switch field {
	case application.FieldEventID:
		get = func(app application.Application) string { return app.EventID }
	case application.FieldUserEmail:
		get = func(app application.Application) string { return app.UserEmail }
	default:
		return nil, errors.Errorf("unknown application field %q", field)
	}
	return repo.query(func(app application.Application) bool { return contains(values, get(app)) }), nil
}

func (repo *applicationRepository) UpdateApplicationStatus(
	_ context.Context,
	id string,
	status application.Status,
	updatedAt time.Time,
) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.table[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = updatedAt
	return *app, nil
}

func (repo *applicationRepository) DeleteApplication(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
