package firestorerepos

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core/application"
)

type applicationRepository struct {
	coll *firestore.CollectionRef
}

var _ application.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(client *firestore.Client) application.Repository {
	return &applicationRepository{coll: client.Collection(ApplicationCollection)}
}

func decodeApplications(docs []*firestore.DocumentSnapshot) ([]application.Application, error) {
	apps := make([]application.Application, 0, len(docs))
	for _, doc := range docs {
		var app application.Application
		if err := doc.DataTo(&app); err != nil {
			return nil, errors.Wrapf(err, "decoding application %s", doc.Ref.ID)
		}
		app.ID = doc.Ref.ID
		apps = append(apps, app)
	}
	return apps, nil
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	if _, err := repo.coll.Doc(app.ID).Create(ctx, app); err != nil {
		if isAlreadyExists(err) {
			return application.Application{}, application.ErrAlreadyApplied
		}
		return application.Application{}, err
	}
	return app, nil
}

func (repo *applicationRepository) GetApplication(ctx context.Context, id string) (application.Application, error) {
	if id == "" {
		return application.Application{}, application.ErrNotFound
	}
	snap, err := repo.coll.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	apps, err := decodeApplications([]*firestore.DocumentSnapshot{snap})
	if err != nil {
		return application.Application{}, err
	}
	return apps[0], nil
}

func (repo *applicationRepository) QueryApplicationsByUser(ctx context.Context, email string) ([]application.Application, error) {
	docs, err := repo.coll.Where(application.FieldUserEmail, "==", email).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeApplications(docs)
}

func (repo *applicationRepository) QueryApplicationsIn(ctx context.Context, field string, values []string) ([]application.Application, error) {
	if err := checkInValues(values); err != nil {
		return nil, err
	}
	docs, err := repo.coll.Where(field, "in", values).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeApplications(docs)
}

func (repo *applicationRepository) UpdateApplicationStatus(
	ctx context.Context,
	id string,
	status application.Status,
	updatedAt time.Time,
) (application.Application, error) {
	_, err := repo.coll.Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: updatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return repo.GetApplication(ctx, id)
}

func (repo *applicationRepository) DeleteApplication(ctx context.Context, id string) error {
	_, err := repo.coll.Doc(id).Delete(ctx)
	return err
}
