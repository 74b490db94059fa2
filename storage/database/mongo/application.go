package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuslink/campuslink/core/application"
)

type applicationRepository struct {
	coll *mongo.Collection
}

var _ application.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(db *mongo.Database) application.Repository {
	return &applicationRepository{coll: db.Collection(ApplicationCollection)}
}

func (repo *applicationRepository) find(ctx context.Context, filter interface{}) ([]application.Application, error) {
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	apps := make([]application.Application, 0)
	if err = cursor.All(ctx, &apps); err != nil {
		return nil, errors.Wrap(err, "decoding applications")
	}
	return apps, nil
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	if _, err := repo.coll.InsertOne(ctx, app); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return application.Application{}, application.ErrAlreadyApplied
		}
		return application.Application{}, err
	}
	return app, nil
}

func (repo *applicationRepository) GetApplication(ctx context.Context, id string) (application.Application, error) {
	var app application.Application
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&app); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return app, nil
}

func (repo *applicationRepository) QueryApplicationsByUser(ctx context.Context, email string) ([]application.Application, error) {
	return repo.find(ctx, bson.M{application.FieldUserEmail: email})
}

func (repo *applicationRepository) QueryApplicationsIn(ctx context.Context, field string, values []string) ([]application.Application, error) {
	if err := checkInValues(values); err != nil {
		return nil, err
	}
	return repo.find(ctx, bson.M{field: bson.M{"$in": values}})
}

func (repo *applicationRepository) UpdateApplicationStatus(
	ctx context.Context,
	id string,
	status application.Status,
	updatedAt time.Time,
) (application.Application, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(status)},
		{Key: "updatedAt", Value: updatedAt},
	}}}
	result, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return application.Application{}, err
	}
	if result.MatchedCount == 0 {
		return application.Application{}, application.ErrNotFound
	}
	return repo.GetApplication(ctx, id)
}

func (repo *applicationRepository) DeleteApplication(ctx context.Context, id string) error {
	_, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
