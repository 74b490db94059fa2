package firestorerepos

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core/favorite"
)

type favoriteRepository struct {
	coll *firestore.CollectionRef
}

var _ favorite.Repository = (*favoriteRepository)(nil)

func NewFavoriteRepository(client *firestore.Client) favorite.Repository {
	return &favoriteRepository{coll: client.Collection(FavoriteCollection)}
}

func (repo *favoriteRepository) GetFavorites(ctx context.Context, email string) (favorite.Record, error) {
	snap, err := repo.coll.Doc(email).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return favorite.Record{}, favorite.ErrNotFound
		}
		return favorite.Record{}, err
	}
	var rec favorite.Record
	if err = snap.DataTo(&rec); err != nil {
		return favorite.Record{}, errors.Wrap(err, "decoding favorites")
	}
	return rec, nil
}

// CreateFavorites relies on Create failing when the document exists: concurrent first accesses create one record.
func (repo *favoriteRepository) CreateFavorites(ctx context.Context, email string) (favorite.Record, error) {
	rec := favorite.Record{Email: email, Favorites: []string{}}
	if _, err := repo.coll.Doc(email).Create(ctx, rec); err != nil {
		if isAlreadyExists(err) {
			return repo.GetFavorites(ctx, email)
		}
		return favorite.Record{}, err
	}
	return rec, nil
}

func (repo *favoriteRepository) SetFavorites(ctx context.Context, email string, keys []string) error {
	_, err := repo.coll.Doc(email).Set(ctx, map[string]interface{}{
		"email":     email,
		"favorites": keys,
	}, firestore.MergeAll)
	return err
}
