package inmemdb

import (
	"context"

	"github.com/campuslink/campuslink/core/favorite"
)

type favoriteRepository struct {
	db    *favoriteTable
	stats *recorder
}

var _ favorite.Repository = (*favoriteRepository)(nil)

func NewFavoriteRepository(db *DB) favorite.Repository {
	return &favoriteRepository{db: db.favorite, stats: db.stats}
}

func copyRecord(rec *favorite.Record) favorite.Record {
	return favorite.Record{
		Email:     rec.Email,
		Favorites: append([]string{}, rec.Favorites...),
	}
}

func (repo *favoriteRepository) GetFavorites(_ context.Context, email string) (favorite.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[email]; ok {
		return copyRecord(rec), nil
	}
	return favorite.Record{}, favorite.ErrNotFound
}

func (repo *favoriteRepository) CreateFavorites(_ context.Context, email string) (favorite.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[email]
	if !ok {
		rec = &favorite.Record{Email: email, Favorites: []string{}}
		repo.db.table[email] = rec
		repo.stats.favoriteCreate()
	}
	return copyRecord(rec), nil
}

func (repo *favoriteRepository) SetFavorites(_ context.Context, email string, keys []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[email]
	if !ok {
		rec = &favorite.Record{}
		repo.db.table[email] = rec
	}
	rec.Email = email
	rec.Favorites = append([]string{}, keys...)
	repo.stats.favoriteWrite()
	return nil
}
