package inmemdb

import (
	"sync"

	"github.com/campuslink/campuslink/core/application"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
)

type (
	DB struct {
		event       *eventTable
		favorite    *favoriteTable
		application *applicationTable
		stats       *recorder
	}

	eventTable struct {
		sync.RWMutex
		table map[string]*event.Event
		seq   map[string]int // insertion order
		next  int
	}

	favoriteTable struct {
		sync.RWMutex
		table map[string]*favorite.Record
	}

	applicationTable struct {
		sync.RWMutex
		table map[string]*application.Application
	}

	// Stats counts the operations the store served.
	Stats struct {
		FavoriteCreates int
		FavoriteWrites  int
		// InQueries holds the values of every membership query, in the order they were issued.
		InQueries [][]string
	}

	recorder struct {
		sync.Mutex
		Stats
		failAt  int // 1-based index of the membership query to fail, 0 for none
		failErr error
	}
)

func Open() *DB {
	return &DB{
		event:       &eventTable{table: make(map[string]*event.Event), seq: make(map[string]int)},
		favorite:    &favoriteTable{table: make(map[string]*favorite.Record)},
		application: &applicationTable{table: make(map[string]*application.Application)},
		stats:       &recorder{},
	}
}

// Stats returns a snapshot of the operations counted so far.
func (db *DB) Stats() Stats {
	db.stats.Lock()
	defer db.stats.Unlock()
	snapshot := db.stats.Stats
	snapshot.InQueries = make([][]string, len(db.stats.InQueries))
	copy(snapshot.InQueries, db.stats.InQueries)
	return snapshot
}

// ResetStats zeroes the counters.
func (db *DB) ResetStats() {
	db.stats.Lock()
	db.stats.Stats = Stats{}
	db.stats.Unlock()
}

// FailInQuery makes the n-th membership query (1-based, counted from now on) return err.
func (db *DB) FailInQuery(n int, err error) {
	db.stats.Lock()
	db.stats.failAt = len(db.stats.InQueries) + n
	db.stats.failErr = err
	db.stats.Unlock()
}

func (r *recorder) inQuery(values []string) error {
	r.Lock()
	defer r.Unlock()
	r.InQueries = append(r.InQueries, append([]string(nil), values...))
	if r.failAt > 0 && len(r.InQueries) == r.failAt {
		return r.failErr
	}
	return nil
}

func (r *recorder) favoriteCreate() {
	r.Lock()
	r.FavoriteCreates++
	r.Unlock()
}

func (r *recorder) favoriteWrite() {
	r.Lock()
	r.FavoriteWrites++
	r.Unlock()
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}
