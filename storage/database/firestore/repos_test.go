package firestorerepos

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
)

// openEmulator connects to the emulator at FIRESTORE_EMULATOR_HOST, in a fresh project per test.
func openEmulator(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := Open(ctx, core.DatabaseConfig{ProjectID: "campuslink-" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestEventRepository(t *testing.T) {
	client := openEmulator(t)
	repo := NewEventRepository(client, core.NewNopLogger())
	ctx := context.Background()
	works := client.Collection(EventCollection)

	// documents written by the mobile app: no id field, summaries as string lists
	_, err := works.Doc("legacy").Set(ctx, map[string]interface{}{
		"name":     "Legacy Fest",
		"category": "Culture",
		"event_summary": map[string]interface{}{
			"headcount": []interface{}{"120"},
			"winners":   []interface{}{"Team A", " Team B"},
		},
	})
	require.NoError(t, err)
	_, err = works.Doc("odd-summary").Set(ctx, map[string]interface{}{
		"name":          "Odd Summary",
		"event_summary": map[string]interface{}{"headcount": "lots"},
	})
	require.NoError(t, err)
	_, err = works.Doc("broken").Set(ctx, map[string]interface{}{"name": 42})
	require.NoError(t, err)

	created, err := repo.CreateEvent(ctx, event.Event{Name: "Hackathon", Category: "Tech", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	snap, err := works.Doc(created.ID).Get(ctx)
	require.NoError(t, err)
	_, hasID := snap.Data()["id"]
	assert.False(t, hasID, "the ID only lives in the document key")

	t.Run("in query by document ID", func(t *testing.T) {
		events, err := repo.QueryEventsIn(ctx, event.FieldID, []string{"legacy", created.ID, "missing"})
		require.NoError(t, err)
		require.Len(t, events, 2)
		byID := map[string]event.Event{events[0].ID: events[0], events[1].ID: events[1]}
		assert.Equal(t, "Legacy Fest", byID["legacy"].Name)
		assert.Equal(t, "Hackathon", byID[created.ID].Name)
	})

	t.Run("in query by name", func(t *testing.T) {
		events, err := repo.QueryEventsIn(ctx, event.FieldName, []string{"Hackathon", "Nope"})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, created.ID, events[0].ID)
	})

	t.Run("too many values", func(t *testing.T) {
		_, err := repo.QueryEventsIn(ctx, event.FieldID, make([]string, core.MaxInQueryValues+1))
		assert.Equal(t, core.ErrTooManyValues, err)
	})

	t.Run("legacy summaries", func(t *testing.T) {
		e, err := repo.GetEvent(ctx, "legacy")
		require.NoError(t, err)
		require.NotNil(t, e.Summary)
		assert.Equal(t, 120, e.Summary.Headcount)
		assert.Equal(t, []string{"Team A", "Team B"}, e.Summary.Winners)

		e, err = repo.GetEvent(ctx, "odd-summary")
		require.NoError(t, err)
		assert.Nil(t, e.Summary)
	})

	t.Run("listing skips undecodable documents", func(t *testing.T) {
		events, err := repo.QueryEvents(ctx, event.QueryFilter{})
		require.NoError(t, err)
		assert.Len(t, events, 3)

		_, err = repo.GetEvent(ctx, "broken")
		assert.Error(t, err)
	})

	t.Run("views", func(t *testing.T) {
		require.NoError(t, repo.IncrementViews(ctx, "legacy"))
		require.NoError(t, repo.IncrementViews(ctx, "legacy"))
		e, err := repo.GetEvent(ctx, "legacy")
		require.NoError(t, err)
		assert.Equal(t, int64(2), e.Views)

		assert.Equal(t, event.ErrNotFound, repo.IncrementViews(ctx, "missing"))
	})

	t.Run("summary and approval", func(t *testing.T) {
		summary := event.Summary{Headcount: 30, Winners: []string{"A"}, HackathonThemes: []string{"AI"}}
		require.NoError(t, repo.SetEventSummary(ctx, created.ID, summary))
		require.NoError(t, repo.SetEventApproval(ctx, created.ID, true))

		e, err := repo.GetEvent(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, e.Summary)
		assert.Equal(t, summary, *e.Summary)
		require.NotNil(t, e.ApprovedByManager)
		assert.True(t, *e.ApprovedByManager)

		assert.Equal(t, event.ErrNotFound, repo.SetEventApproval(ctx, "missing", true))
	})

	t.Run("name uniqueness", func(t *testing.T) {
		exists, err := repo.EventNameExists(ctx, "Hackathon")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.EventNameExists(ctx, "Hackathon", created.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestFavoriteRepository(t *testing.T) {
	client := openEmulator(t)
	repo := NewFavoriteRepository(client)
	ctx := context.Background()
	email := "ada@campus.edu"

	_, err := repo.GetFavorites(ctx, email)
	assert.Equal(t, favorite.ErrNotFound, errors.Cause(err))

	rec, err := repo.CreateFavorites(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, favorite.Record{Email: email, Favorites: []string{}}, rec)

	require.NoError(t, repo.SetFavorites(ctx, email, []string{"e1", "e2"}))

	// a second creation keeps the stored list
	rec, err = repo.CreateFavorites(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, rec.Favorites)

	t.Run("merge keeps other fields", func(t *testing.T) {
		_, err := client.Collection(FavoriteCollection).Doc(email).Set(ctx, map[string]interface{}{"theme": "dark"}, firestore.MergeAll)
		require.NoError(t, err)
		require.NoError(t, repo.SetFavorites(ctx, email, []string{"e3"}))

		snap, err := client.Collection(FavoriteCollection).Doc(email).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "dark", snap.Data()["theme"])

		rec, err := repo.GetFavorites(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, []string{"e3"}, rec.Favorites)
	})

	t.Run("set creates the record", func(t *testing.T) {
		require.NoError(t, repo.SetFavorites(ctx, "new@campus.edu", []string{"e1"}))
		rec, err := repo.GetFavorites(ctx, "new@campus.edu")
		require.NoError(t, err)
		assert.Equal(t, favorite.Record{Email: "new@campus.edu", Favorites: []string{"e1"}}, rec)
	})
}
