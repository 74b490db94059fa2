package event_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/storage/blob"
	"github.com/campuslink/campuslink/storage/database/inmem"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	owner    = core.Principal{Subject: "u1", Email: "club@campus.edu"}
	stranger = core.Principal{Subject: "u2", Email: "someone@campus.edu"}
	admin    = core.Principal{Subject: "u3", Email: "root@campus.edu", Roles: []string{core.RoleAdmin}}
)

func setup(t *testing.T) (*event.Service, *blobstore.MemoryStore) {
	t.Helper()
	blobs := blobstore.NewMemoryStore(core.StorageConfig{KeyPrefix: "CampusLink"})
	validate := core.NewValidator(core.NewTranslator())
	svc := event.NewService(inmemdb.NewEventRepository(inmemdb.Open()), blobs, validate, core.NewNopLogger())
	return svc, blobs
}

func newEvent(name string) event.NewEvent {
	return event.NewEvent{
		Name:        name,
		Category:    "Tech",
		About:       "All about " + name,
		InstaID:     "@club",
		Date:        "2025-03-01",
		Email:       "Contact@Campus.edu",
		OrganizedBy: "Coding Club",
	}
}

func pngBlob() *core.Blob {
	return &core.Blob{Filename: "poster", Body: bytes.NewReader(pngHeader)}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		svc, blobs := setup(t)

		e, err := svc.Create(ctx, owner, newEvent("  Hackathon2025 "), pngBlob())
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "Hackathon2025", e.Name)
		assert.Equal(t, "contact@campus.edu", e.Email)
		assert.Equal(t, owner.Email, e.AdminEmail)
		assert.Zero(t, e.Views)
		assert.False(t, e.CreatedAt.IsZero())

		obj, ok := blobs.Get(e.ImageURL)
		require.True(t, ok)
		assert.Equal(t, "image/png", obj.ContentType)
		assert.Equal(t, pngHeader, obj.Content)
		assert.True(t, strings.HasSuffix(obj.Key, ".png"))

		got, err := svc.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, e, got)
	})

	t.Run("without image", func(t *testing.T) {
		svc, blobs := setup(t)

		e, err := svc.Create(ctx, owner, newEvent("Talk"), nil)
		require.NoError(t, err)
		assert.Empty(t, e.ImageURL)
		assert.Zero(t, blobs.Len())
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Create(ctx, owner, event.NewEvent{Name: "  ", Email: "nope"}, nil)
		var vErrs validator.ValidationErrors
		require.True(t, errors.As(err, &vErrs), err)
		fields := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			fields = append(fields, fe.Field())
		}
		assert.ElementsMatch(t, []string{"name", "category", "about", "instaId", "date", "email"}, fields)
	})

	t.Run("duplicate name", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Create(ctx, owner, newEvent("Hackathon2025"), nil)
		require.NoError(t, err)

		_, err = svc.Create(ctx, stranger, newEvent("Hackathon2025"), nil)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr), err)
		assert.Equal(t, event.ErrNameExists, vErr.Err)
	})

	t.Run("not an image", func(t *testing.T) {
		svc, blobs := setup(t)

		_, err := svc.Create(ctx, owner, newEvent("Talk"), &core.Blob{Filename: "x.png", Body: strings.NewReader("plain text")})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr), err)
		assert.Equal(t, "image", vErr.Fields[0].Field)
		assert.Zero(t, blobs.Len())
	})

	t.Run("missing identity", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Create(ctx, core.Principal{}, newEvent("Talk"), nil)
		assert.Equal(t, core.ErrMissingIdentity, err)
	})
}

func TestService_View(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	e, err := svc.Create(ctx, owner, newEvent("Talk"), nil)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		got, err := svc.View(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), got.Views)
	}

	_, err = svc.View(ctx, "unknown")
	assert.Equal(t, event.ErrNotFound, errors.Cause(err))
}

func TestService_QueryAndSearch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	create := func(p core.Principal, name, category string) event.Event {
		ne := newEvent(name)
		ne.Category = category
		e, err := svc.Create(ctx, p, ne, nil)
		require.NoError(t, err)
		return e
	}
	hack := create(owner, "Hackathon", "Tech")
	miniHack := create(stranger, "Mini Hackathon", "Tech")
	hack25 := create(owner, "Hackathon 2025", "Tech")
	dance := create(stranger, "Dance Night", "Culture")

	tests := []struct {
		name   string
		filter event.QueryFilter
		want   []event.Event
	}{
		{name: "all", want: []event.Event{hack, miniHack, hack25, dance}},
		{name: "category", filter: event.QueryFilter{Category: "Culture"}, want: []event.Event{dance}},
		{name: "admin", filter: event.QueryFilter{AdminEmail: " CLUB@campus.edu"}, want: []event.Event{hack, hack25}},
		{name: "none", filter: event.QueryFilter{Category: "Sports"}, want: []event.Event{}},
	}
	for _, tt := range tests {
		t.Run("query "+tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	searches := []struct {
		text string
		want []event.Event
	}{
		{text: "hackathon", want: []event.Event{hack, hack25, miniHack}},
		{text: "NIGHT", want: []event.Event{dance}},
		{text: "lol", want: []event.Event{}},
	}
	for _, tt := range searches {
		t.Run("search "+tt.text, func(t *testing.T) {
			got, err := svc.Search(ctx, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	e, err := svc.Create(ctx, owner, newEvent("Talk"), nil)
	require.NoError(t, err)
	other, err := svc.Create(ctx, owner, newEvent("Workshop"), nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger, e.ID, event.UpdateEvent{Name: "Mine"}, nil)
	assert.Equal(t, core.ErrForbidden, err)

	_, err = svc.Update(ctx, owner, e.ID, event.UpdateEvent{Name: other.Name}, nil)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), err)
	assert.Equal(t, event.ErrNameExists, vErr.Err)

	updated, err := svc.Update(ctx, owner, e.ID, event.UpdateEvent{Name: "Big Talk", About: " "}, pngBlob())
	require.NoError(t, err)
	assert.Equal(t, "Big Talk", updated.Name)
	assert.Equal(t, e.About, updated.About)
	assert.NotEmpty(t, updated.ImageURL)

	// global admins may edit any event
	updated, err = svc.Update(ctx, admin, e.ID, event.UpdateEvent{Category: "Science"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Science", updated.Category)
	assert.Equal(t, owner.Email, updated.AdminEmail)

	assert.Equal(t, core.ErrForbidden, svc.Delete(ctx, stranger, e.ID))
	require.NoError(t, svc.Delete(ctx, owner, e.ID))
	_, err = svc.Get(ctx, e.ID)
	assert.Equal(t, event.ErrNotFound, err)
}

func TestService_SubmitSummary(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	e, err := svc.Create(ctx, owner, newEvent("Hackathon"), nil)
	require.NoError(t, err)

	_, err = svc.SubmitSummary(ctx, stranger, e.ID, event.SummaryForm{Headcount: 10, Winners: "a", HackathonThemes: "b"})
	assert.Equal(t, core.ErrForbidden, err)

	invalid := []event.SummaryForm{
		{Headcount: 0, Winners: "a", HackathonThemes: "b"},
		{Headcount: 10, Winners: " ", HackathonThemes: "b"},
		{Headcount: 10, Winners: "a"},
	}
	for _, form := range invalid {
		_, err = svc.SubmitSummary(ctx, owner, e.ID, form)
		var vErrs validator.ValidationErrors
		assert.True(t, errors.As(err, &vErrs), err)
	}

	got, err := svc.SubmitSummary(ctx, owner, e.ID, event.SummaryForm{
		Headcount:       120,
		Winners:         "Team A, Team B ,",
		HackathonThemes: "AI,Climate",
		Details:         " went well ",
	})
	require.NoError(t, err)
	want := &event.Summary{
		Headcount:       120,
		Winners:         []string{"Team A", "Team B"},
		HackathonThemes: []string{"AI", "Climate"},
		Details:         "went well",
	}
	assert.Equal(t, want, got.Summary)

	stored, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, want, stored.Summary)
}

func TestService_SetApproval(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	manager := core.Principal{Subject: "u4", Email: "boss@campus.edu", Roles: []string{core.RoleManager}}
	yes, no := true, false

	e, err := svc.Create(ctx, owner, newEvent("Hackathon"), nil)
	require.NoError(t, err)
	assert.Nil(t, e.ApprovedByManager)

	_, err = svc.SetApproval(ctx, owner, e.ID, event.ApprovalForm{Approved: &yes})
	assert.Equal(t, core.ErrForbidden, err)

	_, err = svc.SetApproval(ctx, core.Principal{}, e.ID, event.ApprovalForm{Approved: &yes})
	assert.Equal(t, core.ErrMissingIdentity, err)

	_, err = svc.SetApproval(ctx, manager, e.ID, event.ApprovalForm{})
	_, ok := errors.Cause(err).(validator.ValidationErrors)
	assert.True(t, ok, "a decision is required")

	_, err = svc.SetApproval(ctx, manager, "nope", event.ApprovalForm{Approved: &yes})
	assert.Equal(t, event.ErrNotFound, errors.Cause(err))

	for _, approved := range []*bool{&no, &yes} {
		got, err := svc.SetApproval(ctx, manager, e.ID, event.ApprovalForm{Approved: approved})
		require.NoError(t, err)
		assert.Equal(t, *approved, *got.ApprovedByManager)

		stored, err := svc.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, *approved, *stored.ApprovedByManager)
	}
}
