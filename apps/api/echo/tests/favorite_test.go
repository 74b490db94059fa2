package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/tests"
)

func Test_favoriteApi_auth(t *testing.T) {
	app := setup(t)

	otherSigner := testutil.NewSigner(t, testIssuer)
	wrongIssuer := *signer
	wrongIssuer.Issuer = "https://evil.test"

	tests := []httpTest{
		{
			name:     "missing token",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "malformed token",
			token:    "not-a-jwt",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errInvalidToken),
		},
		{
			name:     "expired token",
			token:    signer.Token(t, "uid-1", "ada@campus.edu", -time.Minute),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errInvalidToken),
		},
		{
			name:     "foreign signature",
			token:    otherSigner.Token(t, "uid-1", "ada@campus.edu", time.Hour),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errInvalidToken),
		},
		{
			name:     "wrong issuer",
			token:    wrongIssuer.Token(t, "uid-1", "ada@campus.edu", time.Hour),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid token issuer"}),
		},
		{
			name:     "no email claim",
			token:    signer.Token(t, "uid-1", "", time.Hour),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "principal has no email address"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/favorites", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
	assert.Zero(t, db.Stats().FavoriteCreates)
}

func Test_favoriteApi_retrieve(t *testing.T) {
	app := setup(t)
	token := getToken(t, "Ada@Campus.edu")

	for i := 0; i < 2; i++ {
		req, rec := newAuthRequest(http.MethodGet, "/v1/favorites", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": []}`),
		}, rec)
	}
	assert.Equal(t, 1, db.Stats().FavoriteCreates, "record is created once, on first access")
}

func Test_favoriteApi_update(t *testing.T) {
	app := setup(t)
	token := getToken(t, "ada@campus.edu")

	tests := []httpTest{
		{
			name:     "replace",
			method:   http.MethodPut,
			path:     "/v1/favorites",
			body:     []byte(`{"favorites": ["e2", " e1 ", "", "e2"]}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": ["e2", "e1"]}`),
		},
		{
			name:     "add",
			method:   http.MethodPost,
			path:     "/v1/favorites/e3",
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": ["e2", "e1", "e3"]}`),
		},
		{
			name:     "add existing",
			method:   http.MethodPost,
			path:     "/v1/favorites/e1",
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": ["e2", "e1", "e3"]}`),
		},
		{
			name:     "remove",
			method:   http.MethodDelete,
			path:     "/v1/favorites/e2",
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": ["e1", "e3"]}`),
		},
		{
			name:     "remove missing",
			method:   http.MethodDelete,
			path:     "/v1/favorites/e9",
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": ["e1", "e3"]}`),
		},
		{
			name:     "read back",
			method:   http.MethodGet,
			path:     "/v1/favorites",
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": ["e1", "e3"]}`),
		},
		{
			name:     "clear",
			method:   http.MethodPut,
			path:     "/v1/favorites",
			body:     []byte(`{"favorites": []}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": []}`),
		},
		{
			name:     "null entries are dropped",
			method:   http.MethodPut,
			path:     "/v1/favorites",
			body:     []byte(`{"favorites": ["x", null, "y"]}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"favorites": ["x", "y"]}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("malformed list", func(t *testing.T) {
		for _, payload := range []string{`{"favorites": "abc"}`, `{"favorites": [1, 2]}`, `not json`} {
			req, rec := newAuthRequest(http.MethodPut, "/v1/favorites", token, []byte(payload))
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		}

		// the stored list is untouched
		req, rec := newAuthRequest(http.MethodGet, "/v1/favorites", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`{"favorites": ["x", "y"]}`)}, rec)
	})
}

func Test_favoriteApi_resolve(t *testing.T) {
	app := setup(t)
	token := getToken(t, "ada@campus.edu")

	keys := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		e := testutil.CreateEvent(t, evtRepo, fmt.Sprintf("Event %02d", i), "Tech", "Coding Club", "club@campus.edu")
		keys = append(keys, e.ID)
	}
	// most recent first, plus an unknown key
	favs := make([]string, 0, len(keys)+1)
	for i := len(keys) - 1; i >= 0; i-- {
		favs = append(favs, keys[i])
	}
	favs = append(favs, "deleted-event")

	req, rec := newAuthRequest(http.MethodPut, "/v1/favorites", token, marchallObj(t, map[string][]string{"favorites": favs}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	db.ResetStats()

	req, rec = newAuthRequest(http.MethodGet, "/v1/favorites/events", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, favs[:25], eventIDs(t, rec), "events follow the favorites order")
	stats := db.Stats()
	require.Len(t, stats.InQueries, 3)
	assert.Len(t, stats.InQueries[0], 10)
	assert.Len(t, stats.InQueries[1], 10)
	assert.Len(t, stats.InQueries[2], 6)
}

func Test_favoriteApi_resolveEmpty(t *testing.T) {
	app := setup(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/favorites/events", getToken(t, "ada@campus.edu"))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)
	assert.Empty(t, db.Stats().InQueries)
}

func Test_favoriteApi_resolveFailure(t *testing.T) {
	app := setup(t)
	token := getToken(t, "ada@campus.edu")

	e := testutil.CreateEvent(t, evtRepo, "Hackathon", "Tech", "Coding Club", "club@campus.edu")
	req, rec := newAuthRequest(http.MethodPost, "/v1/favorites/"+e.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	db.FailInQuery(1, fmt.Errorf("store unavailable"))
	req, rec = newAuthRequest(http.MethodGet, "/v1/favorites/events", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusInternalServerError,
		wantData: marchallObj(t, httpErr{Error: http.StatusText(http.StatusInternalServerError)}),
	}, rec)
}
