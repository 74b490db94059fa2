package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/campuslink/campuslink/apps/api/echo"
	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/analytics"
	"github.com/campuslink/campuslink/core/application"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
	"github.com/campuslink/campuslink/services/email"
	"github.com/campuslink/campuslink/storage/blob"
	"github.com/campuslink/campuslink/storage/database/inmem"
	"github.com/campuslink/campuslink/tests"
)

const (
	testIssuer    = "https://securetoken.test/campuslink"
	maxUploadSize = 1 << 10
)

var (
	db       *inmemdb.DB
	evtRepo  event.Repository
	appRepo  application.Repository
	blobs    *blobstore.MemoryStore
	mailSvc  *emailsvc.ConsoleServiceMock
	signer   *testutil.Signer
	pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) *Server {
	conf := &core.Config{
		AppName:  "Campuslink",
		TestMode: true,
		Storage:  core.StorageConfig{MaxUploadSize: maxUploadSize},
		Identity: core.IdentityConfig{
			Issuer:        testIssuer,
			AdminEmails:   []string{"root@campus.edu"},
			ManagerEmails: []string{"boss@campus.edu"},
		},
		Favorites: core.FavoritesConfig{BatchSize: core.MaxInQueryValues, Concurrency: 1, JoinField: "id"},
	}

	// set up DB & repos
	db = inmemdb.Open()
	evtRepo = inmemdb.NewEventRepository(db)
	appRepo = inmemdb.NewApplicationRepository(db)

	// set up services
	logger := core.NewNopLogger()
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	blobs = blobstore.NewMemoryStore(conf.Storage)
	mailSvc = emailsvc.NewConsoleServiceMock(conf)

	signer = testutil.NewSigner(t, testIssuer)
	key, err := ParseJWTKey(signer.PublicPEM)
	if err != nil {
		t.Fatalf("ParseJWTKey() failed: %v", err)
	}

	// set up server
	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			JWTKey:         key,
			Directory:      core.NewDirectory(conf.Identity),
			EventSvc:       event.NewService(evtRepo, blobs, validate, logger),
			FavoriteSvc:    favorite.NewService(inmemdb.NewFavoriteRepository(db), evtRepo, conf.Favorites, logger),
			ApplicationSvc: application.NewService(appRepo, evtRepo, mailSvc, validate, logger),
			AnalyticsSvc:   analytics.NewService(evtRepo),
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newMultipartRequest builds a multipart/form-data request; image is only attached when not nil.
func newMultipartRequest(
	t *testing.T,
	method, path, token string,
	fields map[string]string,
	image []byte,
) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() failed: %v", err)
		}
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "poster")
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err = fw.Write(image); err != nil {
			t.Fatalf("writing image failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, email string) string {
	return signer.Token(t, "uid-"+email, email, time.Hour)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func eventIDs(t *testing.T, rec *httptest.ResponseRecorder) []string {
	var events []event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decoding events failed: %v", err)
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
