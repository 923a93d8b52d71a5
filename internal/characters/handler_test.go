package characters

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charhub/internal/rickmorty"
	"charhub/internal/sync"
)

type fakeUpstream struct {
	got     []rickmorty.Filter
	results json.RawMessage
	err     error
}

func (f *fakeUpstream) ListCharacters(_ context.Context, filter rickmorty.Filter) (json.RawMessage, error) {
	f.got = append(f.got, filter)
	return f.results, f.err
}

type chanPublisher chan sync.CharacterEvent

func (p chanPublisher) Publish(ev sync.CharacterEvent) { p <- ev }

func newTestRouter(t *testing.T, up Upstream, events Publisher) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := NewStore()
	router := gin.New()
	NewHandler(store, up, events, log).RegisterRoutes(router.Group("/api"))
	return router, store
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFilterRelaysUpstreamResults(t *testing.T) {
	up := &fakeUpstream{results: json.RawMessage(`[{"id":1,"name":"Rick Sanchez","episode":["e1"]}]`)}
	router, _ := newTestRouter(t, up, nil)

	rec := do(router, http.MethodGet, "/api/characters?status=Alive&species=Human&gender=Male", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"id":1,"name":"Rick Sanchez","episode":["e1"]}]`, rec.Body.String())
	require.Len(t, up.got, 1)
	assert.Equal(t, rickmorty.Filter{Status: "Alive", Species: "Human", Gender: "Male"}, up.got[0])
}

func TestFilterForwardsEmptyFilters(t *testing.T) {
	up := &fakeUpstream{results: json.RawMessage(`[]`)}
	router, _ := newTestRouter(t, up, nil)

	rec := do(router, http.MethodGet, "/api/characters?status=&species=&gender=", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, up.got, 1)
	assert.Equal(t, rickmorty.Filter{}, up.got[0])
}

func TestFilterUpstreamFailure(t *testing.T) {
	up := &fakeUpstream{err: errors.New("rickmorty: request: connection refused")}
	router, _ := newTestRouter(t, up, nil)

	rec := do(router, http.MethodGet, "/api/characters?status=Alive&species=Human&gender=Male", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, "rickmorty: request: connection refused", body["error"])
}

func TestFilterNeverReadsScratchList(t *testing.T) {
	up := &fakeUpstream{results: json.RawMessage(`[{"id":99}]`)}
	router, _ := newTestRouter(t, up, nil)

	do(router, http.MethodPost, "/api/personajes", `{"name":"Summer Smith"}`)
	rec := do(router, http.MethodGet, "/api/characters", "")

	assert.JSONEq(t, `[{"id":99}]`, rec.Body.String())
}

func TestCreateThenUpdate(t *testing.T) {
	events := make(chanPublisher, 2)
	router, _ := newTestRouter(t, &fakeUpstream{}, events)

	rec := do(router, http.MethodPost, "/api/personajes",
		`{"name":"Summer Smith","status":"Alive","species":"Human","gender":"Female"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Summer Smith","status":"Alive","species":"Human","gender":"Female"}`, rec.Body.String())

	rec = do(router, http.MethodPut, "/api/personajes/1", `{"status":"Dead"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Summer Smith","status":"Dead","species":"Human","gender":"Female"}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/personajes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Summer Smith","status":"Dead","species":"Human","gender":"Female"}]`, rec.Body.String())

	for _, want := range []string{sync.EventCreated, sync.EventUpdated} {
		select {
		case ev := <-events:
			assert.Equal(t, want, ev.Type)
			assert.Equal(t, int64(1), ev.Character.ID)
		default:
			t.Fatalf("%s event not published before the response", want)
		}
	}
}

func TestListEmpty(t *testing.T) {
	router, _ := newTestRouter(t, &fakeUpstream{}, nil)

	rec := do(router, http.MethodGet, "/api/personajes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateNotFound(t *testing.T) {
	router, store := newTestRouter(t, &fakeUpstream{}, nil)
	do(router, http.MethodPost, "/api/personajes", `{"name":"Summer Smith"}`)
	before := store.List()

	rec := do(router, http.MethodPut, "/api/personajes/7", `{"name":"Nobody"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"character not found"}`, rec.Body.String())
	assert.Equal(t, before, store.List())
}

func TestUpdateRejectsNonIntegerID(t *testing.T) {
	router, _ := newTestRouter(t, &fakeUpstream{}, nil)
	do(router, http.MethodPost, "/api/personajes", `{"name":"Summer Smith"}`)

	for _, id := range []string{"abc", "1.5", "1abc"} {
		rec := do(router, http.MethodPut, "/api/personajes/"+id, `{"name":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "id %q", id)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	router, store := newTestRouter(t, &fakeUpstream{}, nil)

	rec := do(router, http.MethodPost, "/api/personajes", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/personajes", `{"name":"Squanchy","status":"squanched"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 0, store.Len())
}

func TestCreateNormalizesStatus(t *testing.T) {
	router, _ := newTestRouter(t, &fakeUpstream{}, nil)

	rec := do(router, http.MethodPost, "/api/personajes", `{"name":"Birdperson","status":"dead"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Birdperson","status":"Dead","species":"","gender":""}`, rec.Body.String())
}

func TestEmptyBodyIsEmptyPatch(t *testing.T) {
	router, store := newTestRouter(t, &fakeUpstream{}, nil)

	rec := do(router, http.MethodPost, "/api/personajes", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"","status":"","species":"","gender":""}`, rec.Body.String())

	do(router, http.MethodPut, "/api/personajes/1", `{"name":"Mr. Poopybutthole","status":"Alive"}`)
	before := store.List()

	rec = do(router, http.MethodPut, "/api/personajes/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Mr. Poopybutthole","status":"Alive","species":"","gender":""}`, rec.Body.String())
	assert.Equal(t, before, store.List())
}

func TestBlankStatusIsStoredTrimmed(t *testing.T) {
	router, store := newTestRouter(t, &fakeUpstream{}, nil)

	rec := do(router, http.MethodPost, "/api/personajes", `{"name":"Tammy","status":"   "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Tammy","status":"","species":"","gender":""}`, rec.Body.String())

	rec = do(router, http.MethodPut, "/api/personajes/1", `{"status":" dead "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(router, http.MethodPut, "/api/personajes/1", `{"status":"\t"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", store.List()[0].Status)
}
