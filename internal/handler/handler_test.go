package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/orgdir/internal/config"
	"github.com/deppfellow/orgdir/internal/errs"
	"github.com/deppfellow/orgdir/internal/lib/job"
	"github.com/deppfellow/orgdir/internal/middleware"
	"github.com/deppfellow/orgdir/internal/model"
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{Primary: config.Primary{Env: "test"}},
		Logger: &logger,
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

type fakeSearcher struct {
	term    string
	results []model.PersonRecord
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, term string) ([]model.PersonRecord, error) {
	f.term = term
	return f.results, f.err
}

func TestPeopleSearch(t *testing.T) {
	s := newTestServer()
	avatar := "https://cdn.example.com/anna.png"
	searcher := &fakeSearcher{results: []model.PersonRecord{{
		ID:         "p1",
		Name:       "Anna",
		Avatar:     model.Avatar{URL: &avatar},
		Department: model.DepartmentRef{ID: "ENG", Name: "Engineering"},
	}}}

	e := newEcho(s)
	e.GET("/api/v1/people", NewPeopleHandler(s, searcher).Search())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/people?search=ann", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ann", searcher.term)
	require.JSONEq(t, `{"results":[{"id":"p1","name":"Anna","avatar":{"url":"https://cdn.example.com/anna.png"},"department":{"id":"ENG","name":"Engineering"}}]}`, rec.Body.String())
}

func TestPeopleSearchWithoutTermReturnsEveryone(t *testing.T) {
	s := newTestServer()
	searcher := &fakeSearcher{results: []model.PersonRecord{}}

	e := newEcho(s)
	e.GET("/api/v1/people", NewPeopleHandler(s, searcher).Search())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/people", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, searcher.term)
	require.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestPeopleSearchRejectsLongTerm(t *testing.T) {
	s := newTestServer()
	searcher := &fakeSearcher{}

	e := newEcho(s)
	e.GET("/api/v1/people", NewPeopleHandler(s, searcher).Search())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/people?search="+strings.Repeat("a", 256), nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, searcher.term)
}

func TestPeopleSearchDatabaseFailure(t *testing.T) {
	s := newTestServer()

	e := newEcho(s)
	e.GET("/api/v1/people", NewPeopleHandler(s, &fakeSearcher{err: errors.New("pool closed")}).Search())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/people?search=x", nil))

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
}

type fakeEnqueuer struct {
	payload job.LoadPayload
	err     error
}

func (f *fakeEnqueuer) EnqueueLoad(_ context.Context, p job.LoadPayload) (*asynq.TaskInfo, error) {
	f.payload = p
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: job.QueueCritical}, nil
}

func serveSync(t *testing.T, jobs LoadEnqueuer, body string) *httptest.ResponseRecorder {
	t.Helper()

	s := newTestServer()
	e := newEcho(s)
	e.POST("/api/v1/sync", NewSyncHandler(s, jobs).Sync())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSyncQueuesLoad(t *testing.T) {
	jobs := &fakeEnqueuer{}
	rec := serveSync(t, jobs, `{"replace":true}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"task_id":"task-1","queue":"critical"}`, rec.Body.String())
	require.True(t, jobs.payload.Replace)
	require.False(t, jobs.payload.RequestedAt.IsZero())
}

func TestSyncWithoutBodyAppends(t *testing.T) {
	jobs := &fakeEnqueuer{}
	rec := serveSync(t, jobs, "")

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.False(t, jobs.payload.Replace)
}

func TestSyncDuplicateIsConflict(t *testing.T) {
	rec := serveSync(t, &fakeEnqueuer{err: asynq.ErrDuplicateTask}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSyncQueueDownIsUnavailable(t *testing.T) {
	rec := serveSync(t, &fakeEnqueuer{err: errors.New("dial tcp: connection refused")}, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := newTestServer()
	s.Redis = client

	t.Run("healthy", func(t *testing.T) {
		h := newHealthHandler(s, map[string]CheckFunc{
			"database": func(context.Context) error { return nil },
			"redis":    func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
		e := newEcho(s)
		e.GET("/status", h.CheckHealth)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "healthy", body["status"])
		require.Contains(t, body["checks"], "redis")
	})

	t.Run("database down", func(t *testing.T) {
		h := newHealthHandler(s, map[string]CheckFunc{
			"database": func(context.Context) error { return errors.New("connection refused") },
		})
		e := newEcho(s)
		e.GET("/status", h.CheckHealth)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "unhealthy", body["status"])
	})

	t.Run("registered from server", func(t *testing.T) {
		h := NewHealthHandler(s)
		require.Contains(t, h.checks, "redis")
		require.NotContains(t, h.checks, "database")
	})
}

func TestOpenAPISpec(t *testing.T) {
	s := newTestServer()
	h := NewOpenAPIHandler(s)
	e := newEcho(s)
	e.GET("/docs/openapi.json", h.ServeOpenAPISpec)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Contains(t, doc["paths"], "/api/v1/people")
}
