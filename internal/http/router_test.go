package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/eventreg/internal/domain/event"
	httpx "github.com/geocoder89/eventreg/internal/http"
	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/geocoder89/eventreg/internal/ratelimit"
	"github.com/geocoder89/eventreg/internal/repo/memory"
	"github.com/geocoder89/eventreg/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router http.Handler
	reg    *prometheus.Registry
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	store := memory.NewStore()

	r := httpx.NewRouter(httpx.Deps{
		Env:           "test",
		Log:           log,
		Events:        service.NewEventService(store, log, time.Second),
		Registrations: service.NewRegistrationService(store, log, prom, time.Second),
		Checks:        map[string]handlers.Check{"store": store.Ping},
		Prom:          prom,
		Gatherer:      reg,
		Limiter:       limiter,
	})

	return testServer{router: r, reg: reg}
}

func (s testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Error.Code
}

func TestRegistrationFlow(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/events", `{"title":"Go Night","date":"2030-05-01T18:00:00Z","capacity":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created event.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := "/events/" + created.ID + "/attendees"

	w = s.do(http.MethodPost, path, `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, path, `{"name":"Ada Again","email":"ADA@example.com"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_registered", errorCode(t, w))

	w = s.do(http.MethodPost, "/attendees", `{"name":"Grace","email":"grace@example.com","eventId":"`+created.ID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, path, `{"name":"Linus","email":"linus@example.com"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "event_full", errorCode(t, w))

	w = s.do(http.MethodGet, "/events/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var detail event.Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Attendees, 2)
	assert.Equal(t, "ada@example.com", detail.Attendees[0].Email)
	assert.Equal(t, "grace@example.com", detail.Attendees[1].Email)

	w = s.do(http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Items []event.Summary `json:"items"`
		Count int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, 2, list.Items[0].AttendeeCount)
}

func TestCreateEvent_ValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/events", `{"title":"  ","date":"not a date","capacity":0}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Fields []struct {
					Field string `json:"field"`
				} `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "invalid_request", env.Error.Code)
	assert.Equal(t, "Invalid form data", env.Error.Message)

	fields := make([]string, 0, len(env.Error.Details.Fields))
	for _, f := range env.Error.Details.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "date", "capacity"}, fields)
}

func TestRegister_UnknownEvent(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/events/not-a-uuid/attendees", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))

	w = s.do(http.MethodGet, "/events/00000000-0000-0000-0000-000000000000", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWritesRequireJSON(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRegistrationRateLimited(t *testing.T) {
	s := newTestServer(t, ratelimit.NewMemoryLimiter(1, time.Minute))

	w := s.do(http.MethodPost, "/events", `{"title":"Go Night","date":"2030-05-01","capacity":5}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created event.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := "/events/" + created.ID + "/attendees"

	w = s.do(http.MethodPost, path, `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, path, `{"name":"Grace","email":"grace@example.com"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// event creation is not limited
	w = s.do(http.MethodPost, "/events", `{"title":"Other","date":"2030-06-01","capacity":1}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/readyz", "").Code)

	s.do(http.MethodPost, "/events/"+"00000000-0000-0000-0000-000000000000"+"/attendees", `{"name":"Ada","email":"ada@example.com"}`)

	w := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `eventreg_registrations_total{result="not_found"} 1`)
	assert.Contains(t, w.Body.String(), "eventreg_http_requests_total")

	w = s.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEvent_CapacityBeyondStorableRange(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/events", `{"title":"Stadium","date":"2030-05-01","capacity":2147483648}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "invalid_request", errorCode(t, w))

	w = s.do(http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}
