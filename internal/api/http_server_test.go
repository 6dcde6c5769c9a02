package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablelab/internal/config"
	"tablelab/internal/models"
	"tablelab/internal/scenario"
	"tablelab/internal/service"
	"tablelab/internal/session"
	"tablelab/internal/store"
)

func newTestServer(t *testing.T, cfg config.APIConfig) *HTTPServer {
	t.Helper()
	logger := zerolog.New(os.Stdout)

	resultStore, err := store.NewSQLiteStore(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { resultStore.Close() })

	svc := service.NewExperimentService(
		scenario.NewSeeded(7),
		session.NewMemoryRepository(time.Hour),
		resultStore,
		nil,
		nil,
		&logger,
	)
	return NewHTTPServer(cfg, svc, &logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScenarioEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/scenario?mode=text", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sc models.Scenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, models.DisplayText, sc.DisplayMode)
	assert.Len(t, sc.Tables, models.TableCount)
	assert.Contains(t, models.TimeSlots, sc.Prompt.Time)
}

func TestScenarioEndpointRejectsBadMode(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/scenario?mode=neon", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	bookings := []models.BookingSlot{{TableID: 1, Start: "17:00", End: "18:30"}}

	check := func(tableID int, clock string) bool {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/availability", map[string]any{
			"table_id": tableID,
			"time":     clock,
			"bookings": bookings,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Available bool `json:"available"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Available
	}

	assert.False(t, check(1, "17:00"))
	assert.True(t, check(1, "18:30"))
	assert.True(t, check(2, "17:00"))
}

func TestAvailabilityEndpointValidation(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/availability", map[string]any{
		"table_id": 1,
		"time":     "quarter past six",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/availability", map[string]any{
		"time": "17:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionTrialFlow(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		SessionID   string             `json:"session_id"`
		FirstSystem models.DisplayMode `json:"first_system"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)
	require.True(t, created.FirstSystem.Valid())

	rec = doJSON(t, h, http.MethodPost,
		fmt.Sprintf("/api/v1/sessions/%s/trials/1", created.SessionID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sc models.Scenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	assert.Equal(t, created.FirstSystem, sc.DisplayMode)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+created.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.CurrentTrial)
}

func TestSessionNotFound(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/sessions/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/sessions/ghost/trials/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultsRoundTrip(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	h := srv.Handler()

	result := models.ExperimentResult{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		FirstSystem: models.DisplayColoured,
		Trial1:      models.TrialResult{System: models.DisplayColoured, Prompt: "p1", Duration: 5000},
		Trial2:      models.TrialResult{System: models.DisplayText, Prompt: "p2", Duration: 6500},
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/results", map[string]any{"result": result})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/v1/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []models.ExperimentResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, result, resp.Results[0])
}

func TestResultsRejectInvalid(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})

	bad := models.ExperimentResult{Timestamp: "yesterday"}
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/results", map[string]any{"result": bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthEnabled(t *testing.T) {
	cfg := config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: "secret", Name: "ui", Permissions: []string{"run:experiment", "write:results"}},
			},
		},
	}
	srv := newTestServer(t, cfg)
	h := srv.Handler()

	// Missing key.
	rec := doJSON(t, h, http.MethodGet, "/api/v1/scenario", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scenario", nil)
	req.Header.Set("x-api-key", "nope")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Valid key, permitted endpoint.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/scenario", nil)
	req.Header.Set("x-api-key", "secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Valid key, missing permission for reading results.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/results", nil)
	req.Header.Set("x-api-key", "secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.APIConfig{
		RateLimit: config.APIRateLimitConfig{RPS: 1, Burst: 2},
	}
	srv := newTestServer(t, cfg)
	h := srv.Handler()

	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
		codes[rec.Code]++
	}
	assert.Positive(t, codes[http.StatusOK])
	assert.Positive(t, codes[http.StatusTooManyRequests])
}
