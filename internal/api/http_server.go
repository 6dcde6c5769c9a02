package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"tablelab/internal/config"
	"tablelab/internal/metrics"
	"tablelab/internal/models"
	"tablelab/internal/service"
)

// HTTPServer exposes the experiment API consumed by the browser UI.
type HTTPServer struct {
	cfg        config.APIConfig
	experiment *service.ExperimentService
	server     *http.Server
	auth       *HTTPAuth
	logger     zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, experiment *service.ExperimentService, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, experiment: experiment}
	srv.auth = NewHTTPAuth(cfg)
	if logger != nil {
		srv.logger = logger.With().Str("component", "http").Logger()
	} else {
		srv.logger = zerolog.Nop()
	}

	mux.HandleFunc("/api/v1/sessions/", srv.handleSessionSubtree)
	mux.HandleFunc("/api/v1/sessions", srv.handleSessions)
	mux.HandleFunc("/api/v1/scenario", srv.handleScenario)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/results", srv.handleResults)
	mux.HandleFunc("/healthz", srv.handleHealth)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", cfg.Auth.HeaderAPIKey},
	})

	handler := srv.loggingMiddleware(corsHandler.Handler(srv.auth.Wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler exposes the composed handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// POST /api/v1/sessions — start a participant session with a counterbalanced
// system order.
func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("sessions")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	session, err := s.experiment.StartSession(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("start session")
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":   session.ID,
		"first_system": session.FirstSystem,
	})
}

// GET  /api/v1/sessions/{id} — session state.
// POST /api/v1/sessions/{id}/trials/{n} — start trial n, returns its scenario.
func (s *HTTPServer) handleSessionSubtree(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("sessions")
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleSessionGet(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "trials":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleTrialStart(w, r, parts[0], parts[2])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleSessionGet(w http.ResponseWriter, r *http.Request, id string) {
	session, err := s.experiment.GetSession(r.Context(), id)
	if err == service.ErrSessionNotFound {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("get session")
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) handleTrialStart(w http.ResponseWriter, r *http.Request, id, trialStr string) {
	trial, err := strconv.Atoi(trialStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "trial must be a number")
		return
	}

	sc, err := s.experiment.StartTrial(r.Context(), id, trial)
	switch {
	case err == service.ErrSessionNotFound:
		writeError(w, http.StatusNotFound, "session not found")
	case err == service.ErrTrialOutOfRange:
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error().Err(err).Msg("start trial")
		writeError(w, http.StatusInternalServerError, "failed to start trial")
	default:
		writeJSON(w, http.StatusOK, sc)
	}
}

// GET /api/v1/scenario?mode=coloured|text — one standalone trial scenario.
func (s *HTTPServer) handleScenario(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("scenario")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mode := models.DisplayMode(strings.TrimSpace(r.URL.Query().Get("mode")))
	if mode == "" {
		mode = models.DisplayColoured
	}
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "mode must be coloured or text")
		return
	}

	sc, err := s.experiment.NewScenario(mode)
	if err != nil {
		s.logger.Error().Err(err).Msg("generate scenario")
		writeError(w, http.StatusInternalServerError, "failed to generate scenario")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// POST /api/v1/availability — run the pure oracle over the caller's booking
// set. Called on every table click once a time is selected.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type request struct {
		TableID  int                  `json:"table_id"`
		Time     string               `json:"time"`
		Bookings []models.BookingSlot `json:"bookings"`
	}

	var body request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.TableID <= 0 {
		writeError(w, http.StatusBadRequest, "table_id is required")
		return
	}

	available, err := s.experiment.CheckAvailability(body.TableID, body.Time, body.Bookings)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"available": available})
}

// POST /api/v1/results — append one completed participant record.
// GET  /api/v1/results — the full historical sequence.
func (s *HTTPServer) handleResults(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("results")
	switch r.Method {
	case http.MethodPost:
		s.handleResultSave(w, r)
	case http.MethodGet:
		s.handleResultList(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleResultSave(w http.ResponseWriter, r *http.Request) {
	type request struct {
		SessionID string                  `json:"session_id"`
		Result    models.ExperimentResult `json:"result"`
	}

	var body request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.experiment.SaveResult(r.Context(), body.SessionID, body.Result)
	switch {
	case err == models.ErrInvalidTimestamp,
		err == models.ErrInvalidSystem,
		err == models.ErrInvalidDuration:
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error().Err(err).Msg("save result")
		writeError(w, http.StatusInternalServerError, "failed to save result")
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"saved": true})
	}
}

func (s *HTTPServer) handleResultList(w http.ResponseWriter, r *http.Request) {
	results, err := s.experiment.ListResults(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list results")
		writeError(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
