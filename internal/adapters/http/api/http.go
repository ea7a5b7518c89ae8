// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/cricscore/internal/app"
	"github.com/okian/cricscore/internal/domain/catalog"
	"github.com/okian/cricscore/internal/domain/match"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	CreateSession(ctx context.Context) (string, service.Snapshot, error)
	Session(ctx context.Context, id string) (*service.Controller, error)
	DeleteSession(ctx context.Context, id string) error

	// Evaluate derives and validates a form without a session.
	Evaluate(ctx context.Context, raw match.RawInput) (match.DerivedState, match.ValidationResult)

	// Venues returns the venue catalog.
	Venues(ctx context.Context) (catalog.Catalog, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	venuesHandler   *VenuesHandler
	evaluateHandler *EvaluateHandler
	sessionsHandler *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		venuesHandler:   NewVenuesHandler(deps),
		evaluateHandler: NewEvaluateHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/venues", MetricsMiddleware(s.venuesHandler.HandleGetVenues, "venues"))
	r.Post("/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
		r.Get("/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "session"))
		r.Patch("/{id}", MetricsMiddleware(s.sessionsHandler.HandlePatch, "session"))
		r.Delete("/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "session"))
		r.Post("/{id}/submit", MetricsMiddleware(s.sessionsHandler.HandleSubmit, "session_submit"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
