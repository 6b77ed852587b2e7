// Package api serves the tracker over HTTP: tracking control, the latest
// published state, one-shot lookups, region queries, status history, and a
// WebSocket stream of published states.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/unklstewy/skytrack/internal/auth"
	"github.com/unklstewy/skytrack/internal/db"
	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/opensky"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

// FlightService answers one-shot queries. *tracker.Repository implements it.
type FlightService interface {
	FlightInfo(ctx context.Context, flightID string) tracker.Result
	FlightsInRegion(ctx context.Context, bbox opensky.BoundingBox) []flight.Status
}

// TrackingController runs the tracking loop. *tracker.Tracker implements it.
type TrackingController interface {
	Start(flightID string)
	Stop()
	Running() (string, bool)
}

// HistoryStore reads stored results. *db.StatusRepository implements it.
type HistoryStore interface {
	Recent(ctx context.Context, flightID string, limit int) ([]db.HistoryEntry, error)
}

// Deps are the server's collaborators. History, DBHealth and DBStats are nil when
// the status history database is disabled; Auth may be nil or unconfigured,
// which leaves the control routes open.
type Deps struct {
	Flights       FlightService
	Tracker       TrackingController
	Latest        *tracker.Latest
	History       HistoryStore
	DBHealth      func(ctx context.Context) bool
	DBStats       func(ctx context.Context) (db.Stats, error)
	Auth          *auth.Service
	DefaultRegion opensky.BoundingBox
}

// Server holds the HTTP router and its dependencies.
type Server struct {
	router   *chi.Mux
	deps     Deps
	upgrader websocket.Upgrader
	started  time.Time
}

// NewServer creates a server with all routes registered.
func NewServer(deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is open as well; the stream is read-only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Compress(5))

		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/flights/{flight}", s.handleFlight)
		r.Get("/region", s.handleRegion)
		r.Get("/history/{flight}", s.handleHistory)

		// Tracking control (requires an operator token when auth is enabled)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/track/{flight}", s.handleStartTracking)
			r.Delete("/track", s.handleStopTracking)
		})
	})

	r.Get("/ws", s.handleWebSocket)
}

type contextKey string

const claimsKey contextKey = "claims"

// authMiddleware requires a valid operator token when auth is enabled.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Auth.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Missing or malformed authorization header")
			return
		}

		claims, err := s.deps.Auth.ValidateToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if !auth.CanControlTracking(claims.Role) {
			respondError(w, http.StatusForbidden, "Role may not control tracking")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
