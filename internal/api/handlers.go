package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unklstewy/skytrack/internal/auth"
	"github.com/unklstewy/skytrack/internal/db"
	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/opensky"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

// maxFlightIDLength bounds the {flight} path parameter. ICAO callsigns are
// at most 8 characters.
const maxFlightIDLength = 16

// flightParam returns the trimmed {flight} path parameter. A blank or
// overlong value is answered with 400 and ok is false.
func flightParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	flightID := strings.TrimSpace(chi.URLParam(r, "flight"))
	switch {
	case flightID == "":
		respondError(w, http.StatusBadRequest, "Flight number is required")
		return "", false
	case len(flightID) > maxFlightIDLength:
		respondError(w, http.StatusBadRequest, "Flight number is too long")
		return "", false
	}
	return flightID, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	flightID, running := s.deps.Tracker.Running()

	database := "disabled"
	if s.deps.DBHealth != nil {
		database = "ok"
		if !s.deps.DBHealth(r.Context()) {
			database = "unavailable"
		}
	}

	resp := map[string]interface{}{
		"status":         "ok",
		"tracking":       running,
		"flight":         flightID,
		"database":       database,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}
	if database == "ok" && s.deps.DBStats != nil {
		if stats, err := s.deps.DBStats(r.Context()); err != nil {
			log.Printf("Failed to read history stats: %v", err)
		} else {
			resp["history"] = stats
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Latest.Current())
}

type flightResponse struct {
	Flight    flight.Status `json:"flight"`
	Simulated bool          `json:"simulated"`
	Message   string        `json:"message,omitempty"`
}

func (s *Server) handleFlight(w http.ResponseWriter, r *http.Request) {
	flightID, ok := flightParam(w, r)
	if !ok {
		return
	}

	// flightID is never blank here; a blank id would match no record and
	// always be simulated
	res := s.deps.Flights.FlightInfo(r.Context(), flightID)
	resp := flightResponse{Flight: res.Status, Simulated: res.Simulated}
	if res.Simulated {
		resp.Message = tracker.SimulatedMessage(res.Reason)
	}
	respondJSON(w, http.StatusOK, resp)
}

// parseRegion reads lamin, lomin, lamax and lomax. All four are required
// when any is given; none falls back to def.
func parseRegion(r *http.Request, def opensky.BoundingBox) (opensky.BoundingBox, error) {
	q := r.URL.Query()
	keys := []string{"lamin", "lomin", "lamax", "lomax"}

	given := 0
	for _, k := range keys {
		if q.Get(k) != "" {
			given++
		}
	}
	if given == 0 {
		return def, nil
	}

	vals := make([]float64, len(keys))
	for i, k := range keys {
		v, err := strconv.ParseFloat(q.Get(k), 64)
		if err != nil {
			return opensky.BoundingBox{}, errBadRegion(k)
		}
		vals[i] = v
	}

	return opensky.BoundingBox{LatMin: vals[0], LonMin: vals[1], LatMax: vals[2], LonMax: vals[3]}, nil
}

type errBadRegion string

func (e errBadRegion) Error() string { return "invalid or missing " + string(e) }

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	bbox, err := parseRegion(r, s.deps.DefaultRegion)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !bbox.Valid() {
		respondError(w, http.StatusBadRequest, "Bounding box is inverted or out of range")
		return
	}

	flights := s.deps.Flights.FlightsInRegion(r.Context(), bbox)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"region":  bbox,
		"count":   len(flights),
		"flights": flights,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, "Status history is disabled")
		return
	}

	flightID, ok := flightParam(w, r)
	if !ok {
		return
	}

	limit := db.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.deps.History.Recent(r.Context(), flightID, limit)
	if err != nil {
		log.Printf("History query for %s failed: %v", flightID, err)
		respondError(w, http.StatusInternalServerError, "Failed to read status history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"flight":  flightID,
		"count":   len(entries),
		"entries": entries,
	})
}

func (s *Server) handleStartTracking(w http.ResponseWriter, r *http.Request) {
	flightID, ok := flightParam(w, r)
	if !ok {
		return
	}

	who := "anonymous"
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		who = claims.Subject
	}
	log.Printf("Tracking %s requested by %s", flightID, who)

	s.deps.Tracker.Start(flightID)

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"tracking": true,
		"flight":   flightID,
	})
}

func (s *Server) handleStopTracking(w http.ResponseWriter, r *http.Request) {
	flightID, running := s.deps.Tracker.Running()
	s.deps.Tracker.Stop()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tracking": false,
		"stopped":  running,
		"flight":   flightID,
	})
}
