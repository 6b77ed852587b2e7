package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

const (
	// DefaultHistoryLimit is used when a caller asks for zero or fewer rows.
	DefaultHistoryLimit = 20

	// MaxHistoryLimit caps a single history query.
	MaxHistoryLimit = 500
)

// HistoryEntry is one stored tracking result.
type HistoryEntry struct {
	ID         int64         `json:"id"`
	FlightID   string        `json:"flight_id"`
	Status     flight.Status `json:"status"`
	Simulated  bool          `json:"simulated"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// StatusRepository stores and reads flight status history.
// It satisfies tracker.Recorder.
type StatusRepository struct {
	db  *DB
	now func() time.Time
}

// NewStatusRepository creates a new status history repository.
func NewStatusRepository(db *DB) *StatusRepository {
	return &StatusRepository{
		db:  db,
		now: time.Now,
	}
}

// Record stores one tracking result for flightID.
func (r *StatusRepository) Record(ctx context.Context, flightID string, res tracker.Result) error {
	s := res.Status
	key := historyKey(flightID)

	return WithRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO flight_status_history (
				flight_id, flight_number, departure_airport, arrival_airport,
				scheduled_departure, estimated_arrival, phase, aircraft,
				latitude, longitude, altitude_ft, speed_kmh,
				progress, time_remaining, last_updated, simulated, recorded_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
			)`,
			key, s.FlightNumber, s.DepartureAirport, s.ArrivalAirport,
			s.ScheduledDeparture.UTC(), s.EstimatedArrival.UTC(), s.Phase.String(), s.Aircraft,
			s.Latitude, s.Longitude, s.AltitudeFt, s.SpeedKmh,
			s.Progress, s.TimeRemaining, s.LastUpdated.UTC(), res.Simulated, r.now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert status for %s: %w", key, err)
		}
		return nil
	}, 1)
}

// Recent returns up to limit entries for flightID, newest first.
func (r *StatusRepository) Recent(ctx context.Context, flightID string, limit int) ([]HistoryEntry, error) {
	key := historyKey(flightID)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, flight_id, flight_number, departure_airport, arrival_airport,
		        scheduled_departure, estimated_arrival, phase, aircraft,
		        latitude, longitude, altitude_ft, speed_kmh,
		        progress, time_remaining, last_updated, simulated, recorded_at
		 FROM flight_status_history
		 WHERE flight_id = $1
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT $2`,
		key, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", key, err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		var phase string
		if err := rows.Scan(
			&e.ID, &e.FlightID, &e.Status.FlightNumber, &e.Status.DepartureAirport, &e.Status.ArrivalAirport,
			&e.Status.ScheduledDeparture, &e.Status.EstimatedArrival, &phase, &e.Status.Aircraft,
			&e.Status.Latitude, &e.Status.Longitude, &e.Status.AltitudeFt, &e.Status.SpeedKmh,
			&e.Status.Progress, &e.Status.TimeRemaining, &e.Status.LastUpdated, &e.Simulated, &e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := e.Status.Phase.UnmarshalText([]byte(phase)); err != nil {
			return nil, fmt.Errorf("failed to decode phase %q: %w", phase, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return entries, nil
}

// historyKey stores flight ids the way the matcher compares them.
func historyKey(flightID string) string {
	return strings.ToUpper(strings.Join(strings.Fields(flightID), ""))
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
