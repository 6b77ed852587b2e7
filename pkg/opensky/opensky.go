// Package opensky provides a client for the OpenSky Network REST API.
//
// Only the /states/all endpoint is used. Each aircraft is returned as a
// positional state vector (a heterogeneous JSON array), represented here as
// StateVector with typed accessors that coerce values and fall back to zero
// values when a field is missing or has an unexpected type.
//
// API Documentation: https://openskynetwork.github.io/opensky-api/rest.html
// Rate Limits: anonymous users get a new snapshot every 10 seconds,
// authenticated users every 5 seconds.
package opensky

import (
	"context"
	"encoding/json"
	"math"
	"strings"
)

// State vector field indices.
const (
	FieldICAO24         = 0
	FieldCallsign       = 1
	FieldOriginCountry  = 2
	FieldTimePosition   = 3
	FieldLastContact    = 4
	FieldLongitude      = 5
	FieldLatitude       = 6
	FieldBaroAltitude   = 7
	FieldOnGround       = 8
	FieldVelocity       = 9
	FieldTrueTrack      = 10
	FieldVerticalRate   = 11
	FieldSensors        = 12
	FieldGeoAltitude    = 13
	FieldSquawk         = 14
	FieldSPI            = 15
	FieldPositionSource = 16
)

// StateVector is one aircraft's state as reported by the feed.
// Fields are accessed by index; see the Field* constants.
type StateVector []any

// Has reports whether the field at index i is present and non-null.
func (s StateVector) Has(i int) bool {
	return i >= 0 && i < len(s) && s[i] != nil
}

// String returns the string at index i, or "" when absent or not a string.
func (s StateVector) String(i int) string {
	if !s.Has(i) {
		return ""
	}
	v, ok := s[i].(string)
	if !ok {
		return ""
	}
	return v
}

// Float returns the number at index i as float64, or 0 when absent or not numeric.
func (s StateVector) Float(i int) float64 {
	v, _ := s.number(i)
	return v
}

// Int64 returns the number at index i truncated to int64, or 0.
func (s StateVector) Int64(i int) int64 {
	v, ok := s.number(i)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(v)
}

// Bool returns the boolean at index i, or false when absent or not a bool.
func (s StateVector) Bool(i int) bool {
	if !s.Has(i) {
		return false
	}
	v, ok := s[i].(bool)
	return ok && v
}

func (s StateVector) number(i int) (float64, bool) {
	if !s.Has(i) {
		return 0, false
	}
	switch v := s[i].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ICAO24 returns the transponder address.
func (s StateVector) ICAO24() string { return s.String(FieldICAO24) }

// Callsign returns the broadcast callsign with surrounding whitespace removed.
func (s StateVector) Callsign() string { return strings.TrimSpace(s.String(FieldCallsign)) }

// Response is one snapshot of the feed.
type Response struct {
	// Time is the snapshot time in Unix seconds
	Time int64 `json:"time"`

	// States holds one entry per aircraft; nil when the feed has none
	States []StateVector `json:"states"`
}

// BoundingBox restricts a query to a WGS-84 rectangle in decimal degrees.
type BoundingBox struct {
	LatMin float64 `json:"lamin"`
	LonMin float64 `json:"lomin"`
	LatMax float64 `json:"lamax"`
	LonMax float64 `json:"lomax"`
}

// Valid reports whether the box is within WGS-84 bounds and not inverted.
func (b BoundingBox) Valid() bool {
	return b.LatMin >= -90 && b.LatMax <= 90 &&
		b.LonMin >= -180 && b.LonMax <= 180 &&
		b.LatMin <= b.LatMax && b.LonMin <= b.LonMax
}

// Feed is the capability the tracker consumes. A zero at means "now".
// Implementations must return a *FetchError (or *RateLimitError) on
// transport, status, or decode failures and must not retry internally.
type Feed interface {
	FetchAll(ctx context.Context, bbox *BoundingBox, at int64) (*Response, error)
	FetchByAircraft(ctx context.Context, icao24 string, at int64) (*Response, error)
}
