package tracker

import (
	"strings"
	"time"

	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/opensky"
)

// Unit conversions.
const (
	MetersToFeet = 3.28084
	MpsToKmh     = 3.6
	MpsToKnots   = 1.943844
)

// Phase thresholds.
const (
	parkedMaxSpeedKnots = 5.0
	takeoffMaxAltitudeM = 1000.0
	climbRateMps        = 1.0
)

// Normalize converts one state vector into a flight status, creating or
// reusing the route facts for its aircraft and callsign in cache.
// requestedID stands in for the callsign when the record has none.
func Normalize(sv opensky.StateVector, requestedID string, cache *Cache, now time.Time) flight.Status {
	icao24 := sv.ICAO24()
	callsign := sv.Callsign()
	if callsign == "" {
		callsign = strings.TrimSpace(requestedID)
	}
	country := sv.String(opensky.FieldOriginCountry)
	longitude := sv.Float(opensky.FieldLongitude)
	latitude := sv.Float(opensky.FieldLatitude)
	altitudeM := sv.Float(opensky.FieldBaroAltitude)
	onGround := sv.Bool(opensky.FieldOnGround)
	velocityMps := sv.Float(opensky.FieldVelocity)
	verticalRate := sv.Float(opensky.FieldVerticalRate)

	lastUpdated := now
	if ts := sv.Int64(opensky.FieldTimePosition); ts > 0 {
		lastUpdated = time.Unix(ts, 0)
	}

	facts := cache.GetOrCreate(CacheKey(icao24, callsign), onGround, country, callsign, now)
	altitudeFt := int(altitudeM * MetersToFeet)

	return flight.Status{
		FlightNumber:       callsign,
		DepartureAirport:   facts.DepartureAirport,
		ArrivalAirport:     facts.ArrivalAirport,
		ScheduledDeparture: facts.Departure,
		EstimatedArrival:   facts.Arrival,
		Phase:              classifyPhase(onGround, velocityMps, altitudeM, verticalRate),
		Aircraft:           flight.ClassForAltitude(altitudeFt),
		Latitude:           latitude,
		Longitude:          longitude,
		AltitudeFt:         altitudeFt,
		SpeedKmh:           int(velocityMps * MpsToKmh),
		Progress:           flight.Progress(facts.Departure, facts.Arrival, now),
		TimeRemaining:      flight.FormatRemaining(flight.RemainingMinutes(facts.Arrival, now)),
		LastUpdated:        lastUpdated,
	}
}

// classifyPhase applies the phase rules in priority order.
func classifyPhase(onGround bool, velocityMps, altitudeM, verticalRateMps float64) flight.Phase {
	switch {
	case onGround && velocityMps*MpsToKnots < parkedMaxSpeedKnots:
		return flight.PhaseParked
	case onGround:
		return flight.PhaseTaxiing
	case altitudeM < takeoffMaxAltitudeM:
		return flight.PhaseTakingOff
	case verticalRateMps > climbRateMps:
		return flight.PhaseClimbing
	case verticalRateMps < -climbRateMps:
		return flight.PhaseDescending
	default:
		return flight.PhaseInAir
	}
}
