package tracker

import (
	"context"
	"sync"

	"github.com/unklstewy/skytrack/pkg/opensky"
)

// stateVector builds a full 17-field record with the fields the tracker reads.
func stateVector(icao24, callsign, country string, lon, lat, altM float64, onGround bool, velocity, vertRate float64) opensky.StateVector {
	sv := make(opensky.StateVector, 17)
	sv[opensky.FieldICAO24] = icao24
	sv[opensky.FieldCallsign] = callsign
	sv[opensky.FieldOriginCountry] = country
	sv[opensky.FieldTimePosition] = float64(1700000000)
	sv[opensky.FieldLastContact] = float64(1700000000)
	sv[opensky.FieldLongitude] = lon
	sv[opensky.FieldLatitude] = lat
	sv[opensky.FieldBaroAltitude] = altM
	sv[opensky.FieldOnGround] = onGround
	sv[opensky.FieldVelocity] = velocity
	sv[opensky.FieldTrueTrack] = 90.0
	sv[opensky.FieldVerticalRate] = vertRate
	return sv
}

// fakeFeed is an in-memory opensky.Feed.
type fakeFeed struct {
	mu sync.Mutex

	all         *opensky.Response
	allErr      error
	byAircraft  map[string]*opensky.Response
	aircraftErr error

	allCalls      int
	aircraftCalls []string
	lastBBox      *opensky.BoundingBox
}

func (f *fakeFeed) FetchAll(ctx context.Context, bbox *opensky.BoundingBox, at int64) (*opensky.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	f.lastBBox = bbox
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.all, nil
}

func (f *fakeFeed) FetchByAircraft(ctx context.Context, icao24 string, at int64) (*opensky.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aircraftCalls = append(f.aircraftCalls, icao24)
	if f.aircraftErr != nil {
		return nil, f.aircraftErr
	}
	return f.byAircraft[icao24], nil
}

func constRandom(v float64) func() float64 {
	return func() float64 { return v }
}
