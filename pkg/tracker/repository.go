package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/unklstewy/skytrack/pkg/flight"
	"github.com/unklstewy/skytrack/pkg/opensky"
)

// ErrNoMatch means the feed answered but carried no state for the flight.
var ErrNoMatch = errors.New("no matching flight in feed")

// Result is the outcome of a flight lookup. Simulated results carry the
// reason live data was unavailable (ErrNoMatch or a feed error).
type Result struct {
	Status    flight.Status
	Simulated bool
	Reason    error
}

// Repository turns feed snapshots into flight statuses.
type Repository struct {
	feed   opensky.Feed
	cache  *Cache
	synth  *Synthesizer
	now    func() time.Time
	refine bool
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithCache shares an enrichment cache between repositories.
func WithCache(c *Cache) RepositoryOption {
	return func(r *Repository) { r.cache = c }
}

// WithSynthesizer sets the fallback synthesizer.
func WithSynthesizer(s *Synthesizer) RepositoryOption {
	return func(r *Repository) { r.synth = s }
}

// WithClock sets the time source (useful for testing).
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) { r.now = now }
}

// WithRefinement toggles the per-aircraft follow-up query after a match.
func WithRefinement(enabled bool) RepositoryOption {
	return func(r *Repository) { r.refine = enabled }
}

// NewRepository creates a repository over feed. By default it owns a fresh
// cache, uses the wall clock, and refines matches by aircraft.
func NewRepository(feed opensky.Feed, opts ...RepositoryOption) *Repository {
	r := &Repository{
		feed:   feed,
		now:    time.Now,
		refine: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	if r.synth == nil {
		r.synth = NewSynthesizer(nil)
	}
	return r
}

// Cache returns the repository's enrichment cache.
func (r *Repository) Cache() *Cache { return r.cache }

// Lookup finds the state vector for flightID in the current snapshot.
// It returns ErrNoMatch when nothing matches and the feed error when the
// snapshot could not be fetched. A successful match is refined with a
// per-aircraft query; if that query fails or is empty the match is used as is.
func (r *Repository) Lookup(ctx context.Context, flightID string) (opensky.StateVector, error) {
	resp, err := r.feed.FetchAll(ctx, nil, 0)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNoMatch
	}

	sv, ok := FindMatch(flightID, resp.States)
	if !ok {
		return nil, ErrNoMatch
	}

	if !r.refine || sv.ICAO24() == "" {
		return sv, nil
	}

	specific, err := r.feed.FetchByAircraft(ctx, sv.ICAO24(), 0)
	if err != nil {
		log.Printf("Refinement for %s (%s) failed, using snapshot state: %v", flightID, sv.ICAO24(), err)
		return sv, nil
	}
	if specific == nil || len(specific.States) == 0 {
		return sv, nil
	}
	return refineWith(sv, specific.States[0]), nil
}

// refineWith prefers the per-aircraft record unless it belongs to another
// aircraft. A blank refined callsign is taken from the match so the flight
// keeps the same number and cache key.
func refineWith(matched, refined opensky.StateVector) opensky.StateVector {
	if !strings.EqualFold(strings.TrimSpace(refined.ICAO24()), strings.TrimSpace(matched.ICAO24())) ||
		len(refined) <= opensky.FieldCallsign {
		log.Printf("Refined state for %s is for %q, using snapshot state", matched.ICAO24(), refined.ICAO24())
		return matched
	}
	if refined.Callsign() != "" {
		return refined
	}
	out := append(opensky.StateVector(nil), refined...)
	out[opensky.FieldCallsign] = matched.Callsign()
	return out
}

// FlightInfo returns the status of flightID. It never fails: when the flight
// cannot be found or the feed is unavailable the status is synthesized and
// the result is marked simulated. Once ctx is done nobody reads the result,
// so a lookup error then yields a zero Result carrying ctx.Err().
func (r *Repository) FlightInfo(ctx context.Context, flightID string) Result {
	sv, err := r.Lookup(ctx, flightID)
	now := r.now()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Reason: ctxErr}
		}
		if !errors.Is(err, ErrNoMatch) {
			err = fmt.Errorf("feed unavailable: %w", err)
		}
		log.Printf("No live data for %s, using simulated status: %v", flightID, err)
		return Result{
			Status:    r.synth.Synthesize(flightID, now),
			Simulated: true,
			Reason:    err,
		}
	}
	return Result{Status: Normalize(sv, flightID, r.cache, now)}
}

// FlightsInRegion fetches every aircraft inside bbox and normalizes those
// with a callsign. Any fetch failure yields an empty slice.
func (r *Repository) FlightsInRegion(ctx context.Context, bbox opensky.BoundingBox) []flight.Status {
	resp, err := r.feed.FetchAll(ctx, &bbox, 0)
	if err != nil {
		log.Printf("Region query failed: %v", err)
		return []flight.Status{}
	}
	if resp == nil {
		return []flight.Status{}
	}

	now := r.now()
	out := make([]flight.Status, 0, len(resp.States))
	for _, sv := range resp.States {
		callsign := sv.Callsign()
		if callsign == "" {
			continue
		}
		out = append(out, Normalize(sv, callsign, r.cache, now))
	}
	return out
}
