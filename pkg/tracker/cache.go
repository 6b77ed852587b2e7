package tracker

import (
	"strings"
	"sync"
	"time"

	"github.com/unklstewy/skytrack/pkg/flight"
)

const (
	// assumed duration of any newly seen flight
	assumedFlightDuration = 3 * time.Hour

	// an airborne aircraft seen for the first time is assumed to have left this long ago
	assumedAirborneFor = 30 * time.Minute
)

// countryAirports maps origin country to a representative departure airport.
var countryAirports = map[string]string{
	"United States":  "JFK",
	"United Kingdom": "LHR",
	"France":         "CDG",
	"Germany":        "FRA",
	"China":          "PEK",
	"Japan":          "HND",
	"Australia":      "SYD",
	"India":          "DEL",
	"Brazil":         "GRU",
	"Canada":         "YYZ",
	"Russia":         "SVO",
	"Spain":          "MAD",
	"Italy":          "FCO",
	"Netherlands":    "AMS",
	"Turkey":         "IST",
}

// destinations is indexed by the callsign's character-code sum.
var destinations = []string{"LAX", "JFK", "ORD", "ATL", "DFW", "HKG", "LHR", "CDG", "SIN", "DXB"}

// Cache holds route facts per aircraft and callsign.
// Entries are created on first sighting and never updated or evicted.
// The zero value is not usable; call NewCache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]flight.Facts
}

// NewCache creates an empty enrichment cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]flight.Facts)}
}

// CacheKey builds the key for an aircraft address and callsign.
func CacheKey(icao24, callsign string) string {
	return icao24 + "-" + callsign
}

// GetOrCreate returns the facts stored under key, creating them from the
// remaining arguments if the key has not been seen. Later calls with the
// same key return the original facts regardless of their arguments.
func (c *Cache) GetOrCreate(key string, onGround bool, country, callsign string, now time.Time) flight.Facts {
	c.mu.Lock()
	defer c.mu.Unlock()

	if facts, ok := c.entries[key]; ok {
		return facts
	}

	departure := now
	if !onGround {
		departure = now.Add(-assumedAirborneFor)
	}

	facts := flight.Facts{
		DepartureAirport: airportForCountry(country),
		ArrivalAirport:   destinationForCallsign(callsign),
		Departure:        departure,
		Arrival:          departure.Add(assumedFlightDuration),
		FirstSeen:        now,
	}
	c.entries[key] = facts
	return facts
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// airportForCountry looks the country up in countryAirports, falling back to
// the upper-cased first three letters of its name.
func airportForCountry(country string) string {
	if strings.TrimSpace(country) == "" {
		country = "Unknown"
	}
	if code, ok := countryAirports[country]; ok {
		return code
	}
	runes := []rune(country)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}

// destinationForCallsign picks a stable pseudo-random destination.
func destinationForCallsign(callsign string) string {
	sum := 0
	for _, r := range callsign {
		sum += int(r)
	}
	return destinations[sum%len(destinations)]
}
