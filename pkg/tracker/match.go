package tracker

import (
	"strings"
	"unicode"

	"github.com/unklstewy/skytrack/pkg/opensky"
)

// FindMatch returns the first state vector whose callsign matches requestedID.
//
// A state matches when its trimmed callsign contains requestedID
// (case-insensitive), or when both are equal after removing all whitespace
// and upper-casing. States are scanned in feed order and the first match
// wins. A blank requestedID matches nothing.
func FindMatch(requestedID string, states []opensky.StateVector) (opensky.StateVector, bool) {
	wanted := normalizeFlightNumber(requestedID)
	if wanted == "" {
		return nil, false
	}
	needle := strings.ToLower(requestedID)

	for _, sv := range states {
		callsign := sv.Callsign()
		if strings.Contains(strings.ToLower(callsign), needle) ||
			normalizeFlightNumber(callsign) == wanted {
			return sv, true
		}
	}
	return nil, false
}

// normalizeFlightNumber strips all whitespace and upper-cases.
func normalizeFlightNumber(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}
