package tracking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"infinite-experiment/flighttracker/internal/models/dtos"
)

// Offsets into an OpenSky state vector
const (
	idxICAO24        = 0
	idxCallsign      = 1
	idxOriginCountry = 2
	idxLastContact   = 4
	idxLongitude     = 5
	idxLatitude      = 6
	idxBaroAltitude  = 7
	idxVelocity      = 9
	idxTrueTrack     = 10
	idxVerticalRate  = 11

	minStateVectorLen = idxVerticalRate + 1
)

// maxMalformedSamples bounds how many malformed-vector details a Result keeps
const maxMalformedSamples = 5

// SkipReason tags why a state vector produced no TrackedFlight
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipMalformed     SkipReason = "malformed"
	SkipBlankCallsign SkipReason = "blank_callsign"
	SkipUnscheduled   SkipReason = "unscheduled"
)

// Result is the outcome of correlating one snapshot
type Result struct {
	Flights []TrackedFlight

	Total         int
	BlankCallsign int
	Unscheduled   int
	Malformed     int

	// MalformedSamples holds the first few decode failures for logging
	MalformedSamples []string
}

// decoded is either a flight (skip == SkipNone) or a skip with a detail
type decoded struct {
	flight TrackedFlight
	skip   SkipReason
	detail string
}

func skipped(reason SkipReason, format string, args ...any) decoded {
	return decoded{skip: reason, detail: fmt.Sprintf(format, args...)}
}

// Correlate keeps the state vectors whose trimmed callsign is in known.
// A nil snapshot or one without states yields an empty result. Output order follows the snapshot.
func Correlate(snapshot *dtos.StateSnapshot, known CallsignSet) Result {
	var result Result
	if snapshot == nil || len(snapshot.States) == 0 {
		result.Flights = []TrackedFlight{}
		return result
	}

	result.Total = len(snapshot.States)
	result.Flights = make([]TrackedFlight, 0, known.Len())

	for i, state := range snapshot.States {
		d := decodeState(state, known)
		switch d.skip {
		case SkipNone:
			result.Flights = append(result.Flights, d.flight)
		case SkipBlankCallsign:
			result.BlankCallsign++
		case SkipUnscheduled:
			result.Unscheduled++
		case SkipMalformed:
			result.Malformed++
			if len(result.MalformedSamples) < maxMalformedSamples {
				result.MalformedSamples = append(result.MalformedSamples, fmt.Sprintf("states[%d]: %s", i, d.detail))
			}
		}
	}

	return result
}

// decodeState accepts one element of the states array; non-array elements are malformed
func decodeState(state any, known CallsignSet) decoded {
	vector, ok := state.([]any)
	if !ok {
		return skipped(SkipMalformed, "state has type %T", state)
	}
	return decodeStateVector(vector, known)
}

// decodeStateVector never panics: every positional read is bounds- and type-checked
func decodeStateVector(vector []any, known CallsignSet) decoded {
	if len(vector) < minStateVectorLen {
		return skipped(SkipMalformed, "expected at least %d fields, got %d", minStateVectorLen, len(vector))
	}

	var callsign string
	switch v := vector[idxCallsign].(type) {
	case nil:
		return skipped(SkipBlankCallsign, "null callsign")
	case string:
		callsign = strings.TrimSpace(v)
	default:
		return skipped(SkipMalformed, "callsign has type %T", v)
	}
	if callsign == "" {
		return skipped(SkipBlankCallsign, "blank callsign")
	}
	if !known.Contains(callsign) {
		return skipped(SkipUnscheduled, "callsign %s not scheduled", callsign)
	}

	icao24, ok := vector[idxICAO24].(string)
	if !ok {
		return skipped(SkipMalformed, "icao24 has type %T", vector[idxICAO24])
	}

	var origin string
	switch v := vector[idxOriginCountry].(type) {
	case nil:
	case string:
		origin = v
	default:
		return skipped(SkipMalformed, "origin_country has type %T", v)
	}

	lastContact, ok := toFloat(vector[idxLastContact])
	if !ok {
		return skipped(SkipMalformed, "last_contact has type %T", vector[idxLastContact])
	}

	flight := TrackedFlight{
		ICAO24:        icao24,
		Callsign:      callsign,
		OriginCountry: origin,
		LastContact:   FormatLastContact(int64(lastContact)),
	}

	optional := []struct {
		idx  int
		name string
		dst  **float64
	}{
		{idxLongitude, "longitude", &flight.Longitude},
		{idxLatitude, "latitude", &flight.Latitude},
		{idxBaroAltitude, "baro_altitude", &flight.Altitude},
		{idxVelocity, "velocity", &flight.Velocity},
		{idxTrueTrack, "true_track", &flight.Heading},
		{idxVerticalRate, "vertical_rate", &flight.VerticalRate},
	}
	for _, field := range optional {
		raw := vector[field.idx]
		if raw == nil {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			return skipped(SkipMalformed, "%s has type %T", field.name, raw)
		}
		*field.dst = &v
	}

	return decoded{flight: flight}
}

// FormatLastContact converts a unix epoch in seconds to the fixed UTC layout
func FormatLastContact(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(LastContactLayout)
}

// toFloat accepts every numeric kind produced by the JSON and msgpack decoders
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
