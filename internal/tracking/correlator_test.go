package tracking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"infinite-experiment/flighttracker/internal/models/dtos"
)

// vector builds a 17-field OpenSky state vector
func vector(icao24 string, callsign any, lat, lon any) []any {
	return []any{
		icao24,       // 0  icao24
		callsign,     // 1  callsign
		"France",     // 2  origin_country
		1700000000.0, // 3  time_position
		1700000000.0, // 4  last_contact
		lon,          // 5  longitude
		lat,          // 6  latitude
		10668.0,      // 7  baro_altitude
		false,        // 8  on_ground
		240.5,        // 9  velocity
		271.0,        // 10 true_track
		-1.3,         // 11 vertical_rate
		nil,          // 12 sensors
		10900.0,      // 13 geo_altitude
		"1234",       // 14 squawk
		false,        // 15 spi
		0.0,          // 16 position_source
	}
}

func TestCorrelateEndToEndScenario(t *testing.T) {
	known := NewCallsignSet("BA123", "AF456")
	snapshot := &dtos.StateSnapshot{
		Time: 1700000000,
		States: []any{
			vector("400a1b", "BA123 ", 51.5, -20.1),
			vector("a1b2c3", "XY999", 40.0, -70.0),
			vector("ffffff", nil, 10.0, 10.0),
		},
	}

	result := Correlate(snapshot, known)

	require.Len(t, result.Flights, 1)
	f := result.Flights[0]
	assert.Equal(t, "BA123", f.Callsign)
	assert.Equal(t, "400a1b", f.ICAO24)
	assert.Equal(t, "France", f.OriginCountry)
	require.NotNil(t, f.Latitude)
	require.NotNil(t, f.Longitude)
	assert.InDelta(t, 51.5, *f.Latitude, 1e-9)
	assert.InDelta(t, -20.1, *f.Longitude, 1e-9)
	assert.InDelta(t, 10668.0, *f.Altitude, 1e-9)
	assert.InDelta(t, 240.5, *f.Velocity, 1e-9)
	assert.InDelta(t, 271.0, *f.Heading, 1e-9)
	assert.InDelta(t, -1.3, *f.VerticalRate, 1e-9)
	assert.Equal(t, "2023-11-14 22:13:20 UTC", f.LastContact)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Unscheduled)
	assert.Equal(t, 1, result.BlankCallsign)
	assert.Equal(t, 0, result.Malformed)
}

func TestCorrelateNilAndEmptySnapshots(t *testing.T) {
	known := NewCallsignSet("BA123")

	for name, snapshot := range map[string]*dtos.StateSnapshot{
		"nil snapshot": nil,
		"no states":    {Time: 1700000000},
		"empty states": {States: []any{}},
	} {
		t.Run(name, func(t *testing.T) {
			var result Result
			assert.NotPanics(t, func() { result = Correlate(snapshot, known) })
			assert.NotNil(t, result.Flights)
			assert.Empty(t, result.Flights)
		})
	}
}

func TestCorrelateNoStatesKeyFromJSON(t *testing.T) {
	var snapshot dtos.StateSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"time": 1700000000}`), &snapshot))

	result := Correlate(&snapshot, NewCallsignSet("BA123"))
	assert.Empty(t, result.Flights)
}

func TestCorrelateBlankCallsignsNeverEmitted(t *testing.T) {
	// An empty callsign is in the known set to prove blanks are rejected before lookup
	known := NewCallsignSet("", "BA123")
	snapshot := &dtos.StateSnapshot{States: []any{
		vector("000001", nil, 1.0, 1.0),
		vector("000002", "", 1.0, 1.0),
		vector("000003", "        ", 1.0, 1.0),
		vector("000004", "\t", 1.0, 1.0),
	}}

	result := Correlate(snapshot, known)
	assert.Empty(t, result.Flights)
	assert.Equal(t, 4, result.BlankCallsign)
}

func TestCorrelateIsCaseSensitive(t *testing.T) {
	snapshot := &dtos.StateSnapshot{States: []any{
		vector("400a1b", "ba123", 51.5, -0.1),
	}}

	result := Correlate(snapshot, NewCallsignSet("BA123"))
	assert.Empty(t, result.Flights)
	assert.Equal(t, 1, result.Unscheduled)
}

func TestCorrelatePreservesSnapshotOrder(t *testing.T) {
	known := NewCallsignSet("AAA1", "BBB2", "CCC3")
	snapshot := &dtos.StateSnapshot{States: []any{
		vector("3", "CCC3", 1.0, 1.0),
		vector("1", "AAA1", 1.0, 1.0),
		vector("2", "BBB2", 1.0, 1.0),
	}}

	result := Correlate(snapshot, known)
	require.Len(t, result.Flights, 3)
	assert.Equal(t, "CCC3", result.Flights[0].Callsign)
	assert.Equal(t, "AAA1", result.Flights[1].Callsign)
	assert.Equal(t, "BBB2", result.Flights[2].Callsign)
}

func TestCorrelateNullPositionKept(t *testing.T) {
	snapshot := &dtos.StateSnapshot{States: []any{
		vector("400a1b", "BA123", nil, nil),
	}}

	result := Correlate(snapshot, NewCallsignSet("BA123"))
	require.Len(t, result.Flights, 1)
	assert.Nil(t, result.Flights[0].Latitude)
	assert.Nil(t, result.Flights[0].Longitude)
	assert.False(t, result.Flights[0].HasPosition())
}

func TestCorrelateSkipsMalformedAndContinues(t *testing.T) {
	short := []any{"400a1b", "BA123", "UK"}
	badLat := vector("400a1c", "BA123", "north", 1.0)
	badLastContact := vector("400a1d", "BA123", 1.0, 1.0)
	badLastContact[idxLastContact] = nil
	numericCallsign := vector("400a1e", 123.0, 1.0, 1.0)

	snapshot := &dtos.StateSnapshot{States: []any{
		short,
		badLat,
		badLastContact,
		numericCallsign,
		nil,
		vector("400a1f", "BA123", 2.0, 2.0),
	}}

	var result Result
	require.NotPanics(t, func() { result = Correlate(snapshot, NewCallsignSet("BA123")) })
	require.Len(t, result.Flights, 1)
	assert.Equal(t, "400a1f", result.Flights[0].ICAO24)
	assert.Equal(t, 5, result.Malformed)
	assert.Len(t, result.MalformedSamples, 5)
	assert.Contains(t, result.MalformedSamples[0], "states[0]")
}

func TestCorrelateSkipsNonArrayStates(t *testing.T) {
	snapshot := &dtos.StateSnapshot{States: []any{
		vector("400a1b", "BA123", 51.5, -0.1),
		map[string]any{"bad": true},
		42.0,
		"BA123",
	}}

	result := Correlate(snapshot, NewCallsignSet("BA123"))
	require.Len(t, result.Flights, 1)
	assert.Equal(t, "400a1b", result.Flights[0].ICAO24)
	assert.Equal(t, 3, result.Malformed)
	assert.Contains(t, result.MalformedSamples[0], "state has type map[string]interface {}")
}

func TestCorrelateMixedPayloadFromJSON(t *testing.T) {
	body := `{"time":1700000000,"states":[` +
		`["400a1b","BA123 ","United Kingdom",1700000000,1700000000,-0.1,51.5,10668.0,false,240.5,271.0,0.0,null,10900.0,"1234",false,0],` +
		`{"bad":true}]}`
	var snapshot dtos.StateSnapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snapshot))

	result := Correlate(&snapshot, NewCallsignSet("BA123"))
	require.Len(t, result.Flights, 1)
	assert.Equal(t, "BA123", result.Flights[0].Callsign)
	assert.Equal(t, 1, result.Malformed)
}

func TestCorrelateMalformedSamplesBounded(t *testing.T) {
	states := make([]any, 20)
	for i := range states {
		states[i] = []any{"x"}
	}

	result := Correlate(&dtos.StateSnapshot{States: states}, NewCallsignSet("BA123"))
	assert.Equal(t, 20, result.Malformed)
	assert.Len(t, result.MalformedSamples, maxMalformedSamples)
}

func TestCorrelateAfterMsgpackRoundTrip(t *testing.T) {
	in := &dtos.StateSnapshot{Time: 1700000000, States: []any{
		[]any{"400a1b", "BA123 ", "United Kingdom", 1700000000, 1700000000, -20, 51, 10000, false, 240, 270, 0},
	}}
	b, err := msgpack.Marshal(in)
	require.NoError(t, err)

	var out dtos.StateSnapshot
	require.NoError(t, msgpack.Unmarshal(b, &out))

	result := Correlate(&out, NewCallsignSet("BA123"))
	require.Len(t, result.Flights, 1)
	assert.InDelta(t, 51.0, *result.Flights[0].Latitude, 1e-9)
	assert.Equal(t, "2023-11-14 22:13:20 UTC", result.Flights[0].LastContact)
}

func TestCallsignSetZeroValueIsEmpty(t *testing.T) {
	var set CallsignSet
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Contains(""))

	result := Correlate(&dtos.StateSnapshot{States: []any{vector("400a1b", "BA123", 1.0, 1.0)}}, set)
	assert.Empty(t, result.Flights)
	assert.Equal(t, 1, result.Unscheduled)
}

func TestCallsignSetCopiesShareMembers(t *testing.T) {
	set := NewCallsignSet("BA123", "BA123", "AF456")
	copied := set

	assert.Equal(t, 2, copied.Len())
	assert.True(t, copied.Contains("BA123"))
	assert.False(t, copied.Contains("ba123"))
}

func TestFormatLastContact(t *testing.T) {
	assert.Equal(t, "2023-11-14 22:13:20 UTC", FormatLastContact(1700000000))
	assert.Equal(t, "1970-01-01 00:00:00 UTC", FormatLastContact(0))
}
