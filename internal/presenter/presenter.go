package presenter

import (
	"fmt"
	"strconv"

	"infinite-experiment/flighttracker/internal/constants"
	"infinite-experiment/flighttracker/internal/tracking"
)

// Default map view: a global overview centered over the mid-Atlantic
const (
	DefaultCenterLat = 20.0
	DefaultCenterLon = -30.0
	DefaultZoom      = 2
)

// TableColumns lists the table header in display order
var TableColumns = []string{
	"icao24",
	"callsign",
	"origin_country",
	"longitude",
	"latitude",
	"altitude",
	"velocity",
	"heading",
	"vertical_rate",
	"last_contact",
}

// TableView is a row-per-flight projection; null values render as empty cells
type TableView struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Marker is a single clustered map point
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
	Popup string  `json:"popup"`
}

// MapView is the geospatial projection of flights with a known position
type MapView struct {
	CenterLat float64  `json:"center_lat"`
	CenterLon float64  `json:"center_lon"`
	Zoom      int      `json:"zoom"`
	Clustered bool     `json:"clustered"`
	Markers   []Marker `json:"markers"`
}

// View is what the UI renders for one cycle.
// When Empty is true Table and Map are nil and Message explains why.
type View struct {
	Empty   bool       `json:"empty"`
	Count   int        `json:"count"`
	Heading string     `json:"heading"`
	Message string     `json:"message,omitempty"`
	Table   *TableView `json:"table,omitempty"`
	Map     *MapView   `json:"map,omitempty"`
}

// Present projects flights into table and map views, keeping the input order
func Present(flights []tracking.TrackedFlight) View {
	view := View{
		Count:   len(flights),
		Heading: fmt.Sprintf("Tracking %d Active Flights", len(flights)),
	}

	if len(flights) == 0 {
		view.Empty = true
		view.Message = constants.NoActiveFlightsMessage
		return view
	}

	table := &TableView{
		Columns: TableColumns,
		Rows:    make([][]string, 0, len(flights)),
	}
	m := &MapView{
		CenterLat: DefaultCenterLat,
		CenterLon: DefaultCenterLon,
		Zoom:      DefaultZoom,
		Clustered: true,
		Markers:   make([]Marker, 0, len(flights)),
	}

	for _, f := range flights {
		table.Rows = append(table.Rows, tableRow(f))

		if !f.HasPosition() {
			continue
		}
		m.Markers = append(m.Markers, Marker{
			Lat:   *f.Latitude,
			Lon:   *f.Longitude,
			Label: f.Callsign,
			Popup: popupText(f),
		})
	}

	view.Table = table
	view.Map = m
	return view
}

func tableRow(f tracking.TrackedFlight) []string {
	return []string{
		f.ICAO24,
		f.Callsign,
		f.OriginCountry,
		formatOptional(f.Longitude),
		formatOptional(f.Latitude),
		formatOptional(f.Altitude),
		formatOptional(f.Velocity),
		formatOptional(f.Heading),
		formatOptional(f.VerticalRate),
		f.LastContact,
	}
}

// popupText matches the marker popup: callsign, altitude in meters, speed in m/s
func popupText(f tracking.TrackedFlight) string {
	return fmt.Sprintf("%s\nAlt: %s\nSpeed: %s",
		f.Callsign, withUnit(f.Altitude, "m"), withUnit(f.Velocity, "m/s"))
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func withUnit(v *float64, unit string) string {
	if v == nil {
		return "n/a"
	}
	return formatOptional(v) + unit
}
