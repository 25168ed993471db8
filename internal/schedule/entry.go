package schedule

import (
	"context"
	"fmt"

	"infinite-experiment/flighttracker/internal/constants"
)

// Entry is one usable timetable row
type Entry struct {
	CarrierCode  string
	FlightNumber string
}

// Callsign concatenates carrier code and flight number without separator or case change
func (e Entry) Callsign() string {
	return e.CarrierCode + e.FlightNumber
}

// Source yields schedule entries from wherever the timetable lives
type Source interface {
	Entries(ctx context.Context) ([]Entry, error)

	// Describe names the source for logs and health output
	Describe() string
}

// DataLoadError means the schedule could not be loaded at all.
// It is fatal at startup and is never cached by Store.
type DataLoadError struct {
	Code    string
	Source  string
	Message string
	Err     error
}

func (e *DataLoadError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = constants.GetErrorMessage(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("schedule load failed (%s): %s: %v", e.Source, msg, e.Err)
	}
	return fmt.Sprintf("schedule load failed (%s): %s", e.Source, msg)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
