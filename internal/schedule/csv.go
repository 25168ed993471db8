package schedule

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"infinite-experiment/flighttracker/internal/constants"
)

const utf8BOM = "\ufeff"

// CSVSource reads the timetable from a CSV file with a header row
type CSVSource struct {
	Path          string
	CarrierColumn string
	FlightColumn  string
}

var _ Source = (*CSVSource)(nil)

func NewCSVSource(path, carrierColumn, flightColumn string) *CSVSource {
	return &CSVSource{
		Path:          path,
		CarrierColumn: carrierColumn,
		FlightColumn:  flightColumn,
	}
}

func (s *CSVSource) Describe() string {
	return "csv:" + s.Path
}

// Entries opens and parses the file on every call; memoization is Store's job
func (s *CSVSource) Entries(ctx context.Context) ([]Entry, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		code := constants.ErrCodeScheduleMalformed
		if errors.Is(err, fs.ErrNotExist) {
			code = constants.ErrCodeScheduleMissing
		}
		return nil, &DataLoadError{Code: code, Source: s.Describe(), Err: err}
	}
	defer f.Close()

	entries, err := ParseCSV(f, s.CarrierColumn, s.FlightColumn)
	if err != nil {
		var dle *DataLoadError
		if errors.As(err, &dle) {
			dle.Source = s.Describe()
		}
		return nil, err
	}
	return entries, nil
}

// ParseCSV reads a header row, locates the carrier and flight columns by exact name,
// and returns one Entry per row where both cells are non-blank after trimming.
func ParseCSV(r io.Reader, carrierColumn, flightColumn string) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataLoadError{
			Code:    constants.ErrCodeScheduleColumnMissing,
			Source:  "csv",
			Message: "schedule has no header row",
		}
	}
	if err != nil {
		return nil, &DataLoadError{Code: constants.ErrCodeScheduleMalformed, Source: "csv", Err: err}
	}

	carrierIdx, flightIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		switch name {
		case carrierColumn:
			carrierIdx = i
		case flightColumn:
			flightIdx = i
		}
	}

	var missing []string
	if carrierIdx < 0 {
		missing = append(missing, carrierColumn)
	}
	if flightIdx < 0 {
		missing = append(missing, flightColumn)
	}
	if len(missing) > 0 {
		return nil, &DataLoadError{
			Code:    constants.ErrCodeScheduleColumnMissing,
			Source:  "csv",
			Message: fmt.Sprintf("missing required column(s): %s", strings.Join(missing, ", ")),
		}
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataLoadError{Code: constants.ErrCodeScheduleMalformed, Source: "csv", Err: err}
		}

		carrier := cell(record, carrierIdx)
		flight := cell(record, flightIdx)
		if carrier == "" || flight == "" {
			continue
		}
		entries = append(entries, Entry{CarrierCode: carrier, FlightNumber: flight})
	}

	return entries, nil
}

// cell returns the trimmed value at idx, or "" for short rows
func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
