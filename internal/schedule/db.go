package schedule

import (
	"context"
	"io"
	"strings"

	"infinite-experiment/flighttracker/internal/constants"
	"infinite-experiment/flighttracker/internal/db/repositories"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/models/gorm"
)

// DBSource reads the timetable from the schedule_entries table
type DBSource struct {
	repo *repositories.ScheduleRepository
}

var _ Source = (*DBSource)(nil)

func NewDBSource(repo *repositories.ScheduleRepository) *DBSource {
	return &DBSource{repo: repo}
}

func (s *DBSource) Describe() string {
	return "db:schedule_entries"
}

func (s *DBSource) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, &DataLoadError{Code: constants.ErrCodeScheduleMissing, Source: s.Describe(), Err: err}
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		carrier := strings.TrimSpace(row.CarrierCode)
		flight := strings.TrimSpace(row.FlightNumber)
		if carrier == "" || flight == "" {
			continue
		}
		entries = append(entries, Entry{CarrierCode: carrier, FlightNumber: flight})
	}
	return entries, nil
}

// Importer loads a CSV timetable into the schedule table
type Importer struct {
	repo          *repositories.ScheduleRepository
	carrierColumn string
	flightColumn  string
}

func NewImporter(repo *repositories.ScheduleRepository, carrierColumn, flightColumn string) *Importer {
	return &Importer{
		repo:          repo,
		carrierColumn: carrierColumn,
		flightColumn:  flightColumn,
	}
}

// ImportCSV parses r and replaces the table contents with its rows.
// A parse failure leaves the existing table untouched.
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	entries, err := ParseCSV(r, i.carrierColumn, i.flightColumn)
	if err != nil {
		return 0, err
	}

	rows := make([]gorm.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, gorm.ScheduleEntry{
			CarrierCode:  e.CarrierCode,
			FlightNumber: e.FlightNumber,
		})
	}

	if err := i.repo.ReplaceAll(ctx, rows); err != nil {
		return 0, err
	}

	logging.Info("Schedule imported", "rows", len(rows))
	return len(rows), nil
}
