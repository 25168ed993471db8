package main

import (
	"context"
	"flag"
	"log"
	"os"

	"infinite-experiment/flighttracker/internal/config"
	"infinite-experiment/flighttracker/internal/db"
	"infinite-experiment/flighttracker/internal/db/repositories"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/schedule"
)

// Loads a timetable CSV into the schedule_entries table used when SCHEDULE_SOURCE=db.
// Connection settings come from the same environment as the server.
func main() {
	file := flag.String("file", "", "path to the timetable CSV (defaults to SCHEDULE_CSV_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := logging.Init(cfg.AppEnv, cfg.LogFile); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Close()

	if cfg.Database.Driver == "" {
		logging.Fatal("DB_DRIVER must be set to import a schedule")
	}

	path := *file
	if path == "" {
		path = cfg.Schedule.CSVPath
	}

	f, err := os.Open(path)
	if err != nil {
		logging.Fatal("Failed to open schedule", "path", path, "error", err)
	}
	defer f.Close()

	orm, err := db.OpenORM(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to open database", "error", err)
	}

	importer := schedule.NewImporter(
		repositories.NewScheduleRepository(orm),
		cfg.Schedule.CarrierColumn,
		cfg.Schedule.FlightColumn,
	)

	n, err := importer.ImportCSV(context.Background(), f)
	if err != nil {
		logging.Fatal("Schedule import failed", "path", path, "error", err)
	}
	logging.Info("Schedule import complete", "path", path, "rows", n)
}
