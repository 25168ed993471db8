package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"infinite-experiment/flighttracker/internal/config"
	"infinite-experiment/flighttracker/internal/logging"
	gormModels "infinite-experiment/flighttracker/internal/models/gorm"
)

// OpenORM connects GORM to the configured driver and migrates the schedule table.
// Returns nil, nil when no database is configured.
func OpenORM(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "":
		return nil, nil
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if err := db.AutoMigrate(&gormModels.ScheduleEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schedule table: %w", err)
	}

	logging.Info("Connected via GORM", "driver", cfg.Driver)
	return db, nil
}
