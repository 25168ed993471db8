package api

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"infinite-experiment/flighttracker/internal/common"
	"infinite-experiment/flighttracker/internal/config"
	"infinite-experiment/flighttracker/internal/db"
	"infinite-experiment/flighttracker/internal/db/repositories"
	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/metrics"
	"infinite-experiment/flighttracker/internal/providers"
	"infinite-experiment/flighttracker/internal/schedule"
	"infinite-experiment/flighttracker/internal/services"
	"infinite-experiment/flighttracker/internal/workers"
)

type Repositories struct {
	// Schedule is nil unless a database is configured
	Schedule *repositories.ScheduleRepository
}

type Services struct {
	Cache    common.CacheInterface
	Feed     *services.StateFeedService
	Tracker  *services.TrackerService
	Schedule *schedule.Store
	// Importer is nil unless the schedule lives in the database
	Importer *schedule.Importer
}

// Connections are optional backing stores pinged by the health check
type Connections struct {
	ORM   *gorm.DB
	SQL   *sqlx.DB
	Redis *redis.Client
}

type Dependencies struct {
	Config   *config.Config
	Metrics  *metrics.MetricsRegistry
	Conn     *Connections
	Repo     *Repositories
	Services *Services
	Worker   *workers.RefreshWorker
}

// InitDependencies opens the configured connections and builds the tracker pipeline
func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	conn := &Connections{}

	orm, err := db.OpenORM(cfg.Database)
	if err != nil {
		return nil, err
	}
	conn.ORM = orm

	if cfg.Database.Driver == "postgres" {
		sqlDB, err := db.InitPostgres(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		conn.SQL = sqlDB
	}

	var cache common.CacheInterface
	switch cfg.Cache.Backend {
	case "redis":
		conn.Redis = common.NewRedisClient(cfg.Redis)
		cache = common.NewRedisCacheService(conn.Redis)
	default:
		cache = common.NewCacheService(cfg.OpenSky.SnapshotTTL, 2*cfg.OpenSky.SnapshotTTL)
	}
	logging.Info("Snapshot cache initialized", "backend", cfg.Cache.Backend, "ttl", cfg.OpenSky.SnapshotTTL.String())

	repos := &Repositories{}
	if orm != nil {
		repos.Schedule = repositories.NewScheduleRepository(orm)
	}

	provider := providers.NewOpenSkyProvider(
		cfg.OpenSky.BaseURL,
		cfg.OpenSky.Username,
		cfg.OpenSky.Password,
		cfg.OpenSky.Timeout,
	)
	logging.Info("State provider initialized", "provider", provider.GetProviderType(), "base_url", provider.BaseURL)

	return NewDependencies(cfg, metricsReg, conn, repos, cache, provider), nil
}

// NewDependencies assembles the pipeline over already-open resources
func NewDependencies(
	cfg *config.Config,
	metricsReg *metrics.MetricsRegistry,
	conn *Connections,
	repos *Repositories,
	cache common.CacheInterface,
	provider providers.StateProvider,
) *Dependencies {
	var source schedule.Source
	var importer *schedule.Importer
	if cfg.Schedule.Source == "db" && repos.Schedule != nil {
		source = schedule.NewDBSource(repos.Schedule)
		importer = schedule.NewImporter(repos.Schedule, cfg.Schedule.CarrierColumn, cfg.Schedule.FlightColumn)
	} else {
		source = schedule.NewCSVSource(cfg.Schedule.CSVPath, cfg.Schedule.CarrierColumn, cfg.Schedule.FlightColumn)
	}

	store := schedule.NewStore(source)
	feed := services.NewStateFeedService(provider, cache, cfg.OpenSky.SnapshotTTL, metricsReg)
	tracker := services.NewTrackerService(store, feed, metricsReg, cfg.Server.RefreshRateSeconds)

	return &Dependencies{
		Config:  cfg,
		Metrics: metricsReg,
		Conn:    conn,
		Repo:    repos,
		Services: &Services{
			Cache:    cache,
			Feed:     feed,
			Tracker:  tracker,
			Schedule: store,
			Importer: importer,
		},
		Worker: workers.NewRefreshWorker(tracker),
	}
}

// Close releases every open connection
func (d *Dependencies) Close() {
	if err := d.Services.Cache.Close(); err != nil {
		logging.Warn("Failed to close cache", "error", err)
	}
	if d.Conn.SQL != nil {
		_ = d.Conn.SQL.Close()
	}
	if d.Conn.ORM != nil {
		if sqlDB, err := d.Conn.ORM.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
