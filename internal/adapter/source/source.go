// Package source builds the session and station sources selected by
// reports.source.
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-reports/internal/adapter/external/platform"
	"github.com/seu-repo/sigec-reports/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigec-reports/internal/ports"
	"github.com/seu-repo/sigec-reports/pkg/config"
)

// Sources are the two history collaborators of the report service. Close
// releases whatever connection backs them.
type Sources struct {
	Sessions ports.SessionSource
	Stations ports.StationSource
	// DB is set for the postgres source.
	DB *gorm.DB
	// Ping checks the API source for readiness. It is nil for
	// postgres, which is covered by the database check.
	Ping  func(ctx context.Context) error
	Close func() error
}

func NewFromConfig(cfg *config.Config, log *zap.Logger) (*Sources, error) {
	switch cfg.Reports.Source {
	case "api":
		client := platform.NewClient(platform.Config{
			BaseURL:            cfg.Reports.APIBaseURL,
			Token:              cfg.Reports.APIToken,
			Timeout:            cfg.Reports.RequestTimeout,
			BreakerMaxRequests: uint32(cfg.CircuitBreaker.MaxRequests),
			BreakerInterval:    cfg.CircuitBreaker.Interval,
			BreakerTimeout:     cfg.CircuitBreaker.Timeout,
			BreakerFailureRate: cfg.CircuitBreaker.FailureThreshold,
		}, log)
		return &Sources{
			Sessions: client,
			Stations: client,
			Ping:     client.Ping,
			Close:    func() error { return nil },
		}, nil

	case "postgres":
		db, err := postgres.NewConnection(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(db); err != nil {
			postgres.Close(db)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &Sources{
			Sessions: postgres.NewSessionRepository(db, log),
			Stations: postgres.NewStationRepository(db, log),
			DB:       db,
			Close:    func() error { return postgres.Close(db) },
		}, nil

	default:
		return nil, fmt.Errorf("unknown reports source %q", cfg.Reports.Source)
	}
}
