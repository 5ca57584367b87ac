// Package adapters selects the database adapter for a connection config.
package adapters

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/adapters/mysql"
	"github.com/enunezf/dbsanitize/internal/adapters/postgres"
	"github.com/enunezf/dbsanitize/internal/adapters/snowflake"
	"github.com/enunezf/dbsanitize/internal/adapters/sqlserver"
	"github.com/enunezf/dbsanitize/internal/core/domain"
	"github.com/enunezf/dbsanitize/internal/core/ports"
)

// NewDatabase returns an unconnected adapter for cfg.Driver
func NewDatabase(cfg *domain.ConnectionConfig, logger *zap.Logger) (ports.DatabasePort, error) {
	driver, err := domain.ParseDriver(string(cfg.Driver))
	if err != nil {
		return nil, err
	}

	named := logger.Named(string(driver))
	switch driver {
	case domain.DriverSQLServer:
		return sqlserver.NewAdapter(cfg, named), nil
	case domain.DriverPostgres:
		return postgres.NewAdapter(cfg, named), nil
	case domain.DriverMySQL:
		return mysql.NewAdapter(cfg, named), nil
	case domain.DriverSnowflake:
		return snowflake.NewAdapter(cfg, named), nil
	default:
		return nil, fmt.Errorf("no adapter for driver %s", driver)
	}
}

// Open creates the adapter for cfg and connects it
func Open(ctx context.Context, cfg *domain.ConnectionConfig, logger *zap.Logger) (ports.DatabasePort, error) {
	db, err := NewDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("connecting to database", zap.String("target", cfg.SafeString()))
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return db, nil
}
