// Package sqlserver provides the SQL Server database adapter implementation.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// Adapter implements the DatabasePort interface for SQL Server
type Adapter struct {
	config *domain.ConnectionConfig
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter creates a new SQL Server adapter
func NewAdapter(config *domain.ConnectionConfig, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{config: config, logger: logger}
}

// NewAdapterWithDB wraps an already open connection
func NewAdapterWithDB(config *domain.ConnectionConfig, db *sql.DB) *Adapter {
	return &Adapter{config: config, db: db, logger: zap.NewNop()}
}

// ConnectionString generates the MSSQL connection string
func ConnectionString(c *domain.ConnectionConfig) string {
	query := url.Values{}

	query.Add("database", c.Database)
	query.Add("app name", c.AppName)

	if c.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}

	if c.TrustServer {
		query.Add("TrustServerCertificate", "true")
	}

	var userInfo string
	if c.TrustedAuth {
		query.Add("integrated security", "true")
	} else {
		userInfo = fmt.Sprintf("%s:%s@", url.PathEscape(c.User), url.PathEscape(c.Password))
	}

	return fmt.Sprintf("sqlserver://%s%s:%d?%s",
		userInfo,
		c.Server,
		c.EffectivePort(),
		query.Encode(),
	)
}

// Connect establishes a connection to SQL Server
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sql.Open("sqlserver", ConnectionString(a.config))
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.logger.Debug("connected", zap.String("target", a.config.SafeString()))
	a.db = db
	return nil
}

// Ping verifies the connection is still alive
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("not connected")
	}
	return a.db.PingContext(ctx)
}

// Close closes the database connection
func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// GetServerInfo retrieves information about the connected SQL Server
func (a *Adapter) GetServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	info := &domain.ServerInfo{}
	row := a.db.QueryRowContext(ctx, "SELECT @@VERSION, DB_NAME()")
	if err := row.Scan(&info.Version, &info.Database); err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}

	return info, nil
}
