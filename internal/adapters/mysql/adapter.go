// Package mysql provides the MySQL/MariaDB adapter implementation.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

const listTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		AND table_type = 'BASE TABLE'
	ORDER BY table_name
`

// Adapter implements the DatabasePort interface for MySQL
type Adapter struct {
	config *domain.ConnectionConfig
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter creates a new MySQL adapter
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

// DSN builds the go-sql-driver connection string
func DSN(c *domain.ConnectionConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Server, strconv.Itoa(c.EffectivePort()))
	cfg.DBName = c.Database
	cfg.Timeout = 30 * time.Second
	return cfg.FormatDSN()
}

// Connect establishes a connection to MySQL
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sql.Open("mysql", DSN(a.config))
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	db.SetMaxOpenConns(2)

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

// GetServerInfo retrieves the server version and current database
func (a *Adapter) GetServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	info := &domain.ServerInfo{}
	row := a.db.QueryRowContext(ctx, "SELECT VERSION(), DATABASE()")
	if err := row.Scan(&info.Version, &info.Database); err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}
	return info, nil
}

// ListTables returns the base tables of the configured or current database
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	rows, err := a.db.QueryContext(ctx, listTablesQuery, a.config.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}
