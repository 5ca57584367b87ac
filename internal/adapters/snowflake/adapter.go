// Package snowflake provides the Snowflake adapter implementation.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

const listTablesQuery = `
	SELECT TABLE_NAME
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), CURRENT_SCHEMA())
		AND TABLE_TYPE = 'BASE TABLE'
	ORDER BY TABLE_NAME
`

// Adapter implements the DatabasePort interface for Snowflake
type Adapter struct {
	config *domain.ConnectionConfig
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter creates a new Snowflake adapter
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

// DSN builds the connection string with Snowflake's DSN builder
func DSN(c *domain.ConnectionConfig) (string, error) {
	return sf.DSN(&sf.Config{
		Account:     c.Account,
		User:        c.User,
		Password:    c.Password,
		Database:    c.Database,
		Schema:      c.Schema,
		Warehouse:   c.Warehouse,
		Role:        c.Role,
		Application: c.AppName,
	})
}

// Connect establishes a connection to Snowflake
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dsn, err := DSN(a.config)
	if err != nil {
		return fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
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

// GetServerInfo retrieves the Snowflake version and current database
func (a *Adapter) GetServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	info := &domain.ServerInfo{}
	row := a.db.QueryRowContext(ctx, "SELECT CURRENT_VERSION(), CURRENT_DATABASE()")
	if err := row.Scan(&info.Version, &info.Database); err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}
	return info, nil
}

// ListTables returns the base tables of the configured or current schema.
// Unquoted Snowflake identifiers are stored upper case, so the schema filter
// is upper-cased the same way.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	rows, err := a.db.QueryContext(ctx, listTablesQuery, strings.ToUpper(a.config.Schema))
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
