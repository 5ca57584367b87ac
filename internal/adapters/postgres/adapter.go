// Package postgres provides the PostgreSQL adapter, built on gorm over lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	"go.uber.org/zap"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// Adapter implements the DatabasePort interface for PostgreSQL
type Adapter struct {
	config *domain.ConnectionConfig
	db     *gorm.DB
	logger *zap.Logger
}

// NewAdapter creates a new PostgreSQL adapter
func NewAdapter(config *domain.ConnectionConfig, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{config: config, logger: logger}
}

// NewAdapterWithDB wraps an already open connection
func NewAdapterWithDB(config *domain.ConnectionConfig, conn *sql.DB) (*Adapter, error) {
	db, err := open(gormpg.New(gormpg.Config{Conn: conn}))
	if err != nil {
		return nil, err
	}
	return &Adapter{config: config, db: db, logger: zap.NewNop()}, nil
}

// DSN builds a postgres:// connection URL
func DSN(c *domain.ConnectionConfig) string {
	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	if c.AppName != "" {
		query.Set("application_name", c.AppName)
	}
	if c.Schema != "" {
		query.Set("search_path", c.Schema)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.User),
		Host:     net.JoinHostPort(c.Server, strconv.Itoa(c.EffectivePort())),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Connect establishes a connection to PostgreSQL
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := open(gormpg.New(gormpg.Config{
		DriverName: "postgres",
		DSN:        DSN(a.config),
	}))
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetConnMaxIdleTime(30 * time.Second)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
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
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (a *Adapter) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetServerInfo retrieves the server version and current database
func (a *Adapter) GetServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	info := &domain.ServerInfo{}
	row := a.db.WithContext(ctx).Raw("SELECT version(), current_database()").Row()
	if err := row.Scan(&info.Version, &info.Database); err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}
	return info, nil
}

// ListTables returns the base tables of the current schema
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	tables, err := a.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}
