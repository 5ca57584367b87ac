// Package domain contains the core domain models for dbsanitize.
package domain

import (
	"fmt"
	"strings"
)

// Driver identifies the database engine to introspect
type Driver string

const (
	DriverSQLServer Driver = "sqlserver"
	DriverPostgres  Driver = "postgres"
	DriverMySQL     Driver = "mysql"
	DriverSnowflake Driver = "snowflake"
)

// ParseDriver converts a driver name to a Driver
func ParseDriver(name string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(name))); d {
	case DriverSQLServer, DriverPostgres, DriverMySQL, DriverSnowflake:
		return d, nil
	case "mssql":
		return DriverSQLServer, nil
	case "postgresql", "pgsql":
		return DriverPostgres, nil
	default:
		return "", NewConfigurationError("unsupported driver %q (expected sqlserver, postgres, mysql or snowflake)", name)
	}
}

// DefaultPort returns the engine's standard port, or 0 when not applicable
func (d Driver) DefaultPort() int {
	switch d {
	case DriverSQLServer:
		return 1433
	case DriverPostgres:
		return 5432
	case DriverMySQL:
		return 3306
	default:
		return 0
	}
}

// ConnectionConfig holds the configuration for a database connection
type ConnectionConfig struct {
	Driver      Driver // Database engine
	Server      string // Server hostname or IP
	Port        int    // Port number (0 means the driver default)
	Database    string // Database name
	Schema      string // Schema to introspect (empty means all / current)
	User        string // Username
	Password    string // Password
	TrustedAuth bool   // SQL Server: use Windows/Integrated authentication
	Encrypt     bool   // SQL Server: encrypt connection
	TrustServer bool   // SQL Server: trust server certificate
	SSLMode     string // PostgreSQL sslmode
	Account     string // Snowflake account identifier
	Warehouse   string // Snowflake warehouse
	Role        string // Snowflake role
	AppName     string // Application name for connection
}

// NewConnectionConfig creates a new connection config with defaults
func NewConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Driver:  DriverSQLServer,
		Encrypt: true,
		SSLMode: "disable",
		AppName: "dbsanitize",
	}
}

// EffectivePort returns Port, falling back to the driver default
func (c *ConnectionConfig) EffectivePort() int {
	if c.Port == 0 {
		return c.Driver.DefaultPort()
	}
	return c.Port
}

// Validate checks if the connection config is valid
func (c *ConnectionConfig) Validate() error {
	if _, err := ParseDriver(string(c.Driver)); err != nil {
		return err
	}

	if c.Database == "" {
		return NewConfigurationError("database is required")
	}

	if c.Driver == DriverSnowflake {
		if c.Account == "" {
			return NewConfigurationError("account is required for snowflake")
		}
		if c.User == "" {
			return NewConfigurationError("user is required for snowflake")
		}
		return nil
	}

	if c.Server == "" {
		return NewConfigurationError("server is required")
	}

	switch {
	case c.Driver == DriverSQLServer && c.TrustedAuth:
	case c.User == "":
		return NewConfigurationError("user is required for %s authentication", c.Driver)
	case c.Driver == DriverSQLServer && c.Password == "":
		return NewConfigurationError("password is required for SQL authentication")
	}

	if port := c.EffectivePort(); port <= 0 || port > 65535 {
		return NewConfigurationError("port must be between 1 and 65535")
	}

	return nil
}

// SafeString returns a description of the target with the password masked
func (c *ConnectionConfig) SafeString() string {
	switch {
	case c.Driver == DriverSnowflake:
		return fmt.Sprintf("Driver=snowflake; Account=%s; Database=%s; User=%s; Password=***",
			c.Account, c.Database, c.User)
	case c.TrustedAuth:
		return fmt.Sprintf("Driver=%s; Server=%s:%d; Database=%s; TrustedAuth=true",
			c.Driver, c.Server, c.EffectivePort(), c.Database)
	default:
		return fmt.Sprintf("Driver=%s; Server=%s:%d; Database=%s; User=%s; Password=***",
			c.Driver, c.Server, c.EffectivePort(), c.Database, c.User)
	}
}

// ServerInfo holds information about the connected server
type ServerInfo struct {
	Version  string // Engine version string
	Database string // Name of the database in use
}
