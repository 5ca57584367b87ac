// Package config loads dbsanitize settings from a config file, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// DefaultTimeout bounds the database work of one command
const DefaultTimeout = 2 * time.Minute

// EnvPrefix is prepended to every environment variable, e.g. DBSANITIZE_DATABASE_SERVER
const EnvPrefix = "DBSANITIZE"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Sanitize SanitizeConfig `mapstructure:"sanitize"`
	Log      LogConfig      `mapstructure:"log"`
	Timeout  time.Duration  `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"`
	Server    string `mapstructure:"server"`
	Port      int    `mapstructure:"port"`
	Name      string `mapstructure:"name"`
	Schema    string `mapstructure:"schema"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Trusted   bool   `mapstructure:"trusted"`
	TrustCert bool   `mapstructure:"trust_cert"`
	Encrypt   bool   `mapstructure:"encrypt"`
	SSLMode   string `mapstructure:"sslmode"`
	Account   string `mapstructure:"account"`
	Warehouse string `mapstructure:"warehouse"`
	Role      string `mapstructure:"role"`
}

type SanitizeConfig struct {
	SearchPaths []string `mapstructure:"search_paths"`
	Pattern     string   `mapstructure:"pattern"`
	Tool        string   `mapstructure:"tool"`
}

type LogConfig struct {
	Verbose bool   `mapstructure:"verbose"`
	Format  string `mapstructure:"format"`
}

var defaults = map[string]any{
	"database.driver":       string(domain.DriverSQLServer),
	"database.server":       "",
	"database.port":         0,
	"database.name":         "",
	"database.schema":       "",
	"database.user":         "",
	"database.password":     "",
	"database.trusted":      false,
	"database.trust_cert":   false,
	"database.encrypt":      true,
	"database.sslmode":      "disable",
	"database.account":      "",
	"database.warehouse":    "",
	"database.role":         "",
	"sanitize.search_paths": []string{},
	"sanitize.pattern":      "*.sanitize.yml",
	"sanitize.tool":         "dbsanitize generate",
	"log.verbose":           false,
	"log.format":            "console",
	"timeout":               DefaultTimeout,
}

// NewViper returns a viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads envFile (if it exists) into the process environment, then the
// config file, and unmarshals the merged settings. When configFile is empty
// dbsanitize.yaml is looked up in . and ./config and may be absent.
func Load(v *viper.Viper, configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dbsanitize")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, domain.NewConfigurationError("error reading config file: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ConnectionConfig converts the database section to a domain connection config
func (c *Config) ConnectionConfig() (*domain.ConnectionConfig, error) {
	driver, err := domain.ParseDriver(c.Database.Driver)
	if err != nil {
		return nil, err
	}

	conn := domain.NewConnectionConfig()
	conn.Driver = driver
	conn.Server = c.Database.Server
	conn.Port = c.Database.Port
	conn.Database = c.Database.Name
	conn.Schema = c.Database.Schema
	conn.User = c.Database.User
	conn.Password = c.Database.Password
	conn.TrustedAuth = c.Database.Trusted
	conn.TrustServer = c.Database.TrustCert
	conn.Encrypt = c.Database.Encrypt
	conn.Account = c.Database.Account
	conn.Warehouse = c.Database.Warehouse
	conn.Role = c.Database.Role
	if c.Database.SSLMode != "" {
		conn.SSLMode = c.Database.SSLMode
	}
	return conn, nil
}
