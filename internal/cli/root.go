// Package cli provides the command-line interface for dbsanitize.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/adapters"
	"github.com/enunezf/dbsanitize/internal/adapters/rulefile"
	"github.com/enunezf/dbsanitize/internal/config"
	"github.com/enunezf/dbsanitize/internal/core/domain"
	"github.com/enunezf/dbsanitize/internal/core/ports"
	"github.com/enunezf/dbsanitize/internal/core/services"
	dblog "github.com/enunezf/dbsanitize/internal/log"
	"github.com/enunezf/dbsanitize/internal/ui"
)

// Version information
var version = "0.2.0"

// app carries the state shared by every command of one invocation
type app struct {
	configFile string
	envFile    string

	viper  *viper.Viper
	cfg    *config.Config
	logger *zap.Logger

	// openDatabase connects to the configured database; replaced in tests
	openDatabase func(ctx context.Context, cfg *domain.ConnectionConfig, logger *zap.Logger) (ports.DatabasePort, error)
	// isTerminal reports whether stdin is interactive
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		viper:        config.NewViper(),
		logger:       dblog.NewNop(),
		openDatabase: adapters.Open,
		isTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd := newRootCmd(newApp())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error("Error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dbsanitize",
		Short: "dbsanitize - sanitization coverage for database snapshots",
		Long: `dbsanitize compares database.sanitize.yml rule files with the tables of a
live database before a snapshot is shared.

It reports the tables that no rule file covers and can generate a starter
rule file for them. It never runs the sanitization queries itself.

Rule files have the shape:

  sanitize:
    <machine_name>:
      <table>:
        description: Human readable description
        query: TRUNCATE TABLE <table>

Connection settings come from flags, a dbsanitize.yaml config file, a .env
file or DBSANITIZE_* environment variables (e.g. DBSANITIZE_DATABASE_SERVER).

Example:
  dbsanitize analyze --driver mysql --server localhost --database drupal --user root --file web/modules/custom/foo/database.sanitize.yml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: ./dbsanitize.yaml or ./config/dbsanitize.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before the config")
	flags.String("driver", "sqlserver", "Database driver: sqlserver, postgres, mysql or snowflake")
	flags.StringP("server", "s", "", "Database hostname or IP address")
	flags.Int("port", 0, "Database port (default: driver's standard port)")
	flags.StringP("database", "d", "", "Database name")
	flags.String("schema", "", "Schema to inspect (default: all user schemas / current schema)")
	flags.StringP("user", "u", "", "Username")
	flags.StringP("password", "p", "", "Password")
	flags.BoolP("trusted", "t", false, "Use Windows/Integrated authentication (sqlserver)")
	flags.Bool("trust-cert", false, "Trust server certificate (sqlserver, insecure)")
	flags.String("sslmode", "disable", "SSL mode (postgres)")
	flags.String("account", "", "Account identifier (snowflake)")
	flags.String("warehouse", "", "Warehouse (snowflake)")
	flags.String("role", "", "Role (snowflake)")
	flags.StringSlice("search-path", nil, "Directories searched for sanitize YML files when --file is omitted")
	flags.BoolP("verbose", "v", false, "Verbose debug logging")
	flags.String("log-format", "console", "Log format: console or json")
	flags.Duration("timeout", 0, "Overall timeout for database work (default 2m)")

	bindings := map[string]string{
		"database.driver":       "driver",
		"database.server":       "server",
		"database.port":         "port",
		"database.name":         "database",
		"database.schema":       "schema",
		"database.user":         "user",
		"database.password":     "password",
		"database.trusted":      "trusted",
		"database.trust_cert":   "trust-cert",
		"database.sslmode":      "sslmode",
		"database.account":      "account",
		"database.warehouse":    "warehouse",
		"database.role":         "role",
		"sanitize.search_paths": "search-path",
		"log.verbose":           "verbose",
		"log.format":            "log-format",
		"timeout":               "timeout",
	}
	for key, flag := range bindings {
		// Lookup only fails for a typo in the table above.
		_ = a.viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newConnectCmd(a))

	return rootCmd
}

// init loads configuration and builds the logger
func (a *app) init(logOut io.Writer) error {
	cfg, err := config.Load(a.viper, a.configFile, a.envFile)
	if err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	a.cfg = cfg

	logger, err := dblog.New(logOut, cfg.Log.Verbose, cfg.Log.Format)
	if err != nil {
		return domain.NewConfigurationError("invalid log settings: %v", err)
	}
	a.logger = logger.With(zap.String("run", uuid.NewString()))
	return nil
}

// connectionConfig returns the validated connection settings
func (a *app) connectionConfig() (*domain.ConnectionConfig, error) {
	conn, err := a.cfg.ConnectionConfig()
	if err != nil {
		return nil, err
	}
	if err := conn.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return conn, nil
}

// dial validates the connection settings and connects
func (a *app) dial(ctx context.Context) (ports.DatabasePort, error) {
	conn, err := a.connectionConfig()
	if err != nil {
		return nil, err
	}
	return a.openDatabase(ctx, conn, a.logger)
}

// newService wires the rule loader, the database and the generator.
// The returned closer releases the database connection, if one was opened.
func (a *app) newService() (*services.SanitizeService, io.Closer) {
	discoverer := rulefile.NewGlobDiscoverer(a.cfg.Sanitize.SearchPaths, a.cfg.Sanitize.Pattern, a.logger)
	loader := rulefile.NewLoader(discoverer, a.logger)
	tables := &lazyTables{open: a.dial}
	generator := services.NewGenerator(a.cfg.Sanitize.Tool)

	return services.NewSanitizeService(loader, tables, generator, a.logger), tables
}
