package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enunezf/dbsanitize/internal/ui"
)

func newConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Test the database connection",
		Long: `Test the connection to the configured database and display server
information and the number of tables that would be analyzed.

Examples:
  # SQL Server with SQL authentication
  dbsanitize connect --server localhost --database drupal --user sa --password secret

  # PostgreSQL
  dbsanitize connect --driver postgres --server localhost --database drupal --user drupal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd, a)
		},
	}
}

func runConnect(cmd *cobra.Command, a *app) error {
	conn, err := a.connectionConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connecting to %s...\n", conn.SafeString())

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
	defer cancel()

	db, err := a.openDatabase(ctx, conn, a.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	fmt.Fprintln(out, ui.Success("Connection successful!"))

	info, err := db.GetServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get server info: %w", err)
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	version := info.Version
	if i := strings.IndexByte(version, '\n'); i >= 0 {
		version = version[:i]
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Rule(60))
	fmt.Fprintln(out, ui.Label("Driver", string(conn.Driver)))
	fmt.Fprintln(out, ui.Label("Version", strings.TrimSpace(version)))
	fmt.Fprintln(out, ui.Label("Database", info.Database))
	fmt.Fprintln(out, ui.Label("Tables", fmt.Sprintf("%d", len(tables))))
	fmt.Fprintln(out, ui.Rule(60))

	return nil
}
