package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/ui"
)

type analyzeOptions struct {
	file string
	list bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:     "analyze",
		Aliases: []string{"sanitize-analyze", "db-sanitize-analyze", "dbsa"},
		Short:   "Report database tables not covered by sanitize YML files",
		Long: `Compare sanitize YML files against the tables of the connected database.

When --file is omitted on an interactive terminal you are asked for a path.
An empty answer (or a non-interactive run) searches the --search-path
directories for *.sanitize.yml files instead.

Finding uncovered tables is not an error: the command exits 0 either way.

Examples:
  # Analyze a single rule file
  dbsanitize analyze --server localhost --database drupal --user sa --password secret \
      --file web/modules/custom/shop/database.sanitize.yml

  # Search a Drupal tree and list every uncovered table
  dbsanitize analyze --driver mysql --server localhost --database drupal --user root \
      --search-path web/modules --search-path web/profiles --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Full path to a sanitize YML file")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "List the uncovered table names")

	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, opts *analyzeOptions) error {
	file := opts.file
	if file == "" && a.isTerminal() {
		answer, err := ask(cmd.InOrStdin(), cmd.ErrOrStderr(),
			"Please provide the full path to a sanitize YML file (empty to search)")
		if err != nil {
			return err
		}
		file = answer
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
	defer cancel()

	svc, closer := a.newService()
	defer closer.Close()

	report, err := svc.Analyze(ctx, file)
	if err != nil {
		return err
	}

	a.logger.Info("analysis finished",
		zap.String("file", file),
		zap.Int("tables", report.Total),
		zap.Int("missing", len(report.Missing)),
	)

	out := cmd.OutOrStdout()
	if report.AllCovered() {
		fmt.Fprintln(out, ui.Success("%s", report.Summary()))
		return nil
	}

	fmt.Fprintln(out, ui.Warning("%s", report.Summary()))
	if opts.list {
		for _, table := range report.Missing {
			fmt.Fprintln(out, table)
		}
	}

	return nil
}
