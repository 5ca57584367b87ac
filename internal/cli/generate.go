package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/adapters/rulefile"
	"github.com/enunezf/dbsanitize/internal/core/domain"
	"github.com/enunezf/dbsanitize/internal/security"
	"github.com/enunezf/dbsanitize/internal/ui"
)

type generateOptions struct {
	file        string
	machineName string
	output      string
	format      string
	yes         bool
	dryRun      bool
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"sanitize-generate", "db-sanitize-generate", "dbsg"},
		Short:   "Generate sanitize entries for uncovered tables",
		Long: `Generate a sanitize YML document with one entry per table that no rule file
covers, grouped under --machine-name.

Every generated entry truncates its table. Review and edit the queries before
using the file.

Without --file, the --search-path directories are searched for
*.sanitize.yml files. The document is printed to stdout unless --output is
given. Overwriting an existing file asks for confirmation; --yes skips the
question and --dry-run only shows what would be written.

Examples:
  # Print starter entries for the "shop" module
  dbsanitize generate --machine-name shop --search-path web/modules \
      --driver postgres --server localhost --database drupal --user drupal

  # Write them next to the module
  dbsanitize generate --machine-name shop --file web/modules/custom/shop/database.sanitize.yml \
      --output web/modules/custom/shop/generated.sanitize.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.machineName, "machine-name", "m", "", "Machine name to group the generated entries under (required)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Full path to a sanitize YML file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.format, "format", rulefile.FormatYAML, "Output format: yaml or json")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite --output without asking")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be written without writing")

	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts *generateOptions) error {
	if opts.machineName == "" {
		return domain.NewConfigurationError("you must specify a machine name (--machine-name)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
	defer cancel()

	svc, closer := a.newService()
	defer closer.Close()

	doc, report, err := svc.Generate(ctx, opts.file, opts.machineName)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if doc == nil {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("%s", report.Summary()))
		return nil
	}

	var buf bytes.Buffer
	if err := rulefile.Encode(&buf, doc, opts.format); err != nil {
		return err
	}

	a.logger.Info("generated sanitize entries",
		zap.String("machine_name", doc.MachineName),
		zap.Int("entries", len(doc.Entries)),
	)

	if opts.output == "" {
		fmt.Fprintln(stderr, ui.Warning("%s", report.Summary()))
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	written, err := writeOutput(opts.output, buf.Bytes(), a.approver(cmd, opts), opts.dryRun)
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintln(stderr, ui.Success("%d sanitize entries written to %s", len(doc.Entries), opts.output))
		fmt.Fprintln(stderr, ui.Warning("Review the generated TRUNCATE queries before use."))
	}
	return nil
}

// approver picks how overwrites are confirmed
func (a *app) approver(cmd *cobra.Command, opts *generateOptions) security.Approver {
	switch {
	case opts.dryRun:
		return security.NewDryRunApprover(cmd.ErrOrStderr())
	case opts.yes:
		return security.NewAutoApprover(true)
	case a.isTerminal():
		return security.NewInteractiveApprover(cmd.InOrStdin(), cmd.ErrOrStderr())
	default:
		return security.NewAutoApprover(false)
	}
}

// writeOutput writes data to path after approval. Creating a new file needs
// no approval, replacing a file does, and replacing a file that already
// declares sanitize rules is destructive.
func writeOutput(path string, data []byte, approver security.Approver, dryRun bool) (bool, error) {
	level := security.ReadOnly
	impact := "creates a new file"

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return false, domain.NewConfigurationError("%s is a directory", path)
	case err == nil:
		level = security.Modification
		impact = "replaces an existing file"
		if existing, err := rulefile.NewLoader(nil, nil).Load(path); err == nil && len(existing.Tables()) > 0 {
			level = security.Destructive
			impact = fmt.Sprintf("replaces %d existing sanitize entries", len(existing.Tables()))
		}
	case !os.IsNotExist(err):
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if level > security.ReadOnly || dryRun {
		approved, err := approver.RequestApproval(security.ApprovalRequest{
			Operation:     "Write generated sanitize file",
			Target:        path,
			Preview:       string(data),
			Level:         level,
			ImpactSummary: impact,
		})
		if err != nil {
			return false, fmt.Errorf("approval error: %w", err)
		}
		if !approved {
			if dryRun {
				return false, nil
			}
			return false, fmt.Errorf("refusing to overwrite %s: operation cancelled (use --yes to skip confirmation)", path)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write output file: %w", err)
	}
	return true, nil
}
