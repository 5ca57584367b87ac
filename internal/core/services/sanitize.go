package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/enunezf/dbsanitize/internal/core/domain"
	"github.com/enunezf/dbsanitize/internal/core/ports"
)

// SanitizeService compares sanitize rule files with a live database
type SanitizeService struct {
	rules     ports.RuleLoader
	tables    ports.TableLister
	generator *Generator
	logger    *zap.Logger
}

// NewSanitizeService creates a service from its collaborators
func NewSanitizeService(rules ports.RuleLoader, tables ports.TableLister, generator *Generator, logger *zap.Logger) *SanitizeService {
	if generator == nil {
		generator = NewGenerator("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SanitizeService{
		rules:     rules,
		tables:    tables,
		generator: generator,
		logger:    logger,
	}
}

// Analyze loads the rule files at path (or discovers them when path is
// empty), lists the database tables and reports the uncovered ones.
// Rule files are resolved before the database is queried.
func (s *SanitizeService) Analyze(ctx context.Context, path string) (*domain.CoverageReport, error) {
	declared, err := s.rules.DeclaredTables(ctx, path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded declared tables", zap.String("file", path), zap.Int("count", len(declared)))

	all, err := s.tables.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list database tables: %w", err)
	}
	s.logger.Debug("listed database tables", zap.Int("count", len(all)))

	report := Analyze(all, declared)
	s.logger.Debug("coverage computed",
		zap.Int("declared", report.Declared),
		zap.Int("total", report.Total),
		zap.Int("missing", len(report.Missing)),
	)
	return report, nil
}

// Generate builds a rule document for the tables Analyze reports as missing.
// The machine name is checked before anything is loaded. A nil document with
// a nil error means every table is already covered.
func (s *SanitizeService) Generate(ctx context.Context, path, machineName string) (*domain.GeneratedDocument, *domain.CoverageReport, error) {
	if machineName == "" {
		return nil, nil, domain.NewConfigurationError("you must specify a machine name")
	}

	report, err := s.Analyze(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	doc, err := s.generator.Build(report.Missing, machineName)
	if err != nil {
		return nil, nil, err
	}
	return doc, report, nil
}
