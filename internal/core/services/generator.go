package services

import (
	"fmt"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// DefaultTool is the tool name written into generated descriptions
const DefaultTool = "dbsanitize generate"

// Generator builds rule documents for uncovered tables
type Generator struct {
	tool string
}

// NewGenerator creates a generator that signs descriptions with tool
func NewGenerator(tool string) *Generator {
	if tool == "" {
		tool = DefaultTool
	}
	return &Generator{tool: tool}
}

// Build returns a document with one entry per missing table, grouped under
// machineName. It returns nil when nothing is missing. Every entry truncates
// its table: the operator is expected to review the queries before use.
func (g *Generator) Build(missing []string, machineName string) (*domain.GeneratedDocument, error) {
	if machineName == "" {
		return nil, domain.NewConfigurationError("you must specify a machine name")
	}

	if len(missing) == 0 {
		return nil, nil
	}

	doc := &domain.GeneratedDocument{
		MachineName: machineName,
		Entries:     make([]domain.GeneratedEntry, 0, len(missing)),
	}
	for _, table := range missing {
		doc.Entries = append(doc.Entries, domain.GeneratedEntry{
			Table:       table,
			Description: fmt.Sprintf("Sanitization entry for %s. Generated by %s.", table, g.tool),
			Query:       fmt.Sprintf("TRUNCATE TABLE %s", table),
		})
	}

	return doc, nil
}
