package ports

import (
	"context"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// RuleLoader reads sanitize rule documents
type RuleLoader interface {
	// DeclaredTables returns the union of table names declared by the rule
	// document at path, or by every discovered document when path is empty
	DeclaredTables(ctx context.Context, path string) (domain.TableSet, error)
}

// Discoverer locates rule documents when no explicit path is given
type Discoverer interface {
	Discover(ctx context.Context) ([]string, error)
}
