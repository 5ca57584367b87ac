// Package ports defines the interfaces (ports) for the hexagonal architecture.
package ports

import (
	"context"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// TableLister lists the tables present in the connected database
type TableLister interface {
	// ListTables returns every user table name, in the order the engine reports them
	ListTables(ctx context.Context) ([]string, error)
}

// DatabasePort defines the interface for database operations
type DatabasePort interface {
	TableLister

	// Connect establishes a connection to the database
	Connect(ctx context.Context) error

	// Ping verifies the connection is still alive
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error

	// GetServerInfo retrieves information about the connected server
	GetServerInfo(ctx context.Context) (*domain.ServerInfo, error)
}
