package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
)

const listTablesQuery = `
	SELECT t.name
	FROM sys.tables t
	INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
	WHERE t.is_ms_shipped = 0
		AND (@schema = '' OR s.name = @schema)
	ORDER BY s.name, t.name
`

// ListTables returns user tables, optionally restricted to the configured schema
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	if a.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	rows, err := a.db.QueryContext(ctx, listTablesQuery, sql.Named("schema", a.config.Schema))
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}
