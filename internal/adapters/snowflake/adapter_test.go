package snowflake

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enunezf/dbsanitize/internal/core/domain"
)

func config() *domain.ConnectionConfig {
	cfg := domain.NewConnectionConfig()
	cfg.Driver = domain.DriverSnowflake
	cfg.Account = "xy12345"
	cfg.User = "loader"
	cfg.Password = "secret"
	cfg.Database = "DRUPAL"
	cfg.Schema = "public"
	return cfg
}

func TestDSN(t *testing.T) {
	dsn, err := DSN(config())
	require.NoError(t, err)

	assert.Contains(t, dsn, "loader:secret@xy12345")
	assert.Contains(t, dsn, "database=DRUPAL")
	assert.Contains(t, dsn, "schema=public")
}

func TestListTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM INFORMATION_SCHEMA.TABLES").
		WithArgs("PUBLIC").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("SESSIONS").AddRow("USERS"))

	tables, err := NewAdapterWithDB(config(), db).ListTables(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"SESSIONS", "USERS"}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("warehouse suspended")
	mock.ExpectQuery("FROM INFORMATION_SCHEMA.TABLES").WillReturnError(boom)

	_, err = NewAdapterWithDB(config(), db).ListTables(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestConnect_InvalidConfig(t *testing.T) {
	cfg := config()
	cfg.Account = ""

	err := NewAdapter(cfg, nil).Connect(context.Background())

	assert.True(t, domain.IsConfigurationError(err))
}
