package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitPostgresTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS auth_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_auth_events_user_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_auth_events_created_at").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, InitPostgresTables(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitPostgresTablesStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS auth_events").WillReturnError(errors.New("permission denied"))

	err = InitPostgresTables(context.Background(), db)
	assert.EqualError(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
