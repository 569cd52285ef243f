package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	conn, err := Connect(DriverSQLite, "file::memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, DriverSQLite))

	var tables []string
	err = conn.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	assert.Contains(t, tables, "seasons")
	assert.Contains(t, tables, "divisions")
	assert.Contains(t, tables, "teams")
	assert.Contains(t, tables, "brackets")
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := Connect(DriverSQLite, "file::memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, DriverSQLite))
	require.NoError(t, Migrate(conn, DriverSQLite))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("oracle", "whatever")
	assert.Error(t, err)
}
