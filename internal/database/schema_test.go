package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema_RunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaDDL {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Every statement uses IF NOT EXISTS, so a second run against a complete
// schema executes the same DDL as a no-op.
func TestEnsureSchema_Idempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 2; i++ {
		for range schemaDDL {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
				WillReturnResult(sqlmock.NewResult(0, 0))
		}
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_WrapsFailureAsProvisioningError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
		WillReturnError(errors.New("access denied"))

	err = EnsureSchema(context.Background(), db)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaProvision)
}

// Referenced tables must be created before their referrers, or the foreign
// keys would fail on a fresh database.
func TestSchemaDDL_OrderedForForeignKeys(t *testing.T) {
	index := make(map[string]int)
	for i, stmt := range schemaDDL {
		for _, table := range []string{"users", "sessions", "points", "areas", "nogo_zones", "area_points", "nogo_points", "mowers", "telemetry"} {
			if _, seen := index[table]; !seen && containsTable(stmt, table) {
				index[table] = i
			}
		}
	}
	assert.Less(t, index["users"], index["sessions"])
	assert.Less(t, index["users"], index["areas"])
	assert.Less(t, index["areas"], index["nogo_zones"])
	assert.Less(t, index["points"], index["area_points"])
	assert.Less(t, index["areas"], index["area_points"])
	assert.Less(t, index["nogo_zones"], index["nogo_points"])
	assert.Less(t, index["mowers"], index["telemetry"])
	assert.Less(t, index["points"], index["telemetry"])
}

func containsTable(stmt, table string) bool {
	return strings.HasPrefix(strings.TrimSpace(stmt), "CREATE TABLE IF NOT EXISTS "+table+" ")
}
