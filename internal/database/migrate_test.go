package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialMigrationCreatesRequiredTables(t *testing.T) {
	sql := strings.ToLower(initialMigrationSQL)
	for _, table := range requiredTables {
		require.Contains(t, sql, "create table if not exists "+table+" ", "missing table %s", table)
	}
}

func TestInitialMigrationEnforcesGrantUniqueness(t *testing.T) {
	sql := strings.ToLower(initialMigrationSQL)
	require.Contains(t, sql, "primary key (user_id, collection_id)")
	require.Contains(t, sql, "primary key (user_id, item_id)")
	require.Contains(t, sql, "on users (lower(email))")
}

func TestEnsureSchemaRejectsNilPool(t *testing.T) {
	var db *DB
	require.Error(t, db.EnsureSchema(t.Context()))
}
