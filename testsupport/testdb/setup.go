package testdb

import (
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/furyracing/race-engine/testsupport/tcpostgres"
)

// InitTestDB returns a migrated and emptied database. TESTDB_URL selects an
// external database, otherwise a container is started.
func InitTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	var pool *pgxpool.Pool
	if os.Getenv("TESTDB_URL") != "" {
		pool = tcpg.SetupExternalTestDB(t)
	} else {
		pool = tcpg.SetupTestDB(t)
	}
	tcpg.ClearAllTables(pool)
	return pool
}
