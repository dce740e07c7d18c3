//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"

	"github.com/furyracing/race-engine/pkg/db/migrate"
	database "github.com/furyracing/race-engine/pkg/db/postgres"
)

// SetupTestDB creates a pg connection pool for the race engine test database.
// The test is skipped if no container runtime is available.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	container, err := SetupPostgres(ctx,
		WithStartupTimeout(30*time.Second),
		WithName("race-engine-test"),
	)
	if err != nil {
		t.Fatal(err)
	}
	dbURL, err := container.ConnString(ctx)
	if err != nil {
		t.Fatal(err)
	}
	return migrateAndConnect(t, dbURL)
}

// SetupExternalTestDB uses the database referenced by TESTDB_URL.
func SetupExternalTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return migrateAndConnect(t, os.Getenv("TESTDB_URL"))
}

func migrateAndConnect(t *testing.T, dbURL string) *pgxpool.Pool {
	t.Helper()
	if err := migrate.MigrateDB(dbURL); err != nil {
		t.Fatal(err)
	}
	pool, err := database.Connect(context.Background(), dbURL)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func ClearRaceResultTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race_result")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearRaceResultTable(pool)
}
