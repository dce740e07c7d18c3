package migrate

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/furyracing/race-engine/log"
)

//go:embed migrations
var migrations embed.FS

// MigrateDB applies all pending migrations to the database at dbURI.
func MigrateDB(dbURI string) error {
	m, err := newMigrate(dbURI)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, verr := m.Version()
	if verr == nil {
		log.Info("database migrated",
			log.Uint64("version", uint64(version)),
			log.Bool("dirty", dirty))
	}
	return nil
}

// DowngradeDB reverts the given number of migrations.
func DowngradeDB(dbURI string, steps int) error {
	m, err := newMigrate(dbURI)
	if err != nil {
		return err
	}
	defer m.Close()
	err = m.Steps(-steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func newMigrate(dbURI string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", source, toPgxURL(dbURI))
}

func toPgxURL(dbURI string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURI, scheme) {
			return "pgx5://" + strings.TrimPrefix(dbURI, scheme)
		}
	}
	return dbURI
}
