package sqlite

import (
	"errors"

	"github.com/aussiebroadwan/flagtree/internal/flags/store/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations applies any pending migrations from the files embedded in
// the binary.
//
// Migrations run directly on the store's handle rather than inside a
// transaction. golang-migrate tracks the applied version in its own table, so
// a failed step leaves the schema marked dirty for an operator to inspect.
func (s *Store) ApplyMigrations() error {
	// 1. Create the SQLite migration driver over the store's handle
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return err
	}

	// 2. Create the iofs (embedded filesystem) source driver
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	// 3. Create the migrate instance to run migrations
	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	// 4. Apply all up migrations; an up-to-date schema is not an error
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
