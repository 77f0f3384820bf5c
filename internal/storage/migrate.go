package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the schema of an open handle up to date. The
// steps are embedded, versioned and run in order; an already-current
// schema is a no-op, so calling this on every startup is safe. Any
// failing step aborts initialization.
//
// Steps run unwrapped (NoTxWrap): 0002 must toggle PRAGMA foreign_keys
// around its table rebuild, and that pragma is silently ignored inside
// a transaction. Each step file opens its own BEGIN/COMMIT instead.
func RunMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{NoTxWrap: true})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// m.Close is deliberately not called: it would close the shared
	// *sql.DB the repository keeps using.

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
