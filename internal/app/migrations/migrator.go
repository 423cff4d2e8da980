package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations
type Migrator struct {
	databaseURL string
	logger      zerolog.Logger
}

// NewMigrator creates a migrator for the database at databaseURL
func NewMigrator(databaseURL string, logger zerolog.Logger) *Migrator {
	return &Migrator{databaseURL: databaseURL, logger: logger}
}

func (m *Migrator) open() (*migrate.Migrate, *sql.DB, error) {
	dbConn, err := sql.Open("postgres", m.databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	driver, err := postgres.WithInstance(dbConn, &postgres.Config{})
	if err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return instance, dbConn, nil
}

// MigrateUp applies every pending migration. A dirty version is forced clean first.
func (m *Migrator) MigrateUp() error {
	instance, dbConn, err := m.open()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	version, dirty, err := instance.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		m.logger.Warn().Uint("version", version).Msg("Database is in a dirty state, forcing clean state")
		if err := instance.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force migration: %w", err)
		}
	}

	if err := instance.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	m.logger.Info().Msg("Database migrations completed")
	return nil
}

// MigrateDown rolls back the given number of migrations
func (m *Migrator) MigrateDown(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}

	instance, dbConn, err := m.open()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := instance.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}

	m.logger.Info().Int("steps", steps).Msg("Database migrations rolled back")
	return nil
}
