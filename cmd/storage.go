package cmd

import (
	"fmt"

	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/database/mariadb"
	"github.com/kozaktomas/frushion/internal/database/postgres"
)

// initStorage registers the analysis store: PostgreSQL when DATABASE_URL is set, MariaDB when
// MARIADB_DSN is set, and a process-local memory store otherwise. The returned func closes the
// connection pool.
func initStorage(cfg *config.Config, quiet bool) (func(), error) {
	say := func(format string, args ...any) {
		if !quiet {
			fmt.Printf(format, args...)
		}
	}

	switch {
	case cfg.Database.URL != "":
		say("Connecting to PostgreSQL database...\n")
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		say("Using PostgreSQL backend\n")
		return func() { pool.Close() }, nil

	case cfg.Database.MariaDBDSN != "":
		say("Connecting to MariaDB database...\n")
		pool, err := mariadb.Initialize(cfg.Database.MariaDBDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		say("Using MariaDB backend\n")
		return func() { pool.Close() }, nil

	default:
		database.UseMemoryBackend()
		say("No DATABASE_URL or MARIADB_DSN set, saved analyses are kept in memory\n")
		return func() {}, nil
	}
}

// requireStorage is initStorage for commands that read saved analyses back.
func requireStorage(cfg *config.Config, quiet bool) (func(), error) {
	if !cfg.HasStorage() {
		return nil, database.ErrNotInitialized
	}
	return initStorage(cfg, quiet)
}
