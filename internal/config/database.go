package config

import (
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// connectBackoff bounds how long startup waits for Postgres to come up
func connectBackoff() backoff.BackOff {
	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = 30 * time.Second
	return boff
}

// SetupDatabase connects to Postgres, retrying while it is unavailable,
// and brings the schema up to date
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := Connect(cfg, connectBackoff())
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Connect opens the connection pool and pings it under the given retry policy
func Connect(cfg *Config, boff backoff.BackOff) (*sqlx.DB, error) {
	var db *sqlx.DB
	connect := func() error {
		var err error
		db, err = sqlx.Connect("postgres", cfg.Database.GetDSN())
		if err != nil {
			return err
		}
		return db.Ping()
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("Database not ready")
	}

	if err := backoff.RetryNotify(connect, boff, notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}
