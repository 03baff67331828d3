// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_agent TEXT NOT NULL DEFAULT '',
		ip TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`,
	`CREATE TABLE IF NOT EXISTS animals (
		id UUID PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		tag TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		breed TEXT NOT NULL DEFAULT '',
		date_of_birth DATE,
		sex TEXT NOT NULL DEFAULT '',
		species TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		photo_key TEXT NOT NULL DEFAULT '',
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (owner_id, tag)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_animals_public_tag ON animals(tag) WHERE is_public;`,
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		serial TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL CHECK(status IN ('pending','active','inactive')),
		created_at TIMESTAMPTZ NOT NULL,
		approved_at TIMESTAMPTZ
	);`,
	`CREATE TABLE IF NOT EXISTS weight_readings (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		device_id UUID REFERENCES devices(id) ON DELETE SET NULL,
		animal_id UUID NOT NULL REFERENCES animals(id) ON DELETE CASCADE,
		weight DOUBLE PRECISION,
		recorded_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_weight_readings_animal ON weight_readings(animal_id, recorded_at);`,
	`CREATE INDEX IF NOT EXISTS idx_weight_readings_owner ON weight_readings(owner_id, recorded_at);`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
