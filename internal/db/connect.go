package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:edu-gateway.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/edugateway?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS learning_state (
  user_id TEXT NOT NULL,
  tutorial TEXT NOT NULL,
  started_at INTEGER NOT NULL,
  PRIMARY KEY (user_id, tutorial)
);

-- One credit row per task key. The primary key is what makes first-attempt
-- crediting at-most-once under concurrent submitters.
CREATE TABLE IF NOT EXISTS task_outcomes (
  user_id TEXT NOT NULL,
  tutorial TEXT NOT NULL,
  unit_ordinal INTEGER NOT NULL,
  task_ordinal INTEGER NOT NULL,
  task_type TEXT NOT NULL,
  score REAL NOT NULL DEFAULT 0,
  elapsed_sec INTEGER NOT NULL,
  is_retry INTEGER NOT NULL DEFAULT 0,
  recorded_at INTEGER NOT NULL,
  PRIMARY KEY (user_id, tutorial, unit_ordinal, task_ordinal)
);

CREATE TABLE IF NOT EXISTS attempt_log (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  tutorial TEXT NOT NULL,
  unit_ordinal INTEGER NOT NULL,
  task_ordinal INTEGER NOT NULL,
  task_type TEXT NOT NULL,
  score REAL NOT NULL,
  elapsed_sec INTEGER NOT NULL,
  is_retry INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS redeemed_tokens (
  kind TEXT NOT NULL,
  value TEXT NOT NULL,
  expires_at INTEGER NOT NULL,
  PRIMARY KEY (kind, value)
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'learner'
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS learning_state (
  user_id TEXT NOT NULL,
  tutorial TEXT NOT NULL,
  started_at BIGINT NOT NULL,
  PRIMARY KEY (user_id, tutorial)
);

CREATE TABLE IF NOT EXISTS task_outcomes (
  user_id TEXT NOT NULL,
  tutorial TEXT NOT NULL,
  unit_ordinal INTEGER NOT NULL,
  task_ordinal INTEGER NOT NULL,
  task_type TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL DEFAULT 0,
  elapsed_sec BIGINT NOT NULL,
  is_retry BOOLEAN NOT NULL DEFAULT FALSE,
  recorded_at BIGINT NOT NULL,
  PRIMARY KEY (user_id, tutorial, unit_ordinal, task_ordinal)
);

CREATE TABLE IF NOT EXISTS attempt_log (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  tutorial TEXT NOT NULL,
  unit_ordinal INTEGER NOT NULL,
  task_ordinal INTEGER NOT NULL,
  task_type TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  elapsed_sec BIGINT NOT NULL,
  is_retry BOOLEAN NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS redeemed_tokens (
  kind TEXT NOT NULL,
  value TEXT NOT NULL,
  expires_at BIGINT NOT NULL,
  PRIMARY KEY (kind, value)
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'learner'
);
`
