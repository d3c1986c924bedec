package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Локальное состояние маленькое, большой пул не нужен.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS vote_markers (
	tournament_id BIGINT      NOT NULL,
	voter_hash    CHAR(64)    NOT NULL,
	voted_for_id  BIGINT      NOT NULL,
	cast_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT vote_markers_pkey PRIMARY KEY (tournament_id, voter_hash)
);

CREATE TABLE IF NOT EXISTS completion_summaries (
	tournament_id BIGINT      PRIMARY KEY,
	summary       TEXT        NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the local state tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
