package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and ensures the schema exists.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return &DB{Client: db}, err
	}
	if err := migrate(ctx, db); err != nil {
		return &DB{Client: db}, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

// migrate creates the submissions table. Records are append-only; there is no
// update or delete path anywhere in the application, so no further versions exist.
func migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS student_emotions (
		id              UUID PRIMARY KEY,
		student_name    TEXT NOT NULL,
		emotion         TEXT NOT NULL DEFAULT '',
		emotion_display TEXT NOT NULL DEFAULT '',
		image_path      TEXT NOT NULL DEFAULT '',
		image_url       TEXT NOT NULL DEFAULT '',
		ts              TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_student_emotions_ts ON student_emotions(ts DESC);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
