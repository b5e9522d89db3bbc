// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// changeChannel is the NOTIFY channel carrying per-user change events for
// the display layer.
const changeChannel = "scaletrack_changes"

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

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, weight_unit TEXT NOT NULL DEFAULT 'kg' CHECK(weight_unit IN ('kg','lb')), created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, user_agent TEXT NOT NULL DEFAULT '', ip TEXT NOT NULL DEFAULT '', expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		"CREATE TABLE IF NOT EXISTS entries (id UUID PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, weight DOUBLE PRECISION NOT NULL CHECK(weight > 0), recorded_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_entries_user_recorded_at ON entries(user_id, recorded_at);",
		// completed_entry_id deliberately carries no foreign key: the entry
		// delete commits before revalidation runs and must not be blocked.
		"CREATE TABLE IF NOT EXISTS goals (id UUID PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, start_weight DOUBLE PRECISION NOT NULL CHECK(start_weight > 0), target_weight DOUBLE PRECISION NOT NULL CHECK(target_weight > 0), target_date DATE, status TEXT NOT NULL CHECK(status IN ('active','completed')), completed_at TIMESTAMPTZ, completed_entry_id UUID, created_at TIMESTAMPTZ NOT NULL, CHECK(start_weight <> target_weight));",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_goals_one_active_per_user ON goals(user_id) WHERE status = 'active';",
		"CREATE INDEX IF NOT EXISTS idx_goals_user_completed_entry ON goals(user_id, completed_entry_id);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// notifyChange publishes a change event on the NOTIFY channel. The feed is
// best effort; a failed notify never fails the write that triggered it.
func (d *DB) notifyChange(ctx context.Context, userID int64, table, op, id string) {
	payload, err := json.Marshal(ChangeEvent{UserID: userID, Table: table, Op: op, ID: id})
	if err != nil {
		log.Printf("notify %s/%s: marshal: %v", table, op, err)
		return
	}
	if _, err := d.sql.ExecContext(ctx, "SELECT pg_notify($1, $2);", changeChannel, string(payload)); err != nil {
		log.Printf("notify %s/%s: %v", table, op, err)
	}
}
