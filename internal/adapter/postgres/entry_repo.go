package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

// CreateEntry inserts a new entry.
func (d *DB) CreateEntry(ctx context.Context, e *domain.Entry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO entries(id, user_id, weight, recorded_at, created_at) VALUES($1, $2, $3, $4, $5);",
		e.ID, e.UserID, e.Weight, e.RecordedAt.UTC(), e.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	d.notifyChange(ctx, e.UserID, "entries", "create", e.ID.String())
	return nil
}

// UpdateEntry rewrites an entry's weight and recorded time, scoped to a user.
// Returns nil when no row matches.
func (d *DB) UpdateEntry(ctx context.Context, userID int64, id uuid.UUID, weight float64, recordedAt time.Time) (*domain.Entry, error) {
	row := d.sql.QueryRowContext(ctx,
		"UPDATE entries SET weight=$1, recorded_at=$2 WHERE id=$3 AND user_id=$4 RETURNING id, user_id, weight, recorded_at, created_at;",
		weight, recordedAt.UTC(), id, userID,
	)
	var e domain.Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.Weight, &e.RecordedAt, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	d.notifyChange(ctx, userID, "entries", "update", id.String())
	return &e, nil
}

// DeleteEntry removes an entry by ID, scoped to a user.
func (d *DB) DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM entries WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	d.notifyChange(ctx, userID, "entries", "delete", id.String())
	return true, nil
}

// GetEntry retrieves an entry by ID, scoped to a user.
func (d *DB) GetEntry(ctx context.Context, userID int64, id uuid.UUID) (*domain.Entry, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT id, user_id, weight, recorded_at, created_at FROM entries WHERE id=$1 AND user_id=$2;",
		id, userID,
	)
	var e domain.Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.Weight, &e.RecordedAt, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ListEntries returns the user's entries, newest recorded first, up to limit.
func (d *DB) ListEntries(ctx context.Context, userID int64, limit int) ([]domain.Entry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, user_id, weight, recorded_at, created_at FROM entries WHERE user_id=$1 ORDER BY recorded_at DESC LIMIT $2;",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Entry, 0, limit)
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Weight, &e.RecordedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LatestEntry returns the user's most recently recorded entry.
func (d *DB) LatestEntry(ctx context.Context, userID int64) (*domain.Entry, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT id, user_id, weight, recorded_at, created_at FROM entries WHERE user_id=$1 ORDER BY recorded_at DESC LIMIT 1;",
		userID,
	)
	var e domain.Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.Weight, &e.RecordedAt, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// LatestEntryForLocalDay returns the most recent entry for a local calendar day.
func (d *DB) LatestEntryForLocalDay(ctx context.Context, userID int64, localDay string) (*domain.Entry, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	row := d.sql.QueryRowContext(ctx,
		"SELECT id, user_id, weight, recorded_at, created_at FROM entries WHERE user_id=$1 AND recorded_at >= $2 AND recorded_at < $3 ORDER BY recorded_at DESC LIMIT 1;",
		userID, dayStart.UTC(), dayEnd.UTC(),
	)
	var e domain.Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.Weight, &e.RecordedAt, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
