package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"scaletrack/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index that allows one active goal per user.
const uniqueViolation = "23505"

// CreateGoal inserts a new goal. A second active goal for the same user is
// rejected with domain.ErrActiveGoalExists.
func (d *DB) CreateGoal(ctx context.Context, g *domain.Goal) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO goals(id, user_id, start_weight, target_weight, target_date, status, completed_at, completed_entry_id, created_at) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9);",
		g.ID, g.UserID, g.StartWeight, g.TargetWeight, g.TargetDate, g.Status, g.CompletedAt, g.CompletedEntryID, g.CreatedAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrActiveGoalExists
		}
		return err
	}
	d.notifyChange(ctx, g.UserID, "goals", "create", g.ID.String())
	return nil
}

// DeleteGoal removes a goal by ID, scoped to a user.
func (d *DB) DeleteGoal(ctx context.Context, userID int64, id uuid.UUID) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM goals WHERE id=$1 AND user_id=$2;", id, userID)
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
	d.notifyChange(ctx, userID, "goals", "delete", id.String())
	return true, nil
}

const goalColumns = "id, user_id, start_weight, target_weight, target_date, status, completed_at, completed_entry_id, created_at"

func scanGoal(row interface{ Scan(...any) error }) (*domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.StartWeight, &g.TargetWeight, &g.TargetDate,
		&g.Status, &g.CompletedAt, &g.CompletedEntryID, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetActiveGoal returns the user's active goal, or nil.
func (d *DB) GetActiveGoal(ctx context.Context, userID int64) (*domain.Goal, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE user_id=$1 AND status='active';", userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

// GetCompletedGoals returns the user's completed goals, newest completion first.
func (d *DB) GetCompletedGoals(ctx context.Context, userID int64) ([]domain.Goal, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE user_id=$1 AND status='completed' ORDER BY completed_at DESC;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// MarkGoalCompleted transitions a goal to completed, crediting the entry.
// The write is keyed by goal ID and is last-write-wins.
func (d *DB) MarkGoalCompleted(ctx context.Context, userID int64, goalID, entryID uuid.UUID, completedAt time.Time) error {
	return d.writeCompletion(ctx, userID, goalID, &entryID, &completedAt, domain.GoalStatusCompleted)
}

// RevertGoalToActive clears a goal's completion fields.
func (d *DB) RevertGoalToActive(ctx context.Context, userID int64, goalID uuid.UUID) error {
	return d.writeCompletion(ctx, userID, goalID, nil, nil, domain.GoalStatusActive)
}

// UpdateGoalCompletion rewrites the completion details of a completed goal.
func (d *DB) UpdateGoalCompletion(ctx context.Context, userID int64, goalID, entryID uuid.UUID, completedAt time.Time) error {
	return d.writeCompletion(ctx, userID, goalID, &entryID, &completedAt, domain.GoalStatusCompleted)
}

func (d *DB) writeCompletion(ctx context.Context, userID int64, goalID uuid.UUID, entryID *uuid.UUID, completedAt *time.Time, status domain.GoalStatus) error {
	var at *time.Time
	if completedAt != nil {
		utc := completedAt.UTC()
		at = &utc
	}
	res, err := d.sql.ExecContext(ctx,
		"UPDATE goals SET status=$1, completed_at=$2, completed_entry_id=$3 WHERE id=$4 AND user_id=$5;",
		status, at, entryID, goalID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGoalNotFound
	}
	d.notifyChange(ctx, userID, "goals", "update", goalID.String())
	return nil
}
