package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	// GoalStatusActive means the goal is still being pursued.
	GoalStatusActive GoalStatus = "active"
	// GoalStatusCompleted means an entry has satisfied the goal's target.
	GoalStatusCompleted GoalStatus = "completed"
)

var (
	// ErrActiveGoalExists indicates the user already has an active goal.
	// The store enforces at most one active goal per user.
	ErrActiveGoalExists = errors.New("an active goal already exists")
	// ErrGoalNotFound indicates that the requested goal does not exist for the user.
	ErrGoalNotFound = errors.New("goal not found")
)

// Goal is a target weight a user is pursuing. Direction is derived, never
// stored: start above target is a loss goal, start below target is a gain
// goal. Equal values are rejected at creation.
type Goal struct {
	ID               uuid.UUID  `json:"id"`
	UserID           int64      `json:"userId"`
	StartWeight      float64    `json:"startWeight"`
	TargetWeight     float64    `json:"targetWeight"`
	TargetDate       *time.Time `json:"targetDate,omitempty"`
	Status           GoalStatus `json:"status"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CompletedEntryID *uuid.UUID `json:"completedEntryId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// NewGoal creates an active Goal with a fresh ID. StartWeight must be the
// user's most recent recorded weight at creation time; CreatedAt is the lower
// bound for entries eligible to complete the goal.
func NewGoal(userID int64, startWeight, targetWeight float64, targetDate *time.Time) *Goal {
	return &Goal{
		ID:           uuid.New(),
		UserID:       userID,
		StartWeight:  startWeight,
		TargetWeight: targetWeight,
		TargetDate:   targetDate,
		Status:       GoalStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
}

// IsLossGoal reports whether the goal is to lose weight.
func (g Goal) IsLossGoal() bool {
	return g.StartWeight > g.TargetWeight
}

// GoalRepository is the port for goal persistence. Completion writes are
// keyed by goal ID and are last-write-wins; the revalidator relies on that
// to self-correct after races.
type GoalRepository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	DeleteGoal(ctx context.Context, userID int64, id uuid.UUID) (bool, error)
	GetActiveGoal(ctx context.Context, userID int64) (*Goal, error)
	GetCompletedGoals(ctx context.Context, userID int64) ([]Goal, error)
	MarkGoalCompleted(ctx context.Context, userID int64, goalID, entryID uuid.UUID, completedAt time.Time) error
	RevertGoalToActive(ctx context.Context, userID int64, goalID uuid.UUID) error
	UpdateGoalCompletion(ctx context.Context, userID int64, goalID, entryID uuid.UUID, completedAt time.Time) error
}
