package app

import (
	"context"
	"errors"
	"log"
	"time"

	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrNoEntries indicates a goal was requested before any weight was recorded.
	ErrNoEntries = errors.New("record a weight entry before setting a goal")
	// ErrTargetEqualsStart indicates the requested target matches the current weight.
	ErrTargetEqualsStart = errors.New("target weight must differ from current weight")
)

// GoalService encapsulates goal management use cases.
type GoalService struct {
	repo    domain.GoalRepository
	entries domain.EntryRepository
}

// NewGoalService creates a GoalService backed by the given repositories.
func NewGoalService(repo domain.GoalRepository, entries domain.EntryRepository) *GoalService {
	return &GoalService{repo: repo, entries: entries}
}

// Create sets a new active goal. The start weight is captured from the
// user's most recent entry, so a goal cannot exist without a prior
// measurement. The store rejects a second active goal per user.
func (s *GoalService) Create(ctx context.Context, userID int64, targetWeight float64, targetDate *time.Time) (*domain.Goal, error) {
	if targetWeight <= 0 {
		return nil, errors.New("targetWeight must be > 0")
	}
	latest, err := s.entries.LatestEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNoEntries
	}
	if latest.Weight == targetWeight {
		return nil, ErrTargetEqualsStart
	}
	goal := domain.NewGoal(userID, latest.Weight, targetWeight, targetDate)
	if err := s.repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal outright, active or completed.
func (s *GoalService) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	deleted, err := s.repo.DeleteGoal(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrGoalNotFound
	}
	return nil
}

// Active returns the user's current active goal, or nil if none exists.
func (s *GoalService) Active(ctx context.Context, userID int64) (*domain.Goal, error) {
	return s.repo.GetActiveGoal(ctx, userID)
}

// Achievement is a completed goal joined with its completing entry for
// display.
type Achievement struct {
	Goal            domain.Goal `json:"goal"`
	CompletedWeight *float64    `json:"completedWeight,omitempty"`
	ExceededBy      float64     `json:"exceededBy"`
	OverAchieved    bool        `json:"overAchieved"`
}

// Achievements returns the user's completed goals, newest completion first
// as returned by the store, each annotated with the completing entry's
// weight and how far it passed the target.
func (s *GoalService) Achievements(ctx context.Context, userID int64) ([]Achievement, error) {
	goals, err := s.repo.GetCompletedGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Achievement, 0, len(goals))
	for _, g := range goals {
		a := Achievement{Goal: g}
		if g.CompletedEntryID != nil {
			entry, err := s.entries.GetEntry(ctx, userID, *g.CompletedEntryID)
			if err != nil {
				// Display joins are best effort; the goal itself still shows.
				log.Printf("goal %s: load completing entry: %v", g.ID, err)
			} else if entry != nil {
				w := entry.Weight
				a.CompletedWeight = &w
				a.ExceededBy, a.OverAchieved = domain.Overachievement(entry.Weight, g)
			}
		}
		out = append(out, a)
	}
	return out, nil
}
