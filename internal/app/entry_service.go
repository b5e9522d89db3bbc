package app

import (
	"context"
	"errors"
	"log"
	"time"

	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

// EntryService encapsulates weight-entry use cases. Every mutation that can
// affect goal completion hands off to the GoalTracker after the entry write
// succeeds; tracker failures never surface to the caller.
type EntryService struct {
	repo    domain.EntryRepository
	goals   domain.GoalRepository
	tracker *GoalTracker
}

// NewEntryService creates an EntryService backed by the given repositories.
func NewEntryService(repo domain.EntryRepository, goals domain.GoalRepository, tracker *GoalTracker) *EntryService {
	return &EntryService{repo: repo, goals: goals, tracker: tracker}
}

// Record validates and stores a new weight measurement, then checks it
// against the user's active goal.
func (s *EntryService) Record(ctx context.Context, userID int64, weight float64, recordedAt time.Time) (*domain.Entry, error) {
	if weight <= 0 {
		return nil, errors.New("weight must be > 0")
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	entry := domain.NewEntry(userID, weight, recordedAt)
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	active, err := s.goals.GetActiveGoal(ctx, userID)
	if err != nil {
		log.Printf("entry %s: load active goal: %v", entry.ID, err)
		return entry, nil
	}
	s.tracker.OnEntryCreated(ctx, *entry, active)
	return entry, nil
}

// Update edits an existing entry's weight and recorded time, then
// revalidates any goal the entry had completed.
func (s *EntryService) Update(ctx context.Context, userID int64, id uuid.UUID, weight float64, recordedAt time.Time) (*domain.Entry, error) {
	if weight <= 0 {
		return nil, errors.New("weight must be > 0")
	}
	if recordedAt.IsZero() {
		return nil, errors.New("recordedAt is required")
	}
	updated, err := s.repo.UpdateEntry(ctx, userID, id, weight, recordedAt)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrEntryNotFound
	}
	s.tracker.OnEntryMutated(ctx, userID, id, updated)
	return updated, nil
}

// Delete removes an entry, then revalidates any goal it had completed.
func (s *EntryService) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	deleted, err := s.repo.DeleteEntry(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrEntryNotFound
	}
	s.tracker.OnEntryMutated(ctx, userID, id, nil)
	return nil
}

// List returns the most recent entries up to limit, newest first.
func (s *EntryService) List(ctx context.Context, userID int64, limit int) ([]domain.Entry, error) {
	return s.repo.ListEntries(ctx, userID, limit)
}
