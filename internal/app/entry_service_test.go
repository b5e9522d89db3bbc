package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"scaletrack/internal/app"
	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

func newEntryService(entries *mockEntryRepo, goals *mockGoalRepo) *app.EntryService {
	return app.NewEntryService(entries, goals, app.NewGoalTracker(goals, entries))
}

func TestRecord_Validation(t *testing.T) {
	svc := newEntryService(&mockEntryRepo{}, &mockGoalRepo{})
	for _, weight := range []float64{0, -5} {
		if _, err := svc.Record(context.Background(), 1, weight, time.Now()); err == nil {
			t.Errorf("weight %v: expected validation error", weight)
		}
	}
}

func TestRecord_Success(t *testing.T) {
	var stored *domain.Entry
	entries := &mockEntryRepo{
		createFn: func(_ context.Context, e *domain.Entry) error {
			stored = e
			return nil
		},
	}
	svc := newEntryService(entries, &mockGoalRepo{})

	recordedAt := day(1)
	got, err := svc.Record(context.Background(), 1, 82.5, recordedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || got.ID != stored.ID {
		t.Fatal("entry not persisted")
	}
	if !got.RecordedAt.Equal(recordedAt) {
		t.Errorf("recordedAt = %v; want %v", got.RecordedAt, recordedAt)
	}
	if got.UserID != 1 || got.Weight != 82.5 {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestRecord_TriggersCompletionCheck(t *testing.T) {
	goalID := uuid.New()
	active := &domain.Goal{
		ID: goalID, UserID: 1, StartWeight: 200, TargetWeight: 180,
		Status: domain.GoalStatusActive, CreatedAt: day(0),
	}

	var completed bool
	goals := &mockGoalRepo{
		activeFn: func(_ context.Context, _ int64) (*domain.Goal, error) { return active, nil },
		markCompletedFn: func(_ context.Context, _ int64, gID, _ uuid.UUID, _ time.Time) error {
			completed = gID == goalID
			return nil
		},
	}
	svc := newEntryService(&mockEntryRepo{}, goals)

	if _, err := svc.Record(context.Background(), 1, 179, day(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Fatal("expected active goal to complete")
	}
}

func TestRecord_GoalLookupFailureDoesNotFailEntry(t *testing.T) {
	goals := &mockGoalRepo{
		activeFn: func(_ context.Context, _ int64) (*domain.Goal, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newEntryService(&mockEntryRepo{}, goals)

	entry, err := svc.Record(context.Background(), 1, 80, day(0))
	if err != nil {
		t.Fatalf("goal bookkeeping failure must not fail entry creation: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	entries := &mockEntryRepo{
		updateFn: func(_ context.Context, _ int64, _ uuid.UUID, _ float64, _ time.Time) (*domain.Entry, error) {
			return nil, nil
		},
	}
	svc := newEntryService(entries, &mockGoalRepo{})
	_, err := svc.Update(context.Background(), 1, uuid.New(), 80, day(0))
	if !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestUpdate_TriggersRevalidation(t *testing.T) {
	id := uuid.New()
	updated := entryAt(id, 185, day(3))
	entries := &mockEntryRepo{
		updateFn: func(_ context.Context, _ int64, _ uuid.UUID, _ float64, _ time.Time) (*domain.Entry, error) {
			return &updated, nil
		},
	}

	var revalidated bool
	goals := &mockGoalRepo{
		completedFn: func(_ context.Context, _ int64) ([]domain.Goal, error) {
			revalidated = true
			return nil, nil
		},
	}
	svc := newEntryService(entries, goals)

	if _, err := svc.Update(context.Background(), 1, id, 185, day(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !revalidated {
		t.Fatal("expected revalidation after edit")
	}
}

func TestDelete_TriggersRevalidation(t *testing.T) {
	id := uuid.New()
	entries := &mockEntryRepo{
		deleteFn: func(_ context.Context, _ int64, _ uuid.UUID) (bool, error) { return true, nil },
	}

	var revalidated bool
	goals := &mockGoalRepo{
		completedFn: func(_ context.Context, _ int64) ([]domain.Goal, error) {
			revalidated = true
			return nil, nil
		},
	}
	svc := newEntryService(entries, goals)

	if err := svc.Delete(context.Background(), 1, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !revalidated {
		t.Fatal("expected revalidation after delete")
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := newEntryService(&mockEntryRepo{}, &mockGoalRepo{})
	if err := svc.Delete(context.Background(), 1, uuid.New()); !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestDelete_RevalidationFailureDoesNotFailDelete(t *testing.T) {
	entries := &mockEntryRepo{
		deleteFn: func(_ context.Context, _ int64, _ uuid.UUID) (bool, error) { return true, nil },
	}
	goals := &mockGoalRepo{
		completedFn: func(_ context.Context, _ int64) ([]domain.Goal, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newEntryService(entries, goals)
	if err := svc.Delete(context.Background(), 1, uuid.New()); err != nil {
		t.Fatalf("revalidation failure must not fail the delete: %v", err)
	}
}
