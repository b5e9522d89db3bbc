package app_test

import (
	"context"
	"testing"

	"scaletrack/internal/app"
	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

func TestGetDaily_BadUnit(t *testing.T) {
	svc := app.NewTrendService(&mockEntryRepo{}, &mockGoalRepo{})
	_, err := svc.GetDaily(context.Background(), 1, 7, "kg", "stones")
	if err == nil {
		t.Fatal("expected error for bad unit")
	}
}

func TestGetDaily_Success(t *testing.T) {
	entries := &mockEntryRepo{
		latestDayFn: func(_ context.Context, _ int64, day string) (*domain.Entry, error) {
			e := entryAt(uuid.New(), 80, baseTime)
			return &e, nil
		},
	}
	svc := app.NewTrendService(entries, &mockGoalRepo{})

	trend, err := svc.GetDaily(context.Background(), 1, 3, "kg", "kg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trend.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(trend.Points))
	}
	for _, p := range trend.Points {
		if p.Weight == nil || p.Weight.Value != 80 {
			t.Errorf("expected weight 80, got %v", p.Weight)
		}
	}
	if trend.Target != nil {
		t.Errorf("expected no target without an active goal, got %v", trend.Target)
	}
}

func TestGetDaily_ConvertUnit(t *testing.T) {
	entries := &mockEntryRepo{
		latestDayFn: func(_ context.Context, _ int64, day string) (*domain.Entry, error) {
			e := entryAt(uuid.New(), 100, baseTime)
			return &e, nil
		},
	}
	svc := app.NewTrendService(entries, &mockGoalRepo{})

	trend, err := svc.GetDaily(context.Background(), 1, 1, "kg", "lb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trend.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(trend.Points))
	}
	w := trend.Points[0].Weight
	if w == nil || w.Value < 220 || w.Value > 221 {
		t.Errorf("expected ~220.46 lb, got %v", w)
	}
}

func TestGetDaily_IncludesTargetLine(t *testing.T) {
	active := &domain.Goal{
		ID: uuid.New(), UserID: 1, StartWeight: 200, TargetWeight: 180,
		Status: domain.GoalStatusActive, CreatedAt: day(0),
	}
	goals := &mockGoalRepo{
		activeFn: func(_ context.Context, _ int64) (*domain.Goal, error) { return active, nil },
	}
	svc := app.NewTrendService(&mockEntryRepo{}, goals)

	trend, err := svc.GetDaily(context.Background(), 1, 1, "kg", "kg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.Target == nil || trend.Target.Value != 180 {
		t.Fatalf("expected target line at 180, got %v", trend.Target)
	}
}

func TestGetDaily_ClampsTo366(t *testing.T) {
	svc := app.NewTrendService(&mockEntryRepo{}, &mockGoalRepo{})
	trend, err := svc.GetDaily(context.Background(), 1, 1000, "kg", "kg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trend.Points) != 366 {
		t.Fatalf("expected clamp to 366 points, got %d", len(trend.Points))
	}
}
