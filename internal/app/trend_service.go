package app

import (
	"context"
	"errors"
	"time"

	"scaletrack/internal/domain"
)

// TrendService encapsulates weight-trend retrieval use cases.
type TrendService struct {
	entries domain.EntryRepository
	goals   domain.GoalRepository
}

// NewTrendService creates a TrendService backed by the given repositories.
func NewTrendService(entries domain.EntryRepository, goals domain.GoalRepository) *TrendService {
	return &TrendService{entries: entries, goals: goals}
}

// TrendPoint is a single data point returned by GetDaily.
type TrendPoint struct {
	Day    string       `json:"day"`
	Weight *WeightPoint `json:"weight"`
}

// WeightPoint is the optional weight value within a TrendPoint.
type WeightPoint struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Trend is the daily weight series plus the active goal's target line.
type Trend struct {
	Points []TrendPoint `json:"points"`
	Target *WeightPoint `json:"target"`
}

// GetDaily returns per-day trend data for the last days days, with weights
// converted to the requested unit. Entries are stored in the unit the user's
// profile implies; conversion here is display-only.
func (s *TrendService) GetDaily(ctx context.Context, userID int64, days int, fromUnit, unit string) (*Trend, error) {
	if unit != "kg" && unit != "lb" {
		return nil, errors.New("unit must be \"kg\" or \"lb\"")
	}
	if days > 366 {
		days = 366
	}

	today := time.Now().In(time.Local)
	points := make([]TrendPoint, 0, days)

	for i := days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		dayStr := d.Format("2006-01-02")

		entry, err := s.entries.LatestEntryForLocalDay(ctx, userID, dayStr)
		if err != nil {
			return nil, err
		}

		var wp *WeightPoint
		if entry != nil {
			wp = &WeightPoint{Value: domain.ConvertWeight(entry.Weight, fromUnit, unit), Unit: unit}
		}
		points = append(points, TrendPoint{Day: dayStr, Weight: wp})
	}

	trend := &Trend{Points: points}
	active, err := s.goals.GetActiveGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		trend.Target = &WeightPoint{Value: domain.ConvertWeight(active.TargetWeight, fromUnit, unit), Unit: unit}
	}
	return trend, nil
}
