package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEntryNotFound indicates that the requested entry does not exist for the user.
var ErrEntryNotFound = errors.New("entry not found")

// Entry represents a single weight measurement.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	UserID     int64     `json:"userId"`
	Weight     float64   `json:"weight"`
	RecordedAt time.Time `json:"recordedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewEntry creates an Entry with a fresh ID. RecordedAt is the user-supplied
// measurement time and may be backdated; CreatedAt is the row creation time.
func NewEntry(userID int64, weight float64, recordedAt time.Time) *Entry {
	return &Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Weight:     weight,
		RecordedAt: recordedAt.UTC(),
		CreatedAt:  time.Now().UTC(),
	}
}

// EntryRepository is the port for entry persistence.
type EntryRepository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	UpdateEntry(ctx context.Context, userID int64, id uuid.UUID, weight float64, recordedAt time.Time) (*Entry, error)
	DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) (bool, error)
	GetEntry(ctx context.Context, userID int64, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, userID int64, limit int) ([]Entry, error)
	LatestEntry(ctx context.Context, userID int64) (*Entry, error)
	LatestEntryForLocalDay(ctx context.Context, userID int64, localDay string) (*Entry, error)
}
