package app

import (
	"context"
	"log"

	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

// revalidationEntryLimit bounds the full-history read a revalidation pass
// performs. Personal weight logs stay far below this.
const revalidationEntryLimit = 5000

// GoalTracker decides when goals complete and keeps completed goals honest
// after entries are edited or deleted. It holds no state between calls;
// every decision re-reads current data through the repositories.
//
// Nothing the tracker does may fail the entry mutation that triggered it:
// both entry points swallow and log every error. Worst case a goal's status
// is stale until the next entry change re-runs revalidation.
type GoalTracker struct {
	goals   domain.GoalRepository
	entries domain.EntryRepository
}

// NewGoalTracker creates a GoalTracker backed by the given repositories.
func NewGoalTracker(goals domain.GoalRepository, entries domain.EntryRepository) *GoalTracker {
	return &GoalTracker{goals: goals, entries: entries}
}

// OnEntryCreated checks a newly recorded entry against the user's active
// goal and completes the goal when the target is met. The check is not
// retroactive: only the new entry and the single active goal are considered.
// The goal's CompletedAt becomes the entry's RecordedAt, not the wall clock,
// so backdated entries produce an accurate achievement timeline.
func (t *GoalTracker) OnEntryCreated(ctx context.Context, entry domain.Entry, active *domain.Goal) {
	if active == nil {
		return
	}
	met, err := domain.MeetsGoal(entry.Weight, *active)
	if err != nil {
		log.Printf("goal %s: skipping completion check: %v", active.ID, err)
		return
	}
	if !met {
		return
	}
	if err := t.goals.MarkGoalCompleted(ctx, entry.UserID, active.ID, entry.ID, entry.RecordedAt); err != nil {
		log.Printf("goal %s: mark completed: %v", active.ID, err)
	}
}

// OnEntryMutated re-derives the completion state of every completed goal
// credited to the affected entry. modified is the post-edit entry, or nil
// when the entry was deleted. Goals are processed independently; one goal's
// failure never blocks another's.
func (t *GoalTracker) OnEntryMutated(ctx context.Context, userID int64, affectedEntryID uuid.UUID, modified *domain.Entry) {
	completed, err := t.goals.GetCompletedGoals(ctx, userID)
	if err != nil {
		log.Printf("user %d: load completed goals: %v", userID, err)
		return
	}
	for _, g := range completed {
		if g.CompletedEntryID == nil || *g.CompletedEntryID != affectedEntryID {
			continue
		}
		if err := t.revalidate(ctx, g, affectedEntryID, modified); err != nil {
			log.Printf("goal %s: revalidate: %v", g.ID, err)
		}
	}
}

// revalidate recomputes one goal's completion state against the user's
// current entries. An empty eligible set reverts the goal to active; a
// non-empty set credits the earliest qualifying entry, writing only when
// the credited entry or timestamp actually changes.
func (t *GoalTracker) revalidate(ctx context.Context, g domain.Goal, affectedEntryID uuid.UUID, modified *domain.Entry) error {
	if g.StartWeight <= 0 {
		// Mirror the detector's guard: take no action on corrupt goals.
		return domain.ErrInvalidGoalState
	}
	entries, err := t.entries.ListEntries(ctx, g.UserID, revalidationEntryLimit)
	if err != nil {
		return err
	}
	best := earliestQualifying(g, entries, affectedEntryID, modified)
	if best == nil {
		return t.goals.RevertGoalToActive(ctx, g.UserID, g.ID)
	}
	if g.CompletedEntryID != nil && *g.CompletedEntryID == best.ID &&
		g.CompletedAt != nil && g.CompletedAt.Equal(best.RecordedAt) {
		return nil
	}
	return t.goals.UpdateGoalCompletion(ctx, g.UserID, g.ID, best.ID, best.RecordedAt)
}

// earliestQualifying scans entries for the chronologically first one that
// satisfies the goal, substituting the affected entry's modified values in
// place (nil means deleted, contributing nothing). Entries recorded before
// the goal existed never qualify: a goal cannot be completed before it was
// set. Ties on RecordedAt break on entry ID so reruns pick the same entry.
func earliestQualifying(g domain.Goal, entries []domain.Entry, affectedEntryID uuid.UUID, modified *domain.Entry) *domain.Entry {
	var best *domain.Entry
	seenAffected := false

	consider := func(e domain.Entry) {
		if e.RecordedAt.Before(g.CreatedAt) {
			return
		}
		met, err := domain.MeetsGoal(e.Weight, g)
		if err != nil || !met {
			return
		}
		if best == nil ||
			e.RecordedAt.Before(best.RecordedAt) ||
			(e.RecordedAt.Equal(best.RecordedAt) && e.ID.String() < best.ID.String()) {
			c := e
			best = &c
		}
	}

	for _, e := range entries {
		if e.ID == affectedEntryID {
			seenAffected = true
			if modified == nil {
				continue
			}
			e = *modified
		}
		consider(e)
	}
	// The modified entry may fall outside the bounded list read.
	if !seenAffected && modified != nil {
		consider(*modified)
	}
	return best
}
