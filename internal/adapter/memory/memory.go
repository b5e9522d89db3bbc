// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	entries  []domain.Entry
	goals    []domain.Goal
	users    []*domain.User
	sessions map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.EntryRepository = (*DB)(nil)
var _ domain.GoalRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- EntryRepository ---

// CreateEntry stores a new entry.
func (db *DB) CreateEntry(ctx context.Context, e *domain.Entry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.entries = append(db.entries, *e)
	return nil
}

// UpdateEntry replaces an entry's weight and recorded time, returning the
// updated entry or nil when no row matches.
func (db *DB) UpdateEntry(ctx context.Context, userID int64, id uuid.UUID, weight float64, recordedAt time.Time) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.entries {
		e := &db.entries[i]
		if e.ID == id && e.UserID == userID {
			e.Weight = weight
			e.RecordedAt = recordedAt.UTC()
			ret := *e
			return &ret, nil
		}
	}
	return nil, nil
}

// DeleteEntry removes an entry by ID, scoped to a user.
func (db *DB) DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, e := range db.entries {
		if e.ID == id && e.UserID == userID {
			db.entries = append(db.entries[:i], db.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// GetEntry retrieves an entry by ID, scoped to a user.
func (db *DB) GetEntry(ctx context.Context, userID int64, id uuid.UUID) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, e := range db.entries {
		if e.ID == id && e.UserID == userID {
			ret := e
			return &ret, nil
		}
	}
	return nil, nil
}

// ListEntries lists a user's entries, newest recorded first.
func (db *DB) ListEntries(ctx context.Context, userID int64, limit int) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Entry, 0, limit)
	for _, e := range db.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// LatestEntry returns the user's most recently recorded entry.
func (db *DB) LatestEntry(ctx context.Context, userID int64) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var latest *domain.Entry
	for i := range db.entries {
		e := &db.entries[i]
		if e.UserID != userID {
			continue
		}
		if latest == nil || e.RecordedAt.After(latest.RecordedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	ret := *latest
	return &ret, nil
}

// LatestEntryForLocalDay returns the latest entry recorded on the given day.
func (db *DB) LatestEntryForLocalDay(ctx context.Context, userID int64, localDay string) (*domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	var latest *domain.Entry
	for i := range db.entries {
		e := &db.entries[i]
		if e.UserID != userID {
			continue
		}
		// Compare in UTC, matching how Postgres stores and compares.
		if !e.RecordedAt.Before(dayStart.UTC()) && e.RecordedAt.Before(dayEnd.UTC()) {
			if latest == nil || e.RecordedAt.After(latest.RecordedAt) {
				latest = e
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	ret := *latest
	return &ret, nil
}

// --- GoalRepository ---

// CreateGoal stores a new goal, enforcing one active goal per user.
func (db *DB) CreateGoal(ctx context.Context, g *domain.Goal) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if g.Status == domain.GoalStatusActive {
		for _, existing := range db.goals {
			if existing.UserID == g.UserID && existing.Status == domain.GoalStatusActive {
				return domain.ErrActiveGoalExists
			}
		}
	}
	db.goals = append(db.goals, *g)
	return nil
}

// DeleteGoal removes a goal by ID, scoped to a user.
func (db *DB) DeleteGoal(ctx context.Context, userID int64, id uuid.UUID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, g := range db.goals {
		if g.ID == id && g.UserID == userID {
			db.goals = append(db.goals[:i], db.goals[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// GetActiveGoal returns the user's active goal, or nil.
func (db *DB) GetActiveGoal(ctx context.Context, userID int64) (*domain.Goal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, g := range db.goals {
		if g.UserID == userID && g.Status == domain.GoalStatusActive {
			ret := g
			return &ret, nil
		}
	}
	return nil, nil
}

// GetCompletedGoals returns the user's completed goals, newest completion first.
func (db *DB) GetCompletedGoals(ctx context.Context, userID int64) ([]domain.Goal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.Goal
	for _, g := range db.goals {
		if g.UserID == userID && g.Status == domain.GoalStatusCompleted {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		var ti, tj time.Time
		if result[i].CompletedAt != nil {
			ti = *result[i].CompletedAt
		}
		if result[j].CompletedAt != nil {
			tj = *result[j].CompletedAt
		}
		return ti.After(tj)
	})
	return result, nil
}

// MarkGoalCompleted transitions a goal to completed, crediting the entry.
func (db *DB) MarkGoalCompleted(ctx context.Context, userID int64, goalID, entryID uuid.UUID, completedAt time.Time) error {
	return db.setCompletion(userID, goalID, &entryID, &completedAt, domain.GoalStatusCompleted)
}

// RevertGoalToActive clears a goal's completion fields.
func (db *DB) RevertGoalToActive(ctx context.Context, userID int64, goalID uuid.UUID) error {
	return db.setCompletion(userID, goalID, nil, nil, domain.GoalStatusActive)
}

// UpdateGoalCompletion rewrites the completion details of a completed goal.
func (db *DB) UpdateGoalCompletion(ctx context.Context, userID int64, goalID, entryID uuid.UUID, completedAt time.Time) error {
	return db.setCompletion(userID, goalID, &entryID, &completedAt, domain.GoalStatusCompleted)
}

func (db *DB) setCompletion(userID int64, goalID uuid.UUID, entryID *uuid.UUID, completedAt *time.Time, status domain.GoalStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.goals {
		g := &db.goals[i]
		if g.ID == goalID && g.UserID == userID {
			g.Status = status
			g.CompletedEntryID = entryID
			if completedAt != nil {
				at := completedAt.UTC()
				g.CompletedAt = &at
			} else {
				g.CompletedAt = nil
			}
			return nil
		}
	}
	return domain.ErrGoalNotFound
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		WeightUnit:   "kg",
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// SetWeightUnit updates a user's preferred display unit.
func (db *DB) SetWeightUnit(ctx context.Context, id int64, unit string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			u.WeightUnit = unit
			return nil
		}
	}
	return errors.New("user not found")
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
