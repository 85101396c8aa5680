// Package arena is the collaborator layer around the fight engine: roster
// registration, match orchestration, fight history, and career records.
package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/fightbook/internal/game/fighter"
	"github.com/cory-johannsen/fightbook/internal/ratelimit"
)

// ErrFighterNotFound is returned when a fighter lookup yields no results.
var ErrFighterNotFound = errors.New("fighter not found")

// ErrFighterNameTaken is returned when a name is already registered, compared case-insensitively.
var ErrFighterNameTaken = errors.New("fighter name already taken")

// ErrRateLimited is returned when a caller exceeds a request gate.
var ErrRateLimited = errors.New("rate limited")

// ErrUnauthorized is returned when an admin operation is attempted without a valid token.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidRequest is returned when a required argument is missing.
var ErrInvalidRequest = errors.New("invalid request")

// Fighter is a registered roster entry.
type Fighter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Stats holds the attributes exactly as registered, camelCase keys.
	Stats     map[string]any `json:"stats"`
	Metadata  map[string]any `json:"metadata"`
	Record    fighter.Record `json:"record"`
	CreatedAt time.Time      `json:"created_at"`
}

// WinCount mirrors Record.Wins for roster ordering.
func (f Fighter) WinCount() int { return f.Record.Wins }

// Profile converts the stored attributes into an engine profile.
func (f Fighter) Profile() fighter.Profile {
	return fighter.FromRaw(f.ID, f.Name, f.Stats)
}

// Fight is a persisted match.
type Fight struct {
	ID         string    `json:"id"`
	Fighter1ID string    `json:"fighter1_id"`
	Fighter2ID string    `json:"fighter2_id"`
	Fighter1   string    `json:"fighter1"`
	Fighter2   string    `json:"fighter2"`
	WinnerID   string    `json:"winner_id,omitempty"`
	Winner     string    `json:"winner"`
	Method     string    `json:"method"`
	Round      int       `json:"round"`
	Log        []string  `json:"fight_log"`
	Requester  string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Standing is one leaderboard row.
type Standing struct {
	Rank        int    `json:"rank"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	WinCount    int    `json:"win_count"`
	TotalFights int    `json:"total_fights"`
	Losses      int    `json:"losses"`
	Ranking     int    `json:"ranking"`
}

// FighterStore persists the roster.
type FighterStore interface {
	// Create inserts a fighter with a fresh career record.
	// Returns ErrFighterNameTaken when the name is already registered in any case.
	Create(ctx context.Context, name string, stats, metadata map[string]any) (Fighter, error)
	// Get returns the fighter with id or ErrFighterNotFound.
	Get(ctx context.Context, id string) (Fighter, error)
	// FindByName returns the fighter whose name matches case-insensitively, or ErrFighterNotFound.
	FindByName(ctx context.Context, name string) (Fighter, error)
	// List returns up to limit fighters, most wins first, oldest first among equals.
	List(ctx context.Context, limit int) ([]Fighter, error)
	// Delete removes the fighter with id or returns ErrFighterNotFound.
	Delete(ctx context.Context, id string) error
	// Clear removes every fighter and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
	// ApplyResult folds one match outcome into the fighter's career record atomically.
	ApplyResult(ctx context.Context, id string, outcome fighter.Outcome, method string) (fighter.Record, error)
}

// FightStore persists match history.
type FightStore interface {
	// Insert stores f, assigning ID and CreatedAt when they are empty.
	Insert(ctx context.Context, f Fight) (Fight, error)
	// Recent returns up to limit fights, newest first.
	Recent(ctx context.Context, limit int) ([]Fight, error)
	// CountByRequesterSince counts fights started by requester at or after since.
	CountByRequesterSince(ctx context.Context, requester string, since time.Time) (int, error)
}

// Limiter gates requests per caller key.
type Limiter interface {
	Allow(key string) ratelimit.Decision
}

// Recorder receives arena metrics. *observability.Metrics implements it.
type Recorder interface {
	RecordFight(method string, round, exchanges int)
	RecordRegistration()
	RecordRateLimited(gate string)
	SetRosterSize(n int)
	RecordStoreError(op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordFight(string, int, int) {}
func (nopRecorder) RecordRegistration()          {}
func (nopRecorder) RecordRateLimited(string)     {}
func (nopRecorder) SetRosterSize(int)            {}
func (nopRecorder) RecordStoreError(string)      {}

// RateLimitError reports a rejected request and when the caller may retry.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return e.Message }

// Unwrap returns ErrRateLimited.
func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NameTakenError names the registration that collided with an existing fighter.
type NameTakenError struct {
	Name string
}

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("Fighter name %q is already taken", e.Name)
}

// Unwrap returns ErrFighterNameTaken.
func (e *NameTakenError) Unwrap() error { return ErrFighterNameTaken }

// SlotError reports which side of a match request could not be resolved.
type SlotError struct {
	Slot int
	Err  error
}

func (e *SlotError) Error() string {
	if errors.Is(e.Err, ErrFighterNotFound) {
		return fmt.Sprintf("Fighter %d not found", e.Slot)
	}
	return fmt.Sprintf("fighter %d: %v", e.Slot, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }
