// Package memory provides in-process arena stores for development and tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

// FighterStore is an arena.FighterStore held in memory. It is safe for concurrent use.
type FighterStore struct {
	mu       sync.RWMutex
	fighters map[string]arena.Fighter
	now      func() time.Time
}

// NewFighterStore returns an empty FighterStore.
func NewFighterStore() *FighterStore {
	return &FighterStore{fighters: make(map[string]arena.Fighter), now: time.Now}
}

// Create inserts a fighter, rejecting names already registered in any case.
func (s *FighterStore) Create(_ context.Context, name string, stats, metadata map[string]any) (arena.Fighter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName(name); ok {
		return arena.Fighter{}, arena.ErrFighterNameTaken
	}
	f := arena.Fighter{
		ID:        uuid.NewString(),
		Name:      name,
		Stats:     maps.Clone(stats),
		Metadata:  maps.Clone(metadata),
		Record:    fighter.NewRecord(),
		CreatedAt: s.now(),
	}
	s.fighters[f.ID] = f
	return clone(f), nil
}

// Get returns the fighter with id or arena.ErrFighterNotFound.
func (s *FighterStore) Get(_ context.Context, id string) (arena.Fighter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fighters[id]
	if !ok {
		return arena.Fighter{}, arena.ErrFighterNotFound
	}
	return clone(f), nil
}

// FindByName returns the fighter whose name matches case-insensitively.
func (s *FighterStore) FindByName(_ context.Context, name string) (arena.Fighter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byName(name)
	if !ok {
		return arena.Fighter{}, arena.ErrFighterNotFound
	}
	return clone(f), nil
}

func (s *FighterStore) byName(name string) (arena.Fighter, bool) {
	for _, f := range s.fighters {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return arena.Fighter{}, false
}

// List returns up to limit fighters, most wins first, oldest first among equals.
func (s *FighterStore) List(_ context.Context, limit int) ([]arena.Fighter, error) {
	s.mu.RLock()
	out := make([]arena.Fighter, 0, len(s.fighters))
	for _, f := range s.fighters {
		out = append(out, clone(f))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b arena.Fighter) int {
		if a.Record.Wins != b.Record.Wins {
			return b.Record.Wins - a.Record.Wins
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes the fighter with id.
func (s *FighterStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fighters[id]; !ok {
		return arena.ErrFighterNotFound
	}
	delete(s.fighters, id)
	return nil
}

// Clear removes every fighter.
func (s *FighterStore) Clear(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.fighters))
	clear(s.fighters)
	return n, nil
}

// ApplyResult folds one match outcome into the fighter's record.
func (s *FighterStore) ApplyResult(_ context.Context, id string, outcome fighter.Outcome, method string) (fighter.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fighters[id]
	if !ok {
		return fighter.Record{}, arena.ErrFighterNotFound
	}
	f.Record = f.Record.Apply(outcome, method)
	s.fighters[id] = f
	return f.Record, nil
}

func clone(f arena.Fighter) arena.Fighter {
	f.Stats = maps.Clone(f.Stats)
	f.Metadata = maps.Clone(f.Metadata)
	return f
}

// FightStore is an arena.FightStore held in memory. It is safe for concurrent use.
type FightStore struct {
	mu     sync.RWMutex
	fights []arena.Fight
	now    func() time.Time
}

// NewFightStore returns an empty FightStore.
func NewFightStore() *FightStore {
	return &FightStore{now: time.Now}
}

// Insert appends f, assigning an ID and timestamp when missing.
func (s *FightStore) Insert(_ context.Context, f arena.Fight) (arena.Fight, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now()
	}
	f.Log = slices.Clone(f.Log)
	s.mu.Lock()
	s.fights = append(s.fights, f)
	s.mu.Unlock()
	return f, nil
}

// Recent returns up to limit fights, newest first.
func (s *FightStore) Recent(_ context.Context, limit int) ([]arena.Fight, error) {
	s.mu.RLock()
	out := slices.Clone(s.fights)
	s.mu.RUnlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b arena.Fight) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByRequesterSince counts fights started by requester at or after since.
func (s *FightStore) CountByRequesterSince(_ context.Context, requester string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, f := range s.fights {
		if f.Requester == requester && !f.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
