package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

// Settings are the arena limits, normally taken from config.ArenaConfig.
type Settings struct {
	FightLimit     int
	FightWindow    time.Duration
	HistoryDefault int
	HistoryMax     int
	LeaderboardMax int
	// AdminTokenHash is a bcrypt hash of the admin bearer token. Empty disables admin operations.
	AdminTokenHash string
}

// DefaultSettings returns the production limits.
func DefaultSettings() Settings {
	return Settings{
		FightLimit:     20,
		FightWindow:    time.Hour,
		HistoryDefault: 50,
		HistoryMax:     100,
		LeaderboardMax: 100,
	}
}

// Service orchestrates registrations and matches over the stores.
type Service struct {
	fighters     FighterStore
	fights       FightStore
	engine       *combat.Engine
	registerGate Limiter
	settings     Settings
	recorder     Recorder
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock replaces the wall clock used for the fight gate.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
//
// Precondition: fighters, fights, engine, registerGate, and logger must be non-nil.
func NewService(
	fighters FighterStore,
	fights FightStore,
	engine *combat.Engine,
	registerGate Limiter,
	settings Settings,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		fighters:     fighters,
		fights:       fights,
		engine:       engine,
		registerGate: registerGate,
		settings:     settings,
		recorder:     nopRecorder{},
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the limits the service enforces.
func (s *Service) Settings() Settings { return s.settings }

// RegisterFighter validates and stores a new fighter on behalf of requester.
//
// Postcondition: Returns the stored Fighter, or one of *RateLimitError,
// *fighter.ValidationError, fighter.ErrInvalidRegistration, *NameTakenError.
func (s *Service) RegisterFighter(ctx context.Context, requester, name string, stats, metadata map[string]any) (Fighter, error) {
	d := s.registerGate.Allow("fighters:" + requester)
	if !d.Allowed {
		s.recorder.RecordRateLimited("register")
		return Fighter{}, &RateLimitError{
			Message:    "Rate limit exceeded. Try again in a minute.",
			RetryAfter: d.RetryAfter(s.now()),
		}
	}

	clean, err := fighter.SanitizeName(name)
	if err != nil {
		return Fighter{}, err
	}

	if _, err := s.fighters.FindByName(ctx, clean); err == nil {
		return Fighter{}, &NameTakenError{Name: clean}
	} else if !errors.Is(err, ErrFighterNotFound) {
		return Fighter{}, fmt.Errorf("checking name %q: %w", clean, err)
	}

	normalized, _, err := fighter.ValidateStats(stats)
	if err != nil {
		return Fighter{}, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	f, err := s.fighters.Create(ctx, clean, normalized, metadata)
	if err != nil {
		if errors.Is(err, ErrFighterNameTaken) {
			return Fighter{}, &NameTakenError{Name: clean}
		}
		s.recorder.RecordStoreError("create_fighter")
		return Fighter{}, fmt.Errorf("creating fighter: %w", err)
	}

	s.recorder.RecordRegistration()
	s.logger.Info("fighter registered", zap.String("id", f.ID), zap.String("name", f.Name))
	return f, nil
}

// Fighters returns the roster, most wins first.
func (s *Service) Fighters(ctx context.Context) ([]Fighter, error) {
	list, err := s.fighters.List(ctx, s.settings.LeaderboardMax)
	if err != nil {
		s.recorder.RecordStoreError("list_fighters")
		return nil, fmt.Errorf("listing fighters: %w", err)
	}
	s.recorder.SetRosterSize(len(list))
	return list, nil
}

// Fighter returns one fighter by id.
func (s *Service) Fighter(ctx context.Context, id string) (Fighter, error) {
	return s.fighters.Get(ctx, id)
}

// FindFighter returns one fighter by name, compared case-insensitively.
func (s *Service) FindFighter(ctx context.Context, name string) (Fighter, error) {
	return s.fighters.FindByName(ctx, strings.TrimSpace(name))
}

// DeleteFighter removes a fighter. token must match the configured admin token hash.
func (s *Service) DeleteFighter(ctx context.Context, token, id string) error {
	if !s.authorized(token) {
		return ErrUnauthorized
	}
	if id == "" {
		return fmt.Errorf("id is required: %w", ErrInvalidRequest)
	}
	if err := s.fighters.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("fighter deleted", zap.String("id", id))
	return nil
}

func (s *Service) authorized(token string) bool {
	return CheckToken(token, s.settings.AdminTokenHash)
}

// StartFight runs a match between two registered fighters on behalf of
// requester, stores it, and updates both career records.
//
// Precondition: id1 and id2 name registered fighters.
// Postcondition: Returns the stored Fight, or one of *RateLimitError,
// ErrInvalidRequest, *SlotError, combat.ErrInvalidInvocation.
func (s *Service) StartFight(ctx context.Context, requester, id1, id2 string) (Fight, error) {
	now := s.now()
	count, err := s.fights.CountByRequesterSince(ctx, requester, now.Add(-s.settings.FightWindow))
	if err != nil {
		s.recorder.RecordStoreError("count_fights")
		return Fight{}, fmt.Errorf("counting recent fights: %w", err)
	}
	if count >= s.settings.FightLimit {
		s.recorder.RecordRateLimited("fight")
		return Fight{}, &RateLimitError{
			Message: fmt.Sprintf("Rate limit: max %d fights per hour. Try again later.", s.settings.FightLimit),
		}
	}

	if id1 == "" || id2 == "" {
		return Fight{}, fmt.Errorf("fighter1_id and fighter2_id required: %w", ErrInvalidRequest)
	}

	red, err := s.fighters.Get(ctx, id1)
	if err != nil {
		return Fight{}, &SlotError{Slot: 1, Err: err}
	}
	blue, err := s.fighters.Get(ctx, id2)
	if err != nil {
		return Fight{}, &SlotError{Slot: 2, Err: err}
	}

	res, err := s.engine.Simulate(red.Profile(), blue.Profile())
	if err != nil {
		return Fight{}, err
	}

	winnerID := ""
	switch res.Winner {
	case red.Name:
		winnerID = red.ID
	case blue.Name:
		winnerID = blue.ID
	}

	fight, err := s.fights.Insert(ctx, Fight{
		Fighter1ID: red.ID,
		Fighter2ID: blue.ID,
		Fighter1:   red.Name,
		Fighter2:   blue.Name,
		WinnerID:   winnerID,
		Winner:     res.Winner,
		Method:     string(res.Method),
		Round:      res.FinishRound,
		Log:        res.Log,
		Requester:  requester,
		CreatedAt:  now,
	})
	if err != nil {
		s.recorder.RecordStoreError("insert_fight")
		return Fight{}, fmt.Errorf("storing fight: %w", err)
	}

	for _, f := range []Fighter{red, blue} {
		outcome := outcomeFor(f.ID, winnerID)
		if _, err := s.fighters.ApplyResult(ctx, f.ID, outcome, string(res.Method)); err != nil {
			s.recorder.RecordStoreError("apply_result")
			s.logger.Warn("updating career record",
				zap.String("fighter", f.ID),
				zap.Error(err),
			)
		}
	}

	s.recorder.RecordFight(string(res.Method), res.FinishRound, res.Exchanges)
	return fight, nil
}

func outcomeFor(id, winnerID string) fighter.Outcome {
	switch winnerID {
	case "":
		return fighter.OutcomeDraw
	case id:
		return fighter.OutcomeWin
	default:
		return fighter.OutcomeLoss
	}
}

// RecentFights returns the newest fights. A non-positive limit selects the
// default; larger limits are capped.
func (s *Service) RecentFights(ctx context.Context, limit int) ([]Fight, error) {
	if limit <= 0 {
		limit = s.settings.HistoryDefault
	}
	limit = min(limit, s.settings.HistoryMax)
	fights, err := s.fights.Recent(ctx, limit)
	if err != nil {
		s.recorder.RecordStoreError("recent_fights")
		return nil, fmt.Errorf("listing fights: %w", err)
	}
	return fights, nil
}

// Leaderboard ranks the roster by wins.
func (s *Service) Leaderboard(ctx context.Context) ([]Standing, error) {
	list, err := s.Fighters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Standing, 0, len(list))
	for i, f := range list {
		out = append(out, Standing{
			Rank:        i + 1,
			ID:          f.ID,
			Name:        f.Name,
			WinCount:    f.Record.Wins,
			TotalFights: f.Record.TotalFights,
			Losses:      f.Record.Losses,
			Ranking:     f.Record.Ranking,
		})
	}
	return out, nil
}
