package arena_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/dice"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
	"github.com/cory-johannsen/fightbook/internal/ratelimit"
	"github.com/cory-johannsen/fightbook/internal/storage/memory"
)

type countingRecorder struct {
	fights        map[string]int
	registrations int
	limited       map[string]int
	roster        int
	storeErrors   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{fights: map[string]int{}, limited: map[string]int{}, storeErrors: map[string]int{}}
}

func (r *countingRecorder) RecordFight(method string, _, _ int) { r.fights[method]++ }
func (r *countingRecorder) RecordRegistration()                 { r.registrations++ }
func (r *countingRecorder) RecordRateLimited(gate string)       { r.limited[gate]++ }
func (r *countingRecorder) SetRosterSize(n int)                 { r.roster = n }
func (r *countingRecorder) RecordStoreError(op string)          { r.storeErrors[op]++ }

type harness struct {
	svc      *arena.Service
	fighters *memory.FighterStore
	fights   *memory.FightStore
	rec      *countingRecorder
	now      time.Time
}

func newHarness(t *testing.T, settings arena.Settings) *harness {
	t.Helper()
	h := &harness{
		fighters: memory.NewFighterStore(),
		fights:   memory.NewFightStore(),
		rec:      newCountingRecorder(),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	logger := zaptest.NewLogger(t)
	engine := combat.NewEngine(dice.NewSeededSource(11), logger)
	gate := ratelimit.New(5, time.Minute, ratelimit.WithClock(clock))
	h.svc = arena.NewService(h.fighters, h.fights, engine, gate, settings, logger,
		arena.WithRecorder(h.rec),
		arena.WithClock(clock),
	)
	return h
}

func (h *harness) register(t *testing.T, name string) arena.Fighter {
	t.Helper()
	f, err := h.svc.RegisterFighter(context.Background(), "tester-"+name, name, map[string]any{
		"striking": 70, "wrestling": 60, "cardio": 65,
	}, nil)
	require.NoError(t, err)
	return f
}

func TestRegisterFighter_StoresNormalizedStats(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	f, err := h.svc.RegisterFighter(context.Background(), "1.1.1.1", "  Snake Case  ", map[string]any{
		"punch_speed":   80,
		"head_movement": 40,
	}, map[string]any{"source": "cli"})
	require.NoError(t, err)

	assert.Equal(t, "Snake Case", f.Name)
	assert.Contains(t, f.Stats, "punchSpeed")
	assert.Contains(t, f.Stats, "headMovement")
	assert.NotContains(t, f.Stats, "punch_speed")
	assert.Equal(t, "cli", f.Metadata["source"])
	assert.Equal(t, 1, h.rec.registrations)
}

func TestRegisterFighter_RejectsTakenNameIgnoringCase(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	h.register(t, "Ghost")

	_, err := h.svc.RegisterFighter(context.Background(), "2.2.2.2", "gHoSt", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, arena.ErrFighterNameTaken)
	assert.Equal(t, `Fighter name "gHoSt" is already taken`, err.Error())
}

func TestRegisterFighter_ShortName(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	_, err := h.svc.RegisterFighter(context.Background(), "x", " <a> ", nil, nil)
	assert.ErrorIs(t, err, fighter.ErrInvalidRegistration)
}

func TestRegisterFighter_ReservedNames(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	for _, name := range []string{"DRAW", "draw", "X lands a solid strike on Y"} {
		_, err := h.svc.RegisterFighter(context.Background(), "x", name, nil, nil)
		var verr *fighter.ValidationError
		require.True(t, errors.As(err, &verr), name)
	}
	fighters, err := h.svc.Fighters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fighters)
}

func TestRegisterFighter_InvalidStatsCarryDetails(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	_, err := h.svc.RegisterFighter(context.Background(), "x", "Weakling", map[string]any{
		"striking": 10,
		"cardio":   "lots",
	}, nil)
	var verr *fighter.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Stats validation failed", verr.Message)
	assert.Len(t, verr.Details, 2)
}

func TestRegisterFighter_RateLimited(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	ctx := context.Background()
	for i := range 5 {
		_, err := h.svc.RegisterFighter(ctx, "9.9.9.9", string(rune('A'+i))+"-fighter", nil, nil)
		require.NoError(t, err)
	}

	_, err := h.svc.RegisterFighter(ctx, "9.9.9.9", "Sixth", nil, nil)
	var rl *arena.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.ErrorIs(t, err, arena.ErrRateLimited)
	assert.Equal(t, time.Minute, rl.RetryAfter)
	assert.Equal(t, 1, h.rec.limited["register"])

	_, err = h.svc.RegisterFighter(ctx, "8.8.8.8", "Sixth", nil, nil)
	assert.NoError(t, err, "other requesters are unaffected")
}

func TestStartFight_PersistsAndUpdatesRecords(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	ctx := context.Background()
	red := h.register(t, "Red")
	blue := h.register(t, "Blue")

	fight, err := h.svc.StartFight(ctx, "1.2.3.4", red.ID, blue.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, fight.ID)
	assert.Equal(t, "Red", fight.Fighter1)
	assert.Equal(t, "Blue", fight.Fighter2)
	assert.NotEmpty(t, fight.Log)
	assert.Equal(t, h.now, fight.CreatedAt)

	r, _ := h.fighters.Get(ctx, red.ID)
	b, _ := h.fighters.Get(ctx, blue.ID)
	assert.Equal(t, 1, r.Record.TotalFights)
	assert.Equal(t, 1, b.Record.TotalFights)

	switch fight.Winner {
	case combat.Draw:
		assert.Empty(t, fight.WinnerID)
		assert.Equal(t, 1, r.Record.Draws)
		assert.Equal(t, 1, b.Record.Draws)
	case "Red":
		assert.Equal(t, red.ID, fight.WinnerID)
		assert.Equal(t, 1, r.Record.Wins)
		assert.Equal(t, 1, b.Record.Losses)
	case "Blue":
		assert.Equal(t, blue.ID, fight.WinnerID)
		assert.Equal(t, 1, b.Record.Wins)
		assert.Equal(t, 1, r.Record.Losses)
	default:
		t.Fatalf("unexpected winner %q", fight.Winner)
	}
	assert.Equal(t, 1, h.rec.fights[fight.Method])

	recent, err := h.svc.RecentFights(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fight.ID, recent[0].ID)
}

func TestStartFight_MissingIDs(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	_, err := h.svc.StartFight(context.Background(), "x", "", "abc")
	assert.ErrorIs(t, err, arena.ErrInvalidRequest)
}

func TestStartFight_UnknownFighterNamesSlot(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	red := h.register(t, "Red")

	_, err := h.svc.StartFight(context.Background(), "x", red.ID, "nope")
	var slot *arena.SlotError
	require.True(t, errors.As(err, &slot))
	assert.Equal(t, 2, slot.Slot)
	assert.ErrorIs(t, err, arena.ErrFighterNotFound)
	assert.Equal(t, "Fighter 2 not found", err.Error())

	_, err = h.svc.StartFight(context.Background(), "x", "nope", red.ID)
	require.True(t, errors.As(err, &slot))
	assert.Equal(t, 1, slot.Slot)
}

func TestStartFight_SameFighterRejected(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	red := h.register(t, "Red")
	_, err := h.svc.StartFight(context.Background(), "x", red.ID, red.ID)
	assert.ErrorIs(t, err, combat.ErrInvalidInvocation)
}

func TestStartFight_RateLimitCountsStoredFights(t *testing.T) {
	settings := arena.DefaultSettings()
	settings.FightLimit = 2
	h := newHarness(t, settings)
	ctx := context.Background()
	red := h.register(t, "Red")
	blue := h.register(t, "Blue")

	for range 2 {
		_, err := h.svc.StartFight(ctx, "5.5.5.5", red.ID, blue.ID)
		require.NoError(t, err)
	}
	_, err := h.svc.StartFight(ctx, "5.5.5.5", red.ID, blue.ID)
	assert.ErrorIs(t, err, arena.ErrRateLimited)
	assert.Equal(t, "Rate limit: max 2 fights per hour. Try again later.", err.Error())
	assert.Equal(t, 1, h.rec.limited["fight"])

	_, err = h.svc.StartFight(ctx, "6.6.6.6", red.ID, blue.ID)
	assert.NoError(t, err)

	h.now = h.now.Add(time.Hour + time.Second)
	_, err = h.svc.StartFight(ctx, "5.5.5.5", red.ID, blue.ID)
	assert.NoError(t, err, "window has passed")
}

func TestRecentFights_DefaultAndCap(t *testing.T) {
	settings := arena.DefaultSettings()
	settings.HistoryDefault = 2
	settings.HistoryMax = 3
	h := newHarness(t, settings)
	ctx := context.Background()
	red := h.register(t, "Red")
	blue := h.register(t, "Blue")
	for range 4 {
		h.now = h.now.Add(time.Second)
		_, err := h.svc.StartFight(ctx, "r", red.ID, blue.ID)
		require.NoError(t, err)
	}

	def, err := h.svc.RecentFights(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, def, 2)

	capped, err := h.svc.RecentFights(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, capped, 3)
	assert.True(t, capped[0].CreatedAt.After(capped[1].CreatedAt))
}

func TestLeaderboard_RanksByWins(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	ctx := context.Background()
	a := h.register(t, "Alpha")
	b := h.register(t, "Bravo")
	_, err := h.fighters.ApplyResult(ctx, b.ID, fighter.OutcomeWin, "KO")
	require.NoError(t, err)
	_, err = h.fighters.ApplyResult(ctx, a.ID, fighter.OutcomeLoss, "KO")
	require.NoError(t, err)

	board, err := h.svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, arena.Standing{Rank: 1, ID: b.ID, Name: "Bravo", WinCount: 1, TotalFights: 1, Ranking: 1015}, board[0])
	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, 1, board[1].Losses)
	assert.Equal(t, 2, h.rec.roster)
}

func TestFindFighter_TrimsAndIgnoresCase(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	f := h.register(t, "Lightning")
	got, err := h.svc.FindFighter(context.Background(), "  LIGHTNING ")
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
}

func TestDeleteFighter_RequiresAdminToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	settings := arena.DefaultSettings()
	settings.AdminTokenHash = string(hash)
	h := newHarness(t, settings)
	ctx := context.Background()
	f := h.register(t, "Doomed")

	assert.ErrorIs(t, h.svc.DeleteFighter(ctx, "", f.ID), arena.ErrUnauthorized)
	assert.ErrorIs(t, h.svc.DeleteFighter(ctx, "wrong", f.ID), arena.ErrUnauthorized)
	assert.ErrorIs(t, h.svc.DeleteFighter(ctx, "s3cret", ""), arena.ErrInvalidRequest)
	require.NoError(t, h.svc.DeleteFighter(ctx, "s3cret", f.ID))
	assert.ErrorIs(t, h.svc.DeleteFighter(ctx, "s3cret", f.ID), arena.ErrFighterNotFound)

	_, err = h.svc.Fighter(ctx, f.ID)
	assert.ErrorIs(t, err, arena.ErrFighterNotFound)
}

func TestDeleteFighter_DisabledWithoutHash(t *testing.T) {
	h := newHarness(t, arena.DefaultSettings())
	f := h.register(t, "Safe")
	assert.ErrorIs(t, h.svc.DeleteFighter(context.Background(), "anything", f.ID), arena.ErrUnauthorized)
}

func TestHashToken_RoundTrip(t *testing.T) {
	hash, err := arena.HashToken("admin-token")
	require.NoError(t, err)
	assert.True(t, arena.CheckToken("admin-token", hash))
	assert.False(t, arena.CheckToken("admin-token2", hash))
	assert.False(t, arena.CheckToken("", hash))

	_, err = arena.HashToken("")
	assert.ErrorIs(t, err, arena.ErrInvalidRequest)
}

// brokenFights fails every read.
type brokenFights struct {
	*memory.FightStore
}

func (brokenFights) Recent(context.Context, int) ([]arena.Fight, error) {
	return nil, errors.New("connection reset")
}

func (brokenFights) CountByRequesterSince(context.Context, string, time.Time) (int, error) {
	return 0, errors.New("connection reset")
}

func TestStoreErrorsAreRecorded(t *testing.T) {
	logger := zaptest.NewLogger(t)
	rec := newCountingRecorder()
	svc := arena.NewService(memory.NewFighterStore(), brokenFights{memory.NewFightStore()},
		combat.NewEngine(dice.NewSeededSource(1), logger),
		ratelimit.New(5, time.Minute), arena.DefaultSettings(), logger,
		arena.WithRecorder(rec),
	)

	_, err := svc.RecentFights(context.Background(), 0)
	require.Error(t, err)
	_, err = svc.StartFight(context.Background(), "1.1.1.1", "a", "b")
	require.Error(t, err)

	assert.Equal(t, 1, rec.storeErrors["recent_fights"])
	assert.Equal(t, 1, rec.storeErrors["count_fights"])
}
