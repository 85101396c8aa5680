package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
	"github.com/cory-johannsen/fightbook/internal/storage/postgres"
	"github.com/cory-johannsen/fightbook/internal/testutil"
)

var (
	_ arena.FighterStore = (*postgres.FighterRepository)(nil)
	_ arena.FightStore   = (*postgres.FightRepository)(nil)
)

// TestRepositories runs every repository scenario against one container.
func TestRepositories(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)

	fighters := postgres.NewFighterRepository(pc.RawPool)
	fights := postgres.NewFightRepository(pc.RawPool)
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		require.NoError(t, pc.Pool.Health(ctx, time.Second))
		assert.Positive(t, pc.Pool.Stats().Max)
	})

	t.Run("create and get", func(t *testing.T) {
		pc.Truncate(t)
		created, err := fighters.Create(ctx, "Iron Mike", map[string]any{"striking": 80.0, "punchSpeed": 70.0}, map[string]any{"source": "test"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, fighter.NewRecord(), created.Record)

		got, err := fighters.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Iron Mike", got.Name)
		assert.Equal(t, 80.0, got.Stats["striking"])
		assert.Equal(t, "test", got.Metadata["source"])
		assert.Equal(t, 70.0, got.Profile().Stats.PunchSpeed)
	})

	t.Run("name unique ignoring case", func(t *testing.T) {
		pc.Truncate(t)
		_, err := fighters.Create(ctx, "Ghost", nil, nil)
		require.NoError(t, err)
		_, err = fighters.Create(ctx, "gHOST", nil, nil)
		assert.ErrorIs(t, err, arena.ErrFighterNameTaken)

		found, err := fighters.FindByName(ctx, "GHOST")
		require.NoError(t, err)
		assert.Equal(t, "Ghost", found.Name)
	})

	t.Run("not found", func(t *testing.T) {
		pc.Truncate(t)
		_, err := fighters.Get(ctx, "missing")
		assert.ErrorIs(t, err, arena.ErrFighterNotFound)
		_, err = fighters.FindByName(ctx, "missing")
		assert.ErrorIs(t, err, arena.ErrFighterNotFound)
		assert.ErrorIs(t, fighters.Delete(ctx, "missing"), arena.ErrFighterNotFound)
		_, err = fighters.ApplyResult(ctx, "missing", fighter.OutcomeWin, "KO")
		assert.ErrorIs(t, err, arena.ErrFighterNotFound)
	})

	t.Run("apply result and list order", func(t *testing.T) {
		pc.Truncate(t)
		a, err := fighters.Create(ctx, "Alpha", nil, nil)
		require.NoError(t, err)
		b, err := fighters.Create(ctx, "Bravo", nil, nil)
		require.NoError(t, err)

		rec, err := fighters.ApplyResult(ctx, b.ID, fighter.OutcomeWin, "KO")
		require.NoError(t, err)
		assert.Equal(t, 1, rec.Wins)
		assert.Equal(t, 1, rec.KOs)
		_, err = fighters.ApplyResult(ctx, a.ID, fighter.OutcomeLoss, "KO")
		require.NoError(t, err)

		list, err := fighters.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, b.ID, list[0].ID)
		assert.Equal(t, 990, list[1].Record.Ranking)
	})

	t.Run("delete and clear", func(t *testing.T) {
		pc.Truncate(t)
		a, _ := fighters.Create(ctx, "One", nil, nil)
		_, _ = fighters.Create(ctx, "Two", nil, nil)
		_, _ = fighters.Create(ctx, "Three", nil, nil)

		require.NoError(t, fighters.Delete(ctx, a.ID))
		n, err := fighters.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("fights", func(t *testing.T) {
		pc.Truncate(t)
		base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		for i := range 3 {
			_, err := fights.Insert(ctx, arena.Fight{
				Fighter1ID: "a", Fighter2ID: "b",
				Fighter1: "Alpha", Fighter2: "Bravo",
				WinnerID: "a", Winner: "Alpha",
				Method: "KO", Round: 2,
				Log:       []string{"[Round 1]", fmt.Sprintf("line %d", i)},
				Requester: "10.0.0.1",
				CreatedAt: base.Add(time.Duration(i) * 20 * time.Minute),
			})
			require.NoError(t, err)
		}
		draw, err := fights.Insert(ctx, arena.Fight{
			Fighter1ID: "a", Fighter2ID: "b", Fighter1: "Alpha", Fighter2: "Bravo",
			Winner: "DRAW", Method: "DEC", Round: 3, Requester: "10.0.0.2",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, draw.ID)

		recent, err := fights.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recent, 4)
		assert.Equal(t, draw.ID, recent[0].ID)
		assert.Empty(t, recent[0].WinnerID)
		assert.Equal(t, "line 2", recent[1].Log[1])
		assert.Equal(t, "a", recent[1].WinnerID)

		n, err := fights.CountByRequesterSince(ctx, "10.0.0.1", base.Add(20*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
