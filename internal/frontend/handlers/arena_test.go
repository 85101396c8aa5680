package handlers

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/config"
	"github.com/cory-johannsen/fightbook/internal/frontend/telnet"
	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/command"
	"github.com/cory-johannsen/fightbook/internal/game/dice"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
	"github.com/cory-johannsen/fightbook/internal/ratelimit"
	"github.com/cory-johannsen/fightbook/internal/storage/memory"
	"github.com/cory-johannsen/fightbook/internal/testutil"
)

const wait = 3 * time.Second

type arenaFixture struct {
	svc    *arena.Service
	client *testutil.TelnetClient
}

func newArenaFixture(t *testing.T, settings arena.Settings) *arenaFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := arena.NewService(
		memory.NewFighterStore(),
		memory.NewFightStore(),
		combat.NewEngine(dice.NewSeededSource(7), logger),
		ratelimit.New(5, time.Minute),
		settings,
		logger,
	)
	h := NewArenaHandler(svc, command.DefaultRegistry(), dice.NewSeededSource(3), 0, logger)

	acc := telnet.NewAcceptor(config.TelnetConfig{
		Enabled:      true,
		Host:         "127.0.0.1",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, h, logger)
	go func() { _ = acc.ListenAndServe() }()
	t.Cleanup(acc.Stop)
	require.Eventually(t, func() bool { return acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil(prompt, wait)
	return &arenaFixture{svc: svc, client: client}
}

// do sends line and returns the output up to the next prompt.
func (f *arenaFixture) do(line string) string {
	f.client.Send(line)
	return f.client.ReadUntil(prompt, wait)
}

func (f *arenaFixture) seed(t *testing.T, name, archetype string) arena.Fighter {
	t.Helper()
	a, err := fighter.LookupArchetype(archetype)
	require.NoError(t, err)
	out, err := f.svc.RegisterFighter(context.Background(), "seed-"+name, name, a.Raw(), nil)
	require.NoError(t, err)
	return out
}

func TestSession_HelpListsCommands(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	out := f.do("help")
	for _, want := range []string{"Roster:", "Match:", "System:", "fight <a> vs <b>", "register <name> <archetype>"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, f.do("?"), "Leave the arena")
}

func TestSession_UnknownCommand(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	assert.Contains(t, f.do("dance"), `Unknown command "dance"`)
	assert.NotContains(t, f.do(""), "Unknown")
}

func TestSession_RegisterAndRoster(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	assert.Contains(t, f.do("roster"), "roster is empty")

	assert.Contains(t, f.do("register Iron Mike striker"), "Iron Mike joins the roster as a striker.")
	assert.Contains(t, f.do("register iron mike grappler"), `Fighter name "iron mike" is already taken`)
	assert.Contains(t, f.do("register X striker"), "Name must be at least 2 characters")
	assert.Contains(t, f.do("register Ghost wizard"), "unknown archetype")
	assert.Contains(t, f.do("register Ghost"), "Usage: register <name> <archetype>")

	assert.Contains(t, f.do("ls"), "Iron Mike")
	assert.Contains(t, f.do("archetypes"), "grappler")
}

func TestSession_StatsShowsFighter(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	f.seed(t, "Ghost", "counter")

	out := f.do("stats ghost")
	assert.Regexp(t, `Head movement\s+88`, out)
	assert.Contains(t, out, "Record 0-0-0")
	assert.Contains(t, f.do("stats Nobody"), `No fighter named "Nobody".`)
	assert.Contains(t, f.do("stats"), "Usage: stats <name>")
}

func TestSession_FightPlaysLogAndRecordsResult(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	f.seed(t, "Ghost", "counter")
	f.seed(t, "Iron Mike", "pressure")

	out := f.do("fight Ghost vs Iron Mike")
	assert.Contains(t, out, "[Round 1]")
	assert.Contains(t, out, "Ghost enters the cage")
	assert.Contains(t, out, "Result: ")

	fights, err := f.svc.RecentFights(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, fights, 1)
	assert.Contains(t, out, outcomeText(fights[0]))

	hist := f.do("history")
	assert.Contains(t, hist, "Ghost vs Iron Mike")
	assert.Contains(t, f.do("top"), "Leaderboard")
}

func TestSession_FightErrors(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	f.seed(t, "Ghost", "counter")

	assert.Contains(t, f.do("fight Ghost"), "Usage: fight <a> vs <b>")
	assert.Contains(t, f.do("fight Ghost vs Nobody"), `No fighter named "Nobody".`)
	assert.Contains(t, f.do("fight Ghost vs ghost"), "A fighter cannot fight itself.")
	assert.Contains(t, f.do("random"), "At least two fighters")
}

func TestSession_FightRateLimited(t *testing.T) {
	settings := arena.DefaultSettings()
	settings.FightLimit = 1
	f := newArenaFixture(t, settings)
	f.seed(t, "Ghost", "counter")
	f.seed(t, "Iron Mike", "pressure")

	assert.Contains(t, f.do("random"), "Result: ")
	assert.Contains(t, f.do("f Ghost v Iron Mike"), "Rate limit: max 1 fights per hour")
}

func TestSession_HistoryUsage(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	assert.Contains(t, f.do("history abc"), "Usage: history [n]")
	assert.Contains(t, f.do("hist 3"), "No fights yet.")
}

func TestSession_Quit(t *testing.T) {
	f := newArenaFixture(t, arena.DefaultSettings())
	f.client.Send("quit")
	assert.Contains(t, f.client.ReadUntil("You leave the arena.", wait), "You leave the arena.")
}

// outcomeText is the plain outcome line for a stored fight.
func outcomeText(f arena.Fight) string {
	return telnet.StripANSI(RenderOutcome(f.Winner, f.Method, f.Round))
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&arena.RateLimitError{Message: "slow down"}, "slow down"},
		{&arena.NameTakenError{Name: "Ghost"}, `Fighter name "Ghost" is already taken`},
		{&arena.SlotError{Slot: 2, Err: arena.ErrFighterNotFound}, "Fighter 2 not found"},
		{arena.ErrFighterNotFound, "Fighter not found."},
		{combat.ErrInvalidInvocation, "A fighter cannot fight itself."},
		{errors.New("boom"), "Something went wrong. Try again."},
	}
	for _, tc := range cases {
		var ue userError
		require.ErrorAs(t, describe(tc.err), &ue)
		assert.Equal(t, tc.want, ue.msg)
		assert.Equal(t, tc.err, ue.cause)
	}
}

func TestRequesterOf(t *testing.T) {
	assert.Equal(t, "telnet:10.1.2.3", requesterOf(&net.TCPAddr{IP: net.ParseIP("10.1.2.3"), Port: 4000}))
	assert.Equal(t, "telnet:unknown", requesterOf(nil))
}
