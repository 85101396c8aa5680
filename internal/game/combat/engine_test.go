package combat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/dice"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

// scriptSource returns queued values in order and panics when a queue runs dry.
type scriptSource struct {
	floats []float64
	ints   []int
}

func (s *scriptSource) Float64() float64 {
	if len(s.floats) == 0 {
		panic("scriptSource: floats exhausted")
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *scriptSource) Intn(n int) int {
	if len(s.ints) == 0 {
		panic("scriptSource: ints exhausted")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

// fixedSrc always returns the same values.
type fixedSrc struct {
	f float64
	n int
}

func (s fixedSrc) Float64() float64 { return s.f }
func (s fixedSrc) Intn(n int) int   { return s.n % n }

func profile(id, name string, s fighter.Stats) fighter.Profile {
	return fighter.Profile{ID: id, Name: name, Stats: s}
}

func redBlue() (fighter.Profile, fighter.Profile) {
	s := fighter.Stats{
		Striking: 70, PunchSpeed: 70, PunchPower: 70,
		Wrestling: 50, Submissions: 50, Cardio: 70,
		Chin: 70, HeadMovement: 50, TakedownDefense: 50,
	}
	return profile("red", "Red", s), profile("blue", "Blue", s)
}

func statsGen() *rapid.Generator[fighter.Stats] {
	return rapid.Custom(func(t *rapid.T) fighter.Stats {
		v := func(label string) float64 { return rapid.Float64Range(0, 100).Draw(t, label) }
		return fighter.Stats{
			Striking:        v("striking"),
			PunchSpeed:      v("punchSpeed"),
			PunchPower:      v("punchPower"),
			Wrestling:       v("wrestling"),
			Submissions:     v("submissions"),
			Cardio:          v("cardio"),
			Chin:            v("chin"),
			HeadMovement:    v("headMovement"),
			TakedownDefense: v("takedownDefense"),
		}
	})
}

func TestSimulate_RedBlueSeeded(t *testing.T) {
	red, blue := redBlue()
	eng := combat.NewEngine(dice.NewSeededSource(2024), zaptest.NewLogger(t))

	res, err := eng.Simulate(red, blue)
	require.NoError(t, err)
	assert.Contains(t, []string{"Red", "Blue", combat.Draw}, res.Winner)
	assert.GreaterOrEqual(t, res.FinishRound, 1)
	assert.LessOrEqual(t, res.FinishRound, combat.Rounds)
	require.NotEmpty(t, res.Log)
	assert.Equal(t, "[Round 1]", res.Log[0])
	assert.True(t, combat.Classify(res.Log[len(res.Log)-1]).IsFinal(), "last line %q", res.Log[len(res.Log)-1])
}

func TestSimulate_SameSeedReplays(t *testing.T) {
	red, blue := redBlue()
	eng := combat.NewEngine(dice.NewCryptoSource(), zap.NewNop())

	first, err := eng.Simulate(red, blue, combat.WithSource(dice.NewSeededSource(99)))
	require.NoError(t, err)
	second, err := eng.Simulate(red, blue, combat.WithSource(dice.NewSeededSource(99)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSimulate_OpeningLines(t *testing.T) {
	red, blue := redBlue()
	res, err := combat.NewEngine(dice.NewSeededSource(1), zap.NewNop()).Simulate(red, blue)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(res.Log), 6)
	assert.Equal(t, []string{
		"[Round 1]",
		"Red enters the cage",
		"Blue enters the cage",
		"The referee gives final instructions",
		"Fight!",
		"",
	}, res.Log[:6])
}

func TestSimulate_InvalidInvocation(t *testing.T) {
	red, blue := redBlue()
	eng := combat.NewEngine(dice.NewSeededSource(1), zap.NewNop())

	cases := map[string][2]fighter.Profile{
		"empty name":    {profile("x", "", red.Stats), blue},
		"blank name":    {red, profile("y", "   ", blue.Stats)},
		"same id":       {red, profile("red", "Other", blue.Stats)},
		"same name":     {red, profile("z", "Red", blue.Stats)},
		"reserved name": {profile("d", combat.Draw, red.Stats), blue},
	}
	for name, pair := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := eng.Simulate(pair[0], pair[1])
			assert.ErrorIs(t, err, combat.ErrInvalidInvocation)
			assert.Empty(t, res.Log)
		})
	}
}

func TestSimulate_AdHocProfilesWithoutIDs(t *testing.T) {
	red, blue := redBlue()
	red.ID, blue.ID = "", ""
	_, err := combat.NewEngine(dice.NewSeededSource(5), zap.NewNop()).Simulate(red, blue)
	assert.NoError(t, err)
}

func TestSimulate_FirstExchangeSubmission(t *testing.T) {
	a := profile("a", "Ana", fighter.DefaultStats())
	b := profile("b", "Bea", fighter.DefaultStats())
	src := &scriptSource{
		ints: []int{
			0, // exchange budget 1d5+5 -> 6
			2, // submission hold -> armbar
		},
		floats: []float64{
			0.1, // Ana attacks
			0.0, // takedown chosen (chance 0.25)
			0.0, // takedown lands (chance 25%)
			0.1, // submission attempted (chance 0.3)
			0.0, // submission succeeds (chance 35%)
		},
	}
	res, err := combat.NewEngine(src, zap.NewNop()).Simulate(a, b)
	require.NoError(t, err)
	assert.Equal(t, "Ana", res.Winner)
	assert.Equal(t, combat.MethodSUB, res.Method)
	assert.Equal(t, 1, res.FinishRound)
	assert.Equal(t, 1, res.Exchanges)
	assert.Equal(t, "Ana locks in a ARMBAR! Bea taps!", res.Log[len(res.Log)-1])
	require.Len(t, res.Events, 2)
	assert.Equal(t, combat.EventTakedown, res.Events[0].Type)
	assert.Equal(t, combat.EventSubmission, res.Events[1].Type)
	assert.Equal(t, len(res.Log)-1, res.Events[1].Seq)
}

func TestSimulate_AllMissesGoesToDecision(t *testing.T) {
	a := profile("a", "Ana", fighter.DefaultStats())
	b := profile("b", "Bea", fighter.DefaultStats())
	// 0.99 always: Bea attacks, strikes, and misses; budgets roll 6.
	res, err := combat.NewEngine(fixedSrc{f: 0.99}, zap.NewNop()).Simulate(a, b)
	require.NoError(t, err)
	assert.Equal(t, combat.MethodDEC, res.Method)
	assert.Equal(t, combat.Draw, res.Winner)
	assert.True(t, res.IsDraw())
	assert.Equal(t, 3, res.FinishRound)
	assert.Equal(t, 18, res.Exchanges)

	n := len(res.Log)
	assert.Equal(t, []string{"End of Round 3", "", "[Decision]", "Split Decision... DRAW!"}, res.Log[n-4:])
	for _, ev := range res.Events {
		assert.Equal(t, "Bea misses", ev.Description)
		assert.Zero(t, ev.Damage)
	}
}

func TestSimulate_DecisionWinner(t *testing.T) {
	// Ana always strikes and lands but never finishes: power 0 keeps damage at
	// zero, so Bea's health is untouched and Ana tires. Jitter is equal for both.
	a := profile("a", "Ana", fighter.Stats{Striking: 100, PunchSpeed: 100, PunchPower: 0})
	b := profile("b", "Bea", fighter.Stats{})
	res, err := combat.NewEngine(fixedSrc{f: 0.1}, zap.NewNop()).Simulate(a, b)
	require.NoError(t, err)
	assert.Equal(t, combat.MethodDEC, res.Method)
	assert.Equal(t, "Bea", res.Winner)
	assert.Equal(t, "Bea wins by decision!", res.Log[len(res.Log)-1])
}

func TestSimulate_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := profile("a", "Alpha", statsGen().Draw(rt, "a"))
		b := profile("b", "Bravo", statsGen().Draw(rt, "b"))
		seed := rapid.Uint64().Draw(rt, "seed")

		res, err := combat.NewEngine(dice.NewSeededSource(seed), zap.NewNop()).Simulate(a, b)
		require.NoError(rt, err)

		// Termination and validity.
		assert.LessOrEqual(rt, res.Exchanges, combat.MaxExchanges)
		assert.GreaterOrEqual(rt, res.FinishRound, 1)
		assert.LessOrEqual(rt, res.FinishRound, combat.Rounds)
		assert.Contains(rt, []combat.Method{combat.MethodKO, combat.MethodTKO, combat.MethodSUB, combat.MethodDEC}, res.Method)
		assert.Contains(rt, []string{"Alpha", "Bravo", combat.Draw}, res.Winner)
		if res.IsDraw() {
			assert.Equal(rt, combat.MethodDEC, res.Method)
		}

		require.NotEmpty(rt, res.Log)
		assert.Equal(rt, "[Round 1]", res.Log[0])
		last := res.Log[len(res.Log)-1]
		assert.True(rt, combat.Classify(last).IsFinal(), "last line %q", last)

		for _, ev := range res.Events {
			assert.Equal(rt, ev.Description, res.Log[ev.Seq])
			assert.GreaterOrEqual(rt, ev.Damage, 0.0)
		}

		endOfRounds := 0
		for _, l := range res.Log {
			if combat.Classify(l) == combat.LineEndOfRound {
				endOfRounds++
			}
		}

		if res.Method.IsFinish() {
			// Finish consistency: the final line belongs to the winner's finishing event.
			require.NotEmpty(rt, res.Events)
			finalEv := res.Events[len(res.Events)-1]
			assert.Equal(rt, len(res.Log)-1, finalEv.Seq)
			assert.Equal(rt, res.Winner, finalEv.Actor)
			assert.NotEqual(rt, res.Winner, finalEv.Target)
			assert.Equal(rt, res.FinishRound, finalEv.Round)
			assert.Equal(rt, res.FinishRound-1, endOfRounds)
			assert.NotContains(rt, res.Log, "[Decision]")
		} else {
			// Decisions only after three complete rounds.
			assert.Equal(rt, combat.Rounds, res.FinishRound)
			assert.Equal(rt, combat.Rounds, endOfRounds)
			assert.Contains(rt, res.Log, "[Decision]")
			assert.GreaterOrEqual(rt, res.Exchanges, combat.Rounds*6)
		}
	})
}

func TestSimulate_OutOfRangeStatsDoNotPanic(t *testing.T) {
	wild := fighter.Stats{
		Striking: 500, PunchSpeed: -40, PunchPower: 1e6,
		Wrestling: 250, Submissions: -1, Cardio: 0,
		Chin: 101, HeadMovement: -100, TakedownDefense: 1000,
	}
	eng := combat.NewEngine(dice.NewSeededSource(11), zap.NewNop())
	for i := 0; i < 50; i++ {
		res, err := eng.Simulate(profile("w", "Wild", wild), profile("z", "Zero", fighter.Stats{}))
		require.NoError(t, err)
		assert.NotEmpty(t, res.Method)
		for _, ev := range res.Events {
			// PunchPower clamps to 100: at most 20 * 1.2 * 1.5.
			assert.LessOrEqual(t, ev.Damage, 36.0)
		}
	}
}

// TestTakedownSuccess_ScalesToCertainty checks a wrestling 100 attacker against
// takedown defence 0 never has a takedown stuffed.
func TestTakedownSuccess_ScalesToCertainty(t *testing.T) {
	wrestler := profile("w", "Wrestler", fighter.Stats{Wrestling: 100, Submissions: 0, HeadMovement: 50})
	target := profile("t", "Target", fighter.Stats{TakedownDefense: 0, Wrestling: 0, HeadMovement: 50})
	eng := combat.NewEngine(dice.NewSeededSource(77), zap.NewNop())

	landed, stuffed := 0, 0
	for i := 0; i < 300; i++ {
		res, err := eng.Simulate(wrestler, target)
		require.NoError(t, err)
		for _, ev := range res.Events {
			if ev.Type != combat.EventTakedown || ev.Actor != "Wrestler" {
				continue
			}
			switch combat.Classify(ev.Description) {
			case combat.LineTakedown:
				landed++
			case combat.LineTakedownDefended:
				stuffed++
			}
		}
	}
	require.Greater(t, landed, 100)
	assert.Zero(t, stuffed)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		line string
		want combat.LineKind
	}{
		{"", combat.LineBlank},
		{"[Round 2]", combat.LineRoundHeader},
		{"End of Round 3", combat.LineEndOfRound},
		{"[Decision]", combat.LineDecisionHeader},
		{"Split Decision... DRAW!", combat.LineDraw},
		{"Red wins by decision!", combat.LineDecision},
		{"Red enters the cage", combat.LineOpening},
		{"The referee gives final instructions", combat.LineOpening},
		{"Fight!", combat.LineOpening},
		{"Red misses", combat.LineMiss},
		{"Red connects", combat.LineConnect},
		{"Red lands a solid strike on Blue", combat.LineSolid},
		{"[CRITICAL] Red lands a massive shot! Blue is hurt!", combat.LineCritical},
		{"Red shoots but Blue defends", combat.LineTakedownDefended},
		{"Red secures a takedown", combat.LineTakedown},
		{"Red attempts a submission but Blue escapes", combat.LineSubmissionEscape},
		{"Red locks in a REAR NAKED CHOKE! Blue taps!", combat.LineSubmission},
		{"Red lands ground and pound", combat.LineGroundAndPound},
		{"Red swarms with punches! The referee stops it!", combat.LineStoppage},
		{"something else entirely", combat.LineUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, combat.Classify(tc.line), "line %q", tc.line)
	}
}

func TestClassify_NamesDoNotShadowCategories(t *testing.T) {
	assert.Equal(t, combat.LineStoppage, combat.Classify("Kid Misses swarms with punches! The referee stops it!"))
	assert.Equal(t, combat.LineMiss, combat.Classify("Connects misses"))
	assert.Equal(t, combat.LineTakedown, combat.Classify("Fight! secures a takedown"))
	assert.Equal(t, combat.LineMiss, combat.Classify("X lands a solid strike on Y misses"))
	assert.Equal(t, combat.LineConnect, combat.Classify("X lands a solid strike on Y connects"))
	assert.Equal(t, combat.LineSolid, combat.Classify("Red lands a solid strike on Blue"))
}

func TestClassify_CoversEveryEngineLine(t *testing.T) {
	eng := combat.NewEngine(dice.NewSeededSource(3), zap.NewNop())
	red, blue := redBlue()
	for i := 0; i < 200; i++ {
		res, err := eng.Simulate(red, blue)
		require.NoError(t, err)
		for _, l := range res.Log {
			assert.NotEqual(t, combat.LineUnknown, combat.Classify(l), "line %q", l)
		}
	}
}

func TestRoundOf(t *testing.T) {
	n, ok := combat.RoundOf("[Round 3]")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	n, ok = combat.RoundOf("End of Round 2")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = combat.RoundOf("Round 2")
	assert.False(t, ok)
}

func TestLineKind_String(t *testing.T) {
	assert.Equal(t, "ground_and_pound", combat.LineGroundAndPound.String())
	assert.Equal(t, "unknown", combat.LineKind(999).String())
	assert.True(t, strings.Contains(combat.LineSubmissionEscape.String(), "escape"))
}
