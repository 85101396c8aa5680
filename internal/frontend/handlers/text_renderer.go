package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/frontend/telnet"
	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

var kindColors = map[combat.LineKind]string{
	combat.LineRoundHeader:      telnet.Bold + telnet.BrightYellow,
	combat.LineEndOfRound:       telnet.Yellow,
	combat.LineDecisionHeader:   telnet.Bold + telnet.BrightYellow,
	combat.LineOpening:          telnet.Cyan,
	combat.LineMiss:             telnet.Dim,
	combat.LineConnect:          telnet.White,
	combat.LineSolid:            telnet.BrightWhite,
	combat.LineCritical:         telnet.Bold + telnet.BrightRed,
	combat.LineTakedownDefended: telnet.Blue,
	combat.LineTakedown:         telnet.Magenta,
	combat.LineSubmissionEscape: telnet.Blue,
	combat.LineSubmission:       telnet.Bold + telnet.Red,
	combat.LineGroundAndPound:   telnet.Red,
	combat.LineStoppage:         telnet.Bold + telnet.Red,
	combat.LineDecision:         telnet.Bold + telnet.Green,
	combat.LineDraw:             telnet.Bold + telnet.Yellow,
}

// RenderLogLine colours one fight log line by its classified kind.
// Blank and unrecognised lines are returned unchanged.
func RenderLogLine(line string) string {
	return telnet.Colorize(kindColors[combat.Classify(line)], line)
}

// RenderFightLog renders every line of a fight log. With plain set the
// lines are returned as-is.
//
// Postcondition: len(result) == len(lines).
func RenderFightLog(lines []string, plain bool) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if plain {
			out[i] = l
			continue
		}
		out[i] = RenderLogLine(l)
	}
	return out
}

// RenderOutcome summarises a finished match in one line.
func RenderOutcome(winner, method string, round int) string {
	if winner == combat.Draw {
		return telnet.Colorf(telnet.Bold+telnet.Yellow, "Result: DRAW after %d rounds (%s)", round, method)
	}
	return telnet.Colorf(telnet.Bold+telnet.Green, "Result: %s wins by %s in round %d", winner, method, round)
}

// RenderRoster lists fighters with their win count and ranking.
func RenderRoster(fighters []arena.Fighter) string {
	if len(fighters) == 0 {
		return telnet.Colorize(telnet.Dim, "The roster is empty. Try: register <name> <archetype>")
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Roster ==="))
	b.WriteString("\r\n")
	for _, f := range fighters {
		r := f.Record
		fmt.Fprintf(&b, "  %s%-30s%s %3d-%d-%d  rank %d\r\n",
			telnet.BrightCyan, f.Name, telnet.Reset, r.Wins, r.Losses, r.Draws, r.Ranking)
	}
	return b.String()
}

// RenderLeaderboard formats standings, best first.
func RenderLeaderboard(board []arena.Standing) string {
	if len(board) == 0 {
		return telnet.Colorize(telnet.Dim, "No fighters ranked yet.")
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightYellow, "=== Leaderboard ==="))
	b.WriteString("\r\n")
	for _, s := range board {
		fmt.Fprintf(&b, "  %3d. %-30s W %-3d L %-3d fights %-3d rank %d\r\n",
			s.Rank, s.Name, s.WinCount, s.Losses, s.TotalFights, s.Ranking)
	}
	return b.String()
}

// RenderHistory lists fights newest first.
func RenderHistory(fights []arena.Fight) string {
	if len(fights) == 0 {
		return telnet.Colorize(telnet.Dim, "No fights yet.")
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Recent fights ==="))
	b.WriteString("\r\n")
	for _, f := range fights {
		result := fmt.Sprintf("%s by %s, R%d", f.Winner, f.Method, f.Round)
		if f.Winner == combat.Draw {
			result = fmt.Sprintf("draw, R%d", f.Round)
		}
		fmt.Fprintf(&b, "  %s %s vs %s: %s\r\n",
			telnet.Colorize(telnet.Dim, f.CreatedAt.Format("2006-01-02 15:04")), f.Fighter1, f.Fighter2, result)
	}
	return b.String()
}

// RenderFighter shows a fighter's attributes and career record.
func RenderFighter(f arena.Fighter) string {
	s := f.Profile().Stats
	r := f.Record
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightYellow, f.Name))
	b.WriteString("\r\n")
	rows := []struct {
		label string
		value float64
	}{
		{"Striking", s.Striking}, {"Punch speed", s.PunchSpeed}, {"Punch power", s.PunchPower},
		{"Wrestling", s.Wrestling}, {"Submissions", s.Submissions}, {"Cardio", s.Cardio},
		{"Chin", s.Chin}, {"Head movement", s.HeadMovement}, {"Takedown defense", s.TakedownDefense},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-17s %3.0f\r\n", row.label, row.value)
	}
	b.WriteString(telnet.Colorf(telnet.Cyan, "Record %d-%d-%d  KOs %d  Subs %d  Streak %d (best %d)",
		r.Wins, r.Losses, r.Draws, r.KOs, r.Submissions, r.WinStreak, r.BestWinStreak))
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorf(telnet.Cyan, "Level %d  XP %d  Ranking %d", r.Level, r.XP, r.Ranking))
	b.WriteString("\r\n")
	return b.String()
}

// RenderArchetypes lists the registration presets.
func RenderArchetypes() string {
	return telnet.Colorize(telnet.Cyan, "Archetypes: ") + strings.Join(fighter.ArchetypeNames(), ", ")
}

// RenderError formats a message shown to the player as red text.
func RenderError(msg string) string {
	return telnet.Colorize(telnet.Red, msg)
}
