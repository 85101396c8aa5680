package combat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Submissions holds the finishing holds a successful submission picks from.
var Submissions = []string{"guillotine", "rear naked choke", "armbar", "triangle"}

// Fixed narrative fragments. Renderers recognise lines by these alone.
const (
	lineReferee      = "The referee gives final instructions"
	lineFight        = "Fight!"
	lineDecision     = "[Decision]"
	lineDraw         = "Split Decision... DRAW!"
	criticalPrefix   = "[CRITICAL] "
	sufEnters        = " enters the cage"
	sufStoppage      = " swarms with punches! The referee stops it!"
	sufTaps          = " taps!"
	midLocks         = " locks in a "
	midSubAttempt    = " attempts a submission but "
	sufEscapes       = " escapes"
	sufGroundPound   = " lands ground and pound"
	sufTakedown      = " secures a takedown"
	midShoots        = " shoots but "
	sufDefends       = " defends"
	midSolid         = " lands a solid strike on "
	sufConnects      = " connects"
	sufMisses        = " misses"
	sufDecisionWin   = " wins by decision!"
	criticalSentence = " lands a massive shot! "
)

func roundHeader(n int) string { return fmt.Sprintf("[Round %d]", n) }
func endOfRound(n int) string { return fmt.Sprintf("End of Round %d", n) }
func entersLine(name string) string { return name + sufEnters }
func missLine(att string) string { return att + sufMisses }
func connectLine(att string) string { return att + sufConnects }
func stoppageLine(att string) string { return att + sufStoppage }
func takedownLine(att string) string { return att + sufTakedown }
func groundLine(att string) string { return att + sufGroundPound }
func decisionLine(w string) string { return w + sufDecisionWin }

func solidLine(att, def string) string { return att + midSolid + def }

func criticalLine(att, def string) string {
	return criticalPrefix + att + criticalSentence + def + " is hurt!"
}

func defendedLine(att, def string) string { return att + midShoots + def + sufDefends }

func subFinishLine(att, def, hold string) string {
	return att + midLocks + strings.ToUpper(hold) + "! " + def + sufTaps
}

func subEscapeLine(att, def string) string { return att + midSubAttempt + def + sufEscapes }

// LineKind is the category of one log line as seen by a text-only renderer.
type LineKind int

const (
	LineUnknown LineKind = iota
	LineBlank
	LineRoundHeader
	LineOpening
	LineMiss
	LineConnect
	LineSolid
	LineCritical
	LineTakedownDefended
	LineTakedown
	LineSubmissionEscape
	LineSubmission
	LineGroundAndPound
	LineStoppage
	LineEndOfRound
	LineDecisionHeader
	LineDecision
	LineDraw
)

var lineKindNames = map[LineKind]string{
	LineUnknown:          "unknown",
	LineBlank:            "blank",
	LineRoundHeader:      "round_header",
	LineOpening:          "opening",
	LineMiss:             "miss",
	LineConnect:          "connect",
	LineSolid:            "solid",
	LineCritical:         "critical",
	LineTakedownDefended: "takedown_defended",
	LineTakedown:         "takedown",
	LineSubmissionEscape: "submission_escape",
	LineSubmission:       "submission",
	LineGroundAndPound:   "ground_and_pound",
	LineStoppage:         "stoppage",
	LineEndOfRound:       "end_of_round",
	LineDecisionHeader:   "decision_header",
	LineDecision:         "decision",
	LineDraw:             "draw",
}

// String returns the snake_case name of k.
func (k LineKind) String() string {
	if s, ok := lineKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsFinal reports whether a line of kind k ends a match.
func (k LineKind) IsFinal() bool {
	return k == LineStoppage || k == LineSubmission || k == LineDecision || k == LineDraw
}

var (
	roundHeaderRE = regexp.MustCompile(`^\[Round (\d+)\]$`)
	endOfRoundRE  = regexp.MustCompile(`^End of Round (\d+)$`)
)

// Classify returns the category of a log line using its text alone.
// Fixed line endings are matched before the solid-strike wording, which
// sits between two names. Registration keeps this wording out of names.
func Classify(line string) LineKind {
	switch {
	case line == "":
		return LineBlank
	case roundHeaderRE.MatchString(line):
		return LineRoundHeader
	case endOfRoundRE.MatchString(line):
		return LineEndOfRound
	case line == lineDecision:
		return LineDecisionHeader
	case line == lineDraw:
		return LineDraw
	case line == lineReferee, line == lineFight, strings.HasSuffix(line, sufEnters):
		return LineOpening
	case strings.HasPrefix(line, criticalPrefix) && strings.HasSuffix(line, " is hurt!"):
		return LineCritical
	case strings.HasSuffix(line, sufStoppage):
		return LineStoppage
	case strings.HasSuffix(line, sufTaps) && strings.Contains(line, midLocks):
		return LineSubmission
	case strings.HasSuffix(line, sufEscapes) && strings.Contains(line, midSubAttempt):
		return LineSubmissionEscape
	case strings.HasSuffix(line, sufGroundPound):
		return LineGroundAndPound
	case strings.HasSuffix(line, sufTakedown):
		return LineTakedown
	case strings.HasSuffix(line, sufDefends) && strings.Contains(line, midShoots):
		return LineTakedownDefended
	case strings.HasSuffix(line, sufDecisionWin):
		return LineDecision
	case strings.HasSuffix(line, sufMisses):
		return LineMiss
	case strings.HasSuffix(line, sufConnects):
		return LineConnect
	case strings.Contains(line, midSolid):
		return LineSolid
	}
	return LineUnknown
}

// RoundOf returns the round number of a round header or end-of-round line.
func RoundOf(line string) (int, bool) {
	m := roundHeaderRE.FindStringSubmatch(line)
	if m == nil {
		m = endOfRoundRE.FindStringSubmatch(line)
	}
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
