package combat

import (
	"math"

	"github.com/cory-johannsen/fightbook/internal/game/dice"
)

// Round and decision tuning.
const (
	roundRecovery  = 20.0
	decisionJitter = 10.0
	drawMargin     = 5.0
)

// bout is the state of one match in progress. It is owned by a single
// Simulate call and never shared.
type bout struct {
	a, b   *Competitor
	src    dice.Source
	roller *dice.Roller
	budget dice.Expression

	round     int
	exchanges int
	log       []string
	events    []Event

	over   bool
	winner string
	method Method
}

func (b *bout) line(s string) {
	b.log = append(b.log, s)
}

// event records a structured event and its log line together.
func (b *bout) event(t EventType, actor, target *Competitor, desc string, damage float64) {
	b.events = append(b.events, Event{
		Seq:         len(b.log),
		Round:       b.round,
		Type:        t,
		Actor:       actor.Name,
		Target:      target.Name,
		Description: desc,
		Damage:      damage,
	})
	b.line(desc)
}

func (b *bout) finish(winner *Competitor, method Method) {
	b.over = true
	b.winner = winner.Name
	b.method = method
}

// run drives Opening, up to three rounds, and the decision fallback.
//
// Postcondition: b.over is true and b.method is set.
func (b *bout) run() {
	b.round = 1
	b.line(roundHeader(1))
	b.line(entersLine(b.a.Name))
	b.line(entersLine(b.b.Name))
	b.line(lineReferee)
	b.line(lineFight)
	b.line("")

	for r := 1; r <= Rounds && !b.over; r++ {
		b.round = r
		if r > 1 {
			b.line("")
			b.line(roundHeader(r))
			b.a.Recover(roundRecovery)
			b.b.Recover(roundRecovery)
		}
		b.runRound()
		if !b.over {
			b.line(endOfRound(r))
		}
	}

	if !b.over {
		b.decide()
	}
}

// runRound resolves up to one rolled exchange budget, stopping at the first finish.
func (b *bout) runRound() {
	budget := b.roller.Roll(b.budget).Total()
	for i := 0; i < budget && !b.over; i++ {
		b.exchanges++
		b.resolveExchange()
	}
}

// Score returns a competitor's decision score before jitter.
func Score(c *Competitor) float64 {
	return (c.Health + c.Stamina) / 2
}

// decide scores both competitors with jitter and records a decision or draw.
func (b *bout) decide() {
	b.line("")
	b.line(lineDecision)
	scoreA := Score(b.a) + dice.Uniform(b.src, 0, decisionJitter)
	scoreB := Score(b.b) + dice.Uniform(b.src, 0, decisionJitter)

	b.over = true
	b.method = MethodDEC
	if math.Abs(scoreA-scoreB) < drawMargin {
		b.winner = Draw
		b.line(lineDraw)
		return
	}
	b.winner = b.a.Name
	if scoreB > scoreA {
		b.winner = b.b.Name
	}
	b.line(decisionLine(b.winner))
}

func (b *bout) result() Result {
	return Result{
		Winner:      b.winner,
		Method:      b.method,
		FinishRound: b.round,
		Log:         b.log,
		Events:      b.events,
		Exchanges:   b.exchanges,
	}
}
