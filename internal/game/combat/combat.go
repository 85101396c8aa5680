// Package combat implements the two-competitor bout engine: three rounds of
// randomly resolved exchanges ending in a knockout, stoppage, submission, or
// decision.
package combat

import "github.com/cory-johannsen/fightbook/internal/game/fighter"

// Method is how a match ended.
type Method string

const (
	MethodKO  Method = "KO"
	MethodTKO Method = "TKO"
	MethodSUB Method = "SUB"
	MethodDEC Method = "DEC"
)

// IsFinish reports whether m ends a match before the final bell.
func (m Method) IsFinish() bool {
	return m == MethodKO || m == MethodTKO || m == MethodSUB
}

// Draw is the winner token of a drawn decision.
const Draw = fighter.DrawName

// Match shape.
const (
	Rounds = 3
	// ExchangeBudget is rolled once per round; it covers 6 to 10 exchanges inclusive.
	ExchangeBudget = "1d5+5"
	// MaxExchanges bounds the exchanges of a whole match.
	MaxExchanges = Rounds * 10
)

// Competitor is the mutable per-match state of one profile.
// Only the engine mutates it, and only for the duration of one Simulate call.
type Competitor struct {
	Name string
	// Stats are the profile attributes clamped to [0,100].
	Stats      fighter.Stats
	Health     float64
	HeadHealth float64
	// Stamina stays within [0,100].
	Stamina float64
}

// NewCompetitor returns fresh match state for p.
//
// Postcondition: Health, HeadHealth, and Stamina are 100.
func NewCompetitor(p fighter.Profile) *Competitor {
	return &Competitor{
		Name:       p.Name,
		Stats:      p.Stats.Clamped(),
		Health:     100,
		HeadHealth: 100,
		Stamina:    100,
	}
}

// TakeStrike applies a landed stand-up strike.
func (c *Competitor) TakeStrike(damage float64) {
	c.HeadHealth -= damage * 0.7
	c.Health -= damage * 0.4
}

// TakeGroundStrike applies ground-and-pound, which only touches HeadHealth.
func (c *Competitor) TakeGroundStrike(damage float64) {
	c.HeadHealth -= damage
}

// Tire reduces stamina by cost, flooring at zero.
func (c *Competitor) Tire(cost float64) {
	c.Stamina = max(0, c.Stamina-cost)
}

// Recover restores stamina by amount, capped at 100.
func (c *Competitor) Recover(amount float64) {
	c.Stamina = min(100, c.Stamina+amount)
}

// EventType classifies structured events.
type EventType string

const (
	EventStrike     EventType = "strike"
	EventTakedown   EventType = "takedown"
	EventSubmission EventType = "submission"
	EventFinish     EventType = "finish"
)

// Event is the structured twin of one action line in the log.
type Event struct {
	// Seq is the index of Description within Result.Log.
	Seq         int       `json:"time"`
	Round       int       `json:"round"`
	Type        EventType `json:"type"`
	Actor       string    `json:"actor"`
	Target      string    `json:"target"`
	Description string    `json:"description"`
	Damage      float64   `json:"damage,omitempty"`
}

// Result is the immutable outcome of one match.
type Result struct {
	// Winner is a competitor name or Draw.
	Winner      string   `json:"winner"`
	Method      Method   `json:"method"`
	FinishRound int      `json:"round"`
	Log         []string `json:"log"`
	Events      []Event  `json:"events"`
	// Exchanges is the number of exchanges resolved across all rounds.
	Exchanges int `json:"exchanges"`
}

// IsDraw reports whether the match was drawn.
func (r Result) IsDraw() bool { return r.Winner == Draw }
