package combat

import "github.com/cory-johannsen/fightbook/internal/game/dice"

// ActionType identifies what the attacker attempts in an exchange.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionStrike
	ActionTakedown
)

// Cost returns the attacker's stamina cost when the action lands.
// Postcondition: 3 for ActionStrike, 0 otherwise.
func (a ActionType) Cost() float64 {
	if a == ActionStrike {
		return 3
	}
	return 0
}

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionStrike:
		return "strike"
	case ActionTakedown:
		return "takedown"
	default:
		return "unknown"
	}
}

// TakedownChance is the probability that attacker shoots for a takedown
// instead of striking: wrestling/200, so at most one half.
func TakedownChance(attacker *Competitor) float64 {
	return attacker.Stats.Wrestling / 200
}

// ChooseAction draws the attacker's action for one exchange.
//
// Precondition: attacker and src must be non-nil.
// Postcondition: Returns ActionStrike or ActionTakedown.
func ChooseAction(attacker *Competitor, src dice.Source) ActionType {
	if dice.Chance(src, TakedownChance(attacker)) {
		return ActionTakedown
	}
	return ActionStrike
}
