package combat

import "github.com/cory-johannsen/fightbook/internal/game/dice"

// PickAttacker flips a fair coin to decide who attacks this exchange.
//
// Precondition: a, b, and src must be non-nil.
// Postcondition: Returns (a, b) or (b, a).
func PickAttacker(a, b *Competitor, src dice.Source) (attacker, defender *Competitor) {
	if dice.Chance(src, 0.5) {
		return a, b
	}
	return b, a
}
