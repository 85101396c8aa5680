package combat

import "github.com/cory-johannsen/fightbook/internal/game/dice"

// Exchange tuning.
const (
	criticalChance   = 0.15
	criticalFactor   = 1.5
	solidThreshold   = 15.0
	stoppageHead     = 20.0
	stoppageChance   = 0.4
	submissionChance = 0.3
	perExchangeDecay = 1.0
)

// LandChance returns the percentage chance that attacker's strike lands on defender.
func LandChance(attacker, defender *Competitor) float64 {
	accuracy := (attacker.Stats.Striking + attacker.Stats.PunchSpeed) / 2
	return accuracy - defender.Stats.HeadMovement*0.3
}

// TakedownSuccessChance returns the percentage chance that a takedown attempt succeeds.
func TakedownSuccessChance(attacker, defender *Competitor) float64 {
	return attacker.Stats.Wrestling - defender.Stats.TakedownDefense*0.5
}

// SubmissionSuccessChance returns the percentage chance that a submission attempt finishes.
func SubmissionSuccessChance(attacker, defender *Competitor) float64 {
	return attacker.Stats.Submissions - defender.Stats.Wrestling*0.3
}

// resolveExchange resolves one attacker/defender interaction, then charges
// both competitors the per-exchange stamina decay unless the exchange
// finished the match.
//
// Precondition: b.over is false.
// Postcondition: on a finish b.over is true and b.winner is attacker.Name.
func (b *bout) resolveExchange() {
	attacker, defender := PickAttacker(b.a, b.b, b.src)
	switch ChooseAction(attacker, b.src) {
	case ActionTakedown:
		b.resolveTakedown(attacker, defender)
	default:
		b.resolveStrike(attacker, defender)
	}
	if b.over {
		return
	}
	b.a.Tire(perExchangeDecay)
	b.b.Tire(perExchangeDecay)
}

func (b *bout) resolveStrike(attacker, defender *Competitor) {
	if dice.Percentile(b.src) >= LandChance(attacker, defender) {
		b.event(EventStrike, attacker, defender, missLine(attacker.Name), 0)
		return
	}

	base := (attacker.Stats.PunchPower / 5) * dice.Uniform(b.src, 0.8, 1.2)
	damage := base
	switch {
	case dice.Chance(b.src, criticalChance):
		damage *= criticalFactor
		b.event(EventStrike, attacker, defender, criticalLine(attacker.Name, defender.Name), damage)
	case base > solidThreshold:
		b.event(EventStrike, attacker, defender, solidLine(attacker.Name, defender.Name), damage)
	default:
		b.event(EventStrike, attacker, defender, connectLine(attacker.Name), damage)
	}
	defender.TakeStrike(damage)
	attacker.Tire(ActionStrike.Cost())

	if defender.HeadHealth < stoppageHead && dice.Chance(b.src, stoppageChance) {
		b.event(EventFinish, attacker, defender, stoppageLine(attacker.Name), 0)
		method := MethodTKO
		if defender.HeadHealth <= 0 {
			method = MethodKO
		}
		b.finish(attacker, method)
	}
}

// resolveTakedown never checks for a stoppage: ground-and-pound can take
// HeadHealth below the strike threshold without ending the match.
func (b *bout) resolveTakedown(attacker, defender *Competitor) {
	if dice.Percentile(b.src) >= TakedownSuccessChance(attacker, defender) {
		b.event(EventTakedown, attacker, defender, defendedLine(attacker.Name, defender.Name), 0)
		return
	}
	b.event(EventTakedown, attacker, defender, takedownLine(attacker.Name), 0)

	if !dice.Chance(b.src, submissionChance) {
		damage := dice.Uniform(b.src, 10, 20)
		defender.TakeGroundStrike(damage)
		b.event(EventStrike, attacker, defender, groundLine(attacker.Name), damage)
		return
	}

	if dice.Percentile(b.src) >= SubmissionSuccessChance(attacker, defender) {
		b.event(EventSubmission, attacker, defender, subEscapeLine(attacker.Name, defender.Name), 0)
		return
	}
	hold := dice.Pick(b.src, Submissions)
	b.event(EventSubmission, attacker, defender, subFinishLine(attacker.Name, defender.Name, hold), 0)
	b.finish(attacker, MethodSUB)
}
