package battle

import (
	"github.com/cory-johannsen/warband/internal/game/status"
)

// ScoreQuality rates the threat the unit poses to defender. The computer
// player targets the enemy with the highest score against its acting unit.
//
// The threat is the unit's average damage against defender, halved when
// defender is out of reach and raised for double strikes. Strike effects add
// their expected value and the creature's score multiplier applies. Mirror
// images weigh ten times. Units acting for the other side score negative,
// disabled units score zero, and melee threats are scaled by the fraction of
// the unit defender would destroy in return.
func (u *Unit) ScoreQuality(defender *Unit) int {
	attacker := u
	attackerDef := attacker.Creature()
	defenderDef := defender.Creature()

	defendersDamage := float64(defender.CalculateDamageUnit(attacker,
		float64(defender.Count())*defenderDef.AverageDamage()))
	attackerHP := float64(attacker.hp)

	powerLost := 1.0
	if !attacker.Modes(status.MirrorImage) && !defender.Modes(status.Tower) && defendersDamage < attackerHP {
		powerLost = defendersDamage / attackerHP
	}

	shooting := attacker.IsArchers() && !attacker.IsHandFighting()
	threat := float64(attacker.CalculateDamageUnit(defender,
		float64(attacker.Count())*attackerDef.AverageDamage()))

	if !attacker.CanReachUnit(defender) && !defender.Modes(status.Tower) && !shooting {
		threat /= 2
	}

	if attacker.IsTwiceAttack() {
		if attacker.IsArchers() || attacker.IgnoreRetaliation() || defender.Modes(status.Responded) {
			threat *= 2
		} else {
			threat += threat * (1 - powerLost)
		}
	}

	if eff := attackerDef.SecondaryEffect; eff != nil {
		resist := defender.MagicResist(eff.Spell, u.arena.defaultSpellDuration)
		threat += defendersDamage * float64(eff.Chance) / 100 * float64(100-min(resist, 100)) / 100
	}

	if m := attackerDef.ScoreMultiplier; m > 0 {
		threat *= m
	}
	if attacker.Modes(status.MirrorImage) {
		threat *= 10
	}

	switch {
	case attacker.Modes(status.Berserker | status.Hypnotize):
		threat *= -1
	case attacker.Color() == defender.Color() && !attacker.Modes(status.Tower):
		threat *= -2
	case attacker.Modes(status.Blind | status.ParalyzeMagic):
		threat = 0
	}

	if !attacker.IsArchers() || defender.IsArchers() {
		threat *= powerLost
	}
	return int(threat * 100)
}
