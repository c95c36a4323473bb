package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/skill"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// CalculateMinDamage returns the lowest damage the stack deals to enemy before luck.
func (u *Unit) CalculateMinDamage(enemy *Unit) int {
	return u.CalculateDamageUnit(enemy, float64(u.Creature().DamageMin*u.Count()))
}

// CalculateMaxDamage returns the highest damage the stack deals to enemy before luck.
func (u *Unit) CalculateMaxDamage(enemy *Unit) int {
	return u.CalculateDamageUnit(enemy, float64(u.Creature().DamageMax*u.Count()))
}

// CalculateDamageUnit scales raw stack damage dmg for a strike against enemy.
//
// Unengaged archers gain the archery bonus, are halved by the shooting
// penalty and divided by the shield spell. Engaged archers without the
// melee exemption are halved. A blind answer and a stoned enemy halve,
// and a double-damage match doubles. The attack minus defense difference r
// scales the result by 1+0.1*min(r,20) when positive and by
// 1+0.05*max(r,-16) otherwise.
//
// Postcondition: Returns at least 1.
func (u *Unit) CalculateDamageUnit(enemy *Unit, dmg float64) int {
	def := u.Creature()
	if u.IsArchers() {
		if !u.IsHandFighting() {
			dmg += dmg * float64(army.SkillValue(u.Commander(), skill.Archery)) / 100
			if u.arena.IsShootingPenalty(u, enemy) {
				dmg /= 2
			}
			if enemy.Modes(status.Shield) {
				dmg /= float64(max(1, u.arena.spellExtra(spell.Shield, 2)))
			}
		} else if !def.Has(creature.NoMeleePenalty) {
			dmg /= 2
		}
	}
	if u.blindAnswer {
		dmg /= 2
	}
	if enemy.Modes(status.Stone) {
		dmg /= 2
	}
	if def.DoubleDamageAgainst(enemy.Creature()) {
		dmg *= 2
	}

	r := u.Attack() - enemy.Defense()
	if enemy.Creature().IsDragon() && u.Modes(status.DragonSlayer) {
		r += u.arena.spellExtra(spell.DragonSlayer, 5)
	}
	if r > 0 {
		dmg *= 1 + 0.1*float64(min(r, 20))
	} else {
		dmg *= 1 + 0.05*float64(max(r, -16))
	}
	return max(1, int(dmg))
}

// Damage rolls the damage of one strike against enemy. Bless deals the
// maximum, curse the minimum, and luck doubles or halves the result.
func (u *Unit) Damage(enemy *Unit) int {
	var dmg int
	switch {
	case u.Modes(status.Bless):
		dmg = u.CalculateMaxDamage(enemy)
	case u.Modes(status.Curse):
		dmg = u.CalculateMinDamage(enemy)
	default:
		dmg = u.arena.roller.Between(u.CalculateMinDamage(enemy), u.CalculateMaxDamage(enemy))
	}
	switch {
	case u.Modes(status.LuckGood):
		dmg <<= 1
	case u.Modes(status.LuckBad):
		dmg >>= 1
	}
	return dmg
}

// CalculateRetaliationDamage predicts the unit's answer after taking
// damageTaken. Only whole surviving members answer, each for its minimum,
// maximum or integer average damage. Lethal hits, mirror images and units
// that may not respond answer nothing.
func (u *Unit) CalculateRetaliationDamage(damageTaken int) int {
	if damageTaken >= u.hp || u.Modes(status.MirrorImage) || !u.AllowResponse() {
		return 0
	}
	def := u.Creature()
	left := (u.hp - damageTaken) / def.HitPoints
	perMember := (def.DamageMin + def.DamageMax) / 2
	switch {
	case u.Modes(status.Bless):
		perMember = def.DamageMax
	case u.Modes(status.Curse):
		perMember = def.DamageMin
	}
	return left * perMember
}

// HowManyWillBeKilled returns how many members dmg would kill.
//
// Postcondition: 0 <= result <= Count().
func (u *Unit) HowManyWillBeKilled(dmg int) int {
	if dmg >= u.hp {
		return u.Count()
	}
	if dmg <= 0 {
		return 0
	}
	return u.Count() - u.Creature().CountFromHitPoints(u.hp-dmg)
}

// ApplyDamage takes dmg off the pool and returns the members killed. Any hit
// wakes a paralyzed or stoned unit, which then loses its turn, and ends
// blindness. A mirror image dies from any hit.
//
// Postcondition: a unit reduced to zero members has released its cells.
func (u *Unit) ApplyDamage(dmg int) int { return u.applyDamage(dmg, 0) }

// ApplyDamageFrom applies dmg dealt by attacker and then runs the attacker's
// on-kill reactions.
func (u *Unit) ApplyDamageFrom(attacker *Unit, dmg int) int {
	var source uint32
	if attacker != nil {
		source = attacker.uid
	}
	killed := u.applyDamage(dmg, source)
	if killed == 0 || attacker == nil || !attacker.IsValid() {
		return killed
	}
	victim := u.Creature()
	switch attacker.Creature().OnKill {
	case creature.OnKillGrow:
		attacker.Resurrect(killed*attacker.Creature().HitPoints, true, false)
	case creature.OnKillDrain:
		if victim.AffectedByMorale() && attacker.IsHaveDamage() {
			attacker.Resurrect(killed*victim.HitPoints, false, false)
		}
	}
	if hook := attacker.Creature().LuaOnKill; hook != "" && u.arena.hooks != nil {
		u.arena.hooks.CallKillHook(hook, attacker.uid, u.uid, killed)
	}
	return killed
}

func (u *Unit) applyDamage(dmg int, source uint32) int {
	if dmg <= 0 || !u.IsValid() {
		return 0
	}
	killed := u.HowManyWillBeKilled(dmg)
	if u.Modes(status.MirrorImage) {
		dmg = u.hp
		killed = u.Count()
	}
	if u.Modes(status.ParalyzeMagic) {
		u.SetModes(status.Responded | status.Moved)
		u.clearEffect(status.ParalyzeMagic)
	}
	if u.Modes(status.Blind) {
		u.ResetBlind()
	}

	u.dead += killed
	u.SetCount(u.Count() - killed)
	u.hp -= min(dmg, u.hp)

	u.arena.emit(Event{Kind: EventDamage, Unit: u.uid, Source: source, Damage: dmg, Killed: killed})
	u.arena.logger.Debug("damage applied",
		zap.Stringer("unit", u),
		zap.Int("damage", dmg),
		zap.Int("killed", killed),
		zap.Int("hp", u.hp),
	)
	if !u.IsValid() {
		u.onKilled()
	}
	return killed
}

// onKilled tears down a unit whose last member died.
func (u *Unit) onKilled() {
	if u.Modes(status.MirrorOwner) {
		u.releaseMirrorImage()
	}
	if u.Modes(status.MirrorImage) && u.mirror != nil {
		u.mirror.severMirror()
	}
	u.ResetModes(status.TurnTransient | status.Magic)
	u.affected.Remove(status.Magic)
	u.SetModes(status.Moved)

	if !u.Modes(status.MirrorImage | status.Summoned) {
		for _, i := range u.position.Indexes() {
			u.arena.graveyard.Add(i, u.uid)
		}
	}
	u.releaseCells()

	u.arena.emit(Event{Kind: EventUnitDestroyed, Unit: u.uid, Cell: u.HeadIndex()})
	if u.arena.metrics != nil {
		u.arena.metrics.RecordUnitDestroyed(u.ID(), u.Modes(status.MirrorImage))
	}
	u.arena.logger.Debug("unit destroyed", zap.Stringer("unit", u))
}

// Resurrect returns points hit points to the pool and revives the members
// they cover. Without overflow the stack stops at its initial size with a
// full pool; with overflow the initial size grows instead. Unless skipDead is
// set the revived members come off the dead count. A unit revived from zero
// has already acted this turn.
//
// Postcondition: Returns the members revived.
func (u *Unit) Resurrect(points int, allowOverflow, skipDead bool) int {
	if points <= 0 {
		return 0
	}
	def := u.Creature()
	revived := def.CountFromHitPoints(u.hp+points) - u.Count()
	if u.hp == 0 {
		u.SetModes(status.Moved)
	}
	u.SetCount(u.Count() + revived)
	u.hp += points

	if allowOverflow {
		u.initialCount = max(u.initialCount, u.Count())
	} else if u.Count() > u.initialCount {
		revived -= u.Count() - u.initialCount
		u.SetCount(u.initialCount)
		u.hp = u.Troop.HitPoints()
	}
	if !skipDead {
		u.dead -= min(revived, u.dead)
	}
	u.arena.invariant(u.hp <= u.Count()*def.HitPoints, "pool exceeds stack size", zap.Stringer("unit", u))

	u.arena.emit(Event{Kind: EventResurrected, Unit: u.uid, Count: revived})
	return revived
}
