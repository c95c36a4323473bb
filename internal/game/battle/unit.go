package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// Unit is a troop placed on the battlefield for the duration of one battle.
// It tracks the battle-only state the army troop does not carry: the hit-point
// pool, casualties, ammunition, modes and their durations.
type Unit struct {
	army.Troop

	arena *Arena
	force *Force

	uid          uint32
	position     Position
	reflect      bool
	hp           int
	initialCount int
	dead         int
	shots        int

	disruptingRay int
	modes         status.Flags
	affected      status.Registry

	// mirror links a mirror image and its owner in both directions.
	mirror      *Unit
	blindAnswer bool
}

func (a *Arena) newUnit(f *Force, t army.Troop, reflect bool) *Unit {
	a.nextUID++
	return &Unit{
		Troop:        t,
		arena:        a,
		force:        f,
		uid:          a.nextUID,
		reflect:      reflect,
		hp:           t.HitPoints(),
		initialCount: t.Count(),
		shots:        t.Creature().Shots,
	}
}

// UID returns the unit's battle-unique identifier.
func (u *Unit) UID() uint32 { return u.uid }

// Force returns the side the unit belongs to.
func (u *Unit) Force() *Force { return u.force }

// Color returns the color of the unit's army.
func (u *Unit) Color() army.Color { return u.force.Color() }

// CurrentColor returns the side the unit fights for this turn. Berserk units
// belong to no side and hypnotized units fight for the enemy.
func (u *Unit) CurrentColor() army.Color {
	switch {
	case u.Modes(status.Berserker):
		return army.ColorNone
	case u.Modes(status.Hypnotize):
		return u.arena.OppositeColor(u.Color())
	}
	return u.Color()
}

// CurrentControl returns who controls the unit this turn.
func (u *Unit) CurrentControl() army.Control {
	if u.Modes(status.Hypnotize) {
		if enemy := u.arena.EnemyForce(u.Color()); enemy != nil {
			return enemy.Control()
		}
	}
	return u.force.Control()
}

// Commander returns the commander of the unit's army, or nil.
func (u *Unit) Commander() army.Commander { return u.force.Commander() }

// HitPoints returns the current hit-point pool of the whole stack.
func (u *Unit) HitPoints() int { return u.hp }

// InitialCount returns the stack size at battle start, raised by overflow
// resurrection.
func (u *Unit) InitialCount() int { return u.initialCount }

// Dead returns how many members died this battle and stayed dead.
func (u *Unit) Dead() int { return u.dead }

// Shots returns the remaining ammunition.
func (u *Unit) Shots() int { return u.shots }

// DisruptingRay returns how many disrupting rays hit the unit.
func (u *Unit) DisruptingRay() int { return u.disruptingRay }

// IsHaveDamage reports whether the pool is below its full value.
func (u *Unit) IsHaveDamage() bool {
	return u.hp < u.initialCount*u.Creature().HitPoints
}

// MissingHitPoints returns how far the pool is below its full value.
func (u *Unit) MissingHitPoints() int {
	return max(0, u.initialCount*u.Creature().HitPoints-u.hp)
}

// Modes reports whether any of mask is set on the unit.
func (u *Unit) Modes(mask status.Flags) bool { return u.modes.Has(mask) }

// AllModes returns the full mode set.
func (u *Unit) AllModes() status.Flags { return u.modes }

// SetModes sets mask.
func (u *Unit) SetModes(mask status.Flags) { u.modes = u.modes.With(mask) }

// ResetModes clears mask.
func (u *Unit) ResetModes(mask status.Flags) { u.modes = u.modes.Without(mask) }

// AffectedDuration returns the remaining turns of the effect mask, or 0.
func (u *Unit) AffectedDuration(mask status.Flags) int { return u.affected.Duration(mask) }

// IsUnderSpellEffect reports whether any duration-bearing spell effect is active.
func (u *Unit) IsUnderSpellEffect() bool { return u.modes.Has(status.Magic) }

// CurrentSpellEffects returns the active effects with their remaining turns.
func (u *Unit) CurrentSpellEffects() []status.Entry { return u.affected.Entries() }

// Mirror returns the linked mirror image or owner, or nil.
func (u *Unit) Mirror() *Unit { return u.mirror }

// Position returns the cells the unit occupies.
func (u *Unit) Position() Position { return u.position }

// HeadIndex returns the head cell index, or -1 when off the board.
func (u *Unit) HeadIndex() int { return u.position.HeadIndex() }

// TailIndex returns the tail cell index, or -1.
func (u *Unit) TailIndex() int { return u.position.TailIndex() }

// IsWide reports whether the unit occupies two cells.
func (u *Unit) IsWide() bool { return u.Creature().Wide }

// IsReflect reports whether the unit faces left.
func (u *Unit) IsReflect() bool { return u.reflect }

// OutOfWalls reports whether the unit stands in front of a castle wall.
func (u *Unit) OutOfWalls() bool {
	return u.arena.castle != nil && IsOutOfWallsIndex(u.HeadIndex())
}

// IsValid reports whether the unit has living members.
func (u *Unit) IsValid() bool { return u.Troop.IsValid() }

// SetPosition moves the unit's head to cell head, claiming the cells it needs
// and releasing the old ones.
//
// Postcondition: Returns false and leaves the unit in place when the target
// cells are off the board, impassable, or occupied by another unit.
func (u *Unit) SetPosition(head int) bool {
	p := u.arena.board.PositionFor(head, u.IsWide(), u.reflect)
	if !u.arena.isFreePosition(p, u) {
		return false
	}
	u.placeAt(p)
	return true
}

func (u *Unit) placeAt(p Position) {
	u.releaseCells()
	u.position = p
	for _, c := range p.cells() {
		u.arena.invariant(c.unit == nil || c.unit == u, "cell already occupied",
			zap.Int("cell", c.index), zap.Uint32("uid", u.uid))
		c.unit = u
	}
}

// releaseCells clears the unit from its cells. The position is kept so a
// resurrected unit can reclaim it.
func (u *Unit) releaseCells() {
	for _, c := range u.position.cells() {
		if c.unit == u {
			c.unit = nil
		}
	}
}

// reclaimCells puts a revived unit back on its remembered cells. Resurrection
// is refused beforehand when another unit holds them.
func (u *Unit) reclaimCells() {
	if !u.arena.isFreePosition(u.position, u) {
		u.arena.invariant(false, "cannot reclaim cells", zap.Uint32("uid", u.uid))
		return
	}
	u.placeAt(u.position)
}

// NewTurn restores regenerating units, clears per-turn flags and expires
// effects whose duration ran out.
func (u *Unit) NewTurn() {
	if u.Creature().Has(creature.Regenerate) && u.IsValid() {
		u.hp = u.Troop.HitPoints()
	}
	u.ResetModes(status.TurnTransient)

	u.affected.Decrement()
	for mask := u.affected.NextExpired(); mask != 0; mask = u.affected.NextExpired() {
		u.affected.Remove(mask)
		u.ResetModes(mask)
		if mask.Has(status.MirrorOwner) {
			u.releaseMirrorImage()
		}
	}
}

// Speed returns the effective speed tier. Blind, paralyzed, stoned, dead and
// (unless skipMoved) already-moved units are standing unless skipStanding is
// set.
func (u *Unit) Speed(skipStanding, skipMoved bool) creature.Speed {
	if !skipStanding {
		standing := status.Blind | status.ParalyzeMagic
		if !skipMoved {
			standing |= status.Moved
		}
		if !u.IsValid() || u.modes.Has(standing) {
			return creature.Standing
		}
	}
	speed := u.Creature().Speed
	switch {
	case u.Modes(status.Haste):
		return min(speed+creature.Speed(u.arena.spellExtra(spell.Haste, 2)), creature.Instant)
	case u.Modes(status.Slow):
		return max(speed-creature.Speed(u.arena.spellExtra(spell.Slow, 2)), creature.Crawling)
	}
	return speed
}

// Attack returns the attack skill including commander and bloodlust bonuses.
func (u *Unit) Attack() int {
	a := u.Creature().Attack
	if c := u.Commander(); c != nil {
		a += c.AttackSkill()
	}
	if u.Modes(status.Bloodlust) {
		a += u.arena.spellExtra(spell.Bloodlust, 3)
	}
	return a
}

// Defense returns the defense skill including commander and spell bonuses.
// Disrupting rays and the moat lower it, never below 1.
func (u *Unit) Defense() int {
	d := u.Creature().Defense
	if c := u.Commander(); c != nil {
		d += c.DefenseSkill()
	}
	switch {
	case u.Modes(status.StoneSkin):
		d += u.arena.spellExtra(spell.StoneSkin, 3)
	case u.Modes(status.SteelSkin):
		d += u.arena.spellExtra(spell.SteelSkin, 5)
	}
	if u.disruptingRay > 0 {
		d = max(1, d-u.disruptingRay*u.arena.spellExtra(spell.DisruptingRay, 3))
	}
	if c := u.arena.castle; c != nil && c.Moat &&
		(IsMoatIndex(u.HeadIndex()) || (u.IsWide() && IsMoatIndex(u.TailIndex()))) {
		d = max(1, d-u.arena.moatPenalty)
	}
	return d
}

// Morale returns the army morale. Creatures immune to morale always report
// normal morale; an enemy morale suppressor lowers it by one.
func (u *Unit) Morale() int {
	if !u.Creature().AffectedByMorale() {
		return army.MoraleNormal
	}
	m := u.force.Army().Morale()
	if enemy := u.arena.EnemyForce(u.Color()); enemy != nil &&
		enemy.HasAbility(creature.MoraleSuppressor) && m > army.MoraleTreason {
		m--
	}
	return m
}

// Luck returns the army luck.
func (u *Unit) Luck() int { return u.force.Army().Luck() }

// SetRandomMorale rolls morale for the turn. Positive morale succeeds on
// d24 <= morale; negative morale fails on d12 <= -morale, and computer
// players shake off a failure one time in four.
func (u *Unit) SetRandomMorale() {
	m := u.Morale()
	r := u.arena.roller
	if m > 0 && r.Between(1, 24) <= m {
		u.SetModes(status.MoraleGood)
	} else if m < 0 && r.Between(1, 12) <= -m {
		if u.CurrentControl() == army.ControlHuman || r.Between(1, 4) != 1 {
			u.SetModes(status.MoraleBad)
		}
	}
}

// SetRandomLuck rolls luck for the next strike on d24.
func (u *Unit) SetRandomLuck() {
	l := u.Luck()
	r := u.arena.roller
	if l > 0 && r.Between(1, 24) <= l {
		u.SetModes(status.LuckGood)
	} else if l < 0 && r.Between(1, 24) <= -l {
		u.SetModes(status.LuckBad)
	}
}

// IsFlying reports whether the unit flies this turn. Slowed units walk.
func (u *Unit) IsFlying() bool { return u.Creature().Flying && !u.Modes(status.Slow) }

// IsArchers reports whether the unit can shoot.
func (u *Unit) IsArchers() bool { return u.Creature().IsArcher() && u.shots > 0 }

// IgnoreRetaliation reports whether enemies never answer the unit's strikes.
func (u *Unit) IgnoreRetaliation() bool { return u.Creature().Has(creature.IgnoreRetaliation) }

// IsHandFighting reports whether an enemy stands next to the unit.
func (u *Unit) IsHandFighting() bool {
	if !u.IsValid() || u.Modes(status.Tower) {
		return false
	}
	color := u.CurrentColor()
	for _, i := range u.arena.board.AroundUnitIndexes(u) {
		if other := u.arena.board.UnitAt(i); other != nil && other.Color() != color {
			return true
		}
	}
	return false
}

// IsAdjacentTo reports whether any cell of u touches any cell of other.
func (u *Unit) IsAdjacentTo(other *Unit) bool {
	for _, a := range u.position.Indexes() {
		for _, b := range other.position.Indexes() {
			if IsNearIndexes(a, b) {
				return true
			}
		}
	}
	return false
}

// CanReach reports whether the unit can strike cell index this turn. Flyers
// and unengaged archers reach everywhere; walkers need the distance within
// their speed, measured from the tail when a wide unit attacks behind itself.
func (u *Unit) CanReach(index int) bool {
	if !IsValidIndex(index) {
		return false
	}
	if u.IsFlying() || (u.IsArchers() && !u.IsHandFighting()) {
		return true
	}
	from := u.HeadIndex()
	if !IsValidIndex(from) {
		return false
	}
	if u.IsWide() && u.IsReflect() == IsNegativeDistance(from, index) {
		from = u.TailIndex()
	}
	return Distance(from, index) <= int(u.Speed(true, false))
}

// CanReachUnit reports whether the unit can strike target this turn. Towers
// stand off the board and are never reachable.
func (u *Unit) CanReachUnit(target *Unit) bool {
	if target.Modes(status.Tower) {
		return false
	}
	if target.IsWide() && u.CanReach(target.TailIndex()) {
		return true
	}
	return u.CanReach(target.HeadIndex())
}

// IsTwiceAttack reports whether the unit strikes twice. Double shooters only
// do so while no enemy is adjacent.
func (u *Unit) IsTwiceAttack() bool {
	def := u.Creature()
	if def.Has(creature.DoubleShotUnengaged) {
		return !u.IsHandFighting()
	}
	return def.Has(creature.DoubleAttack)
}

// AllowResponse reports whether the unit may retaliate now.
func (u *Unit) AllowResponse() bool {
	if u.Modes(status.Blind) && !u.blindAnswer {
		return false
	}
	if u.Modes(status.ParalyzeMagic | status.Hypnotize) {
		return false
	}
	return u.Creature().Has(creature.AlwaysRetaliate) || !u.Modes(status.Responded)
}

// SetResponse marks the unit as having retaliated this turn.
func (u *Unit) SetResponse() { u.SetModes(status.Responded) }

// SetBlindAnswer marks a blinded unit as answering a strike at half damage.
func (u *Unit) SetBlindAnswer(v bool) { u.blindAnswer = v }

// ResetBlind ends blindness; the unit loses its turn.
func (u *Unit) ResetBlind() {
	u.SetModes(status.Moved)
	u.clearEffect(status.Blind)
}

// PostAttackAction spends ammunition when the attack was a shot and ends the
// effects that last for one attack. ranged reflects the moment the unit
// struck, not the board after the exchange.
func (u *Unit) PostAttackAction(ranged bool) {
	if ranged && u.shots > 0 && !army.HasArtifact(u.Commander(), artifact.AmmoCart) {
		u.shots--
	}
	u.clearEffect(status.Berserker | status.Hypnotize)
	u.ResetModes(status.LuckGood | status.LuckBad)
}

// SpellMagic rolls the creature's strike effects and returns the spell to
// apply to the defender, or spell.None.
func (u *Unit) SpellMagic() spell.ID {
	def := u.Creature()
	for _, e := range []*creature.Effect{def.SecondaryEffect, def.SpellCaster} {
		if e != nil && u.arena.roller.Chance(e.Chance) {
			return e.Spell
		}
	}
	return spell.None
}

func (u *Unit) addEffect(mask status.Flags, duration int) {
	u.SetModes(mask)
	u.affected.Set(mask, duration)
}

func (u *Unit) clearEffect(mask status.Flags) {
	u.ResetModes(mask)
	u.affected.Remove(mask)
}

// String renders the unit as "archer#3 x12".
func (u *Unit) String() string {
	return fmt.Sprintf("%s#%d x%d", u.ID(), u.uid, u.Count())
}
