package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// Strike is one blow of an attack exchange.
type Strike struct {
	Attacker uint32
	Defender uint32
	Damage   int
	Killed   int
	// Spell is the strike effect that took hold on the defender, if any.
	Spell spell.ID
}

// AttackResult lists the blows of one attack in order.
type AttackResult struct {
	Strikes    []Strike
	Retaliated bool
}

// Attack resolves attacker striking defender: the strike, the defender's
// answer when allowed, and a second strike for double attackers.
//
// Postcondition: Returns false without changing state when attacker cannot
// strike defender: one of them is dead, they are the same unit, or a melee
// attacker is not adjacent.
func (a *Arena) Attack(attacker, defender *Unit) (AttackResult, bool) {
	var res AttackResult
	if attacker == defender || !attacker.IsValid() || !defender.IsValid() {
		return res, false
	}
	ranged := attacker.IsArchers() && !attacker.IsHandFighting()
	if !ranged && (defender.Modes(status.Tower) || !attacker.IsAdjacentTo(defender)) {
		return res, false
	}

	if defender.Modes(status.Blind) {
		defender.SetBlindAnswer(true)
	}
	res.Strikes = append(res.Strikes, a.strike(attacker, defender))

	if !ranged && defender.IsValid() && attacker.IsValid() && !attacker.IgnoreRetaliation() && defender.AllowResponse() {
		res.Strikes = append(res.Strikes, a.strike(defender, attacker))
		defender.SetResponse()
		res.Retaliated = true
	}
	defender.SetBlindAnswer(false)

	if attacker.IsValid() && defender.IsValid() && attacker.IsTwiceAttack() &&
		!attacker.Modes(status.Blind|status.ParalyzeMagic) {
		res.Strikes = append(res.Strikes, a.strike(attacker, defender))
	}

	attacker.PostAttackAction(ranged)
	return res, true
}

func (a *Arena) strike(attacker, defender *Unit) Strike {
	dmg := attacker.Damage(defender)
	killed := defender.ApplyDamageFrom(attacker, dmg)
	s := Strike{Attacker: attacker.uid, Defender: defender.uid, Damage: dmg, Killed: killed}
	if a.metrics != nil {
		a.metrics.RecordStrike(attacker.ID(), dmg, killed)
	}
	a.logger.Debug("strike",
		zap.Stringer("attacker", attacker),
		zap.Stringer("defender", defender),
		zap.Int("damage", dmg),
		zap.Int("killed", killed),
	)
	if defender.IsValid() {
		if id := attacker.SpellMagic(); id != spell.None {
			if defender.ApplySpell(id, nil, nil).Applied() {
				s.Spell = id
			}
		}
	}
	return s
}

// CastResult lists the units a spell touched.
type CastResult struct {
	Targets  []TargetInfo
	Summoned *Unit
	Mirror   *Unit
}

// CastSpell casts spell id by hero (nil for creature casts) at target. Mass
// spells touch every unit that allows them, chain lightning jumps to up to
// three more units, and summoning spells ignore target. Units with partial
// magic resistance roll to shrug off spells that are not purely friendly.
//
// Postcondition: Returns SpellApplied when the spell took hold on at least one
// unit, or the rejection of the first target otherwise.
func (a *Arena) CastSpell(id spell.ID, hero army.Commander, target *Unit) (CastResult, SpellResult) {
	var res CastResult
	def, ok := a.spells.Get(id)
	if !ok {
		return res, SpellUnknown
	}
	power := a.spellPower(hero)

	if def.Summon != "" {
		if hero == nil {
			return res, SpellInvalidTarget
		}
		u, ok := a.SummonElemental(hero.Color(), id, power)
		if !ok {
			return res, SpellInvalidTarget
		}
		res.Summoned = u
		return res, SpellApplied
	}

	var victims []*Unit
	switch {
	case def.Mass:
		for _, u := range a.Units() {
			if u.IsValid() && !u.Modes(status.Tower) {
				victims = append(victims, u)
			}
		}
	case target == nil:
		return res, SpellInvalidTarget
	case id == spell.ChainLightning:
		victims = a.chainTargets(target)
	default:
		victims = []*Unit{target}
	}

	outcome := SpellInvalidTarget
	first := true
	for hop, u := range victims {
		info := TargetInfo{Defender: u}
		if id == spell.ChainLightning {
			info.Hop = hop
		}
		r := u.AllowApplySpell(id, hero)
		if r == SpellApplied {
			if resist := u.MagicResist(id, power); !def.ApplyToFriends() && resist > 0 && a.roller.Chance(resist) {
				info.Resist = true
				r = SpellResisted
				a.emit(Event{Kind: EventSpellRejected, Unit: u.uid, Spell: id})
			} else {
				r = u.ApplySpell(id, hero, &info)
			}
		}
		if def.Mass && r == SpellWrongSide {
			continue
		}
		res.Targets = append(res.Targets, info)
		if r == SpellApplied {
			outcome = SpellApplied
			if id == spell.MirrorImage {
				res.Mirror, _ = a.CreateMirrorImage(u)
			}
		} else if first {
			outcome = r
		}
		first = false
	}
	a.logger.Debug("spell cast",
		zap.String("spell", string(id)),
		zap.Int("targets", len(res.Targets)),
		zap.Stringer("result", outcome),
	)
	return res, outcome
}

// chainTargets returns target followed by up to three further units, each
// the nearest one not yet struck.
func (a *Arena) chainTargets(target *Unit) []*Unit {
	out := []*Unit{target}
	hit := map[uint32]bool{target.uid: true}
	from := target.HeadIndex()
	for len(out) < 4 {
		var next *Unit
		for _, u := range a.Units() {
			if hit[u.uid] || !u.IsValid() || u.Modes(status.Tower) {
				continue
			}
			if next == nil || Distance(from, u.HeadIndex()) < Distance(from, next.HeadIndex()) {
				next = u
			}
		}
		if next == nil {
			break
		}
		hit[next.uid] = true
		out = append(out, next)
		from = next.HeadIndex()
	}
	return out
}

// MoveTo moves u so its head stands on cell head.
//
// Postcondition: Returns false and leaves u in place when the cell is out of
// reach, impassable or occupied.
func (a *Arena) MoveTo(u *Unit, head int) bool {
	if !u.IsValid() || u.Modes(status.Tower) || !u.CanReach(head) {
		return false
	}
	if !u.SetPosition(head) {
		return false
	}
	a.emit(Event{Kind: EventMoved, Unit: u.uid, Cell: head})
	return true
}

// stepToward moves u to the reachable free position closest to target.
func (a *Arena) stepToward(u, target *Unit) bool {
	best, bestDist := -1, distanceBetween(u.position, target.position)
	for head := range BoardSize {
		if !u.CanReach(head) {
			continue
		}
		p := a.board.PositionFor(head, u.IsWide(), u.reflect)
		if !a.isFreePosition(p, u) {
			continue
		}
		if d := distanceBetween(p, target.position); d < bestDist {
			best, bestDist = head, d
		}
	}
	if best < 0 {
		return false
	}
	return a.MoveTo(u, best)
}

// distanceBetween returns the smallest distance between two positions.
func distanceBetween(p, q Position) int {
	best := BoardSize
	for _, x := range p.Indexes() {
		for _, y := range q.Indexes() {
			best = min(best, Distance(x, y))
		}
	}
	return best
}

// SelectTarget picks the unit u should attack: the enemy with the highest
// threat score against u, preferring the smaller expected answer and then
// the lower identifier. Berserk units attack the nearest unit.
func (a *Arena) SelectTarget(u *Unit) *Unit {
	color := u.CurrentColor()
	var (
		best        *Unit
		bestScore   int
		bestAnswer  int
		bestNearest int
	)
	for _, e := range a.Units() {
		if e == u || !e.IsValid() || e.Color() == color {
			continue
		}
		if e.Modes(status.Tower) && !(u.IsArchers() && !u.IsHandFighting()) {
			continue
		}
		if u.Modes(status.Berserker) {
			d := distanceBetween(u.position, e.position)
			if best == nil || d < bestNearest {
				best, bestNearest = e, d
			}
			continue
		}
		score := e.ScoreQuality(u)
		answer := e.CalculateRetaliationDamage(u.CalculateDamageUnit(e,
			float64(u.Count())*u.Creature().AverageDamage()))
		if best == nil || score > bestScore || (score == bestScore && answer < bestAnswer) {
			best, bestScore, bestAnswer = e, score, answer
		}
	}
	return best
}
