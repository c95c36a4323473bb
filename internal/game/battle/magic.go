package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// SpellResult reports whether a spell took hold on a unit.
type SpellResult int

// Spell outcomes.
const (
	SpellApplied SpellResult = iota
	SpellUnknown
	SpellInvalidTarget
	SpellWrongSide
	SpellImmune
	SpellResisted
)

var spellResultNames = [...]string{"applied", "unknown", "invalid_target", "wrong_side", "immune", "resisted"}

// String returns the outcome name.
func (r SpellResult) String() string {
	if r < 0 || int(r) >= len(spellResultNames) {
		return "invalid"
	}
	return spellResultNames[r]
}

// Applied reports whether the spell took hold.
func (r SpellResult) Applied() bool { return r == SpellApplied }

// TargetInfo records the effect of a spell on one unit.
type TargetInfo struct {
	Defender *Unit
	Damage   int
	Killed   int
	Resist   bool
	// Hop is the chain-lightning jump that reached the unit; 0 is the first target.
	Hop int
}

// guardArtifacts makes the carrier's units immune to a spell.
var guardArtifacts = map[spell.ID]artifact.ID{
	spell.Curse:       artifact.HolyPendant,
	spell.MassCurse:   artifact.HolyPendant,
	spell.Hypnotize:   artifact.PendantOfFreeWill,
	spell.DeathRipple: artifact.PendantOfLife,
	spell.DeathWave:   artifact.PendantOfLife,
	spell.Berserker:   artifact.SerenityPendant,
	spell.Blind:       artifact.SeeingEyePendant,
	spell.Paralyze:    artifact.KineticPendant,
	spell.HolyWord:    artifact.PendantOfDeath,
	spell.HolyShout:   artifact.PendantOfDeath,
	spell.Dispel:      artifact.WandOfNegation,
	spell.MassDispel:  artifact.WandOfNegation,
}

// spellArtifacts modifies spell damage by the artifacts of caster and victim.
type spellArtifacts struct {
	// boost adds its percentage when the caster carries it.
	boost artifact.ID
	// resist subtract their percentage when the victim's commander carries them.
	resist []artifact.ID
	// double doubles damage when the victim's commander carries it.
	double artifact.ID
	// halve halves damage when the victim's commander carries it.
	halve artifact.ID
}

var spellDamageArtifacts = map[spell.ID]spellArtifacts{
	spell.ColdRay:        {boost: artifact.EvercoldIcicle, resist: []artifact.ID{artifact.IceCloak, artifact.HeartOfIce}, double: artifact.HeartOfFire},
	spell.ColdRing:       {boost: artifact.EvercoldIcicle, resist: []artifact.ID{artifact.IceCloak, artifact.HeartOfIce}, double: artifact.HeartOfFire},
	spell.Fireball:       {boost: artifact.EverhotLavaRock, resist: []artifact.ID{artifact.FireCloak, artifact.HeartOfFire}, double: artifact.HeartOfIce},
	spell.Fireblast:      {boost: artifact.EverhotLavaRock, resist: []artifact.ID{artifact.FireCloak, artifact.HeartOfFire}, double: artifact.HeartOfIce},
	spell.LightningBolt:  {boost: artifact.LightningRod, resist: []artifact.ID{artifact.LightningHelm}},
	spell.ChainLightning: {boost: artifact.LightningRod, resist: []artifact.ID{artifact.LightningHelm}},
	spell.ElementalStorm: {halve: artifact.BroachShielding},
	spell.Armageddon:     {halve: artifact.BroachShielding},
}

// bloodlustDuration is fixed regardless of spell power.
const bloodlustDuration = 3

// MagicResist returns the percent chance that spell id fails on the unit
// when cast with the given power. 100 means the spell cannot work at all.
func (u *Unit) MagicResist(id spell.ID, power int) int {
	def, ok := u.arena.spells.Get(id)
	if !ok {
		return 100
	}
	if u.Modes(status.AntiMagic) {
		return 100
	}
	switch id {
	case spell.Cure, spell.MassCure:
		if !u.IsHaveDamage() && !u.Modes(status.Magic) {
			return 100
		}
	case spell.Resurrect, spell.ResurrectTrue, spell.AnimateDead:
		if u.Count() == u.initialCount {
			return 100
		}
	case spell.Dispel, spell.MassDispel:
		if !u.Modes(status.Magic) {
			return 100
		}
	case spell.Hypnotize:
		if power*def.ExtraValue < u.hp {
			return 100
		}
	}
	return spellResistance(u.Creature(), def)
}

// spellResistance is the creature's own resistance to a spell.
func spellResistance(c *creature.Def, def *spell.Def) int {
	if c.IsImmuneTo(def.ID) {
		return 100
	}
	if def.Mind && c.Has(creature.MindImmune) {
		return 100
	}
	switch def.Affects {
	case spell.AffectsLiving:
		if c.IsUndead() {
			return 100
		}
	case spell.AffectsUndead:
		if !c.IsUndead() {
			return 100
		}
	}
	return c.MagicResistance
}

// AllowApplySpell reports whether spell id may take hold on the unit when
// cast by hero (nil for creature casts).
func (u *Unit) AllowApplySpell(id spell.ID, hero army.Commander) SpellResult {
	def, ok := u.arena.spells.Get(id)
	if !ok {
		return SpellUnknown
	}
	if !u.IsValid() && (!def.IsResurrect() || !u.arena.isFreePosition(u.position, u)) {
		return SpellInvalidTarget
	}
	if u.Modes(status.MirrorImage) && (id == spell.AntiMagic || id == spell.MirrorImage) {
		return SpellImmune
	}
	if u.Modes(status.MirrorOwner) && id == spell.MirrorImage {
		return SpellImmune
	}
	if hero != nil && id != spell.ChainLightning {
		if def.ApplyToFriends() && u.Color() != hero.Color() {
			return SpellWrongSide
		}
		if def.ApplyToEnemies() && u.Color() == hero.Color() {
			return SpellWrongSide
		}
	}
	if u.MagicResist(id, u.arena.spellPower(hero)) >= 100 {
		return SpellImmune
	}
	if guard, ok := guardArtifacts[id]; ok && army.HasArtifact(u.Commander(), guard) {
		return SpellImmune
	}
	return SpellApplied
}

// ApplySpell applies spell id cast by hero (nil for creature casts) to the
// unit. Damage spells record their damage and kills in target.
func (u *Unit) ApplySpell(id spell.ID, hero army.Commander, target *TargetInfo) SpellResult {
	if target == nil {
		target = &TargetInfo{}
	}
	target.Defender = u
	if res := u.AllowApplySpell(id, hero); res != SpellApplied {
		u.arena.emit(Event{Kind: EventSpellRejected, Unit: u.uid, Spell: id})
		if u.arena.metrics != nil {
			u.arena.metrics.RecordSpell(string(id), false)
		}
		u.arena.logger.Debug("spell rejected",
			zap.String("spell", string(id)),
			zap.Stringer("unit", u),
			zap.Stringer("reason", res),
		)
		return res
	}

	def, _ := u.arena.spells.Get(id)
	power := u.arena.spellPower(hero)
	switch {
	case def.IsDamage():
		u.spellApplyDamage(def, power, hero, target)
	case def.IsRestore():
		u.spellRestoreAction(def, power, hero)
	default:
		u.spellModesAction(def, power, hero)
	}

	u.arena.emit(Event{Kind: EventSpellApplied, Unit: u.uid, Spell: id, Damage: target.Damage, Killed: target.Killed})
	if u.arena.metrics != nil {
		u.arena.metrics.RecordSpell(string(id), true)
	}
	return SpellApplied
}

func (u *Unit) spellModesAction(def *spell.Def, power int, hero army.Commander) {
	duration := power
	if hero != nil {
		duration += hero.ArtifactCount(artifact.WizardHat) * artifact.ExtraValue(artifact.WizardHat)
		duration += hero.ArtifactCount(artifact.EnchantedHourglass) * artifact.ExtraValue(artifact.EnchantedHourglass)
	}

	switch def.ID {
	case spell.Bless, spell.MassBless:
		u.clearEffect(status.Curse)
		u.addEffect(status.Bless, duration)
	case spell.Curse, spell.MassCurse:
		u.clearEffect(status.Bless)
		u.addEffect(status.Curse, duration)
	case spell.Haste, spell.MassHaste:
		u.clearEffect(status.Slow)
		u.addEffect(status.Haste, duration)
	case spell.Slow, spell.MassSlow:
		u.clearEffect(status.Haste)
		u.addEffect(status.Slow, duration)
	case spell.StoneSkin:
		u.clearEffect(status.SteelSkin)
		u.addEffect(status.StoneSkin, duration)
	case spell.SteelSkin:
		u.clearEffect(status.StoneSkin)
		u.addEffect(status.SteelSkin, duration)
	case spell.Bloodlust:
		u.addEffect(status.Bloodlust, bloodlustDuration)
	case spell.Shield, spell.MassShield:
		u.addEffect(status.Shield, duration)
	case spell.DragonSlayer:
		u.addEffect(status.DragonSlayer, duration)
	case spell.Dispel, spell.MassDispel:
		u.clearEffect(status.Magic)
	case spell.Blind:
		u.addEffect(status.Blind, duration)
		u.blindAnswer = false
	case spell.Paralyze:
		u.addEffect(status.Paralyze, duration)
	case spell.Stone:
		u.addEffect(status.Stone, duration)
	case spell.Berserker:
		u.addEffect(status.Berserker, duration)
	case spell.Hypnotize:
		if n := army.ArtifactCount(hero, artifact.GoldWatch); n > 0 {
			duration *= n * 2
		}
		u.addEffect(status.Hypnotize, duration)
	case spell.AntiMagic:
		u.clearEffect(status.Magic)
		u.addEffect(status.AntiMagic, duration)
	case spell.MirrorImage:
		u.affected.Set(status.MirrorOwner, duration)
	case spell.DisruptingRay:
		u.disruptingRay++
	}
}

func (u *Unit) spellApplyDamage(def *spell.Def, power int, hero army.Commander, target *TargetInfo) {
	dmg := def.Damage * power
	dmg = dmg * u.Creature().SpellDamageScale(def.ID) / 100

	if rule, ok := spellDamageArtifacts[def.ID]; ok {
		if rule.boost != "" && army.HasArtifact(hero, rule.boost) {
			dmg += dmg * artifact.ExtraValue(rule.boost) / 100
		}
		own := u.Commander()
		for _, r := range rule.resist {
			if army.HasArtifact(own, r) {
				dmg -= dmg * artifact.ExtraValue(r) / 100
			}
		}
		if rule.double != "" && army.HasArtifact(own, rule.double) {
			dmg *= 2
		}
		if rule.halve != "" && army.HasArtifact(own, rule.halve) {
			dmg /= 2
		}
	}
	if def.ID == spell.ChainLightning && target.Hop > 0 {
		dmg >>= min(target.Hop, 3)
	}

	target.Damage = dmg
	target.Killed = u.applyDamage(dmg, 0)
}

func (u *Unit) spellRestoreAction(def *spell.Def, power int, hero army.Commander) {
	if def.IsResurrect() {
		wasDead := !u.IsValid()
		if wasDead {
			u.arena.graveyard.Remove(u.uid)
		}
		points := def.Resurrect * power
		if army.HasArtifact(hero, artifact.Ankh) {
			points *= 2
		}
		u.Resurrect(points, false, def.ID == spell.Resurrect)
		if wasDead {
			u.reclaimCells()
		}
		return
	}
	u.clearEffect(status.BadMagic)
	u.hp = min(u.hp+def.Restore*power, u.Troop.HitPoints())
}
