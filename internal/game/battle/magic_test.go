package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/battle"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/hero"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

func TestSpellResult_String(t *testing.T) {
	assert.Equal(t, "applied", battle.SpellApplied.String())
	assert.Equal(t, "wrong_side", battle.SpellWrongSide.String())
	assert.Equal(t, "resisted", battle.SpellResisted.String())
	assert.Equal(t, "invalid", battle.SpellResult(42).String())
	assert.True(t, battle.SpellApplied.Applied())
	assert.False(t, battle.SpellImmune.Applied())
}

func TestAllowApplySpell_Sides(t *testing.T) {
	w := newWorld(t)
	att, def := w.withHeroes(hero.Stats{Power: 1}, hero.Stats{Power: 1})
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	own, enemy := attackerUnit(a, 0), defenderUnit(a, 0)

	assert.Equal(t, battle.SpellApplied, own.AllowApplySpell(spell.Bless, att))
	assert.Equal(t, battle.SpellWrongSide, enemy.AllowApplySpell(spell.Bless, att))
	assert.Equal(t, battle.SpellWrongSide, own.AllowApplySpell(spell.Curse, att))
	assert.Equal(t, battle.SpellApplied, own.AllowApplySpell(spell.Curse, def))
	assert.Equal(t, battle.SpellApplied, own.AllowApplySpell(spell.ChainLightning, att), "chain lightning strikes anyone")
	assert.Equal(t, battle.SpellApplied, enemy.AllowApplySpell(spell.Bless, nil), "creature casts ignore sides")
	assert.Equal(t, battle.SpellUnknown, own.AllowApplySpell("teleport", att))

	assert.Equal(t, battle.SpellWrongSide, enemy.ApplySpell(spell.Bless, att, nil))
	assert.False(t, enemy.Modes(status.Bless))
	assert.Equal(t, 1, w.metrics.rejected["bless"])
}

func TestAllowApplySpell_Immunities(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("golem", withAbilities(creature.MindImmune), func(d *creature.Def) {
		d.SpellImmunities = []spell.ID{spell.Fireball}
	}), 5)
	w.defender.Add(w.def("zombie", withAbilities(creature.Undead)), 5)
	w.defender.Add(w.def("dragon", func(d *creature.Def) { d.MagicResistance = 100 }), 5)
	a := w.arena()
	living, golem, zombie, dragon := attackerUnit(a, 0), defenderUnit(a, 0), defenderUnit(a, 1), defenderUnit(a, 2)

	assert.Equal(t, battle.SpellImmune, golem.AllowApplySpell(spell.Fireball, nil))
	assert.Equal(t, battle.SpellApplied, golem.AllowApplySpell(spell.Fireblast, nil))
	assert.Equal(t, battle.SpellImmune, golem.AllowApplySpell(spell.Blind, nil))
	assert.Equal(t, battle.SpellApplied, golem.AllowApplySpell(spell.Slow, nil))

	assert.Equal(t, battle.SpellImmune, zombie.AllowApplySpell(spell.DeathRipple, nil))
	assert.Equal(t, battle.SpellApplied, zombie.AllowApplySpell(spell.HolyWord, nil))
	assert.Equal(t, battle.SpellImmune, living.AllowApplySpell(spell.HolyWord, nil))
	assert.Equal(t, battle.SpellApplied, living.AllowApplySpell(spell.DeathRipple, nil))

	assert.Equal(t, battle.SpellImmune, dragon.AllowApplySpell(spell.MagicArrow, nil))
	assert.Equal(t, 100, dragon.MagicResist(spell.Bless, 3))
	assert.Zero(t, living.MagicResist(spell.Bless, 3))
}

func TestAllowApplySpell_Conditional(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 10)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	u := attackerUnit(a, 0)

	assert.Equal(t, battle.SpellImmune, u.AllowApplySpell(spell.Cure, nil), "nothing to cure")
	assert.Equal(t, battle.SpellImmune, u.AllowApplySpell(spell.Resurrect, nil), "nobody to raise")
	assert.Equal(t, battle.SpellImmune, u.AllowApplySpell(spell.Dispel, nil), "nothing to dispel")
	assert.Equal(t, battle.SpellImmune, u.AllowApplySpell(spell.AnimateDead, nil), "the living stay dead")

	require.True(t, u.ApplySpell(spell.Bless, nil, nil).Applied())
	assert.Equal(t, battle.SpellApplied, u.AllowApplySpell(spell.Dispel, nil))
	assert.Equal(t, battle.SpellApplied, u.AllowApplySpell(spell.Cure, nil))
	u.ApplyDamage(15)
	assert.Equal(t, battle.SpellApplied, u.AllowApplySpell(spell.Resurrect, nil))

	// 3 * 25 power against a pool of 85.
	assert.Equal(t, battle.SpellImmune, u.AllowApplySpell(spell.Hypnotize, nil))
	u.ApplyDamage(15)
	assert.Equal(t, battle.SpellApplied, u.AllowApplySpell(spell.Hypnotize, nil))
}

func TestAllowApplySpell_GuardArtifact(t *testing.T) {
	w := newWorld(t)
	att, def := w.withHeroes(hero.Stats{Power: 1}, hero.Stats{Power: 1})
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	enemy := defenderUnit(a, 0)

	assert.Equal(t, battle.SpellApplied, enemy.AllowApplySpell(spell.Blind, att))
	def.AddArtifact(artifact.SeeingEyePendant)
	assert.Equal(t, battle.SpellImmune, enemy.AllowApplySpell(spell.Blind, att))
	assert.Equal(t, battle.SpellApplied, enemy.AllowApplySpell(spell.Paralyze, att))
	def.AddArtifact(artifact.HolyPendant)
	assert.Equal(t, battle.SpellImmune, enemy.AllowApplySpell(spell.MassCurse, att))
}

func TestApplySpell_Durations(t *testing.T) {
	w := newWorld(t)
	att, _ := w.withHeroes(hero.Stats{Power: 2}, hero.Stats{Power: 1})
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("d"), 2)
	a := w.arena()
	u, enemy := attackerUnit(a, 0), defenderUnit(a, 0)

	require.True(t, u.ApplySpell(spell.Haste, att, nil).Applied())
	assert.Equal(t, 2, u.AffectedDuration(status.Haste))

	att.AddArtifact(artifact.WizardHat)
	att.AddArtifact(artifact.EnchantedHourglass)
	require.True(t, u.ApplySpell(spell.Bless, att, nil).Applied())
	assert.Equal(t, 14, u.AffectedDuration(status.Bless))
	require.True(t, u.ApplySpell(spell.Bloodlust, att, nil).Applied())
	assert.Equal(t, 3, u.AffectedDuration(status.Bloodlust), "bloodlust ignores power")

	att.AddArtifact(artifact.GoldWatch)
	require.True(t, enemy.ApplySpell(spell.Hypnotize, att, nil).Applied())
	assert.Equal(t, 28, enemy.AffectedDuration(status.Hypnotize))

	require.True(t, u.ApplySpell(spell.Slow, nil, nil).Applied())
	assert.False(t, u.Modes(status.Haste))
	assert.Zero(t, u.AffectedDuration(status.Haste))
	assert.Equal(t, 3, u.AffectedDuration(status.Slow), "default duration without a caster")
}

func TestApplySpell_DispelAndAntiMagic(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	u := attackerUnit(a, 0)

	require.True(t, u.ApplySpell(spell.Bless, nil, nil).Applied())
	require.True(t, u.ApplySpell(spell.Slow, nil, nil).Applied())
	require.True(t, u.ApplySpell(spell.Dispel, nil, nil).Applied())
	assert.False(t, u.Modes(status.Magic))
	assert.Empty(t, u.CurrentSpellEffects())

	require.True(t, u.ApplySpell(spell.Curse, nil, nil).Applied())
	require.True(t, u.ApplySpell(spell.AntiMagic, nil, nil).Applied())
	assert.False(t, u.Modes(status.Curse))
	assert.True(t, u.Modes(status.AntiMagic))
	assert.Equal(t, battle.SpellImmune, u.ApplySpell(spell.Bless, nil, nil))
	assert.Equal(t, battle.SpellImmune, u.ApplySpell(spell.MagicArrow, nil, nil))
}

func TestApplySpell_Damage(t *testing.T) {
	w := newWorld(t)
	att, def := w.withHeroes(hero.Stats{Power: 3}, hero.Stats{Power: 1})
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("d"), 10)
	w.defender.Add(w.def("golem", func(d *creature.Def) {
		d.SpellDamagePercent = map[spell.ID]int{spell.MagicArrow: 50}
	}), 10)
	w.defender.Add(w.def("e", withHP(100)), 10)
	a := w.arena()
	d, golem, e := defenderUnit(a, 0), defenderUnit(a, 1), defenderUnit(a, 2)

	var info battle.TargetInfo
	require.True(t, d.ApplySpell(spell.MagicArrow, att, &info).Applied())
	assert.Equal(t, 30, info.Damage)
	assert.Equal(t, 3, info.Killed)
	assert.Same(t, d, info.Defender)
	assert.Equal(t, 7, d.Count())

	info = battle.TargetInfo{}
	require.True(t, golem.ApplySpell(spell.MagicArrow, att, &info).Applied())
	assert.Equal(t, 15, info.Damage)

	att.AddArtifact(artifact.EvercoldIcicle)
	info = battle.TargetInfo{}
	e.ApplySpell(spell.ColdRay, att, &info)
	assert.Equal(t, 90, info.Damage, "the icicle adds half")

	def.AddArtifact(artifact.IceCloak)
	info = battle.TargetInfo{}
	e.ApplySpell(spell.ColdRay, att, &info)
	assert.Equal(t, 45, info.Damage, "the cloak takes half back")

	def.AddArtifact(artifact.HeartOfFire)
	info = battle.TargetInfo{}
	e.ApplySpell(spell.ColdRay, att, &info)
	assert.Equal(t, 90, info.Damage, "a heart of fire doubles cold")

	def.AddArtifact(artifact.BroachShielding)
	info = battle.TargetInfo{}
	e.ApplySpell(spell.ElementalStorm, att, &info)
	assert.Equal(t, 37, info.Damage)
}

func TestCastSpell_ChainLightning(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a", withHP(100)), 10)
	for _, id := range []string{"d1", "d2", "d3"} {
		w.defender.Add(w.def(id, withHP(100)), 10)
	}
	a := w.arena()
	target := defenderUnit(a, 0)

	res, outcome := a.CastSpell(spell.ChainLightning, nil, target)
	require.Equal(t, battle.SpellApplied, outcome)
	require.Len(t, res.Targets, 4)
	assert.Same(t, target, res.Targets[0].Defender)
	seen := map[*battle.Unit]bool{}
	for hop, info := range res.Targets {
		assert.Equal(t, hop, info.Hop)
		assert.Equal(t, 120>>hop, info.Damage, "hop %d", hop)
		seen[info.Defender] = true
	}
	assert.Len(t, seen, 4, "no unit is struck twice")
	assert.True(t, seen[attackerUnit(a, 0)], "the chain reaches friends too")
}

func TestCastSpell_PartialResistance(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("dwarf", func(d *creature.Def) { d.MagicResistance = 50 }), 5)
	a := w.arena()
	dwarf := defenderUnit(a, 0)

	res, outcome := a.CastSpell(spell.Curse, nil, dwarf)
	assert.Equal(t, battle.SpellResisted, outcome)
	require.Len(t, res.Targets, 1)
	assert.True(t, res.Targets[0].Resist)
	assert.False(t, dwarf.Modes(status.Curse))

	_, outcome = a.CastSpell(spell.Bless, nil, dwarf)
	assert.Equal(t, battle.SpellApplied, outcome, "friendly spells are never resisted")

	w.source.(*fixedSource).val = 99
	_, outcome = a.CastSpell(spell.Curse, nil, dwarf)
	assert.Equal(t, battle.SpellApplied, outcome)
}

func TestCastSpell_Mass(t *testing.T) {
	w := newWorld(t)
	att, _ := w.withHeroes(hero.Stats{Power: 1}, hero.Stats{Power: 1})
	w.attacker.Add(w.def("a"), 5)
	w.attacker.Add(w.def("b"), 5)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()

	res, outcome := a.CastSpell(spell.MassBless, att, nil)
	require.Equal(t, battle.SpellApplied, outcome)
	assert.Len(t, res.Targets, 2)
	assert.True(t, attackerUnit(a, 0).Modes(status.Bless))
	assert.True(t, attackerUnit(a, 1).Modes(status.Bless))
	assert.False(t, defenderUnit(a, 0).Modes(status.Bless))

	res, outcome = a.CastSpell(spell.MassCurse, att, nil)
	require.Equal(t, battle.SpellApplied, outcome)
	assert.Len(t, res.Targets, 1)
	assert.True(t, defenderUnit(a, 0).Modes(status.Curse))

	_, outcome = a.CastSpell(spell.Bless, att, nil)
	assert.Equal(t, battle.SpellInvalidTarget, outcome, "single-target spells need a target")
	_, outcome = a.CastSpell("teleport", att, nil)
	assert.Equal(t, battle.SpellUnknown, outcome)
}

func TestApplySpell_Cure(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 10)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	u := attackerUnit(a, 0)

	u.ApplyDamage(25)
	require.Equal(t, 8, u.Count())
	require.True(t, u.ApplySpell(spell.Curse, nil, nil).Applied())
	require.True(t, u.ApplySpell(spell.Haste, nil, nil).Applied())

	require.True(t, u.ApplySpell(spell.Cure, nil, nil).Applied())
	assert.Equal(t, 80, u.HitPoints(), "cure heals the living members only")
	assert.Equal(t, 8, u.Count())
	assert.False(t, u.Modes(status.Curse))
	assert.True(t, u.Modes(status.Haste), "cure keeps good magic")
}

func TestApplySpell_ResurrectDeadUnit(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 10)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	u := attackerUnit(a, 0)

	u.ApplyDamage(1000)
	require.False(t, u.IsValid())
	require.True(t, a.Graveyard().Contains(u.UID()))

	require.True(t, u.ApplySpell(spell.Resurrect, nil, nil).Applied())
	assert.True(t, u.IsValid())
	assert.Equal(t, 10, u.Count())
	assert.Equal(t, 100, u.HitPoints())
	assert.Equal(t, 10, u.Dead(), "plain resurrection keeps the dead count")
	assert.Same(t, u, a.Board().UnitAt(0))
	assert.False(t, a.Graveyard().Contains(u.UID()))
	assert.True(t, u.Modes(status.Moved), "raised units wait for the next turn")
}

func TestApplySpell_ResurrectOccupiedCell(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 10)
	w.attacker.Add(w.def("b"), 10)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	u, v := attackerUnit(a, 0), attackerUnit(a, 1)
	head := u.HeadIndex()

	u.ApplyDamage(1000)
	require.False(t, u.IsValid())
	place(t, v, head)

	assert.Equal(t, battle.SpellInvalidTarget, u.AllowApplySpell(spell.Resurrect, nil))
	assert.Equal(t, battle.SpellInvalidTarget, u.ApplySpell(spell.ResurrectTrue, nil, nil))
	assert.False(t, u.IsValid())
	assert.Zero(t, u.HitPoints())
	assert.True(t, a.Graveyard().Contains(u.UID()), "rejected casts leave the dead in the graveyard")
	assert.Same(t, v, a.Board().UnitAt(head))

	place(t, v, 49)
	require.True(t, u.ApplySpell(spell.Resurrect, nil, nil).Applied())
	assert.Same(t, u, a.Board().UnitAt(head))
}

func TestApplySpell_ResurrectTrueWithAnkh(t *testing.T) {
	w := newWorld(t)
	att, _ := w.withHeroes(hero.Stats{Power: 1}, hero.Stats{Power: 1})
	w.attacker.Add(w.def("a"), 20)
	w.attacker.Add(w.def("b"), 20)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	u, v := attackerUnit(a, 0), attackerUnit(a, 1)
	u.ApplyDamage(150)
	v.ApplyDamage(150)
	require.Equal(t, 5, u.Count())

	require.True(t, u.ApplySpell(spell.ResurrectTrue, att, nil).Applied())
	assert.Equal(t, 10, u.Count())
	assert.Equal(t, 10, u.Dead())

	att.AddArtifact(artifact.Ankh)
	require.True(t, v.ApplySpell(spell.ResurrectTrue, att, nil).Applied())
	assert.Equal(t, 15, v.Count(), "the ankh doubles resurrection")
	assert.Equal(t, 5, v.Dead())
}

func TestMirrorImage(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a", withShots(5)), 10)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	owner := attackerUnit(a, 0)

	res, outcome := a.CastSpell(spell.MirrorImage, nil, owner)
	require.Equal(t, battle.SpellApplied, outcome)
	image := res.Mirror
	require.NotNil(t, image)
	assert.Same(t, image, owner.Mirror())
	assert.Same(t, owner, image.Mirror())
	assert.True(t, owner.Modes(status.MirrorOwner))
	assert.True(t, image.Modes(status.MirrorImage))
	assert.Equal(t, owner.Count(), image.Count())
	assert.Equal(t, 5, image.Shots())
	assert.Equal(t, 1, image.HeadIndex(), "nearest free cell")
	assert.Len(t, a.Attacker().Units(), 2)
	assert.Same(t, image, a.UnitByUID(image.UID()))

	assert.Equal(t, battle.SpellImmune, owner.AllowApplySpell(spell.MirrorImage, nil))
	assert.Equal(t, battle.SpellImmune, image.AllowApplySpell(spell.MirrorImage, nil))
	assert.Equal(t, battle.SpellImmune, image.AllowApplySpell(spell.AntiMagic, nil))
	assert.Zero(t, image.CalculateRetaliationDamage(1))

	assert.Equal(t, 10, image.ApplyDamage(1), "images vanish on any hit")
	assert.False(t, image.IsValid())
	assert.Nil(t, owner.Mirror())
	assert.False(t, owner.Modes(status.MirrorOwner))
	assert.False(t, a.Graveyard().Contains(image.UID()))
	assert.Equal(t, 1, w.metrics.images)
}

func TestMirrorImage_OwnerDeath(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 10)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	owner := attackerUnit(a, 0)
	var removed []uint32
	a.Subscribe(func(e battle.Event) {
		if e.Kind == battle.EventMirrorImageRemoved {
			removed = append(removed, e.Unit)
		}
	})

	res, _ := a.CastSpell(spell.MirrorImage, nil, owner)
	image := res.Mirror
	require.NotNil(t, image)
	head := image.HeadIndex()

	owner.ApplyDamage(1000)
	assert.False(t, image.IsValid())
	assert.Nil(t, a.Board().UnitAt(head))
	assert.Equal(t, []uint32{image.UID()}, removed)
}

func TestMirrorImage_Expires(t *testing.T) {
	w := newWorld(t)
	w.attacker.Add(w.def("a"), 10)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()
	owner := attackerUnit(a, 0)

	res, _ := a.CastSpell(spell.MirrorImage, nil, owner)
	image := res.Mirror
	require.NotNil(t, image)
	assert.Equal(t, 3, owner.AffectedDuration(status.MirrorOwner))

	a.NewTurn()
	a.NewTurn()
	assert.True(t, image.IsValid())
	a.NewTurn()
	assert.False(t, image.IsValid())
	assert.Nil(t, owner.Mirror())
	assert.True(t, owner.IsValid())
}

func TestSummonElemental(t *testing.T) {
	w := newWorld(t)
	att, _ := w.withHeroes(hero.Stats{Power: 2}, hero.Stats{Power: 1})
	w.def("earth_elemental", withAbilities(creature.Elemental))
	w.attacker.Add(w.def("a"), 5)
	w.defender.Add(w.def("d"), 5)
	a := w.arena()

	_, outcome := a.CastSpell(spell.SummonEarthElemental, nil, nil)
	assert.Equal(t, battle.SpellInvalidTarget, outcome, "summoning needs a hero")
	_, outcome = a.CastSpell(spell.SummonAirElemental, att, nil)
	assert.Equal(t, battle.SpellInvalidTarget, outcome, "unknown creature")

	res, outcome := a.CastSpell(spell.SummonEarthElemental, att, nil)
	require.Equal(t, battle.SpellApplied, outcome)
	u := res.Summoned
	require.NotNil(t, u)
	assert.Equal(t, 6, u.Count())
	assert.Equal(t, army.ColorBlue, u.Color())
	assert.True(t, u.Modes(status.Summoned))
	assert.True(t, u.Modes(status.Moved), "summoned units act next turn")
	assert.Len(t, a.Attacker().Units(), 2)

	head := u.HeadIndex()
	u.ApplyDamage(1000)
	assert.Empty(t, a.Graveyard().UnitsAt(head), "summoned units leave no corpse")
}
