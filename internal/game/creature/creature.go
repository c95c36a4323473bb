// Package creature provides creature definitions, their capability table and
// the registry they are loaded into.
package creature

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/internal/game/spell"
)

// Speed is a movement tier.
type Speed int

// Speed tiers.
const (
	Standing Speed = iota
	Crawling
	VerySlow
	Slow
	Average
	Fast
	VeryFast
	UltraFast
	Blazing
	Instant
)

var speedNames = [...]string{"standing", "crawling", "very_slow", "slow", "average", "fast", "very_fast", "ultra_fast", "blazing", "instant"}

// String returns the tier name.
func (s Speed) String() string {
	if s < Standing || s > Instant {
		return fmt.Sprintf("speed(%d)", int(s))
	}
	return speedNames[s]
}

// UnmarshalYAML accepts either the tier name or its number.
func (s *Speed) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*s = Speed(n)
		return nil
	}
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	for i, candidate := range speedNames {
		if candidate == name {
			*s = Speed(i)
			return nil
		}
	}
	return fmt.Errorf("unknown speed %q", name)
}

// Ability is an entry of the capability table.
type Ability string

// Abilities that alter battle resolution.
const (
	DoubleAttack         Ability = "double_attack"
	DoubleShotUnengaged  Ability = "double_shot_unengaged"
	NoMeleePenalty       Ability = "no_melee_penalty"
	AlwaysRetaliate      Ability = "always_retaliate"
	IgnoreRetaliation    Ability = "ignore_retaliation"
	Regenerate           Ability = "regenerate"
	Undead               Ability = "undead"
	Dragon               Ability = "dragon"
	Elemental            Ability = "elemental"
	MindImmune           Ability = "mind_immune"
	MoraleSuppressor     Ability = "morale_suppressor"
	DoubleDamageVsUndead Ability = "double_damage_vs_undead"
)

// OnKill is a built-in reaction to killing enemy members.
type OnKill string

// On-kill reactions.
const (
	OnKillNone OnKill = ""
	// OnKillDrain restores the attacker by the hit points of the members it killed.
	OnKillDrain OnKill = "drain"
	// OnKillGrow resurrects the attacker by its own hit points per member killed,
	// past its initial size.
	OnKillGrow OnKill = "grow"
)

// Effect is a spell a creature applies by chance.
type Effect struct {
	Spell  spell.ID `yaml:"spell"`
	Chance int      `yaml:"chance"`
}

// Def is the static definition of a creature, loaded from YAML.
type Def struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Race      string    `yaml:"race"`
	Level     int       `yaml:"level"`
	Attack    int       `yaml:"attack"`
	Defense   int       `yaml:"defense"`
	DamageMin int       `yaml:"damage_min"`
	DamageMax int       `yaml:"damage_max"`
	HitPoints int       `yaml:"hit_points"`
	Speed     Speed     `yaml:"speed"`
	Shots     int       `yaml:"shots"`
	Wide      bool      `yaml:"wide"`
	Flying    bool      `yaml:"flying"`
	Upgrade   string    `yaml:"upgrade"`
	Abilities []Ability `yaml:"abilities"`
	// DoubleDamageVs lists creature IDs this creature deals double damage to.
	DoubleDamageVs []string `yaml:"double_damage_vs"`
	// SpellDamagePercent scales incoming damage from the listed spells.
	SpellDamagePercent map[spell.ID]int `yaml:"spell_damage_percent"`
	SpellImmunities    []spell.ID       `yaml:"spell_immunities"`
	// MagicResistance is the percent chance to shrug off any spell.
	MagicResistance int `yaml:"magic_resistance"`
	// SecondaryEffect is applied to the defender after a successful strike.
	SecondaryEffect *Effect `yaml:"secondary_effect"`
	// SpellCaster is a spell the creature may cast on its target after a strike.
	SpellCaster *Effect `yaml:"spell_caster"`
	OnKill      OnKill  `yaml:"on_kill"`
	// ScoreMultiplier weights the creature as a target in attack scoring.
	ScoreMultiplier float64 `yaml:"score_multiplier"`
	// LuaOnKill names a Lua function invoked after the creature kills members.
	LuaOnKill string `yaml:"lua_on_kill"`
}

// Has reports whether the creature carries ability a.
func (d *Def) Has(a Ability) bool { return slices.Contains(d.Abilities, a) }

// IsArcher reports whether the creature has a ranged attack.
func (d *Def) IsArcher() bool { return d.Shots > 0 }

// IsUndead reports whether the creature is undead.
func (d *Def) IsUndead() bool { return d.Has(Undead) }

// IsElemental reports whether the creature is an elemental.
func (d *Def) IsElemental() bool { return d.Has(Elemental) }

// IsDragon reports whether the creature is a dragon.
func (d *Def) IsDragon() bool { return d.Has(Dragon) }

// AffectedByMorale reports whether morale applies to the creature.
func (d *Def) AffectedByMorale() bool { return !d.IsUndead() && !d.IsElemental() }

// DoubleDamageAgainst reports whether the creature deals double damage to other.
func (d *Def) DoubleDamageAgainst(other *Def) bool {
	if d.Has(DoubleDamageVsUndead) && other.IsUndead() {
		return true
	}
	return slices.Contains(d.DoubleDamageVs, other.ID)
}

// IsImmuneTo reports whether the creature ignores spell id entirely.
func (d *Def) IsImmuneTo(id spell.ID) bool { return slices.Contains(d.SpellImmunities, id) }

// SpellDamageScale returns the percentage applied to damage from spell id.
//
// Postcondition: Returns 100 when no scaling is configured.
func (d *Def) SpellDamageScale(id spell.ID) int {
	if p, ok := d.SpellDamagePercent[id]; ok {
		return p
	}
	return 100
}

// AverageDamage returns the mean of the damage range.
func (d *Def) AverageDamage() float64 {
	return float64(d.DamageMin+d.DamageMax) / 2
}

// CountFromHitPoints returns how many members a hit-point pool represents,
// rounding a partial member up.
//
// Precondition: d.HitPoints > 0.
// Postcondition: Returns 0 iff hp <= 0.
func (d *Def) CountFromHitPoints(hp int) int {
	if hp <= 0 {
		return 0
	}
	count := hp / d.HitPoints
	if count*d.HitPoints < hp {
		count++
	}
	return count
}

// Strength returns the combat value of a single member. It weights attack and
// defense against the raw hit points and average damage and applies the
// capability multipliers.
//
// Postcondition: Returns a positive value for a valid definition.
func (d *Def) Strength() float64 {
	s := (1 + float64(d.Attack)*0.1 + float64(d.Defense)*0.05) * float64(d.HitPoints) * d.AverageDamage()
	if d.IsArcher() {
		s *= 1.25
	}
	if d.Flying {
		s *= 1.15
	}
	if d.Has(DoubleAttack) || d.Has(DoubleShotUnengaged) {
		s *= 1.5
	}
	if d.Has(IgnoreRetaliation) {
		s *= 1.2
	}
	if d.Has(Regenerate) || d.OnKill != OnKillNone {
		s *= 1.2
	}
	return s * (1 + float64(d.Speed)/8)
}

// Validate checks that the definition satisfies basic invariants.
//
// Postcondition: Returns nil iff the definition is usable, or an error on the
// first violation.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("creature: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("creature %q: name must not be empty", d.ID)
	}
	if d.HitPoints < 1 {
		return fmt.Errorf("creature %q: hit_points must be >= 1", d.ID)
	}
	if d.DamageMin < 1 || d.DamageMax < d.DamageMin {
		return fmt.Errorf("creature %q: damage range [%d, %d] is invalid", d.ID, d.DamageMin, d.DamageMax)
	}
	if d.Speed < Crawling || d.Speed > Instant {
		return fmt.Errorf("creature %q: speed %s is out of range", d.ID, d.Speed)
	}
	if d.Shots < 0 {
		return fmt.Errorf("creature %q: shots must not be negative", d.ID)
	}
	if d.MagicResistance < 0 || d.MagicResistance > 100 {
		return fmt.Errorf("creature %q: magic_resistance must be 0-100", d.ID)
	}
	if d.Upgrade == d.ID {
		return fmt.Errorf("creature %q: cannot upgrade into itself", d.ID)
	}
	switch d.OnKill {
	case OnKillNone, OnKillDrain, OnKillGrow:
	default:
		return fmt.Errorf("creature %q: on_kill must be drain or grow, got %q", d.ID, d.OnKill)
	}
	for _, e := range []*Effect{d.SecondaryEffect, d.SpellCaster} {
		if e != nil && (e.Spell == spell.None || e.Chance < 1 || e.Chance > 100) {
			return fmt.Errorf("creature %q: effect needs a spell and a chance of 1-100", d.ID)
		}
	}
	return nil
}
