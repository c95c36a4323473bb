// Package spell provides battle spell definitions and their registry.
package spell

import (
	"fmt"
)

// ID identifies a spell.
type ID string

// Spells with dedicated battle behaviour.
const (
	None           ID = ""
	Fireball       ID = "fireball"
	Fireblast      ID = "fireblast"
	LightningBolt  ID = "lightning_bolt"
	ChainLightning ID = "chain_lightning"
	Cure           ID = "cure"
	MassCure       ID = "mass_cure"
	Resurrect      ID = "resurrect"
	ResurrectTrue  ID = "resurrect_true"
	Haste          ID = "haste"
	MassHaste      ID = "mass_haste"
	Slow           ID = "slow"
	MassSlow       ID = "mass_slow"
	Blind          ID = "blind"
	Bless          ID = "bless"
	MassBless      ID = "mass_bless"
	StoneSkin      ID = "stone_skin"
	SteelSkin      ID = "steel_skin"
	Curse          ID = "curse"
	MassCurse      ID = "mass_curse"
	HolyWord       ID = "holy_word"
	HolyShout      ID = "holy_shout"
	AntiMagic      ID = "anti_magic"
	Dispel         ID = "dispel"
	MassDispel     ID = "mass_dispel"
	MagicArrow     ID = "magic_arrow"
	Berserker      ID = "berserker"
	Armageddon     ID = "armageddon"
	ElementalStorm ID = "elemental_storm"
	MeteorShower   ID = "meteor_shower"
	Paralyze       ID = "paralyze"
	Hypnotize      ID = "hypnotize"
	ColdRay        ID = "cold_ray"
	ColdRing       ID = "cold_ring"
	DisruptingRay  ID = "disrupting_ray"
	DeathRipple    ID = "death_ripple"
	DeathWave      ID = "death_wave"
	DragonSlayer   ID = "dragon_slayer"
	Bloodlust      ID = "bloodlust"
	AnimateDead    ID = "animate_dead"
	MirrorImage    ID = "mirror_image"
	Shield         ID = "shield"
	MassShield     ID = "mass_shield"
	Stone          ID = "stone"

	SummonEarthElemental ID = "summon_earth_elemental"
	SummonAirElemental   ID = "summon_air_elemental"
	SummonFireElemental  ID = "summon_fire_elemental"
	SummonWaterElemental ID = "summon_water_elemental"
)

// Target is the side a spell may be cast on.
type Target string

// Spell targets.
const (
	TargetFriends Target = "friends"
	TargetEnemies Target = "enemies"
	TargetAll     Target = "all"
)

// Affects restricts which creatures a spell can touch.
type Affects string

// Affects values. The empty value means every creature.
const (
	AffectsAny    Affects = ""
	AffectsLiving Affects = "living"
	AffectsUndead Affects = "undead"
)

// Def is the static definition of a spell, loaded from YAML.
type Def struct {
	ID    ID     `yaml:"id"`
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
	// Damage is multiplied by spell power.
	Damage int `yaml:"damage"`
	// Restore is hit points healed per spell power point.
	Restore int `yaml:"restore"`
	// Resurrect is hit points returned per spell power point.
	Resurrect int `yaml:"resurrect"`
	// ExtraValue carries the spell-specific magnitude: attack bonus, defense
	// bonus, speed tiers, damage divisor or resistance threshold.
	ExtraValue int     `yaml:"extra_value"`
	Target     Target  `yaml:"target"`
	Affects    Affects `yaml:"affects"`
	Mass       bool    `yaml:"mass"`
	Mind       bool    `yaml:"mind"`
	Summon     string  `yaml:"summon"`
}

// IsDamage reports whether the spell deals damage.
func (d *Def) IsDamage() bool { return d.Damage > 0 }

// IsRestore reports whether the spell heals or resurrects.
func (d *Def) IsRestore() bool { return d.Restore > 0 || d.Resurrect > 0 }

// IsResurrect reports whether the spell returns dead members.
func (d *Def) IsResurrect() bool { return d.Resurrect > 0 }

// ApplyToFriends reports whether the spell only targets the caster's side.
func (d *Def) ApplyToFriends() bool { return d.Target == TargetFriends }

// ApplyToEnemies reports whether the spell only targets the opposing side.
func (d *Def) ApplyToEnemies() bool { return d.Target == TargetEnemies }

// Validate checks that the definition satisfies basic invariants.
//
// Postcondition: Returns nil iff the definition is usable.
func (d *Def) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("spell: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("spell %q: name must not be empty", d.ID)
	}
	if d.Level < 1 || d.Level > 5 {
		return fmt.Errorf("spell %q: level must be 1-5, got %d", d.ID, d.Level)
	}
	if d.Damage < 0 || d.Restore < 0 || d.Resurrect < 0 || d.ExtraValue < 0 {
		return fmt.Errorf("spell %q: magnitudes must not be negative", d.ID)
	}
	switch d.Target {
	case TargetFriends, TargetEnemies, TargetAll:
	default:
		return fmt.Errorf("spell %q: target must be one of [friends, enemies, all], got %q", d.ID, d.Target)
	}
	switch d.Affects {
	case AffectsAny, AffectsLiving, AffectsUndead:
	default:
		return fmt.Errorf("spell %q: affects must be one of [living, undead] or empty, got %q", d.ID, d.Affects)
	}
	return nil
}

// IsColdSpell reports whether id belongs to the cold school.
func IsColdSpell(id ID) bool { return id == ColdRay || id == ColdRing }

// IsFireSpell reports whether id belongs to the fire school.
func IsFireSpell(id ID) bool { return id == Fireball || id == Fireblast }

// IsLightningSpell reports whether id belongs to the lightning school.
func IsLightningSpell(id ID) bool { return id == LightningBolt || id == ChainLightning }
