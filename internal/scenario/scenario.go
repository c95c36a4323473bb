// Package scenario loads battle setups from YAML and turns them into armies,
// heroes and castle fortifications ready for an arena.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/battle"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/hero"
	"github.com/cory-johannsen/warband/internal/game/skill"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// Troop is a creature stack. Count is a dice expression such as "3d10+5"
// or a plain number.
type Troop struct {
	Creature string `yaml:"creature"`
	Count    string `yaml:"count"`
}

// Hero describes a commander.
type Hero struct {
	Name      string            `yaml:"name"`
	Attack    int               `yaml:"attack"`
	Defense   int               `yaml:"defense"`
	Power     int               `yaml:"power"`
	Knowledge int               `yaml:"knowledge"`
	Morale    int               `yaml:"morale"`
	Luck      int               `yaml:"luck"`
	Skills    map[string]string `yaml:"skills"`
	Artifacts []string          `yaml:"artifacts"`
}

// Side is one army in the battle.
type Side struct {
	Color   string  `yaml:"color"`
	Control string  `yaml:"control"`
	Spread  bool    `yaml:"spread"`
	Hero    *Hero   `yaml:"hero"`
	Troops  []Troop `yaml:"troops"`
	// OpeningSpells are cast by the hero before the first round.
	OpeningSpells []spell.ID `yaml:"opening_spells"`
}

// Castle describes the defender's fortifications.
type Castle struct {
	Moat   bool    `yaml:"moat"`
	Walls  bool    `yaml:"walls"`
	Towers []Troop `yaml:"towers"`
}

// Scenario is a complete battle setup.
type Scenario struct {
	Name     string  `yaml:"name"`
	Attacker Side    `yaml:"attacker"`
	Defender Side    `yaml:"defender"`
	Castle   *Castle `yaml:"castle"`
}

// Parse decodes and validates a YAML scenario. Unknown keys are rejected.
//
// Postcondition: Returns a valid Scenario or a non-nil error.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return s, nil
}

// Validate checks the scenario shape. Creature and spell IDs are resolved
// later by Build.
func (s *Scenario) Validate() error {
	var errs []string
	if s.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	att := validateSide("attacker", s.Attacker)
	def := validateSide("defender", s.Defender)
	errs = append(errs, att...)
	errs = append(errs, def...)
	if len(att) == 0 && len(def) == 0 && s.Attacker.Color == s.Defender.Color {
		errs = append(errs, fmt.Sprintf("attacker and defender are both %s", s.Attacker.Color))
	}
	if s.Castle != nil {
		for i, t := range s.Castle.Towers {
			if err := validateTroop(t); err != nil {
				errs = append(errs, fmt.Sprintf("castle.towers[%d]: %v", i, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid scenario: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSide(name string, side Side) []string {
	var errs []string
	if c, err := army.ParseColor(side.Color); err != nil || c == army.ColorNone {
		errs = append(errs, fmt.Sprintf("%s.color %q is not a player color", name, side.Color))
	}
	if _, err := army.ParseControl(side.Control); err != nil {
		errs = append(errs, fmt.Sprintf("%s.control: %v", name, err))
	}
	switch n := len(side.Troops); {
	case n == 0:
		errs = append(errs, fmt.Sprintf("%s.troops must not be empty", name))
	case n > army.MaxTroops:
		errs = append(errs, fmt.Sprintf("%s.troops holds %d stacks, at most %d fit", name, n, army.MaxTroops))
	}
	for i, t := range side.Troops {
		if err := validateTroop(t); err != nil {
			errs = append(errs, fmt.Sprintf("%s.troops[%d]: %v", name, i, err))
		}
	}
	if len(side.OpeningSpells) > 0 && side.Hero == nil {
		errs = append(errs, fmt.Sprintf("%s.opening_spells need a hero", name))
	}
	if side.Hero != nil {
		for s, l := range side.Hero.Skills {
			if !knownSkill(skill.Secondary(s)) {
				errs = append(errs, fmt.Sprintf("%s.hero.skills: unknown skill %q", name, s))
			}
			if _, err := skill.ParseLevel(l); err != nil {
				errs = append(errs, fmt.Sprintf("%s.hero.skills.%s: %v", name, s, err))
			}
		}
		for _, id := range side.Hero.Artifacts {
			if !artifact.Known(artifact.ID(id)) {
				errs = append(errs, fmt.Sprintf("%s.hero.artifacts: unknown artifact %q", name, id))
			}
		}
	}
	return errs
}

func validateTroop(t Troop) error {
	if t.Creature == "" {
		return errors.New("creature must not be empty")
	}
	e, err := dice.Parse(t.Count)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if e.Min() < 1 {
		return fmt.Errorf("count %q can roll below 1", t.Count)
	}
	return nil
}

func knownSkill(s skill.Secondary) bool {
	switch s {
	case skill.Archery, skill.Diplomacy, skill.Leadership, skill.Luck:
		return true
	}
	return false
}

// Battle holds the built participants of a scenario.
type Battle struct {
	Name     string
	Attacker *army.Army
	Defender *army.Army
	Castle   *battle.Castle
	// Heroes are nil for sides led by no one.
	AttackerHero *hero.Hero
	DefenderHero *hero.Hero

	spells         *spell.Registry
	attackerSpells []spell.ID
	defenderSpells []spell.ID
}

// Build resolves every creature and spell and rolls the troop counts.
//
// Postcondition: Returns the participants or an error naming the first
// unknown creature, spell or non-archer tower.
func (s *Scenario) Build(creatures *creature.Registry, spells *spell.Registry, roller *dice.Roller) (*Battle, error) {
	b := &Battle{Name: s.Name, spells: spells}
	var err error
	if b.Attacker, b.AttackerHero, err = buildSide(s.Attacker, creatures, spells, roller); err != nil {
		return nil, fmt.Errorf("attacker: %w", err)
	}
	if b.Defender, b.DefenderHero, err = buildSide(s.Defender, creatures, spells, roller); err != nil {
		return nil, fmt.Errorf("defender: %w", err)
	}
	b.attackerSpells = s.Attacker.OpeningSpells
	b.defenderSpells = s.Defender.OpeningSpells

	if s.Castle != nil {
		b.Castle = &battle.Castle{Moat: s.Castle.Moat, Walls: s.Castle.Walls}
		for i, t := range s.Castle.Towers {
			tower, err := buildTroop(t, creatures, roller)
			if err != nil {
				return nil, fmt.Errorf("castle tower %d: %w", i, err)
			}
			if !tower.Creature().IsArcher() {
				return nil, fmt.Errorf("castle tower %d: %s cannot shoot", i, tower.ID())
			}
			b.Castle.Towers = append(b.Castle.Towers, tower)
		}
	}
	return b, nil
}

func buildSide(side Side, creatures *creature.Registry, spells *spell.Registry, roller *dice.Roller) (*army.Army, *hero.Hero, error) {
	color, err := army.ParseColor(side.Color)
	if err != nil {
		return nil, nil, err
	}
	control, err := army.ParseControl(side.Control)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range side.OpeningSpells {
		if _, err := spells.Lookup(id); err != nil {
			return nil, nil, err
		}
	}

	var (
		a *army.Army
		h *hero.Hero
	)
	if side.Hero != nil {
		h = hero.New(side.Hero.Name, color, control, hero.Stats{
			Attack:    side.Hero.Attack,
			Defense:   side.Hero.Defense,
			Power:     side.Hero.Power,
			Knowledge: side.Hero.Knowledge,
			Morale:    side.Hero.Morale,
			Luck:      side.Hero.Luck,
		})
		for s, l := range side.Hero.Skills {
			level, err := skill.ParseLevel(l)
			if err != nil {
				return nil, nil, err
			}
			h.SetSecondarySkill(skill.Secondary(s), level)
		}
		for _, id := range side.Hero.Artifacts {
			h.AddArtifact(artifact.ID(id))
		}
		a = h.Army()
	} else {
		a = army.New(color, control)
	}
	a.SetSpreadFormation(side.Spread)

	for i, t := range side.Troops {
		troop, err := buildTroop(t, creatures, roller)
		if err != nil {
			return nil, nil, fmt.Errorf("troop %d: %w", i, err)
		}
		*a.Slot(i) = troop
	}
	return a, h, nil
}

func buildTroop(t Troop, creatures *creature.Registry, roller *dice.Roller) (army.Troop, error) {
	def, err := creatures.Lookup(t.Creature)
	if err != nil {
		return army.Troop{}, err
	}
	count, err := roller.RollExpr(t.Count)
	if err != nil {
		return army.Troop{}, fmt.Errorf("count: %w", err)
	}
	return army.NewTroop(def, max(1, count)), nil
}

// OpeningCast records one opening spell.
type OpeningCast struct {
	Caster string
	Spell  spell.ID
	Result battle.SpellResult
}

// CastOpeningSpells has each hero cast their opening spells in order, the
// attacker first. Friendly spells land on the caster's first fighting unit
// and hostile ones on the enemy's first; mass and summoning spells ignore
// the target.
func (b *Battle) CastOpeningSpells(a *battle.Arena, logger *zap.Logger) []OpeningCast {
	var out []OpeningCast
	casts := []struct {
		hero   *hero.Hero
		spells []spell.ID
	}{
		{b.AttackerHero, b.attackerSpells},
		{b.DefenderHero, b.defenderSpells},
	}
	for _, c := range casts {
		if c.hero == nil {
			continue
		}
		for _, id := range c.spells {
			target := b.openingTarget(a, c.hero.Color(), id)
			_, res := a.CastSpell(id, c.hero, target)
			logger.Info("opening spell",
				zap.String("hero", c.hero.Name()),
				zap.String("spell", string(id)),
				zap.Stringer("result", res),
			)
			out = append(out, OpeningCast{Caster: c.hero.Name(), Spell: id, Result: res})
		}
	}
	return out
}

func (b *Battle) openingTarget(a *battle.Arena, color army.Color, id spell.ID) *battle.Unit {
	side := a.EnemyForce(color)
	if d, ok := b.spells.Get(id); ok && d.ApplyToFriends() {
		side = a.Force(color)
	}
	if side == nil {
		return nil
	}
	for _, u := range side.ValidUnits() {
		if !u.Modes(status.Tower) {
			return u
		}
	}
	return nil
}
