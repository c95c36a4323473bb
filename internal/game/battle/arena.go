// Package battle implements tactical combat between two armies on a hex
// board: units, damage and retaliation, spells, mirror images, target
// scoring and an automated battle driver.
package battle

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// MetricsRecorder receives battle counters.
type MetricsRecorder interface {
	RecordStrike(creature string, damage, killed int)
	RecordUnitDestroyed(creature string, mirrorImage bool)
	RecordSpell(spell string, applied bool)
}

// KillHooks runs scripted reactions after a unit kills enemy members.
type KillHooks interface {
	CallKillHook(hook string, attacker, victim uint32, killed int)
}

// Castle describes the defender's fortifications.
type Castle struct {
	// Moat lowers the defense of units standing in it.
	Moat bool
	// Walls block their cells and penalize shots from outside into the castle.
	Walls bool
	// Towers are off-board archer units fighting for the defender.
	Towers []army.Troop
}

// Config holds everything NewArena needs.
type Config struct {
	Attacker *army.Army
	Defender *army.Army
	Castle   *Castle

	Creatures *creature.Registry
	Spells    *spell.Registry

	// Source drives every roll. Nil selects the crypto source.
	Source  dice.Source
	Logger  *zap.Logger
	Metrics MetricsRecorder
	Hooks   KillHooks

	// DefaultSpellDuration is the power of spells cast without a hero. Zero selects 3.
	DefaultSpellDuration int
	// MoatDefensePenalty is taken off the defense of units in the moat.
	MoatDefensePenalty int
	// Debug turns invariant violations into panics.
	Debug bool
}

// Arena is one battle in progress.
type Arena struct {
	board     *Board
	attacker  *Force
	defender  *Force
	castle    *Castle
	graveyard Graveyard

	creatures *creature.Registry
	spells    *spell.Registry
	roller    *dice.Roller
	logger    *zap.Logger
	metrics   MetricsRecorder
	hooks     KillHooks

	defaultSpellDuration int
	moatPenalty          int
	debug                bool

	round     int
	nextUID   uint32
	events    []Event
	listeners []func(Event)
}

// Deployment rows by formation.
var (
	spreadRows  = [army.MaxTroops]int{0, 2, 4, 6, 8}
	compactRows = [army.MaxTroops]int{2, 3, 4, 5, 6}
)

// NewArena deploys both armies: the attacker on the left column facing
// right, the defender on the right column facing left.
//
// Precondition: both armies are valid and have different colors.
// Postcondition: Returns a ready arena or an error naming the first problem.
func NewArena(cfg Config) (*Arena, error) {
	a, err := newArena(cfg)
	if err != nil {
		return nil, err
	}
	a.deploy(a.attacker, false)
	a.deploy(a.defender, true)
	if a.castle != nil {
		for _, t := range a.castle.Towers {
			if _, err := a.AddTower(t); err != nil {
				return nil, err
			}
		}
	}
	a.logger.Info("battle started",
		zap.Stringer("attacker", a.attacker.Color()),
		zap.Stringer("defender", a.defender.Color()),
		zap.Int("attacker_units", len(a.attacker.units)),
		zap.Int("defender_units", len(a.defender.units)),
	)
	return a, nil
}

func newArena(cfg Config) (*Arena, error) {
	if cfg.Attacker == nil || cfg.Defender == nil {
		return nil, errors.New("battle: both armies are required")
	}
	if cfg.Attacker.Color() == cfg.Defender.Color() {
		return nil, fmt.Errorf("battle: both armies are %s", cfg.Attacker.Color())
	}
	if cfg.Creatures == nil || cfg.Spells == nil {
		return nil, errors.New("battle: creature and spell registries are required")
	}
	src := cfg.Source
	if src == nil {
		src = dice.NewCryptoSource()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	duration := cfg.DefaultSpellDuration
	if duration <= 0 {
		duration = 3
	}

	a := &Arena{
		board:                newBoard(),
		castle:               cfg.Castle,
		creatures:            cfg.Creatures,
		spells:               cfg.Spells,
		roller:               dice.NewLoggedRoller(src, logger.Named("dice")),
		logger:               logger,
		metrics:              cfg.Metrics,
		hooks:                cfg.Hooks,
		defaultSpellDuration: duration,
		moatPenalty:          max(0, cfg.MoatDefensePenalty),
		debug:                cfg.Debug,
	}
	a.attacker = newForce(a, cfg.Attacker, 4*BoardWidth)
	a.defender = newForce(a, cfg.Defender, 5*BoardWidth-1)
	return a, nil
}

func (a *Arena) deploy(f *Force, reflect bool) {
	if !f.army.IsValid() {
		return
	}
	col := 0
	if reflect {
		col = BoardWidth - 1
	}
	rows := compactRows
	if f.army.SpreadFormation() {
		rows = spreadRows
	}
	for i := range army.MaxTroops {
		t := f.army.Slot(i)
		if !t.IsValid() {
			continue
		}
		head := rows[i]*BoardWidth + col
		if t.Creature().Wide {
			if reflect {
				head--
			} else {
				head++
			}
		}
		u := a.newUnit(f, *t, reflect)
		if !u.SetPosition(head) {
			a.invariant(false, "deployment cell unavailable", zap.Int("cell", head), zap.Stringer("unit", u))
		}
		f.units = append(f.units, u)
		f.slots[u.uid] = i
	}
}

// AddTower adds an off-board tower unit to the defender.
func (a *Arena) AddTower(t army.Troop) (*Unit, error) {
	if !t.IsValid() || !t.Creature().IsArcher() {
		return nil, fmt.Errorf("battle: tower %s must be a valid archer stack", t)
	}
	u := a.newUnit(a.defender, t, true)
	u.SetModes(status.Tower)
	a.defender.units = append(a.defender.units, u)
	return u, nil
}

// Board returns the battlefield.
func (a *Arena) Board() *Board { return a.board }

// Round returns the current round, 0 before the first.
func (a *Arena) Round() int { return a.round }

// Attacker returns the attacking force.
func (a *Arena) Attacker() *Force { return a.attacker }

// Defender returns the defending force.
func (a *Arena) Defender() *Force { return a.defender }

// Castle returns the fortifications, or nil for a field battle.
func (a *Arena) Castle() *Castle { return a.castle }

// Graveyard returns the record of dead units.
func (a *Arena) Graveyard() *Graveyard { return &a.graveyard }

// Roller returns the arena's dice roller.
func (a *Arena) Roller() *dice.Roller { return a.roller }

// Force returns the force of color c, or nil.
func (a *Arena) Force(c army.Color) *Force {
	switch c {
	case a.attacker.Color():
		return a.attacker
	case a.defender.Color():
		return a.defender
	}
	return nil
}

// EnemyForce returns the force opposing color c, or nil.
func (a *Arena) EnemyForce(c army.Color) *Force {
	return a.Force(a.OppositeColor(c))
}

// OppositeColor returns the color of the other side, or ColorNone.
func (a *Arena) OppositeColor(c army.Color) army.Color {
	switch c {
	case a.attacker.Color():
		return a.defender.Color()
	case a.defender.Color():
		return a.attacker.Color()
	}
	return army.ColorNone
}

// Units returns every unit of both forces, attacker first.
func (a *Arena) Units() []*Unit {
	out := make([]*Unit, 0, len(a.attacker.units)+len(a.defender.units))
	out = append(out, a.attacker.units...)
	return append(out, a.defender.units...)
}

// UnitByUID returns the unit with identifier uid, or nil.
func (a *Arena) UnitByUID(uid uint32) *Unit {
	for _, u := range a.Units() {
		if u.uid == uid {
			return u
		}
	}
	return nil
}

// IsShootingPenalty reports whether a shot from attacker at defender crosses
// the castle wall. The golden bow ignores the wall.
func (a *Arena) IsShootingPenalty(attacker, defender *Unit) bool {
	if a.castle == nil || !a.castle.Walls || attacker.Modes(status.Tower) {
		return false
	}
	if attacker.force != a.attacker {
		return false
	}
	if army.HasArtifact(attacker.Commander(), artifact.GoldenBow) {
		return false
	}
	return attacker.OutOfWalls() && !defender.OutOfWalls()
}

// Subscribe registers fn to receive every event as it is emitted.
func (a *Arena) Subscribe(fn func(Event)) { a.listeners = append(a.listeners, fn) }

// Events returns the events emitted so far.
func (a *Arena) Events() []Event {
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}

func (a *Arena) emit(e Event) {
	e.Round = a.round
	a.events = append(a.events, e)
	for _, fn := range a.listeners {
		fn(e)
	}
}

// invariant reports a broken internal invariant: a panic in debug mode and a
// warning otherwise.
func (a *Arena) invariant(ok bool, msg string, fields ...zap.Field) {
	if ok {
		return
	}
	if a.debug {
		panic("battle: " + msg)
	}
	a.logger.Warn("invariant violated: "+msg, fields...)
}

func (a *Arena) isFreePosition(p Position, self *Unit) bool {
	if p.head == nil {
		return false
	}
	for _, c := range p.cells() {
		if a.castle != nil && a.castle.Walls && IsWallIndex(c.index) {
			return false
		}
		if c.unit != nil && c.unit != self {
			return false
		}
	}
	return true
}

func (a *Arena) spellExtra(id spell.ID, fallback int) int {
	if def, ok := a.spells.Get(id); ok && def.ExtraValue > 0 {
		return def.ExtraValue
	}
	return fallback
}

func (a *Arena) spellPower(hero army.Commander) int {
	if hero != nil && hero.SpellPower() > 0 {
		return hero.SpellPower()
	}
	return a.defaultSpellDuration
}
