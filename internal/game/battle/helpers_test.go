package battle_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/content"
	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/battle"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/hero"
	"github.com/cory-johannsen/warband/internal/game/spell"
)

// fixedSource always returns val for any Intn call, clamped to n-1.
type fixedSource struct{ val int }

func (f *fixedSource) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// recorder counts metric calls.
type recorder struct {
	strikes   int
	destroyed map[string]int
	images    int
	applied   map[string]int
	rejected  map[string]int
}

func newRecorder() *recorder {
	return &recorder{destroyed: map[string]int{}, applied: map[string]int{}, rejected: map[string]int{}}
}

func (r *recorder) RecordStrike(string, int, int) { r.strikes++ }

func (r *recorder) RecordUnitDestroyed(c string, mirror bool) {
	r.destroyed[c]++
	if mirror {
		r.images++
	}
}

func (r *recorder) RecordSpell(s string, applied bool) {
	if applied {
		r.applied[s]++
	} else {
		r.rejected[s]++
	}
}

// world assembles an arena from test creatures and the embedded spells.
type world struct {
	t         *testing.T
	creatures *creature.Registry
	spells    *spell.Registry
	attacker  *army.Army
	defender  *army.Army
	castle    *battle.Castle
	source    dice.Source
	metrics   *recorder
	hooks     battle.KillHooks
}

func newWorld(t *testing.T) *world {
	t.Helper()
	spells, err := content.Spells()
	require.NoError(t, err)
	return &world{
		t:         t,
		creatures: creature.NewRegistry(),
		spells:    spells,
		attacker:  army.New(army.ColorBlue, army.ControlAI),
		defender:  army.New(army.ColorRed, army.ControlAI),
		source:    &fixedSource{val: 0},
		metrics:   newRecorder(),
	}
}

// def registers a plain creature; opts adjust it first.
func (w *world) def(id string, opts ...func(*creature.Def)) *creature.Def {
	w.t.Helper()
	d := &creature.Def{
		ID:        id,
		Name:      id,
		Level:     1,
		Attack:    5,
		Defense:   5,
		DamageMin: 2,
		DamageMax: 3,
		HitPoints: 10,
		Speed:     creature.Average,
	}
	for _, o := range opts {
		o(d)
	}
	require.NoError(w.t, w.creatures.Register(d))
	return d
}

// withHeroes replaces both armies with hero-led ones.
func (w *world) withHeroes(att, def hero.Stats) (*hero.Hero, *hero.Hero) {
	a := hero.New("Attacker", army.ColorBlue, army.ControlAI, att)
	d := hero.New("Defender", army.ColorRed, army.ControlAI, def)
	w.attacker, w.defender = a.Army(), d.Army()
	return a, d
}

func (w *world) arena() *battle.Arena {
	w.t.Helper()
	a, err := battle.NewArena(w.config())
	require.NoError(w.t, err)
	return a
}

func (w *world) config() battle.Config {
	return battle.Config{
		Attacker:             w.attacker,
		Defender:             w.defender,
		Castle:               w.castle,
		Creatures:            w.creatures,
		Spells:               w.spells,
		Source:               w.source,
		Logger:               zap.NewNop(),
		Metrics:              w.metrics,
		Hooks:                w.hooks,
		DefaultSpellDuration: 3,
		MoatDefensePenalty:   3,
		Debug:                true,
	}
}

func attackerUnit(a *battle.Arena, i int) *battle.Unit { return a.Attacker().Units()[i] }

func defenderUnit(a *battle.Arena, i int) *battle.Unit { return a.Defender().Units()[i] }

func place(t *testing.T, u *battle.Unit, head int) {
	t.Helper()
	require.True(t, u.SetPosition(head), "placing %s on %d", u, head)
}

func withAttack(v int) func(*creature.Def)  { return func(d *creature.Def) { d.Attack = v } }
func withDefense(v int) func(*creature.Def) { return func(d *creature.Def) { d.Defense = v } }
func withHP(v int) func(*creature.Def)      { return func(d *creature.Def) { d.HitPoints = v } }
func withShots(v int) func(*creature.Def)   { return func(d *creature.Def) { d.Shots = v } }
func withWide() func(*creature.Def)         { return func(d *creature.Def) { d.Wide = true } }
func withFlying() func(*creature.Def)       { return func(d *creature.Def) { d.Flying = true } }

func withSpeed(s creature.Speed) func(*creature.Def) {
	return func(d *creature.Def) { d.Speed = s }
}

func withDamage(lo, hi int) func(*creature.Def) {
	return func(d *creature.Def) { d.DamageMin, d.DamageMax = lo, hi }
}

func withAbilities(a ...creature.Ability) func(*creature.Def) {
	return func(d *creature.Def) { d.Abilities = append(d.Abilities, a...) }
}
