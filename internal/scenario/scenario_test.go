package scenario_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/content"
	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/battle"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/skill"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
	"github.com/cory-johannsen/warband/internal/scenario"
)

const skirmish = `
name: skirmish
attacker:
  color: blue
  control: ai
  hero:
    name: Ironfist
    attack: 2
    power: 2
    skills: {archery: advanced}
    artifacts: [golden_bow]
  opening_spells: [bless, slow]
  troops:
    - {creature: knight_missing, count: "5"}
defender:
  color: red
  troops:
    - {creature: goblin, count: "2d6+3"}
castle:
  moat: true
  towers:
    - {creature: archer, count: "4"}
`

func registries(t testing.TB) (*creature.Registry, *spell.Registry) {
	t.Helper()
	return content.MustLoad()
}

func roller(seed uint64) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
}

func TestParse_Valid(t *testing.T) {
	s, err := scenario.Parse([]byte(skirmish))
	require.NoError(t, err)
	assert.Equal(t, "skirmish", s.Name)
	require.NotNil(t, s.Attacker.Hero)
	assert.Equal(t, "advanced", s.Attacker.Hero.Skills["archery"])
	assert.Equal(t, []spell.ID{spell.Bless, spell.Slow}, s.Attacker.OpeningSpells)
	require.NotNil(t, s.Castle)
	assert.True(t, s.Castle.Moat)
	assert.Len(t, s.Castle.Towers, 1)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := scenario.Parse([]byte("name: x\nweather: rain\n"))
	assert.Error(t, err)
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", `
attacker: {color: blue, troops: [{creature: goblin, count: "1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "name must not be empty"},
		{"same color", `
name: x
attacker: {color: red, troops: [{creature: goblin, count: "1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "both red"},
		{"no troops", `
name: x
attacker: {color: blue}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "attacker.troops must not be empty"},
		{"too many troops", `
name: x
attacker: {color: blue, troops: [{creature: a, count: "1"}, {creature: a, count: "1"}, {creature: a, count: "1"}, {creature: a, count: "1"}, {creature: a, count: "1"}, {creature: a, count: "1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "at most 5 fit"},
		{"zero count", `
name: x
attacker: {color: blue, troops: [{creature: goblin, count: "1d4-1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "can roll below 1"},
		{"bad color", `
name: x
attacker: {color: none, troops: [{creature: goblin, count: "1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "not a player color"},
		{"spells without hero", `
name: x
attacker: {color: blue, opening_spells: [bless], troops: [{creature: goblin, count: "1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "need a hero"},
		{"unknown skill", `
name: x
attacker: {color: blue, hero: {name: h, skills: {necromancy: basic}}, troops: [{creature: goblin, count: "1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "unknown skill"},
		{"unknown artifact", `
name: x
attacker: {color: blue, hero: {name: h, artifacts: [sword_of_doom]}, troops: [{creature: goblin, count: "1"}]}
defender: {color: red, troops: [{creature: goblin, count: "1"}]}`, "unknown artifact"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuild_UnknownCreature(t *testing.T) {
	creatures, spells := registries(t)
	s, err := scenario.Parse([]byte(skirmish))
	require.NoError(t, err)
	_, err = s.Build(creatures, spells, roller(1))
	assert.ErrorIs(t, err, creature.ErrUnknownCreature)
}

func TestBuild_Participants(t *testing.T) {
	creatures, spells := registries(t)
	s, err := scenario.Parse([]byte(skirmish))
	require.NoError(t, err)
	s.Attacker.Troops[0].Creature = "paladin"

	b, err := s.Build(creatures, spells, roller(1))
	require.NoError(t, err)
	require.NotNil(t, b.AttackerHero)
	assert.Nil(t, b.DefenderHero)
	assert.Same(t, b.AttackerHero.Army(), b.Attacker)
	assert.Equal(t, army.ColorBlue, b.Attacker.Color())
	assert.Equal(t, army.ControlAI, b.Attacker.Control())
	assert.Equal(t, 5, b.Attacker.CountOf("paladin"))
	assert.Equal(t, skill.Advanced, b.AttackerHero.SecondarySkill(skill.Archery))
	assert.Equal(t, 1, b.AttackerHero.ArtifactCount(artifact.GoldenBow))

	goblins := b.Defender.CountOf("goblin")
	assert.GreaterOrEqual(t, goblins, 5)
	assert.LessOrEqual(t, goblins, 15)

	require.NotNil(t, b.Castle)
	assert.True(t, b.Castle.Moat)
	assert.False(t, b.Castle.Walls)
	require.Len(t, b.Castle.Towers, 1)
	assert.Equal(t, 4, b.Castle.Towers[0].Count())
}

func TestBuild_TowerMustShoot(t *testing.T) {
	creatures, spells := registries(t)
	s, err := scenario.Parse([]byte(skirmish))
	require.NoError(t, err)
	s.Attacker.Troops[0].Creature = "paladin"
	s.Castle.Towers[0].Creature = "goblin"
	_, err = s.Build(creatures, spells, roller(1))
	assert.ErrorContains(t, err, "cannot shoot")
}

func TestBuild_UnknownOpeningSpell(t *testing.T) {
	creatures, spells := registries(t)
	s, err := scenario.Parse([]byte(skirmish))
	require.NoError(t, err)
	s.Attacker.Troops[0].Creature = "paladin"
	s.Attacker.OpeningSpells = []spell.ID{"time_stop"}
	_, err = s.Build(creatures, spells, roller(1))
	assert.ErrorIs(t, err, spell.ErrUnknownSpell)
}

func TestCastOpeningSpells(t *testing.T) {
	creatures, spells := registries(t)
	s, err := scenario.Parse([]byte(skirmish))
	require.NoError(t, err)
	s.Attacker.Troops[0].Creature = "paladin"
	b, err := s.Build(creatures, spells, roller(3))
	require.NoError(t, err)

	a, err := battle.NewArena(battle.Config{
		Attacker:  b.Attacker,
		Defender:  b.Defender,
		Castle:    b.Castle,
		Creatures: creatures,
		Spells:    spells,
		Source:    dice.NewSeededSource(3),
	})
	require.NoError(t, err)

	casts := b.CastOpeningSpells(a, zap.NewNop())
	require.Len(t, casts, 2)
	assert.Equal(t, "Ironfist", casts[0].Caster)
	assert.Equal(t, battle.SpellApplied, casts[0].Result)
	assert.Equal(t, battle.SpellApplied, casts[1].Result)

	paladins := a.Attacker().ValidUnits()[0]
	assert.True(t, paladins.Modes(status.Bless))
	for _, u := range a.Defender().Units() {
		if u.Modes(status.Tower) {
			assert.False(t, u.Modes(status.Slow), "towers are never an opening target")
		} else {
			assert.True(t, u.Modes(status.Slow))
		}
	}
}

func TestLoad_ShippedScenarios(t *testing.T) {
	creatures, spells := registries(t)
	paths, err := filepath.Glob(filepath.Join("..", "..", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		s, err := scenario.Load(path)
		require.NoError(t, err, path)
		_, err = s.Build(creatures, spells, roller(9))
		assert.NoError(t, err, path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := scenario.Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestLoad_ReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: broken\n"), 0o644))
	_, err := scenario.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

// Property: built troop counts always fall inside the expression's range.
func TestPropertyBuildCountsWithinRange(t *testing.T) {
	creatures, spells := registries(t)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 4).Draw(rt, "dice")
		sides := rapid.IntRange(2, 12).Draw(rt, "sides")
		mod := rapid.IntRange(0, 20).Draw(rt, "mod")
		expr := dice.Expression{Count: n, Sides: sides, Modifier: mod}
		s := &scenario.Scenario{
			Name:     "p",
			Attacker: scenario.Side{Color: "blue", Troops: []scenario.Troop{{Creature: "goblin", Count: fmt.Sprintf("%dd%d+%d", n, sides, mod)}}},
			Defender: scenario.Side{Color: "red", Troops: []scenario.Troop{{Creature: "orc", Count: "1"}}},
		}
		require.NoError(rt, s.Validate())
		b, err := s.Build(creatures, spells, roller(rapid.Uint64().Draw(rt, "seed")))
		require.NoError(rt, err)
		got := b.Attacker.CountOf("goblin")
		assert.GreaterOrEqual(rt, got, expr.Min())
		assert.LessOrEqual(rt, got, expr.Max())
	})
}
