package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/content"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/spell"
)

func TestEmbeddedContentLoads(t *testing.T) {
	creatures, spells := content.MustLoad()
	assert.Greater(t, creatures.Len(), 50)
	assert.Greater(t, spells.Len(), 40)

	archer, ok := creatures.Get("archer")
	require.True(t, ok)
	assert.Equal(t, 12, archer.Shots)
	assert.Equal(t, creature.VerySlow, archer.Speed)

	ranger, ok := creatures.Upgraded(archer)
	require.True(t, ok)
	assert.Equal(t, "ranger", ranger.ID)

	haste, ok := spells.Get(spell.Haste)
	require.True(t, ok)
	assert.Equal(t, 2, haste.ExtraValue)
}

func TestEmbeddedCapabilities(t *testing.T) {
	creatures, _ := content.MustLoad()
	ghost, _ := creatures.Get("ghost")
	assert.Equal(t, creature.OnKillGrow, ghost.OnKill)
	vampireLord, _ := creatures.Get("vampire_lord")
	assert.Equal(t, creature.OnKillDrain, vampireLord.OnKill)
	boneDragon, _ := creatures.Get("bone_dragon")
	assert.True(t, boneDragon.Has(creature.MoraleSuppressor))
	golem, _ := creatures.Get("steel_golem")
	assert.Equal(t, 50, golem.SpellDamageScale(spell.Fireball), "anchor shared with iron golem")
	fire, _ := creatures.Get("fire_elemental")
	water, _ := creatures.Get("water_elemental")
	assert.True(t, fire.DoubleDamageAgainst(water))
	assert.True(t, water.DoubleDamageAgainst(fire))
}

func TestScriptsEmbedded(t *testing.T) {
	scripts, err := content.Scripts()
	require.NoError(t, err)
	_, err = scripts.Open("hooks.lua")
	assert.NoError(t, err)
}

func TestLoadFromDirectories(t *testing.T) {
	dir := t.TempDir()
	creaturesDir := filepath.Join(dir, "creatures")
	spellsDir := filepath.Join(dir, "spells")
	require.NoError(t, os.MkdirAll(creaturesDir, 0o755))
	require.NoError(t, os.MkdirAll(spellsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(creaturesDir, "a.yaml"), []byte(`
creatures:
  - id: imp
    name: Imp
    attack: 2
    defense: 2
    damage_min: 1
    damage_max: 2
    hit_points: 4
    speed: 4
    secondary_effect: {spell: curse, chance: 10}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(spellsDir, "a.yaml"), []byte(`
spells:
  - {id: curse, name: Curse, level: 1, target: enemies}
`), 0o644))

	creatures, spells, err := content.Load(config.ContentConfig{CreaturesDir: creaturesDir, SpellsDir: spellsDir})
	require.NoError(t, err)
	assert.Equal(t, 1, creatures.Len())
	assert.Equal(t, 1, spells.Len())
}

func TestLoadRejectsUnknownEffectSpell(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(`
creatures:
  - id: imp
    name: Imp
    damage_min: 1
    damage_max: 2
    hit_points: 4
    speed: average
    secondary_effect: {spell: doom, chance: 10}
`), 0o644))
	_, _, err := content.Load(config.ContentConfig{CreaturesDir: dir})
	assert.ErrorIs(t, err, spell.ErrUnknownSpell)
}
