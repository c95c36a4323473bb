package spell_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/spell"
)

func TestValidate(t *testing.T) {
	d := &spell.Def{ID: spell.Bless, Name: "Bless", Level: 1, Target: spell.TargetFriends}
	require.NoError(t, d.Validate())

	bad := *d
	bad.Level = 6
	assert.Error(t, bad.Validate())
	bad = *d
	bad.Target = "everyone"
	assert.Error(t, bad.Validate())
	bad = *d
	bad.Affects = "demons"
	assert.Error(t, bad.Validate())
	bad = *d
	bad.Damage = -1
	assert.Error(t, bad.Validate())
}

func TestCategories(t *testing.T) {
	dmg := &spell.Def{Damage: 10}
	assert.True(t, dmg.IsDamage())
	assert.False(t, dmg.IsRestore())
	res := &spell.Def{Resurrect: 50}
	assert.True(t, res.IsRestore())
	assert.True(t, res.IsResurrect())
	assert.True(t, spell.IsColdSpell(spell.ColdRing))
	assert.True(t, spell.IsFireSpell(spell.Fireblast))
	assert.True(t, spell.IsLightningSpell(spell.ChainLightning))
	assert.False(t, spell.IsFireSpell(spell.ColdRay))
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{"spells/a.yaml": {Data: []byte(`
spells:
  - {id: haste, name: Haste, level: 1, extra_value: 2, target: friends}
  - {id: slow, name: Slow, level: 1, extra_value: 2, target: enemies}
`)}}
	reg, err := spell.LoadFS(fsys, "spells")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 2, reg.ExtraValue(spell.Slow))
	assert.Equal(t, 0, reg.ExtraValue(spell.Bless))
	all := reg.All()
	assert.Equal(t, spell.Haste, all[0].ID)

	_, err = reg.Lookup(spell.Bless)
	assert.ErrorIs(t, err, spell.ErrUnknownSpell)
}

func TestLoadFS_Invalid(t *testing.T) {
	fsys := fstest.MapFS{"a.yaml": {Data: []byte(`
spells:
  - {id: haste, name: Haste, level: 0, target: friends}
`)}}
	_, err := spell.LoadFS(fsys, ".")
	assert.Error(t, err)
}
