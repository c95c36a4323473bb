package hero_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/hero"
	"github.com/cory-johannsen/warband/internal/game/skill"
)

func TestHero_CommandsOwnArmy(t *testing.T) {
	h := hero.New("Gwenneth", army.ColorGreen, army.ControlAI, hero.Stats{Power: 4})
	assert.Same(t, h, h.Army().Commander())
	assert.Equal(t, army.ColorGreen, h.Army().Color())
	assert.Equal(t, 4, h.SpellPower())
}

func TestHero_MoraleAndLuckSkills(t *testing.T) {
	h := hero.New("Crag Hack", army.ColorRed, army.ControlHuman, hero.Stats{Morale: 1, Luck: -1})
	h.SetSecondarySkill(skill.Leadership, skill.Advanced)
	h.SetSecondarySkill(skill.Luck, skill.Expert)
	assert.Equal(t, 3, h.Morale())
	assert.Equal(t, 2, h.Luck())

	h.SetSecondarySkill(skill.Luck, skill.None)
	assert.Equal(t, skill.None, h.SecondarySkill(skill.Luck))
	assert.Equal(t, -1, h.Luck())
}

func TestHero_Artifacts(t *testing.T) {
	h := hero.New("Dainwin", army.ColorBlue, army.ControlHuman, hero.Stats{})
	assert.False(t, army.HasArtifact(h, artifact.WizardHat))
	h.AddArtifact(artifact.WizardHat)
	h.AddArtifact(artifact.WizardHat)
	assert.Equal(t, 2, h.ArtifactCount(artifact.WizardHat))
	assert.True(t, h.RemoveArtifact(artifact.WizardHat))
	assert.True(t, h.RemoveArtifact(artifact.WizardHat))
	assert.False(t, h.RemoveArtifact(artifact.WizardHat))
	assert.False(t, army.HasArtifact(nil, artifact.WizardHat))
}

func TestSkillValueThroughCommander(t *testing.T) {
	h := hero.New("Ariel", army.ColorBlue, army.ControlHuman, hero.Stats{})
	h.SetSecondarySkill(skill.Archery, skill.Expert)
	assert.Equal(t, 50, army.SkillValue(h, skill.Archery))
	assert.Equal(t, 0, army.SkillValue(nil, skill.Archery))
}
