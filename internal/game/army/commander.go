package army

import (
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/skill"
)

// Commander is the leader of an army: a hero or a castle captain. The army
// holds it as a weak reference; it is never serialised with the troops.
type Commander interface {
	Name() string
	Color() Color
	Control() Control
	// SpellPower is the multiplier for spell damage and duration.
	SpellPower() int
	AttackSkill() int
	DefenseSkill() int
	// Morale and Luck include skill and artifact bonuses.
	Morale() int
	Luck() int
	SecondarySkill(s skill.Secondary) skill.Level
	// ArtifactCount returns how many copies of id the commander carries.
	ArtifactCount(id artifact.ID) int
}

// HasArtifact reports whether c carries at least one id. A nil commander
// carries nothing.
func HasArtifact(c Commander, id artifact.ID) bool {
	return c != nil && c.ArtifactCount(id) > 0
}

// SkillValue returns the per-level value of s for c, or 0 for a nil commander.
func SkillValue(c Commander, s skill.Secondary) int {
	if c == nil {
		return 0
	}
	return skill.Value(s, c.SecondarySkill(s))
}

// ArtifactCount returns how many copies of id c carries, or 0 for a nil commander.
func ArtifactCount(c Commander, id artifact.ID) int {
	if c == nil {
		return 0
	}
	return c.ArtifactCount(id)
}
