// Package hero provides the concrete commander that leads an army into battle.
package hero

import (
	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/skill"
)

// Hero is an army commander with primary stats, secondary skills and artifacts.
// It is not safe for concurrent use.
type Hero struct {
	name      string
	color     army.Color
	control   army.Control
	attack    int
	defense   int
	power     int
	knowledge int
	morale    int
	luck      int
	skills    map[skill.Secondary]skill.Level
	artifacts map[artifact.ID]int
	army      *army.Army
}

// Stats are a hero's primary attributes and base morale and luck.
type Stats struct {
	Attack    int
	Defense   int
	Power     int
	Knowledge int
	Morale    int
	Luck      int
}

// New creates a hero with an empty army it commands.
//
// Postcondition: h.Army().Commander() == h.
func New(name string, color army.Color, control army.Control, stats Stats) *Hero {
	h := &Hero{
		name:      name,
		color:     color,
		control:   control,
		attack:    stats.Attack,
		defense:   stats.Defense,
		power:     stats.Power,
		knowledge: stats.Knowledge,
		morale:    stats.Morale,
		luck:      stats.Luck,
		skills:    make(map[skill.Secondary]skill.Level),
		artifacts: make(map[artifact.ID]int),
	}
	h.army = army.New(color, control)
	h.army.SetCommander(h)
	return h
}

func (h *Hero) Name() string              { return h.name }
func (h *Hero) Color() army.Color         { return h.color }
func (h *Hero) Control() army.Control     { return h.control }
func (h *Hero) SpellPower() int           { return h.power }
func (h *Hero) Knowledge() int            { return h.knowledge }
func (h *Hero) AttackSkill() int          { return h.attack }
func (h *Hero) DefenseSkill() int         { return h.defense }
func (h *Hero) Army() *army.Army          { return h.army }
func (h *Hero) SetControl(c army.Control) { h.control = c }

// Morale returns base morale plus the leadership bonus.
func (h *Hero) Morale() int {
	return h.morale + skill.Value(skill.Leadership, h.skills[skill.Leadership])
}

// Luck returns base luck plus the luck skill bonus.
func (h *Hero) Luck() int {
	return h.luck + skill.Value(skill.Luck, h.skills[skill.Luck])
}

// SecondarySkill returns the mastery of s.
func (h *Hero) SecondarySkill(s skill.Secondary) skill.Level { return h.skills[s] }

// SetSecondarySkill learns or replaces s at level l.
func (h *Hero) SetSecondarySkill(s skill.Secondary, l skill.Level) {
	if l == skill.None {
		delete(h.skills, s)
		return
	}
	h.skills[s] = l
}

// ArtifactCount returns how many copies of id the hero carries.
func (h *Hero) ArtifactCount(id artifact.ID) int { return h.artifacts[id] }

// AddArtifact gives the hero one more copy of id.
func (h *Hero) AddArtifact(id artifact.ID) { h.artifacts[id]++ }

// RemoveArtifact takes one copy of id away.
//
// Postcondition: Returns false when the hero carried none.
func (h *Hero) RemoveArtifact(id artifact.ID) bool {
	n := h.artifacts[id]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(h.artifacts, id)
	} else {
		h.artifacts[id] = n - 1
	}
	return true
}

var _ army.Leader = (*Hero)(nil)
