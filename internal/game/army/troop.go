// Package army provides creature stacks, the armies that hold them, the army
// wire codec and the neutral-monster joining decision.
package army

import (
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/creature"
)

// Troop is a stack: one creature kind and how many of it. A zero count or a
// nil creature is an empty slot.
type Troop struct {
	def   *creature.Def
	count int
}

// NewTroop creates a stack of count members of def.
//
// Postcondition: IsValid() iff def != nil && count > 0.
func NewTroop(def *creature.Def, count int) Troop {
	if count < 0 {
		count = 0
	}
	return Troop{def: def, count: count}
}

// Creature returns the creature definition, nil for an empty slot.
func (t *Troop) Creature() *creature.Def { return t.def }

// ID returns the creature ID, "" for an empty slot.
func (t *Troop) ID() string {
	if t.def == nil {
		return ""
	}
	return t.def.ID
}

// Count returns the number of members.
func (t *Troop) Count() int { return t.count }

// SetCount replaces the number of members.
//
// Postcondition: Count() >= 0.
func (t *Troop) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	t.count = n
}

// Set replaces both creature and count.
func (t *Troop) Set(def *creature.Def, count int) {
	t.def = def
	t.SetCount(count)
}

// Reset empties the slot.
func (t *Troop) Reset() {
	t.def = nil
	t.count = 0
}

// IsValid reports whether the stack holds any member.
func (t *Troop) IsValid() bool { return t.def != nil && t.count > 0 }

// IsEmpty reports whether the slot is free.
func (t *Troop) IsEmpty() bool { return !t.IsValid() }

// Is reports whether the stack holds creature id.
func (t *Troop) Is(id string) bool { return t.def != nil && t.def.ID == id }

// HitPoints returns the nominal hit points of the whole stack.
func (t *Troop) HitPoints() int {
	if t.def == nil {
		return 0
	}
	return t.def.HitPoints * t.count
}

// Strength returns the combat value of the whole stack.
func (t *Troop) Strength() float64 {
	if !t.IsValid() {
		return 0
	}
	return t.def.Strength() * float64(t.count)
}

// Upgrade replaces the creature with its upgraded form.
//
// Postcondition: Returns false and leaves the stack unchanged when no upgrade exists.
func (t *Troop) Upgrade(reg *creature.Registry) bool {
	next, ok := reg.Upgraded(t.def)
	if !ok {
		return false
	}
	t.def = next
	return true
}

// String returns "12 archer".
func (t Troop) String() string {
	if t.def == nil {
		return "empty"
	}
	return fmt.Sprintf("%d %s", t.count, t.def.ID)
}
