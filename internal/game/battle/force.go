package battle

import (
	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// Force is one side of a battle: the army and the units deployed from it.
type Force struct {
	arena *Arena
	army  *army.Army
	units []*Unit
	// slots maps a unit to the army slot it was deployed from.
	slots map[uint32]int
	home  int
}

func newForce(a *Arena, ar *army.Army, home int) *Force {
	return &Force{arena: a, army: ar, slots: map[uint32]int{}, home: home}
}

// Army returns the army the force was deployed from.
func (f *Force) Army() *army.Army { return f.army }

// Color returns the army color.
func (f *Force) Color() army.Color { return f.army.Color() }

// Control returns who issues the force's orders.
func (f *Force) Control() army.Control { return f.army.Control() }

// Commander returns the army commander, or nil.
func (f *Force) Commander() army.Commander { return f.army.Commander() }

// Units returns every unit of the force, dead ones included.
func (f *Force) Units() []*Unit { return f.units }

// ValidUnits returns the units with living members.
func (f *Force) ValidUnits() []*Unit {
	var out []*Unit
	for _, u := range f.units {
		if u.IsValid() {
			out = append(out, u)
		}
	}
	return out
}

// HasFighters reports whether the force still has a unit that decides the
// battle. Towers and mirror images do not count.
func (f *Force) HasFighters() bool {
	for _, u := range f.units {
		if u.IsValid() && !u.Modes(status.Tower|status.MirrorImage) {
			return true
		}
	}
	return false
}

// HasAbility reports whether a living unit of the force carries ability a.
func (f *Force) HasAbility(a creature.Ability) bool {
	for _, u := range f.units {
		if u.IsValid() && u.Creature().Has(a) {
			return true
		}
	}
	return false
}

// Losses returns the members of deployed troops that died this battle.
func (f *Force) Losses() int {
	n := 0
	for _, u := range f.units {
		if _, ok := f.slots[u.uid]; ok {
			n += u.dead
		}
	}
	return n
}

// SyncArmy writes surviving counts back to the army slots the units were
// deployed from. Summoned units and mirror images have no slot.
func (f *Force) SyncArmy() {
	for _, u := range f.units {
		if slot, ok := f.slots[u.uid]; ok {
			f.army.Slot(slot).SetCount(u.Count())
		}
	}
}

// homeIndex is the middle cell of the force's deployment column.
func (f *Force) homeIndex() int { return f.home }
