package army

import (
	"sort"

	"github.com/cory-johannsen/warband/internal/game/creature"
)

// MaxTroops is the number of slots in an army.
const MaxTroops = 5

// Army is a fixed set of troop slots led by an optional commander.
// It is not safe for concurrent use.
type Army struct {
	slots     [MaxTroops]Troop
	commander Commander
	color     Color
	control   Control
	spread    bool
}

// New creates an empty army for color.
func New(color Color, control Control) *Army {
	return &Army{color: color, control: control, spread: true}
}

// Color returns the owning color, preferring the commander's.
func (a *Army) Color() Color {
	if a.commander != nil {
		return a.commander.Color()
	}
	return a.color
}

// SetColor sets the owning color used when no commander is present.
func (a *Army) SetColor(c Color) { a.color = c }

// Control returns who issues the army's orders, preferring the commander's.
func (a *Army) Control() Control {
	if a.commander != nil {
		return a.commander.Control()
	}
	return a.control
}

// Commander returns the leader, or nil.
func (a *Army) Commander() Commander { return a.commander }

// SetCommander attaches or detaches the leader.
func (a *Army) SetCommander(c Commander) { a.commander = c }

// SpreadFormation reports whether troops deploy spread out.
func (a *Army) SpreadFormation() bool { return a.spread }

// SetSpreadFormation chooses the deployment formation.
func (a *Army) SetSpreadFormation(spread bool) { a.spread = spread }

// Slot returns slot i.
//
// Precondition: 0 <= i < MaxTroops.
func (a *Army) Slot(i int) *Troop { return &a.slots[i] }

// Troops returns the valid stacks in slot order.
func (a *Army) Troops() []*Troop {
	var out []*Troop
	for i := range a.slots {
		if a.slots[i].IsValid() {
			out = append(out, &a.slots[i])
		}
	}
	return out
}

// IsValid reports whether any slot holds a stack.
func (a *Army) IsValid() bool { return len(a.Troops()) > 0 }

// Add merges count members of def into a matching stack or the first empty slot.
//
// Postcondition: Returns false and leaves the army unchanged when no slot is available.
func (a *Army) Add(def *creature.Def, count int) bool {
	if def == nil || count <= 0 {
		return false
	}
	for i := range a.slots {
		if a.slots[i].IsValid() && a.slots[i].Is(def.ID) {
			a.slots[i].SetCount(a.slots[i].Count() + count)
			return true
		}
	}
	for i := range a.slots {
		if a.slots[i].IsEmpty() {
			a.slots[i].Set(def, count)
			return true
		}
	}
	return false
}

// HasCreature reports whether any stack holds creature id.
func (a *Army) HasCreature(id string) bool { return a.CountOf(id) > 0 }

// CountOf returns the total members of creature id across stacks.
func (a *Army) CountOf(id string) int {
	total := 0
	for _, t := range a.Troops() {
		if t.Is(id) {
			total += t.Count()
		}
	}
	return total
}

// Count returns the total number of members.
func (a *Army) Count() int {
	total := 0
	for _, t := range a.Troops() {
		total += t.Count()
	}
	return total
}

// MergeTroops folds stacks of the same creature into the first of them.
func (a *Army) MergeTroops() {
	for i := range a.slots {
		if !a.slots[i].IsValid() {
			continue
		}
		for j := i + 1; j < MaxTroops; j++ {
			if a.slots[j].IsValid() && a.slots[j].Is(a.slots[i].ID()) {
				a.slots[i].SetCount(a.slots[i].Count() + a.slots[j].Count())
				a.slots[j].Reset()
			}
		}
	}
}

// Strength returns the summed strength of the troops, without commander bonuses.
func (a *Army) Strength() float64 {
	total := 0.0
	for _, t := range a.Troops() {
		total += t.Strength()
	}
	return total
}

// StrengthWithCommander scales Strength by the commander's attack and defense.
func (a *Army) StrengthWithCommander() float64 {
	s := a.Strength()
	if a.commander == nil {
		return s
	}
	bonus := 1 + 0.1*float64(a.commander.AttackSkill()) + 0.05*float64(a.commander.DefenseSkill())
	return s * bonus
}

func (a *Army) sorted(less func(x, y *Troop) bool) []*Troop {
	troops := a.Troops()
	sort.SliceStable(troops, func(i, j int) bool { return less(troops[i], troops[j]) })
	return troops
}

// Strongest returns the stack with the highest strength, or nil.
func (a *Army) Strongest() *Troop {
	troops := a.sorted(func(x, y *Troop) bool { return x.Strength() > y.Strength() })
	if len(troops) == 0 {
		return nil
	}
	return troops[0]
}

// Weakest returns the stack with the lowest strength, or nil.
func (a *Army) Weakest() *Troop {
	troops := a.sorted(func(x, y *Troop) bool { return x.Strength() < y.Strength() })
	if len(troops) == 0 {
		return nil
	}
	return troops[0]
}

// Slowest returns the stack with the lowest speed, or nil.
func (a *Army) Slowest() *Troop {
	troops := a.sorted(func(x, y *Troop) bool { return x.Creature().Speed < y.Creature().Speed })
	if len(troops) == 0 {
		return nil
	}
	return troops[0]
}

// StrongestCreature returns the creature with the highest per-member strength, or nil.
func (a *Army) StrongestCreature() *creature.Def {
	troops := a.sorted(func(x, y *Troop) bool { return x.Creature().Strength() > y.Creature().Strength() })
	if len(troops) == 0 {
		return nil
	}
	return troops[0].Creature()
}

// UpgradeAll upgrades every stack that has an upgrade and returns how many changed.
func (a *Army) UpgradeAll(reg *creature.Registry) int {
	n := 0
	for _, t := range a.Troops() {
		if t.Upgrade(reg) {
			n++
		}
	}
	return n
}

// Morale returns the commander's morale adjusted for the army's composition,
// clamped to the morale tiers.
func (a *Army) Morale() int {
	m := MoraleNormal
	if a.commander != nil {
		m = a.commander.Morale()
	}
	m += a.compositionMorale()
	return clamp(m, MoraleTreason, MoraleBlood)
}

// compositionMorale rewards a single race and penalises mixing races and
// undead with the living. Neutral creatures do not count as a race.
func (a *Army) compositionMorale() int {
	races := map[string]bool{}
	undead := false
	living := false
	for _, t := range a.Troops() {
		def := t.Creature()
		if def.Race != "" && def.Race != "neutral" {
			races[def.Race] = true
		}
		if def.IsUndead() {
			undead = true
		} else {
			living = true
		}
	}
	mod := 0
	switch n := len(races); {
	case n == 1:
		mod = 1
	case n >= 3:
		mod = 2 - n
	}
	if undead && living {
		mod--
	}
	return mod
}

// Luck returns the commander's luck clamped to the luck tiers.
func (a *Army) Luck() int {
	if a.commander == nil {
		return LuckNormal
	}
	return clamp(a.commander.Luck(), LuckCursed, LuckIrish)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
