package battle

import "slices"

// Graveyard remembers which units died on which cells, most recent last.
type Graveyard struct {
	cells map[int][]uint32
}

// Add records that unit uid died on cell.
func (g *Graveyard) Add(cell int, uid uint32) {
	if !IsValidIndex(cell) {
		return
	}
	if g.cells == nil {
		g.cells = map[int][]uint32{}
	}
	g.cells[cell] = append(g.cells[cell], uid)
}

// Remove forgets unit uid on every cell.
func (g *Graveyard) Remove(uid uint32) {
	for cell, uids := range g.cells {
		uids = slices.DeleteFunc(uids, func(v uint32) bool { return v == uid })
		if len(uids) == 0 {
			delete(g.cells, cell)
		} else {
			g.cells[cell] = uids
		}
	}
}

// UnitsAt returns the units that died on cell, oldest first.
func (g *Graveyard) UnitsAt(cell int) []uint32 {
	return slices.Clone(g.cells[cell])
}

// LastUnitAt returns the unit that died most recently on cell.
func (g *Graveyard) LastUnitAt(cell int) (uint32, bool) {
	uids := g.cells[cell]
	if len(uids) == 0 {
		return 0, false
	}
	return uids[len(uids)-1], true
}

// Contains reports whether unit uid is recorded anywhere.
func (g *Graveyard) Contains(uid uint32) bool {
	for _, uids := range g.cells {
		if slices.Contains(uids, uid) {
			return true
		}
	}
	return false
}

// Cells returns the cells holding dead units in ascending order.
func (g *Graveyard) Cells() []int {
	out := make([]int, 0, len(g.cells))
	for c := range g.cells {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
