package battle

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/spell"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// CreateMirrorImage places a copy of owner on the nearest free position. The
// image dies from any hit and lasts as long as the owner's mirror effect.
//
// Postcondition: on success owner and image reference each other; without a
// free position the owner's pending mirror effect is dropped.
func (a *Arena) CreateMirrorImage(owner *Unit) (*Unit, bool) {
	if !owner.IsValid() || owner.mirror != nil || owner.Modes(status.MirrorImage|status.Tower) {
		return nil, false
	}
	pos, ok := a.freePositionNear(owner.HeadIndex(), owner.IsWide(), owner.reflect)
	if !ok {
		owner.affected.Remove(status.MirrorOwner)
		a.logger.Debug("no room for mirror image", zap.Stringer("owner", owner))
		return nil, false
	}
	if !owner.affected.Contains(status.MirrorOwner) {
		owner.affected.Set(status.MirrorOwner, a.defaultSpellDuration)
	}

	image := a.newUnit(owner.force, army.NewTroop(owner.Creature(), owner.Count()), owner.reflect)
	image.shots = owner.shots
	image.SetModes(status.MirrorImage)
	image.placeAt(pos)

	image.mirror = owner
	owner.mirror = image
	owner.SetModes(status.MirrorOwner)
	owner.force.units = append(owner.force.units, image)

	a.emit(Event{Kind: EventMirrorImageCreated, Unit: image.uid, Source: owner.uid, Cell: image.HeadIndex()})
	return image, true
}

// severMirror clears the owner side of a mirror pair and returns the image.
// Calling it on an already severed owner does nothing.
func (u *Unit) severMirror() *Unit {
	image := u.mirror
	u.mirror = nil
	u.clearEffect(status.MirrorOwner)
	if image != nil {
		image.mirror = nil
	}
	return image
}

// releaseMirrorImage ends the owner's mirror effect and removes its image
// from the board. Dead images are not added to the graveyard.
func (u *Unit) releaseMirrorImage() {
	image := u.severMirror()
	if image == nil || !image.IsValid() {
		return
	}
	image.hp = 0
	image.SetCount(0)
	image.ResetModes(status.TurnTransient | status.Magic)
	image.affected.Reset()
	image.SetModes(status.Moved)
	image.releaseCells()

	u.arena.emit(Event{Kind: EventMirrorImageRemoved, Unit: image.uid, Source: u.uid})
	if u.arena.metrics != nil {
		u.arena.metrics.RecordUnitDestroyed(image.ID(), true)
	}
}

// SummonElemental conjures the creature of a summoning spell for the side
// of color, sized by spell power times the spell's magnitude.
func (a *Arena) SummonElemental(color army.Color, id spell.ID, power int) (*Unit, bool) {
	def, ok := a.spells.Get(id)
	if !ok || def.Summon == "" {
		return nil, false
	}
	cdef, ok := a.creatures.Get(def.Summon)
	if !ok {
		a.logger.Warn("summoned creature missing", zap.String("creature", def.Summon))
		return nil, false
	}
	f := a.Force(color)
	if f == nil {
		return nil, false
	}
	count := max(1, power) * max(1, def.ExtraValue)
	reflect := f == a.defender
	pos, ok := a.freePositionNear(f.homeIndex(), cdef.Wide, reflect)
	if !ok {
		return nil, false
	}

	u := a.newUnit(f, army.NewTroop(cdef, count), reflect)
	u.SetModes(status.Summoned | status.Moved)
	u.placeAt(pos)
	f.units = append(f.units, u)

	a.emit(Event{Kind: EventSummoned, Unit: u.uid, Spell: id, Count: count, Cell: u.HeadIndex()})
	return u, true
}

// freePositionNear returns the free position whose head is closest to from,
// lowest index first on ties.
func (a *Arena) freePositionNear(from int, wide, reflect bool) (Position, bool) {
	if !IsValidIndex(from) {
		from = 0
	}
	heads := make([]int, BoardSize)
	for i := range heads {
		heads[i] = i
	}
	slices.SortStableFunc(heads, func(x, y int) int {
		return cmp.Compare(Distance(from, x), Distance(from, y))
	})
	for _, h := range heads {
		if h == from {
			continue
		}
		p := a.board.PositionFor(h, wide, reflect)
		if a.isFreePosition(p, nil) {
			return p, true
		}
	}
	return Position{}, false
}
