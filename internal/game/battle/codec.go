package battle

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/status"
)

const snapshotVersion = 1

// Decoding limits for malformed input.
const (
	maxUnitsPerForce = 2 * BoardSize
	maxEffects       = 64
)

// AppendBinary appends the unit wire shape: the stack, then the pool, dead
// count, shots, effect durations, head cell, facing, modes and identifier,
// followed by the initial size, disrupting rays, mirror link, army slot and
// blind answer.
func (u *Unit) AppendBinary(b []byte) []byte {
	b = army.AppendTroop(b, &u.Troop)
	b = protowire.AppendVarint(b, uint64(u.hp))
	b = protowire.AppendVarint(b, uint64(u.dead))
	b = protowire.AppendVarint(b, uint64(u.shots))

	entries := u.affected.Entries()
	b = protowire.AppendVarint(b, uint64(len(entries)))
	for _, e := range entries {
		b = protowire.AppendVarint(b, uint64(e.Mask))
		b = protowire.AppendVarint(b, uint64(e.Duration))
	}

	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(u.HeadIndex())))
	b = protowire.AppendVarint(b, protowire.EncodeBool(u.reflect))
	b = protowire.AppendVarint(b, uint64(u.modes))
	b = protowire.AppendVarint(b, uint64(u.uid))

	b = protowire.AppendVarint(b, uint64(u.initialCount))
	b = protowire.AppendVarint(b, uint64(u.disruptingRay))
	var mirror uint32
	if u.mirror != nil {
		mirror = u.mirror.uid
	}
	b = protowire.AppendVarint(b, uint64(mirror))
	var slot uint64
	if s, ok := u.force.slots[u.uid]; ok {
		slot = uint64(s) + 1
	}
	b = protowire.AppendVarint(b, slot)
	return protowire.AppendVarint(b, protowire.EncodeBool(u.blindAnswer))
}

// Snapshot encodes the battle state: round, identifier counter, both armies
// with their units, and the graveyard. Commanders, listeners and the random
// source are not encoded.
func (a *Arena) Snapshot() []byte {
	b := protowire.AppendVarint(nil, snapshotVersion)
	b = protowire.AppendVarint(b, uint64(a.round))
	b = protowire.AppendVarint(b, uint64(a.nextUID))
	for _, f := range []*Force{a.attacker, a.defender} {
		b = f.army.AppendBinary(b)
		b = protowire.AppendVarint(b, uint64(len(f.units)))
		for _, u := range f.units {
			b = u.AppendBinary(b)
		}
	}
	cells := a.graveyard.Cells()
	b = protowire.AppendVarint(b, uint64(len(cells)))
	for _, c := range cells {
		uids := a.graveyard.UnitsAt(c)
		b = protowire.AppendVarint(b, uint64(c))
		b = protowire.AppendVarint(b, uint64(len(uids)))
		for _, uid := range uids {
			b = protowire.AppendVarint(b, uint64(uid))
		}
	}
	return b
}

// RestoreArena rebuilds a battle from a Snapshot. The armies in cfg keep
// their commanders and receive the encoded troops.
//
// Postcondition: Returns the restored arena, or an error on malformed or
// inconsistent data.
func RestoreArena(cfg Config, data []byte) (*Arena, error) {
	a, err := newArena(cfg)
	if err != nil {
		return nil, err
	}
	r := &reader{b: data}
	if v := r.varint("version"); r.err == nil && v != snapshotVersion {
		return nil, fmt.Errorf("battle: unsupported snapshot version %d", v)
	}
	a.round = r.integer("round")
	a.nextUID = uint32(r.varint("next uid"))

	mirrors := map[*Unit]uint32{}
	for _, f := range []*Force{a.attacker, a.defender} {
		r.army(f.army, a.creatures)
		n := r.integer("unit count")
		if n > maxUnitsPerForce {
			return nil, fmt.Errorf("battle: %d units exceed the limit of %d", n, maxUnitsPerForce)
		}
		for i := 0; i < n && r.err == nil; i++ {
			if u, mirror := r.unit(a, f); u != nil && mirror != 0 {
				mirrors[u] = mirror
			}
		}
	}

	cells := r.integer("graveyard size")
	for i := 0; i < cells && r.err == nil; i++ {
		cell := r.integer("graveyard cell")
		n := r.integer("graveyard units")
		for j := 0; j < n && r.err == nil; j++ {
			a.graveyard.Add(cell, uint32(r.varint("graveyard uid")))
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	for u, uid := range mirrors {
		other := a.UnitByUID(uid)
		if other == nil {
			return nil, fmt.Errorf("battle: unit %d mirrors unknown unit %d", u.uid, uid)
		}
		u.mirror = other
	}
	return a, nil
}

// reader consumes protowire values and keeps the first error.
type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) varint(what string) uint64 {
	if r.err != nil {
		return 0
	}
	v, n := protowire.ConsumeVarint(r.b[r.off:])
	if n < 0 {
		r.err = fmt.Errorf("%w: %s: %v", army.ErrTruncated, what, protowire.ParseError(n))
		return 0
	}
	r.off += n
	return v
}

func (r *reader) integer(what string) int { return int(r.varint(what)) }

func (r *reader) boolean(what string) bool { return protowire.DecodeBool(r.varint(what)) }

func (r *reader) army(a *army.Army, reg *creature.Registry) {
	if r.err != nil {
		return
	}
	n, err := a.Decode(r.b[r.off:], reg)
	if err != nil {
		r.err = err
		return
	}
	r.off += n
}

func (r *reader) troop(reg *creature.Registry) army.Troop {
	if r.err != nil {
		return army.Troop{}
	}
	t, n, err := army.ConsumeTroop(r.b[r.off:], reg)
	if err != nil {
		r.err = err
		return army.Troop{}
	}
	r.off += n
	return t
}

// unit decodes one unit into f and returns it with its mirror link.
func (r *reader) unit(a *Arena, f *Force) (*Unit, uint32) {
	t := r.troop(a.creatures)
	u := &Unit{Troop: t, arena: a, force: f}
	u.hp = r.integer("hp")
	u.dead = r.integer("dead")
	u.shots = r.integer("shots")

	n := r.integer("effect count")
	if n > maxEffects {
		r.err = fmt.Errorf("battle: %d effects exceed the limit of %d", n, maxEffects)
	}
	for i := 0; i < n && r.err == nil; i++ {
		mask := status.Flags(r.varint("effect mask"))
		u.affected.Set(mask, r.integer("effect duration"))
	}

	head := int(protowire.DecodeZigZag(r.varint("head")))
	u.reflect = r.boolean("reflect")
	u.modes = status.Flags(r.varint("modes"))
	u.uid = uint32(r.varint("uid"))
	u.initialCount = r.integer("initial count")
	u.disruptingRay = r.integer("disrupting ray")
	mirror := uint32(r.varint("mirror"))
	slot := r.integer("slot")
	u.blindAnswer = r.boolean("blind answer")
	if r.err != nil {
		return nil, 0
	}
	if t.Creature() == nil {
		r.err = fmt.Errorf("battle: unit %d has no creature", u.uid)
		return nil, 0
	}

	if slot > 0 {
		f.slots[u.uid] = slot - 1
	}
	if IsValidIndex(head) {
		u.position = a.board.PositionFor(head, u.IsWide(), u.reflect)
		if u.IsValid() {
			if !a.isFreePosition(u.position, u) {
				r.err = fmt.Errorf("battle: unit %d overlaps cell %d", u.uid, head)
				return nil, 0
			}
			u.placeAt(u.position)
		}
	}
	f.units = append(f.units, u)
	return u, mirror
}
