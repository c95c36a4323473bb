package army

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cory-johannsen/warband/internal/game/creature"
)

// ErrTruncated is returned when encoded state ends early or is malformed.
var ErrTruncated = errors.New("truncated battle state")

// AppendTroop appends the creature ID and count of t.
func AppendTroop(b []byte, t *Troop) []byte {
	b = protowire.AppendString(b, t.ID())
	return protowire.AppendVarint(b, uint64(t.Count()))
}

// ConsumeTroop decodes a troop written by AppendTroop, resolving the creature
// through reg. An empty ID decodes to an empty slot.
//
// Postcondition: Returns the troop and bytes consumed, or an error.
func ConsumeTroop(b []byte, reg *creature.Registry) (Troop, int, error) {
	id, n := protowire.ConsumeString(b)
	if n < 0 {
		return Troop{}, 0, fmt.Errorf("%w: troop id: %v", ErrTruncated, protowire.ParseError(n))
	}
	count, m := protowire.ConsumeVarint(b[n:])
	if m < 0 {
		return Troop{}, 0, fmt.Errorf("%w: troop count: %v", ErrTruncated, protowire.ParseError(m))
	}
	if id == "" {
		return Troop{}, n + m, nil
	}
	def, err := reg.Lookup(id)
	if err != nil {
		return Troop{}, 0, err
	}
	return NewTroop(def, int(count)), n + m, nil
}

// AppendBinary appends the army wire shape: slot count, each troop, the spread
// formation flag and the owning color. The commander is not encoded.
func (a *Army) AppendBinary(b []byte) []byte {
	b = protowire.AppendVarint(b, MaxTroops)
	for i := range a.slots {
		b = AppendTroop(b, &a.slots[i])
	}
	b = protowire.AppendVarint(b, protowire.EncodeBool(a.spread))
	return protowire.AppendVarint(b, uint64(a.Color()))
}

// Decode replaces the army's troops, formation and color from b. Extra encoded
// slots beyond MaxTroops are rejected; missing slots are emptied.
//
// Postcondition: Returns bytes consumed, or an error with the army unchanged.
func (a *Army) Decode(b []byte, reg *creature.Registry) (int, error) {
	size, off := protowire.ConsumeVarint(b)
	if off < 0 {
		return 0, fmt.Errorf("%w: army size: %v", ErrTruncated, protowire.ParseError(off))
	}
	if size > MaxTroops {
		return 0, fmt.Errorf("army: %d slots exceed the limit of %d", size, MaxTroops)
	}
	var slots [MaxTroops]Troop
	for i := 0; i < int(size); i++ {
		t, n, err := ConsumeTroop(b[off:], reg)
		if err != nil {
			return 0, fmt.Errorf("army slot %d: %w", i, err)
		}
		slots[i] = t
		off += n
	}
	spread, n := protowire.ConsumeVarint(b[off:])
	if n < 0 {
		return 0, fmt.Errorf("%w: army formation: %v", ErrTruncated, protowire.ParseError(n))
	}
	off += n
	color, n := protowire.ConsumeVarint(b[off:])
	if n < 0 {
		return 0, fmt.Errorf("%w: army color: %v", ErrTruncated, protowire.ParseError(n))
	}
	off += n

	a.slots = slots
	a.spread = protowire.DecodeBool(spread)
	a.color = Color(color)
	return off, nil
}
