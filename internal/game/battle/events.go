package battle

import (
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/spell"
)

// EventKind classifies battle notifications.
type EventKind int

// Battle notifications. The core emits them; presentation is left to listeners.
const (
	EventDamage EventKind = iota + 1
	EventUnitDestroyed
	EventMirrorImageCreated
	EventMirrorImageRemoved
	EventResurrected
	EventSpellApplied
	EventSpellRejected
	EventSummoned
	EventMoved
)

var eventNames = map[EventKind]string{
	EventDamage:             "damage",
	EventUnitDestroyed:      "unit_destroyed",
	EventMirrorImageCreated: "mirror_image_created",
	EventMirrorImageRemoved: "mirror_image_removed",
	EventResurrected:        "resurrected",
	EventSpellApplied:       "spell_applied",
	EventSpellRejected:      "spell_rejected",
	EventSummoned:           "summoned",
	EventMoved:              "moved",
}

// String returns the event name.
func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one battle notification. Unused fields are zero.
type Event struct {
	Kind   EventKind
	Round  int
	Unit   uint32
	Source uint32
	Spell  spell.ID
	Damage int
	Killed int
	Count  int
	Cell   int
}
