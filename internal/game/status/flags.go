// Package status provides the battle-only unit mode bits and the duration
// registry that expires them.
package status

import (
	"math/bits"
	"strings"
)

// Flags is a set of unit mode bits. The zero value is the empty set.
type Flags uint64

// Turn bookkeeping.
const (
	Responded Flags = 1 << iota
	Moved
	HardSkip
	SkipMove
	LuckGood
	LuckBad
	MoraleGood
	MoraleBad
)

// Unit kind markers.
const (
	Tower Flags = 1 << (iota + 16)
	Summoned
	MirrorOwner
	MirrorImage
)

// Duration-bearing spell effects.
const (
	Bloodlust Flags = 1 << (iota + 32)
	Bless
	Haste
	Shield
	StoneSkin
	DragonSlayer
	SteelSkin
	Curse
	Slow
	Berserker
	Hypnotize
	Blind
	Paralyze
	Stone
	AntiMagic
)

// Flag groups.
const (
	GoodMagic     = Bloodlust | Bless | Haste | Shield | StoneSkin | DragonSlayer | SteelSkin
	BadMagic      = Curse | Slow | Berserker | Hypnotize | Blind | Paralyze | Stone
	Magic         = GoodMagic | BadMagic | AntiMagic
	ParalyzeMagic = Paralyze | Stone
	MindMagic     = Berserker | Hypnotize | Blind | Paralyze
	TurnTransient = Responded | Moved | HardSkip | SkipMove | LuckGood | LuckBad | MoraleGood | MoraleBad
)

var flagNames = map[Flags]string{
	Responded:    "responded",
	Moved:        "moved",
	HardSkip:     "hard_skip",
	SkipMove:     "skip_move",
	LuckGood:     "luck_good",
	LuckBad:      "luck_bad",
	MoraleGood:   "morale_good",
	MoraleBad:    "morale_bad",
	Tower:        "tower",
	Summoned:     "summoned",
	MirrorOwner:  "mirror_owner",
	MirrorImage:  "mirror_image",
	Bloodlust:    "bloodlust",
	Bless:        "bless",
	Haste:        "haste",
	Shield:       "shield",
	StoneSkin:    "stone_skin",
	DragonSlayer: "dragon_slayer",
	SteelSkin:    "steel_skin",
	Curse:        "curse",
	Slow:         "slow",
	Berserker:    "berserker",
	Hypnotize:    "hypnotize",
	Blind:        "blind",
	Paralyze:     "paralyze",
	Stone:        "stone",
	AntiMagic:    "anti_magic",
}

// Has reports whether any bit of mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask != 0 }

// HasAll reports whether every bit of mask is set.
func (f Flags) HasAll(mask Flags) bool { return f&mask == mask }

// With returns f with mask set.
func (f Flags) With(mask Flags) Flags { return f | mask }

// Without returns f with mask cleared.
func (f Flags) Without(mask Flags) Flags { return f &^ mask }

// Each calls fn for every single bit set in f, lowest first.
func (f Flags) Each(fn func(Flags)) {
	for rest := uint64(f); rest != 0; rest &= rest - 1 {
		fn(Flags(1) << bits.TrailingZeros64(rest))
	}
}

// String renders the set as "bless|haste".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	f.Each(func(bit Flags) {
		if n, ok := flagNames[bit]; ok {
			names = append(names, n)
		} else {
			names = append(names, "unknown")
		}
	})
	return strings.Join(names, "|")
}
