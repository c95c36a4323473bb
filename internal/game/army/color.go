package army

import "fmt"

// Color identifies a player side. Colors are bit flags so sets of players can
// be expressed as masks.
type Color uint8

// Player colors.
const (
	ColorNone   Color = 0
	ColorBlue   Color = 0x01
	ColorGreen  Color = 0x02
	ColorRed    Color = 0x04
	ColorYellow Color = 0x08
	ColorOrange Color = 0x10
	ColorPurple Color = 0x20
)

var colorNames = map[Color]string{
	ColorNone:   "none",
	ColorBlue:   "blue",
	ColorGreen:  "green",
	ColorRed:    "red",
	ColorYellow: "yellow",
	ColorOrange: "orange",
	ColorPurple: "purple",
}

// String returns the color name.
func (c Color) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return fmt.Sprintf("color(%#x)", uint8(c))
}

// ParseColor converts a color name.
func ParseColor(s string) (Color, error) {
	for c, n := range colorNames {
		if n == s {
			return c, nil
		}
	}
	return ColorNone, fmt.Errorf("army: unknown color %q", s)
}

// Control is who issues a side's orders.
type Control uint8

// Control modes.
const (
	ControlNone Control = iota
	ControlHuman
	ControlAI
)

// String returns the control name.
func (c Control) String() string {
	switch c {
	case ControlHuman:
		return "human"
	case ControlAI:
		return "ai"
	}
	return "none"
}

// ParseControl converts a control name.
func ParseControl(s string) (Control, error) {
	switch s {
	case "human":
		return ControlHuman, nil
	case "ai":
		return ControlAI, nil
	case "", "none":
		return ControlNone, nil
	}
	return ControlNone, fmt.Errorf("army: unknown control %q", s)
}

// Morale tiers.
const (
	MoraleTreason = -3
	MoraleAwful   = -2
	MoralePoor    = -1
	MoraleNormal  = 0
	MoraleGood    = 1
	MoraleGreat   = 2
	MoraleBlood   = 3
)

// Luck tiers.
const (
	LuckCursed = -3
	LuckAwful  = -2
	LuckBad    = -1
	LuckNormal = 0
	LuckGood   = 1
	LuckGreat  = 2
	LuckIrish  = 3
)
