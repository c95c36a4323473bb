// Package skill provides hero secondary skills and their per-level values.
package skill

import "fmt"

// Secondary identifies a secondary skill.
type Secondary string

// Secondary skills used by battle and joining logic.
const (
	Archery    Secondary = "archery"
	Diplomacy  Secondary = "diplomacy"
	Leadership Secondary = "leadership"
	Luck       Secondary = "luck"
)

// Level is a skill mastery tier.
type Level int

// Mastery tiers.
const (
	None Level = iota
	Basic
	Advanced
	Expert
)

// String returns the tier name.
func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Basic:
		return "basic"
	case Advanced:
		return "advanced"
	case Expert:
		return "expert"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel converts a tier name.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "", "none":
		return None, nil
	case "basic":
		return Basic, nil
	case "advanced":
		return Advanced, nil
	case "expert":
		return Expert, nil
	}
	return None, fmt.Errorf("skill: unknown level %q", s)
}

var values = map[Secondary][4]int{
	Archery:    {0, 10, 25, 50},
	Diplomacy:  {0, 25, 50, 100},
	Leadership: {0, 1, 2, 3},
	Luck:       {0, 1, 2, 3},
}

// Value returns the magnitude of s at level l: a percentage for archery and
// diplomacy, a morale or luck bonus for leadership and luck.
//
// Postcondition: Returns 0 for None, unknown skills and out-of-range levels.
func Value(s Secondary, l Level) int {
	v, ok := values[s]
	if !ok || l < None || l > Expert {
		return 0
	}
	return v[l]
}
