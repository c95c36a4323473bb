// Package dice provides the injected randomness abstraction used by the battle
// core, range rolls and the small dice-expression notation used by scenarios.
package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Source is the randomness provider for every roll.
//
// Implementations are not required to be safe for concurrent use; a battle
// owns its Source and runs on a single goroutine.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Expression is a parsed "NdS+M" dice expression.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// Min returns the smallest total the expression can produce.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest total the expression can produce.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Parse parses "d6", "3d6", "2d8+4" or "4d4-1". A bare integer such as "15"
// parses as a constant with Count zero.
//
// Postcondition: Returns an Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Expression{Raw: expr, Modifier: n}, nil
	}

	count, rest, found := strings.Cut(s, "d")
	if !found {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", expr)
	}
	e := Expression{Raw: expr, Count: 1}
	if count != "" {
		n, err := strconv.Atoi(count)
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", expr)
		}
		e.Count = n
	}

	sides := rest
	if i := strings.IndexAny(rest, "+-"); i > 0 {
		sides = rest[:i]
		mod, err := strconv.Atoi(rest[i:])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		e.Modifier = mod
	}
	n, err := strconv.Atoi(sides)
	if err != nil || n < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q", expr)
	}
	e.Sides = n
	return e, nil
}

// Roll evaluates e with src.
//
// Postcondition: e.Min() <= result <= e.Max().
func Roll(e Expression, src Source) int {
	total := e.Modifier
	for i := 0; i < e.Count; i++ {
		total += src.Intn(e.Sides) + 1
	}
	return total
}
