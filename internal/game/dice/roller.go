package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolls.
// All rolls are logged at debug level with their bounds and result.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source { return r.src }

// Between returns a uniform value in [lo, hi]. Reversed bounds are swapped and
// equal bounds return lo without consuming randomness.
//
// Postcondition: min(lo,hi) <= result <= max(lo,hi).
func (r *Roller) Between(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	v := lo + r.src.Intn(hi-lo+1)
	r.logger.Debug("dice roll",
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("result", v),
	)
	return v
}

// Chance reports whether a percent roll succeeds.
//
// Postcondition: percent <= 0 never succeeds; percent >= 100 always succeeds.
func (r *Roller) Chance(percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return r.Between(1, 100) <= percent
}

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) int {
	total := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", expr.Raw),
		zap.Int("total", total),
	)
	return total
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns the total or a parse error.
func (r *Roller) RollExpr(expr string) (int, error) {
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return r.Roll(e), nil
}
