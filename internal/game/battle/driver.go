package battle

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/army"
	"github.com/cory-johannsen/warband/internal/game/status"
)

// Result summarizes a finished or interrupted battle.
type Result struct {
	// Winner is the surviving side, or ColorNone when the battle is undecided.
	Winner         army.Color
	Rounds         int
	Finished       bool
	AttackerLosses int
	DefenderLosses int
}

// IsFinished reports whether one side has no fighters left.
func (a *Arena) IsFinished() bool {
	return !a.attacker.HasFighters() || !a.defender.HasFighters()
}

// Winner returns the side that still has fighters once the battle is
// finished, or ColorNone.
func (a *Arena) Winner() army.Color {
	att, def := a.attacker.HasFighters(), a.defender.HasFighters()
	switch {
	case att && !def:
		return a.attacker.Color()
	case def && !att:
		return a.defender.Color()
	}
	return army.ColorNone
}

// NewTurn starts the next round for every living unit.
func (a *Arena) NewTurn() {
	a.round++
	for _, u := range a.Units() {
		if u.IsValid() {
			u.NewTurn()
		}
	}
}

// TurnOrder returns the units that may act this round: fastest first, the
// attacker before the defender on equal speed, then by identifier.
func (a *Arena) TurnOrder() []*Unit {
	var order []*Unit
	for _, u := range a.Units() {
		if u.IsValid() && u.Speed(false, false) > 0 {
			order = append(order, u)
		}
	}
	slices.SortStableFunc(order, func(x, y *Unit) int {
		if c := cmp.Compare(y.Speed(false, false), x.Speed(false, false)); c != 0 {
			return c
		}
		if x.force != y.force {
			if x.force == a.attacker {
				return -1
			}
			return 1
		}
		return cmp.Compare(x.uid, y.uid)
	})
	return order
}

// RunAutomated lets the computer play both sides until one is destroyed or
// maxRounds rounds have passed, then writes surviving counts back to the
// armies.
func (a *Arena) RunAutomated(maxRounds int) Result {
	for a.round < maxRounds && !a.IsFinished() {
		a.NewTurn()
		for _, u := range a.TurnOrder() {
			if a.IsFinished() {
				break
			}
			if !u.IsValid() || u.Modes(status.Moved) {
				continue
			}
			a.takeTurn(u)
		}
	}
	a.attacker.SyncArmy()
	a.defender.SyncArmy()

	res := a.Result()
	a.logger.Info("battle ended",
		zap.Stringer("winner", res.Winner),
		zap.Int("rounds", res.Rounds),
		zap.Bool("finished", res.Finished),
		zap.Int("attacker_losses", res.AttackerLosses),
		zap.Int("defender_losses", res.DefenderLosses),
	)
	return res
}

// Result reports the current outcome.
func (a *Arena) Result() Result {
	return Result{
		Winner:         a.Winner(),
		Rounds:         a.round,
		Finished:       a.IsFinished(),
		AttackerLosses: a.attacker.Losses(),
		DefenderLosses: a.defender.Losses(),
	}
}

func (a *Arena) takeTurn(u *Unit) {
	defer u.SetModes(status.Moved)

	if u.Modes(status.Blind | status.ParalyzeMagic) {
		return
	}
	u.SetRandomMorale()
	if u.Modes(status.MoraleBad) {
		a.logger.Debug("bad morale", zap.Stringer("unit", u))
		return
	}

	for range 2 {
		a.act(u)
		if !u.IsValid() || a.IsFinished() || !u.Modes(status.MoraleGood) {
			return
		}
		// Good morale grants one extra action.
		u.ResetModes(status.MoraleGood)
	}
}

func (a *Arena) act(u *Unit) {
	target := a.SelectTarget(u)
	if target == nil {
		return
	}
	ranged := u.IsArchers() && !u.IsHandFighting()
	if !ranged && !u.IsAdjacentTo(target) {
		if u.Modes(status.Tower) {
			return
		}
		a.stepToward(u, target)
		if !u.IsAdjacentTo(target) {
			return
		}
	}
	u.SetRandomLuck()
	a.Attack(u, target)
}
