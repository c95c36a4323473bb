package army

import (
	"github.com/cory-johannsen/warband/internal/game/artifact"
	"github.com/cory-johannsen/warband/internal/game/creature"
	"github.com/cory-johannsen/warband/internal/game/skill"
)

// JoinReason is the outcome of meeting a neutral stack.
type JoinReason int

// Joining outcomes.
const (
	JoinNone JoinReason = iota
	JoinAlliance
	JoinBane
	JoinFree
	JoinForMoney
	JoinRunAway
)

// String returns the outcome name.
func (r JoinReason) String() string {
	switch r {
	case JoinAlliance:
		return "alliance"
	case JoinBane:
		return "bane"
	case JoinFree:
		return "free"
	case JoinForMoney:
		return "for_money"
	case JoinRunAway:
		return "run_away"
	}
	return "none"
}

// JoinDecision is the joining outcome and, for partial joins, how many join.
type JoinDecision struct {
	Reason JoinReason
	Count  int
}

// AwardKind is a campaign award affecting neutral creatures.
type AwardKind int

// Campaign award kinds.
const (
	AwardAlliance AwardKind = iota + 1
	AwardCurse
)

// CampaignAward makes a creature line friendly or hostile for a campaign player.
type CampaignAward struct {
	Kind     AwardKind
	Creature string
}

// Encounter describes the tile the neutral stack stands on.
type Encounter struct {
	// Campaign enables campaign awards.
	Campaign bool
	Awards   []CampaignAward
	// SkipJoin marks monsters that never join.
	SkipJoin bool
	// FreeJoin marks monsters that join for free when the army is strong enough.
	FreeJoin bool
}

// Leader is a commander with an army of its own.
type Leader interface {
	Commander
	Army() *Army
}

const (
	freeJoinRatio = 2.0
	runAwayRatio  = 5.0
)

// JoinSolution decides how neutral reacts to leader. It is recomputed on every
// call and never mutates its inputs.
//
// Precondition: leader and reg must be non-nil.
func JoinSolution(leader Leader, enc Encounter, neutral Troop, reg *creature.Registry) JoinDecision {
	if enc.Campaign && leader.Control() == ControlHuman && neutral.Creature() != nil {
		for _, award := range enc.Awards {
			for _, def := range reg.UpgradeChain(creatureOrNil(reg, award.Creature)) {
				if def.ID != neutral.ID() {
					continue
				}
				switch award.Kind {
				case AwardAlliance:
					return JoinDecision{Reason: JoinAlliance, Count: neutral.Count()}
				case AwardCurse:
					return JoinDecision{Reason: JoinBane, Count: neutral.Count()}
				}
			}
		}
	}

	if HasArtifact(leader, artifact.HideousMask) {
		return JoinDecision{}
	}
	if enc.SkipJoin || !neutral.IsValid() {
		return JoinDecision{}
	}

	ratio := leader.Army().Strength() / neutral.Strength()

	if ratio > freeJoinRatio {
		if enc.FreeJoin {
			return JoinDecision{Reason: JoinFree, Count: neutral.Count()}
		}
		if diplomacy := SkillValue(leader, skill.Diplomacy); diplomacy > 0 {
			amount := neutral.Creature().CountFromHitPoints(neutral.HitPoints() * diplomacy / 100)
			if amount > 0 {
				return JoinDecision{Reason: JoinForMoney, Count: amount}
			}
		}
	}

	if ratio > runAwayRatio && leader.Control() != ControlAI {
		return JoinDecision{Reason: JoinRunAway, Count: neutral.Count()}
	}
	return JoinDecision{}
}

func creatureOrNil(reg *creature.Registry, id string) *creature.Def {
	def, _ := reg.Get(id)
	return def
}
