package game

import (
	"sort"
)

// NoblePoints 贵族牌分值
const NoblePoints = 3

// NobleVisitValue 贵族访问评估结果
type NobleVisitValue struct {
	EligibleNobleIDs []string
	GrantedNobleID   string
	ScoreDelta       int
}

// EvaluateNobleVisit 评估贵族访问。
// 同时满足多张贵族时，按ID排序授予最小的一张。
func EvaluateNobleVisit(state *State, actorID string) (*NobleVisitValue, *PolicyError) {
	player, ok := state.Players[actorID]
	if !ok {
		return nil, policyFailure(PolicyNoblePlayerNotFound)
	}

	var eligible []string
	for _, nobleID := range state.Board.OpenNobleIDs {
		noble, ok := nobleByID[nobleID]
		if !ok {
			return nil, policyFailure(PolicyNobleTileNotFound)
		}

		if IsEligibleForNoble(player.Bonuses, noble.Requirement) {
			eligible = append(eligible, noble.ID)
		}
	}

	sort.Strings(eligible)

	value := &NobleVisitValue{EligibleNobleIDs: eligible}
	if len(eligible) > 0 {
		value.GrantedNobleID = eligible[0]
		value.ScoreDelta = NoblePoints
	}

	return value, nil
}

// IsEligibleForNoble 判断奖励是否满足贵族要求
func IsEligibleForNoble(bonuses TokenWallet, requirement TokenWallet) bool {
	for _, color := range GemColors {
		if bonuses[color] < requirement[color] {
			return false
		}
	}
	return true
}
