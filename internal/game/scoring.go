package game

import (
	"sort"
)

// TargetScore 触发终局的目标分数
const TargetScore = 15

// ScoreBreakdown 分数构成
type ScoreBreakdown struct {
	CardPoints  int
	NoblePoints int
	Total       int
}

// PlayerScoreValue 玩家分数评估结果
type PlayerScoreValue struct {
	PlayerID      string
	Score         int
	ReachedTarget bool
	Breakdown     ScoreBreakdown
}

// WinnerResolutionValue 胜者结算结果
type WinnerResolutionValue struct {
	WinnerPlayerIDs      []string
	FinalScores          map[string]int
	HighestScore         int
	TieBrokenByCardCount bool
}

// CalculatePlayerScore 计算单个玩家的分数构成
func CalculatePlayerScore(player *PlayerState) (*ScoreBreakdown, *PolicyError) {
	cardPoints := 0
	for _, cardID := range player.PurchasedCardIDs {
		card, ok := cardByID[cardID]
		if !ok {
			return nil, policyFailure(PolicyScoringCardNotFound)
		}
		cardPoints += card.Points
	}

	noblePoints := 0
	for _, nobleID := range player.NobleIDs {
		noble, ok := nobleByID[nobleID]
		if !ok {
			return nil, policyFailure(PolicyScoringNobleNotFound)
		}
		noblePoints += noble.Points
	}

	return &ScoreBreakdown{
		CardPoints:  cardPoints,
		NoblePoints: noblePoints,
		Total:       cardPoints + noblePoints,
	}, nil
}

// EvaluatePlayerScore 评估玩家分数
func EvaluatePlayerScore(state *State, playerID string) (*PlayerScoreValue, *PolicyError) {
	player, ok := state.Players[playerID]
	if !ok {
		return nil, policyFailure(PolicyScoringPlayerNotFound)
	}

	breakdown, perr := CalculatePlayerScore(player)
	if perr != nil {
		return nil, perr
	}

	return &PlayerScoreValue{
		PlayerID:      playerID,
		Score:         breakdown.Total,
		ReachedTarget: breakdown.Total >= TargetScore,
		Breakdown:     *breakdown,
	}, nil
}

// BuildFinalScores 计算所有玩家的最终分数
func BuildFinalScores(state *State) (map[string]int, *PolicyError) {
	finalScores := make(map[string]int, len(state.Players))
	for playerID := range state.Players {
		value, perr := EvaluatePlayerScore(state, playerID)
		if perr != nil {
			return nil, perr
		}
		finalScores[playerID] = value.Score
	}
	return finalScores, nil
}

// ResolveGameWinners 结算胜者。
// 最高分获胜；平分时已购卡少者胜；仍并列则共同获胜，按ID排序。
func ResolveGameWinners(state *State, providedFinalScores map[string]int) (*WinnerResolutionValue, *PolicyError) {
	if len(state.Players) == 0 {
		return nil, policyFailure(PolicyScoringNoPlayers)
	}

	var finalScores map[string]int
	var perr *PolicyError
	if providedFinalScores != nil {
		finalScores, perr = validateProvidedFinalScores(state, providedFinalScores)
	} else {
		finalScores, perr = BuildFinalScores(state)
	}
	if perr != nil {
		return nil, perr
	}

	playerIDs := make([]string, 0, len(state.Players))
	for playerID := range state.Players {
		playerIDs = append(playerIDs, playerID)
	}

	highestScore := 0
	first := true
	for _, playerID := range playerIDs {
		if first || finalScores[playerID] > highestScore {
			highestScore = finalScores[playerID]
			first = false
		}
	}

	var topScorePlayers []string
	for _, playerID := range playerIDs {
		if finalScores[playerID] == highestScore {
			topScorePlayers = append(topScorePlayers, playerID)
		}
	}

	tieBrokenByCardCount := false
	winnerPlayerIDs := topScorePlayers
	if len(topScorePlayers) > 1 {
		minimumCardCount := len(state.Players[topScorePlayers[0]].PurchasedCardIDs)
		for _, playerID := range topScorePlayers[1:] {
			if count := len(state.Players[playerID].PurchasedCardIDs); count < minimumCardCount {
				minimumCardCount = count
			}
		}

		winnerPlayerIDs = nil
		for _, playerID := range topScorePlayers {
			if len(state.Players[playerID].PurchasedCardIDs) == minimumCardCount {
				winnerPlayerIDs = append(winnerPlayerIDs, playerID)
			}
		}
		tieBrokenByCardCount = len(winnerPlayerIDs) < len(topScorePlayers)
	}

	if len(winnerPlayerIDs) == 0 {
		return nil, policyFailure(PolicyScoringTiebreakerUnresolved)
	}

	sort.Strings(winnerPlayerIDs)
	return &WinnerResolutionValue{
		WinnerPlayerIDs:      winnerPlayerIDs,
		FinalScores:          finalScores,
		HighestScore:         highestScore,
		TieBrokenByCardCount: tieBrokenByCardCount,
	}, nil
}

// validateProvidedFinalScores 外部分数必须与玩家集合一一对应
func validateProvidedFinalScores(state *State, provided map[string]int) (map[string]int, *PolicyError) {
	for playerID := range state.Players {
		if _, ok := provided[playerID]; !ok {
			return nil, policyFailure(PolicyScoringFinalScoresInvalid)
		}
	}

	for providedID := range provided {
		if _, ok := state.Players[providedID]; !ok {
			return nil, policyFailure(PolicyScoringFinalScoresInvalid)
		}
	}

	return provided, nil
}
