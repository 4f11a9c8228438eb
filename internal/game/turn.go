package game

// EndTurnValue 结束回合评估结果
type EndTurnValue struct {
	PreviousPlayerID string
	NextPlayerID     string
	TurnNumber       int
	RoundNumber      int
	ShouldEndGame    bool
	GameEndedReason  GameEndedReason
}

// FinalRoundTriggerValue 终局触发评估结果
type FinalRoundTriggerValue struct {
	ShouldTriggerFinalRound bool
	EndTriggeredAtTurn      *int
	EndTriggeredByPlayerID  string
}

// EvaluateEndTurn 评估结束回合。
// 回合按playerOrder循环推进；终局标记下轮回触发者时对局结束。
func EvaluateEndTurn(state *State, actorID string, playerOrder []string) (*EndTurnValue, *PolicyError) {
	if perr := assertCurrentPlayer(state, actorID); perr != nil {
		return nil, perr
	}

	if !isValidPlayerOrder(state, playerOrder) {
		return nil, policyFailure(PolicyTurnPlayerOrderInvalid)
	}

	currentIndex := -1
	for i, playerID := range playerOrder {
		if playerID == state.CurrentPlayerID {
			currentIndex = i
			break
		}
	}
	if currentIndex == -1 {
		return nil, policyFailure(PolicyTurnPlayerOrderInvalid)
	}

	nextPlayerID := playerOrder[(currentIndex+1)%len(playerOrder)]
	turnNumber := state.Turn + 1
	roundNumber := (turnNumber-1)/len(playerOrder) + 1

	shouldEndGame := ShouldGameEndAfterFinalRound(state, nextPlayerID)

	value := &EndTurnValue{
		PreviousPlayerID: state.CurrentPlayerID,
		NextPlayerID:     nextPlayerID,
		TurnNumber:       turnNumber,
		RoundNumber:      roundNumber,
		ShouldEndGame:    shouldEndGame,
	}
	if shouldEndGame {
		value.GameEndedReason = EndReasonNoMoreRounds
	}

	return value, nil
}

// EvaluateFinalRoundTrigger 评估是否触发终局。
// 达到目标分且尚未进入终局时记录触发元数据。
func EvaluateFinalRoundTrigger(state *State, actorID string, actorScore int) (*FinalRoundTriggerValue, *PolicyError) {
	if perr := assertCurrentPlayer(state, actorID); perr != nil {
		return nil, perr
	}

	if state.FinalRound {
		return &FinalRoundTriggerValue{ShouldTriggerFinalRound: false}, nil
	}

	if actorScore < TargetScore {
		return &FinalRoundTriggerValue{ShouldTriggerFinalRound: false}, nil
	}

	turn := state.Turn
	return &FinalRoundTriggerValue{
		ShouldTriggerFinalRound: true,
		EndTriggeredAtTurn:      &turn,
		EndTriggeredByPlayerID:  actorID,
	}, nil
}

// ShouldGameEndAfterFinalRound 终局标记下，轮回触发者即结束
func ShouldGameEndAfterFinalRound(state *State, nextPlayerID string) bool {
	return state.FinalRound &&
		state.EndTriggeredByPlayerID != "" &&
		nextPlayerID == state.EndTriggeredByPlayerID
}

func assertCurrentPlayer(state *State, actorID string) *PolicyError {
	if state.CurrentPlayerID != actorID {
		return policyFailure(PolicyTurnNotCurrentPlayer)
	}
	return nil
}

// isValidPlayerOrder 顺序非空、无重复，且与玩家集合一致
func isValidPlayerOrder(state *State, playerOrder []string) bool {
	if len(playerOrder) == 0 {
		return false
	}

	distinct := make(map[string]bool, len(playerOrder))
	for _, playerID := range playerOrder {
		if distinct[playerID] {
			return false
		}
		distinct[playerID] = true
	}

	if len(state.Players) != len(playerOrder) {
		return false
	}

	for playerID := range state.Players {
		if !distinct[playerID] {
			return false
		}
	}

	return true
}
