package game

import (
	"encoding/json"
	"fmt"
)

// FailureCode 状态转换失败分类
type FailureCode string

const (
	FailureEnvelopeInvalid       FailureCode = "COMMAND_ENVELOPE_INVALID"
	FailurePolicyViolation       FailureCode = "POLICY_VIOLATION"
	FailureStateNotActive        FailureCode = "STATE_NOT_ACTIVE"
	FailureStateInvariantBroken  FailureCode = "STATE_INVARIANT_BROKEN"
	FailureTransitionBuildFailed FailureCode = "TRANSITION_BUILD_FAILED"
)

// ApplyInput 状态转换输入
type ApplyInput struct {
	State             *State
	Command           *Command
	PlayerOrder       []string
	DeckCardIDsByTier map[DeckTier][]string
}

// ApplyResult 状态转换成功结果
type ApplyResult struct {
	Events    []Event
	NextState *State
}

// ApplyFailure 状态转换类型化失败
type ApplyFailure struct {
	Code       FailureCode
	PolicyCode PolicyCode
	Reason     string
}

// Error 实现error接口
func (f *ApplyFailure) Error() string {
	if f.Code == FailurePolicyViolation {
		return fmt.Sprintf("%s:%s", f.Code, f.PolicyCode)
	}
	return fmt.Sprintf("%s:%s", f.Code, f.Reason)
}

// Apply 纯函数状态转换：(状态, 命令) -> (事件, 下一状态) | 类型化失败。
// 不做任何IO，相同输入永远得到相同输出。
func Apply(input ApplyInput) (*ApplyResult, *ApplyFailure) {
	if failure := validatePreflight(input); failure != nil {
		return nil, failure
	}

	result, failure := executeTransition(input)
	if failure != nil {
		return nil, failure
	}

	return validateTransitionOutcome(input.State, result)
}

// validatePreflight 转换前的信封与状态检查
func validatePreflight(input ApplyInput) *ApplyFailure {
	state, cmd := input.State, input.Command

	if ok, reason := ValidateCommandEnvelope(cmd); !ok {
		return transitionFailure(FailureEnvelopeInvalid, reason)
	}

	if state.Status != StatusInProgress {
		return transitionFailure(FailureStateNotActive, "STATE_NOT_IN_PROGRESS")
	}

	if cmd.GameID != state.GameID {
		return transitionFailure(FailureStateInvariantBroken, "GAME_ID_MISMATCH")
	}

	if cmd.Type != CommandEndTurn && state.CurrentPlayerID != cmd.ActorID {
		return policyViolation(PolicyTurnNotCurrentPlayer)
	}

	return nil
}

func executeTransition(input ApplyInput) (*ApplyResult, *ApplyFailure) {
	switch input.Command.Type {
	case CommandTakeTokens:
		return applyTakeTokensTransition(input)
	case CommandReserveCard:
		return applyReserveCardTransition(input)
	case CommandBuyCard:
		return applyBuyCardTransition(input)
	case CommandEndTurn:
		return applyEndTurnTransition(input)
	default:
		return nil, transitionFailure(FailureEnvelopeInvalid, ReasonInvalidType)
	}
}

func applyTakeTokensTransition(input ApplyInput) (*ApplyResult, *ApplyFailure) {
	cmd := input.Command
	var payload TakeTokensPayload
	if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
		return nil, transitionFailure(FailureEnvelopeInvalid, ReasonInvalidPayload)
	}

	takeValue, perr := EvaluateTakeTokens(input.State, cmd.ActorID, &payload)
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	nextState := input.State.Clone()
	actor, ok := nextState.Players[cmd.ActorID]
	if !ok {
		return nil, transitionFailure(FailureStateInvariantBroken, "ACTOR_NOT_FOUND")
	}

	actor.Tokens = takeValue.WalletAfter.Clone()
	nextState.Board.BankTokens = takeValue.BankAfter.Clone()

	nextVersion := input.State.Version + 1
	event := Event{
		Type:    EventTokensTaken,
		GameID:  cmd.GameID,
		ActorID: cmd.ActorID,
		Version: nextVersion,
		Payload: TokensTakenPayload{
			Tokens: positiveGemRecord(takeValue.TakenTokens),
		},
	}

	nextState.Version = nextVersion
	return &ApplyResult{Events: []Event{event}, NextState: nextState}, nil
}

func applyReserveCardTransition(input ApplyInput) (*ApplyResult, *ApplyFailure) {
	cmd := input.Command
	var payload ReserveCardPayload
	if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
		return nil, transitionFailure(FailureEnvelopeInvalid, ReasonInvalidPayload)
	}

	deckTopByTier := map[DeckTier]string{}
	if payload.Target.Kind == TargetDeckTop {
		resolved, failure := resolveDeckTopTarget(input, payload.Target.Tier)
		if failure != nil {
			return nil, failure
		}
		deckTopByTier = resolved
	}

	reserveValue, perr := EvaluateReserveCard(input.State, cmd.ActorID, &payload, ReserveCardContext{
		DeckTopCardIDsByTier: deckTopByTier,
	})
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	var deckCardIDs []string
	if reserveValue.TargetKind == TargetOpenCard {
		ids, failure := requireDeckContextForTier(input.DeckCardIDsByTier, reserveValue.Tier)
		if failure != nil {
			return nil, failure
		}
		deckCardIDs = ids
	}

	actor, ok := input.State.Players[cmd.ActorID]
	if !ok {
		return nil, transitionFailure(FailureStateInvariantBroken, "ACTOR_NOT_FOUND")
	}

	delta, perr := ApplyTokenDeltaWithLimit(TokenDeltaInput{
		PlayerTokens:   actor.Tokens,
		BankTokens:     input.State.Board.BankTokens,
		GainedTokens:   map[string]int{string(Gold): reserveValue.GoldToTake},
		ReturnedTokens: payload.ReturnedTokens,
	})
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	nextState := input.State.Clone()
	nextActor, ok := nextState.Players[cmd.ActorID]
	if !ok {
		return nil, transitionFailure(FailureStateInvariantBroken, "ACTOR_NOT_FOUND")
	}

	nextActor.Tokens = delta.WalletAfter.Clone()
	nextState.Board.BankTokens = delta.BankAfter.Clone()
	nextActor.ReservedCardIDs = append(nextActor.ReservedCardIDs, reserveValue.CardID)

	if reserveValue.TargetKind == TargetOpenCard {
		if failure := removeOpenCardAndRefill(removeAndRefillInput{
			state:       nextState,
			tier:        reserveValue.Tier,
			cardID:      reserveValue.CardID,
			deckCardIDs: deckCardIDs,
			drawSeed:    input.State.Seed,
			drawVersion: input.State.Version,
		}); failure != nil {
			return nil, failure
		}
	}

	nextVersion := input.State.Version + 1
	event := Event{
		Type:    EventCardReserved,
		GameID:  cmd.GameID,
		ActorID: cmd.ActorID,
		Version: nextVersion,
		Payload: CardReservedPayload{
			TargetKind:  reserveValue.TargetKind,
			CardID:      reserveValue.CardID,
			Tier:        reserveValue.Tier,
			GrantedGold: reserveValue.GrantedGold,
		},
	}

	nextState.Version = nextVersion
	return &ApplyResult{Events: []Event{event}, NextState: nextState}, nil
}

func applyBuyCardTransition(input ApplyInput) (*ApplyResult, *ApplyFailure) {
	cmd := input.Command
	var payload BuyCardPayload
	if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
		return nil, transitionFailure(FailureEnvelopeInvalid, ReasonInvalidPayload)
	}

	scoreBefore, perr := EvaluatePlayerScore(input.State, cmd.ActorID)
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	sourceValue, perr := EvaluateBuySource(input.State, cmd.ActorID, payload.Source)
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	card, ok := GetDevelopmentCardByID(sourceValue.CardID)
	if !ok {
		return nil, policyViolation(PolicyMarketCardUnknown)
	}

	actor, ok := input.State.Players[cmd.ActorID]
	if !ok {
		return nil, transitionFailure(FailureStateInvariantBroken, "ACTOR_NOT_FOUND")
	}

	paymentValue, perr := EvaluateBuyPayment(BuyPaymentInput{
		PlayerTokens:  actor.Tokens,
		PlayerBonuses: actor.Bonuses,
		CardCost:      card.Cost,
		Payment:       payload.Payment,
	})
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	var deckCardIDs []string
	if sourceValue.SourceKind == SourceOpenMarket {
		ids, failure := requireDeckContextForTier(input.DeckCardIDsByTier, sourceValue.Tier)
		if failure != nil {
			return nil, failure
		}
		deckCardIDs = ids
	}

	nextState := input.State.Clone()
	nextActor, ok := nextState.Players[cmd.ActorID]
	if !ok {
		return nil, transitionFailure(FailureStateInvariantBroken, "ACTOR_NOT_FOUND")
	}

	nextActor.Tokens = paymentValue.RemainingTokens.Clone()
	for _, color := range TokenColors {
		nextState.Board.BankTokens[color] += paymentValue.SpentTokens[color]
	}
	nextActor.PurchasedCardIDs = append(nextActor.PurchasedCardIDs, sourceValue.CardID)

	if sourceValue.SourceKind == SourceOpenMarket {
		if failure := removeOpenCardAndRefill(removeAndRefillInput{
			state:       nextState,
			tier:        sourceValue.Tier,
			cardID:      sourceValue.CardID,
			deckCardIDs: deckCardIDs,
			drawSeed:    input.State.Seed,
			drawVersion: input.State.Version,
		}); failure != nil {
			return nil, failure
		}
	} else {
		reservedIndex := -1
		for i, id := range nextActor.ReservedCardIDs {
			if id == sourceValue.CardID {
				reservedIndex = i
				break
			}
		}
		if reservedIndex < 0 {
			return nil, transitionFailure(FailureStateInvariantBroken, "RESERVED_CARD_NOT_FOUND")
		}
		nextActor.ReservedCardIDs = append(
			nextActor.ReservedCardIDs[:reservedIndex],
			nextActor.ReservedCardIDs[reservedIndex+1:]...,
		)
	}

	nextActor.Bonuses[card.Bonus]++

	nobleValue, perr := EvaluateNobleVisit(nextState, cmd.ActorID)
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	if nobleValue.GrantedNobleID != "" {
		nobleIndex := -1
		for i, id := range nextState.Board.OpenNobleIDs {
			if id == nobleValue.GrantedNobleID {
				nobleIndex = i
				break
			}
		}
		if nobleIndex < 0 {
			return nil, transitionFailure(FailureStateInvariantBroken, "NOBLE_NOT_FOUND")
		}

		nextState.Board.OpenNobleIDs = append(
			nextState.Board.OpenNobleIDs[:nobleIndex],
			nextState.Board.OpenNobleIDs[nobleIndex+1:]...,
		)
		nextActor.NobleIDs = append(nextActor.NobleIDs, nobleValue.GrantedNobleID)
	}

	scoreAfter, perr := EvaluatePlayerScore(nextState, cmd.ActorID)
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	nextActor.Score = scoreAfter.Score

	trigger, perr := EvaluateFinalRoundTrigger(nextState, cmd.ActorID, scoreAfter.Score)
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	if trigger.ShouldTriggerFinalRound {
		if trigger.EndTriggeredAtTurn == nil || trigger.EndTriggeredByPlayerID == "" {
			return nil, transitionFailure(FailureStateInvariantBroken, "FINAL_ROUND_METADATA_MISSING")
		}

		nextState.FinalRound = true
		nextState.EndTriggeredAtTurn = trigger.EndTriggeredAtTurn
		nextState.EndTriggeredByPlayerID = trigger.EndTriggeredByPlayerID
	}

	nextVersion := input.State.Version + 1
	event := Event{
		Type:    EventCardBought,
		GameID:  cmd.GameID,
		ActorID: cmd.ActorID,
		Version: nextVersion,
		Payload: CardBoughtPayload{
			CardID:           sourceValue.CardID,
			SpentTokens:      positiveTokenRecord(paymentValue.SpentTokens),
			GainedBonusColor: card.Bonus,
			ScoreDelta:       scoreAfter.Score - scoreBefore.Score,
		},
	}

	nextState.Version = nextVersion
	return &ApplyResult{Events: []Event{event}, NextState: nextState}, nil
}

func applyEndTurnTransition(input ApplyInput) (*ApplyResult, *ApplyFailure) {
	cmd := input.Command
	var payload EndTurnPayload
	if err := json.Unmarshal(cmd.Payload, &payload); err != nil {
		return nil, transitionFailure(FailureEnvelopeInvalid, ReasonInvalidPayload)
	}

	endTurnValue, perr := EvaluateEndTurn(input.State, cmd.ActorID, input.PlayerOrder)
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	nextState := input.State.Clone()
	nextState.Turn = endTurnValue.TurnNumber
	nextState.CurrentPlayerID = endTurnValue.NextPlayerID

	turnEndedVersion := input.State.Version + 1
	events := []Event{{
		Type:    EventTurnEnded,
		GameID:  cmd.GameID,
		ActorID: cmd.ActorID,
		Version: turnEndedVersion,
		Payload: TurnEndedPayload{
			PreviousPlayerID: endTurnValue.PreviousPlayerID,
			NextPlayerID:     endTurnValue.NextPlayerID,
			TurnNumber:       endTurnValue.TurnNumber,
			RoundNumber:      endTurnValue.RoundNumber,
		},
	}}

	if endTurnValue.ShouldEndGame {
		if input.State.EndTriggeredAtTurn == nil || input.State.EndTriggeredByPlayerID == "" {
			return nil, transitionFailure(FailureStateInvariantBroken, "GAME_END_METADATA_MISSING")
		}

		winnerValue, perr := ResolveGameWinners(nextState, nil)
		if perr != nil {
			return nil, policyViolation(perr.Code)
		}

		reason := endTurnValue.GameEndedReason
		if reason == "" {
			reason = EndReasonNoMoreRounds
		}

		gameEndedVersion := turnEndedVersion + 1
		events = append(events, Event{
			Type:    EventGameEnded,
			GameID:  cmd.GameID,
			ActorID: cmd.ActorID,
			Version: gameEndedVersion,
			Payload: GameEndedPayload{
				WinnerPlayerIDs:        winnerValue.WinnerPlayerIDs,
				FinalScores:            winnerValue.FinalScores,
				Reason:                 reason,
				EndTriggeredAtTurn:     *input.State.EndTriggeredAtTurn,
				EndTriggeredByPlayerID: input.State.EndTriggeredByPlayerID,
			},
		})

		nextState.Status = StatusEnded
		nextState.WinnerPlayerIDs = append([]string(nil), winnerValue.WinnerPlayerIDs...)

		for playerID, score := range winnerValue.FinalScores {
			if player, ok := nextState.Players[playerID]; ok {
				player.Score = score
			}
		}

		nextState.Version = gameEndedVersion
		return &ApplyResult{Events: events, NextState: nextState}, nil
	}

	nextState.Version = turnEndedVersion
	return &ApplyResult{Events: events, NextState: nextState}, nil
}

// resolveDeckTopTarget 为DECK_TOP目标预先确定抽到的卡
func resolveDeckTopTarget(input ApplyInput, tier DeckTier) (map[DeckTier]string, *ApplyFailure) {
	deckCardIDs, failure := requireDeckContextForTier(input.DeckCardIDsByTier, tier)
	if failure != nil {
		return nil, failure
	}

	available := AvailableDeckCardIDs(input.State, tier, deckCardIDs)

	selection, perr := SelectDeckTopCardDeterministically(DeckTopInput{
		Seed:        input.State.Seed,
		Version:     input.State.Version,
		Tier:        tier,
		DeckCardIDs: available,
	})
	if perr != nil {
		return nil, policyViolation(perr.Code)
	}

	return map[DeckTier]string{tier: selection.CardID}, nil
}

type removeAndRefillInput struct {
	state       *State
	tier        DeckTier
	cardID      string
	deckCardIDs []string
	drawSeed    string
	drawVersion int
}

// removeOpenCardAndRefill 从公开市场移除卡并用转换前的seed/version确定性补牌。
// 牌堆耗尽时不补，空位收拢。
func removeOpenCardAndRefill(input removeAndRefillInput) *ApplyFailure {
	tierCards := input.state.Board.OpenMarketCardIDs[input.tier]
	removedIndex := -1
	for i, id := range tierCards {
		if id == input.cardID {
			removedIndex = i
			break
		}
	}
	if removedIndex < 0 {
		return transitionFailure(FailureStateInvariantBroken, "OPEN_CARD_NOT_FOUND")
	}

	tierCards = append(tierCards[:removedIndex], tierCards[removedIndex+1:]...)
	input.state.Board.OpenMarketCardIDs[input.tier] = tierCards

	available := AvailableDeckCardIDs(input.state, input.tier, input.deckCardIDs)
	filtered := available[:0:0]
	for _, id := range available {
		if id != input.cardID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	drawn, perr := SelectDeckTopCardDeterministically(DeckTopInput{
		Seed:        input.drawSeed,
		Version:     input.drawVersion,
		Tier:        input.tier,
		DeckCardIDs: filtered,
	})
	if perr != nil {
		return policyViolation(perr.Code)
	}

	tierCards = append(tierCards, "")
	copy(tierCards[removedIndex+1:], tierCards[removedIndex:])
	tierCards[removedIndex] = drawn.CardID
	input.state.Board.OpenMarketCardIDs[input.tier] = tierCards
	return nil
}

// AvailableDeckCardIDs 某层牌堆中尚可抽取的卡：
// 排除公开市场、所有玩家已预定与已购买的卡。
func AvailableDeckCardIDs(state *State, tier DeckTier, deckCardIDs []string) []string {
	unavailable := make(map[string]bool)
	for _, id := range state.Board.OpenMarketCardIDs[tier] {
		unavailable[id] = true
	}
	for _, player := range state.Players {
		for _, id := range player.ReservedCardIDs {
			unavailable[id] = true
		}
		for _, id := range player.PurchasedCardIDs {
			unavailable[id] = true
		}
	}

	var available []string
	for _, id := range deckCardIDs {
		if !unavailable[id] {
			available = append(available, id)
		}
	}
	return available
}

func requireDeckContextForTier(deckCardIDsByTier map[DeckTier][]string, tier DeckTier) ([]string, *ApplyFailure) {
	deckCardIDs, ok := deckCardIDsByTier[tier]
	if !ok || deckCardIDs == nil {
		return nil, transitionFailure(FailureStateInvariantBroken, "DECK_CONTEXT_REQUIRED")
	}
	return deckCardIDs, nil
}

// validateTransitionOutcome 转换后的不变量检查
func validateTransitionOutcome(previousState *State, result *ApplyResult) (*ApplyResult, *ApplyFailure) {
	if len(result.Events) == 0 {
		return nil, transitionFailure(FailureTransitionBuildFailed, "EVENTS_EMPTY")
	}

	expectedVersion := previousState.Version + 1
	for _, event := range result.Events {
		if event.GameID != previousState.GameID {
			return nil, transitionFailure(FailureTransitionBuildFailed, "EVENT_GAME_ID_MISMATCH")
		}
		if event.Version != expectedVersion {
			return nil, transitionFailure(FailureTransitionBuildFailed, "EVENT_VERSION_SEQUENCE_INVALID")
		}
		expectedVersion++
	}

	lastEvent := result.Events[len(result.Events)-1]
	if result.NextState.Version != lastEvent.Version {
		return nil, transitionFailure(FailureTransitionBuildFailed, "STATE_VERSION_MISMATCH")
	}

	if result.NextState.GameID != previousState.GameID {
		return nil, transitionFailure(FailureTransitionBuildFailed, "STATE_GAME_ID_MISMATCH")
	}

	if _, ok := result.NextState.Players[result.NextState.CurrentPlayerID]; !ok {
		return nil, transitionFailure(FailureTransitionBuildFailed, "CURRENT_PLAYER_NOT_IN_PLAYERS")
	}

	return result, nil
}

func transitionFailure(code FailureCode, reason string) *ApplyFailure {
	return &ApplyFailure{Code: code, Reason: reason}
}

func policyViolation(code PolicyCode) *ApplyFailure {
	return &ApplyFailure{Code: FailurePolicyViolation, PolicyCode: code}
}
