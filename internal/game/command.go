package game

import (
	"encoding/json"
)

// CommandType 命令类型
type CommandType string

const (
	CommandTakeTokens  CommandType = "TAKE_TOKENS"
	CommandBuyCard     CommandType = "BUY_CARD"
	CommandReserveCard CommandType = "RESERVE_CARD"
	CommandEndTurn     CommandType = "END_TURN"
)

// Command 命令信封（负载按类型延迟解码）
type Command struct {
	Type            CommandType     `json:"type"`
	GameID          string          `json:"gameId"`
	ActorID         string          `json:"actorId"`
	ExpectedVersion int             `json:"expectedVersion"`
	IdempotencyKey  string          `json:"idempotencyKey"`
	Payload         json.RawMessage `json:"payload"`
}

// TakeTokensPayload TAKE_TOKENS命令负载
type TakeTokensPayload struct {
	Tokens         map[string]int `json:"tokens"`
	ReturnedTokens map[string]int `json:"returnedTokens,omitempty"`
}

// ReserveTargetKind 预定目标类型
type ReserveTargetKind string

const (
	TargetOpenCard ReserveTargetKind = "OPEN_CARD"
	TargetDeckTop  ReserveTargetKind = "DECK_TOP"
)

// ReserveCardTarget 预定目标（公开卡或牌堆顶）
type ReserveCardTarget struct {
	Kind   ReserveTargetKind `json:"kind"`
	CardID string            `json:"cardId,omitempty"`
	Tier   DeckTier          `json:"tier"`
}

// ReserveCardPayload RESERVE_CARD命令负载
type ReserveCardPayload struct {
	Target         ReserveCardTarget `json:"target"`
	ReturnedTokens map[string]int    `json:"returnedTokens,omitempty"`
	TakeGoldToken  bool              `json:"takeGoldToken"`
}

// BuySourceKind 购买来源类型
type BuySourceKind string

const (
	SourceOpenMarket BuySourceKind = "OPEN_MARKET"
	SourceReserved   BuySourceKind = "RESERVED"
)

// BuyCardSource 购买来源（公开市场或已预定）
type BuyCardSource struct {
	Kind   BuySourceKind `json:"kind"`
	CardID string        `json:"cardId"`
}

// BuyCardPayload BUY_CARD命令负载
type BuyCardPayload struct {
	Source  BuyCardSource  `json:"source"`
	Payment map[string]int `json:"payment"`
}

// EndTurnReason 结束回合原因
type EndTurnReason string

const (
	EndTurnActionCompleted EndTurnReason = "ACTION_COMPLETED"
	EndTurnManual          EndTurnReason = "MANUAL"
	EndTurnRecovery        EndTurnReason = "RECOVERY"
)

// EndTurnPayload END_TURN命令负载
type EndTurnPayload struct {
	Reason EndTurnReason `json:"reason"`
}

// EventType 事件类型
type EventType string

const (
	EventTokensTaken  EventType = "TOKENS_TAKEN"
	EventCardBought   EventType = "CARD_BOUGHT"
	EventCardReserved EventType = "CARD_RESERVED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventGameEnded    EventType = "GAME_ENDED"
)

// Event 已提交事件
type Event struct {
	Type    EventType   `json:"type"`
	GameID  string      `json:"gameId"`
	ActorID string      `json:"actorId"`
	Version int         `json:"version"`
	Payload interface{} `json:"payload"`
}

// TokensTakenPayload TOKENS_TAKEN事件负载（仅记录正数数量）
type TokensTakenPayload struct {
	Tokens map[TokenColor]int `json:"tokens"`
}

// CardReservedPayload CARD_RESERVED事件负载
type CardReservedPayload struct {
	TargetKind  ReserveTargetKind `json:"targetKind"`
	CardID      string            `json:"cardId"`
	Tier        DeckTier          `json:"tier"`
	GrantedGold bool              `json:"grantedGold"`
}

// CardBoughtPayload CARD_BOUGHT事件负载
type CardBoughtPayload struct {
	CardID           string             `json:"cardId"`
	SpentTokens      map[TokenColor]int `json:"spentTokens"`
	GainedBonusColor TokenColor         `json:"gainedBonusColor,omitempty"`
	ScoreDelta       int                `json:"scoreDelta"`
}

// TurnEndedPayload TURN_ENDED事件负载
type TurnEndedPayload struct {
	PreviousPlayerID string `json:"previousPlayerId"`
	NextPlayerID     string `json:"nextPlayerId"`
	TurnNumber       int    `json:"turnNumber"`
	RoundNumber      int    `json:"roundNumber"`
}

// GameEndedReason 对局结束原因
type GameEndedReason string

const (
	EndReasonTargetScoreReached GameEndedReason = "TARGET_SCORE_REACHED"
	EndReasonNoMoreRounds       GameEndedReason = "NO_MORE_ROUNDS"
	EndReasonAdminEnded         GameEndedReason = "ADMIN_ENDED"
)

// GameEndedPayload GAME_ENDED事件负载
type GameEndedPayload struct {
	WinnerPlayerIDs        []string        `json:"winnerPlayerIds"`
	FinalScores            map[string]int  `json:"finalScores"`
	Reason                 GameEndedReason `json:"reason"`
	EndTriggeredAtTurn     int             `json:"endTriggeredAtTurn"`
	EndTriggeredByPlayerID string          `json:"endTriggeredByPlayerId"`
}

// positiveGemRecord 提取正数的宝石数量（不含黄金）
func positiveGemRecord(tokens TokenWallet) map[TokenColor]int {
	result := make(map[TokenColor]int)
	for _, color := range GemColors {
		if tokens[color] > 0 {
			result[color] = tokens[color]
		}
	}
	return result
}

// positiveTokenRecord 提取正数的代币数量（含黄金）
func positiveTokenRecord(tokens TokenWallet) map[TokenColor]int {
	result := make(map[TokenColor]int)
	for _, color := range TokenColors {
		if tokens[color] > 0 {
			result[color] = tokens[color]
		}
	}
	return result
}
