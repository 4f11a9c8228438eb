package game

// PolicyCode 规则违反码
type PolicyCode string

const (
	// 代币经济
	PolicyEconomyPlayerNotFound         PolicyCode = "ECONOMY_PLAYER_NOT_FOUND"
	PolicyEconomyInvalidTakePattern     PolicyCode = "ECONOMY_INVALID_TAKE_PATTERN"
	PolicyEconomyDoubleTakeRequiresFour PolicyCode = "ECONOMY_DOUBLE_TAKE_REQUIRES_FOUR_IN_BANK"
	PolicyEconomyBankTokenUnavailable   PolicyCode = "ECONOMY_BANK_TOKEN_UNAVAILABLE"
	PolicyEconomyInvalidTokenQuantity   PolicyCode = "ECONOMY_INVALID_TOKEN_QUANTITY"
	PolicyEconomyReturnTokenInvalid     PolicyCode = "ECONOMY_RETURN_TOKEN_INVALID"
	PolicyEconomyUnnecessaryTokenReturn PolicyCode = "ECONOMY_UNNECESSARY_TOKEN_RETURN"
	PolicyEconomyTokenLimitExceeded     PolicyCode = "ECONOMY_TOKEN_LIMIT_EXCEEDED"
	PolicyEconomyInvalidPayment         PolicyCode = "ECONOMY_INVALID_PAYMENT"
	PolicyEconomyInsufficientFunds      PolicyCode = "ECONOMY_INSUFFICIENT_FUNDS"
	PolicyEconomyOverpaymentNotAllowed  PolicyCode = "ECONOMY_OVERPAYMENT_NOT_ALLOWED"

	// 卡牌市场
	PolicyMarketPlayerNotFound      PolicyCode = "MARKET_PLAYER_NOT_FOUND"
	PolicyMarketReserveLimitReached PolicyCode = "MARKET_RESERVE_LIMIT_REACHED"
	PolicyMarketCardNotAvailable    PolicyCode = "MARKET_CARD_NOT_AVAILABLE"
	PolicyMarketCardUnknown         PolicyCode = "MARKET_CARD_UNKNOWN"
	PolicyMarketCardTierMismatch    PolicyCode = "MARKET_CARD_TIER_MISMATCH"
	PolicyMarketCardNotReserved     PolicyCode = "MARKET_CARD_NOT_RESERVED"
	PolicyMarketDeckEmpty           PolicyCode = "MARKET_DECK_EMPTY"

	// 贵族
	PolicyNoblePlayerNotFound PolicyCode = "NOBLE_PLAYER_NOT_FOUND"
	PolicyNobleTileNotFound   PolicyCode = "NOBLE_TILE_NOT_FOUND"

	// 计分
	PolicyScoringPlayerNotFound       PolicyCode = "SCORING_PLAYER_NOT_FOUND"
	PolicyScoringCardNotFound         PolicyCode = "SCORING_CARD_NOT_FOUND"
	PolicyScoringNobleNotFound        PolicyCode = "SCORING_NOBLE_NOT_FOUND"
	PolicyScoringNoPlayers            PolicyCode = "SCORING_NO_PLAYERS"
	PolicyScoringTiebreakerUnresolved PolicyCode = "SCORING_TIEBREAKER_UNRESOLVED"
	PolicyScoringFinalScoresInvalid   PolicyCode = "SCORING_FINAL_SCORES_INVALID"

	// 回合
	PolicyTurnNotCurrentPlayer   PolicyCode = "TURN_NOT_CURRENT_PLAYER"
	PolicyTurnPlayerOrderInvalid PolicyCode = "TURN_PLAYER_ORDER_INVALID"
)

// PolicyError 规则违反错误
type PolicyError struct {
	Code PolicyCode
}

// Error 实现error接口
func (e *PolicyError) Error() string {
	return string(e.Code)
}

// policyFailure 创建规则违反错误
func policyFailure(code PolicyCode) *PolicyError {
	return &PolicyError{Code: code}
}
