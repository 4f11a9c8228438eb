package game

// PlayerTokenLimit 玩家代币上限
const PlayerTokenLimit = 10

// TokenDeltaInput 代币增减输入
type TokenDeltaInput struct {
	PlayerTokens   TokenWallet
	BankTokens     TokenWallet
	GainedTokens   map[string]int
	ReturnedTokens map[string]int
	MaxTokenCount  int // 0表示使用默认上限
}

// TokenDeltaResult 代币增减结果
type TokenDeltaResult struct {
	WalletAfter      TokenWallet
	BankAfter        TokenWallet
	GainedTokens     TokenWallet
	ReturnedTokens   TokenWallet
	TotalTokensAfter int
}

// TakeTokensValue 拿取代币的评估结果
type TakeTokensValue struct {
	TakenTokens      TokenWallet
	ReturnedTokens   TokenWallet
	WalletAfter      TokenWallet
	BankAfter        TokenWallet
	TotalTokensAfter int
}

// BuyPaymentInput 购卡支付评估输入
type BuyPaymentInput struct {
	PlayerTokens  TokenWallet
	PlayerBonuses TokenWallet
	CardCost      TokenWallet
	Payment       map[string]int
}

// BuyPaymentValue 购卡支付评估结果
type BuyPaymentValue struct {
	SpentTokens     TokenWallet
	RemainingTokens TokenWallet
	GoldSpent       int
}

// ApplyTokenDeltaWithLimit 结算代币增减并执行上限约束。
// 返还只有在超出上限时才允许，结算后总数不得超过上限。
func ApplyTokenDeltaWithLimit(input TokenDeltaInput) (*TokenDeltaResult, *PolicyError) {
	gained, perr := normalizeTokenRecord(input.GainedTokens, TokenColors, PolicyEconomyInvalidTokenQuantity)
	if perr != nil {
		return nil, perr
	}

	returned, perr := normalizeTokenRecord(input.ReturnedTokens, TokenColors, PolicyEconomyReturnTokenInvalid)
	if perr != nil {
		return nil, perr
	}

	maxTokenCount := input.MaxTokenCount
	if maxTokenCount == 0 {
		maxTokenCount = PlayerTokenLimit
	}

	totalBeforeReturn := 0
	totalReturned := 0
	for _, color := range TokenColors {
		totalBeforeReturn += input.PlayerTokens[color] + gained[color]
		totalReturned += returned[color]
	}

	if totalBeforeReturn <= maxTokenCount && totalReturned > 0 {
		return nil, policyFailure(PolicyEconomyUnnecessaryTokenReturn)
	}

	walletAfter := NewTokenWallet()
	bankAfter := NewTokenWallet()
	for _, color := range TokenColors {
		if input.BankTokens[color] < gained[color] {
			return nil, policyFailure(PolicyEconomyBankTokenUnavailable)
		}

		availableBeforeReturn := input.PlayerTokens[color] + gained[color]
		if returned[color] > availableBeforeReturn {
			return nil, policyFailure(PolicyEconomyReturnTokenInvalid)
		}

		walletAfter[color] = input.PlayerTokens[color] + gained[color] - returned[color]
		bankAfter[color] = input.BankTokens[color] - gained[color] + returned[color]
	}

	totalAfter := walletAfter.Total()
	if totalAfter > maxTokenCount {
		return nil, policyFailure(PolicyEconomyTokenLimitExceeded)
	}

	return &TokenDeltaResult{
		WalletAfter:      walletAfter,
		BankAfter:        bankAfter,
		GainedTokens:     gained,
		ReturnedTokens:   returned,
		TotalTokensAfter: totalAfter,
	}, nil
}

// EvaluateTakeTokens 评估拿取代币命令。
// 合法模式：三种不同颜色各1枚，或同色2枚（银行该色需有4枚以上）。
func EvaluateTakeTokens(state *State, actorID string, payload *TakeTokensPayload) (*TakeTokensValue, *PolicyError) {
	player, ok := state.Players[actorID]
	if !ok {
		return nil, policyFailure(PolicyEconomyPlayerNotFound)
	}

	requested, perr := normalizeTokenRecord(payload.Tokens, GemColors, PolicyEconomyInvalidTakePattern)
	if perr != nil {
		return nil, perr
	}

	var pickedColors []TokenColor
	totalRequested := 0
	for _, color := range GemColors {
		if requested[color] > 0 {
			pickedColors = append(pickedColors, color)
			totalRequested += requested[color]
		}
	}

	if !isValidTakePattern(requested, pickedColors, totalRequested) {
		return nil, policyFailure(PolicyEconomyInvalidTakePattern)
	}

	if len(pickedColors) == 1 && requested[pickedColors[0]] == 2 &&
		state.Board.BankTokens[pickedColors[0]] < 4 {
		return nil, policyFailure(PolicyEconomyDoubleTakeRequiresFour)
	}

	for _, color := range GemColors {
		if requested[color] > state.Board.BankTokens[color] {
			return nil, policyFailure(PolicyEconomyBankTokenUnavailable)
		}
	}

	gained := make(map[string]int, len(requested))
	for color, amount := range requested {
		gained[string(color)] = amount
	}

	delta, perr := ApplyTokenDeltaWithLimit(TokenDeltaInput{
		PlayerTokens:   player.Tokens,
		BankTokens:     state.Board.BankTokens,
		GainedTokens:   gained,
		ReturnedTokens: payload.ReturnedTokens,
		MaxTokenCount:  PlayerTokenLimit,
	})
	if perr != nil {
		return nil, perr
	}

	return &TakeTokensValue{
		TakenTokens:      requested,
		ReturnedTokens:   delta.ReturnedTokens,
		WalletAfter:      delta.WalletAfter,
		BankAfter:        delta.BankAfter,
		TotalTokensAfter: delta.TotalTokensAfter,
	}, nil
}

// EvaluateBuyPayment 评估购卡支付。
// 每色需求 = max(0, 卡牌成本 - 奖励)，不足部分必须用黄金补齐，不允许多付。
func EvaluateBuyPayment(input BuyPaymentInput) (*BuyPaymentValue, *PolicyError) {
	payment, perr := normalizeTokenRecord(input.Payment, TokenColors, PolicyEconomyInvalidPayment)
	if perr != nil {
		return nil, perr
	}

	for _, color := range TokenColors {
		if payment[color] > input.PlayerTokens[color] {
			return nil, policyFailure(PolicyEconomyInsufficientFunds)
		}
	}

	goldNeeded := 0
	for _, color := range GemColors {
		requiredByColor := input.CardCost[color] - input.PlayerBonuses[color]
		if requiredByColor < 0 {
			requiredByColor = 0
		}

		if payment[color] > requiredByColor {
			return nil, policyFailure(PolicyEconomyOverpaymentNotAllowed)
		}

		goldNeeded += requiredByColor - payment[color]
	}

	if payment[Gold] < goldNeeded {
		return nil, policyFailure(PolicyEconomyInsufficientFunds)
	}
	if payment[Gold] > goldNeeded {
		return nil, policyFailure(PolicyEconomyOverpaymentNotAllowed)
	}

	remaining := NewTokenWallet()
	for _, color := range TokenColors {
		remaining[color] = input.PlayerTokens[color] - payment[color]
	}

	return &BuyPaymentValue{
		SpentTokens:     payment,
		RemainingTokens: remaining,
		GoldSpent:       payment[Gold],
	}, nil
}

func isValidTakePattern(requested TokenWallet, pickedColors []TokenColor, totalRequested int) bool {
	if totalRequested == 0 {
		return false
	}

	if len(pickedColors) == 3 {
		for _, color := range pickedColors {
			if requested[color] != 1 {
				return false
			}
		}
		return true
	}

	if len(pickedColors) == 1 {
		return requested[pickedColors[0]] == 2
	}

	return false
}

// normalizeTokenRecord 校验并补全代币记录：未知颜色或负数都是非法的。
func normalizeTokenRecord(input map[string]int, colors []TokenColor, invalidCode PolicyCode) (TokenWallet, *PolicyError) {
	result := make(TokenWallet, len(colors))
	for _, color := range colors {
		result[color] = 0
	}

	if input == nil {
		return result, nil
	}

	colorSet := make(map[string]bool, len(colors))
	for _, color := range colors {
		colorSet[string(color)] = true
	}

	for key := range input {
		if !colorSet[key] {
			return nil, policyFailure(invalidCode)
		}
	}

	for _, color := range colors {
		amount := input[string(color)]
		if amount < 0 {
			return nil, policyFailure(invalidCode)
		}
		result[color] = amount
	}

	return result, nil
}
