package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEconomyState(t *testing.T) *State {
	t.Helper()
	ctx, err := NewSessionContext("game-1", []string{"alice", "bob"}, "seed-1")
	require.NoError(t, err)
	return ctx.State
}

func TestEvaluateTakeTokensThreeDistinct(t *testing.T) {
	state := newEconomyState(t)

	value, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens: map[string]int{"diamond": 1, "sapphire": 1, "emerald": 1},
	})
	require.Nil(t, perr)
	assert.Equal(t, 1, value.WalletAfter[Diamond])
	assert.Equal(t, 1, value.WalletAfter[Sapphire])
	assert.Equal(t, 1, value.WalletAfter[Emerald])
	assert.Equal(t, 3, value.BankAfter[Diamond])
	assert.Equal(t, 3, value.TotalTokensAfter)
}

func TestEvaluateTakeTokensDoubleTake(t *testing.T) {
	state := newEconomyState(t)

	value, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens: map[string]int{"ruby": 2},
	})
	require.Nil(t, perr)
	assert.Equal(t, 2, value.WalletAfter[Ruby])
	assert.Equal(t, 2, value.BankAfter[Ruby])
}

func TestEvaluateTakeTokensDoubleTakeRequiresFourInBank(t *testing.T) {
	state := newEconomyState(t)
	state.Board.BankTokens[Ruby] = 3

	_, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens: map[string]int{"ruby": 2},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyDoubleTakeRequiresFour, perr.Code)
}

func TestEvaluateTakeTokensInvalidPatterns(t *testing.T) {
	state := newEconomyState(t)

	cases := []map[string]int{
		{},                                                     // 空
		{"diamond": 2, "sapphire": 1},                          // 两色混合
		{"diamond": 1, "sapphire": 1},                          // 只有两色
		{"diamond": 3},                                         // 同色3枚
		{"diamond": 1, "sapphire": 1, "emerald": 1, "ruby": 1}, // 四色
		{"gold": 1},                                            // 不能直接拿黄金
		{"diamond": -1},                                        // 负数
	}

	for _, tokens := range cases {
		_, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{Tokens: tokens})
		require.NotNil(t, perr, "应当拒绝: %v", tokens)
		assert.Equal(t, PolicyEconomyInvalidTakePattern, perr.Code)
	}
}

func TestEvaluateTakeTokensBankUnavailable(t *testing.T) {
	state := newEconomyState(t)
	state.Board.BankTokens[Emerald] = 0

	_, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens: map[string]int{"diamond": 1, "sapphire": 1, "emerald": 1},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyBankTokenUnavailable, perr.Code)
}

func TestEvaluateTakeTokensPlayerNotFound(t *testing.T) {
	state := newEconomyState(t)

	_, perr := EvaluateTakeTokens(state, "nobody", &TakeTokensPayload{
		Tokens: map[string]int{"ruby": 2},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyPlayerNotFound, perr.Code)
}

func TestApplyTokenDeltaLimitAndReturns(t *testing.T) {
	state := newEconomyState(t)
	alice := state.Players["alice"]
	alice.Tokens[Onyx] = 8

	// 超限且不返还
	_, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens: map[string]int{"diamond": 1, "sapphire": 1, "emerald": 1},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyTokenLimitExceeded, perr.Code)

	// 返还到上限以内
	value, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens:         map[string]int{"diamond": 1, "sapphire": 1, "emerald": 1},
		ReturnedTokens: map[string]int{"onyx": 1},
	})
	require.Nil(t, perr)
	assert.Equal(t, 10, value.TotalTokensAfter)
	assert.Equal(t, 7, value.WalletAfter[Onyx])
	assert.Equal(t, 5, value.BankAfter[Onyx])
}

func TestApplyTokenDeltaUnnecessaryReturn(t *testing.T) {
	state := newEconomyState(t)

	_, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens:         map[string]int{"ruby": 2},
		ReturnedTokens: map[string]int{"ruby": 1},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyUnnecessaryTokenReturn, perr.Code)
}

func TestApplyTokenDeltaReturnMoreThanHeld(t *testing.T) {
	state := newEconomyState(t)
	alice := state.Players["alice"]
	alice.Tokens[Onyx] = 9

	_, perr := EvaluateTakeTokens(state, "alice", &TakeTokensPayload{
		Tokens:         map[string]int{"ruby": 2},
		ReturnedTokens: map[string]int{"diamond": 1},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyReturnTokenInvalid, perr.Code)
}

func TestApplyTokenDeltaUnknownColor(t *testing.T) {
	_, perr := ApplyTokenDeltaWithLimit(TokenDeltaInput{
		PlayerTokens: NewTokenWallet(),
		BankTokens:   NewTokenWallet(),
		GainedTokens: map[string]int{"platinum": 1},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyInvalidTokenQuantity, perr.Code)
}

func TestEvaluateBuyPaymentExactWithBonuses(t *testing.T) {
	tokens := NewTokenWallet()
	tokens[Sapphire] = 3
	bonuses := NewBonusWallet()
	bonuses[Sapphire] = 1

	cost := NewBonusWallet()
	cost[Sapphire] = 4

	value, perr := EvaluateBuyPayment(BuyPaymentInput{
		PlayerTokens:  tokens,
		PlayerBonuses: bonuses,
		CardCost:      cost,
		Payment:       map[string]int{"sapphire": 3},
	})
	require.Nil(t, perr)
	assert.Equal(t, 3, value.SpentTokens[Sapphire])
	assert.Equal(t, 0, value.RemainingTokens[Sapphire])
	assert.Equal(t, 0, value.GoldSpent)
}

func TestEvaluateBuyPaymentGoldAsJoker(t *testing.T) {
	tokens := NewTokenWallet()
	tokens[Sapphire] = 2
	tokens[Gold] = 2

	cost := NewBonusWallet()
	cost[Sapphire] = 4

	value, perr := EvaluateBuyPayment(BuyPaymentInput{
		PlayerTokens:  tokens,
		PlayerBonuses: NewBonusWallet(),
		CardCost:      cost,
		Payment:       map[string]int{"sapphire": 2, "gold": 2},
	})
	require.Nil(t, perr)
	assert.Equal(t, 2, value.GoldSpent)
}

func TestEvaluateBuyPaymentRejectsShortfallAndOverpay(t *testing.T) {
	tokens := NewTokenWallet()
	tokens[Sapphire] = 4
	tokens[Gold] = 1

	cost := NewBonusWallet()
	cost[Sapphire] = 4

	// 付款不足
	_, perr := EvaluateBuyPayment(BuyPaymentInput{
		PlayerTokens:  tokens,
		PlayerBonuses: NewBonusWallet(),
		CardCost:      cost,
		Payment:       map[string]int{"sapphire": 3},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyInsufficientFunds, perr.Code)

	// 单色多付
	_, perr = EvaluateBuyPayment(BuyPaymentInput{
		PlayerTokens:  tokens,
		PlayerBonuses: NewBonusWallet(),
		CardCost:      cost,
		Payment:       map[string]int{"sapphire": 4, "gold": 1},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyOverpaymentNotAllowed, perr.Code)

	// 持有不足
	_, perr = EvaluateBuyPayment(BuyPaymentInput{
		PlayerTokens:  NewTokenWallet(),
		PlayerBonuses: NewBonusWallet(),
		CardCost:      cost,
		Payment:       map[string]int{"sapphire": 4},
	})
	require.NotNil(t, perr)
	assert.Equal(t, PolicyEconomyInsufficientFunds, perr.Code)
}
