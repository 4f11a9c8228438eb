package game

import (
	"errors"
	"strings"
)

var (
	// ErrPlayerCountInvalid 玩家数必须为2-4
	ErrPlayerCountInvalid = errors.New("PLAYER_COUNT_MUST_BE_2_TO_4")
	// ErrPlayerIDEmpty 玩家ID不能为空
	ErrPlayerIDEmpty      = errors.New("PLAYER_ID_EMPTY")
	// ErrPlayerIDsNotUnique 玩家ID不能重复
	ErrPlayerIDsNotUnique = errors.New("PLAYER_IDS_MUST_BE_UNIQUE")
)

// SessionContext 会话完整上下文：状态、玩家顺序与各层牌堆
type SessionContext struct {
	GameID            string
	State             *State
	PlayerOrder       []string
	DeckCardIDsByTier map[DeckTier][]string
}

// NewSessionContext 按玩家数开局配置生成新会话。
// 每层公开前4张卡，首位玩家先行，版本从1开始。
func NewSessionContext(gameID string, playerIDs []string, seed string) (*SessionContext, error) {
	normalized, err := validatePlayerIDs(playerIDs)
	if err != nil {
		return nil, err
	}

	setup := PlayerSetupByCount[len(normalized)]
	decks := DeckCardIDsByTier()

	openMarket := make(map[DeckTier][]string, len(Tiers))
	for _, tier := range Tiers {
		openMarket[tier] = append([]string(nil), decks[tier][:4]...)
	}

	openNobleIDs := make([]string, 0, setup.RevealedNobles)
	for _, tile := range NobleTiles[:setup.RevealedNobles] {
		openNobleIDs = append(openNobleIDs, tile.ID)
	}

	players := make(map[string]*PlayerState, len(normalized))
	for _, playerID := range normalized {
		players[playerID] = &PlayerState{
			ID:               playerID,
			Tokens:           NewTokenWallet(),
			Bonuses:          NewBonusWallet(),
			ReservedCardIDs:  []string{},
			PurchasedCardIDs: []string{},
			NobleIDs:         []string{},
		}
	}

	bank := NewTokenWallet()
	for _, color := range GemColors {
		bank[color] = setup.GemTokensPerColor
	}
	bank[Gold] = setup.GoldTokens

	state := &State{
		GameID:          gameID,
		Version:         1,
		Status:          StatusInProgress,
		Seed:            seed,
		CurrentPlayerID: normalized[0],
		Turn:            1,
		FinalRound:      false,
		Board: BoardState{
			BankTokens:        bank,
			OpenMarketCardIDs: openMarket,
			OpenNobleIDs:      openNobleIDs,
		},
		Players: players,
	}

	return &SessionContext{
		GameID:            gameID,
		State:             state,
		PlayerOrder:       normalized,
		DeckCardIDsByTier: decks,
	}, nil
}

func validatePlayerIDs(playerIDs []string) ([]string, error) {
	if len(playerIDs) < 2 || len(playerIDs) > 4 {
		return nil, ErrPlayerCountInvalid
	}

	normalized := make([]string, 0, len(playerIDs))
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			return nil, ErrPlayerIDEmpty
		}
		if seen[trimmed] {
			return nil, ErrPlayerIDsNotUnique
		}
		seen[trimmed] = true
		normalized = append(normalized, trimmed)
	}

	return normalized, nil
}
