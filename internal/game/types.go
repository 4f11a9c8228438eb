package game

// TokenColor 代币颜色
type TokenColor string

const (
	Diamond  TokenColor = "diamond"
	Sapphire TokenColor = "sapphire"
	Emerald  TokenColor = "emerald"
	Ruby     TokenColor = "ruby"
	Onyx     TokenColor = "onyx"
	Gold     TokenColor = "gold"
)

// GemColors 宝石颜色（不含黄金）
var GemColors = []TokenColor{Diamond, Sapphire, Emerald, Ruby, Onyx}

// TokenColors 全部代币颜色（宝石 + 黄金）
var TokenColors = []TokenColor{Diamond, Sapphire, Emerald, Ruby, Onyx, Gold}

// DeckTier 牌堆层级（1-3）
type DeckTier int

const (
	Tier1 DeckTier = 1
	Tier2 DeckTier = 2
	Tier3 DeckTier = 3
)

// Tiers 全部层级
var Tiers = []DeckTier{Tier1, Tier2, Tier3}

// GameStatus 会话状态
type GameStatus string

const (
	StatusWaiting    GameStatus = "WAITING"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusEnded      GameStatus = "ENDED"
)

// TokenWallet 代币钱包（每种颜色的数量）
type TokenWallet map[TokenColor]int

// NewTokenWallet 创建全零代币钱包（含黄金）
func NewTokenWallet() TokenWallet {
	w := make(TokenWallet, len(TokenColors))
	for _, c := range TokenColors {
		w[c] = 0
	}
	return w
}

// NewBonusWallet 创建全零奖励钱包（仅宝石颜色）
func NewBonusWallet() TokenWallet {
	w := make(TokenWallet, len(GemColors))
	for _, c := range GemColors {
		w[c] = 0
	}
	return w
}

// Clone 深拷贝钱包
func (w TokenWallet) Clone() TokenWallet {
	next := make(TokenWallet, len(w))
	for c, n := range w {
		next[c] = n
	}
	return next
}

// Total 钱包中代币总数
func (w TokenWallet) Total() int {
	sum := 0
	for _, n := range w {
		sum += n
	}
	return sum
}

// PlayerState 玩家状态
type PlayerState struct {
	ID               string      `json:"id"`
	Score            int         `json:"score"`
	Tokens           TokenWallet `json:"tokens"`
	Bonuses          TokenWallet `json:"bonuses"`
	ReservedCardIDs  []string    `json:"reservedCardIds"`
	PurchasedCardIDs []string    `json:"purchasedCardIds"`
	NobleIDs         []string    `json:"nobleIds"`
}

// BoardState 公共区域状态
type BoardState struct {
	BankTokens        TokenWallet           `json:"bankTokens"`
	OpenMarketCardIDs map[DeckTier][]string `json:"openMarketCardIds"`
	OpenNobleIDs      []string              `json:"openNobleIds"`
}

// State 会话完整状态快照
type State struct {
	GameID                 string                  `json:"gameId"`
	Version                int                     `json:"version"`
	Status                 GameStatus              `json:"status"`
	Seed                   string                  `json:"seed"`
	CurrentPlayerID        string                  `json:"currentPlayerId"`
	Turn                   int                     `json:"turn"`
	FinalRound             bool                    `json:"finalRound"`
	Board                  BoardState              `json:"board"`
	Players                map[string]*PlayerState `json:"players"`
	WinnerPlayerIDs        []string                `json:"winnerPlayerIds,omitempty"`
	EndTriggeredAtTurn     *int                    `json:"endTriggeredAtTurn,omitempty"`
	EndTriggeredByPlayerID string                  `json:"endTriggeredByPlayerId,omitempty"`
}

// Clone 深拷贝会话状态
func (s *State) Clone() *State {
	players := make(map[string]*PlayerState, len(s.Players))
	for id, p := range s.Players {
		players[id] = &PlayerState{
			ID:               p.ID,
			Score:            p.Score,
			Tokens:           p.Tokens.Clone(),
			Bonuses:          p.Bonuses.Clone(),
			ReservedCardIDs:  append([]string(nil), p.ReservedCardIDs...),
			PurchasedCardIDs: append([]string(nil), p.PurchasedCardIDs...),
			NobleIDs:         append([]string(nil), p.NobleIDs...),
		}
	}

	market := make(map[DeckTier][]string, len(s.Board.OpenMarketCardIDs))
	for tier, cards := range s.Board.OpenMarketCardIDs {
		market[tier] = append([]string(nil), cards...)
	}

	next := &State{
		GameID:          s.GameID,
		Version:         s.Version,
		Status:          s.Status,
		Seed:            s.Seed,
		CurrentPlayerID: s.CurrentPlayerID,
		Turn:            s.Turn,
		FinalRound:      s.FinalRound,
		Board: BoardState{
			BankTokens:        s.Board.BankTokens.Clone(),
			OpenMarketCardIDs: market,
			OpenNobleIDs:      append([]string(nil), s.Board.OpenNobleIDs...),
		},
		Players:                players,
		EndTriggeredByPlayerID: s.EndTriggeredByPlayerID,
	}

	if s.WinnerPlayerIDs != nil {
		next.WinnerPlayerIDs = append([]string(nil), s.WinnerPlayerIDs...)
	}
	if s.EndTriggeredAtTurn != nil {
		turn := *s.EndTriggeredAtTurn
		next.EndTriggeredAtTurn = &turn
	}

	return next
}

// DevelopmentCard 发展卡
type DevelopmentCard struct {
	ID     string      `json:"id"`
	Tier   DeckTier    `json:"tier"`
	Bonus  TokenColor  `json:"bonus"`
	Points int         `json:"points"`
	Cost   TokenWallet `json:"cost"`
}

// NobleTile 贵族牌
type NobleTile struct {
	ID          string      `json:"id"`
	Points      int         `json:"points"`
	Requirement TokenWallet `json:"requirement"`
}
