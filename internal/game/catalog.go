package game

// DevelopmentCards 基础版发展卡目录：每层40/30/20张，每种奖励颜色18张。
// ID按层级顺序编号，同层内按奖励颜色分组。
var DevelopmentCards = []DevelopmentCard{
	// 一层：黑曜石奖励
	card("t1-01", Tier1, Onyx, 0, TokenWallet{Diamond: 1, Sapphire: 1, Emerald: 1, Ruby: 1}),
	card("t1-02", Tier1, Onyx, 0, TokenWallet{Diamond: 1, Sapphire: 2, Emerald: 1, Ruby: 1}),
	card("t1-03", Tier1, Onyx, 0, TokenWallet{Diamond: 2, Sapphire: 2, Ruby: 1}),
	card("t1-04", Tier1, Onyx, 0, TokenWallet{Emerald: 1, Ruby: 3, Onyx: 1}),
	card("t1-05", Tier1, Onyx, 0, TokenWallet{Emerald: 2, Ruby: 1}),
	card("t1-06", Tier1, Onyx, 0, TokenWallet{Diamond: 2, Emerald: 2}),
	card("t1-07", Tier1, Onyx, 0, TokenWallet{Emerald: 3}),
	card("t1-08", Tier1, Onyx, 1, TokenWallet{Sapphire: 4}),
	// 一层：蓝宝石奖励
	card("t1-09", Tier1, Sapphire, 0, TokenWallet{Diamond: 1, Emerald: 1, Ruby: 1, Onyx: 1}),
	card("t1-10", Tier1, Sapphire, 0, TokenWallet{Diamond: 1, Emerald: 1, Ruby: 2, Onyx: 1}),
	card("t1-11", Tier1, Sapphire, 0, TokenWallet{Diamond: 1, Emerald: 2, Ruby: 2}),
	card("t1-12", Tier1, Sapphire, 0, TokenWallet{Sapphire: 1, Emerald: 3, Ruby: 1}),
	card("t1-13", Tier1, Sapphire, 0, TokenWallet{Diamond: 1, Onyx: 2}),
	card("t1-14", Tier1, Sapphire, 0, TokenWallet{Emerald: 2, Onyx: 2}),
	card("t1-15", Tier1, Sapphire, 0, TokenWallet{Onyx: 3}),
	card("t1-16", Tier1, Sapphire, 1, TokenWallet{Ruby: 4}),
	// 一层：钻石奖励
	card("t1-17", Tier1, Diamond, 0, TokenWallet{Sapphire: 1, Emerald: 1, Ruby: 1, Onyx: 1}),
	card("t1-18", Tier1, Diamond, 0, TokenWallet{Sapphire: 1, Emerald: 2, Ruby: 1, Onyx: 1}),
	card("t1-19", Tier1, Diamond, 0, TokenWallet{Sapphire: 2, Emerald: 2, Onyx: 1}),
	card("t1-20", Tier1, Diamond, 0, TokenWallet{Diamond: 3, Sapphire: 1, Onyx: 1}),
	card("t1-21", Tier1, Diamond, 0, TokenWallet{Ruby: 1, Onyx: 2}),
	card("t1-22", Tier1, Diamond, 0, TokenWallet{Sapphire: 2, Onyx: 2}),
	card("t1-23", Tier1, Diamond, 0, TokenWallet{Sapphire: 3}),
	card("t1-24", Tier1, Diamond, 1, TokenWallet{Emerald: 4}),
	// 一层：绿宝石奖励
	card("t1-25", Tier1, Emerald, 0, TokenWallet{Diamond: 1, Sapphire: 1, Ruby: 1, Onyx: 1}),
	card("t1-26", Tier1, Emerald, 0, TokenWallet{Diamond: 1, Sapphire: 1, Ruby: 1, Onyx: 2}),
	card("t1-27", Tier1, Emerald, 0, TokenWallet{Sapphire: 1, Ruby: 2, Onyx: 2}),
	card("t1-28", Tier1, Emerald, 0, TokenWallet{Diamond: 1, Sapphire: 3, Emerald: 1}),
	card("t1-29", Tier1, Emerald, 0, TokenWallet{Diamond: 2, Sapphire: 1}),
	card("t1-30", Tier1, Emerald, 0, TokenWallet{Sapphire: 2, Ruby: 2}),
	card("t1-31", Tier1, Emerald, 0, TokenWallet{Ruby: 3}),
	card("t1-32", Tier1, Emerald, 1, TokenWallet{Onyx: 4}),
	// 一层：红宝石奖励
	card("t1-33", Tier1, Ruby, 0, TokenWallet{Diamond: 1, Sapphire: 1, Emerald: 1, Onyx: 1}),
	card("t1-34", Tier1, Ruby, 0, TokenWallet{Diamond: 2, Sapphire: 1, Emerald: 1, Onyx: 1}),
	card("t1-35", Tier1, Ruby, 0, TokenWallet{Diamond: 2, Emerald: 1, Onyx: 2}),
	card("t1-36", Tier1, Ruby, 0, TokenWallet{Diamond: 1, Ruby: 1, Onyx: 3}),
	card("t1-37", Tier1, Ruby, 0, TokenWallet{Sapphire: 2, Emerald: 1}),
	card("t1-38", Tier1, Ruby, 0, TokenWallet{Diamond: 2, Ruby: 2}),
	card("t1-39", Tier1, Ruby, 0, TokenWallet{Diamond: 3}),
	card("t1-40", Tier1, Ruby, 1, TokenWallet{Diamond: 4}),

	// 二层：黑曜石奖励
	card("t2-01", Tier2, Onyx, 1, TokenWallet{Diamond: 3, Sapphire: 2, Emerald: 2}),
	card("t2-02", Tier2, Onyx, 1, TokenWallet{Diamond: 3, Emerald: 3, Onyx: 2}),
	card("t2-03", Tier2, Onyx, 2, TokenWallet{Sapphire: 1, Emerald: 4, Ruby: 2}),
	card("t2-04", Tier2, Onyx, 2, TokenWallet{Emerald: 5, Ruby: 3}),
	card("t2-05", Tier2, Onyx, 2, TokenWallet{Diamond: 5}),
	card("t2-06", Tier2, Onyx, 3, TokenWallet{Onyx: 6}),
	// 二层：蓝宝石奖励
	card("t2-07", Tier2, Sapphire, 1, TokenWallet{Sapphire: 2, Emerald: 2, Ruby: 3}),
	card("t2-08", Tier2, Sapphire, 1, TokenWallet{Sapphire: 2, Emerald: 3, Onyx: 3}),
	card("t2-09", Tier2, Sapphire, 2, TokenWallet{Diamond: 5, Sapphire: 3}),
	card("t2-10", Tier2, Sapphire, 2, TokenWallet{Diamond: 2, Ruby: 1, Onyx: 4}),
	card("t2-11", Tier2, Sapphire, 2, TokenWallet{Sapphire: 5}),
	card("t2-12", Tier2, Sapphire, 3, TokenWallet{Sapphire: 6}),
	// 二层：钻石奖励
	card("t2-13", Tier2, Diamond, 1, TokenWallet{Emerald: 3, Ruby: 2, Onyx: 2}),
	card("t2-14", Tier2, Diamond, 1, TokenWallet{Diamond: 2, Sapphire: 3, Ruby: 3}),
	card("t2-15", Tier2, Diamond, 2, TokenWallet{Emerald: 1, Ruby: 4, Onyx: 2}),
	card("t2-16", Tier2, Diamond, 2, TokenWallet{Ruby: 5, Onyx: 3}),
	card("t2-17", Tier2, Diamond, 2, TokenWallet{Ruby: 5}),
	card("t2-18", Tier2, Diamond, 3, TokenWallet{Diamond: 6}),
	// 二层：绿宝石奖励
	card("t2-19", Tier2, Emerald, 1, TokenWallet{Diamond: 3, Emerald: 2, Ruby: 3}),
	card("t2-20", Tier2, Emerald, 1, TokenWallet{Diamond: 2, Sapphire: 3, Onyx: 2}),
	card("t2-21", Tier2, Emerald, 2, TokenWallet{Diamond: 4, Sapphire: 2, Onyx: 1}),
	card("t2-22", Tier2, Emerald, 2, TokenWallet{Sapphire: 5, Emerald: 3}),
	card("t2-23", Tier2, Emerald, 2, TokenWallet{Emerald: 5}),
	card("t2-24", Tier2, Emerald, 3, TokenWallet{Emerald: 6}),
	// 二层：红宝石奖励
	card("t2-25", Tier2, Ruby, 1, TokenWallet{Diamond: 2, Ruby: 2, Onyx: 3}),
	card("t2-26", Tier2, Ruby, 1, TokenWallet{Sapphire: 3, Ruby: 2, Onyx: 3}),
	card("t2-27", Tier2, Ruby, 2, TokenWallet{Diamond: 1, Sapphire: 4, Emerald: 2}),
	card("t2-28", Tier2, Ruby, 2, TokenWallet{Diamond: 3, Onyx: 5}),
	card("t2-29", Tier2, Ruby, 2, TokenWallet{Onyx: 5}),
	card("t2-30", Tier2, Ruby, 3, TokenWallet{Ruby: 6}),

	// 三层：黑曜石奖励
	card("t3-01", Tier3, Onyx, 3, TokenWallet{Diamond: 3, Sapphire: 3, Emerald: 5, Ruby: 3}),
	card("t3-02", Tier3, Onyx, 4, TokenWallet{Ruby: 7}),
	card("t3-03", Tier3, Onyx, 4, TokenWallet{Emerald: 3, Ruby: 6, Onyx: 3}),
	card("t3-04", Tier3, Onyx, 5, TokenWallet{Ruby: 7, Onyx: 3}),
	// 三层：蓝宝石奖励
	card("t3-05", Tier3, Sapphire, 3, TokenWallet{Diamond: 3, Emerald: 3, Ruby: 3, Onyx: 5}),
	card("t3-06", Tier3, Sapphire, 4, TokenWallet{Diamond: 7}),
	card("t3-07", Tier3, Sapphire, 4, TokenWallet{Diamond: 6, Sapphire: 3, Onyx: 3}),
	card("t3-08", Tier3, Sapphire, 5, TokenWallet{Diamond: 7, Sapphire: 3}),
	// 三层：钻石奖励
	card("t3-09", Tier3, Diamond, 3, TokenWallet{Sapphire: 3, Emerald: 3, Ruby: 5, Onyx: 3}),
	card("t3-10", Tier3, Diamond, 4, TokenWallet{Onyx: 7}),
	card("t3-11", Tier3, Diamond, 4, TokenWallet{Diamond: 3, Ruby: 3, Onyx: 6}),
	card("t3-12", Tier3, Diamond, 5, TokenWallet{Diamond: 3, Onyx: 7}),
	// 三层：绿宝石奖励
	card("t3-13", Tier3, Emerald, 3, TokenWallet{Diamond: 5, Sapphire: 3, Ruby: 3, Onyx: 3}),
	card("t3-14", Tier3, Emerald, 4, TokenWallet{Sapphire: 7}),
	card("t3-15", Tier3, Emerald, 4, TokenWallet{Diamond: 3, Sapphire: 6, Emerald: 3}),
	card("t3-16", Tier3, Emerald, 5, TokenWallet{Sapphire: 7, Emerald: 3}),
	// 三层：红宝石奖励
	card("t3-17", Tier3, Ruby, 3, TokenWallet{Diamond: 3, Sapphire: 5, Emerald: 3, Onyx: 3}),
	card("t3-18", Tier3, Ruby, 4, TokenWallet{Emerald: 7}),
	card("t3-19", Tier3, Ruby, 4, TokenWallet{Sapphire: 3, Emerald: 6, Ruby: 3}),
	card("t3-20", Tier3, Ruby, 5, TokenWallet{Emerald: 7, Ruby: 3}),
}

// NobleTiles 贵族牌目录：五色中任取三色各3枚的全部组合，每张3分。
var NobleTiles = []NobleTile{
	noble("noble-01", TokenWallet{Diamond: 3, Sapphire: 3, Emerald: 3}),
	noble("noble-02", TokenWallet{Diamond: 3, Sapphire: 3, Ruby: 3}),
	noble("noble-03", TokenWallet{Diamond: 3, Sapphire: 3, Onyx: 3}),
	noble("noble-04", TokenWallet{Diamond: 3, Emerald: 3, Ruby: 3}),
	noble("noble-05", TokenWallet{Diamond: 3, Emerald: 3, Onyx: 3}),
	noble("noble-06", TokenWallet{Diamond: 3, Ruby: 3, Onyx: 3}),
	noble("noble-07", TokenWallet{Sapphire: 3, Emerald: 3, Ruby: 3}),
	noble("noble-08", TokenWallet{Sapphire: 3, Emerald: 3, Onyx: 3}),
	noble("noble-09", TokenWallet{Sapphire: 3, Ruby: 3, Onyx: 3}),
	noble("noble-10", TokenWallet{Emerald: 3, Ruby: 3, Onyx: 3}),
}

// PlayerSetupConfig 按人数的开局配置
type PlayerSetupConfig struct {
	GemTokensPerColor int
	GoldTokens        int
	RevealedNobles    int
}

// PlayerSetupByCount 2-4人的开局配置
var PlayerSetupByCount = map[int]PlayerSetupConfig{
	2: {GemTokensPerColor: 4, GoldTokens: 5, RevealedNobles: 3},
	3: {GemTokensPerColor: 5, GoldTokens: 5, RevealedNobles: 4},
	4: {GemTokensPerColor: 7, GoldTokens: 5, RevealedNobles: 5},
}

var (
	cardByID  = make(map[string]*DevelopmentCard, len(DevelopmentCards))
	nobleByID = make(map[string]*NobleTile, len(NobleTiles))
)

func init() {
	for i := range DevelopmentCards {
		cardByID[DevelopmentCards[i].ID] = &DevelopmentCards[i]
	}
	for i := range NobleTiles {
		nobleByID[NobleTiles[i].ID] = &NobleTiles[i]
	}
}

// DeckCardIDsByTier 各层完整牌堆的卡ID列表（目录顺序）
func DeckCardIDsByTier() map[DeckTier][]string {
	decks := make(map[DeckTier][]string, len(Tiers))
	for _, c := range DevelopmentCards {
		decks[c.Tier] = append(decks[c.Tier], c.ID)
	}
	return decks
}

func card(id string, tier DeckTier, bonus TokenColor, points int, cost TokenWallet) DevelopmentCard {
	full := NewBonusWallet()
	for color, amount := range cost {
		full[color] = amount
	}
	return DevelopmentCard{
		ID:     id,
		Tier:   tier,
		Bonus:  bonus,
		Points: points,
		Cost:   full,
	}
}

func noble(id string, requirement TokenWallet) NobleTile {
	full := NewBonusWallet()
	for color, amount := range requirement {
		full[color] = amount
	}
	return NobleTile{
		ID:          id,
		Points:      NoblePoints,
		Requirement: full,
	}
}
