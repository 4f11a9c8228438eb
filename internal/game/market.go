package game

import (
	"fmt"
)

// ReservedCardLimit 每个玩家的预定上限
const ReservedCardLimit = 3

// ReserveCardContext 预定评估上下文（DECK_TOP目标需要预先解析的堆顶卡）
type ReserveCardContext struct {
	DeckTopCardIDsByTier map[DeckTier]string
}

// ReserveCardValue 预定评估结果
type ReserveCardValue struct {
	CardID         string
	Tier           DeckTier
	TargetKind     ReserveTargetKind
	GrantedGold    bool
	GoldToTake     int
	RequiresRefill bool
}

// BuySourceValue 购买来源评估结果
type BuySourceValue struct {
	CardID         string
	Tier           DeckTier
	SourceKind     BuySourceKind
	RequiresRefill bool
}

// DeckTopInput 确定性抽牌输入
type DeckTopInput struct {
	Seed        string
	Version     int
	Tier        DeckTier
	DeckCardIDs []string
}

// DeckTopResult 确定性抽牌结果
type DeckTopResult struct {
	CardID string
	Index  int
}

// GetDevelopmentCardByID 按ID查找发展卡
func GetDevelopmentCardByID(cardID string) (*DevelopmentCard, bool) {
	card, ok := cardByID[cardID]
	return card, ok
}

// EvaluateReserveCard 评估预定命令
func EvaluateReserveCard(state *State, actorID string, payload *ReserveCardPayload, ctx ReserveCardContext) (*ReserveCardValue, *PolicyError) {
	player, ok := state.Players[actorID]
	if !ok {
		return nil, policyFailure(PolicyMarketPlayerNotFound)
	}

	if len(player.ReservedCardIDs) >= ReservedCardLimit {
		return nil, policyFailure(PolicyMarketReserveLimitReached)
	}

	if payload.Target.Kind == TargetOpenCard {
		cardID := payload.Target.CardID
		tier := payload.Target.Tier
		if !containsString(state.Board.OpenMarketCardIDs[tier], cardID) {
			return nil, policyFailure(PolicyMarketCardNotAvailable)
		}

		card, ok := cardByID[cardID]
		if !ok {
			return nil, policyFailure(PolicyMarketCardUnknown)
		}
		if card.Tier != tier {
			return nil, policyFailure(PolicyMarketCardTierMismatch)
		}

		grantedGold := payload.TakeGoldToken && state.Board.BankTokens[Gold] > 0
		return &ReserveCardValue{
			CardID:         cardID,
			Tier:           tier,
			TargetKind:     TargetOpenCard,
			GrantedGold:    grantedGold,
			GoldToTake:     boolToInt(grantedGold),
			RequiresRefill: true,
		}, nil
	}

	deckTopID, ok := ctx.DeckTopCardIDsByTier[payload.Target.Tier]
	if !ok || deckTopID == "" {
		return nil, policyFailure(PolicyMarketDeckEmpty)
	}

	card, ok := cardByID[deckTopID]
	if !ok {
		return nil, policyFailure(PolicyMarketCardUnknown)
	}
	if card.Tier != payload.Target.Tier {
		return nil, policyFailure(PolicyMarketCardTierMismatch)
	}

	grantedGold := payload.TakeGoldToken && state.Board.BankTokens[Gold] > 0
	return &ReserveCardValue{
		CardID:         deckTopID,
		Tier:           payload.Target.Tier,
		TargetKind:     TargetDeckTop,
		GrantedGold:    grantedGold,
		GoldToTake:     boolToInt(grantedGold),
		RequiresRefill: false,
	}, nil
}

// EvaluateBuySource 评估购买来源
func EvaluateBuySource(state *State, actorID string, source BuyCardSource) (*BuySourceValue, *PolicyError) {
	player, ok := state.Players[actorID]
	if !ok {
		return nil, policyFailure(PolicyMarketPlayerNotFound)
	}

	if source.Kind == SourceOpenMarket {
		tier, found := findTierInOpenMarket(state, source.CardID)
		if !found {
			return nil, policyFailure(PolicyMarketCardNotAvailable)
		}

		card, ok := cardByID[source.CardID]
		if !ok {
			return nil, policyFailure(PolicyMarketCardUnknown)
		}
		if card.Tier != tier {
			return nil, policyFailure(PolicyMarketCardTierMismatch)
		}

		return &BuySourceValue{
			CardID:         source.CardID,
			Tier:           tier,
			SourceKind:     SourceOpenMarket,
			RequiresRefill: true,
		}, nil
	}

	if !containsString(player.ReservedCardIDs, source.CardID) {
		return nil, policyFailure(PolicyMarketCardNotReserved)
	}

	card, ok := cardByID[source.CardID]
	if !ok {
		return nil, policyFailure(PolicyMarketCardUnknown)
	}

	return &BuySourceValue{
		CardID:         source.CardID,
		Tier:           card.Tier,
		SourceKind:     SourceReserved,
		RequiresRefill: false,
	}, nil
}

// SelectDeckTopCardDeterministically 确定性地从剩余牌堆中抽一张。
// 索引 = FNV-1a("seed:version:tier") % 剩余牌数，保证回放时结果一致。
func SelectDeckTopCardDeterministically(input DeckTopInput) (*DeckTopResult, *PolicyError) {
	if len(input.DeckCardIDs) == 0 {
		return nil, policyFailure(PolicyMarketDeckEmpty)
	}

	hash := fnv1a32(fmt.Sprintf("%s:%d:%d", input.Seed, input.Version, input.Tier))
	index := int(hash % uint32(len(input.DeckCardIDs)))

	return &DeckTopResult{
		CardID: input.DeckCardIDs[index],
		Index:  index,
	}, nil
}

func findTierInOpenMarket(state *State, cardID string) (DeckTier, bool) {
	for _, tier := range Tiers {
		if containsString(state.Board.OpenMarketCardIDs[tier], cardID) {
			return tier, true
		}
	}
	return 0, false
}

// fnv1a32 32位FNV-1a哈希
func fnv1a32(input string) uint32 {
	hash := uint32(0x811c9dc5)
	for i := 0; i < len(input); i++ {
		hash ^= uint32(input[i])
		hash *= 0x01000193
	}
	return hash
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
