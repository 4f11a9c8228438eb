package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNobleVisitGrantsSmallestID(t *testing.T) {
	ctx := newTestContext(t)
	alice := ctx.State.Players["alice"]
	// 同时满足noble-01(钻/蓝/绿)与noble-02(钻/蓝/红)
	alice.Bonuses[Diamond] = 3
	alice.Bonuses[Sapphire] = 3
	alice.Bonuses[Emerald] = 3
	alice.Bonuses[Ruby] = 3

	value, perr := EvaluateNobleVisit(ctx.State, "alice")
	require.Nil(t, perr)
	assert.Equal(t, []string{"noble-01", "noble-02"}, value.EligibleNobleIDs)
	assert.Equal(t, "noble-01", value.GrantedNobleID)
	assert.Equal(t, 3, value.ScoreDelta)
}

func TestEvaluateNobleVisitNoneEligible(t *testing.T) {
	ctx := newTestContext(t)

	value, perr := EvaluateNobleVisit(ctx.State, "alice")
	require.Nil(t, perr)
	assert.Empty(t, value.EligibleNobleIDs)
	assert.Empty(t, value.GrantedNobleID)
	assert.Equal(t, 0, value.ScoreDelta)
}

func TestEvaluateNobleVisitPlayerNotFound(t *testing.T) {
	ctx := newTestContext(t)

	_, perr := EvaluateNobleVisit(ctx.State, "nobody")
	require.NotNil(t, perr)
	assert.Equal(t, PolicyNoblePlayerNotFound, perr.Code)
}

func TestIsEligibleForNoble(t *testing.T) {
	bonuses := NewBonusWallet()
	bonuses[Diamond] = 3
	bonuses[Sapphire] = 3
	bonuses[Emerald] = 2

	requirement := NewBonusWallet()
	requirement[Diamond] = 3
	requirement[Sapphire] = 3
	requirement[Emerald] = 3

	assert.False(t, IsEligibleForNoble(bonuses, requirement))

	bonuses[Emerald] = 3
	assert.True(t, IsEligibleForNoble(bonuses, requirement))

	// 超出要求也满足
	bonuses[Emerald] = 5
	assert.True(t, IsEligibleForNoble(bonuses, requirement))
}
