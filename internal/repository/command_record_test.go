package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/gem-game/internal/models"
)

func TestCommandRecordRepoCreateAndFind(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewCommandRecordRepository(db)
	ctx := context.Background()

	record := &models.CommandRecord{
		SessionID:      "session-1",
		IdempotencyKey: "key-1",
		Fingerprint:    `{"type":"TAKE_TOKENS"}`,
		EventsData:     `[]`,
		NextStateData:  `{}`,
	}
	require.NoError(t, repo.Create(ctx, record))

	found, err := repo.FindBySessionAndKey(ctx, "session-1", "key-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.Fingerprint, found.Fingerprint)

	missing, err := repo.FindBySessionAndKey(ctx, "session-1", "key-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommandRecordRepoUniquePerSessionAndKey(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewCommandRecordRepository(db)
	ctx := context.Background()

	first := &models.CommandRecord{
		SessionID:      "session-1",
		IdempotencyKey: "key-1",
		Fingerprint:    `{}`,
		EventsData:     `[]`,
		NextStateData:  `{}`,
	}
	require.NoError(t, repo.Create(ctx, first))

	// 同会话同幂等键冲突
	dup := &models.CommandRecord{
		SessionID:      "session-1",
		IdempotencyKey: "key-1",
		Fingerprint:    `{}`,
		EventsData:     `[]`,
		NextStateData:  `{}`,
	}
	assert.Error(t, repo.Create(ctx, dup))

	// 不同会话可以复用同一幂等键
	other := &models.CommandRecord{
		SessionID:      "session-2",
		IdempotencyKey: "key-1",
		Fingerprint:    `{}`,
		EventsData:     `[]`,
		NextStateData:  `{}`,
	}
	assert.NoError(t, repo.Create(ctx, other))

	count, err := repo.CountBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
