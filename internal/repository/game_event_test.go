package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/gem-game/internal/models"
)

func seedEvents(t *testing.T, repo GameEventRepository, sessionID string, versions ...int) {
	t.Helper()
	events := make([]*models.GameEventRecord, 0, len(versions))
	for _, v := range versions {
		events = append(events, &models.GameEventRecord{
			SessionID:   sessionID,
			Version:     v,
			Type:        "TOKENS_TAKEN",
			ActorID:     "alice",
			PayloadData: `{"tokens":{"ruby":2}}`,
		})
	}
	require.NoError(t, repo.CreateBatch(context.Background(), events))
}

func TestGameEventRepoListBySession(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewGameEventRepository(db)
	ctx := context.Background()

	seedEvents(t, repo, "session-1", 2, 3, 4)
	seedEvents(t, repo, "session-2", 2)

	p := NewPagination(1, 10)
	events, err := repo.ListBySession(ctx, "session-1", 0, p)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(3), p.Total)
	assert.Equal(t, 2, events[0].Version)
	assert.Equal(t, 4, events[2].Version)

	// 从指定版本开始
	p = NewPagination(1, 10)
	events, err = repo.ListBySession(ctx, "session-1", 3, p)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 3, events[0].Version)

	// 分页
	p = NewPagination(2, 2)
	events, err = repo.ListBySession(ctx, "session-1", 0, p)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Version)
	assert.Equal(t, int64(3), p.Total)
}

func TestGameEventRepoUniqueSessionVersion(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewGameEventRepository(db)
	ctx := context.Background()

	seedEvents(t, repo, "session-1", 2)

	dup := []*models.GameEventRecord{{
		SessionID:   "session-1",
		Version:     2,
		Type:        "TURN_ENDED",
		ActorID:     "alice",
		PayloadData: `{}`,
	}}
	assert.Error(t, repo.CreateBatch(ctx, dup))

	assert.NoError(t, repo.CreateBatch(ctx, nil))
}

func TestGameEventRepoLatestVersion(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewGameEventRepository(db)
	ctx := context.Background()

	version, err := repo.LatestVersion(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	seedEvents(t, repo, "session-1", 2, 3, 4)
	version, err = repo.LatestVersion(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 4, version)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	manager := NewManager(db)
	ctx := context.Background()

	err := manager.WithTransaction(ctx, func(tx *Transaction) error {
		if err := tx.GameSession().Create(ctx, newTestSession("session-1")); err != nil {
			return err
		}
		// 重复幂等键触发回滚
		record := &models.CommandRecord{SessionID: "session-1", IdempotencyKey: "key-1", Fingerprint: `{}`, EventsData: `[]`, NextStateData: `{}`}
		if err := tx.CommandRecord().Create(ctx, record); err != nil {
			return err
		}
		dup := &models.CommandRecord{SessionID: "session-1", IdempotencyKey: "key-1", Fingerprint: `{}`, EventsData: `[]`, NextStateData: `{}`}
		return tx.CommandRecord().Create(ctx, dup)
	})
	require.Error(t, err)

	found, err := manager.GameSession().FindBySessionID(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, found)
}
