package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/gem-game/internal/game"
	"github.com/wfunc/gem-game/internal/models"
)

// recordingNotifier 记录通知调用的测试替身
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	sessionID string
	events    []game.Event
	state     *game.State
}

func (n *recordingNotifier) NotifySessionChanged(sessionID string, events []game.Event, state *game.State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{sessionID: sessionID, events: events, state: state})
}

func (n *recordingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func takeTokensCommand(sessionID, actorID string, version int, key string) *game.Command {
	payload, _ := json.Marshal(game.TakeTokensPayload{
		Tokens: map[string]int{"diamond": 1, "sapphire": 1, "emerald": 1},
	})
	return &game.Command{
		Type:            game.CommandTakeTokens,
		GameID:          sessionID,
		ActorID:         actorID,
		ExpectedVersion: version,
		IdempotencyKey:  key,
		Payload:         payload,
	}
}

func createCommandTestSession(t *testing.T, services *Services, sessionID string) {
	t.Helper()
	_, err := services.Session.CreateSession(context.Background(), &CreateSessionRequest{
		SessionID: sessionID,
		PlayerIDs: []string{"alice", "bob"},
		Seed:      "seed-1",
	})
	require.NoError(t, err)
}

func TestSubmitAcceptsAndPersists(t *testing.T) {
	notifier := &recordingNotifier{}
	services, _ := newTestServices(t, notifier)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	result, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 1, "key-1"))
	require.NoError(t, err)
	require.Equal(t, ResultAccepted, result.Kind)
	require.Len(t, result.Events, 1)
	assert.Equal(t, game.EventTokensTaken, result.Events[0].Type)
	assert.Equal(t, 2, result.State.Version)

	// 落库后的快照反映新状态
	snapshot, err := services.Session.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.State.Version)
	assert.Equal(t, 1, snapshot.State.Players["alice"].Tokens[game.Diamond])

	// 提交成功后通知订阅者
	require.Equal(t, 1, notifier.callCount())
	assert.Equal(t, "session-1", notifier.calls[0].sessionID)
	assert.Equal(t, 2, notifier.calls[0].state.Version)
}

func TestSubmitReplaysDuplicateKey(t *testing.T) {
	notifier := &recordingNotifier{}
	services, _ := newTestServices(t, notifier)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	cmd := takeTokensCommand("session-1", "alice", 1, "key-1")
	first, err := services.Command.Submit(ctx, "session-1", cmd)
	require.NoError(t, err)
	require.Equal(t, ResultAccepted, first.Kind)

	second, err := services.Command.Submit(ctx, "session-1", cmd)
	require.NoError(t, err)
	require.Equal(t, ResultReplayed, second.Kind)
	assert.Equal(t, first.State.Version, second.State.Version)
	require.Len(t, second.Events, 1)
	assert.Equal(t, first.Events[0].Version, second.Events[0].Version)

	// 重放不重复通知
	assert.Equal(t, 1, notifier.callCount())
}

func TestSubmitRejectsPayloadMismatch(t *testing.T) {
	services, _ := newTestServices(t, nil)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	first, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 1, "key-1"))
	require.NoError(t, err)
	require.Equal(t, ResultAccepted, first.Kind)

	// 同幂等键不同内容
	altered, _ := json.Marshal(game.TakeTokensPayload{Tokens: map[string]int{"ruby": 2}})
	cmd := takeTokensCommand("session-1", "alice", 1, "key-1")
	cmd.Payload = altered

	result, err := services.Command.Submit(ctx, "session-1", cmd)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, result.Kind)
	assert.Equal(t, RejectIdempotencyMismatch, result.Rejection.Reason)
}

func TestSubmitRejectsMissingIdempotencyKey(t *testing.T) {
	services, _ := newTestServices(t, nil)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	result, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 1, "  "))
	require.NoError(t, err)
	require.Equal(t, ResultRejected, result.Kind)
	assert.Equal(t, RejectMissingIdempotencyKey, result.Rejection.Reason)
}

func TestSubmitRejectsUnknownSession(t *testing.T) {
	services, _ := newTestServices(t, nil)
	ctx := context.Background()

	result, err := services.Command.Submit(ctx, "session-404", takeTokensCommand("session-404", "alice", 1, "key-1"))
	require.NoError(t, err)
	require.Equal(t, ResultRejected, result.Kind)
	assert.Equal(t, RejectStateNotFound, result.Rejection.Reason)
	assert.Equal(t, "GAME_CONTEXT_NOT_FOUND", result.Rejection.Details)
}

func TestSubmitRejectsVersionConflict(t *testing.T) {
	services, _ := newTestServices(t, nil)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	result, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 7, "key-1"))
	require.NoError(t, err)
	require.Equal(t, ResultRejected, result.Kind)
	assert.Equal(t, RejectVersionConflict, result.Rejection.Reason)
	assert.Equal(t, "EXPECTED_VERSION_MISMATCH", result.Rejection.Details)
}

func TestSubmitRejectsPolicyViolation(t *testing.T) {
	services, _ := newTestServices(t, nil)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	// bob不是当前玩家
	result, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "bob", 1, "key-1"))
	require.NoError(t, err)
	require.Equal(t, ResultRejected, result.Kind)
	assert.Equal(t, RejectPolicyViolation, result.Rejection.Reason)
	assert.Equal(t, game.PolicyTurnNotCurrentPlayer, result.Rejection.PolicyCode)

	// 被拒绝的命令不改变状态，也不占用幂等键
	snapshot, err := services.Session.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.State.Version)

	retry, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 1, "key-1"))
	require.NoError(t, err)
	assert.Equal(t, ResultAccepted, retry.Kind)
}

func TestSubmitRejectsEngineFailure(t *testing.T) {
	services, _ := newTestServices(t, nil)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	cmd := takeTokensCommand("session-1", "alice", 1, "key-1")
	cmd.GameID = "session-2"

	result, err := services.Command.Submit(ctx, "session-1", cmd)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, result.Kind)
	assert.Equal(t, RejectEngineFailure, result.Rejection.Reason)
	assert.Contains(t, result.Rejection.Details, "GAME_ID_MISMATCH")
}

func TestSubmitReleasesSessionLockAfterPanic(t *testing.T) {
	services, db := newTestServices(t, nil)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	var model models.GameSession
	require.NoError(t, db.Where("session_id = ?", "session-1").First(&model).Error)
	original := model.StateData

	// 将alice的玩家数据破坏为null，使提交流程在规则计算中panic
	var state map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(original), &state))
	state["players"].(map[string]interface{})["alice"] = nil
	corrupted, err := json.Marshal(state)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.GameSession{}).
		Where("session_id = ?", "session-1").
		Update("state_data", string(corrupted)).Error)

	func() {
		defer func() { require.NotNil(t, recover(), "期望提交流程panic") }()
		services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 1, "key-1"))
	}()

	// 修复数据后，同会话的后续提交不能被残留的会话锁阻塞
	require.NoError(t, db.Model(&models.GameSession{}).
		Where("session_id = ?", "session-1").
		Update("state_data", original).Error)

	done := make(chan *CommandResult, 1)
	go func() {
		result, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 1, "key-2"))
		assert.NoError(t, err)
		done <- result
	}()

	select {
	case result := <-done:
		assert.Equal(t, ResultAccepted, result.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("会话锁未释放，后续提交被阻塞")
	}
}

func TestSubmitConcurrentSameKey(t *testing.T) {
	notifier := &recordingNotifier{}
	services, _ := newTestServices(t, notifier)
	ctx := context.Background()
	createCommandTestSession(t, services, "session-1")

	const workers = 8
	results := make([]*CommandResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			result, err := services.Command.Submit(ctx, "session-1", takeTokensCommand("session-1", "alice", 1, "key-1"))
			require.NoError(t, err)
			results[idx] = result
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, result := range results {
		switch result.Kind {
		case ResultAccepted:
			accepted++
		case ResultReplayed:
			assert.Equal(t, 2, result.State.Version)
		default:
			t.Fatalf("不期望的结果类别: %s", result.Kind)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, notifier.callCount())

	snapshot, err := services.Session.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.State.Version)
}
