package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/gem-game/internal/repository"
	"github.com/wfunc/gem-game/internal/service"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repository.SetupTestDB()
	t.Cleanup(func() { repository.CleanupTestDB(db) })

	return NewRouter(db, DefaultRouterConfig(), zap.NewNop())
}

func doJSON(t *testing.T, router *Router, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *Router, sessionID string) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/v1/sessions", map[string]interface{}{
		"sessionId": sessionID,
		"playerIds": []string{"alice", "bob"},
		"seed":      "seed-1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func commandBody(sessionID, actorID string, version int, key string) map[string]interface{} {
	return map[string]interface{}{
		"type":            "TAKE_TOKENS",
		"gameId":          sessionID,
		"actorId":         actorID,
		"expectedVersion": version,
		"idempotencyKey":  key,
		"payload": map[string]interface{}{
			"tokens": map[string]int{"diamond": 1, "sapphire": 1, "emerald": 1},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "GET", "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestCreateAndGetSession(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/sessions", map[string]interface{}{
		"sessionId": "session-1",
		"playerIds": []string{"alice", "bob"},
		"seed":      "seed-1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created service.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "session-1", created.SessionID)
	assert.Equal(t, []string{"alice", "bob"}, created.PlayerOrder)
	assert.Equal(t, 1, created.State.Version)

	// 重复创建冲突
	w = doJSON(t, router, "POST", "/api/v1/sessions", map[string]interface{}{
		"sessionId": "session-1",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 查询快照
	w = doJSON(t, router, "GET", "/api/v1/sessions/session-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var loaded service.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, created.State.Seed, loaded.State.Seed)

	// 不存在的会话
	w = doJSON(t, router, "GET", "/api/v1/sessions/session-404", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSessionRejectsInvalidPlayers(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/sessions", map[string]interface{}{
		"playerIds": []string{"solo"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitCommandAcceptedAndReplayed(t *testing.T) {
	router := newTestRouter(t)
	createSession(t, router, "session-1")

	body := commandBody("session-1", "alice", 1, "key-1")
	w := doJSON(t, router, "POST", "/api/v1/sessions/session-1/commands", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.CommandResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, service.ResultAccepted, result.Kind)
	require.Len(t, result.Events, 1)
	assert.Equal(t, 2, result.State.Version)

	// 同幂等键重复提交返回重放结果
	w = doJSON(t, router, "POST", "/api/v1/sessions/session-1/commands", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, service.ResultReplayed, result.Kind)
}

func TestSubmitCommandRejections(t *testing.T) {
	router := newTestRouter(t)
	createSession(t, router, "session-1")

	cases := []struct {
		name   string
		body   map[string]interface{}
		status int
		reason service.RejectReason
	}{
		{
			name:   "缺少幂等键",
			body:   commandBody("session-1", "alice", 1, ""),
			status: http.StatusBadRequest,
			reason: service.RejectMissingIdempotencyKey,
		},
		{
			name:   "版本冲突",
			body:   commandBody("session-1", "alice", 9, "key-vc"),
			status: http.StatusConflict,
			reason: service.RejectVersionConflict,
		},
		{
			name:   "策略违规",
			body:   commandBody("session-1", "bob", 1, "key-pv"),
			status: http.StatusUnprocessableEntity,
			reason: service.RejectPolicyViolation,
		},
		{
			name:   "引擎拒绝",
			body:   commandBody("session-2", "alice", 1, "key-ef"),
			status: http.StatusUnprocessableEntity,
			reason: service.RejectEngineFailure,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", "/api/v1/sessions/session-1/commands", tc.body, nil)
			assert.Equal(t, tc.status, w.Code, w.Body.String())

			var result service.CommandResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.Equal(t, service.ResultRejected, result.Kind)
			require.NotNil(t, result.Rejection)
			assert.Equal(t, tc.reason, result.Rejection.Reason)
		})
	}

	// 不存在的会话
	w := doJSON(t, router, "POST", "/api/v1/sessions/session-404/commands",
		commandBody("session-404", "alice", 1, "key-1"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitCommandActorIdentityMismatch(t *testing.T) {
	router := newTestRouter(t)
	createSession(t, router, "session-1")

	// 声明身份bob却以alice提交
	w := doJSON(t, router, "POST", "/api/v1/sessions/session-1/commands",
		commandBody("session-1", "alice", 1, "key-1"),
		map[string]string{"X-Player-Id": "bob"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 身份与actorId一致时放行
	w = doJSON(t, router, "POST", "/api/v1/sessions/session-1/commands",
		commandBody("session-1", "alice", 1, "key-1"),
		map[string]string{"X-Player-Id": "alice"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestListEvents(t *testing.T) {
	router := newTestRouter(t)
	createSession(t, router, "session-1")

	w := doJSON(t, router, "POST", "/api/v1/sessions/session-1/commands",
		commandBody("session-1", "alice", 1, "key-1"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/sessions/session-1/events?fromVersion=0", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page service.EventPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Events, 1)
	assert.Equal(t, "TOKENS_TAKEN", page.Events[0].Type)
	assert.Equal(t, int64(1), page.Total)

	// fromVersion过滤
	w = doJSON(t, router, "GET", fmt.Sprintf("/api/v1/sessions/session-1/events?fromVersion=%d", 2), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Empty(t, page.Events)

	// 不存在的会话
	w = doJSON(t, router, "GET", "/api/v1/sessions/session-404/events", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
