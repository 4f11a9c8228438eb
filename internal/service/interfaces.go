package service

import (
	"context"

	"github.com/wfunc/gem-game/internal/game"
)

// SessionService 会话服务接口
type SessionService interface {
	// CreateSession 创建新会话
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*SessionSnapshot, error)
	// GetSession 获取会话快照
	GetSession(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	// ListEvents 按版本升序列出会话事件
	ListEvents(ctx context.Context, sessionID string, fromVersion, page, pageSize int) (*EventPage, error)
}

// CommandService 命令服务接口
type CommandService interface {
	// Submit 提交命令：同会话串行执行，幂等去重，乐观版本检查，原子落库
	Submit(ctx context.Context, sessionID string, cmd *game.Command) (*CommandResult, error)
}

// ChangeNotifier 会话变更通知接口，提交成功后调用
type ChangeNotifier interface {
	NotifySessionChanged(sessionID string, events []game.Event, state *game.State)
}

// CreateSessionRequest 创建会话请求
type CreateSessionRequest struct {
	SessionID string   `json:"sessionId"`
	PlayerIDs []string `json:"playerIds"`
	Seed      string   `json:"seed"`
}

// SessionSnapshot 会话快照
type SessionSnapshot struct {
	SessionID   string      `json:"sessionId"`
	State       *game.State `json:"state"`
	PlayerOrder []string    `json:"playerOrder"`
}

// EventView 事件视图
type EventView struct {
	Type    string      `json:"type"`
	ActorID string      `json:"actorId"`
	Version int         `json:"version"`
	Payload interface{} `json:"payload"`
}

// EventPage 事件分页结果
type EventPage struct {
	SessionID string      `json:"sessionId"`
	Events    []EventView `json:"events"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	PageSize  int         `json:"pageSize"`
}

// ResultKind 命令提交结果类别
type ResultKind string

const (
	// ResultAccepted 首次接受并提交
	ResultAccepted ResultKind = "accepted"
	// ResultReplayed 幂等重放，返回已提交的结果
	ResultReplayed ResultKind = "replayed"
	// ResultRejected 被拒绝，未产生任何状态变更
	ResultRejected ResultKind = "rejected"
)

// RejectReason 拒绝原因
type RejectReason string

const (
	RejectMissingIdempotencyKey RejectReason = "MISSING_IDEMPOTENCY_KEY"
	RejectIdempotencyMismatch   RejectReason = "IDEMPOTENCY_PAYLOAD_MISMATCH"
	RejectStateNotFound         RejectReason = "STATE_NOT_FOUND"
	RejectVersionConflict       RejectReason = "VERSION_CONFLICT"
	RejectPolicyViolation       RejectReason = "POLICY_VIOLATION"
	RejectEngineFailure         RejectReason = "ENGINE_FAILURE"
	RejectInfraFailure          RejectReason = "INFRA_FAILURE"
)

// Rejection 拒绝详情
type Rejection struct {
	Reason     RejectReason    `json:"reason"`
	PolicyCode game.PolicyCode `json:"policyCode,omitempty"`
	Details    string          `json:"details,omitempty"`
	Retryable  bool            `json:"retryable"`
}

// CommandResult 命令提交结果
type CommandResult struct {
	Kind      ResultKind   `json:"kind"`
	Events    []game.Event `json:"events,omitempty"`
	State     *game.State  `json:"state,omitempty"`
	Rejection *Rejection   `json:"rejection,omitempty"`
}
