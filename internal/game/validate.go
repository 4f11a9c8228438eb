package game

import (
	"encoding/json"
	"strings"
)

// 信封校验失败原因
const (
	ReasonInvalidType            = "INVALID_TYPE"
	ReasonInvalidActorID         = "INVALID_ACTOR_ID"
	ReasonInvalidExpectedVersion = "INVALID_EXPECTED_VERSION"
	ReasonInvalidIdempotencyKey  = "INVALID_IDEMPOTENCY_KEY"
	ReasonInvalidPayload         = "INVALID_PAYLOAD"
)

// ValidateCommandEnvelope 校验命令信封的基础字段。
// 负载只要求是JSON对象，按类型的结构校验由各策略负责。
func ValidateCommandEnvelope(cmd *Command) (ok bool, reason string) {
	if strings.TrimSpace(string(cmd.Type)) == "" {
		return false, ReasonInvalidType
	}

	if strings.TrimSpace(cmd.ActorID) == "" {
		return false, ReasonInvalidActorID
	}

	if cmd.ExpectedVersion < 0 {
		return false, ReasonInvalidExpectedVersion
	}

	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return false, ReasonInvalidIdempotencyKey
	}

	if !isJSONObject(cmd.Payload) {
		return false, ReasonInvalidPayload
	}

	return true, ""
}

// isJSONObject 负载必须是对象（不能是数组、null或标量）
func isJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return false
	}
	return strings.HasPrefix(trimmed, "{")
}
