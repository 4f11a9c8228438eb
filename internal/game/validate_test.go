package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCommandEnvelope(t *testing.T) {
	valid := func() *Command {
		return &Command{
			Type:            CommandTakeTokens,
			GameID:          "game-1",
			ActorID:         "alice",
			ExpectedVersion: 1,
			IdempotencyKey:  "key-1",
			Payload:         json.RawMessage(`{"tokens":{"ruby":2}}`),
		}
	}

	ok, reason := ValidateCommandEnvelope(valid())
	assert.True(t, ok)
	assert.Empty(t, reason)

	cases := []struct {
		name   string
		mutate func(*Command)
		reason string
	}{
		{"类型为空", func(c *Command) { c.Type = "" }, ReasonInvalidType},
		{"类型为空白", func(c *Command) { c.Type = "   " }, ReasonInvalidType},
		{"操作者为空", func(c *Command) { c.ActorID = "" }, ReasonInvalidActorID},
		{"期望版本为负", func(c *Command) { c.ExpectedVersion = -1 }, ReasonInvalidExpectedVersion},
		{"幂等键为空", func(c *Command) { c.IdempotencyKey = " " }, ReasonInvalidIdempotencyKey},
		{"负载为数组", func(c *Command) { c.Payload = json.RawMessage(`[]`) }, ReasonInvalidPayload},
		{"负载为null", func(c *Command) { c.Payload = json.RawMessage(`null`) }, ReasonInvalidPayload},
		{"负载缺失", func(c *Command) { c.Payload = nil }, ReasonInvalidPayload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := valid()
			tc.mutate(cmd)
			ok, reason := ValidateCommandEnvelope(cmd)
			assert.False(t, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestValidateCommandEnvelopeAllowsZeroVersion(t *testing.T) {
	cmd := &Command{
		Type:            CommandEndTurn,
		ActorID:         "alice",
		ExpectedVersion: 0,
		IdempotencyKey:  "key-1",
		Payload:         json.RawMessage(`{}`),
	}
	ok, _ := ValidateCommandEnvelope(cmd)
	assert.True(t, ok)
}
