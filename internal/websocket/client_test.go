package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorData(t *testing.T, msg *Message) map[string]string {
	t.Helper()
	var data map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func TestHandleSubscribeMessage(t *testing.T) {
	hub := newTestHub("session-1")
	client := newTestClient(hub)
	hub.registerClient(client)
	receiveMessage(t, client) // connected

	client.handleMessage([]byte(`{"type":"SUBSCRIBE_SESSION","sessionId":"session-1"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Equal(t, 1, hub.SubscriberCount("session-1"))

	client.handleMessage([]byte(`{"type":"UNSUBSCRIBE_SESSION","sessionId":"session-1"}`))
	assert.Equal(t, 0, hub.SubscriberCount("session-1"))
}

func TestHandleSubscribeUnknownSession(t *testing.T) {
	hub := newTestHub("session-1")
	client := newTestClient(hub)
	hub.registerClient(client)
	receiveMessage(t, client)

	client.handleMessage([]byte(`{"type":"SUBSCRIBE_SESSION","sessionId":"session-404"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "SESSION_NOT_FOUND", errorData(t, msg)["code"])
}

func TestHandleSubscribeMissingSessionID(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	receiveMessage(t, client)

	client.handleMessage([]byte(`{"type":"SUBSCRIBE_SESSION"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "MISSING_SESSION_ID", errorData(t, msg)["code"])
}

func TestHandleMalformedMessage(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	receiveMessage(t, client)

	client.handleMessage([]byte(`not-json`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "INVALID_MESSAGE", errorData(t, msg)["code"])
}

func TestHandleUnknownMessageType(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	receiveMessage(t, client)

	client.handleMessage([]byte(`{"type":"SPIN"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "UNKNOWN_MESSAGE_TYPE", errorData(t, msg)["code"])
}

func TestHandlePingRepliesPong(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.registerClient(client)
	receiveMessage(t, client)

	client.handleMessage([]byte(`{"type":"ping"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypePong, msg.Type)
}
