package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/glimpse-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessageEvent(t *testing.T) {
	data, err := EncodeEvent(MessageEvent{Message: models.Message{
		ID:         "m1",
		SenderID:   "bob",
		ReceiverID: "alice",
		Text:       "hello",
	}})
	require.NoError(t, err)

	var env receivedEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, EventTypeNewMessage, env.Type)

	var msg models.Message
	require.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Equal(t, "bob", msg.SenderID)
	assert.Equal(t, "hello", msg.Text)
}

func TestEncodeNotificationEvent(t *testing.T) {
	now := time.Now().UnixMilli()
	data, err := EncodeEvent(NotificationEvent{
		Kind:      NotificationComment,
		ActorID:   "bob",
		Actor:     models.UserSummary{ID: "bob", Username: "bob"},
		PostID:    "p1",
		Text:      "nice shot",
		Message:   "bob commented on your post",
		Timestamp: now,
	})
	require.NoError(t, err)

	var env receivedEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, EventTypeNotification, env.Type)

	var n NotificationEvent
	require.NoError(t, json.Unmarshal(env.Payload, &n))
	assert.Equal(t, NotificationComment, n.Kind)
	assert.Equal(t, "bob", n.Actor.Username)
	assert.Equal(t, "p1", n.PostID)
	assert.Equal(t, now, n.Timestamp)
}

func TestEncodePresenceEvent(t *testing.T) {
	data, err := EncodeEvent(PresenceEvent{Online: []string{"alice", "bob"}})
	require.NoError(t, err)

	var env receivedEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, EventTypePresence, env.Type)
	assert.Equal(t, []string{"alice", "bob"}, decodePresence(t, env))
}

func TestEncodeEventRejectsUnknown(t *testing.T) {
	_, err := EncodeEvent(nil)
	assert.Error(t, err)
}

func TestEnvelopeCarriesTimestamp(t *testing.T) {
	data, err := EncodeEvent(PresenceEvent{Online: nil})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.WithinDuration(t, time.Now().UTC(), env.Timestamp, 5*time.Second)
}

func TestErrorFrameShape(t *testing.T) {
	var env receivedEnvelope
	require.NoError(t, json.Unmarshal(errorFrame("rate_limited", "slow down"), &env))
	assert.Equal(t, EventTypeError, env.Type)

	var body map[string]string
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	assert.Equal(t, "rate_limited", body["code"])
	assert.Equal(t, "slow down", body["message"])
}
