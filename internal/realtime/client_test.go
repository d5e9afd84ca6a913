package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := newRateLimiter(10, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.allow(), "token %d should be available", i)
	}
	assert.False(t, rl.allow())
}

func TestRateLimiterRefills(t *testing.T) {
	rl := newRateLimiter(1000, 1)

	require.True(t, rl.allow())
	require.False(t, rl.allow())

	time.Sleep(10 * time.Millisecond)
	assert.True(t, rl.allow())
}

func TestHandleFramePingPong(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "alice")

	c.handleFrame([]byte(`{"type":"ping","payload":{"client_time":42}}`))

	envs := drain(t, c)
	require.Len(t, envs, 1)
	assert.Equal(t, EventTypePong, envs[0].Type)

	var pong pongPayload
	require.NoError(t, json.Unmarshal(envs[0].Payload, &pong))
	assert.Equal(t, int64(42), pong.ClientTime)
	assert.NotZero(t, pong.ServerTime)
}

func TestHandleFrameRejectsUnknownType(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "alice")

	c.handleFrame([]byte(`{"type":"subscribe"}`))

	envs := drain(t, c)
	require.Len(t, envs, 1)
	assert.Equal(t, EventTypeError, envs[0].Type)
}

func TestHandleFrameRejectsInvalidJSON(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "alice")

	c.handleFrame([]byte(`{not json`))

	envs := drain(t, c)
	require.Len(t, envs, 1)
	assert.Equal(t, EventTypeError, envs[0].Type)
}

func TestEnqueueAfterDetachIsNoop(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "alice")

	c.detachSend()
	c.enqueue(frame(EventTypeSystem, nil)) // must not panic on closed channel

	_, ok := <-c.Outbox()
	assert.False(t, ok)
}
