package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/glimpse-social/backend/internal/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed between inbound frames (pings included)
	pongWait = 60 * time.Second

	// Ping period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from the peer
	maxFrameSize = 64 * 1024

	// Outbound buffer size per connection
	sendBufferSize = 256
)

// Client is one live websocket connection owned by one user identity.
// The hub writes encoded frames into send; WritePump drains it onto the
// wire.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	UserID   string
	Username string

	send chan []byte

	ConnectedAt time.Time

	rateLimiter *rateLimiter

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	closed     bool
	sendClosed bool
}

// NewClient wraps an accepted connection for a registered identity
func NewClient(hub *Hub, conn *websocket.Conn, userID, username string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:         hub,
		conn:        conn,
		UserID:      userID,
		Username:    username,
		send:        make(chan []byte, sendBufferSize),
		ConnectedAt: time.Now(),
		rateLimiter: newRateLimiter(10, 20),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Outbox exposes the outbound frame stream. WritePump consumes it in
// production; tests read it directly to observe deliveries.
func (c *Client) Outbox() <-chan []byte {
	return c.send
}

// ReadPump pumps inbound frames until the connection dies, then
// unregisters the client. This is the single teardown path, so the hub
// sees exactly one Unregister per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		readCtx, readCancel := context.WithTimeout(c.ctx, pongWait)
		_, data, err := c.conn.Read(readCtx)
		readCancel()

		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Log.Info("Client closed connection", logger.WithUserID(c.UserID))
			} else if c.ctx.Err() == nil {
				logger.Log.Warn("Client read error",
					logger.WithUserID(c.UserID),
					zap.Error(err),
				)
				c.hub.stats.Errors.Add(1)
			}
			return
		}

		if !c.rateLimiter.allow() {
			c.enqueue(errorFrame("rate_limited", "too many frames, slow down"))
			c.hub.stats.Errors.Add(1)
			continue
		}

		c.hub.stats.FramesReceived.Add(1)
		c.handleFrame(data)
	}
}

// handleFrame dispatches one inbound frame. Clients only ever send
// keepalives; the server pushes everything else.
func (c *Client) handleFrame(data []byte) {
	var in inboundFrame
	if err := json.Unmarshal(data, &in); err != nil {
		c.enqueue(errorFrame("invalid_json", "failed to parse frame"))
		return
	}

	switch in.Type {
	case EventTypePing:
		var ping pingPayload
		if len(in.Payload) > 0 {
			_ = json.Unmarshal(in.Payload, &ping)
		}
		c.enqueue(frame(EventTypePong, pongPayload{
			ClientTime: ping.ClientTime,
			ServerTime: time.Now().UnixMilli(),
		}))
	default:
		c.enqueue(errorFrame("unknown_type", "unsupported frame type"))
	}
}

// enqueue does a best-effort push of a transport frame onto this
// connection's buffer, bypassing the hub (no registry involvement).
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// detachSend closes the send buffer exactly once. Called by the hub
// when the connection leaves the registry; shares the client mutex so
// it cannot race the client's own enqueue.
func (c *Client) detachSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

// WritePump drains the send buffer onto the wire and keeps the
// connection alive with pings. Exits when the hub closes the buffer or
// a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "server shutdown")
			return

		case data, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "closing")
				return
			}

			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, data)
			cancel()

			if err != nil {
				logger.Log.Warn("Client write error",
					logger.WithUserID(c.UserID),
					zap.Error(err),
				)
				c.hub.stats.Errors.Add(1)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Ping(ctx)
			cancel()

			if err != nil {
				return
			}
		}
	}
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	if c.conn != nil {
		c.conn.Close(websocket.StatusNormalClosure, "closing")
	}
}

// rateLimiter is a token bucket limiting inbound frames per client
type rateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	maxTokens float64
	refill    float64
	lastTime  time.Time
}

func newRateLimiter(perSecond, burst int) *rateLimiter {
	return &rateLimiter{
		tokens:    float64(burst),
		maxTokens: float64(burst),
		refill:    float64(perSecond),
		lastTime:  time.Now(),
	}
}

func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastTime).Seconds()
	r.lastTime = now

	r.tokens += elapsed * r.refill
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}
