// Package realtime maps authenticated users to live websocket connections
// and fans out events to them. Delivery is best-effort at-most-once: a
// user with no live connection at emission time never sees the event.
package realtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/glimpse-social/backend/internal/logger"
	"github.com/glimpse-social/backend/internal/metrics"
	"go.uber.org/zap"
)

// Hub owns the identity→connections registry. All registry access goes
// through its methods; mutations and the presence snapshot they trigger
// happen inside a single critical section, so every snapshot reflects
// the registry state immediately after the change that caused it.
//
// One user may own several connections at once (multiple tabs/devices);
// EmitTo fans out to all of them.
type Hub struct {
	mu sync.RWMutex

	// clients indexes connections by owning user for targeted delivery
	clients map[string]map[*Client]struct{}

	// allClients holds every live connection for broadcasts
	allClients map[*Client]struct{}

	closed bool

	stats Stats
}

// Stats tracks hub counters
type Stats struct {
	TotalConnections  atomic.Int64
	ActiveConnections atomic.Int64
	EventsSent        atomic.Int64
	EventsDropped     atomic.Int64
	FramesReceived    atomic.Int64
	Errors            atomic.Int64
}

// StatsSnapshot is a point-in-time copy of hub counters
type StatsSnapshot struct {
	TotalConnections  int64 `json:"total_connections"`
	ActiveConnections int64 `json:"active_connections"`
	EventsSent        int64 `json:"events_sent"`
	EventsDropped     int64 `json:"events_dropped"`
	FramesReceived    int64 `json:"frames_received"`
	Errors            int64 `json:"errors"`
}

// String implements Stringer for StatsSnapshot
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("connections=%d/%d sent=%d dropped=%d rx=%d errors=%d",
		s.ActiveConnections, s.TotalConnections,
		s.EventsSent, s.EventsDropped, s.FramesReceived, s.Errors)
}

// NewHub creates an empty hub. The registry starts from zero on every
// process start; users appear offline until they reconnect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		allClients: make(map[*Client]struct{}),
	}
}

// Register adds a connection for its owning user and broadcasts the
// updated presence snapshot to every connection, the new one included.
// The caller must have authenticated the user before registering.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.Close()
		return
	}

	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.allClients[c] = struct{}{}

	h.stats.TotalConnections.Add(1)
	active := h.stats.ActiveConnections.Add(1)

	h.broadcastPresenceLocked()
	h.mu.Unlock()

	if m := metrics.Get(); m != nil {
		m.RealtimeActiveConnections.Set(float64(active))
	}
	logger.Log.Info("Client connected",
		logger.WithUserID(c.UserID),
		zap.Int64("active", active),
	)
}

// Unregister removes a connection if it is still registered and
// broadcasts the updated presence snapshot to the remaining ones.
// Idempotent: a second call for the same connection is a no-op, so the
// transport teardown path may race a slow-consumer eviction safely.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.allClients[c]; !ok {
		h.mu.Unlock()
		return
	}

	delete(h.allClients, c)
	if conns, ok := h.clients[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	c.detachSend()

	active := h.stats.ActiveConnections.Add(-1)

	h.broadcastPresenceLocked()
	h.mu.Unlock()

	if m := metrics.Get(); m != nil {
		m.RealtimeActiveConnections.Set(float64(active))
	}
	logger.Log.Info("Client disconnected",
		logger.WithUserID(c.UserID),
		zap.Int64("active", active),
	)
}

// EmitTo delivers an event to every connection the addressee currently
// owns. Fire-and-forget: no acknowledgement, no retry, and an offline
// addressee is a silent drop, not an error. Callers must not address an
// event to its own actor.
func (h *Hub) EmitTo(userID string, e Event) {
	data, err := EncodeEvent(e)
	if err != nil {
		logger.ErrorWithError("Failed to encode event", err)
		h.stats.Errors.Add(1)
		return
	}

	h.mu.RLock()
	conns := h.clients[userID]
	if len(conns) == 0 {
		h.mu.RUnlock()
		return
	}
	for c := range conns {
		h.deliverLocked(c, data, e.eventType())
	}
	h.mu.RUnlock()
}

// Broadcast delivers an event to every registered connection.
func (h *Hub) Broadcast(e Event) {
	data, err := EncodeEvent(e)
	if err != nil {
		logger.ErrorWithError("Failed to encode event", err)
		h.stats.Errors.Add(1)
		return
	}

	h.mu.RLock()
	for c := range h.allClients {
		h.deliverLocked(c, data, e.eventType())
	}
	h.mu.RUnlock()
}

// BroadcastPresence pushes the current presence snapshot to every
// registered connection, outside of any registry change.
func (h *Hub) BroadcastPresence() {
	h.mu.RLock()
	h.broadcastPresenceLocked()
	h.mu.RUnlock()
}

// broadcastPresenceLocked builds the snapshot from the current registry
// and delivers it to all connections. Callers must hold mu (read or
// write); the snapshot is therefore never stale relative to the
// mutation that triggered it.
func (h *Hub) broadcastPresenceLocked() {
	data, err := EncodeEvent(PresenceEvent{Online: h.onlineIDsLocked()})
	if err != nil {
		h.stats.Errors.Add(1)
		return
	}
	for c := range h.allClients {
		h.deliverLocked(c, data, EventTypePresence)
	}
}

// deliverLocked pushes an encoded frame into one client's send buffer.
// Non-blocking: a full buffer means the consumer is too slow, so the
// event is dropped and the connection evicted. Callers must hold mu.
func (h *Hub) deliverLocked(c *Client, data []byte, t EventType) {
	select {
	case c.send <- data:
		h.stats.EventsSent.Add(1)
		if m := metrics.Get(); m != nil {
			m.RealtimeEventsSentTotal.WithLabelValues(string(t)).Inc()
		}
	default:
		h.stats.EventsDropped.Add(1)
		if m := metrics.Get(); m != nil {
			m.RealtimeEventsDroppedTotal.Inc()
		}
		// Slow consumer: evict outside the current lock
		go func() {
			h.Unregister(c)
			c.Close()
		}()
	}
}

// IsOnline reports whether a user has at least one live connection
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectionCount returns the number of live connections a user owns
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// OnlineIDs returns the sorted set of currently-online user ids
func (h *Hub) OnlineIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineIDsLocked()
}

func (h *Hub) onlineIDsLocked() []string {
	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids
}

// Stats returns a snapshot of the hub counters
func (h *Hub) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalConnections:  h.stats.TotalConnections.Load(),
		ActiveConnections: h.stats.ActiveConnections.Load(),
		EventsSent:        h.stats.EventsSent.Load(),
		EventsDropped:     h.stats.EventsDropped.Load(),
		FramesReceived:    h.stats.FramesReceived.Load(),
		Errors:            h.stats.Errors.Load(),
	}
}

// Shutdown notifies all clients and closes every connection. The hub
// accepts no registrations afterwards.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true

	data := frame(EventTypeSystem, map[string]interface{}{"event": "server_shutdown"})
	clients := make([]*Client, 0, len(h.allClients))
	for c := range h.allClients {
		select {
		case c.send <- data:
		default:
		}
		c.detachSend()
		clients = append(clients, c)
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.allClients = make(map[*Client]struct{})
	h.stats.ActiveConnections.Store(0)
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	logger.Log.Info("Realtime hub shut down", zap.Int("connections_closed", len(clients)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
