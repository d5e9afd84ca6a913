package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glimpse-social/backend/internal/models"
)

// EventType tags the wire envelope. The first three are the domain events
// pushed by request handlers; the rest are transport-level frames.
type EventType string

const (
	EventTypeNewMessage   EventType = "new_message"
	EventTypeNotification EventType = "notification"
	EventTypePresence     EventType = "presence_snapshot"

	EventTypeSystem EventType = "system"
	EventTypePing   EventType = "ping"
	EventTypePong   EventType = "pong"
	EventTypeError  EventType = "error"
)

// Event is the closed set of domain events the hub can deliver. The
// unexported discriminator keeps the set sealed so encoding can switch
// exhaustively over it.
type Event interface {
	eventType() EventType
}

// MessageEvent carries a persisted direct message to its receiver.
type MessageEvent struct {
	Message models.Message
}

func (MessageEvent) eventType() EventType { return EventTypeNewMessage }

// NotificationKind distinguishes the notification variants. Like and
// dislike are a cancelling pair: receivers reconcile them client-side by
// the (ActorID, PostID) key, so both kinds must carry that key.
type NotificationKind string

const (
	NotificationMessage NotificationKind = "message"
	NotificationLike    NotificationKind = "like"
	NotificationDislike NotificationKind = "dislike"
	NotificationComment NotificationKind = "comment"
)

// NotificationEvent tells a user that someone interacted with them or
// their content. Never delivered to its own actor; callers compute the
// addressee as the other party and skip self-notifications.
type NotificationEvent struct {
	Kind    NotificationKind   `json:"kind"`
	ActorID string             `json:"actor_id"`
	Actor   models.UserSummary `json:"actor"`
	PostID  string             `json:"post_id,omitempty"`
	Text    string             `json:"text,omitempty"`
	Message string             `json:"message"`
	// Timestamp in Unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

func (NotificationEvent) eventType() EventType { return EventTypeNotification }

// PresenceEvent is the full online-user set, broadcast to every
// connection on each registry change. Order carries no meaning.
type PresenceEvent struct {
	Online []string `json:"online"`
}

func (PresenceEvent) eventType() EventType { return EventTypePresence }

// Envelope is the wire frame pushed down a connection.
type Envelope struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EncodeEvent marshals a domain event into its wire envelope.
func EncodeEvent(e Event) ([]byte, error) {
	var payload interface{}
	switch ev := e.(type) {
	case MessageEvent:
		payload = ev.Message
	case NotificationEvent:
		payload = ev
	case PresenceEvent:
		payload = ev
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}
	return json.Marshal(Envelope{
		Type:      e.eventType(),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// frame marshals a transport-level envelope (system/pong/error). Marshal
// failures cannot happen for these payload shapes.
func frame(t EventType, payload interface{}) []byte {
	data, _ := json.Marshal(Envelope{
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	return data
}

// errorFrame builds a transport error frame
func errorFrame(code, message string) []byte {
	return frame(EventTypeError, map[string]string{
		"code":    code,
		"message": message,
	})
}

// inboundFrame is what clients may send upstream. Only ping (keepalive)
// is meaningful; everything else is rejected.
type inboundFrame struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// pingPayload is the client half of the keepalive exchange
type pingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// pongPayload echoes the client time alongside the server clock
type pongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
}
