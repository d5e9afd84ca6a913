// Package handlers implements the HTTP API. Handlers that mutate social
// state push the matching realtime event through the hub; delivery is
// fire-and-forget and never affects the HTTP response.
package handlers

import (
	"time"

	"github.com/glimpse-social/backend/internal/auth"
	"github.com/glimpse-social/backend/internal/models"
	"github.com/glimpse-social/backend/internal/realtime"
)

// Handlers holds shared handler dependencies
type Handlers struct {
	hub         *realtime.Hub
	authService *auth.Service
}

// New creates the handler set
func New(hub *realtime.Hub, authService *auth.Service) *Handlers {
	return &Handlers{hub: hub, authService: authService}
}

// notify pushes a notification to a user unless they are its actor.
// Self-notifications are suppressed at the call site because the hub
// itself is actor-agnostic.
func (h *Handlers) notify(addresseeID string, actor *models.User, kind realtime.NotificationKind, postID, text, message string) {
	if addresseeID == actor.ID {
		return
	}
	h.hub.EmitTo(addresseeID, realtime.NotificationEvent{
		Kind:      kind,
		ActorID:   actor.ID,
		Actor:     actor.Summary(),
		PostID:    postID,
		Text:      text,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
}
