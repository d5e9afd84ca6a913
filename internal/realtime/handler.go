package realtime

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/auth"
	"github.com/glimpse-social/backend/internal/logger"
	"github.com/glimpse-social/backend/internal/models"
)

// Handler upgrades HTTP requests to websocket connections and attaches
// them to the hub.
type Handler struct {
	hub         *Hub
	authService *auth.Service
}

// NewHandler creates a new websocket upgrade handler
func NewHandler(hub *Hub, authService *auth.Service) *Handler {
	return &Handler{hub: hub, authService: authService}
}

// Hub returns the hub this handler attaches connections to
func (h *Handler) Hub() *Hub {
	return h.hub
}

// HandleWebSocket authenticates and upgrades a connection, then blocks
// pumping frames until the client disconnects. Auth comes from a JWT in
// the `token` query param or the Authorization header; the identity it
// establishes is trusted for the lifetime of the connection.
// GET /ws
func (h *Handler) HandleWebSocket(c *gin.Context) {
	user, err := h.authenticateRequest(c)
	if err != nil {
		logger.WarnWithError("WebSocket auth failed", err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": err.Error(),
		})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checking happens at the CORS layer
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.WarnWithError("WebSocket upgrade failed", err)
		return
	}

	client := NewClient(h.hub, conn, user.ID, user.Username)

	h.hub.Register(client)

	client.enqueue(frame(EventTypeSystem, map[string]interface{}{
		"event":       "connected",
		"user_id":     user.ID,
		"username":    user.Username,
		"server_time": time.Now().UTC().UnixMilli(),
	}))

	go client.WritePump()
	client.ReadPump() // blocks until disconnect; unregisters on return
}

// authenticateRequest resolves the connecting user from the JWT
func (h *Handler) authenticateRequest(c *gin.Context) (*models.User, error) {
	tokenString := c.Query("token")

	if header := c.GetHeader("Authorization"); header != "" {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}

	if tokenString == "" {
		return nil, errors.New("no authentication token provided")
	}

	return h.authService.ValidateToken(tokenString)
}
