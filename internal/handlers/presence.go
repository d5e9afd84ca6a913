package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/util"
)

// GetOnlineUsers returns the ids of every currently-connected user.
// The same set the presence_snapshot event carries, for clients that
// want to poll instead.
// GET /api/v1/presence/online
func (h *Handlers) GetOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.hub.OnlineIDs()})
}

// OnlineStatusRequest asks for the status of a batch of users
type OnlineStatusRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,max=100"`
}

// GetOnlineStatus reports per-user online flags for a batch of ids
// POST /api/v1/presence/status
func (h *Handlers) GetOnlineStatus(c *gin.Context) {
	var req OnlineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	status := make(map[string]bool, len(req.UserIDs))
	for _, id := range req.UserIDs {
		status[id] = h.hub.IsOnline(id)
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetRealtimeStats exposes hub counters for operators
// GET /api/v1/realtime/stats
func (h *Handlers) GetRealtimeStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Stats())
}
