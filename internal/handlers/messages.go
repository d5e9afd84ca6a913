package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/database"
	"github.com/glimpse-social/backend/internal/models"
	"github.com/glimpse-social/backend/internal/realtime"
	"github.com/glimpse-social/backend/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// messagePreviewLength caps the text shown inside a message notification
const messagePreviewLength = 50

// SendMessageRequest is the direct-message payload
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=4096"`
}

// SendMessage persists a direct message and pushes it to the receiver.
// The push carries the full message plus a preview notification; both
// are best-effort and an offline receiver simply reads the transcript
// later.
// POST /api/v1/messages/:id  (:id is the receiver)
func (h *Handlers) SendMessage(c *gin.Context) {
	sender, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	receiverID := c.Param("id")
	if receiverID == sender.ID {
		util.RespondBadRequest(c, "cannot message yourself")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var receiver models.User
	if err := database.DB.First(&receiver, "id = ?", receiverID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	conv, err := findOrCreateConversation(sender.ID, receiverID)
	if err != nil {
		util.RespondInternalError(c, "failed to open conversation")
		return
	}

	msg := models.Message{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		ReceiverID:     receiverID,
		Text:           req.Text,
	}
	if err := database.DB.Create(&msg).Error; err != nil {
		util.RespondInternalError(c, "failed to save message")
		return
	}

	h.hub.EmitTo(receiverID, realtime.MessageEvent{Message: msg})
	h.notify(receiverID, sender, realtime.NotificationMessage, "",
		util.TruncateText(msg.Text, messagePreviewLength),
		sender.Username+" sent you a message")

	c.JSON(http.StatusCreated, msg)
}

// GetMessages returns the transcript with another user, oldest first
// GET /api/v1/messages/:id
func (h *Handlers) GetMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	otherID := c.Param("id")

	a, b := models.ParticipantKey(userID, otherID)

	var conv models.Conversation
	err := database.DB.Where("participant_a_id = ? AND participant_b_id = ?", a, b).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"messages": []models.Message{}})
		return
	} else if err != nil {
		util.RespondInternalError(c, "failed to load conversation")
		return
	}

	var messages []models.Message
	if err := database.DB.
		Where("conversation_id = ?", conv.ID).
		Order("created_at ASC").
		Limit(200).
		Find(&messages).Error; err != nil {
		util.RespondInternalError(c, "failed to load messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// findOrCreateConversation resolves the single thread for a user pair
func findOrCreateConversation(userA, userB string) (*models.Conversation, error) {
	a, b := models.ParticipantKey(userA, userB)

	conv := models.Conversation{ParticipantAID: a, ParticipantBID: b}
	err := database.DB.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&conv).Error
	if err != nil {
		return nil, err
	}

	// On conflict the insert returns no row, so read back either way
	if err := database.DB.
		Where("participant_a_id = ? AND participant_b_id = ?", a, b).
		First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}
