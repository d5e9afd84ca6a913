package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/database"
	"github.com/glimpse-social/backend/internal/models"
	"github.com/glimpse-social/backend/internal/realtime"
	"github.com/glimpse-social/backend/internal/util"
	"gorm.io/gorm"
)

// CreateCommentRequest is the new-comment payload
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required,max=2200"`
}

// CreateComment adds a comment to a post and notifies the post author.
// Commenting on your own post stays silent.
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	postID := c.Param("id")

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: user.ID,
		Text:     req.Text,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		util.RespondInternalError(c, "failed to create comment")
		return
	}
	database.DB.Model(&post).UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
	comment.Author = user

	h.notify(post.AuthorID, user, realtime.NotificationComment, postID, comment.Text,
		user.Username+" commented on your post")

	c.JSON(http.StatusCreated, comment)
}

// GetComments returns a post's comments, oldest first
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var comments []models.Comment
	if err := database.DB.
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		util.RespondInternalError(c, "failed to load comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
