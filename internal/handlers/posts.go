package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/database"
	"github.com/glimpse-social/backend/internal/models"
	"github.com/glimpse-social/backend/internal/realtime"
	"github.com/glimpse-social/backend/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatePostRequest is the new-post payload. Media is uploaded out of
// band; the API receives its final URL.
type CreatePostRequest struct {
	Caption   string `json:"caption" binding:"max=2200"`
	MediaURL  string `json:"media_url" binding:"required,url"`
	MediaType string `json:"media_type" binding:"omitempty,oneof=image video"`
	IsReel    bool   `json:"is_reel"`
	Duration  int    `json:"duration" binding:"omitempty,min=0"`
}

// CreatePost creates a feed post or reel
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeImage
	}
	if req.IsReel && mediaType != models.MediaTypeVideo {
		util.RespondValidationError(c, "media_type", "reels must be video")
		return
	}

	post := models.Post{
		AuthorID:  user.ID,
		Caption:   req.Caption,
		MediaURL:  req.MediaURL,
		MediaType: mediaType,
		IsReel:    req.IsReel,
		Duration:  req.Duration,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		util.RespondInternalError(c, "failed to create post")
		return
	}
	post.Author = user

	c.JSON(http.StatusCreated, post)
}

// GetFeed returns recent posts, newest first
// GET /api/v1/posts
func (h *Handlers) GetFeed(c *gin.Context) {
	limit, offset := paginationParams(c)

	var posts []models.Post
	if err := database.DB.
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		util.RespondInternalError(c, "failed to load feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetReels returns recent reels, newest first
// GET /api/v1/posts/reels
func (h *Handlers) GetReels(c *gin.Context) {
	limit, offset := paginationParams(c)

	var posts []models.Post
	if err := database.DB.
		Preload("Author").
		Where("is_reel = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		util.RespondInternalError(c, "failed to load reels")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetUserPosts returns one user's posts, newest first
// GET /api/v1/users/:id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
	limit, offset := paginationParams(c)

	var posts []models.Post
	if err := database.DB.
		Preload("Author").
		Where("author_id = ?", c.Param("id")).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		util.RespondInternalError(c, "failed to load posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// DeletePost removes a post the caller authored, along with its likes,
// comments and bookmarks.
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}
	if post.AuthorID != userID {
		util.RespondForbidden(c, "not your post")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		util.RespondInternalError(c, "failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// LikePost records a like and notifies the post author. Liking twice is
// a no-op; the composite key keeps the count honest.
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	res := database.DB.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, UserID: user.ID})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to like post")
		return
	}

	if res.RowsAffected > 0 {
		database.DB.Model(&post).UpdateColumn("like_count", gorm.Expr("like_count + 1"))
		h.notify(post.AuthorID, user, realtime.NotificationLike, postID, "",
			user.Username+" liked your post")
	}

	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// UnlikePost removes a like and notifies the post author with the
// cancelling event. Receivers match it to the earlier like by the
// (actor, post) pair.
// DELETE /api/v1/posts/:id/like
func (h *Handlers) UnlikePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	res := database.DB.
		Where("post_id = ? AND user_id = ?", postID, user.ID).
		Delete(&models.PostLike{})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to unlike post")
		return
	}

	if res.RowsAffected > 0 {
		database.DB.Model(&post).
			Where("like_count > 0").
			UpdateColumn("like_count", gorm.Expr("like_count - 1"))
		h.notify(post.AuthorID, user, realtime.NotificationDislike, postID, "",
			user.Username+" disliked your post")
	}

	c.JSON(http.StatusOK, gin.H{"liked": false})
}

// BookmarkPost toggles a bookmark. Private to the caller, so no
// notification goes out.
// POST /api/v1/posts/:id/bookmark
func (h *Handlers) BookmarkPost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	res := database.DB.
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to toggle bookmark")
		return
	}
	if res.RowsAffected > 0 {
		c.JSON(http.StatusOK, gin.H{"bookmarked": false})
		return
	}

	if err := database.DB.Create(&models.Bookmark{UserID: userID, PostID: postID}).Error; err != nil {
		util.RespondInternalError(c, "failed to toggle bookmark")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": true})
}

// paginationParams parses limit/offset query params with sane caps
func paginationParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
