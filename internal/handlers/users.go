package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/database"
	"github.com/glimpse-social/backend/internal/models"
	"github.com/glimpse-social/backend/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetUser returns a public profile
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// FollowUser makes the caller follow another user. Idempotent.
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if targetID == userID {
		util.RespondBadRequest(c, "cannot follow yourself")
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	res := database.DB.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: userID, FolloweeID: targetID})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to follow user")
		return
	}

	if res.RowsAffected > 0 {
		database.DB.Model(&models.User{}).Where("id = ?", targetID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1"))
		database.DB.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1"))
	}

	c.JSON(http.StatusOK, gin.H{"following": true})
}

// UnfollowUser removes a follow edge. Idempotent.
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	res := database.DB.
		Where("follower_id = ? AND followee_id = ?", userID, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		util.RespondInternalError(c, "failed to unfollow user")
		return
	}

	if res.RowsAffected > 0 {
		database.DB.Model(&models.User{}).Where("id = ? AND follower_count > 0", targetID).
			UpdateColumn("follower_count", gorm.Expr("follower_count - 1"))
		database.DB.Model(&models.User{}).Where("id = ? AND following_count > 0", userID).
			UpdateColumn("following_count", gorm.Expr("following_count - 1"))
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}
