// Package models defines the gorm schema for the application.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a Glimpse account
type User struct {
	ID                string `gorm:"primaryKey;type:uuid" json:"id"`
	Email             string `gorm:"uniqueIndex;not null" json:"email"`
	Username          string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash      string `gorm:"type:text;not null" json:"-"`
	Bio               string `gorm:"type:text" json:"bio"`
	Gender            string `json:"gender,omitempty"`
	ProfilePictureURL string `gorm:"type:text" json:"profile_picture_url"`

	FollowerCount  int `gorm:"default:0" json:"follower_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Summary returns the public slice of a user embedded in notifications
// and post/comment author fields.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Username:          u.Username,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// UserSummary is the minimal author/actor projection of a user
type UserSummary struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// Follow records that Follower follows Followee
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:uuid;index" json:"follower_id"`
	FolloweeID string    `gorm:"primaryKey;type:uuid;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Bookmark records a post saved by a user
type Bookmark struct {
	UserID    string    `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	PostID    string    `gorm:"primaryKey;type:uuid;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
