package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media types for posts
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post represents a feed post or reel. Media upload and transcoding happen
// upstream; the backend stores the resulting URL only.
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID string `gorm:"type:uuid;index;not null" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Caption   string `gorm:"type:text" json:"caption"`
	MediaURL  string `gorm:"type:text;not null" json:"media_url"`
	MediaType string `gorm:"not null;default:image" json:"media_type"`
	IsReel    bool   `gorm:"default:false;index" json:"is_reel"`
	// Duration in seconds, video posts only
	Duration int `gorm:"default:0" json:"duration,omitempty"`

	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PostLike records one user's like of one post. The composite key makes
// likes idempotent at the schema level.
type PostLike struct {
	PostID    string    `gorm:"primaryKey;type:uuid;index" json:"post_id"`
	UserID    string    `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment on a post
type Comment struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID   string `gorm:"type:uuid;index;not null" json:"post_id"`
	AuthorID string `gorm:"type:uuid;index;not null" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text     string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
