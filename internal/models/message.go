package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the pairwise direct-message thread between two users.
// Participants are stored in lexical order so each pair maps to exactly
// one row.
type Conversation struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ParticipantAID string    `gorm:"type:uuid;index:idx_conversation_pair,unique;not null" json:"participant_a_id"`
	ParticipantBID string    `gorm:"type:uuid;index:idx_conversation_pair,unique;not null" json:"participant_b_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key and normalizes participant order
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.ParticipantAID > c.ParticipantBID {
		c.ParticipantAID, c.ParticipantBID = c.ParticipantBID, c.ParticipantAID
	}
	return nil
}

// ParticipantKey returns the normalized (a, b) pair for a sender/receiver.
func ParticipantKey(userA, userB string) (string, string) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}

// Message is one direct message inside a conversation
type Message struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string `gorm:"type:uuid;index;not null" json:"conversation_id"`
	SenderID       string `gorm:"type:uuid;index;not null" json:"sender_id"`
	ReceiverID     string `gorm:"type:uuid;index;not null" json:"receiver_id"`
	Text           string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
