// Database models for agent conversations
package db

import "time"

// Conversation is one chat thread between a user and the assistant.
// A user has at most one primary conversation, which is the one the
// archival sweep operates on.
type Conversation struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	UserID         string     `json:"user_id" gorm:"index;size:36;not null"`
	Title          string     `json:"title,omitempty" gorm:"size:200"`
	IsPrimary      bool       `json:"is_primary" gorm:"default:false;index"`
	LastArchivedAt *time.Time `json:"last_archived_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Messages []Message `json:"messages,omitempty" gorm:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Title is derived from the first user message, capped at 50 chars.
const ConversationTitleMaxLen = 50
