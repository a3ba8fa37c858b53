// Database models for conversation messages
package db

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Immutable once created except
// for the archived flag, which the archival pipeline flips.
type Message struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	ConversationID string     `json:"conversation_id" gorm:"index;size:36;not null"`
	Role           string     `json:"role" gorm:"size:20;not null"`
	Content        string     `json:"content" gorm:"type:text;not null"`
	Archived       bool       `json:"archived" gorm:"default:false;index"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
