// Database models for archived conversation periods
package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ArchivedMessage is one message preserved inside a history record,
// kept for lossless replay of the archived period.
type ArchivedMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageArray is a slice of archived messages stored as JSON.
type MessageArray []ArchivedMessage

// Value implements driver.Valuer for MessageArray
func (m MessageArray) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for MessageArray
func (m *MessageArray) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte or string failed")
	}
	return json.Unmarshal(bytes, m)
}

// EntitySet holds the structured entities extracted from an archived
// period. Each list is free-text strings.
type EntitySet struct {
	Contacts  []string `json:"contacts"`
	Projects  []string `json:"projects"`
	Amounts   []string `json:"amounts"`
	Dates     []string `json:"dates"`
	Decisions []string `json:"decisions"`
}

// Value implements driver.Valuer for EntitySet
func (e EntitySet) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for EntitySet
func (e *EntitySet) Scan(value interface{}) error {
	if value == nil {
		*e = EntitySet{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte or string failed")
	}
	return json.Unmarshal(bytes, e)
}

// ConversationHistory is a compacted record replacing a contiguous run
// of archived messages.
//
// Invariant: PeriodStart <= every contained message timestamp <=
// PeriodEnd, and MessageCount equals len(Messages).
type ConversationHistory struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	UserID       string       `json:"user_id" gorm:"index;size:36;not null"`
	PeriodStart  time.Time    `json:"period_start" gorm:"index"`
	PeriodEnd    time.Time    `json:"period_end" gorm:"index"`
	Messages     MessageArray `json:"messages" gorm:"type:json"`
	MessageCount int          `json:"message_count"`
	Summary      string       `json:"summary" gorm:"type:text"`
	Topics       StringArray  `json:"topics" gorm:"type:json"`
	Entities     EntitySet    `json:"entities" gorm:"type:json"`
	ArchivedAt   time.Time    `json:"archived_at"`
}

func (ConversationHistory) TableName() string {
	return "conversation_history"
}
