// Database models for the user memory system
package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MemoryType defines the kind of fact a memory stores
type MemoryType string

const (
	MemoryTypePreference   MemoryType = "preference"   // How the user likes things done
	MemoryTypeContact      MemoryType = "contact"      // People the user interacts with
	MemoryTypePattern      MemoryType = "pattern"      // Recurring behavior
	MemoryTypeProject      MemoryType = "project"      // Ongoing work
	MemoryTypePersonal     MemoryType = "personal"     // Personal facts
	MemoryTypeInstruction  MemoryType = "instruction"  // Standing instructions
	MemoryTypeRelationship MemoryType = "relationship" // How people relate to the user
	MemoryTypeDecision     MemoryType = "decision"     // Decisions the user made
)

// MemoryTypes lists all valid memory types in stable order.
var MemoryTypes = []MemoryType{
	MemoryTypePreference,
	MemoryTypeContact,
	MemoryTypePattern,
	MemoryTypeProject,
	MemoryTypePersonal,
	MemoryTypeInstruction,
	MemoryTypeRelationship,
	MemoryTypeDecision,
}

// IsValidMemoryType reports whether t is a known memory type.
func IsValidMemoryType(t MemoryType) bool {
	for _, v := range MemoryTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Memory metadata sources
const (
	MemorySourceExplicit     = "explicit"     // Stated directly by the user
	MemorySourceInferred     = "inferred"     // Inferred by the assistant
	MemorySourceConversation = "conversation" // Extracted during archival
)

// UserMemory is one durable fact about a user.
// Creation is idempotent per (user, type, content): a duplicate create
// bumps access stats on the existing row instead of inserting a new one.
type UserMemory struct {
	ID      string     `json:"id" gorm:"primaryKey;size:36"`
	UserID  string     `json:"user_id" gorm:"index:idx_memory_user_type;size:36;not null"`
	Type    MemoryType `json:"type" gorm:"index:idx_memory_user_type;size:20;not null"`
	Content string     `json:"content" gorm:"type:text;not null"`

	// Shape depends on Type: contact carries email/company/role/phone,
	// project carries deadline/status/team, preference carries category.
	// All carry an optional source and confidence.
	Metadata JSONMap `json:"metadata,omitempty" gorm:"type:json"`

	Importance  int        `json:"importance" gorm:"default:5"` // 1-10
	IsActive    bool       `json:"is_active" gorm:"default:true;index"`
	AccessCount int        `json:"access_count" gorm:"default:0"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserMemory) TableName() string {
	return "user_memories"
}

// CreateMemoryRequest is the payload for storing a memory.
type CreateMemoryRequest struct {
	Type       MemoryType `json:"type" binding:"required"`
	Content    string     `json:"content" binding:"required"`
	Importance int        `json:"importance,omitempty"`
	Metadata   JSONMap    `json:"metadata,omitempty"`
}

// ========== Helper Types ==========

// StringArray is a slice of strings stored as JSON
type StringArray []string

// Value implements driver.Valuer for StringArray
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for StringArray
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
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
	return json.Unmarshal(bytes, s)
}

// JSONMap is a generic JSON map type
type JSONMap map[string]interface{}

// Value implements driver.Valuer for JSONMap
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONMap
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
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
	return json.Unmarshal(bytes, j)
}
