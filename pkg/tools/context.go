package tools

import (
	"context"

	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/models"
)

// MemoryStore is the subset of the memory service tools depend on.
// Declared here so the service package can import tools without a cycle.
type MemoryStore interface {
	CreateMemory(ctx context.Context, userID string, req db.CreateMemoryRequest) (*db.UserMemory, error)
	SearchMemories(ctx context.Context, userID, query, memType string, limit int) ([]db.UserMemory, error)
	DeleteMemoryByContent(ctx context.Context, userID, content string) (bool, error)
}

// ToolContext provides the collaborators and user scope tools run with.
type ToolContext struct {
	UserID string

	Tasks    models.TaskService
	Calendar models.CalendarService
	Email    models.EmailService
	Contacts models.ContactService
	Drive    models.DriveService
	Memory   MemoryStore
}

// NewToolContext creates a tool context for the given user and domain
// collaborators.
func NewToolContext(userID string, domain models.Domain, memory MemoryStore) *ToolContext {
	return &ToolContext{
		UserID:   userID,
		Tasks:    domain.Tasks,
		Calendar: domain.Calendar,
		Email:    domain.Email,
		Contacts: domain.Contacts,
		Drive:    domain.Drive,
		Memory:   memory,
	}
}
