package event

// ============================================================================
// Event Names (constants)
// ============================================================================

const (
	ChatCompleted        = "chat.completed"
	ConversationDeleted  = "conversation.deleted"
	ConversationArchived = "conversation.archived"
	ArchiveRunCompleted  = "archive.runCompleted"
	MemoryCreated        = "memory.created"
	MemoryDeleted        = "memory.deleted"
)

// ============================================================================
// Chat Events
// ============================================================================

// ChatCompletedEvent is emitted when the assistant finished a chat turn.
type ChatCompletedEvent struct {
	UserID         string
	ConversationID string
}

func (e ChatCompletedEvent) EventName() string { return ChatCompleted }

// ConversationDeletedEvent is emitted when a conversation is removed.
type ConversationDeletedEvent struct {
	UserID         string
	ConversationID string
}

func (e ConversationDeletedEvent) EventName() string { return ConversationDeleted }

// ============================================================================
// Archive Events
// ============================================================================

// ConversationArchivedEvent is emitted when one conversation's old
// messages were compacted into a history period.
type ConversationArchivedEvent struct {
	UserID         string
	ConversationID string
	MessageCount   int
}

func (e ConversationArchivedEvent) EventName() string { return ConversationArchived }

// ArchiveRunCompletedEvent is emitted when a full archive pass finished.
type ArchiveRunCompletedEvent struct {
	Processed int
	Archived  int
	Errors    int
}

func (e ArchiveRunCompletedEvent) EventName() string { return ArchiveRunCompleted }

// ============================================================================
// Memory Events
// ============================================================================

// MemoryCreatedEvent is emitted when a new memory is stored.
type MemoryCreatedEvent struct {
	UserID   string
	MemoryID string
}

func (e MemoryCreatedEvent) EventName() string { return MemoryCreated }

// MemoryDeletedEvent is emitted when a memory is removed.
type MemoryDeletedEvent struct {
	UserID   string
	MemoryID string
}

func (e MemoryDeletedEvent) EventName() string { return MemoryDeleted }
