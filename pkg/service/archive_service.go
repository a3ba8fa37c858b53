// Archive service: compacts old conversation messages into summarized
// history records and promotes extracted entities into long-term memory.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/event"
	"github.com/nexora/nexora/pkg/provider"
	"github.com/nexora/nexora/pkg/utils"
)

const (
	summaryUnavailableNoProvider = "Resumen no disponible (sin proveedor de IA)"
	summaryUnavailableError      = "Resumen no disponible (error de generación)"
	summaryUnavailableEmpty      = "Resumen no disponible"

	defaultHistorySearchLimit = 5
	historySnippetMax         = 200
	historySnippetsPerPeriod  = 3
)

const summarySystemPrompt = "Eres un asistente que genera resúmenes concisos de conversaciones. " +
	"Resume la siguiente conversación en 2-3 párrafos en español. " +
	"Incluye los temas tratados, las decisiones tomadas, las tareas mencionadas y las personas o empresas que aparecen."

const extractionSystemPrompt = "Eres un asistente que extrae información estructurada de conversaciones. " +
	"Analiza la conversación y responde SOLO con el JSON, sin texto adicional, con esta forma exacta: " +
	`{"topics": ["tema"], "entities": {"contacts": [], "projects": [], "amounts": [], "dates": [], "decisions": []}}`

// ArchiveResult reports one archive run.
type ArchiveResult struct {
	Processed int `json:"processed"`
	Archived  int `json:"archived"`
	Errors    int `json:"errors"`
}

// HistorySearchResult is one archived period matched by a search, with
// a few message snippets for context.
type HistorySearchResult struct {
	ID          string    `json:"id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Summary     string    `json:"summary"`
	Topics      []string  `json:"topics"`
	Snippets    []string  `json:"snippets"`
}

// ArchiveStats summarizes a user's archived history.
type ArchiveStats struct {
	TotalPeriods          int        `json:"total_periods"`
	TotalArchivedMessages int        `json:"total_archived_messages"`
	OldestArchive         *time.Time `json:"oldest_archive,omitempty"`
	NewestArchive         *time.Time `json:"newest_archive,omitempty"`
}

// ArchiveService compacts old messages into ConversationHistory rows.
type ArchiveService struct {
	db          *gorm.DB
	logger      *slog.Logger
	providers   ProviderSelector
	memory      *MemoryService
	emitter     *event.Emitter
	afterDays   int
	minMessages int

	now func() time.Time
}

// NewArchiveService creates the archiver. Messages older than afterDays
// are candidates; a period is only compacted once it holds at least
// minMessages of them.
func NewArchiveService(database *gorm.DB, providers ProviderSelector, memory *MemoryService, afterDays, minMessages int) *ArchiveService {
	return &ArchiveService{
		db:          database,
		logger:      utils.GetLogger(),
		providers:   providers,
		memory:      memory,
		emitter:     event.Global(),
		afterDays:   afterDays,
		minMessages: minMessages,
		now:         time.Now,
	}
}

// AutoMigrate migrates the history table.
func (s *ArchiveService) AutoMigrate() error {
	return s.db.AutoMigrate(&db.ConversationHistory{})
}

// Run archives every user with old enough messages. Per-user failures
// are counted but never abort the run.
func (s *ArchiveService) Run(ctx context.Context) *ArchiveResult {
	result := &ArchiveResult{}

	var userIDs []string
	err := s.db.WithContext(ctx).Model(&db.Conversation{}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		s.logger.Error("Archive run failed to list users", "error", err)
		result.Errors++
		return result
	}

	for _, userID := range userIDs {
		result.Processed++
		archived, err := s.ArchiveUser(ctx, userID)
		if err != nil {
			s.logger.Error("Archive failed for user", "userID", userID, "error", err)
			result.Errors++
			continue
		}
		if archived {
			result.Archived++
		}
	}

	s.logger.Info("Archive run completed",
		"processed", result.Processed, "archived", result.Archived, "errors", result.Errors)
	s.emitter.Emit(event.ArchiveRunCompletedEvent{
		Processed: result.Processed,
		Archived:  result.Archived,
		Errors:    result.Errors,
	})
	return result
}

// ArchiveUser compacts the old messages of the user's primary
// conversation into one history record. Returns false when there is
// nothing old enough to archive yet.
func (s *ArchiveService) ArchiveUser(ctx context.Context, userID string) (bool, error) {
	var conv db.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_primary = ?", userID, true).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	cutoff := s.now().AddDate(0, 0, -s.afterDays)
	var messages []db.Message
	err = s.db.WithContext(ctx).
		Where("conversation_id = ? AND archived = ? AND created_at < ?", conv.ID, false, cutoff).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return false, err
	}
	if len(messages) < s.minMessages {
		return false, nil
	}

	text := s.conversationText(messages)
	summary := s.summarize(ctx, text)
	topics, entities := s.extract(ctx, text)

	archived := make(db.MessageArray, len(messages))
	for i, m := range messages {
		archived[i] = db.ArchivedMessage{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt}
	}

	record := &db.ConversationHistory{
		ID:           uuid.New().String(),
		UserID:       userID,
		PeriodStart:  messages[0].CreatedAt,
		PeriodEnd:    messages[len(messages)-1].CreatedAt,
		Messages:     archived,
		MessageCount: len(messages),
		Summary:      summary,
		Topics:       topics,
		Entities:     entities,
		ArchivedAt:   s.now(),
	}

	ids := make([]string, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to save history record: %w", err)
		}
		err := tx.Model(&db.Message{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{"archived": true, "archived_at": s.now()}).Error
		if err != nil {
			return fmt.Errorf("failed to flag archived messages: %w", err)
		}
		return tx.Model(&db.Conversation{}).
			Where("id = ?", conv.ID).
			Update("last_archived_at", s.now()).Error
	})
	if err != nil {
		return false, err
	}

	s.promoteEntities(ctx, userID, entities)

	s.logger.Info("Archived conversation period",
		"userID", userID, "conversationID", conv.ID, "messages", len(messages))
	s.emitter.Emit(event.ConversationArchivedEvent{
		UserID:         userID,
		ConversationID: conv.ID,
		MessageCount:   len(messages),
	})
	return true, nil
}

// conversationText renders messages as plain dialogue for the model.
func (s *ArchiveService) conversationText(messages []db.Message) string {
	lines := make([]string, len(messages))
	for i, m := range messages {
		speaker := "Usuario"
		if m.Role == db.RoleAssistant {
			speaker = "Nexora"
		}
		lines[i] = speaker + ": " + m.Content
	}
	return strings.Join(lines, "\n\n")
}

// summarize asks the current provider for a period summary. Archival
// must work without AI, so every failure degrades to a placeholder.
func (s *ArchiveService) summarize(ctx context.Context, text string) string {
	p := s.providers.GetAvailableProvider()
	if p == nil {
		return summaryUnavailableNoProvider
	}
	resp, err := p.Chat(ctx, summarySystemPrompt, []provider.Message{{Role: db.RoleUser, Content: text}}, nil)
	if err != nil {
		s.logger.Warn("Summary generation failed", "provider", p.Name(), "error", err)
		return summaryUnavailableError
	}
	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return summaryUnavailableEmpty
	}
	return summary
}

// extract asks the provider for topics and entities. Returns empty
// values when no provider is available or the reply is not parseable.
func (s *ArchiveService) extract(ctx context.Context, text string) (db.StringArray, db.EntitySet) {
	p := s.providers.GetAvailableProvider()
	if p == nil {
		return nil, db.EntitySet{}
	}
	resp, err := p.Chat(ctx, extractionSystemPrompt, []provider.Message{{Role: db.RoleUser, Content: text}}, nil)
	if err != nil {
		s.logger.Warn("Entity extraction failed", "provider", p.Name(), "error", err)
		return nil, db.EntitySet{}
	}

	var parsed struct {
		Topics   []string     `json:"topics"`
		Entities db.EntitySet `json:"entities"`
	}
	raw := resp.Content
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		s.logger.Warn("Extraction reply contained no JSON")
		return nil, db.EntitySet{}
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		s.logger.Warn("Failed to parse extraction JSON", "error", err)
		return nil, db.EntitySet{}
	}
	return parsed.Topics, parsed.Entities
}

// promoteEntities writes extracted contacts, projects and decisions
// into the memory store. Individual failures are logged and skipped.
func (s *ArchiveService) promoteEntities(ctx context.Context, userID string, entities db.EntitySet) {
	promote := func(memType db.MemoryType, content string, importance int) {
		_, err := s.memory.CreateMemory(ctx, userID, db.CreateMemoryRequest{
			Type:       memType,
			Content:    content,
			Importance: importance,
			Metadata:   db.JSONMap{"source": db.MemorySourceConversation},
		})
		if err != nil {
			s.logger.Warn("Failed to promote entity to memory",
				"userID", userID, "type", memType, "error", err)
		}
	}

	for _, c := range entities.Contacts {
		if c = strings.TrimSpace(c); c != "" {
			promote(db.MemoryTypeContact, c, 7)
		}
	}
	for _, p := range entities.Projects {
		if p = strings.TrimSpace(p); p != "" {
			promote(db.MemoryTypeProject, p, 8)
		}
	}
	for _, d := range entities.Decisions {
		if d = strings.TrimSpace(d); d != "" {
			promote(db.MemoryTypeDecision, "Decisión: "+d, 6)
		}
	}
}

// SearchHistory finds archived periods matching a query, optionally
// bounded by dates. The query matches summaries, topics and the
// archived message bodies.
func (s *ArchiveService) SearchHistory(ctx context.Context, userID, query string, dateFrom, dateTo *time.Time, limit int) ([]HistorySearchResult, error) {
	if limit <= 0 {
		limit = defaultHistorySearchLimit
	}

	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period_end DESC").
		Limit(limit)

	trimmed := strings.TrimSpace(query)
	if trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		q = q.Where("LOWER(summary) LIKE ? OR LOWER(topics) LIKE ? OR LOWER(messages) LIKE ?",
			pattern, pattern, pattern)
	}
	if dateFrom != nil {
		q = q.Where("period_end >= ?", *dateFrom)
	}
	if dateTo != nil {
		q = q.Where("period_start <= ?", *dateTo)
	}

	var records []db.ConversationHistory
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	results := make([]HistorySearchResult, len(records))
	for i, r := range records {
		results[i] = HistorySearchResult{
			ID:          r.ID,
			PeriodStart: r.PeriodStart,
			PeriodEnd:   r.PeriodEnd,
			Summary:     r.Summary,
			Topics:      r.Topics,
			Snippets:    matchSnippets(r.Messages, trimmed),
		}
	}
	return results, nil
}

// matchSnippets returns up to a few formatted message excerpts that
// contain the query. With an empty query the first messages are used.
func matchSnippets(messages db.MessageArray, query string) []string {
	lowered := strings.ToLower(query)
	var snippets []string
	for _, m := range messages {
		if len(snippets) >= historySnippetsPerPeriod {
			break
		}
		if lowered != "" && !strings.Contains(strings.ToLower(m.Content), lowered) {
			continue
		}
		content := m.Content
		if runes := []rune(content); len(runes) > historySnippetMax {
			content = string(runes[:historySnippetMax]) + "..."
		}
		snippets = append(snippets, "["+m.Role+"] "+content)
	}
	return snippets
}

// GetArchiveStats reports how much of the user's history is archived.
func (s *ArchiveService) GetArchiveStats(ctx context.Context, userID string) (*ArchiveStats, error) {
	var records []db.ConversationHistory
	err := s.db.WithContext(ctx).
		Select("id", "message_count", "archived_at").
		Where("user_id = ?", userID).
		Order("archived_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	stats := &ArchiveStats{TotalPeriods: len(records)}
	for _, r := range records {
		stats.TotalArchivedMessages += r.MessageCount
	}
	if len(records) > 0 {
		oldest := records[0].ArchivedAt
		newest := records[len(records)-1].ArchivedAt
		stats.OldestArchive = &oldest
		stats.NewestArchive = &newest
	}
	return stats, nil
}
