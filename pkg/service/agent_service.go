// Agent service: the conversation orchestrator. It owns conversations
// and messages, builds the model context, runs the tool loop and
// guarantees a reply even when every AI backend is down.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/event"
	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/provider"
	"github.com/nexora/nexora/pkg/tools"
	"github.com/nexora/nexora/pkg/utils"
)

var ErrConversationNotFound = errors.New("conversation not found")

const (
	// how many recent messages feed the model
	historyWindow = 20
	// maximum tool call batches per turn
	maxToolBatches = 5
	// retries when the model returns an empty reply
	emptyReplyRetries = 2

	degradedReply = "Lo siento, no pude generar una respuesta en este momento. ¿Puedes intentarlo de nuevo?"
)

// ProviderSelector picks the AI backend for a chat turn.
type ProviderSelector interface {
	GetAvailableProvider() provider.Provider
}

// AgentService orchestrates chat turns.
type AgentService struct {
	db        *gorm.DB
	logger    *slog.Logger
	providers ProviderSelector
	memory    *MemoryService
	domain    models.Domain
	fallback  *FallbackResponder
	emitter   *event.Emitter

	convMu sync.Map // userID -> *sync.Mutex

	// test hooks
	retryDelay time.Duration
	now        func() time.Time
}

// NewAgentService creates the orchestrator.
func NewAgentService(database *gorm.DB, providers ProviderSelector, memory *MemoryService, domain models.Domain) *AgentService {
	return &AgentService{
		db:         database,
		logger:     utils.GetLogger(),
		providers:  providers,
		memory:     memory,
		domain:     domain,
		fallback:   NewFallbackResponder(domain.Tasks),
		emitter:    event.Global(),
		retryDelay: 500 * time.Millisecond,
		now:        time.Now,
	}
}

// AutoMigrate migrates conversation tables.
func (s *AgentService) AutoMigrate() error {
	return s.db.AutoMigrate(&db.Conversation{}, &db.Message{})
}

// Chat runs one conversation turn. The user message is persisted before
// anything can fail; the reply is persisted before returning.
func (s *AgentService) Chat(ctx context.Context, userID string, req models.ChatRequest) (*models.AgentResponse, error) {
	conv, err := s.resolveConversation(ctx, userID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	userMsg := &db.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           db.RoleUser,
		Content:        req.Message,
	}
	if err := s.db.WithContext(ctx).Create(userMsg).Error; err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}
	s.ensureTitle(ctx, conv, req.Message)

	response := s.safeGenerate(ctx, userID, conv, req.Message)

	assistantMsg := &db.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           db.RoleAssistant,
		Content:        response.Message,
	}
	if err := s.db.WithContext(ctx).Create(assistantMsg).Error; err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}
	s.db.WithContext(ctx).Model(&db.Conversation{}).
		Where("id = ?", conv.ID).
		Update("updated_at", s.now())

	response.ConversationID = conv.ID
	if len(response.Suggestions) > 3 {
		response.Suggestions = response.Suggestions[:3]
	}

	s.emitter.Emit(event.ChatCompletedEvent{UserID: userID, ConversationID: conv.ID})
	return response, nil
}

// safeGenerate produces the assistant reply. Any failure, including a
// panic in a tool or provider, degrades to the rule-based fallback.
func (s *AgentService) safeGenerate(ctx context.Context, userID string, conv *db.Conversation, userMessage string) (response *models.AgentResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Chat turn panicked", "conversationID", conv.ID, "panic", r)
			response = s.fallback.Respond(ctx, userID, userMessage)
		}
	}()

	p := s.providers.GetAvailableProvider()
	if p == nil {
		s.logger.Info("No AI provider available, using fallback", "userID", userID)
		return s.fallback.Respond(ctx, userID, userMessage)
	}

	reply, err := s.runModel(ctx, p, userID, conv, userMessage)
	if err != nil {
		s.logger.Warn("AI generation failed, using fallback", "provider", p.Name(), "error", err)
		return s.fallback.Respond(ctx, userID, userMessage)
	}

	return &models.AgentResponse{
		Message:     reply,
		Suggestions: suggestFollowups(reply),
	}
}

// runModel drives the provider through the tool loop until it produces
// a final text reply.
func (s *AgentService) runModel(ctx context.Context, p provider.Provider, userID string, conv *db.Conversation, userMessage string) (string, error) {
	history, err := s.recentHistory(ctx, conv.ID)
	if err != nil {
		return "", err
	}
	system := s.buildSystemPrompt(ctx, userID, userMessage)

	tc := tools.NewToolContext(userID, s.domain, s.memory)
	dispatcher := tools.NewDispatcher(ctx, tc)
	infos := dispatcher.Infos()

	resp, err := p.Chat(ctx, system, history, infos)
	if err != nil {
		return "", err
	}

	for batch := 0; resp.StopReason == provider.StopToolUse && batch < maxToolBatches; batch++ {
		calls := resp.ToolCalls
		results := make([]provider.ToolResult, 0, len(calls))
		for _, call := range calls {
			s.logger.Debug("Executing tool call", "tool", call.Name, "conversationID", conv.ID)
			out := dispatcher.Execute(ctx, call.Name, call.Arguments)
			results = append(results, provider.ToolResult{
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    out,
			})
		}
		resp, err = p.ContinueWithToolResults(ctx, system, history, calls, results, infos)
		if err != nil {
			return "", err
		}
	}
	if resp.StopReason == provider.StopToolUse {
		s.logger.Warn("Tool loop limit reached", "conversationID", conv.ID)
	}

	reply := strings.TrimSpace(resp.Content)
	for attempt := 0; reply == "" && attempt < emptyReplyRetries; attempt++ {
		s.logger.Debug("Empty model reply, retrying", "attempt", attempt+1)
		time.Sleep(s.retryDelay)
		resp, err = p.Chat(ctx, system, history, nil)
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(resp.Content)
	}
	if reply == "" {
		reply = degradedReply
	}
	return reply, nil
}

// buildSystemPrompt assembles the assistant persona, the current date
// and what is known about the user, grouped by memory type.
func (s *AgentService) buildSystemPrompt(ctx context.Context, userID, contextText string) string {
	var sb strings.Builder
	sb.WriteString("Eres Nexora, un asistente personal proactivo. Respondes siempre en español, de forma breve y útil. ")
	sb.WriteString("Usa las herramientas disponibles cuando el usuario pida datos reales (tareas, agenda, correo, contactos, archivos) en lugar de inventarlos. ")
	sb.WriteString("Para acciones irreversibles como enviar correos o borrar eventos, muestra primero la vista previa y espera la confirmación del usuario.")

	sb.WriteString("\n\nFecha y hora actual: ")
	sb.WriteString(s.now().Format("Monday, 2 January 2006, 15:04"))

	memories, err := s.memory.GetRelevantMemories(ctx, userID, contextText, defaultRelevantLimit)
	if err != nil {
		s.logger.Warn("Failed to load memories for prompt", "error", err)
		return sb.String()
	}
	if len(memories) == 0 {
		return sb.String()
	}

	grouped := make(map[db.MemoryType][]string)
	for _, m := range memories {
		grouped[m.Type] = append(grouped[m.Type], m.Content)
	}
	types := make([]string, 0, len(grouped))
	for t := range grouped {
		types = append(types, string(t))
	}
	sort.Strings(types)

	sb.WriteString("\n\nLo que sabes del usuario:")
	for _, t := range types {
		sb.WriteString("\n[" + t + "]")
		for _, content := range grouped[db.MemoryType(t)] {
			sb.WriteString("\n- " + content)
		}
	}
	return sb.String()
}

// recentHistory loads the last messages of the conversation in
// chronological order, skipping archived ones.
func (s *AgentService) recentHistory(ctx context.Context, conversationID string) ([]provider.Message, error) {
	var messages []db.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND archived = ?", conversationID, false).
		Order("created_at DESC").
		Limit(historyWindow).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	history := make([]provider.Message, len(messages))
	for i, m := range messages {
		history[len(messages)-1-i] = provider.Message{Role: m.Role, Content: m.Content}
	}
	return history, nil
}

// resolveConversation loads the requested conversation or falls back to
// the user's primary one, creating it on first contact. A supplied id
// that doesn't resolve for this user routes to the primary path too.
func (s *AgentService) resolveConversation(ctx context.Context, userID, conversationID string) (*db.Conversation, error) {
	if conversationID != "" {
		var conv db.Conversation
		err := s.db.WithContext(ctx).
			Where("id = ? AND user_id = ?", conversationID, userID).
			First(&conv).Error
		if err == nil {
			return &conv, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// Serialize primary conversation creation per user.
	muIface, _ := s.convMu.LoadOrStore(userID, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	var conv db.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_primary = ?", userID, true).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = db.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		IsPrimary: true,
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// ensureTitle sets the conversation title from the first message.
func (s *AgentService) ensureTitle(ctx context.Context, conv *db.Conversation, message string) {
	if conv.Title != "" {
		return
	}
	title := strings.TrimSpace(message)
	runes := []rune(title)
	if len(runes) > db.ConversationTitleMaxLen {
		title = string(runes[:db.ConversationTitleMaxLen])
	}
	if title == "" {
		return
	}
	if err := s.db.WithContext(ctx).Model(conv).Update("title", title).Error; err != nil {
		s.logger.Warn("Failed to set conversation title", "error", err)
		return
	}
	conv.Title = title
}

// ListConversations returns the user's conversations, most recently
// active first.
func (s *AgentService) ListConversations(ctx context.Context, userID string) ([]db.Conversation, error) {
	var convs []db.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(20).
		Find(&convs).Error
	return convs, err
}

// GetConversation returns one conversation with its live messages.
func (s *AgentService) GetConversation(ctx context.Context, userID, id string) (*db.Conversation, error) {
	var conv db.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Where("conversation_id = ? AND archived = ?", id, false).
		Order("created_at ASC").
		Find(&conv.Messages).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// DeleteConversation removes a conversation and all its messages.
func (s *AgentService) DeleteConversation(ctx context.Context, userID, id string) error {
	var conv db.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrConversationNotFound
	}
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&db.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conv).Error
	})
	if err != nil {
		return err
	}

	s.emitter.Emit(event.ConversationDeletedEvent{UserID: userID, ConversationID: id})
	return nil
}
