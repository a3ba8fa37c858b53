// Memory service: persistent user facts with keyword search, relevance
// ranking and an optional vector index for semantic recall.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/event"
	"github.com/nexora/nexora/pkg/utils"
)

var ErrMemoryNotFound = errors.New("memory not found")

const (
	defaultMemoryImportance = 5
	defaultSearchLimit      = 10
	defaultRelevantLimit    = 10
	highImportanceThreshold = 8
	relevantSliceSize       = 5
)

// MemoryStats summarizes a user's stored memories.
type MemoryStats struct {
	Total         int64            `json:"total"`
	ByType        map[string]int64 `json:"by_type"`
	AvgImportance float64          `json:"avg_importance"`
}

// MemoryService manages long-term user memories.
type MemoryService struct {
	db      *gorm.DB
	logger  *slog.Logger
	emitter *event.Emitter

	semantic *SemanticIndex
}

// NewMemoryService creates a memory service.
func NewMemoryService(database *gorm.DB) *MemoryService {
	return &MemoryService{
		db:      database,
		logger:  utils.GetLogger(),
		emitter: event.Global(),
	}
}

// AutoMigrate migrates memory tables.
func (s *MemoryService) AutoMigrate() error {
	return s.db.AutoMigrate(&db.UserMemory{})
}

// EnableSemanticSearch attaches a vector index used as an extra recall
// source. Safe to skip; keyword search keeps working without it.
func (s *MemoryService) EnableSemanticSearch(idx *SemanticIndex) {
	s.semantic = idx
}

// CreateMemory stores a memory. Storing the exact same content for the
// same user and type again does not duplicate it; the existing row's
// access stats are bumped instead.
func (s *MemoryService) CreateMemory(ctx context.Context, userID string, req db.CreateMemoryRequest) (*db.UserMemory, error) {
	if !db.IsValidMemoryType(req.Type) {
		return nil, fmt.Errorf("invalid memory type: %s", req.Type)
	}

	var existing db.UserMemory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND content = ? AND is_active = ?", userID, req.Type, req.Content, true).
		First(&existing).Error
	if err == nil {
		now := time.Now()
		updates := map[string]any{
			"access_count":  gorm.Expr("access_count + 1"),
			"last_accessed": now,
		}
		if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.AccessCount++
		existing.LastAccessed = &now
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	importance := req.Importance
	if importance <= 0 {
		importance = defaultMemoryImportance
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = db.JSONMap{}
	}
	if _, ok := metadata["source"]; !ok {
		metadata["source"] = db.MemorySourceExplicit
	}

	memory := &db.UserMemory{
		ID:         uuid.New().String(),
		UserID:     userID,
		Type:       req.Type,
		Content:    req.Content,
		Metadata:   metadata,
		Importance: importance,
		IsActive:   true,
	}
	if err := s.db.WithContext(ctx).Create(memory).Error; err != nil {
		return nil, err
	}

	if s.semantic != nil {
		s.semantic.Add(ctx, memory)
	}

	s.logger.Debug("Memory created", "userID", userID, "type", req.Type, "importance", importance)
	s.emitter.Emit(event.MemoryCreatedEvent{UserID: userID, MemoryID: memory.ID})
	return memory, nil
}

// SearchMemories finds active memories whose content contains the query,
// most important first. Hits get their access stats bumped.
func (s *MemoryService) SearchMemories(ctx context.Context, userID, query, memType string, limit int) ([]db.UserMemory, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	q := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true)
	if query != "" {
		q = q.Where("LOWER(content) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	if memType != "" {
		q = q.Where("type = ?", memType)
	}

	var memories []db.UserMemory
	err := q.Order("importance DESC").
		Order("last_accessed DESC").
		Limit(limit).
		Find(&memories).Error
	if err != nil {
		return nil, err
	}

	s.bumpAccess(ctx, memories)
	return memories, nil
}

// GetRelevantMemories collects the memories worth injecting into the
// system prompt: the most important ones, the recently used ones, and
// anything matching the conversation context, deduplicated and capped.
func (s *MemoryService) GetRelevantMemories(ctx context.Context, userID, contextText string, max int) ([]db.UserMemory, error) {
	if max <= 0 {
		max = defaultRelevantLimit
	}

	var important []db.UserMemory
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND importance >= ?", userID, true, highImportanceThreshold).
		Order("importance DESC").
		Limit(relevantSliceSize).
		Find(&important).Error; err != nil {
		return nil, err
	}

	var recent []db.UserMemory
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND last_accessed IS NOT NULL", userID, true).
		Order("last_accessed DESC").
		Limit(relevantSliceSize).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	var contextual []db.UserMemory
	if contextText != "" {
		var err error
		contextual, err = s.searchWithoutBump(ctx, userID, contextText, relevantSliceSize)
		if err != nil {
			return nil, err
		}
		if s.semantic != nil {
			if hits, err := s.semantic.Query(ctx, userID, contextText, relevantSliceSize); err == nil {
				contextual = append(contextual, hits...)
			} else {
				s.logger.Debug("Semantic recall failed", "error", err)
			}
		}
	}

	seen := make(map[string]bool)
	merged := make([]db.UserMemory, 0, max)
	for _, group := range [][]db.UserMemory{important, recent, contextual} {
		for _, m := range group {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			merged = append(merged, m)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Importance > merged[j].Importance
	})
	if len(merged) > max {
		merged = merged[:max]
	}
	return merged, nil
}

// searchWithoutBump is keyword search without access tracking, used for
// relevance gathering where reads should not distort the stats.
func (s *MemoryService) searchWithoutBump(ctx context.Context, userID, query string, limit int) ([]db.UserMemory, error) {
	var memories []db.UserMemory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("LOWER(content) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("importance DESC").
		Limit(limit).
		Find(&memories).Error
	return memories, err
}

// GetMemory fetches one memory by ID and bumps its access stats.
func (s *MemoryService) GetMemory(ctx context.Context, userID, id string) (*db.UserMemory, error) {
	var memory db.UserMemory
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&memory).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemoryNotFound
	}
	if err != nil {
		return nil, err
	}
	s.bumpAccess(ctx, []db.UserMemory{memory})
	return &memory, nil
}

// DeleteMemory soft-deletes a memory.
func (s *MemoryService) DeleteMemory(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).
		Model(&db.UserMemory{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemoryNotFound
	}
	if s.semantic != nil {
		s.semantic.Remove(ctx, userID, id)
	}
	s.emitter.Emit(event.MemoryDeletedEvent{UserID: userID, MemoryID: id})
	return nil
}

// DeleteMemoryByContent soft-deletes the best content match. Returns
// false when nothing matched.
func (s *MemoryService) DeleteMemoryByContent(ctx context.Context, userID, content string) (bool, error) {
	hits, err := s.searchWithoutBump(ctx, userID, content, 5)
	if err != nil {
		return false, err
	}
	if len(hits) == 0 {
		return false, nil
	}
	if err := s.DeleteMemory(ctx, userID, hits[0].ID); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteAllMemories hard-deletes every memory of a user.
func (s *MemoryService) DeleteAllMemories(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&db.UserMemory{}).Error
}

// ExportMemories returns every memory including inactive ones, newest
// first.
func (s *MemoryService) ExportMemories(ctx context.Context, userID string) ([]db.UserMemory, error) {
	var memories []db.UserMemory
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memories).Error
	return memories, err
}

// GetMemoryStats summarizes a user's active memories.
func (s *MemoryService) GetMemoryStats(ctx context.Context, userID string) (*MemoryStats, error) {
	stats := &MemoryStats{ByType: make(map[string]int64)}

	if err := s.db.WithContext(ctx).
		Model(&db.UserMemory{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type typeCount struct {
		Type  string
		Count int64
	}
	var counts []typeCount
	if err := s.db.WithContext(ctx).
		Model(&db.UserMemory{}).
		Select("type, COUNT(*) as count").
		Where("user_id = ? AND is_active = ?", userID, true).
		Group("type").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.ByType[c.Type] = c.Count
	}

	var avg *float64
	if err := s.db.WithContext(ctx).
		Model(&db.UserMemory{}).
		Select("AVG(importance)").
		Where("user_id = ? AND is_active = ?", userID, true).
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AvgImportance = *avg
	}
	return stats, nil
}

// FindContact looks up a contact memory by name, email or company.
func (s *MemoryService) FindContact(ctx context.Context, userID, name string) (*db.UserMemory, error) {
	pattern := "%" + strings.ToLower(name) + "%"
	var memory db.UserMemory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_active = ?", userID, db.MemoryTypeContact, true).
		Where("LOWER(content) LIKE ? OR LOWER(metadata) LIKE ?", pattern, pattern).
		Order("importance DESC").
		First(&memory).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemoryNotFound
	}
	if err != nil {
		return nil, err
	}
	s.bumpAccess(ctx, []db.UserMemory{memory})
	return &memory, nil
}

// GetPreferences returns preference memories, optionally filtered by
// metadata category.
func (s *MemoryService) GetPreferences(ctx context.Context, userID, category string) ([]db.UserMemory, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_active = ?", userID, db.MemoryTypePreference, true)
	if category != "" {
		q = q.Where("LOWER(metadata) LIKE ?", "%"+strings.ToLower(category)+"%")
	}
	var memories []db.UserMemory
	err := q.Order("importance DESC").Find(&memories).Error
	return memories, err
}

// bumpAccess increments access counters for the given memories.
func (s *MemoryService) bumpAccess(ctx context.Context, memories []db.UserMemory) {
	if len(memories) == 0 {
		return
	}
	ids := make([]string, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}
	err := s.db.WithContext(ctx).
		Model(&db.UserMemory{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"access_count":  gorm.Expr("access_count + 1"),
			"last_accessed": time.Now(),
		}).Error
	if err != nil {
		s.logger.Warn("Failed to bump memory access stats", "error", err)
	}
}
