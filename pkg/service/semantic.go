package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
	chromem "github.com/philippgille/chromem-go"

	"github.com/nexora/nexora/pkg/config"
	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/utils"
	"gorm.io/gorm"
)

// SemanticIndex is a per-user vector index over memory contents,
// backed by chromem-go. It is an optional recall source: queries fall
// back to keyword search when no embedding backend is configured.
type SemanticIndex struct {
	vectorDB    *chromem.DB
	embedFunc   chromem.EmbeddingFunc
	collections sync.Map // userID -> *chromem.Collection
	store       *gorm.DB
	logger      *slog.Logger
}

// NewSemanticIndex builds the vector index. Returns nil without error
// when no embedding API key is configured.
func NewSemanticIndex(ctx context.Context, cfg *config.AppConfig, store *gorm.DB) (*SemanticIndex, error) {
	apiKey := cfg.EmbeddingAPIKey()
	if apiKey == "" {
		return nil, nil
	}

	embedder, err := openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		APIKey: apiKey,
		Model:  cfg.EmbeddingModel(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	path := filepath.Join(filepath.Dir(cfg.DatabasePath()), "vectors")
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector store directory: %w", err)
	}
	vectorDB, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector DB: %w", err)
	}

	idx := &SemanticIndex{
		vectorDB:  vectorDB,
		embedFunc: embeddingFunc(embedder),
		store:     store,
		logger:    utils.GetLogger(),
	}
	idx.logger.Info("Semantic memory index enabled", "path", path, "model", cfg.EmbeddingModel())
	return idx, nil
}

// embeddingFunc wraps an eino Embedder as a chromem.EmbeddingFunc.
func embeddingFunc(embedder embedding.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		embeddings, err := embedder.EmbedStrings(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(embeddings) == 0 {
			return nil, fmt.Errorf("no embedding returned")
		}
		out := make([]float32, len(embeddings[0]))
		for i, v := range embeddings[0] {
			out[i] = float32(v)
		}
		return out, nil
	}
}

func (idx *SemanticIndex) collection(userID string) (*chromem.Collection, error) {
	name := "mem_" + userID
	if col, ok := idx.collections.Load(name); ok {
		return col.(*chromem.Collection), nil
	}

	col := idx.vectorDB.GetCollection(name, idx.embedFunc)
	if col != nil {
		idx.collections.Store(name, col)
		return col, nil
	}

	col, err := idx.vectorDB.CreateCollection(name, nil, idx.embedFunc)
	if err != nil {
		return nil, err
	}
	idx.collections.Store(name, col)
	return col, nil
}

// Add indexes one memory. Failures are logged, never fatal.
func (idx *SemanticIndex) Add(ctx context.Context, memory *db.UserMemory) {
	col, err := idx.collection(memory.UserID)
	if err != nil {
		idx.logger.Warn("Failed to get vector collection", "error", err)
		return
	}
	err = col.AddDocument(ctx, chromem.Document{
		ID:      memory.ID,
		Content: memory.Content,
		Metadata: map[string]string{
			"type": string(memory.Type),
		},
	})
	if err != nil {
		idx.logger.Warn("Failed to index memory", "memoryID", memory.ID, "error", err)
	}
}

// Remove drops one memory from the index.
func (idx *SemanticIndex) Remove(ctx context.Context, userID, memoryID string) {
	col, err := idx.collection(userID)
	if err != nil {
		return
	}
	if err := col.Delete(ctx, nil, nil, memoryID); err != nil {
		idx.logger.Warn("Failed to remove memory from index", "memoryID", memoryID, "error", err)
	}
}

// Query returns the memories semantically closest to the query text.
func (idx *SemanticIndex) Query(ctx context.Context, userID, query string, limit int) ([]db.UserMemory, error) {
	col, err := idx.collection(userID)
	if err != nil {
		return nil, err
	}
	if col.Count() == 0 {
		return nil, nil
	}
	if n := col.Count(); limit > n {
		limit = n
	}

	results, err := col.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	var memories []db.UserMemory
	if err := idx.store.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&memories).Error; err != nil {
		return nil, err
	}
	return memories, nil
}
