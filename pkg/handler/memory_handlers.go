// Memory API handlers
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/service"
)

// MemoryHandler handles memory-related API requests
type MemoryHandler struct {
	memoryService *service.MemoryService
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(memoryService *service.MemoryService) *MemoryHandler {
	return &MemoryHandler{
		memoryService: memoryService,
	}
}

// RegisterRoutes registers memory routes under /api/memory
func (h *MemoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.SearchMemories)
	r.GET("/search", h.SearchMemories)
	r.POST("", h.CreateMemory)
	r.GET("/stats", h.GetStats)
	r.GET("/export", h.ExportMemories)
	r.DELETE("", h.DeleteAllMemories)
	r.GET("/:id", h.GetMemory)
	r.DELETE("/:id", h.DeleteMemory)
}

// SearchMemories lists or searches the user's memories
// GET /api/memory?q=...&type=...&limit=...
func (h *MemoryHandler) SearchMemories(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	memories, err := h.memoryService.SearchMemories(
		c.Request.Context(), userID(c), c.Query("q"), c.Query("type"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories, "count": len(memories)})
}

// CreateMemory stores a new memory
// POST /api/memory
func (h *MemoryHandler) CreateMemory(c *gin.Context) {
	var req db.CreateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memory, err := h.memoryService.CreateMemory(c.Request.Context(), userID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, memory)
}

// GetMemory returns a single memory
// GET /api/memory/:id
func (h *MemoryHandler) GetMemory(c *gin.Context) {
	memory, err := h.memoryService.GetMemory(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, service.ErrMemoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "memory not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, memory)
}

// DeleteMemory deactivates a memory
// DELETE /api/memory/:id
func (h *MemoryHandler) DeleteMemory(c *gin.Context) {
	err := h.memoryService.DeleteMemory(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, service.ErrMemoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "memory not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// DeleteAllMemories permanently removes every memory of the user
// DELETE /api/memory
func (h *MemoryHandler) DeleteAllMemories(c *gin.Context) {
	if err := h.memoryService.DeleteAllMemories(c.Request.Context(), userID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ExportMemories returns every memory, including inactive ones
// GET /api/memory/export
func (h *MemoryHandler) ExportMemories(c *gin.Context) {
	memories, err := h.memoryService.ExportMemories(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories, "count": len(memories)})
}

// GetStats reports memory counts by type
// GET /api/memory/stats
func (h *MemoryHandler) GetStats(c *gin.Context) {
	stats, err := h.memoryService.GetMemoryStats(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
