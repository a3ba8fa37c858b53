// Archived conversation history API handlers
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexora/nexora/pkg/service"
)

// HistoryHandler exposes archived conversation history
type HistoryHandler struct {
	archiveService *service.ArchiveService
	archiveJob     *service.ArchiveJob
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(archiveService *service.ArchiveService, archiveJob *service.ArchiveJob) *HistoryHandler {
	return &HistoryHandler{
		archiveService: archiveService,
		archiveJob:     archiveJob,
	}
}

// RegisterRoutes registers history routes under /api/history
func (h *HistoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/search", h.SearchHistory)
	r.GET("/stats", h.GetStats)
	r.POST("/archive/run", h.RunArchive)
}

// SearchHistory searches archived periods
// GET /api/history/search?q=...&from=2026-01-01&to=2026-02-01&limit=5
func (h *HistoryHandler) SearchHistory(c *gin.Context) {
	var dateFrom, dateTo *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		dateFrom = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		dateTo = &parsed
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	results, err := h.archiveService.SearchHistory(
		c.Request.Context(), userID(c), c.Query("q"), dateFrom, dateTo, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// GetStats reports archive totals for the user
// GET /api/history/stats
func (h *HistoryHandler) GetStats(c *gin.Context) {
	stats, err := h.archiveService.GetArchiveStats(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RunArchive triggers an archive run immediately
// POST /api/history/archive/run
func (h *HistoryHandler) RunArchive(c *gin.Context) {
	result := h.archiveJob.RunNow(c.Request.Context())
	if result == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "archive run already in progress"})
		return
	}
	c.JSON(http.StatusOK, result)
}
