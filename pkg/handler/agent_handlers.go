// Chat and conversation API handlers
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/provider"
	"github.com/nexora/nexora/pkg/service"
	"github.com/nexora/nexora/pkg/tools"
)

// DefaultUserID is used when no X-User-ID header is sent. The backend
// is single-tenant by default; the header exists for multi-user setups.
const DefaultUserID = "default"

// userID resolves the acting user for a request.
func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return DefaultUserID
}

// AgentHandler handles chat requests
type AgentHandler struct {
	agentService *service.AgentService
	registry     *provider.Registry
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agentService *service.AgentService, registry *provider.Registry) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		registry:     registry,
	}
}

// RegisterRoutes registers chat routes under /api/agent
func (h *AgentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
	r.GET("/providers/status", h.ProviderStatus)
	r.GET("/tools", h.ListTools)
	r.GET("/tools/:id", h.GetTool)

	conversations := r.Group("/conversations")
	{
		conversations.GET("", h.ListConversations)
		conversations.GET("/:id", h.GetConversation)
		conversations.DELETE("/:id", h.DeleteConversation)
	}
}

// Chat runs one conversation turn
// POST /api/agent/chat
func (h *AgentHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len([]rune(req.Message)) > models.MaxChatMessageLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message too long"})
		return
	}

	resp, err := h.agentService.Chat(c.Request.Context(), userID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListConversations lists the user's conversations
// GET /api/agent/conversations
func (h *AgentHandler) ListConversations(c *gin.Context) {
	convs, err := h.agentService.ListConversations(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// GetConversation returns one conversation with its messages
// GET /api/agent/conversations/:id
func (h *AgentHandler) GetConversation(c *gin.Context) {
	conv, err := h.agentService.GetConversation(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, service.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// DeleteConversation removes a conversation and its messages
// DELETE /api/agent/conversations/:id
func (h *AgentHandler) DeleteConversation(c *gin.Context) {
	err := h.agentService.DeleteConversation(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, service.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ProviderStatus reports which AI backends are configured
// GET /api/agent/providers/status
func (h *AgentHandler) ProviderStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.registry.Status()})
}

// ListTools returns the tool catalog, optionally filtered by category
// GET /api/agent/tools?category=calendar
func (h *AgentHandler) ListTools(c *gin.Context) {
	var defs []tools.ToolDefinition
	if category := c.Query("category"); category != "" {
		defs = tools.ListToolsByCategory(tools.ToolCategory(category))
	} else {
		defs = tools.ListToolDefinitions()
	}
	c.JSON(http.StatusOK, gin.H{"tools": defs, "count": len(defs)})
}

// GetTool returns one tool definition
// GET /api/agent/tools/:id
func (h *AgentHandler) GetTool(c *gin.Context) {
	id := tools.ToolID(c.Param("id"))
	if !tools.IsRegistered(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
		return
	}
	def, _ := tools.GetToolDefinition(id)
	c.JSON(http.StatusOK, def)
}
