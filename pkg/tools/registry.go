// Package tools provides the declarative tool catalog the assistant
// exposes to AI models. Tool packages register themselves at init time;
// the dispatcher instantiates them against a per-request context.
package tools

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwego/eino/components/tool"
)

// ToolID identifies a registered tool
type ToolID string

// ToolCategory represents the category of a tool
type ToolCategory string

// Tool categories
const (
	CategoryTasks    ToolCategory = "tasks"
	CategoryCalendar ToolCategory = "calendar"
	CategoryEmail    ToolCategory = "email"
	CategoryContacts ToolCategory = "contacts"
	CategoryDrive    ToolCategory = "drive"
	CategoryMemory   ToolCategory = "memory"
)

// ToolDefinition describes a registered tool
type ToolDefinition struct {
	ID          ToolID       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    ToolCategory `json:"category"`
	Dangerous   bool         `json:"dangerous"` // modifies external state
	Confirm     bool         `json:"confirm"`   // requires preview-then-confirm
}

// ToolFactory is a function that creates a tool instance
type ToolFactory func(tc *ToolContext) tool.InvokableTool

// Registry manages registered tools
type Registry struct {
	definitions map[ToolID]ToolDefinition
	factories   map[ToolID]ToolFactory
	mu          sync.RWMutex
}

// Global registry instance
var globalRegistry = &Registry{
	definitions: make(map[ToolID]ToolDefinition),
	factories:   make(map[ToolID]ToolFactory),
}

// Register registers a tool with its definition and factory
func Register(def ToolDefinition, factory ToolFactory) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.definitions[def.ID] = def
	globalRegistry.factories[def.ID] = factory
}

// GetTool returns an invokable tool by ID
func GetTool(id ToolID, tc *ToolContext) (tool.InvokableTool, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	factory, exists := globalRegistry.factories[id]
	if !exists {
		return nil, fmt.Errorf("unknown tool: %s", id)
	}
	return factory(tc), nil
}

// GetToolDefinition returns a tool definition by ID
func GetToolDefinition(id ToolID) (ToolDefinition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	def, ok := globalRegistry.definitions[id]
	return def, ok
}

// ListToolDefinitions returns all tool definitions sorted by category and name
func ListToolDefinitions() []ToolDefinition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	result := make([]ToolDefinition, 0, len(globalRegistry.definitions))
	for _, def := range globalRegistry.definitions {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// ListToolsByCategory returns tool definitions filtered by category
func ListToolsByCategory(category ToolCategory) []ToolDefinition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	var result []ToolDefinition
	for _, def := range globalRegistry.definitions {
		if def.Category == category {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// IsRegistered checks if a tool ID is registered
func IsRegistered(id ToolID) bool {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	_, exists := globalRegistry.definitions[id]
	return exists
}
