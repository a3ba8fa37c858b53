// Memory tools let the AI store and retrieve long-term facts about the
// user.
package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/tools"
)

// Tool IDs
const (
	ToolIDRemember tools.ToolID = "remember"
	ToolIDRecall   tools.ToolID = "recall"
	ToolIDForget   tools.ToolID = "forget"
)

var memoryTypeEnum = func() []string {
	out := make([]string, len(db.MemoryTypes))
	for i, t := range db.MemoryTypes {
		out[i] = string(t)
	}
	return out
}()

func init() {
	tools.Register(tools.ToolDefinition{
		ID:          ToolIDRemember,
		Name:        "remember",
		Description: "Store important information about the user in long-term memory.",
		Category:    tools.CategoryMemory,
	}, newRememberTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDRecall,
		Name:        "recall",
		Description: "Recall stored information about the user.",
		Category:    tools.CategoryMemory,
	}, newRecallTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDForget,
		Name:        "forget",
		Description: "Remove a stored memory.",
		Category:    tools.CategoryMemory,
		Dangerous:   true,
	}, newForgetTool)
}

type RememberInput struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	Importance int    `json:"importance,omitempty"`
}

type RememberOutput struct {
	Success  bool   `json:"success"`
	MemoryID string `json:"memory_id,omitempty"`
	Message  string `json:"message"`
}

func newRememberTool(tc *tools.ToolContext) tool.InvokableTool {
	store := tc.Memory
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "remember",
		Desc: "Store important information about the user: preferences, contacts, patterns, decisions. Use when the user shares something worth keeping.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"type": {
				Type:     schema.String,
				Desc:     "Memory type",
				Required: true,
				Enum:     memoryTypeEnum,
			},
			"content": {
				Type:     schema.String,
				Desc:     "The information to remember",
				Required: true,
			},
			"importance": {
				Type: schema.Integer,
				Desc: "Importance 1-10. Default: 5",
			},
		}),
	}, func(ctx context.Context, input *RememberInput) (string, error) {
		if store == nil {
			return formatJSON(&RememberOutput{Success: false, Message: "Memory store not available"}), nil
		}
		if input.Type == "" || input.Content == "" {
			return formatJSON(&RememberOutput{Success: false, Message: "type and content are required"}), nil
		}
		if !db.IsValidMemoryType(db.MemoryType(input.Type)) {
			return formatJSON(&RememberOutput{Success: false, Message: fmt.Sprintf("invalid memory type: %s", input.Type)}), nil
		}

		mem, err := store.CreateMemory(ctx, userID, db.CreateMemoryRequest{
			Type:       db.MemoryType(input.Type),
			Content:    input.Content,
			Importance: input.Importance,
		})
		if err != nil {
			return formatJSON(&RememberOutput{Success: false, Message: fmt.Sprintf("Failed: %v", err)}), nil
		}
		return formatJSON(&RememberOutput{Success: true, MemoryID: mem.ID, Message: "Memorizado"}), nil
	})
}

type RecallInput struct {
	Query string `json:"query,omitempty"`
	Type  string `json:"type,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type RecalledMem struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	Importance int    `json:"importance"`
}

type RecallOutput struct {
	Success  bool          `json:"success"`
	Memories []RecalledMem `json:"memories,omitempty"`
	Count    int           `json:"count"`
	Message  string        `json:"message,omitempty"`
}

func newRecallTool(tc *tools.ToolContext) tool.InvokableTool {
	store := tc.Memory
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "recall",
		Desc: "Recall stored information about the user, optionally filtered by search text or memory type.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "Text to search for"},
			"type":  {Type: schema.String, Desc: "Filter by memory type", Enum: memoryTypeEnum},
			"limit": {Type: schema.Integer, Desc: "Maximum memories to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *RecallInput) (string, error) {
		if store == nil {
			return formatJSON(&RecallOutput{Success: false, Message: "Memory store not available"}), nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}
		memories, err := store.SearchMemories(ctx, userID, input.Query, input.Type, limit)
		if err != nil {
			return formatJSON(&RecallOutput{Success: false, Message: fmt.Sprintf("Search failed: %v", err)}), nil
		}
		recalled := make([]RecalledMem, len(memories))
		for i, m := range memories {
			recalled[i] = RecalledMem{Type: string(m.Type), Content: m.Content, Importance: m.Importance}
		}
		return formatJSON(&RecallOutput{Success: true, Memories: recalled, Count: len(recalled)}), nil
	})
}

type ForgetInput struct {
	Content string `json:"content"`
}

type ForgetOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func newForgetTool(tc *tools.ToolContext) tool.InvokableTool {
	store := tc.Memory
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "forget",
		Desc: "Remove a stored memory matching the given content.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"content": {
				Type:     schema.String,
				Desc:     "Content of the memory to remove",
				Required: true,
			},
		}),
	}, func(ctx context.Context, input *ForgetInput) (string, error) {
		if store == nil {
			return formatJSON(&ForgetOutput{Success: false, Message: "Memory store not available"}), nil
		}
		if input.Content == "" {
			return formatJSON(&ForgetOutput{Success: false, Message: "content is required"}), nil
		}
		deleted, err := store.DeleteMemoryByContent(ctx, userID, input.Content)
		if err != nil {
			return formatJSON(&ForgetOutput{Success: false, Message: fmt.Sprintf("Failed: %v", err)}), nil
		}
		if !deleted {
			return formatJSON(&ForgetOutput{Success: false, Message: "No encontré esa memoria"}), nil
		}
		return formatJSON(&ForgetOutput{Success: true, Message: "Memoria eliminada"}), nil
	})
}

func formatJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
