// Contact tools expose the user's address book to the AI.
package contacts

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/tools"
)

// Tool IDs
const (
	ToolIDGetContacts    tools.ToolID = "get_contacts"
	ToolIDSearchContacts tools.ToolID = "search_contacts"
)

func init() {
	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetContacts,
		Name:        "get_contacts",
		Description: "List the user's contacts.",
		Category:    tools.CategoryContacts,
	}, newGetContactsTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDSearchContacts,
		Name:        "search_contacts",
		Description: "Search contacts by name, email or company.",
		Category:    tools.CategoryContacts,
	}, newSearchContactsTool)
}

type GetContactsInput struct {
	Limit int `json:"limit,omitempty"`
}

func newGetContactsTool(tc *tools.ToolContext) tool.InvokableTool {
	contacts := tc.Contacts
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_contacts",
		Desc: "List the user's contacts.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"limit": {Type: schema.Integer, Desc: "Maximum contacts to return. Default: 20"},
		}),
	}, func(ctx context.Context, input *GetContactsInput) (string, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		list, err := contacts.GetContacts(ctx, userID, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"contacts": list}), nil
	})
}

type SearchContactsInput struct {
	Query string `json:"query"`
}

func newSearchContactsTool(tc *tools.ToolContext) tool.InvokableTool {
	contacts := tc.Contacts
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "search_contacts",
		Desc: "Search contacts by name, email or company.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "Search text", Required: true},
		}),
	}, func(ctx context.Context, input *SearchContactsInput) (string, error) {
		if input.Query == "" {
			return formatJSON(map[string]string{"error": "query is required"}), nil
		}
		list, err := contacts.SearchContacts(ctx, userID, input.Query)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"contacts": list}), nil
	})
}

func formatJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
