// Drive tools expose the user's file storage to the AI.
package drive

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
	ToolIDSearchFiles      tools.ToolID = "search_files"
	ToolIDListRecentFiles  tools.ToolID = "list_recent_files"
	ToolIDListFilesByType  tools.ToolID = "list_files_by_type"
	ToolIDListSharedWithMe tools.ToolID = "list_shared_with_me"
	ToolIDListStarredFiles tools.ToolID = "list_starred_files"
	ToolIDGetFileInfo      tools.ToolID = "get_file_info"
	ToolIDGetStorageQuota  tools.ToolID = "get_storage_quota"
)

const defaultFileLimit = 10

func init() {
	tools.Register(tools.ToolDefinition{
		ID:          ToolIDSearchFiles,
		Name:        "search_files",
		Description: "Search stored files by name or content.",
		Category:    tools.CategoryDrive,
	}, newSearchFilesTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDListRecentFiles,
		Name:        "list_recent_files",
		Description: "List recently modified files.",
		Category:    tools.CategoryDrive,
	}, newListRecentFilesTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDListFilesByType,
		Name:        "list_files_by_type",
		Description: "List files of a given type.",
		Category:    tools.CategoryDrive,
	}, newListFilesByTypeTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDListSharedWithMe,
		Name:        "list_shared_with_me",
		Description: "List files shared with the user.",
		Category:    tools.CategoryDrive,
	}, newListSharedWithMeTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDListStarredFiles,
		Name:        "list_starred_files",
		Description: "List starred files.",
		Category:    tools.CategoryDrive,
	}, newListStarredFilesTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetFileInfo,
		Name:        "get_file_info",
		Description: "Get metadata for one file.",
		Category:    tools.CategoryDrive,
	}, newGetFileInfoTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetStorageQuota,
		Name:        "get_storage_quota",
		Description: "Get storage usage and limit.",
		Category:    tools.CategoryDrive,
	}, newGetStorageQuotaTool)
}

type SearchFilesInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func newSearchFilesTool(tc *tools.ToolContext) tool.InvokableTool {
	drive := tc.Drive
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "search_files",
		Desc: "Search stored files by name or content.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "Search text", Required: true},
			"limit": {Type: schema.Integer, Desc: "Maximum files to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *SearchFilesInput) (string, error) {
		if input.Query == "" {
			return formatJSON(map[string]string{"error": "query is required"}), nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = defaultFileLimit
		}
		files, err := drive.SearchFiles(ctx, userID, input.Query, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"files": files}), nil
	})
}

type listInput struct {
	Limit int `json:"limit,omitempty"`
}

func newListRecentFilesTool(tc *tools.ToolContext) tool.InvokableTool {
	drive := tc.Drive
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "list_recent_files",
		Desc: "List recently modified files.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"limit": {Type: schema.Integer, Desc: "Maximum files to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *listInput) (string, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultFileLimit
		}
		files, err := drive.ListRecentFiles(ctx, userID, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"files": files}), nil
	})
}

type ListFilesByTypeInput struct {
	MimeType string `json:"mime_type"`
	Limit    int    `json:"limit,omitempty"`
}

func newListFilesByTypeTool(tc *tools.ToolContext) tool.InvokableTool {
	drive := tc.Drive
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "list_files_by_type",
		Desc: "List files of a given MIME type, e.g. application/pdf.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"mime_type": {Type: schema.String, Desc: "MIME type to filter by", Required: true},
			"limit":     {Type: schema.Integer, Desc: "Maximum files to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *ListFilesByTypeInput) (string, error) {
		if input.MimeType == "" {
			return formatJSON(map[string]string{"error": "mime_type is required"}), nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = defaultFileLimit
		}
		files, err := drive.ListFilesByType(ctx, userID, input.MimeType, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"files": files}), nil
	})
}

func newListSharedWithMeTool(tc *tools.ToolContext) tool.InvokableTool {
	drive := tc.Drive
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "list_shared_with_me",
		Desc: "List files shared with the user.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"limit": {Type: schema.Integer, Desc: "Maximum files to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *listInput) (string, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultFileLimit
		}
		files, err := drive.ListSharedWithMe(ctx, userID, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"files": files}), nil
	})
}

func newListStarredFilesTool(tc *tools.ToolContext) tool.InvokableTool {
	drive := tc.Drive
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "list_starred_files",
		Desc: "List starred files.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"limit": {Type: schema.Integer, Desc: "Maximum files to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *listInput) (string, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultFileLimit
		}
		files, err := drive.ListStarredFiles(ctx, userID, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"files": files}), nil
	})
}

type GetFileInfoInput struct {
	FileID string `json:"file_id"`
}

func newGetFileInfoTool(tc *tools.ToolContext) tool.InvokableTool {
	drive := tc.Drive
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_file_info",
		Desc: "Get metadata for one file by ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"file_id": {Type: schema.String, Desc: "File ID", Required: true},
		}),
	}, func(ctx context.Context, input *GetFileInfoInput) (string, error) {
		if input.FileID == "" {
			return formatJSON(map[string]string{"error": "file_id is required"}), nil
		}
		info, err := drive.GetFileInfo(ctx, userID, input.FileID)
		if err != nil {
			return "", err
		}
		return formatJSON(info), nil
	})
}

type emptyInput struct{}

func newGetStorageQuotaTool(tc *tools.ToolContext) tool.InvokableTool {
	drive := tc.Drive
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name:        "get_storage_quota",
		Desc:        "Get storage usage and limit.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, func(ctx context.Context, input *emptyInput) (string, error) {
		quota, err := drive.GetStorageQuota(ctx, userID)
		if err != nil {
			return "", err
		}
		return formatJSON(quota), nil
	})
}

func formatJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
