// Task tools let the AI inspect and manage the user's task list.
package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/tools"
)

// Tool IDs
const (
	ToolIDFindTasks      tools.ToolID = "find_tasks"
	ToolIDCreateTask     tools.ToolID = "create_task"
	ToolIDCompleteTask   tools.ToolID = "complete_task"
	ToolIDTodaysBriefing tools.ToolID = "get_todays_briefing"
)

func init() {
	tools.Register(tools.ToolDefinition{
		ID:          ToolIDFindTasks,
		Name:        "find_tasks",
		Description: "Find the user's tasks, optionally filtered by priority or status.",
		Category:    tools.CategoryTasks,
	}, newFindTasksTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDCreateTask,
		Name:        "create_task",
		Description: "Create a new task for the user.",
		Category:    tools.CategoryTasks,
		Dangerous:   true,
	}, newCreateTaskTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDCompleteTask,
		Name:        "complete_task",
		Description: "Mark a task as completed.",
		Category:    tools.CategoryTasks,
		Dangerous:   true,
	}, newCompleteTaskTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDTodaysBriefing,
		Name:        "get_todays_briefing",
		Description: "Get today's task briefing grouped by priority.",
		Category:    tools.CategoryTasks,
	}, newTodaysBriefingTool)
}

type FindTasksInput struct {
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
}

func newFindTasksTool(tc *tools.ToolContext) tool.InvokableTool {
	tasks := tc.Tasks
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "find_tasks",
		Desc: "Find the user's tasks. Filter by priority (HIGH, MEDIUM, LOW, NOISE) or status (pending, completed).",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"priority": {
				Type: schema.String,
				Desc: "Filter by priority",
				Enum: []string{models.PriorityHigh, models.PriorityMedium, models.PriorityLow, models.PriorityNoise},
			},
			"status": {
				Type: schema.String,
				Desc: "Filter by status",
			},
		}),
	}, func(ctx context.Context, input *FindTasksInput) (string, error) {
		list, err := tasks.FindAll(ctx, userID, models.TaskFilter{
			Priority: input.Priority,
			Status:   input.Status,
		})
		if err != nil {
			return "", err
		}
		return formatJSON(list), nil
	})
}

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

func newCreateTaskTool(tc *tools.ToolContext) tool.InvokableTool {
	tasks := tc.Tasks
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "create_task",
		Desc: "Create a new task for the user with a title and optional priority and due date.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"title": {
				Type:     schema.String,
				Desc:     "Task title",
				Required: true,
			},
			"description": {
				Type: schema.String,
				Desc: "Longer task description",
			},
			"priority": {
				Type: schema.String,
				Desc: "Task priority. Default: MEDIUM",
				Enum: []string{models.PriorityHigh, models.PriorityMedium, models.PriorityLow},
			},
			"due_date": {
				Type: schema.String,
				Desc: "Due date in RFC3339 format",
			},
		}),
	}, func(ctx context.Context, input *CreateTaskInput) (string, error) {
		if input.Title == "" {
			return formatJSON(map[string]string{"error": "title is required"}), nil
		}
		req := models.CreateTaskRequest{
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
		}
		if req.Priority == "" {
			req.Priority = models.PriorityMedium
		}
		if input.DueDate != "" {
			if due, err := time.Parse(time.RFC3339, input.DueDate); err == nil {
				req.DueDate = &due
			}
		}
		task, err := tasks.Create(ctx, userID, req)
		if err != nil {
			return "", err
		}
		return formatJSON(task), nil
	})
}

type CompleteTaskInput struct {
	TaskID string `json:"task_id"`
}

func newCompleteTaskTool(tc *tools.ToolContext) tool.InvokableTool {
	tasks := tc.Tasks
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "complete_task",
		Desc: "Mark a task as completed by its ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"task_id": {
				Type:     schema.String,
				Desc:     "ID of the task to complete",
				Required: true,
			},
		}),
	}, func(ctx context.Context, input *CompleteTaskInput) (string, error) {
		if input.TaskID == "" {
			return formatJSON(map[string]string{"error": "task_id is required"}), nil
		}
		task, err := tasks.Complete(ctx, userID, input.TaskID)
		if err != nil {
			return "", err
		}
		return formatJSON(task), nil
	})
}

type TodaysBriefingInput struct{}

func newTodaysBriefingTool(tc *tools.ToolContext) tool.InvokableTool {
	tasks := tc.Tasks
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name:        "get_todays_briefing",
		Desc:        "Get today's briefing: pending tasks grouped and counted by priority.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, func(ctx context.Context, input *TodaysBriefingInput) (string, error) {
		briefing, err := tasks.GetTodaysBriefing(ctx, userID)
		if err != nil {
			return "", err
		}
		return formatJSON(briefing), nil
	})
}

func formatJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
