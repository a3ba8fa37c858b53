// Calendar tools let the AI read and manage the user's agenda. Vague
// event references ("la reunión", "lo de las 10pm") are resolved with
// MatchEvent; destructive operations preview first and only act when
// the model re-issues the call confirmed.
package calendar

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
	ToolIDGetEvents      tools.ToolID = "get_events"
	ToolIDGetTodayEvents tools.ToolID = "get_today_events"
	ToolIDGetUpcoming    tools.ToolID = "get_upcoming_events"
	ToolIDCreateEvent    tools.ToolID = "create_event"
	ToolIDUpdateEvent    tools.ToolID = "update_event"
	ToolIDDeleteEvent    tools.ToolID = "delete_event"
	ToolIDGetFreeBusy    tools.ToolID = "get_free_busy"
)

// lookahead window when resolving vague event references
const matchWindowDays = 14

func init() {
	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetEvents,
		Name:        "get_events",
		Description: "Get calendar events in a date range.",
		Category:    tools.CategoryCalendar,
	}, newGetEventsTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetTodayEvents,
		Name:        "get_today_events",
		Description: "Get today's calendar events.",
		Category:    tools.CategoryCalendar,
	}, newGetTodayEventsTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetUpcoming,
		Name:        "get_upcoming_events",
		Description: "Get upcoming calendar events for the next days.",
		Category:    tools.CategoryCalendar,
	}, newGetUpcomingTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDCreateEvent,
		Name:        "create_event",
		Description: "Create a calendar event.",
		Category:    tools.CategoryCalendar,
		Dangerous:   true,
	}, newCreateEventTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDUpdateEvent,
		Name:        "update_event",
		Description: "Update an existing calendar event.",
		Category:    tools.CategoryCalendar,
		Dangerous:   true,
	}, newUpdateEventTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDDeleteEvent,
		Name:        "delete_event",
		Description: "Delete a calendar event after user confirmation.",
		Category:    tools.CategoryCalendar,
		Dangerous:   true,
		Confirm:     true,
	}, newDeleteEventTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetFreeBusy,
		Name:        "get_free_busy",
		Description: "Get busy time slots in a date range.",
		Category:    tools.CategoryCalendar,
	}, newGetFreeBusyTool)
}

type GetEventsInput struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newGetEventsTool(tc *tools.ToolContext) tool.InvokableTool {
	cal := tc.Calendar
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_events",
		Desc: "Get calendar events between two RFC3339 timestamps.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"from": {Type: schema.String, Desc: "Range start, RFC3339", Required: true},
			"to":   {Type: schema.String, Desc: "Range end, RFC3339", Required: true},
		}),
	}, func(ctx context.Context, input *GetEventsInput) (string, error) {
		from, err := time.Parse(time.RFC3339, input.From)
		if err != nil {
			return formatJSON(map[string]string{"error": "invalid 'from' timestamp"}), nil
		}
		to, err := time.Parse(time.RFC3339, input.To)
		if err != nil {
			return formatJSON(map[string]string{"error": "invalid 'to' timestamp"}), nil
		}
		events, err := cal.GetEvents(ctx, userID, from, to)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"events": events}), nil
	})
}

type emptyInput struct{}

func newGetTodayEventsTool(tc *tools.ToolContext) tool.InvokableTool {
	cal := tc.Calendar
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name:        "get_today_events",
		Desc:        "Get today's calendar events.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, func(ctx context.Context, input *emptyInput) (string, error) {
		events, err := cal.GetTodayEvents(ctx, userID)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"events": events}), nil
	})
}

type GetUpcomingInput struct {
	Days int `json:"days,omitempty"`
}

func newGetUpcomingTool(tc *tools.ToolContext) tool.InvokableTool {
	cal := tc.Calendar
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_upcoming_events",
		Desc: "Get upcoming calendar events. Default: next 7 days.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"days": {Type: schema.Integer, Desc: "How many days ahead to look. Default: 7"},
		}),
	}, func(ctx context.Context, input *GetUpcomingInput) (string, error) {
		days := input.Days
		if days <= 0 {
			days = 7
		}
		events, err := cal.GetUpcomingEvents(ctx, userID, days)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"events": events}), nil
	})
}

type CreateEventInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Location    string   `json:"location,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
}

func newCreateEventTool(tc *tools.ToolContext) tool.InvokableTool {
	cal := tc.Calendar
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "create_event",
		Desc: "Create a calendar event. When no end is given the event lasts one hour.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"title":       {Type: schema.String, Desc: "Event title", Required: true},
			"description": {Type: schema.String, Desc: "Event description"},
			"start":       {Type: schema.String, Desc: "Start time, RFC3339", Required: true},
			"end":         {Type: schema.String, Desc: "End time, RFC3339"},
			"location":    {Type: schema.String, Desc: "Event location"},
			"attendees": {
				Type:     schema.Array,
				Desc:     "Attendee email addresses",
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
			},
		}),
	}, func(ctx context.Context, input *CreateEventInput) (string, error) {
		if input.Title == "" || input.Start == "" {
			return formatJSON(map[string]string{"error": "title and start are required"}), nil
		}
		start, err := time.Parse(time.RFC3339, input.Start)
		if err != nil {
			return formatJSON(map[string]string{"error": "invalid 'start' timestamp"}), nil
		}
		end := start.Add(time.Hour)
		if input.End != "" {
			if parsed, err := time.Parse(time.RFC3339, input.End); err == nil {
				end = parsed
			}
		}
		event, err := cal.CreateEvent(ctx, userID, models.CreateEventRequest{
			Title:       input.Title,
			Description: input.Description,
			Start:       start,
			End:         end,
			Location:    input.Location,
			Attendees:   input.Attendees,
		})
		if err != nil {
			return "", err
		}
		return formatJSON(event), nil
	})
}

type UpdateEventInput struct {
	EventID     string `json:"event_id,omitempty"`
	SearchTitle string `json:"search_title,omitempty"`
	SearchTime  string `json:"search_time,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Location    string `json:"location,omitempty"`
}

func newUpdateEventTool(tc *tools.ToolContext) tool.InvokableTool {
	cal := tc.Calendar
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "update_event",
		Desc: "Update a calendar event. Identify it by event_id or by search_title/search_time when the user is vague.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"event_id":     {Type: schema.String, Desc: "Exact event ID if known"},
			"search_title": {Type: schema.String, Desc: "Words from the event title"},
			"search_time":  {Type: schema.String, Desc: "Referenced start time, e.g. '10pm' or '22:00'"},
			"title":        {Type: schema.String, Desc: "New title"},
			"description":  {Type: schema.String, Desc: "New description"},
			"start":        {Type: schema.String, Desc: "New start time, RFC3339"},
			"end":          {Type: schema.String, Desc: "New end time, RFC3339"},
			"location":     {Type: schema.String, Desc: "New location"},
		}),
	}, func(ctx context.Context, input *UpdateEventInput) (string, error) {
		match, err := resolveEvent(ctx, cal, userID, input.EventID, input.SearchTitle, input.SearchTime)
		if err != nil {
			return "", err
		}
		if match.Event == nil {
			return formatJSON(match), nil
		}

		req := models.UpdateEventRequest{}
		if input.Title != "" {
			req.Title = &input.Title
		}
		if input.Description != "" {
			req.Description = &input.Description
		}
		if input.Location != "" {
			req.Location = &input.Location
		}
		if input.Start != "" {
			if start, err := time.Parse(time.RFC3339, input.Start); err == nil {
				req.Start = &start
			}
		}
		if input.End != "" {
			if end, err := time.Parse(time.RFC3339, input.End); err == nil {
				req.End = &end
			}
		}

		event, err := cal.UpdateEvent(ctx, userID, match.Event.ID, req)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"event": event, "confidence": match.Confidence}), nil
	})
}

type DeleteEventInput struct {
	EventID     string `json:"event_id,omitempty"`
	SearchTitle string `json:"search_title,omitempty"`
	SearchTime  string `json:"search_time,omitempty"`
	Confirmed   bool   `json:"confirmed,omitempty"`
}

type DeleteEventPreview struct {
	RequiresConfirmation bool          `json:"requires_confirmation"`
	Confidence           string        `json:"confidence"`
	Event                *models.Event `json:"event"`
	Message              string        `json:"message"`
}

func newDeleteEventTool(tc *tools.ToolContext) tool.InvokableTool {
	cal := tc.Calendar
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "delete_event",
		Desc: "Delete a calendar event. First call without 'confirmed' to get a preview, show it to the user, then call again with confirmed=true once they agree.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"event_id":     {Type: schema.String, Desc: "Exact event ID if known"},
			"search_title": {Type: schema.String, Desc: "Words from the event title"},
			"search_time":  {Type: schema.String, Desc: "Referenced start time, e.g. '10pm' or '22:00'"},
			"confirmed":    {Type: schema.Boolean, Desc: "Set true only after the user confirmed the deletion"},
		}),
	}, func(ctx context.Context, input *DeleteEventInput) (string, error) {
		match, err := resolveEvent(ctx, cal, userID, input.EventID, input.SearchTitle, input.SearchTime)
		if err != nil {
			return "", err
		}
		if match.Event == nil {
			return formatJSON(match), nil
		}

		if !input.Confirmed {
			return formatJSON(&DeleteEventPreview{
				RequiresConfirmation: true,
				Confidence:           match.Confidence,
				Event:                match.Event,
				Message:              "Pide confirmación al usuario antes de eliminar este evento.",
			}), nil
		}

		if err := cal.DeleteEvent(ctx, userID, match.Event.ID); err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"deleted": true, "event": match.Event}), nil
	})
}

type GetFreeBusyInput struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newGetFreeBusyTool(tc *tools.ToolContext) tool.InvokableTool {
	cal := tc.Calendar
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_free_busy",
		Desc: "Get busy time slots between two RFC3339 timestamps.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"from": {Type: schema.String, Desc: "Range start, RFC3339", Required: true},
			"to":   {Type: schema.String, Desc: "Range end, RFC3339", Required: true},
		}),
	}, func(ctx context.Context, input *GetFreeBusyInput) (string, error) {
		from, err := time.Parse(time.RFC3339, input.From)
		if err != nil {
			return formatJSON(map[string]string{"error": "invalid 'from' timestamp"}), nil
		}
		to, err := time.Parse(time.RFC3339, input.To)
		if err != nil {
			return formatJSON(map[string]string{"error": "invalid 'to' timestamp"}), nil
		}
		slots, err := cal.GetFreeBusy(ctx, userID, from, to)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"busy": slots}), nil
	})
}

// resolveEvent fetches the upcoming events and matches the reference
// against them.
func resolveEvent(ctx context.Context, cal models.CalendarService, userID, eventID, searchTitle, searchTime string) (MatchResult, error) {
	events, err := cal.GetUpcomingEvents(ctx, userID, matchWindowDays)
	if err != nil {
		return MatchResult{}, err
	}
	return MatchEvent(events, eventID, searchTitle, searchTime), nil
}

func formatJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
