// Email tools let the AI read and act on the user's mailbox. Sending
// and replying never happen in one shot: the first call returns a
// preview, and the message only goes out when the model re-issues the
// call with confirmed=true after the user agreed.
package email

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/tools"
)

// Tool IDs
const (
	ToolIDGetInbox       tools.ToolID = "get_inbox"
	ToolIDGetUnread      tools.ToolID = "get_unread"
	ToolIDSearchEmails   tools.ToolID = "search_emails"
	ToolIDSendEmail      tools.ToolID = "send_email"
	ToolIDReplyEmail     tools.ToolID = "reply_email"
	ToolIDGetEmailDetail tools.ToolID = "get_email_detail"
	ToolIDArchiveEmail   tools.ToolID = "archive_email"
	ToolIDMarkAsRead     tools.ToolID = "mark_as_read"
	ToolIDGetUnreadCount tools.ToolID = "get_unread_count"
)

const defaultEmailLimit = 10

func init() {
	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetInbox,
		Name:        "get_inbox",
		Description: "Get recent inbox emails.",
		Category:    tools.CategoryEmail,
	}, newGetInboxTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetUnread,
		Name:        "get_unread",
		Description: "Get unread emails.",
		Category:    tools.CategoryEmail,
	}, newGetUnreadTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDSearchEmails,
		Name:        "search_emails",
		Description: "Search emails by text query.",
		Category:    tools.CategoryEmail,
	}, newSearchEmailsTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDSendEmail,
		Name:        "send_email",
		Description: "Send an email after user confirmation.",
		Category:    tools.CategoryEmail,
		Dangerous:   true,
		Confirm:     true,
	}, newSendEmailTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDReplyEmail,
		Name:        "reply_email",
		Description: "Reply to an email after user confirmation.",
		Category:    tools.CategoryEmail,
		Dangerous:   true,
		Confirm:     true,
	}, newReplyEmailTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetEmailDetail,
		Name:        "get_email_detail",
		Description: "Get the full content of one email.",
		Category:    tools.CategoryEmail,
	}, newGetEmailDetailTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDArchiveEmail,
		Name:        "archive_email",
		Description: "Archive an email.",
		Category:    tools.CategoryEmail,
		Dangerous:   true,
	}, newArchiveEmailTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDMarkAsRead,
		Name:        "mark_as_read",
		Description: "Mark an email as read.",
		Category:    tools.CategoryEmail,
		Dangerous:   true,
	}, newMarkAsReadTool)

	tools.Register(tools.ToolDefinition{
		ID:          ToolIDGetUnreadCount,
		Name:        "get_unread_count",
		Description: "Count unread emails.",
		Category:    tools.CategoryEmail,
	}, newGetUnreadCountTool)
}

type listInput struct {
	Limit int `json:"limit,omitempty"`
}

func newGetInboxTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_inbox",
		Desc: "Get the most recent inbox emails.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"limit": {Type: schema.Integer, Desc: "Maximum emails to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *listInput) (string, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultEmailLimit
		}
		emails, err := email.GetInboxEmails(ctx, userID, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"emails": emails}), nil
	})
}

func newGetUnreadTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_unread",
		Desc: "Get unread emails.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"limit": {Type: schema.Integer, Desc: "Maximum emails to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *listInput) (string, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultEmailLimit
		}
		emails, err := email.GetUnreadEmails(ctx, userID, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"emails": emails}), nil
	})
}

type SearchEmailsInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func newSearchEmailsTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "search_emails",
		Desc: "Search emails by sender, subject or content.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "Search text", Required: true},
			"limit": {Type: schema.Integer, Desc: "Maximum emails to return. Default: 10"},
		}),
	}, func(ctx context.Context, input *SearchEmailsInput) (string, error) {
		if input.Query == "" {
			return formatJSON(map[string]string{"error": "query is required"}), nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = defaultEmailLimit
		}
		emails, err := email.SearchEmails(ctx, userID, input.Query, limit)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"emails": emails}), nil
	})
}

type SendEmailInput struct {
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Confirmed bool     `json:"confirmed,omitempty"`
}

// SendPreview is the payload returned before a confirmed send.
type SendPreview struct {
	RequiresConfirmation bool     `json:"requires_confirmation"`
	To                   []string `json:"to"`
	Subject              string   `json:"subject"`
	Body                 string   `json:"body"`
	Message              string   `json:"message"`
}

func newSendEmailTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "send_email",
		Desc: "Send an email. First call without 'confirmed' to get a preview, show it to the user, then call again with confirmed=true once they approve.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"to": {
				Type:     schema.Array,
				Desc:     "Recipient email addresses",
				Required: true,
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
			},
			"subject":   {Type: schema.String, Desc: "Email subject", Required: true},
			"body":      {Type: schema.String, Desc: "Email body", Required: true},
			"confirmed": {Type: schema.Boolean, Desc: "Set true only after the user approved the preview"},
		}),
	}, func(ctx context.Context, input *SendEmailInput) (string, error) {
		if len(input.To) == 0 || input.Subject == "" || input.Body == "" {
			return formatJSON(map[string]string{"error": "to, subject and body are required"}), nil
		}
		if !input.Confirmed {
			return formatJSON(&SendPreview{
				RequiresConfirmation: true,
				To:                   input.To,
				Subject:              input.Subject,
				Body:                 input.Body,
				Message:              "Muestra esta vista previa al usuario y pide su confirmación antes de enviar.",
			}), nil
		}
		id, err := email.SendEmail(ctx, userID, models.SendEmailRequest{
			To:      input.To,
			Subject: input.Subject,
			Body:    input.Body,
		})
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"sent": true, "message_id": id}), nil
	})
}

type ReplyEmailInput struct {
	EmailID   string `json:"email_id"`
	Body      string `json:"body"`
	Confirmed bool   `json:"confirmed,omitempty"`
}

func newReplyEmailTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "reply_email",
		Desc: "Reply to an email. First call without 'confirmed' to get a preview, show it to the user, then call again with confirmed=true once they approve.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"email_id":  {Type: schema.String, Desc: "ID of the email to reply to", Required: true},
			"body":      {Type: schema.String, Desc: "Reply body", Required: true},
			"confirmed": {Type: schema.Boolean, Desc: "Set true only after the user approved the preview"},
		}),
	}, func(ctx context.Context, input *ReplyEmailInput) (string, error) {
		if input.EmailID == "" || input.Body == "" {
			return formatJSON(map[string]string{"error": "email_id and body are required"}), nil
		}
		if !input.Confirmed {
			original, err := email.GetEmailDetail(ctx, userID, input.EmailID)
			if err != nil {
				return "", err
			}
			return formatJSON(&SendPreview{
				RequiresConfirmation: true,
				To:                   []string{original.From},
				Subject:              "Re: " + original.Subject,
				Body:                 input.Body,
				Message:              "Muestra esta vista previa al usuario y pide su confirmación antes de enviar.",
			}), nil
		}
		id, err := email.ReplyToEmail(ctx, userID, input.EmailID, input.Body)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]any{"sent": true, "message_id": id}), nil
	})
}

type emailIDInput struct {
	EmailID string `json:"email_id"`
}

func newGetEmailDetailTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "get_email_detail",
		Desc: "Get the full content of one email by ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"email_id": {Type: schema.String, Desc: "Email ID", Required: true},
		}),
	}, func(ctx context.Context, input *emailIDInput) (string, error) {
		if input.EmailID == "" {
			return formatJSON(map[string]string{"error": "email_id is required"}), nil
		}
		detail, err := email.GetEmailDetail(ctx, userID, input.EmailID)
		if err != nil {
			return "", err
		}
		return formatJSON(detail), nil
	})
}

func newArchiveEmailTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "archive_email",
		Desc: "Archive an email by ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"email_id": {Type: schema.String, Desc: "Email ID", Required: true},
		}),
	}, func(ctx context.Context, input *emailIDInput) (string, error) {
		if input.EmailID == "" {
			return formatJSON(map[string]string{"error": "email_id is required"}), nil
		}
		if err := email.ArchiveEmail(ctx, userID, input.EmailID); err != nil {
			return "", err
		}
		return formatJSON(map[string]bool{"archived": true}), nil
	})
}

func newMarkAsReadTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name: "mark_as_read",
		Desc: "Mark an email as read by ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"email_id": {Type: schema.String, Desc: "Email ID", Required: true},
		}),
	}, func(ctx context.Context, input *emailIDInput) (string, error) {
		if input.EmailID == "" {
			return formatJSON(map[string]string{"error": "email_id is required"}), nil
		}
		if err := email.MarkAsRead(ctx, userID, input.EmailID); err != nil {
			return "", err
		}
		return formatJSON(map[string]bool{"marked": true}), nil
	})
}

type emptyInput struct{}

func newGetUnreadCountTool(tc *tools.ToolContext) tool.InvokableTool {
	email := tc.Email
	userID := tc.UserID

	return utils.NewTool(&schema.ToolInfo{
		Name:        "get_unread_count",
		Desc:        "Count unread emails.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, func(ctx context.Context, input *emptyInput) (string, error) {
		count, err := email.GetUnreadCount(ctx, userID)
		if err != nil {
			return "", err
		}
		return formatJSON(map[string]int{"unread": count}), nil
	})
}

func formatJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
