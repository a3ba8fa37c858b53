package email

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/tools"
)

type fakeEmailService struct {
	models.EmailService
	sendCalls  int
	replyCalls int
}

func (f *fakeEmailService) SendEmail(ctx context.Context, userID string, req models.SendEmailRequest) (string, error) {
	f.sendCalls++
	return "msg-1", nil
}

func (f *fakeEmailService) ReplyToEmail(ctx context.Context, userID, emailID, body string) (string, error) {
	f.replyCalls++
	return "msg-2", nil
}

func (f *fakeEmailService) GetEmailDetail(ctx context.Context, userID, emailID string) (*models.Email, error) {
	return &models.Email{
		ID:      emailID,
		From:    "cliente@example.com",
		Subject: "Presupuesto",
		Date:    time.Now(),
	}, nil
}

func TestSendEmail_PreviewThenConfirm(t *testing.T) {
	fake := &fakeEmailService{}
	tc := &tools.ToolContext{UserID: "u1", Email: fake}
	sendTool := newSendEmailTool(tc)
	ctx := context.Background()

	args := `{"to":["ana@example.com"],"subject":"Hola","body":"¿Nos vemos mañana?"}`
	out, err := sendTool.InvokableRun(ctx, args)
	if err != nil {
		t.Fatalf("preview call failed: %v", err)
	}

	var preview SendPreview
	if err := json.Unmarshal([]byte(out), &preview); err != nil {
		t.Fatalf("preview not JSON: %v", err)
	}
	if !preview.RequiresConfirmation {
		t.Fatal("expected requires_confirmation in preview")
	}
	if fake.sendCalls != 0 {
		t.Fatalf("email sent before confirmation: %d calls", fake.sendCalls)
	}

	confirmed := `{"to":["ana@example.com"],"subject":"Hola","body":"¿Nos vemos mañana?","confirmed":true}`
	out, err = sendTool.InvokableRun(ctx, confirmed)
	if err != nil {
		t.Fatalf("confirmed call failed: %v", err)
	}
	var result struct {
		Sent      bool   `json:"sent"`
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if !result.Sent || result.MessageID != "msg-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if fake.sendCalls != 1 {
		t.Fatalf("expected exactly one send, got %d", fake.sendCalls)
	}
}

func TestReplyEmail_PreviewIncludesOriginal(t *testing.T) {
	fake := &fakeEmailService{}
	tc := &tools.ToolContext{UserID: "u1", Email: fake}
	replyTool := newReplyEmailTool(tc)
	ctx := context.Background()

	out, err := replyTool.InvokableRun(ctx, `{"email_id":"e-9","body":"Claro, te lo envío hoy."}`)
	if err != nil {
		t.Fatalf("preview call failed: %v", err)
	}

	var preview SendPreview
	if err := json.Unmarshal([]byte(out), &preview); err != nil {
		t.Fatalf("preview not JSON: %v", err)
	}
	if !preview.RequiresConfirmation || preview.Subject != "Re: Presupuesto" {
		t.Fatalf("unexpected preview: %+v", preview)
	}
	if len(preview.To) != 1 || preview.To[0] != "cliente@example.com" {
		t.Fatalf("reply addressed wrong: %+v", preview.To)
	}
	if fake.replyCalls != 0 {
		t.Fatal("reply sent before confirmation")
	}

	if _, err := replyTool.InvokableRun(ctx, `{"email_id":"e-9","body":"Claro, te lo envío hoy.","confirmed":true}`); err != nil {
		t.Fatalf("confirmed call failed: %v", err)
	}
	if fake.replyCalls != 1 {
		t.Fatalf("expected exactly one reply, got %d", fake.replyCalls)
	}
}

func TestSendEmail_MissingFields(t *testing.T) {
	fake := &fakeEmailService{}
	tc := &tools.ToolContext{UserID: "u1", Email: fake}
	sendTool := newSendEmailTool(tc)

	out, err := sendTool.InvokableRun(context.Background(), `{"subject":"Hola"}`)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if payload["error"] == "" {
		t.Fatalf("expected error payload, got %s", out)
	}
}
