package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/models"
)

type echoInput struct {
	Text string `json:"text"`
}

func newEchoTool() tool.InvokableTool {
	return utils.NewTool(&schema.ToolInfo{
		Name: "echo",
		Desc: "Echo back the input.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"text": {Type: schema.String, Desc: "Text to echo", Required: true},
		}),
	}, func(ctx context.Context, input *echoInput) (string, error) {
		return `{"echo":"` + input.Text + `"}`, nil
	})
}

func newFailingTool(err error) tool.InvokableTool {
	return utils.NewTool(&schema.ToolInfo{
		Name:        "failing",
		Desc:        "Always fails.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, func(ctx context.Context, input *struct{}) (string, error) {
		return "", err
	})
}

func newTestDispatcher(ctx context.Context, t *testing.T, instances ...tool.InvokableTool) *Dispatcher {
	t.Helper()
	d := &Dispatcher{
		tools:  make(map[string]tool.InvokableTool),
		logger: slog.Default(),
	}
	for _, inst := range instances {
		info, err := inst.Info(ctx)
		if err != nil {
			t.Fatalf("tool info: %v", err)
		}
		d.tools[info.Name] = inst
		d.infos = append(d.infos, info)
	}
	return d
}

func TestDispatcher_Execute(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(ctx, t, newEchoTool())

	out := d.Execute(ctx, "echo", `{"text":"hola"}`)
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if payload["echo"] != "hola" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(ctx, t)

	out := d.Execute(ctx, "nope", `{}`)
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if payload["error"] == "" {
		t.Fatalf("expected error payload, got %s", out)
	}
}

func TestDispatcher_ErrorBecomesPayload(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(ctx, t, newFailingTool(errors.New("boom")))

	out := d.Execute(ctx, "failing", `{}`)
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if payload["error"] == "" {
		t.Fatalf("expected error payload, got %s", out)
	}
}

func TestDispatcher_NotConnectedTranslated(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(ctx, t, newFailingTool(models.ErrNotConnected))

	out := d.Execute(ctx, "failing", `{}`)
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if payload["error"] == "" || payload["error"] == models.ErrNotConnected.Error() {
		t.Fatalf("expected translated message, got %s", out)
	}
}
