package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/utils"
)

// Dispatcher instantiates the registered tools for one user context and
// executes model-requested calls. Execution failures become tool result
// payloads, never errors, so a misbehaving tool cannot abort the
// conversation turn.
type Dispatcher struct {
	tools  map[string]tool.InvokableTool
	infos  []*schema.ToolInfo
	logger *slog.Logger
}

// NewDispatcher builds a dispatcher over every registered tool.
func NewDispatcher(ctx context.Context, tc *ToolContext) *Dispatcher {
	d := &Dispatcher{
		tools:  make(map[string]tool.InvokableTool),
		logger: utils.GetLogger(),
	}
	for _, def := range ListToolDefinitions() {
		t, err := GetTool(def.ID, tc)
		if err != nil {
			continue
		}
		info, err := t.Info(ctx)
		if err != nil {
			d.logger.Warn("Failed to get tool info", "tool", def.ID, "error", err)
			continue
		}
		d.tools[info.Name] = t
		d.infos = append(d.infos, info)
	}
	return d
}

// Infos returns the tool schemas to bind to the model.
func (d *Dispatcher) Infos() []*schema.ToolInfo {
	return d.infos
}

// Execute runs one tool call and returns its result payload as JSON.
func (d *Dispatcher) Execute(ctx context.Context, name, argsJSON string) string {
	t, ok := d.tools[name]
	if !ok {
		d.logger.Warn("Model requested unknown tool", "tool", name)
		return errorPayload("herramienta no reconocida: " + name)
	}

	out, err := t.InvokableRun(ctx, argsJSON)
	if err != nil {
		if errors.Is(err, models.ErrNotConnected) {
			d.logger.Info("Tool needs account connection", "tool", name)
			return errorPayload("Esta función requiere conectar tu cuenta. Pide al usuario que conecte la integración correspondiente.")
		}
		d.logger.Warn("Tool execution failed", "tool", name, "error", err)
		return errorPayload(err.Error())
	}
	return out
}

func errorPayload(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}
