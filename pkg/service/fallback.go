package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/utils"
)

// FallbackResponder answers chat turns with canned rule-based replies
// when no AI provider is available or generation failed. The user
// always gets a useful answer.
type FallbackResponder struct {
	tasks  models.TaskService
	logger *slog.Logger

	// overridable for tests
	now func() time.Time
}

// NewFallbackResponder creates a fallback responder over the task
// collaborator.
func NewFallbackResponder(tasks models.TaskService) *FallbackResponder {
	return &FallbackResponder{
		tasks:  tasks,
		logger: utils.GetLogger(),
		now:    time.Now,
	}
}

// Respond produces a canned reply for the message. It never fails.
func (f *FallbackResponder) Respond(ctx context.Context, userID, message string) *models.AgentResponse {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, "hola", "buenos días", "buenas"):
		return f.greeting()
	case containsAny(lower, "qué tengo", "pendiente", "hoy"):
		return f.briefing(ctx, userID)
	case containsAny(lower, "crear tarea", "agregar tarea"):
		return f.createTask()
	default:
		return &models.AgentResponse{
			Message: "Entiendo tu mensaje. ¿En qué puedo ayudarte hoy? Puedes preguntarme sobre tus tareas pendientes, crear nuevas tareas, o revisar tu agenda.",
			Suggestions: []string{
				"¿Qué tengo pendiente hoy?",
				"Crear una tarea nueva",
				"¿Cuántas tareas HIGH tengo?",
			},
		}
	}
}

func (f *FallbackResponder) greeting() *models.AgentResponse {
	var saludo string
	switch hour := f.now().Hour(); {
	case hour < 12:
		saludo = "¡Buenos días!"
	case hour < 20:
		saludo = "¡Buenas tardes!"
	default:
		saludo = "¡Buenas noches!"
	}
	return &models.AgentResponse{
		Message: saludo + " Soy Nexora, tu asistente personal. ¿En qué puedo ayudarte?",
		Suggestions: []string{
			"¿Qué tengo pendiente hoy?",
			"Ver mi agenda de hoy",
			"Crear una tarea nueva",
		},
	}
}

func (f *FallbackResponder) briefing(ctx context.Context, userID string) *models.AgentResponse {
	briefing, err := f.tasks.GetTodaysBriefing(ctx, userID)
	if err != nil {
		f.logger.Debug("Briefing unavailable for fallback", "error", err)
		return f.Respond(ctx, userID, "")
	}

	if briefing.Summary.Total == 0 {
		return &models.AgentResponse{
			Message: "¡No tienes tareas pendientes! ¿Quieres crear una nueva?",
			Suggestions: []string{
				"Crear una tarea nueva",
				"Ver mi agenda de hoy",
			},
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Buenos días. Tienes %d tareas pendientes. Tu día:\n\n", briefing.Summary.Total))

	if briefing.Summary.High > 0 {
		sb.WriteString(fmt.Sprintf("🔴 HIGH (%d):\n", briefing.Summary.High))
		for _, task := range briefing.Tasks.High {
			sb.WriteString(fmt.Sprintf("  • %s\n", task.Title))
		}
		sb.WriteString("\n")
	}

	if briefing.Summary.Medium > 0 {
		sb.WriteString(fmt.Sprintf("🟡 MEDIUM (%d):\n", briefing.Summary.Medium))
		medium := briefing.Tasks.Medium
		if len(medium) > 3 {
			medium = medium[:3]
		}
		for _, task := range medium {
			sb.WriteString(fmt.Sprintf("  • %s\n", task.Title))
		}
		sb.WriteString("\n")
	}

	if briefing.Summary.Noise > 0 {
		sb.WriteString(fmt.Sprintf("💭 NOISE (%d pendiente):\n  ¿Quieres que te muestre los elementos sin clasificar?\n\n", briefing.Summary.Noise))
	}

	sb.WriteString("¿Empezamos con alguna tarea específica?")

	resp := &models.AgentResponse{
		Message: sb.String(),
		Suggestions: []string{
			"Empezar con la primera tarea HIGH",
			"Ver todas las tareas",
			"Crear una tarea nueva",
		},
	}
	if len(briefing.Tasks.High) > 0 {
		first := briefing.Tasks.High[0]
		resp.Actions = []models.AgentAction{{
			Type:        "show_task",
			Description: "Ver detalles de: " + first.Title,
			Data:        map[string]any{"taskId": first.ID},
		}}
	}
	return resp
}

func (f *FallbackResponder) createTask() *models.AgentResponse {
	return &models.AgentResponse{
		Message: "¿Qué tarea quieres crear? Dime el título y la prioridad (HIGH, MEDIUM, LOW).",
		Suggestions: []string{
			"Llamar a cliente - HIGH",
			"Revisar presupuesto - MEDIUM",
			"Organizar archivos - LOW",
		},
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
