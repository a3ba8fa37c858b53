package service

import "strings"

// suggestFollowups derives up to three quick replies from the
// assistant's answer by keyword inspection.
func suggestFollowups(reply string) []string {
	lower := strings.ToLower(reply)
	var out []string

	add := func(s string) {
		if len(out) >= 3 {
			return
		}
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}

	if containsAny(lower, "tarea", "pendiente") {
		add("Ver todas las tareas")
		add("Crear una tarea nueva")
	}
	if containsAny(lower, "evento", "reunión", "agenda", "calendario") {
		add("Ver mi agenda de hoy")
	}
	if containsAny(lower, "correo", "email") {
		add("¿Tengo correos sin leer?")
	}
	if containsAny(lower, "?", "¿") {
		add("Sí, adelante")
	}

	return out
}
