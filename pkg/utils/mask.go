package utils

// MaskSensitiveString masks an API key or other secret for logging and API
// responses, keeping only a short prefix and suffix visible.
func MaskSensitiveString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
