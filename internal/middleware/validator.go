package middleware

import "strings"

// Input validation and sanitization utilities

// ParseAllowedOrigins turns the ALLOWED_ORIGINS value (comma list or "*")
// into the origin list the CORS layer expects.
func ParseAllowedOrigins(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" || value == "*" {
		return []string{"*"}
	}

	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
