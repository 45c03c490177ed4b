package generator

import (
	"strconv"
	"strings"
)

// ConvertDefault converts a postgres column default into a TypeScript
// literal initializer. The second return is false when the default has no
// client-side meaning (sequences, volatile functions) and should be skipped.
func ConvertDefault(raw string) (string, bool) {
	expr := strings.TrimSpace(raw)
	if expr == "" {
		return "", false
	}

	// Strip a trailing cast: 'residential'::client_type, '{}'::jsonb.
	if idx := strings.Index(expr, "::"); idx >= 0 {
		expr = strings.TrimSpace(expr[:idx])
	}

	lower := strings.ToLower(expr)
	switch {
	case strings.HasPrefix(lower, "nextval("):
		return "", false
	case lower == "now()" || lower == "current_timestamp" || lower == "current_date" || strings.HasPrefix(lower, "gen_random_uuid"):
		return "", false
	case lower == "true" || lower == "false":
		return lower, true
	case lower == "null":
		return "null", true
	}

	if strings.HasPrefix(expr, "'") && strings.HasSuffix(expr, "'") && len(expr) >= 2 {
		inner := expr[1 : len(expr)-1]
		// Postgres doubles embedded quotes inside string defaults.
		inner = strings.ReplaceAll(inner, "''", "'")
		switch inner {
		case "{}":
			return "{}", true
		case "[]":
			return "[]", true
		}
		return "'" + strings.ReplaceAll(inner, "'", "\\'") + "'", true
	}

	if _, err := strconv.ParseFloat(expr, 64); err == nil {
		return expr, true
	}

	// Unrecognized expression: advisory skip, never an error.
	return "", false
}
