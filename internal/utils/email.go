package utils

import (
	"strings"
)

// ExtractAddress pulls the bare address out of a header value that may carry
// a display name, e.g. `"Myship" <no-reply@sp88.com>` -> `no-reply@sp88.com`.
func ExtractAddress(value string) string {
	value = strings.TrimSpace(value)

	if strings.Contains(value, "<") && strings.Contains(value, ">") {
		startIdx := strings.LastIndex(value, "<") + 1
		endIdx := strings.LastIndex(value, ">")
		if startIdx > 0 && endIdx > startIdx {
			value = value[startIdx:endIdx]
		}
	}

	return strings.TrimSpace(value)
}

func ExtractDomainFromEmail(email string) string {
	if email == "" {
		return ""
	}

	email = ExtractAddress(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(parts[1]))
}
