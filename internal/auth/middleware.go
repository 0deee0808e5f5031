package auth

import (
	"strings"
)

const AuthorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value.
// Gating itself lives in internal/rbac; this only parses the header.
func BearerToken(header string) (string, bool) {
	raw := strings.TrimSpace(header)
	if len(raw) < len(bearerPrefix) || !strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(raw[len(bearerPrefix):])
	if tok == "" {
		return "", false
	}
	return tok, true
}
