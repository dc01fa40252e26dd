package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ticketCookieName carries a room ticket when the client cannot put it in the query string.
const ticketCookieName = "room_ticket"

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// roomNameFromPath pulls {name} out of prefix+{name}. Nested paths are rejected.
func roomNameFromPath(path, prefix string) (string, bool) {
	name := strings.TrimPrefix(path, prefix)
	if name == "" || name == path || strings.Contains(name, "/") || len(name) > 64 {
		return "", false
	}
	return name, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
