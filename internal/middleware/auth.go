package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// APIKeyAuth verifies the bearer token against the configured API keys. With
// no keys configured, authentication is disabled and every request passes;
// the caller is expected to log a warning at startup for that mode.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	trimmed := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			trimmed = append(trimmed, k)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(trimmed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, "invalid authorization header")
				return
			}
			if !keyMatches(trimmed, parts[1]) {
				writeAuthError(w, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func keyMatches(keys []string, candidate string) bool {
	matched := false
	for _, k := range keys {
		if len(k) == len(candidate) && subtle.ConstantTimeCompare([]byte(k), []byte(candidate)) == 1 {
			matched = true
		}
	}
	return matched
}

// writeAuthError emits the OpenAI-style error envelope without depending on
// the handlers package.
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"message": message,
			"type":    "invalid_request_error",
			"code":    "invalid_api_key",
		},
	})
}
