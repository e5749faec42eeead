package main

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// authService guards catalog writes with a static admin API key.
type authService struct {
	apiKey []byte
}

func newAuthService(apiKey string) *authService {
	return &authService{apiKey: []byte(apiKey)}
}

func (a *authService) enabled() bool {
	return len(a.apiKey) > 0
}

func (a *authService) validateToken(token string) bool {
	if !a.enabled() || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), a.apiKey) == 1
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// requireAdmin rejects requests without the admin bearer token. Without a
// configured key every write is refused.
func (a *authService) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled() {
			writeJSON(w, http.StatusForbidden, apiError{Code: "forbidden", Message: "catalog writes are disabled"})
			return
		}
		if !a.validateToken(bearerToken(r)) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="catalog"`)
			writeJSON(w, http.StatusUnauthorized, apiError{Code: "unauthorized", Message: "missing or invalid admin token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
