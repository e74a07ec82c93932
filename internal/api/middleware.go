// Package api implements the AI Ninjas REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Auth modes.
const (
	AuthDisabled    = "disabled"
	AuthToken       = "token"
	AuthCredentials = "credentials"
)

// TokenChecker validates session tokens issued by a login.
type TokenChecker interface {
	Valid(token string) bool
}

// AuthMiddleware guards the authoring routes with a Bearer token.
//
// In disabled mode all requests pass. In token mode the token must equal
// the configured static token. In credentials mode it must be the current
// session token.
func AuthMiddleware(mode, token string, sessions TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mode == AuthDisabled {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := bearer(r)
			if !ok || !accept(mode, token, sessions, got) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="aininjas"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accept(mode, token string, sessions TokenChecker, got string) bool {
	switch mode {
	case AuthToken:
		return token != "" && subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
	case AuthCredentials:
		return sessions != nil && sessions.Valid(got)
	}
	return false
}

// bearer extracts the token from the Authorization header. EventSource
// clients cannot set headers, so the access_token query parameter is
// accepted on GET requests as well.
func bearer(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		return t, t != ""
	}
	if r.Method == http.MethodGet {
		if t := r.URL.Query().Get("access_token"); t != "" {
			return t, true
		}
	}
	return "", false
}
