package httpadapter

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Session identifies the caller of an API request.
type Session struct {
	Subject       string
	Authenticated bool
}

type sessionKey struct{}

// anonymous is the session attached when the auth gate is disabled.
var anonymous = Session{Subject: "anonymous"}

// SessionFromContext returns the session attached by the auth gate.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// requireAuth admits requests carrying "Authorization: Bearer <token>". An
// empty token disables the gate and every request gets the anonymous session.
func requireAuth(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := anonymous
		if token != "" {
			presented, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="neo-risk"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			session = Session{Subject: "bearer", Authenticated: true}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
